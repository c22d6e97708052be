/*Package sim provides an in-memory implementation of gx.SDK.

A simulated SDK holds a list of Cameras "on the network".  Each camera has a
feature tree seeded with plausible values and ranges, produces synthetic
frames while streaming, and reports errors the way GxIAPI does: a status
code from the call and a description from GetLastError.
*/
package sim

import (
	"time"

	"github.com/nasa-jpl/gxcam/gx"
)

// Camera is one simulated device
type Camera struct {
	// Info is reported by GetDeviceInfo
	Info gx.DeviceInfo

	// Color cameras have a Bayer sensor
	Color bool

	// OtherSubnet cameras are only found by UpdateAllDeviceList
	OtherSubnet bool

	// FailOpens is the number of open attempts to reject with FailStatus
	// before the camera can be opened
	FailOpens  int
	FailStatus gx.Status

	ints    map[gx.FeatureID]int64
	floats  map[gx.FeatureID]float64
	enums   map[gx.FeatureID]int64
	bools   map[gx.FeatureID]bool
	strings map[gx.FeatureID]string

	intRanges   map[gx.FeatureID]gx.IntRange
	floatRanges map[gx.FeatureID]gx.FloatRange
	enumSets    map[gx.FeatureID][]int64
	commands    map[gx.FeatureID]bool
	readOnly    map[gx.FeatureID]bool
	disabled    map[gx.FeatureID]bool

	// gains and ratios are keyed by selector value
	gains  map[int64]float64
	ratios map[int64]float64

	epoch time.Time

	// open state, guarded by the SDK
	handles int
	access  gx.AccessMode
}

// streaming locks these features, as GenICam cameras do
var lockedWhileStreaming = map[gx.FeatureID]bool{
	gx.IntWidth:                true,
	gx.IntHeight:               true,
	gx.EnumPixelFormat:         true,
	gx.DSIntStreamTransferSize: true,
}

// NewCamera returns a 640x480 camera.  Color cameras start in BayerRG8 and
// implement white balance; mono cameras start in Mono8.
func NewCamera(sn string, color bool) *Camera {
	c := &Camera{
		Info: gx.DeviceInfo{
			Vendor:       "Daheng Imaging",
			Model:        "MER-SIM-30",
			SerialNumber: sn,
			DisplayName:  "MER-SIM-30(" + sn + ")",
			DeviceID:     "sim-" + sn,
			Class:        gx.DeviceClassU3V,
		},
		Color:      color,
		FailStatus: gx.StatusInvalidAccess,
	}
	if color {
		c.Info.Model = "MER-SIM-30C"
	}
	c.reset()
	return c
}

// Disable makes a feature report not implemented
func (c *Camera) Disable(f gx.FeatureID) {
	c.disabled[f] = true
}

// reset restores the power on state
func (c *Camera) reset() {
	c.epoch = time.Now()
	c.ints = map[gx.FeatureID]int64{
		gx.IntSensorWidth:               640,
		gx.IntSensorHeight:              480,
		gx.IntWidthMax:                  640,
		gx.IntHeightMax:                 480,
		gx.IntWidth:                     640,
		gx.IntHeight:                    480,
		gx.IntOffsetX:                   0,
		gx.IntOffsetY:                   0,
		gx.IntTimestampTickFrequency:    1000000000,
		gx.IntTimestampLatchValue:       0,
		gx.IntDeviceLinkThroughputLimit: 380000000,
		gx.DSIntStreamTransferSize:      65536,
	}
	c.intRanges = map[gx.FeatureID]gx.IntRange{
		gx.IntWidth:                     {Min: 16, Max: 640, Inc: 16},
		gx.IntHeight:                    {Min: 2, Max: 480, Inc: 2},
		gx.IntOffsetX:                   {Min: 0, Max: 624, Inc: 16},
		gx.IntOffsetY:                   {Min: 0, Max: 478, Inc: 2},
		gx.IntDeviceLinkThroughputLimit: {Min: 8000000, Max: 380000000, Inc: 8},
		gx.DSIntStreamTransferSize:      {Min: 1024, Max: 1048576, Inc: 8},
	}
	c.floats = map[gx.FeatureID]float64{
		gx.FloatExposureTime:         10000,
		gx.FloatExposureDelay:        0,
		gx.FloatTriggerDelay:         0,
		gx.FloatTriggerFilterRaising: 0,
		gx.FloatTriggerFilterFalling: 0,
		gx.FloatAcquisitionFrameRate: 30,
	}
	c.floatRanges = map[gx.FeatureID]gx.FloatRange{
		gx.FloatExposureTime:         {Min: 20, Max: 1000000, Inc: 1, Unit: "us"},
		gx.FloatExposureDelay:        {Min: 0, Max: 3000, Inc: 1, Unit: "us"},
		gx.FloatTriggerDelay:         {Min: 0, Max: 3000000, Inc: 1, Unit: "us"},
		gx.FloatTriggerFilterRaising: {Min: 0, Max: 5000, Inc: 1, Unit: "us"},
		gx.FloatTriggerFilterFalling: {Min: 0, Max: 5000, Inc: 1, Unit: "us"},
		gx.FloatAcquisitionFrameRate: {Min: 0.1, Max: 200, Inc: 0.1, Unit: "fps"},
		gx.FloatGain:                 {Min: 0, Max: 24, Inc: 0.1, Unit: "dB"},
		gx.FloatBalanceRatio:         {Min: 1, Max: 15.998, Inc: 0.001},
	}
	c.enums = map[gx.FeatureID]int64{
		gx.EnumPixelSize:                     8,
		gx.EnumAcquisitionMode:               2,
		gx.EnumTriggerMode:                   int64(gx.TriggerModeOff),
		gx.EnumTriggerSource:                 int64(gx.TriggerSourceSoftware),
		gx.EnumTriggerActivation:             1,
		gx.EnumTriggerSwitch:                 int64(gx.TriggerSwitchOff),
		gx.EnumExposureMode:                  int64(gx.ExposureModeTimed),
		gx.EnumExposureAuto:                  int64(gx.ExposureAutoOff),
		gx.EnumAcquisitionFrameRateMode:      1,
		gx.EnumGainAuto:                      int64(gx.GainAutoOff),
		gx.EnumGainSelector:                  int64(gx.GainSelectorAll),
		gx.EnumDeviceLinkThroughputLimitMode: int64(gx.ThroughputLimitModeOn),
	}
	c.enumSets = map[gx.FeatureID][]int64{}
	for f := range c.enums {
		for _, v := range gx.EnumEntries[f] {
			c.enumSets[f] = append(c.enumSets[f], v)
		}
	}
	c.bools = map[gx.FeatureID]bool{
		gx.BoolReverseX: false,
		gx.BoolReverseY: false,
	}
	c.strings = map[gx.FeatureID]string{
		gx.StringDeviceVendorName:      c.Info.Vendor,
		gx.StringDeviceModelName:       c.Info.Model,
		gx.StringDeviceSerialNumber:    c.Info.SerialNumber,
		gx.StringDeviceFirmwareVersion: "1.0.2001.9301",
		gx.StringDeviceVersion:         "V1.0",
		gx.StringDeviceUserID:          c.Info.UserID,
	}
	c.commands = map[gx.FeatureID]bool{
		gx.CommandDeviceReset:         true,
		gx.CommandTimestampLatch:      true,
		gx.CommandTimestampReset:      true,
		gx.CommandTimestampLatchReset: true,
		gx.CommandAcquisitionStart:    true,
		gx.CommandAcquisitionStop:     true,
		gx.CommandTriggerSoftware:     true,
	}
	c.readOnly = map[gx.FeatureID]bool{
		gx.IntSensorWidth:            true,
		gx.IntSensorHeight:           true,
		gx.IntWidthMax:               true,
		gx.IntHeightMax:              true,
		gx.IntPayloadSize:            true,
		gx.IntTimestampTickFrequency: true,
		gx.IntTimestampLatchValue:    true,
		gx.EnumPixelSize:             true,
		gx.EnumPixelColorFilter:      true,
	}
	if c.disabled == nil {
		c.disabled = map[gx.FeatureID]bool{}
	}
	c.gains = map[int64]float64{int64(gx.GainSelectorAll): 0}
	c.enumSets[gx.EnumGainSelector] = []int64{int64(gx.GainSelectorAll)}
	if c.Color {
		c.enums[gx.EnumPixelFormat] = int64(gx.PixelFormatBayerRG8)
		c.enumSets[gx.EnumPixelFormat] = []int64{
			int64(gx.PixelFormatBayerRG8), int64(gx.PixelFormatBayerRG10), int64(gx.PixelFormatBayerRG12)}
		c.enums[gx.EnumPixelColorFilter] = int64(gx.ColorFilterBayerRG)
		c.enums[gx.EnumBalanceWhiteAuto] = 0
		c.enumSets[gx.EnumBalanceWhiteAuto] = []int64{0, 1, 2}
		c.enums[gx.EnumBalanceRatioSelector] = int64(gx.BalanceRatioSelectorRed)
		c.enumSets[gx.EnumBalanceRatioSelector] = []int64{0, 1, 2}
		c.ratios = map[int64]float64{0: 1.5, 1: 1, 2: 1.8}
		for _, s := range []gx.GainSelector{gx.GainSelectorRed, gx.GainSelectorGreen, gx.GainSelectorBlue} {
			c.gains[int64(s)] = 0
			c.enumSets[gx.EnumGainSelector] = append(c.enumSets[gx.EnumGainSelector], int64(s))
		}
	} else {
		c.enums[gx.EnumPixelFormat] = int64(gx.PixelFormatMono8)
		c.enumSets[gx.EnumPixelFormat] = []int64{
			int64(gx.PixelFormatMono8), int64(gx.PixelFormatMono10), int64(gx.PixelFormatMono12)}
		c.enums[gx.EnumPixelColorFilter] = int64(gx.ColorFilterNone)
	}
	c.enumSets[gx.EnumPixelColorFilter] = []int64{c.enums[gx.EnumPixelColorFilter]}
	c.ints[gx.IntPayloadSize] = c.payload()
}

// payload is the size of one frame in the current format
func (c *Camera) payload() int64 {
	pf := gx.PixelFormat(c.enums[gx.EnumPixelFormat])
	return c.ints[gx.IntWidth] * c.ints[gx.IntHeight] * int64(pf.BytesPerPixel())
}

// ticks is the timestamp counter
func (c *Camera) ticks() uint64 {
	ns := time.Since(c.epoch).Nanoseconds()
	return uint64(float64(ns) * float64(c.ints[gx.IntTimestampTickFrequency]) / 1e9)
}

// implemented reports if f is part of the feature tree
func (c *Camera) implemented(f gx.FeatureID) bool {
	if c.disabled[f] {
		return false
	}
	switch f.Kind() {
	case gx.KindInt:
		_, ok := c.ints[f]
		return ok
	case gx.KindFloat:
		if f == gx.FloatGain {
			return true
		}
		if f == gx.FloatBalanceRatio {
			return c.Color
		}
		_, ok := c.floats[f]
		return ok
	case gx.KindEnum:
		_, ok := c.enums[f]
		return ok
	case gx.KindBool:
		_, ok := c.bools[f]
		return ok
	case gx.KindString:
		_, ok := c.strings[f]
		return ok
	case gx.KindCommand:
		return c.commands[f]
	}
	return false
}

// frame renders a synthetic image: a diagonal ramp that shifts by one
// count per frame
func (c *Camera) frame(id uint64) *gx.Frame {
	pf := gx.PixelFormat(c.enums[gx.EnumPixelFormat])
	w, h := int(c.ints[gx.IntWidth]), int(c.ints[gx.IntHeight])
	ox, oy := int(c.ints[gx.IntOffsetX]), int(c.ints[gx.IntOffsetY])
	bpp := pf.BytesPerPixel()
	f := &gx.Frame{
		Status:      gx.FrameSuccess,
		Width:       w,
		Height:      h,
		PixelFormat: pf,
		FrameID:     id,
		Timestamp:   c.ticks(),
		ImageSize:   w * h * bpp,
		Data:        make([]byte, w*h*bpp),
	}
	max := uint32(1)<<uint(pf.BitsPerPixel()) - 1
	if bpp == 2 {
		max = 1<<uint(significant(pf)) - 1
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint32(x+ox+y+oy+int(id)) % (max + 1)
			i := (y*w + x) * bpp
			switch bpp {
			case 1:
				f.Data[i] = byte(v)
			case 2:
				f.Data[i] = byte(v)
				f.Data[i+1] = byte(v >> 8)
			default:
				for k := 0; k < bpp; k++ {
					f.Data[i+k] = byte(v)
				}
			}
		}
	}
	return f
}

func significant(pf gx.PixelFormat) int {
	switch pf {
	case gx.PixelFormatMono10, gx.PixelFormatBayerRG10:
		return 10
	case gx.PixelFormatMono12, gx.PixelFormatBayerRG12:
		return 12
	}
	return 16
}
