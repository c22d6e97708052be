package gx

import (
	"fmt"
	"strings"
)

// PixelFormat is GX_PIXEL_FORMAT_ENTRY, a GenICam PFNC code
type PixelFormat int64

// pixel formats.  Bits 16..23 hold the number of bits per pixel.
const (
	PixelFormatUndefined PixelFormat = 0
	PixelFormatMono8     PixelFormat = 0x01080001
	PixelFormatMono10    PixelFormat = 0x01100003
	PixelFormatMono12    PixelFormat = 0x01100005
	PixelFormatMono16    PixelFormat = 0x01100007
	PixelFormatBayerGR8  PixelFormat = 0x01080008
	PixelFormatBayerRG8  PixelFormat = 0x01080009
	PixelFormatBayerGB8  PixelFormat = 0x0108000A
	PixelFormatBayerBG8  PixelFormat = 0x0108000B
	PixelFormatBayerGR10 PixelFormat = 0x0110000C
	PixelFormatBayerRG10 PixelFormat = 0x0110000D
	PixelFormatBayerGB10 PixelFormat = 0x0110000E
	PixelFormatBayerBG10 PixelFormat = 0x0110000F
	PixelFormatBayerGR12 PixelFormat = 0x01100010
	PixelFormatBayerRG12 PixelFormat = 0x01100011
	PixelFormatBayerGB12 PixelFormat = 0x01100012
	PixelFormatBayerBG12 PixelFormat = 0x01100013
	PixelFormatRGB8      PixelFormat = 0x02180014
	PixelFormatBGR8      PixelFormat = 0x02180015
)

// BitsPerPixel returns the storage size of one pixel
func (p PixelFormat) BitsPerPixel() int {
	return int((p >> 16) & 0xFF)
}

// BytesPerPixel is BitsPerPixel rounded up to whole bytes
func (p PixelFormat) BytesPerPixel() int {
	return (p.BitsPerPixel() + 7) / 8
}

// IsMono is true for MonoN formats
func (p PixelFormat) IsMono() bool {
	switch p {
	case PixelFormatMono8, PixelFormatMono10, PixelFormatMono12, PixelFormatMono16:
		return true
	}
	return false
}

// IsBayer is true for raw Bayer formats of any depth
func (p PixelFormat) IsBayer() bool {
	switch p {
	case PixelFormatBayerGR8, PixelFormatBayerRG8, PixelFormatBayerGB8, PixelFormatBayerBG8,
		PixelFormatBayerGR10, PixelFormatBayerRG10, PixelFormatBayerGB10, PixelFormatBayerBG10,
		PixelFormatBayerGR12, PixelFormatBayerRG12, PixelFormatBayerGB12, PixelFormatBayerBG12:
		return true
	}
	return false
}

// TriggerMode is GX_TRIGGER_MODE_ENTRY
type TriggerMode int64

// trigger modes
const (
	TriggerModeOff TriggerMode = 0
	TriggerModeOn  TriggerMode = 1
)

// TriggerSource is GX_TRIGGER_SOURCE_ENTRY
type TriggerSource int64

// trigger sources
const (
	TriggerSourceSoftware TriggerSource = 0
	TriggerSourceLine0    TriggerSource = 1
	TriggerSourceLine1    TriggerSource = 2
	TriggerSourceLine2    TriggerSource = 3
	TriggerSourceLine3    TriggerSource = 4
)

// TriggerSwitch is GX_TRIGGER_SWITCH_ENTRY, the external trigger switch
type TriggerSwitch int64

// trigger switch states
const (
	TriggerSwitchOff TriggerSwitch = 0
	TriggerSwitchOn  TriggerSwitch = 1
)

// ExposureMode is GX_EXPOSURE_MODE_ENTRY
type ExposureMode int64

// exposure modes
const (
	ExposureModeTimed        ExposureMode = 1
	ExposureModeTriggerWidth ExposureMode = 2
)

// ExposureAuto is GX_EXPOSURE_AUTO_ENTRY
type ExposureAuto int64

// exposure auto modes
const (
	ExposureAutoOff        ExposureAuto = 0
	ExposureAutoContinuous ExposureAuto = 1
	ExposureAutoOnce       ExposureAuto = 2
)

// GainAuto is GX_GAIN_AUTO_ENTRY
type GainAuto int64

// gain auto modes
const (
	GainAutoOff        GainAuto = 0
	GainAutoContinuous GainAuto = 1
	GainAutoOnce       GainAuto = 2
)

// GainSelector is GX_GAIN_SELECTOR_ENTRY
type GainSelector int64

// gain channels
const (
	GainSelectorAll   GainSelector = 0
	GainSelectorRed   GainSelector = 1
	GainSelectorGreen GainSelector = 2
	GainSelectorBlue  GainSelector = 3
)

// BalanceRatioSelector is GX_BALANCE_RATIO_SELECTOR_ENTRY
type BalanceRatioSelector int64

// balance ratio channels
const (
	BalanceRatioSelectorRed   BalanceRatioSelector = 0
	BalanceRatioSelectorGreen BalanceRatioSelector = 1
	BalanceRatioSelectorBlue  BalanceRatioSelector = 2
)

// ThroughputLimitMode is GX_DEVICE_LINK_THROUGHPUT_LIMIT_MODE_ENTRY
type ThroughputLimitMode int64

// throughput limit modes
const (
	ThroughputLimitModeOff ThroughputLimitMode = 0
	ThroughputLimitModeOn  ThroughputLimitMode = 1
)

// ColorFilter is GX_PIXEL_COLOR_FILTER_ENTRY, the Bayer layout of a sensor
type ColorFilter int64

// color filters
const (
	ColorFilterNone    ColorFilter = 0
	ColorFilterBayerRG ColorFilter = 1
	ColorFilterBayerGB ColorFilter = 2
	ColorFilterBayerGR ColorFilter = 3
	ColorFilterBayerBG ColorFilter = 4
)

// ColorFilter returns the Bayer layout of a raw format, or ColorFilterNone
func (p PixelFormat) ColorFilter() ColorFilter {
	switch p {
	case PixelFormatBayerRG8, PixelFormatBayerRG10, PixelFormatBayerRG12:
		return ColorFilterBayerRG
	case PixelFormatBayerGB8, PixelFormatBayerGB10, PixelFormatBayerGB12:
		return ColorFilterBayerGB
	case PixelFormatBayerGR8, PixelFormatBayerGR10, PixelFormatBayerGR12:
		return ColorFilterBayerGR
	case PixelFormatBayerBG8, PixelFormatBayerBG10, PixelFormatBayerBG12:
		return ColorFilterBayerBG
	}
	return ColorFilterNone
}

// EnumEntries holds the symbolic names of the values of the enum features
// this package knows about.  It lets enums be read and written as strings
// over HTTP and in configuration files.
var EnumEntries = map[FeatureID]map[string]int64{
	EnumPixelFormat: {
		"Mono8":     int64(PixelFormatMono8),
		"Mono10":    int64(PixelFormatMono10),
		"Mono12":    int64(PixelFormatMono12),
		"Mono16":    int64(PixelFormatMono16),
		"BayerGR8":  int64(PixelFormatBayerGR8),
		"BayerRG8":  int64(PixelFormatBayerRG8),
		"BayerGB8":  int64(PixelFormatBayerGB8),
		"BayerBG8":  int64(PixelFormatBayerBG8),
		"BayerGR10": int64(PixelFormatBayerGR10),
		"BayerRG10": int64(PixelFormatBayerRG10),
		"BayerGB10": int64(PixelFormatBayerGB10),
		"BayerBG10": int64(PixelFormatBayerBG10),
		"BayerGR12": int64(PixelFormatBayerGR12),
		"BayerRG12": int64(PixelFormatBayerRG12),
		"BayerGB12": int64(PixelFormatBayerGB12),
		"BayerBG12": int64(PixelFormatBayerBG12),
		"RGB8":      int64(PixelFormatRGB8),
		"BGR8":      int64(PixelFormatBGR8),
	},
	EnumTriggerMode: {
		"Off": int64(TriggerModeOff),
		"On":  int64(TriggerModeOn),
	},
	EnumTriggerSource: {
		"Software": int64(TriggerSourceSoftware),
		"Line0":    int64(TriggerSourceLine0),
		"Line1":    int64(TriggerSourceLine1),
		"Line2":    int64(TriggerSourceLine2),
		"Line3":    int64(TriggerSourceLine3),
	},
	EnumTriggerSwitch: {
		"Off": int64(TriggerSwitchOff),
		"On":  int64(TriggerSwitchOn),
	},
	EnumExposureMode: {
		"Timed":        int64(ExposureModeTimed),
		"TriggerWidth": int64(ExposureModeTriggerWidth),
	},
	EnumExposureAuto: {
		"Off":        int64(ExposureAutoOff),
		"Continuous": int64(ExposureAutoContinuous),
		"Once":       int64(ExposureAutoOnce),
	},
	EnumGainAuto: {
		"Off":        int64(GainAutoOff),
		"Continuous": int64(GainAutoContinuous),
		"Once":       int64(GainAutoOnce),
	},
	EnumGainSelector: {
		"All":   int64(GainSelectorAll),
		"Red":   int64(GainSelectorRed),
		"Green": int64(GainSelectorGreen),
		"Blue":  int64(GainSelectorBlue),
	},
	EnumBalanceRatioSelector: {
		"Red":   int64(BalanceRatioSelectorRed),
		"Green": int64(BalanceRatioSelectorGreen),
		"Blue":  int64(BalanceRatioSelectorBlue),
	},
	EnumDeviceLinkThroughputLimitMode: {
		"Off": int64(ThroughputLimitModeOff),
		"On":  int64(ThroughputLimitModeOn),
	},
	EnumPixelColorFilter: {
		"None":    int64(ColorFilterNone),
		"BayerRG": int64(ColorFilterBayerRG),
		"BayerGB": int64(ColorFilterBayerGB),
		"BayerGR": int64(ColorFilterBayerGR),
		"BayerBG": int64(ColorFilterBayerBG),
	},
	EnumPixelSize: {
		"Bpp8":  8,
		"Bpp10": 10,
		"Bpp12": 12,
		"Bpp16": 16,
		"Bpp24": 24,
	},
	EnumAcquisitionMode: {
		"SingleFrame": 0,
		"MultiFrame":  1,
		"Continuous":  2,
	},
	EnumTriggerActivation: {
		"FallingEdge": 0,
		"RisingEdge":  1,
	},
	EnumAcquisitionFrameRateMode: {
		"Off": 0,
		"On":  1,
	},
	EnumBalanceWhiteAuto: {
		"Off":        0,
		"Continuous": 1,
		"Once":       2,
	},
}

// EnumValue parses the symbolic name of an enum entry, case insensitive
func EnumValue(f FeatureID, name string) (int64, error) {
	entries, ok := EnumEntries[f]
	if !ok {
		return 0, fmt.Errorf("feature %v has no known enum entries", f)
	}
	for k, v := range entries {
		if strings.EqualFold(k, name) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%q is not a valid entry of %v", name, f)
}

// EnumName returns the symbolic name of an enum value.  Values without a
// name are rendered as decimal.
func EnumName(f FeatureID, v int64) string {
	for k, val := range EnumEntries[f] {
		if val == v {
			return k
		}
	}
	return fmt.Sprint(v)
}

func (p PixelFormat) String() string {
	return EnumName(EnumPixelFormat, int64(p))
}
