package sim

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/nasa-jpl/gxcam/gx"
)

// queueDepth is the number of frames buffered for GetImage
const queueDepth = 8

type device struct {
	cam    *Camera
	access gx.AccessMode

	streaming bool
	callback  gx.CaptureFunc
	queue     chan *gx.Frame
	trigger   chan struct{}
	stop      chan struct{}
	done      chan struct{}
	frameID   uint64
}

// SDK is a simulated GxIAPI.  The zero value is not usable, call New.
type SDK struct {
	mu sync.Mutex

	cameras    []*Camera
	enumerated []*Camera
	init       bool
	open       map[gx.Handle]*device
	nextHandle gx.Handle

	lastCode gx.Status
	lastMsg  string

	// InitCalls and CloseCalls count GXInitLib and GXCloseLib
	InitCalls  int
	CloseCalls int
}

// New returns an SDK with cameras attached to the network
func New(cams ...*Camera) *SDK {
	return &SDK{
		cameras:    cams,
		open:       map[gx.Handle]*device{},
		nextHandle: 0x1000,
	}
}

// Attach plugs a camera into the network
func (s *SDK) Attach(c *Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cameras = append(s.cameras, c)
}

// Initialized reports if GXInitLib has been called without GXCloseLib
func (s *SDK) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.init
}

// OpenHandles is the number of devices open
func (s *SDK) OpenHandles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.open)
}

// fail records the last error.  s.mu must be held.
func (s *SDK) fail(code gx.Status, format string, args ...interface{}) gx.Status {
	s.lastCode = code
	s.lastMsg = fmt.Sprintf(format, args...)
	return code
}

// lookup returns the device behind a handle.  s.mu must be held.
func (s *SDK) lookup(h gx.Handle) (*device, gx.Status) {
	if !s.init {
		return nil, s.fail(gx.StatusNotInitAPI, "library is not initialized")
	}
	d, ok := s.open[h]
	if !ok {
		return nil, s.fail(gx.StatusInvalidHandle, "invalid device handle 0x%x", uintptr(h))
	}
	return d, gx.StatusSuccess
}

// feature checks that f is of kind k and implemented.  s.mu must be held.
func (s *SDK) feature(h gx.Handle, f gx.FeatureID, k gx.Kind) (*device, gx.Status) {
	d, st := s.lookup(h)
	if st != gx.StatusSuccess {
		return nil, st
	}
	if f.Kind() != k {
		return nil, s.fail(gx.StatusErrorType, "feature %v is a %v, not a %v", f, f.Kind(), k)
	}
	if !d.cam.implemented(f) {
		return nil, s.fail(gx.StatusNotImplemented, "feature %v is not implemented", f)
	}
	return d, gx.StatusSuccess
}

// writable checks write access to f.  s.mu must be held.
func (s *SDK) writable(d *device, f gx.FeatureID) gx.Status {
	if d.access == gx.AccessReadOnly {
		return s.fail(gx.StatusInvalidAccess, "device is open read only")
	}
	if d.cam.readOnly[f] {
		return s.fail(gx.StatusInvalidAccess, "feature %v is read only", f)
	}
	if d.streaming && lockedWhileStreaming[f] {
		return s.fail(gx.StatusInvalidAccess, "feature %v is locked while streaming", f)
	}
	return gx.StatusSuccess
}

func (s *SDK) InitLib() gx.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.InitCalls++
	s.init = true
	return gx.StatusSuccess
}

func (s *SDK) CloseLib() gx.Status {
	s.mu.Lock()
	if !s.init {
		s.mu.Unlock()
		return gx.StatusSuccess
	}
	var waits []chan struct{}
	for h, d := range s.open {
		if done := d.stopStream(); done != nil {
			waits = append(waits, done)
		}
		d.cam.handles--
		delete(s.open, h)
	}
	s.CloseCalls++
	s.init = false
	s.mu.Unlock()
	for _, done := range waits {
		<-done
	}
	return gx.StatusSuccess
}

func (s *SDK) GetLastError(buf []byte) (gx.Status, int, gx.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if buf == nil {
		return s.lastCode, len(s.lastMsg) + 1, gx.StatusSuccess
	}
	n := copy(buf, s.lastMsg)
	if n < len(buf) {
		buf[n] = 0
		n++
	}
	return s.lastCode, n, gx.StatusSuccess
}

func (s *SDK) enumerate(all bool) (uint32, gx.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.init {
		return 0, s.fail(gx.StatusNotInitAPI, "library is not initialized")
	}
	s.enumerated = s.enumerated[:0]
	for _, c := range s.cameras {
		if c.OtherSubnet && !all {
			continue
		}
		s.enumerated = append(s.enumerated, c)
	}
	return uint32(len(s.enumerated)), gx.StatusSuccess
}

func (s *SDK) UpdateDeviceList(timeoutMs uint32) (uint32, gx.Status) {
	return s.enumerate(false)
}

func (s *SDK) UpdateAllDeviceList(timeoutMs uint32) (uint32, gx.Status) {
	return s.enumerate(true)
}

func (s *SDK) GetDeviceInfo(index uint32) (gx.DeviceInfo, gx.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.init {
		return gx.DeviceInfo{}, s.fail(gx.StatusNotInitAPI, "library is not initialized")
	}
	if index < 1 || int(index) > len(s.enumerated) {
		return gx.DeviceInfo{}, s.fail(gx.StatusInvalidParameter, "index %d out of the device list of %d", index, len(s.enumerated))
	}
	return s.enumerated[index-1].Info, gx.StatusSuccess
}

func (s *SDK) OpenDeviceByIndex(index uint32) (gx.Handle, gx.Status) {
	return s.OpenDevice(gx.NewOpenParam(strconv.Itoa(int(index)), gx.OpenIndex, gx.AccessExclusive))
}

func (s *SDK) OpenDevice(p gx.OpenParam) (gx.Handle, gx.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.init {
		return 0, s.fail(gx.StatusNotInitAPI, "library is not initialized")
	}
	var cam *Camera
	for i, c := range s.enumerated {
		var match bool
		switch p.OpenMode() {
		case gx.OpenSN:
			match = c.Info.SerialNumber == p.Content()
		case gx.OpenIP:
			match = c.Info.IP != "" && c.Info.IP == p.Content()
		case gx.OpenMAC:
			match = c.Info.MAC != "" && c.Info.MAC == p.Content()
		case gx.OpenIndex:
			match = strconv.Itoa(i+1) == p.Content()
		case gx.OpenUserID:
			match = c.Info.UserID != "" && c.Info.UserID == p.Content()
		}
		if match {
			cam = c
			break
		}
	}
	if cam == nil {
		return 0, s.fail(gx.StatusNotFoundDevice, "no device matches %v", p)
	}
	if cam.FailOpens > 0 {
		cam.FailOpens--
		return 0, s.fail(cam.FailStatus, "device %s is busy", cam.Info.SerialNumber)
	}
	if cam.handles > 0 && (cam.access != gx.AccessReadOnly || p.AccessMode() != gx.AccessReadOnly) {
		return 0, s.fail(gx.StatusInvalidAccess, "device %s is already open", cam.Info.SerialNumber)
	}
	h := s.nextHandle
	s.nextHandle++
	cam.handles++
	cam.access = p.AccessMode()
	s.open[h] = &device{cam: cam, access: p.AccessMode()}
	return h, gx.StatusSuccess
}

func (s *SDK) CloseDevice(h gx.Handle) gx.Status {
	s.mu.Lock()
	d, st := s.lookup(h)
	if st != gx.StatusSuccess {
		s.mu.Unlock()
		return st
	}
	delete(s.open, h)
	d.cam.handles--
	done := d.stopStream()
	s.mu.Unlock()
	if done != nil {
		<-done
	}
	return gx.StatusSuccess
}

func (s *SDK) SendCommand(h gx.Handle, f gx.FeatureID) gx.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, st := s.feature(h, f, gx.KindCommand)
	if st != gx.StatusSuccess {
		return st
	}
	if d.access == gx.AccessReadOnly {
		return s.fail(gx.StatusInvalidAccess, "device is open read only")
	}
	c := d.cam
	switch f {
	case gx.CommandTimestampLatch:
		c.ints[gx.IntTimestampLatchValue] = int64(c.ticks())
	case gx.CommandTimestampReset:
		c.epoch = time.Now()
	case gx.CommandTimestampLatchReset:
		c.ints[gx.IntTimestampLatchValue] = int64(c.ticks())
		c.epoch = time.Now()
	case gx.CommandTriggerSoftware:
		if !d.streaming || c.enums[gx.EnumTriggerMode] != int64(gx.TriggerModeOn) ||
			c.enums[gx.EnumTriggerSource] != int64(gx.TriggerSourceSoftware) {
			return s.fail(gx.StatusInvalidCall, "software trigger needs the stream on and trigger mode on with software source")
		}
		select {
		case d.trigger <- struct{}{}:
		default:
		}
	case gx.CommandDeviceReset:
		disabled := c.disabled
		c.reset()
		c.disabled = disabled
		d.stopStream()
	}
	return gx.StatusSuccess
}

func (s *SDK) IsImplemented(h gx.Handle, f gx.FeatureID) (bool, gx.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, st := s.lookup(h)
	if st != gx.StatusSuccess {
		return false, st
	}
	return d.cam.implemented(f), gx.StatusSuccess
}

func (s *SDK) GetInt(h gx.Handle, f gx.FeatureID) (int64, gx.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, st := s.feature(h, f, gx.KindInt)
	if st != gx.StatusSuccess {
		return 0, st
	}
	return d.cam.ints[f], gx.StatusSuccess
}

func (s *SDK) SetInt(h gx.Handle, f gx.FeatureID, v int64) gx.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, st := s.feature(h, f, gx.KindInt)
	if st != gx.StatusSuccess {
		return st
	}
	if st := s.writable(d, f); st != gx.StatusSuccess {
		return st
	}
	c := d.cam
	if r, ok := c.intRanges[f]; ok {
		if v < r.Min || v > r.Max || (r.Inc > 1 && (v-r.Min)%r.Inc != 0) {
			return s.fail(gx.StatusOutOfRange, "%d is outside of %v [%d, %d] step %d", v, f, r.Min, r.Max, r.Inc)
		}
	}
	switch f {
	case gx.IntWidth:
		if v+c.ints[gx.IntOffsetX] > c.ints[gx.IntWidthMax] {
			return s.fail(gx.StatusOutOfRange, "width %d does not fit at offset %d", v, c.ints[gx.IntOffsetX])
		}
	case gx.IntHeight:
		if v+c.ints[gx.IntOffsetY] > c.ints[gx.IntHeightMax] {
			return s.fail(gx.StatusOutOfRange, "height %d does not fit at offset %d", v, c.ints[gx.IntOffsetY])
		}
	case gx.IntOffsetX:
		if v+c.ints[gx.IntWidth] > c.ints[gx.IntWidthMax] {
			return s.fail(gx.StatusOutOfRange, "offset %d does not fit width %d", v, c.ints[gx.IntWidth])
		}
	case gx.IntOffsetY:
		if v+c.ints[gx.IntHeight] > c.ints[gx.IntHeightMax] {
			return s.fail(gx.StatusOutOfRange, "offset %d does not fit height %d", v, c.ints[gx.IntHeight])
		}
	}
	c.ints[f] = v
	c.ints[gx.IntPayloadSize] = c.payload()
	return gx.StatusSuccess
}

func (s *SDK) GetIntRange(h gx.Handle, f gx.FeatureID) (gx.IntRange, gx.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, st := s.feature(h, f, gx.KindInt)
	if st != gx.StatusSuccess {
		return gx.IntRange{}, st
	}
	if r, ok := d.cam.intRanges[f]; ok {
		return r, gx.StatusSuccess
	}
	v := d.cam.ints[f]
	return gx.IntRange{Min: v, Max: v, Inc: 1}, gx.StatusSuccess
}

func (s *SDK) GetFloat(h gx.Handle, f gx.FeatureID) (float64, gx.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, st := s.feature(h, f, gx.KindFloat)
	if st != gx.StatusSuccess {
		return 0, st
	}
	c := d.cam
	switch f {
	case gx.FloatGain:
		return c.gains[c.enums[gx.EnumGainSelector]], gx.StatusSuccess
	case gx.FloatBalanceRatio:
		return c.ratios[c.enums[gx.EnumBalanceRatioSelector]], gx.StatusSuccess
	}
	return c.floats[f], gx.StatusSuccess
}

func (s *SDK) SetFloat(h gx.Handle, f gx.FeatureID, v float64) gx.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, st := s.feature(h, f, gx.KindFloat)
	if st != gx.StatusSuccess {
		return st
	}
	if st := s.writable(d, f); st != gx.StatusSuccess {
		return st
	}
	c := d.cam
	r := c.floatRanges[f]
	if v < r.Min || v > r.Max {
		return s.fail(gx.StatusOutOfRange, "%g is outside of %v [%g, %g]", v, f, r.Min, r.Max)
	}
	switch f {
	case gx.FloatGain:
		c.gains[c.enums[gx.EnumGainSelector]] = v
	case gx.FloatBalanceRatio:
		c.ratios[c.enums[gx.EnumBalanceRatioSelector]] = v
	default:
		c.floats[f] = v
	}
	return gx.StatusSuccess
}

func (s *SDK) GetFloatRange(h gx.Handle, f gx.FeatureID) (gx.FloatRange, gx.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, st := s.feature(h, f, gx.KindFloat)
	if st != gx.StatusSuccess {
		return gx.FloatRange{}, st
	}
	return d.cam.floatRanges[f], gx.StatusSuccess
}

func (s *SDK) GetEnum(h gx.Handle, f gx.FeatureID) (int64, gx.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, st := s.feature(h, f, gx.KindEnum)
	if st != gx.StatusSuccess {
		return 0, st
	}
	return d.cam.enums[f], gx.StatusSuccess
}

func (s *SDK) SetEnum(h gx.Handle, f gx.FeatureID, v int64) gx.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, st := s.feature(h, f, gx.KindEnum)
	if st != gx.StatusSuccess {
		return st
	}
	// selectors do not change the camera, read only handles may use them
	if f != gx.EnumGainSelector && f != gx.EnumBalanceRatioSelector {
		if st := s.writable(d, f); st != gx.StatusSuccess {
			return st
		}
	}
	c := d.cam
	valid := false
	for _, e := range c.enumSets[f] {
		if e == v {
			valid = true
			break
		}
	}
	if !valid {
		return s.fail(gx.StatusOutOfRange, "%d is not a valid entry of %v", v, f)
	}
	c.enums[f] = v
	if f == gx.EnumPixelFormat {
		c.enums[gx.EnumPixelSize] = int64(gx.PixelFormat(v).BitsPerPixel())
		c.ints[gx.IntPayloadSize] = c.payload()
	}
	return gx.StatusSuccess
}

func (s *SDK) GetBool(h gx.Handle, f gx.FeatureID) (bool, gx.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, st := s.feature(h, f, gx.KindBool)
	if st != gx.StatusSuccess {
		return false, st
	}
	return d.cam.bools[f], gx.StatusSuccess
}

func (s *SDK) SetBool(h gx.Handle, f gx.FeatureID, v bool) gx.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, st := s.feature(h, f, gx.KindBool)
	if st != gx.StatusSuccess {
		return st
	}
	if st := s.writable(d, f); st != gx.StatusSuccess {
		return st
	}
	d.cam.bools[f] = v
	return gx.StatusSuccess
}

func (s *SDK) GetString(h gx.Handle, f gx.FeatureID) (string, gx.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, st := s.feature(h, f, gx.KindString)
	if st != gx.StatusSuccess {
		return "", st
	}
	return d.cam.strings[f], gx.StatusSuccess
}
