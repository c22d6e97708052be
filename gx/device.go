package gx

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// Device is an open camera.  It owns its handle: Close releases the
// stream, the capture callback and the handle in that order.  A Device that
// becomes unreachable without being closed is closed by a finalizer.
type Device struct {
	sdk SDK

	// mu guards handle
	mu     sync.Mutex
	handle Handle

	// selMu serializes selector writes with the access they select for,
	// e.g. GainSelector then Gain
	selMu sync.Mutex
}

// NewDevice takes ownership of an already open handle.  A zero handle
// produces a Device that is not Valid.
func NewDevice(sdk SDK, h Handle) *Device {
	d := &Device{sdk: sdk, handle: h}
	if h != 0 {
		runtime.SetFinalizer(d, func(d *Device) { d.Close() })
	}
	return d
}

// Handle returns the underlying handle
func (d *Device) Handle() Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.handle
}

// Valid is true if the device holds a handle
func (d *Device) Valid() bool {
	return d.Handle() != 0
}

// Release gives up ownership of the handle and returns it.  The device is
// no longer Valid and Close becomes a no-op; the caller is responsible for
// GXCloseDevice.
func (d *Device) Release() Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	h := d.handle
	d.handle = 0
	runtime.SetFinalizer(d, nil)
	return h
}

// Close stops the stream, unregisters the capture callback and closes the
// device.  Every step is attempted; the first failure is returned.  The
// handle is released regardless, and closing an invalid device does nothing.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	h := d.handle
	if h == 0 {
		return nil
	}
	err := check(d.sdk, "GXStreamOff", d.sdk.StreamOff(h))
	if e := check(d.sdk, "GXUnregisterCaptureCallback", d.sdk.UnregisterCaptureCallback(h)); err == nil {
		err = e
	}
	if e := check(d.sdk, "GXCloseDevice", d.sdk.CloseDevice(h)); err == nil {
		err = e
	}
	d.handle = 0
	runtime.SetFinalizer(d, nil)
	return err
}

// Reset restores the device to its initial state and power cycles it.  The
// host loses its connection, so the device is closed afterwards; the stream
// is not stopped first since StreamOff fails on a resetting device.
func (d *Device) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	h := d.handle
	if h == 0 {
		return closedError("GXSendCommand")
	}
	if err := check(d.sdk, "GXSendCommand", d.sdk.SendCommand(h, CommandDeviceReset)); err != nil {
		return err
	}
	err := check(d.sdk, "GXCloseDevice", d.sdk.CloseDevice(h))
	d.handle = 0
	runtime.SetFinalizer(d, nil)
	return err
}

func closedError(op string) error {
	return &Error{Op: op, Code: StatusInvalidHandle, Msg: "device is closed"}
}

func (d *Device) live(op string) (Handle, error) {
	h := d.Handle()
	if h == 0 {
		return 0, closedError(op)
	}
	return h, nil
}

// low level accessors

func (d *Device) isImplemented(f FeatureID) (bool, error) {
	h, err := d.live("GXIsImplemented")
	if err != nil {
		return false, err
	}
	b, s := d.sdk.IsImplemented(h, f)
	return b, check(d.sdk, "GXIsImplemented", s)
}

func (d *Device) getInt(f FeatureID) (int64, error) {
	h, err := d.live("GXGetInt")
	if err != nil {
		return 0, err
	}
	v, s := d.sdk.GetInt(h, f)
	return v, check(d.sdk, "GXGetInt", s)
}

func (d *Device) setInt(f FeatureID, v int64) error {
	h, err := d.live("GXSetInt")
	if err != nil {
		return err
	}
	return check(d.sdk, "GXSetInt", d.sdk.SetInt(h, f, v))
}

func (d *Device) getFloat(f FeatureID) (float64, error) {
	h, err := d.live("GXGetFloat")
	if err != nil {
		return 0, err
	}
	v, s := d.sdk.GetFloat(h, f)
	return v, check(d.sdk, "GXGetFloat", s)
}

func (d *Device) setFloat(f FeatureID, v float64) error {
	h, err := d.live("GXSetFloat")
	if err != nil {
		return err
	}
	return check(d.sdk, "GXSetFloat", d.sdk.SetFloat(h, f, v))
}

func (d *Device) getFloatRange(f FeatureID) (FloatRange, error) {
	h, err := d.live("GXGetFloatRange")
	if err != nil {
		return FloatRange{}, err
	}
	r, s := d.sdk.GetFloatRange(h, f)
	return r, check(d.sdk, "GXGetFloatRange", s)
}

func (d *Device) getEnum(f FeatureID) (int64, error) {
	h, err := d.live("GXGetEnum")
	if err != nil {
		return 0, err
	}
	v, s := d.sdk.GetEnum(h, f)
	return v, check(d.sdk, "GXGetEnum", s)
}

func (d *Device) setEnum(f FeatureID, v int64) error {
	h, err := d.live("GXSetEnum")
	if err != nil {
		return err
	}
	return check(d.sdk, "GXSetEnum", d.sdk.SetEnum(h, f, v))
}

func (d *Device) getBool(f FeatureID) (bool, error) {
	h, err := d.live("GXGetBool")
	if err != nil {
		return false, err
	}
	v, s := d.sdk.GetBool(h, f)
	return v, check(d.sdk, "GXGetBool", s)
}

func (d *Device) setBool(f FeatureID, v bool) error {
	h, err := d.live("GXSetBool")
	if err != nil {
		return err
	}
	return check(d.sdk, "GXSetBool", d.sdk.SetBool(h, f, v))
}

func (d *Device) getString(f FeatureID) (string, error) {
	h, err := d.live("GXGetString")
	if err != nil {
		return "", err
	}
	v, s := d.sdk.GetString(h, f)
	return v, check(d.sdk, "GXGetString", s)
}

func (d *Device) sendCommand(f FeatureID) error {
	h, err := d.live("GXSendCommand")
	if err != nil {
		return err
	}
	return check(d.sdk, "GXSendCommand", d.sdk.SendCommand(h, f))
}

// IsImplemented reports if the camera implements a feature
func (d *Device) IsImplemented(f FeatureID) (bool, error) {
	return d.isImplemented(f)
}

// Device information

// VendorName is the manufacturer of the device
func (d *Device) VendorName() (string, error) {
	return d.getString(StringDeviceVendorName)
}

// ModelName is the model of the device
func (d *Device) ModelName() (string, error) {
	return d.getString(StringDeviceModelName)
}

// SerialNumber is the serial number of the device
func (d *Device) SerialNumber() (string, error) {
	return d.getString(StringDeviceSerialNumber)
}

// FirmwareVersion is the firmware version of the device
func (d *Device) FirmwareVersion() (string, error) {
	return d.getString(StringDeviceFirmwareVersion)
}

// UserID is the user-assigned name of the device
func (d *Device) UserID() (string, error) {
	return d.getString(StringDeviceUserID)
}

func (d *Device) IsDeviceLinkThroughputLimitModeImplemented() (bool, error) {
	return d.isImplemented(EnumDeviceLinkThroughputLimitMode)
}

func (d *Device) SetDeviceLinkThroughputLimitMode(v ThroughputLimitMode) error {
	return d.setEnum(EnumDeviceLinkThroughputLimitMode, int64(v))
}

func (d *Device) DeviceLinkThroughputLimitMode() (ThroughputLimitMode, error) {
	v, err := d.getEnum(EnumDeviceLinkThroughputLimitMode)
	return ThroughputLimitMode(v), err
}

func (d *Device) IsTimestampTickFrequencyImplemented() (bool, error) {
	return d.isImplemented(IntTimestampTickFrequency)
}

// TimestampTickFrequency is the frequency of the timestamp counter in Hz
func (d *Device) TimestampTickFrequency() (int64, error) {
	return d.getInt(IntTimestampTickFrequency)
}

func (d *Device) IsTimestampLatchValueImplemented() (bool, error) {
	return d.isImplemented(IntTimestampLatchValue)
}

// TimestampLatchValue is the value captured by the last LatchTimestamp
func (d *Device) TimestampLatchValue() (int64, error) {
	return d.getInt(IntTimestampLatchValue)
}

func (d *Device) IsLatchTimestampImplemented() (bool, error) {
	return d.isImplemented(CommandTimestampLatch)
}

// LatchTimestamp latches the current timestamp, the time from device power
// on to the command.  Read it back with TimestampLatchValue.
func (d *Device) LatchTimestamp() error {
	return d.sendCommand(CommandTimestampLatch)
}

func (d *Device) IsResetTimestampImplemented() (bool, error) {
	return d.isImplemented(CommandTimestampReset)
}

// ResetTimestamp resets the timestamp counter to zero
func (d *Device) ResetTimestamp() error {
	return d.sendCommand(CommandTimestampReset)
}

func (d *Device) IsLatchResetTimestampImplemented() (bool, error) {
	return d.isImplemented(CommandTimestampLatchReset)
}

// LatchResetTimestamp latches the current timestamp, then resets the counter
func (d *Device) LatchResetTimestamp() error {
	return d.sendCommand(CommandTimestampLatchReset)
}

// Image format

func (d *Device) IsPixelFormatImplemented() (bool, error) {
	return d.isImplemented(EnumPixelFormat)
}

func (d *Device) SetPixelFormat(v PixelFormat) error {
	return d.setEnum(EnumPixelFormat, int64(v))
}

func (d *Device) PixelFormat() (PixelFormat, error) {
	v, err := d.getEnum(EnumPixelFormat)
	return PixelFormat(v), err
}

// ColorFilter is the Bayer layout of the sensor, ColorFilterNone for mono cameras
func (d *Device) ColorFilter() (ColorFilter, error) {
	v, err := d.getEnum(EnumPixelColorFilter)
	return ColorFilter(v), err
}

func (d *Device) Width() (int64, error) {
	return d.getInt(IntWidth)
}

func (d *Device) SetWidth(v int64) error {
	return d.setInt(IntWidth, v)
}

func (d *Device) Height() (int64, error) {
	return d.getInt(IntHeight)
}

func (d *Device) SetHeight(v int64) error {
	return d.setInt(IntHeight, v)
}

func (d *Device) OffsetX() (int64, error) {
	return d.getInt(IntOffsetX)
}

func (d *Device) SetOffsetX(v int64) error {
	return d.setInt(IntOffsetX, v)
}

func (d *Device) OffsetY() (int64, error) {
	return d.getInt(IntOffsetY)
}

func (d *Device) SetOffsetY(v int64) error {
	return d.setInt(IntOffsetY, v)
}

func (d *Device) SensorWidth() (int64, error) {
	return d.getInt(IntSensorWidth)
}

func (d *Device) SensorHeight() (int64, error) {
	return d.getInt(IntSensorHeight)
}

// Transport layer

// PayloadSize is the number of bytes transferred for each image or chunk on
// the stream channel
func (d *Device) PayloadSize() (int64, error) {
	return d.getInt(IntPayloadSize)
}

// Acquisition trigger

func (d *Device) IsTriggerModeImplemented() (bool, error) {
	return d.isImplemented(EnumTriggerMode)
}

func (d *Device) SetTriggerMode(v TriggerMode) error {
	return d.setEnum(EnumTriggerMode, int64(v))
}

func (d *Device) TriggerMode() (TriggerMode, error) {
	v, err := d.getEnum(EnumTriggerMode)
	return TriggerMode(v), err
}

func (d *Device) IsTriggerSourceImplemented() (bool, error) {
	return d.isImplemented(EnumTriggerSource)
}

func (d *Device) SetTriggerSource(v TriggerSource) error {
	return d.setEnum(EnumTriggerSource, int64(v))
}

func (d *Device) TriggerSource() (TriggerSource, error) {
	v, err := d.getEnum(EnumTriggerSource)
	return TriggerSource(v), err
}

func (d *Device) IsExternalTriggerSwitchImplemented() (bool, error) {
	return d.isImplemented(EnumTriggerSwitch)
}

func (d *Device) SetExternalTriggerSwitch(v TriggerSwitch) error {
	return d.setEnum(EnumTriggerSwitch, int64(v))
}

func (d *Device) ExternalTriggerSwitch() (TriggerSwitch, error) {
	v, err := d.getEnum(EnumTriggerSwitch)
	return TriggerSwitch(v), err
}

func (d *Device) IsTriggerFilterRaisingImplemented() (bool, error) {
	return d.isImplemented(FloatTriggerFilterRaising)
}

func (d *Device) SetTriggerFilterRaising(v float64) error {
	return d.setFloat(FloatTriggerFilterRaising, v)
}

func (d *Device) TriggerFilterRaising() (float64, error) {
	return d.getFloat(FloatTriggerFilterRaising)
}

func (d *Device) TriggerFilterRaisingRange() (FloatRange, error) {
	return d.getFloatRange(FloatTriggerFilterRaising)
}

func (d *Device) IsTriggerFilterFallingImplemented() (bool, error) {
	return d.isImplemented(FloatTriggerFilterFalling)
}

func (d *Device) SetTriggerFilterFalling(v float64) error {
	return d.setFloat(FloatTriggerFilterFalling, v)
}

func (d *Device) TriggerFilterFalling() (float64, error) {
	return d.getFloat(FloatTriggerFilterFalling)
}

func (d *Device) TriggerFilterFallingRange() (FloatRange, error) {
	return d.getFloatRange(FloatTriggerFilterFalling)
}

func (d *Device) IsTriggerDelayImplemented() (bool, error) {
	return d.isImplemented(FloatTriggerDelay)
}

func (d *Device) SetTriggerDelay(v float64) error {
	return d.setFloat(FloatTriggerDelay, v)
}

func (d *Device) TriggerDelay() (float64, error) {
	return d.getFloat(FloatTriggerDelay)
}

func (d *Device) TriggerDelayRange() (FloatRange, error) {
	return d.getFloatRange(FloatTriggerDelay)
}

func (d *Device) IsExposureTimeImplemented() (bool, error) {
	return d.isImplemented(FloatExposureTime)
}

// SetExposureTime sets the exposure time in microseconds
func (d *Device) SetExposureTime(us float64) error {
	return d.setFloat(FloatExposureTime, us)
}

// ExposureTime is the exposure time in microseconds
func (d *Device) ExposureTime() (float64, error) {
	return d.getFloat(FloatExposureTime)
}

func (d *Device) ExposureTimeRange() (FloatRange, error) {
	return d.getFloatRange(FloatExposureTime)
}

// ExposureDuration is the exposure time as a duration
func (d *Device) ExposureDuration() (time.Duration, error) {
	us, err := d.ExposureTime()
	return time.Duration(us * float64(time.Microsecond)), err
}

// SetExposureDuration sets the exposure time from a duration
func (d *Device) SetExposureDuration(t time.Duration) error {
	return d.SetExposureTime(float64(t) / float64(time.Microsecond))
}

func (d *Device) IsExposureDelayImplemented() (bool, error) {
	return d.isImplemented(FloatExposureDelay)
}

func (d *Device) SetExposureDelay(v float64) error {
	return d.setFloat(FloatExposureDelay, v)
}

func (d *Device) ExposureDelay() (float64, error) {
	return d.getFloat(FloatExposureDelay)
}

func (d *Device) ExposureDelayRange() (FloatRange, error) {
	return d.getFloatRange(FloatExposureDelay)
}

func (d *Device) IsExposureModeImplemented() (bool, error) {
	return d.isImplemented(EnumExposureMode)
}

func (d *Device) SetExposureMode(v ExposureMode) error {
	return d.setEnum(EnumExposureMode, int64(v))
}

func (d *Device) ExposureMode() (ExposureMode, error) {
	v, err := d.getEnum(EnumExposureMode)
	return ExposureMode(v), err
}

func (d *Device) IsExposureAutoImplemented() (bool, error) {
	return d.isImplemented(EnumExposureAuto)
}

func (d *Device) SetExposureAuto(v ExposureAuto) error {
	return d.setEnum(EnumExposureAuto, int64(v))
}

func (d *Device) ExposureAuto() (ExposureAuto, error) {
	v, err := d.getEnum(EnumExposureAuto)
	return ExposureAuto(v), err
}

func (d *Device) IsAcquisitionFrameRateImplemented() (bool, error) {
	return d.isImplemented(FloatAcquisitionFrameRate)
}

// SetAcquisitionFrameRate sets the free run frame rate in Hz
func (d *Device) SetAcquisitionFrameRate(v float64) error {
	return d.setFloat(FloatAcquisitionFrameRate, v)
}

func (d *Device) AcquisitionFrameRate() (float64, error) {
	return d.getFloat(FloatAcquisitionFrameRate)
}

func (d *Device) AcquisitionFrameRateRange() (FloatRange, error) {
	return d.getFloatRange(FloatAcquisitionFrameRate)
}

// Analog controls

func (d *Device) IsGainAutoImplemented() (bool, error) {
	return d.isImplemented(EnumGainAuto)
}

func (d *Device) SetGainAuto(v GainAuto) error {
	return d.setEnum(EnumGainAuto, int64(v))
}

func (d *Device) GainAuto() (GainAuto, error) {
	v, err := d.getEnum(EnumGainAuto)
	return GainAuto(v), err
}

func (d *Device) IsGainImplemented() (bool, error) {
	return d.isImplemented(FloatGain)
}

// SetGain selects a gain channel and sets its gain in dB
func (d *Device) SetGain(channel GainSelector, v float64) error {
	d.selMu.Lock()
	defer d.selMu.Unlock()
	if err := d.setEnum(EnumGainSelector, int64(channel)); err != nil {
		return err
	}
	return d.setFloat(FloatGain, v)
}

// Gain selects a gain channel and returns its gain in dB
func (d *Device) Gain(channel GainSelector) (float64, error) {
	d.selMu.Lock()
	defer d.selMu.Unlock()
	if err := d.setEnum(EnumGainSelector, int64(channel)); err != nil {
		return 0, err
	}
	return d.getFloat(FloatGain)
}

// GainRange selects a gain channel and returns the range of its gain
func (d *Device) GainRange(channel GainSelector) (FloatRange, error) {
	d.selMu.Lock()
	defer d.selMu.Unlock()
	if err := d.setEnum(EnumGainSelector, int64(channel)); err != nil {
		return FloatRange{}, err
	}
	return d.getFloatRange(FloatGain)
}

func (d *Device) IsBalanceRatioImplemented() (bool, error) {
	return d.isImplemented(FloatBalanceRatio)
}

// SetBalanceRatio selects a white balance channel and sets its ratio
func (d *Device) SetBalanceRatio(channel BalanceRatioSelector, v float64) error {
	d.selMu.Lock()
	defer d.selMu.Unlock()
	if err := d.setEnum(EnumBalanceRatioSelector, int64(channel)); err != nil {
		return err
	}
	return d.setFloat(FloatBalanceRatio, v)
}

// BalanceRatio selects a white balance channel and returns its ratio
func (d *Device) BalanceRatio(channel BalanceRatioSelector) (float64, error) {
	d.selMu.Lock()
	defer d.selMu.Unlock()
	if err := d.setEnum(EnumBalanceRatioSelector, int64(channel)); err != nil {
		return 0, err
	}
	return d.getFloat(FloatBalanceRatio)
}

// BalanceRatioRange selects a white balance channel and returns the range of its ratio
func (d *Device) BalanceRatioRange(channel BalanceRatioSelector) (FloatRange, error) {
	d.selMu.Lock()
	defer d.selMu.Unlock()
	if err := d.setEnum(EnumBalanceRatioSelector, int64(channel)); err != nil {
		return FloatRange{}, err
	}
	return d.getFloatRange(FloatBalanceRatio)
}

// Data stream

func (d *Device) IsStreamTransferSizeImplemented() (bool, error) {
	return d.isImplemented(DSIntStreamTransferSize)
}

func (d *Device) SetStreamTransferSize(v int64) error {
	return d.setInt(DSIntStreamTransferSize, v)
}

func (d *Device) StreamTransferSize() (int64, error) {
	return d.getInt(DSIntStreamTransferSize)
}

// Control

// RegisterCaptureCallback has fn called for every frame while the stream is on.
// GetImage (Capture) cannot be used while a callback is registered.
func (d *Device) RegisterCaptureCallback(fn CaptureFunc) error {
	h, err := d.live("GXRegisterCaptureCallback")
	if err != nil {
		return err
	}
	return check(d.sdk, "GXRegisterCaptureCallback", d.sdk.RegisterCaptureCallback(h, fn))
}

// UnregisterCaptureCallback removes the capture callback
func (d *Device) UnregisterCaptureCallback() error {
	h, err := d.live("GXUnregisterCaptureCallback")
	if err != nil {
		return err
	}
	return check(d.sdk, "GXUnregisterCaptureCallback", d.sdk.UnregisterCaptureCallback(h))
}

// SetCaptureCallback replaces any registered capture callback with fn
func (d *Device) SetCaptureCallback(fn CaptureFunc) error {
	if h := d.Handle(); h != 0 {
		d.sdk.UnregisterCaptureCallback(h) // nothing registered is fine
	}
	return d.RegisterCaptureCallback(fn)
}

// StartAcquisition turns the stream on
func (d *Device) StartAcquisition() error {
	h, err := d.live("GXStreamOn")
	if err != nil {
		return err
	}
	return check(d.sdk, "GXStreamOn", d.sdk.StreamOn(h))
}

// StopAcquisition turns the stream off
func (d *Device) StopAcquisition() error {
	h, err := d.live("GXStreamOff")
	if err != nil {
		return err
	}
	return check(d.sdk, "GXStreamOff", d.sdk.StreamOff(h))
}

// Capture waits up to timeout for the next frame of the stream.  The frame
// buffer is sized from PayloadSize.
func (d *Device) Capture(timeout time.Duration) (*Frame, error) {
	size, err := d.PayloadSize()
	if err != nil {
		return nil, err
	}
	h, err := d.live("GXGetImage")
	if err != nil {
		return nil, err
	}
	f := NewFrame(int(size))
	if err := check(d.sdk, "GXGetImage", d.sdk.GetImage(h, f, millis(timeout))); err != nil {
		return nil, err
	}
	return f, nil
}

// TriggerCapture sends a software trigger
func (d *Device) TriggerCapture() error {
	return d.sendCommand(CommandTriggerSoftware)
}

// FlushQueue discards the frames waiting in the output queue
func (d *Device) FlushQueue() error {
	h, err := d.live("GXFlushQueue")
	if err != nil {
		return err
	}
	return check(d.sdk, "GXFlushQueue", d.sdk.FlushQueue(h))
}

// Generic access by name

// GetFeature reads a feature by GenICam name.  Ints are returned as int64,
// floats as float64, enums by entry name, bools and strings as themselves.
func (d *Device) GetFeature(name string) (interface{}, error) {
	f, err := LookupFeature(name)
	if err != nil {
		return nil, err
	}
	switch f.Kind() {
	case KindInt:
		return d.getInt(f)
	case KindFloat:
		return d.getFloat(f)
	case KindEnum:
		v, err := d.getEnum(f)
		if err != nil {
			return nil, err
		}
		return EnumName(f, v), nil
	case KindBool:
		return d.getBool(f)
	case KindString:
		return d.getString(f)
	default:
		return nil, fmt.Errorf("cannot get %v feature %s", f.Kind(), name)
	}
}

// SetFeature writes a feature by GenICam name.  Numeric values may be any Go
// int or float type, as decoded from YAML or JSON; enums accept entry names
// or numbers.
func (d *Device) SetFeature(name string, value interface{}) error {
	f, err := LookupFeature(name)
	if err != nil {
		return err
	}
	switch f.Kind() {
	case KindInt:
		i, err := toInt(value)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return d.setInt(f, i)
	case KindFloat:
		x, err := toFloat(value)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return d.setFloat(f, x)
	case KindEnum:
		var i int64
		if s, ok := value.(string); ok {
			i, err = EnumValue(f, s)
		} else {
			i, err = toInt(value)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return d.setEnum(f, i)
	case KindBool:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%s: value %v is not a bool", name, value)
		}
		return d.setBool(f, b)
	default:
		return fmt.Errorf("cannot set %v feature %s", f.Kind(), name)
	}
}

// Command executes a command feature by GenICam name
func (d *Device) Command(name string) error {
	f, err := LookupFeature(name)
	if err != nil {
		return err
	}
	if f.Kind() != KindCommand {
		return fmt.Errorf("%s is a %v feature, not a command", name, f.Kind())
	}
	return d.sendCommand(f)
}

// Configure takes a map of feature names to values and calls SetFeature for
// each, in lexical order.  All settings are attempted; the failures are
// reported together.
func (d *Device) Configure(settings map[string]interface{}) error {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	strs := []string{}
	for _, k := range keys {
		if err := d.SetFeature(k, settings[k]); err != nil {
			strs = append(strs, err.Error())
		}
	}
	if len(strs) == 0 {
		return nil
	}
	return fmt.Errorf("configure: %s", strings.Join(strs, "\n"))
}

func toInt(v interface{}) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint32:
		return int64(x), nil
	case uint64:
		return int64(x), nil
	case float64:
		if x != float64(int64(x)) {
			return 0, fmt.Errorf("value %v is not an integer", x)
		}
		return int64(x), nil
	default:
		return 0, fmt.Errorf("value %v of type %T is not an integer", v, v)
	}
}

func toFloat(v interface{}) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("value %v of type %T is not a number", v, v)
	}
}
