/*Package gx exposes control of Daheng Imaging Galaxy cameras in Go via their
SDK, GxIAPI.

The SDK is reached through the SDK interface, which mirrors the C API one
call at a time and reports GX_STATUS codes.  Native returns the cgo binding
(build with -tags gxiapi), the sim subpackage provides an in-memory camera
for tests and hardware-free development.  Library and Device layer resource
ownership and Go errors on top of it.
*/
package gx

// Handle is an opaque GX_DEV_HANDLE
type Handle uintptr

// FloatRange is the range of a float feature, GX_FLOAT_RANGE
type FloatRange struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Inc  float64 `json:"inc"`
	Unit string  `json:"unit"`
}

// IntRange is the range of an integer feature, GX_INT_RANGE
type IntRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
	Inc int64 `json:"inc"`
}

// DeviceClass is GX_DEVICE_CLASS
type DeviceClass int32

// device classes
const (
	DeviceClassUnknown DeviceClass = 0
	DeviceClassUSB2    DeviceClass = 1
	DeviceClassGEV     DeviceClass = 2
	DeviceClassU3V     DeviceClass = 3
)

func (c DeviceClass) String() string {
	switch c {
	case DeviceClassUSB2:
		return "USB2"
	case DeviceClassGEV:
		return "GigE Vision"
	case DeviceClassU3V:
		return "USB3 Vision"
	default:
		return "unknown"
	}
}

// DeviceInfo describes an enumerated device, GX_DEVICE_BASE_INFO plus the
// network fields of GX_DEVICE_IP_INFO for GigE cameras
type DeviceInfo struct {
	Vendor       string      `json:"vendor" yaml:"Vendor"`
	Model        string      `json:"model" yaml:"Model"`
	SerialNumber string      `json:"serialNumber" yaml:"SerialNumber"`
	DisplayName  string      `json:"displayName" yaml:"DisplayName"`
	DeviceID     string      `json:"deviceID" yaml:"DeviceID"`
	UserID       string      `json:"userID" yaml:"UserID"`
	Class        DeviceClass `json:"class" yaml:"Class"`
	IP           string      `json:"ip,omitempty" yaml:"IP,omitempty"`
	MAC          string      `json:"mac,omitempty" yaml:"MAC,omitempty"`
}

// CaptureFunc receives frames pushed by the SDK after
// RegisterCaptureCallback.  It runs on an SDK thread; the frame is only
// valid for the duration of the call unless copied.
type CaptureFunc func(*Frame)

// SDK is the surface of GxIAPI used by this package.  Each method maps to
// one C function and returns its status unchanged.
type SDK interface {
	// InitLib is GXInitLib
	InitLib() Status

	// CloseLib is GXCloseLib
	CloseLib() Status

	// GetLastError is GXGetLastError.  With a nil buffer it reports the
	// size required to hold the description, otherwise it fills buf and
	// reports the number of bytes written.
	GetLastError(buf []byte) (code Status, size int, s Status)

	// UpdateDeviceList is GXUpdateDeviceList, enumerating the subnet
	UpdateDeviceList(timeoutMs uint32) (uint32, Status)

	// UpdateAllDeviceList is GXUpdateAllDeviceList, enumerating the whole network
	UpdateAllDeviceList(timeoutMs uint32) (uint32, Status)

	// GetDeviceInfo is GXGetAllDeviceBaseInfo restricted to one 1-based index
	GetDeviceInfo(index uint32) (DeviceInfo, Status)

	// OpenDeviceByIndex is GXOpenDeviceByIndex, index is 1-based
	OpenDeviceByIndex(index uint32) (Handle, Status)

	// OpenDevice is GXOpenDevice
	OpenDevice(p OpenParam) (Handle, Status)

	// CloseDevice is GXCloseDevice
	CloseDevice(h Handle) Status

	// SendCommand is GXSendCommand
	SendCommand(h Handle, f FeatureID) Status

	// IsImplemented is GXIsImplemented
	IsImplemented(h Handle, f FeatureID) (bool, Status)

	GetInt(h Handle, f FeatureID) (int64, Status)
	SetInt(h Handle, f FeatureID, v int64) Status
	GetIntRange(h Handle, f FeatureID) (IntRange, Status)
	GetFloat(h Handle, f FeatureID) (float64, Status)
	SetFloat(h Handle, f FeatureID, v float64) Status
	GetFloatRange(h Handle, f FeatureID) (FloatRange, Status)
	GetEnum(h Handle, f FeatureID) (int64, Status)
	SetEnum(h Handle, f FeatureID, v int64) Status
	GetBool(h Handle, f FeatureID) (bool, Status)
	SetBool(h Handle, f FeatureID, v bool) Status
	GetString(h Handle, f FeatureID) (string, Status)

	// RegisterCaptureCallback is GXRegisterCaptureCallback
	RegisterCaptureCallback(h Handle, fn CaptureFunc) Status

	// UnregisterCaptureCallback is GXUnregisterCaptureCallback
	UnregisterCaptureCallback(h Handle) Status

	// StreamOn is GXStreamOn
	StreamOn(h Handle) Status

	// StreamOff is GXStreamOff
	StreamOff(h Handle) Status

	// GetImage is GXGetImage.  f.Data must be allocated by the caller and
	// hold at least one payload.
	GetImage(h Handle, f *Frame, timeoutMs uint32) Status

	// FlushQueue is GXFlushQueue
	FlushQueue(h Handle) Status
}
