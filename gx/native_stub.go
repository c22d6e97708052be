//go:build !gxiapi
// +build !gxiapi

package gx

// stubSDK stands in for GxIAPI when the package is built without the gxiapi
// tag.  Every call fails; GetLastError reports ErrNoNativeSDK.
type stubSDK struct{}

var native = &stubSDK{}

// Native returns the GxIAPI binding.  This build does not link the SDK, so
// every call of the returned SDK fails with StatusNotInitAPI.
func Native() SDK {
	return native
}

func (*stubSDK) InitLib() Status { return StatusNotInitAPI }
func (*stubSDK) CloseLib() Status { return StatusNotInitAPI }

func (*stubSDK) GetLastError(buf []byte) (Status, int, Status) {
	msg := ErrNoNativeSDK.Error()
	n := copy(buf, msg)
	if buf == nil {
		n = len(msg) + 1
	}
	return StatusNotInitAPI, n, StatusSuccess
}

func (*stubSDK) UpdateDeviceList(uint32) (uint32, Status) { return 0, StatusNotInitAPI }
func (*stubSDK) UpdateAllDeviceList(uint32) (uint32, Status) { return 0, StatusNotInitAPI }
func (*stubSDK) GetDeviceInfo(uint32) (DeviceInfo, Status) { return DeviceInfo{}, StatusNotInitAPI }
func (*stubSDK) OpenDeviceByIndex(uint32) (Handle, Status) { return 0, StatusNotInitAPI }
func (*stubSDK) OpenDevice(OpenParam) (Handle, Status) { return 0, StatusNotInitAPI }
func (*stubSDK) CloseDevice(Handle) Status { return StatusNotInitAPI }
func (*stubSDK) SendCommand(Handle, FeatureID) Status { return StatusNotInitAPI }

func (*stubSDK) IsImplemented(Handle, FeatureID) (bool, Status) { return false, StatusNotInitAPI }

func (*stubSDK) GetInt(Handle, FeatureID) (int64, Status) { return 0, StatusNotInitAPI }
func (*stubSDK) SetInt(Handle, FeatureID, int64) Status { return StatusNotInitAPI }
func (*stubSDK) GetIntRange(Handle, FeatureID) (IntRange, Status) { return IntRange{}, StatusNotInitAPI }
func (*stubSDK) GetFloat(Handle, FeatureID) (float64, Status) { return 0, StatusNotInitAPI }
func (*stubSDK) SetFloat(Handle, FeatureID, float64) Status { return StatusNotInitAPI }
func (*stubSDK) GetFloatRange(Handle, FeatureID) (FloatRange, Status) {
	return FloatRange{}, StatusNotInitAPI
}
func (*stubSDK) GetEnum(Handle, FeatureID) (int64, Status) { return 0, StatusNotInitAPI }
func (*stubSDK) SetEnum(Handle, FeatureID, int64) Status { return StatusNotInitAPI }
func (*stubSDK) GetBool(Handle, FeatureID) (bool, Status) { return false, StatusNotInitAPI }
func (*stubSDK) SetBool(Handle, FeatureID, bool) Status { return StatusNotInitAPI }
func (*stubSDK) GetString(Handle, FeatureID) (string, Status) { return "", StatusNotInitAPI }

func (*stubSDK) RegisterCaptureCallback(Handle, CaptureFunc) Status { return StatusNotInitAPI }
func (*stubSDK) UnregisterCaptureCallback(Handle) Status { return StatusNotInitAPI }
func (*stubSDK) StreamOn(Handle) Status { return StatusNotInitAPI }
func (*stubSDK) StreamOff(Handle) Status { return StatusNotInitAPI }
func (*stubSDK) GetImage(Handle, *Frame, uint32) Status { return StatusNotInitAPI }
func (*stubSDK) FlushQueue(Handle) Status { return StatusNotInitAPI }
