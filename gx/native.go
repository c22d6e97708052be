//go:build gxiapi
// +build gxiapi

package gx

/*
#cgo CFLAGS: -I/usr/lib/gxiapi -I/usr/local/include
#cgo LDFLAGS: -lgxiapi
#include <stdlib.h>
#include <stdbool.h>
#include <GxIAPI.h>

extern void gxGoOnFrame(GX_FRAME_CALLBACK_PARAM *p);

static void GX_STDC gxOnFrame(GX_FRAME_CALLBACK_PARAM *p) {
	gxGoOnFrame(p);
}

static GX_STATUS gxRegisterCaptureCallback(GX_DEV_HANDLE h, void *user) {
	return GXRegisterCaptureCallback(h, user, gxOnFrame);
}
*/
import "C"

import (
	"sync"
	"unsafe"
)

// cFeatures translates identifiers to the constants of the linked header
var cFeatures = map[FeatureID]C.GX_FEATURE_ID{
	StringDeviceVendorName:            C.GX_STRING_DEVICE_VENDOR_NAME,
	StringDeviceModelName:             C.GX_STRING_DEVICE_MODEL_NAME,
	StringDeviceFirmwareVersion:       C.GX_STRING_DEVICE_FIRMWARE_VERSION,
	StringDeviceVersion:               C.GX_STRING_DEVICE_VERSION,
	StringDeviceSerialNumber:          C.GX_STRING_DEVICE_SERIAL_NUMBER,
	StringDeviceUserID:                C.GX_STRING_DEVICE_USERID,
	EnumDeviceLinkThroughputLimitMode: C.GX_ENUM_DEVICE_LINK_THROUGHPUT_LIMIT_MODE,
	IntDeviceLinkThroughputLimit:      C.GX_INT_DEVICE_LINK_THROUGHPUT_LIMIT,
	CommandDeviceReset:                C.GX_COMMAND_DEVICE_RESET,
	IntTimestampTickFrequency:         C.GX_INT_TIMESTAMP_TICK_FREQUENCY,
	CommandTimestampLatch:             C.GX_COMMAND_TIMESTAMP_LATCH,
	CommandTimestampReset:             C.GX_COMMAND_TIMESTAMP_RESET,
	CommandTimestampLatchReset:        C.GX_COMMAND_TIMESTAMP_LATCH_RESET,
	IntTimestampLatchValue:            C.GX_INT_TIMESTAMP_LATCH_VALUE,
	IntSensorWidth:                    C.GX_INT_SENSOR_WIDTH,
	IntSensorHeight:                   C.GX_INT_SENSOR_HEIGHT,
	IntWidthMax:                       C.GX_INT_WIDTH_MAX,
	IntHeightMax:                      C.GX_INT_HEIGHT_MAX,
	IntOffsetX:                        C.GX_INT_OFFSET_X,
	IntOffsetY:                        C.GX_INT_OFFSET_Y,
	IntWidth:                          C.GX_INT_WIDTH,
	IntHeight:                         C.GX_INT_HEIGHT,
	EnumPixelSize:                     C.GX_ENUM_PIXEL_SIZE,
	EnumPixelColorFilter:              C.GX_ENUM_PIXEL_COLOR_FILTER,
	EnumPixelFormat:                   C.GX_ENUM_PIXEL_FORMAT,
	BoolReverseX:                      C.GX_BOOL_REVERSE_X,
	BoolReverseY:                      C.GX_BOOL_REVERSE_Y,
	IntPayloadSize:                    C.GX_INT_PAYLOAD_SIZE,
	EnumAcquisitionMode:               C.GX_ENUM_ACQUISITION_MODE,
	CommandAcquisitionStart:           C.GX_COMMAND_ACQUISITION_START,
	CommandAcquisitionStop:            C.GX_COMMAND_ACQUISITION_STOP,
	EnumTriggerMode:                   C.GX_ENUM_TRIGGER_MODE,
	CommandTriggerSoftware:            C.GX_COMMAND_TRIGGER_SOFTWARE,
	EnumTriggerActivation:             C.GX_ENUM_TRIGGER_ACTIVATION,
	EnumTriggerSwitch:                 C.GX_ENUM_TRIGGER_SWITCH,
	FloatExposureTime:                 C.GX_FLOAT_EXPOSURE_TIME,
	EnumExposureAuto:                  C.GX_ENUM_EXPOSURE_AUTO,
	FloatTriggerFilterRaising:         C.GX_FLOAT_TRIGGER_FILTER_RAISING,
	FloatTriggerFilterFalling:         C.GX_FLOAT_TRIGGER_FILTER_FALLING,
	EnumTriggerSource:                 C.GX_ENUM_TRIGGER_SOURCE,
	EnumExposureMode:                  C.GX_ENUM_EXPOSURE_MODE,
	FloatTriggerDelay:                 C.GX_FLOAT_TRIGGER_DELAY,
	EnumAcquisitionFrameRateMode:      C.GX_ENUM_ACQUISITION_FRAME_RATE_MODE,
	FloatAcquisitionFrameRate:         C.GX_FLOAT_ACQUISITION_FRAME_RATE,
	FloatExposureDelay:                C.GX_FLOAT_EXPOSURE_DELAY,
	EnumGainAuto:                      C.GX_ENUM_GAIN_AUTO,
	EnumGainSelector:                  C.GX_ENUM_GAIN_SELECTOR,
	FloatGain:                         C.GX_FLOAT_GAIN,
	EnumBalanceWhiteAuto:              C.GX_ENUM_BALANCE_WHITE_AUTO,
	EnumBalanceRatioSelector:          C.GX_ENUM_BALANCE_RATIO_SELECTOR,
	FloatBalanceRatio:                 C.GX_FLOAT_BALANCE_RATIO,
	DSIntStreamTransferSize:           C.GX_DS_INT_STREAM_TRANSFER_SIZE,
}

type nativeSDK struct {
	mu sync.Mutex

	// keys holds the C-allocated registry key passed as user param for each
	// handle with a capture callback
	keys map[Handle]*C.int
}

var native = &nativeSDK{keys: map[Handle]*C.int{}}

// Native returns the GxIAPI binding.  There is one per process.
func Native() SDK {
	return native
}

func cfeat(f FeatureID) (C.GX_FEATURE_ID, bool) {
	id, ok := cFeatures[f]
	return id, ok
}

func dev(h Handle) C.GX_DEV_HANDLE {
	return C.GX_DEV_HANDLE(unsafe.Pointer(h))
}

func (n *nativeSDK) InitLib() Status {
	return Status(C.GXInitLib())
}

func (n *nativeSDK) CloseLib() Status {
	return Status(C.GXCloseLib())
}

func (n *nativeSDK) GetLastError(buf []byte) (Status, int, Status) {
	var code C.GX_STATUS
	size := C.size_t(len(buf))
	var ptr *C.char
	if len(buf) > 0 {
		ptr = (*C.char)(C.malloc(size))
		defer C.free(unsafe.Pointer(ptr))
	}
	s := Status(C.GXGetLastError(&code, ptr, &size))
	if s == StatusSuccess && ptr != nil {
		m := int(size)
		if m > len(buf) {
			m = len(buf)
		}
		copy(buf, C.GoBytes(unsafe.Pointer(ptr), C.int(m)))
	}
	return Status(code), int(size), s
}

func (n *nativeSDK) UpdateDeviceList(timeoutMs uint32) (uint32, Status) {
	var num C.uint32_t
	s := C.GXUpdateDeviceList(&num, C.uint32_t(timeoutMs))
	return uint32(num), Status(s)
}

func (n *nativeSDK) UpdateAllDeviceList(timeoutMs uint32) (uint32, Status) {
	var num C.uint32_t
	s := C.GXUpdateAllDeviceList(&num, C.uint32_t(timeoutMs))
	return uint32(num), Status(s)
}

func (n *nativeSDK) GetDeviceInfo(index uint32) (DeviceInfo, Status) {
	var num C.uint32_t
	// the list must have been enumerated; ask for its size without re-enumerating
	if s := Status(C.GXGetDeviceCount(&num)); s != StatusSuccess {
		return DeviceInfo{}, s
	}
	if index < 1 || index > uint32(num) {
		return DeviceInfo{}, StatusInvalidParameter
	}
	size := C.size_t(num) * C.size_t(unsafe.Sizeof(C.GX_DEVICE_BASE_INFO{}))
	infos := (*C.GX_DEVICE_BASE_INFO)(C.malloc(size))
	defer C.free(unsafe.Pointer(infos))
	if s := Status(C.GXGetAllDeviceBaseInfo(infos, &size)); s != StatusSuccess {
		return DeviceInfo{}, s
	}
	all := (*[1 << 16]C.GX_DEVICE_BASE_INFO)(unsafe.Pointer(infos))[:num:num]
	b := all[index-1]
	info := DeviceInfo{
		Vendor:       C.GoString(&b.szVendorName[0]),
		Model:        C.GoString(&b.szModelName[0]),
		SerialNumber: C.GoString(&b.szSN[0]),
		DisplayName:  C.GoString(&b.szDisplayName[0]),
		DeviceID:     C.GoString(&b.szDeviceID[0]),
		UserID:       C.GoString(&b.szUserID[0]),
		Class:        DeviceClass(b.deviceClass),
	}
	if info.Class == DeviceClassGEV {
		var ip C.GX_DEVICE_IP_INFO
		if Status(C.GXGetDeviceIPInfo(C.uint32_t(index), &ip)) == StatusSuccess {
			info.IP = C.GoString(&ip.szIP[0])
			info.MAC = C.GoString(&ip.szMAC[0])
		}
	}
	return info, StatusSuccess
}

func (n *nativeSDK) OpenDeviceByIndex(index uint32) (Handle, Status) {
	var h C.GX_DEV_HANDLE
	s := C.GXOpenDeviceByIndex(C.uint32_t(index), &h)
	return Handle(unsafe.Pointer(h)), Status(s)
}

func (n *nativeSDK) OpenDevice(p OpenParam) (Handle, Status) {
	content := C.CString(p.Content())
	defer C.free(unsafe.Pointer(content))
	var cp C.GX_OPEN_PARAM
	cp.pszContent = content
	cp.openMode = C.GX_OPEN_MODE_CMD(p.OpenMode())
	cp.accessMode = C.GX_ACCESS_MODE_CMD(p.AccessMode())
	var h C.GX_DEV_HANDLE
	s := C.GXOpenDevice(&cp, &h)
	return Handle(unsafe.Pointer(h)), Status(s)
}

func (n *nativeSDK) CloseDevice(h Handle) Status {
	return Status(C.GXCloseDevice(dev(h)))
}

func (n *nativeSDK) SendCommand(h Handle, f FeatureID) Status {
	id, ok := cfeat(f)
	if !ok {
		return StatusNotImplemented
	}
	return Status(C.GXSendCommand(dev(h), id))
}

func (n *nativeSDK) IsImplemented(h Handle, f FeatureID) (bool, Status) {
	id, ok := cfeat(f)
	if !ok {
		return false, StatusSuccess
	}
	var b C.bool
	s := C.GXIsImplemented(dev(h), id, &b)
	return bool(b), Status(s)
}

func (n *nativeSDK) GetInt(h Handle, f FeatureID) (int64, Status) {
	id, ok := cfeat(f)
	if !ok {
		return 0, StatusNotImplemented
	}
	var v C.int64_t
	s := C.GXGetInt(dev(h), id, &v)
	return int64(v), Status(s)
}

func (n *nativeSDK) SetInt(h Handle, f FeatureID, v int64) Status {
	id, ok := cfeat(f)
	if !ok {
		return StatusNotImplemented
	}
	return Status(C.GXSetInt(dev(h), id, C.int64_t(v)))
}

func (n *nativeSDK) GetIntRange(h Handle, f FeatureID) (IntRange, Status) {
	id, ok := cfeat(f)
	if !ok {
		return IntRange{}, StatusNotImplemented
	}
	var r C.GX_INT_RANGE
	s := C.GXGetIntRange(dev(h), id, &r)
	return IntRange{Min: int64(r.nMin), Max: int64(r.nMax), Inc: int64(r.nInc)}, Status(s)
}

func (n *nativeSDK) GetFloat(h Handle, f FeatureID) (float64, Status) {
	id, ok := cfeat(f)
	if !ok {
		return 0, StatusNotImplemented
	}
	var v C.double
	s := C.GXGetFloat(dev(h), id, &v)
	return float64(v), Status(s)
}

func (n *nativeSDK) SetFloat(h Handle, f FeatureID, v float64) Status {
	id, ok := cfeat(f)
	if !ok {
		return StatusNotImplemented
	}
	return Status(C.GXSetFloat(dev(h), id, C.double(v)))
}

func (n *nativeSDK) GetFloatRange(h Handle, f FeatureID) (FloatRange, Status) {
	id, ok := cfeat(f)
	if !ok {
		return FloatRange{}, StatusNotImplemented
	}
	var r C.GX_FLOAT_RANGE
	s := C.GXGetFloatRange(dev(h), id, &r)
	return FloatRange{
		Min:  float64(r.dMin),
		Max:  float64(r.dMax),
		Inc:  float64(r.dInc),
		Unit: C.GoString(&r.szUnit[0]),
	}, Status(s)
}

func (n *nativeSDK) GetEnum(h Handle, f FeatureID) (int64, Status) {
	id, ok := cfeat(f)
	if !ok {
		return 0, StatusNotImplemented
	}
	var v C.int64_t
	s := C.GXGetEnum(dev(h), id, &v)
	return int64(v), Status(s)
}

func (n *nativeSDK) SetEnum(h Handle, f FeatureID, v int64) Status {
	id, ok := cfeat(f)
	if !ok {
		return StatusNotImplemented
	}
	return Status(C.GXSetEnum(dev(h), id, C.int64_t(v)))
}

func (n *nativeSDK) GetBool(h Handle, f FeatureID) (bool, Status) {
	id, ok := cfeat(f)
	if !ok {
		return false, StatusNotImplemented
	}
	var v C.bool
	s := C.GXGetBool(dev(h), id, &v)
	return bool(v), Status(s)
}

func (n *nativeSDK) SetBool(h Handle, f FeatureID, v bool) Status {
	id, ok := cfeat(f)
	if !ok {
		return StatusNotImplemented
	}
	return Status(C.GXSetBool(dev(h), id, C.bool(v)))
}

func (n *nativeSDK) GetString(h Handle, f FeatureID) (string, Status) {
	id, ok := cfeat(f)
	if !ok {
		return "", StatusNotImplemented
	}
	var size C.size_t
	if s := Status(C.GXGetStringLength(dev(h), id, &size)); s != StatusSuccess {
		return "", s
	}
	if size == 0 {
		return "", StatusSuccess
	}
	buf := (*C.char)(C.malloc(size))
	defer C.free(unsafe.Pointer(buf))
	s := C.GXGetString(dev(h), id, buf, &size)
	return C.GoString(buf), Status(s)
}

func (n *nativeSDK) RegisterCaptureCallback(h Handle, fn CaptureFunc) Status {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.keys[h]; ok {
		return StatusInvalidCall
	}
	key := (*C.int)(C.malloc(C.size_t(unsafe.Sizeof(C.int(0)))))
	*key = C.int(register(fn))
	s := Status(C.gxRegisterCaptureCallback(dev(h), unsafe.Pointer(key)))
	if s != StatusSuccess {
		unregister(int(*key))
		C.free(unsafe.Pointer(key))
		return s
	}
	n.keys[h] = key
	return s
}

func (n *nativeSDK) UnregisterCaptureCallback(h Handle) Status {
	n.mu.Lock()
	defer n.mu.Unlock()
	s := Status(C.GXUnregisterCaptureCallback(dev(h)))
	if key, ok := n.keys[h]; ok && s == StatusSuccess {
		unregister(int(*key))
		C.free(unsafe.Pointer(key))
		delete(n.keys, h)
	}
	return s
}

func (n *nativeSDK) StreamOn(h Handle) Status {
	return Status(C.GXStreamOn(dev(h)))
}

func (n *nativeSDK) StreamOff(h Handle) Status {
	return Status(C.GXStreamOff(dev(h)))
}

func (n *nativeSDK) GetImage(h Handle, f *Frame, timeoutMs uint32) Status {
	if len(f.Data) == 0 {
		return StatusInvalidParameter
	}
	// Go pointers may not be stored in C memory, so the buffer is C-allocated
	// and copied out
	fd := (*C.GX_FRAME_DATA)(C.calloc(1, C.size_t(unsafe.Sizeof(C.GX_FRAME_DATA{}))))
	defer C.free(unsafe.Pointer(fd))
	fd.pImgBuf = C.malloc(C.size_t(len(f.Data)))
	defer C.free(fd.pImgBuf)
	s := Status(C.GXGetImage(dev(h), fd, C.uint32_t(timeoutMs)))
	if s != StatusSuccess {
		return s
	}
	f.Status = FrameStatus(fd.nStatus)
	f.Width = int(fd.nWidth)
	f.Height = int(fd.nHeight)
	f.PixelFormat = PixelFormat(fd.nPixelFormat)
	f.FrameID = uint64(fd.nFrameID)
	f.Timestamp = uint64(fd.nTimestamp)
	f.ImageSize = int(fd.nImgSize)
	size := f.ImageSize
	if size > len(f.Data) || size <= 0 {
		size = len(f.Data)
	}
	copy(f.Data, (*[1 << 30]byte)(fd.pImgBuf)[:size:size])
	return s
}

func (n *nativeSDK) FlushQueue(h Handle) Status {
	return Status(C.GXFlushQueue(dev(h)))
}
