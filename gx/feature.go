package gx

import (
	"fmt"
	"sort"
)

// FeatureID is a GX_FEATURE_ID.  The top nibble holds the value type and the
// next one the level (remote device, transport layer, data stream...),
// following the layout of GxIAPI.h.  The native binding translates each
// identifier to the constant of the linked header.
type FeatureID int32

// Kind is the value type of a feature
type Kind int32

// feature kinds
const (
	KindInt     Kind = 0x10000000
	KindFloat   Kind = 0x20000000
	KindEnum    Kind = 0x30000000
	KindBool    Kind = 0x40000000
	KindString  Kind = 0x50000000
	KindBuffer  Kind = 0x60000000
	KindCommand Kind = 0x70000000

	kindMask = 0xF0000000

	levelRemoteDev = 0x00000000
	levelDS        = 0x04000000
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindEnum:
		return "enum"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindBuffer:
		return "buffer"
	case KindCommand:
		return "command"
	default:
		return "unknown"
	}
}

// Kind returns the value type encoded in the identifier
func (f FeatureID) Kind() Kind {
	return Kind(uint32(f) & kindMask)
}

// String returns the GenICam name of the feature, or its hex value
func (f FeatureID) String() string {
	if n, ok := featureNames[f]; ok {
		return n
	}
	return fmt.Sprintf("0x%08X", uint32(f))
}

func remote(k Kind, idx int32) FeatureID {
	return FeatureID(int32(k) | levelRemoteDev | idx)
}

func stream(k Kind, idx int32) FeatureID {
	return FeatureID(int32(k) | levelDS | idx)
}

// Features known to this package
var (
	// device information
	StringDeviceVendorName            = remote(KindString, 0)
	StringDeviceModelName             = remote(KindString, 1)
	StringDeviceFirmwareVersion       = remote(KindString, 2)
	StringDeviceVersion               = remote(KindString, 3)
	StringDeviceSerialNumber          = remote(KindString, 4)
	StringDeviceUserID                = remote(KindString, 7)
	EnumDeviceLinkThroughputLimitMode = remote(KindEnum, 9)
	IntDeviceLinkThroughputLimit      = remote(KindInt, 10)
	CommandDeviceReset                = remote(KindCommand, 12)
	IntTimestampTickFrequency         = remote(KindInt, 13)
	CommandTimestampLatch             = remote(KindCommand, 14)
	CommandTimestampReset             = remote(KindCommand, 15)
	CommandTimestampLatchReset        = remote(KindCommand, 16)
	IntTimestampLatchValue            = remote(KindInt, 17)

	// image format
	IntSensorWidth       = remote(KindInt, 1000)
	IntSensorHeight      = remote(KindInt, 1001)
	IntWidthMax          = remote(KindInt, 1002)
	IntHeightMax         = remote(KindInt, 1003)
	IntOffsetX           = remote(KindInt, 1004)
	IntOffsetY           = remote(KindInt, 1005)
	IntWidth             = remote(KindInt, 1006)
	IntHeight            = remote(KindInt, 1007)
	EnumPixelSize        = remote(KindEnum, 1012)
	EnumPixelColorFilter = remote(KindEnum, 1013)
	EnumPixelFormat      = remote(KindEnum, 1014)
	BoolReverseX         = remote(KindBool, 1015)
	BoolReverseY         = remote(KindBool, 1016)

	// transport layer
	IntPayloadSize = remote(KindInt, 2000)

	// acquisition trigger
	EnumAcquisitionMode          = remote(KindEnum, 3000)
	CommandAcquisitionStart      = remote(KindCommand, 3001)
	CommandAcquisitionStop       = remote(KindCommand, 3002)
	EnumTriggerMode              = remote(KindEnum, 3005)
	CommandTriggerSoftware       = remote(KindCommand, 3006)
	EnumTriggerActivation        = remote(KindEnum, 3007)
	EnumTriggerSwitch            = remote(KindEnum, 3008)
	FloatExposureTime            = remote(KindFloat, 3009)
	EnumExposureAuto             = remote(KindEnum, 3010)
	FloatTriggerFilterRaising    = remote(KindFloat, 3011)
	FloatTriggerFilterFalling    = remote(KindFloat, 3012)
	EnumTriggerSource            = remote(KindEnum, 3013)
	EnumExposureMode             = remote(KindEnum, 3014)
	FloatTriggerDelay            = remote(KindFloat, 3016)
	EnumAcquisitionFrameRateMode = remote(KindEnum, 3019)
	FloatAcquisitionFrameRate    = remote(KindFloat, 3020)
	FloatExposureDelay           = remote(KindFloat, 3026)

	// analog controls
	EnumGainAuto             = remote(KindEnum, 5000)
	EnumGainSelector         = remote(KindEnum, 5001)
	FloatGain                = remote(KindFloat, 5002)
	EnumBalanceWhiteAuto     = remote(KindEnum, 5006)
	EnumBalanceRatioSelector = remote(KindEnum, 5007)
	FloatBalanceRatio        = remote(KindFloat, 5008)

	// data stream
	DSIntStreamTransferSize = stream(KindInt, 12)
)

var featureNames = map[FeatureID]string{
	StringDeviceVendorName:            "DeviceVendorName",
	StringDeviceModelName:             "DeviceModelName",
	StringDeviceFirmwareVersion:       "DeviceFirmwareVersion",
	StringDeviceVersion:               "DeviceVersion",
	StringDeviceSerialNumber:          "DeviceSerialNumber",
	StringDeviceUserID:                "DeviceUserID",
	EnumDeviceLinkThroughputLimitMode: "DeviceLinkThroughputLimitMode",
	IntDeviceLinkThroughputLimit:      "DeviceLinkThroughputLimit",
	CommandDeviceReset:                "DeviceReset",
	IntTimestampTickFrequency:         "TimestampTickFrequency",
	CommandTimestampLatch:             "TimestampLatch",
	CommandTimestampReset:             "TimestampReset",
	CommandTimestampLatchReset:        "TimestampLatchReset",
	IntTimestampLatchValue:            "TimestampLatchValue",
	IntSensorWidth:                    "SensorWidth",
	IntSensorHeight:                   "SensorHeight",
	IntWidthMax:                       "WidthMax",
	IntHeightMax:                      "HeightMax",
	IntOffsetX:                        "OffsetX",
	IntOffsetY:                        "OffsetY",
	IntWidth:                          "Width",
	IntHeight:                         "Height",
	EnumPixelSize:                     "PixelSize",
	EnumPixelColorFilter:              "PixelColorFilter",
	EnumPixelFormat:                   "PixelFormat",
	BoolReverseX:                      "ReverseX",
	BoolReverseY:                      "ReverseY",
	IntPayloadSize:                    "PayloadSize",
	EnumAcquisitionMode:               "AcquisitionMode",
	CommandAcquisitionStart:           "AcquisitionStart",
	CommandAcquisitionStop:            "AcquisitionStop",
	EnumTriggerMode:                   "TriggerMode",
	CommandTriggerSoftware:            "TriggerSoftware",
	EnumTriggerActivation:             "TriggerActivation",
	EnumTriggerSwitch:                 "TriggerSwitch",
	FloatExposureTime:                 "ExposureTime",
	EnumExposureAuto:                  "ExposureAuto",
	FloatTriggerFilterRaising:         "TriggerFilterRaising",
	FloatTriggerFilterFalling:         "TriggerFilterFalling",
	EnumTriggerSource:                 "TriggerSource",
	EnumExposureMode:                  "ExposureMode",
	FloatTriggerDelay:                 "TriggerDelay",
	EnumAcquisitionFrameRateMode:      "AcquisitionFrameRateMode",
	FloatAcquisitionFrameRate:         "AcquisitionFrameRate",
	FloatExposureDelay:                "ExposureDelay",
	EnumGainAuto:                      "GainAuto",
	EnumGainSelector:                  "GainSelector",
	FloatGain:                         "Gain",
	EnumBalanceWhiteAuto:              "BalanceWhiteAuto",
	EnumBalanceRatioSelector:          "BalanceRatioSelector",
	FloatBalanceRatio:                 "BalanceRatio",
	DSIntStreamTransferSize:           "StreamTransferSize",
}

// Features maps GenICam feature names to identifiers.  It is the lookup used
// by Device.GetFeature, SetFeature and Configure.
var Features = func() map[string]FeatureID {
	m := make(map[string]FeatureID, len(featureNames))
	for id, name := range featureNames {
		m[name] = id
	}
	return m
}()

// ErrFeatureNotFound is generated when a feature is looked up in the Features
// map but does not exist there
type ErrFeatureNotFound struct {
	// Feature is the specific feature not found
	Feature string
}

// Error satisfies the error interface
func (e ErrFeatureNotFound) Error() string {
	return fmt.Sprintf("feature %s not found in Features map, see gx#Features for known features", e.Feature)
}

// LookupFeature returns the identifier for a feature name
func LookupFeature(name string) (FeatureID, error) {
	id, ok := Features[name]
	if !ok {
		return 0, ErrFeatureNotFound{Feature: name}
	}
	return id, nil
}

// FeatureNames returns the known feature names mapped to their kinds, as
// strings, for display
func FeatureNames() map[string]string {
	out := make(map[string]string, len(Features))
	for name, id := range Features {
		out[name] = id.Kind().String()
	}
	return out
}

// SortedFeatureNames returns the known feature names in lexical order
func SortedFeatureNames() []string {
	out := make([]string, 0, len(Features))
	for name := range Features {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
