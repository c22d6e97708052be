package gx

import (
	"errors"
	"fmt"
)

// Status is a GX_STATUS code returned by every GxIAPI function
type Status int32

// GX_STATUS values
const (
	StatusSuccess          Status = 0
	StatusError            Status = -1
	StatusNotFoundTL       Status = -2
	StatusNotFoundDevice   Status = -3
	StatusOffline          Status = -4
	StatusInvalidParameter Status = -5
	StatusInvalidHandle    Status = -6
	StatusInvalidCall      Status = -7
	StatusInvalidAccess    Status = -8
	StatusNeedMoreBuffer   Status = -9
	StatusErrorType        Status = -10
	StatusOutOfRange       Status = -11
	StatusNotImplemented   Status = -12
	StatusNotInitAPI       Status = -13
	StatusTimeout          Status = -14
)

var (
	// ErrCodes maps status codes to their names in GxIAPI.h
	ErrCodes = map[Status]string{
		0:   "GX_STATUS_SUCCESS",
		-1:  "GX_STATUS_ERROR",
		-2:  "GX_STATUS_NOT_FOUND_TL",
		-3:  "GX_STATUS_NOT_FOUND_DEVICE",
		-4:  "GX_STATUS_OFFLINE",
		-5:  "GX_STATUS_INVALID_PARAMETER",
		-6:  "GX_STATUS_INVALID_HANDLE",
		-7:  "GX_STATUS_INVALID_CALL",
		-8:  "GX_STATUS_INVALID_ACCESS",
		-9:  "GX_STATUS_NEED_MORE_BUFFER",
		-10: "GX_STATUS_ERROR_TYPE",
		-11: "GX_STATUS_OUT_OF_RANGE",
		-12: "GX_STATUS_NOT_IMPLEMENTED",
		-13: "GX_STATUS_NOT_INIT_API",
		-14: "GX_STATUS_TIMEOUT",
	}

	// ErrNoNativeSDK is returned by every call of the native SDK when the
	// package was built without the gxiapi tag
	ErrNoNativeSDK = errors.New("gx: built without the gxiapi tag, the Galaxy SDK is not linked")
)

// Error satisfies the error interface
func (s Status) Error() string {
	if str, ok := ErrCodes[s]; ok {
		return fmt.Sprintf("%d - %s", int32(s), str)
	}
	return fmt.Sprintf("%d - UNKNOWN_ERROR_CODE", int32(s))
}

// Error is a failed SDK call.  It unwraps to its Status, so
// errors.Is(err, gx.StatusTimeout) can be used to test for a specific code.
type Error struct {
	// Op is the SDK function that failed
	Op string

	// Code is the status the SDK reported
	Code Status

	// Msg is the text from GXGetLastError, may be empty
	Msg string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("gx: %s: %v", e.Op, e.Code)
	}
	return fmt.Sprintf("gx: %s: %s (%v)", e.Op, e.Msg, e.Code)
}

// Unwrap returns the status code
func (e *Error) Unwrap() error {
	return e.Code
}

// Is matches ErrNoNativeSDK for calls made by a build without the SDK
func (e *Error) Is(target error) bool {
	return target == ErrNoNativeSDK && e.Code == StatusNotInitAPI && e.Msg == ErrNoNativeSDK.Error()
}

// StatusOf extracts the Status from err.  Success is returned for nil, and
// StatusError for errors that did not come from the SDK.
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	var s Status
	if errors.As(err, &s) {
		return s
	}
	return StatusError
}

// LastError asks the SDK for the code and description of the last error.
// The description is fetched in two passes, the first sizing the buffer.
func LastError(sdk SDK) (Status, string, error) {
	code, size, s := sdk.GetLastError(nil)
	if s != StatusSuccess {
		return code, "", &Error{Op: "GXGetLastError", Code: s}
	}
	buf := make([]byte, size)
	code, size, s = sdk.GetLastError(buf)
	if s != StatusSuccess {
		return code, "", &Error{Op: "GXGetLastError", Code: s}
	}
	if size > len(buf) {
		size = len(buf)
	}
	return code, cString(buf[:size]), nil
}

// check converts the status of op into an error, enriched with the last
// error text from the SDK
func check(sdk SDK, op string, s Status) error {
	if s == StatusSuccess {
		return nil
	}
	_, msg, err := LastError(sdk)
	if err != nil {
		msg = ""
	}
	return &Error{Op: op, Code: s, Msg: msg}
}

// cString trims a NUL terminated C string held in b
func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
