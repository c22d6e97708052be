package dx

import (
	"errors"
	"fmt"
)

// Status is a VxInt32 status returned by DxImageProc functions
type Status int32

// DX_STATUS values
const (
	StatusOK                      Status = 0
	StatusParameterInvalid        Status = -101
	StatusParameterOutOfBound     Status = -102
	StatusNotEnoughSystemMemory   Status = -103
	StatusNotFindDevice           Status = -104
	StatusNotSupported            Status = -105
	StatusCPUNotSupportAccelerate Status = -106
)

var (
	// ErrNoMemory is matched by StatusNotEnoughSystemMemory
	ErrNoMemory = errors.New("dx: not enough system memory")

	// ErrNoNativeSDK is returned when converting without a processor, as in
	// builds without the gxiapi tag
	ErrNoNativeSDK = errors.New("dx: built without the gxiapi tag, DxImageProc is not linked")

	messages = map[Status]string{
		StatusParameterInvalid:        "invalid input parameter",
		StatusParameterOutOfBound:     "the parameter is out of bound",
		StatusNotEnoughSystemMemory:   "not enough system memory",
		StatusNotFindDevice:           "no device found",
		StatusNotSupported:            "the format is not supported",
		StatusCPUNotSupportAccelerate: "the CPU does not support acceleration",
	}
)

// Error satisfies the error interface
func (s Status) Error() string {
	if m, ok := messages[s]; ok {
		return "dx: " + m
	}
	return fmt.Sprintf("dx: unknown error (%d)", int32(s))
}

// Is lets errors.Is(err, ErrNoMemory) match an allocation failure of the library
func (s Status) Is(target error) bool {
	return target == ErrNoMemory && s == StatusNotEnoughSystemMemory
}

// check converts a status to an error, nil for StatusOK
func check(s Status) error {
	if s == StatusOK {
		return nil
	}
	return s
}
