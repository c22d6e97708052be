//go:build gxiapi
// +build gxiapi

package dx

/*
#cgo CFLAGS: -I/usr/lib/gxiapi -I/usr/local/include
#cgo LDFLAGS: -ldximageproc
#include <stdlib.h>
#include <stdbool.h>
#include <DxImageProc.h>
*/
import "C"

type native struct{}

// Native returns the DxImageProc binding
func Native() Processor {
	return native{}
}

func (native) Raw8ToRGB24(in, out []byte, width, height uint32, conv BayerConvertType, layout ColorFilter, flip bool) Status {
	n := int(width) * int(height)
	if len(in) < n || len(out) < 3*n {
		return StatusParameterInvalid
	}
	// C memory for the library, which keeps no reference past the call
	cin := C.CBytes(in[:n])
	defer C.free(cin)
	cout := C.malloc(C.size_t(3 * n))
	if cout == nil {
		return StatusNotEnoughSystemMemory
	}
	defer C.free(cout)
	s := Status(C.DxRaw8toRGB24(cin, cout, C.VxUint32(width), C.VxUint32(height),
		C.DX_BAYER_CONVERT_TYPE(conv), C.DX_PIXEL_COLOR_FILTER(layout), C.bool(flip)))
	if s == StatusOK {
		copy(out, C.GoBytes(cout, C.int(3*n)))
	}
	return s
}
