//go:build gxiapi
// +build gxiapi

package gx

import (
	"sync"
	"unsafe"
)

/*
#include <GxIAPI.h>
*/
import "C"

var (
	cbMu    sync.Mutex
	cbIndex int
	cbFns   = make(map[int]CaptureFunc)
)

//export gxGoOnFrame
func gxGoOnFrame(p *C.GX_FRAME_CALLBACK_PARAM) {
	if p == nil || p.pUserParam == nil {
		return
	}
	fn := lookup(int(*(*C.int)(p.pUserParam)))
	if fn == nil {
		return
	}
	f := &Frame{
		Status:      FrameStatus(p.status),
		Width:       int(p.nWidth),
		Height:      int(p.nHeight),
		PixelFormat: PixelFormat(p.nPixelFormat),
		FrameID:     uint64(p.nFrameID),
		Timestamp:   uint64(p.nTimestamp),
		ImageSize:   int(p.nImgSize),
	}
	if p.pImgBuf != nil && p.nImgSize > 0 {
		f.Data = C.GoBytes(unsafe.Pointer(p.pImgBuf), C.int(p.nImgSize))
	}
	fn(f)
}

func register(fn CaptureFunc) int {
	cbMu.Lock()
	defer cbMu.Unlock()
	cbIndex++
	for cbFns[cbIndex] != nil {
		cbIndex++
	}
	cbFns[cbIndex] = fn
	return cbIndex
}

func lookup(i int) CaptureFunc {
	cbMu.Lock()
	defer cbMu.Unlock()
	return cbFns[i]
}

func unregister(i int) {
	cbMu.Lock()
	defer cbMu.Unlock()
	delete(cbFns, i)
}
