package gx

import (
	"errors"
	"fmt"
	"image"
)

// FrameStatus is GX_FRAME_STATUS
type FrameStatus int32

// frame states
const (
	FrameSuccess    FrameStatus = 0
	FrameIncomplete FrameStatus = -1
)

// ErrNotMono is returned by Frame.Image for frames that are not MonoN
var ErrNotMono = errors.New("frame is not a mono format, convert it with the dx package")

// Frame is one image delivered by GetImage or a capture callback, the Go
// counterpart of GX_FRAME_DATA.  Data is owned by the Frame.
type Frame struct {
	// Status reports whether the frame is complete
	Status FrameStatus

	// Width of the image in pixels
	Width int

	// Height of the image in pixels
	Height int

	// PixelFormat of Data
	PixelFormat PixelFormat

	// FrameID counts frames since acquisition started
	FrameID uint64

	// Timestamp is in ticks of TimestampTickFrequency
	Timestamp uint64

	// ImageSize is the number of valid bytes in Data
	ImageSize int

	// Data holds the pixels, row major without padding
	Data []byte
}

// NewFrame allocates a frame able to hold payloadSize bytes
func NewFrame(payloadSize int) *Frame {
	return &Frame{Data: make([]byte, payloadSize)}
}

// Pixels returns the valid portion of Data
func (f *Frame) Pixels() []byte {
	if f.ImageSize > 0 && f.ImageSize <= len(f.Data) {
		return f.Data[:f.ImageSize]
	}
	return f.Data
}

// Clone deep copies the frame, for keeping frames handed to a CaptureFunc
func (f *Frame) Clone() *Frame {
	out := *f
	out.Data = make([]byte, len(f.Data))
	copy(out.Data, f.Data)
	return &out
}

// Image returns the frame as a grey image.  8-bit formats produce an
// image.Gray sharing Data, deeper ones an image.Gray16 with the samples
// shifted to the full 16-bit range.
func (f *Frame) Image() (image.Image, error) {
	if !f.PixelFormat.IsMono() {
		return nil, ErrNotMono
	}
	rect := image.Rect(0, 0, f.Width, f.Height)
	pix := f.Pixels()
	bpp := f.PixelFormat.BytesPerPixel()
	if len(pix) < f.Width*f.Height*bpp {
		return nil, fmt.Errorf("frame holds %d bytes, %dx%d %v needs %d", len(pix), f.Width, f.Height, f.PixelFormat, f.Width*f.Height*bpp)
	}
	if bpp == 1 {
		return &image.Gray{Pix: pix, Stride: f.Width, Rect: rect}, nil
	}
	shift := 16 - significantBits(f.PixelFormat)
	im := image.NewGray16(rect)
	for i := 0; i < f.Width*f.Height; i++ {
		// the camera is little endian, image.Gray16 is big endian
		v := (uint16(pix[2*i]) | uint16(pix[2*i+1])<<8) << shift
		im.Pix[2*i] = byte(v >> 8)
		im.Pix[2*i+1] = byte(v)
	}
	return im, nil
}

// significantBits is the number of bits carrying data in a 16-bit container
func significantBits(p PixelFormat) uint {
	switch p {
	case PixelFormatMono10, PixelFormatBayerGR10, PixelFormatBayerRG10, PixelFormatBayerGB10, PixelFormatBayerBG10:
		return 10
	case PixelFormatMono12, PixelFormatBayerGR12, PixelFormatBayerRG12, PixelFormatBayerGB12, PixelFormatBayerBG12:
		return 12
	}
	return 16
}

// U16 widens the frame to one uint16 per pixel, the layout FITS output uses
func (f *Frame) U16() []uint16 {
	pix := f.Pixels()
	n := f.Width * f.Height
	out := make([]uint16, n)
	if f.PixelFormat.BytesPerPixel() == 1 {
		for i := 0; i < n && i < len(pix); i++ {
			out[i] = uint16(pix[i])
		}
		return out
	}
	for i := 0; i < n && 2*i+1 < len(pix); i++ {
		out[i] = uint16(pix[2*i]) | uint16(pix[2*i+1])<<8
	}
	return out
}
