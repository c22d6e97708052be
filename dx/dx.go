/*Package dx converts raw frames from Galaxy cameras to displayable images
using DxImageProc, the image processing library shipped with the SDK.

Demosaicing is always delegated to a Processor; the package itself only
validates buffers and wraps results as image.Image values.
*/
package dx

import (
	"fmt"
	"image"

	"github.com/nasa-jpl/gxcam/gx"
)

// BayerConvertType is DX_BAYER_CONVERT_TYPE, the demosaic algorithm
type BayerConvertType int32

// demosaic algorithms
const (
	Neighbour  BayerConvertType = 0
	Adaptive   BayerConvertType = 1
	Neighbour3 BayerConvertType = 2
)

func (b BayerConvertType) String() string {
	switch b {
	case Neighbour:
		return "neighbour"
	case Adaptive:
		return "adaptive"
	case Neighbour3:
		return "neighbour3"
	default:
		return fmt.Sprintf("BayerConvertType(%d)", int32(b))
	}
}

// ParseBayerConvertType converts a name to a BayerConvertType
func ParseBayerConvertType(s string) (BayerConvertType, error) {
	for _, b := range []BayerConvertType{Neighbour, Adaptive, Neighbour3} {
		if b.String() == s {
			return b, nil
		}
	}
	return 0, fmt.Errorf("unknown bayer conversion %q, must be one of neighbour, adaptive, neighbour3", s)
}

// ColorFilter is DX_PIXEL_COLOR_FILTER, the Bayer layout of the input
type ColorFilter int32

// color filters
const (
	None    ColorFilter = 0
	BayerRG ColorFilter = 1
	BayerGB ColorFilter = 2
	BayerGR ColorFilter = 3
	BayerBG ColorFilter = 4
)

// ColorFilterOf returns the layout of a raw pixel format, None for others
func ColorFilterOf(pf gx.PixelFormat) ColorFilter {
	return ColorFilter(pf.ColorFilter())
}

// Processor is the surface of DxImageProc used by this package
type Processor interface {
	// Raw8ToRGB24 is DxRaw8toRGB24.  out holds width*height*3 bytes.
	Raw8ToRGB24(in, out []byte, width, height uint32, conv BayerConvertType, layout ColorFilter, flip bool) Status
}

// Raw8ToRGB24 demosaics an 8-bit Bayer image.  The result holds width*height
// pixels of 3 bytes, in the channel order DxImageProc produces (BGR).
func Raw8ToRGB24(p Processor, in []byte, width, height uint32, conv BayerConvertType, layout ColorFilter, flip bool) ([]byte, error) {
	if p == nil {
		return nil, ErrNoNativeSDK
	}
	n := int(width) * int(height)
	if n == 0 || len(in) < n {
		return nil, fmt.Errorf("%w: %d bytes for a %dx%d image", StatusParameterInvalid, len(in), width, height)
	}
	out := make([]byte, n*3)
	if err := check(p.Raw8ToRGB24(in[:n], out, width, height, conv, layout, flip)); err != nil {
		return nil, err
	}
	return out, nil
}

// RGB24ToImage wraps the output of Raw8ToRGB24 as an image
func RGB24ToImage(bgr []byte, width, height int) (*image.RGBA, error) {
	if len(bgr) < width*height*3 {
		return nil, fmt.Errorf("%w: %d bytes for a %dx%d RGB24 image", StatusParameterInvalid, len(bgr), width, height)
	}
	im := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, j := 0, 0; i < width*height; i, j = i+1, j+3 {
		im.Pix[4*i] = bgr[j+2]
		im.Pix[4*i+1] = bgr[j+1]
		im.Pix[4*i+2] = bgr[j]
		im.Pix[4*i+3] = 0xFF
	}
	return im, nil
}

// Raw16ToRaw8 keeps the 8 most significant of validBits in each little
// endian sample, the input Raw8ToRGB24 needs for 10 and 12-bit sensors
func Raw16ToRaw8(in []byte, validBits uint) []byte {
	out := make([]byte, len(in)/2)
	shift := validBits - 8
	for i := range out {
		v := uint16(in[2*i]) | uint16(in[2*i+1])<<8
		out[i] = byte(v >> shift)
	}
	return out
}

// Image converts a frame for display.  Mono frames need no processor.  Bayer
// frames are demosaiced by p; when p is nil the raw data is shown as grey.
func Image(p Processor, f *gx.Frame, conv BayerConvertType) (image.Image, error) {
	pf := f.PixelFormat
	if !pf.IsBayer() {
		return f.Image()
	}
	if p == nil {
		grey := *f
		grey.PixelFormat = monoOf(pf)
		return grey.Image()
	}
	raw := f.Pixels()
	if b := significantBits(pf); b != 0 {
		raw = Raw16ToRaw8(raw, b)
	}
	bgr, err := Raw8ToRGB24(p, raw, uint32(f.Width), uint32(f.Height), conv, ColorFilterOf(pf), false)
	if err != nil {
		return nil, err
	}
	return RGB24ToImage(bgr, f.Width, f.Height)
}

func significantBits(pf gx.PixelFormat) uint {
	switch pf {
	case gx.PixelFormatBayerGR10, gx.PixelFormatBayerRG10, gx.PixelFormatBayerGB10, gx.PixelFormatBayerBG10:
		return 10
	case gx.PixelFormatBayerGR12, gx.PixelFormatBayerRG12, gx.PixelFormatBayerGB12, gx.PixelFormatBayerBG12:
		return 12
	}
	return 0
}

// monoOf is the mono format with the same sample layout as a Bayer format
func monoOf(pf gx.PixelFormat) gx.PixelFormat {
	switch significantBits(pf) {
	case 10:
		return gx.PixelFormatMono10
	case 12:
		return gx.PixelFormatMono12
	}
	return gx.PixelFormatMono8
}
