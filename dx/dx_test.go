package dx_test

import (
	"errors"
	"fmt"
	"image"
	"testing"

	"github.com/nasa-jpl/gxcam/dx"
	"github.com/nasa-jpl/gxcam/gx"
)

// fake copies each raw sample to all three channels and records its arguments
type fake struct {
	status dx.Status
	conv   dx.BayerConvertType
	layout dx.ColorFilter
	calls  int
}

func (f *fake) Raw8ToRGB24(in, out []byte, w, h uint32, conv dx.BayerConvertType, layout dx.ColorFilter, flip bool) dx.Status {
	f.calls++
	f.conv, f.layout = conv, layout
	if f.status != dx.StatusOK {
		return f.status
	}
	for i := 0; i < int(w*h); i++ {
		out[3*i], out[3*i+1], out[3*i+2] = in[i], in[i]/2, 0
	}
	return dx.StatusOK
}

func ExampleStatus_Error() {
	fmt.Println(dx.StatusNotSupported)
	// Output: dx: the format is not supported
}

func TestUnknownStatus(t *testing.T) {
	if dx.Status(-999).Error() != "dx: unknown error (-999)" {
		t.Errorf("unexpected text %s", dx.Status(-999))
	}
}

func TestNoMemoryMatches(t *testing.T) {
	_, err := dx.Raw8ToRGB24(&fake{status: dx.StatusNotEnoughSystemMemory}, make([]byte, 4), 2, 2, dx.Neighbour, dx.BayerRG, false)
	if !errors.Is(err, dx.ErrNoMemory) {
		t.Errorf("expected ErrNoMemory, got %v", err)
	}
}

func TestRaw8ToRGB24ValidatesInput(t *testing.T) {
	p := &fake{}
	_, err := dx.Raw8ToRGB24(p, make([]byte, 3), 2, 2, dx.Neighbour, dx.BayerRG, false)
	if !errors.Is(err, dx.StatusParameterInvalid) {
		t.Errorf("expected PARAMETER_INVALID for a short input, got %v", err)
	}
	if p.calls != 0 {
		t.Error("the processor should not see invalid input")
	}
	if _, err := dx.Raw8ToRGB24(nil, make([]byte, 4), 2, 2, dx.Neighbour, dx.BayerRG, false); err != dx.ErrNoNativeSDK {
		t.Errorf("expected ErrNoNativeSDK without a processor, got %v", err)
	}
}

func TestRaw8ToRGB24Size(t *testing.T) {
	out, err := dx.Raw8ToRGB24(&fake{}, make([]byte, 12), 4, 3, dx.Adaptive, dx.BayerGB, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 4*3*3 {
		t.Errorf("expected %d bytes, got %d", 36, len(out))
	}
}

func TestRGB24ToImageSwapsToRGBA(t *testing.T) {
	im, err := dx.RGB24ToImage([]byte{10, 20, 30}, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	c := im.RGBAAt(0, 0)
	if c.R != 30 || c.G != 20 || c.B != 10 || c.A != 255 {
		t.Errorf("unexpected pixel %+v", c)
	}
}

func TestImageUsesProcessorForBayer(t *testing.T) {
	p := &fake{}
	f := &gx.Frame{Width: 2, Height: 1, PixelFormat: gx.PixelFormatBayerBG8, Data: []byte{100, 200}}
	im, err := dx.Image(p, f, dx.Neighbour3)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := im.(*image.RGBA); !ok {
		t.Errorf("expected *image.RGBA, got %T", im)
	}
	if p.layout != dx.BayerBG || p.conv != dx.Neighbour3 {
		t.Errorf("processor got layout %d conv %v", p.layout, p.conv)
	}
}

func TestImageHighBitDepthBayer(t *testing.T) {
	p := &fake{}
	// 4095 and 16 as 12-bit little endian samples
	f := &gx.Frame{Width: 2, Height: 1, PixelFormat: gx.PixelFormatBayerRG12, Data: []byte{0xFF, 0x0F, 0x10, 0x00}}
	im, err := dx.Image(p, f, dx.Neighbour)
	if err != nil {
		t.Fatal(err)
	}
	rgba := im.(*image.RGBA)
	// the fake puts the raw sample in the blue channel of its BGR output
	if rgba.RGBAAt(0, 0).B != 255 || rgba.RGBAAt(1, 0).B != 1 {
		t.Errorf("expected samples scaled to 8 bits, got %d and %d", rgba.RGBAAt(0, 0).B, rgba.RGBAAt(1, 0).B)
	}
}

func TestImageGreyFallback(t *testing.T) {
	f := &gx.Frame{Width: 2, Height: 1, PixelFormat: gx.PixelFormatBayerRG8, Data: []byte{1, 2}}
	im, err := dx.Image(nil, f, dx.Neighbour)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := im.(*image.Gray); !ok {
		t.Errorf("expected a grey image without a processor, got %T", im)
	}
	if f.PixelFormat != gx.PixelFormatBayerRG8 {
		t.Error("the fallback modified the frame")
	}
}

func TestColorFilterOf(t *testing.T) {
	if dx.ColorFilterOf(gx.PixelFormatBayerGR10) != dx.BayerGR {
		t.Error("wrong layout for BayerGR10")
	}
	if dx.ColorFilterOf(gx.PixelFormatMono8) != dx.None {
		t.Error("mono should have no layout")
	}
}

func TestParseBayerConvertType(t *testing.T) {
	b, err := dx.ParseBayerConvertType("adaptive")
	if err != nil || b != dx.Adaptive {
		t.Errorf("expected adaptive, got %v %v", b, err)
	}
	if _, err := dx.ParseBayerConvertType("bilinear"); err == nil {
		t.Error("expected an unknown algorithm to fail")
	}
}
