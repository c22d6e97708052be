// this file contains a few small image processing utilities
package camera

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strconv"

	"github.com/nfnt/resize"
)

// Scale resizes img by factor with bilinear interpolation.  A factor of 1
// returns img unchanged.
func Scale(img image.Image, factor float64) image.Image {
	if factor == 1 {
		return img
	}
	b := img.Bounds()
	w := uint(float64(b.Dx())*factor + 0.5)
	h := uint(float64(b.Dy())*factor + 0.5)
	if w == 0 {
		w = 1
	}
	if h == 0 {
		h = 1
	}
	return resize.Resize(w, h, img, resize.Bilinear)
}

// parseScale reads the scale query parameter, defaulting to 1
func parseScale(s string) (float64, error) {
	if s == "" {
		return 1, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f <= 0 || f > 4 {
		return 0, fmt.Errorf("scale %v is not in (0, 4]", f)
	}
	return f, nil
}

// encode writes img as jpg or png
func encode(w io.Writer, img image.Image, format string, quality int) error {
	switch format {
	case "jpg", "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case "png":
		return png.Encode(w, img)
	default:
		return fmt.Errorf("format %q is not one of jpg, png", format)
	}
}
