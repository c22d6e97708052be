package camera

import (
	"fmt"
	"io"

	"github.com/astrogo/fitsio"

	"github.com/nasa-jpl/gxcam/gx"
)

// WriteFits streams a fits file to w.  Each frame is one plane of width x
// height unsigned 16-bit samples; more than one frame makes a cube.
func WriteFits(w io.Writer, metadata []fitsio.Card, width, height int, frames ...[]uint16) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames to write")
	}
	metadata = append(metadata, fitsio.Card{Name: "BZERO", Value: 32768}, fitsio.Card{Name: "BSCALE", Value: 1.0})
	fits, err := fitsio.Create(w)
	if err != nil {
		return err
	}
	defer fits.Close()
	dims := []int{width, height}
	if len(frames) > 1 {
		dims = append(dims, len(frames))
	}
	im := fitsio.NewImage(16, dims)
	defer im.Close()
	err = im.Header().Append(metadata...)
	if err != nil {
		return err
	}

	plane := width * height
	ints := make([]int16, plane*len(frames))
	for i, frame := range frames {
		if len(frame) < plane {
			return fmt.Errorf("frame %d holds %d samples, %dx%d needs %d", i, len(frame), width, height, plane)
		}
		offset := i * plane
		for idx := 0; idx < plane; idx++ {
			ints[offset+idx] = int16(int32(frame[idx]) - 32768)
		}
	}
	err = im.Write(ints)
	if err != nil {
		return err
	}
	return fits.Write(im)
}

// frameCards describes a frame and the camera that took it as FITS cards
func frameCards(d *gx.Device, f *gx.Frame) []fitsio.Card {
	cards := []fitsio.Card{
		{Name: "HDRVER", Value: "1", Comment: "header version"},
		{Name: "PIXFMT", Value: f.PixelFormat.String(), Comment: "camera pixel format"},
		{Name: "FRAMEID", Value: int64(f.FrameID), Comment: "frames since acquisition start"},
		{Name: "TSTAMP", Value: int64(f.Timestamp), Comment: "camera timestamp, ticks"},
	}
	if d == nil {
		return cards
	}
	if s, err := d.ModelName(); err == nil {
		cards = append(cards, fitsio.Card{Name: "CAMMODL", Value: s, Comment: "camera model"})
	}
	if s, err := d.SerialNumber(); err == nil {
		cards = append(cards, fitsio.Card{Name: "CAMSN", Value: s, Comment: "camera serial number"})
	}
	if t, err := d.ExposureTime(); err == nil {
		cards = append(cards, fitsio.Card{Name: "EXPTIME", Value: t / 1e6, Comment: "exposure time, seconds"})
	}
	if g, err := d.Gain(gx.GainSelectorAll); err == nil {
		cards = append(cards, fitsio.Card{Name: "GAIN", Value: g, Comment: "analog gain, dB"})
	}
	if tf, err := d.TimestampTickFrequency(); err == nil {
		cards = append(cards, fitsio.Card{Name: "TICKFREQ", Value: tf, Comment: "timestamp tick frequency, Hz"})
	}
	return cards
}
