/*Package camera describes a standard set of interfaces for control of cameras

Minimal contains the basics; the remaining interfaces are capabilities a
camera may or may not have.  Consumers such as the HTTP layer type assert for
the extras they need.

*/
package camera

import (
	"time"

	"github.com/nasa-jpl/gxcam/gx"
)

// Minimal describes a minimal camera interface with only the basics.
type Minimal interface {
	// StartAcquisition starts the stream.  Frames are then available to
	// Capture, or delivered to a registered callback
	StartAcquisition() error

	// StopAcquisition stops the stream
	StopAcquisition() error

	// Capture waits up to timeout for the next frame
	Capture(timeout time.Duration) (*gx.Frame, error)

	// Close releases the camera; it may not be used afterwards
	Close() error
}

// Exposer is a camera with a configurable exposure
type Exposer interface {
	// ExposureDuration gets the exposure time
	ExposureDuration() (time.Duration, error)

	// SetExposureDuration sets the exposure time
	SetExposureDuration(time.Duration) error

	// ExposureTimeRange gets the limits of the exposure time in microseconds
	ExposureTimeRange() (gx.FloatRange, error)
}

// Gainer is a camera with analog gain, optionally per colour channel
type Gainer interface {
	Gain(gx.GainSelector) (float64, error)
	SetGain(gx.GainSelector, float64) error
	GainRange(gx.GainSelector) (gx.FloatRange, error)
}

// Triggerer is a camera which can be triggered, by software or hardware
type Triggerer interface {
	TriggerMode() (gx.TriggerMode, error)
	SetTriggerMode(gx.TriggerMode) error
	TriggerSource() (gx.TriggerSource, error)
	SetTriggerSource(gx.TriggerSource) error

	// TriggerCapture sends a software trigger
	TriggerCapture() error
}

// Streamer is a camera which pushes frames to a callback as they arrive
type Streamer interface {
	// SetCaptureCallback replaces any registered callback with fn.
	// It must be called with the stream stopped
	SetCaptureCallback(fn gx.CaptureFunc) error

	// UnregisterCaptureCallback removes the callback
	UnregisterCaptureCallback() error

	StartAcquisition() error
	StopAcquisition() error
}

var (
	_ Minimal   = (*gx.Device)(nil)
	_ Exposer   = (*gx.Device)(nil)
	_ Gainer    = (*gx.Device)(nil)
	_ Triggerer = (*gx.Device)(nil)
	_ Streamer  = (*gx.Device)(nil)
)
