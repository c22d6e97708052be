package sim

import (
	"time"

	"github.com/nasa-jpl/gxcam/gx"
)

// idle is how often a triggered stream wakes to notice a change of trigger mode
const idle = 50 * time.Millisecond

// stopStream ends streaming and returns a channel closed when the stream
// goroutine has exited, or nil if the device was not streaming.  s.mu must
// be held; wait on the channel only after releasing it.
func (d *device) stopStream() chan struct{} {
	if !d.streaming {
		return nil
	}
	close(d.stop)
	d.streaming = false
	return d.done
}

func (s *SDK) StreamOn(h gx.Handle) gx.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, st := s.lookup(h)
	if st != gx.StatusSuccess {
		return st
	}
	if d.access == gx.AccessReadOnly {
		return s.fail(gx.StatusInvalidAccess, "device is open read only")
	}
	if d.streaming {
		return s.fail(gx.StatusInvalidCall, "stream is already on")
	}
	d.streaming = true
	d.queue = make(chan *gx.Frame, queueDepth)
	d.trigger = make(chan struct{}, 1)
	d.stop = make(chan struct{})
	d.done = make(chan struct{})
	go s.run(d, d.stop, d.trigger, d.done)
	return gx.StatusSuccess
}

func (s *SDK) StreamOff(h gx.Handle) gx.Status {
	s.mu.Lock()
	d, st := s.lookup(h)
	if st != gx.StatusSuccess {
		s.mu.Unlock()
		return st
	}
	done := d.stopStream()
	s.mu.Unlock()
	if done != nil {
		<-done
	}
	return gx.StatusSuccess
}

func (s *SDK) RegisterCaptureCallback(h gx.Handle, fn gx.CaptureFunc) gx.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, st := s.lookup(h)
	if st != gx.StatusSuccess {
		return st
	}
	if fn == nil {
		return s.fail(gx.StatusInvalidParameter, "nil capture callback")
	}
	if d.streaming {
		return s.fail(gx.StatusInvalidCall, "cannot register a capture callback while streaming")
	}
	d.callback = fn
	return gx.StatusSuccess
}

func (s *SDK) UnregisterCaptureCallback(h gx.Handle) gx.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, st := s.lookup(h)
	if st != gx.StatusSuccess {
		return st
	}
	if d.streaming {
		return s.fail(gx.StatusInvalidCall, "cannot unregister the capture callback while streaming")
	}
	d.callback = nil
	return gx.StatusSuccess
}

func (s *SDK) GetImage(h gx.Handle, f *gx.Frame, timeoutMs uint32) gx.Status {
	s.mu.Lock()
	d, st := s.lookup(h)
	if st != gx.StatusSuccess {
		s.mu.Unlock()
		return st
	}
	if d.callback != nil {
		st = s.fail(gx.StatusInvalidCall, "GetImage is unavailable while a capture callback is registered")
		s.mu.Unlock()
		return st
	}
	if !d.streaming {
		st = s.fail(gx.StatusInvalidCall, "stream is off")
		s.mu.Unlock()
		return st
	}
	queue, stop := d.queue, d.stop
	s.mu.Unlock()

	var fr *gx.Frame
	timer := time.NewTimer(time.Duration(timeoutMs) * time.Millisecond)
	defer timer.Stop()
	select {
	case fr = <-queue:
	case <-stop:
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.fail(gx.StatusInvalidCall, "stream stopped while waiting for an image")
	case <-timer.C:
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.fail(gx.StatusTimeout, "no image within %d ms", timeoutMs)
	}
	if len(f.Data) < fr.ImageSize {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.fail(gx.StatusInvalidParameter, "buffer of %d bytes cannot hold an image of %d", len(f.Data), fr.ImageSize)
	}
	f.Status = fr.Status
	f.Width = fr.Width
	f.Height = fr.Height
	f.PixelFormat = fr.PixelFormat
	f.FrameID = fr.FrameID
	f.Timestamp = fr.Timestamp
	f.ImageSize = fr.ImageSize
	copy(f.Data, fr.Data)
	return gx.StatusSuccess
}

func (s *SDK) FlushQueue(h gx.Handle) gx.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, st := s.lookup(h)
	if st != gx.StatusSuccess {
		return st
	}
	for d.queue != nil {
		select {
		case <-d.queue:
		default:
			return gx.StatusSuccess
		}
	}
	return gx.StatusSuccess
}

// run produces frames until stop is closed: on a timer in free run, or on
// each software trigger in trigger mode
func (s *SDK) run(d *device, stop, trigger <-chan struct{}, done chan struct{}) {
	defer close(done)
	for {
		s.mu.Lock()
		c := d.cam
		triggered := c.enums[gx.EnumTriggerMode] == int64(gx.TriggerModeOn)
		period := time.Duration(float64(time.Second) / c.floats[gx.FloatAcquisitionFrameRate])
		if exp := time.Duration(c.floats[gx.FloatExposureTime] * float64(time.Microsecond)); exp > period {
			period = exp
		}
		s.mu.Unlock()

		wait := period
		if triggered {
			wait = idle
		}
		timer := time.NewTimer(wait)
		produce := false
		select {
		case <-stop:
			timer.Stop()
			return
		case <-trigger:
			produce = true
		case <-timer.C:
			produce = !triggered
		}
		timer.Stop()
		if !produce {
			continue
		}

		s.mu.Lock()
		select {
		case <-stop:
			s.mu.Unlock()
			return
		default:
		}
		d.frameID++
		f := c.frame(d.frameID)
		cb := d.callback
		if cb == nil {
			// the oldest frame is dropped when nobody is reading
			select {
			case d.queue <- f:
			default:
				select {
				case <-d.queue:
				default:
				}
				select {
				case d.queue <- f:
				default:
				}
			}
		}
		s.mu.Unlock()
		if cb != nil {
			cb(f)
		}
	}
}
