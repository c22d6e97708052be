package camera

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	cam "github.com/nasa-jpl/gxcam/camera"
	"github.com/nasa-jpl/gxcam/gx"
)

// ErrHubStopped is reported to subscribers whose hub stopped without an error
var ErrHubStopped = errors.New("frame hub stopped")

// frameSource is what the hub needs of a camera
type frameSource interface {
	cam.Minimal
	cam.Triggerer
	ExposureDuration() (time.Duration, error)
	AcquisitionFrameRate() (float64, error)
}

// hub runs one capture loop while anyone is subscribed and hands every frame
// to all subscribers.  Slow subscribers miss frames rather than slowing the
// loop.  The stream is reference counted so that /acquisition can hold it on
// independently of the loop.
type hub struct {
	dev     frameSource
	limiter *rate.Limiter
	m       *metrics

	// timeout is added to the exposure time to bound each Capture
	timeout time.Duration

	mu      sync.Mutex
	subs    map[chan *gx.Frame]struct{}
	cancel  context.CancelFunc
	done    chan struct{}
	users   int
	held    bool
	lastErr error
}

func newHub(d frameSource, m *metrics, maxFPS float64, timeout time.Duration) *hub {
	lim := rate.Inf
	if maxFPS > 0 {
		lim = rate.Limit(maxFPS)
	}
	return &hub{
		dev:     d,
		m:       m,
		limiter: rate.NewLimiter(lim, 1),
		timeout: timeout,
		subs:    make(map[chan *gx.Frame]struct{}),
	}
}

// startStream and stopStream count users of the stream.  h.mu must be held.
func (h *hub) startStream() error {
	if h.users == 0 {
		if err := h.dev.StartAcquisition(); err != nil {
			return err
		}
	}
	h.users++
	return nil
}

func (h *hub) stopStream() error {
	if h.users == 0 {
		return nil
	}
	h.users--
	if h.users == 0 {
		return h.dev.StopAcquisition()
	}
	return nil
}

// Streaming reports whether the hub has the stream on
func (h *hub) Streaming() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.users > 0
}

// Hold keeps the stream on (or lets it go) independent of subscribers
func (h *hub) Hold(on bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if on == h.held {
		return nil
	}
	var err error
	if on {
		err = h.startStream()
	} else {
		err = h.stopStream()
	}
	if err == nil {
		h.held = on
	}
	return err
}

// Err returns the error which last stopped the loop
func (h *hub) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.lastErr == nil {
		return ErrHubStopped
	}
	return h.lastErr
}

// Subscribe returns a channel of frames and a func to stop receiving them.
// The channel is closed if the loop fails; Err then says why.
func (h *hub) Subscribe() (<-chan *gx.Frame, func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.subs) == 0 {
		if err := h.startStream(); err != nil {
			return nil, nil, err
		}
		h.lastErr = nil
		ctx, cancel := context.WithCancel(context.Background())
		h.cancel = cancel
		h.done = make(chan struct{})
		go h.loop(ctx, h.done)
	}
	ch := make(chan *gx.Frame, 1)
	h.subs[ch] = struct{}{}
	h.m.subscribers.Set(float64(len(h.subs)))
	return ch, func() { h.unsubscribe(ch) }, nil
}

func (h *hub) unsubscribe(ch chan *gx.Frame) {
	h.mu.Lock()
	if _, ok := h.subs[ch]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.subs, ch)
	h.m.subscribers.Set(float64(len(h.subs)))
	if len(h.subs) > 0 {
		h.mu.Unlock()
		return
	}
	cancel, done := h.cancel, h.done
	h.cancel, h.done = nil, nil
	h.mu.Unlock()

	cancel()
	<-done
	h.mu.Lock()
	h.stopStream()
	h.mu.Unlock()
}

// fail ends every subscription after the loop hits an error it cannot
// recover from
func (h *hub) fail(done chan struct{}, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.done != done {
		return
	}
	for ch := range h.subs {
		close(ch)
		delete(h.subs, ch)
	}
	h.m.subscribers.Set(0)
	h.m.failures.Inc()
	h.lastErr = err
	h.cancel, h.done = nil, nil
	h.stopStream()
}

// frameTimeout bounds one Capture: the exposure plus one frame period plus
// the configured margin
func (h *hub) frameTimeout() time.Duration {
	t := h.timeout
	if exp, err := h.dev.ExposureDuration(); err == nil {
		t += exp
	}
	if fps, err := h.dev.AcquisitionFrameRate(); err == nil && fps > 0 {
		t += time.Duration(float64(time.Second) / fps)
	}
	return t
}

// softwareTriggered is true when frames only come after TriggerCapture
func (h *hub) softwareTriggered() bool {
	mode, err := h.dev.TriggerMode()
	if err != nil || mode != gx.TriggerModeOn {
		return false
	}
	src, err := h.dev.TriggerSource()
	return err == nil && src == gx.TriggerSourceSoftware
}

func (h *hub) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		if err := h.limiter.Wait(ctx); err != nil {
			return
		}
		if h.softwareTriggered() {
			if err := h.dev.TriggerCapture(); err != nil {
				h.fail(done, err)
				return
			}
		}
		f, err := h.dev.Capture(h.frameTimeout())
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			if errors.Is(err, gx.StatusTimeout) {
				// hardware triggers may simply not have come
				h.m.timeouts.Inc()
				continue
			}
			h.fail(done, err)
			return
		}
		if f.Status != gx.FrameSuccess {
			h.m.incomplete.Inc()
			continue
		}
		h.m.frames.Inc()
		h.mu.Lock()
		for ch := range h.subs {
			select {
			case ch <- f:
			default:
				h.m.dropped.Inc()
			}
		}
		h.mu.Unlock()
	}
}

// Next waits for one frame, bounded by timeout and ctx
func (h *hub) Next(ctx context.Context, timeout time.Duration) (*gx.Frame, error) {
	ch, stop, err := h.Subscribe()
	if err != nil {
		return nil, err
	}
	defer stop()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case f, ok := <-ch:
		if !ok {
			return nil, h.Err()
		}
		return f, nil
	case <-timer.C:
		return nil, &gx.Error{Op: "Next", Code: gx.StatusTimeout, Msg: "no frame within " + timeout.String()}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
