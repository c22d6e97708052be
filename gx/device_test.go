package gx_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nasa-jpl/gxcam/gx"
	"github.com/nasa-jpl/gxcam/gx/sim"
)

// open returns a device on a fresh simulated SDK and a func to tear it down
func open(t *testing.T, color bool) (*gx.Device, *sim.SDK, func()) {
	t.Helper()
	sdk := sim.New(sim.NewCamera("SIM0", color))
	lib, err := gx.NewLibrary(sdk, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := lib.UpdateDeviceList(0); err != nil {
		t.Fatal(err)
	}
	p, _ := gx.BySN("SIM0", gx.AccessExclusive)
	d, err := lib.OpenDevice(p)
	if err != nil {
		t.Fatal(err)
	}
	return d, sdk, func() {
		d.Close()
		lib.Close()
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	d, sdk, done := open(t, false)
	defer done()
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	if d.Valid() || sdk.OpenHandles() != 0 {
		t.Error("expected the handle closed and reset")
	}
	if err := d.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}
	if _, err := d.ExposureTime(); !errors.Is(err, gx.StatusInvalidHandle) {
		t.Errorf("expected INVALID_HANDLE after close, got %v", err)
	}
}

func TestReleaseGivesUpOwnership(t *testing.T) {
	d, sdk, done := open(t, false)
	defer done()
	h := d.Release()
	if h == 0 || d.Valid() {
		t.Fatal("expected a non zero handle and an invalid device")
	}
	d.Close()
	if sdk.OpenHandles() != 1 {
		t.Error("close after release should not touch the handle")
	}
	if s := sdk.CloseDevice(h); s != gx.StatusSuccess {
		t.Errorf("released handle should still be open, got %v", s)
	}
}

func TestResetClosesTheDevice(t *testing.T) {
	d, sdk, done := open(t, false)
	defer done()
	if err := d.SetExposureTime(500); err != nil {
		t.Fatal(err)
	}
	if err := d.Reset(); err != nil {
		t.Fatal(err)
	}
	if d.Valid() || sdk.OpenHandles() != 0 {
		t.Error("expected reset to close the device")
	}
}

func TestExposureRoundTrip(t *testing.T) {
	d, _, done := open(t, false)
	defer done()
	if err := d.SetExposureDuration(2 * time.Millisecond); err != nil {
		t.Fatal(err)
	}
	us, err := d.ExposureTime()
	if err != nil {
		t.Fatal(err)
	}
	if us != 2000 {
		t.Errorf("expected 2000 us, got %f", us)
	}
	r, err := d.ExposureTimeRange()
	if err != nil {
		t.Fatal(err)
	}
	if r.Min >= r.Max {
		t.Errorf("degenerate range %+v", r)
	}
	err = d.SetExposureTime(r.Max * 2)
	if !errors.Is(err, gx.StatusOutOfRange) {
		t.Errorf("expected OUT_OF_RANGE, got %v", err)
	}
}

func TestGainSelectsChannel(t *testing.T) {
	d, _, done := open(t, true)
	defer done()
	if err := d.SetGain(gx.GainSelectorRed, 3); err != nil {
		t.Fatal(err)
	}
	if err := d.SetGain(gx.GainSelectorBlue, 6); err != nil {
		t.Fatal(err)
	}
	red, err := d.Gain(gx.GainSelectorRed)
	if err != nil {
		t.Fatal(err)
	}
	blue, err := d.Gain(gx.GainSelectorBlue)
	if err != nil {
		t.Fatal(err)
	}
	if red != 3 || blue != 6 {
		t.Errorf("expected red 3 and blue 6, got %f and %f", red, blue)
	}
}

func TestBalanceRatioConcurrentSelectors(t *testing.T) {
	d, _, done := open(t, true)
	defer done()
	d.SetBalanceRatio(gx.BalanceRatioSelectorRed, 2)
	d.SetBalanceRatio(gx.BalanceRatioSelectorBlue, 3)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if v, _ := d.BalanceRatio(gx.BalanceRatioSelectorRed); v != 2 {
				t.Errorf("red ratio read as %f", v)
			}
		}()
		go func() {
			defer wg.Done()
			if v, _ := d.BalanceRatio(gx.BalanceRatioSelectorBlue); v != 3 {
				t.Errorf("blue ratio read as %f", v)
			}
		}()
	}
	wg.Wait()
}

func TestMonoCameraLacksBalanceRatio(t *testing.T) {
	d, _, done := open(t, false)
	defer done()
	ok, err := d.IsBalanceRatioImplemented()
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("mono camera should not implement balance ratio")
	}
	_, err = d.BalanceRatio(gx.BalanceRatioSelectorRed)
	if err == nil {
		t.Error("expected an error reading balance ratio from a mono camera")
	}
}

func TestTimestampLatch(t *testing.T) {
	d, _, done := open(t, false)
	defer done()
	if err := d.LatchTimestamp(); err != nil {
		t.Fatal(err)
	}
	v, err := d.TimestampLatchValue()
	if err != nil {
		t.Fatal(err)
	}
	if v <= 0 {
		t.Errorf("expected a positive latched timestamp, got %d", v)
	}
	if err := d.LatchResetTimestamp(); err != nil {
		t.Fatal(err)
	}
	if err := d.LatchTimestamp(); err != nil {
		t.Fatal(err)
	}
	after, _ := d.TimestampLatchValue()
	if after >= v+int64(time.Second) {
		t.Errorf("expected the counter reset, got %d then %d", v, after)
	}
}

func TestCaptureFreeRun(t *testing.T) {
	d, _, done := open(t, false)
	defer done()
	d.SetAcquisitionFrameRate(200)
	d.SetExposureTime(100)
	if err := d.StartAcquisition(); err != nil {
		t.Fatal(err)
	}
	f, err := d.Capture(time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if f.Width != 640 || f.Height != 480 || f.PixelFormat != gx.PixelFormatMono8 {
		t.Errorf("unexpected frame geometry %dx%d %v", f.Width, f.Height, f.PixelFormat)
	}
	if len(f.Pixels()) != 640*480 {
		t.Errorf("expected %d bytes, got %d", 640*480, len(f.Pixels()))
	}
	if err := d.StopAcquisition(); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Capture(10 * time.Millisecond); !errors.Is(err, gx.StatusInvalidCall) {
		t.Errorf("expected INVALID_CALL capturing with the stream off, got %v", err)
	}
}

func TestSoftwareTrigger(t *testing.T) {
	d, _, done := open(t, false)
	defer done()
	if err := d.SetTriggerMode(gx.TriggerModeOn); err != nil {
		t.Fatal(err)
	}
	if err := d.SetTriggerSource(gx.TriggerSourceSoftware); err != nil {
		t.Fatal(err)
	}
	if err := d.StartAcquisition(); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Capture(100 * time.Millisecond); !errors.Is(err, gx.StatusTimeout) {
		t.Fatalf("expected a timeout without a trigger, got %v", err)
	}
	if err := d.TriggerCapture(); err != nil {
		t.Fatal(err)
	}
	f, err := d.Capture(time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if f.FrameID != 1 {
		t.Errorf("expected the first frame, got id %d", f.FrameID)
	}
}

func TestCaptureCallback(t *testing.T) {
	d, _, done := open(t, false)
	defer done()
	d.SetAcquisitionFrameRate(200)
	d.SetExposureTime(100)
	frames := make(chan *gx.Frame, 16)
	err := d.SetCaptureCallback(func(f *gx.Frame) {
		select {
		case frames <- f.Clone():
		default:
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.StartAcquisition(); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Capture(10 * time.Millisecond); !errors.Is(err, gx.StatusInvalidCall) {
		t.Errorf("expected INVALID_CALL capturing with a callback registered, got %v", err)
	}
	select {
	case f := <-frames:
		if f.Status != gx.FrameSuccess {
			t.Errorf("expected a complete frame, got status %d", f.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no frame delivered to the callback")
	}
	if err := d.Close(); err != nil {
		t.Errorf("close with the stream and callback active failed: %v", err)
	}
}

func TestFeatureLockedWhileStreaming(t *testing.T) {
	d, _, done := open(t, false)
	defer done()
	d.StartAcquisition()
	defer d.StopAcquisition()
	if err := d.SetWidth(320); !errors.Is(err, gx.StatusInvalidAccess) {
		t.Errorf("expected INVALID_ACCESS changing width while streaming, got %v", err)
	}
}

func TestPayloadFollowsGeometry(t *testing.T) {
	d, _, done := open(t, false)
	defer done()
	if err := d.SetWidth(320); err != nil {
		t.Fatal(err)
	}
	if err := d.SetPixelFormat(gx.PixelFormatMono12); err != nil {
		t.Fatal(err)
	}
	size, err := d.PayloadSize()
	if err != nil {
		t.Fatal(err)
	}
	if size != 320*480*2 {
		t.Errorf("expected payload %d, got %d", 320*480*2, size)
	}
}

func TestGenericFeatureAccess(t *testing.T) {
	d, _, done := open(t, false)
	defer done()
	if err := d.SetFeature("TriggerMode", "on"); err != nil {
		t.Fatal(err)
	}
	v, err := d.GetFeature("TriggerMode")
	if err != nil {
		t.Fatal(err)
	}
	if v != "On" {
		t.Errorf("expected On, got %v", v)
	}
	if err := d.SetFeature("Width", 160.0); err != nil {
		t.Fatal(err)
	}
	if err := d.SetFeature("Width", 160.5); err == nil {
		t.Error("expected a fractional width to be rejected")
	}
	if _, err := d.GetFeature("Nope"); !errors.As(err, &gx.ErrFeatureNotFound{}) {
		t.Errorf("expected ErrFeatureNotFound, got %v", err)
	}
	if err := d.Command("TimestampLatch"); err != nil {
		t.Error(err)
	}
	if err := d.Command("Width"); err == nil {
		t.Error("expected Command to refuse a non command feature")
	}
}

func TestConfigureReportsAllFailures(t *testing.T) {
	d, _, done := open(t, false)
	defer done()
	err := d.Configure(map[string]interface{}{
		"ExposureTime": 1500,
		"Gain":         -5.0,
		"Bogus":        1,
	})
	if err == nil {
		t.Fatal("expected errors from Configure")
	}
	us, _ := d.ExposureTime()
	if us != 1500 {
		t.Errorf("valid settings should still apply, exposure is %f", us)
	}
}
