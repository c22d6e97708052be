package sim_test

import (
	"testing"

	"github.com/nasa-jpl/gxcam/gx"
	"github.com/nasa-jpl/gxcam/gx/sim"
)

func TestCallsNeedInit(t *testing.T) {
	s := sim.New(sim.NewCamera("A", false))
	if _, st := s.OpenDeviceByIndex(1); st != gx.StatusNotInitAPI {
		t.Errorf("expected NOT_INIT_API, got %v", st)
	}
}

func TestReadOnlyHandles(t *testing.T) {
	s := sim.New(sim.NewCamera("A", false))
	s.InitLib()
	defer s.CloseLib()
	s.UpdateDeviceList(0)
	ro := gx.NewOpenParam("A", gx.OpenSN, gx.AccessReadOnly)
	h1, st := s.OpenDevice(ro)
	if st != gx.StatusSuccess {
		t.Fatal(st)
	}
	if _, st := s.OpenDevice(ro); st != gx.StatusSuccess {
		t.Errorf("two read only handles should coexist, got %v", st)
	}
	if st := s.SetFloat(h1, gx.FloatExposureTime, 100); st != gx.StatusInvalidAccess {
		t.Errorf("expected INVALID_ACCESS writing through a read only handle, got %v", st)
	}
	if st := s.StreamOn(h1); st != gx.StatusInvalidAccess {
		t.Errorf("expected INVALID_ACCESS streaming through a read only handle, got %v", st)
	}
}

func TestKindMismatch(t *testing.T) {
	s := sim.New(sim.NewCamera("A", false))
	s.InitLib()
	defer s.CloseLib()
	s.UpdateDeviceList(0)
	h, _ := s.OpenDeviceByIndex(1)
	if _, st := s.GetInt(h, gx.FloatGain); st != gx.StatusErrorType {
		t.Errorf("expected ERROR_TYPE, got %v", st)
	}
	if _, st := s.GetFloat(h, gx.FloatGain); st != gx.StatusSuccess {
		t.Errorf("gain should read, got %v", st)
	}
}

func TestDisable(t *testing.T) {
	c := sim.NewCamera("A", false)
	c.Disable(gx.FloatExposureDelay)
	s := sim.New(c)
	s.InitLib()
	defer s.CloseLib()
	s.UpdateDeviceList(0)
	h, _ := s.OpenDeviceByIndex(1)
	ok, st := s.IsImplemented(h, gx.FloatExposureDelay)
	if st != gx.StatusSuccess || ok {
		t.Errorf("expected a disabled feature to be unimplemented, got %v %v", ok, st)
	}
	if _, st := s.GetFloat(h, gx.FloatExposureDelay); st != gx.StatusNotImplemented {
		t.Errorf("expected NOT_IMPLEMENTED, got %v", st)
	}
}

func TestFramesCarryTheRamp(t *testing.T) {
	s := sim.New(sim.NewCamera("A", false))
	s.InitLib()
	defer s.CloseLib()
	s.UpdateDeviceList(0)
	h, _ := s.OpenDeviceByIndex(1)
	s.SetFloat(h, gx.FloatAcquisitionFrameRate, 200)
	s.SetFloat(h, gx.FloatExposureTime, 100)
	if st := s.StreamOn(h); st != gx.StatusSuccess {
		t.Fatal(st)
	}
	f := gx.NewFrame(640 * 480)
	if st := s.GetImage(h, f, 1000); st != gx.StatusSuccess {
		t.Fatal(st)
	}
	// pixel (x, y) holds x+y+frameID
	if got, want := f.Data[3*640+2], byte(5+f.FrameID); got != want {
		t.Errorf("expected %d at (2, 3), got %d", want, got)
	}
	if st := s.GetImage(h, gx.NewFrame(10), 1000); st != gx.StatusInvalidParameter {
		t.Errorf("expected INVALID_PARAMETER for a short buffer, got %v", st)
	}
}
