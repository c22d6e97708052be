package gx_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/nasa-jpl/gxcam/gx"
	"github.com/nasa-jpl/gxcam/gx/sim"
)

func TestLibraryReferenceCounting(t *testing.T) {
	sdk := sim.New()
	a, err := gx.NewLibrary(sdk, true)
	if err != nil {
		t.Fatal(err)
	}
	b, err := gx.NewLibrary(sdk, false)
	if err != nil {
		t.Fatal(err)
	}
	if b.IsRefer() || !b.IsOpen() {
		t.Error("an unopened library should not refer but see the SDK open")
	}
	if err := b.Open(); err != nil {
		t.Fatal(err)
	}
	if err := b.Open(); err != nil {
		t.Fatal(err)
	}
	if a.ReferenceCount() != 2 {
		t.Errorf("expected 2 references, got %d", a.ReferenceCount())
	}
	if sdk.InitCalls != 1 {
		t.Errorf("expected GXInitLib once, got %d", sdk.InitCalls)
	}
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
	if !sdk.Initialized() {
		t.Error("SDK closed while a reference remains")
	}
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if sdk.Initialized() || sdk.CloseCalls != 1 {
		t.Errorf("expected GXCloseLib once after the last close, initialized=%v closes=%d", sdk.Initialized(), sdk.CloseCalls)
	}
	if a.IsOpen() || a.ReferenceCount() != 0 {
		t.Error("count should be back to zero")
	}
}

func TestLibrariesOverDifferentSDKsAreIndependent(t *testing.T) {
	s1, s2 := sim.New(), sim.New()
	a, _ := gx.NewLibrary(s1, true)
	b, _ := gx.NewLibrary(s2, true)
	defer b.Close()
	a.Close()
	if !s2.Initialized() {
		t.Error("closing one SDK closed another")
	}
}

func TestDevicesAndSubnets(t *testing.T) {
	far := sim.NewCamera("FAR", false)
	far.OtherSubnet = true
	sdk := sim.New(sim.NewCamera("NEAR", true), far)
	lib, _ := gx.NewLibrary(sdk, true)
	defer lib.Close()

	infos, err := lib.Devices(100 * time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 1 || infos[0].SerialNumber != "NEAR" {
		t.Errorf("expected only the camera on the subnet, got %+v", infos)
	}
	n, err := lib.UpdateAllDeviceList(100 * time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2 devices on the whole network, got %d", n)
	}
	info, err := lib.DeviceInfo(2)
	if err != nil {
		t.Fatal(err)
	}
	if info.SerialNumber != "FAR" || info.Class != gx.DeviceClassU3V {
		t.Errorf("unexpected info %+v", info)
	}
	if _, err := lib.DeviceInfo(0); err != gx.ErrInvalidIndex {
		t.Errorf("expected ErrInvalidIndex for index 0, got %v", err)
	}
}

func TestOpenDeviceByIndex(t *testing.T) {
	sdk := sim.New(sim.NewCamera("A", false), sim.NewCamera("B", false))
	lib, _ := gx.NewLibrary(sdk, true)
	defer lib.Close()
	lib.UpdateDeviceList(0)
	d, err := lib.OpenDeviceByIndex(2)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	sn, err := d.SerialNumber()
	if err != nil {
		t.Fatal(err)
	}
	if sn != "B" {
		t.Errorf("expected device B at index 2, got %s", sn)
	}
	if _, err := lib.OpenDeviceByIndex(0); err != gx.ErrInvalidIndex {
		t.Errorf("expected ErrInvalidIndex, got %v", err)
	}
}

func TestExclusiveAccess(t *testing.T) {
	sdk := sim.New(sim.NewCamera("A", false))
	lib, _ := gx.NewLibrary(sdk, true)
	defer lib.Close()
	lib.UpdateDeviceList(0)
	p, _ := gx.BySN("A", gx.AccessExclusive)
	d, err := lib.OpenDevice(p)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	_, err = lib.OpenDevice(p)
	if !errors.Is(err, gx.StatusInvalidAccess) {
		t.Errorf("expected INVALID_ACCESS opening twice, got %v", err)
	}
}

func TestOpenWithRetryWaitsOutABusyCamera(t *testing.T) {
	cam := sim.NewCamera("BUSY", false)
	cam.FailOpens = 2
	sdk := sim.New(cam)
	lib, _ := gx.NewLibrary(sdk, true)
	defer lib.Close()
	p, _ := gx.BySN("BUSY", gx.AccessExclusive)
	b := &backoff.ExponentialBackOff{
		InitialInterval: time.Millisecond,
		Multiplier:      1,
		MaxInterval:     time.Millisecond,
		MaxElapsedTime:  time.Second,
		Clock:           backoff.SystemClock,
	}
	d, err := lib.OpenWithRetry(context.Background(), p, 0, b)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	if !d.Valid() {
		t.Error("expected a valid device")
	}
}

func TestOpenWithRetryGivesUpOnPermanentErrors(t *testing.T) {
	cam := sim.NewCamera("BAD", false)
	cam.FailOpens = 100
	cam.FailStatus = gx.StatusInvalidParameter
	lib, _ := gx.NewLibrary(sim.New(cam), true)
	defer lib.Close()
	p, _ := gx.BySN("BAD", gx.AccessExclusive)
	_, err := lib.OpenWithRetry(context.Background(), p, 0, gx.DefaultOpenBackoff())
	if !errors.Is(err, gx.StatusInvalidParameter) {
		t.Errorf("expected the permanent error unwrapped, got %v", err)
	}
	if cam.FailOpens != 99 {
		t.Errorf("expected a single attempt, %d failures remain", cam.FailOpens)
	}
}

func TestOpenWithRetryHonorsContext(t *testing.T) {
	lib, _ := gx.NewLibrary(sim.New(), true)
	defer lib.Close()
	p, _ := gx.BySN("NOBODY", gx.AccessExclusive)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := lib.OpenWithRetry(ctx, p, 0, nil)
	if err == nil {
		t.Fatal("expected an error opening a camera that is not there")
	}
	if time.Since(start) > 5*time.Second {
		t.Error("retry loop ignored the context")
	}
}
