package gx_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/nasa-jpl/gxcam/gx"
	"github.com/nasa-jpl/gxcam/gx/sim"
)

func ExampleStatus_Error() {
	fmt.Println(gx.StatusTimeout)
	// Output: -14 - GX_STATUS_TIMEOUT
}

func TestStatusUnknownCode(t *testing.T) {
	s := gx.Status(-99).Error()
	if !strings.Contains(s, "UNKNOWN") {
		t.Errorf("expected an unknown code to say so, got %s", s)
	}
}

func TestErrorUnwrapsToStatus(t *testing.T) {
	err := fmt.Errorf("opening: %w", &gx.Error{Op: "GXOpenDevice", Code: gx.StatusOffline})
	if !errors.Is(err, gx.StatusOffline) {
		t.Error("expected errors.Is to find the status through the wrap")
	}
	if gx.StatusOf(err) != gx.StatusOffline {
		t.Errorf("expected StatusOf to be OFFLINE, got %v", gx.StatusOf(err))
	}
}

func TestStatusOfForeignErrors(t *testing.T) {
	if gx.StatusOf(nil) != gx.StatusSuccess {
		t.Error("nil error should be success")
	}
	if gx.StatusOf(errors.New("boom")) != gx.StatusError {
		t.Error("foreign error should be GX_STATUS_ERROR")
	}
}

func TestLastErrorTwoPass(t *testing.T) {
	sdk := sim.New()
	if _, s := sdk.UpdateDeviceList(10); s != gx.StatusNotInitAPI {
		t.Fatalf("expected NOT_INIT_API before InitLib, got %v", s)
	}
	code, msg, err := gx.LastError(sdk)
	if err != nil {
		t.Fatal(err)
	}
	if code != gx.StatusNotInitAPI {
		t.Errorf("expected last code NOT_INIT_API, got %v", code)
	}
	if msg != "library is not initialized" {
		t.Errorf("unexpected last error text %q", msg)
	}
}

func TestErrorCarriesLastErrorText(t *testing.T) {
	lib, err := gx.NewLibrary(sim.New(sim.NewCamera("SN1", false)), true)
	if err != nil {
		t.Fatal(err)
	}
	defer lib.Close()
	if _, err := lib.UpdateDeviceList(0); err != nil {
		t.Fatal(err)
	}
	p, _ := gx.BySN("missing", gx.AccessExclusive)
	_, err = lib.OpenDevice(p)
	var gerr *gx.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected a *gx.Error, got %T %v", err, err)
	}
	if gerr.Op != "GXOpenDevice" || gerr.Code != gx.StatusNotFoundDevice {
		t.Errorf("unexpected error %+v", gerr)
	}
	if !strings.Contains(gerr.Error(), "no device matches") {
		t.Errorf("expected the SDK description in the message, got %s", gerr.Error())
	}
}

func TestStubReportsNoNativeSDK(t *testing.T) {
	// the tests are built without the gxiapi tag
	lib, err := gx.NewLibrary(gx.Native(), true)
	if err == nil {
		lib.Close()
		t.Skip("linked against the Galaxy SDK")
	}
	if !errors.Is(err, gx.ErrNoNativeSDK) {
		t.Errorf("expected ErrNoNativeSDK, got %v", err)
	}
	if lib.IsRefer() {
		t.Error("a failed open must not take a reference")
	}
}
