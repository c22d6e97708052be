package util_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/nasa-jpl/gxcam/util"
)

func ExampleParseDuration() {
	d, _ := util.ParseDuration("1.5")
	fmt.Println(d)
	// Output: 1.5s
}

func TestAllElementsNumbers(t *testing.T) {
	for _, s := range []string{"1", "25", "0.5"} {
		if !util.AllElementsNumbers(s) {
			t.Errorf("expected %q to be all numbers", s)
		}
	}
	for _, s := range []string{"", "25ms", "-1", "1e3"} {
		if util.AllElementsNumbers(s) {
			t.Errorf("expected %q not to be all numbers", s)
		}
	}
}

func TestParseDurationKeepsUnits(t *testing.T) {
	d, err := util.ParseDuration("250us")
	if err != nil {
		t.Fatal(err)
	}
	if d != 250*time.Microsecond {
		t.Errorf("expected 250us, got %v", d)
	}
}

func TestClampHigh(t *testing.T) {
	var (
		low   = 0.
		high  = 10.
		input = 20.
	)
	clamped := util.Clamp(input, low, high)
	if clamped != high {
		t.Errorf("expected out of range value %f to be clipped to %f < x < %f, got %f", input, low, high, clamped)
	}
}

func TestClampLow(t *testing.T) {
	var (
		low   = 0.
		high  = 10.
		input = -1.
	)
	clamped := util.Clamp(input, low, high)
	if clamped != low {
		t.Errorf("expected out of range value %f to be clipped to %f < x < %f, got %f", input, low, high, clamped)
	}
}

func TestSecsToDuration(t *testing.T) {
	var dur time.Duration = 123456789
	secs := dur.Seconds()
	out := util.SecsToDuration(secs)
	if out != dur {
		t.Errorf("expected SecsToDuration to round trip, output %v != expected %v", out, dur)
	}
}
