package usbscan

import (
	"testing"

	"github.com/google/gousb"
)

func TestFilter(t *testing.T) {
	descs := []*gousb.DeviceDesc{
		{Bus: 2, Address: 7, Vendor: DahengVID, Product: 0x4d55, Speed: gousb.SpeedSuper},
		{Bus: 1, Address: 3, Vendor: 0x1d6b, Product: 0x0003},
		{Bus: 1, Address: 9, Vendor: DahengVID, Product: 0x4d55, Speed: gousb.SpeedHigh},
	}
	out := Filter(descs, DahengVID)
	if len(out) != 2 {
		t.Fatalf("expected 2 Daheng devices, got %d", len(out))
	}
	if out[0].Bus != 1 || out[0].Address != 9 {
		t.Errorf("expected bus 1 address 9 first, got %+v", out[0])
	}
	if out[1].Vendor != "2ba2" || out[1].Product != "4d55" {
		t.Errorf("expected ID 2ba2:4d55, got %s:%s", out[1].Vendor, out[1].Product)
	}
	if all := Filter(descs, 0); len(all) != 3 {
		t.Errorf("expected vid 0 to match all 3 devices, got %d", len(all))
	}
}
