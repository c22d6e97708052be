// Package usbscan lists USB devices by vendor, to find USB3 Vision cameras
// the Galaxy SDK does not see (missing driver, wrong permissions, bad cable)
package usbscan

import (
	"fmt"
	"sort"

	"github.com/google/gousb"
)

// DahengVID is the USB vendor ID of Daheng Imaging
const DahengVID = 0x2ba2

// Info describes one USB device
type Info struct {
	Bus     int    `json:"bus" yaml:"Bus"`
	Address int    `json:"address" yaml:"Address"`
	Vendor  string `json:"vendor" yaml:"Vendor"`
	Product string `json:"product" yaml:"Product"`
	Speed   string `json:"speed" yaml:"Speed"`
}

func (i Info) String() string {
	return fmt.Sprintf("bus %03d device %03d: ID %s:%s, %s", i.Bus, i.Address, i.Vendor, i.Product, i.Speed)
}

// FromDesc converts a gousb descriptor to an Info
func FromDesc(desc *gousb.DeviceDesc) Info {
	return Info{
		Bus:     desc.Bus,
		Address: desc.Address,
		Vendor:  desc.Vendor.String(),
		Product: desc.Product.String(),
		Speed:   desc.Speed.String(),
	}
}

// Filter returns the descriptors of vendor vid, ordered by bus and address.
// A vid of 0 matches every device.
func Filter(descs []*gousb.DeviceDesc, vid gousb.ID) []Info {
	out := []Info{}
	for _, d := range descs {
		if vid == 0 || d.Vendor == vid {
			out = append(out, FromDesc(d))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Bus != out[j].Bus {
			return out[i].Bus < out[j].Bus
		}
		return out[i].Address < out[j].Address
	})
	return out
}

// Scan lists the USB devices of vendor vid.  Devices are not opened, so
// this works without permission to access them.
func Scan(vid gousb.ID) ([]Info, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()
	descs := []*gousb.DeviceDesc{}
	_, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		descs = append(descs, desc)
		return false
	})
	if err != nil {
		return nil, err
	}
	return Filter(descs, vid), nil
}
