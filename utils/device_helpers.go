package utils

import (
	"github.com/notargets/gocca"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// DefaultBackends lists the device properties CreateDevice tries, in order
var DefaultBackends = []string{
	`{"mode": "OpenMP"}`,
	`{"mode": "CUDA", "device_id": 0}`,
	`{"mode": "Serial"}`,
}

// CreateDevice creates the first device that can be opened from props,
// preferring parallel backends. With no props the DefaultBackends are tried.
func CreateDevice(props ...string) (*gocca.OCCADevice, error) {
	if len(props) == 0 {
		props = DefaultBackends
	}
	var lastErr error
	for _, p := range props {
		device, err := gocca.NewDevice(p)
		if err == nil {
			klog.V(1).Infof("created %s device", device.Mode())
			return device, nil
		}
		klog.V(2).Infof("device %s unavailable: %v", p, err)
		lastErr = err
	}
	return nil, errors.Wrapf(lastErr, "no device could be created from %d backends", len(props))
}
