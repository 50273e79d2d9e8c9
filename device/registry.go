// File: device/registry.go
// Author: momentics <momentics@gmail.com>
//
// Registry of live devices, keyed by instance id.

package device

import (
	cmap "github.com/orcaman/concurrent-map/v2"
)

// Registry tracks devices across goroutines. The facade registers every
// device it hands out so shutdown can stop them all.
type Registry struct {
	devices cmap.ConcurrentMap[string, *Device]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{devices: cmap.New[*Device]()}
}

// Add tracks a device under its id.
func (r *Registry) Add(d *Device) {
	r.devices.Set(d.ID(), d)
}

// Remove forgets a device.
func (r *Registry) Remove(id string) {
	r.devices.Remove(id)
}

// Get looks up a device by id.
func (r *Registry) Get(id string) (*Device, bool) {
	return r.devices.Get(id)
}

// Len reports the number of tracked devices.
func (r *Registry) Len() int { return r.devices.Count() }

// CloseAll stops and closes every tracked device, forgetting them. The
// first close error is returned.
func (r *Registry) CloseAll() error {
	var first error
	for item := range r.devices.IterBuffered() {
		if err := item.Val.Close(); err != nil && first == nil {
			first = err
		}
		r.devices.Remove(item.Key)
	}
	return first
}
