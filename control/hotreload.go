// File: control/hotreload.go
// Author: momentics <momentics@gmail.com>
//
// Well-known dynamic tuning keys and typed accessors for the snapshots
// a ConfigStore hands to its reload listeners.

package control

import "time"

// Tuning keys recognized by device reload listeners.
const (
	// KeyDevicePollInterval retunes the bound of one device poll.
	KeyDevicePollInterval = "device.poll_interval"
	// KeyDeviceIdleMax retunes the cap of the idle sleep between
	// empty polls.
	KeyDeviceIdleMax = "device.idle_max"
)

// DurationFrom reads a duration-valued key from a reload snapshot.
// Accepts a time.Duration, integer milliseconds or a parseable duration
// string; a missing key or an unusable value yields def.
func DurationFrom(snap map[string]any, key string, def time.Duration) time.Duration {
	v, ok := snap[key]
	if !ok {
		return def
	}
	switch d := v.(type) {
	case time.Duration:
		return d
	case int:
		return time.Duration(d) * time.Millisecond
	case int64:
		return time.Duration(d) * time.Millisecond
	case string:
		if p, err := time.ParseDuration(d); err == nil {
			return p
		}
	}
	return def
}
