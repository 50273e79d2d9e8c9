// File: control/config.go
// Author: momentics <momentics@gmail.com>
//
// Thread-safe configuration store with dynamic update and hot-reload
// propagation. Devices register as reload listeners to pick up tuning
// changes (poll interval, idle sleep) between loop iterations.

package control

import (
	"sync"

	"github.com/momentics/hioload-mq/api"
)

// ConfigStore is a dynamic key/value map with atomic snapshot and listener support.
type ConfigStore struct {
	mu        sync.RWMutex
	config    map[string]any
	listeners []api.Handler
}

// NewConfigStore initializes a new config store with empty data.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{
		config:    make(map[string]any),
		listeners: make([]api.Handler, 0),
	}
}

// GetSnapshot returns a copy of all config values.
func (cs *ConfigStore) GetSnapshot() map[string]any {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.snapshotLocked()
}

func (cs *ConfigStore) snapshotLocked() map[string]any {
	snap := make(map[string]any, len(cs.config))
	for k, v := range cs.config {
		snap[k] = v
	}
	return snap
}

// SetConfig merges new values and synchronously hands the merged
// snapshot to every reload listener. A listener's error does not block
// delivery to the others.
func (cs *ConfigStore) SetConfig(newCfg map[string]any) {
	cs.mu.Lock()
	for k, v := range newCfg {
		cs.config[k] = v
	}
	snap := cs.snapshotLocked()
	hs := make([]api.Handler, len(cs.listeners))
	copy(hs, cs.listeners)
	cs.mu.Unlock()
	for _, h := range hs {
		_ = h.Handle(snap)
	}
}

// OnReload registers a listener handed the merged snapshot after every
// SetConfig. Delivery is synchronous; a listener must not call back
// into the store from Handle.
func (cs *ConfigStore) OnReload(h api.Handler) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, h)
}
