// File: control/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package control carries the runtime management surfaces of hioload-mq:
// a thread-safe configuration store with hot-reload propagation and a
// Prometheus-backed traffic metrics registry.
package control
