// File: poller/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package poller blocks until one of a set of sockets is ready, a
// timeout elapses, or the owning transport terminates.
//
// Three backing strategies exist, selected per poll set at construction:
// a transport-provided multiplexing primitive, an OS-level descriptor
// wait where every socket exposes a raw descriptor, and a per-socket
// readiness probe loop for transports with neither. All three produce
// the same readiness results and timeout semantics; only the waiting
// mechanism differs.
package poller
