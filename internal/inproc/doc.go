// File: internal/inproc/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package inproc is the in-process reference transport of hioload-mq.
//
// It implements the native socket primitive contract (api.Transport and
// api.RawSocket) over per-socket part queues inside one process: bounded
// FIFOs with a continuation flag per part, EAGAIN on empty and full,
// ETERM after context termination, readiness reporting through
// OptionEvents, and a context-wide multiplexing primitive so pollers get
// a real blocking wait. Pattern behavior covers what the engine needs:
// fan-out with prefix subscription filtering for PUB/XPUB, round-robin
// distribution for PUSH/DEALER/REQ/ROUTER, single-peer delivery for
// PAIR/REP.
//
// Identity-based ROUTER addressing is not modeled; devices relay frames
// verbatim, so envelope frames pass through untouched.
package inproc
