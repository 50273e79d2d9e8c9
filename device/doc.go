// File: device/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package device runs background relays that bridge a front-end socket
// to a back-end socket.
//
// A device owns both sockets exclusively, applies each side's endpoint
// and subscription setup exactly once, then polls both for readability
// with a bounded interval and hands ready sockets to handler callbacks.
// The poll interval is the cooperative cancellation point: a stop
// request is observed only between poll calls, so worst-case shutdown
// latency equals one interval. ETERM from the transport unwinds the
// device cleanly; an empty poll sleeps briefly and retries forever.
package device
