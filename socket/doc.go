// File: socket/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package socket wraps one native socket handle with the retry and
// error-classification engine of hioload-mq.
//
// Every native call runs inside a loop that classifies the returned
// status: EINTR retries silently, EAGAIN surfaces as a non-fatal
// would-block result (send calls busy-retry it with a scheduling yield
// unless FlagDontWait is set), ETERM propagates as the clean-shutdown
// signal, endpoint errors surface as non-fatal results, and anything
// unclassified escalates as a fatal contract fault.
//
// A Socket is owned by a single logical caller at a time. No internal
// locking is performed; safety is ownership-based.
package socket
