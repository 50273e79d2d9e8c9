// File: protocol/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package protocol implements the message data model of hioload-mq:
// Frame, an exclusively owned byte buffer carrying one message part, and
// Message, an ordered sequence of frames forming one logical multi-part
// message.
//
// Ownership is explicit and never shared. Moving a frame into a Message
// or handing it to a send call transfers ownership; the receiving side
// becomes responsible for releasing it exactly once. Dismiss disables
// the release path when ownership has already crossed into the native
// transport.
package protocol
