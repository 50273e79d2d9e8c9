// File: api/handler.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Handler consumes one payload handed over by a dispatching component,
// such as the configuration snapshot a store delivers on hot reload.
// The returned error is the dispatcher's to classify.
type Handler interface {
	Handle(data any) error
}
