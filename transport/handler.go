// File: transport/handler.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

// Handler processes one completed inbound application message.
// A non-nil error tears the session down.
type Handler interface {
	HandleMessage(s *Session, data []byte, isText bool) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(s *Session, data []byte, isText bool) error

// HandleMessage implements Handler.
func (f HandlerFunc) HandleMessage(s *Session, data []byte, isText bool) error {
	return f(s, data, isText)
}
