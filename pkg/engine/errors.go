package engine

import "fmt"

// ConnectionError indicates the transport could not be established or
// maintained: TLS or auth failure, network failure, or a timeout.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("engine connection error during %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// NewConnectionError creates a ConnectionError for the given operation.
func NewConnectionError(op string, err error) *ConnectionError {
	return &ConnectionError{Op: op, Err: err}
}

// ProtocolError indicates a reply did not conform to the expected shape for
// its method, e.g. a missing result key.
type ProtocolError struct {
	Method string
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("engine protocol error in %s reply: %s", e.Method, e.Reason)
}

// NewProtocolError creates a ProtocolError for the given method.
func NewProtocolError(method, reason string) *ProtocolError {
	return &ProtocolError{Method: method, Reason: reason}
}
