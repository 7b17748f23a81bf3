package upstream

import "fmt"

// The forwarder distinguishes three failure domains so the controllers can map
// each one to the right status without re-inspecting upstream responses:
// transport (backend unreachable), protocol (backend reachable, body not JSON)
// and upstream-declared (backend reachable, failure status with parseable body).

// TransportError wraps a network-level failure. There is no upstream status to
// propagate; routes answer 502 with the underlying cause description.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("Cannot reach backend: %v", e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// ProtocolError means the backend answered but the body was not valid JSON.
// Status is the upstream status code; the route decides whether to propagate
// it (upstream already signalled failure) or report 502 (upstream claimed
// success with an unparseable body).
type ProtocolError struct {
	Status int
	Body   string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("invalid response from backend (status %d)", e.Status)
}

// UpstreamError is a failure the backend itself declared: a non-success status
// with a parseable body. Status and Message are propagated as-is.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return e.Message
}
