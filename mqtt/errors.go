package mqtt

import (
	"errors"
	"fmt"
)

// ErrClientClosed is returned by Publish, Subscribe, Unsubscribe, or
// Disconnect when the packet they built is handed to the write side
// after Disconnect has already flushed and stopped it. A call that
// starts after Disconnect has returned fails earlier, with a StateError
// wrapping clientstate.ErrNotConnected.
var ErrClientClosed = errors.New("mqtt: client closed")

// ErrReceiveTimeout is returned when no CONNACK or PINGRESP arrived from
// the broker within the receive timeout (by default one and a half
// keep-alive intervals); other inbound packets do not extend that
// deadline.
var ErrReceiveTimeout = errors.New("mqtt: server unresponsive, receive timeout exceeded")

// CodecError wraps a failure from the internal/wire or internal/packets
// layers: a malformed packet received from, or an encoding failure while
// writing to, the wire.
type CodecError struct {
	Op     string
	Parent error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("mqtt: codec error during %s: %s", e.Op, e.Parent)
}

func (e *CodecError) Unwrap() error { return e.Parent }

// StateError wraps a failure from the clientstate protocol state
// machine: an operation attempted out of order, or an unexpected or
// unsolicited packet received from the broker.
type StateError struct {
	Op     string
	Parent error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("mqtt: protocol state error during %s: %s", e.Op, e.Parent)
}

func (e *StateError) Unwrap() error { return e.Parent }

// A broker rejection surfaces as a StateError wrapping a
// *clientstate.ReasonError; callers use errors.As to recover the
// specific reason code and the operation it was returned for.
