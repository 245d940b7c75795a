// Package framer implements the MQTT v5 packet framer (L3): reading
// exactly one complete control packet off a byte stream into a
// caller-supplied fixed buffer, and encoding a packet into such a
// buffer for a single transport write.
package framer

import "errors"

// ErrInvalidFirstHeaderByte is returned when the fixed header's first
// byte encodes a type nibble outside 1-15, or a Publish with the
// reserved QoS value 3.
var ErrInvalidFirstHeaderByte = errors.New("framer: invalid first header byte")

// ErrPacketTooLargeForBuffer is returned when the fixed header plus the
// declared remaining length would not fit in the caller-supplied buffer.
var ErrPacketTooLargeForBuffer = errors.New("framer: packet too large for buffer")

// ErrIncorrectPacketLength is returned when, after dispatching to the
// per-type decoder, the reader's position does not land exactly on the
// packet's declared boundary.
var ErrIncorrectPacketLength = errors.New("framer: decoded packet length does not match declared remaining length")
