// Package wire implements the MQTT v5 primitive scalar encodings (OASIS
// MQTT Version 5.0 section 1.5): fixed-width integers, the variable byte
// integer, length-prefixed UTF-8 strings and binary data, string pairs,
// and the property-list framing used by every packet's variable header.
//
// Reader and Writer operate exclusively against caller-supplied byte
// slices. Reader's binary accessors return subslices of the input buffer
// rather than copies, so a caller that needs those bytes to outlive the
// buffer must copy them itself; GetString returns a Go string, which is
// a copy.
package wire

import "errors"

// Reader errors. A Reader that returns one of these is no longer valid;
// its position may be left mid-field and it must be discarded.
var (
	ErrInsufficientData                     = errors.New("wire: insufficient data")
	ErrInvalidUTF8                          = errors.New("wire: invalid utf-8 string")
	ErrNullCharacterInString                = errors.New("wire: null character in string")
	ErrInvalidVariableByteIntegerEncoding   = errors.New("wire: invalid variable byte integer encoding")
	ErrInvalidBooleanValue                  = errors.New("wire: invalid boolean value")
	ErrUnknownReasonCode                    = errors.New("wire: unknown reason code")
)

// Writer errors.
var (
	ErrOverflow                   = errors.New("wire: buffer overflow")
	ErrVariableByteIntegerTooLarge = errors.New("wire: variable byte integer too large")
	ErrStringTooLarge             = errors.New("wire: string too large")
	ErrDataTooLarge               = errors.New("wire: binary data too large")
)

// MaxVarInt is the largest value a 4-byte variable byte integer can hold.
const MaxVarInt = 268_435_455

// MaxLengthPrefixed is the largest length a u16-length-prefixed string or
// binary field can declare.
const MaxLengthPrefixed = 65535
