package packets

import "errors"

// ErrInvalidRetainHandlingValue is returned when a subscription options
// byte's retain-handling bits (4-5) encode the reserved value 3.
var ErrInvalidRetainHandlingValue = errors.New("packets: invalid retain handling value")

// ErrInvalidMaximumQoSValue is returned when a subscription options
// byte's maximum-QoS bits (0-1) encode the reserved value 3.
var ErrInvalidMaximumQoSValue = errors.New("packets: invalid maximum QoS value")

// ErrReservedBitsSet is returned when a subscription options byte's
// reserved bits (6-7) are nonzero.
var ErrReservedBitsSet = errors.New("packets: reserved bits set in subscription options")

// RetainHandling controls whether the server sends retained messages at
// subscription time.
type RetainHandling uint8

const (
	// RetainHandlingSend sends retained messages at subscribe time.
	RetainHandlingSend RetainHandling = 0
	// RetainHandlingSendIfNew sends retained messages only for a new subscription.
	RetainHandlingSendIfNew RetainHandling = 1
	// RetainHandlingDoNotSend never sends retained messages for this subscription.
	RetainHandlingDoNotSend RetainHandling = 2
)

// SubscriptionOptions is the one-byte options field carried by each
// filter in a SUBSCRIBE request (OASIS MQTT v5.0 section 3.8.3.1).
type SubscriptionOptions struct {
	MaximumQoS        QoS
	NoLocal           bool
	RetainAsPublished bool
	RetainHandling    RetainHandling
}

// Encode packs the options into a single byte.
func (o SubscriptionOptions) Encode() byte {
	b := byte(o.MaximumQoS & 0x03)
	if o.NoLocal {
		b |= 1 << 2
	}
	if o.RetainAsPublished {
		b |= 1 << 3
	}
	b |= byte(o.RetainHandling&0x03) << 4
	return b
}

// DecodeSubscriptionOptions unpacks a subscription options byte,
// rejecting an out-of-range maximum-QoS or retain-handling value, or
// nonzero reserved bits.
func DecodeSubscriptionOptions(b byte) (SubscriptionOptions, error) {
	maximumQoS := QoS(b & 0x03)
	if !maximumQoS.Valid() {
		return SubscriptionOptions{}, ErrInvalidMaximumQoSValue
	}
	retainHandling := (b >> 4) & 0x03
	if retainHandling == 3 {
		return SubscriptionOptions{}, ErrInvalidRetainHandlingValue
	}
	if b&0xC0 != 0 {
		return SubscriptionOptions{}, ErrReservedBitsSet
	}
	return SubscriptionOptions{
		MaximumQoS:        maximumQoS,
		NoLocal:           b&(1<<2) != 0,
		RetainAsPublished: b&(1<<3) != 0,
		RetainHandling:    RetainHandling(retainHandling),
	}, nil
}
