package packets

import (
	"errors"
	"fmt"

	"github.com/gonzalop/mqttv5/internal/wire"
)

// Property identifiers defined in MQTT v5.0 section 2.2.2.2.
const (
	PropPayloadFormatIndicator          uint8 = 0x01
	PropMessageExpiryInterval           uint8 = 0x02
	PropContentType                     uint8 = 0x03
	PropResponseTopic                   uint8 = 0x08
	PropCorrelationData                 uint8 = 0x09
	PropSubscriptionIdentifier          uint8 = 0x0B
	PropSessionExpiryInterval           uint8 = 0x11
	PropAssignedClientIdentifier        uint8 = 0x12
	PropServerKeepAlive                 uint8 = 0x13
	PropAuthenticationMethod            uint8 = 0x15
	PropAuthenticationData              uint8 = 0x16
	PropRequestProblemInformation       uint8 = 0x17
	PropWillDelayInterval                uint8 = 0x18
	PropRequestResponseInformation      uint8 = 0x19
	PropResponseInformation             uint8 = 0x1A
	PropServerReference                 uint8 = 0x1C
	PropReasonString                    uint8 = 0x1F
	PropReceiveMaximum                  uint8 = 0x21
	PropTopicAliasMaximum               uint8 = 0x22
	PropTopicAlias                      uint8 = 0x23
	PropMaximumQoS                       uint8 = 0x24
	PropRetainAvailable                  uint8 = 0x25
	PropUserProperty                    uint8 = 0x26
	PropMaximumPacketSize                uint8 = 0x27
	PropWildcardSubscriptionAvailable    uint8 = 0x28
	PropSubscriptionIdentifierAvailable  uint8 = 0x29
	PropSharedSubscriptionAvailable      uint8 = 0x2A
)

// Presence bits, one per optional scalar/string/binary property. Properties
// that can repeat (UserProperty, SubscriptionIdentifier) are tracked by
// slice length instead.
const (
	PresPayloadFormatIndicator   uint32 = 1 << iota
	PresMessageExpiryInterval
	PresContentType
	PresResponseTopic
	PresCorrelationData
	PresSessionExpiryInterval
	PresAssignedClientIdentifier
	PresServerKeepAlive
	PresAuthenticationMethod
	PresAuthenticationData
	PresRequestProblemInformation
	PresWillDelayInterval
	PresRequestResponseInformation
	PresResponseInformation
	PresServerReference
	PresReasonString
	PresReceiveMaximum
	PresTopicAliasMaximum
	PresTopicAlias
	PresMaximumQoS
	PresRetainAvailable
	PresMaximumPacketSize
	PresWildcardSubscriptionAvailable
	PresSubscriptionIdentifierAvailable
	PresSharedSubscriptionAvailable
)

// ErrUnknownPropertyIdentifier is returned when a property list contains
// an identifier byte not defined by MQTT v5.0.
var ErrUnknownPropertyIdentifier = errors.New("packets: unknown property identifier")

// ErrPropertyListOverflow is returned when a repeatable property
// (user property or subscription identifier) exceeds the bounded
// container's capacity.
var ErrPropertyListOverflow = errors.New("packets: property list capacity exceeded")

// ErrIncorrectPropertyLength is returned when a single property's value
// reads past the property list's declared end position.
var ErrIncorrectPropertyLength = errors.New("packets: property read past declared length")

// UserProperty is an arbitrary client/server-defined key-value pair.
type UserProperty struct {
	Key   string
	Value string
}

// Properties holds every MQTT v5.0 property a packet may carry. Presence
// of optional scalar/string/binary fields is tracked by the Presence
// bitmask rather than pointers, so a Properties value never allocates
// on its own account. UserProperties and SubscriptionIdentifier are
// bounded slices: their capacity is fixed at construction via
// NewProperties and exceeding it is a decode/append error rather than a
// silent reallocation.
type Properties struct {
	Presence uint32

	PayloadFormatIndicator byte
	MessageExpiryInterval  uint32
	ContentType            string
	ResponseTopic          string
	CorrelationData        []byte

	SessionExpiryInterval    uint32
	AssignedClientIdentifier string
	ServerKeepAlive          uint16

	AuthenticationMethod      string
	AuthenticationData        []byte
	RequestProblemInformation byte
	WillDelayInterval         uint32

	RequestResponseInformation byte
	ResponseInformation        string
	ServerReference            string
	ReasonString               string

	ReceiveMaximum    uint16
	TopicAliasMaximum uint16
	TopicAlias        uint16
	MaximumQoS        byte
	RetainAvailable   bool
	MaximumPacketSize uint32

	WildcardSubscriptionAvailable   bool
	SubscriptionIdentifierAvailable bool
	SharedSubscriptionAvailable     bool

	UserProperties          []UserProperty
	SubscriptionIdentifier  []int
}

// NewProperties returns an empty Properties with its two repeatable
// fields pre-allocated to the given capacities. A capacity of 0 means
// that property is not expected/allowed to appear.
func NewProperties(userPropertyCap, subscriptionIdentifierCap int) *Properties {
	p := &Properties{}
	if userPropertyCap > 0 {
		p.UserProperties = make([]UserProperty, 0, userPropertyCap)
	}
	if subscriptionIdentifierCap > 0 {
		p.SubscriptionIdentifier = make([]int, 0, subscriptionIdentifierCap)
	}
	return p
}

// Has reports whether the bit identified by pres is present.
func (p *Properties) Has(pres uint32) bool { return p.Presence&pres != 0 }

// AddUserProperty appends a user property, failing with
// ErrPropertyListOverflow if the bounded slice is already at capacity.
func (p *Properties) AddUserProperty(key, value string) error {
	if len(p.UserProperties) == cap(p.UserProperties) {
		return ErrPropertyListOverflow
	}
	p.UserProperties = append(p.UserProperties, UserProperty{Key: key, Value: value})
	return nil
}

// AddSubscriptionIdentifier appends a subscription identifier, failing
// with ErrPropertyListOverflow if the bounded slice is already at capacity.
func (p *Properties) AddSubscriptionIdentifier(id int) error {
	if len(p.SubscriptionIdentifier) == cap(p.SubscriptionIdentifier) {
		return ErrPropertyListOverflow
	}
	p.SubscriptionIdentifier = append(p.SubscriptionIdentifier, id)
	return nil
}

// IsEmpty reports whether p carries no properties at all — the signal
// used by the Puback/Pubrec/Pubrel/Pubcomp/Disconnect/Auth bit-exact
// short encodings.
func (p *Properties) IsEmpty() bool {
	return p == nil || (p.Presence == 0 && len(p.UserProperties) == 0 && len(p.SubscriptionIdentifier) == 0)
}

// EncodedLen returns the number of bytes WriteProperties would write,
// including the VBI length prefix.
func EncodedLen(p *Properties) (int, error) {
	lw := wire.NewLengthWriter()
	if err := WriteProperties(lw, p); err != nil {
		return 0, err
	}
	return lw.Pos(), nil
}

// WriteProperties writes p's property list (VBI length then the packed
// identifier/value pairs) to w. A nil or empty p writes a zero length.
func WriteProperties(w *wire.Writer, p *Properties) error {
	return wire.PutPropertyList(w, func(pw *wire.Writer) error {
		if p == nil {
			return nil
		}
		return p.appendTo(pw)
	})
}

func (p *Properties) appendTo(w *wire.Writer) error {
	type step func(*wire.Writer) error
	steps := []step{
		func(w *wire.Writer) error {
			if !p.Has(PresPayloadFormatIndicator) {
				return nil
			}
			if err := w.PutU8(PropPayloadFormatIndicator); err != nil {
				return err
			}
			return w.PutU8(p.PayloadFormatIndicator)
		},
		func(w *wire.Writer) error {
			if !p.Has(PresMessageExpiryInterval) {
				return nil
			}
			if err := w.PutU8(PropMessageExpiryInterval); err != nil {
				return err
			}
			return w.PutU32(p.MessageExpiryInterval)
		},
		func(w *wire.Writer) error {
			if !p.Has(PresContentType) {
				return nil
			}
			if err := w.PutU8(PropContentType); err != nil {
				return err
			}
			return w.PutString(p.ContentType)
		},
		func(w *wire.Writer) error {
			if !p.Has(PresResponseTopic) {
				return nil
			}
			if err := w.PutU8(PropResponseTopic); err != nil {
				return err
			}
			return w.PutString(p.ResponseTopic)
		},
		func(w *wire.Writer) error {
			if !p.Has(PresCorrelationData) {
				return nil
			}
			if err := w.PutU8(PropCorrelationData); err != nil {
				return err
			}
			return w.PutBinary(p.CorrelationData)
		},
		func(w *wire.Writer) error {
			for _, id := range p.SubscriptionIdentifier {
				if err := w.PutU8(PropSubscriptionIdentifier); err != nil {
					return err
				}
				if err := w.PutVarInt(id); err != nil {
					return err
				}
			}
			return nil
		},
		func(w *wire.Writer) error {
			if !p.Has(PresSessionExpiryInterval) {
				return nil
			}
			if err := w.PutU8(PropSessionExpiryInterval); err != nil {
				return err
			}
			return w.PutU32(p.SessionExpiryInterval)
		},
		func(w *wire.Writer) error {
			if !p.Has(PresAssignedClientIdentifier) {
				return nil
			}
			if err := w.PutU8(PropAssignedClientIdentifier); err != nil {
				return err
			}
			return w.PutString(p.AssignedClientIdentifier)
		},
		func(w *wire.Writer) error {
			if !p.Has(PresServerKeepAlive) {
				return nil
			}
			if err := w.PutU8(PropServerKeepAlive); err != nil {
				return err
			}
			return w.PutU16(p.ServerKeepAlive)
		},
		func(w *wire.Writer) error {
			if !p.Has(PresAuthenticationMethod) {
				return nil
			}
			if err := w.PutU8(PropAuthenticationMethod); err != nil {
				return err
			}
			return w.PutString(p.AuthenticationMethod)
		},
		func(w *wire.Writer) error {
			if !p.Has(PresAuthenticationData) {
				return nil
			}
			if err := w.PutU8(PropAuthenticationData); err != nil {
				return err
			}
			return w.PutBinary(p.AuthenticationData)
		},
		func(w *wire.Writer) error {
			if !p.Has(PresRequestProblemInformation) {
				return nil
			}
			if err := w.PutU8(PropRequestProblemInformation); err != nil {
				return err
			}
			return w.PutU8(p.RequestProblemInformation)
		},
		func(w *wire.Writer) error {
			if !p.Has(PresWillDelayInterval) {
				return nil
			}
			if err := w.PutU8(PropWillDelayInterval); err != nil {
				return err
			}
			return w.PutU32(p.WillDelayInterval)
		},
		func(w *wire.Writer) error {
			if !p.Has(PresRequestResponseInformation) {
				return nil
			}
			if err := w.PutU8(PropRequestResponseInformation); err != nil {
				return err
			}
			return w.PutU8(p.RequestResponseInformation)
		},
		func(w *wire.Writer) error {
			if !p.Has(PresResponseInformation) {
				return nil
			}
			if err := w.PutU8(PropResponseInformation); err != nil {
				return err
			}
			return w.PutString(p.ResponseInformation)
		},
		func(w *wire.Writer) error {
			if !p.Has(PresServerReference) {
				return nil
			}
			if err := w.PutU8(PropServerReference); err != nil {
				return err
			}
			return w.PutString(p.ServerReference)
		},
		func(w *wire.Writer) error {
			if !p.Has(PresReasonString) {
				return nil
			}
			if err := w.PutU8(PropReasonString); err != nil {
				return err
			}
			return w.PutString(p.ReasonString)
		},
		func(w *wire.Writer) error {
			if !p.Has(PresReceiveMaximum) {
				return nil
			}
			if err := w.PutU8(PropReceiveMaximum); err != nil {
				return err
			}
			return w.PutU16(p.ReceiveMaximum)
		},
		func(w *wire.Writer) error {
			if !p.Has(PresTopicAliasMaximum) {
				return nil
			}
			if err := w.PutU8(PropTopicAliasMaximum); err != nil {
				return err
			}
			return w.PutU16(p.TopicAliasMaximum)
		},
		func(w *wire.Writer) error {
			if !p.Has(PresTopicAlias) {
				return nil
			}
			if err := w.PutU8(PropTopicAlias); err != nil {
				return err
			}
			return w.PutU16(p.TopicAlias)
		},
		func(w *wire.Writer) error {
			if !p.Has(PresMaximumQoS) {
				return nil
			}
			if err := w.PutU8(PropMaximumQoS); err != nil {
				return err
			}
			return w.PutU8(p.MaximumQoS)
		},
		func(w *wire.Writer) error {
			if !p.Has(PresRetainAvailable) {
				return nil
			}
			if err := w.PutU8(PropRetainAvailable); err != nil {
				return err
			}
			return w.PutBool(p.RetainAvailable)
		},
		func(w *wire.Writer) error {
			if !p.Has(PresMaximumPacketSize) {
				return nil
			}
			if err := w.PutU8(PropMaximumPacketSize); err != nil {
				return err
			}
			return w.PutU32(p.MaximumPacketSize)
		},
		func(w *wire.Writer) error {
			if !p.Has(PresWildcardSubscriptionAvailable) {
				return nil
			}
			if err := w.PutU8(PropWildcardSubscriptionAvailable); err != nil {
				return err
			}
			return w.PutBool(p.WildcardSubscriptionAvailable)
		},
		func(w *wire.Writer) error {
			if !p.Has(PresSubscriptionIdentifierAvailable) {
				return nil
			}
			if err := w.PutU8(PropSubscriptionIdentifierAvailable); err != nil {
				return err
			}
			return w.PutBool(p.SubscriptionIdentifierAvailable)
		},
		func(w *wire.Writer) error {
			if !p.Has(PresSharedSubscriptionAvailable) {
				return nil
			}
			if err := w.PutU8(PropSharedSubscriptionAvailable); err != nil {
				return err
			}
			return w.PutBool(p.SharedSubscriptionAvailable)
		},
		func(w *wire.Writer) error {
			for _, up := range p.UserProperties {
				if err := w.PutU8(PropUserProperty); err != nil {
					return err
				}
				if err := w.PutStringPair(up.Key, up.Value); err != nil {
					return err
				}
			}
			return nil
		},
	}
	for _, s := range steps {
		if err := s(w); err != nil {
			return err
		}
	}
	return nil
}

// ReadProperties reads a property list into a freshly allocated
// Properties bounded to userPropertyCap/subscriptionIdentifierCap.
func ReadProperties(r *wire.Reader, userPropertyCap, subscriptionIdentifierCap int) (*Properties, error) {
	end, err := r.BeginPropertyList()
	if err != nil {
		return nil, err
	}
	p := NewProperties(userPropertyCap, subscriptionIdentifierCap)
	for r.Pos() < end {
		id, err := r.GetU8()
		if err != nil {
			return nil, err
		}
		if err := p.readOne(r, id); err != nil {
			return nil, err
		}
		if r.Pos() > end {
			return nil, ErrIncorrectPropertyLength
		}
	}
	if r.Pos() != end {
		return nil, ErrIncorrectPropertyLength
	}
	return p, nil
}

func (p *Properties) readOne(r *wire.Reader, id uint8) error {
	var err error
	switch id {
	case PropPayloadFormatIndicator:
		p.PayloadFormatIndicator, err = r.GetU8()
		p.Presence |= PresPayloadFormatIndicator
	case PropMessageExpiryInterval:
		p.MessageExpiryInterval, err = r.GetU32()
		p.Presence |= PresMessageExpiryInterval
	case PropContentType:
		p.ContentType, err = r.GetString()
		p.Presence |= PresContentType
	case PropResponseTopic:
		p.ResponseTopic, err = r.GetString()
		p.Presence |= PresResponseTopic
	case PropCorrelationData:
		p.CorrelationData, err = r.GetBinary()
		p.Presence |= PresCorrelationData
	case PropSubscriptionIdentifier:
		var v int
		v, err = r.GetVarInt()
		if err == nil {
			err = p.AddSubscriptionIdentifier(v)
		}
	case PropSessionExpiryInterval:
		p.SessionExpiryInterval, err = r.GetU32()
		p.Presence |= PresSessionExpiryInterval
	case PropAssignedClientIdentifier:
		p.AssignedClientIdentifier, err = r.GetString()
		p.Presence |= PresAssignedClientIdentifier
	case PropServerKeepAlive:
		p.ServerKeepAlive, err = r.GetU16()
		p.Presence |= PresServerKeepAlive
	case PropAuthenticationMethod:
		p.AuthenticationMethod, err = r.GetString()
		p.Presence |= PresAuthenticationMethod
	case PropAuthenticationData:
		p.AuthenticationData, err = r.GetBinary()
		p.Presence |= PresAuthenticationData
	case PropRequestProblemInformation:
		p.RequestProblemInformation, err = r.GetU8()
		p.Presence |= PresRequestProblemInformation
	case PropWillDelayInterval:
		p.WillDelayInterval, err = r.GetU32()
		p.Presence |= PresWillDelayInterval
	case PropRequestResponseInformation:
		p.RequestResponseInformation, err = r.GetU8()
		p.Presence |= PresRequestResponseInformation
	case PropResponseInformation:
		p.ResponseInformation, err = r.GetString()
		p.Presence |= PresResponseInformation
	case PropServerReference:
		p.ServerReference, err = r.GetString()
		p.Presence |= PresServerReference
	case PropReasonString:
		p.ReasonString, err = r.GetString()
		p.Presence |= PresReasonString
	case PropReceiveMaximum:
		p.ReceiveMaximum, err = r.GetU16()
		p.Presence |= PresReceiveMaximum
	case PropTopicAliasMaximum:
		p.TopicAliasMaximum, err = r.GetU16()
		p.Presence |= PresTopicAliasMaximum
	case PropTopicAlias:
		p.TopicAlias, err = r.GetU16()
		p.Presence |= PresTopicAlias
	case PropMaximumQoS:
		p.MaximumQoS, err = r.GetU8()
		p.Presence |= PresMaximumQoS
	case PropRetainAvailable:
		p.RetainAvailable, err = r.GetBool()
		p.Presence |= PresRetainAvailable
	case PropMaximumPacketSize:
		p.MaximumPacketSize, err = r.GetU32()
		p.Presence |= PresMaximumPacketSize
	case PropWildcardSubscriptionAvailable:
		p.WildcardSubscriptionAvailable, err = r.GetBool()
		p.Presence |= PresWildcardSubscriptionAvailable
	case PropSubscriptionIdentifierAvailable:
		p.SubscriptionIdentifierAvailable, err = r.GetBool()
		p.Presence |= PresSubscriptionIdentifierAvailable
	case PropSharedSubscriptionAvailable:
		p.SharedSubscriptionAvailable, err = r.GetBool()
		p.Presence |= PresSharedSubscriptionAvailable
	case PropUserProperty:
		var k, v string
		k, v, err = r.GetStringPair()
		if err == nil {
			err = p.AddUserProperty(k, v)
		}
	default:
		return fmt.Errorf("%w: 0x%02X", ErrUnknownPropertyIdentifier, id)
	}
	return err
}
