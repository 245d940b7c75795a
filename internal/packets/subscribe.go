package packets

import (
	"errors"

	"github.com/gonzalop/mqttv5/internal/wire"
)

// ErrSubscribeWithoutValidSubscriptionRequest is returned when a SUBSCRIBE
// packet's payload does not contain at least one complete topic
// filter/options pair, which MQTT v5.0 requires (section 3.8.3).
var ErrSubscribeWithoutValidSubscriptionRequest = errors.New("packets: subscribe without a valid subscription request")

// ErrTooManySubscriptionRequests is returned when a SUBSCRIBE packet
// carries more subscription requests than requestCap allows.
var ErrTooManySubscriptionRequests = errors.New("packets: subscribe carries more requests than the configured capacity")

// SubscriptionRequest pairs a topic filter with its subscription options.
type SubscriptionRequest struct {
	TopicFilter string
	Options     SubscriptionOptions
}

// SubscribePacket requests one or more topic subscriptions. Requests is a
// caller-bounded slice; at least one request must be present both to
// write and to decode a SUBSCRIBE packet.
type SubscribePacket struct {
	Identifier PacketIdentifier
	Properties *Properties
	Requests   []SubscriptionRequest
}

func (p *SubscribePacket) PacketType() Type { return Subscribe }

func (p *SubscribePacket) FixedHeaderFirstByte() byte { return standardFirstByte(Subscribe) }

func (p *SubscribePacket) WriteVariableHeaderAndPayload(w *wire.Writer) error {
	if len(p.Requests) == 0 {
		return ErrSubscribeWithoutValidSubscriptionRequest
	}
	if err := w.PutU16(uint16(p.Identifier)); err != nil {
		return err
	}
	if err := WriteProperties(w, p.Properties); err != nil {
		return err
	}
	for _, req := range p.Requests {
		if err := w.PutString(req.TopicFilter); err != nil {
			return err
		}
		if err := w.PutU8(req.Options.Encode()); err != nil {
			return err
		}
	}
	return nil
}

// ReadSubscribeVariableHeaderAndPayload decodes a SUBSCRIBE packet.
// requestCap bounds the number of subscription requests accepted; a
// payload carrying more than requestCap returns
// ErrTooManySubscriptionRequests rather than silently dropping the rest.
func ReadSubscribeVariableHeaderAndPayload(r *wire.Reader, firstByte byte, remainingLength int, requestCap int) (*SubscribePacket, error) {
	startPos := r.Pos()
	id, err := r.GetU16()
	if err != nil {
		return nil, err
	}
	props, err := ReadProperties(r, 16, 0)
	if err != nil {
		return nil, err
	}

	end := startPos + remainingLength
	requests := make([]SubscriptionRequest, 0, requestCap)
	for r.Pos() < end {
		filter, err := r.GetString()
		if err != nil {
			if len(requests) == 0 {
				return nil, ErrSubscribeWithoutValidSubscriptionRequest
			}
			return nil, err
		}
		optByte, err := r.GetU8()
		if err != nil {
			if len(requests) == 0 {
				return nil, ErrSubscribeWithoutValidSubscriptionRequest
			}
			return nil, err
		}
		opts, err := DecodeSubscriptionOptions(optByte)
		if err != nil {
			return nil, err
		}
		if len(requests) >= requestCap {
			return nil, ErrTooManySubscriptionRequests
		}
		requests = append(requests, SubscriptionRequest{TopicFilter: filter, Options: opts})
	}
	if len(requests) == 0 {
		return nil, ErrSubscribeWithoutValidSubscriptionRequest
	}
	if r.Pos() != end {
		return nil, ErrIncorrectPacketLength
	}
	return &SubscribePacket{Identifier: PacketIdentifier(id), Properties: props, Requests: requests}, nil
}
