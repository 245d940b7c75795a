package packets

import (
	"errors"

	"github.com/gonzalop/mqttv5/internal/wire"
)

// ErrUnsubscribeWithoutValidSubscriptionRequest is returned when an
// UNSUBSCRIBE packet's payload does not contain at least one topic filter.
var ErrUnsubscribeWithoutValidSubscriptionRequest = errors.New("packets: unsubscribe without a valid subscription request")

// UnsubscribePacket requests removal of one or more topic subscriptions.
type UnsubscribePacket struct {
	Identifier   PacketIdentifier
	Properties   *Properties
	TopicFilters []string
}

func (p *UnsubscribePacket) PacketType() Type { return Unsubscribe }

func (p *UnsubscribePacket) FixedHeaderFirstByte() byte { return standardFirstByte(Unsubscribe) }

func (p *UnsubscribePacket) WriteVariableHeaderAndPayload(w *wire.Writer) error {
	if len(p.TopicFilters) == 0 {
		return ErrUnsubscribeWithoutValidSubscriptionRequest
	}
	if err := w.PutU16(uint16(p.Identifier)); err != nil {
		return err
	}
	if err := WriteProperties(w, p.Properties); err != nil {
		return err
	}
	for _, filter := range p.TopicFilters {
		if err := w.PutString(filter); err != nil {
			return err
		}
	}
	return nil
}

// ReadUnsubscribeVariableHeaderAndPayload decodes an UNSUBSCRIBE packet.
// filterCap bounds the number of topic filters retained.
func ReadUnsubscribeVariableHeaderAndPayload(r *wire.Reader, firstByte byte, remainingLength int, filterCap int) (*UnsubscribePacket, error) {
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
	filters := make([]string, 0, filterCap)
	for r.Pos() < end {
		filter, err := r.GetString()
		if err != nil {
			if len(filters) == 0 {
				return nil, ErrUnsubscribeWithoutValidSubscriptionRequest
			}
			return nil, err
		}
		if len(filters) < filterCap {
			filters = append(filters, filter)
		}
	}
	if len(filters) == 0 {
		return nil, ErrUnsubscribeWithoutValidSubscriptionRequest
	}
	if r.Pos() != end {
		return nil, ErrIncorrectPacketLength
	}
	return &UnsubscribePacket{Identifier: PacketIdentifier(id), Properties: props, TopicFilters: filters}, nil
}
