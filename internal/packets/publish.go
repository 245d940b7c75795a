package packets

import (
	"errors"

	"github.com/gonzalop/mqttv5/internal/wire"
)

// ErrIncorrectPacketLength is returned when a decoded packet's reader
// position does not land exactly on the declared remaining-length
// boundary after decoding — either a short variable header (PUBLISH) or
// a reader left with unconsumed bytes.
var ErrIncorrectPacketLength = errors.New("packets: incorrect packet length")

// ErrInvalidQoS is returned when a PUBLISH fixed header's QoS bits
// (bits 1-2) encode the reserved value 3.
var ErrInvalidQoS = errors.New("packets: invalid QoS value")

// PublishPacket is the MQTT v5 PUBLISH packet, carrying an application
// message in either direction.
type PublishPacket struct {
	Duplicate bool
	QoS       QoS
	Retain    bool

	Topic      string
	Identifier PublishPacketIdentifier
	Properties *Properties
	Payload    []byte
}

func (p *PublishPacket) PacketType() Type { return Publish }

// FixedHeaderFirstByte overrides the standard pattern: PUBLISH is the
// one packet type whose flag nibble carries meaningful bits (retain,
// QoS, duplicate) rather than a fixed reserved pattern.
func (p *PublishPacket) FixedHeaderFirstByte() byte {
	b := byte(Publish) << 4
	if p.Retain {
		b |= 1 << 0
	}
	b |= byte(p.QoS&0x03) << 1
	if p.Duplicate {
		b |= 1 << 3
	}
	return b
}

func (p *PublishPacket) WriteVariableHeaderAndPayload(w *wire.Writer) error {
	if err := w.PutString(p.Topic); err != nil {
		return err
	}
	if p.QoS != QoS0 {
		if err := w.PutU16(uint16(p.Identifier.Identifier)); err != nil {
			return err
		}
	}
	if err := WriteProperties(w, p.Properties); err != nil {
		return err
	}
	return w.PutRaw(p.Payload)
}

// ReadPublishVariableHeaderAndPayload decodes a PUBLISH packet. firstByte
// supplies retain/QoS/duplicate (the fixed header flag nibble);
// remainingLength lets the payload be taken as "everything left after
// the variable header", since PUBLISH's payload carries no inner length
// delimiter of its own.
func ReadPublishVariableHeaderAndPayload(r *wire.Reader, firstByte byte, remainingLength int) (*PublishPacket, error) {
	p := &PublishPacket{
		Retain:    firstByte&0x01 != 0,
		QoS:       QoS((firstByte >> 1) & 0x03),
		Duplicate: firstByte&0x08 != 0,
	}
	if !p.QoS.Valid() {
		return nil, ErrInvalidQoS
	}

	startPos := r.Pos()
	topic, err := r.GetString()
	if err != nil {
		return nil, err
	}
	p.Topic = topic

	if p.QoS != QoS0 {
		id, err := r.GetU16()
		if err != nil {
			return nil, err
		}
		kind := PublishQoS1
		if p.QoS == QoS2 {
			kind = PublishQoS2
		}
		p.Identifier = PublishPacketIdentifier{Kind: kind, Identifier: PacketIdentifier(id)}
	} else {
		p.Identifier = PublishPacketIdentifier{Kind: PublishNone}
	}

	variableHeaderLen := r.Pos() - startPos
	if variableHeaderLen > remainingLength {
		return nil, ErrIncorrectPacketLength
	}

	props, err := ReadProperties(r, 8, 8)
	if err != nil {
		return nil, err
	}
	p.Properties = props

	consumed := r.Pos() - startPos
	if consumed > remainingLength {
		return nil, ErrIncorrectPacketLength
	}
	payloadLen := remainingLength - consumed
	payload, err := r.GetRaw(payloadLen)
	if err != nil {
		return nil, ErrIncorrectPacketLength
	}
	p.Payload = payload
	return p, nil
}
