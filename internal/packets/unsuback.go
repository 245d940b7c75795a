package packets

import (
	"errors"

	"github.com/gonzalop/mqttv5/internal/wire"
)

// ErrUnsubackWithoutValidReasonCode is returned when an UNSUBACK packet's
// payload does not contain at least one reason code.
var ErrUnsubackWithoutValidReasonCode = errors.New("packets: unsuback without a valid reason code")

// ErrTooManyUnsubackReasonCodes is returned when an UNSUBACK packet
// carries more reason codes than codeCap allows.
var ErrTooManyUnsubackReasonCodes = errors.New("packets: unsuback carries more reason codes than the configured capacity")

// UnsubackPacket acknowledges an UNSUBSCRIBE, carrying one reason code
// per requested topic filter in the same order.
type UnsubackPacket struct {
	Identifier  PacketIdentifier
	Properties  *Properties
	ReasonCodes []ReasonCode
}

func (p *UnsubackPacket) PacketType() Type { return Unsuback }

func (p *UnsubackPacket) FixedHeaderFirstByte() byte { return standardFirstByte(Unsuback) }

func (p *UnsubackPacket) WriteVariableHeaderAndPayload(w *wire.Writer) error {
	if len(p.ReasonCodes) == 0 {
		return ErrUnsubackWithoutValidReasonCode
	}
	if err := w.PutU16(uint16(p.Identifier)); err != nil {
		return err
	}
	if err := WriteProperties(w, p.Properties); err != nil {
		return err
	}
	for _, rc := range p.ReasonCodes {
		if err := w.PutU8(byte(rc)); err != nil {
			return err
		}
	}
	return nil
}

// ReadUnsubackVariableHeaderAndPayload decodes an UNSUBACK packet.
// codeCap bounds the number of reason codes accepted; a payload
// carrying more than codeCap returns ErrTooManyUnsubackReasonCodes
// rather than silently dropping the rest.
func ReadUnsubackVariableHeaderAndPayload(r *wire.Reader, firstByte byte, remainingLength int, codeCap int) (*UnsubackPacket, error) {
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
	codes := make([]ReasonCode, 0, codeCap)
	for r.Pos() < end {
		rc, err := r.GetReasonCode(func(b byte) bool { return IsUnsubscribeReasonCode(ReasonCode(b)) })
		if err != nil {
			if len(codes) == 0 {
				return nil, ErrUnsubackWithoutValidReasonCode
			}
			return nil, err
		}
		if len(codes) >= codeCap {
			return nil, ErrTooManyUnsubackReasonCodes
		}
		codes = append(codes, ReasonCode(rc))
	}
	if len(codes) == 0 {
		return nil, ErrUnsubackWithoutValidReasonCode
	}
	if r.Pos() != end {
		return nil, ErrIncorrectPacketLength
	}
	return &UnsubackPacket{Identifier: PacketIdentifier(id), Properties: props, ReasonCodes: codes}, nil
}
