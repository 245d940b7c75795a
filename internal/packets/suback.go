package packets

import (
	"errors"

	"github.com/gonzalop/mqttv5/internal/wire"
)

// ErrSubackWithoutValidReasonCode is returned when a SUBACK packet's
// payload does not contain at least one reason code.
var ErrSubackWithoutValidReasonCode = errors.New("packets: suback without a valid reason code")

// ErrTooManyReasonCodes is returned when a SUBACK packet carries more
// reason codes than codeCap allows.
var ErrTooManyReasonCodes = errors.New("packets: suback carries more reason codes than the configured capacity")

// SubackPacket acknowledges a SUBSCRIBE, carrying one reason code per
// requested topic filter in the same order. The list has no delimiter of
// its own; it runs to the packet's declared remaining length.
type SubackPacket struct {
	Identifier  PacketIdentifier
	Properties  *Properties
	ReasonCodes []ReasonCode
}

func (p *SubackPacket) PacketType() Type { return Suback }

func (p *SubackPacket) FixedHeaderFirstByte() byte { return standardFirstByte(Suback) }

func (p *SubackPacket) WriteVariableHeaderAndPayload(w *wire.Writer) error {
	if len(p.ReasonCodes) == 0 {
		return ErrSubackWithoutValidReasonCode
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

// ReadSubackVariableHeaderAndPayload decodes a SUBACK packet. codeCap
// bounds the number of reason codes accepted; a payload carrying more
// than codeCap returns ErrTooManyReasonCodes rather than silently
// dropping the rest.
func ReadSubackVariableHeaderAndPayload(r *wire.Reader, firstByte byte, remainingLength int, codeCap int) (*SubackPacket, error) {
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
		rc, err := r.GetReasonCode(func(b byte) bool { return IsSubscribeReasonCode(ReasonCode(b)) })
		if err != nil {
			if len(codes) == 0 {
				return nil, ErrSubackWithoutValidReasonCode
			}
			return nil, err
		}
		if len(codes) >= codeCap {
			return nil, ErrTooManyReasonCodes
		}
		codes = append(codes, ReasonCode(rc))
	}
	if len(codes) == 0 {
		return nil, ErrSubackWithoutValidReasonCode
	}
	if r.Pos() != end {
		return nil, ErrIncorrectPacketLength
	}
	return &SubackPacket{Identifier: PacketIdentifier(id), Properties: props, ReasonCodes: codes}, nil
}
