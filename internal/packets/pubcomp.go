package packets

import "github.com/gonzalop/mqttv5/internal/wire"

// PubcompPacket completes a QoS 2 PUBLISH exchange.
type PubcompPacket struct {
	Identifier PacketIdentifier
	ReasonCode ReasonCode
	Properties *Properties
}

func (p *PubcompPacket) PacketType() Type { return Pubcomp }

func (p *PubcompPacket) FixedHeaderFirstByte() byte { return standardFirstByte(Pubcomp) }

func (p *PubcompPacket) WriteVariableHeaderAndPayload(w *wire.Writer) error {
	return writeAckVariableHeader(w, p.Identifier, p.ReasonCode, p.Properties)
}

// ReadPubcompVariableHeaderAndPayload decodes a PUBCOMP packet.
func ReadPubcompVariableHeaderAndPayload(r *wire.Reader, firstByte byte, remainingLength int) (*PubcompPacket, error) {
	id, rc, props, err := readAckVariableHeader(r, remainingLength, func(b byte) bool { return IsPubrelReasonCode(ReasonCode(b)) }, 16)
	if err != nil {
		return nil, err
	}
	return &PubcompPacket{Identifier: id, ReasonCode: rc, Properties: props}, nil
}
