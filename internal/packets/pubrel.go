package packets

import "github.com/gonzalop/mqttv5/internal/wire"

// PubrelPacket releases a QoS 2 PUBLISH after receiving its PUBREC.
type PubrelPacket struct {
	Identifier PacketIdentifier
	ReasonCode ReasonCode
	Properties *Properties
}

func (p *PubrelPacket) PacketType() Type { return Pubrel }

func (p *PubrelPacket) FixedHeaderFirstByte() byte { return standardFirstByte(Pubrel) }

func (p *PubrelPacket) WriteVariableHeaderAndPayload(w *wire.Writer) error {
	return writeAckVariableHeader(w, p.Identifier, p.ReasonCode, p.Properties)
}

// ReadPubrelVariableHeaderAndPayload decodes a PUBREL packet.
func ReadPubrelVariableHeaderAndPayload(r *wire.Reader, firstByte byte, remainingLength int) (*PubrelPacket, error) {
	id, rc, props, err := readAckVariableHeader(r, remainingLength, func(b byte) bool { return IsPubrelReasonCode(ReasonCode(b)) }, 16)
	if err != nil {
		return nil, err
	}
	return &PubrelPacket{Identifier: id, ReasonCode: rc, Properties: props}, nil
}
