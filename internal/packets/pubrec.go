package packets

import "github.com/gonzalop/mqttv5/internal/wire"

// PubrecPacket is the first acknowledgment of a QoS 2 PUBLISH.
type PubrecPacket struct {
	Identifier PacketIdentifier
	ReasonCode ReasonCode
	Properties *Properties
}

func (p *PubrecPacket) PacketType() Type { return Pubrec }

func (p *PubrecPacket) FixedHeaderFirstByte() byte { return standardFirstByte(Pubrec) }

func (p *PubrecPacket) WriteVariableHeaderAndPayload(w *wire.Writer) error {
	return writeAckVariableHeader(w, p.Identifier, p.ReasonCode, p.Properties)
}

// ReadPubrecVariableHeaderAndPayload decodes a PUBREC packet.
func ReadPubrecVariableHeaderAndPayload(r *wire.Reader, firstByte byte, remainingLength int) (*PubrecPacket, error) {
	id, rc, props, err := readAckVariableHeader(r, remainingLength, func(b byte) bool { return IsPublishReasonCode(ReasonCode(b)) }, 16)
	if err != nil {
		return nil, err
	}
	return &PubrecPacket{Identifier: id, ReasonCode: rc, Properties: props}, nil
}
