package packets

import "github.com/gonzalop/mqttv5/internal/wire"

// PubackPacket acknowledges a QoS 1 PUBLISH.
type PubackPacket struct {
	Identifier PacketIdentifier
	ReasonCode ReasonCode
	Properties *Properties
}

func (p *PubackPacket) PacketType() Type { return Puback }

func (p *PubackPacket) FixedHeaderFirstByte() byte { return standardFirstByte(Puback) }

func (p *PubackPacket) WriteVariableHeaderAndPayload(w *wire.Writer) error {
	return writeAckVariableHeader(w, p.Identifier, p.ReasonCode, p.Properties)
}

// ReadPubackVariableHeaderAndPayload decodes a PUBACK packet.
func ReadPubackVariableHeaderAndPayload(r *wire.Reader, firstByte byte, remainingLength int) (*PubackPacket, error) {
	id, rc, props, err := readAckVariableHeader(r, remainingLength, func(b byte) bool { return IsPublishReasonCode(ReasonCode(b)) }, 16)
	if err != nil {
		return nil, err
	}
	return &PubackPacket{Identifier: id, ReasonCode: rc, Properties: props}, nil
}
