package packets

import "github.com/gonzalop/mqttv5/internal/wire"

// DisconnectPacket signals a clean or abnormal end to the network
// connection from either side. A Success reason code with no properties
// omits the variable header entirely (remaining length 0), as the spec
// permits (OASIS MQTT v5.0 section 3.14.2.1).
type DisconnectPacket struct {
	ReasonCode ReasonCode
	Properties *Properties
}

func (p *DisconnectPacket) PacketType() Type { return Disconnect }

func (p *DisconnectPacket) FixedHeaderFirstByte() byte { return standardFirstByte(Disconnect) }

func (p *DisconnectPacket) WriteVariableHeaderAndPayload(w *wire.Writer) error {
	if p.ReasonCode == ReasonSuccess && p.Properties.IsEmpty() {
		return nil
	}
	if err := w.PutU8(byte(p.ReasonCode)); err != nil {
		return err
	}
	if p.Properties.IsEmpty() {
		return nil
	}
	return WriteProperties(w, p.Properties)
}

// ReadDisconnectVariableHeaderAndPayload decodes a DISCONNECT packet.
func ReadDisconnectVariableHeaderAndPayload(r *wire.Reader, firstByte byte, remainingLength int) (*DisconnectPacket, error) {
	if remainingLength == 0 {
		return &DisconnectPacket{ReasonCode: ReasonSuccess, Properties: NewProperties(0, 0)}, nil
	}
	rc, err := r.GetReasonCode(func(b byte) bool { return IsDisconnectReasonCode(ReasonCode(b)) })
	if err != nil {
		return nil, err
	}
	if remainingLength == 1 {
		return &DisconnectPacket{ReasonCode: ReasonCode(rc), Properties: NewProperties(0, 0)}, nil
	}
	props, err := ReadProperties(r, 16, 0)
	if err != nil {
		return nil, err
	}
	return &DisconnectPacket{ReasonCode: ReasonCode(rc), Properties: props}, nil
}
