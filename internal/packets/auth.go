package packets

import "github.com/gonzalop/mqttv5/internal/wire"

// AuthPacket carries an extended authentication exchange step. A Success
// reason code with no properties omits the variable header entirely,
// same as DISCONNECT (OASIS MQTT v5.0 section 3.15.2.1).
type AuthPacket struct {
	ReasonCode ReasonCode
	Properties *Properties
}

func (p *AuthPacket) PacketType() Type { return Auth }

func (p *AuthPacket) FixedHeaderFirstByte() byte { return standardFirstByte(Auth) }

func (p *AuthPacket) WriteVariableHeaderAndPayload(w *wire.Writer) error {
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

// ReadAuthVariableHeaderAndPayload decodes an AUTH packet.
func ReadAuthVariableHeaderAndPayload(r *wire.Reader, firstByte byte, remainingLength int) (*AuthPacket, error) {
	if remainingLength == 0 {
		return &AuthPacket{ReasonCode: ReasonSuccess, Properties: NewProperties(0, 0)}, nil
	}
	rc, err := r.GetReasonCode(func(b byte) bool { return IsAuthReasonCode(ReasonCode(b)) })
	if err != nil {
		return nil, err
	}
	if remainingLength == 1 {
		return &AuthPacket{ReasonCode: ReasonCode(rc), Properties: NewProperties(0, 0)}, nil
	}
	props, err := ReadProperties(r, 0, 0)
	if err != nil {
		return nil, err
	}
	return &AuthPacket{ReasonCode: ReasonCode(rc), Properties: props}, nil
}
