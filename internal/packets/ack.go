package packets

import "github.com/gonzalop/mqttv5/internal/wire"

// writeAckVariableHeader encodes the three-tier variable header shared by
// PUBACK, PUBREC, PUBREL and PUBCOMP (OASIS MQTT v5.0 sections 3.4-3.7):
// the packet identifier alone when the reason code is Success and there
// are no properties; identifier plus reason code when there are no
// properties; identifier, reason code and property list otherwise.
func writeAckVariableHeader(w *wire.Writer, id PacketIdentifier, rc ReasonCode, props *Properties) error {
	if err := w.PutU16(uint16(id)); err != nil {
		return err
	}
	if rc == ReasonSuccess && props.IsEmpty() {
		return nil
	}
	if err := w.PutU8(byte(rc)); err != nil {
		return err
	}
	if props.IsEmpty() {
		return nil
	}
	return WriteProperties(w, props)
}

// readAckVariableHeader decodes the three-tier variable header shared by
// PUBACK, PUBREC, PUBREL and PUBCOMP. valid is the packet type's legal
// reason code predicate; userPropertyCap bounds the property list's user
// properties (these packets carry no subscription identifiers).
func readAckVariableHeader(r *wire.Reader, remainingLength int, valid func(byte) bool, userPropertyCap int) (PacketIdentifier, ReasonCode, *Properties, error) {
	id, err := r.GetU16()
	if err != nil {
		return 0, 0, nil, err
	}
	if remainingLength == 2 {
		return PacketIdentifier(id), ReasonSuccess, NewProperties(0, 0), nil
	}
	rc, err := r.GetReasonCode(valid)
	if err != nil {
		return 0, 0, nil, err
	}
	if remainingLength == 3 {
		return PacketIdentifier(id), ReasonCode(rc), NewProperties(0, 0), nil
	}
	props, err := ReadProperties(r, userPropertyCap, 0)
	if err != nil {
		return 0, 0, nil, err
	}
	return PacketIdentifier(id), ReasonCode(rc), props, nil
}
