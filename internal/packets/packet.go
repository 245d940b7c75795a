package packets

import (
	"errors"

	"github.com/gonzalop/mqttv5/internal/wire"
)

// ErrUnknownPacketType is returned when a fixed header's type nibble does
// not correspond to one of the fifteen defined packet types.
var ErrUnknownPacketType = errors.New("packets: unknown packet type")

// Packet is implemented by every one of the fifteen MQTT v5 control
// packet types.
type Packet interface {
	// PacketType returns the packet's type tag.
	PacketType() Type

	// FixedHeaderFirstByte returns the exact first byte of the fixed
	// header: type in the high nibble, flags in the low nibble. Every
	// type but Publish uses the standard reserved-bit pattern for its
	// flags; Publish encodes retain/QoS/duplicate there instead.
	FixedHeaderFirstByte() byte

	// WriteVariableHeaderAndPayload encodes the packet's variable header
	// and payload (everything after the fixed header) to w.
	WriteVariableHeaderAndPayload(w *wire.Writer) error
}

// standardFirstByte returns the first byte for every packet type except
// Publish, which overrides FixedHeaderFirstByte itself: high nibble is
// the type, low nibble is the fixed reserved-bit pattern required by
// each type (0 for most; PUBREL/SUBSCRIBE/UNSUBSCRIBE reserve 0b0010).
func standardFirstByte(t Type) byte {
	reserved := byte(0)
	switch t {
	case Pubrel, Subscribe, Unsubscribe:
		reserved = 0b0010
	}
	return byte(t)<<4 | reserved
}
