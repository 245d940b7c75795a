package framer

import (
	"io"

	"github.com/gonzalop/mqttv5/internal/packets"
	"github.com/gonzalop/mqttv5/internal/wire"
)

func validFirstHeaderByte(b byte) bool {
	kind := packets.Type(b >> 4)
	if !kind.Valid() {
		return false
	}
	if kind == packets.Publish {
		qos := (b >> 1) & 0x03
		if qos == 3 {
			return false
		}
	}
	return true
}

// readVarIntFromStream decodes a variable byte integer directly off r,
// one byte at a time, writing each byte read into headerBuf starting at
// offset 1 (offset 0 already holds the first header byte). Returns the
// decoded value and the total number of header bytes consumed
// (1 + however many VBI bytes were read).
func readVarIntFromStream(r io.Reader, headerBuf []byte) (value int, headerLen int, err error) {
	multiplier := 1
	headerLen = 1
	for i := 0; i < 4; i++ {
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, 0, err
		}
		if headerLen >= len(headerBuf) {
			return 0, 0, ErrPacketTooLargeForBuffer
		}
		headerBuf[headerLen] = b[0]
		headerLen++
		value += int(b[0]&0x7F) * multiplier
		if b[0]&0x80 == 0 {
			return value, headerLen, nil
		}
		multiplier *= 128
	}
	return 0, 0, wire.ErrInvalidVariableByteIntegerEncoding
}

// ReceiveOnePacket reads exactly one complete MQTT control packet from r
// into buffer, per the five-step procedure: validate the first header
// byte, decode the VBI remaining length, reject a packet that would not
// fit in buffer, read the remaining bytes, then dispatch to the per-type
// decoder and require it to consume exactly remaining_length bytes.
func ReceiveOnePacket(r io.Reader, buffer []byte, caps packets.GenericCapacities) (*packets.PacketGeneric, error) {
	if len(buffer) < 2 {
		return nil, ErrPacketTooLargeForBuffer
	}
	var first [1]byte
	if _, err := io.ReadFull(r, first[:]); err != nil {
		return nil, err
	}
	if !validFirstHeaderByte(first[0]) {
		return nil, ErrInvalidFirstHeaderByte
	}
	buffer[0] = first[0]

	remainingLength, headerLen, err := readVarIntFromStream(r, buffer)
	if err != nil {
		return nil, err
	}
	if headerLen+remainingLength > len(buffer) {
		return nil, ErrPacketTooLargeForBuffer
	}

	body := buffer[headerLen : headerLen+remainingLength]
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}

	kind := packets.Type(first[0] >> 4)
	rd := wire.NewReader(body)
	g, err := packets.ReadGeneric(kind, rd, first[0], remainingLength, caps)
	if err != nil {
		return nil, err
	}
	if rd.Pos() != remainingLength {
		return nil, ErrIncorrectPacketLength
	}
	return g, nil
}

// Send encodes packet into buffer (length-only pre-pass to size the VBI
// remaining-length prefix, then the real write) and hands the filled
// prefix to w as a single write.
func Send(w io.Writer, buffer []byte, packet packets.Packet) error {
	lw := wire.NewLengthWriter()
	if err := packet.WriteVariableHeaderAndPayload(lw); err != nil {
		return err
	}
	bodyLen := lw.Pos()

	headerLen := 1 + wire.VarIntSize(bodyLen)
	total := headerLen + bodyLen
	if total > len(buffer) {
		return ErrPacketTooLargeForBuffer
	}

	hw := wire.NewWriter(buffer)
	if err := hw.PutU8(packet.FixedHeaderFirstByte()); err != nil {
		return err
	}
	if err := hw.PutVarInt(bodyLen); err != nil {
		return err
	}
	if err := packet.WriteVariableHeaderAndPayload(hw); err != nil {
		return err
	}

	_, err := w.Write(buffer[:hw.Pos()])
	return err
}
