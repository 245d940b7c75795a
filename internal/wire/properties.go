package wire

// PutPropertyList writes a property list: a VBI length prefix followed
// by the bytes body would write. It runs body twice — once against a
// length-only Writer to discover the encoded size, then for real against
// w — rather than growing a buffer after the fact, since w's underlying
// slice is caller-owned and fixed size.
func PutPropertyList(w *Writer, body func(*Writer) error) error {
	lw := NewLengthWriter()
	if err := body(lw); err != nil {
		return err
	}
	if err := w.PutVarInt(lw.Pos()); err != nil {
		return err
	}
	return body(w)
}
