package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarIntRoundTrip(t *testing.T) {
	cases := []int{0, 1, 127, 128, 16383, 16384, 2097151, 2097152, MaxVarInt}
	for _, n := range cases {
		buf := make([]byte, 4)
		w := NewWriter(buf)
		require.NoError(t, w.PutVarInt(n))
		r := NewReader(w.Bytes())
		got, err := r.GetVarInt()
		require.NoError(t, err)
		assert.Equal(t, n, got)
		assert.Equal(t, w.Pos(), r.Pos())
	}
}

func TestVarIntEncodeTooLarge(t *testing.T) {
	w := NewWriter(make([]byte, 4))
	err := w.PutVarInt(MaxVarInt + 1)
	assert.ErrorIs(t, err, ErrVariableByteIntegerTooLarge)
}

func TestVarIntDecodeFifthContinuationByte(t *testing.T) {
	buf := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	r := NewReader(buf)
	_, err := r.GetVarInt()
	assert.ErrorIs(t, err, ErrInvalidVariableByteIntegerEncoding)
}

func TestStringRoundTrip(t *testing.T) {
	s := "hello/topic"
	buf := make([]byte, 64)
	w := NewWriter(buf)
	require.NoError(t, w.PutString(s))
	r := NewReader(w.Bytes())
	got, err := r.GetString()
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestStringRejectsNullCharacter(t *testing.T) {
	w := NewWriter(make([]byte, 16))
	err := w.PutString("a\x00b")
	assert.ErrorIs(t, err, ErrNullCharacterInString)
}

func TestStringDecodeRejectsNullCharacter(t *testing.T) {
	buf := []byte{0x00, 0x03, 'a', 0x00, 'b'}
	r := NewReader(buf)
	_, err := r.GetString()
	assert.ErrorIs(t, err, ErrNullCharacterInString)
}

func TestReaderBoundaryExactLength(t *testing.T) {
	buf := []byte{0x00, 0x01, 'x'}
	r := NewReader(buf)
	s, err := r.GetString()
	require.NoError(t, err)
	assert.Equal(t, "x", s)
	assert.Equal(t, 3, r.Pos())
}

func TestReaderBoundaryInsufficientData(t *testing.T) {
	buf := []byte{0x00, 0x02, 'x'} // declares length 2 but only 1 byte follows
	r := NewReader(buf)
	_, err := r.GetString()
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestBoolInvalidValue(t *testing.T) {
	r := NewReader([]byte{0x02})
	_, err := r.GetBool()
	assert.ErrorIs(t, err, ErrInvalidBooleanValue)
}

func TestPropertyListRoundTrip(t *testing.T) {
	buf := make([]byte, 64)
	w := NewWriter(buf)
	err := PutPropertyList(w, func(pw *Writer) error {
		if err := pw.PutU8(0x01); err != nil {
			return err
		}
		return pw.PutU8(0x01)
	})
	require.NoError(t, err)

	r := NewReader(w.Bytes())
	end, err := r.BeginPropertyList()
	require.NoError(t, err)
	assert.Equal(t, w.Pos(), end)

	id, err := r.GetU8()
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), id)
	val, err := r.GetU8()
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), val)
	assert.Equal(t, end, r.Pos())
}

func FuzzVarIntRoundTrip(f *testing.F) {
	f.Add(0)
	f.Add(127)
	f.Add(128)
	f.Add(MaxVarInt)
	f.Fuzz(func(t *testing.T, n int) {
		if n < 0 || n > MaxVarInt {
			t.Skip()
		}
		buf := make([]byte, 4)
		w := NewWriter(buf)
		if err := w.PutVarInt(n); err != nil {
			t.Fatalf("encode failed: %v", err)
		}
		r := NewReader(w.Bytes())
		got, err := r.GetVarInt()
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if got != n {
			t.Fatalf("round trip mismatch: want %d got %d", n, got)
		}
	})
}
