package packets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonzalop/mqttv5/internal/wire"
)

func roundTrip(t *testing.T, p Packet) []byte {
	t.Helper()
	lw := wire.NewLengthWriter()
	require.NoError(t, p.WriteVariableHeaderAndPayload(lw))
	buf := make([]byte, lw.Pos())
	w := wire.NewWriter(buf)
	require.NoError(t, p.WriteVariableHeaderAndPayload(w))
	assert.Equal(t, len(buf), w.Pos())
	return buf
}

func TestConnectRoundTrip(t *testing.T) {
	p := &ConnectPacket{
		CleanStart:   true,
		KeepAlive:    60,
		ClientID:     "client-1",
		UsernameFlag: true,
		Username:     "alice",
		PasswordFlag: true,
		Password:     "secret",
		Properties:   NewProperties(0, 0),
	}
	buf := roundTrip(t, p)
	r := wire.NewReader(buf)
	got, err := ReadConnectVariableHeaderAndPayload(r, p.FixedHeaderFirstByte(), len(buf))
	require.NoError(t, err)
	assert.Equal(t, p.ClientID, got.ClientID)
	assert.True(t, got.CleanStart)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "secret", got.Password)
	assert.Equal(t, len(buf), r.Pos())
}

func TestConnectRejectsMalformedWillFlags(t *testing.T) {
	buf := make([]byte, 32)
	w := wire.NewWriter(buf)
	require.NoError(t, w.PutString(ProtocolName))
	require.NoError(t, w.PutU8(ProtocolVersion))
	require.NoError(t, w.PutU8(connectFlagWillRetain)) // will-retain set, will flag unset
	require.NoError(t, w.PutU16(30))
	require.NoError(t, WriteProperties(w, nil))
	require.NoError(t, w.PutString("c"))

	r := wire.NewReader(w.Bytes())
	_, err := ReadConnectVariableHeaderAndPayload(r, 0, w.Pos())
	assert.ErrorIs(t, err, ErrMalformedConnectFlags)
}

func TestPublishQoS0RoundTrip(t *testing.T) {
	p := &PublishPacket{
		Topic:      "a/b",
		Properties: NewProperties(0, 0),
		Payload:    []byte("hello"),
	}
	buf := roundTrip(t, p)
	r := wire.NewReader(buf)
	got, err := ReadPublishVariableHeaderAndPayload(r, p.FixedHeaderFirstByte(), len(buf))
	require.NoError(t, err)
	assert.Equal(t, "a/b", got.Topic)
	assert.Equal(t, []byte("hello"), got.Payload)
	assert.Equal(t, PublishNone, got.Identifier.Kind)
}

func TestPublishQoS1RoundTrip(t *testing.T) {
	p := &PublishPacket{
		Topic:      "a/b",
		QoS:        QoS1,
		Identifier: PublishPacketIdentifier{Kind: PublishQoS1, Identifier: 42},
		Properties: NewProperties(0, 0),
		Payload:    []byte{1, 2, 3},
	}
	buf := roundTrip(t, p)
	r := wire.NewReader(buf)
	got, err := ReadPublishVariableHeaderAndPayload(r, p.FixedHeaderFirstByte(), len(buf))
	require.NoError(t, err)
	assert.Equal(t, PacketIdentifier(42), got.Identifier.Identifier)
	assert.Equal(t, []byte{1, 2, 3}, got.Payload)
}

func TestPublishRejectsReservedQoS(t *testing.T) {
	firstByte := byte(Publish)<<4 | 0b0110 // QoS bits = 3
	r := wire.NewReader([]byte{0x00, 0x01, 'a'})
	_, err := ReadPublishVariableHeaderAndPayload(r, firstByte, 3)
	assert.ErrorIs(t, err, ErrInvalidQoS)
}

func TestPubackShortEncodingSuccessNoProperties(t *testing.T) {
	p := &PubackPacket{Identifier: 7, ReasonCode: ReasonSuccess, Properties: nil}
	buf := roundTrip(t, p)
	assert.Len(t, buf, 2)

	r := wire.NewReader(buf)
	got, err := ReadPubackVariableHeaderAndPayload(r, 0, len(buf))
	require.NoError(t, err)
	assert.Equal(t, PacketIdentifier(7), got.Identifier)
	assert.Equal(t, ReasonSuccess, got.ReasonCode)
}

func TestPubackThreeByteEncodingErrorNoProperties(t *testing.T) {
	p := &PubackPacket{Identifier: 7, ReasonCode: ReasonUnspecifiedError, Properties: nil}
	buf := roundTrip(t, p)
	assert.Len(t, buf, 3)

	r := wire.NewReader(buf)
	got, err := ReadPubackVariableHeaderAndPayload(r, 0, len(buf))
	require.NoError(t, err)
	assert.Equal(t, ReasonUnspecifiedError, got.ReasonCode)
}

func TestPubackFullEncodingWithProperties(t *testing.T) {
	props := NewProperties(0, 0)
	props.Presence |= PresReasonString
	props.ReasonString = "because"
	p := &PubackPacket{Identifier: 7, ReasonCode: ReasonUnspecifiedError, Properties: props}
	buf := roundTrip(t, p)
	assert.Greater(t, len(buf), 3)

	r := wire.NewReader(buf)
	got, err := ReadPubackVariableHeaderAndPayload(r, 0, len(buf))
	require.NoError(t, err)
	assert.Equal(t, "because", got.Properties.ReasonString)
}

func TestDisconnectOmitsVariableHeaderOnSuccess(t *testing.T) {
	p := &DisconnectPacket{ReasonCode: ReasonSuccess, Properties: nil}
	buf := roundTrip(t, p)
	assert.Len(t, buf, 0)

	r := wire.NewReader(buf)
	got, err := ReadDisconnectVariableHeaderAndPayload(r, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, ReasonSuccess, got.ReasonCode)
}

func TestSubscribeRequiresAtLeastOneRequest(t *testing.T) {
	p := &SubscribePacket{Identifier: 1, Properties: NewProperties(0, 0)}
	_, err := wireEncode(p)
	assert.ErrorIs(t, err, ErrSubscribeWithoutValidSubscriptionRequest)
}

func TestSubscribeSubackRoundTrip(t *testing.T) {
	p := &SubscribePacket{
		Identifier: 9,
		Properties: NewProperties(0, 0),
		Requests: []SubscriptionRequest{
			{TopicFilter: "a/+", Options: SubscriptionOptions{MaximumQoS: QoS1}},
			{TopicFilter: "b/#", Options: SubscriptionOptions{MaximumQoS: QoS0, NoLocal: true}},
		},
	}
	buf := roundTrip(t, p)
	r := wire.NewReader(buf)
	got, err := ReadSubscribeVariableHeaderAndPayload(r, 0, len(buf), 8)
	require.NoError(t, err)
	require.Len(t, got.Requests, 2)
	assert.Equal(t, "a/+", got.Requests[0].TopicFilter)
	assert.Equal(t, QoS1, got.Requests[0].Options.MaximumQoS)

	suback := &SubackPacket{
		Identifier:  9,
		Properties:  NewProperties(0, 0),
		ReasonCodes: []ReasonCode{ReasonGrantedQoS1, ReasonGrantedQoS0},
	}
	sbuf := roundTrip(t, suback)
	sr := wire.NewReader(sbuf)
	gotSuback, err := ReadSubackVariableHeaderAndPayload(sr, 0, len(sbuf), 8)
	require.NoError(t, err)
	assert.Equal(t, []ReasonCode{ReasonGrantedQoS1, ReasonGrantedQoS0}, gotSuback.ReasonCodes)
}

func TestSubackRequiresAtLeastOneReasonCode(t *testing.T) {
	p := &SubackPacket{Identifier: 1, Properties: NewProperties(0, 0)}
	_, err := wireEncode(p)
	assert.ErrorIs(t, err, ErrSubackWithoutValidReasonCode)
}

func TestDecodeSubscriptionOptionsRejectsReservedMaximumQoS(t *testing.T) {
	_, err := DecodeSubscriptionOptions(0x03) // maximum QoS bits = 3
	assert.ErrorIs(t, err, ErrInvalidMaximumQoSValue)
}

func TestDecodeSubscriptionOptionsRejectsReservedRetainHandling(t *testing.T) {
	_, err := DecodeSubscriptionOptions(0x30) // retain handling bits = 3
	assert.ErrorIs(t, err, ErrInvalidRetainHandlingValue)
}

func TestDecodeSubscriptionOptionsRejectsReservedBits(t *testing.T) {
	_, err := DecodeSubscriptionOptions(0x40) // bit 6 reserved
	assert.ErrorIs(t, err, ErrReservedBitsSet)
}

func TestSubscribeRejectsMoreRequestsThanCapacity(t *testing.T) {
	p := &SubscribePacket{
		Identifier: 9,
		Properties: NewProperties(0, 0),
		Requests: []SubscriptionRequest{
			{TopicFilter: "a/+", Options: SubscriptionOptions{MaximumQoS: QoS1}},
			{TopicFilter: "b/#", Options: SubscriptionOptions{MaximumQoS: QoS0}},
		},
	}
	buf := roundTrip(t, p)
	r := wire.NewReader(buf)
	_, err := ReadSubscribeVariableHeaderAndPayload(r, 0, len(buf), 1)
	assert.ErrorIs(t, err, ErrTooManySubscriptionRequests)
}

func TestSubackRejectsMoreReasonCodesThanCapacity(t *testing.T) {
	p := &SubackPacket{
		Identifier:  9,
		Properties:  NewProperties(0, 0),
		ReasonCodes: []ReasonCode{ReasonGrantedQoS1, ReasonGrantedQoS0},
	}
	buf := roundTrip(t, p)
	r := wire.NewReader(buf)
	_, err := ReadSubackVariableHeaderAndPayload(r, 0, len(buf), 1)
	assert.ErrorIs(t, err, ErrTooManyReasonCodes)
}

func TestUnsubackRejectsMoreReasonCodesThanCapacity(t *testing.T) {
	p := &UnsubackPacket{
		Identifier:  9,
		Properties:  NewProperties(0, 0),
		ReasonCodes: []ReasonCode{ReasonSuccess, ReasonSuccess},
	}
	buf := roundTrip(t, p)
	r := wire.NewReader(buf)
	_, err := ReadUnsubackVariableHeaderAndPayload(r, 0, len(buf), 1)
	assert.ErrorIs(t, err, ErrTooManyUnsubackReasonCodes)
}

func TestPingreqPingrespAreEmpty(t *testing.T) {
	buf := roundTrip(t, &PingreqPacket{})
	assert.Len(t, buf, 0)
	_, err := ReadPingreqVariableHeaderAndPayload(wire.NewReader(buf), 0, 0)
	assert.NoError(t, err)

	buf2 := roundTrip(t, &PingrespPacket{})
	assert.Len(t, buf2, 0)
	_, err = ReadPingrespVariableHeaderAndPayload(wire.NewReader(buf2), 0, 0)
	assert.NoError(t, err)
}

// wireEncode mirrors roundTrip but without the require.NoError so callers
// can assert on the returned error themselves.
func wireEncode(p Packet) ([]byte, error) {
	lw := wire.NewLengthWriter()
	if err := p.WriteVariableHeaderAndPayload(lw); err != nil {
		return nil, err
	}
	buf := make([]byte, lw.Pos())
	w := wire.NewWriter(buf)
	if err := p.WriteVariableHeaderAndPayload(w); err != nil {
		return nil, err
	}
	return buf, nil
}
