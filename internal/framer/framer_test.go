package framer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonzalop/mqttv5/internal/packets"
)

func TestSendReceiveRoundTrip(t *testing.T) {
	p := &packets.PublishPacket{
		Topic:      "a/b",
		Properties: packets.NewProperties(0, 0),
		Payload:    []byte("payload"),
	}
	var out bytes.Buffer
	sendBuf := make([]byte, 256)
	require.NoError(t, Send(&out, sendBuf, p))

	recvBuf := make([]byte, 256)
	g, err := ReceiveOnePacket(&out, recvBuf, packets.GenericCapacities{})
	require.NoError(t, err)
	assert.Equal(t, packets.Publish, g.Kind)
	assert.Equal(t, "a/b", g.Publish.Topic)
	assert.Equal(t, []byte("payload"), g.Publish.Payload)
}

func TestReceiveRejectsInvalidFirstByte(t *testing.T) {
	stream := bytes.NewReader([]byte{0x00, 0x00}) // type nibble 0 is reserved
	_, err := ReceiveOnePacket(stream, make([]byte, 16), packets.GenericCapacities{})
	assert.ErrorIs(t, err, ErrInvalidFirstHeaderByte)
}

func TestReceiveRejectsReservedPublishQoS(t *testing.T) {
	firstByte := byte(packets.Publish)<<4 | 0b0110 // QoS bits = 3
	stream := bytes.NewReader([]byte{firstByte, 0x00})
	_, err := ReceiveOnePacket(stream, make([]byte, 16), packets.GenericCapacities{})
	assert.ErrorIs(t, err, ErrInvalidFirstHeaderByte)
}

func TestReceiveRejectsPacketLargerThanBuffer(t *testing.T) {
	p := &packets.PingreqPacket{}
	var out bytes.Buffer
	require.NoError(t, Send(&out, make([]byte, 16), p))

	pub := &packets.PublishPacket{
		Topic:      "a/b/c/d/e/f",
		Properties: packets.NewProperties(0, 0),
		Payload:    bytes.Repeat([]byte{0xAA}, 64),
	}
	var out2 bytes.Buffer
	require.NoError(t, Send(&out2, make([]byte, 256), pub))

	_, err := ReceiveOnePacket(&out2, make([]byte, 4), packets.GenericCapacities{})
	assert.ErrorIs(t, err, ErrPacketTooLargeForBuffer)
}

func TestReceiveRejectsWhenBufferTooSmallForVarIntItself(t *testing.T) {
	firstByte := byte(packets.Pingreq) << 4
	// The first three VBI bytes carry the continuation bit, so a 3-byte
	// buffer runs out before the VBI ends and must fail gracefully instead
	// of indexing past the end of the caller-supplied buffer.
	stream := bytes.NewReader([]byte{firstByte, 0xFF, 0xFF, 0xFF, 0x7F})
	_, err := ReceiveOnePacket(stream, make([]byte, 3), packets.GenericCapacities{})
	assert.ErrorIs(t, err, ErrPacketTooLargeForBuffer)
}

func TestSendRejectsPacketLargerThanBuffer(t *testing.T) {
	pub := &packets.PublishPacket{
		Topic:      "a/b",
		Properties: packets.NewProperties(0, 0),
		Payload:    bytes.Repeat([]byte{0xAA}, 64),
	}
	var out bytes.Buffer
	err := Send(&out, make([]byte, 8), pub)
	assert.ErrorIs(t, err, ErrPacketTooLargeForBuffer)
}

func TestSubscribeRoundTripThroughFramer(t *testing.T) {
	p := &packets.SubscribePacket{
		Identifier: 5,
		Properties: packets.NewProperties(0, 0),
		Requests: []packets.SubscriptionRequest{
			{TopicFilter: "x/y", Options: packets.SubscriptionOptions{MaximumQoS: packets.QoS1}},
		},
	}
	var out bytes.Buffer
	require.NoError(t, Send(&out, make([]byte, 256), p))

	g, err := ReceiveOnePacket(&out, make([]byte, 256), packets.GenericCapacities{Requests: 4})
	require.NoError(t, err)
	require.Equal(t, packets.Subscribe, g.Kind)
	require.Len(t, g.Subscribe.Requests, 1)
	assert.Equal(t, "x/y", g.Subscribe.Requests[0].TopicFilter)
}
