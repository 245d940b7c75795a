package clientstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonzalop/mqttv5/internal/packets"
)

func connectQueued(t *testing.T, s *QueuedState) {
	t.Helper()
	require.NoError(t, s.Connect(&packets.ConnectPacket{CleanStart: true, KeepAlive: 30}))
	_, err := s.Receive(&packets.PacketGeneric{Kind: packets.Connack, Connack: &packets.ConnackPacket{ReasonCode: packets.ReasonSuccess}})
	require.NoError(t, err)
}

func TestQueuedStateAllowsMultipleOutstandingPublishes(t *testing.T) {
	s := NewQueuedState(4)
	connectQueued(t, s)

	p1, err := s.Publish("a", nil, packets.QoS1, false, nil)
	require.NoError(t, err)
	p2, err := s.Publish("b", nil, packets.QoS1, false, nil)
	require.NoError(t, err)
	assert.NotEqual(t, p1.Identifier.Identifier, p2.Identifier.Identifier)
	assert.True(t, s.WaitingForResponses())

	_, err = s.Receive(&packets.PacketGeneric{Kind: packets.Puback, Puback: &packets.PubackPacket{Identifier: p1.Identifier.Identifier, ReasonCode: packets.ReasonSuccess}})
	require.NoError(t, err)
	assert.True(t, s.WaitingForResponses())

	_, err = s.Receive(&packets.PacketGeneric{Kind: packets.Puback, Puback: &packets.PubackPacket{Identifier: p2.Identifier.Identifier, ReasonCode: packets.ReasonSuccess}})
	require.NoError(t, err)
	assert.False(t, s.WaitingForResponses())
}

func TestQueuedStateCapacityExhausted(t *testing.T) {
	s := NewQueuedState(1)
	connectQueued(t, s)
	_, err := s.Publish("a", nil, packets.QoS1, false, nil)
	require.NoError(t, err)
	_, err = s.Publish("b", nil, packets.QoS1, false, nil)
	assert.ErrorIs(t, err, ErrPendingSlotsFull)
}

func TestQueuedStateUnexpectedPubackIdentifier(t *testing.T) {
	s := NewQueuedState(4)
	connectQueued(t, s)
	_, err := s.Receive(&packets.PacketGeneric{Kind: packets.Puback, Puback: &packets.PubackPacket{Identifier: 123, ReasonCode: packets.ReasonSuccess}})
	assert.ErrorIs(t, err, ErrUnexpectedPubackPacketIdentifier)
}

func TestQueuedStateUnsubscribeNoSubscriptionExisted(t *testing.T) {
	s := NewQueuedState(4)
	connectQueued(t, s)
	unsub, err := s.Unsubscribe("a/b")
	require.NoError(t, err)

	evt, err := s.Receive(&packets.PacketGeneric{
		Kind:     packets.Unsuback,
		Unsuback: &packets.UnsubackPacket{Identifier: unsub.Identifier, ReasonCodes: []packets.ReasonCode{packets.ReasonNoSubscriptionExisted}},
	})
	require.NoError(t, err)
	assert.Equal(t, EventNoSubscriptionExisted, evt.Kind)
}

func TestQueuedStateAllocatorSkipsIDInUse(t *testing.T) {
	s := NewQueuedState(8)
	connectQueued(t, s)
	seen := map[packets.PacketIdentifier]bool{}
	for i := 0; i < 5; i++ {
		p, err := s.Publish("a", nil, packets.QoS1, false, nil)
		require.NoError(t, err)
		assert.False(t, seen[p.Identifier.Identifier], "identifier reused while still pending")
		seen[p.Identifier.Identifier] = true
		assert.NotZero(t, p.Identifier.Identifier)
	}

	// Rewind the rolling counter so the next allocation walks over the
	// identifiers 1..5 that are still pending.
	s.nextID = 0
	p, err := s.Publish("a", nil, packets.QoS1, false, nil)
	require.NoError(t, err)
	assert.Equal(t, packets.PacketIdentifier(6), p.Identifier.Identifier)
}
