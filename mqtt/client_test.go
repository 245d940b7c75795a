package mqtt

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonzalop/mqttv5/clientstate"
	"github.com/gonzalop/mqttv5/internal/framer"
	"github.com/gonzalop/mqttv5/internal/packets"
)

func newPipe() (client, server net.Conn) {
	return net.Pipe()
}

func serverReceive(t *testing.T, conn net.Conn) *packets.PacketGeneric {
	t.Helper()
	buf := make([]byte, 4096)
	g, err := framer.ReceiveOnePacket(conn, buf, packets.GenericCapacities{UserProperties: 16, SubscriptionIdentifier: 1, Requests: 4})
	require.NoError(t, err)
	return g
}

func serverSend(t *testing.T, conn net.Conn, pkt packets.Packet) {
	t.Helper()
	buf := make([]byte, 4096)
	require.NoError(t, framer.Send(conn, buf, pkt))
}

func TestConnectHandshakeSuccess(t *testing.T) {
	clientConn, serverConn := newPipe()
	defer clientConn.Close()
	defer serverConn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		g := serverReceive(t, serverConn)
		assert.Equal(t, packets.Connect, g.Kind)
		assert.Equal(t, "sensor-1", g.Connect.ClientID)
		serverSend(t, serverConn, &packets.ConnackPacket{ReasonCode: packets.ReasonSuccess})
	}()

	c := NewPollClient(clientConn, WithClientID("sensor-1"), WithKeepAlive(2*time.Second))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Connect(ctx))
	<-done
}

func TestConnectHandshakeRejected(t *testing.T) {
	clientConn, serverConn := newPipe()
	defer clientConn.Close()
	defer serverConn.Close()

	go func() {
		serverReceive(t, serverConn)
		serverSend(t, serverConn, &packets.ConnackPacket{ReasonCode: packets.ReasonNotAuthorized})
	}()

	c := NewPollClient(clientConn, WithClientID("sensor-1"))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := c.Connect(ctx)
	require.Error(t, err)
	var stateErr *StateError
	require.True(t, errors.As(err, &stateErr))
	var reasonErr *clientstate.ReasonError
	require.True(t, errors.As(err, &reasonErr))
	assert.Equal(t, packets.ReasonNotAuthorized, reasonErr.Code)
}

func connectedPair(t *testing.T, opts ...Option) (*PollClient, net.Conn) {
	t.Helper()
	clientConn, serverConn := newPipe()
	t.Cleanup(func() { clientConn.Close(); serverConn.Close() })

	done := make(chan struct{})
	go func() {
		defer close(done)
		serverReceive(t, serverConn)
		serverSend(t, serverConn, &packets.ConnackPacket{ReasonCode: packets.ReasonSuccess})
	}()

	c := NewPollClient(clientConn, opts...)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Connect(ctx))
	<-done
	return c, serverConn
}

func TestRunPublishQoS1RoundTrip(t *testing.T) {
	c, serverConn := connectedPair(t, WithKeepAlive(0))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runDone := make(chan error, 1)
	go func() { runDone <- c.Run(ctx, func(context.Context, *clientstate.ReceiveEvent) error { return nil }) }()

	go func() {
		g := serverReceive(t, serverConn)
		require.Equal(t, packets.Publish, g.Kind)
		serverSend(t, serverConn, &packets.PubackPacket{Identifier: g.Publish.Identifier.Identifier, ReasonCode: packets.ReasonSuccess})
	}()

	id, err := c.Publish(ctx, "a/b", []byte("hello"), packets.QoS1, false, nil)
	require.NoError(t, err)
	assert.NotZero(t, id)

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-runDone
}

func TestRunReceivesPublishAndSendsPuback(t *testing.T) {
	c, serverConn := connectedPair(t, WithKeepAlive(0))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan *clientstate.ReceiveEvent, 1)
	runDone := make(chan error, 1)
	go func() {
		runDone <- c.Run(ctx, func(_ context.Context, event *clientstate.ReceiveEvent) error {
			received <- event
			return nil
		})
	}()

	inbound := &packets.PublishPacket{
		Topic:      "a/b",
		QoS:        packets.QoS1,
		Identifier: packets.PublishPacketIdentifier{Kind: packets.PublishQoS1, Identifier: 7},
	}
	serverSend(t, serverConn, inbound)

	select {
	case event := <-received:
		assert.Equal(t, clientstate.EventPublishAndPuback, event.Kind)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for publish event")
	}

	g := serverReceive(t, serverConn)
	require.Equal(t, packets.Puback, g.Kind)
	assert.Equal(t, packets.PacketIdentifier(7), g.Puback.Identifier)

	cancel()
	<-runDone
}

func TestRunRetriesPingWithoutTerminatingUntilReceiveTimeout(t *testing.T) {
	// Keep-alive is negotiated in whole seconds on the wire (MQTT v5
	// section 3.1.2.10): the first ping arms at the 1s mark and, once
	// sent, the next is due a further keep-alive interval later (2s).
	// By then the first Pingreq is still unacknowledged, so pingDue must
	// take the reschedule-by-pingRetryDelay branch repeatedly — and keep
	// doing so — until receiveTimeoutAt finally fires at 2.2s.
	c, serverConn := connectedPair(t,
		WithKeepAlive(1*time.Second),
		WithPingRetryDelay(50*time.Millisecond),
		WithReceiveTimeout(2200*time.Millisecond),
	)

	var pingreqs int32
	go func() {
		buf := make([]byte, 64)
		for {
			n, err := serverConn.Read(buf)
			if err != nil {
				return
			}
			if n > 0 && packets.Type(buf[0]>>4) == packets.Pingreq {
				atomic.AddInt32(&pingreqs, 1)
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := c.Run(ctx, func(context.Context, *clientstate.ReceiveEvent) error { return nil })
	require.ErrorIs(t, err, ErrReceiveTimeout)
	// An outstanding unacknowledged Pingreq is never resent — pingDue
	// just reschedules by pingRetryDelay and waits — so exactly one
	// Pingreq goes out no matter how many retry cycles elapse before
	// receiveTimeoutAt finally fires.
	assert.Equal(t, 1, int(atomic.LoadInt32(&pingreqs)))
}

func TestHandlerClientRetainsEventUntilAcked(t *testing.T) {
	c, serverConn := connectedPair(t, WithKeepAlive(0))
	hc := NewHandlerClient(c)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	attempts := 0
	runDone := make(chan error, 1)
	go func() {
		runDone <- hc.Run(ctx, func(context.Context, *clientstate.ReceiveEvent) error {
			attempts++
			if attempts == 1 {
				return errors.New("transient downstream failure")
			}
			return nil
		})
	}()

	serverSend(t, serverConn, &packets.PublishPacket{Topic: "a/b"})

	time.Sleep(100 * time.Millisecond)
	cancel()
	err := <-runDone
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
	require.NotNil(t, hc.Pending())
	assert.Equal(t, "a/b", hc.Pending().Publish.Topic)
}
