// Package mqtt implements the poll-driven MQTT v5 client (L5): wiring
// together the wire codec, packet framer, and protocol state machine
// over a caller-supplied Transport, with ping and receive-timeout
// deadline supervision running alongside the caller's own event loop.
package mqtt

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gonzalop/mqttv5/clientstate"
	"github.com/gonzalop/mqttv5/internal/framer"
	"github.com/gonzalop/mqttv5/internal/packets"
)

// Handler is invoked by Run for every event the state machine reports
// for an inbound packet: a received publish, an acknowledgment, a
// granted-below-requested subscription, or a broker-initiated
// disconnect (after which Run stops regardless of the handler's result).
// Returning an error stops Run.
type Handler func(ctx context.Context, event *clientstate.ReceiveEvent) error

// PollClient drives one MQTT v5 connection over a Transport: Connect
// performs the CONNECT/CONNACK handshake synchronously, then Run takes
// over the connection for its lifetime, dispatching inbound events to a
// Handler while answering ping and receive-timeout deadlines in the
// background. Publish, Subscribe, Unsubscribe, and Disconnect may be
// called concurrently with Run from other goroutines.
type PollClient struct {
	transport Transport
	cfg       *config
	logger    *slog.Logger

	mu    sync.Mutex
	state clientstate.ClientState

	egress  chan packets.Packet // Run loop/user goroutines -> txTask; nil Packet is the flush-and-stop sentinel
	stopped chan struct{}       // closed once txTask has flushed a Disconnect and stopped

	pingAt           time.Time
	receiveTimeoutAt time.Time
}

// NewPollClient constructs a PollClient over transport. It does not read
// or write anything until Connect is called.
func NewPollClient(transport Transport, opts ...Option) *PollClient {
	cfg := newDefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	var state clientstate.ClientState
	if cfg.queueCapacity > 0 {
		state = clientstate.NewQueuedState(cfg.queueCapacity)
	} else {
		state = clientstate.NewSingleState()
	}
	return &PollClient{
		transport: transport,
		cfg:       cfg,
		logger:    cfg.logger,
		state:     state,
		egress:    make(chan packets.Packet, 1),
		stopped:   make(chan struct{}),
	}
}

func (c *PollClient) genericCaps() packets.GenericCapacities { return c.cfg.subscribeCaps }

func (c *PollClient) buildConnectPacket() *packets.ConnectPacket {
	connect := &packets.ConnectPacket{
		CleanStart: c.cfg.cleanStart,
		KeepAlive:  uint16(c.cfg.keepAlive / time.Second),
		ClientID:   c.cfg.clientID,
	}
	if c.cfg.hasAuth {
		connect.UsernameFlag = true
		connect.Username = c.cfg.username
		connect.PasswordFlag = c.cfg.password != ""
		connect.Password = c.cfg.password
	}
	if w := c.cfg.will; w != nil {
		connect.WillFlag = true
		connect.WillTopic = w.Topic
		connect.WillPayload = w.Payload
		connect.WillQoS = w.QoS
		connect.WillRetain = w.Retain
		connect.WillProperties = w.Properties
	}
	props := packets.NewProperties(len(c.cfg.connectUserProps), 0)
	if c.cfg.receiveMaximum != 0 && c.cfg.receiveMaximum != 65535 {
		props.Presence |= packets.PresReceiveMaximum
		props.ReceiveMaximum = c.cfg.receiveMaximum
	}
	for _, up := range c.cfg.connectUserProps {
		_ = props.AddUserProperty(up.Key, up.Value)
	}
	if !props.IsEmpty() {
		connect.Properties = props
	}
	return connect
}

// Connect sends CONNECT and waits for CONNACK, failing if ctx is
// cancelled or the broker rejects the connection. On success the
// client's keep-alive and receive-timeout deadlines are armed and Run
// may be called.
func (c *PollClient) Connect(ctx context.Context) error {
	connect := c.buildConnectPacket()

	c.mu.Lock()
	err := c.state.Connect(connect)
	c.mu.Unlock()
	if err != nil {
		return &StateError{Op: "connect", Parent: err}
	}

	sendBuf := make([]byte, c.cfg.sendBufferSize)
	if err := framer.Send(c.transport, sendBuf, connect); err != nil {
		return &CodecError{Op: "send connect", Parent: err}
	}

	if d, ok := c.transport.(Deadliner); ok && c.cfg.connectTimeout > 0 {
		if err := d.SetReadDeadline(c.cfg.clock.Now().Add(c.cfg.connectTimeout)); err != nil {
			return &CodecError{Op: "set connect deadline", Parent: err}
		}
		defer d.SetReadDeadline(time.Time{})
	}

	recvBuf := make([]byte, c.cfg.recvBufferSize)
	generic, err := receiveWithContext(ctx, c.transport, recvBuf, c.genericCaps())
	if err != nil {
		return &CodecError{Op: "receive connack", Parent: err}
	}
	if generic.Kind != packets.Connack {
		return &StateError{Op: "connect", Parent: fmt.Errorf("expected CONNACK, got %s", generic.Kind)}
	}

	c.mu.Lock()
	_, err = c.state.Receive(generic)
	hints := c.state.ResumeHints()
	c.mu.Unlock()
	if err != nil {
		return &StateError{Op: "connect", Parent: err}
	}

	now := c.cfg.clock.Now()
	if hints.KeepAlive > 0 {
		c.pingAt = now.Add(time.Duration(hints.KeepAlive) * time.Second)
	}
	if rt := c.effectiveReceiveTimeout(hints.KeepAlive); rt > 0 {
		c.receiveTimeoutAt = now.Add(rt)
	}
	return nil
}

func (c *PollClient) effectiveReceiveTimeout(negotiatedKeepAlive uint16) time.Duration {
	if c.cfg.receiveTimeout > 0 {
		return c.cfg.receiveTimeout
	}
	if negotiatedKeepAlive == 0 {
		return 0
	}
	ka := time.Duration(negotiatedKeepAlive) * time.Second
	return ka + ka/2
}

// AssignedClientIdentifier returns the client identifier the broker
// assigned, if CONNECT carried an empty one.
func (c *PollClient) AssignedClientIdentifier() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.ResumeHints().AssignedClientIdentifier
}

// Run takes over the connection until ctx is cancelled, the transport
// fails, a protocol error occurs, or handler returns an error. It spawns
// two background goroutines — one reading complete packets off the
// transport, one writing packets handed to it over egress — plus a
// supervisor that closes the transport (when it implements io.Closer)
// as soon as any of rxTask, txTask, or mainLoop returns, for any reason.
// That close is what unblocks rxTask's in-flight Read: a plain
// io.Reader ignores context cancellation, so closing the underlying
// connection is the only way to interrupt it, whether Run is ending via
// Disconnect, a timeout, or a handler error.
func (c *PollClient) Run(ctx context.Context, handler Handler) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var g errgroup.Group
	ingress := make(chan *packets.PacketGeneric, 1)
	rxErr := make(chan error, 1)

	g.Go(func() error { defer cancel(); return c.rxTask(runCtx, ingress, rxErr) })
	g.Go(func() error { defer cancel(); return c.txTask(runCtx) })
	g.Go(func() error { defer cancel(); return c.mainLoop(runCtx, ingress, rxErr, handler) })
	g.Go(func() error {
		<-runCtx.Done()
		if closer, ok := c.transport.(io.Closer); ok {
			_ = closer.Close()
		}
		return nil
	})

	return g.Wait()
}

// rxTask reads packets off the transport until it fails or ctx is
// cancelled. A read error is handed to mainLoop over rxErr rather than
// returned directly: a graceful Disconnect closes the transport (when it
// implements io.Closer) to unblock a pending Read exactly the same way
// an unexpected connection loss would, and mainLoop — watching c.stopped
// — is what decides whether that means "shut down cleanly" or "report
// this as a connection failure".
func (c *PollClient) rxTask(ctx context.Context, ingress chan<- *packets.PacketGeneric, rxErr chan<- error) error {
	buf := make([]byte, c.cfg.recvBufferSize)
	for {
		generic, err := receiveWithContext(ctx, c.transport, buf, c.genericCaps())
		if err != nil {
			select {
			case rxErr <- err:
			default:
			}
			return nil
		}
		select {
		case ingress <- generic:
		case <-ctx.Done():
			return nil
		case <-c.stopped:
			return nil
		}
	}
}

func (c *PollClient) txTask(ctx context.Context) error {
	buf := make([]byte, c.cfg.sendBufferSize)
	for {
		select {
		case <-ctx.Done():
			return nil
		case pkt := <-c.egress:
			if pkt == nil {
				// Flush-and-stop sentinel: the Disconnect preceding it is
				// already written. Closing the transport, when possible,
				// unblocks rxTask's pending Read so Run can return.
				if closer, ok := c.transport.(io.Closer); ok {
					_ = closer.Close()
				}
				close(c.stopped)
				return nil
			}
			if err := framer.Send(c.transport, buf, pkt); err != nil {
				return &CodecError{Op: "send", Parent: err}
			}
		}
	}
}

func (c *PollClient) mainLoop(ctx context.Context, ingress <-chan *packets.PacketGeneric, rxErr <-chan error, handler Handler) error {
	for {
		pingTimer := deadlineChan(c.cfg.clock, c.pingAt)
		recvTimeoutTimer := deadlineChan(c.cfg.clock, c.receiveTimeoutAt)

		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-c.stopped:
			return nil

		case err := <-rxErr:
			return &CodecError{Op: "receive", Parent: err}

		case generic := <-ingress:
			if err := c.process(ctx, generic, handler); err != nil {
				return err
			}

		case <-pingTimer:
			if err := c.pingDue(ctx); err != nil {
				return err
			}

		case <-recvTimeoutTimer:
			return ErrReceiveTimeout
		}
	}
}

// pingDue runs when pingAt expires. If a previous Pingreq is still
// unacknowledged it is not a failure by itself — only receiveTimeoutAt
// expiring declares the broker unresponsive — so pingDue just
// reschedules by pingRetryDelay and tries again later. Otherwise it
// sends a fresh Pingreq and reschedules by the keep-alive interval.
func (c *PollClient) pingDue(ctx context.Context) error {
	c.mu.Lock()
	pending := c.state.PendingPingCount()
	c.mu.Unlock()
	if pending > 0 {
		c.pingAt = c.cfg.clock.Now().Add(c.cfg.pingRetryDelay)
		return nil
	}
	return c.sendPing(ctx)
}

func (c *PollClient) sendPing(ctx context.Context) error {
	c.mu.Lock()
	ping, err := c.state.SendPing()
	c.mu.Unlock()
	if err != nil {
		return &StateError{Op: "ping", Parent: err}
	}
	if err := c.sendPacket(ctx, ping); err != nil {
		return err
	}
	if c.cfg.keepAlive > 0 {
		c.pingAt = c.cfg.clock.Now().Add(c.cfg.keepAlive)
	}
	return nil
}

func (c *PollClient) process(ctx context.Context, generic *packets.PacketGeneric, handler Handler) error {
	c.mu.Lock()
	event, err := c.state.Receive(generic)
	c.mu.Unlock()
	if err != nil {
		return &StateError{Op: "receive", Parent: err}
	}

	// Only CONNACK and PINGRESP count toward broker liveness; a stream of
	// unsolicited PUBLISHes alone does not reset the unresponsive-server
	// clock, matching the keep-alive contract in MQTT v5 section 3.1.2.10.
	if generic.Kind == packets.Connack || generic.Kind == packets.Pingresp {
		if rt := c.effectiveReceiveTimeout(c.cfg.uint16KeepAliveOrZero()); rt > 0 {
			c.receiveTimeoutAt = c.cfg.clock.Now().Add(rt)
		}
	}

	switch event.Kind {
	case clientstate.EventPublishAndPuback:
		if err := c.sendPacket(ctx, event.Puback); err != nil {
			return err
		}
	case clientstate.EventDisconnect:
		_ = handler(ctx, &event)
		return &StateError{Op: "receive", Parent: fmt.Errorf("broker sent DISCONNECT: reason 0x%02X", byte(event.Disconnect.ReasonCode))}
	}

	return handler(ctx, &event)
}

func (c *config) uint16KeepAliveOrZero() uint16 {
	return uint16(c.keepAlive / time.Second)
}

func (c *PollClient) sendPacket(ctx context.Context, pkt packets.Packet) error {
	select {
	case <-c.stopped:
		return ErrClientClosed
	default:
	}
	select {
	case c.egress <- pkt:
		return nil
	case <-c.stopped:
		return ErrClientClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Publish sends a PUBLISH at the given QoS, returning the packet
// identifier reserved for it (zero for QoS 0). It may be called
// concurrently with Run.
func (c *PollClient) Publish(ctx context.Context, topic string, payload []byte, qos packets.QoS, retain bool, props *packets.Properties) (packets.PacketIdentifier, error) {
	c.mu.Lock()
	pub, err := c.state.Publish(topic, payload, qos, retain, props)
	c.mu.Unlock()
	if err != nil {
		return 0, &StateError{Op: "publish", Parent: err}
	}
	if err := c.sendPacket(ctx, pub); err != nil {
		return 0, err
	}
	return pub.Identifier.Identifier, nil
}

// Subscribe sends a SUBSCRIBE for a single topic filter, returning the
// reserved packet identifier.
func (c *PollClient) Subscribe(ctx context.Context, topicFilter string, maximumQoS packets.QoS) (packets.PacketIdentifier, error) {
	c.mu.Lock()
	sub, err := c.state.Subscribe(topicFilter, maximumQoS)
	c.mu.Unlock()
	if err != nil {
		return 0, &StateError{Op: "subscribe", Parent: err}
	}
	if err := c.sendPacket(ctx, sub); err != nil {
		return 0, err
	}
	return sub.Identifier, nil
}

// Unsubscribe sends an UNSUBSCRIBE for a single topic filter, returning
// the reserved packet identifier.
func (c *PollClient) Unsubscribe(ctx context.Context, topicFilter string) (packets.PacketIdentifier, error) {
	c.mu.Lock()
	unsub, err := c.state.Unsubscribe(topicFilter)
	c.mu.Unlock()
	if err != nil {
		return 0, &StateError{Op: "unsubscribe", Parent: err}
	}
	if err := c.sendPacket(ctx, unsub); err != nil {
		return 0, err
	}
	return unsub.Identifier, nil
}

// Disconnect sends DISCONNECT and signals txTask to flush and stop.
// Once the write completes, txTask closes the transport (if it
// implements io.Closer), which unblocks rxTask's pending Read and lets
// Run return.
func (c *PollClient) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	disconnect, err := c.state.Disconnect()
	c.mu.Unlock()
	if err != nil {
		return &StateError{Op: "disconnect", Parent: err}
	}
	if err := c.sendPacket(ctx, disconnect); err != nil {
		return err
	}
	return c.sendPacket(ctx, nil)
}

// receiveWithContext reads one packet off transport. A plain Transport
// blocks for the duration of the underlying Read; ctx is honored between
// packets, and by closing the Transport out-of-band (the idiomatic way
// to cancel in-flight Go network I/O) to unblock a pending Read.
func receiveWithContext(ctx context.Context, transport Transport, buf []byte, caps packets.GenericCapacities) (*packets.PacketGeneric, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return framer.ReceiveOnePacket(transport, buf, caps)
}
