package mqtt

import (
	"crypto/tls"
	"log/slog"
	"time"

	"github.com/gonzalop/mqttv5/internal/packets"
)

// Will describes the MQTT v5 last-will message a broker publishes on
// this client's behalf if the connection drops uncleanly.
type Will struct {
	Topic      string
	Payload    []byte
	QoS        packets.QoS
	Retain     bool
	Properties *packets.Properties
}

// config holds the resolved PollClient configuration. It is built by
// applying Options over newDefaultConfig and never mutated afterward.
type config struct {
	clientID string
	username string
	password string
	hasAuth  bool

	cleanStart bool
	keepAlive  time.Duration

	connectTimeout   time.Duration
	receiveTimeout   time.Duration
	pingRetryDelay   time.Duration
	queueCapacity    int // 0 selects clientstate.SingleState
	receiveMaximum   uint16
	sendBufferSize   int
	recvBufferSize   int
	subscribeCaps    packets.GenericCapacities
	connectUserProps []packets.UserProperty

	will *Will

	tlsConfig *tls.Config
	logger    *slog.Logger
	clock     Clock
}

func newDefaultConfig() *config {
	return &config{
		cleanStart:     true,
		keepAlive:      60 * time.Second,
		connectTimeout: 30 * time.Second,
		pingRetryDelay: 10 * time.Second,
		sendBufferSize: 4096,
		recvBufferSize: 4096,
		receiveMaximum: 65535,
		subscribeCaps: packets.GenericCapacities{
			UserProperties:         16,
			SubscriptionIdentifier: 1,
			Requests:               1,
		},
		logger: slog.Default(),
		clock:  realClock{},
	}
}

// Option configures a PollClient at construction time.
type Option func(*config)

// WithClientID sets the client identifier sent in CONNECT. An empty
// client ID is only valid together with WithCleanStart(true); the
// broker then assigns one, recoverable afterward via ResumeHints.
func WithClientID(id string) Option {
	return func(c *config) { c.clientID = id }
}

// WithCredentials sets the username/password CONNECT carries.
func WithCredentials(username, password string) Option {
	return func(c *config) {
		c.username = username
		c.password = password
		c.hasAuth = true
	}
}

// WithKeepAlive sets the requested keep-alive interval (default 60s).
// The broker may override it via CONNACK's Server Keep Alive property.
func WithKeepAlive(d time.Duration) Option {
	return func(c *config) { c.keepAlive = d }
}

// WithCleanStart sets the CONNECT clean-start flag (default true).
func WithCleanStart(clean bool) Option {
	return func(c *config) { c.cleanStart = clean }
}

// WithConnectTimeout bounds how long Connect waits for CONNACK (default 30s).
func WithConnectTimeout(d time.Duration) Option {
	return func(c *config) { c.connectTimeout = d }
}

// WithReceiveTimeout overrides the default of one and a half keep-alive
// intervals for declaring the broker unresponsive. Zero keeps that
// default; when the negotiated keep-alive is also zero, no receive
// timeout applies.
func WithReceiveTimeout(d time.Duration) Option {
	return func(c *config) { c.receiveTimeout = d }
}

// WithPingRetryDelay sets how long the client waits before checking
// again when a ping falls due while a previous Pingreq is still
// unacknowledged (default 10s); no further Pingreq is sent until the
// outstanding one is answered. It is a re-poll interval, not a terminal
// deadline: only ReceiveTimeout declares the broker unresponsive.
func WithPingRetryDelay(d time.Duration) Option {
	return func(c *config) { c.pingRetryDelay = d }
}

// WithQueueCapacity selects clientstate.QueuedState with the given
// capacity instead of the default clientstate.SingleState, allowing
// capacity publish/subscribe/unsubscribe operations outstanding at
// once. capacity must be less than 65535.
func WithQueueCapacity(capacity int) Option {
	return func(c *config) { c.queueCapacity = capacity }
}

// WithReceiveMaximum advertises the Receive Maximum property in CONNECT
// (default 65535): the number of QoS 1 publishes the client is willing
// to process concurrently. The value is only advertised; the client does
// not itself limit inbound publishes by it.
func WithReceiveMaximum(max uint16) Option {
	return func(c *config) { c.receiveMaximum = max }
}

// WithBufferSizes sets the fixed send/receive buffer sizes the framer
// reads and writes a whole packet into (default 4096 each).
func WithBufferSizes(send, recv int) Option {
	return func(c *config) {
		c.sendBufferSize = send
		c.recvBufferSize = recv
	}
}

// WithSubscriptionCapacities sets the capacities the decoder uses for
// incoming packets. Only Requests is consulted: it bounds the entries
// per Subscribe, Suback, Unsubscribe or Unsuback packet. A Subscribe,
// Suback or Unsuback with more entries fails to decode; an Unsubscribe's
// extra filters are dropped. UserProperties and SubscriptionIdentifier
// are not used.
func WithSubscriptionCapacities(caps packets.GenericCapacities) Option {
	return func(c *config) { c.subscribeCaps = caps }
}

// WithWill sets the last-will message CONNECT carries.
func WithWill(w Will) Option {
	return func(c *config) { c.will = &w }
}

// WithTLSConfig records a TLS configuration. PollClient itself is
// transport-agnostic, never dials a connection and does not read this
// value: TLS is whatever the caller-supplied Transport provides.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(c *config) { c.tlsConfig = cfg }
}

// WithLogger sets the structured logger PollClient holds (default
// slog.Default()). PollClient emits no log records through it.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithConnectUserProperties attaches user properties to CONNECT.
func WithConnectUserProperties(props ...packets.UserProperty) Option {
	return func(c *config) { c.connectUserProps = props }
}

// WithClock overrides the time source used for ping and receive-timeout
// deadlines. Intended for tests; production callers never need this.
func WithClock(clock Clock) Option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}
