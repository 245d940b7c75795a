package mqtt

import (
	"io"
	"time"

	"github.com/gorilla/websocket"
)

// WebsocketTransport adapts a *websocket.Conn (dialed with the "mqtt"
// subprotocol, per OASIS MQTT v5.0 section 6) to the Transport
// io.Reader/io.Writer shape, reassembling the binary message stream
// gorilla/websocket delivers as discrete frames into the continuous
// byte stream the framer expects.
type WebsocketTransport struct {
	conn *websocket.Conn
	buf  []byte
}

// NewWebsocketTransport wraps an already-dialed websocket connection.
func NewWebsocketTransport(conn *websocket.Conn) *WebsocketTransport {
	return &WebsocketTransport{conn: conn}
}

// Read implements io.Reader, pulling a new binary websocket message once
// any buffered bytes from the previous one are exhausted.
func (t *WebsocketTransport) Read(p []byte) (int, error) {
	for len(t.buf) == 0 {
		kind, data, err := t.conn.ReadMessage()
		if err != nil {
			return 0, err
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		t.buf = data
	}
	n := copy(p, t.buf)
	t.buf = t.buf[n:]
	return n, nil
}

// Write implements io.Writer, sending p as a single binary websocket
// message — MQTT control packets never need to span multiple frames on
// the way out since they're already length-prefixed as a whole.
func (t *WebsocketTransport) Write(p []byte) (int, error) {
	if err := t.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// SetReadDeadline satisfies Deadliner so WithConnectTimeout works over
// a websocket transport the same way it does over a net.Conn.
func (t *WebsocketTransport) SetReadDeadline(tm time.Time) error {
	return t.conn.SetReadDeadline(tm)
}

// Close closes the underlying websocket connection.
func (t *WebsocketTransport) Close() error {
	return t.conn.Close()
}

var _ io.ReadWriter = (*WebsocketTransport)(nil)
