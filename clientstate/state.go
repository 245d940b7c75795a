package clientstate

import "github.com/gonzalop/mqttv5/internal/packets"

// Phase is the client state machine's coarse lifecycle position.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseConnecting
	PhaseConnected
	PhaseErrored
	PhaseDisconnected
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseConnecting:
		return "connecting"
	case PhaseConnected:
		return "connected"
	case PhaseErrored:
		return "errored"
	case PhaseDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// ConnectionInfo is the negotiated state of a live connection: the
// keep-alive actually in effect (possibly overridden by the broker via
// Connack's ServerKeepAlive property), whether the broker reported an
// existing session, and the count of pings sent but not yet acked.
type ConnectionInfo struct {
	PendingPingCount uint32
	SessionPresent   bool
	KeepAlive        uint16
}

// ResumeHints is a read-only snapshot an external collaborator may use
// for its own diagnostics or reconnect-backoff decisions. The client
// never reads a persisted snapshot back in; no restart-time state is
// loaded from it.
type ResumeHints struct {
	AssignedClientIdentifier string
	KeepAlive                uint16
	SessionPresent           bool
	PendingAckCount          int
}

// ReceiveEventKind classifies what a caller should do after Receive
// processed an inbound packet.
type ReceiveEventKind uint8

const (
	// EventAck means an acknowledgment was processed with no action
	// required beyond state bookkeeping already performed internally.
	EventAck ReceiveEventKind = iota
	// EventPublish carries a QoS 0 application message.
	EventPublish
	// EventPublishAndPuback carries a QoS 1 application message plus the
	// Puback the caller must send in response.
	EventPublishAndPuback
	// EventSubscriptionGrantedBelowMaximumQoS reports a Suback granting a
	// lower QoS than requested.
	EventSubscriptionGrantedBelowMaximumQoS
	// EventPublishedMessageHadNoMatchingSubscribers reports a Puback whose
	// reason code was NoMatchingSubscribers.
	EventPublishedMessageHadNoMatchingSubscribers
	// EventNoSubscriptionExisted reports an Unsuback whose reason code was
	// NoSubscriptionExisted.
	EventNoSubscriptionExisted
	// EventDisconnect carries a Disconnect packet the caller should turn
	// into a terminal error.
	EventDisconnect
)

// ReceiveEvent is the result of processing one inbound packet. Only the
// fields relevant to Kind are populated.
type ReceiveEvent struct {
	Kind ReceiveEventKind

	Publish *packets.PublishPacket
	Puback  *packets.PubackPacket

	GrantedQoS packets.QoS
	MaximumQoS packets.QoS

	Disconnect *packets.DisconnectPacket
}

// ClientState tracks the protocol-level state of one MQTT v5 connection
// attempt and session. SingleState and QueuedState both implement it and
// MUST be interchangeable behind this interface.
type ClientState interface {
	// Phase returns the current lifecycle position.
	Phase() Phase

	// WaitingForResponses reports whether the caller must keep receiving
	// packets before sending anything other than Disconnect, a ping, or a
	// QoS 0 publish.
	WaitingForResponses() bool

	// Connect transitions Idle -> Connecting, recording clean-start and
	// keep-alive from the Connect packet about to be sent.
	Connect(connect *packets.ConnectPacket) error

	// Disconnect transitions Connected -> Disconnected and returns the
	// default Disconnect packet to send.
	Disconnect() (*packets.DisconnectPacket, error)

	// SendPing returns a Pingreq to send and increments the ping debt.
	SendPing() (*packets.PingreqPacket, error)

	// PendingPingCount returns the number of pings sent but not yet acked.
	PendingPingCount() uint32

	// Receive updates state from an inbound packet and reports the event
	// the caller must act on.
	Receive(packet *packets.PacketGeneric) (ReceiveEvent, error)

	// Publish builds a Publish packet for the given QoS, reserving a
	// pending Puback slot for QoS 1. QoS 2 always fails.
	Publish(topic string, payload []byte, qos packets.QoS, retain bool, props *packets.Properties) (*packets.PublishPacket, error)

	// Subscribe builds a Subscribe packet for a single topic filter,
	// reserving a pending Suback slot.
	Subscribe(topicFilter string, maximumQoS packets.QoS) (*packets.SubscribePacket, error)

	// Unsubscribe builds an Unsubscribe packet for a single topic filter,
	// reserving a pending Unsuback slot.
	Unsubscribe(topicFilter string) (*packets.UnsubscribePacket, error)

	// Error transitions to the terminal Errored phase; every subsequent
	// operation fails.
	Error()

	// ResumeHints reports a snapshot external code may serialize for its
	// own purposes; see ResumeHints's doc comment.
	ResumeHints() ResumeHints
}

func classifyPublishEvent(pub *packets.PublishPacket) (ReceiveEvent, error) {
	// Topic-alias-maximum is hard-coded to 0 (see Connect), so a broker
	// can never legally substitute an alias for the topic name: an empty
	// topic name here is always a protocol violation, not a disabled
	// feature.
	if pub.Topic == "" {
		return ReceiveEvent{}, ErrEmptyTopicNameWithAliasesDisabled
	}
	switch pub.Identifier.Kind {
	case packets.PublishNone:
		return ReceiveEvent{Kind: EventPublish, Publish: pub}, nil
	case packets.PublishQoS1:
		puback := &packets.PubackPacket{
			Identifier: pub.Identifier.Identifier,
			ReasonCode: packets.ReasonSuccess,
		}
		return ReceiveEvent{Kind: EventPublishAndPuback, Publish: pub, Puback: puback}, nil
	default:
		return ReceiveEvent{}, ErrReceivedQoS2PublishNotSupported
	}
}

func classifyPubackEvent(rc packets.ReasonCode) (ReceiveEvent, error) {
	if rc.IsError() {
		return ReceiveEvent{}, &ReasonError{Op: "publish", Code: rc}
	}
	if rc == packets.ReasonNoMatchingSubscribers {
		return ReceiveEvent{Kind: EventPublishedMessageHadNoMatchingSubscribers}, nil
	}
	return ReceiveEvent{Kind: EventAck}, nil
}

func classifySubackEvent(rc packets.ReasonCode, maximumQoS packets.QoS) (ReceiveEvent, error) {
	var granted packets.QoS
	switch rc {
	case packets.ReasonGrantedQoS0:
		granted = packets.QoS0
	case packets.ReasonGrantedQoS1:
		granted = packets.QoS1
	case packets.ReasonGrantedQoS2:
		granted = packets.QoS2
	default:
		return ReceiveEvent{}, &ReasonError{Op: "subscribe", Code: rc}
	}
	if granted < maximumQoS {
		return ReceiveEvent{Kind: EventSubscriptionGrantedBelowMaximumQoS, GrantedQoS: granted, MaximumQoS: maximumQoS}, nil
	}
	return ReceiveEvent{Kind: EventAck}, nil
}

func classifyUnsubackEvent(rc packets.ReasonCode) (ReceiveEvent, error) {
	if rc.IsError() {
		return ReceiveEvent{}, &ReasonError{Op: "unsubscribe", Code: rc}
	}
	if rc == packets.ReasonNoSubscriptionExisted {
		return ReceiveEvent{Kind: EventNoSubscriptionExisted}, nil
	}
	return ReceiveEvent{Kind: EventAck}, nil
}

// connackOutcome validates a Connack against the requested clean-start
// flag and derives the connection's effective keep-alive and assigned
// client identifier.
func connackOutcome(connack *packets.ConnackPacket, cleanStart bool, requestedKeepAlive uint16) (ConnectionInfo, string, error) {
	if connack.ReasonCode != packets.ReasonSuccess {
		return ConnectionInfo{}, "", &ReasonError{Op: "connect", Code: connack.ReasonCode}
	}
	if connack.SessionPresent && cleanStart {
		return ConnectionInfo{}, "", ErrUnexpectedSessionPresentForCleanStart
	}
	keepAlive := requestedKeepAlive
	var assignedClientID string
	if connack.Properties != nil {
		if connack.Properties.Has(packets.PresServerKeepAlive) {
			keepAlive = connack.Properties.ServerKeepAlive
		}
		if connack.Properties.Has(packets.PresAssignedClientIdentifier) {
			assignedClientID = connack.Properties.AssignedClientIdentifier
		}
	}
	return ConnectionInfo{SessionPresent: connack.SessionPresent, KeepAlive: keepAlive}, assignedClientID, nil
}
