package clientstate

import "github.com/gonzalop/mqttv5/internal/packets"

// Fixed packet identifiers used by SingleState: since only one operation
// of each kind may be outstanding at a time, a single reserved id per
// kind is all that's ever needed.
const (
	singlePublishID     packets.PacketIdentifier = 1
	singleSubscribeID   packets.PacketIdentifier = 2
	singleUnsubscribeID packets.PacketIdentifier = 3
)

type waitingKind uint8

const (
	waitingNone waitingKind = iota
	waitingForPuback
	waitingForSuback
	waitingForUnsuback
)

type waitingState struct {
	kind waitingKind
	id   packets.PacketIdentifier
	qos  packets.QoS
}

func (w waitingState) isWaiting() bool { return w.kind != waitingNone }

// SingleState is the single-slot ClientState variant: at most one
// publish/subscribe/unsubscribe acknowledgment may be outstanding at a
// time, so it needs no dynamic identifier allocation or pending-op map.
type SingleState struct {
	phase Phase

	requestedCleanStart bool
	requestedKeepAlive  uint16

	info    ConnectionInfo
	waiting waitingState

	assignedClientID string
}

// NewSingleState returns a SingleState in the Idle phase.
func NewSingleState() *SingleState {
	return &SingleState{phase: PhaseIdle}
}

func (s *SingleState) Phase() Phase { return s.phase }

func (s *SingleState) WaitingForResponses() bool {
	switch s.phase {
	case PhaseConnecting:
		return true
	case PhaseConnected:
		return s.waiting.isWaiting()
	default:
		return false
	}
}

func (s *SingleState) Connect(connect *packets.ConnectPacket) error {
	if s.phase != PhaseIdle {
		return ErrNotIdle
	}
	s.requestedCleanStart = connect.CleanStart
	s.requestedKeepAlive = connect.KeepAlive
	s.phase = PhaseConnecting
	return nil
}

func (s *SingleState) Disconnect() (*packets.DisconnectPacket, error) {
	if s.phase != PhaseConnected {
		return nil, ErrNotConnected
	}
	s.phase = PhaseDisconnected
	return &packets.DisconnectPacket{ReasonCode: packets.ReasonSuccess}, nil
}

func (s *SingleState) SendPing() (*packets.PingreqPacket, error) {
	if s.phase != PhaseConnected {
		return nil, ErrNotConnected
	}
	s.info.PendingPingCount++
	return &packets.PingreqPacket{}, nil
}

func (s *SingleState) PendingPingCount() uint32 {
	if s.phase != PhaseConnected {
		return 0
	}
	return s.info.PendingPingCount
}

func (s *SingleState) Publish(topic string, payload []byte, qos packets.QoS, retain bool, props *packets.Properties) (*packets.PublishPacket, error) {
	if s.phase != PhaseConnected {
		return nil, ErrNotConnected
	}
	var identifier packets.PublishPacketIdentifier
	switch qos {
	case packets.QoS0:
		identifier = packets.PublishPacketIdentifier{Kind: packets.PublishNone}
	case packets.QoS1:
		if s.waiting.isWaiting() {
			return nil, ErrClientIsWaitingForResponse
		}
		identifier = packets.PublishPacketIdentifier{Kind: packets.PublishQoS1, Identifier: singlePublishID}
	case packets.QoS2:
		return nil, ErrQoS2NotSupported
	default:
		return nil, ErrQoS2NotSupported
	}

	pub := &packets.PublishPacket{
		Retain:     retain,
		QoS:        qos,
		Topic:      topic,
		Identifier: identifier,
		Properties: props,
		Payload:    payload,
	}
	if qos == packets.QoS1 {
		s.waiting = waitingState{kind: waitingForPuback, id: singlePublishID}
	}
	return pub, nil
}

func (s *SingleState) Subscribe(topicFilter string, maximumQoS packets.QoS) (*packets.SubscribePacket, error) {
	if s.phase != PhaseConnected {
		return nil, ErrNotConnected
	}
	if s.waiting.isWaiting() {
		return nil, ErrClientIsWaitingForResponse
	}
	if maximumQoS == packets.QoS2 {
		return nil, ErrQoS2NotSupported
	}
	sub := &packets.SubscribePacket{
		Identifier: singleSubscribeID,
		Requests: []packets.SubscriptionRequest{
			{TopicFilter: topicFilter, Options: packets.SubscriptionOptions{MaximumQoS: maximumQoS}},
		},
	}
	s.waiting = waitingState{kind: waitingForSuback, id: singleSubscribeID, qos: maximumQoS}
	return sub, nil
}

func (s *SingleState) Unsubscribe(topicFilter string) (*packets.UnsubscribePacket, error) {
	if s.phase != PhaseConnected {
		return nil, ErrNotConnected
	}
	if s.waiting.isWaiting() {
		return nil, ErrClientIsWaitingForResponse
	}
	unsub := &packets.UnsubscribePacket{
		Identifier:   singleUnsubscribeID,
		TopicFilters: []string{topicFilter},
	}
	s.waiting = waitingState{kind: waitingForUnsuback, id: singleUnsubscribeID}
	return unsub, nil
}

func (s *SingleState) Error() { s.phase = PhaseErrored }

func (s *SingleState) ResumeHints() ResumeHints {
	pending := 0
	if s.waiting.isWaiting() {
		pending = 1
	}
	return ResumeHints{
		AssignedClientIdentifier: s.assignedClientID,
		KeepAlive:                s.info.KeepAlive,
		SessionPresent:           s.info.SessionPresent,
		PendingAckCount:          pending,
	}
}

func (s *SingleState) Receive(packet *packets.PacketGeneric) (ReceiveEvent, error) {
	switch s.phase {
	case PhaseConnecting:
		return s.receiveWhileConnecting(packet)
	case PhaseConnected:
		return s.receiveWhileConnected(packet)
	default:
		return ReceiveEvent{}, ErrReceiveWhenNotConnectedOrConnecting
	}
}

func (s *SingleState) receiveWhileConnecting(packet *packets.PacketGeneric) (ReceiveEvent, error) {
	switch packet.Kind {
	case packets.Connack:
		info, assignedClientID, err := connackOutcome(packet.Connack, s.requestedCleanStart, s.requestedKeepAlive)
		if err != nil {
			return ReceiveEvent{}, err
		}
		s.info = info
		s.assignedClientID = assignedClientID
		s.waiting = waitingState{}
		s.phase = PhaseConnected
		return ReceiveEvent{Kind: EventAck}, nil
	case packets.Auth:
		return ReceiveEvent{}, ErrAuthNotSupported
	default:
		return ReceiveEvent{}, ErrReceivedPacketOtherThanConnackOrAuthWhenConnecting
	}
}

func (s *SingleState) receiveWhileConnected(packet *packets.PacketGeneric) (ReceiveEvent, error) {
	switch packet.Kind {
	case packets.Publish:
		return classifyPublishEvent(packet.Publish)

	case packets.Puback:
		ackID := packet.Puback.Identifier
		if s.waiting.kind != waitingForPuback {
			return ReceiveEvent{}, ErrUnexpectedPuback
		}
		if s.waiting.id != ackID {
			return ReceiveEvent{}, ErrUnexpectedPubackPacketIdentifier
		}
		s.waiting = waitingState{}
		return classifyPubackEvent(packet.Puback.ReasonCode)

	case packets.Suback:
		ackID := packet.Suback.Identifier
		if s.waiting.kind != waitingForSuback {
			return ReceiveEvent{}, ErrUnexpectedSuback
		}
		if s.waiting.id != ackID {
			return ReceiveEvent{}, ErrUnexpectedSubackPacketIdentifier
		}
		maximumQoS := s.waiting.qos
		s.waiting = waitingState{}
		return classifySubackEvent(packet.Suback.ReasonCodes[0], maximumQoS)

	case packets.Unsuback:
		ackID := packet.Unsuback.Identifier
		if s.waiting.kind != waitingForUnsuback {
			return ReceiveEvent{}, ErrUnexpectedUnsuback
		}
		if s.waiting.id != ackID {
			return ReceiveEvent{}, ErrUnexpectedUnsubackPacketIdentifier
		}
		s.waiting = waitingState{}
		return classifyUnsubackEvent(packet.Unsuback.ReasonCodes[0])

	case packets.Pingresp:
		if s.info.PendingPingCount == 0 {
			return ReceiveEvent{}, ErrUnexpectedPingresp
		}
		s.info.PendingPingCount--
		return ReceiveEvent{Kind: EventAck}, nil

	case packets.Disconnect:
		return ReceiveEvent{Kind: EventDisconnect, Disconnect: packet.Disconnect}, nil

	case packets.Connack:
		return ReceiveEvent{}, ErrReceivedConnackWhenNotConnecting

	case packets.Auth:
		return ReceiveEvent{}, ErrAuthNotSupported

	default:
		return ReceiveEvent{}, ErrServerOnlyMessageReceived
	}
}
