package clientstate

import "github.com/gonzalop/mqttv5/internal/packets"

type pendingKind uint8

const (
	pendingPuback pendingKind = iota
	pendingSuback
	pendingUnsuback
)

type pendingOp struct {
	kind pendingKind
	qos  packets.QoS // only meaningful for pendingSuback
}

// QueuedState is the bounded, multi-outstanding-operation ClientState
// variant: up to capacity publish/subscribe/unsubscribe operations may
// be awaiting acknowledgment concurrently, each tracked by its own
// packet identifier in a bounded map. capacity must be less than 65535
// (identifier zero is never used) so a free identifier can always be
// found while the map is not full.
type QueuedState struct {
	phase Phase

	requestedCleanStart bool
	requestedKeepAlive  uint16

	info ConnectionInfo

	capacity int
	pending  map[packets.PacketIdentifier]pendingOp
	nextID   packets.PacketIdentifier

	assignedClientID string
}

// NewQueuedState returns a QueuedState in the Idle phase with room for
// up to capacity concurrently outstanding operations.
func NewQueuedState(capacity int) *QueuedState {
	return &QueuedState{
		phase:    PhaseIdle,
		capacity: capacity,
		pending:  make(map[packets.PacketIdentifier]pendingOp, capacity),
	}
}

func (s *QueuedState) Phase() Phase { return s.phase }

func (s *QueuedState) WaitingForResponses() bool {
	switch s.phase {
	case PhaseConnecting:
		return true
	case PhaseConnected:
		return len(s.pending) > 0
	default:
		return false
	}
}

func (s *QueuedState) Connect(connect *packets.ConnectPacket) error {
	if s.phase != PhaseIdle {
		return ErrNotIdle
	}
	s.requestedCleanStart = connect.CleanStart
	s.requestedKeepAlive = connect.KeepAlive
	s.phase = PhaseConnecting
	return nil
}

func (s *QueuedState) Disconnect() (*packets.DisconnectPacket, error) {
	if s.phase != PhaseConnected {
		return nil, ErrNotConnected
	}
	s.phase = PhaseDisconnected
	return &packets.DisconnectPacket{ReasonCode: packets.ReasonSuccess}, nil
}

func (s *QueuedState) SendPing() (*packets.PingreqPacket, error) {
	if s.phase != PhaseConnected {
		return nil, ErrNotConnected
	}
	s.info.PendingPingCount++
	return &packets.PingreqPacket{}, nil
}

func (s *QueuedState) PendingPingCount() uint32 {
	if s.phase != PhaseConnected {
		return 0
	}
	return s.info.PendingPingCount
}

// allocateID finds an unused, nonzero identifier by advancing a rolling
// counter and skipping any value currently in s.pending.
func (s *QueuedState) allocateID() (packets.PacketIdentifier, error) {
	if len(s.pending) >= s.capacity {
		return 0, ErrPendingSlotsFull
	}
	for i := 0; i < 65535; i++ {
		s.nextID++
		if s.nextID == 0 {
			s.nextID = 1
		}
		if _, used := s.pending[s.nextID]; !used {
			return s.nextID, nil
		}
	}
	return 0, ErrPacketIdentifiersExhausted
}

func (s *QueuedState) Publish(topic string, payload []byte, qos packets.QoS, retain bool, props *packets.Properties) (*packets.PublishPacket, error) {
	if s.phase != PhaseConnected {
		return nil, ErrNotConnected
	}
	var identifier packets.PublishPacketIdentifier
	switch qos {
	case packets.QoS0:
		identifier = packets.PublishPacketIdentifier{Kind: packets.PublishNone}
	case packets.QoS1:
		id, err := s.allocateID()
		if err != nil {
			return nil, err
		}
		identifier = packets.PublishPacketIdentifier{Kind: packets.PublishQoS1, Identifier: id}
		s.pending[id] = pendingOp{kind: pendingPuback}
	case packets.QoS2:
		return nil, ErrQoS2NotSupported
	default:
		return nil, ErrQoS2NotSupported
	}

	return &packets.PublishPacket{
		Retain:     retain,
		QoS:        qos,
		Topic:      topic,
		Identifier: identifier,
		Properties: props,
		Payload:    payload,
	}, nil
}

func (s *QueuedState) Subscribe(topicFilter string, maximumQoS packets.QoS) (*packets.SubscribePacket, error) {
	if s.phase != PhaseConnected {
		return nil, ErrNotConnected
	}
	if maximumQoS == packets.QoS2 {
		return nil, ErrQoS2NotSupported
	}
	id, err := s.allocateID()
	if err != nil {
		return nil, err
	}
	s.pending[id] = pendingOp{kind: pendingSuback, qos: maximumQoS}
	return &packets.SubscribePacket{
		Identifier: id,
		Requests: []packets.SubscriptionRequest{
			{TopicFilter: topicFilter, Options: packets.SubscriptionOptions{MaximumQoS: maximumQoS}},
		},
	}, nil
}

func (s *QueuedState) Unsubscribe(topicFilter string) (*packets.UnsubscribePacket, error) {
	if s.phase != PhaseConnected {
		return nil, ErrNotConnected
	}
	id, err := s.allocateID()
	if err != nil {
		return nil, err
	}
	s.pending[id] = pendingOp{kind: pendingUnsuback}
	return &packets.UnsubscribePacket{
		Identifier:   id,
		TopicFilters: []string{topicFilter},
	}, nil
}

func (s *QueuedState) Error() { s.phase = PhaseErrored }

func (s *QueuedState) ResumeHints() ResumeHints {
	return ResumeHints{
		AssignedClientIdentifier: s.assignedClientID,
		KeepAlive:                s.info.KeepAlive,
		SessionPresent:           s.info.SessionPresent,
		PendingAckCount:          len(s.pending),
	}
}

func (s *QueuedState) Receive(packet *packets.PacketGeneric) (ReceiveEvent, error) {
	switch s.phase {
	case PhaseConnecting:
		return s.receiveWhileConnecting(packet)
	case PhaseConnected:
		return s.receiveWhileConnected(packet)
	default:
		return ReceiveEvent{}, ErrReceiveWhenNotConnectedOrConnecting
	}
}

func (s *QueuedState) receiveWhileConnecting(packet *packets.PacketGeneric) (ReceiveEvent, error) {
	switch packet.Kind {
	case packets.Connack:
		info, assignedClientID, err := connackOutcome(packet.Connack, s.requestedCleanStart, s.requestedKeepAlive)
		if err != nil {
			return ReceiveEvent{}, err
		}
		s.info = info
		s.assignedClientID = assignedClientID
		s.phase = PhaseConnected
		return ReceiveEvent{Kind: EventAck}, nil
	case packets.Auth:
		return ReceiveEvent{}, ErrAuthNotSupported
	default:
		return ReceiveEvent{}, ErrReceivedPacketOtherThanConnackOrAuthWhenConnecting
	}
}

func (s *QueuedState) receiveWhileConnected(packet *packets.PacketGeneric) (ReceiveEvent, error) {
	switch packet.Kind {
	case packets.Publish:
		return classifyPublishEvent(packet.Publish)

	case packets.Puback:
		ackID := packet.Puback.Identifier
		op, ok := s.pending[ackID]
		if !ok {
			return ReceiveEvent{}, ErrUnexpectedPubackPacketIdentifier
		}
		if op.kind != pendingPuback {
			return ReceiveEvent{}, ErrUnexpectedPuback
		}
		delete(s.pending, ackID)
		return classifyPubackEvent(packet.Puback.ReasonCode)

	case packets.Suback:
		ackID := packet.Suback.Identifier
		op, ok := s.pending[ackID]
		if !ok {
			return ReceiveEvent{}, ErrUnexpectedSubackPacketIdentifier
		}
		if op.kind != pendingSuback {
			return ReceiveEvent{}, ErrUnexpectedSuback
		}
		delete(s.pending, ackID)
		return classifySubackEvent(packet.Suback.ReasonCodes[0], op.qos)

	case packets.Unsuback:
		ackID := packet.Unsuback.Identifier
		op, ok := s.pending[ackID]
		if !ok {
			return ReceiveEvent{}, ErrUnexpectedUnsubackPacketIdentifier
		}
		if op.kind != pendingUnsuback {
			return ReceiveEvent{}, ErrUnexpectedUnsuback
		}
		delete(s.pending, ackID)
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
