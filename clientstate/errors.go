// Package clientstate implements the MQTT v5 client protocol state
// machine (L4): phase tracking (idle/connecting/connected/errored/
// disconnected), packet-identifier bookkeeping for in-flight QoS 1
// publishes and subscribe/unsubscribe requests, and classification of
// inbound packets into caller-facing events. Two implementations share
// the ClientState interface: SingleState permits one pending
// acknowledgment at a time, QueuedState permits a bounded number running
// concurrently.
package clientstate

import (
	"errors"
	"fmt"

	"github.com/gonzalop/mqttv5/internal/packets"
)

var (
	ErrNotIdle                                            = errors.New("clientstate: not idle")
	ErrAuthNotSupported                                   = errors.New("clientstate: auth exchange not supported")
	ErrQoS2NotSupported                                   = errors.New("clientstate: QoS 2 not supported")
	ErrMultipleSubscriptionRequestsNotSupported           = errors.New("clientstate: only one subscription request per packet is supported")
	ErrReceivedQoS2PublishNotSupported                    = errors.New("clientstate: received a QoS 2 publish, not supported")
	ErrClientIsWaitingForResponse                         = errors.New("clientstate: client is already waiting for a response")
	ErrPendingSlotsFull                                   = errors.New("clientstate: no pending acknowledgment slot available")
	ErrNotConnected                                       = errors.New("clientstate: not connected")
	ErrReceiveWhenNotConnectedOrConnecting                = errors.New("clientstate: receive called outside the connecting/connected phase")
	ErrUnexpectedPuback                                   = errors.New("clientstate: unexpected puback")
	ErrUnexpectedPubackPacketIdentifier                   = errors.New("clientstate: unexpected puback packet identifier")
	ErrUnexpectedSuback                                   = errors.New("clientstate: unexpected suback")
	ErrUnexpectedSubackPacketIdentifier                   = errors.New("clientstate: unexpected suback packet identifier")
	ErrUnexpectedUnsuback                                 = errors.New("clientstate: unexpected unsuback")
	ErrUnexpectedUnsubackPacketIdentifier                 = errors.New("clientstate: unexpected unsuback packet identifier")
	ErrUnexpectedPingresp                                 = errors.New("clientstate: unexpected pingresp")
	ErrServerOnlyMessageReceived                          = errors.New("clientstate: received a server-only message")
	ErrReceivedPacketOtherThanConnackOrAuthWhenConnecting = errors.New("clientstate: expected connack or auth while connecting")
	ErrReceivedConnackWhenNotConnecting                   = errors.New("clientstate: received connack outside the connecting phase")
	ErrUnexpectedSessionPresentForCleanStart              = errors.New("clientstate: broker reported a session but clean start was requested")
	ErrPacketIdentifiersExhausted                         = errors.New("clientstate: no free packet identifier available")
	ErrEmptyTopicNameWithAliasesDisabled                  = errors.New("clientstate: received publish with an empty topic name, but topic aliases are disabled")
)

// ReasonError wraps a reason code the broker returned for connect,
// publish, subscribe, or unsubscribe when that reason code denotes
// failure or an otherwise-unhandled qualified outcome.
type ReasonError struct {
	Op   string
	Code packets.ReasonCode
}

func (e *ReasonError) Error() string {
	return fmt.Sprintf("clientstate: %s failed: reason code 0x%02X", e.Op, byte(e.Code))
}
