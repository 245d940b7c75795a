package packets

import "github.com/gonzalop/mqttv5/internal/wire"

// GenericCapacities carries the capacities for reading a packet of
// unknown type off the wire. ReadGeneric consults only Requests, which
// bounds the per-request/per-code lists carried by
// Subscribe/Suback/Unsubscribe/Unsuback; UserProperties and
// SubscriptionIdentifier are not read, and property lists are decoded
// with fixed capacities.
type GenericCapacities struct {
	UserProperties         int
	SubscriptionIdentifier int
	Requests               int
}

// PacketGeneric is a tagged union over the fifteen concrete packet
// types, produced by ReadGeneric once the framer has isolated exactly
// one packet's bytes but before any caller has committed to a type. Only
// the field named by Kind is populated.
type PacketGeneric struct {
	Kind Type

	Connect     *ConnectPacket
	Connack     *ConnackPacket
	Publish     *PublishPacket
	Puback      *PubackPacket
	Pubrec      *PubrecPacket
	Pubrel      *PubrelPacket
	Pubcomp     *PubcompPacket
	Subscribe   *SubscribePacket
	Suback      *SubackPacket
	Unsubscribe *UnsubscribePacket
	Unsuback    *UnsubackPacket
	Pingreq     *PingreqPacket
	Pingresp    *PingrespPacket
	Disconnect  *DisconnectPacket
	Auth        *AuthPacket
}

// Packet returns the concrete packet held by g as the Packet interface.
func (g *PacketGeneric) Packet() Packet {
	switch g.Kind {
	case Connect:
		return g.Connect
	case Connack:
		return g.Connack
	case Publish:
		return g.Publish
	case Puback:
		return g.Puback
	case Pubrec:
		return g.Pubrec
	case Pubrel:
		return g.Pubrel
	case Pubcomp:
		return g.Pubcomp
	case Subscribe:
		return g.Subscribe
	case Suback:
		return g.Suback
	case Unsubscribe:
		return g.Unsubscribe
	case Unsuback:
		return g.Unsuback
	case Pingreq:
		return g.Pingreq
	case Pingresp:
		return g.Pingresp
	case Disconnect:
		return g.Disconnect
	case Auth:
		return g.Auth
	default:
		return nil
	}
}

// ReadGeneric dispatches to the per-type decoder named by kind, the
// single switch every layer above the codec uses to turn a type tag
// plus raw bytes into a concrete packet.
func ReadGeneric(kind Type, r *wire.Reader, firstByte byte, remainingLength int, caps GenericCapacities) (*PacketGeneric, error) {
	g := &PacketGeneric{Kind: kind}
	var err error
	switch kind {
	case Connect:
		g.Connect, err = ReadConnectVariableHeaderAndPayload(r, firstByte, remainingLength)
	case Connack:
		g.Connack, err = ReadConnackVariableHeaderAndPayload(r, firstByte, remainingLength)
	case Publish:
		g.Publish, err = ReadPublishVariableHeaderAndPayload(r, firstByte, remainingLength)
	case Puback:
		g.Puback, err = ReadPubackVariableHeaderAndPayload(r, firstByte, remainingLength)
	case Pubrec:
		g.Pubrec, err = ReadPubrecVariableHeaderAndPayload(r, firstByte, remainingLength)
	case Pubrel:
		g.Pubrel, err = ReadPubrelVariableHeaderAndPayload(r, firstByte, remainingLength)
	case Pubcomp:
		g.Pubcomp, err = ReadPubcompVariableHeaderAndPayload(r, firstByte, remainingLength)
	case Subscribe:
		g.Subscribe, err = ReadSubscribeVariableHeaderAndPayload(r, firstByte, remainingLength, caps.Requests)
	case Suback:
		g.Suback, err = ReadSubackVariableHeaderAndPayload(r, firstByte, remainingLength, caps.Requests)
	case Unsubscribe:
		g.Unsubscribe, err = ReadUnsubscribeVariableHeaderAndPayload(r, firstByte, remainingLength, caps.Requests)
	case Unsuback:
		g.Unsuback, err = ReadUnsubackVariableHeaderAndPayload(r, firstByte, remainingLength, caps.Requests)
	case Pingreq:
		g.Pingreq, err = ReadPingreqVariableHeaderAndPayload(r, firstByte, remainingLength)
	case Pingresp:
		g.Pingresp, err = ReadPingrespVariableHeaderAndPayload(r, firstByte, remainingLength)
	case Disconnect:
		g.Disconnect, err = ReadDisconnectVariableHeaderAndPayload(r, firstByte, remainingLength)
	case Auth:
		g.Auth, err = ReadAuthVariableHeaderAndPayload(r, firstByte, remainingLength)
	default:
		return nil, ErrUnknownPacketType
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}
