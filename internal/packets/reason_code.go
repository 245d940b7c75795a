package packets

// ReasonCode is the single byte reason code carried by CONNACK, PUBACK,
// PUBREC, PUBREL, PUBCOMP, SUBACK, UNSUBACK, DISCONNECT and AUTH
// packets (OASIS MQTT v5.0 table 2.6.1). Values 0x80 and above denote an
// error; values below 0x80 (besides 0x00, Success) are qualified
// successes specific to the packet that carries them.
type ReasonCode uint8

const (
	ReasonSuccess                         ReasonCode = 0x00
	ReasonNormalDisconnect                ReasonCode = 0x00
	ReasonGrantedQoS0                     ReasonCode = 0x00
	ReasonGrantedQoS1                     ReasonCode = 0x01
	ReasonGrantedQoS2                     ReasonCode = 0x02
	ReasonDisconnectWithWillMessage       ReasonCode = 0x04
	ReasonNoMatchingSubscribers           ReasonCode = 0x10
	ReasonNoSubscriptionExisted           ReasonCode = 0x11
	ReasonContinueAuthentication          ReasonCode = 0x18
	ReasonReAuthenticate                  ReasonCode = 0x19
	ReasonUnspecifiedError                ReasonCode = 0x80
	ReasonMalformedPacket                 ReasonCode = 0x81
	ReasonProtocolError                   ReasonCode = 0x82
	ReasonImplementationSpecificError     ReasonCode = 0x83
	ReasonUnsupportedProtocolVersion      ReasonCode = 0x84
	ReasonClientIdentifierNotValid        ReasonCode = 0x85
	ReasonBadUserNameOrPassword           ReasonCode = 0x86
	ReasonNotAuthorized                   ReasonCode = 0x87
	ReasonServerUnavailable               ReasonCode = 0x88
	ReasonServerBusy                      ReasonCode = 0x89
	ReasonBanned                          ReasonCode = 0x8A
	ReasonServerShuttingDown              ReasonCode = 0x8B
	ReasonBadAuthenticationMethod         ReasonCode = 0x8C
	ReasonKeepAliveTimeout                ReasonCode = 0x8D
	ReasonSessionTakenOver                ReasonCode = 0x8E
	ReasonTopicFilterInvalid              ReasonCode = 0x8F
	ReasonTopicNameInvalid                ReasonCode = 0x90
	ReasonPacketIdentifierInUse           ReasonCode = 0x91
	ReasonPacketIdentifierNotFound        ReasonCode = 0x92
	ReasonReceiveMaximumExceeded          ReasonCode = 0x93
	ReasonTopicAliasInvalid               ReasonCode = 0x94
	ReasonPacketTooLarge                  ReasonCode = 0x95
	ReasonMessageRateTooHigh              ReasonCode = 0x96
	ReasonQuotaExceeded                   ReasonCode = 0x97
	ReasonAdministrativeAction            ReasonCode = 0x98
	ReasonPayloadFormatInvalid            ReasonCode = 0x99
	ReasonRetainNotSupported              ReasonCode = 0x9A
	ReasonQoSNotSupported                 ReasonCode = 0x9B
	ReasonUseAnotherServer                ReasonCode = 0x9C
	ReasonServerMoved                     ReasonCode = 0x9D
	ReasonSharedSubscriptionsNotSupported ReasonCode = 0x9E
	ReasonConnectionRateExceeded          ReasonCode = 0x9F
	ReasonMaximumConnectTime              ReasonCode = 0xA0
	ReasonSubscriptionIdsNotSupported     ReasonCode = 0xA1
	ReasonWildcardSubscriptionsNotSupp    ReasonCode = 0xA2
)

// IsError reports whether rc denotes a failure (>= 0x80).
func (rc ReasonCode) IsError() bool { return rc >= 0x80 }

// connackReasonCodes are the reason codes legal in a CONNACK packet.
var connackReasonCodes = map[ReasonCode]bool{
	ReasonSuccess: true, ReasonUnspecifiedError: true, ReasonMalformedPacket: true,
	ReasonProtocolError: true, ReasonImplementationSpecificError: true,
	ReasonUnsupportedProtocolVersion: true, ReasonClientIdentifierNotValid: true,
	ReasonBadUserNameOrPassword: true, ReasonNotAuthorized: true, ReasonServerUnavailable: true,
	ReasonServerBusy: true, ReasonBanned: true, ReasonBadAuthenticationMethod: true,
	ReasonTopicNameInvalid: true, ReasonPacketTooLarge: true, ReasonQuotaExceeded: true,
	ReasonPayloadFormatInvalid: true, ReasonRetainNotSupported: true, ReasonQoSNotSupported: true,
	ReasonUseAnotherServer: true, ReasonServerMoved: true, ReasonConnectionRateExceeded: true,
}

// IsConnectReasonCode reports whether rc is a legal CONNACK reason code.
func IsConnectReasonCode(rc ReasonCode) bool { return connackReasonCodes[rc] }

// publishReasonCodes are the reason codes legal on PUBACK/PUBREC.
var publishReasonCodes = map[ReasonCode]bool{
	ReasonSuccess: true, ReasonNoMatchingSubscribers: true, ReasonUnspecifiedError: true,
	ReasonImplementationSpecificError: true, ReasonNotAuthorized: true, ReasonTopicNameInvalid: true,
	ReasonPacketIdentifierInUse: true, ReasonQuotaExceeded: true, ReasonPayloadFormatInvalid: true,
}

// IsPublishReasonCode reports whether rc is a legal PUBACK/PUBREC reason code.
func IsPublishReasonCode(rc ReasonCode) bool { return publishReasonCodes[rc] }

// pubrelReasonCodes are the reason codes legal on PUBREL/PUBCOMP.
var pubrelReasonCodes = map[ReasonCode]bool{
	ReasonSuccess: true, ReasonPacketIdentifierNotFound: true,
}

// IsPubrelReasonCode reports whether rc is a legal PUBREL/PUBCOMP reason code.
func IsPubrelReasonCode(rc ReasonCode) bool { return pubrelReasonCodes[rc] }

// subscribeReasonCodes are the reason codes legal on SUBACK.
var subscribeReasonCodes = map[ReasonCode]bool{
	ReasonGrantedQoS0: true, ReasonGrantedQoS1: true, ReasonGrantedQoS2: true,
	ReasonUnspecifiedError: true, ReasonImplementationSpecificError: true, ReasonNotAuthorized: true,
	ReasonTopicFilterInvalid: true, ReasonPacketIdentifierInUse: true, ReasonQuotaExceeded: true,
	ReasonSharedSubscriptionsNotSupported: true, ReasonSubscriptionIdsNotSupported: true,
	ReasonWildcardSubscriptionsNotSupp: true,
}

// IsSubscribeReasonCode reports whether rc is a legal SUBACK reason code.
func IsSubscribeReasonCode(rc ReasonCode) bool { return subscribeReasonCodes[rc] }

// unsubscribeReasonCodes are the reason codes legal on UNSUBACK.
var unsubscribeReasonCodes = map[ReasonCode]bool{
	ReasonSuccess: true, ReasonNoSubscriptionExisted: true, ReasonUnspecifiedError: true,
	ReasonImplementationSpecificError: true, ReasonNotAuthorized: true, ReasonTopicFilterInvalid: true,
	ReasonPacketIdentifierInUse: true,
}

// IsUnsubscribeReasonCode reports whether rc is a legal UNSUBACK reason code.
func IsUnsubscribeReasonCode(rc ReasonCode) bool { return unsubscribeReasonCodes[rc] }

// disconnectReasonCodes are the reason codes legal on DISCONNECT.
var disconnectReasonCodes = map[ReasonCode]bool{
	ReasonSuccess: true, ReasonDisconnectWithWillMessage: true, ReasonUnspecifiedError: true,
	ReasonMalformedPacket: true, ReasonProtocolError: true, ReasonImplementationSpecificError: true,
	ReasonNotAuthorized: true, ReasonServerBusy: true, ReasonServerShuttingDown: true,
	ReasonKeepAliveTimeout: true, ReasonSessionTakenOver: true, ReasonTopicFilterInvalid: true,
	ReasonTopicNameInvalid: true, ReasonReceiveMaximumExceeded: true, ReasonTopicAliasInvalid: true,
	ReasonPacketTooLarge: true, ReasonMessageRateTooHigh: true, ReasonQuotaExceeded: true,
	ReasonAdministrativeAction: true, ReasonPayloadFormatInvalid: true, ReasonRetainNotSupported: true,
	ReasonQoSNotSupported: true, ReasonUseAnotherServer: true, ReasonServerMoved: true,
	ReasonSharedSubscriptionsNotSupported: true, ReasonConnectionRateExceeded: true,
	ReasonMaximumConnectTime: true, ReasonSubscriptionIdsNotSupported: true,
	ReasonWildcardSubscriptionsNotSupp: true,
}

// IsDisconnectReasonCode reports whether rc is a legal DISCONNECT reason code.
func IsDisconnectReasonCode(rc ReasonCode) bool { return disconnectReasonCodes[rc] }

// authReasonCodes are the reason codes legal on AUTH.
var authReasonCodes = map[ReasonCode]bool{
	ReasonSuccess: true, ReasonContinueAuthentication: true, ReasonReAuthenticate: true,
}

// IsAuthReasonCode reports whether rc is a legal AUTH reason code.
func IsAuthReasonCode(rc ReasonCode) bool { return authReasonCodes[rc] }
