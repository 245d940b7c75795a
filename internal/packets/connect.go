package packets

import (
	"errors"

	"github.com/gonzalop/mqttv5/internal/wire"
)

// Connect flag bits, OASIS MQTT v5.0 section 3.1.2.3.
const (
	connectFlagCleanStart = 1 << 1
	connectFlagWill       = 1 << 2
	connectFlagWillQoS    = 0b011 << 3
	connectFlagWillRetain = 1 << 5
	connectFlagPassword   = 1 << 6
	connectFlagUsername   = 1 << 7
)

// ErrMalformedConnectFlags is returned when the CONNECT flags byte
// encodes an internally inconsistent combination — e.g. a nonzero
// will-QoS or a set will-retain bit with the will flag unset.
var ErrMalformedConnectFlags = errors.New("packets: malformed connect flags")

// ConnectPacket is the MQTT v5 CONNECT packet: the client's opening
// request to establish a session.
type ConnectPacket struct {
	CleanStart bool
	KeepAlive  uint16
	ClientID   string

	WillFlag       bool
	WillQoS        QoS
	WillRetain     bool
	WillTopic      string
	WillPayload    []byte
	WillProperties *Properties

	UsernameFlag bool
	Username     string
	PasswordFlag bool
	Password     string

	Properties *Properties
}

func (p *ConnectPacket) PacketType() Type { return Connect }

func (p *ConnectPacket) FixedHeaderFirstByte() byte { return standardFirstByte(Connect) }

// WriteVariableHeaderAndPayload encodes the CONNECT variable header and
// payload: protocol name/version, connect flags, keep alive, properties,
// then client id, will fields, username, password as their flags dictate.
func (p *ConnectPacket) WriteVariableHeaderAndPayload(w *wire.Writer) error {
	if err := w.PutString(ProtocolName); err != nil {
		return err
	}
	if err := w.PutU8(ProtocolVersion); err != nil {
		return err
	}

	flags := byte(0)
	if p.CleanStart {
		flags |= connectFlagCleanStart
	}
	if p.WillFlag {
		flags |= connectFlagWill
		flags |= byte(p.WillQoS&0x03) << 3
		if p.WillRetain {
			flags |= connectFlagWillRetain
		}
	}
	if p.UsernameFlag {
		flags |= connectFlagUsername
	}
	if p.PasswordFlag {
		flags |= connectFlagPassword
	}
	if err := w.PutU8(flags); err != nil {
		return err
	}
	if err := w.PutU16(p.KeepAlive); err != nil {
		return err
	}
	if err := WriteProperties(w, p.Properties); err != nil {
		return err
	}

	if err := w.PutString(p.ClientID); err != nil {
		return err
	}
	if p.WillFlag {
		if err := WriteProperties(w, p.WillProperties); err != nil {
			return err
		}
		if err := w.PutString(p.WillTopic); err != nil {
			return err
		}
		if err := w.PutBinary(p.WillPayload); err != nil {
			return err
		}
	}
	if p.UsernameFlag {
		if err := w.PutString(p.Username); err != nil {
			return err
		}
	}
	if p.PasswordFlag {
		if err := w.PutString(p.Password); err != nil {
			return err
		}
	}
	return nil
}

// ReadConnectVariableHeaderAndPayload decodes a CONNECT packet's
// variable header and payload from r. firstByte and remainingLength are
// accepted for signature uniformity with the other packet types (spec
// §4.2); CONNECT needs neither.
func ReadConnectVariableHeaderAndPayload(r *wire.Reader, firstByte byte, remainingLength int) (*ConnectPacket, error) {
	name, err := r.GetString()
	if err != nil {
		return nil, err
	}
	version, err := r.GetU8()
	if err != nil {
		return nil, err
	}
	_ = name
	_ = version

	flags, err := r.GetU8()
	if err != nil {
		return nil, err
	}

	willFlag := flags&connectFlagWill != 0
	willQoS := QoS((flags & connectFlagWillQoS) >> 3)
	willRetain := flags&connectFlagWillRetain != 0
	if !willFlag && (willQoS != 0 || willRetain) {
		return nil, ErrMalformedConnectFlags
	}
	if !willQoS.Valid() {
		return nil, ErrMalformedConnectFlags
	}

	p := &ConnectPacket{
		CleanStart:   flags&connectFlagCleanStart != 0,
		WillFlag:     willFlag,
		WillQoS:      willQoS,
		WillRetain:   willRetain,
		UsernameFlag: flags&connectFlagUsername != 0,
		PasswordFlag: flags&connectFlagPassword != 0,
	}

	p.KeepAlive, err = r.GetU16()
	if err != nil {
		return nil, err
	}
	p.Properties, err = ReadProperties(r, 16, 0)
	if err != nil {
		return nil, err
	}
	p.ClientID, err = r.GetString()
	if err != nil {
		return nil, err
	}

	if p.WillFlag {
		p.WillProperties, err = ReadProperties(r, 16, 0)
		if err != nil {
			return nil, err
		}
		p.WillTopic, err = r.GetString()
		if err != nil {
			return nil, err
		}
		p.WillPayload, err = r.GetBinary()
		if err != nil {
			return nil, err
		}
	}
	if p.UsernameFlag {
		p.Username, err = r.GetString()
		if err != nil {
			return nil, err
		}
	}
	if p.PasswordFlag {
		p.Password, err = r.GetString()
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}
