package socketio

import (
	"encoding/json"
	"strconv"
	"strings"
)

// EnginePacketType is the leading byte of an Engine.IO v4 packet.
type EnginePacketType byte

// SocketPacketType is the leading byte of a Socket.IO v5 packet carried
// inside an Engine.IO message.
type SocketPacketType byte

const (
	EngineOpen    EnginePacketType = '0'
	EngineClose   EnginePacketType = '1'
	EnginePing    EnginePacketType = '2'
	EnginePong    EnginePacketType = '3'
	EngineMessage EnginePacketType = '4'
	EngineUpgrade EnginePacketType = '5'
	EngineNoop    EnginePacketType = '6'
)

const (
	SocketConnect      SocketPacketType = '0'
	SocketDisconnect   SocketPacketType = '1'
	SocketEvent        SocketPacketType = '2'
	SocketAck          SocketPacketType = '3'
	SocketConnectError SocketPacketType = '4'
)

// DefaultNamespace is the root Socket.IO namespace.
const DefaultNamespace = "/"

// recordSeparator joins several engine packets in one polling payload.
const recordSeparator = "\x1e"

// Packet is a decoded Socket.IO packet.
type Packet struct {
	Type      SocketPacketType
	Namespace string
	// AckID is set when HasAck is true. Events with an id expect an ack
	// packet carrying the same id.
	AckID  uint64
	HasAck bool
	Data   json.RawMessage
}

// ParseEngine splits a raw engine frame into its type and payload.
func ParseEngine(raw string) (EnginePacketType, string, error) {
	if raw == "" {
		return 0, "", ErrEmptyPacket
	}
	t := EnginePacketType(raw[0])
	if t < EngineOpen || t > EngineNoop {
		return 0, "", ErrUnknownPacketType
	}
	return t, raw[1:], nil
}

// SplitPayload splits a multi-packet polling payload.
func SplitPayload(payload string) []string {
	if payload == "" {
		return nil
	}
	return strings.Split(payload, recordSeparator)
}

// ParseSocket decodes a Socket.IO packet: type byte, optional "/ns,"
// prefix, optional decimal ack id, then optional JSON data.
func ParseSocket(raw string) (Packet, error) {
	if raw == "" {
		return Packet{}, ErrEmptyPacket
	}
	t := SocketPacketType(raw[0])
	if t < SocketConnect || t > SocketConnectError {
		return Packet{}, ErrUnknownPacketType
	}

	p := Packet{Type: t, Namespace: DefaultNamespace}
	rest := raw[1:]

	if strings.HasPrefix(rest, "/") {
		ns, after, found := strings.Cut(rest, ",")
		p.Namespace = ns
		if !found {
			return p, nil
		}
		rest = after
	}

	digits := 0
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		digits++
	}
	if digits > 0 {
		id, err := strconv.ParseUint(rest[:digits], 10, 64)
		if err != nil {
			return Packet{}, ErrMalformedPacket
		}
		p.AckID, p.HasAck = id, true
		rest = rest[digits:]
	}

	if rest != "" {
		if !json.Valid([]byte(rest)) {
			return Packet{}, ErrMalformedPacket
		}
		p.Data = json.RawMessage(rest)
	}
	return p, nil
}

// Encode renders the packet in Socket.IO wire form without the engine prefix.
func (p Packet) Encode() string {
	var b strings.Builder
	b.WriteByte(byte(p.Type))
	if p.Namespace != "" && p.Namespace != DefaultNamespace {
		b.WriteString(p.Namespace)
		b.WriteByte(',')
	}
	if p.HasAck {
		b.WriteString(strconv.FormatUint(p.AckID, 10))
	}
	b.Write(p.Data)
	return b.String()
}

// Message wraps the packet in an engine message frame.
func (p Packet) Message() string {
	return string(EngineMessage) + p.Encode()
}

// Event decodes an event packet into its name and arguments.
func (p Packet) Event() (string, []json.RawMessage, error) {
	if p.Type != SocketEvent {
		return "", nil, ErrNotEvent
	}
	var payload []json.RawMessage
	if err := json.Unmarshal(p.Data, &payload); err != nil || len(payload) == 0 {
		return "", nil, ErrMalformedPacket
	}
	var name string
	if err := json.Unmarshal(payload[0], &name); err != nil || name == "" {
		return "", nil, ErrMalformedPacket
	}
	return name, payload[1:], nil
}

// AckArgs decodes the arguments of an ack packet.
func (p Packet) AckArgs() ([]json.RawMessage, error) {
	if p.Type != SocketAck {
		return nil, ErrNotAck
	}
	var args []json.RawMessage
	if len(p.Data) == 0 {
		return args, nil
	}
	if err := json.Unmarshal(p.Data, &args); err != nil {
		return nil, ErrMalformedPacket
	}
	return args, nil
}

// FirstArg returns args[0] or JSON null.
func FirstArg(args []json.RawMessage) json.RawMessage {
	if len(args) == 0 {
		return json.RawMessage("null")
	}
	return args[0]
}

// NewEvent builds an event packet for the root namespace.
func NewEvent(name string, args ...any) (Packet, error) {
	raw, err := json.Marshal(append([]any{name}, args...))
	if err != nil {
		return Packet{}, err
	}
	return Packet{Type: SocketEvent, Namespace: DefaultNamespace, Data: raw}, nil
}

// NewEventWithAck builds an event packet that requests an ack with id.
func NewEventWithAck(id uint64, name string, args ...any) (Packet, error) {
	p, err := NewEvent(name, args...)
	if err != nil {
		return Packet{}, err
	}
	p.AckID, p.HasAck = id, true
	return p, nil
}

// NewAck builds the reply to an event that carried id.
func NewAck(namespace string, id uint64, args ...any) (Packet, error) {
	if args == nil {
		args = []any{}
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return Packet{}, err
	}
	return Packet{Type: SocketAck, Namespace: namespace, AckID: id, HasAck: true, Data: raw}, nil
}

// NewConnect builds a namespace connect packet. Clients send it with nil
// data; servers answer with {"sid": ...}.
func NewConnect(namespace string, data any) (Packet, error) {
	p := Packet{Type: SocketConnect, Namespace: namespace}
	if data == nil {
		return p, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Packet{}, err
	}
	p.Data = raw
	return p, nil
}

// NewConnectError builds a connect error packet with a message.
func NewConnectError(namespace, message string) Packet {
	raw, _ := json.Marshal(map[string]string{"message": message})
	return Packet{Type: SocketConnectError, Namespace: namespace, Data: raw}
}

// ConnectErrorMessage extracts the message of a connect error packet.
func (p Packet) ConnectErrorMessage() string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(p.Data, &body); err != nil {
		return string(p.Data)
	}
	return body.Message
}
