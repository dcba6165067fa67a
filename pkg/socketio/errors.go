package socketio

import "errors"

var (
	ErrEmptyPacket       = errors.New("socketio: empty packet")
	ErrUnknownPacketType = errors.New("socketio: unknown packet type")
	ErrMalformedPacket   = errors.New("socketio: malformed packet")
	ErrNotEvent          = errors.New("socketio: packet is not an event")
	ErrNotAck            = errors.New("socketio: packet is not an ack")
	ErrInvalidURL        = errors.New("socketio: invalid server url")
)
