package wstransport

import "errors"

var (
	ErrNotConnected      = errors.New("wstransport: not connected")
	ErrHandshakeFailed   = errors.New("wstransport: handshake failed")
	ErrConnectRejected   = errors.New("wstransport: namespace connect rejected")
	ErrPingTimeout       = errors.New("wstransport: ping timeout")
	ErrServerDisconnect  = errors.New("wstransport: server disconnect")
	ErrUnsupportedBinary = errors.New("wstransport: binary frames are not supported")
	ErrAlreadyAcked      = errors.New("wstransport: event already acknowledged")
)
