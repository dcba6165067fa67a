// Package socketio encodes and decodes the Engine.IO v4 and Socket.IO v5
// packets exchanged over a websocket at /socket.io/?EIO=4&transport=websocket.
//
// Each websocket text frame is one engine packet: a type byte followed by a
// payload. Engine message packets ('4') carry one Socket.IO packet:
//
//	0{"sid":"..."}          engine open
//	2 / 3                   engine ping / pong
//	40                      socket connect (root namespace)
//	42["authenticate",{}]   socket event
//	4212["notification",{}] socket event expecting ack 12
//	4312[{"success":true}]  ack for event 12
//
// The package is transport agnostic; the client transport and the hub both
// build frames with Packet.Message and parse them with ParseEngine and
// ParseSocket.
package socketio
