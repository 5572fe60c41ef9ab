package ws

import "github.com/gorilla/websocket"

type MessageType int

const (
	MessageUnknown MessageType = iota
	MessageText
	MessageBinary
)

func (t MessageType) String() string {
	switch t {
	case MessageText:
		return "text"
	case MessageBinary:
		return "binary"
	default:
		return "unknown"
	}
}

type Message struct {
	Type MessageType
	Data []byte
}

func (m Message) IsBinary() bool {
	return m.Type == MessageBinary
}

func messageTypeFromFrame(frameType int) MessageType {
	switch frameType {
	case websocket.TextMessage:
		return MessageText
	case websocket.BinaryMessage:
		return MessageBinary
	default:
		return MessageUnknown
	}
}
