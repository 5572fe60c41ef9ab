package codec

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

const (
	respMessages          protowire.Number = 1
	respCursor            protowire.Number = 2
	respFetchInterval     protowire.Number = 3
	respNow               protowire.Number = 4
	respInternalExt       protowire.Number = 5
	respFetchType         protowire.Number = 6
	respRouteParams       protowire.Number = 7
	respHeartbeatDuration protowire.Number = 8
	respNeedAck           protowire.Number = 9
	respPushServer        protowire.Number = 10
	respLiveCursor        protowire.Number = 11
	respHistoryNoMore     protowire.Number = 12
)

const (
	msgMethod  protowire.Number = 1
	msgPayload protowire.Number = 2
	msgID      protowire.Number = 3
	msgType    protowire.Number = 4
	msgOffset  protowire.Number = 5
)

// Response - полезная нагрузка кадра "msg": пачка событий трансляции.
type Response struct {
	Messages          []Message
	Cursor            string
	FetchInterval     int64
	ServerTimestamp   int64
	InternalExt       string
	FetchType         int32
	RouteParams       map[string]string
	HeartbeatDuration int32
	NeedAck           bool
	PushServer        string
	LiveCursor        string
	HistoryNoMore     bool
}

// Message - одно событие. Payload остаётся закодированным, его
// интерпретация зависит от Method и не входит в задачи сессии.
type Message struct {
	Method  string
	Payload []byte
	MsgID   int64
	MsgType int32
	Offset  int64
}

func DecodeResponse(data []byte) (*Response, error) {
	r := &Response{}

	err := walk(data, func(num protowire.Number, typ protowire.Type, v uint64, b []byte) error {
		if typ == protowire.BytesType {
			switch num {
			case respMessages:
				m, err := decodeMessage(b)
				if err != nil {
					return fmt.Errorf("message %d: %w", len(r.Messages), err)
				}
				r.Messages = append(r.Messages, m)
			case respCursor:
				r.Cursor = string(b)
			case respInternalExt:
				r.InternalExt = string(b)
			case respRouteParams:
				key, value, err := decodeMapEntry(b)
				if err != nil {
					return fmt.Errorf("route params: %w", err)
				}

				if r.RouteParams == nil {
					r.RouteParams = make(map[string]string)
				}
				r.RouteParams[key] = value
			case respPushServer:
				r.PushServer = string(b)
			case respLiveCursor:
				r.LiveCursor = string(b)
			}

			return nil
		}

		if typ != protowire.VarintType {
			return nil
		}

		switch num {
		case respFetchInterval:
			r.FetchInterval = int64(v)
		case respNow:
			r.ServerTimestamp = int64(v)
		case respFetchType:
			r.FetchType = int32(v)
		case respHeartbeatDuration:
			r.HeartbeatDuration = int32(v)
		case respNeedAck:
			r.NeedAck = protowire.DecodeBool(v)
		case respHistoryNoMore:
			r.HistoryNoMore = protowire.DecodeBool(v)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}

	return r, nil
}

func decodeMessage(data []byte) (Message, error) {
	var m Message

	err := walk(data, func(num protowire.Number, typ protowire.Type, v uint64, b []byte) error {
		switch {
		case num == msgMethod && typ == protowire.BytesType:
			m.Method = string(b)
		case num == msgPayload && typ == protowire.BytesType:
			m.Payload = b
		case num == msgID && typ == protowire.VarintType:
			m.MsgID = int64(v)
		case num == msgType && typ == protowire.VarintType:
			m.MsgType = int32(v)
		case num == msgOffset && typ == protowire.VarintType:
			m.Offset = int64(v)
		}

		return nil
	})

	return m, err
}

func EncodeResponse(r *Response) []byte {
	var b []byte

	for _, m := range r.Messages {
		var mb []byte
		mb = appendString(mb, msgMethod, m.Method)
		mb = appendBytes(mb, msgPayload, m.Payload)
		mb = appendVarint(mb, msgID, uint64(m.MsgID))
		mb = appendVarint(mb, msgType, uint64(m.MsgType))
		mb = appendVarint(mb, msgOffset, uint64(m.Offset))

		b = protowire.AppendTag(b, respMessages, protowire.BytesType)
		b = protowire.AppendBytes(b, mb)
	}

	b = appendString(b, respCursor, r.Cursor)
	b = appendVarint(b, respFetchInterval, uint64(r.FetchInterval))
	b = appendVarint(b, respNow, uint64(r.ServerTimestamp))
	b = appendString(b, respInternalExt, r.InternalExt)
	b = appendVarint(b, respFetchType, uint64(r.FetchType))
	b = appendMapEntries(b, respRouteParams, r.RouteParams)
	b = appendVarint(b, respHeartbeatDuration, uint64(r.HeartbeatDuration))
	b = appendVarint(b, respNeedAck, protowire.EncodeBool(r.NeedAck))
	b = appendString(b, respPushServer, r.PushServer)
	b = appendString(b, respLiveCursor, r.LiveCursor)
	b = appendVarint(b, respHistoryNoMore, protowire.EncodeBool(r.HistoryNoMore))

	return b
}
