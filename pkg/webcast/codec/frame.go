package codec

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

// Типы кадров (payload_type).
const (
	TypeMessage   = "msg"
	TypeAck       = "ack"
	TypeHeartbeat = "hb"
)

const (
	frameSeqID           protowire.Number = 1
	frameLogID           protowire.Number = 2
	frameService         protowire.Number = 3
	frameMethod          protowire.Number = 4
	frameHeaders         protowire.Number = 5
	framePayloadEncoding protowire.Number = 6
	framePayloadType     protowire.Number = 7
	framePayload         protowire.Number = 8
)

const (
	headerCompressType = "compress_type"
	compressGzip       = "gzip"

	// maxInflatedSize ограничивает размер распакованного payload.
	maxInflatedSize = 32 << 20
)

var gzipMagic = []byte{0x1f, 0x8b}

// Frame - верхнеуровневый кадр, который приходит в одном бинарном
// WebSocket сообщении. ID > 0 требует подтверждения.
type Frame struct {
	SeqID           uint64
	ID              uint64
	Service         int32
	Method          int32
	Headers         map[string]string
	PayloadEncoding string
	Type            string
	Payload         []byte

	// Response заполняется только для кадров типа "msg".
	Response *Response
}

func (f *Frame) NeedsAck() bool {
	return f.ID > 0
}

// DecodeFrame разбирает кадр и, если это кадр с данными, вложенный Response.
func DecodeFrame(data []byte) (*Frame, error) {
	// Пустой буфер - корректная кодировка нулевого кадра.
	f := &Frame{}

	err := walk(data, func(num protowire.Number, typ protowire.Type, v uint64, b []byte) error {
		switch {
		case num == frameSeqID && typ == protowire.VarintType:
			f.SeqID = v
		case num == frameLogID && typ == protowire.VarintType:
			f.ID = v
		case num == frameService && typ == protowire.VarintType:
			f.Service = int32(v)
		case num == frameMethod && typ == protowire.VarintType:
			f.Method = int32(v)
		case num == frameHeaders && typ == protowire.BytesType:
			key, value, err := decodeMapEntry(b)
			if err != nil {
				return fmt.Errorf("headers: %w", err)
			}

			if f.Headers == nil {
				f.Headers = make(map[string]string)
			}
			f.Headers[key] = value
		case num == framePayloadEncoding && typ == protowire.BytesType:
			f.PayloadEncoding = string(b)
		case num == framePayloadType && typ == protowire.BytesType:
			f.Type = string(b)
		case num == framePayload && typ == protowire.BytesType:
			f.Payload = b
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedFrame, err)
	}

	if f.Type != TypeMessage {
		return f, nil
	}

	payload, err := f.inflate()
	if err != nil {
		return nil, err
	}

	resp, err := DecodeResponse(payload)
	if err != nil {
		return nil, err
	}

	f.Response = resp

	return f, nil
}

func (f *Frame) inflate() ([]byte, error) {
	if f.Headers[headerCompressType] != compressGzip && !bytes.HasPrefix(f.Payload, gzipMagic) {
		return f.Payload, nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(f.Payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecompress, err)
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, maxInflatedSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecompress, err)
	}

	if len(out) > maxInflatedSize {
		return nil, fmt.Errorf("%w: payload exceeds %d bytes", ErrDecompress, maxInflatedSize)
	}

	return out, nil
}

// EncodeFrame сериализует кадр. Response игнорируется, используется Payload.
func EncodeFrame(f *Frame) []byte {
	var b []byte
	b = appendVarint(b, frameSeqID, f.SeqID)
	b = appendVarint(b, frameLogID, f.ID)
	b = appendVarint(b, frameService, uint64(f.Service))
	b = appendVarint(b, frameMethod, uint64(f.Method))
	b = appendMapEntries(b, frameHeaders, f.Headers)
	b = appendString(b, framePayloadEncoding, f.PayloadEncoding)
	b = appendString(b, framePayloadType, f.Type)
	b = appendBytes(b, framePayload, f.Payload)

	return b
}

// EncodeAck строит кадр подтверждения для сообщения с данным id.
func EncodeAck(id uint64) []byte {
	return EncodeFrame(&Frame{ID: id, Type: TypeAck})
}

// EncodeHeartbeat возвращает кадр "hb" (3A 02 68 62).
func EncodeHeartbeat() []byte {
	return EncodeFrame(&Frame{Type: TypeHeartbeat})
}

// Gzip сжимает payload для кадров с заголовком compress_type=gzip.
func Gzip(payload []byte) ([]byte, error) {
	var buf bytes.Buffer

	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(payload); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Protobuf - кодек по умолчанию для webcast сессии.
type Protobuf struct{}

func (Protobuf) DecodeContainer(data []byte) (*Frame, error) {
	return DecodeFrame(data)
}

func (Protobuf) EncodeAck(id uint64) ([]byte, error) {
	return EncodeAck(id), nil
}
