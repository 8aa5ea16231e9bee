package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/palemoky/crazy-eights/internal/protocol"
)

// Format 帧格式
type Format int

const (
	// FormatJSON 文本帧，整条消息为 JSON
	FormatJSON Format = iota
	// FormatBinary 二进制帧，protobuf 信封 {1: type, 2: payload}
	FormatBinary
)

const (
	fieldType    protowire.Number = 1
	fieldPayload protowire.Number = 2
)

var errMissingType = errors.New("消息缺少 type 字段")

// Encode 按指定格式编码消息
func Encode(m *protocol.Message, f Format) ([]byte, error) {
	if f == FormatBinary {
		return encodeBinary(m), nil
	}
	return encodeJSON(m)
}

// Decode 按指定格式解码消息
func Decode(data []byte, f Format) (*protocol.Message, error) {
	var (
		msg *protocol.Message
		err error
	)
	if f == FormatBinary {
		msg, err = decodeBinary(data)
	} else {
		msg, err = decodeJSON(data)
	}
	if err != nil {
		return nil, err
	}
	if msg.Type == "" {
		return nil, errMissingType
	}
	return msg, nil
}

func encodeJSON(m *protocol.Message) ([]byte, error) {
	buf := GetBuffer()
	defer PutBuffer(buf)

	if err := json.NewEncoder(buf).Encode(m); err != nil {
		return nil, err
	}
	// 去掉 Encoder 追加的换行，并复制出池化缓冲区
	out := buf.Bytes()
	return append([]byte(nil), out[:len(out)-1]...), nil
}

func decodeJSON(data []byte) (*protocol.Message, error) {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func encodeBinary(m *protocol.Message) []byte {
	b := make([]byte, 0, len(m.Type)+len(m.Payload)+8)
	b = protowire.AppendTag(b, fieldType, protowire.BytesType)
	b = protowire.AppendString(b, string(m.Type))
	if len(m.Payload) > 0 {
		b = protowire.AppendTag(b, fieldPayload, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Payload)
	}
	return b
}

func decodeBinary(data []byte) (*protocol.Message, error) {
	msg := &protocol.Message{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("解析字段标签失败: %w", protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == fieldType && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return nil, fmt.Errorf("解析 type 失败: %w", protowire.ParseError(n))
			}
			msg.Type = protocol.MessageType(v)
			data = data[n:]
		case num == fieldPayload && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("解析 payload 失败: %w", protowire.ParseError(n))
			}
			msg.Payload = append([]byte(nil), v...)
			data = data[n:]
		default:
			// 跳过未知字段，保持向前兼容
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, fmt.Errorf("跳过未知字段失败: %w", protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return msg, nil
}
