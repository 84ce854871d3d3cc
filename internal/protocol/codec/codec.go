// Package codec 消息信封的二进制编解码。
//
// 信封使用 protobuf wire 格式：
//
//	1: type    (bytes)
//	2: seq     (varint)
//	3: payload (bytes, JSON)
//
// 未知字段会被跳过，便于以后扩展。
package codec

import (
	"bytes"
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/palemoky/gan-deng-yan/internal/protocol"
)

const (
	fieldType    protowire.Number = 1
	fieldSeq     protowire.Number = 2
	fieldPayload protowire.Number = 3
)

// ErrMissingType 信封中没有消息类型
var ErrMissingType = errors.New("codec: message type missing")

// Encode 将消息编码为 protobuf wire 字节
func Encode(m *protocol.Message) ([]byte, error) {
	if m == nil || m.Type == "" {
		return nil, ErrMissingType
	}

	buf := GetBuffer()
	defer PutBuffer(buf)

	b := buf.AvailableBuffer()
	b = protowire.AppendTag(b, fieldType, protowire.BytesType)
	b = protowire.AppendString(b, string(m.Type))
	if m.Seq != 0 {
		b = protowire.AppendTag(b, fieldSeq, protowire.VarintType)
		b = protowire.AppendVarint(b, m.Seq)
	}
	if len(m.Payload) > 0 {
		b = protowire.AppendTag(b, fieldPayload, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Payload)
	}
	buf.Write(b)

	return bytes.Clone(buf.Bytes()), nil
}

// Decode 从 protobuf wire 字节解码消息
// 注意: 使用完毕后可调用 PutMessage 归还对象到池
func Decode(data []byte) (*protocol.Message, error) {
	msg := GetMessage()
	if err := decodeInto(msg, data); err != nil {
		PutMessage(msg)
		return nil, err
	}
	return msg, nil
}

func decodeInto(msg *protocol.Message, data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("codec: bad tag: %w", protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == fieldType && typ == protowire.BytesType:
			v, m := protowire.ConsumeString(data)
			if m < 0 {
				return fmt.Errorf("codec: bad type: %w", protowire.ParseError(m))
			}
			msg.Type = protocol.MessageType(v)
			n = m
		case num == fieldSeq && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return fmt.Errorf("codec: bad seq: %w", protowire.ParseError(m))
			}
			msg.Seq = v
			n = m
		case num == fieldPayload && typ == protowire.BytesType:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return fmt.Errorf("codec: bad payload: %w", protowire.ParseError(m))
			}
			msg.Payload = bytes.Clone(v) // 复制 payload 避免引用
			n = m
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return fmt.Errorf("codec: bad field %d: %w", num, protowire.ParseError(n))
			}
		}
		data = data[n:]
	}

	if msg.Type == "" {
		return ErrMissingType
	}
	return nil
}
