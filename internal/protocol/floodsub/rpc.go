package floodsub

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"slices"
	"unicode/utf8"

	"github.com/multiformats/go-varint"
	"google.golang.org/protobuf/encoding/protowire"
)

// 字段号
const (
	rpcSubscriptions protowire.Number = 1
	rpcPublish       protowire.Number = 2

	subOptsSubscribe protowire.Number = 1
	subOptsTopicID   protowire.Number = 2

	msgFrom     protowire.Number = 1
	msgData     protowire.Number = 2
	msgSeqno    protowire.Number = 3
	msgTopicIDs protowire.Number = 4
)

// seqnoLen 序号固定编码为 8 字节大端
const seqnoLen = 8

type subOpts struct {
	subscribe bool
	topic     string
}

type wireMessage struct {
	from   []byte
	data   []byte
	seqno  uint64
	topics []string

	// raw 消息字段的原始编码，转发时原样发送
	raw []byte
}

type rpc struct {
	subs    []subOpts
	publish []*wireMessage
}

// ============================================================================
//                              编码
// ============================================================================

func encodeSeqno(seq uint64) []byte {
	b := make([]byte, seqnoLen)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

// encodeMessage 编码 Message（不含外层字段头）
func encodeMessage(from, data []byte, seq uint64, topics []string) []byte {
	var b []byte
	b = protowire.AppendTag(b, msgFrom, protowire.BytesType)
	b = protowire.AppendBytes(b, from)
	b = protowire.AppendTag(b, msgData, protowire.BytesType)
	b = protowire.AppendBytes(b, data)
	b = protowire.AppendTag(b, msgSeqno, protowire.BytesType)
	b = protowire.AppendBytes(b, encodeSeqno(seq))
	for _, t := range topics {
		b = protowire.AppendTag(b, msgTopicIDs, protowire.BytesType)
		b = protowire.AppendString(b, t)
	}
	return b
}

// encodeRPC 编码 RPC，msgs 为已编码的 Message
func encodeRPC(subs []subOpts, msgs ...[]byte) []byte {
	var b []byte
	for _, s := range subs {
		var sb []byte
		sb = protowire.AppendTag(sb, subOptsSubscribe, protowire.VarintType)
		sb = protowire.AppendVarint(sb, protowire.EncodeBool(s.subscribe))
		sb = protowire.AppendTag(sb, subOptsTopicID, protowire.BytesType)
		sb = protowire.AppendString(sb, s.topic)

		b = protowire.AppendTag(b, rpcSubscriptions, protowire.BytesType)
		b = protowire.AppendBytes(b, sb)
	}
	for _, m := range msgs {
		b = protowire.AppendTag(b, rpcPublish, protowire.BytesType)
		b = protowire.AppendBytes(b, m)
	}
	return b
}

// ============================================================================
//                              解码
// ============================================================================

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedFrame, fmt.Sprintf(format, args...))
}

func decodeRPC(b []byte) (*rpc, error) {
	r := &rpc{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, malformed("rpc tag: %v", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == rpcSubscriptions && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, malformed("subscription: %v", protowire.ParseError(n))
			}
			s, err := decodeSubOpts(v)
			if err != nil {
				return nil, err
			}
			r.subs = append(r.subs, s)
			b = b[n:]

		case num == rpcPublish && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, malformed("publish: %v", protowire.ParseError(n))
			}
			m, err := decodeMessage(v)
			if err != nil {
				return nil, err
			}
			r.publish = append(r.publish, m)
			b = b[n:]

		default:
			// 未知字段（如 gossipsub 的 control）跳过
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, malformed("rpc field %d: %v", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return r, nil
}

func decodeSubOpts(b []byte) (subOpts, error) {
	var s subOpts
	var hasTopic bool
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return s, malformed("subopts tag: %v", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == subOptsSubscribe && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return s, malformed("subscribe: %v", protowire.ParseError(n))
			}
			s.subscribe = protowire.DecodeBool(v)
			b = b[n:]
		case num == subOptsTopicID && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return s, malformed("topicid: %v", protowire.ParseError(n))
			}
			s.topic = string(v)
			hasTopic = true
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return s, malformed("subopts field %d: %v", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	if !hasTopic {
		return s, malformed("subscription without topic")
	}
	if err := validateTopic(s.topic); err != nil {
		return s, malformed("subscription topic: %v", err)
	}
	return s, nil
}

func decodeMessage(b []byte) (*wireMessage, error) {
	m := &wireMessage{raw: b}
	var hasSeqno bool
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, malformed("message tag: %v", protowire.ParseError(n))
		}
		b = b[n:]

		if typ != protowire.BytesType || num < msgFrom || num > msgTopicIDs {
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, malformed("message field %d: %v", num, protowire.ParseError(n))
			}
			b = b[n:]
			continue
		}

		v, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return nil, malformed("message field %d: %v", num, protowire.ParseError(n))
		}
		b = b[n:]

		switch num {
		case msgFrom:
			m.from = v
		case msgData:
			m.data = v
		case msgSeqno:
			if len(v) == 0 || len(v) > seqnoLen {
				return nil, malformed("seqno length %d", len(v))
			}
			var buf [seqnoLen]byte
			copy(buf[seqnoLen-len(v):], v)
			m.seqno = binary.BigEndian.Uint64(buf[:])
			hasSeqno = true
		case msgTopicIDs:
			if !utf8.Valid(v) {
				return nil, malformed("topic not utf-8")
			}
			// 重复的主题只保留一次，避免同一消息多次投递
			if t := string(v); !slices.Contains(m.topics, t) {
				m.topics = append(m.topics, t)
			}
		}
	}

	switch {
	case len(m.from) == 0:
		return nil, malformed("message without from")
	case !hasSeqno:
		return nil, malformed("message without seqno")
	case len(m.topics) == 0:
		return nil, malformed("message without topic")
	}
	return m, nil
}

// ============================================================================
//                              分帧
// ============================================================================

// writeFrame 写出 uvarint 长度前缀加帧体，一次 Write
func writeFrame(w io.Writer, body []byte) error {
	buf := make([]byte, 0, varint.UvarintSize(uint64(len(body)))+len(body))
	buf = append(buf, varint.ToUvarint(uint64(len(body)))...)
	buf = append(buf, body...)
	_, err := w.Write(buf)
	return err
}

// readFrame 读取一帧
//
// 超过 limit 的帧被读出丢弃并返回 ErrMessageTooLarge，流仍可继续使用；
// 长度前缀损坏返回 errFramingLost。
func readFrame(r *bufio.Reader, limit int) ([]byte, error) {
	size, err := varint.ReadUvarint(r)
	if err != nil {
		if errors.Is(err, varint.ErrOverflow) || errors.Is(err, varint.ErrNotMinimal) {
			return nil, fmt.Errorf("%w: %v", errFramingLost, err)
		}
		return nil, err
	}

	if size > uint64(limit) {
		if _, err := io.CopyN(io.Discard, r, int64(size)); err != nil {
			return nil, unexpectedEOF(err)
		}
		return nil, fmt.Errorf("%w: frame of %d bytes exceeds %d", ErrMessageTooLarge, size, limit)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, unexpectedEOF(err)
	}
	return body, nil
}

func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
