package codec

import (
	"encoding/binary"
	"fmt"
)

// lengthPrefixLen is the size of the length prefix used by BytesValue.
const lengthPrefixLen = 4

// BytesValue is a length-prefixed byte-sequence codec: a 4-byte big-endian
// length followed by the raw bytes. It is used both as a key codec
// (variable-length key components inside a Composite) and as a value codec.
type BytesValue struct {
	Value []byte
}

// NewBytesValue rebinds a reusable BytesValue around v.
func NewBytesValue(v []byte) BytesValue {
	return BytesValue{Value: v}
}

// Encode implements Codec.
func (b BytesValue) Encode(buf []byte) []byte {
	var tmp [lengthPrefixLen]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(len(b.Value)))
	buf = append(buf, tmp[:]...)
	return append(buf, b.Value...)
}

// Decode implements Codec.
func (b *BytesValue) Decode(buf []byte) (int, error) {
	if len(buf) < lengthPrefixLen {
		return 0, truncated("length prefix needs 4 bytes")
	}
	length := binary.BigEndian.Uint32(buf[:lengthPrefixLen])
	if length > uint32(len(buf)-lengthPrefixLen) {
		return 0, truncated(fmt.Sprintf("declared length %d exceeds remaining buffer %d", length, len(buf)-lengthPrefixLen))
	}
	b.Value = append([]byte(nil), buf[lengthPrefixLen:lengthPrefixLen+int(length)]...)
	return lengthPrefixLen + int(length), nil
}

// StringValue is a UTF-8 byte-sequence codec with no normalization; it is a
// thin wrapper over BytesValue.
type StringValue struct {
	Value string
}

// NewStringValue rebinds a reusable StringValue around v.
func NewStringValue(v string) StringValue {
	return StringValue{Value: v}
}

// Encode implements Codec.
func (s StringValue) Encode(buf []byte) []byte {
	return BytesValue{Value: []byte(s.Value)}.Encode(buf)
}

// Decode implements Codec.
func (s *StringValue) Decode(buf []byte) (int, error) {
	var inner BytesValue
	n, err := inner.Decode(buf)
	if err != nil {
		return 0, err
	}
	s.Value = string(inner.Value)
	return n, nil
}

// NilValue is the zero-byte sentinel value used for set-like column
// families, where presence of a key is the only information carried.
type NilValue struct{}

// Encode implements Codec.
func (NilValue) Encode(buf []byte) []byte { return buf }

// Decode implements Codec.
func (*NilValue) Decode(buf []byte) (int, error) { return 0, nil }
