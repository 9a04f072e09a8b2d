package codec

import "encoding/binary"

// Int64KeyLen is the encoded length of an Int64Key.
const Int64KeyLen = 8

// Int64Key is a fixed-width 8-byte big-endian signed integer key codec.
// Big-endian encoding keeps lexicographic byte order equal to numeric order
// for the full signed 64-bit range: flip the
// sign bit before encoding so two's-complement negative values still sort
// below non-negative ones.
type Int64Key struct {
	Value int64
}

// NewInt64Key rebinds a reusable Int64Key around v.
func NewInt64Key(v int64) Int64Key {
	return Int64Key{Value: v}
}

// Encode implements Codec.
func (k Int64Key) Encode(buf []byte) []byte {
	var tmp [Int64KeyLen]byte
	binary.BigEndian.PutUint64(tmp[:], flipSign(k.Value))
	return append(buf, tmp[:]...)
}

// Decode implements Codec.
func (k *Int64Key) Decode(buf []byte) (int, error) {
	if len(buf) < Int64KeyLen {
		return 0, truncated("int64 key needs 8 bytes")
	}
	k.Value = unflipSign(binary.BigEndian.Uint64(buf[:Int64KeyLen]))
	return Int64KeyLen, nil
}

func flipSign(v int64) uint64 {
	return uint64(v) ^ (1 << 63)
}

func unflipSign(v uint64) int64 {
	return int64(v ^ (1 << 63))
}
