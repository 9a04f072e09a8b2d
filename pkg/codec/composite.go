package codec

import "github.com/cockroachdb/errors"

// Composite concatenates N sub-codecs into a single ordered key. Because
// lexicographic order on the concatenation equals lexicographic order on
// the tuple only when every sub-codec individually preserves order, callers
// should only place KeyCodecs into Parts when Composite itself is used as a
// key (value-only composites are fine with any Codec).
//
// Parts holds pointers to the concrete sub-codec instances so Decode can
// mutate them in place; Composite itself carries no state beyond the slice.
type Composite struct {
	Parts []Codec
}

// NewComposite builds a Composite over the given sub-codecs, in order.
func NewComposite(parts ...Codec) Composite {
	return Composite{Parts: parts}
}

// Encode implements Codec: it encodes every sub-codec in order.
func (c Composite) Encode(buf []byte) []byte {
	for _, p := range c.Parts {
		buf = p.Encode(buf)
	}
	return buf
}

// EncodePrefix encodes only the leading k sub-codecs, used by
// whileEqualPrefix scans to build a scan prefix from a partial key.
func (c Composite) EncodePrefix(buf []byte, k int) ([]byte, error) {
	if k < 0 || k > len(c.Parts) {
		return nil, errors.Newf("codec: prefix length %d out of range [0,%d]", k, len(c.Parts))
	}
	for _, p := range c.Parts[:k] {
		buf = p.Encode(buf)
	}
	return buf, nil
}

// Decode implements Codec: it decodes every sub-codec in order, feeding
// each the remainder of buf after the previous sub-codec consumed its
// share.
func (c Composite) Decode(buf []byte) (int, error) {
	total := 0
	for _, p := range c.Parts {
		n, err := p.Decode(buf[total:])
		if err != nil {
			return 0, errors.Wrapf(err, "codec: composite sub-codec %T", p)
		}
		total += n
	}
	return total, nil
}
