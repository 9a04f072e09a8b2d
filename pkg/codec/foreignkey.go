package codec

// ForeignKey wraps an inner key codec and tags it with the ID of the
// column family it references. The FK relation is schema, not data: the
// persisted bytes of a ForeignKey-wrapped key are byte-for-byte identical
// to those of its inner codec. TargetCF is metadata consulted by the
// consistency checker (pkg/fk), never serialized.
type ForeignKey struct {
	Inner    Codec
	TargetCF ID
}

// NewForeignKey wraps inner, tagging it with the CF it refers to.
func NewForeignKey(inner Codec, target ID) ForeignKey {
	return ForeignKey{Inner: inner, TargetCF: target}
}

// Encode implements Codec by delegating to Inner.
func (f ForeignKey) Encode(buf []byte) []byte {
	return f.Inner.Encode(buf)
}

// Decode implements Codec by delegating to Inner.
func (f ForeignKey) Decode(buf []byte) (int, error) {
	return f.Inner.Decode(buf)
}
