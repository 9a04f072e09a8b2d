package codec

import "github.com/cockroachdb/errors"

// ID identifies a column family. Assignments are schema and must never be
// reused or renumbered once a table ships.
type ID uint64

// Codec is the capability every key or value type implements: append its
// encoding to buf, and reconstruct itself from the head of buf reporting how
// many bytes it consumed. Value codecs are not required to preserve
// lexicographic order; key codecs must.
type Codec interface {
	// Encode appends the receiver's encoding to buf and returns the result.
	Encode(buf []byte) []byte

	// Decode reconstructs the receiver from the head of buf, returning the
	// number of bytes consumed. It must not retain buf past the call.
	Decode(buf []byte) (n int, err error)
}

// KeyCodec is a Codec whose encoding preserves the logical order of the
// wrapped value: lexicographic order of Encode outputs must
// equal logical order of the decoded values.
type KeyCodec interface {
	Codec
}

// DecodeError reports malformed input to a Codec's Decode method.
type DecodeError struct {
	Kind   DecodeErrorKind
	Detail string
}

// DecodeErrorKind enumerates the ways a Decode call can fail.
type DecodeErrorKind int

const (
	// Truncated means the buffer ended before a declared length was satisfied.
	Truncated DecodeErrorKind = iota
	// InvalidLength means a declared length was negative or otherwise malformed.
	InvalidLength
)

func (e *DecodeError) Error() string {
	switch e.Kind {
	case Truncated:
		return "codec: truncated input: " + e.Detail
	case InvalidLength:
		return "codec: invalid length: " + e.Detail
	default:
		return "codec: decode error: " + e.Detail
	}
}

func truncated(detail string) error {
	return errors.WithStack(&DecodeError{Kind: Truncated, Detail: detail})
}

func invalidLength(detail string) error {
	return errors.WithStack(&DecodeError{Kind: InvalidLength, Detail: detail})
}

// IsDecodeError reports whether err is (or wraps) a *DecodeError, and of
// which kind.
func IsDecodeError(err error) (*DecodeError, bool) {
	var de *DecodeError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
