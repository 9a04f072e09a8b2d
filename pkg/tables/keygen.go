package tables

import (
	"encoding/binary"

	"github.com/segmentio/ksuid"
)

// NewElementInstanceKey mints a process-unique, time-sortable element
// instance key for callers that don't already have a key assigned by an
// upstream process. The CLI's element put command takes an explicit key and
// does not call it. It generates a KSUID
// and folds its 160 bits down to the int64 key space element instance keys
// live in, keeping the leading timestamp bytes so keys remain roughly
// time-ordered.
func NewElementInstanceKey() int64 {
	id := ksuid.New()
	b := id.Bytes()
	return int64(binary.BigEndian.Uint64(b[:8]) &^ (1 << 63))
}
