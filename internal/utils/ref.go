package utils

import (
	"crypto/rand" // Entropy source for ULIDs
	"time"        // ULID timestamp component

	"github.com/oklog/ulid/v2" // ULID generation
)

// NewReference mints a prefixed, sortable reference string such as
// "RFQ-01J9..." or "ORD-01J9...". ULIDs keep references unique and roughly
// time-ordered without a database round trip.
func NewReference(prefix string) string {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader)
	return prefix + "-" + id.String()
}
