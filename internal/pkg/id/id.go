package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs are lexicographically sortable by
// creation time and collision-resistant, which makes them safe as session
// ids and blob storage names.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
