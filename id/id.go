// Package id generates time-sortable identifiers for signals and
// recorder rows, so log greps and SQLite indexes stay in chronological
// order.
package id

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu sync.Mutex
	// Monotonic entropy keeps IDs minted within the same millisecond
	// strictly increasing. crypto/rand backs it directly; ULIDs are
	// visible in alerts and logs, so they must not be guessable.
	entropy io.Reader = ulid.Monotonic(rand.Reader, 0)
)

// New returns a fresh ULID string.
func New() string {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), entropy).String()
}
