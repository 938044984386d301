// Package id generates prefixed ULIDs for request correlation and cache
// markers. ULIDs are lexicographically sortable by creation time, which
// keeps backend-side request logs in emission order.
package id

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	// RequestPrefix tags per-request correlation ids.
	RequestPrefix = "req"
	// MarkerPrefix tags placeholder values for batch-created spans, which
	// have no backend-assigned id of their own.
	MarkerPrefix = "mark"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// New returns a ULID with the given prefix, e.g. "req_01J...".
func New(prefix string) string {
	entropyMu.Lock()
	u := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	entropyMu.Unlock()
	return prefix + "_" + u.String()
}

// NewRequest returns a request correlation id.
func NewRequest() string { return New(RequestPrefix) }

// NewMarker returns a batch-span placeholder id.
func NewMarker() string { return New(MarkerPrefix) }
