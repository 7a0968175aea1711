package domain

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// CacheKey is the digest of an identifier set's membership.
type CacheKey string

// ComputeCacheKey returns a 16 character hex digest of the set. Two sets with the
// same members always share a key, independent of input order or duplicates.
func ComputeCacheKey(set IdentifierSet) CacheKey {
	h := xxhash.New()
	for _, id := range set.ids {
		_, _ = h.WriteString(string(id))
		_, _ = h.Write([]byte{0})
	}
	return CacheKey(fmt.Sprintf("%016x", h.Sum64()))
}

// String returns the key as a plain string.
func (k CacheKey) String() string {
	return string(k)
}
