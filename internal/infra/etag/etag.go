// Package etag derives entity tags from response values with PBKDF2.
package etag

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/infra/cachemem"

	"golang.org/x/crypto/pbkdf2"
)

const (
	keyLength = 32
	cacheTTL  = 10 * time.Minute
)

type Hasher struct {
	salt       []byte
	iterations int
	cache      *cachemem.Cache[string]
}

func NewHasher(salt string, iterations int, cache *cachemem.Cache[string]) *Hasher {
	if iterations <= 0 {
		iterations = 10000
	}
	return &Hasher{salt: []byte(salt), iterations: iterations, cache: cache}
}

// Compute hashes the JSON encoding of value. Identical encodings always
// produce the same tag.
func (h *Hasher) Compute(value any) (string, error) {
	serialized, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("serialize etag value: %w", err)
	}
	sum := sha256.Sum256(serialized)
	cacheKey := hex.EncodeToString(sum[:])
	if tag, ok := h.cache.Get(cacheKey); ok {
		return tag, nil
	}
	derived := pbkdf2.Key(serialized, h.salt, h.iterations, keyLength, sha512.New)
	tag := base64.StdEncoding.EncodeToString(derived)
	h.cache.Put(cacheKey, tag, cacheTTL)
	return tag, nil
}
