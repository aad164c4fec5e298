package cache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

// GenerateKey creates a cache key with prefix and ID.
func GenerateKey(prefix string, id string) string {
	return fmt.Sprintf("%s:%s", prefix, id)
}

// HashKey generates an MD5 hash of a key, case-insensitively. Used to key
// memoized lookups by free-text queries.
func HashKey(key string) string {
	hasher := md5.New()
	hasher.Write([]byte(strings.ToLower(key)))
	return hex.EncodeToString(hasher.Sum(nil))
}
