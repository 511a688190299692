package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex SHA-256 of data. Scene digests and cache file names
// are both built from it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// artifactKey returns kind + ":" + the digest of the scene hash and the
// options that shaped the artifact. opts is JSON-encoded, so its field order
// is fixed by the struct definition.
func artifactKey(kind, sceneHash string, opts any) string {
	h := sha256.New()
	h.Write([]byte(sceneHash))
	h.Write([]byte{0})
	_ = json.NewEncoder(h).Encode(opts)
	return kind + ":" + hex.EncodeToString(h.Sum(nil))
}
