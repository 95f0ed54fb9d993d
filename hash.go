package i8n

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// RawCacheKey returns the unhashed key material for req: a JSON array of the
// five lookup fields. Each field is quoted independently, so no separator can
// be forged by the sentence or tag contents.
func RawCacheKey(req TranslationRequest) string {
	data, _ := json.Marshal([]any{
		req.Sentence,
		req.Tag,
		req.Plural,
		req.Language,
		req.UserType,
	})
	return string(data)
}

// BuildCacheKey generates the cache key for req (SHA-256 of RawCacheKey).
// The tag must already be defaulted by the caller.
func BuildCacheKey(req TranslationRequest) string {
	hash := sha256.Sum256([]byte(RawCacheKey(req)))
	return hex.EncodeToString(hash[:])
}
