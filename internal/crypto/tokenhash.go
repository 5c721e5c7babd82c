package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HashToken computes a keyed HMAC-SHA256 hash of a raw bearer token. Issued
// tokens are persisted by this hash only, so a leaked token table cannot be
// replayed without the server key.
func HashToken(raw string, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}
