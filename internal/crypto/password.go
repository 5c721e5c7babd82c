package crypto

import (
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 7
	MaxPasswordLength = 100

	DefaultBcryptCost = 12
)

// ErrPasswordLength is returned before any hashing when the plaintext is
// outside the accepted length range.
var ErrPasswordLength = fmt.Errorf("password must be between %d and %d characters", MinPasswordLength, MaxPasswordLength)

// ValidatePassword checks the raw plaintext shape. Length is counted in
// characters, not bytes.
func ValidatePassword(plaintext string) error {
	n := len([]rune(plaintext))
	if n < MinPasswordLength || n > MaxPasswordLength {
		return ErrPasswordLength
	}
	return nil
}

// HashPassword derives a bcrypt digest from the plaintext. bcrypt generates
// a fresh random salt per call and embeds it in the digest, so the returned
// string is the complete (salt, digest) credential tuple. The plaintext is
// validated first and never logged.
func HashPassword(plaintext string, cost int) (string, error) {
	if err := ValidatePassword(plaintext); err != nil {
		return "", err
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}

	digest, err := bcrypt.GenerateFromPassword(compress(plaintext), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// CheckPassword reports whether plaintext matches the stored digest.
// bcrypt's comparison is constant time over the derived key.
func CheckPassword(plaintext string, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), compress(plaintext)) == nil
}

// compress maps the plaintext to a fixed 32 byte input for bcrypt.
// bcrypt truncates (and on recent versions rejects) inputs over 72 bytes,
// which a 100 character password can exceed, multibyte ones well below
// 100. Hashing first keeps the whole accepted length range usable.
func compress(plaintext string) []byte {
	sum := sha256.Sum256([]byte(plaintext))
	return sum[:]
}
