// Package token encodes authentication claims into opaque bearer tokens.
//
// A token is an HS256 JWT whose single private claim is an AES-256-GCM
// encrypted envelope of the serialized claim. The signing key and the
// encryption key are distinct pieces of process-wide configuration; both
// are read-only after startup. Verification always checks the signature
// before attempting decryption.
package token

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go-todo-api/internal/model"
)

const nonceSize = 12

// Claim is the payload embedded inside a token.
type Claim struct {
	UserID  string `json:"id"`
	Purpose string `json:"type"`
}

type Codec struct {
	encryptionKey []byte
	signingKey    []byte
	ttl           time.Duration
}

// NewCodec builds a codec from the two server-side keys. The encryption key
// must be exactly 32 bytes (AES-256); the signing key only needs to be
// non-empty. TTL bounds the lifetime of every issued token.
func NewCodec(encryptionKey []byte, signingKey []byte, ttl time.Duration) (*Codec, error) {
	if len(encryptionKey) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(encryptionKey))
	}
	if len(signingKey) == 0 {
		return nil, fmt.Errorf("signing key is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token TTL must be positive")
	}

	return &Codec{encryptionKey: encryptionKey, signingKey: signingKey, ttl: ttl}, nil
}

// Encode serializes and encrypts the claim, then signs the envelope.
// Encoding the same claim twice produces different strings: both the GCM
// nonce and the issue timestamp are fresh per call.
func (c *Codec) Encode(claim Claim) (string, error) {
	if claim.UserID == "" {
		return "", fmt.Errorf("claim user id is required")
	}
	if claim.Purpose == "" {
		return "", fmt.Errorf("claim purpose is required")
	}

	plaintext, err := json.Marshal(claim)
	if err != nil {
		return "", fmt.Errorf("marshal claim: %w", err)
	}

	envelope, err := c.encrypt(plaintext)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	signed := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"payload": envelope,
		"iat":     now.Unix(),
		"exp":     now.Add(c.ttl).Unix(),
	})

	raw, err := signed.SignedString(c.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return raw, nil
}

// Decode verifies the signature, decrypts the envelope, and parses the
// claim. Every failure mode collapses to model.ErrInvalidToken so callers
// cannot distinguish why a token was rejected.
func (c *Codec) Decode(raw string) (Claim, error) {
	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.signingKey, nil
	})
	if err != nil || !parsed.Valid {
		return Claim{}, model.ErrInvalidToken
	}

	claimsMap, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claim{}, model.ErrInvalidToken
	}

	envelope, ok := claimsMap["payload"].(string)
	if !ok || envelope == "" {
		return Claim{}, model.ErrInvalidToken
	}

	plaintext, err := c.decrypt(envelope)
	if err != nil {
		return Claim{}, model.ErrInvalidToken
	}

	var claim Claim
	if err := json.Unmarshal(plaintext, &claim); err != nil {
		return Claim{}, model.ErrInvalidToken
	}
	if claim.UserID == "" || claim.Purpose == "" {
		return Claim{}, model.ErrInvalidToken
	}

	return claim, nil
}

// encrypt seals plaintext with AES-256-GCM. Output layout is
// nonce || ciphertext || tag, base64 encoded.
func (c *Codec) encrypt(plaintext []byte) (string, error) {
	block, err := aes.NewCipher(c.encryptionKey)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("create GCM: %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (c *Codec) decrypt(envelope string) ([]byte, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(envelope)
	if err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if len(sealed) < nonceSize {
		return nil, fmt.Errorf("envelope too short")
	}

	block, err := aes.NewCipher(c.encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	plaintext, err := gcm.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt envelope: %w", err)
	}
	return plaintext, nil
}
