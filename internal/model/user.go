package model

import "time"

// User is the stored identity record. PasswordHash is a bcrypt digest and
// therefore carries its own per-user salt; the plaintext password is never
// stored anywhere.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicUser is the client-facing view of a user. Password material is
// structurally absent, not just tagged away.
type PublicUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// TokenRecord is a persisted, revocable row for an issued bearer token.
// TokenHash is a keyed hash of the raw token; the raw token itself is never
// stored.
type TokenRecord struct {
	ID        string    `json:"id"`
	TokenHash string    `json:"-"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Identity is the request-scoped result of a successful authentication.
type Identity struct {
	User  User
	Token TokenRecord
}
