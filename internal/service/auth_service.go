package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-todo-api/internal/crypto"
	"go-todo-api/internal/model"
	"go-todo-api/internal/token"
	"go-todo-api/pkg/apierror"
)

// UserStore and TokenStore are the credential-store surface the
// authenticator needs; the pgx repositories implement them.
type UserStore interface {
	Create(ctx context.Context, u model.User) error
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByID(ctx context.Context, id string) (model.User, error)
}

type TokenStore interface {
	Create(ctx context.Context, rec model.TokenRecord) error
	FindByHash(ctx context.Context, tokenHash string) (model.TokenRecord, error)
	Delete(ctx context.Context, id string) error
	DeleteAllForUser(ctx context.Context, userID string) error
}

// AuthService implements registration, login, request authentication, and
// logout. Every internal failure of a login or token check collapses to
// model.ErrAuthenticationFailed; the real cause is logged at debug level
// and never reaches the client. Store transport failures are kept separate
// as model.ErrStoreUnavailable.
type AuthService struct {
	users        UserStore
	tokens       TokenStore
	codec        *token.Codec
	tokenHashKey []byte
	purpose      string
	bcryptCost   int
}

func NewAuthService(users UserStore, tokens TokenStore, codec *token.Codec, tokenHashKey []byte, purpose string, bcryptCost int) (*AuthService, error) {
	if codec == nil {
		return nil, fmt.Errorf("token codec is required")
	}
	if len(tokenHashKey) == 0 {
		return nil, fmt.Errorf("token hash key is required")
	}
	if strings.TrimSpace(purpose) == "" {
		return nil, fmt.Errorf("token purpose is required")
	}

	return &AuthService{
		users:        users,
		tokens:       tokens,
		codec:        codec,
		tokenHashKey: tokenHashKey,
		purpose:      purpose,
		bcryptCost:   bcryptCost,
	}, nil
}

// Register creates a user. The email is normalized the same way Login
// normalizes it so later lookups always match. The password is validated,
// then hashed; salt and digest are produced together in one bcrypt call and
// can never drift apart.
func (s *AuthService) Register(ctx context.Context, email string, password string) (model.PublicUser, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return model.PublicUser{}, err
	}
	if err := crypto.ValidatePassword(password); err != nil {
		return model.PublicUser{}, apierror.Validation(err.Error(), "password")
	}

	hash, err := crypto.HashPassword(password, s.bcryptCost)
	if err != nil {
		return model.PublicUser{}, fmt.Errorf("register: %w", err)
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrEmailAlreadyTaken) {
			return model.PublicUser{}, apierror.Validation("email already taken", "email")
		}
		return model.PublicUser{}, storeFailure(err)
	}

	return user.Public(), nil
}

// Login checks credentials and issues a bearer token. An unknown email and
// a wrong password return the identical error so callers cannot probe which
// accounts exist.
func (s *AuthService) Login(ctx context.Context, email string, password string) (string, model.PublicUser, error) {
	email = NormalizeEmail(email)
	if err := crypto.ValidatePassword(password); err != nil {
		return "", model.PublicUser{}, apierror.Validation(err.Error(), "password")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		return "", model.PublicUser{}, s.reject("unknown email")
	}
	if err != nil {
		return "", model.PublicUser{}, storeFailure(err)
	}

	if !crypto.CheckPassword(password, user.PasswordHash) {
		return "", model.PublicUser{}, s.reject("password mismatch")
	}

	raw, err := s.codec.Encode(token.Claim{UserID: user.ID, Purpose: s.purpose})
	if err != nil {
		return "", model.PublicUser{}, fmt.Errorf("issue token: %w", err)
	}

	rec := model.TokenRecord{
		ID:        uuid.NewString(),
		TokenHash: crypto.HashToken(raw, s.tokenHashKey),
		UserID:    user.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.tokens.Create(ctx, rec); err != nil {
		return "", model.PublicUser{}, storeFailure(err)
	}

	return raw, user.Public(), nil
}

// Authenticate resolves a raw bearer token to an identity. The persisted
// record is checked first, then the token itself, then the owning user.
// Every failing branch yields the same error.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (model.Identity, error) {
	if strings.TrimSpace(raw) == "" {
		return model.Identity{}, s.reject("empty token")
	}

	rec, err := s.tokens.FindByHash(ctx, crypto.HashToken(raw, s.tokenHashKey))
	if errors.Is(err, model.ErrTokenNotFound) {
		return model.Identity{}, s.reject("no persisted token record")
	}
	if err != nil {
		return model.Identity{}, storeFailure(err)
	}

	claim, err := s.codec.Decode(raw)
	if err != nil {
		return model.Identity{}, s.reject("token decode failed")
	}
	if claim.Purpose != s.purpose || claim.UserID != rec.UserID {
		return model.Identity{}, s.reject("claim does not match record")
	}

	user, err := s.users.FindByID(ctx, claim.UserID)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.Identity{}, s.reject("user no longer exists")
	}
	if err != nil {
		return model.Identity{}, storeFailure(err)
	}

	return model.Identity{User: user, Token: rec}, nil
}

// Logout revokes the presented token by deleting its persisted record.
// The token's signature would still verify, but Authenticate fails at the
// record lookup from then on.
func (s *AuthService) Logout(ctx context.Context, rec model.TokenRecord) error {
	if err := s.tokens.Delete(ctx, rec.ID); err != nil {
		return storeFailure(err)
	}
	return nil
}

// LogoutAll revokes every persisted token the user owns, including the one
// the request authenticated with.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	if err := s.tokens.DeleteAllForUser(ctx, userID); err != nil {
		return storeFailure(err)
	}
	return nil
}

// GetUser resolves a user by id for authenticated profile reads.
func (s *AuthService) GetUser(ctx context.Context, id string) (model.PublicUser, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.PublicUser{}, err
	}
	if err != nil {
		return model.PublicUser{}, storeFailure(err)
	}
	return user.Public(), nil
}

// NormalizeEmail applies the canonical form used at both registration and
// login time.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return apierror.Validation("email is required", "email")
	}
	// ParseAddress also accepts name-addr forms like `Bob <a@x.com>`;
	// only a bare addr-spec is a valid account email.
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apierror.Validation("email is not valid", "email")
	}
	return nil
}

// reject records the internal cause for operators and returns the single
// uniform authentication error.
func (s *AuthService) reject(reason string) error {
	slog.Debug("authentication rejected", "reason", reason)
	return model.ErrAuthenticationFailed
}

func storeFailure(err error) error {
	return fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
}
