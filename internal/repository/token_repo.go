package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-todo-api/internal/model"
)

type TokenRepository struct {
	pool *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

func (r *TokenRepository) Create(ctx context.Context, rec model.TokenRecord) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO tokens (id, token_hash, user_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		rec.ID, rec.TokenHash, rec.UserID, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("create token record: %w", err)
	}
	return nil
}

func (r *TokenRepository) FindByHash(ctx context.Context, tokenHash string) (model.TokenRecord, error) {
	var rec model.TokenRecord
	err := r.pool.QueryRow(ctx,
		`SELECT id, token_hash, user_id, created_at
		 FROM tokens WHERE token_hash = $1`, tokenHash).
		Scan(&rec.ID, &rec.TokenHash, &rec.UserID, &rec.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.TokenRecord{}, model.ErrTokenNotFound
	}
	if err != nil {
		return model.TokenRecord{}, fmt.Errorf("find token record: %w", err)
	}
	return rec, nil
}

// Delete revokes a persisted token. Deleting an already-deleted record is
// not an error; revocation is idempotent.
func (r *TokenRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM tokens WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete token record: %w", err)
	}
	return nil
}

// DeleteAllForUser revokes every session a user has open at once.
func (r *TokenRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM tokens WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user token records: %w", err)
	}
	return nil
}
