package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/mall-orders/internal/domain/auth"
)

const getSessionByHashSQL = `SELECT s.token_hash, s.user_id, u.username
	FROM sessions s
	JOIN users u ON u.id = s.user_id
	WHERE s.token_hash = $1`

var _ auth.Repository = (*SessionRepository)(nil)

// SessionRepository provides session token lookups backed by PostgreSQL.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository returns a SessionRepository that uses the given pool.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// FindByHash looks up a session by the HMAC-SHA256 hash of its token.
// Returns an error wrapping pgx.ErrNoRows when no matching session exists.
func (r *SessionRepository) FindByHash(ctx context.Context, hash string) (*auth.Identity, error) {
	rows, err := r.pool.Query(ctx, getSessionByHashSQL, hash)
	if err != nil {
		return nil, errors.Wrap(err, "find session by hash")
	}

	id, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (auth.Identity, error) {
		var id auth.Identity
		err := row.Scan(&id.TokenHash, &id.UserID, &id.Username)
		return id, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrap(err, "session not found")
		}
		return nil, errors.Wrap(err, "find session by hash")
	}
	return &id, nil
}
