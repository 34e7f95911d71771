package auth

import "context"

// Identity is the resolved user behind a validated session token.
type Identity struct {
	UserID    int64
	Username  string
	TokenHash string
}

// Repository provides lookup of sessions by their HMAC token hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*Identity, error)
}
