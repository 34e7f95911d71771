package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/xenking/mall-orders/internal/domain/auth"
)

// identityKey is the context key for the authenticated identity.
type identityKey struct{}

// IdentityFromContext extracts the authenticated identity from the context.
func IdentityFromContext(ctx context.Context) (*auth.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*auth.Identity)
	return id, ok
}

// SessionAuth authenticates requests via HMAC-SHA256 hashed session tokens
// carried in the Authorization header as a bearer token.
type SessionAuth struct {
	sessions auth.Repository
	pepper   []byte
}

// NewSessionAuth creates a SessionAuth with the given session repository and
// HMAC pepper.
func NewSessionAuth(sessions auth.Repository, pepper []byte) *SessionAuth {
	return &SessionAuth{
		sessions: sessions,
		pepper:   pepper,
	}
}

// HashToken computes the hex-encoded HMAC-SHA256 of a raw session token.
// Shared with cmd/seed-db so seeded tokens hash identically.
func HashToken(token string, pepper []byte) string {
	mac := hmac.New(sha256.New, pepper)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

// Middleware resolves the bearer token to a user identity and stores it in
// the request context. Requests without a valid session get 401.
func (s *SessionAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		mac := hmac.New(sha256.New, s.pepper)
		mac.Write([]byte(token))
		hash := mac.Sum(nil)

		id, err := s.sessions.FindByHash(r.Context(), hex.EncodeToString(hash))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid session")
			return
		}

		// Constant-time comparison guards against a repository returning a
		// stale or wrong row.
		stored, err := hex.DecodeString(id.TokenHash)
		if err != nil || subtle.ConstantTimeCompare(hash, stored) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid session")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return h[len(prefix):], true
}
