package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/copperline/courier/internal/domain"
)

type contextKey string

// Authenticator resolves the principal behind a request, if any.
// The host platform owns identity; this service only needs the
// principal's id for email log lineage.
type Authenticator interface {
	// Authenticate returns the principal for the request, nil when the
	// request carries no credentials, or an error when the credentials
	// are present but invalid.
	Authenticate(r *http.Request) (*domain.User, error)
}

// TokenAuthenticator authenticates callers with a static bearer token.
// The calling system may forward the end-user identity in headers; that
// identity is trusted because only token holders reach this service.
type TokenAuthenticator struct {
	Token string
}

// Authenticate checks the Authorization header against the configured
// token and extracts the forwarded user identity when present.
func (a *TokenAuthenticator) Authenticate(r *http.Request) (*domain.User, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, nil
	}

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return nil, domain.Unauthorized("auth", "Authorization header must use the Bearer scheme")
	}

	if subtle.ConstantTimeCompare([]byte(token), []byte(a.Token)) != 1 {
		return nil, domain.Unauthorized("auth", "Invalid API token")
	}

	user := &domain.User{Email: r.Header.Get("X-User-Email")}
	if raw := r.Header.Get("X-User-Id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, domain.Invalid("auth", "X-User-Id must be a valid UUID")
		}
		user.ID = id
	}

	return user, nil
}

// WithUser extracts the principal and adds it to the request context.
// This middleware is optional - it adds the user if present but doesn't
// require authentication.
func WithUser(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.Authenticate(r)
			if err != nil || user == nil {
				// No valid credentials, continue without user
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(domain.NewContextWithUser(r.Context(), user)))
		})
	}
}

// RequireAuth rejects requests that don't carry valid credentials.
func RequireAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.Authenticate(r)
			if err != nil {
				respondWithError(w, r, err)
				return
			}
			if user == nil {
				respondUnauthorized(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(domain.NewContextWithUser(r.Context(), user)))
		})
	}
}

// GetUserFromContext retrieves the authenticated principal, or nil.
func GetUserFromContext(ctx context.Context) *domain.User {
	return domain.UserFromContext(ctx)
}
