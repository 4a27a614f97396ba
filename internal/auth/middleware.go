package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/mohirdev/delivery-api/internal/errs"
	"github.com/mohirdev/delivery-api/internal/user/entity"
)

// IdentityResolver resolves the token subject to a persisted identity.
// Implemented by the user service.
type IdentityResolver interface {
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
}

// Gate is the authentication+authorization check applied before protected
// operations. Per request it walks UNAUTHENTICATED -> AUTHENTICATED and, for
// staff routes, -> AUTHORIZED; any failed transition halts the request before
// resource logic runs.
type Gate struct {
	tokens *TokenService
	users  IdentityResolver
	logger *zap.SugaredLogger
}

func NewGate(tokens *TokenService, users IdentityResolver, logger *zap.SugaredLogger) *Gate {
	return &Gate{tokens: tokens, users: users, logger: logger}
}

type ctxKey int

const identityKey ctxKey = 0

// IdentityFrom returns the authenticated identity stored by RequireAuth.
func IdentityFrom(ctx context.Context) (*entity.User, bool) {
	u, ok := ctx.Value(identityKey).(*entity.User)
	return u, ok
}

// WithIdentity returns a context carrying the identity, as RequireAuth would
// produce it.
func WithIdentity(ctx context.Context, u *entity.User) context.Context {
	return context.WithValue(ctx, identityKey, u)
}

// BearerToken extracts the bearer token from the Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" || !strings.HasPrefix(strings.ToLower(h), "bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(h[len("bearer "):])
	return tok, tok != ""
}

// RequireAuth verifies the bearer access token, resolves the identity and
// stores it in the request context. Any token problem ends the request with
// 401 before the wrapped handler runs; resolution failures that are not a
// missing user are internal errors, never 401.
func (g *Gate) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, ok := BearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing access token")
			return
		}
		subject, err := g.tokens.Verify(tok, ClassAccess)
		if err != nil {
			g.logger.Debugw("access token rejected", "err", err)
			writeError(w, http.StatusUnauthorized, "invalid access token")
			return
		}
		u, err := g.users.GetByUsername(r.Context(), subject)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "invalid access token")
				return
			}
			g.logger.Errorw("identity resolution failed", "err", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), u)))
	})
}

// RequireStaff rejects non-staff identities with 403. It must be composed
// after RequireAuth and never substitutes for it.
func (g *Gate) RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := IdentityFrom(r.Context())
		if !ok {
			// RequireAuth was not applied upstream
			g.logger.Errorw("staff check without authenticated identity", "path", r.URL.Path)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !u.IsStaff {
			writeError(w, http.StatusForbidden, "user is not staff")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
