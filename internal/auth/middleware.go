package auth

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-messagely/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-messagely/internal/httpx"
)

// Verifier decodes a bearer token into an identity.
type Verifier interface {
	Verify(token string) (Identity, error)
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity attached by Authenticate, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id.Username != ""
}

// Guards holds the three request guards. Each guard either passes the
// request on or writes exactly one error response and stops the chain.
type Guards struct {
	verifier Verifier
	logger   *zap.SugaredLogger
}

func NewGuards(v Verifier, logger *zap.SugaredLogger) *Guards {
	return &Guards{verifier: v, logger: logger}
}

// Authenticate attaches the identity from a valid bearer token. Missing or
// invalid tokens leave the request anonymous; it never rejects.
func (g *Guards) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		id, err := g.verifier.Verify(token)
		if err != nil {
			g.logger.Debugw("token rejected", "path", r.URL.Path, "err", err)
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// RequireLoggedIn rejects anonymous requests with 401.
func (g *Guards) RequireLoggedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFrom(r.Context()); !ok {
			httpx.Error(w, r, g.logger, apperr.ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireCorrectUser rejects with 403 unless the identity's username equals
// the path value named param. An anonymous request never matches.
func (g *Guards) RequireCorrectUser(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			owner := r.PathValue(param)
			if !ok || owner == "" || id.Username != owner {
				httpx.Error(w, r, g.logger, apperr.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken reads "Authorization: Bearer <t>", falling back to the
// _token query parameter.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > len("bearer ") && strings.EqualFold(h[:len("bearer ")], "bearer ") {
		return strings.TrimSpace(h[len("bearer "):])
	}
	return r.URL.Query().Get("_token")
}
