// package auth identifies callers from bearer tokens and decides what they may do
//
// Token verification is delegated to the identity provider: an [Authenticator] turns a token into a
// [Principal] and a [Policy] answers whether that principal may act on a resource.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/desertthunder/founders/internal/shared"
)

// Principal is an authenticated caller.
type Principal struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
}

// Authenticator resolves a bearer token to a [Principal].
// Implementations return an error wrapping [shared.ErrAuthFailed] for rejected tokens.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*Principal, error)
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored by [WithPrincipal], or nil.
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// StaticAuthenticator maps fixed tokens to principals. Used for local development and tests.
type StaticAuthenticator map[string]Principal

func (s StaticAuthenticator) Authenticate(_ context.Context, token string) (*Principal, error) {
	p, ok := s[token]
	if !ok || token == "" {
		return nil, shared.ErrAuthFailed
	}
	return &p, nil
}
