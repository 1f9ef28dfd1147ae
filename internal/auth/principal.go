package auth

import (
	"context"
	"strings"

	"github.com/sakif/ncps/internal/apperror"
)

// Principal is the identity attached to an authenticated request.
type Principal struct {
	UserID string
	Name   string
	Email  string
}

// contextKey is private so no other package can read or overwrite the
// principal stored in a request context.
type contextKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// PrincipalFromContext returns the request's principal, or (nil, false) for an
// anonymous request.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(*Principal)
	return p, ok && p != nil
}

// Gate answers authorization questions for a request context.
//
// There is exactly one administrator, identified by a configured email
// address. That is a simplification of a role model: there are no roles
// stored per user and no way to grant or revoke administration at runtime.
type Gate struct {
	adminEmail string
}

// NewGate canonicalises adminEmail the same way account emails are, so the
// comparison is case-insensitive.
func NewGate(adminEmail string) *Gate {
	return &Gate{adminEmail: CanonicalEmail(adminEmail)}
}

// CanonicalEmail is the stored form of an email address.
func CanonicalEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (g *Gate) IsAdministrator(p *Principal) bool {
	return p != nil && g.adminEmail != "" && CanonicalEmail(p.Email) == g.adminEmail
}

func (g *Gate) RequireAuthenticated(ctx context.Context) (*Principal, error) {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return nil, apperror.Unauthenticated()
	}
	return p, nil
}

func (g *Gate) RequireAdministrator(ctx context.Context) (*Principal, error) {
	p, err := g.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	if !g.IsAdministrator(p) {
		return nil, apperror.Forbidden("administrator access required")
	}
	return p, nil
}
