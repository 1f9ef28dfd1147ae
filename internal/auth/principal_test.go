package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/ncps/internal/apperror"
)

func TestPrincipalFromContext(t *testing.T) {
	if _, ok := PrincipalFromContext(context.Background()); ok {
		t.Error("empty context should be anonymous")
	}

	p := &Principal{UserID: "u-1"}
	got, ok := PrincipalFromContext(WithPrincipal(context.Background(), p))
	if !ok || got != p {
		t.Errorf("PrincipalFromContext() = %v, %v", got, ok)
	}

	if _, ok := PrincipalFromContext(WithPrincipal(context.Background(), nil)); ok {
		t.Error("a nil principal should count as anonymous")
	}
}

func TestGate(t *testing.T) {
	gate := NewGate("  Admin@Example.com ")

	admin := &Principal{UserID: "a", Email: "admin@example.com"}
	user := &Principal{UserID: "u", Email: "user@example.com"}

	tests := []struct {
		name      string
		principal *Principal
		authErr   error
		adminErr  error
	}{
		{"anonymous", nil, apperror.ErrUnauthenticated, apperror.ErrUnauthenticated},
		{"regular user", user, nil, apperror.ErrForbidden},
		{"administrator", admin, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.principal != nil {
				ctx = WithPrincipal(ctx, tt.principal)
			}

			_, err := gate.RequireAuthenticated(ctx)
			if !errIs(err, tt.authErr) {
				t.Errorf("RequireAuthenticated() error = %v, want %v", err, tt.authErr)
			}
			_, err = gate.RequireAdministrator(ctx)
			if !errIs(err, tt.adminErr) {
				t.Errorf("RequireAdministrator() error = %v, want %v", err, tt.adminErr)
			}
		})
	}
}

func TestGate_EmptyAdminEmailMatchesNobody(t *testing.T) {
	gate := NewGate("")
	if gate.IsAdministrator(&Principal{UserID: "u", Email: ""}) {
		t.Error("an unset administrator email must not match an empty principal email")
	}
}

func errIs(err, target error) bool {
	if target == nil {
		return err == nil
	}
	return errors.Is(err, target)
}
