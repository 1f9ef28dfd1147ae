package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/sakif/ncps/internal/apperror"
	"github.com/sakif/ncps/internal/model"
)

// LoginPath is where anonymous visitors of protected pages are sent.
const LoginPath = "/login"

// UserLookup finds the account a session token names.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// LoadSession attaches the Principal of a valid session cookie to the
// request context. It never blocks: a missing, expired or forged cookie, or
// one whose account no longer exists, just leaves the request anonymous.
// Name and email come from the stored account, not from the token.
//
// Chi applies middlewares as a chain, req → M1 → M2 → handler, so this sits
// ahead of RequireAuthenticated and RequireAdministrator.
func LoadSession(tokens *SessionTokens, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p := sessionPrincipal(r, tokens, users); p != nil {
				r = r.WithContext(WithPrincipal(r.Context(), p))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func sessionPrincipal(r *http.Request, tokens *SessionTokens, users UserLookup) *Principal {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	claimed, err := tokens.Parse(cookie.Value)
	if err != nil {
		return nil
	}
	user, err := users.GetByID(r.Context(), claimed.UserID)
	if err != nil {
		return nil
	}
	return &Principal{UserID: user.ID, Name: user.Name, Email: user.Email}
}

// RequireAuthenticated sends anonymous requests to the login page.
func RequireAuthenticated(gate *Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := gate.RequireAuthenticated(r.Context()); err != nil {
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdministrator redirects anonymous requests to the login page and
// answers everyone else who is not the administrator with a bare 403.
func RequireAdministrator(gate *Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, err := gate.RequireAdministrator(r.Context())
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, apperror.ErrUnauthenticated):
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			default:
				http.Error(w, "Forbidden", http.StatusForbidden)
			}
		})
	}
}
