package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/ncps/internal/apperror"
	"github.com/sakif/ncps/internal/auth"
	"github.com/sakif/ncps/internal/model"
	"github.com/sakif/ncps/internal/service"
)

// Accounts is what AccountHandler needs from the account service.
type Accounts interface {
	Register(ctx context.Context, in service.RegisterInput) (*model.User, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
}

// AccountHandler serves registration, login and logout.
//
// A successful register or login issues a session cookie and redirects to
// the profile page. A failure re-renders the same form with a message and
// the submitted values, except the password.
type AccountHandler struct {
	*Pages
	accounts Accounts
	tokens   *auth.SessionTokens
}

func NewAccountHandler(pages *Pages, accounts Accounts, tokens *auth.SessionTokens) *AccountHandler {
	return &AccountHandler{
		Pages:    pages,
		accounts: accounts,
		tokens:   tokens,
	}
}

// HTTP: GET /register
func (h *AccountHandler) HandleRegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "register", h.data(r, "Register"))
}

// HTTP: POST /register
func (h *AccountHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	in := service.RegisterInput{
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
		Phone:    r.PostFormValue("phone"),
		Password: r.PostFormValue("password"),
	}

	user, err := h.accounts.Register(r.Context(), in)
	if err != nil {
		data := h.data(r, "Register")
		data.Form["name"] = in.Name
		data.Form["email"] = in.Email
		data.Form["phone"] = in.Phone

		switch {
		case errors.Is(err, apperror.ErrValidation):
			data.Error = h.msg("form.required")
		case errors.Is(err, apperror.ErrConflict):
			data.Error = h.msg("register.duplicate_email")
		default:
			h.logger.Error("registration failed", slog.String("error", err.Error()))
			data.Error = h.msg("register.failed")
		}
		h.render(w, r, http.StatusOK, "register", data)
		return
	}

	h.startSession(w, r, user)
}

// HTTP: GET /login
func (h *AccountHandler) HandleLoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login", h.data(r, "Login"))
}

// HTTP: POST /login
func (h *AccountHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	email := r.PostFormValue("email")
	user, err := h.accounts.Authenticate(r.Context(), email, r.PostFormValue("password"))
	if err != nil {
		if !errors.Is(err, apperror.ErrInvalidCredentials) {
			h.fail(w, r, "login failed", err)
			return
		}
		data := h.data(r, "Login")
		data.Form["email"] = email
		data.Error = h.msg("login.invalid")
		h.render(w, r, http.StatusOK, "login", data)
		return
	}

	h.startSession(w, r, user)
}

// HandleLogout clears the session cookie. Logging out twice is harmless.
//
// HTTP: GET /logout
func (h *AccountHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearCookie(w)
	redirect(w, r, "/")
}

func (h *AccountHandler) startSession(w http.ResponseWriter, r *http.Request, user *model.User) {
	token, err := h.tokens.Issue(service.PrincipalFor(user))
	if err != nil {
		h.fail(w, r, "issuing session failed", err)
		return
	}
	h.tokens.SetCookie(w, r, token)
	redirect(w, r, "/profile")
}
