package handler_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/ncps/internal/apperror"
	"github.com/sakif/ncps/internal/auth"
	"github.com/sakif/ncps/internal/handler"
	"github.com/sakif/ncps/internal/model"
)

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestAccountHandler_HandleRegister(t *testing.T) {
	form := url.Values{
		"name":     {"Rahim"},
		"email":    {"Rahim@Example.com"},
		"phone":    {"01700000000"},
		"password": {"secret-pass"},
	}

	t.Run("success starts a session", func(t *testing.T) {
		tokens := newTokens(t)
		accounts := &MockAccounts{ReturnUser: &model.User{ID: "u1", Name: "Rahim", Email: "rahim@example.com"}}
		h := handler.NewAccountHandler(newPages(t, &FakeRenderer{}), accounts, tokens)

		rr := httptest.NewRecorder()
		h.HandleRegister(rr, postForm("/register", form))

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/profile", rr.Header().Get("Location"))
		assert.Equal(t, "Rahim@Example.com", accounts.CapturedRegister.Email)
		assert.Equal(t, "secret-pass", accounts.CapturedRegister.Password)

		cookie := sessionCookie(rr)
		require.NotNil(t, cookie)
		assert.True(t, cookie.HttpOnly)
		p, err := tokens.Parse(cookie.Value)
		require.NoError(t, err)
		assert.Equal(t, "u1", p.UserID)
	})

	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"missing field", apperror.ValidationFailed("name", "name is required"), "All fields are required."},
		{"duplicate email", apperror.DuplicateEmail("rahim@example.com"), "This email is already registered."},
		{"store failure", errors.New("disk I/O error"), "Registration failed. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer := &FakeRenderer{}
			accounts := &MockAccounts{ReturnErr: tt.err}
			h := handler.NewAccountHandler(newPages(t, renderer), accounts, newTokens(t))

			rr := httptest.NewRecorder()
			h.HandleRegister(rr, postForm("/register", form))

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, "register", renderer.Page)
			assert.Equal(t, tt.wantMsg, renderer.Data.Error)
			assert.Equal(t, "Rahim", renderer.Data.Form["name"])
			assert.NotContains(t, renderer.Data.Form, "password")
			assert.Nil(t, sessionCookie(rr))
		})
	}
}

func TestAccountHandler_HandleLogin(t *testing.T) {
	form := url.Values{"email": {"rahim@example.com"}, "password": {"secret-pass"}}

	t.Run("success", func(t *testing.T) {
		accounts := &MockAccounts{ReturnUser: &model.User{ID: "u1", Name: "Rahim", Email: "rahim@example.com"}}
		h := handler.NewAccountHandler(newPages(t, &FakeRenderer{}), accounts, newTokens(t))

		rr := httptest.NewRecorder()
		h.HandleLogin(rr, postForm("/login", form))

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/profile", rr.Header().Get("Location"))
		assert.NotNil(t, sessionCookie(rr))
	})

	t.Run("invalid credentials re-render", func(t *testing.T) {
		renderer := &FakeRenderer{}
		accounts := &MockAccounts{ReturnErr: apperror.InvalidCredentials()}
		h := handler.NewAccountHandler(newPages(t, renderer), accounts, newTokens(t))

		rr := httptest.NewRecorder()
		h.HandleLogin(rr, postForm("/login", form))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "login", renderer.Page)
		assert.Equal(t, "Wrong email or password.", renderer.Data.Error)
		assert.Equal(t, "rahim@example.com", renderer.Data.Form["email"])
		assert.Nil(t, sessionCookie(rr))
	})

	t.Run("store failure is 500", func(t *testing.T) {
		renderer := &FakeRenderer{}
		accounts := &MockAccounts{ReturnErr: errors.New("database is locked")}
		h := handler.NewAccountHandler(newPages(t, renderer), accounts, newTokens(t))

		rr := httptest.NewRecorder()
		h.HandleLogin(rr, postForm("/login", form))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "database is locked")
		assert.Empty(t, renderer.Page)
	})
}

func TestAccountHandler_HandleLogout(t *testing.T) {
	h := handler.NewAccountHandler(newPages(t, &FakeRenderer{}), &MockAccounts{}, newTokens(t))

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		h.HandleLogout(rr, httptest.NewRequest(http.MethodGet, "/logout", nil))

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/", rr.Header().Get("Location"))
		cookie := sessionCookie(rr)
		require.NotNil(t, cookie)
		assert.Less(t, cookie.MaxAge, 0)
	}
}
