package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookieName is the cookie that carries the signed session token.
const SessionCookieName = "ncps_session"

const issuer = "ncps"

// SessionTokens signs and verifies session tokens.
//
// A session is a stateless HS256 JWT:
//
//	HEADER.PAYLOAD.SIGNATURE
//	payload: {"sub":"<user id>","name":"...","email":"...","iss":"ncps","exp":...}
//
// The server keeps no session table; the HMAC signature is what stops a
// client from editing the claims. Changing the secret logs everyone out.
type SessionTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionTokens(secret string, ttl time.Duration) (*SessionTokens, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: session ttl must be positive")
	}
	return &SessionTokens{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL is the lifetime of issued tokens, also used as the cookie Max-Age.
func (s *SessionTokens) TTL() time.Duration { return s.ttl }

type sessionClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Issue signs a token for p.
func (s *SessionTokens) Issue(p Principal) (string, error) {
	if p.UserID == "" {
		return "", errors.New("auth: principal has no user id")
	}
	now := s.now()

	c := sessionClaims{
		Name:  p.Name,
		Email: p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Parse verifies the token and returns the Principal it was issued for.
//
// Rejected: bad signature, any algorithm other than HS256 (this also blocks
// "alg":"none"), a different issuer, a missing or past expiry, no subject.
func (s *SessionTokens) Parse(token string) (*Principal, error) {
	parsed, err := jwt.ParseWithClaims(
		token,
		&sessionClaims{},
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New("auth: token expired")
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("auth: invalid token claims")
	}
	if c.Subject == "" {
		return nil, errors.New("auth: token has no subject")
	}

	return &Principal{UserID: c.Subject, Name: c.Name, Email: c.Email}, nil
}

// SetCookie writes the session cookie. HttpOnly keeps it away from page
// scripts; Lax still sends it on top-level navigations such as the 303s
// after a form post.
func (s *SessionTokens) SetCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie. Safe to call without a session.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
