// Package service holds the portal's business rules.
//
// Handlers parse HTTP and render pages; repositories run SQL. Everything in
// between lives here: validation, canonicalisation, password hashing, the
// complaint submission sequence and its rollback. Services depend on the
// repository interfaces, never on *sqlite.DB, so tests run against fakes.
//
//	Handler → Service → Repository → SQLite
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/ncps/internal/apperror"
	"github.com/sakif/ncps/internal/auth"
	"github.com/sakif/ncps/internal/metrics"
	"github.com/sakif/ncps/internal/model"
	"github.com/sakif/ncps/internal/repository"
)

// AccountService registers and authenticates citizens.
type AccountService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAccountService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		users:     users,
		passwords: passwords,
		logger:    logger,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Phone    string // optional
	Password string
}

// Register creates an account. The email is stored in canonical form, so
// "Rahim@Example.com" and "rahim@example.com" are the same account.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	name := strings.TrimSpace(in.Name)
	email := auth.CanonicalEmail(in.Email)
	phone := strings.TrimSpace(in.Phone)

	switch {
	case name == "":
		return nil, apperror.ValidationFailed("name", "name is required")
	case email == "":
		return nil, apperror.ValidationFailed("email", "email is required")
	case in.Password == "":
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, apperror.ValidationFailed("password",
				fmt.Sprintf("password must be at most %d bytes", auth.MaxPasswordBytes))
		}
		return nil, fmt.Errorf("service/account: hashing password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			metrics.RecordAuth("register", "duplicate")
			return nil, err
		}
		metrics.RecordAuth("register", "error")
		return nil, fmt.Errorf("service/account: creating user: %w", err)
	}

	metrics.RecordAuth("register", "success")
	s.logger.Info("user registered", slog.String("userID", user.ID))
	return user, nil
}

// Authenticate checks an email/password pair. An unknown email, a wrong
// password and blank input all return the same InvalidCredentials error so a
// caller cannot probe which addresses have accounts.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	email = auth.CanonicalEmail(email)
	if email == "" || password == "" {
		metrics.RecordAuth("login", "invalid")
		return nil, apperror.InvalidCredentials()
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			metrics.RecordAuth("login", "invalid")
			return nil, apperror.InvalidCredentials()
		}
		metrics.RecordAuth("login", "error")
		return nil, fmt.Errorf("service/account: looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Warn("stored password hash unreadable",
				slog.String("userID", user.ID),
				slog.String("error", err.Error()),
			)
		}
		metrics.RecordAuth("login", "invalid")
		return nil, apperror.InvalidCredentials()
	}

	metrics.RecordAuth("login", "success")
	return user, nil
}

func (s *AccountService) GetByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.NotFound("user", id)
	}
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/account: fetching user %s: %w", id, err)
	}
	return user, nil
}

// PrincipalFor is the session identity of user.
func PrincipalFor(user *model.User) auth.Principal {
	return auth.Principal{UserID: user.ID, Name: user.Name, Email: user.Email}
}
