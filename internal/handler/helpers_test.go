package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sakif/ncps/internal/auth"
	"github.com/sakif/ncps/internal/handler"
	"github.com/sakif/ncps/internal/localization"
	"github.com/sakif/ncps/internal/model"
	"github.com/sakif/ncps/internal/service"
)

const adminEmail = "admin@example.com"

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

// FakeRenderer records the last page rendered instead of executing templates.
// When Err is set it writes a fragment and then fails.
type FakeRenderer struct {
	Page string
	Data handler.PageData
	Err  error
}

func (f *FakeRenderer) Render(w io.Writer, name string, data any) error {
	f.Page = name
	f.Data = data.(handler.PageData)
	if _, err := io.WriteString(w, "<page "+name+">"); err != nil {
		return err
	}
	// A failing template has usually written part of the page already.
	return f.Err
}

func newPages(t *testing.T, renderer *FakeRenderer) *handler.Pages {
	t.Helper()
	messages, err := localization.Default()
	require.NoError(t, err)
	return handler.NewPages(renderer, messages, auth.NewGate(adminEmail), "en", testLogger)
}

func newTokens(t *testing.T) *auth.SessionTokens {
	t.Helper()
	tokens, err := auth.NewSessionTokens("handler-test-secret-0123456789", time.Hour)
	require.NoError(t, err)
	return tokens
}

func asUser(r *http.Request, p *auth.Principal) *http.Request {
	return r.WithContext(auth.WithPrincipal(r.Context(), p))
}

var citizen = &auth.Principal{UserID: "u1", Name: "Rahim", Email: "rahim@example.com"}

var admin = &auth.Principal{UserID: "a1", Name: "Admin", Email: adminEmail}

// MockAccounts implements handler.Accounts.
type MockAccounts struct {
	CapturedRegister service.RegisterInput
	CapturedEmail    string
	ReturnUser       *model.User
	ReturnErr        error
}

func (m *MockAccounts) Register(ctx context.Context, in service.RegisterInput) (*model.User, error) {
	m.CapturedRegister = in
	if m.ReturnErr != nil {
		return nil, m.ReturnErr
	}
	return m.ReturnUser, nil
}

func (m *MockAccounts) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	m.CapturedEmail = email
	if m.ReturnErr != nil {
		return nil, m.ReturnErr
	}
	return m.ReturnUser, nil
}

// MockComplaints implements handler.Complaints.
type MockComplaints struct {
	CapturedOwner   auth.Principal
	CapturedSubmit  service.SubmitInput
	AttachmentBytes []byte
	SubmitCalls     int

	CapturedListOwner string
	Owned             []model.Complaint
	All               []model.AdminComplaint

	UpdateCalls     int
	CapturedID      string
	CapturedStatus  string
	CapturedResult  string
	ReturnErr       error
	ReturnUpdateErr error
}

func (m *MockComplaints) Submit(ctx context.Context, owner auth.Principal, in service.SubmitInput) (*model.Complaint, error) {
	m.SubmitCalls++
	m.CapturedOwner = owner
	m.CapturedSubmit = in
	if in.Attachment != nil {
		b, err := io.ReadAll(in.Attachment)
		if err != nil {
			return nil, err
		}
		m.AttachmentBytes = b
	}
	if m.ReturnErr != nil {
		return nil, m.ReturnErr
	}
	return &model.Complaint{ID: "c1", UserID: owner.UserID, Status: model.StatusSubmitted}, nil
}

func (m *MockComplaints) ListByOwner(ctx context.Context, ownerID string) ([]model.Complaint, error) {
	m.CapturedListOwner = ownerID
	if m.ReturnErr != nil {
		return nil, m.ReturnErr
	}
	return m.Owned, nil
}

func (m *MockComplaints) ListAll(ctx context.Context) ([]model.AdminComplaint, error) {
	if m.ReturnErr != nil {
		return nil, m.ReturnErr
	}
	return m.All, nil
}

func (m *MockComplaints) UpdateStatus(ctx context.Context, id, status, result string) error {
	m.UpdateCalls++
	m.CapturedID = id
	m.CapturedStatus = status
	m.CapturedResult = result
	return m.ReturnUpdateErr
}
