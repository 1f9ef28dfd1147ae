// Package repository declares the storage contracts the services depend on.
// internal/repository/sqlite is the only implementation; services are tested
// against hand-written fakes of these interfaces.
package repository

import (
	"context"

	"github.com/sakif/ncps/internal/model"
)

// UserRepository persists accounts. Email uniqueness is enforced by the store,
// so CreateUser is the single place a DuplicateEmail conflict can arise.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// ComplaintRepository persists complaints. It performs no authorization:
// callers decide who may list everything or change a status.
type ComplaintRepository interface {
	CreateComplaint(ctx context.Context, c *model.Complaint) error
	// ListComplaintsByUser returns the user's complaints, newest first.
	ListComplaintsByUser(ctx context.Context, userID string) ([]model.Complaint, error)
	// ListAllComplaints returns every complaint with its owner, newest first.
	ListAllComplaints(ctx context.Context) ([]model.AdminComplaint, error)
	UpdateComplaintStatus(ctx context.Context, id, status, result string) error
}
