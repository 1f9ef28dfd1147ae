package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/sakif/ncps/internal/apperror"
	"github.com/sakif/ncps/internal/model"
)

// Hand-written in-memory fakes of the repository and sink interfaces.
// Each has an error field to simulate a failing dependency.

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeUserRepo struct {
	byID      map[string]*model.User
	byEmail   map[string]*model.User
	nextID    int
	createErr error
	getErr    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[string]*model.User),
		byEmail: make(map[string]*model.User),
	}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, u *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return apperror.DuplicateEmail(u.Email)
	}
	f.nextID++
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	u.CreatedAt = time.Now()
	copied := *u
	f.byID[u.ID] = &copied
	f.byEmail[u.Email] = &copied
	return nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, apperror.NotFound("user", email)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

type fakeComplaintRepo struct {
	complaints []*model.Complaint
	names      map[string][2]string // user id → name, email
	nextID     int
	createErr  error
	listErr    error
	updateErr  error
}

func newFakeComplaintRepo() *fakeComplaintRepo {
	return &fakeComplaintRepo{names: make(map[string][2]string)}
}

func (f *fakeComplaintRepo) CreateComplaint(_ context.Context, c *model.Complaint) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	c.ID = fmt.Sprintf("complaint-%d", f.nextID)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().Add(time.Duration(f.nextID) * time.Millisecond)
	}
	copied := *c
	f.complaints = append(f.complaints, &copied)
	return nil
}

// GetComplaint lets tests read a stored row back.
func (f *fakeComplaintRepo) GetComplaint(_ context.Context, id string) (*model.Complaint, error) {
	for _, c := range f.complaints {
		if c.ID == id {
			copied := *c
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("complaint", id)
}

func (f *fakeComplaintRepo) ListComplaintsByUser(_ context.Context, userID string) ([]model.Complaint, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []model.Complaint{}
	for _, c := range f.newestFirst() {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeComplaintRepo) ListAllComplaints(_ context.Context) ([]model.AdminComplaint, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []model.AdminComplaint{}
	for _, c := range f.newestFirst() {
		owner := f.names[c.UserID]
		out = append(out, model.AdminComplaint{Complaint: *c, UserName: owner[0], UserEmail: owner[1]})
	}
	return out, nil
}

func (f *fakeComplaintRepo) UpdateComplaintStatus(_ context.Context, id, status, result string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for _, c := range f.complaints {
		if c.ID == id {
			c.Status, c.Result = status, result
			return nil
		}
	}
	return apperror.NotFound("complaint", id)
}

func (f *fakeComplaintRepo) newestFirst() []*model.Complaint {
	out := append([]*model.Complaint(nil), f.complaints...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// fakeSink keeps stored files in memory, keyed by reference.
type fakeSink struct {
	files    map[string]string
	removed  []string
	storeErr error
	n        int
}

func newFakeSink() *fakeSink {
	return &fakeSink{files: make(map[string]string)}
}

func (f *fakeSink) Store(_ context.Context, r io.Reader, name string) (string, error) {
	if f.storeErr != nil {
		return "", f.storeErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", apperror.StorageFailed("writing attachment", err)
	}
	f.n++
	ref := fmt.Sprintf("/uploads/%d_%s", f.n, name)
	f.files[ref] = buf.String()
	return ref, nil
}

func (f *fakeSink) Remove(ref string) error {
	if !strings.HasPrefix(ref, "/uploads/") {
		return errors.New("foreign ref")
	}
	delete(f.files, ref)
	f.removed = append(f.removed, ref)
	return nil
}
