package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/sakif/ncps/internal/apperror"
	"github.com/sakif/ncps/internal/attachment"
	"github.com/sakif/ncps/internal/auth"
	"github.com/sakif/ncps/internal/catalog"
	"github.com/sakif/ncps/internal/metrics"
	"github.com/sakif/ncps/internal/model"
	"github.com/sakif/ncps/internal/repository"
)

// ComplaintService owns the complaint lifecycle: submission, listings and the
// administrator's status updates. Authorization is not checked here; the
// HTTP layer puts the right middleware in front of each call.
type ComplaintService struct {
	repo    repository.ComplaintRepository
	catalog *catalog.Catalog
	sink    attachment.Sink
	logger  *slog.Logger
}

func NewComplaintService(
	repo repository.ComplaintRepository,
	cat *catalog.Catalog,
	sink attachment.Sink,
	logger *slog.Logger,
) *ComplaintService {
	return &ComplaintService{
		repo:    repo,
		catalog: cat,
		sink:    sink,
		logger:  logger,
	}
}

// CreateComplaintInput is a complaint whose service and category have already
// been resolved against the catalog.
type CreateComplaintInput struct {
	UserID      string
	Service     model.Service
	Category    model.Category
	Title       string
	Description string
	FilePath    string              // attachment reference, "" for none
	Location    *model.Location     // nil for none
	Amber       *model.AmberDetails // read only for the Amber Alert category
}

// Create validates and stores a complaint with status Submitted.
//
// For the Amber Alert category the alert summary is computed here, once, and
// stored; it is never recomputed. For every other category any amber details
// are dropped.
func (s *ComplaintService) Create(ctx context.Context, in CreateComplaintInput) (*model.Complaint, error) {
	c := &model.Complaint{
		UserID:        strings.TrimSpace(in.UserID),
		ServiceName:   strings.TrimSpace(in.Service.Name),
		CategoryLabel: strings.TrimSpace(in.Category.Label),
		Title:         strings.TrimSpace(in.Title),
		Description:   strings.TrimSpace(in.Description),
		FilePath:      in.FilePath,
		Status:        model.StatusSubmitted,
	}
	if err := validateComplaint(c); err != nil {
		return nil, err
	}

	if in.Location != nil {
		if err := checkRange(in.Location.Lat, in.Location.Lng); err != nil {
			return nil, err
		}
		loc := *in.Location
		c.Location = &loc
	}

	if in.Category.IsAmberAlert() {
		amber := model.AmberDetails{}
		if in.Amber != nil {
			amber = trimAmber(*in.Amber)
		}
		c.Amber = &amber
		c.AmberSMS = AmberSummary(amber)
	}

	if err := s.repo.CreateComplaint(ctx, c); err != nil {
		return nil, fmt.Errorf("service/complaint: storing complaint: %w", err)
	}

	metrics.RecordComplaintSubmitted(c.ServiceName)
	s.logger.Info("complaint submitted",
		slog.String("complaintID", c.ID),
		slog.String("userID", c.UserID),
		slog.String("service", c.ServiceName),
		slog.Bool("amber", c.Amber != nil),
	)
	return c, nil
}

func validateComplaint(c *model.Complaint) error {
	switch {
	case c.UserID == "":
		return apperror.ValidationFailed("owner", "owner is required")
	case c.ServiceName == "":
		return apperror.ValidationFailed("service_id", "service is required")
	case c.CategoryLabel == "":
		return apperror.ValidationFailed("category_key", "category is required")
	}
	return validateText(c.Title, c.Description)
}

func validateText(title, description string) error {
	if title == "" {
		return apperror.ValidationFailed("title", "title is required")
	}
	if description == "" {
		return apperror.ValidationFailed("description", "description is required")
	}
	return nil
}

// SubmitInput is the raw submission form.
type SubmitInput struct {
	ServiceID   string
	CategoryKey string
	Title       string
	Description string
	Lat, Lng    string
	Amber       model.AmberDetails

	// Attachment is nil when no file was uploaded.
	Attachment     io.Reader
	AttachmentName string
}

// Submit runs the whole submission for owner: resolve the catalog entry,
// validate the text fields, store the attachment, insert the complaint.
//
// Nothing touches the disk until the form is known to be valid, and the row
// is inserted only after the file is durably stored. If the insert fails the
// stored file is removed again, so neither a complaint without its file nor
// an orphan file is left behind.
func (s *ComplaintService) Submit(ctx context.Context, owner auth.Principal, in SubmitInput) (*model.Complaint, error) {
	svc, cat, ok := s.catalog.Resolve(in.ServiceID, in.CategoryKey)
	if !ok {
		return nil, apperror.ValidationFailed("category_key", "unknown service or category")
	}

	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if err := validateText(title, description); err != nil {
		return nil, err
	}

	loc, err := ParseLocation(in.Lat, in.Lng)
	if err != nil {
		return nil, err
	}

	var ref string
	if in.Attachment != nil {
		ref, err = s.sink.Store(ctx, in.Attachment, in.AttachmentName)
		if err != nil {
			s.logger.Error("storing attachment failed",
				slog.String("userID", owner.UserID),
				slog.String("error", err.Error()),
			)
			return nil, err
		}
	}

	amber := in.Amber
	c, err := s.Create(ctx, CreateComplaintInput{
		UserID:      owner.UserID,
		Service:     svc,
		Category:    cat,
		Title:       title,
		Description: description,
		FilePath:    ref,
		Location:    loc,
		Amber:       &amber,
	})
	if err != nil {
		if ref != "" {
			if rmErr := s.sink.Remove(ref); rmErr != nil {
				s.logger.Error("removing orphaned attachment failed",
					slog.String("ref", ref),
					slog.String("error", rmErr.Error()),
				)
			}
		}
		return nil, err
	}
	return c, nil
}

func (s *ComplaintService) ListByOwner(ctx context.Context, ownerID string) ([]model.Complaint, error) {
	complaints, err := s.repo.ListComplaintsByUser(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service/complaint: listing complaints of %s: %w", ownerID, err)
	}
	return complaints, nil
}

// ListAll is the administrator's view. The caller must have checked that the
// requester is the administrator.
func (s *ComplaintService) ListAll(ctx context.Context) ([]model.AdminComplaint, error) {
	complaints, err := s.repo.ListAllComplaints(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/complaint: listing all complaints: %w", err)
	}
	return complaints, nil
}

// UpdateStatus overwrites status and result. Any status may follow any
// other; an empty status means Pending.
func (s *ComplaintService) UpdateStatus(ctx context.Context, id, status, result string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.NotFound("complaint", id)
	}
	status = strings.TrimSpace(status)
	if status == "" {
		status = model.StatusPending
	}
	result = strings.TrimSpace(result)

	if err := s.repo.UpdateComplaintStatus(ctx, id, status, result); err != nil {
		return fmt.Errorf("service/complaint: updating complaint %s: %w", id, err)
	}

	metrics.RecordStatusUpdate()
	s.logger.Info("complaint status updated",
		slog.String("complaintID", id),
		slog.String("status", status),
	)
	return nil
}

// AmberSummary renders the alert text stored with an Amber Alert complaint.
// Blank fields are shown as "-".
func AmberSummary(a model.AmberDetails) string {
	return fmt.Sprintf("AMBER ALERT: শিশু: %s, বয়স: %s, শেষ অবস্থান: %s. তথ্য: %s.",
		orDash(a.ChildName), orDash(a.ChildAge), orDash(a.LastLocation), orDash(a.MoreInfo))
}

func orDash(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "-"
	}
	return s
}

func trimAmber(a model.AmberDetails) model.AmberDetails {
	return model.AmberDetails{
		ChildName:    strings.TrimSpace(a.ChildName),
		ChildAge:     strings.TrimSpace(a.ChildAge),
		LastLocation: strings.TrimSpace(a.LastLocation),
		MoreInfo:     strings.TrimSpace(a.MoreInfo),
	}
}

// ParseLocation turns the form's lat/lng strings into a Location.
//
//	both blank               → nil, nil
//	only one given           → nil, nil (a lone coordinate is meaningless)
//	both given and valid     → the location
//	unparsable, out of range → ValidationError
func ParseLocation(lat, lng string) (*model.Location, error) {
	lat, lng = strings.TrimSpace(lat), strings.TrimSpace(lng)
	if lat == "" || lng == "" {
		return nil, nil
	}

	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, apperror.ValidationFailed("lat", "latitude is not a number")
	}
	ln, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return nil, apperror.ValidationFailed("lng", "longitude is not a number")
	}
	if err := checkRange(la, ln); err != nil {
		return nil, err
	}
	return &model.Location{Lat: la, Lng: ln}, nil
}

// checkRange also rejects NaN, for which every comparison is false.
func checkRange(lat, lng float64) error {
	if !(lat >= -90 && lat <= 90) {
		return apperror.ValidationFailed("lat", "latitude must be between -90 and 90")
	}
	if !(lng >= -180 && lng <= 180) {
		return apperror.ValidationFailed("lng", "longitude must be between -180 and 180")
	}
	return nil
}
