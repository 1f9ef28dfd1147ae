package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/ncps/internal/apperror"
	"github.com/sakif/ncps/internal/auth"
	"github.com/sakif/ncps/internal/catalog"
	"github.com/sakif/ncps/internal/model"
	"github.com/sakif/ncps/internal/service"
)

// Complaints is what the complaint and admin handlers need from the
// complaint service.
type Complaints interface {
	Submit(ctx context.Context, owner auth.Principal, in service.SubmitInput) (*model.Complaint, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Complaint, error)
	ListAll(ctx context.Context) ([]model.AdminComplaint, error)
	UpdateStatus(ctx context.Context, id, status, result string) error
}

// multipartMemory is how much of a multipart body is held in memory before
// file parts spill to temporary files.
const multipartMemory = 8 << 20

// textFields are echoed back into the form when a submission is rejected.
var textFields = []string{
	"title", "description", "lat", "lng",
	"amber_child_name", "amber_child_age", "amber_last_location", "amber_more_info",
}

// ComplaintHandler serves the complaint form, its submission, and the
// citizen's own complaint list.
type ComplaintHandler struct {
	*Pages
	catalog        *catalog.Catalog
	complaints     Complaints
	maxUploadBytes int64
}

func NewComplaintHandler(
	pages *Pages,
	c *catalog.Catalog,
	complaints Complaints,
	maxUploadBytes int64,
) *ComplaintHandler {
	return &ComplaintHandler{
		Pages:          pages,
		catalog:        c,
		complaints:     complaints,
		maxUploadBytes: maxUploadBytes,
	}
}

// HandleNew shows the submission form for one category. An unknown service
// or category sends the visitor back to the home page.
//
// HTTP: GET /complaint/new?service={id}&category={key}
func (h *ComplaintHandler) HandleNew(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data, ok := h.formData(r, q.Get("service"), q.Get("category"))
	if !ok {
		redirect(w, r, "/")
		return
	}
	h.render(w, r, http.StatusOK, "complaint", data)
}

// HandleSubmit accepts a multipart complaint with an optional "attachment"
// file. Rejections and failures re-render the form with a message; success
// renders an empty form with a confirmation.
//
// HTTP: POST /complaint
func (h *ComplaintHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	user, err := h.gate.RequireAuthenticated(r.Context())
	if err != nil {
		redirect(w, r, auth.LoginPath)
		return
	}

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger.Warn("complaint upload too large",
				slog.String("userID", user.UserID),
				slog.Int64("limit", tooLarge.Limit),
			)
			http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	in := service.SubmitInput{
		ServiceID:   r.FormValue("service_id"),
		CategoryKey: r.FormValue("category_key"),
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Lat:         r.FormValue("lat"),
		Lng:         r.FormValue("lng"),
		Amber: model.AmberDetails{
			ChildName:    r.FormValue("amber_child_name"),
			ChildAge:     r.FormValue("amber_child_age"),
			LastLocation: r.FormValue("amber_last_location"),
			MoreInfo:     r.FormValue("amber_more_info"),
		},
	}

	// A urlencoded body has no MultipartForm and so no attachment.
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("attachment")
		switch {
		case err == nil:
			defer file.Close()
			in.Attachment = file
			in.AttachmentName = header.Filename
		case !errors.Is(err, http.ErrMissingFile):
			h.logger.Warn("reading attachment failed", slog.String("error", err.Error()))
			h.rejectSubmission(w, r, "complaint.failed")
			return
		}
	}

	if _, err := h.complaints.Submit(r.Context(), *user, in); err != nil {
		var appErr *apperror.AppError
		switch {
		case errors.As(err, &appErr) && appErr.Field == "category_key":
			redirect(w, r, "/")
		case errors.As(err, &appErr) && (appErr.Field == "lat" || appErr.Field == "lng"):
			h.rejectSubmission(w, r, "location.invalid")
		case errors.Is(err, apperror.ErrValidation):
			h.rejectSubmission(w, r, "form.required")
		default:
			h.logger.Error("complaint submission failed",
				slog.String("userID", user.UserID),
				slog.String("error", err.Error()),
			)
			h.rejectSubmission(w, r, "complaint.failed")
		}
		return
	}

	data, ok := h.formData(r, in.ServiceID, in.CategoryKey)
	if !ok {
		redirect(w, r, "/")
		return
	}
	data.Success = h.msg("complaint.success")
	h.render(w, r, http.StatusOK, "complaint", data)
}

// HandleProfile lists the signed-in citizen's complaints, newest first.
//
// HTTP: GET /profile
func (h *ComplaintHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.gate.RequireAuthenticated(r.Context())
	if err != nil {
		redirect(w, r, auth.LoginPath)
		return
	}

	complaints, err := h.complaints.ListByOwner(r.Context(), user.UserID)
	if err != nil {
		h.fail(w, r, "listing own complaints failed", err)
		return
	}

	data := h.data(r, "Profile")
	data.Complaints = complaints
	h.render(w, r, http.StatusOK, "profile", data)
}

// formData prepares the complaint page for a resolved catalog entry.
func (h *ComplaintHandler) formData(r *http.Request, serviceID, categoryKey string) (PageData, bool) {
	svc, cat, ok := h.catalog.Resolve(serviceID, categoryKey)
	if !ok {
		return PageData{}, false
	}
	data := h.data(r, svc.Name+" · "+cat.Label)
	data.Service = &svc
	data.Category = &cat
	data.IsAmber = cat.IsAmberAlert()
	return data, true
}

// rejectSubmission re-renders the form with the submitted text values and
// the message for key.
func (h *ComplaintHandler) rejectSubmission(w http.ResponseWriter, r *http.Request, key string) {
	data, ok := h.formData(r, r.FormValue("service_id"), r.FormValue("category_key"))
	if !ok {
		redirect(w, r, "/")
		return
	}
	for _, name := range textFields {
		data.Form[name] = r.FormValue(name)
	}
	data.Error = h.msg(key)
	h.render(w, r, http.StatusOK, "complaint", data)
}
