package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/sakif/ncps/internal/apperror"
	"github.com/sakif/ncps/internal/export"
)

// AdminHandler serves the administrator's pages. Routes are expected to sit
// behind auth.RequireAdministrator.
type AdminHandler struct {
	*Pages
	complaints Complaints
	now        func() time.Time
}

func NewAdminHandler(pages *Pages, complaints Complaints) *AdminHandler {
	return &AdminHandler{
		Pages:      pages,
		complaints: complaints,
		now:        time.Now,
	}
}

// HTTP: GET /admin
func (h *AdminHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	complaints, err := h.complaints.ListAll(r.Context())
	if err != nil {
		h.fail(w, r, "listing all complaints failed", err)
		return
	}

	data := h.data(r, "Admin")
	data.AdminComplaints = complaints
	h.render(w, r, http.StatusOK, "admin", data)
}

// HandleUpdate overwrites a complaint's status and result. It always ends
// on the admin page: a missing or unknown id changes nothing.
//
// HTTP: POST /admin/complaint/update
func (h *AdminHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	id := r.PostFormValue("id")
	if id == "" {
		redirect(w, r, "/admin")
		return
	}

	err := h.complaints.UpdateStatus(r.Context(), id, r.PostFormValue("status"), r.PostFormValue("result"))
	switch {
	case err == nil:
	case errors.Is(err, apperror.ErrNotFound):
		h.logger.Warn("status update for unknown complaint", slog.String("complaintID", id))
	default:
		h.logger.Error("status update failed",
			slog.String("complaintID", id),
			slog.String("error", err.Error()),
		)
	}
	redirect(w, r, "/admin")
}

// HandleExport downloads every complaint as a spreadsheet.
//
// HTTP: GET /admin/export.xlsx
func (h *AdminHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	complaints, err := h.complaints.ListAll(r.Context())
	if err != nil {
		h.fail(w, r, "listing complaints for export failed", err)
		return
	}

	body, err := export.ComplaintsXLSX(complaints)
	if err != nil {
		h.fail(w, r, "building spreadsheet failed", err)
		return
	}

	filename := fmt.Sprintf("complaints-%s.xlsx", h.now().Format("20060102"))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.Warn("writing spreadsheet failed", slog.String("error", err.Error()))
	}
}
