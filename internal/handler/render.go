// Package handler contains the portal's HTTP handlers.
//
// Handlers are glue: they read the form, call a service, and either redirect
// or render a page. All error-to-response mapping happens here, so services
// never see HTTP and clients never see internal error text.
package handler

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/ncps/internal/auth"
	"github.com/sakif/ncps/internal/localization"
	"github.com/sakif/ncps/internal/model"
)

// Renderer executes a named page template. internal/view implements it;
// tests substitute a recorder.
type Renderer interface {
	Render(w io.Writer, name string, data any) error
}

// PageData is the single value every page template receives. Pages read
// only the fields they need.
type PageData struct {
	Title   string
	Lang    string
	User    *auth.Principal
	IsAdmin bool

	Error   string
	Success string
	// Form echoes submitted values back into a re-rendered form.
	Form map[string]string

	Services        []model.Service
	Service         *model.Service
	Category        *model.Category
	IsAmber         bool
	Complaints      []model.Complaint
	AdminComplaints []model.AdminComplaint

	Question string
	Answer   string
}

// Pages holds what every page-rendering handler needs.
type Pages struct {
	renderer Renderer
	messages *localization.Localizer
	gate     *auth.Gate
	lang     string
	logger   *slog.Logger
}

func NewPages(
	renderer Renderer,
	messages *localization.Localizer,
	gate *auth.Gate,
	lang string,
	logger *slog.Logger,
) *Pages {
	return &Pages{
		renderer: renderer,
		messages: messages,
		gate:     gate,
		lang:     lang,
		logger:   logger,
	}
}

// data starts a PageData for r with the session user filled in.
func (p *Pages) data(r *http.Request, title string) PageData {
	d := PageData{
		Title: title,
		Lang:  p.lang,
		Form:  map[string]string{},
	}
	if user, ok := auth.PrincipalFromContext(r.Context()); ok {
		d.User = user
		d.IsAdmin = p.gate.IsAdministrator(user)
	}
	return d
}

// msg returns the localized UI message for key.
func (p *Pages) msg(key string) string {
	return p.messages.GetString(p.lang, key)
}

// render executes the page into a buffer before writing anything, so a
// template error becomes a clean 500 instead of a truncated page.
func (p *Pages) render(w http.ResponseWriter, r *http.Request, status int, name string, data PageData) {
	var buf bytes.Buffer
	if err := p.renderer.Render(&buf, name, data); err != nil {
		p.fail(w, r, "template execution failed: "+name, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		p.logger.Warn("writing page failed",
			slog.String("page", name),
			slog.String("error", err.Error()),
		)
	}
}

// fail logs err and answers with a bare 500. Only for failures where no
// page can sensibly be shown.
func (p *Pages) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	p.logger.Error(msg,
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
