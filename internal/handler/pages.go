package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/ncps/internal/catalog"
	"github.com/sakif/ncps/internal/faq"
)

// CatalogHandler serves the browsing pages: the service list and the
// categories of one service.
type CatalogHandler struct {
	*Pages
	catalog *catalog.Catalog
}

func NewCatalogHandler(pages *Pages, c *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{Pages: pages, catalog: c}
}

// HandleHome lists every service.
//
// HTTP: GET /
func (h *CatalogHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	data := h.data(r, "Home")
	data.Services = h.catalog.Services()
	h.render(w, r, http.StatusOK, "home", data)
}

// HandleService lists the categories of one service.
//
// HTTP: GET /service/{id}
func (h *CatalogHandler) HandleService(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.catalog.FindService(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	data := h.data(r, svc.Name)
	data.Service = &svc
	h.render(w, r, http.StatusOK, "service", data)
}

// HelpHandler answers free-text questions from the FAQ rules.
type HelpHandler struct {
	*Pages
	responder *faq.Responder
}

func NewHelpHandler(pages *Pages, responder *faq.Responder) *HelpHandler {
	return &HelpHandler{Pages: pages, responder: responder}
}

// HTTP: GET /ai-help
func (h *HelpHandler) HandleForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "ai-help", h.data(r, "AI Help"))
}

// HTTP: POST /ai-help
func (h *HelpHandler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	question := strings.TrimSpace(r.PostFormValue("question"))
	data := h.data(r, "AI Help")
	data.Question = question
	data.Answer = h.responder.Answer(question)
	h.render(w, r, http.StatusOK, "ai-help", data)
}
