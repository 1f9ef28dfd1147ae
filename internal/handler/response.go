package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// writeJSON sends data as JSON. Headers and status must be written before
// the body; once Encode starts writing, header changes are ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// redirect answers with 303 See Other, which makes the browser follow up
// with a GET even after a form POST.
func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}
