package handlers

import (
	"net/http"

	"github.com/nepal-lottery/lottery-backend/internal/models"
)

// GET /api/home
func (h *SiteHandler) Home(w http.ResponseWriter, r *http.Request) {
	summary, err := h.site.Home(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSONResponse(w, http.StatusOK, map[string]any{"success": true, "home": summary})
}

// POST /api/contact
func (h *SiteHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var req models.ContactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, err := h.site.SubmitContact(r.Context(), req); err != nil {
		writeServiceError(w, err)
		return
	}
	writeOK(w, http.StatusCreated, "Message sent successfully")
}
