package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nepal-lottery/lottery-backend/internal/models"
	"github.com/nepal-lottery/lottery-backend/internal/services/site"
)

// SiteHandler serves categories, contact messages, the live stream link and
// the home and dashboard summaries.
type SiteHandler struct {
	site  *site.Service
	cache Invalidator
}

// NewSiteHandler creates a SiteHandler.
func NewSiteHandler(svc *site.Service, cache Invalidator) *SiteHandler {
	return &SiteHandler{site: svc, cache: cache}
}

func writeOK(w http.ResponseWriter, status int, message string) {
	WriteJSONResponse(w, status, map[string]any{"success": true, "message": message})
}

// GET /api/categories and GET /api/admin/categories
func (h *SiteHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	list, err := h.site.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSONResponse(w, http.StatusOK, map[string]any{"success": true, "categories": list})
}

// POST /api/admin/categories
func (h *SiteHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req models.CategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cat, err := h.site.CreateCategory(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	invalidate(h.cache, "/api/categories")
	WriteJSONResponse(w, http.StatusCreated, map[string]any{
		"success": true, "message": "Category created successfully", "category": cat,
	})
}

// PUT /api/admin/categories/{id}
func (h *SiteHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req models.CategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.site.UpdateCategory(r.Context(), mux.Vars(r)["id"], req); err != nil {
		writeServiceError(w, err)
		return
	}
	invalidate(h.cache, "/api/categories", "/api/results", "/api/home")
	writeOK(w, http.StatusOK, "Category updated successfully")
}

// DELETE /api/admin/categories/{id}
func (h *SiteHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.site.DeleteCategory(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	invalidate(h.cache, "/api/categories", "/api/results", "/api/home")
	writeOK(w, http.StatusOK, "Category deleted successfully")
}

// GET /api/admin/messages
func (h *SiteHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	list, err := h.site.ListMessages(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSONResponse(w, http.StatusOK, map[string]any{"success": true, "messages": list})
}

// POST /api/admin/messages/{id}/read
func (h *SiteHandler) MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	if err := h.site.MarkMessageRead(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "Message marked as read")
}

// DELETE /api/admin/messages/{id}
func (h *SiteHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	if err := h.site.DeleteMessage(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "Message deleted successfully")
}

// GET /api/admin/settings/youtube
func (h *SiteHandler) GetYoutubeLink(w http.ResponseWriter, r *http.Request) {
	WriteJSONResponse(w, http.StatusOK, map[string]any{"success": true, "url": h.site.YoutubeLink(r.Context())})
}

// PUT /api/admin/settings/youtube
func (h *SiteHandler) UpdateYoutubeLink(w http.ResponseWriter, r *http.Request) {
	var req models.YoutubeLinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.site.UpdateYoutubeLink(r.Context(), req); err != nil {
		writeServiceError(w, err)
		return
	}
	invalidate(h.cache, "/api/home")
	writeOK(w, http.StatusOK, "YouTube link updated successfully")
}

// GET /api/admin/dashboard
func (h *SiteHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.site.Dashboard(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSONResponse(w, http.StatusOK, map[string]any{"success": true, "stats": stats})
}
