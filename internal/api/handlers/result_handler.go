package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nepal-lottery/lottery-backend/internal/models"
	"github.com/nepal-lottery/lottery-backend/internal/services/results"
	"github.com/nepal-lottery/lottery-backend/internal/services/storage"
)

const maxUploadBody = storage.MaxImageBytes + 1<<20

var resultPaths = []string{"/api/results", "/api/home"}

// ImageResultHandler manages uploaded result sheets.
type ImageResultHandler struct {
	results results.ResultService
	cache   Invalidator
}

// NewImageResultHandler creates an ImageResultHandler.
func NewImageResultHandler(svc results.ResultService, cache Invalidator) *ImageResultHandler {
	return &ImageResultHandler{results: svc, cache: cache}
}

// readUpload parses the multipart form. The returned closer is non-nil only
// when an image part was sent.
func readUpload(w http.ResponseWriter, r *http.Request) (models.ImageResultForm, io.ReadCloser, bool) {
	var form models.ImageResultForm
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			WriteErrorResponse(w, http.StatusRequestEntityTooLarge, storage.ErrImageTooLarge.Error())
			return form, nil, false
		}
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid form data")
		return form, nil, false
	}

	form.Title = r.FormValue("title")
	form.Description = r.FormValue("description")
	form.CategoryID = r.FormValue("categoryId")
	form.Date = r.FormValue("date")

	file, header, err := r.FormFile("image")
	if err != nil {
		return form, nil, true
	}
	if header.Size == 0 {
		file.Close()
		return form, nil, true
	}
	return form, file, true
}

// Create uploads a new result sheet.
// POST /api/admin/image-results (multipart: title, description, categoryId, date, image)
func (h *ImageResultHandler) Create(w http.ResponseWriter, r *http.Request) {
	form, file, ok := readUpload(w, r)
	if !ok {
		return
	}
	var image io.Reader
	if file != nil {
		defer file.Close()
		image = file
	}

	img, err := h.results.Create(r.Context(), form, image)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	invalidate(h.cache, resultPaths...)
	WriteJSONResponse(w, http.StatusCreated, map[string]any{
		"success": true, "message": "Result uploaded successfully", "result": img,
	})
}

// Update edits a result sheet; the image is replaced only when a new one is sent.
// PUT /api/admin/image-results/{id}
func (h *ImageResultHandler) Update(w http.ResponseWriter, r *http.Request) {
	form, file, ok := readUpload(w, r)
	if !ok {
		return
	}
	var image io.Reader
	if file != nil {
		defer file.Close()
		image = file
	}

	img, err := h.results.Update(r.Context(), mux.Vars(r)["id"], form, image)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	invalidate(h.cache, resultPaths...)
	WriteJSONResponse(w, http.StatusOK, map[string]any{
		"success": true, "message": "Result updated successfully", "result": img,
	})
}

// Delete removes a result sheet and its images.
// DELETE /api/admin/image-results/{id}
func (h *ImageResultHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.results.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	invalidate(h.cache, resultPaths...)
	WriteJSONResponse(w, http.StatusOK, map[string]any{"success": true, "message": "Result deleted successfully"})
}

// List returns result sheets, newest result date first.
// GET /api/results?limit=&category= and GET /api/admin/image-results
func (h *ImageResultHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.results.List(r.Context(), queryLimit(r), r.URL.Query().Get("category"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if list == nil {
		list = []models.ImageResult{}
	}
	WriteJSONResponse(w, http.StatusOK, map[string]any{"success": true, "results": list})
}

// Get returns one result sheet.
// GET /api/results/{id}
func (h *ImageResultHandler) Get(w http.ResponseWriter, r *http.Request) {
	img, err := h.results.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSONResponse(w, http.StatusOK, map[string]any{"success": true, "result": img})
}
