package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/nepal-lottery/lottery-backend/internal/models"
	"github.com/nepal-lottery/lottery-backend/internal/services/ledger"
	"github.com/nepal-lottery/lottery-backend/internal/services/live"
)

var digitPaths = []string{"/api/digits", "/api/home"}

// DigitResultHandler exposes the daily digit ledger.
type DigitResultHandler struct {
	ledger *ledger.Ledger
	cache  Invalidator
	live   Broadcaster
}

// NewDigitResultHandler creates a DigitResultHandler. cache and hub may be nil.
func NewDigitResultHandler(l *ledger.Ledger, cache Invalidator, hub Broadcaster) *DigitResultHandler {
	return &DigitResultHandler{ledger: l, cache: cache, live: hub}
}

// readShiftRequest accepts either a JSON body or form fields named date,
// shift and digit.
func readShiftRequest(w http.ResponseWriter, r *http.Request) (models.DigitResultRequest, bool) {
	var req models.DigitResultRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return req, decodeJSON(w, r, &req)
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := r.ParseMultipartForm(maxJSONBody); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid form data")
		return req, false
	}
	req.Date = r.FormValue("date")
	req.Shift = r.FormValue("shift")
	req.Digit = models.FlexString(r.FormValue("digit"))
	return req, true
}

// Upsert records one shift's digit.
// POST /api/admin/digit-results
func (h *DigitResultHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	req, ok := readShiftRequest(w, r)
	if !ok {
		return
	}

	res, err := h.ledger.UpsertShift(r.Context(), req.Date, req.Shift, string(req.Digit))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	invalidate(h.cache, digitPaths...)
	broadcast(h.live, live.EventDigitUpserted, res.Record)

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	WriteJSONResponse(w, status, models.DigitResultResponse{
		Success: true,
		Message: res.Message,
		Created: res.Created,
		Record:  res.Record,
	})
}

// Delete removes a whole day. Unknown ids succeed.
// DELETE /api/admin/digit-results/{id}
func (h *DigitResultHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	res, err := h.ledger.DeleteRecord(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	invalidate(h.cache, digitPaths...)
	broadcast(h.live, live.EventDigitDeleted, map[string]string{"id": id})

	WriteJSONResponse(w, http.StatusOK, map[string]any{"success": true, "message": res.Message})
}

// List returns records newest first.
// GET /api/digits?limit=N and GET /api/admin/digit-results?limit=N
func (h *DigitResultHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.ledger.ListRecords(r.Context(), queryLimit(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if records == nil {
		records = []models.DigitResult{}
	}
	WriteJSONResponse(w, http.StatusOK, map[string]any{"success": true, "records": records})
}

// GetByDate returns the record of one day, 404 when nothing was recorded.
// GET /api/digits/{date}
func (h *DigitResultHandler) GetByDate(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]
	if date == "today" {
		date = h.ledger.Today()
	}
	rec, err := h.ledger.RecordForDate(r.Context(), date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if rec == nil {
		WriteErrorResponse(w, http.StatusNotFound, "No result for "+date)
		return
	}
	WriteJSONResponse(w, http.StatusOK, map[string]any{"success": true, "record": rec})
}
