package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/nepal-lottery/lottery-backend/internal/apperrors"
	"github.com/nepal-lottery/lottery-backend/internal/config"
)

const maxJSONBody = 1 << 20

// Invalidator drops cached public pages after a write.
type Invalidator interface {
	Invalidate(prefixes ...string) int
}

// Broadcaster pushes events to live subscribers.
type Broadcaster interface {
	Broadcast(eventType string, data any)
}

// WriteJSONResponse writes data as JSON with statusCode.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		config.LogError("handlers", "WriteJSONResponse", "encode response", nil, err)
	}
}

// WriteErrorResponse writes {"success": false, "message": message}.
func WriteErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	WriteJSONResponse(w, statusCode, map[string]any{"success": false, "message": message})
}

// writeServiceError maps the application's error kinds to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		vErr  *apperrors.ValidationError
		nfErr *apperrors.NotFoundError
		sErr  *apperrors.StorageError
	)
	switch {
	case errors.As(err, &vErr):
		body := map[string]any{"success": false, "message": vErr.Message}
		if len(vErr.Fields) > 0 {
			body["errors"] = vErr.Fields
		}
		WriteJSONResponse(w, http.StatusBadRequest, body)
	case errors.As(err, &nfErr):
		WriteErrorResponse(w, http.StatusNotFound, nfErr.Error())
	case errors.As(err, &sErr):
		WriteErrorResponse(w, http.StatusInternalServerError, sErr.Error())
	default:
		config.LogError("handlers", "writeServiceError", "unexpected error", nil, err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSON reads a JSON body of at most maxJSONBody bytes into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// queryLimit reads ?limit=, returning 0 (the service default) when absent
// or malformed.
func queryLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func invalidate(c Invalidator, prefixes ...string) {
	if c != nil {
		c.Invalidate(prefixes...)
	}
}

func broadcast(b Broadcaster, eventType string, data any) {
	if b != nil {
		b.Broadcast(eventType, data)
	}
}
