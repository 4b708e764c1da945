package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nepal-lottery/lottery-backend/internal/apperrors"
	"github.com/nepal-lottery/lottery-backend/internal/models"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		body string
	}{
		{
			"validation",
			&apperrors.ValidationError{Message: "Digit must be between 0-9"},
			http.StatusBadRequest,
			`{"success":false,"message":"Digit must be between 0-9"}`,
		},
		{
			"validation with fields",
			&apperrors.ValidationError{Message: "name is required", Fields: map[string]string{"name": "required"}},
			http.StatusBadRequest,
			`{"success":false,"message":"name is required","errors":{"name":"required"}}`,
		},
		{
			"not found",
			&apperrors.NotFoundError{What: "Result"},
			http.StatusNotFound,
			`{"success":false,"message":"Result not found"}`,
		},
		{
			"storage hides driver error",
			&apperrors.StorageError{Message: "Failed to save MORNING result", Err: errors.New("pq: password authentication failed")},
			http.StatusInternalServerError,
			`{"success":false,"message":"Failed to save MORNING result"}`,
		},
		{
			"unknown",
			errors.New("boom"),
			http.StatusInternalServerError,
			`{"success":false,"message":"Internal server error"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, tt.err)
			assert.Equal(t, tt.code, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}

func TestReadShiftRequest(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        models.DigitResultRequest
	}{
		{
			"json number",
			"application/json",
			`{"date":"2024-06-01","shift":"DAY","digit":7}`,
			models.DigitResultRequest{Date: "2024-06-01", Shift: "DAY", Digit: "7"},
		},
		{
			"json string",
			"application/json; charset=utf-8",
			`{"date":"2024-06-01","shift":"day","digit":"0"}`,
			models.DigitResultRequest{Date: "2024-06-01", Shift: "day", Digit: "0"},
		},
		{
			"form",
			"application/x-www-form-urlencoded",
			"date=2024-06-01&shift=evening&digit=9",
			models.DigitResultRequest{Date: "2024-06-01", Shift: "evening", Digit: "9"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/admin/digit-results", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			got, ok := readShiftRequest(httptest.NewRecorder(), req)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/digit-results", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	_, ok := readShiftRequest(rec, req)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryLimit(t *testing.T) {
	for raw, want := range map[string]int{"": 0, "10": 10, "-3": 0, "abc": 0} {
		req := httptest.NewRequest(http.MethodGet, "/api/digits?limit="+raw, nil)
		assert.Equal(t, want, queryLimit(req), raw)
	}
}
