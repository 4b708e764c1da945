package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nepal-lottery/lottery-backend/internal/apperrors"
	"github.com/nepal-lottery/lottery-backend/internal/models"
)

func TestStruct_ContactRequest(t *testing.T) {
	err := Struct(&models.ContactRequest{Name: "", Email: "nope", Message: "hi"})

	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, map[string]string{"name": "required", "email": "email"}, vErr.Fields)
	assert.Equal(t, "email must be a valid email address; name is required", vErr.Message)
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(&models.CategoryRequest{Name: "11:20 AM Result"}))
	assert.NoError(t, Struct(&models.YoutubeLinkRequest{URL: ""}))
	assert.NoError(t, Struct(&models.YoutubeLinkRequest{URL: "https://youtube.com/live/x"}))
}

func TestStruct_YoutubeLinkMustBeHTTP(t *testing.T) {
	err := Struct(&models.YoutubeLinkRequest{URL: "ftp://example.com/live"})

	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "startswith", vErr.Fields["url"])
}

func TestStruct_ImageResultFormUsesGoNames(t *testing.T) {
	err := Struct(&models.ImageResultForm{Title: "t", CategoryID: "x", Date: "2024/01/01"})

	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "uuid", vErr.Fields["CategoryID"])
	assert.Equal(t, "datetime", vErr.Fields["Date"])
}
