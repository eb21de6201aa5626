package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type quoteRequest struct {
	Width  float64 `json:"width" validate:"required,gt=0"`
	Height float64 `json:"height" validate:"required,gt=0"`
}

func TestDecodeAndValidate(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/products/tulle/price",
		bytes.NewBufferString(`{"width": 150, "height": 200}`))

	var req quoteRequest
	require.NoError(t, DecodeAndValidate(r, &req))
	assert.Equal(t, float64(150), req.Width)
	assert.Equal(t, float64(200), req.Height)
}

func TestDecodeAndValidate_MalformedJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/products/tulle/price",
		bytes.NewBufferString(`{"width": `))

	var req quoteRequest
	assert.Error(t, DecodeAndValidate(r, &req))
}

func TestDecodeAndValidate_FailsValidation(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/products/tulle/price",
		bytes.NewBufferString(`{"width": -5, "height": 200}`))

	var req quoteRequest
	err := DecodeAndValidate(r, &req)
	require.Error(t, err)

	fieldErrors := FormatValidationErrors(err)
	require.Len(t, fieldErrors, 1)
	assert.Equal(t, "Width", fieldErrors[0].Field)
	assert.Equal(t, "Value must be greater than 0", fieldErrors[0].Message)
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	assert.Empty(t, FormatValidationErrors(assert.AnError))
}

func TestRespondWithValidationErrors(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithValidationErrors(w, []ValidationError{
		{Field: "Email", Message: "Invalid email format"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_errors")
	assert.Contains(t, w.Body.String(), "Invalid email format")
}
