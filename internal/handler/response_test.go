package handler_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"infograph/internal/domain"
	"infograph/internal/handler"
	"infograph/internal/repair"
	"infograph/internal/service"
	"infograph/internal/vision"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"identification expired", domain.ErrIdentificationExpired, http.StatusGone, "IDENTIFICATION_EXPIRED"},
		{"identification not found", domain.ErrIdentificationNotFound, http.StatusNotFound, "IDENTIFICATION_NOT_FOUND"},
		{"dataset not found", domain.ErrDatasetNotFound, http.StatusNotFound, "DATASET_NOT_FOUND"},
		{"empty selection", domain.ErrEmptySelection, http.StatusBadRequest, "EMPTY_SELECTION"},
		{"invalid selection wrapped", errors.Join(domain.ErrInvalidSelection), http.StatusBadRequest, "INVALID_SELECTION"},
		{"invalid granularity", domain.ErrInvalidGranularity, http.StatusBadRequest, "INVALID_GRANULARITY"},
		{"invalid filter mode", domain.ErrInvalidFilterMode, http.StatusBadRequest, "INVALID_FILTER_MODE"},
		{"page required", domain.ErrPageRequired, http.StatusBadRequest, "PAGE_REQUIRED"},
		{"page out of range", domain.ErrPageOutOfRange, http.StatusBadRequest, "PAGE_OUT_OF_RANGE"},
		{"unsupported file type", domain.ErrUnsupportedFileType, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE"},
		{"file too large", domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{"vision not configured", domain.ErrVisionNotConfigured, http.StatusServiceUnavailable, "VISION_NOT_CONFIGURED"},
		{"model timeout", &vision.TimeoutError{Err: errors.New("deadline")}, http.StatusGatewayTimeout, "MODEL_TIMEOUT"},
		{"model rate limited", vision.NewRateLimitError(errors.New("429"), 0), http.StatusTooManyRequests, "MODEL_RATE_LIMITED"},
		{"unparseable reply", &repair.ParseError{Raw: "garbage"}, http.StatusBadGateway, "MODEL_RESPONSE_UNPARSEABLE"},
		{"all items failed", &service.ExtractionFailedError{Err: errors.New("down")}, http.StatusBadGateway, "EXTRACTION_FAILED"},
		{"unknown", errors.New("mystery"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, msg := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestMapDomainError_WrappedErrors(t *testing.T) {
	// Errors wrapped with context still map by their sentinel.
	wrapped := errors.Join(errors.New("selection \"new-x\""), domain.ErrInvalidSelection)
	status, code, _ := handler.MapDomainError(wrapped)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_SELECTION", code)
}
