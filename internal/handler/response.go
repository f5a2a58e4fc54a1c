package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"infograph/internal/domain"
	"infograph/internal/repair"
	"infograph/internal/service"
	"infograph/internal/vision"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain and upstream errors to HTTP status
// codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	var timeoutErr *vision.TimeoutError
	var rateErr *vision.RateLimitError
	var parseErr *repair.ParseError
	var extractErr *service.ExtractionFailedError

	switch {
	case errors.Is(err, domain.ErrIdentificationExpired):
		return http.StatusGone, "IDENTIFICATION_EXPIRED",
			"identification has expired; run identification again and re-confirm your selections"
	case errors.Is(err, domain.ErrIdentificationNotFound):
		return http.StatusNotFound, "IDENTIFICATION_NOT_FOUND", "identification not found"
	case errors.Is(err, domain.ErrDatasetNotFound):
		return http.StatusNotFound, "DATASET_NOT_FOUND", "dataset not found"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrEmptySelection):
		return http.StatusBadRequest, "EMPTY_SELECTION", "at least one item selection is required"
	case errors.Is(err, domain.ErrInvalidSelection):
		return http.StatusBadRequest, "INVALID_SELECTION", err.Error()
	case errors.Is(err, domain.ErrInvalidGranularity):
		return http.StatusBadRequest, "INVALID_GRANULARITY",
			"invalid granularity; allowed: annotated_only, full, full_with_source"
	case errors.Is(err, domain.ErrInvalidFilterMode):
		return http.StatusBadRequest, "INVALID_FILTER_MODE",
			"invalid source filter; allowed: all, annotated, estimated"
	case errors.Is(err, domain.ErrPageRequired):
		return http.StatusBadRequest, "PAGE_REQUIRED", "page number required for PDF files"
	case errors.Is(err, domain.ErrPageOutOfRange):
		return http.StatusBadRequest, "PAGE_OUT_OF_RANGE", "page number out of range"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: pdf, jpg, png"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "file upload to storage failed"
	case errors.Is(err, domain.ErrVisionNotConfigured):
		return http.StatusServiceUnavailable, "VISION_NOT_CONFIGURED", "vision model is not configured"
	case errors.As(err, &rateErr):
		return http.StatusTooManyRequests, "MODEL_RATE_LIMITED", "vision model rate limit reached; retry later"
	case errors.As(err, &timeoutErr):
		return http.StatusGatewayTimeout, "MODEL_TIMEOUT", "vision model call timed out"
	case errors.As(err, &extractErr):
		return http.StatusBadGateway, "EXTRACTION_FAILED", extractErr.Error()
	case errors.As(err, &parseErr):
		return http.StatusBadGateway, "MODEL_RESPONSE_UNPARSEABLE", "vision model returned an unparseable response"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}
