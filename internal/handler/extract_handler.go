package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"infograph/internal/domain"
	"infograph/internal/service"
)

// ExtractHandler handles the identify and extract endpoints.
type ExtractHandler struct {
	identifyService service.IdentificationService
	extractService  service.ExtractionService
}

// NewExtractHandler creates a new ExtractHandler.
func NewExtractHandler(identifyService service.IdentificationService, extractService service.ExtractionService) *ExtractHandler {
	return &ExtractHandler{identifyService: identifyService, extractService: extractService}
}

type identifyRequest struct {
	FileID string `json:"file_id" binding:"required"`
	Page   int    `json:"page"`
}

// Identify handles POST /api/v1/extract/identify
func (h *ExtractHandler) Identify(c *gin.Context) {
	var req identifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "file_id is required")
		return
	}

	fileID, err := uuid.Parse(req.FileID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid file ID")
		return
	}

	ident, err := h.identifyService.Identify(c.Request.Context(), service.IdentifyInput{
		FileID: fileID,
		Page:   req.Page,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, ident)
}

// GetIdentification handles GET /api/v1/extract/identifications/:id
func (h *ExtractHandler) GetIdentification(c *gin.Context) {
	ident, err := h.identifyService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, ident)
}

type extractRequest struct {
	IdentificationID string                   `json:"identification_id" binding:"required"`
	Selections       []domain.ItemSelection   `json:"selections"`
	Options          domain.ExtractionOptions `json:"options"`
}

// Extract handles POST /api/v1/extract/run
func (h *ExtractHandler) Extract(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "identification_id is required")
		return
	}

	out, err := h.extractService.Extract(c.Request.Context(), service.ExtractInput{
		IdentificationID: req.IdentificationID,
		Selections:       req.Selections,
		Options:          req.Options,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{
		"datasets": out.Datasets,
		"failures": out.Failures,
	})
}
