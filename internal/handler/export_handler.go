package handler

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"infograph/internal/domain"
	"infograph/internal/export"
	"infograph/internal/service"
)

// ExportHandler streams export archives of extracted datasets.
type ExportHandler struct {
	datasetService service.DatasetService
	writer         *export.Writer
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(datasetService service.DatasetService) *ExportHandler {
	return &ExportHandler{datasetService: datasetService, writer: export.NewWriter()}
}

// Download handles GET /api/v1/export
// Query: dataset_ids (comma-separated, required), source (all|annotated|estimated).
func (h *ExportHandler) Download(c *gin.Context) {
	var ids []string
	for _, id := range strings.Split(c.Query("dataset_ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		RespondError(c, http.StatusBadRequest, "MISSING_DATASET_IDS", "dataset_ids query parameter is required")
		return
	}

	mode := domain.SourceFilterMode(c.DefaultQuery("source", string(domain.SourceFilterAll)))
	if !mode.Valid() {
		HandleError(c, domain.ErrInvalidFilterMode)
		return
	}

	datasets := make([]domain.Dataset, 0, len(ids))
	for _, id := range ids {
		ds, err := h.datasetService.GetByID(c.Request.Context(), id)
		if err != nil {
			HandleError(c, err)
			return
		}
		datasets = append(datasets, *ds)
	}

	filtered := export.Filter(datasets, mode)

	filename := fmt.Sprintf("export-%s.zip", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)

	if err := h.writer.WriteArchive(c.Writer, filtered, mode); err != nil {
		// Headers are already out; all that is left is to log.
		log.Printf("exportHandler.Download: writing archive: %v", err)
	}
}
