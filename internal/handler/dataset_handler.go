package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"infograph/internal/service"
)

// DatasetHandler handles dataset review endpoints.
type DatasetHandler struct {
	datasetService service.DatasetService
}

// NewDatasetHandler creates a new DatasetHandler.
func NewDatasetHandler(datasetService service.DatasetService) *DatasetHandler {
	return &DatasetHandler{datasetService: datasetService}
}

// List handles GET /api/v1/datasets
func (h *DatasetHandler) List(c *gin.Context) {
	offset, limit := pagination(c)

	datasets, total, err := h.datasetService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, datasets, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/datasets/:id
func (h *DatasetHandler) GetByID(c *gin.Context) {
	ds, err := h.datasetService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, ds)
}

// Update handles PATCH /api/v1/datasets/:id
func (h *DatasetHandler) Update(c *gin.Context) {
	var input service.DatasetUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid update payload")
		return
	}

	ds, err := h.datasetService.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, ds)
}
