package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-seating-api/internal/dto"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
	"github.com/noah-isme/exam-seating-api/pkg/response"
)

type exportService interface {
	Consolidated(ctx context.Context, req dto.ExportRequest) (*dto.ExportResult, error)
	HallSheet(ctx context.Context, hallID int64, req dto.ExportRequest) (*dto.ExportResult, error)
}

// ExportHandler streams rendered seating documents.
type ExportHandler struct {
	exports exportService
	halls   hallGetter
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(exports exportService, halls hallGetter) *ExportHandler {
	return &ExportHandler{exports: exports, halls: halls}
}

// Consolidated godoc
// @Summary Download the consolidated seating sheet
// @Tags Exports
// @Produce application/pdf
// @Produce text/csv
// @Param format query string false "csv, pdf or xlsx"
// @Param hallId query int false "Restrict to one hall"
// @Param session query string false "Date / session printed in the header"
// @Success 200 {file} file
// @Router /seating/consolidated/export [get]
func (h *ExportHandler) Consolidated(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	result, err := h.exports.Consolidated(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Body)
}

// HallPlan godoc
// @Summary Download the seating sheet of one hall
// @Tags Exports
// @Produce application/pdf
// @Param id path int true "Hall ID"
// @Param format query string false "csv, pdf or xlsx"
// @Param session query string false "Date / session printed in the header"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /halls/{id}/plan/export [get]
func (h *ExportHandler) HallPlan(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := authorizeHall(c, h.halls, id); err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	result, err := h.exports.HallSheet(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Body)
}
