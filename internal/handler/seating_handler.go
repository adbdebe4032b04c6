package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-seating-api/internal/dto"
	"github.com/noah-isme/exam-seating-api/internal/models"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
	"github.com/noah-isme/exam-seating-api/pkg/response"
)

type seatingService interface {
	GenerateForHall(ctx context.Context, hallID int64, req dto.GenerateHallRequest) (*dto.GenerationResult, error)
	GenerateForAllHalls(ctx context.Context) (*dto.GenerationResult, error)
	ListAssignments(ctx context.Context) ([]models.SeatAssignment, error)
	Consolidated(ctx context.Context, hallID *int64) ([]dto.ConsolidatedRow, error)
}

// SeatingHandler exposes the allocation endpoints.
type SeatingHandler struct {
	seating seatingService
}

// NewSeatingHandler constructs a SeatingHandler.
func NewSeatingHandler(seating seatingService) *SeatingHandler {
	return &SeatingHandler{seating: seating}
}

// GenerateForHall godoc
// @Summary Generate the seating plan of one hall
// @Tags Seating
// @Accept json
// @Produce json
// @Param id path int true "Hall ID"
// @Param payload body dto.GenerateHallRequest false "Skip list and manual entries"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /halls/{id}/seating/generate [post]
func (h *SeatingHandler) GenerateForHall(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.GenerateHallRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation payload"))
		return
	}
	result, err := h.seating.GenerateForHall(c.Request.Context(), id, req)
	respondGeneration(c, result, err)
}

// GenerateForAllHalls godoc
// @Summary Generate the seating plan across every hall
// @Tags Seating
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /seating/generate [post]
func (h *SeatingHandler) GenerateForAllHalls(c *gin.Context) {
	result, err := h.seating.GenerateForAllHalls(c.Request.Context())
	respondGeneration(c, result, err)
}

// Assignments godoc
// @Summary List every stored seat assignment
// @Tags Seating
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /seating/assignments [get]
func (h *SeatingHandler) Assignments(c *gin.Context) {
	assignments, err := h.seating.ListAssignments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil, map[string]interface{}{"total": len(assignments)})
}

// Consolidated godoc
// @Summary Consolidated roll ranges per hall and department
// @Tags Seating
// @Produce json
// @Param hallId query int false "Restrict to one hall"
// @Success 200 {object} response.Envelope
// @Router /seating/consolidated [get]
func (h *SeatingHandler) Consolidated(c *gin.Context) {
	hallID, err := optionalHallID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.seating.Consolidated(c.Request.Context(), hallID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

func respondGeneration(c *gin.Context, result *dto.GenerationResult, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	if !result.Success {
		response.Error(c, appErrors.ErrReferenceMissing, map[string]interface{}{"result": result})
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

func optionalHallID(c *gin.Context) (*int64, error) {
	raw := c.Query("hallId")
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, appErrors.New(appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid hallId")
	}
	return &id, nil
}
