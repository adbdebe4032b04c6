package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-seating-api/internal/dto"
	"github.com/noah-isme/exam-seating-api/internal/models"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
	"github.com/noah-isme/exam-seating-api/pkg/response"
)

type hallService interface {
	List(ctx context.Context) ([]models.Hall, error)
	ListForFaculty(ctx context.Context, facultyID int64) ([]models.Hall, error)
	Get(ctx context.Context, id int64) (*models.Hall, error)
	Create(ctx context.Context, req dto.HallRequest) (*models.Hall, error)
	Update(ctx context.Context, id int64, req dto.HallRequest) (*models.Hall, error)
	Delete(ctx context.Context, id int64) error
}

type hallPlanReader interface {
	HallPlan(ctx context.Context, hallID int64) (*dto.HallPlan, error)
}

// HallHandler exposes hall management and hall plan endpoints.
type HallHandler struct {
	halls hallService
	plans hallPlanReader
}

// NewHallHandler constructs a HallHandler.
func NewHallHandler(halls hallService, plans hallPlanReader) *HallHandler {
	return &HallHandler{halls: halls, plans: plans}
}

// List godoc
// @Summary List halls
// @Tags Halls
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /halls [get]
func (h *HallHandler) List(c *gin.Context) {
	halls, err := h.halls.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, halls, nil)
}

// Mine godoc
// @Summary List halls assigned to the calling faculty member
// @Tags Halls
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/halls [get]
func (h *HallHandler) Mine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	halls, err := h.halls.ListForFaculty(c.Request.Context(), claims.FacultyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, halls, nil)
}

// Get godoc
// @Summary Get hall detail
// @Tags Halls
// @Produce json
// @Param id path int true "Hall ID"
// @Success 200 {object} response.Envelope
// @Router /halls/{id} [get]
func (h *HallHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	hall, err := h.halls.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, hall, nil)
}

// Create godoc
// @Summary Create hall
// @Tags Halls
// @Accept json
// @Produce json
// @Param payload body dto.HallRequest true "Hall payload"
// @Success 201 {object} response.Envelope
// @Router /halls [post]
func (h *HallHandler) Create(c *gin.Context) {
	var req dto.HallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid hall payload"))
		return
	}
	hall, err := h.halls.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, hall)
}

// Update godoc
// @Summary Update hall
// @Tags Halls
// @Accept json
// @Produce json
// @Param id path int true "Hall ID"
// @Param payload body dto.HallRequest true "Hall payload"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /halls/{id} [put]
func (h *HallHandler) Update(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.HallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid hall payload"))
		return
	}
	hall, err := h.halls.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, hall, nil)
}

// Delete godoc
// @Summary Delete hall and its seat assignments
// @Tags Halls
// @Param id path int true "Hall ID"
// @Success 204
// @Router /halls/{id} [delete]
func (h *HallHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.halls.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Plan godoc
// @Summary Get the stored seating plan of a hall
// @Tags Halls
// @Produce json
// @Param id path int true "Hall ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /halls/{id}/plan [get]
func (h *HallHandler) Plan(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := authorizeHall(c, h.halls, id); err != nil {
		response.Error(c, err)
		return
	}
	plan, err := h.plans.HallPlan(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}

type hallGetter interface {
	Get(ctx context.Context, id int64) (*models.Hall, error)
}

func authorizeHall(c *gin.Context, halls hallGetter, hallID int64) error {
	claims := claimsFromContext(c)
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	if claims.IsAdmin() {
		return nil
	}
	hall, err := halls.Get(c.Request.Context(), hallID)
	if err != nil {
		return err
	}
	if !canViewHall(claims, hall) {
		return appErrors.Clone(appErrors.ErrForbidden, "hall is not assigned to you")
	}
	return nil
}
