package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-seating-api/internal/middleware"
	"github.com/noah-isme/exam-seating-api/internal/models"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.Claims(c)
}

func parseID(c *gin.Context, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.New(appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid "+param)
	}
	return id, nil
}

// canViewHall allows admins and the faculty members assigned to the hall.
func canViewHall(claims *models.JWTClaims, hall *models.Hall) bool {
	if claims == nil || hall == nil {
		return false
	}
	if claims.IsAdmin() {
		return true
	}
	return claims.Role == models.RoleFaculty && hall.HasFaculty(claims.FacultyID)
}
