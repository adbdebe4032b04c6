package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-seating-api/internal/dto"
	"github.com/noah-isme/exam-seating-api/internal/models"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
)

type hallServiceMock struct {
	halls         map[int64]*models.Hall
	updateErr     error
	lastFaculty   int64
	lastRequest   dto.HallRequest
	deleted       int64
	facultyCalled bool
}

func (m *hallServiceMock) List(ctx context.Context) ([]models.Hall, error) {
	out := make([]models.Hall, 0, len(m.halls))
	for _, h := range m.halls {
		out = append(out, *h)
	}
	return out, nil
}

func (m *hallServiceMock) ListForFaculty(ctx context.Context, facultyID int64) ([]models.Hall, error) {
	m.facultyCalled = true
	m.lastFaculty = facultyID
	out := []models.Hall{}
	for _, h := range m.halls {
		if h.HasFaculty(facultyID) {
			out = append(out, *h)
		}
	}
	return out, nil
}

func (m *hallServiceMock) Get(ctx context.Context, id int64) (*models.Hall, error) {
	if h, ok := m.halls[id]; ok {
		return h, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "hall not found")
}

func (m *hallServiceMock) Create(ctx context.Context, req dto.HallRequest) (*models.Hall, error) {
	m.lastRequest = req
	return &models.Hall{ID: 10, Name: req.Name, Rows: req.Rows, Columns: req.Columns, SeatsPerBench: req.SeatsPerBench}, nil
}

func (m *hallServiceMock) Update(ctx context.Context, id int64, req dto.HallRequest) (*models.Hall, error) {
	m.lastRequest = req
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return &models.Hall{ID: id, Name: req.Name}, nil
}

func (m *hallServiceMock) Delete(ctx context.Context, id int64) error {
	m.deleted = id
	return nil
}

type hallPlanMock struct {
	plan   *dto.HallPlan
	called bool
}

func (m *hallPlanMock) HallPlan(ctx context.Context, hallID int64) (*dto.HallPlan, error) {
	m.called = true
	return m.plan, nil
}

func newHallFixture() (*hallServiceMock, *hallPlanMock) {
	halls := &hallServiceMock{halls: map[int64]*models.Hall{
		1: {ID: 1, Name: "A101", Rows: 2, Columns: 2, SeatsPerBench: 2, FacultyAssigned: []int64{7}},
		2: {ID: 2, Name: "B202", Rows: 1, Columns: 1, SeatsPerBench: 1},
	}}
	plans := &hallPlanMock{plan: &dto.HallPlan{Hall: *halls.halls[1], Capacity: 8, Seats: []dto.SeatView{}}}
	return halls, plans
}

func TestHallHandlerCreate(t *testing.T) {
	halls, plans := newHallFixture()
	handler := NewHallHandler(halls, plans)

	payload := dto.HallRequest{Name: "C303", Rows: 5, Columns: 4, SeatsPerBench: 2, FacultyAssigned: []int64{3, 4}}
	c, w := newTestContext(http.MethodPost, "/halls", payload, adminClaims)
	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, []int64{3, 4}, halls.lastRequest.FacultyAssigned)
	var hall models.Hall
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &hall))
	assert.Equal(t, int64(10), hall.ID)
}

func TestHallHandlerUpdateGeometryLocked(t *testing.T) {
	halls, plans := newHallFixture()
	halls.updateErr = appErrors.Clone(appErrors.ErrPreconditionFailed, "hall has seat assignments")
	handler := NewHallHandler(halls, plans)

	c, w := newTestContext(http.MethodPut, "/halls/1", dto.HallRequest{Name: "A101", Rows: 3, Columns: 2, SeatsPerBench: 2}, adminClaims)
	withID(c, "1")
	handler.Update(c)

	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
}

func TestHallHandlerMine(t *testing.T) {
	halls, plans := newHallFixture()
	handler := NewHallHandler(halls, plans)

	faculty := &models.JWTClaims{UserID: "f-7", Role: models.RoleFaculty, FacultyID: 7}
	c, w := newTestContext(http.MethodGet, "/me/halls", nil, faculty)
	handler.Mine(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(7), halls.lastFaculty)
	var list []models.Hall
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "A101", list[0].Name)
}

func TestHallHandlerMineRequiresClaims(t *testing.T) {
	halls, plans := newHallFixture()
	handler := NewHallHandler(halls, plans)

	c, w := newTestContext(http.MethodGet, "/me/halls", nil, nil)
	handler.Mine(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, halls.facultyCalled)
}

func TestHallHandlerPlanAccess(t *testing.T) {
	tests := []struct {
		name   string
		claims *models.JWTClaims
		hallID string
		status int
	}{
		{name: "admin", claims: adminClaims, hallID: "2", status: http.StatusOK},
		{name: "assigned faculty", claims: &models.JWTClaims{Role: models.RoleFaculty, FacultyID: 7}, hallID: "1", status: http.StatusOK},
		{name: "other faculty", claims: &models.JWTClaims{Role: models.RoleFaculty, FacultyID: 8}, hallID: "1", status: http.StatusForbidden},
		{name: "faculty unassigned hall", claims: &models.JWTClaims{Role: models.RoleFaculty, FacultyID: 7}, hallID: "2", status: http.StatusForbidden},
		{name: "missing hall", claims: &models.JWTClaims{Role: models.RoleFaculty, FacultyID: 7}, hallID: "99", status: http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			halls, plans := newHallFixture()
			handler := NewHallHandler(halls, plans)

			c, w := newTestContext(http.MethodGet, "/halls/"+tc.hallID+"/plan", nil, tc.claims)
			withID(c, tc.hallID)
			handler.Plan(c)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.status == http.StatusOK, plans.called)
		})
	}
}

func TestHallHandlerDelete(t *testing.T) {
	halls, plans := newHallFixture()
	handler := NewHallHandler(halls, plans)

	c, _ := newTestContext(http.MethodDelete, "/halls/2", nil, adminClaims)
	withID(c, "2")
	handler.Delete(c)

	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.Equal(t, int64(2), halls.deleted)
}
