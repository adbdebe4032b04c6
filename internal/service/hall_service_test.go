package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-seating-api/internal/dto"
	"github.com/noah-isme/exam-seating-api/internal/models"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
)

type mockHallRepo struct {
	items  []models.Hall
	nextID int64
}

func (m *mockHallRepo) List(ctx context.Context) ([]models.Hall, error) {
	return append([]models.Hall(nil), m.items...), nil
}

func (m *mockHallRepo) ListByFaculty(ctx context.Context, facultyID int64) ([]models.Hall, error) {
	out := []models.Hall{}
	for _, h := range m.items {
		if h.HasFaculty(facultyID) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *mockHallRepo) FindByID(ctx context.Context, id int64) (*models.Hall, error) {
	for _, h := range m.items {
		if h.ID == id {
			cp := h
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockHallRepo) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	for _, h := range m.items {
		if h.Name == name && h.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockHallRepo) Create(ctx context.Context, hall *models.Hall) error {
	m.nextID++
	hall.ID = m.nextID
	m.items = append(m.items, *hall)
	return nil
}

func (m *mockHallRepo) Update(ctx context.Context, hall *models.Hall) error {
	for i := range m.items {
		if m.items[i].ID == hall.ID {
			m.items[i] = *hall
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockHallRepo) Delete(ctx context.Context, id int64) error {
	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type stubAssignmentCounter map[int64]int

func (s stubAssignmentCounter) CountByHall(ctx context.Context, hallID int64) (int, error) {
	return s[hallID], nil
}

func TestHallServiceCreate(t *testing.T) {
	repo := &mockHallRepo{}
	svc := NewHallService(repo, stubAssignmentCounter{}, nil, nil, nil)

	hall, err := svc.Create(context.Background(), dto.HallRequest{
		Name: "Second Floor Hall B", Rows: 5, Columns: 4, SeatsPerBench: 2, FacultyAssigned: []int64{7, 3, 7}, Floor: "second floor",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), hall.ID)
	assert.Equal(t, "SECOND FLOOR", hall.Floor)
	assert.Equal(t, []int64{3, 7}, []int64(hall.FacultyAssigned))
	assert.Equal(t, 40, hall.Capacity())
}

func TestHallServiceCreateValidatesGeometry(t *testing.T) {
	svc := NewHallService(&mockHallRepo{}, stubAssignmentCounter{}, nil, nil, nil)

	for _, req := range []dto.HallRequest{
		{Name: "A", Rows: 0, Columns: 4, SeatsPerBench: 2},
		{Name: "A", Rows: 4, Columns: 0, SeatsPerBench: 2},
		{Name: "A", Rows: 4, Columns: 4, SeatsPerBench: 0},
		{Name: "", Rows: 4, Columns: 4, SeatsPerBench: 2},
	} {
		_, err := svc.Create(context.Background(), req)
		assert.True(t, errors.Is(err, appErrors.ErrValidation), "%+v", req)
	}
}

func TestHallServiceUpdateGeometryLockedByPlan(t *testing.T) {
	repo := &mockHallRepo{items: []models.Hall{{ID: 1, Name: "Hall A", Rows: 5, Columns: 4, SeatsPerBench: 2}}, nextID: 1}
	svc := NewHallService(repo, stubAssignmentCounter{1: 12}, nil, nil, nil)

	_, err := svc.Update(context.Background(), 1, dto.HallRequest{Name: "Hall A", Rows: 6, Columns: 4, SeatsPerBench: 2})
	assert.True(t, errors.Is(err, appErrors.ErrPreconditionFailed))

	hall, err := svc.Update(context.Background(), 1, dto.HallRequest{Name: "Hall A", Rows: 5, Columns: 4, SeatsPerBench: 2, FacultyAssigned: []int64{9}})
	require.NoError(t, err)
	assert.True(t, hall.HasFaculty(9))
}

func TestHallServiceUpdateGeometryWithoutPlan(t *testing.T) {
	repo := &mockHallRepo{items: []models.Hall{{ID: 1, Name: "Hall A", Rows: 5, Columns: 4, SeatsPerBench: 2}}, nextID: 1}
	svc := NewHallService(repo, stubAssignmentCounter{}, nil, nil, nil)

	hall, err := svc.Update(context.Background(), 1, dto.HallRequest{Name: "Hall A", Rows: 6, Columns: 4, SeatsPerBench: 3})
	require.NoError(t, err)
	assert.Equal(t, 72, hall.Capacity())
}

func TestHallServiceListForFaculty(t *testing.T) {
	repo := &mockHallRepo{items: []models.Hall{
		{ID: 1, Name: "A", FacultyAssigned: []int64{4}},
		{ID: 2, Name: "B", FacultyAssigned: []int64{5}},
	}}
	svc := NewHallService(repo, stubAssignmentCounter{}, nil, nil, nil)

	halls, err := svc.ListForFaculty(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, halls, 1)
	assert.Equal(t, "B", halls[0].Name)

	_, err = svc.ListForFaculty(context.Background(), 0)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestHallServiceDeleteMissing(t *testing.T) {
	svc := NewHallService(&mockHallRepo{}, stubAssignmentCounter{}, nil, nil, nil)
	assert.True(t, errors.Is(svc.Delete(context.Background(), 3), appErrors.ErrNotFound))
}
