package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-seating-api/internal/dto"
	"github.com/noah-isme/exam-seating-api/internal/models"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
)

type hallRepository interface {
	List(ctx context.Context) ([]models.Hall, error)
	ListByFaculty(ctx context.Context, facultyID int64) ([]models.Hall, error)
	FindByID(ctx context.Context, id int64) (*models.Hall, error)
	ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)
	Create(ctx context.Context, hall *models.Hall) error
	Update(ctx context.Context, hall *models.Hall) error
	Delete(ctx context.Context, id int64) error
}

type hallAssignmentCounter interface {
	CountByHall(ctx context.Context, hallID int64) (int, error)
}

// HallService manages examination halls.
type HallService struct {
	repo        hallRepository
	assignments hallAssignmentCounter
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewHallService constructs a HallService.
func NewHallService(repo hallRepository, assignments hallAssignmentCounter, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *HallService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HallService{repo: repo, assignments: assignments, cache: cache, validator: validate, logger: logger}
}

// List returns halls in storage order.
func (s *HallService) List(ctx context.Context) ([]models.Hall, error) {
	halls, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list halls")
	}
	return halls, nil
}

// ListForFaculty returns the halls a faculty member invigilates.
func (s *HallService) ListForFaculty(ctx context.Context, facultyID int64) ([]models.Hall, error) {
	if facultyID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "caller is not a faculty member")
	}
	halls, err := s.repo.ListByFaculty(ctx, facultyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assigned halls")
	}
	return halls, nil
}

// Get returns a hall by id.
func (s *HallService) Get(ctx context.Context, id int64) (*models.Hall, error) {
	hall, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "hall not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load hall")
	}
	return hall, nil
}

// Create registers a new hall.
func (s *HallService) Create(ctx context.Context, req dto.HallRequest) (*models.Hall, error) {
	hall, err := s.prepare(ctx, req, 0)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, hall); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create hall")
	}
	s.logger.Info("hall created", zap.Int64("hall_id", hall.ID), zap.String("name", hall.Name), zap.Int("capacity", hall.Capacity()))
	return hall, nil
}

// Update modifies a hall. Geometry cannot change while the hall holds a plan.
func (s *HallService) Update(ctx context.Context, id int64, req dto.HallRequest) (*models.Hall, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	hall, err := s.prepare(ctx, req, id)
	if err != nil {
		return nil, err
	}

	if geometryChanged(current, hall) {
		count, err := s.assignments.CountByHall(ctx, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check hall plan")
		}
		if count > 0 {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "hall geometry cannot change while seats are assigned; regenerate after clearing the plan")
		}
	}

	hall.ID = id
	hall.CreatedAt = current.CreatedAt
	if err := s.repo.Update(ctx, hall); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "hall not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update hall")
	}
	s.cache.InvalidateSeating(ctx)
	return hall, nil
}

// Delete removes a hall and its seat assignments.
func (s *HallService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "hall not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete hall")
	}
	s.cache.InvalidateSeating(ctx)
	s.logger.Info("hall deleted", zap.Int64("hall_id", id))
	return nil
}

func (s *HallService) prepare(ctx context.Context, req dto.HallRequest, excludeID int64) (*models.Hall, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid hall payload")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "hall name is required")
	}

	taken, err := s.repo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check hall name")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "hall name already exists")
	}

	return &models.Hall{
		Name:            name,
		Rows:            req.Rows,
		Columns:         req.Columns,
		SeatsPerBench:   req.SeatsPerBench,
		FacultyAssigned: uniqueIDs(req.FacultyAssigned),
		Floor:           strings.ToUpper(strings.TrimSpace(req.Floor)),
	}, nil
}

func geometryChanged(a, b *models.Hall) bool {
	return a.Rows != b.Rows || a.Columns != b.Columns || a.SeatsPerBench != b.SeatsPerBench
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
