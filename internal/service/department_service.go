package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-seating-api/internal/dto"
	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/internal/seating"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
)

type departmentRepository interface {
	List(ctx context.Context) ([]models.Department, error)
	FindByID(ctx context.Context, id int64) (*models.Department, error)
	ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)
	Create(ctx context.Context, department *models.Department) error
	Update(ctx context.Context, department *models.Department) error
	Delete(ctx context.Context, id int64) error
}

// DepartmentServiceConfig bounds accepted roll-number ranges.
type DepartmentServiceConfig struct {
	MaxRangeSize int64
}

// DepartmentService manages departments and guards their roll-number ranges.
type DepartmentService struct {
	repo      departmentRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       DepartmentServiceConfig
}

// NewDepartmentService constructs a DepartmentService.
func NewDepartmentService(repo departmentRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger, cfg DepartmentServiceConfig) *DepartmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxRangeSize <= 0 {
		cfg.MaxRangeSize = seating.DefaultMaxRangeSize
	}
	return &DepartmentService{repo: repo, cache: cache, validator: validate, logger: logger, cfg: cfg}
}

// List returns departments in storage order.
func (s *DepartmentService) List(ctx context.Context) ([]models.Department, error) {
	departments, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list departments")
	}
	return departments, nil
}

// Get returns a department by id.
func (s *DepartmentService) Get(ctx context.Context, id int64) (*models.Department, error) {
	department, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
	}
	return department, nil
}

// ValidateRange parses the bounds and returns the first department whose
// range overlaps them, or nil when the range is free. excludeID skips one
// department so an update does not conflict with itself.
func (s *DepartmentService) ValidateRange(ctx context.Context, start, end string, excludeID int64) (*models.Department, error) {
	lo, hi, err := seating.ParseRangeWithin(start, end, s.cfg.MaxRangeSize)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	existing, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load departments")
	}
	return seating.CheckOverlapExcluding(lo, hi, existing, excludeID), nil
}

// Create registers a department after checking its name and range.
func (s *DepartmentService) Create(ctx context.Context, req dto.DepartmentRequest) (*models.Department, error) {
	department, err := s.prepare(ctx, req, 0)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, department); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create department")
	}
	s.logger.Info("department created",
		zap.Int64("department_id", department.ID),
		zap.String("name", department.Name),
		zap.Int64("start", department.RollNumberStart),
		zap.Int64("end", department.RollNumberEnd),
	)
	return department, nil
}

// Update replaces a department's name and range. The new range must not
// overlap any other department.
func (s *DepartmentService) Update(ctx context.Context, id int64, req dto.DepartmentRequest) (*models.Department, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	department, err := s.prepare(ctx, req, id)
	if err != nil {
		return nil, err
	}
	department.ID = id
	if err := s.repo.Update(ctx, department); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update department")
	}
	s.cache.InvalidateSeating(ctx)
	return department, nil
}

// Delete removes a department. Stored seats keep their department id and are
// labelled Unknown until the next generation run.
func (s *DepartmentService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete department")
	}
	s.cache.InvalidateSeating(ctx)
	s.logger.Info("department deleted", zap.Int64("department_id", id))
	return nil
}

func (s *DepartmentService) prepare(ctx context.Context, req dto.DepartmentRequest, excludeID int64) (*models.Department, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid department payload")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department name is required")
	}

	lo, hi, err := seating.ParseRangeWithin(string(req.RollNumberStart), string(req.RollNumberEnd), s.cfg.MaxRangeSize)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	taken, err := s.repo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check department name")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "department name already exists")
	}

	existing, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load departments")
	}
	if conflict := seating.CheckOverlapExcluding(lo, hi, existing, excludeID); conflict != nil {
		return nil, appErrors.Clone(appErrors.ErrRangeOverlap, OverlapMessage(conflict))
	}

	return &models.Department{Name: name, RollNumberStart: lo, RollNumberEnd: hi}, nil
}

// OverlapMessage names the department whose range is already taken.
func OverlapMessage(conflict *models.Department) string {
	return fmt.Sprintf("Roll number range overlaps with department %s (%d-%d)", conflict.Name, conflict.RollNumberStart, conflict.RollNumberEnd)
}
