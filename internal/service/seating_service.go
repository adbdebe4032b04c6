package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-seating-api/internal/dto"
	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/internal/seating"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
)

// Labels used when a seat has no live department.
const (
	ManualEntryLabel       = "Manual Entry"
	UnknownDepartmentLabel = "Unknown"
	MissingReferenceNotice = "Hall or departments not found"
)

type seatingHallReader interface {
	List(ctx context.Context) ([]models.Hall, error)
	FindByID(ctx context.Context, id int64) (*models.Hall, error)
}

type seatingDepartmentReader interface {
	List(ctx context.Context) ([]models.Department, error)
}

type seatAssignmentStore interface {
	ReplaceForHall(ctx context.Context, hallID int64, assignments []models.SeatAssignment) error
	ReplaceAll(ctx context.Context, assignments []models.SeatAssignment) error
	ListByHall(ctx context.Context, hallID int64) ([]models.SeatAssignment, error)
	ListAll(ctx context.Context) ([]models.SeatAssignment, error)
}

type planEventPublisher interface {
	PublishGenerated(ctx context.Context, event models.PlanGeneratedEvent) error
}

// SeatingServiceConfig tunes caching of plan views and the widest department
// range a generation run will enumerate.
type SeatingServiceConfig struct {
	CacheTTL     time.Duration
	MaxRangeSize int64
}

// SeatingService generates, stores and reads seating plans. Generation runs
// are serialised so two writers never interleave their replace transactions.
type SeatingService struct {
	halls       seatingHallReader
	departments seatingDepartmentReader
	assignments seatAssignmentStore
	cache       *CacheService
	metrics     *MetricsService
	events      planEventPublisher
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         SeatingServiceConfig

	mu  sync.Mutex
	now func() time.Time
}

// NewSeatingService constructs a SeatingService. cache, metrics and events may be nil.
func NewSeatingService(
	halls seatingHallReader,
	departments seatingDepartmentReader,
	assignments seatAssignmentStore,
	cache *CacheService,
	metrics *MetricsService,
	events planEventPublisher,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg SeatingServiceConfig,
) *SeatingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxRangeSize <= 0 {
		cfg.MaxRangeSize = seating.DefaultMaxRangeSize
	}
	return &SeatingService{
		halls:       halls,
		departments: departments,
		assignments: assignments,
		cache:       cache,
		metrics:     metrics,
		events:      events,
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// GenerateForHall fills one hall from every department range plus the manual
// entries and replaces the hall's stored plan.
func (s *SeatingService) GenerateForHall(ctx context.Context, hallID int64, req dto.GenerateHallRequest) (*dto.GenerationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation payload")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()

	hall, err := s.halls.FindByID(ctx, hallID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		s.metrics.RecordGeneration(ScopeHall, "error", 0, 0, time.Since(start))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load hall")
	}
	departments, err := s.departments.List(ctx)
	if err != nil {
		s.metrics.RecordGeneration(ScopeHall, "error", 0, 0, time.Since(start))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load departments")
	}
	if hall == nil || len(departments) == 0 {
		s.metrics.RecordGeneration(ScopeHall, "missing_reference", 0, 0, time.Since(start))
		return missingReferenceResult(), nil
	}

	if err := s.checkRanges(departments); err != nil {
		s.metrics.RecordGeneration(ScopeHall, "invalid_range", 0, 0, time.Since(start))
		return nil, err
	}

	outcome, err := seating.AllocateHall(*hall, departments, req.Skip, req.Manual)
	if err != nil {
		s.metrics.RecordGeneration(ScopeHall, "error", 0, 0, time.Since(start))
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "hall geometry is invalid")
	}

	generatedAt := s.now()
	stamp(outcome.Assignments, generatedAt)
	if err := s.assignments.ReplaceForHall(ctx, hall.ID, outcome.Assignments); err != nil {
		s.metrics.RecordGeneration(ScopeHall, "error", 0, 0, time.Since(start))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store seating plan")
	}

	s.cache.InvalidateSeating(ctx)
	s.metrics.RecordGeneration(ScopeHall, "success", outcome.Placed(), len(outcome.Unallocated), time.Since(start))
	s.publish(ctx, models.PlanGeneratedEvent{
		Scope:       ScopeHall,
		HallIDs:     []int64{hall.ID},
		Placed:      outcome.Placed(),
		Unallocated: len(outcome.Unallocated),
		GeneratedAt: generatedAt,
	})
	s.logger.Info("hall seating generated",
		zap.Int64("hall_id", hall.ID),
		zap.Int("capacity", outcome.Capacity),
		zap.Int("requested", outcome.Requested),
		zap.Int("placed", outcome.Placed()),
		zap.Int("unallocated", len(outcome.Unallocated)),
	)

	return &dto.GenerationResult{
		Success:     true,
		Unallocated: outcome.Unallocated,
		Warnings:    outcome.Warnings,
		Stats: &dto.GenerationStats{
			Capacity:    outcome.Capacity,
			Requested:   outcome.Requested,
			Placed:      outcome.Placed(),
			Unallocated: len(outcome.Unallocated),
		},
		GeneratedAt: &generatedAt,
	}, nil
}

// GenerateForAllHalls spreads every department over all halls and replaces
// the whole stored plan.
func (s *SeatingService) GenerateForAllHalls(ctx context.Context) (*dto.GenerationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()

	halls, err := s.halls.List(ctx)
	if err != nil {
		s.metrics.RecordGeneration(ScopeAll, "error", 0, 0, time.Since(start))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load halls")
	}
	departments, err := s.departments.List(ctx)
	if err != nil {
		s.metrics.RecordGeneration(ScopeAll, "error", 0, 0, time.Since(start))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load departments")
	}
	if len(halls) == 0 {
		s.metrics.RecordGeneration(ScopeAll, "missing_reference", 0, 0, time.Since(start))
		return missingReferenceResult(), nil
	}
	if err := s.checkRanges(departments); err != nil {
		s.metrics.RecordGeneration(ScopeAll, "invalid_range", 0, 0, time.Since(start))
		return nil, err
	}

	// With no departments the run still clears every stored seat.
	outcome, err := seating.AllocateAllHalls(halls, departments)
	if err != nil {
		s.metrics.RecordGeneration(ScopeAll, "error", 0, 0, time.Since(start))
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	generatedAt := s.now()
	stamp(outcome.Assignments, generatedAt)
	if err := s.assignments.ReplaceAll(ctx, outcome.Assignments); err != nil {
		s.metrics.RecordGeneration(ScopeAll, "error", 0, 0, time.Since(start))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store seating plan")
	}

	perHall := make([]dto.HallPlacement, 0, len(halls))
	hallIDs := make([]int64, 0, len(halls))
	for _, hall := range halls {
		perHall = append(perHall, dto.HallPlacement{
			HallID:   hall.ID,
			HallName: hall.Name,
			Capacity: hall.Capacity(),
			Placed:   outcome.PlacedByHall[hall.ID],
		})
		hallIDs = append(hallIDs, hall.ID)
	}
	placed := len(outcome.Assignments)

	s.cache.InvalidateSeating(ctx)
	s.metrics.RecordGeneration(ScopeAll, "success", placed, len(outcome.Unallocated), time.Since(start))
	s.publish(ctx, models.PlanGeneratedEvent{
		Scope:       ScopeAll,
		HallIDs:     hallIDs,
		Placed:      placed,
		Unallocated: len(outcome.Unallocated),
		GeneratedAt: generatedAt,
	})
	s.logger.Info("seating generated for all halls",
		zap.Int("halls", len(halls)),
		zap.Int("departments", len(departments)),
		zap.Int("placed", placed),
		zap.Int("unallocated", len(outcome.Unallocated)),
	)

	return &dto.GenerationResult{
		Success:     true,
		Unallocated: outcome.Unallocated,
		PerHall:     perHall,
		GeneratedAt: &generatedAt,
	}, nil
}

// checkRanges rejects stored departments whose range is wider than the
// configured limit, so a bad row cannot stall a generation run.
func (s *SeatingService) checkRanges(departments []models.Department) error {
	for _, dept := range departments {
		if err := seating.CheckRangeSize(dept.RollNumberStart, dept.RollNumberEnd, s.cfg.MaxRangeSize); err != nil {
			msg := fmt.Sprintf("department %s has an invalid roll number range", dept.Name)
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, msg)
		}
	}
	return nil
}

// HallPlan returns a hall's stored seats labelled with department names.
func (s *SeatingService) HallPlan(ctx context.Context, hallID int64) (*dto.HallPlan, error) {
	key := hallPlanKey(hallID)
	var cached dto.HallPlan
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	hall, err := s.loadHall(ctx, hallID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.assignments.ListByHall(ctx, hallID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load hall plan")
	}
	labels, err := s.departmentLabels(ctx)
	if err != nil {
		return nil, err
	}

	plan := &dto.HallPlan{
		Hall:     *hall,
		Seats:    make([]dto.SeatView, 0, len(assignments)),
		Capacity: hall.Capacity(),
		Occupied: len(assignments),
	}
	for _, a := range assignments {
		plan.Seats = append(plan.Seats, dto.SeatView{
			Row:               a.Row,
			Column:            a.Column,
			BenchPosition:     a.BenchPosition,
			StudentRollNumber: a.StudentRollNumber,
			DepartmentID:      a.DepartmentID,
			DepartmentName:    labels.name(a.DepartmentID),
		})
	}

	_ = s.cache.Set(ctx, key, plan, s.cfg.CacheTTL)
	return plan, nil
}

// ListAssignments returns every stored assignment.
func (s *SeatingService) ListAssignments(ctx context.Context) ([]models.SeatAssignment, error) {
	assignments, err := s.assignments.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// Consolidated summarises stored seats per hall and department. A nil hallID
// covers every hall.
func (s *SeatingService) Consolidated(ctx context.Context, hallID *int64) ([]dto.ConsolidatedRow, error) {
	key := consolidatedKey(hallID)
	var cached []dto.ConsolidatedRow
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	halls := map[int64]models.Hall{}
	var (
		assignments []models.SeatAssignment
		err         error
	)
	if hallID != nil {
		hall, err := s.loadHall(ctx, *hallID)
		if err != nil {
			return nil, err
		}
		halls[hall.ID] = *hall
		assignments, err = s.assignments.ListByHall(ctx, hall.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load hall plan")
		}
	} else {
		list, err := s.halls.List(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load halls")
		}
		for _, h := range list {
			halls[h.ID] = h
		}
		assignments, err = s.assignments.ListAll(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
		}
	}
	labels, err := s.departmentLabels(ctx)
	if err != nil {
		return nil, err
	}

	rows := consolidate(assignments, halls, labels)
	_ = s.cache.Set(ctx, key, rows, s.cfg.CacheTTL)
	return rows, nil
}

func (s *SeatingService) loadHall(ctx context.Context, hallID int64) (*models.Hall, error) {
	hall, err := s.halls.FindByID(ctx, hallID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "hall not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load hall")
	}
	return hall, nil
}

func (s *SeatingService) departmentLabels(ctx context.Context) (departmentLabels, error) {
	departments, err := s.departments.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load departments")
	}
	labels := make(departmentLabels, len(departments))
	for _, d := range departments {
		labels[d.ID] = d.Name
	}
	return labels, nil
}

func (s *SeatingService) publish(ctx context.Context, event models.PlanGeneratedEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishGenerated(ctx, event); err != nil {
		s.logger.Warn("plan event not queued", zap.String("scope", event.Scope), zap.Error(err))
	}
}

func missingReferenceResult() *dto.GenerationResult {
	return &dto.GenerationResult{
		Success:     false,
		Unallocated: []string{},
		Warnings:    []string{MissingReferenceNotice},
	}
}

func stamp(assignments []models.SeatAssignment, at time.Time) {
	for i := range assignments {
		assignments[i].GeneratedAt = at
	}
}

type departmentLabels map[int64]string

func (l departmentLabels) name(id int64) string {
	if name, ok := l[id]; ok {
		return name
	}
	if id == seating.ManualDepartmentID {
		return ManualEntryLabel
	}
	return UnknownDepartmentLabel
}

type consolidatedKeyPair struct {
	hallID int64
	deptID int64
}

func consolidate(assignments []models.SeatAssignment, halls map[int64]models.Hall, labels departmentLabels) []dto.ConsolidatedRow {
	groups := map[consolidatedKeyPair][]string{}
	for _, a := range assignments {
		k := consolidatedKeyPair{hallID: a.HallID, deptID: a.DepartmentID}
		groups[k] = append(groups[k], a.StudentRollNumber)
	}

	keys := make([]consolidatedKeyPair, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].hallID != keys[j].hallID {
			return keys[i].hallID < keys[j].hallID
		}
		return keys[i].deptID < keys[j].deptID
	})

	rows := make([]dto.ConsolidatedRow, 0, len(keys))
	for _, k := range keys {
		rolls := groups[k]
		sort.SliceStable(rolls, func(i, j int) bool { return rollLess(rolls[i], rolls[j]) })

		hall, ok := halls[k.hallID]
		hallName := hall.Name
		if !ok {
			hallName = strconv.FormatInt(k.hallID, 10)
		}
		rows = append(rows, dto.ConsolidatedRow{
			HallID:         k.hallID,
			HallName:       hallName,
			Floor:          FloorOf(hall),
			DepartmentID:   k.deptID,
			DepartmentName: labels.name(k.deptID),
			FromRoll:       rolls[0],
			ToRoll:         rolls[len(rolls)-1],
			Count:          len(rolls),
		})
	}
	return rows
}

// rollLess orders numeric roll numbers by value and everything else lexically.
func rollLess(a, b string) bool {
	x, errA := strconv.ParseInt(a, 10, 64)
	y, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		return x < y
	}
	return a < b
}

// FloorOf returns the hall's floor, deriving it from the hall name when unset.
func FloorOf(hall models.Hall) string {
	if hall.Floor != "" {
		return hall.Floor
	}
	name := strings.ToLower(hall.Name)
	switch {
	case strings.Contains(name, "second"):
		return "SECOND FLOOR"
	case strings.Contains(name, "third"):
		return "THIRD FLOOR"
	case strings.Contains(name, "first"):
		return "FIRST FLOOR"
	default:
		return "GROUND FLOOR"
	}
}
