package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/pkg/events"
	"github.com/noah-isme/exam-seating-api/pkg/jobs"
)

const planGeneratedJob = "plan.generated"

// PlanEventConfig configures asynchronous event delivery.
type PlanEventConfig struct {
	Subject    string
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// PlanEventService publishes plan events from a background queue so broker
// outages never delay or fail a generation run.
type PlanEventService struct {
	publisher events.Publisher
	subject   string
	queue     *jobs.Queue
	logger    *zap.Logger
}

// NewPlanEventService constructs the service. A nil publisher discards events.
func NewPlanEventService(publisher events.Publisher, cfg PlanEventConfig, logger *zap.Logger) *PlanEventService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Subject == "" {
		cfg.Subject = "seating.plan.generated"
	}
	svc := &PlanEventService{publisher: publisher, subject: cfg.Subject, logger: logger}
	svc.queue = jobs.NewQueue("plan-events", svc.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return svc
}

// Start launches the delivery workers.
func (s *PlanEventService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop waits for the workers and closes the publisher.
func (s *PlanEventService) Stop() {
	s.queue.Stop()
	if err := s.publisher.Close(); err != nil {
		s.logger.Warn("close event publisher", zap.Error(err))
	}
}

// PublishGenerated queues the event for delivery.
func (s *PlanEventService) PublishGenerated(_ context.Context, event models.PlanGeneratedEvent) error {
	job := jobs.NewJob(planGeneratedJob, event)
	if event.ID == "" {
		event.ID = job.ID
		job.Payload = event
	}
	if err := s.queue.Enqueue(job); err != nil {
		return fmt.Errorf("enqueue plan event: %w", err)
	}
	return nil
}

// Stats exposes delivery counters.
func (s *PlanEventService) Stats() jobs.Stats {
	return s.queue.Stats()
}

func (s *PlanEventService) handle(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(models.PlanGeneratedEvent)
	if !ok {
		s.logger.Error("unexpected plan event payload", zap.String("job_id", job.ID))
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.publisher.Publish(ctx, s.subject, event); err != nil {
		return err
	}
	s.logger.Info("plan event published", zap.String("event_id", event.ID), zap.String("scope", event.Scope))
	return nil
}
