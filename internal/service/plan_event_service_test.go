package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

type recordingPublisher struct {
	mu       sync.Mutex
	failures int
	subjects []string
	events   []models.PlanGeneratedEvent
	closed   bool
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failures > 0 {
		p.failures--
		return errors.New("nats: no servers available")
	}
	p.subjects = append(p.subjects, subject)
	p.events = append(p.events, event.(models.PlanGeneratedEvent))
	return nil
}

func (p *recordingPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *recordingPublisher) published() []models.PlanGeneratedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.PlanGeneratedEvent(nil), p.events...)
}

func TestPlanEventServiceDeliversWithRetry(t *testing.T) {
	pub := &recordingPublisher{failures: 1}
	svc := NewPlanEventService(pub, PlanEventConfig{Subject: "plans", MaxRetries: 2, RetryDelay: 10 * time.Millisecond}, nil)
	svc.Start(context.Background())

	require.NoError(t, svc.PublishGenerated(context.Background(), models.PlanGeneratedEvent{Scope: ScopeHall, HallIDs: []int64{1}, Placed: 10}))

	require.Eventually(t, func() bool { return len(pub.published()) == 1 }, 2*time.Second, 5*time.Millisecond)
	event := pub.published()[0]
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, 10, event.Placed)
	assert.Equal(t, []string{"plans"}, pub.subjects)

	svc.Stop()
	assert.True(t, pub.closed)
}

func TestPlanEventServiceRequiresStart(t *testing.T) {
	svc := NewPlanEventService(nil, PlanEventConfig{}, nil)
	assert.Error(t, svc.PublishGenerated(context.Background(), models.PlanGeneratedEvent{}))
}
