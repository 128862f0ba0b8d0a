package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/pkg/config"
	"github.com/noah-isme/clinic-scheduler-api/pkg/jobs"
)

// HistoryEventType is the type tag of ledger events.
const HistoryEventType = "schedule.history.appended"

type eventProducer interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

// EventService forwards ledger entries to the broker on a background queue.
type EventService struct {
	producer eventProducer
	queue    *jobs.Queue
	metrics  *MetricsService
	logger   *zap.Logger
	timeout  time.Duration
}

// NewEventService wires a producer behind a retrying worker queue. A nil producer disables publishing.
func NewEventService(producer eventProducer, cfg config.EventsConfig, metrics *MetricsService, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &EventService{producer: producer, metrics: metrics, logger: logger, timeout: 10 * time.Second}
	if producer == nil {
		return svc
	}
	svc.queue = jobs.NewQueue("ledger-events", svc.deliver, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		Logger:     logger,
	})
	return svc
}

// Enabled reports whether events are published.
func (s *EventService) Enabled() bool {
	return s != nil && s.queue != nil
}

// Start launches the delivery workers.
func (s *EventService) Start(ctx context.Context) {
	if !s.Enabled() {
		return
	}
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *EventService) Stop() {
	if !s.Enabled() {
		return
	}
	s.queue.Stop()
}

// PublishHistory schedules delivery of one ledger entry. Failures are logged, never returned,
// since the in-memory ledger stays the source of truth.
func (s *EventService) PublishHistory(entry models.ScheduleHistory) {
	if !s.Enabled() {
		return
	}
	event := models.HistoryEvent{
		EventID:    entry.ID,
		Type:       HistoryEventType,
		Entry:      entry,
		OccurredAt: entry.ChangedAt,
	}
	job := jobs.Job{ID: entry.ID, Type: HistoryEventType, Key: entry.ScheduleID, Payload: event}
	if err := s.queue.Enqueue(job); err != nil {
		s.metrics.RecordEventPublish(err)
		s.logger.Warn("history event dropped", zap.String("entry_id", entry.ID), zap.Error(err))
	}
}

func (s *EventService) deliver(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(models.HistoryEvent)
	if !ok {
		return fmt.Errorf("unexpected payload %T", job.Payload)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	err := s.producer.Publish(ctx, job.Key, event)
	s.metrics.RecordEventPublish(err)
	return err
}
