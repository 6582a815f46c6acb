package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/pos-frontend/internal/events"
	"github.com/spec-kit/pos-frontend/internal/observability"
)

// AuditService records session transitions in the log and metrics.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewAuditService creates the service. metrics may be nil.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to session events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	events.SubscribeAll(a.dispatcher, a.handle)
}

func (a *AuditService) handle(_ context.Context, event events.Event) error {
	a.metrics.RecordSessionEvent(string(event.Type), event.Reason)

	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event", string(event.Type)),
		zap.Time("at", event.Timestamp),
	}
	if event.SubjectID != "" {
		fields = append(fields, zap.String("subject_id", event.SubjectID), zap.String("role", event.Role))
	}
	if event.Reason != "" {
		fields = append(fields, zap.String("reason", event.Reason))
	}

	switch event.Type {
	case events.EventSessionLoginRejected, events.EventSessionRestoreRejected:
		a.logger.Warn("session event", fields...)
	default:
		a.logger.Info("session event", fields...)
	}
	return nil
}
