package worker

import (
	"context"

	"github.com/spec-kit/pos-frontend/internal/service"
)

// SessionRestorer restores the terminal session from durable storage.
type SessionRestorer interface {
	Restore(ctx context.Context)
}

// StartAuditWorker registers session audit handlers.
func StartAuditWorker(auditService *service.AuditService) {
	if auditService == nil {
		return
	}
	auditService.RegisterHandlers()
}

// StartSessionRestore schedules the one-time session restore without blocking
// the caller. The returned channel closes when it finishes.
func StartSessionRestore(ctx context.Context, restorer SessionRestorer) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		restorer.Restore(ctx)
	}()
	return done
}
