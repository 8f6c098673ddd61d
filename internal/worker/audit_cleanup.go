package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/ubs-console/pkg/logger"
)

// Cleaner deletes audit entries older than a cutoff. *audit.Service satisfies it.
type Cleaner interface {
	Cleanup(ctx context.Context, before time.Time) (int64, error)
}

type AuditCleanupWorker struct {
	cleaner         Cleaner
	retentionDays   int
	cleanupInterval time.Duration
	logger          *logger.Logger
	now             func() time.Time
}

func NewAuditCleanupWorker(cleaner Cleaner, retentionDays int, cleanupInterval time.Duration, l *logger.Logger) *AuditCleanupWorker {
	if l == nil {
		l = logger.Nop()
	}
	if cleanupInterval <= 0 {
		cleanupInterval = 24 * time.Hour
	}
	return &AuditCleanupWorker{
		cleaner:         cleaner,
		retentionDays:   retentionDays,
		cleanupInterval: cleanupInterval,
		logger:          l.With("audit_cleanup"),
		now:             time.Now,
	}
}

// Start runs a cleanup right away and then once per interval until ctx ends.
func (w *AuditCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cleanupInterval)
	defer ticker.Stop()

	w.run(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.run(ctx)
		}
	}
}

func (w *AuditCleanupWorker) run(ctx context.Context) {
	rows, err := w.Cleanup(ctx)
	if err != nil {
		w.logger.Error(err, "Audit cleanup failed")
		return
	}
	w.logger.Info("Audit cleanup finished", "deleted", rows, "retention_days", w.retentionDays)
}

// Cleanup removes entries older than the retention window. A window of zero
// days or less keeps everything.
func (w *AuditCleanupWorker) Cleanup(ctx context.Context) (int64, error) {
	if w.retentionDays <= 0 {
		return 0, nil
	}
	cutoff := w.now().AddDate(0, 0, -w.retentionDays)

	rows, err := w.cleaner.Cleanup(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup audit logs: %w", err)
	}
	return rows, nil
}
