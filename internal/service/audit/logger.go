package audit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const writeTimeout = 5 * time.Second

// AuditLogger writes entries in the background so a slow database never
// delays a response.
type AuditLogger struct {
	service *Service
	wg      sync.WaitGroup
}

func NewAuditLogger(service *Service) *AuditLogger {
	return &AuditLogger{service: service}
}

func (l *AuditLogger) Log(ctx context.Context, e Entry) {
	if !l.service.Enabled() {
		return
	}
	ctx = context.WithoutCancel(ctx)

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, writeTimeout)
		defer cancel()
		if err := l.service.Log(ctx, e); err != nil {
			log.Error().Err(err).
				Str("action", e.Action).
				Str("entity_type", e.EntityType).
				Msg("Failed to write audit log")
		}
	}()
}

func (l *AuditLogger) LogSync(ctx context.Context, e Entry) error {
	return l.service.Log(ctx, e)
}

// Wait blocks until queued entries are written.
func (l *AuditLogger) Wait() {
	l.wg.Wait()
}
