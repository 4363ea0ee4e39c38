package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SessionCleaner removes expired and revoked sessions.
type SessionCleaner interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// RunSessionCleanup cleans once immediately and then every interval until ctx
// is done.
func RunSessionCleanup(ctx context.Context, cleaner SessionCleaner, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("running initial session cleanup")
	cleanup(ctx, cleaner, log)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			log.Info("running scheduled session cleanup")
			cleanup(ctx, cleaner, log)
		}
	}
}

func cleanup(ctx context.Context, cleaner SessionCleaner, log *zap.Logger) {
	n, err := cleaner.DeleteExpired(ctx)
	if err != nil {
		log.Error("session cleanup failed", zap.Error(err))
		return
	}
	log.Info("session cleanup completed", zap.Int64("deleted", n))
}
