package app

import (
	"context"
	"fmt"
	"time"

	pkgcron "github.com/daily-darshan/core/internal/pkg/cron"
	"go.uber.org/zap"
)

// registerCronJobs wires the maintenance passes. Both are idempotent, so a
// manual trigger racing the interval timer is harmless.
func (a *App) registerCronJobs() {
	cronLogger := a.logger.Named("CronService")
	cfg := a.cfg

	if !cfg.Cleanup.DisableSlotCleanup {
		a.sched.Register(pkgcron.Job{
			Name:        "cleanup_expired_slots",
			Description: "delete temple slot dates past the retention cutoff",
			Interval:    time.Duration(cfg.Cleanup.IntervalHours) * time.Hour,
			Fn: func(ctx context.Context) error {
				removed, err := a.temples.CleanupExpired(ctx)
				if err != nil {
					cronLogger.Warn("slot cleanup failed", zap.Error(err))
					return err
				}
				cronLogger.Info(fmt.Sprintf("slot cleanup done, removed %d date keys", removed))
				return nil
			},
		})
	}

	a.sched.Register(pkgcron.Job{
		Name:        "cleanup_stale_chunks",
		Description: "drop abandoned chunked-upload sessions",
		Interval:    time.Duration(cfg.Cleanup.ChunkTTLMinutes) * time.Minute,
		Fn: func(ctx context.Context) error {
			ttl := time.Duration(cfg.Cleanup.ChunkTTLMinutes) * time.Minute
			if reaped := a.chunks.ReapStale(ttl); reaped > 0 {
				cronLogger.Info(fmt.Sprintf("reaped %d stale upload sessions", reaped))
			}
			return nil
		},
	})
}
