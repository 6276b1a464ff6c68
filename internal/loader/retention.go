package loader

// retention.go runs the periodic purge of old uploads. Deleting a stored
// file cascades to its metadata and transformed records. The job logs
// failures and keeps running; it stops when its context is cancelled.

import (
	"context"
	"log/slog"
	"time"
)

// RetentionConfig holds the purge job settings.
type RetentionConfig struct {
	MaxAge        time.Duration // uploads older than this are purged (default: 30 days)
	CheckInterval time.Duration // how often to run (default: 24h)
}

func (c RetentionConfig) withDefaults() RetentionConfig {
	if c.MaxAge <= 0 {
		c.MaxAge = 30 * 24 * time.Hour
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = 24 * time.Hour
	}
	return c
}

// StartRetention purges uploads older than cfg.MaxAge immediately and then
// every cfg.CheckInterval until ctx is cancelled.
func (s *Service) StartRetention(ctx context.Context, cfg RetentionConfig) {
	cfg = cfg.withDefaults()
	slog.Info("retention job started",
		"max_age", cfg.MaxAge.String(),
		"check_interval", cfg.CheckInterval.String(),
	)

	s.runPurge(ctx, cfg, time.Now())

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("retention job stopped")
			return
		case now := <-ticker.C:
			s.runPurge(ctx, cfg, now)
		}
	}
}

// runPurge performs one purge cycle relative to now.
func (s *Service) runPurge(ctx context.Context, cfg RetentionConfig, now time.Time) {
	start := time.Now()
	cutoff := now.Add(-cfg.MaxAge)

	purged, err := s.store.Purge(ctx, cutoff)
	if err != nil {
		slog.Error("purge failed", "cutoff", cutoff, "error", err)
		return
	}
	slog.Info("purged old uploads",
		"files_purged", purged,
		"cutoff", cutoff,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
