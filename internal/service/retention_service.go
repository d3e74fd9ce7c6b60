package service

import (
	"context"
	"log/slog"
	"time"

	"taskdeck/internal/pkg/metrics"
)

// RetentionService periodically turns old soft-deletes into permanent
// ones. A zero or negative window disables the sweep entirely, so
// archived tasks are kept forever by default configuration choice.
type RetentionService struct {
	tasks  *TaskService
	window time.Duration
	logger *slog.Logger
}

func NewRetentionService(tasks *TaskService, window time.Duration, logger *slog.Logger) *RetentionService {
	return &RetentionService{tasks: tasks, window: window, logger: logger}
}

// Enabled reports whether a retention window is configured.
func (s *RetentionService) Enabled() bool { return s.window > 0 }

// Sweep purges every task soft-deleted longer ago than the window.
func (s *RetentionService) Sweep(ctx context.Context) {
	if !s.Enabled() {
		return
	}
	cutoff := time.Now().Add(-s.window)
	purged, err := s.tasks.PurgeDeletedBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("retention sweep failed", slog.String("error", err.Error()))
		return
	}
	if purged > 0 {
		metrics.TasksPurgedTotal.Add(float64(purged))
		s.logger.Info("retention sweep done", slog.Int("purged", purged))
	}
}
