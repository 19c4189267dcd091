package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/barberhq/booking-api/internal/repository"
	"github.com/barberhq/booking-api/pkg/logger"
)

// CompletionSweeper moves confirmed appointments whose date has passed
// into the completed status so they stop occupying slots in reports.
// Slot availability only counts pending and confirmed rows, so the sweep
// is bookkeeping, not a correctness requirement.
type CompletionSweeper struct {
	repo          repository.AppointmentRepository
	sweepInterval time.Duration
	logger        *logger.Logger
}

func NewCompletionSweeper(repo repository.AppointmentRepository, sweepInterval time.Duration, log *logger.Logger) *CompletionSweeper {
	if log == nil {
		log = logger.NewLogger(nil)
	}
	return &CompletionSweeper{
		repo:          repo,
		sweepInterval: sweepInterval,
		logger:        log,
	}
}

func (w *CompletionSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(w.sweepInterval)
	defer ticker.Stop()

	w.logger.Info("Starting completion sweeper")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Shutting down completion sweeper")
			return
		case <-ticker.C:
			if err := w.sweep(ctx); err != nil {
				w.logger.Error(err, "Failed to sweep completed appointments")
			}
		}
	}
}

func (w *CompletionSweeper) sweep(ctx context.Context) error {
	cutoff := time.Now().Truncate(24 * time.Hour)

	rows, err := w.repo.MarkCompletedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to mark completed appointments: %w", err)
	}

	if rows > 0 {
		w.logger.Info("Marked appointments completed", "count", rows, "cutoff", cutoff.Format("2006-01-02"))
	}
	return nil
}
