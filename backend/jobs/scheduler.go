// Package jobs runs periodic housekeeping on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Purger removes rows that have outlived their expiry and reports how many.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// PurgerFunc adapts a plain function to Purger.
type PurgerFunc func(ctx context.Context) (int64, error)

func (f PurgerFunc) PurgeExpired(ctx context.Context) (int64, error) { return f(ctx) }

type Housekeeper struct {
	logger  *slog.Logger
	timeout time.Duration
	tasks   map[string]Purger
}

func NewHousekeeper(logger *slog.Logger) *Housekeeper {
	return &Housekeeper{logger: logger, timeout: time.Minute, tasks: map[string]Purger{}}
}

// Register adds a named purge task.
func (h *Housekeeper) Register(name string, p Purger) {
	h.tasks[name] = p
}

// RunOnce executes every task, logging per-task results.
func (h *Housekeeper) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	for name, task := range h.tasks {
		n, err := task.PurgeExpired(ctx)
		if err != nil {
			h.logger.ErrorContext(ctx, "housekeeping task failed", "task", name, "error", err)
			continue
		}
		if n > 0 {
			h.logger.InfoContext(ctx, "housekeeping task purged rows", "task", name, "rows", n)
		}
	}
}

// Start schedules RunOnce on spec and starts the cron runner. Stop the
// returned runner on shutdown.
func (h *Housekeeper) Start(spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.Recover(cron.DiscardLogger)))

	if _, err := c.AddFunc(spec, func() { h.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid housekeeping schedule %q: %w", spec, err)
	}

	c.Start()
	h.logger.Info("housekeeping scheduler started", "schedule", spec, "tasks", len(h.tasks))
	return c, nil
}
