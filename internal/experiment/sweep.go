package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/dpsim/internal/config"
)

// Job is one named configuration of a sweep.
type Job struct {
	Name   string
	Config *config.Config
}

// Sweep runs every job on its own batch, at most limit at a time (no limit
// when limit <= 0). The first failure cancels the remaining jobs. Results
// are in job order.
func Sweep(ctx context.Context, jobs []Job, limit int, registry *Registry, logger *slog.Logger) ([]*Result, error) {
	if registry == nil {
		registry = NewRegistry()
	}

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	results := make([]*Result, len(jobs))
	for i, job := range jobs {
		g.Go(func() error {
			r, err := New(job.Name, job.Config, registry, logger).Run(ctx)
			if err != nil {
				return fmt.Errorf("job %s: %w", job.Name, err)
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
