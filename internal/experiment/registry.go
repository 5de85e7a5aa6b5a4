package experiment

import (
	"fmt"
	"slices"

	"github.com/san-kum/dpsim/internal/metrics"
)

// DefaultStabilityThreshold is the angular speed above which a frame counts
// as unstable.
const DefaultStabilityThreshold = 1e3

// Registry maps metric names used in configuration files to constructors.
type Registry struct {
	metrics map[string]func() metrics.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		metrics: make(map[string]func() metrics.Metric),
	}

	r.metrics["energy_drift"] = func() metrics.Metric { return metrics.NewEnergyDrift() }
	r.metrics["stability"] = func() metrics.Metric { return metrics.NewStability(DefaultStabilityThreshold) }

	return r
}

func (r *Registry) Register(name string, factory func() metrics.Metric) {
	r.metrics[name] = factory
}

func (r *Registry) GetMetric(name string) (metrics.Metric, error) {
	factory, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return factory(), nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
