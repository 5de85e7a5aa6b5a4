// Package optim searches configuration space for runs that extremize a
// recorded metric.
package optim

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/dpsim/internal/config"
	"github.com/san-kum/dpsim/internal/experiment"
)

// Axis is one searched parameter and the values it takes.
type Axis struct {
	Name   string
	Values []float64
}

// ParseAxis reads "name=min:max:n" into n evenly spaced values.
func ParseAxis(s string) (Axis, error) {
	name, rng, ok := strings.Cut(s, "=")
	if !ok {
		return Axis{}, fmt.Errorf("axis %q: want name=min:max:n", s)
	}
	parts := strings.Split(rng, ":")
	if len(parts) != 3 {
		return Axis{}, fmt.Errorf("axis %q: want name=min:max:n", s)
	}

	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return Axis{}, fmt.Errorf("axis %s min: %w", name, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Axis{}, fmt.Errorf("axis %s max: %w", name, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return Axis{}, fmt.Errorf("axis %s: point count %q must be a positive integer", name, parts[2])
	}

	return Axis{Name: name, Values: linspace(lo, hi, n)}, nil
}

func linspace(lo, hi float64, n int) []float64 {
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// Point is one evaluated grid point.
type Point struct {
	Params map[string]float64
	Value  float64
}

type GridSearch struct {
	axes []Axis

	// Maximize selects the largest metric value instead of the smallest.
	Maximize bool

	// Limit bounds concurrent runs; zero means no limit.
	Limit int

	Logger *slog.Logger
}

func NewGridSearch(axes ...Axis) *GridSearch {
	return &GridSearch{axes: axes}
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, a := range g.axes {
		n *= len(a.Values)
	}
	return n
}

// Search runs base once per grid point and returns every point plus the
// index of the best one. Points whose metric is missing or non-finite are
// kept with a NaN value and never win.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metric string) ([]Point, int, error) {
	if len(g.axes) == 0 {
		return nil, -1, fmt.Errorf("grid search: no axes")
	}

	var (
		jobs   []experiment.Job
		points []Point
	)
	var walk func(depth int, current map[string]float64) error
	walk = func(depth int, current map[string]float64) error {
		if depth == len(g.axes) {
			cfg := base.Clone()
			params := make(map[string]float64, len(current))
			for k, v := range current {
				if err := cfg.Set(k, v); err != nil {
					return err
				}
				params[k] = v
			}
			jobs = append(jobs, experiment.Job{Name: fmt.Sprintf("grid-%d", len(jobs)), Config: cfg})
			points = append(points, Point{Params: params})
			return nil
		}

		axis := g.axes[depth]
		for _, v := range axis.Values {
			current[axis.Name] = v
			if err := walk(depth+1, current); err != nil {
				return err
			}
		}
		delete(current, axis.Name)
		return nil
	}
	if err := walk(0, make(map[string]float64)); err != nil {
		return nil, -1, err
	}

	logger := g.Logger
	if logger == nil {
		logger = slog.Default()
	}
	results, err := experiment.Sweep(ctx, jobs, g.Limit, nil, logger)
	if err != nil {
		return nil, -1, err
	}

	best := -1
	for i, r := range results {
		v, ok := r.Meta.Metrics[metric]
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			points[i].Value = math.NaN()
			continue
		}
		points[i].Value = v
		if best < 0 || g.better(v, points[best].Value) {
			best = i
		}
	}
	if best < 0 {
		return points, -1, fmt.Errorf("grid search: metric %q not recorded by any run", metric)
	}
	return points, best, nil
}

func (g *GridSearch) better(v, cur float64) bool {
	if g.Maximize {
		return v > cur
	}
	return v < cur
}
