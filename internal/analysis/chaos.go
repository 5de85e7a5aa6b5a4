package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/physics"
)

// Divergence compares the inner-arm angle of the first and last pendulum and
// returns |a1_last - a1_first| / π. It never mutates its input.
func Divergence(ps []*physics.DoublePendulum) (float64, error) {
	if len(ps) < 2 {
		return 0, fmt.Errorf("divergence of %d pendulums: %w", len(ps), dynamo.ErrBatchTooSmall)
	}
	first, last := ps[0], ps[len(ps)-1]
	return math.Abs(last.A1-first.A1) / math.Pi, nil
}
