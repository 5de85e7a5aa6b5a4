//go:build !gui

package gui

import (
	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/sim"
)

// Run reports ErrUnavailable; rebuild with -tags gui for the window.
func Run(batch *sim.Batch, sampler dynamo.Sampler, dt float64, substeps int, title string) error {
	return ErrUnavailable
}
