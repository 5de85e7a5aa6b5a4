package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes an energy history.
type Summary struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	// Band is (Max-Min)/|Mean|, the relative width of the drift band.
	Band float64
}

// Summarize computes the statistics of series; an empty series gives the
// zero Summary.
func Summarize(series []float64) Summary {
	if len(series) == 0 {
		return Summary{}
	}

	s := Summary{
		Mean: stat.Mean(series, nil),
		Min:  floats.Min(series),
		Max:  floats.Max(series),
	}
	if len(series) > 1 {
		s.StdDev = stat.StdDev(series, nil)
	}
	if s.Mean != 0 {
		s.Band = (s.Max - s.Min) / math.Abs(s.Mean)
	}
	return s
}
