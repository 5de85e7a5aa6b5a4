package analysis

import (
	"strings"

	"github.com/san-kum/dpsim/internal/physics"
)

// Point is one sample of a phase space view.
type Point struct {
	X, Y float64
}

// Arm selects which arm a phase view samples.
type Arm int

const (
	Inner Arm = iota
	Outer
)

func (a Arm) sample(p *physics.DoublePendulum) Point {
	if a == Outer {
		return Point{X: p.A2, Y: p.A2V}
	}
	return Point{X: p.A1, Y: p.A1V}
}

// GeneratePhasePortrait advances a copy of p for frames frames and records
// the (angle, angular velocity) trajectory of arm.
func GeneratePhasePortrait(p *physics.DoublePendulum, arm Arm, dt float64, substeps, frames int) []Point {
	x := p.Clone()
	x.Trace = nil

	points := make([]Point, 0, frames)
	for i := 0; i < frames; i++ {
		physics.Advance(x, dt, substeps)
		points = append(points, arm.sample(x))
	}
	return points
}

// GeneratePoincareSection advances a copy of p and records the outer arm's
// (angle, angular velocity) each time the inner arm crosses zero moving in
// the positive direction.
func GeneratePoincareSection(p *physics.DoublePendulum, dt float64, substeps, frames int) []Point {
	x := p.Clone()
	x.Trace = nil

	points := make([]Point, 0)
	prev := x.A1
	for i := 0; i < frames; i++ {
		physics.Advance(x, dt, substeps)
		if prev < 0 && x.A1 >= 0 {
			points = append(points, Outer.sample(x))
		}
		prev = x.A1
	}
	return points
}

// PointsToASCII scatters points over a width x height character grid with
// axes drawn where zero is in view.
func PointsToASCII(points []Point, width, height int) string {
	if len(points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	col := func(x float64) int { return int((x - minX) / rangeX * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-minY)/rangeY*float64(height-1)) }

	if c := col(0); minX <= 0 && c >= 0 && c < width {
		for r := range canvas {
			canvas[r][c] = '│'
		}
	}
	if r := row(0); minY <= 0 && r >= 0 && r < height {
		for c := range canvas[r] {
			canvas[r][c] = '─'
		}
	}

	for _, p := range points {
		r, c := row(p.Y), col(p.X)
		if r >= 0 && r < height && c >= 0 && c < width {
			canvas[r][c] = '•'
		}
	}

	var sb strings.Builder
	for _, r := range canvas {
		sb.WriteString(string(r))
		sb.WriteRune('\n')
	}
	return sb.String()
}
