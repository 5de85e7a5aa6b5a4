package gui

import (
	"math"

	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/physics"
	"github.com/san-kum/dpsim/internal/ring"
	"github.com/san-kum/dpsim/internal/sim"
)

const (
	screenWidth  = 1280
	screenHeight = 720

	// minBobRadius keeps light bobs visible when the view is zoomed out.
	minBobRadius = 2
)

// Point is a screen position in pixels, y down.
type Point struct {
	X, Y float32
}

// Segment is a line between two screen points. Arms are opaque; trail
// segments carry the fade weight of their newer end.
type Segment struct {
	From, To Point
	Alpha    float32
	Owner    int
}

type Bob struct {
	Center Point
	Radius float32
	Owner  int
}

// Scene is one frame of draw primitives, back to front.
type Scene struct {
	Trails []Segment
	Arms   []Segment
	Bobs   []Bob
}

// projection maps simulation coordinates (y up) onto the window (y down).
type projection struct {
	center dynamo.Vec2
	scale  float64
	cx, cy float64
}

// fit centres center in a w x h window and scales so a circle of radius
// reach fits inside it.
func fit(center dynamo.Vec2, reach float64, w, h int) projection {
	scale := 1.0
	if reach > 0 {
		scale = 0.95 * math.Min(float64(w), float64(h)) / (2 * reach)
	}
	return projection{center: center, scale: scale, cx: float64(w) / 2, cy: float64(h) / 2}
}

func (p projection) apply(v dynamo.Vec2) Point {
	return Point{
		X: float32(p.cx + (v.X-p.center.X)*p.scale),
		Y: float32(p.cy - (v.Y-p.center.Y)*p.scale),
	}
}

// extents is the simulation-space size covered by the window.
func (p projection) extents() dynamo.Vec2 {
	return dynamo.Vec2{X: 2 * p.cx / p.scale, Y: 2 * p.cy / p.scale}
}

func (p projection) bobRadius(mass float64) float32 {
	return float32(max(minBobRadius, math.Sqrt(mass)*p.scale))
}

// buildScene collects the primitives of every finite pendulum in batch.
func buildScene(batch *sim.Batch, proj projection) Scene {
	var s Scene
	for _, p := range batch.Pendulums() {
		if !p.IsValid() {
			continue
		}

		n := p.Trace.Len()
		var prev Point
		for i, pt := range p.Trace.All() {
			cur := proj.apply(pt)
			if i > 0 {
				s.Trails = append(s.Trails, Segment{
					From:  prev,
					To:    cur,
					Alpha: float32(ring.FadeWeight(i, n)),
					Owner: p.ID,
				})
			}
			prev = cur
		}

		bob1, bob2 := physics.Tips(p)
		origin, b1, b2 := proj.apply(p.Origin), proj.apply(bob1), proj.apply(bob2)
		s.Arms = append(s.Arms,
			Segment{From: origin, To: b1, Alpha: 1, Owner: p.ID},
			Segment{From: b1, To: b2, Alpha: 1, Owner: p.ID},
		)
		s.Bobs = append(s.Bobs,
			Bob{Center: b1, Radius: proj.bobRadius(p.M1), Owner: p.ID},
			Bob{Center: b2, Radius: proj.bobRadius(p.M2), Owner: p.ID},
		)
	}
	return s
}

// telemetry lays values out as a line strip inside the w x h box at (x, y),
// scaled between their minimum and maximum.
func telemetry(values []float64, x, y, w, h float32) []Point {
	if len(values) < 2 {
		return nil
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if math.IsNaN(lo) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return nil
	}
	if hi == lo {
		hi = lo + 1
	}

	points := make([]Point, len(values))
	for i, v := range values {
		norm := float32((v - lo) / (hi - lo))
		points[i] = Point{
			X: x + float32(i)/float32(len(values)-1)*w,
			Y: y + h - norm*h,
		}
	}
	return points
}
