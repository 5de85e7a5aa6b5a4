// Package export renders pendulum traces and diagnostics to image formats.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/ring"
)

// TraceToSVG draws a tip trace as line segments whose opacity fades from
// the oldest point to the newest. The trace is scaled to fit width x height
// with the y axis pointing up.
func TraceToSVG(trace []dynamo.Vec2, width, height int, strokeColor string) string {
	if len(trace) < 2 {
		return ""
	}

	minX, maxX := trace[0].X, trace[0].X
	minY, maxY := trace[0].Y, trace[0].Y
	for _, p := range trace {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	project := func(p dynamo.Vec2) (float64, float64) {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)
		return x, y
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="none" stroke="%s" stroke-width="1.5" stroke-linecap="round">
`, width, height, width, height, strokeColor)

	n := len(trace)
	x0, y0 := project(trace[0])
	for i := 1; i < n; i++ {
		x1, y1 := project(trace[i])
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke-opacity="%.3f"/>
`, x0, y0, x1, y1, ring.FadeWeight(i, n))
		x0, y0 = x1, y1
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}
