package export

import (
	"bytes"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/dpsim/internal/dynamo"
)

func TestTraceToSVG(t *testing.T) {
	trace := []dynamo.Vec2{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}, {X: 3, Y: 1}}

	svg := TraceToSVG(trace, 200, 100, "#00ffaa")

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("expected a complete svg document")
	}
	if got := strings.Count(svg, "<line "); got != 3 {
		t.Errorf("expected 3 segments, got %d", got)
	}
	if !strings.Contains(svg, `stroke="#00ffaa"`) {
		t.Error("stroke colour missing")
	}
	if !strings.Contains(svg, `stroke-opacity="0.250"`) || !strings.Contains(svg, `stroke-opacity="0.750"`) {
		t.Errorf("expected fading segments, got:\n%s", svg)
	}
}

func TestTraceToSVGTooShort(t *testing.T) {
	if TraceToSVG(nil, 10, 10, "#fff") != "" {
		t.Error("expected empty output for no points")
	}
	if TraceToSVG([]dynamo.Vec2{{X: 1}}, 10, 10, "#fff") != "" {
		t.Error("expected empty output for one point")
	}
}

func TestWritePlotPNG(t *testing.T) {
	xs := make([]float64, 100)
	ys := make([]float64, 100)
	for i := range xs {
		xs[i] = float64(i) * 0.1
		ys[i] = math.Sin(xs[i])
	}
	ys[50] = math.NaN()

	var buf bytes.Buffer
	opts := DefaultPlotOptions()
	opts.WidthIn, opts.HeightIn, opts.DPI = 4, 3, 50
	if err := WritePlotPNG(&buf, opts, Series{Name: "sin", X: xs, Y: ys}); err != nil {
		t.Fatalf("plot failed: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("output is not a png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 150 {
		t.Errorf("expected 200x150 image, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestWritePlotPNGErrors(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePlotPNG(&buf, DefaultPlotOptions()); err == nil {
		t.Error("expected error without series")
	}
	nan := []float64{math.NaN()}
	if err := WritePlotPNG(&buf, DefaultPlotOptions(), Series{X: nan, Y: nan}); err == nil {
		t.Error("expected error for a series without finite points")
	}
}
