package export

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Series is one named line of a plot.
type Series struct {
	Name string
	X, Y []float64
}

type PlotOptions struct {
	Title, XLabel, YLabel string
	WidthIn, HeightIn     float64
	DPI                   int
}

func DefaultPlotOptions() PlotOptions {
	return PlotOptions{WidthIn: 8, HeightIn: 5, DPI: 150}
}

// WritePlotPNG draws series as lines and writes the PNG to w. Non-finite
// points are dropped.
func WritePlotPNG(w io.Writer, opts PlotOptions, series ...Series) error {
	if len(series) == 0 {
		return fmt.Errorf("plot %q: no series", opts.Title)
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel
	p.Add(plotter.NewGrid())

	for i, s := range series {
		pts := finiteXYs(s.X, s.Y)
		if len(pts) == 0 {
			return fmt.Errorf("plot %q: series %q has no finite points", opts.Title, s.Name)
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = plotutil.Color(i)

		p.Add(line)
		if s.Name != "" {
			p.Legend.Add(s.Name, line)
		}
	}
	p.Legend.Top = true

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(opts.WidthIn)*vg.Inch, vg.Length(opts.HeightIn)*vg.Inch),
		vgimg.UseDPI(opts.DPI),
	)
	p.Draw(draw.New(c))

	png := vgimg.PngCanvas{Canvas: c}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

func finiteXYs(xs, ys []float64) plotter.XYs {
	n := min(len(xs), len(ys))
	pts := make(plotter.XYs, 0, n)
	for i := 0; i < n; i++ {
		if isFinite(xs[i]) && isFinite(ys[i]) {
			pts = append(pts, plotter.XY{X: xs[i], Y: ys[i]})
		}
	}
	return pts
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
