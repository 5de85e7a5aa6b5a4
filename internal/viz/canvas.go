package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/dpsim/internal/dynamo"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// maxLineSteps bounds DrawLine so a runaway pendulum cannot stall a frame.
const maxLineSteps = 1 << 16

// Canvas is a Braille pixel grid. Each cell also remembers the id of the
// pendulum that last drew into it so cells can be coloured per instance.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Owner         [][]int
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		Owner:  make([][]int, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Owner[i] = make([]int, w)
	}
	c.Clear()
	return c
}

// SubWidth and SubHeight are the canvas size in dots.
func (c *Canvas) SubWidth() int  { return c.Width * 2 }
func (c *Canvas) SubHeight() int { return c.Height * 4 }

// Set lights the dot at (x, y) on behalf of pendulum id.
func (c *Canvas) Set(x, y, id int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	c.Owner[row][col] = id
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.Owner[i][j] = -1
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1, id int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for range maxLineSteps {
		c.Set(x0, y0, id)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// String returns the grid without colour.
func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render colours every non-empty cell with palette[owner % len(palette)].
func (c *Canvas) Render(palette []lipgloss.Style) string {
	if len(palette) == 0 {
		return c.String()
	}

	var b strings.Builder
	for i, row := range c.Grid {
		for j, r := range row {
			owner := c.Owner[i][j]
			if r == blank || owner < 0 {
				b.WriteRune(r)
				continue
			}
			b.WriteString(palette[owner%len(palette)].Render(string(r)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Viewport maps simulation coordinates (y up) onto canvas dots (y down).
type Viewport struct {
	Center dynamo.Vec2
	// Scale is dots per simulation unit.
	Scale  float64
	cx, cy float64
}

// FitViewport centres center on c and scales so that a circle of radius
// reach fits inside the canvas.
func FitViewport(c *Canvas, center dynamo.Vec2, reach float64) Viewport {
	w, h := float64(c.SubWidth()), float64(c.SubHeight())
	scale := 1.0
	if reach > 0 {
		scale = 0.95 * math.Min(w, h) / (2 * reach)
	}
	return Viewport{Center: center, Scale: scale, cx: w / 2, cy: h / 2}
}

func (v Viewport) Project(p dynamo.Vec2) (int, int) {
	x := v.cx + (p.X-v.Center.X)*v.Scale
	y := v.cy - (p.Y-v.Center.Y)*v.Scale
	return int(math.Round(x)), int(math.Round(y))
}

// Extents is the simulation-space size covered by the canvas.
func (v Viewport) Extents() dynamo.Vec2 {
	return dynamo.Vec2{X: 2 * v.cx / v.Scale, Y: 2 * v.cy / v.Scale}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
