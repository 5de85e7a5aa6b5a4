//go:build gui

package gui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/sim"
)

var (
	colBg      = rl.NewColor(10, 10, 10, 255)
	colText    = rl.NewColor(140, 140, 140, 255)
	colTextDim = rl.NewColor(60, 60, 60, 255)
	colSelect  = rl.NewColor(255, 255, 255, 255)

	// Pendulum 0 is teal with a white trail; the rest cycle through palette.
	palette      = []rl.Color{rl.NewColor(0, 128, 128, 255), rl.NewColor(32, 178, 170, 255), rl.NewColor(64, 224, 208, 255), rl.NewColor(175, 238, 238, 255)}
	trailPalette = []rl.Color{rl.White, rl.NewColor(32, 178, 170, 255), rl.NewColor(64, 224, 208, 255), rl.NewColor(175, 238, 238, 255)}
)

var keymap = []struct {
	key    int32
	action Action
}{
	{rl.KeySpace, ActionToggle},
	{rl.KeyR, ActionReset},
	{rl.KeyC, ActionClear},
	{rl.KeyTab, ActionNextParam},
	{rl.KeyUp, ActionIncrease},
	{rl.KeyK, ActionIncrease},
	{rl.KeyDown, ActionDecrease},
	{rl.KeyJ, ActionDecrease},
	{rl.KeyLeft, ActionLeft},
	{rl.KeyH, ActionLeft},
	{rl.KeyRight, ActionRight},
	{rl.KeyL, ActionRight},
}

// Run opens the window and blocks until it is closed or q is pressed.
func Run(batch *sim.Batch, sampler dynamo.Sampler, dt float64, substeps int, title string) error {
	rl.InitWindow(screenWidth, screenHeight, title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)

	a := NewApp(batch, sampler, dt, substeps, title)
	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeyQ) || rl.IsKeyPressed(rl.KeyEscape) {
			break
		}
		for _, k := range keymap {
			if rl.IsKeyPressed(k.key) {
				a.Apply(k.action)
			}
		}
		a.Tick()
		a.draw()
	}
	return nil
}

func (a *App) draw() {
	rl.BeginDrawing()
	rl.ClearBackground(colBg)

	s := a.Scene()
	for _, seg := range s.Trails {
		c := trailPalette[seg.Owner%len(trailPalette)]
		rl.DrawLineV(vec(seg.From), vec(seg.To), rl.ColorAlpha(c, seg.Alpha))
	}
	for _, seg := range s.Arms {
		rl.DrawLineEx(vec(seg.From), vec(seg.To), 3, palette[seg.Owner%len(palette)])
	}
	for _, b := range s.Bobs {
		rl.DrawCircleV(vec(b.Center), b.Radius, palette[b.Owner%len(palette)])
	}

	a.drawHUD()
	rl.EndDrawing()
}

func (a *App) drawHUD() {
	rl.DrawText(a.title, 30, 30, 24, colSelect)

	status, col := a.Status(), colSelect
	if status == "PAUSED" {
		col = colTextDim
	}
	rl.DrawText(status, screenWidth-180, 30, 16, col)

	for i, line := range a.HUD() {
		rl.DrawText(line, screenWidth-260, int32(80+i*20), 16, colText)
	}

	if pts := telemetry(a.batch.Energy().Total(), 30, 600, 400, 60); pts != nil {
		strip := make([]rl.Vector2, len(pts))
		for i, p := range pts {
			strip[i] = vec(p)
		}
		rl.DrawLineStrip(strip, colText)
	}

	rl.DrawText("[SPACE] PAUSE  [R] RESET  [C] CLEAR  [TAB/UP/DOWN] TUNE  [LEFT/RIGHT] ANCHOR  [Q] QUIT", 30, 690, 14, colTextDim)
}

func vec(p Point) rl.Vector2 {
	return rl.NewVector2(p.X, p.Y)
}
