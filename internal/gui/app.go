package gui

import (
	"errors"
	"fmt"

	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/sim"
)

var ErrUnavailable = errors.New("gui: built without the gui tag")

const (
	paramStep  = 1.05
	originStep = 10.0
)

var paramKeys = []string{"r1", "r2", "m1", "m2", "g"}

// Action is a key binding of the window, decoupled from raylib key codes.
type Action int

const (
	ActionNone Action = iota
	ActionToggle
	ActionReset
	ActionClear
	ActionNextParam
	ActionIncrease
	ActionDecrease
	ActionLeft
	ActionRight
)

// App drives a batch for the window and keeps the HUD state. It is used
// from the render loop goroutine only.
type App struct {
	batch    *sim.Batch
	sampler  dynamo.Sampler
	title    string
	dt       float64
	substeps int

	proj     projection
	snap     sim.Snapshot
	selected int

	// notice reports the outcome of the last parameter edit.
	notice string
}

func NewApp(batch *sim.Batch, sampler dynamo.Sampler, dt float64, substeps int, title string) *App {
	p := batch.Pendulum(0)
	return &App{
		batch:    batch,
		sampler:  sampler,
		title:    title,
		dt:       dt,
		substeps: substeps,
		proj:     fit(p.Origin, 1.05*(p.R1+p.R2), screenWidth, screenHeight),
		snap:     batch.Snapshot(),
	}
}

// Apply performs one key action.
func (a *App) Apply(act Action) {
	switch act {
	case ActionToggle:
		a.batch.Toggle()
	case ActionReset:
		a.batch.Reset(a.sampler)
		a.snap = a.batch.Snapshot()
	case ActionClear:
		a.batch.ClearTraces()
	case ActionNextParam:
		a.selected = (a.selected + 1) % len(paramKeys)
	case ActionIncrease:
		a.adjustParam(paramStep)
	case ActionDecrease:
		a.adjustParam(1 / paramStep)
	case ActionLeft:
		a.moveOrigin(-originStep)
	case ActionRight:
		a.moveOrigin(originStep)
	}
}

// Tick advances the batch by one frame unless it is paused.
func (a *App) Tick() {
	if snap := a.batch.Step(a.dt, a.substeps); snap.Advanced {
		a.snap = snap
	}
}

func (a *App) Scene() Scene {
	return buildScene(a.batch, a.proj)
}

func (a *App) adjustParam(factor float64) {
	key := paramKeys[a.selected]
	val, ok := a.batch.Param(key)
	if !ok {
		return
	}
	next := val * factor
	if val == 0 && factor > 1 {
		next = 0.1
	}
	applied, err := a.batch.SetParam(key, next)
	switch {
	case err != nil:
		a.notice = fmt.Sprintf("%s: %v", key, err)
	case applied != next:
		a.notice = fmt.Sprintf("%s = %.1f (limit)", key, applied)
	default:
		a.notice = fmt.Sprintf("%s = %.1f", key, applied)
	}
}

func (a *App) moveOrigin(dx float64) {
	o := a.batch.Pendulum(0).Origin
	o.X += dx
	a.batch.SetOrigin(o, a.proj.extents())
}

// Status is the run state shown in the top right corner.
func (a *App) Status() string {
	switch {
	case a.snap.Invalid > 0:
		return fmt.Sprintf("UNSTABLE (%d)", a.snap.Invalid)
	case !a.batch.Running():
		return "PAUSED"
	}
	return "RUNNING"
}

// HUD returns the text lines of the side panel.
func (a *App) HUD() []string {
	lines := []string{
		fmt.Sprintf("frame      %d", a.snap.Frame),
		fmt.Sprintf("pendulums  %d", a.batch.Len()),
		fmt.Sprintf("kinetic    %.2f", a.snap.Kinetic),
		fmt.Sprintf("potential  %.2f", a.snap.Potential),
		fmt.Sprintf("total      %.2f", a.snap.Total),
	}
	if a.snap.ChaosDefined {
		lines = append(lines, fmt.Sprintf("divergence %.4f", a.snap.Chaos))
	}
	lines = append(lines, "")
	for i, key := range paramKeys {
		val, _ := a.batch.Param(key)
		marker := "  "
		if i == a.selected {
			marker = "> "
		}
		lines = append(lines, fmt.Sprintf("%s%-3s %8.1f", marker, key, val))
	}
	if a.notice != "" {
		lines = append(lines, "", a.notice)
	}
	return lines
}
