package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/physics"
	"github.com/san-kum/dpsim/internal/ring"
	"github.com/san-kum/dpsim/internal/sim"
)

const (
	width  = 80
	height = 24

	chaosCapacity = 600
	graphWidth    = 34

	// fadeCutoff hides the oldest part of each trace; Braille dots have no
	// opacity.
	fadeCutoff = 0.35

	paramStep  = 1.05
	originStep = 10.0
)

var paramKeys = []string{"r1", "r2", "m1", "m2", "g"}

type TickMsg time.Time

// Model is the live view of a batch. It only reads the batch through its
// exported handles and drives it once per tick.
type Model struct {
	batch    *sim.Batch
	sampler  dynamo.Sampler
	title    string
	dt       float64
	substeps int

	canvas *Canvas
	view   Viewport
	theme  Theme

	snap     sim.Snapshot
	chaos    *ring.Buffer[float64]
	selected int
	showHelp bool

	// notice reports the outcome of the last parameter edit.
	notice string
}

// NewModel shows batch, stepping it by dt per tick. sampler feeds resets.
func NewModel(batch *sim.Batch, sampler dynamo.Sampler, dt float64, substeps int, title string) Model {
	canvas := NewCanvas(width, height)
	p := batch.Pendulum(0)

	return Model{
		batch:    batch,
		sampler:  sampler,
		title:    title,
		dt:       dt,
		substeps: substeps,
		canvas:   canvas,
		view:     FitViewport(canvas, p.Origin, 1.05*(p.R1+p.R2)),
		theme:    Themes[0],
		snap:     batch.Snapshot(),
		chaos:    ring.New[float64](chaosCapacity),
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.batch.Toggle()
		case "r":
			m.batch.Reset(m.sampler)
			m.chaos.Clear()
			m.snap = m.batch.Snapshot()
		case "c":
			m.batch.ClearTraces()
		case "tab":
			m.selected = (m.selected + 1) % len(paramKeys)
		case "up", "k":
			m.adjustParam(paramStep)
		case "down", "j":
			m.adjustParam(1 / paramStep)
		case "left", "h":
			m.moveOrigin(-originStep)
		case "right", "l":
			m.moveOrigin(originStep)
		case "t":
			m.theme = m.theme.Next()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if snap := m.batch.Step(m.dt, m.substeps); snap.Advanced {
			m.snap = snap
			if snap.ChaosDefined {
				m.chaos.Push(snap.Chaos)
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) adjustParam(factor float64) {
	key := paramKeys[m.selected]
	val, ok := m.batch.Param(key)
	if !ok {
		return
	}
	// Gravity may be zero; step it additively from there.
	next := val * factor
	if val == 0 && factor > 1 {
		next = 0.1
	}
	applied, err := m.batch.SetParam(key, next)
	switch {
	case err != nil:
		m.notice = fmt.Sprintf("%s: %v", key, err)
	case applied != next:
		m.notice = fmt.Sprintf("%s = %.1f (limit)", key, applied)
	default:
		m.notice = fmt.Sprintf("%s = %.1f", key, applied)
	}
}

func (m *Model) moveOrigin(dx float64) {
	o := m.batch.Pendulum(0).Origin
	o.X += dx
	m.batch.SetOrigin(o, m.view.Extents())
}

// draw renders every finite pendulum: trace, arms and bobs.
func (m *Model) draw() {
	m.canvas.Clear()

	for _, p := range m.batch.Pendulums() {
		if !p.IsValid() {
			continue
		}

		n := p.Trace.Len()
		for i, pt := range p.Trace.All() {
			if ring.FadeWeight(i, n) < fadeCutoff {
				continue
			}
			x, y := m.view.Project(pt)
			m.canvas.Set(x, y, p.ID)
		}

		bob1, bob2 := physics.Tips(p)
		ox, oy := m.view.Project(p.Origin)
		x1, y1 := m.view.Project(bob1)
		x2, y2 := m.view.Project(bob2)
		m.canvas.DrawLine(ox, oy, x1, y1, p.ID)
		m.canvas.DrawLine(x1, y1, x2, y2, p.ID)
		m.drawBob(x1, y1, p.M1, p.ID)
		m.drawBob(x2, y2, p.M2, p.ID)
	}
}

// drawBob draws a filled dot whose radius grows with sqrt(mass).
func (m *Model) drawBob(x, y int, mass float64, id int) {
	r := max(1, int(math.Sqrt(mass)/4))
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				m.canvas.Set(x+dx, y+dy, id)
			}
		}
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.Render(m.theme.Styles()))

	var s strings.Builder
	s.WriteString(GradientText(strings.ToUpper(m.title), m.theme.Primary, m.theme.Accent) + "\n")
	s.WriteString(m.status() + "\n\n")

	if total := m.batch.Energy().Total(); len(total) > 1 {
		chart := asciigraph.Plot(total, asciigraph.Height(4), asciigraph.Width(graphWidth), asciigraph.Caption("Total energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	if m.chaos.Len() > 1 {
		chart := asciigraph.Plot(m.chaos.Slice(), asciigraph.Height(3), asciigraph.Width(graphWidth), asciigraph.Caption("Divergence"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString(metric("Frame", fmt.Sprintf("%d", m.snap.Frame)))
	s.WriteString(metric("Pendulums", fmt.Sprintf("%d", m.batch.Len())))
	s.WriteString(metric("Kinetic", fmt.Sprintf("%.2f", m.snap.Kinetic)))
	s.WriteString(metric("Potential", fmt.Sprintf("%.2f", m.snap.Potential)))
	s.WriteString(metric("Total", fmt.Sprintf("%.2f", m.snap.Total)))
	if m.snap.ChaosDefined {
		s.WriteString(metric("Divergence", fmt.Sprintf("%.4f", m.snap.Chaos)))
	}

	s.WriteString("\n" + Separator(30) + "\n")
	limits := m.batch.Config().Limits
	for i, key := range paramKeys {
		val, _ := m.batch.Param(key)
		lo, hi := paramRange(limits, key)
		bar := ProgressBar((val-lo)/(hi-lo), 10)
		line := fmt.Sprintf("%-3s %s %7.1f", key, bar, val)
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> ") + line + "\n")
		} else {
			s.WriteString("  " + line + "\n")
		}
	}
	s.WriteString(helpStyle.Render("SP:Pause R:Reset C:Clear Q:Quit\nTab ↑↓:Tune ←→:Anchor T:Theme ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

func (m Model) status() string {
	state := m.runState()
	if m.notice != "" {
		state += "  " + Subtle.Render(m.notice)
	}
	return state
}

func (m Model) runState() string {
	switch {
	case m.snap.Invalid > 0:
		return StatusUnstable.Render(fmt.Sprintf("UNSTABLE (%d)", m.snap.Invalid))
	case !m.batch.Running():
		return StatusPaused.Render("PAUSED")
	}
	return StatusRunning.Render("RUNNING")
}

func metric(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value) + "\n"
}

func paramRange(l physics.Limits, key string) (float64, float64) {
	switch key {
	case "r1", "r2":
		return l.MinLength, l.MaxLength
	case "m1", "m2":
		return l.MinMass, l.MaxMass
	}
	return l.MinGravity, l.MaxGravity
}

const helpOverlay = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Reset (random params)    ║
║  C        - Clear traces             ║
║  Tab      - Cycle parameters         ║
║  Up/K     - Increase parameter (+5%) ║
║  Down/J   - Decrease parameter (-5%) ║
║  Left/H   - Move anchor left         ║
║  Right/L  - Move anchor right        ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`
