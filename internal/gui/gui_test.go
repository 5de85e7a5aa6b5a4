package gui

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/physics"
	"github.com/san-kum/dpsim/internal/ring"
	"github.com/san-kum/dpsim/internal/sim"
)

func newTestApp(t *testing.T, size int) *App {
	t.Helper()
	cfg := sim.DefaultConfig()
	cfg.Size = size
	cfg.TraceCapacity = 50
	b, err := sim.New(cfg)
	if err != nil {
		t.Fatalf("sim.New: %v", err)
	}
	return NewApp(b, dynamo.NewSampler(3), 1.0/60, 10, "test")
}

func TestProjection(t *testing.T) {
	proj := fit(dynamo.Vec2{X: 0, Y: 200}, 100, 200, 100)

	if got := proj.apply(dynamo.Vec2{X: 0, Y: 200}); got != (Point{X: 100, Y: 50}) {
		t.Errorf("centre projects to %+v", got)
	}
	above := proj.apply(dynamo.Vec2{X: 0, Y: 250})
	if above.Y >= 50 {
		t.Errorf("y up in simulation must be y down on screen, got %v", above.Y)
	}
	ext := proj.extents()
	if math.Abs(ext.X/ext.Y-2) > 1e-9 {
		t.Errorf("extents should keep the window aspect, got %+v", ext)
	}
}

func TestSceneArmsAndBobs(t *testing.T) {
	a := newTestApp(t, 3)
	s := a.Scene()

	if len(s.Arms) != 6 || len(s.Bobs) != 6 {
		t.Fatalf("want two arms and two bobs per pendulum, got %d arms %d bobs", len(s.Arms), len(s.Bobs))
	}

	p := a.batch.Pendulum(0)
	bob1, bob2 := physics.Tips(p)
	if s.Arms[0].From != a.proj.apply(p.Origin) || s.Arms[0].To != a.proj.apply(bob1) {
		t.Errorf("inner arm %+v", s.Arms[0])
	}
	if s.Arms[1].To != a.proj.apply(bob2) {
		t.Errorf("outer arm %+v", s.Arms[1])
	}
	if s.Bobs[0].Radius <= s.Bobs[1].Radius {
		t.Errorf("heavier inner bob (m1=%v) should be larger: %v vs %v", p.M1, s.Bobs[0].Radius, s.Bobs[1].Radius)
	}
	want := float32(math.Sqrt(p.M1) * a.proj.scale)
	if math.Abs(float64(s.Bobs[0].Radius-want)) > 1e-4 {
		t.Errorf("bob radius %v, want sqrt(m1) scaled = %v", s.Bobs[0].Radius, want)
	}
	for i, b := range s.Bobs {
		if b.Owner != i/2 {
			t.Errorf("bob %d owned by %d", i, b.Owner)
		}
	}
}

func TestSceneTrailFades(t *testing.T) {
	a := newTestApp(t, 1)
	for range 20 {
		a.Tick()
	}

	n := a.batch.Pendulum(0).Trace.Len()
	s := a.Scene()
	if len(s.Trails) != n-1 {
		t.Fatalf("want %d trail segments for %d points, got %d", n-1, n, len(s.Trails))
	}
	for i, seg := range s.Trails {
		want := float32(ring.FadeWeight(i+1, n))
		if seg.Alpha != want {
			t.Errorf("segment %d alpha %v, want %v", i, seg.Alpha, want)
		}
		if i > 0 && seg.Alpha <= s.Trails[i-1].Alpha {
			t.Errorf("alpha must grow towards the newest point at %d", i)
		}
	}
}

func TestSceneSkipsInvalidPendulums(t *testing.T) {
	a := newTestApp(t, 2)
	a.batch.Pendulum(1).A1 = math.NaN()

	s := a.Scene()
	for _, b := range s.Bobs {
		if b.Owner == 1 {
			t.Fatal("non-finite pendulum drawn")
		}
	}
	if len(s.Bobs) != 2 {
		t.Errorf("want the finite pendulum's two bobs, got %d", len(s.Bobs))
	}
}

func TestTelemetry(t *testing.T) {
	if telemetry([]float64{1}, 0, 0, 10, 10) != nil {
		t.Error("a single value has no line")
	}
	if telemetry([]float64{1, math.NaN(), 2}, 0, 0, 10, 10) != nil {
		t.Error("non-finite values must not be plotted")
	}

	pts := telemetry([]float64{0, 5, 10}, 10, 100, 40, 20)
	want := []Point{{X: 10, Y: 120}, {X: 30, Y: 110}, {X: 50, Y: 100}}
	for i := range want {
		if pts[i] != want[i] {
			t.Errorf("point %d = %+v, want %+v", i, pts[i], want[i])
		}
	}

	flat := telemetry([]float64{3, 3}, 0, 0, 10, 10)
	if flat[0].Y != 10 || flat[1].Y != 10 {
		t.Errorf("flat series should sit on the baseline, got %+v", flat)
	}
}

func TestAppActions(t *testing.T) {
	a := newTestApp(t, 1)

	a.Tick()
	if a.snap.Frame != 1 {
		t.Fatalf("frame = %d after one tick", a.snap.Frame)
	}

	a.Apply(ActionToggle)
	a.Tick()
	if a.snap.Frame != 1 || a.Status() != "PAUSED" {
		t.Errorf("paused batch advanced: frame %d, status %s", a.snap.Frame, a.Status())
	}
	a.Apply(ActionToggle)
	if a.Status() != "RUNNING" {
		t.Errorf("status %s after resume", a.Status())
	}

	a.Apply(ActionIncrease)
	if r1, _ := a.batch.Param("r1"); math.Abs(r1-250*paramStep) > 1e-9 {
		t.Errorf("r1 = %v after increase", r1)
	}
	a.Apply(ActionNextParam)
	for range 50 {
		a.Apply(ActionDecrease)
	}
	if a.notice != "r2 = 100.0 (limit)" {
		t.Errorf("notice = %q", a.notice)
	}
	if hud := strings.Join(a.HUD(), "\n"); !strings.Contains(hud, "> r2") || !strings.Contains(hud, a.notice) {
		t.Errorf("HUD should mark r2 and show the notice:\n%s", hud)
	}

	before := a.batch.Pendulum(0).Origin.X
	a.Apply(ActionRight)
	if got := a.batch.Pendulum(0).Origin.X; got != before+originStep {
		t.Errorf("origin x = %v, want %v", got, before+originStep)
	}
	for range 1000 {
		a.Apply(ActionLeft)
	}
	if got := a.batch.Pendulum(0).Origin.X; got < -a.proj.extents().X/2 {
		t.Errorf("origin x = %v left the window", got)
	}

	a.Tick()
	a.Apply(ActionClear)
	if a.batch.Pendulum(0).Trace.Len() != 0 {
		t.Error("clear should empty traces")
	}

	a.Apply(ActionReset)
	if a.batch.Frame() != 0 || a.snap.Frame != 0 {
		t.Errorf("reset should rewind to frame 0, got %d", a.batch.Frame())
	}
}

func TestUnstableStatus(t *testing.T) {
	a := newTestApp(t, 1)
	a.batch.Pendulum(0).A1 = math.NaN()
	a.Tick()
	if a.Status() != "UNSTABLE (1)" {
		t.Errorf("status %q", a.Status())
	}
}
