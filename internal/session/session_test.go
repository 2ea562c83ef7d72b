package session

import (
	"bytes"
	"errors"
	"image/color"
	"log"
	"math"
	"strings"
	"testing"
	"time"

	"crawler/internal/input"
	"crawler/internal/raycast"
	"crawler/internal/settings"
)

type countingSurface struct {
	w, h  int
	fills int
	rects int
}

func (s *countingSurface) Size() (int, int)                           { return s.w, s.h }
func (s *countingSurface) Fill(color.Color)                           { s.fills++ }
func (s *countingSurface) FillRect(_, _, _, _ float64, _ color.Color) { s.rects++ }

var openRoom = []string{
	"################",
	"#..............#",
	"#..............#",
	"#..............#",
	"#..............#",
	"#..............#",
	"#..............#",
	"#..............#",
	"#..............#",
	"#..............#",
	"#..............#",
	"#..............#",
	"#..............#",
	"#..............#",
	"#..............#",
	"################",
}

func newOptions(t *testing.T) Options {
	t.Helper()
	cfg, err := settings.New(settings.Default())
	if err != nil {
		t.Fatal(err)
	}
	return Options{
		Width:    16,
		Height:   16,
		Seed:     1,
		Settings: cfg,
		Input:    input.NewDispatcher(),
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	opts := newOptions(t)
	opts.Settings = nil
	if _, err := New(opts); !errors.Is(err, ErrNoSettings) {
		t.Fatalf("New without settings = %v", err)
	}
	opts = newOptions(t)
	opts.Input = nil
	if _, err := New(opts); !errors.Is(err, ErrNoInput) {
		t.Fatalf("New without input = %v", err)
	}
}

func TestNewRejectsBlockedSpawn(t *testing.T) {
	opts := newOptions(t)
	opts.Layout = []string{
		"#####",
		"#...#",
		"#.#.#",
		"#...#",
		"#####",
	}
	if _, err := New(opts); !errors.Is(err, ErrSpawnBlocked) {
		t.Fatalf("New = %v, want ErrSpawnBlocked", err)
	}
}

func TestNewSpawnsAtCenter(t *testing.T) {
	s, err := New(newOptions(t))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Teardown()
	cam := s.Camera()
	if cam.X != 8 || cam.Y != 8 || cam.Angle != 0 {
		t.Fatalf("spawn = %+v, want (8, 8, 0)", cam)
	}
}

func TestUpdateMovesOnInput(t *testing.T) {
	opts := newOptions(t)
	opts.Layout = openRoom
	s, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Teardown()

	opts.Input.Dispatch(input.Forward, true)
	s.Update(16 * time.Millisecond)
	s.Update(16 * time.Millisecond)
	opts.Input.Dispatch(input.Forward, false)
	s.Update(16 * time.Millisecond)

	cam := s.Camera()
	if math.Abs(cam.X-8.2) > 1e-9 {
		t.Fatalf("X = %v after two forward ticks, want 8.2", cam.X)
	}
	st := s.Stats()
	if st.Ticks != 3 || st.Elapsed != 48*time.Millisecond {
		t.Fatalf("stats = %+v", st)
	}
}

func TestUpdateReadsLiveSensitivity(t *testing.T) {
	opts := newOptions(t)
	s, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Teardown()

	opts.Input.Dispatch(input.TurnRight, true)
	s.Update(0)
	if got := s.Camera().Angle; math.Abs(got-0.1) > 1e-12 {
		t.Fatalf("angle = %v, want 0.1", got)
	}
	if err := opts.Settings.SetSensitivity(10); err != nil {
		t.Fatal(err)
	}
	s.Update(0)
	if got := s.Camera().Angle; math.Abs(got-0.3) > 1e-12 {
		t.Fatalf("angle = %v, want 0.3 after sensitivity change", got)
	}
}

func TestPauseSuspendsUpdateAndDraw(t *testing.T) {
	opts := newOptions(t)
	s, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Teardown()

	surface := &countingSurface{w: 320, h: 200}
	if err := s.Draw(surface); err != nil {
		t.Fatal(err)
	}
	if surface.fills != 1 || surface.rects != settings.DefaultRays {
		t.Fatalf("draw calls = %d fills, %d rects", surface.fills, surface.rects)
	}

	if !s.TogglePause() {
		t.Fatal("TogglePause should report paused")
	}
	opts.Input.Dispatch(input.TurnLeft, true)
	before := s.Camera()
	for i := 0; i < 10; i++ {
		s.Update(time.Millisecond)
		if err := s.Draw(surface); err != nil {
			t.Fatal(err)
		}
	}
	if s.Camera() != before {
		t.Fatal("camera moved while paused")
	}
	if surface.fills != 1 {
		t.Fatal("paused session painted")
	}

	s.SetPaused(false)
	s.Update(time.Millisecond)
	if s.Camera() == before {
		t.Fatal("camera did not turn after resume")
	}
}

func TestTeardownDetachesInput(t *testing.T) {
	opts := newOptions(t)
	s, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Input.Attached() != 1 {
		t.Fatalf("Attached() = %d, want 1", opts.Input.Attached())
	}
	s.Teardown()
	s.Teardown()
	if opts.Input.Attached() != 0 {
		t.Fatalf("Attached() = %d after teardown", opts.Input.Attached())
	}
	opts.Input.Dispatch(input.Forward, true)
	if s.Keys().Any() {
		t.Fatal("torn-down session received input")
	}
	before := s.Camera()
	s.Update(time.Millisecond)
	if s.Camera() != before || !s.Closed() {
		t.Fatal("torn-down session still updates")
	}
	surface := &countingSurface{w: 10, h: 10}
	if err := s.Draw(surface); err != nil || surface.fills != 0 {
		t.Fatal("torn-down session painted")
	}
}

func TestDrawWithPool(t *testing.T) {
	opts := newOptions(t)
	pool := raycast.NewPool(4)
	defer pool.Close()
	opts.Caster = pool
	s, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Teardown()
	surface := &countingSurface{w: 640, h: 400}
	if err := s.Draw(surface); err != nil {
		t.Fatal(err)
	}
	if surface.rects != settings.DefaultRays {
		t.Fatalf("rects = %d", surface.rects)
	}
}

func TestLoggerReceivesLifecycle(t *testing.T) {
	var buf bytes.Buffer
	opts := newOptions(t)
	opts.Logger = log.New(&buf, "", 0)
	s, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	s.TogglePause()
	s.Teardown()
	out := buf.String()
	for _, want := range []string{"16x16 map", "paused=true", "torn down"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}

func TestManagerKeepsOneLiveSession(t *testing.T) {
	opts := newOptions(t)
	m := NewManager(opts)
	first, err := m.Start()
	if err != nil {
		t.Fatal(err)
	}
	second, err := m.Start()
	if err != nil {
		t.Fatal(err)
	}
	if !first.Closed() {
		t.Fatal("first session still live after second Start")
	}
	if m.Current() != second || first.ID() == second.ID() {
		t.Fatal("Current() is not the newest session")
	}
	if opts.Input.Attached() != 1 {
		t.Fatalf("Attached() = %d, want 1", opts.Input.Attached())
	}

	// Input meant for the new session must not leak into the old one.
	opts.Input.Dispatch(input.Forward, true)
	if first.Keys().Any() || !second.Keys().Forward {
		t.Fatal("input routed to the wrong session")
	}

	m.Stop()
	if m.Current() != nil || !second.Closed() || opts.Input.Attached() != 0 {
		t.Fatal("Stop left a live session")
	}
	m.Stop()
}

func TestManagerStartFailureLeavesNothingLive(t *testing.T) {
	opts := newOptions(t)
	m := NewManager(opts)
	if _, err := m.Start(); err != nil {
		t.Fatal(err)
	}
	bad := opts
	bad.Width = 2
	m = &Manager{opts: bad, current: m.Current()}
	if _, err := m.Start(); err == nil {
		t.Fatal("Start with invalid size succeeded")
	}
	if m.Current() != nil || opts.Input.Attached() != 0 {
		t.Fatal("failed Start left a session attached")
	}
}

func TestManagerReseedIsDeterministic(t *testing.T) {
	m := NewManager(newOptions(t))
	m.Reseed(99)
	a, _ := m.Start()
	b, _ := m.Start()
	if a.Map().String() != b.Map().String() {
		t.Fatal("same seed produced different maps")
	}
	m.Stop()
}
