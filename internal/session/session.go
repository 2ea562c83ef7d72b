// Package session owns one running crawler game: its map, camera, input
// subscription and renderer. A Manager keeps at most one session alive.
package session

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"crawler/internal/grid"
	"crawler/internal/input"
	"crawler/internal/player"
	"crawler/internal/raycast"
	"crawler/internal/render"
	"crawler/internal/settings"
)

var (
	ErrSpawnBlocked = errors.New("session: spawn cell is a wall")
	ErrNoSettings   = errors.New("session: settings are required")
	ErrNoInput      = errors.New("session: input dispatcher is required")
)

// Options configures new sessions.
type Options struct {
	Width, Height int
	// Seed drives map generation. Zero picks a time-based seed.
	Seed int64
	// Layout, when set, replaces generation with a fixed map (see grid.Parse).
	Layout []string

	Settings *settings.Settings
	Input    *input.Dispatcher
	Caster   raycast.FanCaster
	Logger   *log.Logger
}

// Stats summarises a session for overlays.
type Stats struct {
	ID      uint64
	Ticks   uint64
	Frames  uint64
	Elapsed time.Duration
	Walls   int
	Paused  bool
}

var nextID atomic.Uint64

// Session is one game. Update and Draw are called from the host's frame
// callback; input arrives on whatever goroutine the dispatcher is driven from.
type Session struct {
	id       uint64
	grid     *grid.Map
	settings *settings.Settings
	renderer *render.Renderer
	logger   *log.Logger

	keys   input.State
	detach func()

	mu      sync.Mutex
	camera  player.Camera
	paused  bool
	closed  bool
	ticks   uint64
	frames  uint64
	elapsed time.Duration
}

// New builds the map, places the camera at its center and starts listening
// for input.
func New(opts Options) (*Session, error) {
	if opts.Settings == nil {
		return nil, ErrNoSettings
	}
	if opts.Input == nil {
		return nil, ErrNoInput
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	m, seed, err := buildMap(opts)
	if err != nil {
		return nil, err
	}
	w, h := m.Size()
	cam := player.Spawn(w, h)
	if cx, cy := cam.Cell(); m.IsWall(cx, cy) {
		return nil, fmt.Errorf("%w: (%d, %d)", ErrSpawnBlocked, cx, cy)
	}

	s := &Session{
		id:       nextID.Add(1),
		grid:     m,
		settings: opts.Settings,
		renderer: render.NewRenderer(opts.Caster),
		logger:   logger,
		camera:   cam,
	}
	s.detach = opts.Input.Attach(s.keys.Set)
	logger.Printf("session %d: %dx%d map, seed %d, %d pillars", s.id, w, h, seed, m.Interior())
	return s, nil
}

func buildMap(opts Options) (*grid.Map, int64, error) {
	if len(opts.Layout) > 0 {
		m, err := grid.Parse(opts.Layout...)
		if err != nil {
			return nil, 0, fmt.Errorf("session: parsing layout: %w", err)
		}
		return m, 0, nil
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	m, err := grid.Generate(opts.Width, opts.Height, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, 0, fmt.Errorf("session: generating map: %w", err)
	}
	return m, seed, nil
}

// ID identifies the session in logs.
func (s *Session) ID() uint64 { return s.id }

// Map returns the session's grid.
func (s *Session) Map() *grid.Map { return s.grid }

// Camera returns the current pose.
func (s *Session) Camera() player.Camera {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera
}

// Keys returns the commands currently held for this session.
func (s *Session) Keys() input.Keys { return s.keys.Snapshot() }

// Update runs one simulation tick unless the session is paused or torn down.
// dt is accumulated for Stats; movement is a fixed step per tick.
func (s *Session) Update(dt time.Duration) {
	keys := s.keys.Snapshot()
	turn := s.settings.Snapshot().TurnStep()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.paused {
		return
	}
	s.camera.Tick(keys, s.grid, turn)
	s.ticks++
	s.elapsed += dt
}

// Draw renders one frame onto surface. Paused or torn-down sessions leave the
// surface untouched.
func (s *Session) Draw(surface render.Surface) error {
	s.mu.Lock()
	if s.closed || s.paused {
		s.mu.Unlock()
		return nil
	}
	cam := s.camera
	s.mu.Unlock()

	width, height := surface.Size()
	strips, err := s.renderer.Frame(render.View{
		Map:     s.grid,
		X:       cam.X,
		Y:       cam.Y,
		Heading: cam.Angle,
		Config:  s.settings.Snapshot(),
	}, width, height)
	if err != nil {
		return fmt.Errorf("session %d: %w", s.id, err)
	}
	render.Paint(surface, strips)

	s.mu.Lock()
	s.frames++
	s.mu.Unlock()
	return nil
}

// SetPaused suspends or resumes both simulation and rendering.
func (s *Session) SetPaused(p bool) {
	s.mu.Lock()
	changed := s.paused != p
	s.paused = p
	s.mu.Unlock()
	if changed {
		s.logger.Printf("session %d: paused=%t", s.id, p)
	}
}

// TogglePause flips the paused state and returns the new value.
func (s *Session) TogglePause() bool {
	s.mu.Lock()
	s.paused = !s.paused
	p := s.paused
	s.mu.Unlock()
	s.logger.Printf("session %d: paused=%t", s.id, p)
	return p
}

// Paused reports whether the session is paused.
func (s *Session) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Closed reports whether Teardown has run.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Stats returns counters for overlays.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		ID:      s.id,
		Ticks:   s.ticks,
		Frames:  s.frames,
		Elapsed: s.elapsed,
		Walls:   s.grid.Interior(),
		Paused:  s.paused,
	}
}

// Teardown detaches the session from input before returning, so no key event
// dispatched afterwards can reach it. Later Update and Draw calls do nothing.
func (s *Session) Teardown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	ticks := s.ticks
	s.mu.Unlock()

	s.detach()
	s.keys.Reset()
	s.logger.Printf("session %d: torn down after %d ticks", s.id, ticks)
}
