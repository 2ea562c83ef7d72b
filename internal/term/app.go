package term

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"

	"crawler/internal/input"
	"crawler/internal/session"
	"crawler/internal/settings"
)

// DefaultTick is roughly one frame at 60 FPS.
const DefaultTick = 16 * time.Millisecond

var ErrNoScreen = errors.New("term: screen is required")

// Config wires the terminal loop to the game.
type Config struct {
	Screen   tcell.Screen
	Sessions *session.Manager
	Input    *input.Dispatcher
	Settings *settings.Settings
	Tick     time.Duration
	Logger   *log.Logger
}

// App drives sessions from terminal key events. Terminals only report key
// presses, so a pressed command is held for exactly one tick and released.
type App struct {
	cfg     Config
	surface *Surface
	logger  *log.Logger
	pressed []input.Command
}

// New returns an App over an initialised screen.
func New(cfg Config) (*App, error) {
	if cfg.Screen == nil {
		return nil, ErrNoScreen
	}
	if cfg.Sessions == nil || cfg.Input == nil || cfg.Settings == nil {
		return nil, errors.New("term: sessions, input and settings are required")
	}
	if cfg.Tick <= 0 {
		cfg.Tick = DefaultTick
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &App{cfg: cfg, surface: NewSurface(cfg.Screen), logger: logger}, nil
}

var movementKeys = map[tcell.Key]input.Command{
	tcell.KeyUp:    input.Forward,
	tcell.KeyDown:  input.Backward,
	tcell.KeyLeft:  input.TurnLeft,
	tcell.KeyRight: input.TurnRight,
}

var movementRunes = map[rune]input.Command{
	'w': input.Forward,
	's': input.Backward,
	'a': input.TurnLeft,
	'd': input.TurnRight,
}

// HandleKey applies one key event. It returns false when the player asked to
// quit.
func (a *App) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyRune:
		return a.handleRune(ev.Rune())
	}
	if cmd, ok := movementKeys[ev.Key()]; ok {
		a.press(cmd)
	}
	return true
}

func (a *App) handleRune(r rune) bool {
	if cmd, ok := movementRunes[r]; ok {
		a.press(cmd)
		return true
	}
	cfg := a.cfg.Settings
	switch r {
	case 'q':
		return false
	case 'p':
		if s := a.cfg.Sessions.Current(); s != nil {
			s.TogglePause()
		}
	case 'r':
		a.restart()
	case '[':
		cfg.AdjustFOV(-5)
	case ']':
		cfg.AdjustFOV(5)
	case '-':
		cfg.AdjustRays(-16)
	case '=':
		cfg.AdjustRays(16)
	case ',':
		cfg.AdjustBrightness(-0.1)
	case '.':
		cfg.AdjustBrightness(0.1)
	case ';':
		cfg.AdjustSensitivity(-0.5)
	case '\'':
		cfg.AdjustSensitivity(0.5)
	}
	return true
}

func (a *App) press(cmd input.Command) {
	for _, c := range a.pressed {
		if c == cmd {
			return
		}
	}
	a.cfg.Input.Dispatch(cmd, true)
	a.pressed = append(a.pressed, cmd)
}

func (a *App) restart() {
	a.releaseAll()
	if _, err := a.cfg.Sessions.Start(); err != nil {
		a.logger.Printf("term: restarting session: %v", err)
	}
}

func (a *App) releaseAll() {
	for _, c := range a.pressed {
		a.cfg.Input.Dispatch(c, false)
	}
	a.pressed = a.pressed[:0]
}

// Step advances the live session by one tick, releases the commands pressed
// since the previous step and repaints.
func (a *App) Step(dt time.Duration) error {
	s := a.cfg.Sessions.Current()
	if s == nil {
		a.releaseAll()
		return nil
	}
	s.Update(dt)
	a.releaseAll()
	if err := s.Draw(a.surface); err != nil {
		return err
	}
	a.surface.Show()
	return nil
}

// Run polls the screen and ticks until the player quits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := a.cfg.Screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(a.cfg.Tick)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !a.HandleKey(ev) {
					a.releaseAll()
					return nil
				}
			case *tcell.EventResize:
				a.cfg.Screen.Sync()
			}

		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			if err := a.Step(dt); err != nil {
				return err
			}
		}
	}
}
