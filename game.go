package main

import (
	"log"
	"math/rand"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"crawler/internal/input"
	"crawler/internal/player"
	"crawler/internal/session"
	"crawler/internal/settings"
)

// Game adapts the session manager to ebiten's update/draw loop.
type Game struct {
	sessions   *session.Manager
	input      *input.Dispatcher
	settings   *settings.Settings
	surface    *imageSurface
	casterName string

	held    map[input.Command]bool
	quit    bool
	drawErr error

	showMinimap bool
	showDebug   bool
	fov         fovMask

	autoWalk         bool
	autoWalkDeadline time.Time
	autoWalkRand     *rand.Rand
	autoWalkCmd      input.Command
	autoWalkTicks    int
	autoWalkLastCam  player.Camera
	autoWalkHasLast  bool
}

// newGame constructs a Game around an already started session manager.
func newGame(sessions *session.Manager, disp *input.Dispatcher, cfg *settings.Settings, casterName string) *Game {
	return &Game{
		sessions:     sessions,
		input:        disp,
		settings:     cfg,
		surface:      &imageSurface{},
		casterName:   casterName,
		held:         make(map[input.Command]bool),
		showMinimap:  *minimapFlag,
		showDebug:    *debugFlag,
		autoWalkRand: rand.New(rand.NewSource(time.Now().UnixNano() + 2)),
	}
}

// Update applies hotkeys and held movement, then advances the live session by
// one tick.
func (g *Game) Update() error {
	if err := g.drawErr; err != nil {
		return err
	}
	g.handleHotkeys()
	if g.quit {
		g.releaseHeld()
		return ebiten.Termination
	}

	s := g.sessions.Current()
	if s == nil {
		return nil
	}
	if g.autoWalk {
		g.autoWalkStep(s)
	} else {
		g.pollMovementKeys()
	}
	s.Update(time.Second / time.Duration(ebiten.TPS()))
	return nil
}

// restartSession replaces the live session with a freshly generated one.
func (g *Game) restartSession() {
	g.releaseHeld()
	s, err := g.sessions.Start()
	if err != nil {
		log.Printf("Starting session failed: %v", err)
		return
	}
	g.autoWalkHasLast = false
	if *debugFlag {
		log.Printf("Session %d map:\n%s", s.ID(), s.Map())
	}
}
