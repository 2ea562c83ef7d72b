package main

import (
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"crawler/internal/input"
	"crawler/internal/session"
)

// movementBindings maps each movement command to the keys that hold it.
var movementBindings = []struct {
	cmd  input.Command
	keys []ebiten.Key
}{
	{input.Forward, []ebiten.Key{ebiten.KeyArrowUp, ebiten.KeyW}},
	{input.Backward, []ebiten.Key{ebiten.KeyArrowDown, ebiten.KeyS}},
	{input.TurnLeft, []ebiten.Key{ebiten.KeyArrowLeft, ebiten.KeyA}},
	{input.TurnRight, []ebiten.Key{ebiten.KeyArrowRight, ebiten.KeyD}},
}

// pollMovementKeys dispatches a press or release whenever a command's held
// state changes. A command stays held while any of its keys is down.
func (g *Game) pollMovementKeys() {
	for _, b := range movementBindings {
		down := false
		for _, k := range b.keys {
			if ebiten.IsKeyPressed(k) {
				down = true
				break
			}
		}
		g.setHeld(b.cmd, down)
	}
}

// setHeld forwards a state change for cmd to the dispatcher.
func (g *Game) setHeld(cmd input.Command, down bool) {
	if g.held[cmd] == down {
		return
	}
	g.held[cmd] = down
	g.input.Dispatch(cmd, down)
}

// releaseHeld releases every command this frontend pressed.
func (g *Game) releaseHeld() {
	for cmd, down := range g.held {
		if down {
			g.input.Dispatch(cmd, false)
		}
	}
	clear(g.held)
}

// handleHotkeys processes session, overlay, and settings hotkeys.
func (g *Game) handleHotkeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.quit = true
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		if s := g.sessions.Current(); s != nil {
			s.TogglePause()
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.restartSession()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		g.showMinimap = !g.showMinimap
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		g.showDebug = !g.showDebug
	}

	cfg := g.settings
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft):
		log.Printf("FOV %.0f", cfg.AdjustFOV(-fovHotkeyStep))
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketRight):
		log.Printf("FOV %.0f", cfg.AdjustFOV(fovHotkeyStep))
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract):
		log.Printf("Rays %d", cfg.AdjustRays(-raysHotkeyStep))
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd):
		log.Printf("Rays %d", cfg.AdjustRays(raysHotkeyStep))
	case inpututil.IsKeyJustPressed(ebiten.KeyComma):
		cfg.AdjustBrightness(-brightnessStep)
		log.Printf("Brightness %s", cfg.Snapshot().BrightnessLabel())
	case inpututil.IsKeyJustPressed(ebiten.KeyPeriod):
		cfg.AdjustBrightness(brightnessStep)
		log.Printf("Brightness %s", cfg.Snapshot().BrightnessLabel())
	case inpututil.IsKeyJustPressed(ebiten.KeySemicolon):
		log.Printf("Sensitivity %.1f", cfg.AdjustSensitivity(-sensitivityStep))
	case inpututil.IsKeyJustPressed(ebiten.KeyQuote):
		log.Printf("Sensitivity %.1f", cfg.AdjustSensitivity(sensitivityStep))
	}
}

// enableAutoWalk schedules scripted movement. A zero duration walks until quit.
func (g *Game) enableAutoWalk(duration time.Duration) {
	g.autoWalk = true
	g.autoWalkDeadline = time.Time{}
	if duration > 0 {
		g.autoWalkDeadline = time.Now().Add(duration)
	}
	g.autoWalkTicks = 0
	g.autoWalkHasLast = false
}

// autoWalkStep holds one pseudo-random command for a stretch of ticks. A
// forward walk that stops making progress switches to a turn.
func (g *Game) autoWalkStep(s *session.Session) {
	if !g.autoWalkDeadline.IsZero() && time.Now().After(g.autoWalkDeadline) {
		g.autoWalk = false
		g.releaseHeld()
		return
	}
	cam := s.Camera()
	stuck := g.autoWalkHasLast && g.autoWalkCmd == input.Forward && cam == g.autoWalkLastCam
	if g.autoWalkTicks <= 0 || stuck {
		g.randomizeAutoWalk(stuck)
	}
	g.autoWalkTicks--
	g.autoWalkLastCam, g.autoWalkHasLast = cam, true
	for _, b := range movementBindings {
		g.setHeld(b.cmd, b.cmd == g.autoWalkCmd)
	}
}

// randomizeAutoWalk chooses the next scripted command and how long to hold it.
func (g *Game) randomizeAutoWalk(mustTurn bool) {
	switch {
	case mustTurn || g.autoWalkRand.Float64() < autoWalkTurnRatio:
		g.autoWalkCmd = input.TurnLeft
		if g.autoWalkRand.Intn(2) == 0 {
			g.autoWalkCmd = input.TurnRight
		}
	default:
		g.autoWalkCmd = input.Forward
	}
	g.autoWalkTicks = autoWalkMinTicks + g.autoWalkRand.Intn(autoWalkMaxTicks-autoWalkMinTicks+1)
}
