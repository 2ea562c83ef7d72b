package main

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"crawler/internal/render"
	"crawler/internal/session"
)

// imageSurface lets the frame renderer paint onto an ebiten image.
type imageSurface struct {
	dst *ebiten.Image
}

func (s *imageSurface) Size() (int, int) {
	b := s.dst.Bounds()
	return b.Dx(), b.Dy()
}

func (s *imageSurface) Fill(c color.Color) { s.dst.Fill(c) }

func (s *imageSurface) FillRect(x, y, w, h float64, c color.Color) {
	vector.DrawFilledRect(s.dst, float32(x), float32(y), float32(w), float32(h), c, false)
}

// Draw renders the live session and the optional overlays. The screen is not
// cleared between frames, so a paused session keeps showing its last frame.
func (g *Game) Draw(screen *ebiten.Image) {
	s := g.sessions.Current()
	if s == nil {
		screen.Fill(render.Background)
		return
	}
	if s.Paused() {
		return
	}
	g.surface.dst = screen
	if err := s.Draw(g.surface); err != nil {
		g.drawErr = err
		return
	}
	if g.showMinimap {
		drawMinimap(screen, s, &g.fov, g.settings.Snapshot().FOV())
	}
	if g.showDebug {
		g.drawDebug(screen, s)
	}
}

// Layout reports the logical screen size used by Ebiten.
func (g *Game) Layout(_, _ int) (int, int) { return screenW, screenH }

// drawDebug prints frame rate, pose, and the live render configuration.
func (g *Game) drawDebug(screen *ebiten.Image, s *session.Session) {
	st := s.Stats()
	cam := s.Camera()
	cfg := g.settings.Snapshot()
	debugMsg := fmt.Sprintf("FPS: %.1f  TPS: %.1f\nSession %d: %d ticks, %d frames, %d pillars\nPos: %.2f, %.2f  Angle: %.2f\nFOV: %.0f  Rays: %d  Brightness: %s  Sensitivity: %.1f\nCaster: %s",
		ebiten.ActualFPS(), ebiten.ActualTPS(),
		st.ID, st.Ticks, st.Frames, st.Walls,
		cam.X, cam.Y, cam.Angle,
		cfg.FOVDegrees, cfg.Rays, cfg.BrightnessLabel(), cfg.Sensitivity,
		g.casterName)
	ebitenutil.DebugPrint(screen, debugMsg)
}
