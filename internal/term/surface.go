// Package term runs the crawler inside a terminal. Every character cell is one
// surface unit painted with its background colour.
package term

import (
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"
)

// Surface paints onto a tcell screen. Nothing is visible until Show.
type Surface struct {
	screen tcell.Screen
}

// NewSurface wraps screen.
func NewSurface(screen tcell.Screen) *Surface {
	return &Surface{screen: screen}
}

// Size reports the screen size in cells.
func (s *Surface) Size() (int, int) { return s.screen.Size() }

// Fill paints every cell with c.
func (s *Surface) Fill(c color.Color) {
	w, h := s.screen.Size()
	s.fill(0, 0, w, h, styleFor(c))
}

// FillRect paints every cell the rectangle touches, clipped to the screen.
func (s *Surface) FillRect(x, y, w, h float64, c color.Color) {
	if !(w > 0) || !(h > 0) {
		return
	}
	sw, sh := s.screen.Size()
	x0 := clampCell(math.Floor(x), sw)
	y0 := clampCell(math.Floor(y), sh)
	x1 := clampCell(math.Ceil(x+w), sw)
	y1 := clampCell(math.Ceil(y+h), sh)
	s.fill(x0, y0, x1, y1, styleFor(c))
}

// Show flushes the painted cells to the terminal.
func (s *Surface) Show() { s.screen.Show() }

func (s *Surface) fill(x0, y0, x1, y1 int, style tcell.Style) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			s.screen.SetContent(x, y, ' ', nil, style)
		}
	}
}

func styleFor(c color.Color) tcell.Style {
	r, g, b, _ := c.RGBA()
	return tcell.StyleDefault.Background(tcell.NewRGBColor(int32(r>>8), int32(g>>8), int32(b>>8)))
}

// clampCell limits a cell coordinate to [0, limit].
func clampCell(v float64, limit int) int {
	if v < 0 {
		return 0
	}
	if v > float64(limit) {
		return limit
	}
	return int(v)
}
