package main

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"crawler/internal/session"
)

var (
	minimapFloor   = color.RGBA{15, 23, 42, 220}
	minimapVisible = color.RGBA{51, 65, 85, 230}
	minimapWall    = color.RGBA{30, 40, 80, 255}
	minimapSeen    = color.RGBA{96, 130, 200, 255}
	minimapPlayer  = color.RGBA{255, 0, 0, 255}
	minimapRay     = color.RGBA{0, 255, 200, 200}
)

type gridOffset struct {
	dx int
	dy int
}

// playerFootprint is the disc drawn for the camera on the minimap.
var playerFootprint = precomputeFootprint(minimapCell / 3)

func precomputeFootprint(radius int) []gridOffset {
	footprint := make([]gridOffset, 0, (2*radius+1)*(2*radius+1))
	r2 := radius * radius
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y <= r2 {
				footprint = append(footprint, gridOffset{dx: x, dy: y})
			}
		}
	}
	return footprint
}

// drawMinimap renders a top-down view of the session's map in the top-right
// corner with the camera position and heading. Cells inside the field of view
// are highlighted.
func drawMinimap(screen *ebiten.Image, s *session.Session, fov *fovMask, fovRadians float64) {
	m := s.Map()
	cam := s.Camera()
	fov.refresh(m, cam, fovRadians)
	mw, mh := m.Size()
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	ox := sw - minimapMargin - mw*minimapCell
	oy := minimapMargin

	vector.DrawFilledRect(screen, float32(ox), float32(oy), float32(mw*minimapCell), float32(mh*minimapCell), minimapFloor, false)
	for y := 0; y < mh; y++ {
		for x := 0; x < mw; x++ {
			var c color.RGBA
			switch wall, seen := m.IsWall(x, y), fov.visible(x, y); {
			case wall && seen:
				c = minimapSeen
			case wall:
				c = minimapWall
			case seen:
				c = minimapVisible
			default:
				continue
			}
			vector.DrawFilledRect(screen, float32(ox+x*minimapCell), float32(oy+y*minimapCell), minimapCell, minimapCell, c, false)
		}
	}

	px := ox + int(cam.X*minimapCell)
	py := oy + int(cam.Y*minimapCell)
	dx, dy := cam.Direction()
	hx := clampCoord(px+int(math.Round(dx*minimapHeading*minimapCell)), 0, sw-1)
	hy := clampCoord(py+int(math.Round(dy*minimapHeading*minimapCell)), 0, sh-1)
	drawLine(screen, px, py, hx, hy, minimapRay)
	for _, off := range playerFootprint {
		x, y := px+off.dx, py+off.dy
		if x >= 0 && x < sw && y >= 0 && y < sh {
			screen.Set(x, y, minimapPlayer)
		}
	}
}

// drawLine plots a line segment using Bresenham's integer algorithm.
func drawLine(screen *ebiten.Image, x0, y0, x1, y1 int, clr color.Color) {
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	dx := int(math.Abs(float64(x1 - x0)))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -int(math.Abs(float64(y1 - y0)))
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		if x0 >= 0 && x0 < sw && y0 >= 0 && y0 < sh {
			screen.Set(x0, y0, clr)
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// clampCoord constrains v to lie within the inclusive [min, max] range.
func clampCoord(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
