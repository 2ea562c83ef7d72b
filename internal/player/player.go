// Package player moves the camera through the grid.
package player

import (
	"math"

	"crawler/internal/input"
)

// MoveStep is the distance covered per tick while moving, in cells.
const MoveStep = 0.1

// Blocker answers whether a cell can be entered.
type Blocker interface {
	IsWall(x, y int) bool
}

// Camera is the viewer pose. Angle is in radians and is never normalised.
type Camera struct {
	X, Y  float64
	Angle float64
}

// Spawn places a camera at the center of a w×h map facing +x.
func Spawn(width, height int) Camera {
	return Camera{X: float64(width) / 2, Y: float64(height) / 2}
}

// Cell returns the grid cell containing the camera.
func (c Camera) Cell() (int, int) {
	return int(math.Floor(c.X)), int(math.Floor(c.Y))
}

// Direction returns the unit heading vector.
func (c Camera) Direction() (float64, float64) {
	return math.Cos(c.Angle), math.Sin(c.Angle)
}

// Move steps sign*MoveStep along the heading when the destination cell is
// free. Only the destination is checked.
func (c *Camera) Move(m Blocker, sign float64) bool {
	dx, dy := c.Direction()
	nextX := c.X + sign*dx*MoveStep
	nextY := c.Y + sign*dy*MoveStep
	if m.IsWall(int(math.Floor(nextX)), int(math.Floor(nextY))) {
		return false
	}
	c.X, c.Y = nextX, nextY
	return true
}

// Turn adds delta to the heading.
func (c *Camera) Turn(delta float64) {
	c.Angle += delta
}

// Tick applies one simulation step of held commands. Forward and backward are
// evaluated in that order and may both apply; turning is independent of
// collision. It reports whether the position changed.
func (c *Camera) Tick(keys input.Keys, m Blocker, turnStep float64) bool {
	moved := false
	if keys.Forward && c.Move(m, 1) {
		moved = true
	}
	if keys.Backward && c.Move(m, -1) {
		moved = true
	}
	if keys.TurnLeft {
		c.Turn(-turnStep)
	}
	if keys.TurnRight {
		c.Turn(turnStep)
	}
	return moved
}
