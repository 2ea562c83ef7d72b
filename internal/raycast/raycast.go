// Package raycast marches rays across an occupancy grid.
package raycast

import "math"

// Step is the distance a ray advances per march iteration, in cells. Hit
// distances are quantized to it.
const Step = 0.1

// Occupancy is the read-only view of a map the caster needs.
type Occupancy interface {
	IsWall(x, y int) bool
	Size() (width, height int)
}

// Hit is the outcome of one cast. A ray that leaves the map or runs out of
// range reports MaxDistance.
type Hit struct {
	Distance float64
	X, Y     float64
}

// MaxDistance returns the diagonal of m, the sentinel distance for a ray that
// found no wall.
func MaxDistance(m Occupancy) float64 {
	w, h := m.Size()
	return math.Sqrt(float64(w*w + h*h))
}

// Cast marches from (originX, originY) along angle in fixed steps and returns
// the first wall it lands in. The origin must not be inside a wall.
func Cast(m Occupancy, originX, originY, angle float64) Hit {
	w, h := m.Size()
	limit := math.Sqrt(float64(w*w + h*h))
	dirX, dirY := math.Cos(angle), math.Sin(angle)
	hit := Hit{Distance: limit, X: originX, Y: originY}
	for dist := 0.0; dist < limit; dist += Step {
		x := originX + dirX*dist
		y := originY + dirY*dist
		hit.X, hit.Y = x, y
		cx, cy := int(math.Floor(x)), int(math.Floor(y))
		if cx < 0 || cx >= w || cy < 0 || cy >= h {
			break
		}
		if m.IsWall(cx, cy) {
			return Hit{Distance: dist, X: x, Y: y}
		}
	}
	return hit
}

// FanCaster casts one ray per entry of angles from a shared origin, writing
// results into hits. len(hits) must be at least len(angles).
type FanCaster interface {
	CastFan(m Occupancy, originX, originY float64, angles []float64, hits []Hit) error
}

// Sequential casts every ray in order on the calling goroutine.
type Sequential struct{}

// CastFan implements FanCaster.
func (Sequential) CastFan(m Occupancy, originX, originY float64, angles []float64, hits []Hit) error {
	if len(hits) < len(angles) {
		return errShortHits(len(angles), len(hits))
	}
	for i, a := range angles {
		hits[i] = Cast(m, originX, originY, a)
	}
	return nil
}
