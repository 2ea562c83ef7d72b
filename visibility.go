package main

import (
	"math"

	"crawler/internal/grid"
	"crawler/internal/player"
)

// intPoint represents an integer coordinate on the map grid.
type intPoint struct {
	x int
	y int
}

// fovMask marks the cells inside the camera's field of view that a straight
// line from the camera cell reaches without crossing a wall. It is only
// recomputed when the map, camera cell, heading, or FOV changes.
type fovMask struct {
	width, height int
	stamp         []uint32
	gen           uint32
	targets       []intPoint

	lastMap   *grid.Map
	lastCX    int
	lastCY    int
	lastAngle float64
	lastFOV   float64
}

// buildPerimeterTargets lists the edge cells line-of-sight rays are cast to.
func buildPerimeterTargets(w, h int) []intPoint {
	points := make([]intPoint, 0, 2*(w+h))
	for x := 0; x < w; x++ {
		points = append(points, intPoint{x: x, y: 0})
		points = append(points, intPoint{x: x, y: h - 1})
	}
	for y := 1; y < h-1; y++ {
		points = append(points, intPoint{x: 0, y: y})
		points = append(points, intPoint{x: w - 1, y: y})
	}
	return points
}

// refresh recomputes the mask for cam looking across m with the given FOV in
// radians.
func (v *fovMask) refresh(m *grid.Map, cam player.Camera, fov float64) {
	w, h := m.Size()
	if v.width != w || v.height != h {
		v.width, v.height = w, h
		v.stamp = make([]uint32, w*h)
		v.targets = buildPerimeterTargets(w, h)
		v.gen = 0
		v.lastMap = nil
	}
	cx, cy := cam.Cell()
	cx = clampCoord(cx, 0, w-1)
	cy = clampCoord(cy, 0, h-1)
	if v.lastMap == m && v.lastCX == cx && v.lastCY == cy && v.lastAngle == cam.Angle && v.lastFOV == fov {
		return
	}
	if v.gen == ^uint32(0) {
		clear(v.stamp)
		v.gen = 1
	} else {
		v.gen++
	}
	v.stamp[cy*w+cx] = v.gen

	fx, fy := cam.Direction()
	cosHalf := math.Cos(fov / 2)
	cosHalfSq := cosHalf * cosHalf
	ox, oy := float64(cx)+0.5, float64(cy)+0.5
	for _, target := range v.targets {
		vx := float64(target.x) + 0.5 - ox
		vy := float64(target.y) + 0.5 - oy
		dot := vx*fx + vy*fy
		if dot <= 0 || dot*dot < (vx*vx+vy*vy)*cosHalfSq {
			continue
		}
		v.castVisibilityRay(m, cx, cy, target.x, target.y)
	}
	v.lastMap, v.lastCX, v.lastCY, v.lastAngle, v.lastFOV = m, cx, cy, cam.Angle, fov
}

// visible reports whether the cell was reached by the last refresh.
func (v *fovMask) visible(x, y int) bool {
	if x < 0 || x >= v.width || y < 0 || y >= v.height || v.gen == 0 {
		return false
	}
	return v.stamp[y*v.width+x] == v.gen
}

// castVisibilityRay performs a Bresenham ray cast to mark visible cells. The
// first wall on the line is marked and stops the ray.
func (v *fovMask) castVisibilityRay(m *grid.Map, x0, y0, x1, y1 int) {
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
		if x0 < 0 || x0 >= v.width || y0 < 0 || y0 >= v.height {
			break
		}
		v.stamp[y0*v.width+x0] = v.gen
		if m.IsWall(x0, y0) || (x0 == x1 && y0 == y1) {
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
