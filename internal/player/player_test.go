package player

import (
	"math"
	"testing"

	"crawler/internal/grid"
	"crawler/internal/input"
)

func testMap(t *testing.T) *grid.Map {
	t.Helper()
	m, err := grid.Parse(
		"########",
		"#......#",
		"#..#...#",
		"#......#",
		"########",
	)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestForwardIntoEmptyCell(t *testing.T) {
	m := testMap(t)
	c := Camera{X: 1.5, Y: 1.5}
	if !c.Tick(input.Keys{Forward: true}, m, 0.1) {
		t.Fatal("forward into open floor reported no movement")
	}
	if math.Abs(c.X-(1.5+MoveStep)) > 1e-12 || c.Y != 1.5 {
		t.Fatalf("position = (%v, %v), want (%v, 1.5)", c.X, c.Y, 1.5+MoveStep)
	}
}

func TestBackwardStepsAgainstHeading(t *testing.T) {
	m := testMap(t)
	c := Camera{X: 4.5, Y: 3.5, Angle: math.Pi / 2}
	c.Tick(input.Keys{Backward: true}, m, 0.1)
	if math.Abs(c.Y-(3.5-MoveStep)) > 1e-12 || math.Abs(c.X-4.5) > 1e-12 {
		t.Fatalf("position = (%v, %v), want (4.5, %v)", c.X, c.Y, 3.5-MoveStep)
	}
}

func TestMoveIntoWallIsDiscarded(t *testing.T) {
	m := testMap(t)
	// One step east lands in pillar (3, 2).
	c := Camera{X: 2.95, Y: 2.5}
	before := c
	if c.Tick(input.Keys{Forward: true}, m, 0.1) {
		t.Fatal("move into wall reported movement")
	}
	if c != before {
		t.Fatalf("camera changed to %+v, want %+v", c, before)
	}

	// Backing into the border is also rejected.
	c = Camera{X: 1.05, Y: 1.5}
	before = c
	c.Tick(input.Keys{Backward: true}, m, 0.1)
	if c != before {
		t.Fatalf("camera changed to %+v, want %+v", c, before)
	}
}

func TestMoveAndTurnInSameTick(t *testing.T) {
	m := testMap(t)
	c := Camera{X: 1.5, Y: 1.5}
	c.Tick(input.Keys{Forward: true, TurnRight: true}, m, 0.25)
	if c.X <= 1.5 {
		t.Fatal("forward did not apply")
	}
	if c.Angle != 0.25 {
		t.Fatalf("Angle = %v, want 0.25", c.Angle)
	}
}

func TestTurnEvenWhenBlocked(t *testing.T) {
	m := testMap(t)
	c := Camera{X: 2.95, Y: 2.5}
	c.Tick(input.Keys{Forward: true, TurnLeft: true}, m, 0.1)
	if c.Angle != -0.1 {
		t.Fatalf("Angle = %v, want -0.1", c.Angle)
	}
}

func TestOpposingTurnsCancel(t *testing.T) {
	m := testMap(t)
	c := Camera{X: 1.5, Y: 1.5, Angle: 1}
	c.Tick(input.Keys{TurnLeft: true, TurnRight: true}, m, 0.3)
	if math.Abs(c.Angle-1) > 1e-12 {
		t.Fatalf("Angle = %v, want 1", c.Angle)
	}
}

func TestRotationMonotonicAndStable(t *testing.T) {
	m := testMap(t)
	const step = 0.1
	c := Camera{X: 1.5, Y: 1.5}
	for i := 0; i < 10000; i++ {
		prev := c.Angle
		c.Tick(input.Keys{TurnRight: true}, m, step)
		if c.Angle <= prev || math.Abs(c.Angle-prev-step) > 1e-9 {
			t.Fatalf("tick %d: angle %v -> %v, want +%v", i, prev, c.Angle, step)
		}
		dx, dy := c.Direction()
		if dx < -1 || dx > 1 || dy < -1 || dy > 1 || math.IsNaN(dx) || math.IsNaN(dy) {
			t.Fatalf("tick %d: direction (%v, %v) out of range", i, dx, dy)
		}
	}
	if math.Abs(c.Angle-10000*step) > 1e-6 {
		t.Fatalf("accumulated angle = %v, want ~%v", c.Angle, 10000*step)
	}

	for i := 0; i < 10000; i++ {
		prev := c.Angle
		c.Tick(input.Keys{TurnLeft: true}, m, step)
		if c.Angle >= prev {
			t.Fatalf("left tick %d did not decrease angle", i)
		}
	}
}

func TestSpawnAndCell(t *testing.T) {
	c := Spawn(16, 16)
	if c.X != 8 || c.Y != 8 || c.Angle != 0 {
		t.Fatalf("Spawn(16, 16) = %+v", c)
	}
	if x, y := (Camera{X: 3.99, Y: 0.01}).Cell(); x != 3 || y != 0 {
		t.Fatalf("Cell() = %d, %d", x, y)
	}
}
