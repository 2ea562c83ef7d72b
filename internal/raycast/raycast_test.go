package raycast

import (
	"math"
	"math/rand"
	"testing"

	"crawler/internal/grid"
)

func borderMap(t *testing.T, w, h int) *grid.Map {
	t.Helper()
	m, err := grid.New(w, h)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// openMap reports no walls at all, so every ray leaves the bounds.
type openMap struct{ w, h int }

func (openMap) IsWall(int, int) bool { return false }
func (o openMap) Size() (int, int)   { return o.w, o.h }

func TestCastStraightAtBorder(t *testing.T) {
	m := borderMap(t, 16, 16)
	hit := Cast(m, 8, 8, 0)
	// The first wall cell to the right is x = 15, seven cells from the origin.
	if hit.Distance < 7-1e-9 || hit.Distance > 7+Step+1e-9 {
		t.Fatalf("distance = %v, want within one step of 7", hit.Distance)
	}
	if math.Floor(hit.X) != 15 || math.Floor(hit.Y) != 8 {
		t.Fatalf("hit point (%v, %v) not in wall cell (15, 8)", hit.X, hit.Y)
	}
}

func TestCastAdjacentWall(t *testing.T) {
	m, err := grid.Parse(
		"#######",
		"#.....#",
		"#..#..#",
		"#.....#",
		"#######",
	)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name  string
		x, y  float64
		angle float64
		want  float64
	}{
		{"east into pillar", 1.5, 2.5, 0, 1.5},
		{"west into pillar", 5.5, 2.5, math.Pi, 1.5},
		{"south into pillar", 3.5, 1.2, math.Pi / 2, 0.8},
		{"north into border", 1.5, 3.5, -math.Pi / 2, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit := Cast(m, tt.x, tt.y, tt.angle)
			if hit.Distance < tt.want-1e-9 || hit.Distance > tt.want+Step+1e-9 {
				t.Fatalf("distance = %v, want within one step of %v", hit.Distance, tt.want)
			}
		})
	}
}

func TestCastIsPure(t *testing.T) {
	m, _ := grid.Generate(24, 24, rand.New(rand.NewSource(7)))
	for i := 0; i < 200; i++ {
		angle := float64(i) * 0.0317
		a := Cast(m, 12, 12, angle)
		b := Cast(m, 12, 12, angle)
		if a != b {
			t.Fatalf("angle %v: %+v != %+v", angle, a, b)
		}
	}
}

func TestCastNeverExceedsDiagonal(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for seed := int64(0); seed < 20; seed++ {
		m, _ := grid.Generate(16, 16, rand.New(rand.NewSource(seed)))
		limit := MaxDistance(m)
		for i := 0; i < 100; i++ {
			hit := Cast(m, 8, 8, rng.Float64()*2*math.Pi)
			if hit.Distance < 0 || hit.Distance > limit {
				t.Fatalf("distance %v outside [0, %v]", hit.Distance, limit)
			}
		}
	}
}

func TestCastLeavingMapReturnsDiagonal(t *testing.T) {
	m := openMap{w: 10, h: 6}
	for _, angle := range []float64{0, 1, 2, 3, 4, 5} {
		hit := Cast(m, 5, 3, angle)
		if hit.Distance != MaxDistance(m) {
			t.Fatalf("angle %v: distance %v, want sentinel %v", angle, hit.Distance, MaxDistance(m))
		}
	}
}

func TestCastWithinBoundsAlwaysHitsBorder(t *testing.T) {
	m := borderMap(t, 16, 16)
	limit := MaxDistance(m)
	for i := 0; i < 360; i++ {
		hit := Cast(m, 8, 8, float64(i)*math.Pi/180)
		if hit.Distance >= limit {
			t.Fatalf("ray %d escaped a closed map", i)
		}
	}
}

func TestSequentialShortBuffer(t *testing.T) {
	m := borderMap(t, 8, 8)
	if err := (Sequential{}).CastFan(m, 4, 4, []float64{0, 1}, make([]Hit, 1)); err == nil {
		t.Fatal("expected error for short hit buffer")
	}
}

func TestPoolMatchesSequential(t *testing.T) {
	m, _ := grid.Generate(32, 32, rand.New(rand.NewSource(11)))
	angles := make([]float64, 321)
	for i := range angles {
		angles[i] = -0.5 + float64(i)/float64(len(angles))
	}
	want := make([]Hit, len(angles))
	if err := (Sequential{}).CastFan(m, 16, 16, angles, want); err != nil {
		t.Fatal(err)
	}

	for _, workers := range []int{1, 3, 8} {
		p := NewPool(workers)
		got := make([]Hit, len(angles))
		for round := 0; round < 5; round++ {
			if err := p.CastFan(m, 16, 16, angles, got); err != nil {
				t.Fatal(err)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("workers=%d ray %d: got %+v want %+v", workers, i, got[i], want[i])
				}
			}
		}
		p.Close()
		p.Close()
		if err := p.CastFan(m, 16, 16, angles, got); err != ErrPoolClosed {
			t.Fatalf("CastFan after Close = %v, want ErrPoolClosed", err)
		}
	}
}

func TestPoolFewerRaysThanWorkers(t *testing.T) {
	m := borderMap(t, 16, 16)
	p := NewPool(6)
	defer p.Close()
	hits := make([]Hit, 2)
	if err := p.CastFan(m, 8, 8, []float64{0, math.Pi}, hits); err != nil {
		t.Fatal(err)
	}
	if hits[0].Distance == 0 || hits[1].Distance == 0 {
		t.Fatalf("rays not cast: %+v", hits)
	}
}
