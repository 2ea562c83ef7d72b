// Package grid holds the wall/empty occupancy map the crawler is played on.
package grid

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"strings"
)

// Cell is the state of one unit square of the map.
type Cell uint8

const (
	Empty Cell = iota
	Wall
)

const (
	// MinSize is the smallest accepted width or height.
	MinSize = 3
	// PillarAttempts is the number of interior walls Generate tries to place.
	PillarAttempts = 10
	// SpawnClearance is the Chebyshev radius around the center kept free of pillars.
	SpawnClearance = 2
)

var (
	ErrInvalidSize = errors.New("grid: width and height must be at least 3")
	ErrOpenBorder  = errors.New("grid: border cell is not a wall")
	ErrRagged      = errors.New("grid: rows differ in length")
)

// Map is a fixed-size occupancy grid. It is not modified after construction.
type Map struct {
	width  int
	height int
	cells  []Cell
}

// New returns a map whose outer ring is wall and whose interior is empty.
func New(width, height int) (*Map, error) {
	if width < MinSize || height < MinSize {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidSize, width, height)
	}
	m := &Map{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
	}
	for y := 0; y < height; y++ {
		m.set(0, y, Wall)
		m.set(width-1, y, Wall)
	}
	for x := 0; x < width; x++ {
		m.set(x, 0, Wall)
		m.set(x, height-1, Wall)
	}
	return m, nil
}

// Generate builds a bordered map and scatters up to PillarAttempts interior
// walls. An attempt that lands within SpawnClearance of the center is dropped,
// not retried, so fewer pillars than attempts is normal.
func Generate(width, height int, rng *rand.Rand) (*Map, error) {
	m, err := New(width, height)
	if err != nil {
		return nil, err
	}
	cx, cy := m.Center()
	for i := 0; i < PillarAttempts; i++ {
		x := rng.Intn(width-2) + 1
		y := rng.Intn(height-2) + 1
		if math.Abs(float64(x)-cx) <= SpawnClearance && math.Abs(float64(y)-cy) <= SpawnClearance {
			continue
		}
		m.set(x, y, Wall)
	}
	return m, nil
}

// Parse builds a map from rows of text where '#' marks a wall and any other
// byte is empty floor. Every row must have the same length and the border must
// be closed.
func Parse(rows ...string) (*Map, error) {
	if len(rows) < MinSize || len(rows[0]) < MinSize {
		return nil, ErrInvalidSize
	}
	width, height := len(rows[0]), len(rows)
	m := &Map{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
	}
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrRagged, y, len(row), width)
		}
		for x := 0; x < width; x++ {
			if row[x] == '#' {
				m.set(x, y, Wall)
			}
		}
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if m.onBorder(x, y) && m.cells[y*width+x] != Wall {
				return nil, fmt.Errorf("%w: (%d, %d)", ErrOpenBorder, x, y)
			}
		}
	}
	return m, nil
}

// ReadLayout reads map rows for Parse from r, one row per line. Blank lines
// and trailing whitespace are ignored.
func ReadLayout(r io.Reader) ([]string, error) {
	var rows []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		row := strings.TrimRight(sc.Text(), " \t\r")
		if row == "" {
			continue
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("grid: reading layout: %w", err)
	}
	return rows, nil
}

// IsWall reports whether the cell is a wall. Coordinates outside the map count
// as wall.
func (m *Map) IsWall(x, y int) bool {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return true
	}
	return m.cells[y*m.width+x] == Wall
}

// Size returns the map dimensions in cells.
func (m *Map) Size() (int, int) { return m.width, m.height }

// Center returns the real-valued middle of the map, where sessions spawn.
func (m *Map) Center() (float64, float64) {
	return float64(m.width) / 2, float64(m.height) / 2
}

// MaxDistance is the map diagonal, the longest distance a ray can report.
func (m *Map) MaxDistance() float64 {
	return math.Sqrt(float64(m.width*m.width + m.height*m.height))
}

// Walls counts the wall cells, border included.
func (m *Map) Walls() int {
	n := 0
	for _, c := range m.cells {
		if c == Wall {
			n++
		}
	}
	return n
}

// Interior counts the wall cells that are not part of the border ring.
func (m *Map) Interior() int {
	return m.Walls() - 2*(m.width+m.height) + 4
}

func (m *Map) String() string {
	var b strings.Builder
	b.Grow((m.width + 1) * m.height)
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if m.cells[y*m.width+x] == Wall {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (m *Map) set(x, y int, c Cell) {
	m.cells[y*m.width+x] = c
}

func (m *Map) onBorder(x, y int) bool {
	return x == 0 || y == 0 || x == m.width-1 || y == m.height-1
}
