// Package render turns ray hits into flat-shaded vertical wall strips and paints
// them onto a drawing surface.
package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"crawler/internal/raycast"
	"crawler/internal/settings"
)

// Shading and projection constants. Saturation and lightness values are HSL
// percentages.
const (
	WallScale = 1.5
	WallHue   = 217.0

	SaturationPerBrightness = 24.0
	SaturationCeiling       = 40.0

	LightnessBase    = 100.0
	LightnessFalloff = 10.0
	LightnessCap     = 60.0
	LightnessCeiling = 90.0
	LightnessFloor   = 4.0

	// minCorrected keeps the projected height finite for rays that start on
	// a wall face.
	minCorrected = raycast.Step / 10
)

// Background is the colour behind the wall strips.
var Background = color.RGBA{R: 0x0f, G: 0x17, B: 0x2a, A: 0xff}

// Surface accepts filled rectangles. Coordinates are in surface units with the
// origin at the top left.
type Surface interface {
	Size() (width, height int)
	Fill(c color.Color)
	FillRect(x, y, w, h float64, c color.Color)
}

// Strip is one projected wall column.
type Strip struct {
	X, Y, W, H float64

	Distance   float64
	Corrected  float64
	Saturation float64
	Lightness  float64
	Color      color.RGBA
}

// View is everything one frame depends on.
type View struct {
	Map     raycast.Occupancy
	X, Y    float64
	Heading float64
	Config  settings.Values
}

// Renderer builds frames. Its buffers are reused between frames, so the strips
// returned by Frame are only valid until the next call.
type Renderer struct {
	caster raycast.FanCaster
	angles []float64
	hits   []raycast.Hit
	strips []Strip
}

// NewRenderer returns a renderer casting through c. A nil caster casts
// sequentially.
func NewRenderer(c raycast.FanCaster) *Renderer {
	if c == nil {
		c = raycast.Sequential{}
	}
	return &Renderer{caster: c}
}

// Frame casts one ray per configured column across the field of view and
// projects each hit onto a width×height viewport.
func (r *Renderer) Frame(v View, width, height int) ([]Strip, error) {
	rays := v.Config.Rays
	if rays < 1 {
		return nil, fmt.Errorf("render: ray count %d must be positive", rays)
	}
	r.ensureBuffers(rays)

	fov := v.Config.FOV()
	start := v.Heading - fov/2
	for i := 0; i < rays; i++ {
		r.angles[i] = start + float64(i)/float64(rays)*fov
	}
	if err := r.caster.CastFan(v.Map, v.X, v.Y, r.angles, r.hits); err != nil {
		return nil, fmt.Errorf("render: casting %d rays: %w", rays, err)
	}

	stripWidth := float64(width) / float64(rays)
	for i := 0; i < rays; i++ {
		raw := r.hits[i].Distance
		corrected := raw * math.Cos(r.angles[i]-v.Heading)
		h := WallHeight(corrected, height)
		sat, light := Shade(corrected, v.Config.Brightness)
		r.strips[i] = Strip{
			X:          float64(i) * stripWidth,
			Y:          (float64(height) - h) / 2,
			W:          stripWidth + 1,
			H:          h,
			Distance:   raw,
			Corrected:  corrected,
			Saturation: sat,
			Lightness:  light,
			Color:      WallColor(sat, light),
		}
	}
	return r.strips, nil
}

func (r *Renderer) ensureBuffers(n int) {
	if cap(r.angles) < n {
		r.angles = make([]float64, n)
		r.hits = make([]raycast.Hit, n)
		r.strips = make([]Strip, n)
	}
	r.angles = r.angles[:n]
	r.hits = r.hits[:n]
	r.strips = r.strips[:n]
}

// WallHeight projects a fisheye-corrected distance to a strip height.
func WallHeight(corrected float64, viewport int) float64 {
	if corrected < minCorrected {
		corrected = minCorrected
	}
	return float64(viewport) / corrected * WallScale
}

// Shade returns HSL saturation and lightness percentages for a wall at the
// given distance. Lightness falls off with distance and never leaves
// [LightnessFloor, LightnessCeiling]; saturation never exceeds SaturationCeiling.
func Shade(distance, brightness float64) (saturation, lightness float64) {
	if !(brightness > 0) {
		return 0, LightnessFloor
	}
	base := math.Min(LightnessBase-distance*(LightnessFalloff/brightness), LightnessCap)
	lightness = clamp(base*brightness, LightnessFloor, LightnessCeiling)
	saturation = clamp(SaturationPerBrightness*brightness, 0, SaturationCeiling)
	return saturation, lightness
}

// WallColor converts HSL percentages at WallHue into RGBA.
func WallColor(saturation, lightness float64) color.RGBA {
	c := colorful.Hsl(WallHue, saturation/100, lightness/100).Clamped()
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// Paint clears s and draws strips left to right.
func Paint(s Surface, strips []Strip) {
	s.Fill(Background)
	for i := range strips {
		st := &strips[i]
		s.FillRect(st.X, st.Y, st.W, st.H, st.Color)
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
