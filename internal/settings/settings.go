// Package settings holds the live-tunable render and control parameters.
//
// Values may be changed at any time by any goroutine; the renderer and camera
// take a Snapshot once per frame or tick so they always see the latest values.
package settings

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
)

const (
	DefaultFOVDegrees  = 60.0
	DefaultRays        = 320
	DefaultBrightness  = 1.0
	DefaultSensitivity = 5.0

	MaxFOVDegrees  = 180.0
	MaxRays        = 4096
	MaxBrightness  = 1.0
	MaxSensitivity = 20.0

	// TurnPerSensitivity converts the sensitivity scale into radians per tick.
	TurnPerSensitivity = 0.02
)

// ErrOutOfRange is wrapped by every validation failure.
var ErrOutOfRange = errors.New("settings: value out of range")

// Values is an immutable copy of the settings.
type Values struct {
	FOVDegrees  float64
	Rays        int
	Brightness  float64
	Sensitivity float64
}

// Default returns the start-up settings.
func Default() Values {
	return Values{
		FOVDegrees:  DefaultFOVDegrees,
		Rays:        DefaultRays,
		Brightness:  DefaultBrightness,
		Sensitivity: DefaultSensitivity,
	}
}

// FOV returns the field of view in radians.
func (v Values) FOV() float64 { return v.FOVDegrees * math.Pi / 180 }

// TurnStep returns the heading change applied per tick while a turn is held.
func (v Values) TurnStep() float64 { return v.Sensitivity * TurnPerSensitivity }

// BrightnessLabel formats brightness to one decimal, as shown on settings panels.
func (v Values) BrightnessLabel() string { return fmt.Sprintf("%.1f", v.Brightness) }

// Validate checks every field against its accepted range.
func (v Values) Validate() error {
	if err := checkFOV(v.FOVDegrees); err != nil {
		return err
	}
	if err := checkRays(v.Rays); err != nil {
		return err
	}
	if err := checkBrightness(v.Brightness); err != nil {
		return err
	}
	return checkSensitivity(v.Sensitivity)
}

func checkFOV(deg float64) error {
	if math.IsNaN(deg) || deg <= 0 || deg >= MaxFOVDegrees {
		return fmt.Errorf("%w: fov %v must be in (0, %v) degrees", ErrOutOfRange, deg, MaxFOVDegrees)
	}
	return nil
}

func checkRays(n int) error {
	if n < 1 || n > MaxRays {
		return fmt.Errorf("%w: rays %d must be in [1, %d]", ErrOutOfRange, n, MaxRays)
	}
	return nil
}

func checkBrightness(b float64) error {
	if math.IsNaN(b) || b < 0 || b > MaxBrightness {
		return fmt.Errorf("%w: brightness %v must be in [0, %v]", ErrOutOfRange, b, MaxBrightness)
	}
	return nil
}

func checkSensitivity(s float64) error {
	if math.IsNaN(s) || s <= 0 || s > MaxSensitivity {
		return fmt.Errorf("%w: sensitivity %v must be in (0, %v]", ErrOutOfRange, s, MaxSensitivity)
	}
	return nil
}

// Settings is the shared, live-mutable configuration.
type Settings struct {
	fov         atomic.Uint64
	rays        atomic.Int64
	brightness  atomic.Uint64
	sensitivity atomic.Uint64
}

// New validates v and returns settings initialised from it.
func New(v Values) (*Settings, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	s := &Settings{}
	s.fov.Store(math.Float64bits(v.FOVDegrees))
	s.rays.Store(int64(v.Rays))
	s.brightness.Store(math.Float64bits(v.Brightness))
	s.sensitivity.Store(math.Float64bits(v.Sensitivity))
	return s, nil
}

// Snapshot reads all fields. Each field is read atomically; a concurrent update
// to a different field may or may not be visible, which is fine for a frame.
func (s *Settings) Snapshot() Values {
	return Values{
		FOVDegrees:  math.Float64frombits(s.fov.Load()),
		Rays:        int(s.rays.Load()),
		Brightness:  math.Float64frombits(s.brightness.Load()),
		Sensitivity: math.Float64frombits(s.sensitivity.Load()),
	}
}

func (s *Settings) SetFOVDegrees(deg float64) error {
	if err := checkFOV(deg); err != nil {
		return err
	}
	s.fov.Store(math.Float64bits(deg))
	return nil
}

func (s *Settings) SetRays(n int) error {
	if err := checkRays(n); err != nil {
		return err
	}
	s.rays.Store(int64(n))
	return nil
}

func (s *Settings) SetBrightness(b float64) error {
	if err := checkBrightness(b); err != nil {
		return err
	}
	s.brightness.Store(math.Float64bits(b))
	return nil
}

func (s *Settings) SetSensitivity(v float64) error {
	if err := checkSensitivity(v); err != nil {
		return err
	}
	s.sensitivity.Store(math.Float64bits(v))
	return nil
}

// The Adjust helpers nudge a value by delta and clamp it to its range instead
// of failing. They are meant for hotkeys.

func (s *Settings) AdjustFOV(delta float64) float64 {
	v := clamp(math.Float64frombits(s.fov.Load())+delta, 1, MaxFOVDegrees-1)
	s.fov.Store(math.Float64bits(v))
	return v
}

func (s *Settings) AdjustRays(delta int) int {
	n := int(s.rays.Load()) + delta
	if n < 1 {
		n = 1
	} else if n > MaxRays {
		n = MaxRays
	}
	s.rays.Store(int64(n))
	return n
}

func (s *Settings) AdjustBrightness(delta float64) float64 {
	v := clamp(math.Float64frombits(s.brightness.Load())+delta, 0, MaxBrightness)
	// Keep the stored value on the one-decimal grid the label shows.
	v = math.Round(v*10) / 10
	s.brightness.Store(math.Float64bits(v))
	return v
}

func (s *Settings) AdjustSensitivity(delta float64) float64 {
	v := clamp(math.Float64frombits(s.sensitivity.Load())+delta, 0.5, MaxSensitivity)
	s.sensitivity.Store(math.Float64bits(v))
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
