//go:build !opencl

package main

import (
	"errors"

	"crawler/internal/raycast"
)

type openCLCaster struct{}

func newOpenCLCaster() (*openCLCaster, error) {
	return nil, errors.New("OpenCL support is not enabled; rebuild with -tags opencl")
}

func (c *openCLCaster) CastFan(raycast.Occupancy, float64, float64, []float64, []raycast.Hit) error {
	return errors.New("OpenCL caster unavailable")
}

func (c *openCLCaster) Close() {}

func (c *openCLCaster) DeviceName() string { return "" }
