package main

import (
	"flag"

	"crawler/internal/settings"
)

// Command-line flags that size the map, seed the render configuration, and
// choose the frontend and caster.
var (
	// mapWidthFlag and mapHeightFlag size generated maps.
	mapWidthFlag  = flag.Int("map-width", defaultMapSize, "generated map width in cells (>= 3)")
	mapHeightFlag = flag.Int("map-height", defaultMapSize, "generated map height in cells (>= 3)")

	// seedFlag fixes map generation; 0 picks a new seed for every session.
	seedFlag = flag.Int64("seed", 0, "map generation seed (0 = time based)")

	// layoutFlag loads a fixed map from a text file instead of generating one.
	layoutFlag = flag.String("layout", "", "path to a map file ('#' wall, '.' floor)")

	// fovFlag sets the initial horizontal field of view.
	fovFlag = flag.Float64("fov", settings.DefaultFOVDegrees, "field of view in degrees (0-180)")

	// raysFlag sets how many columns are cast per frame.
	raysFlag = flag.Int("rays", settings.DefaultRays, "rays cast per frame")

	// brightnessFlag scales wall lightness.
	brightnessFlag = flag.Float64("brightness", settings.DefaultBrightness, "wall brightness (0-1)")

	// sensitivityFlag scales the per-tick turn step.
	sensitivityFlag = flag.Float64("sensitivity", settings.DefaultSensitivity, "turn sensitivity")

	// workersFlag sizes the ray-casting pool; 0 uses GOMAXPROCS.
	workersFlag = flag.Int("workers", 0, "ray casting worker goroutines (0 = GOMAXPROCS)")

	// openCLFlag casts rays on an OpenCL device when the binary was built with -tags opencl.
	openCLFlag = flag.Bool("opencl", false, "cast rays with OpenCL (requires -tags opencl)")

	// termFlag runs in the terminal instead of a window.
	termFlag = flag.Bool("term", false, "render in the terminal with tcell")

	// debugFlag enables the FPS and session overlay.
	debugFlag = flag.Bool("debug", false, "show FPS and session overlay")

	// minimapFlag shows the top-down map overlay at start-up.
	minimapFlag = flag.Bool("minimap", false, "show the minimap overlay")

	// autoWalkFlag wanders the map on its own.
	autoWalkFlag = flag.Bool("autowalk", false, "walk the map automatically")

	// recordDefaultPGO triggers a scripted walk to produce default.pgo.
	recordDefaultPGO = flag.Bool("record-default-pgo", false, "walk randomly for 15s while capturing default.pgo")
)
