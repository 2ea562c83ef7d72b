package main

import "time"

// Window, overlay, and scripted-walk constants for the desktop frontend. The
// logical screen is fixed; ebiten scales it to the window.
const (
	screenW, screenH  = 640, 400
	windowScale       = 2
	defaultTPS        = 60
	defaultMapSize    = 16
	minimapCell       = 6
	minimapMargin     = 8
	minimapHeading    = 2.5
	fovHotkeyStep     = 5
	raysHotkeyStep    = 16
	brightnessStep    = 0.1
	sensitivityStep   = 0.5
	autoWalkMinTicks  = 20
	autoWalkMaxTicks  = 70
	autoWalkTurnRatio = 0.35
	pgoRecordDuration = 15 * time.Second
)
