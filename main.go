package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/hajimehoshi/ebiten/v2"

	"crawler/internal/grid"
	"crawler/internal/input"
	"crawler/internal/raycast"
	"crawler/internal/session"
	"crawler/internal/settings"
	"crawler/internal/term"
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := settings.New(settings.Values{
		FOVDegrees:  *fovFlag,
		Rays:        *raysFlag,
		Brightness:  *brightnessFlag,
		Sensitivity: *sensitivityFlag,
	})
	if err != nil {
		return fmt.Errorf("invalid render settings: %w", err)
	}
	layout, err := loadLayout(*layoutFlag)
	if err != nil {
		return err
	}

	caster, casterName, closeCaster := newCaster()
	defer closeCaster()

	logger := log.Default()
	if *termFlag {
		// The terminal owns stdout and stderr while tcell is running.
		logger = nil
	}
	disp := input.NewDispatcher()
	sessions := session.NewManager(session.Options{
		Width:    *mapWidthFlag,
		Height:   *mapHeightFlag,
		Seed:     *seedFlag,
		Layout:   layout,
		Settings: cfg,
		Input:    disp,
		Caster:   caster,
		Logger:   logger,
	})
	s, err := sessions.Start()
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	defer sessions.Stop()
	if *debugFlag && !*termFlag {
		log.Printf("Session %d map:\n%s", s.ID(), s.Map())
	}

	if *termFlag {
		return runTerminal(sessions, disp, cfg)
	}
	return runWindow(sessions, disp, cfg, casterName)
}

// newCaster picks the OpenCL caster when requested and available, otherwise a
// CPU worker pool.
func newCaster() (raycast.FanCaster, string, func()) {
	if *openCLFlag {
		c, err := newOpenCLCaster()
		if err == nil {
			log.Printf("OpenCL caster enabled (device: %s)", c.DeviceName())
			return c, "OpenCL " + c.DeviceName(), c.Close
		}
		log.Printf("OpenCL initialization failed, casting on the CPU: %v", err)
	}
	pool := raycast.NewPool(*workersFlag)
	return pool, fmt.Sprintf("CPU x%d", pool.Workers()), pool.Close
}

func loadLayout(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening layout: %w", err)
	}
	defer f.Close()
	return grid.ReadLayout(f)
}

func runWindow(sessions *session.Manager, disp *input.Dispatcher, cfg *settings.Settings, casterName string) error {
	g := newGame(sessions, disp, cfg, casterName)
	if *recordDefaultPGO {
		stop, err := startDefaultPGORecording("default.pgo")
		if err != nil {
			return fmt.Errorf("recording default.pgo: %w", err)
		}
		defer stop()
		g.enableAutoWalk(pgoRecordDuration)
		time.AfterFunc(pgoRecordDuration, func() {
			stop()
			log.Printf("Wrote default.pgo after %s", pgoRecordDuration)
		})
	} else if *autoWalkFlag {
		g.enableAutoWalk(0)
	}

	ebiten.SetWindowSize(screenW*windowScale, screenH*windowScale)
	ebiten.SetWindowTitle("Crawler")
	ebiten.SetTPS(defaultTPS)
	ebiten.SetScreenClearedEveryFrame(false)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

func runTerminal(sessions *session.Manager, disp *input.Dispatcher, cfg *settings.Settings) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating terminal screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing terminal screen: %w", err)
	}
	defer screen.Fini()

	app, err := term.New(term.Config{
		Screen:   screen,
		Sessions: sessions,
		Input:    disp,
		Settings: cfg,
		Tick:     time.Second / defaultTPS,
	})
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
