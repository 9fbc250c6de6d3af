package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli"

	"github.com/teodori/go-brick/brick"
	"github.com/teodori/go-brick/brick/backend"
	"github.com/teodori/go-brick/brick/backend/headless"
	"github.com/teodori/go-brick/brick/backend/terminal"
)

func main() {
	app := cli.NewApp()
	app.Name = "brick"
	app.Description = "A Game Boy emulator"
	app.Usage = "brick [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run without a display for a fixed number of frames",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode",
			Value: 0,
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save frame snapshots every N frames in headless mode (0 = disabled)",
			Value: 0,
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save frame snapshots (default: temp directory)",
		},
		cli.BoolFlag{
			Name:  "sdl",
			Usage: "Use the SDL2 window backend (requires a build with -tags sdl2)",
		},
		cli.IntFlag{
			Name:  "scale",
			Usage: "Window pixel scale for the SDL2 backend",
			Value: 4,
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug logging",
		},
	}
	app.Action = runEmulator

	if err := app.Run(os.Args); err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func runEmulator(c *cli.Context) error {
	if c.Bool("debug") {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	emu, err := brick.NewWithFile(romPath)
	if err != nil {
		return err
	}

	b, err := selectBackend(c, romPath)
	if err != nil {
		return err
	}

	config := backend.Config{
		Title: fmt.Sprintf("brick - %s", filepath.Base(romPath)),
		Scale: c.Int("scale"),
	}
	if err := b.Init(config); err != nil {
		return err
	}
	defer b.Cleanup()

	return runLoop(emu, b, c.Bool("headless"))
}

func selectBackend(c *cli.Context, romPath string) (backend.Backend, error) {
	if c.Bool("headless") {
		frames := c.Int("frames")
		if frames <= 0 {
			return nil, errors.New("headless mode requires --frames with a positive value")
		}

		snapshots := headless.SnapshotConfig{}
		if interval := c.Int("snapshot-interval"); interval > 0 {
			dir := c.String("snapshot-dir")
			if dir == "" {
				tempDir, err := os.MkdirTemp("", "brick-snapshots-*")
				if err != nil {
					return nil, fmt.Errorf("creating snapshot directory: %w", err)
				}
				dir = tempDir
			}

			romName := filepath.Base(romPath)
			romName = strings.TrimSuffix(romName, filepath.Ext(romName))

			snapshots = headless.SnapshotConfig{
				Enabled:   true,
				Interval:  interval,
				Directory: dir,
				ROMName:   romName,
			}
		}

		return headless.New(frames, snapshots), nil
	}

	if c.Bool("sdl") {
		return backend.NewSDL2Backend(), nil
	}

	return terminal.New(), nil
}

// runLoop drives the emulator a frame at a time, handing each completed
// framebuffer to the backend and feeding input back.
func runLoop(emu *brick.DMG, b backend.Backend, headlessMode bool) error {
	frameDuration := time.Second / 60

	for {
		start := time.Now()

		if err := emu.RunUntilFrame(); err != nil {
			return err
		}

		events, quit, err := b.Update(emu.GetCurrentFrame())
		if err != nil {
			return err
		}

		for _, ev := range events {
			if ev.Pressed {
				emu.HandleKeyPress(ev.Key)
			} else {
				emu.HandleKeyRelease(ev.Key)
			}
		}

		if quit {
			return nil
		}

		if !headlessMode {
			if elapsed := time.Since(start); elapsed < frameDuration {
				time.Sleep(frameDuration - elapsed)
			}
		}
	}
}
