package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"go-rhythm/config"
	"go-rhythm/debug"
	"go-rhythm/metrics"
	"go-rhythm/midi"
	"go-rhythm/rhythm"
	"go-rhythm/submit"
	"go-rhythm/theme"
	"go-rhythm/tone"
	"go-rhythm/tui"
)

func main() {
	page := flag.String("page", "", "page to open: login, signup or change")
	debugLog := flag.Bool("debug", false, "write a debug log to ~/.config/go-rhythm/debug.log")
	noMIDI := flag.Bool("no-midi", false, "do not look for MIDI controllers")
	flag.Parse()

	if err := config.LoadEnv(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		debug.Warn("config", ".env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}
	cfg.ApplyEnv()

	if *debugLog {
		if err := debug.Enable(); err != nil {
			fmt.Fprintf(os.Stderr, "debug log: %v\n", err)
		}
		defer debug.Disable()
	}
	if err := debug.SetLevel(cfg.Log.Level); err != nil {
		debug.Warn("config", "log level %q: %v", cfg.Log.Level, err)
	}

	palette, err := theme.LoadOrDefault(cfg.UI.Palette)
	if err != nil {
		debug.Warn("theme", "palette %s: %v", cfg.UI.Palette, err)
	}
	th := theme.New(palette)

	var sounders []rhythm.Sounder
	if cfg.Audio.Enabled {
		sounders = append(sounders, tone.Shared())
	}
	if cfg.SynthOutput.PortName != "" {
		port, err := midi.FindOutPort(cfg.SynthOutput.PortName)
		if err != nil {
			debug.Warn("synth", "%v", err)
		} else {
			sounders = append(sounders, midi.NewOutput(port, cfg.SynthOutput.Channel))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var devices *midi.DeviceManager
	var surface *midi.Surface
	if !*noMIDI {
		devices = midi.NewDeviceManager()
		devices.Ignore(cfg.SynthOutput.PortName)
		devices.SetKeyboards(true, keyboardChannel(cfg))
		surface = midi.NewSurface(nil)
		go devices.Run(ctx)
	}

	var met *metrics.Metrics
	if cfg.Metrics.Addr != "" {
		met = metrics.New()
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr, met); err != nil {
				debug.Warn("metrics", "serve %s: %v", cfg.Metrics.Addr, err)
			}
		}()
	}

	client, err := submit.New(cfg.Server.BaseURL, time.Duration(cfg.Server.TimeoutSec)*time.Second)
	if err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}

	start := tui.ParsePage(cfg.UI.LastPage)
	if *page != "" {
		start = tui.ParsePage(*page)
	}

	m := tui.NewModel(start, tui.Deps{
		Theme:        th,
		Submitter:    client,
		Sounders:     sounders,
		Surface:      surface,
		Devices:      devices,
		Metrics:      met,
		MinBeats:     cfg.Rhythm.MinBeats,
		ToneDuration: time.Duration(cfg.Audio.ToneDurationMs) * time.Millisecond,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	final, err := p.Run()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	// remember the page, without writing environment overrides back to disk
	if fm, ok := final.(tui.Model); ok {
		if saved, err := config.Load(); err == nil {
			saved.UI.LastPage = string(fm.Page())
			if err := saved.Save(); err != nil {
				debug.Warn("config", "save: %v", err)
			}
		}
	}
}

// keyboardChannel is the input channel of the first configured keyboard
func keyboardChannel(cfg *config.Config) int {
	for _, c := range cfg.Controllers {
		if c.Type == config.ControllerKeyboard {
			return c.InputChannel
		}
	}
	return 0
}
