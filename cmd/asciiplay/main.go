// Package main provides the CLI entry point for asciiplay.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/asciiplay/pkg/adapters/ansiterm"
	"github.com/user/asciiplay/pkg/adapters/ffmpegsource"
	"github.com/user/asciiplay/pkg/adapters/logger"
	"github.com/user/asciiplay/pkg/adapters/textdisplay"
	"github.com/user/asciiplay/pkg/config"
	"github.com/user/asciiplay/pkg/metrics"
	"github.com/user/asciiplay/pkg/pipeline"
	"github.com/user/asciiplay/pkg/player"
	"github.com/user/asciiplay/pkg/ports"
	"github.com/user/asciiplay/pkg/summarizer"
)

var version = "dev"

// Grid used for plain output when rows/cols are not configured.
const (
	plainRows = 60
	plainCols = 80
)

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "asciiplay",
		Usage:     l10n.T("Play videos as coloured text in the terminal"),
		UsageText: "asciiplay [options] <video|file.y4m|->",
		Version:   version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file")},
			&cli.IntFlag{Name: "rows", Category: l10n.T("Grid"), Usage: l10n.T("Grid rows (0 = display height)")},
			&cli.IntFlag{Name: "cols", Category: l10n.T("Grid"), Usage: l10n.T("Grid columns (0 = display width)")},
			&cli.StringFlag{Name: "ramp", Category: l10n.T("Rendering"), Usage: l10n.T("Glyph ramp (short, extended)")},
			&cli.StringFlag{Name: "custom-ramp", Category: l10n.T("Rendering"), Usage: l10n.T("Custom glyph ramp, sparsest first")},
			&cli.StringFlag{Name: "color-mode", Category: l10n.T("Rendering"), Usage: l10n.T("Colour mode (auto, cube, base8, mono)")},
			&cli.IntFlag{Name: "colors", Category: l10n.T("Rendering"), Usage: l10n.T("Assume this many terminal colours (0 = detect)")},
			&cli.BoolFlag{Name: "plain", Category: l10n.T("Rendering"), Usage: l10n.T("Write plain text frames without escape sequences")},
			&cli.BoolFlag{Name: "no-pacing", Category: l10n.T("Timing"), Usage: l10n.T("Render frames as fast as they decode")},
			&cli.IntFlag{Name: "default-interval", Category: l10n.T("Timing"), Usage: l10n.T("Frame interval in milliseconds for streams without a frame rate")},
			&cli.IntFlag{Name: "max-duration", Category: l10n.T("Timing"), Usage: l10n.T("Stop after this much stream time in milliseconds (0 = whole stream)")},
			&cli.StringFlag{Name: "ffmpeg", Category: l10n.T("Decoding"), Usage: l10n.T("Path to the ffmpeg executable")},
			&cli.StringFlag{Name: "log-level", Category: l10n.T("Logging"), Usage: l10n.T("Log level (debug, info, warn, error)")},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Category: l10n.T("Logging"), Usage: l10n.T("Suppress all log output")},
			&cli.StringFlag{Name: "metrics-addr", Category: l10n.T("Logging"), Usage: l10n.T("Serve Prometheus metrics on this address")},
			&cli.StringFlag{Name: "summary", Category: l10n.T("Logging"), Usage: l10n.T("Write a playback summary to this file (Markdown format)")},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 1 {
		_ = cli.ShowAppHelp(c)
		return cli.Exit(l10n.T("Exactly one source argument is required"), 1)
	}
	source := c.Args().First()

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	// Create logger
	var log ports.Logger
	if c.Bool("quiet") {
		log = logger.NewNoop()
	} else {
		level, _ := ports.ParseLogLevel(cfg.LogLevel)
		if f, ok := c.App.ErrWriter.(*os.File); ok && f == os.Stderr {
			log = logger.NewConsole(level)
		} else {
			log = logger.NewWriter(level, c.App.ErrWriter)
		}
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	if cfg.MetricsAddr != "" {
		log.Info("Serving metrics on %s", cfg.MetricsAddr)
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
				log.Warn("Metrics server stopped: %v", err)
			}
		}()
	}

	display, colors := newDisplay(cfg, c.App.Writer, log)
	cfg = cfg.ResolveColorMode(colors)
	opts, err := cfg.ToPlayerOptions()
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	video := ffmpegsource.New(ffmpegsource.Options{FFmpegPath: cfg.FFmpegPath}, log)

	started := time.Now()
	outcome := player.New(video, display, nil, log).Run(ctx, source, opts)
	if err := display.Close(); err != nil {
		log.Warn("Failed to restore display: %v", err)
	}

	if path := c.String("summary"); path != "" {
		summary := summarizer.NewBuilder().
			WithSource(source).
			WithSettings(summarizer.Settings{
				Rows:        cfg.Rows,
				Cols:        cfg.Cols,
				ColorMode:   cfg.ColorMode,
				RampLength:  opts.Ramp.Len(),
				MaxDuration: opts.MaxDuration,
			}).
			WithOutcome(outcome, time.Since(started)).
			Build()
		if err := summarizer.NewWriter(summarizer.NewMarkdownFormatter()).Write(path, summary); err != nil {
			log.Warn("Failed to write summary: %v", err)
		}
	}

	if outcome.Status == pipeline.StatusError {
		return cli.Exit(outcome.Err.Error(), player.ExitCode(outcome))
	}
	return nil
}

// loadConfig reads the optional config file and applies flag overrides.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if c.IsSet("rows") {
		cfg.Rows = c.Int("rows")
	}
	if c.IsSet("cols") {
		cfg.Cols = c.Int("cols")
	}
	if c.IsSet("ramp") {
		cfg.Ramp = c.String("ramp")
	}
	if c.IsSet("custom-ramp") {
		cfg.CustomRamp = c.String("custom-ramp")
	}
	if c.IsSet("color-mode") {
		cfg.ColorMode = c.String("color-mode")
	}
	if c.IsSet("colors") {
		cfg.AssumeColors = c.Int("colors")
	}
	if c.IsSet("plain") {
		cfg.Plain = c.Bool("plain")
	}
	if c.IsSet("no-pacing") {
		cfg.Pacing = !c.Bool("no-pacing")
	}
	if c.IsSet("default-interval") {
		cfg.DefaultIntervalMs = c.Int("default-interval")
	}
	if c.IsSet("max-duration") {
		cfg.MaxDurationMs = c.Int("max-duration")
	}
	if c.IsSet("ffmpeg") {
		cfg.FFmpegPath = c.String("ffmpeg")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("metrics-addr") {
		cfg.MetricsAddr = c.String("metrics-addr")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newDisplay picks the ANSI terminal for a terminal stdout and plain text
// otherwise, and reports the colours the display offers. Plain output
// defaults to an 80x60 grid and accepts any palette.
func newDisplay(cfg config.Config, out io.Writer, log ports.Logger) (ports.Display, int) {
	if f, ok := out.(*os.File); ok && !cfg.Plain && ansiterm.IsTerminal(f) {
		t := ansiterm.New(f, ansiterm.Options{Colors: cfg.AssumeColors})
		return t, t.Colors()
	}
	if !cfg.Plain {
		log.Info("Output is not a terminal, writing plain text")
	}
	rows, cols := cfg.Rows, cfg.Cols
	if rows == 0 {
		rows = plainRows
	}
	if cols == 0 {
		cols = plainCols
	}
	return textdisplay.New(out, rows, cols, "\n"), 256
}
