// Command ls-astromap maps where on Earth the bodies of a chart are angular,
// at the zenith or in paran, and browses the result in a terminal UI.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/litescript/ls-astromap/internal/engine"
	"github.com/litescript/ls-astromap/internal/ephem"
	"github.com/litescript/ls-astromap/internal/export"
	"github.com/litescript/ls-astromap/internal/logging"
	"github.com/litescript/ls-astromap/internal/state"
	"github.com/litescript/ls-astromap/internal/ui"
	"github.com/litescript/ls-astromap/internal/version"
)

// CLI flags for headless mode
var (
	summaryMode bool
	jsonPath    string
	mapMode     bool
)

func main() {
	chartPath := flag.String("chart", "", "Chart file (TOML) with bodies, weights and grid")
	timeStr := flag.String("time", "", "Snapshot time, RFC3339 (default: chart time, else now)")
	withStars := flag.Bool("stars", false, "Add the fixed-star catalog")
	starMag := flag.Float64("star-mag", 1.5, "Faintest star magnitude added by -stars")
	withSun := flag.Bool("sun", false, "Add the Sun when the chart lacks one")
	apparent := flag.Bool("apparent", false, "Use apparent instead of mean sidereal time")
	horizon := flag.String("horizon", "geometric", "Rise/set horizon: geometric, stellar, solar or altitude in degrees")
	workers := flag.Int("workers", 0, "Worker goroutines per stage (0 = all CPUs)")
	home := flag.String("home", "", "Watched location as lat,lon (e.g. 40.7,-74.0)")
	step := flag.Duration("step", time.Hour, "Time step for [ and ] in the TUI")
	logLevel := flag.String("log-level", "warn", "Log level (debug, info, warn, error)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	gf := registerGridFlags(flag.CommandLine)
	flag.BoolVar(&summaryMode, "summary", false, "Print text summary instead of TUI")
	flag.StringVar(&jsonPath, "json", "", "Export JSON result to file (use - for stdout)")
	flag.BoolVar(&mapMode, "map", false, "Print ASCII world map")
	flag.Parse()

	if *showVersion {
		fmt.Println("ls-astromap", version.Version)
		return
	}

	// Set up logging
	logger := logging.New(logging.ParseLevel(*logLevel))

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	cfg, err := buildConfig(*chartPath, *timeStr, gf, flagsSet(flag.CommandLine))
	if err != nil {
		fatal(err)
	}
	if *withSun {
		cfg.providers = append(cfg.providers, ephem.SolarProvider{})
	}
	if *withStars {
		cfg.providers = append(cfg.providers, ephem.StarProvider{MaxMag: *starMag})
	}
	if len(cfg.providers) == 0 {
		fatal(fmt.Errorf("nothing to map: give -chart, -sun or -stars"))
	}
	cfg.apparent = *apparent
	if cfg.horizon, err = parseHorizon(*horizon); err != nil {
		fatal(fmt.Errorf("-horizon: %w", err))
	}
	cfg.workers = *workers

	compute := newComputeFunc(cfg, logger)

	// Initialize state
	stateCfg := state.DefaultConfig()
	stateCfg.TimeStep = *step
	if *home != "" {
		loc, err := parseLatLon(*home)
		if err != nil {
			fatal(fmt.Errorf("-home: %w", err))
		}
		stateCfg.Home = &loc
	}
	stateMgr := state.NewManager(stateCfg)

	// Headless mode: no TUI
	if summaryMode || jsonPath != "" || mapMode {
		if err := runHeadless(ctx, compute, cfg.at, logger); err != nil {
			fatal(err)
		}
		return
	}

	// The first snapshot is computed before the TUI starts so a bad chart
	// fails on the terminal rather than in the alt screen.
	res, err := compute(ctx, cfg.at)
	stateMgr.Update(res, err)
	if err != nil {
		fatal(err)
	}

	model := ui.New(stateMgr, compute)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// newComputeFunc gathers body positions for t from the configured providers
// and runs the engine.
func newComputeFunc(cfg *runConfig, logger *logging.Logger) ui.ComputeFunc {
	providers := ephem.Combined(cfg.providers)
	log := logger.With("source", providers.Name())
	return func(ctx context.Context, t time.Time) (*engine.Result, error) {
		bodies, err := providers.Bodies(t)
		if err != nil {
			log.Error("Body positions at %s failed: %v", t.Format(time.RFC3339), err)
			return nil, fmt.Errorf("body positions: %w", err)
		}
		log.Debug("%d bodies at %s", len(bodies), t.Format(time.RFC3339))

		res, err := engine.Compute(ctx, engine.Input{
			Time:     t,
			Bodies:   bodies,
			Weights:  cfg.weights,
			Apparent: cfg.apparent,
			Grid:     cfg.grid,
			Lines:    cfg.lineOptions(),
			Parans:   cfg.paranOptions(),
			Workers:  cfg.workers,
		}, log)
		if err != nil {
			log.Error("Compute failed: %v", err)
			return nil, err
		}
		return res, nil
	}
}

// runHeadless computes one snapshot and writes the requested outputs.
func runHeadless(ctx context.Context, compute ui.ComputeFunc, at time.Time, logger *logging.Logger) error {
	res, err := compute(ctx, at)
	if err != nil {
		return err
	}

	// Export JSON if requested
	if jsonPath != "" {
		out := export.ExportResult(res)
		if jsonPath == "-" {
			if err := out.WriteJSON(os.Stdout); err != nil {
				return fmt.Errorf("write JSON to stdout: %w", err)
			}
		} else {
			f, err := os.Create(jsonPath)
			if err != nil {
				return fmt.Errorf("create JSON file: %w", err)
			}
			defer f.Close()
			if err := out.WriteJSON(f); err != nil {
				return fmt.Errorf("write JSON to file: %w", err)
			}
			logger.Info("Wrote %s", jsonPath)
		}
	}

	// Print summary table if requested
	if summaryMode {
		export.WriteSummaryTable(os.Stdout, res, export.DefaultSummaryConfig())
	}

	// World map
	if mapMode {
		if summaryMode {
			fmt.Println()
		}
		mapCfg := export.DefaultMapConfig()
		mapCfg.Color = term.IsTerminal(int(os.Stdout.Fd()))
		export.WriteMap(os.Stdout, res, mapCfg)
	}
	return nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
