package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lmittmann/tint"

	"github.com/ciphercore/noisectl/internal/analyzer"
	"github.com/ciphercore/noisectl/internal/cli"
	"github.com/ciphercore/noisectl/internal/hum"
	"github.com/ciphercore/noisectl/internal/logging"
	"github.com/ciphercore/noisectl/internal/noisectrl"
	"github.com/ciphercore/noisectl/internal/trace"
	"github.com/ciphercore/noisectl/internal/ui"
)

var (
	version = "0.0.1"
)

// CLI defines the command-line interface
type CLI struct {
	Version bool          `short:"v" help:"Show version information"`
	Demo    bool          `help:"Replay a synthetic demo trace with local mains-hum ripple"`
	Raw     bool          `help:"Treat trace files as raw samples and derive variance per window"`
	Window  int           `default:"256" help:"Samples per variance window in raw mode"`
	Smooth  float64       `default:"0" help:"EWMA smoothing factor for readings, 0 disables"`
	Pace    time.Duration `default:"2ms" help:"Delay between replay steps"`
	Report  bool          `help:"Save a session report next to each trace"`
	Plain   bool          `help:"Print session summaries instead of the interactive UI"`
	Verbose bool          `help:"Write debug logs to noisectl-debug.log"`
	Traces  []string      `arg:"" name:"traces" help:"Variance trace files to replay" type:"existingfile" optional:""`
}

// replayTrace is one unit of work for the replay loop
type replayTrace struct {
	name      string
	path      string // empty for the synthetic demo trace
	readings  []float64
	humFreqHz int
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("noisectl"),
		kong.Description("Adaptive noise factor controller"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	// Handle version flag
	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	// Validate input
	if len(cliArgs.Traces) == 0 && !cliArgs.Demo {
		cli.PrintError("No trace files specified (use --demo for a synthetic trace)")
		ctx.PrintUsage(false)
		os.Exit(1)
	}

	log := newLogger(cliArgs.Verbose)

	traces, err := loadTraces(cliArgs, log)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	if cliArgs.Plain {
		runPlain(cliArgs, traces, log)
		return
	}

	names := make([]string, len(traces))
	for i, t := range traces {
		names[i] = t.name
	}

	// Create the Bubbletea UI model
	model := ui.NewModel(names)

	// Start the TUI
	p := tea.NewProgram(model, tea.WithAltScreen())

	// Start replaying in background
	go func() {
		for i, t := range traces {
			log.Debug("starting trace", "index", i, "name", t.name, "steps", len(t.readings))
			p.Send(ui.TraceStartMsg{
				TraceIndex: i,
				TraceName:  t.name,
				TotalSteps: len(t.readings),
			})

			session := replay(t, cliArgs, func(step int, m noisectrl.Measurement, factor float64) {
				p.Send(ui.StepMsg{
					TraceIndex: i,
					Step:       step,
					TotalSteps: len(t.readings),
					Variance:   m.Variance,
					Factor:     factor,
					Error:      m.Error,
				})
			})

			var reportPath string
			if cliArgs.Report {
				path, err := generateReport(t, session, cliArgs)
				if err != nil {
					log.Error("report generation failed", "trace", t.name, "err", err)
				} else {
					reportPath = path
				}
			}

			log.Debug("trace complete", "name", t.name,
				"final", session.FinalFactor, "bounds_held", session.BoundsHeld())
			p.Send(ui.TraceCompleteMsg{
				TraceIndex:  i,
				FinalFactor: session.FinalFactor,
				Attenuated:  session.Attenuated,
				Amplified:   session.Amplified,
				Held:        session.Held,
				ReportPath:  reportPath,
			})
		}

		p.Send(ui.AllCompleteMsg{})
	}()

	// Run the program
	if _, err := p.Run(); err != nil {
		cli.PrintError(fmt.Sprintf("UI error: %v", err))
		os.Exit(1)
	}
}

// runPlain replays without the TUI and prints a summary per trace
func runPlain(cliArgs *CLI, traces []replayTrace, log *slog.Logger) {
	for _, t := range traces {
		session := replay(t, cliArgs, nil)
		logging.DisplaySummary(os.Stdout, session)

		if cliArgs.Report {
			reportPath, err := generateReport(t, session, cliArgs)
			if err != nil {
				cli.PrintError(fmt.Sprintf("report generation failed for %s: %v", t.name, err))
				continue
			}
			fmt.Printf("Report: %s\n", reportPath)
			log.Debug("report written", "trace", t.name, "path", reportPath)
		}
	}
}

// replay feeds one trace through a fresh controller, notifying onStep (if
// non-nil) after each reading
func replay(t replayTrace, cliArgs *CLI, onStep func(step int, m noisectrl.Measurement, factor float64)) *logging.Session {
	ctl := noisectrl.New()
	session := logging.NewSession(t.name, ctl.Factor())

	var smoother *analyzer.Smoother
	if cliArgs.Smooth > 0 {
		smoother = analyzer.NewSmoother(cliArgs.Smooth)
	}

	for step, reading := range t.readings {
		if smoother != nil {
			reading = smoother.Smooth(reading)
		}

		before := ctl.Factor()
		m := ctl.Measure(reading)
		after := ctl.Factor()
		session.Record(before, after, m)

		if onStep != nil {
			onStep(step, m, after)
			if cliArgs.Pace > 0 {
				time.Sleep(cliArgs.Pace)
			}
		}
	}

	session.Finish()
	return session
}

// loadTraces assembles the replay queue from trace files and the demo flag
func loadTraces(cliArgs *CLI, log *slog.Logger) ([]replayTrace, error) {
	var traces []replayTrace

	for _, path := range cliArgs.Traces {
		readings, err := trace.ReadFile(path)
		if err != nil {
			return nil, err
		}

		if cliArgs.Raw {
			stats := analyzer.Analyze(readings, cliArgs.Window)
			if len(stats) == 0 {
				return nil, fmt.Errorf("trace %s is shorter than one window (%d samples)", path, cliArgs.Window)
			}
			variances := make([]float64, len(stats))
			for i, ws := range stats {
				variances[i] = ws.Variance
			}
			log.Debug("windowed raw trace", "path", path,
				"samples", len(readings), "windows", len(variances))
			readings = variances
		}

		traces = append(traces, replayTrace{
			name:     path,
			path:     path,
			readings: readings,
		})
	}

	if cliArgs.Demo {
		freq := hum.Frequency()
		log.Debug("synthesizing demo trace", "hum_hz", freq)
		traces = append(traces, replayTrace{
			name: fmt.Sprintf("demo (%d Hz hum)", freq),
			readings: trace.Synthesize(trace.SynthOptions{
				HumFreqHz: freq,
				HumAmp:    0.2,
				NoiseAmp:  0.1,
			}),
			humFreqHz: freq,
		})
	}

	return traces, nil
}

// generateReport writes the session report for one trace
func generateReport(t replayTrace, session *logging.Session, cliArgs *CLI) (string, error) {
	tracePath := t.path
	if tracePath == "" {
		tracePath = "demo-trace" // synthetic trace reports land in the working directory
	}

	var window int
	if cliArgs.Raw && t.path != "" {
		window = cliArgs.Window
	}

	return logging.GenerateReport(logging.ReportData{
		Session:    session,
		TracePath:  tracePath,
		HumFreqHz:  t.humFreqHz,
		WindowSize: window,
	})
}

// newLogger builds the debug logger. Without --verbose everything is discarded.
func newLogger(verbose bool) *slog.Logger {
	var w io.Writer = io.Discard
	level := slog.LevelInfo
	if verbose {
		f, err := os.Create("noisectl-debug.log")
		if err == nil {
			w = f
			level = slog.LevelDebug
		}
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    true,
	}))
}
