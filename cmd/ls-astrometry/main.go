// Command ls-astrometry calibrates meteor-camera measurements against a
// fitted camera model and shows the camera field in a terminal UI.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/litescript/ls-astrometry/internal/astro"
	"github.com/litescript/ls-astrometry/internal/config"
	"github.com/litescript/ls-astrometry/internal/geometry"
	"github.com/litescript/ls-astrometry/internal/logging"
	"github.com/litescript/ls-astrometry/internal/photometry"
	"github.com/litescript/ls-astrometry/internal/platepar"
	"github.com/litescript/ls-astrometry/internal/projection"
	"github.com/litescript/ls-astrometry/internal/report"
	"github.com/litescript/ls-astrometry/internal/ui"
	"github.com/litescript/ls-astrometry/internal/version"
)

// CLI flags for headless mode
var (
	summaryMode    bool
	jsonPath       string
	solveRot       string
	frameName      string
	xyArg          string
	radecArg       string
	atTime         string
	photometryMode bool
	tracksMode     bool
	tuiMode        bool
	showVersion    bool
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file (default: built-in demo camera)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error); overrides the config")
	flag.BoolVar(&summaryMode, "summary", false, "Print calibration summary instead of TUI")
	flag.StringVar(&jsonPath, "json", "", "Export calibration report as JSON to file (use - for stdout)")
	flag.StringVar(&solveRot, "solve-rot", "", "Solve the position angle for a field rotation in degrees")
	flag.StringVar(&frameName, "frame", "horizon", "Rotation frame for -solve-rot: horizon, standard or both")
	flag.StringVar(&xyArg, "xy", "", "Convert pixel X,Y to sky coordinates")
	flag.StringVar(&radecArg, "radec", "", "Convert RA,Dec (degrees) to pixel coordinates")
	flag.StringVar(&atTime, "time", "", "Observation time for -xy/-radec (RFC3339, default: model reference time)")
	flag.BoolVar(&photometryMode, "photometry", false, "Fit the photometric offset to the configured stars")
	flag.BoolVar(&tracksMode, "tracks", false, "Calibrate the configured meteor tracks")
	flag.BoolVar(&tuiMode, "tui", false, "Force the TUI even when other modes are selected")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println("ls-astrometry", version.Version)
		return
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	level := cfg.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}
	format := logging.FormatText
	if cfg.LogFormat == "json" {
		format = logging.FormatJSON
	}
	logger := logging.NewWithWriter(os.Stderr, logging.ParseLevel(level), format)
	logger.Debug("Camera %dx%d @ %.3f px/deg, pointing RA %.4f Dec %.4f", cfg.Camera.XRes, cfg.Camera.YRes, cfg.Camera.FScale, cfg.Camera.RA, cfg.Camera.Dec)

	isTTY := term.IsTerminal(int(os.Stdout.Fd()))

	headless := summaryMode || jsonPath != "" || solveRot != "" || xyArg != "" || radecArg != "" || photometryMode || tracksMode
	if headless && !tuiMode {
		if err := runHeadless(os.Stdout, cfg, logger, isTTY); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if !isTTY {
		logger.Info("stdout is not a terminal, printing summary")
		summaryMode = true
		if err := runHeadless(os.Stdout, cfg, logger, false); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	p := tea.NewProgram(ui.New(cfg.Camera, cfg.Solver), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// runHeadless handles all headless modes without starting TUI.
func runHeadless(w io.Writer, cfg config.Config, logger *logging.Logger, styled bool) error {
	cam := cfg.Camera
	rep := report.Build(cam, time.Now().UTC())

	obs := astro.JDToTime(cam.JD + cam.UTCorr/24)
	if atTime != "" {
		t, err := time.Parse(time.RFC3339, atTime)
		if err != nil {
			return fmt.Errorf("parse -time: %w", err)
		}
		obs = t
	}

	if xyArg != "" {
		x, y, err := parsePair(xyArg)
		if err != nil {
			return fmt.Errorf("parse -xy: %w", err)
		}
		ra, dec, az, alt := projection.PixelToRADec(cam, projection.CorrectedJD(cam, obs), x, y)
		fmt.Fprintf(w, "(%.2f, %.2f) -> RA %.5f° Dec %+.5f° Az %.5f° Alt %+.5f°\n", x, y, ra, dec, az, alt)
	}

	if radecArg != "" {
		ra, dec, err := parsePair(radecArg)
		if err != nil {
			return fmt.Errorf("parse -radec: %w", err)
		}
		x, y := projection.SkyToPixelPoint(cam, ra, dec, astro.JulianDate(obs))
		fmt.Fprintf(w, "RA %.5f° Dec %+.5f° -> (%.3f, %.3f)\n", ra, dec, x, y)
	}

	if photometryMode {
		stars := cfg.PhotometryStars()
		res, err := photometry.FitStars(stars)
		if err != nil {
			return fmt.Errorf("photometry: %w", err)
		}
		logger.Info("Photometric offset %.3f ± %.3f over %d stars", res.Offset, res.StdDev, len(res.Residuals))
		rep.AddPhotometry(res, len(res.Residuals))
	}

	if solveRot != "" {
		target, err := strconv.ParseFloat(strings.TrimSpace(solveRot), 64)
		if err != nil {
			return fmt.Errorf("parse -solve-rot: %w", err)
		}
		frames, err := parseFrames(frameName)
		if err != nil {
			return err
		}

		sols, err := solveFrames(cam, target, frames, cfg.Solver)
		if err != nil {
			return err
		}
		for i, sol := range sols {
			if !sol.Converged {
				logger.Warn("Solver did not converge for %s rotation %.3f: residual %.2e after %d evaluations",
					frames[i], target, sol.Residual, sol.Evaluations)
			}
			rep.AddSolution(frames[i], target, sol)
		}
	}

	if tracksMode {
		if len(cfg.Tracks) == 0 {
			logger.Warn("No tracks configured")
		}
		for i, tr := range cfg.Tracks {
			pts, err := projection.ApplyAstrometry(cam, tr)
			if err != nil {
				return fmt.Errorf("track %d: %w", i, err)
			}
			logger.Debug("Track %d: %d of %d picks calibrated", i, len(pts), len(tr.Picks))
			rep.AddTrack(tr.Start, pts)
			if sunAlt := rep.Tracks[len(rep.Tracks)-1].SunAlt; !astro.TwilightAt(sunAlt).Usable() {
				logger.Warn("Track %d starts with the Sun at %.1f°, star calibration is unreliable", i, sunAlt)
			}
		}
	}

	if jsonPath != "" {
		if err := writeJSON(rep, jsonPath); err != nil {
			return err
		}
	}

	// The summary is the default output when nothing else was printed.
	if summaryMode || (jsonPath == "" && xyArg == "" && radecArg == "") {
		rep.WriteSummary(w, styled)
	}
	return nil
}

// solveFrames runs one independent solve per frame concurrently.
func solveFrames(cam platepar.CameraModel, target float64, frames []geometry.Frame, cfg geometry.SolverConfig) ([]geometry.Solution, error) {
	sols := make([]geometry.Solution, len(frames))
	errs := make([]error, len(frames))

	var wg sync.WaitGroup
	for i, f := range frames {
		wg.Add(1)
		go func(i int, f geometry.Frame) {
			defer wg.Done()
			sols[i], errs[i] = geometry.SolvePositionAngle(cam, target, f, cfg)
		}(i, f)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("solve %s: %w", frames[i], err)
		}
	}
	return sols, nil
}

func parseFrames(s string) ([]geometry.Frame, error) {
	if strings.EqualFold(strings.TrimSpace(s), "both") {
		return []geometry.Frame{geometry.FrameHorizon, geometry.FrameStandard}, nil
	}
	f, err := geometry.ParseFrame(s)
	if err != nil {
		return nil, err
	}
	return []geometry.Frame{f}, nil
}

func parsePair(s string) (a, b float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("want two comma-separated numbers, got %q", s)
	}
	if a, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64); err != nil {
		return 0, 0, err
	}
	if b, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func writeJSON(rep *report.CalibrationReport, path string) error {
	if path == "-" {
		if err := rep.WriteJSON(os.Stdout); err != nil {
			return fmt.Errorf("write JSON to stdout: %w", err)
		}
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()
	if err := rep.WriteJSON(f); err != nil {
		return fmt.Errorf("write JSON to file: %w", err)
	}
	return nil
}
