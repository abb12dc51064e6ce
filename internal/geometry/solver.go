package geometry

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/optimize"

	"github.com/litescript/ls-astrometry/internal/astro"
	"github.com/litescript/ls-astrometry/internal/platepar"
)

// ErrUnknownFrame is returned for a frame other than horizon or standard.
var ErrUnknownFrame = errors.New("unknown rotation frame")

// Frame selects the reference a field rotation is measured against.
type Frame int

const (
	FrameHorizon Frame = iota
	FrameStandard
)

func (f Frame) String() string {
	switch f {
	case FrameHorizon:
		return "horizon"
	case FrameStandard:
		return "standard"
	default:
		return fmt.Sprintf("Frame(%d)", int(f))
	}
}

// ParseFrame parses "horizon" or "standard" (case insensitive).
func ParseFrame(s string) (Frame, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "horizon", "horizontal", "alt-az", "altaz":
		return FrameHorizon, nil
	case "standard", "equatorial", "radec":
		return FrameStandard, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFrame, s)
	}
}

func (f Frame) rotation() (func(platepar.CameraModel, float64) float64, error) {
	switch f {
	case FrameHorizon:
		return rotationWrtHorizonAt, nil
	case FrameStandard:
		return rotationWrtStandardAt, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownFrame, f)
	}
}

// Rotation evaluates the rotation of m in frame f.
func (f Frame) Rotation(m platepar.CameraModel) (float64, error) {
	rot, err := f.rotation()
	if err != nil {
		return 0, err
	}
	return rot(m, m.PosAngle), nil
}

// SolverConfig bounds the position-angle search.
type SolverConfig struct {
	// Tolerance is the residual in degrees below which a solution counts
	// as converged.
	Tolerance float64 `yaml:"tolerance"`
	// MaxEvaluations caps rotation evaluations per attempt.
	MaxEvaluations int `yaml:"max_evaluations"`
	// SimplexSize is the initial simplex size in degrees.
	SimplexSize float64 `yaml:"simplex_size"`
	// Restarts is the number of extra attempts, each seeded at the best
	// point so far, made while the residual is above Tolerance.
	Restarts int `yaml:"restarts"`
}

// DefaultSolverConfig returns the settings used when none are configured.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		Tolerance:      1e-4,
		MaxEvaluations: 2000,
		SimplexSize:    1,
		Restarts:       1,
	}
}

func (c SolverConfig) withDefaults() SolverConfig {
	d := DefaultSolverConfig()
	if !(c.Tolerance > 0) {
		c.Tolerance = d.Tolerance
	}
	if c.MaxEvaluations <= 0 {
		c.MaxEvaluations = d.MaxEvaluations
	}
	if !(c.SimplexSize > 0) {
		c.SimplexSize = d.SimplexSize
	}
	if c.Restarts < 0 {
		c.Restarts = 0
	}
	return c
}

// Solution is the result of a position-angle search. The search always
// yields its best point; Converged reports whether that point reaches the
// configured tolerance.
type Solution struct {
	PosAngle    float64 `json:"pos_angle"`
	Residual    float64 `json:"residual"`
	Evaluations int     `json:"evaluations"`
	Converged   bool    `json:"converged"`
}

// SolvePositionAngle searches for the position angle at which the rotation
// of m in frame equals target (mod 360). The search is local and seeded at
// m.PosAngle, so the seed should be the best available estimate. m itself
// is left unchanged.
func SolvePositionAngle(m platepar.CameraModel, target float64, frame Frame, cfg SolverConfig) (Solution, error) {
	rot, err := frame.rotation()
	if err != nil {
		return Solution{}, err
	}
	if err := m.Validate(); err != nil {
		return Solution{}, fmt.Errorf("solve position angle: %w", err)
	}
	cfg = cfg.withDefaults()

	// Zero exactly when both angles agree mod 360, with no jump at the wrap.
	residual := func(p float64) float64 {
		d := astro.AngleDistance(target, rot(m, p))
		return 180 - math.Abs(d-180)
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 { return residual(x[0]) },
	}

	bestX := m.PosAngle
	sol := Solution{Residual: residual(bestX), Evaluations: 1}

	for attempt := 0; attempt <= cfg.Restarts && sol.Residual > cfg.Tolerance; attempt++ {
		settings := &optimize.Settings{
			FuncEvaluations: cfg.MaxEvaluations,
			Converger: &optimize.FunctionConverge{
				Absolute:   cfg.Tolerance * 1e-6,
				Iterations: 50,
			},
		}

		res, err := optimize.Minimize(problem, []float64{bestX}, settings, &optimize.NelderMead{SimplexSize: cfg.SimplexSize})
		if res == nil {
			if err != nil {
				return Solution{}, fmt.Errorf("solve position angle: %w", err)
			}
			break
		}

		sol.Evaluations += res.Stats.FuncEvaluations
		if res.F < sol.Residual {
			bestX = res.X[0]
			sol.Residual = res.F
		}
	}

	sol.PosAngle = astro.NormalizeDeg(bestX)
	sol.Converged = sol.Residual <= cfg.Tolerance
	return sol, nil
}
