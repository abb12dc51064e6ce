package geometry

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/litescript/ls-astrometry/internal/astro"
	"github.com/litescript/ls-astrometry/internal/platepar"
)

func angleErr(a, b float64) float64 {
	d := astro.AngleDistance(a, b)
	return math.Min(d, 360-d)
}

func TestFieldOfView_Undistorted(t *testing.T) {
	m := platepar.Demo()
	m.XPolyFwd = platepar.Poly{}
	m.YPolyFwd = platepar.Poly{}

	h, v := FieldOfView(m)
	if math.Abs(h-1280.0/15) > 1e-6 {
		t.Errorf("horizontal FOV = %v, want %v", h, 1280.0/15)
	}
	if math.Abs(v-720.0/15) > 1e-6 {
		t.Errorf("vertical FOV = %v, want %v", v, 720.0/15)
	}
	if r := FOVRadius(m); math.Abs(r-math.Hypot(h, v)) > 1e-12 {
		t.Errorf("FOVRadius = %v, want %v", r, math.Hypot(h, v))
	}
}

func TestFieldOfView_DecreasesWithScale(t *testing.T) {
	m := platepar.Demo()

	prevH, prevV := math.Inf(1), math.Inf(1)
	for _, f := range []float64{8, 10, 15, 20, 30, 60} {
		h, v := FieldOfView(m.WithScale(f))
		if !(h < prevH) || !(v < prevV) {
			t.Errorf("F=%v: FOV (%v, %v) did not shrink from (%v, %v)", f, h, v, prevH, prevV)
		}
		prevH, prevV = h, v
	}
}

func TestRotation_Ranges(t *testing.T) {
	m := platepar.Demo()

	for pa := -720.0; pa <= 720; pa += 15 {
		c := m.WithPosAngle(pa)

		if r := RotationWrtHorizon(c); r <= -180 || r > 180 {
			t.Errorf("pa=%v: horizon rotation %v outside (-180, 180]", pa, r)
		}
		if r := RotationWrtStandard(c); r < 0 || r >= 360 {
			t.Errorf("pa=%v: standard rotation %v outside [0, 360)", pa, r)
		}
	}
}

func TestRotation_FullTurnInvariance(t *testing.T) {
	m := platepar.Demo()

	for _, pa := range []float64{0, 35, 123.4, 270, 359.9} {
		a := m.WithPosAngle(pa)
		b := m.WithPosAngle(pa + 360)

		if d := angleErr(RotationWrtHorizon(a), RotationWrtHorizon(b)); d > 1e-9 {
			t.Errorf("pa=%v: horizon rotation changed by %v under +360", pa, d)
		}
		if d := angleErr(RotationWrtStandard(a), RotationWrtStandard(b)); d > 1e-9 {
			t.Errorf("pa=%v: standard rotation changed by %v under +360", pa, d)
		}
	}
}

func TestRotation_FollowsPositionAngle(t *testing.T) {
	m := platepar.Demo()

	// A change of position angle turns the field; the horizon rotation
	// must not be constant.
	r0 := RotationWrtHorizon(m.WithPosAngle(0))
	r90 := RotationWrtHorizon(m.WithPosAngle(90))
	if angleErr(r0, r90) < 45 {
		t.Errorf("rotation barely moved for 90° of position angle: %v -> %v", r0, r90)
	}
}

func TestSolvePositionAngle_SelfConsistent(t *testing.T) {
	m := platepar.Demo()
	cfg := DefaultSolverConfig()

	tests := []struct {
		frame  Frame
		target float64
	}{
		{FrameHorizon, 0},
		{FrameHorizon, 30},
		{FrameHorizon, -45},
		{FrameHorizon, 120},
		{FrameHorizon, 179},
		{FrameHorizon, -170},
		{FrameStandard, 0},
		{FrameStandard, 45},
		{FrameStandard, 200},
		{FrameStandard, 359},
	}

	for _, tt := range tests {
		t.Run(tt.frame.String(), func(t *testing.T) {
			sol, err := SolvePositionAngle(m, tt.target, tt.frame, cfg)
			if err != nil {
				t.Fatalf("SolvePositionAngle() error: %v", err)
			}
			if sol.PosAngle < 0 || sol.PosAngle >= 360 {
				t.Errorf("PosAngle %v outside [0, 360)", sol.PosAngle)
			}

			got, _ := tt.frame.Rotation(m.WithPosAngle(sol.PosAngle))
			if d := angleErr(got, tt.target); d > 1e-3 {
				t.Errorf("target %v: rotation at solved PA %v is %v (off by %v)", tt.target, sol.PosAngle, got, d)
			}
			if !sol.Converged {
				t.Errorf("target %v: not converged, residual %v", tt.target, sol.Residual)
			}
		})
	}
}

func TestSolvePositionAngle_NearCelestialPoles(t *testing.T) {
	north := platepar.Demo()
	north.Dec = 90

	south := platepar.Demo()
	south.Lat, south.Lon = -33.93, 18.42
	south.RA, south.Dec = 0, -90

	nearNorth := platepar.Demo()
	nearNorth.Dec = 85

	tests := []struct {
		name   string
		m      platepar.CameraModel
		frame  Frame
		target float64
	}{
		{"north pole horizon", north, FrameHorizon, 20},
		{"north pole horizon negative", north, FrameHorizon, -135},
		{"south pole horizon", south, FrameHorizon, 60},
		{"south pole horizon negative", south, FrameHorizon, -10},
		{"near north pole standard", nearNorth, FrameStandard, 10},
		{"near north pole standard wide", nearNorth, FrameStandard, 190},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sol, err := SolvePositionAngle(tt.m, tt.target, tt.frame, DefaultSolverConfig())
			if err != nil {
				t.Fatalf("SolvePositionAngle() error: %v", err)
			}
			got, _ := tt.frame.Rotation(tt.m.WithPosAngle(sol.PosAngle))
			if d := angleErr(got, tt.target); d > 1e-3 || !sol.Converged {
				t.Errorf("target %v: rotation %v at PA %v (off by %v, converged %v)",
					tt.target, got, sol.PosAngle, d, sol.Converged)
			}
		})
	}
}

func TestSolvePositionAngle_DoesNotMutate(t *testing.T) {
	m := platepar.Demo()
	before := m

	if _, err := SolvePositionAngle(m, 90, FrameHorizon, DefaultSolverConfig()); err != nil {
		t.Fatalf("SolvePositionAngle() error: %v", err)
	}
	if m != before {
		t.Error("model changed during solve")
	}
}

func TestSolvePositionAngle_Concurrent(t *testing.T) {
	m := platepar.Demo()
	targets := []float64{-90, -10, 25, 60, 150}

	type result struct {
		frame Frame
		sol   Solution
		err   error
	}
	results := make([]result, 2*len(targets))

	var wg sync.WaitGroup
	for i, target := range targets {
		for j, frame := range []Frame{FrameHorizon, FrameStandard} {
			wg.Add(1)
			go func(slot int, frame Frame, target float64) {
				defer wg.Done()
				sol, err := SolvePositionAngle(m, target, frame, DefaultSolverConfig())
				results[slot] = result{frame, sol, err}
			}(2*i+j, frame, target)
		}
	}
	wg.Wait()

	for i, r := range results {
		if r.err != nil {
			t.Fatalf("solve %d: %v", i, r.err)
		}
		target := targets[i/2]
		got, _ := r.frame.Rotation(m.WithPosAngle(r.sol.PosAngle))
		if d := angleErr(got, target); d > 1e-3 {
			t.Errorf("%v target %v: off by %v", r.frame, target, d)
		}
	}
}

func TestSolvePositionAngle_BudgetExhausted(t *testing.T) {
	m := platepar.Demo()
	start := RotationWrtHorizon(m)

	cfg := SolverConfig{Tolerance: 1e-4, MaxEvaluations: 3, SimplexSize: 0.1}
	sol, err := SolvePositionAngle(m, start+150, FrameHorizon, cfg)
	if err != nil {
		t.Fatalf("SolvePositionAngle() error: %v", err)
	}
	if sol.Converged {
		t.Errorf("expected non-convergence with 3 evaluations, got %+v", sol)
	}
	if sol.Residual > 150+1e-6 {
		t.Errorf("best residual %v worse than the seed", sol.Residual)
	}
}

func TestSolvePositionAngle_Errors(t *testing.T) {
	m := platepar.Demo()

	if _, err := SolvePositionAngle(m, 0, Frame(7), DefaultSolverConfig()); !errors.Is(err, ErrUnknownFrame) {
		t.Errorf("unknown frame error = %v", err)
	}

	bad := m
	bad.FScale = 0
	if _, err := SolvePositionAngle(bad, 0, FrameHorizon, DefaultSolverConfig()); !errors.Is(err, platepar.ErrInvalidModel) {
		t.Errorf("invalid model error = %v", err)
	}
}

func TestParseFrame(t *testing.T) {
	tests := []struct {
		in      string
		want    Frame
		wantErr bool
	}{
		{"horizon", FrameHorizon, false},
		{" Standard ", FrameStandard, false},
		{"altaz", FrameHorizon, false},
		{"equatorial", FrameStandard, false},
		{"galactic", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFrame(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFrame) {
					t.Errorf("ParseFrame(%q) error = %v, want ErrUnknownFrame", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseFrame(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
			}
		})
	}
}
