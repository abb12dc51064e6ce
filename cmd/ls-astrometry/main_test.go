package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/litescript/ls-astrometry/internal/config"
	"github.com/litescript/ls-astrometry/internal/geometry"
	"github.com/litescript/ls-astrometry/internal/logging"
	"github.com/litescript/ls-astrometry/internal/platepar"
)

func resetFlags() {
	summaryMode, jsonPath, solveRot, frameName = false, "", "", "horizon"
	xyArg, radecArg, atTime = "", "", ""
	photometryMode, tracksMode, tuiMode = false, false, false
}

func TestParsePair(t *testing.T) {
	tests := []struct {
		in      string
		a, b    float64
		wantErr bool
	}{
		{"640,360", 640, 360, false},
		{" 12.5 , -7 ", 12.5, -7, false},
		{"1,2,3", 0, 0, true},
		{"x,1", 0, 0, true},
		{"", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			a, b, err := parsePair(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parsePair(%q) expected error", tt.in)
				}
				return
			}
			if err != nil || a != tt.a || b != tt.b {
				t.Errorf("parsePair(%q) = %v, %v, %v", tt.in, a, b, err)
			}
		})
	}
}

func TestParseFrames(t *testing.T) {
	fs, err := parseFrames("both")
	if err != nil || len(fs) != 2 {
		t.Errorf("parseFrames(both) = %v, %v", fs, err)
	}
	fs, err = parseFrames("standard")
	if err != nil || len(fs) != 1 || fs[0] != geometry.FrameStandard {
		t.Errorf("parseFrames(standard) = %v, %v", fs, err)
	}
	if _, err := parseFrames("ecliptic"); !errors.Is(err, geometry.ErrUnknownFrame) {
		t.Errorf("parseFrames(ecliptic) error = %v", err)
	}
}

func TestSolveFrames_Concurrent(t *testing.T) {
	cam := platepar.Demo()
	frames := []geometry.Frame{geometry.FrameHorizon, geometry.FrameStandard}

	sols, err := solveFrames(cam, 20, frames, geometry.DefaultSolverConfig())
	if err != nil {
		t.Fatalf("solveFrames() error: %v", err)
	}
	for i, sol := range sols {
		if !sol.Converged {
			t.Errorf("%v: not converged (%+v)", frames[i], sol)
		}
	}
}

func TestRunHeadless_Modes(t *testing.T) {
	defer resetFlags()

	tests := []struct {
		name  string
		setup func()
		want  []string
	}{
		{"summary", func() { summaryMode = true }, []string{"Calibration @", "Field of view"}},
		{"xy", func() { xyArg = "640,360" }, []string{"(640.00, 360.00) -> RA"}},
		{"radec", func() { radecArg = "84,0" }, []string{"RA 84.00000° Dec +0.00000° ->"}},
		{"solve", func() { solveRot = "15"; frameName = "both" }, []string{"PA for horizon 15.0°", "PA for standard 15.0°"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			tt.setup()

			var buf bytes.Buffer
			if err := runHeadless(&buf, config.Default(), logging.Discard(), false); err != nil {
				t.Fatalf("runHeadless() error: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestRunHeadless_Errors(t *testing.T) {
	defer resetFlags()

	tests := []struct {
		name  string
		setup func()
	}{
		{"bad xy", func() { xyArg = "nope" }},
		{"bad rotation", func() { solveRot = "abc" }},
		{"bad frame", func() { solveRot = "10"; frameName = "galactic" }},
		{"bad time", func() { xyArg = "1,1"; atTime = "yesterday" }},
		{"no photometry stars", func() { photometryMode = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			tt.setup()

			var buf bytes.Buffer
			if err := runHeadless(&buf, config.Default(), logging.Discard(), false); err == nil {
				t.Errorf("expected an error, output:\n%s", buf.String())
			}
		})
	}
}
