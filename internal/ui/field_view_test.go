package ui

import (
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/ls-astrometry/internal/astro"
	"github.com/litescript/ls-astrometry/internal/geometry"
	"github.com/litescript/ls-astrometry/internal/platepar"
)

// orionCamera points the demo camera at Orion, which is above the eastern
// horizon at the demo reference time.
func orionCamera() platepar.CameraModel {
	m := platepar.Demo()
	m.RA = 84
	m.Dec = 0
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{0, 0},
		{180, 180},
		{-180, -180},
		{360, 0},
		{350, -10},
		{370, 10},
		{-190, 170},
		{540, 180},
	}

	for _, tt := range tests {
		got := normalizeAngle(tt.input)
		if math.Abs(got-tt.expected) > 0.001 {
			t.Errorf("normalizeAngle(%v) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestLerpAngle_ShortestPath(t *testing.T) {
	tests := []struct {
		from, to, t, expected float64
	}{
		{0, 90, 0.5, 45},
		{350, 10, 0.5, 360},
		{350, 10, 1.0, 370},
		{10, 350, 0.5, 0},
		{359, 1, 0.25, 359.5},
	}

	for _, tt := range tests {
		got := lerpAngle(tt.from, tt.to, tt.t)
		if math.Abs(got-tt.expected) > 0.001 {
			t.Errorf("lerpAngle(%v, %v, %v) = %v, want %v", tt.from, tt.to, tt.t, got, tt.expected)
		}
	}
}

func TestStarGlyph(t *testing.T) {
	var m FieldViewModel

	tests := []struct {
		mag   float64
		glyph rune
	}{
		{-1.46, glyphStarBright},
		{1.49, glyphStarBright},
		{1.5, glyphStarMedium},
		{2.9, glyphStarMedium},
		{magLimit, glyphStarMedium},
	}

	for _, tt := range tests {
		if g, _ := m.starGlyph(tt.mag); g != tt.glyph {
			t.Errorf("starGlyph(%v) = %q, want %q", tt.mag, g, tt.glyph)
		}
	}
}

func TestFieldView_RotateSolvesPositionAngle(t *testing.T) {
	m := NewFieldViewModel(platepar.Demo(), geometry.DefaultSolverConfig())
	before := geometry.RotationWrtHorizon(m.Camera())

	m, cmd := m.Update(key("right"))
	if cmd == nil {
		t.Fatal("rotation should start an animation")
	}
	if !m.animating {
		t.Fatal("expected animating state")
	}

	// Jump to the end of the animation.
	m.animStart = time.Now().Add(-2 * animDuration)
	m, _ = m.Update(animTickMsg(time.Now()))
	if m.animating {
		t.Fatal("animation should have finished")
	}

	after := geometry.RotationWrtHorizon(m.Camera())
	if d := astro.WrapDeg180(after - before - rotateStep); math.Abs(d) > 1e-3 {
		t.Errorf("rotation moved from %v to %v, want +%v", before, after, rotateStep)
	}
	if !strings.Contains(m.status, "horizon rotation") {
		t.Errorf("status = %q", m.status)
	}
}

func TestFieldView_Keys(t *testing.T) {
	cam := platepar.Demo()
	m := NewFieldViewModel(cam, geometry.DefaultSolverConfig())

	m, _ = m.Update(key("+"))
	if math.Abs(m.Camera().FScale-cam.FScale*scaleStep) > 1e-12 {
		t.Errorf("FScale = %v after +", m.Camera().FScale)
	}
	m, _ = m.Update(key("-"))
	if math.Abs(m.Camera().FScale-cam.FScale) > 1e-12 {
		t.Errorf("FScale = %v after + and -", m.Camera().FScale)
	}

	m, _ = m.Update(key("]"))
	m, _ = m.Update(key("]"))
	m, _ = m.Update(key("["))
	if m.offset != timeStep {
		t.Errorf("offset = %v, want %v", m.offset, timeStep)
	}
	if want := cam.JD + timeStep.Hours()/24; math.Abs(m.observationJD()-want) > 1e-12 {
		t.Errorf("observation JD = %v, want %v", m.observationJD(), want)
	}

	m, _ = m.Update(key("f"))
	if m.frame != geometry.FrameStandard {
		t.Errorf("frame = %v after f", m.frame)
	}
	m, _ = m.Update(key("n"))
	if m.labels {
		t.Error("labels still on after n")
	}

	if cam != platepar.Demo() {
		t.Error("viewer mutated the caller's model")
	}
}

func TestFieldView_RendersStars(t *testing.T) {
	m := NewFieldViewModel(orionCamera(), geometry.DefaultSolverConfig()).SetSize(120, 40)

	out := m.View()
	n := strings.Count(out, string(glyphStarBright)) + strings.Count(out, string(glyphStarMedium))
	if n < 3 {
		t.Errorf("expected several Orion stars, found %d glyphs", n)
	}
	for _, want := range []string{"Camera Field", "PA 35.00°", "FOV"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestFieldView_AxisDrawnAtCenter(t *testing.T) {
	for _, utc := range []float64{0, 2, -5.5} {
		cam := platepar.Demo()
		cam.UTCorr = utc

		m := NewFieldViewModel(cam, geometry.DefaultSolverConfig())
		m, _ = m.Update(key("]"))

		ra, dec := m.axis()
		xs, ys, err := m.project([]float64{ra}, []float64{dec})
		if err != nil {
			t.Fatalf("project() error: %v", err)
		}

		cx, cy := cam.Center()
		if d := math.Hypot(xs[0]-cx, ys[0]-cy); d > 0.5 {
			t.Errorf("UTCorr=%v: axis drawn at (%.1f, %.1f), %.1f px from center", utc, xs[0], ys[0], d)
		}
	}
}

func TestFieldView_TooSmall(t *testing.T) {
	m := NewFieldViewModel(platepar.Demo(), geometry.DefaultSolverConfig()).SetSize(10, 5)
	if got := m.View(); !strings.Contains(got, "larger terminal") {
		t.Errorf("View() = %q", got)
	}
}

func TestModel_QuitAndResize(t *testing.T) {
	var model tea.Model = New(platepar.Demo(), geometry.DefaultSolverConfig())

	if got := model.View(); got != "Initializing..." {
		t.Errorf("View() before size = %q", got)
	}

	model, _ = model.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	if !strings.Contains(model.View(), "ls-astrometry v") {
		t.Error("footer missing after resize")
	}

	_, cmd := model.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not produce tea.QuitMsg")
	}
}
