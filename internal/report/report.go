// Package report summarizes a camera model's calibration for export.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-astrometry/internal/astro"
	"github.com/litescript/ls-astrometry/internal/geometry"
	"github.com/litescript/ls-astrometry/internal/photometry"
	"github.com/litescript/ls-astrometry/internal/platepar"
	"github.com/litescript/ls-astrometry/internal/projection"
)

// CalibrationReport is the JSON-serializable summary of a camera model.
type CalibrationReport struct {
	GeneratedAt time.Time `json:"generated_at"`

	Station  StationExport  `json:"station"`
	Pointing PointingExport `json:"pointing"`
	Field    FieldExport    `json:"field"`

	Photometry *PhotometryExport `json:"photometry,omitempty"`
	Solutions  []SolutionExport  `json:"solutions,omitempty"`
	Tracks     []TrackExport     `json:"tracks,omitempty"`

	model platepar.CameraModel
}

// StationExport describes where the camera is.
type StationExport struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Elev float64 `json:"elev_m"`
}

// PointingExport describes the optical axis at the reference time.
type PointingExport struct {
	Time     time.Time `json:"time"`
	JD       float64   `json:"jd"`
	RA       float64   `json:"ra"`
	Dec      float64   `json:"dec"`
	Az       float64   `json:"az"`
	Alt      float64   `json:"alt"`
	PosAngle float64   `json:"pos_angle"`
	SunAlt   float64   `json:"sun_alt"`
	Twilight string    `json:"twilight"`
}

// FieldExport holds the derived field geometry.
type FieldExport struct {
	XRes             int     `json:"x_res"`
	YRes             int     `json:"y_res"`
	FScale           float64 `json:"f_scale"`
	FOVH             float64 `json:"fov_h"`
	FOVV             float64 `json:"fov_v"`
	FOVRadius        float64 `json:"fov_radius"`
	RotationHorizon  float64 `json:"rotation_wrt_horizon"`
	RotationStandard float64 `json:"rotation_wrt_standard"`
}

// PhotometryExport is the outcome of a photometric fit.
type PhotometryExport struct {
	Stars  int     `json:"stars"`
	Offset float64 `json:"offset"`
	StdDev float64 `json:"stddev"`
}

// SolutionExport records a position-angle solve.
type SolutionExport struct {
	Frame  string  `json:"frame"`
	Target float64 `json:"target"`
	geometry.Solution
}

// TrackExport is a calibrated meteor track.
type TrackExport struct {
	Start  time.Time             `json:"start"`
	SunAlt float64               `json:"sun_alt"`
	Points []projection.SkyPoint `json:"points"`
}

// Build computes the report for m.
func Build(m platepar.CameraModel, now time.Time) *CalibrationReport {
	az, alt := astro.EquatorialToHorizontal(m.JD, m.Lon, m.Lat, m.RA, m.Dec)
	h, v := geometry.FieldOfView(m)
	sunAlt := astro.SunAltitude(m.JD, m.Lon, m.Lat)

	return &CalibrationReport{
		GeneratedAt: now,
		model:       m,
		Station:     StationExport{Lat: m.Lat, Lon: m.Lon, Elev: m.Elev},
		Pointing: PointingExport{
			Time:     astro.JDToTime(m.JD).Round(time.Millisecond),
			JD:       m.JD,
			RA:       m.RA,
			Dec:      m.Dec,
			Az:       az,
			Alt:      alt,
			PosAngle: m.PosAngle,
			SunAlt:   sunAlt,
			Twilight: astro.TwilightAt(sunAlt).String(),
		},
		Field: FieldExport{
			XRes:             m.XRes,
			YRes:             m.YRes,
			FScale:           m.FScale,
			FOVH:             h,
			FOVV:             v,
			FOVRadius:        geometry.FOVRadius(m),
			RotationHorizon:  geometry.RotationWrtHorizon(m),
			RotationStandard: geometry.RotationWrtStandard(m),
		},
	}
}

// AddPhotometry attaches a photometric fit over n stars.
func (r *CalibrationReport) AddPhotometry(res photometry.FitResult, n int) {
	r.Photometry = &PhotometryExport{Stars: n, Offset: res.Offset, StdDev: res.StdDev}
}

// AddSolution attaches a position-angle solve.
func (r *CalibrationReport) AddSolution(frame geometry.Frame, target float64, sol geometry.Solution) {
	r.Solutions = append(r.Solutions, SolutionExport{Frame: frame.String(), Target: target, Solution: sol})
}

// AddTrack attaches a calibrated meteor track observed from the station.
// start is the uncorrected time stamp, as in projection.Track.
func (r *CalibrationReport) AddTrack(start time.Time, points []projection.SkyPoint) {
	sunAlt := astro.SunAltitude(projection.CorrectedJD(r.model, start), r.Station.Lon, r.Station.Lat)
	r.Tracks = append(r.Tracks, TrackExport{Start: start, SunAlt: sunAlt, Points: points})
}

// WriteJSON writes the report as indented JSON.
func (r *CalibrationReport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("135"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
)

// WriteSummary writes a human-readable summary. With styled set, labels
// and values are colored for a terminal.
func (r *CalibrationReport) WriteSummary(w io.Writer, styled bool) {
	paint := func(s lipgloss.Style, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}
	row := func(label, format string, args ...any) {
		fmt.Fprintf(w, "%s %s\n", paint(labelStyle, fmt.Sprintf("%-22s", label)), paint(valueStyle, fmt.Sprintf(format, args...)))
	}

	fmt.Fprintln(w, paint(titleStyle, fmt.Sprintf("Calibration @ %s", r.Pointing.Time.Format(time.RFC3339))))
	fmt.Fprintln(w, strings.Repeat("─", 60))

	row("Station", "%.4f°, %.4f°, %.0f m", r.Station.Lat, r.Station.Lon, r.Station.Elev)
	row("Pointing RA/Dec", "%.4f°, %+.4f°", r.Pointing.RA, r.Pointing.Dec)
	row("Pointing Az/Alt", "%.4f°, %+.4f°", r.Pointing.Az, r.Pointing.Alt)
	row("Position angle", "%.4f°", r.Pointing.PosAngle)
	row("Sun altitude", "%+.2f° (%s)", r.Pointing.SunAlt, r.Pointing.Twilight)
	row("Resolution", "%dx%d @ %.3f px/°", r.Field.XRes, r.Field.YRes, r.Field.FScale)
	row("Field of view", "%.2f° x %.2f° (r=%.2f°)", r.Field.FOVH, r.Field.FOVV, r.Field.FOVRadius)
	row("Rotation wrt horizon", "%+.4f°", r.Field.RotationHorizon)
	row("Rotation wrt standard", "%.4f°", r.Field.RotationStandard)

	if p := r.Photometry; p != nil {
		row("Photometric offset", "%.3f ± %.3f mag (%d stars)", p.Offset, p.StdDev, p.Stars)
	}

	for _, s := range r.Solutions {
		line := fmt.Sprintf("%.4f° (residual %.2e, %d evals)", s.PosAngle, s.Residual, s.Evaluations)
		if !s.Converged {
			line += " " + paint(warnStyle, "not converged")
		}
		row(fmt.Sprintf("PA for %s %.1f°", s.Frame, s.Target), "%s", line)
	}

	for _, tr := range r.Tracks {
		fmt.Fprintln(w)
		fmt.Fprintln(w, paint(titleStyle, fmt.Sprintf("Track @ %s (%d points)", tr.Start.Format(time.RFC3339), len(tr.Points))))
		if tw := astro.TwilightAt(tr.SunAlt); !tw.Usable() {
			fmt.Fprintln(w, paint(warnStyle, fmt.Sprintf("Sun at %+.1f° (%s)", tr.SunAlt, tw)))
		}
		fmt.Fprintf(w, "%-16s %-10s %-10s %-10s %-10s %-7s\n", "JD", "RA", "Dec", "Az", "Alt", "Mag")
		for _, p := range tr.Points {
			fmt.Fprintf(w, "%-16.6f %-10.4f %-+10.4f %-10.4f %-+10.4f %-+7.2f\n", p.JD, p.RA, p.Dec, p.Az, p.Alt, p.Mag)
		}
	}
}
