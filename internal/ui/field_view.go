package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-astrometry/internal/astro"
	"github.com/litescript/ls-astrometry/internal/geometry"
	"github.com/litescript/ls-astrometry/internal/platepar"
	"github.com/litescript/ls-astrometry/internal/projection"
)

const (
	// Animation
	animDuration  = 400 * time.Millisecond
	animFrameRate = 30 * time.Millisecond

	// Controls
	rotateStep = 1.0              // degrees of field rotation per key
	scaleStep  = 1.1              // image-scale factor per key
	timeStep   = 10 * time.Minute // time offset per key
	magLimit   = 3.0

	// Star glyphs by magnitude
	glyphStarBright = '✶' // mag < 1.5
	glyphStarMedium = '✸' // mag 1.5 to magLimit

	// Star colors
	colorStarBright = "255" // bright white
	colorStarMedium = "250" // medium gray

	colorCrosshair = "135"
	colorLabel     = "60"
	colorBorder    = "238"
)

// FieldViewModel renders the catalog stars as the camera would see them.
type FieldViewModel struct {
	width  int
	height int

	cam    platepar.CameraModel
	solver geometry.SolverConfig
	frame  geometry.Frame

	// Offset of the displayed instant from the model's reference time.
	offset time.Duration

	labels bool
	status string

	// Animation of the position angle after a rotation step
	animating   bool
	animStartPA float64
	animTargPA  float64
	animStart   time.Time

	starCatalog astro.StarCatalog
}

// NewFieldViewModel creates a viewer for cam.
func NewFieldViewModel(cam platepar.CameraModel, solver geometry.SolverConfig) FieldViewModel {
	return FieldViewModel{
		cam:         cam,
		solver:      solver,
		frame:       geometry.FrameHorizon,
		labels:      true,
		starCatalog: astro.DefaultStarCatalog(),
	}
}

// SetSize updates the viewport size.
func (m FieldViewModel) SetSize(width, height int) FieldViewModel {
	m.width = width
	m.height = height
	return m
}

// Camera returns the model currently displayed.
func (m FieldViewModel) Camera() platepar.CameraModel {
	return m.cam
}

// animTickMsg is sent during animation
type animTickMsg time.Time

func animTick() tea.Cmd {
	return tea.Tick(animFrameRate, func(t time.Time) tea.Msg {
		return animTickMsg(t)
	})
}

// Update handles messages.
func (m FieldViewModel) Update(msg tea.Msg) (FieldViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "left", "h":
			return m.rotate(-rotateStep)
		case "right", "l":
			return m.rotate(rotateStep)
		case "+", "=":
			m.cam = m.cam.WithScale(m.cam.FScale * scaleStep)
		case "-", "_":
			m.cam = m.cam.WithScale(m.cam.FScale / scaleStep)
		case "[":
			m.offset -= timeStep
		case "]":
			m.offset += timeStep
		case "0":
			m.offset = 0
		case "f":
			m = m.toggleFrame()
		case "n":
			m.labels = !m.labels
		}

	case animTickMsg:
		if m.animating {
			return m.updateAnimation()
		}
	}

	return m, nil
}

func (m FieldViewModel) toggleFrame() FieldViewModel {
	if m.frame == geometry.FrameHorizon {
		m.frame = geometry.FrameStandard
	} else {
		m.frame = geometry.FrameHorizon
	}
	return m
}

// rotate turns the field by delta degrees in the active frame, solving for
// the position angle that produces the new rotation.
func (m FieldViewModel) rotate(delta float64) (FieldViewModel, tea.Cmd) {
	if m.animating {
		m.cam = m.cam.WithPosAngle(m.animTargPA)
		m.animating = false
	}

	current, err := m.frame.Rotation(m.cam)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	target := current + delta

	sol, err := geometry.SolvePositionAngle(m.cam, target, m.frame, m.solver)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}

	m.status = fmt.Sprintf("%s rotation %.2f° → PA %.3f°", m.frame, astro.NormalizeDeg(target), sol.PosAngle)
	if !sol.Converged {
		m.status += fmt.Sprintf(" (not converged, residual %.2e)", sol.Residual)
	}

	m.animating = true
	m.animStartPA = m.cam.PosAngle
	m.animTargPA = sol.PosAngle
	m.animStart = time.Now()

	return m, animTick()
}

func (m FieldViewModel) updateAnimation() (FieldViewModel, tea.Cmd) {
	elapsed := time.Since(m.animStart)
	t := float64(elapsed) / float64(animDuration)

	if t >= 1.0 {
		m.animating = false
		m.cam = m.cam.WithPosAngle(m.animTargPA)
		return m, nil
	}

	// Ease-out cubic
	t = 1 - math.Pow(1-t, 3)
	m.cam = m.cam.WithPosAngle(astro.NormalizeDeg(lerpAngle(m.animStartPA, m.animTargPA, t)))

	return m, animTick()
}

// observationJD is the UT corrected Julian date of the displayed instant,
// on the same scale as the model's reference JD.
func (m FieldViewModel) observationJD() float64 {
	return m.cam.JD + m.offset.Hours()/24
}

// clockJD is observationJD before the UT correction, the date SkyToPixel
// takes.
func (m FieldViewModel) clockJD() float64 {
	return m.observationJD() + m.cam.UTCorr/24
}

// View renders the field view.
func (m FieldViewModel) View() string {
	if m.width < 20 || m.height < 10 {
		return "Field view requires larger terminal"
	}

	viewHeight := m.height - 4
	viewWidth := m.width

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderFieldCanvas(viewWidth, viewHeight))
	b.WriteString("\n")
	b.WriteString(m.renderStatus())

	return b.String()
}

func (m FieldViewModel) renderHeader() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("135")) // violet
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))               // muted purple
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229"))           // gold

	title := titleStyle.Render("Camera Field")

	h, v := geometry.FieldOfView(m.cam)
	fov := dimStyle.Render(fmt.Sprintf("FOV %.1f°×%.1f°", h, v))

	rotH := geometry.RotationWrtHorizon(m.cam)
	rotS := geometry.RotationWrtStandard(m.cam)
	var rot string
	if m.frame == geometry.FrameHorizon {
		rot = accentStyle.Render(fmt.Sprintf("Rot(h) %+.2f°", rotH)) + dimStyle.Render(fmt.Sprintf(" Rot(s) %.2f°", rotS))
	} else {
		rot = dimStyle.Render(fmt.Sprintf("Rot(h) %+.2f° ", rotH)) + accentStyle.Render(fmt.Sprintf("Rot(s) %.2f°", rotS))
	}

	pa := accentStyle.Render(fmt.Sprintf("PA %.2f°", m.cam.PosAngle))
	when := dimStyle.Render(astro.JDToTime(m.observationJD()).Round(time.Second).Format("2006-01-02 15:04:05Z"))

	return fmt.Sprintf("%s | %s | %s | %s | %s", title, pa, rot, fov, when)
}

func (m FieldViewModel) renderStatus() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorLabel))
	help := dimStyle.Render("←/→ rotate  +/- scale  [/] time  f frame  n labels  q quit")

	if m.status == "" {
		return help
	}
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
	return accentStyle.Render(m.status) + "\n" + help
}

// starPos tracks a drawn star for label rendering.
type starPos struct {
	x, y int
	name string
}

func (m FieldViewModel) renderFieldCanvas(width, height int) string {
	canvas := make([][]rune, height)
	colors := make([][]lipgloss.Color, height)
	for y := 0; y < height; y++ {
		canvas[y] = make([]rune, width)
		colors[y] = make([]lipgloss.Color, width)
		for x := 0; x < width; x++ {
			canvas[y][x] = ' '
			colors[y][x] = "236"
		}
	}

	m.drawBorder(canvas, colors, width, height)

	positions := m.drawStars(canvas, colors, width, height)
	if m.labels {
		m.renderLabels(canvas, colors, width, positions)
	}

	// Optical axis
	cx, cy := width/2, height/2
	canvas[cy][cx] = '+'
	colors[cy][cx] = colorCrosshair

	var b strings.Builder
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			style := lipgloss.NewStyle().Foreground(colors[y][x])
			b.WriteString(style.Render(string(canvas[y][x])))
		}
		if y < height-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

// axis returns the RA/Dec of the image center at the displayed instant.
func (m FieldViewModel) axis() (ra, dec float64) {
	cx, cy := m.cam.Center()
	ra, dec, _, _ = projection.PixelToRADec(m.cam, m.observationJD(), cx, cy)
	return ra, dec
}

// project maps sky positions to sensor pixels at the displayed instant.
func (m FieldViewModel) project(ras, decs []float64) (xs, ys []float64, err error) {
	return projection.SkyToPixel(m.cam, ras, decs, m.clockJD())
}

func (m FieldViewModel) drawBorder(canvas [][]rune, colors [][]lipgloss.Color, width, height int) {
	corners := []struct {
		x, y  int
		glyph rune
	}{
		{0, 0, '┌'},
		{width - 1, 0, '┐'},
		{0, height - 1, '└'},
		{width - 1, height - 1, '┘'},
	}
	for _, c := range corners {
		canvas[c.y][c.x] = c.glyph
		colors[c.y][c.x] = colorBorder
	}
}

// drawStars projects the visible catalog stars onto the canvas, scaling
// sensor pixels to terminal cells.
func (m FieldViewModel) drawStars(canvas [][]rune, colors [][]lipgloss.Color, width, height int) []starPos {
	jd := m.observationJD()
	ra, dec := m.axis()

	stars := m.starCatalog.Within(ra, dec, geometry.FOVRadius(m.cam), magLimit)
	if len(stars) == 0 {
		return nil
	}

	ras, decs, _ := astro.Coordinates(stars)
	xs, ys, err := m.project(ras, decs)
	if err != nil {
		return nil
	}

	var positions []starPos
	for i, star := range stars {
		if _, alt := astro.EquatorialToHorizontal(jd, m.cam.Lon, m.cam.Lat, star.RAdeg, star.DecDeg); alt < 0 {
			continue
		}

		x, y, ok := m.pixelToCell(xs[i], ys[i], width, height)
		if !ok {
			continue
		}

		glyph, color := m.starGlyph(star.Mag)
		canvas[y][x] = glyph
		colors[y][x] = color
		positions = append(positions, starPos{x: x, y: y, name: star.Name})
	}
	return positions
}

// pixelToCell maps a sensor pixel to a canvas cell.
func (m FieldViewModel) pixelToCell(px, py float64, width, height int) (int, int, bool) {
	if math.IsNaN(px) || math.IsNaN(py) {
		return 0, 0, false
	}
	if px < 0 || py < 0 || px >= float64(m.cam.XRes) || py >= float64(m.cam.YRes) {
		return 0, 0, false
	}

	x := int(px / float64(m.cam.XRes) * float64(width))
	y := int(py / float64(m.cam.YRes) * float64(height))
	if x < 0 || x >= width || y < 0 || y >= height {
		return 0, 0, false
	}
	return x, y, true
}

// renderLabels writes star names to the right of their glyphs where they
// fit without overwriting another star.
func (m FieldViewModel) renderLabels(canvas [][]rune, colors [][]lipgloss.Color, width int, positions []starPos) {
	for _, p := range positions {
		start := p.x + 2
		end := start + len([]rune(p.name))
		if end >= width {
			continue
		}

		free := true
		for x := start - 1; x < end; x++ {
			if canvas[p.y][x] != ' ' {
				free = false
				break
			}
		}
		if !free {
			continue
		}

		for i, r := range []rune(p.name) {
			canvas[p.y][start+i] = r
			colors[p.y][start+i] = colorLabel
		}
	}
}

// starGlyph returns the glyph and color for a star of the given magnitude.
// Only stars up to magLimit are drawn.
func (m FieldViewModel) starGlyph(mag float64) (rune, lipgloss.Color) {
	switch {
	case mag < 1.5:
		return glyphStarBright, colorStarBright
	default:
		return glyphStarMedium, colorStarMedium
	}
}

// normalizeAngle wraps an angle to [-180, 180].
func normalizeAngle(a float64) float64 {
	for a > 180 {
		a -= 360
	}
	for a < -180 {
		a += 360
	}
	return a
}

// lerpAngle interpolates between angles, taking shortest path
func lerpAngle(a, b, t float64) float64 {
	diff := normalizeAngle(b - a)
	return a + diff*t
}
