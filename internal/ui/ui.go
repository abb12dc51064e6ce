// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-astrometry/internal/geometry"
	"github.com/litescript/ls-astrometry/internal/platepar"
	"github.com/litescript/ls-astrometry/internal/version"
)

// Model is the root Bubble Tea model.
type Model struct {
	width  int
	height int
	ready  bool

	field FieldViewModel
}

// New creates a new root UI model for a camera.
func New(cam platepar.CameraModel, solver geometry.SolverConfig) Model {
	return Model{
		field: NewFieldViewModel(cam, solver),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		// Footer takes one line
		m.field = m.field.SetSize(msg.Width, msg.Height-1)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.field, cmd = m.field.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return m.field.View() + "\n" + m.renderFooter()
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	cam := m.field.Camera()
	return dimStyle.Render(fmt.Sprintf("ls-astrometry v%s  %dx%d @ %.2f px/°  %.4f°, %.4f°",
		version.Version, cam.XRes, cam.YRes, cam.FScale, cam.Lat, cam.Lon))
}
