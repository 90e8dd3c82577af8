package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/gpesim/internal/grid"
	"github.com/san-kum/gpesim/internal/observe"
	"github.com/san-kum/gpesim/internal/prop"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(10)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model steps the propagator in batches between frames and renders the
// central density cut plus the latest observables.
type Model struct {
	prop          *prop.Propagator
	tracker       *observe.Tracker
	grid          *grid.Grid
	stepsPerFrame int

	last    observe.Record
	running bool
	err     error
}

func NewModel(p *prop.Propagator, tracker *observe.Tracker, g *grid.Grid, stepsPerFrame int) Model {
	if stepsPerFrame <= 0 {
		stepsPerFrame = 10
	}
	return Model{
		prop:          p,
		tracker:       tracker,
		grid:          g,
		stepsPerFrame: stepsPerFrame,
		running:       true,
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		}
	case TickMsg:
		if m.running && !m.prop.State().Terminal() {
			for i := 0; i < m.stepsPerFrame; i++ {
				if err := m.prop.Step(); err != nil {
					m.err = err
					break
				}
				if m.prop.State().Terminal() {
					break
				}
			}
			m.last = m.tracker.Record(m.prop.Psi(), m.prop.StepCount(), m.prop.Time(), m.prop.Mu())
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("gpesim live: %s [%s]", m.prop.Params().Mode, m.prop.State())))
	b.WriteString("\n")

	cut := DensityCut(m.prop.Psi(), m.grid, 0)
	b.WriteString(Plot(cut, "density |psi|^2 through center"))
	b.WriteString("\n\n")

	row := func(label string, format string, args ...any) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(fmt.Sprintf(format, args...)))
		b.WriteString("\n")
	}
	row("step", "%d", m.last.Step)
	row("time", "%.4f", m.last.Time)
	row("norm", "%.8f", m.last.Norm)
	row("energy", "%.8f", m.last.Total)
	row("mu", "%.8f", m.last.Mu)

	if m.err != nil {
		b.WriteString(errStyle.Render(fmt.Sprintf("run failed: %v", m.err)))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("space pause/resume · q quit"))
	return b.String()
}
