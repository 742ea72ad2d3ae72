// Package viz renders orbital systems in the terminal: a braille canvas
// for the top-down orbit view and a bubbletea model driving the live loop.
package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/metrics"
	"github.com/san-kum/orbitsim/internal/orbit"
	"github.com/san-kum/orbitsim/internal/sim"
)

const (
	canvasWidth     = 80
	canvasHeight    = 24
	trailCapacity   = 200
	historyCapacity = 600
	frameSeconds    = 1.0 / 60.0
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(42)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

type point struct{ x, y int }

// Model owns a live simulation: the engine, per-body trails, and the
// energy history chart.
type Model struct {
	engine     *sim.Engine
	systemName string
	def        config.SystemDef
	warpConf   config.WarpConf

	canvas        *Canvas
	trails        [][]point
	energyHistory []float64
	zoom          float64
	running       bool
	showHelp      bool
}

// NewModel builds a live view over a fresh system from the given definition.
func NewModel(name string, def config.SystemDef, warp config.WarpConf) (Model, error) {
	system, err := orbit.FromConfig(def)
	if err != nil {
		return Model{}, err
	}

	return Model{
		engine:        sim.New(system, warp),
		systemName:    name,
		def:           def,
		warpConf:      warp,
		canvas:        NewCanvas(canvasWidth, canvasHeight),
		trails:        make([][]point, system.NumBodies()),
		energyHistory: make([]float64, 0, historyCapacity),
		zoom:          1,
		running:       true,
	}, nil
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "+", "=":
			m.engine.SetWarp(m.engine.Warp() * 2)
		case "-", "_":
			m.engine.SetWarp(m.engine.Warp() / 2)
		case "]":
			m.zoom *= 1.25
		case "[":
			m.zoom /= 1.25
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.engine.Step(frameSeconds)
			m.recordEnergy()
			m.recordTrails()
		}
		return m, tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) reset() {
	system, err := orbit.FromConfig(m.def)
	if err != nil {
		return
	}
	warp := m.warpConf
	warp.Factor = m.engine.Warp()
	m.engine = sim.New(system, warp)
	m.trails = make([][]point, system.NumBodies())
	m.energyHistory = m.energyHistory[:0]
}

func (m *Model) recordEnergy() {
	m.energyHistory = append(m.energyHistory, metrics.TotalEnergy(m.engine.System()))
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}
}

func (m *Model) recordTrails() {
	for i, b := range m.engine.System().Bodies() {
		x, y := m.project(b.Position.X, b.Position.Z)
		m.trails[i] = append(m.trails[i], point{x, y})
		if len(m.trails[i]) > trailCapacity {
			m.trails[i] = m.trails[i][1:]
		}
	}
}

// project maps orbital-plane coordinates onto the sub-pixel canvas,
// origin centered, scaled so the widest orbit fits.
func (m *Model) project(px, pz float64) (int, int) {
	extent := m.extent()
	sx := float64(canvasWidth*2) / 2
	sy := float64(canvasHeight*4) / 2
	scale := math.Min(sx, sy) * 0.9 * m.zoom / extent
	// terminal cells are taller than wide; braille sub-pixels even out most of it
	return int(sx + px*scale), int(sy - pz*scale)
}

func (m *Model) extent() float64 {
	max := 1e-9
	for _, b := range m.engine.System().Bodies() {
		if r := math.Hypot(b.Position.X, b.Position.Z); r > max {
			max = r
		}
	}
	return max
}

func (m *Model) draw() {
	m.canvas.Clear()
	for _, trail := range m.trails {
		for _, pt := range trail {
			m.canvas.Set(pt.x, pt.y)
		}
	}
	for _, b := range m.engine.System().Bodies() {
		x, y := m.project(b.Position.X, b.Position.Z)
		r := int(b.Radius / m.extent() * float64(canvasWidth) * m.zoom)
		if r < 1 {
			r = 1
		}
		if r > 8 {
			r = 8
		}
		m.canvas.DrawCircle(x, y, r)
	}
}

func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.systemName)) + "\n")

	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}

	system := m.engine.System()
	var stats strings.Builder
	stats.WriteString(row("status", status))
	stats.WriteString(row("clock", fmt.Sprintf("%.1f s", system.Clock())))
	stats.WriteString(row("warp", fmt.Sprintf("%.2fx", m.engine.Warp())))
	stats.WriteString(row("bodies", fmt.Sprintf("%d", system.NumBodies())))
	stats.WriteString(row("zoom", fmt.Sprintf("%.2fx", m.zoom)))
	if len(m.energyHistory) > 0 {
		stats.WriteString(row("energy", fmt.Sprintf("%.4g", m.energyHistory[len(m.energyHistory)-1])))
	}
	stats.WriteString("\n")
	for _, b := range system.Bodies() {
		stats.WriteString(row(b.Name, fmt.Sprintf("|v|=%.3f", b.Velocity.Norm())))
	}

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(stats.String())))
	s.WriteString("\n")

	if len(m.energyHistory) > 2 {
		chart := asciigraph.Plot(m.energyHistory,
			asciigraph.Height(6),
			asciigraph.Width(canvasWidth),
			asciigraph.Caption("total energy"))
		s.WriteString(graphStyle.Render(chart))
		s.WriteString("\n")
	}

	if m.showHelp {
		s.WriteString(helpStyle.Render("space pause · r reset · +/- warp · [/] zoom · q quit"))
	} else {
		s.WriteString(helpStyle.Render("? help · q quit"))
	}
	s.WriteString("\n")
	return s.String()
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value) + "\n"
}

// Run starts the live view in the alternate screen and blocks until quit.
func Run(name string, def config.SystemDef, warp config.WarpConf) error {
	m, err := NewModel(name, def, warp)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
