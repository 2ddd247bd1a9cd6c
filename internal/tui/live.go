// Package tui steps a solver interactively in the terminal.
package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/rungekutta/internal/ode"
)

const (
	maxHistory      = 120
	maxSeries       = 4
	maxStepsPerTick = 1 << 16
	frameInterval   = 33 * time.Millisecond
)

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Cyan, asciigraph.Magenta, asciigraph.Yellow, asciigraph.Green,
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Live is a bubbletea model that advances a driver a few steps per frame
// until stop and plots the most recent states.
type Live struct {
	driver ode.Driver
	method string
	model  string
	stop   float64

	y0 ode.State
	t0 float64

	y            ode.State
	t            float64
	stepsPerTick int
	history      [][]float64
	paused       bool
	done         bool
	err          error

	width int
}

// NewLive wraps d, which must already hold the initial state.
func NewLive(d ode.Driver, method, model string, stop float64, stepsPerTick int) (*Live, error) {
	y0, t0, ok := d.State()
	if !ok {
		return nil, ode.ErrStateUnset
	}
	m := &Live{
		driver:       d,
		method:       method,
		model:        model,
		stop:         stop,
		y0:           y0,
		t0:           t0,
		stepsPerTick: max(stepsPerTick, 1),
		width:        80,
	}
	m.reset()
	return m, nil
}

func (m *Live) reset() {
	_ = m.driver.SetState(m.y0, m.t0)
	m.y, m.t = m.y0.Clone(), m.t0
	m.history = make([][]float64, min(len(m.y0), maxSeries))
	m.record()
	m.done = m.t >= m.stop
	m.err = nil
}

func (m *Live) record() {
	for i := range m.history {
		m.history[i] = append(m.history[i], m.y[i])
		if len(m.history[i]) > maxHistory {
			m.history[i] = m.history[i][1:]
		}
	}
}

// advance takes up to stepsPerTick steps without passing stop.
func (m *Live) advance() {
	for i := 0; i < m.stepsPerTick && !m.done; i++ {
		y, t, err := m.driver.Step()
		if err != nil {
			m.err = err
			m.done = true
			return
		}
		m.y, m.t = y, t
		if t >= m.stop || !y.IsValid() {
			m.done = true
		}
	}
	m.record()
}

func (m *Live) Init() tea.Cmd { return tick() }

func (m *Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tickMsg:
		if !m.paused && !m.done {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Live) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return tea.Quit
	case " ", "p":
		m.paused = !m.paused
	case "+", "=":
		m.stepsPerTick = min(m.stepsPerTick*2, maxStepsPerTick)
	case "-", "_":
		m.stepsPerTick = max(m.stepsPerTick/2, 1)
	case "r":
		m.reset()
	case "n":
		if m.paused && !m.done {
			saved := m.stepsPerTick
			m.stepsPerTick = 1
			m.advance()
			m.stepsPerTick = saved
		}
	}
	return nil
}

func (m *Live) View() string {
	var b strings.Builder

	b.WriteString(Title.Render(fmt.Sprintf("%s · %s", m.method, m.model)))
	b.WriteString("  ")
	b.WriteString(m.status())
	b.WriteString("\n\n")

	b.WriteString(Panel.Render(drawScene(m.model, m.y)))
	b.WriteString("\n")
	b.WriteString(m.chart())
	b.WriteString("\n\n")

	b.WriteString(Metric("t", fmt.Sprintf("%.4f", m.t)))
	b.WriteString("  ")
	b.WriteString(Metric("h", fmt.Sprintf("%g", m.driver.StepSize())))
	b.WriteString("  ")
	b.WriteString(Metric("steps", fmt.Sprintf("%d", m.driver.Steps())))
	b.WriteString("  ")
	b.WriteString(Metric("steps/frame", fmt.Sprintf("%d", m.stepsPerTick)))
	b.WriteString("\n")

	values := make([]string, 0, min(len(m.y), 6))
	for i, v := range m.y {
		if i == 6 {
			values = append(values, Subtle.Render("…"))
			break
		}
		values = append(values, Metric(fmt.Sprintf("y%d", i), fmt.Sprintf("%+.5f", v)))
	}
	b.WriteString(strings.Join(values, "  "))
	b.WriteString("\n")

	b.WriteString(ProgressBar(m.progress(), 40))
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(StatusFailed.Render(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(KeyHint.Render("space pause · n step · +/- speed · r reset · q quit"))
	return lipgloss.NewStyle().MaxWidth(max(m.width, 40)).Render(b.String())
}

func (m *Live) status() string {
	switch {
	case m.err != nil:
		return StatusFailed.Render("● failed")
	case m.done:
		return StatusRunning.Render("● done")
	case m.paused:
		return StatusPaused.Render("● paused")
	default:
		return StatusRunning.Render("● running")
	}
}

func (m *Live) progress() float64 {
	span := m.stop - m.t0
	if span <= 0 {
		return 1
	}
	return (m.t - m.t0) / span
}

func (m *Live) chart() string {
	series := make([][]float64, 0, len(m.history))
	legends := make([]string, 0, len(m.history))
	for i, h := range m.history {
		if len(h) < 2 || !finite(h) {
			continue
		}
		series = append(series, h)
		legends = append(legends, fmt.Sprintf("y%d", i))
	}
	if len(series) == 0 {
		return Subtle.Render("waiting for data")
	}
	return asciigraph.PlotMany(series,
		asciigraph.Height(10),
		asciigraph.Width(max(min(m.width-12, maxHistory), 20)),
		asciigraph.SeriesColors(seriesColors[:len(series)]...),
		asciigraph.SeriesLegends(legends...),
		asciigraph.Precision(3),
	)
}

func finite(vs []float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Run shows m full screen until the user quits.
func Run(m *Live) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
