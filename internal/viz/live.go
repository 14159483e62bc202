package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/hyperion/internal/experiment"
	"github.com/san-kum/hyperion/internal/sim"
	"github.com/san-kum/hyperion/internal/swarm"
	"github.com/san-kum/hyperion/internal/telemetry"
)

const (
	width           = 60
	height          = 24
	historyCapacity = 600
	tickInterval    = time.Second / 10
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model drives an experiment one round per tick and renders the swarm
// around its central body.
type Model struct {
	exp           *experiment.Experiment
	thermal       *telemetry.ThermalTracker
	canvas        *Canvas
	camera        *Camera
	running       bool
	last          sim.RoundStats
	energyHistory []float64
	acceptHistory []float64
	err           error
	showHelp      bool
}

// NewModel wraps an experiment that has already been set up. thermal, if
// not nil, must be attached to the experiment as an observer; panels it saw
// cool during the last round are shown as cooling.
func NewModel(exp *experiment.Experiment, thermal *telemetry.ThermalTracker) Model {
	m := Model{
		exp:           exp,
		thermal:       thermal,
		canvas:        NewCanvas(width, height),
		camera:        NewCamera(),
		running:       true,
		energyHistory: make([]float64, 0, historyCapacity),
		acceptHistory: make([]float64, 0, historyCapacity),
	}
	m.restart()
	return m
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and advances the experiment.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running {
				m.step()
			}
		case "r":
			if err := m.exp.Setup(); err != nil {
				m.err = err
				return m, nil
			}
			m.restart()
		case "?":
			m.showHelp = !m.showHelp
		case "up", "k":
			m.camera.RotateX(0.1)
		case "down", "j":
			m.camera.RotateX(-0.1)
		case "left", "h":
			m.camera.RotateY(0.1)
		case "right", "l":
			m.camera.RotateY(-0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "0":
			m.camera.Reset()
		}
	case TickMsg:
		if m.running && !m.done() {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) done() bool {
	return m.err != nil || m.exp.Round() >= m.exp.Config().Rounds
}

// step runs one round and records its summary.
func (m *Model) step() {
	if m.done() {
		return
	}
	if m.thermal != nil {
		m.thermal.Reset()
	}
	st, err := m.exp.Step()
	if err != nil {
		m.err = err
		return
	}
	m.record(st)
}

func (m *Model) record(st sim.RoundStats) {
	m.last = st
	m.energyHistory = appendCapped(m.energyHistory, st.Energy)
	if st.Stats.Trials > 0 {
		m.acceptHistory = appendCapped(m.acceptHistory, st.Stats.AcceptanceRate())
	}
}

// restart clears histories and records round 0 of a fresh experiment.
func (m *Model) restart() {
	m.err = nil
	if m.thermal != nil {
		m.thermal.Reset()
	}
	m.energyHistory = m.energyHistory[:0]
	m.acceptHistory = m.acceptHistory[:0]
	m.record(m.exp.Snapshot())
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

// draw renders the current swarm onto the canvas.
func (m *Model) draw() {
	m.canvas.Clear()
	sw, body := m.exp.Swarm(), m.exp.Body()
	if sw == nil || body == nil {
		return
	}
	params := m.exp.Config().Params()
	m.camera.Fit(sw, body.Position, params.StarExclusion)
	Render3D(m.canvas, SwarmWireframe(sw, body.Position, params.StarExclusion, params.OverheatThreshold), m.camera)
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	cfg := m.exp.Config()
	var s strings.Builder
	s.WriteString(HeaderStyle.Render(strings.ToUpper(cfg.Name)) + "\n")

	status := StatusRunning.Render("RUNNING")
	switch {
	case m.err != nil:
		status = SparkLow.Render("ERROR: " + m.err.Error())
	case m.done():
		status = StatusDone.Render("DONE")
	case !m.running:
		status = StatusPaused.Render("PAUSED")
	}
	s.WriteString(status + "\n\n")

	progress := 0.0
	if cfg.Rounds > 0 {
		progress = float64(m.exp.Round()) / float64(cfg.Rounds)
	}
	s.WriteString(fmt.Sprintf("%s %d/%d\n\n", ProgressBar(progress, 20), m.exp.Round(), cfg.Rounds))

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	st := m.last
	s.WriteString(metricLine("Energy", fmt.Sprintf("%.5f", st.Energy)))
	s.WriteString(metricLine("Min sep", fmt.Sprintf("%.3f", st.MinSeparation)))
	s.WriteString(metricLine("Clearance", fmt.Sprintf("%.3f", st.Clearance)))
	s.WriteString(metricLine("Max temp", fmt.Sprintf("%.1f", st.MaxTemperature)))
	s.WriteString(metricLine("Connectivity", fmt.Sprintf("%.2f", st.MeanConnectivity)))
	if st.Stats.Trials > 0 {
		s.WriteString(metricLine("Acceptance", fmt.Sprintf("%.1f%%", 100*st.Stats.AcceptanceRate())))
		s.WriteString(metricLine("Repairs", fmt.Sprintf("%d", st.Stats.Repairs)))
	}
	if len(m.acceptHistory) > 1 {
		s.WriteString(MetricLabel.Render("Accept trend") + SparkMid.Render(Sparkline(m.acceptHistory, 24)) + "\n")
	}

	s.WriteString("\n" + thermalSummary(m.exp.Swarm(), cfg.Engine.OverheatThreshold, m.thermal) + "\n")
	s.WriteString(Separator(40) + "\n")
	s.WriteString(KeyHint.Render("SP:Pause N:Step R:Reset Q:Quit\n↑↓←→:Rotate +/-:Zoom ?:Help"))

	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

func metricLine(label, value string) string {
	return MetricLabel.Render(label) + MetricValue.Render(value) + "\n"
}

// thermalSummary counts panels per thermal status. A nominal panel that
// went through a cooling excursion in the last round counts as cooling.
func thermalSummary(sw *swarm.Swarm, threshold float64, thermal *telemetry.ThermalTracker) string {
	if sw == nil {
		return ""
	}
	var counts [3]int
	for i := range sw.Panels {
		status := sw.Panels[i].ThermalStatus(threshold)
		if status == swarm.Nominal && thermal != nil && thermal.Cooled(i) {
			status = swarm.Cooling
		}
		counts[status]++
	}
	parts := make([]string, 0, len(counts))
	for _, status := range []swarm.ThermalStatus{swarm.Nominal, swarm.Cooling, swarm.Overheating} {
		parts = append(parts, ThermalStyle(status).Render(fmt.Sprintf("%s %d", status, counts[status])))
	}
	return strings.Join(parts, "  ")
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume annealing   ║
║  N        - Single round when paused ║
║  R        - Resample and restart     ║
║  Q        - Quit                     ║
║  Arrows   - Rotate view              ║
║  Z / z    - Roll view                ║
║  + / -    - Zoom                     ║
║  0        - Reset camera             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`
