package viz

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/mdsim/internal/md"
	"github.com/san-kum/mdsim/internal/sim"
)

const (
	canvasWidth     = 60
	canvasHeight    = 22
	historyCapacity = 600
	tickInterval    = time.Second / 30
)

type TickMsg time.Time

// Factory builds a fresh simulation. The live view calls it on start and on
// every reset.
type Factory func() (*sim.Simulator, error)

type LiveOptions struct {
	Title        string
	StepsPerTick int
	// MaxSteps stops stepping once reached; 0 means run until quit.
	MaxSteps  int
	Threshold float64
	// Energy, if set, is sampled after every tick.
	Energy func(md.Coords) float64
}

// LiveModel steps a simulation on every tick and renders it.
type LiveModel struct {
	factory Factory
	opts    LiveOptions

	sim          *sim.Simulator
	first        md.Coords
	edges        []Edge
	canvas       *Canvas
	camera       *Camera
	displacement []float64
	energy       []float64
	breakStep    int
	running      bool
	showHelp     bool
	err          error
}

func NewLiveModel(factory Factory, opts LiveOptions) (LiveModel, error) {
	if opts.StepsPerTick <= 0 {
		opts.StepsPerTick = 10
	}
	if opts.Title == "" {
		opts.Title = "lennard-jones cluster"
	}
	m := LiveModel{
		factory: factory,
		opts:    opts,
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		camera:  NewCamera(),
	}
	if err := m.reset(); err != nil {
		return LiveModel{}, err
	}
	return m, nil
}

func (m *LiveModel) reset() error {
	s, err := m.factory()
	if err != nil {
		return err
	}
	m.sim = s
	m.first = s.Molecule().Positions()
	m.edges = BoxEdges(m.first)
	m.camera.Fit(m.first)
	m.displacement = make([]float64, 0, historyCapacity)
	m.energy = make([]float64, 0, historyCapacity)
	m.breakStep = -1
	m.running = true
	m.err = nil
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m LiveModel) Init() tea.Cmd { return tick() }

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.err == nil {
				m.running = !m.running
			}
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
				m.running = false
			}
		case "]":
			m.opts.StepsPerTick = min(m.opts.StepsPerTick*2, 10000)
		case "[":
			m.opts.StepsPerTick = max(m.opts.StepsPerTick/2, 1)
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

// advance runs one tick worth of steps and samples the result.
func (m *LiveModel) advance() {
	ctx := context.Background()
	for i := 0; i < m.opts.StepsPerTick; i++ {
		if m.finished() {
			m.running = false
			break
		}
		if err := m.sim.Step(ctx); err != nil {
			m.err = err
			m.running = false
			break
		}
	}

	pos := m.sim.Molecule().Positions()
	d := pos.MaxAbsDiff(m.first)
	m.displacement = appendCapped(m.displacement, d)
	if m.breakStep < 0 && m.opts.Threshold > 0 && d > m.opts.Threshold {
		m.breakStep = m.sim.CurrentStep()
	}
	if m.opts.Energy != nil {
		m.energy = appendCapped(m.energy, m.opts.Energy(pos))
	}
}

func (m *LiveModel) finished() bool {
	return m.opts.MaxSteps > 0 && m.sim.CurrentStep() >= m.opts.MaxSteps
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

// Step returns the simulator's step counter.
func (m LiveModel) Step() int { return m.sim.CurrentStep() }

// BreakStep returns the step at which the displacement first exceeded the
// threshold, or -1.
func (m LiveModel) BreakStep() int { return m.breakStep }

func (m LiveModel) Running() bool { return m.running }
func (m LiveModel) Err() error    { return m.err }

func (m LiveModel) status() string {
	switch {
	case m.err != nil:
		return statusError.Render("ERROR")
	case m.finished():
		return statusPaused.Render("DONE")
	case !m.running:
		return statusPaused.Render("PAUSED")
	}
	return statusRunning.Render("RUNNING")
}

func (m LiveModel) View() string {
	pos := m.sim.Molecule().Positions()
	m.canvas.Clear()
	Render(m.canvas, m.camera, m.edges, pos)
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(titleStyle.Render(strings.ToUpper(m.opts.Title)) + "\n")
	s.WriteString(m.status() + "\n\n")

	if len(m.displacement) > 1 {
		chart := asciigraph.Plot(m.displacement, asciigraph.Height(5), asciigraph.Width(32), asciigraph.Caption("max displacement"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	rows := [][2]string{
		{"Step", fmt.Sprintf("%d", m.sim.CurrentStep())},
		{"Atoms", fmt.Sprintf("%d", len(pos))},
		{"Steps/tick", fmt.Sprintf("%d", m.opts.StepsPerTick)},
		{"Frames", fmt.Sprintf("%d", m.sim.Trajectory().Len())},
	}
	if n := len(m.displacement); n > 0 {
		rows = append(rows, [2]string{"Displacement", fmt.Sprintf("%.4f", m.displacement[n-1])})
	}
	if n := len(m.energy); n > 0 {
		rows = append(rows, [2]string{"Energy", fmt.Sprintf("%.4f", m.energy[n-1])})
	}
	if m.opts.Threshold > 0 {
		breakText := "none"
		if m.breakStep >= 0 {
			breakText = fmt.Sprintf("step %d", m.breakStep)
		}
		rows = append(rows, [2]string{"Break", breakText})
	}
	s.WriteString(KeyValues(rows))

	if m.opts.MaxSteps > 0 {
		frac := float64(m.sim.CurrentStep()) / float64(m.opts.MaxSteps)
		s.WriteString("\n" + ProgressBar(frac, 30) + "\n")
	}
	if m.err != nil {
		s.WriteString("\n" + statusError.Render(m.err.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit\n[ ]:Speed XYZ:Rotate +-:Zoom\nT:Theme ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, panelStyle.Render(s.String()))
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

const helpOverlay = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Rebuild the simulation   ║
║  Q        - Quit                     ║
║  [ / ]    - Halve/double speed       ║
║  x y z    - Rotate (shift reverses)  ║
║  + / -    - Zoom                     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

// RunLive starts the live view full-screen and blocks until it exits.
func RunLive(factory Factory, opts LiveOptions) error {
	m, err := NewLiveModel(factory, opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
