package viz

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/mdsim/internal/forces"
	"github.com/san-kum/mdsim/internal/integrators"
	"github.com/san-kum/mdsim/internal/md"
	"github.com/san-kum/mdsim/internal/molecule"
	"github.com/san-kum/mdsim/internal/sim"
)

func cubeFactory() (*sim.Simulator, error) {
	mol, err := molecule.NewCube(2, "He", nil)
	if err != nil {
		return nil, err
	}
	ff, err := forces.NewLJ(forces.LJParams{Sigma: 0.9, Epsilon: 20}, forces.StrategyReference)
	if err != nil {
		return nil, err
	}
	verlet, err := integrators.NewVerlet(0.001)
	if err != nil {
		return nil, err
	}
	return sim.New(mol, ff, verlet, sim.WithInterval(10))
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m tea.Model, msg tea.Msg) tea.Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next
}

func TestCanvasSetAndClear(t *testing.T) {
	c := NewCanvas(4, 2)
	w, h := c.Dots()
	if w != 8 || h != 8 {
		t.Fatalf("expected 8x8 dots, got %dx%d", w, h)
	}

	c.Set(3, 5)
	if !c.IsSet(3, 5) || c.IsSet(2, 5) {
		t.Error("Set lit the wrong dot")
	}
	c.Set(-1, 0)
	c.Set(100, 100)

	if c.Grid[1][1] != brailleBlank|0x10 {
		t.Errorf("unexpected cell %U", c.Grid[1][1])
	}

	c.Clear()
	if c.IsSet(3, 5) {
		t.Error("Clear should reset every dot")
	}
	if got := strings.Count(c.String(), "\n"); got != 2 {
		t.Errorf("expected 2 rows, got %d", got)
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(10, 3)
	c.DrawLine(0, 0, 9, 9)
	for i := 0; i <= 9; i++ {
		if !c.IsSet(i, i) {
			t.Errorf("diagonal dot (%d,%d) not set", i, i)
		}
	}
}

func TestCameraFitAndProject(t *testing.T) {
	cam := NewCamera()
	cam.RotX, cam.RotY = 0, 0
	pts := md.Coords{{0, 0, 0}, {2, 0, 0}}
	cam.Fit(pts)

	if cam.Center != (md.Vec3{1, 0, 0}) || cam.Scale != 1 {
		t.Fatalf("unexpected fit center=%v scale=%v", cam.Center, cam.Scale)
	}

	x, y, _, ok := cam.Project(md.Vec3{1, 0, 0}, 100, 80)
	if !ok || x != 50 || y != 40 {
		t.Errorf("center should land mid-canvas, got (%d,%d) %v", x, y, ok)
	}

	xr, _, _, _ := cam.Project(md.Vec3{2, 0, 0}, 100, 80)
	xl, _, _, _ := cam.Project(md.Vec3{0, 0, 0}, 100, 80)
	if xr <= x || xl >= x {
		t.Errorf("expected symmetric projection, got left=%d center=%d right=%d", xl, x, xr)
	}
}

func TestBoxEdges(t *testing.T) {
	if BoxEdges(nil) != nil {
		t.Error("expected no edges for no points")
	}
	edges := BoxEdges(md.Coords{{0, 0, 0}, {1, 2, 3}})
	if len(edges) != 12 {
		t.Fatalf("expected 12 edges, got %d", len(edges))
	}
	for _, e := range edges {
		if d := e.End.Sub(e.Start).Norm(); d != 1 && d != 2 && d != 3 {
			t.Errorf("edge %v is not axis-aligned", e)
		}
	}
}

func TestLiveModelTick(t *testing.T) {
	m, err := NewLiveModel(cubeFactory, LiveOptions{StepsPerTick: 5, Threshold: 1e-6})
	if err != nil {
		t.Fatalf("NewLiveModel failed: %v", err)
	}

	next := update(t, m, TickMsg(time.Now())).(LiveModel)
	if next.Step() != 5 {
		t.Errorf("expected 5 steps after one tick, got %d", next.Step())
	}
	if next.BreakStep() != 5 {
		t.Errorf("tiny threshold should break on the first tick, got %d", next.BreakStep())
	}

	view := next.View()
	if !strings.Contains(view, "LENNARD-JONES CLUSTER") || !strings.Contains(view, "RUNNING") {
		t.Errorf("unexpected view:\n%s", view)
	}
}

func TestLiveModelPauseAndReset(t *testing.T) {
	m, err := NewLiveModel(cubeFactory, LiveOptions{StepsPerTick: 3})
	if err != nil {
		t.Fatal(err)
	}

	var model tea.Model = m
	model = update(t, model, TickMsg(time.Now()))
	model = update(t, model, key(" "))
	model = update(t, model, TickMsg(time.Now()))

	lm := model.(LiveModel)
	if lm.Running() || lm.Step() != 3 {
		t.Errorf("paused model should not step, got running=%v step=%d", lm.Running(), lm.Step())
	}
	if !strings.Contains(lm.View(), "PAUSED") {
		t.Error("view should show PAUSED")
	}

	lm = update(t, lm, key("r")).(LiveModel)
	if lm.Step() != 0 || !lm.Running() {
		t.Errorf("reset should rebuild the simulation, got step=%d", lm.Step())
	}
}

func TestLiveModelSpeedAndMaxSteps(t *testing.T) {
	m, err := NewLiveModel(cubeFactory, LiveOptions{StepsPerTick: 4, MaxSteps: 6})
	if err != nil {
		t.Fatal(err)
	}

	lm := update(t, m, key("]")).(LiveModel)
	lm = update(t, lm, TickMsg(time.Now())).(LiveModel)
	if lm.Step() != 6 || lm.Running() {
		t.Errorf("expected to stop at 6 steps, got %d running=%v", lm.Step(), lm.Running())
	}
	if !strings.Contains(lm.View(), "DONE") {
		t.Error("view should show DONE")
	}
}

func TestLiveModelFactoryError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewLiveModel(func() (*sim.Simulator, error) { return nil, boom }, LiveOptions{})
	if !errors.Is(err, boom) {
		t.Errorf("expected factory error, got %v", err)
	}
}

func TestMenuSelectsAndHandsOver(t *testing.T) {
	var chosen string
	items := []MenuItem{{Name: "He/default"}, {Name: "He/large", Description: "5³ cube"}}
	menu := NewMenu("presets", items, func(item MenuItem) (tea.Model, error) {
		chosen = item.Name
		live, err := NewLiveModel(cubeFactory, LiveOptions{Title: item.Name})
		if err != nil {
			return nil, err
		}
		return live, nil
	})

	var model tea.Model = menu
	model = update(t, model, tea.KeyMsg{Type: tea.KeyDown})
	if sel, _ := model.(Menu).Selected(); sel.Name != "He/large" {
		t.Fatalf("expected cursor on He/large, got %s", sel.Name)
	}
	if !strings.Contains(model.View(), "5³ cube") {
		t.Error("menu should show descriptions")
	}

	model = update(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	if chosen != "He/large" {
		t.Errorf("expected He/large to start, got %q", chosen)
	}
	if !strings.Contains(model.View(), "HE/LARGE") {
		t.Error("menu should render the live view after selection")
	}
}

func TestThemes(t *testing.T) {
	defer SetTheme(ThemeOcean.Name)

	SetTheme("retro")
	if CurrentTheme.Name != "retro" {
		t.Errorf("expected retro, got %s", CurrentTheme.Name)
	}
	NextTheme()
	if CurrentTheme.Name != Themes[0].Name {
		t.Errorf("expected wrap-around to %s, got %s", Themes[0].Name, CurrentTheme.Name)
	}
	if GetTheme("missing").Name != Themes[0].Name {
		t.Error("unknown theme should fall back to the first")
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("ThemeNames length mismatch")
	}
}
