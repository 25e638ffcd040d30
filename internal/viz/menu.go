package viz

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type MenuItem struct {
	Name        string
	Description string
}

// Menu lists starting configurations. Choosing one hands control to the
// model returned by start.
type Menu struct {
	title  string
	items  []MenuItem
	cursor int
	start  func(item MenuItem) (tea.Model, error)
	active tea.Model
	err    error
}

func NewMenu(title string, items []MenuItem, start func(MenuItem) (tea.Model, error)) Menu {
	return Menu{title: title, items: items, start: start}
}

func (m Menu) Init() tea.Cmd { return nil }

func (m Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.active != nil {
		var cmd tea.Cmd
		m.active, cmd = m.active.Update(msg)
		return m, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "enter":
		if len(m.items) == 0 {
			return m, nil
		}
		next, err := m.start(m.items[m.cursor])
		if err != nil {
			m.err = err
			return m, nil
		}
		m.active = next
		return m, next.Init()
	}
	return m, nil
}

// Selected returns the item under the cursor.
func (m Menu) Selected() (MenuItem, bool) {
	if len(m.items) == 0 {
		return MenuItem{}, false
	}
	return m.items[m.cursor], true
}

func (m Menu) View() string {
	if m.active != nil {
		return m.active.View()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title) + "\n")
	for i, item := range m.items {
		line := item.Name
		if item.Description != "" {
			line += "  " + subtleStyle.Render(item.Description)
		}
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> "+item.Name))
			if item.Description != "" {
				b.WriteString("  " + subtleStyle.Render(item.Description))
			}
		} else {
			b.WriteString("  " + line)
		}
		b.WriteByte('\n')
	}
	if m.err != nil {
		b.WriteString("\n" + statusError.Render(m.err.Error()) + "\n")
	}
	b.WriteString(helpStyle.Render("↑↓:Select Enter:Start Q:Quit"))
	return b.String()
}

// RunMenu shows the menu full-screen and blocks until it exits.
func RunMenu(m Menu) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
