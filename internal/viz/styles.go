package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	canvasStyle   lipgloss.Style
	panelStyle    lipgloss.Style
	titleStyle    lipgloss.Style
	labelStyle    lipgloss.Style
	valueStyle    lipgloss.Style
	graphStyle    lipgloss.Style
	helpStyle     lipgloss.Style
	selectedStyle lipgloss.Style
	subtleStyle   lipgloss.Style
	statusRunning lipgloss.Style
	statusPaused  lipgloss.Style
	statusError   lipgloss.Style
	barHigh       lipgloss.Style
	barMid        lipgloss.Style
	barLow        lipgloss.Style
)

func init() { applyTheme(CurrentTheme) }

func applyTheme(t Theme) {
	canvasStyle = lipgloss.NewStyle().Padding(1, 2).Foreground(t.Secondary)
	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(t.Muted).
		Padding(1, 2).
		Width(46)
	titleStyle = lipgloss.NewStyle().Foreground(t.Primary).Bold(true).MarginBottom(1)
	labelStyle = lipgloss.NewStyle().Foreground(t.Muted).Width(14)
	valueStyle = lipgloss.NewStyle().Foreground(t.Text)
	graphStyle = lipgloss.NewStyle().Foreground(t.Secondary).Padding(1, 0)
	helpStyle = lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1)
	selectedStyle = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	subtleStyle = lipgloss.NewStyle().Foreground(t.Muted)
	statusRunning = lipgloss.NewStyle().Bold(true).Foreground(t.Success)
	statusPaused = lipgloss.NewStyle().Bold(true).Foreground(t.Warning)
	statusError = lipgloss.NewStyle().Bold(true).Foreground(t.Error)
	barHigh = lipgloss.NewStyle().Foreground(t.Success)
	barMid = lipgloss.NewStyle().Foreground(t.Warning)
	barLow = lipgloss.NewStyle().Foreground(t.Error)
}

// ProgressBar renders fraction in [0,1] as a bar of the given width.
func ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	filled = max(0, min(width, filled))

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	switch {
	case fraction > 0.8:
		return barHigh.Render(bar)
	case fraction > 0.4:
		return barMid.Render(bar)
	}
	return barLow.Render(bar)
}

func Separator(width int) string {
	mid := width / 2
	left := strings.Repeat("─", max(0, mid-3))
	right := strings.Repeat("─", max(0, width-mid-3))
	return subtleStyle.Render(left + " ◆ " + right)
}

// Title renders a heading in the current theme.
func Title(s string) string { return titleStyle.Render(s) }

// Muted renders secondary text in the current theme.
func Muted(s string) string { return subtleStyle.Render(s) }

// KeyValues renders aligned label/value rows.
func KeyValues(rows [][2]string) string {
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(labelStyle.Render(r[0]))
		b.WriteString(valueStyle.Render(r[1]))
		b.WriteByte('\n')
	}
	return b.String()
}

// Status renders a status word colored by its meaning.
func Status(s string, ok bool) string {
	if ok {
		return statusRunning.Render(s)
	}
	return statusError.Render(s)
}
