package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/taskflow/internal/task"
)

type palette struct {
	primary   lipgloss.Color
	secondary lipgloss.Color
	accent    lipgloss.Color
	muted     lipgloss.Color
	success   lipgloss.Color
	warning   lipgloss.Color
	err       lipgloss.Color
	fg        lipgloss.Color
	subtle    lipgloss.Color
	highlight lipgloss.Color
}

var darkPalette = palette{
	primary:   lipgloss.Color("#6C63FF"),
	secondary: lipgloss.Color("#2EC4B6"),
	accent:    lipgloss.Color("#FF6B6B"),
	muted:     lipgloss.Color("#666666"),
	success:   lipgloss.Color("#2ECC71"),
	warning:   lipgloss.Color("#F39C12"),
	err:       lipgloss.Color("#E74C3C"),
	fg:        lipgloss.Color("#C0CAF5"),
	subtle:    lipgloss.Color("#414868"),
	highlight: lipgloss.Color("#7AA2F7"),
}

var lightPalette = palette{
	primary:   lipgloss.Color("#4B3FD6"),
	secondary: lipgloss.Color("#118C80"),
	accent:    lipgloss.Color("#D43F3F"),
	muted:     lipgloss.Color("#8A8A8A"),
	success:   lipgloss.Color("#1E8E4E"),
	warning:   lipgloss.Color("#B86E00"),
	err:       lipgloss.Color("#C0392B"),
	fg:        lipgloss.Color("#24283B"),
	subtle:    lipgloss.Color("#C8CCE0"),
	highlight: lipgloss.Color("#2E5BD8"),
}

// styles is every style the views render with, derived from one Theme.
type styles struct {
	colors palette

	activeTab   lipgloss.Style
	inactiveTab lipgloss.Style

	panel       lipgloss.Style
	activePanel lipgloss.Style

	title    lipgloss.Style
	subtitle lipgloss.Style
	accent   lipgloss.Style
	success  lipgloss.Style
	warning  lipgloss.Style
	error    lipgloss.Style
	muted    lipgloss.Style

	header   lipgloss.Style
	footer   lipgloss.Style
	banner   lipgloss.Style
	selected lipgloss.Style
	normal   lipgloss.Style
	done     lipgloss.Style
	priority map[task.Priority]lipgloss.Style
}

func newStyles(t Theme) styles {
	c := darkPalette
	if t == ThemeLight {
		c = lightPalette
	}

	return styles{
		colors: c,

		activeTab: lipgloss.NewStyle().
			Bold(true).
			Foreground(c.primary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(c.primary).
			Padding(0, 2),
		inactiveTab: lipgloss.NewStyle().
			Foreground(c.muted).
			Padding(0, 2),

		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c.subtle).
			Padding(1, 2),
		activePanel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c.primary).
			Padding(1, 2),

		title:    lipgloss.NewStyle().Bold(true).Foreground(c.fg),
		subtitle: lipgloss.NewStyle().Foreground(c.muted),
		accent:   lipgloss.NewStyle().Foreground(c.accent),
		success:  lipgloss.NewStyle().Foreground(c.success),
		warning:  lipgloss.NewStyle().Foreground(c.warning),
		error:    lipgloss.NewStyle().Foreground(c.err),
		muted:    lipgloss.NewStyle().Foreground(c.muted),

		header: lipgloss.NewStyle().Padding(0, 1),
		footer: lipgloss.NewStyle().Foreground(c.muted).Padding(0, 1),
		banner: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(c.err).
			Padding(0, 1),
		selected: lipgloss.NewStyle().Foreground(c.primary).Bold(true),
		normal:   lipgloss.NewStyle().Foreground(c.fg),
		done:     lipgloss.NewStyle().Foreground(c.muted).Strikethrough(true),
		priority: map[task.Priority]lipgloss.Style{
			task.PriorityLow:    lipgloss.NewStyle().Foreground(c.secondary),
			task.PriorityMedium: lipgloss.NewStyle().Foreground(c.warning),
			task.PriorityHigh:   lipgloss.NewStyle().Foreground(c.accent),
		},
	}
}
