package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// StorageInfo describes where tasks are kept, for display only.
type StorageInfo struct {
	Path       string
	Key        string
	QuotaBytes int64
	Debounce   time.Duration
}

type settingsModel struct {
	info   StorageInfo
	width  int
	height int

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	theme *Theme
}

func newSettingsModel(info StorageInfo) settingsModel {
	th := ThemeDark
	return settingsModel{info: info, theme: &th}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) update(msg tea.Msg, current Theme) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm(current)
		}
	}
	return s, nil
}

func (s settingsModel) showForm(current Theme) (settingsModel, tea.Cmd) {
	*s.theme = current

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[Theme]().Title("Theme").
				Options(
					huh.NewOption("Dark", ThemeDark),
					huh.NewOption("Light", ThemeLight),
				).Value(s.theme),
		).Title("Appearance"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		th := *s.theme
		return s, func() tea.Msg { return themeChangedMsg{theme: th} }
	}

	return s, cmd
}

func (s settingsModel) view(st styles, current Theme, saving bool) string {
	w := s.width - 4
	title := st.title.Render("Settings")

	if s.formActive && s.form != nil {
		return st.panel.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	quota := "unlimited"
	if s.info.QuotaBytes > 0 {
		quota = formatBytes(s.info.QuotaBytes)
	}
	persistence := st.success.Render("saving")
	if !saving {
		persistence = st.warning.Render("session only (storage unavailable)")
	}

	settings := [][2]string{
		{"Database", s.info.Path},
		{"Key", s.info.Key},
		{"Quota", quota},
		{"Save delay", s.info.Debounce.String()},
		{"Persistence", persistence},
		{"Theme", string(current)},
	}

	rows := []string{title, ""}
	for _, kv := range settings {
		label := lipgloss.NewStyle().Width(16).Render(kv[0])
		rows = append(rows, fmt.Sprintf("  %s %s", label, lipgloss.NewStyle().Foreground(st.colors.highlight).Render(kv[1])))
	}
	rows = append(rows, "", st.muted.Render("Press enter to change the theme"))

	return st.panel.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
