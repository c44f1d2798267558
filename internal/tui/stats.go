package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/taskflow/internal/task"
)

type statsModel struct {
	store  *task.Store
	now    func() time.Time
	width  int
	height int
}

func newStatsModel(s *task.Store, now func() time.Time) statsModel {
	return statsModel{store: s, now: now}
}

func (m *statsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m statsModel) stats() task.Stats {
	return m.store.State().Stats(m.now())
}

func (m statsModel) view(st styles) string {
	w := m.width - 4
	s := m.stats()

	title := st.title.Render("Statistics")
	if s.Total == 0 {
		return st.panel.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", st.muted.Render("No tasks yet. Add some to see statistics."),
		))
	}

	rate := s.CompletionRate()
	bar := progress.New(
		progress.WithSolidFill(string(st.colors.primary)),
		progress.WithWidth(max(20, min(60, w-20))),
		progress.WithoutPercentage(),
	)
	completion := fmt.Sprintf("%s %s", bar.ViewAs(float64(rate)/100), st.title.Render(fmt.Sprintf("%d%%", rate)))

	counts := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderCount(st, "Total", s.Total, st.normal),
		m.renderCount(st, "Active", s.Active, st.warning),
		m.renderCount(st, "Completed", s.Completed, st.success),
		m.renderCount(st, "Overdue", s.Overdue, st.error),
	)

	chart := m.buildChart(st, s, w-8)

	insightStyle := st.muted
	switch {
	case s.Overdue > 0:
		insightStyle = st.error
	case s.Active == 0:
		insightStyle = st.success
	}

	return st.panel.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		title, "",
		st.subtitle.Render("Completion"), completion, "",
		counts, "",
		st.subtitle.Render("Active tasks by priority"), chart.View(), m.renderLegend(st, s), "",
		insightStyle.Render(s.Insight()),
	))
}

func (m statsModel) renderCount(st styles, label string, n int, style lipgloss.Style) string {
	return lipgloss.NewStyle().Width(14).Render(
		lipgloss.JoinVertical(lipgloss.Left, style.Bold(true).Render(fmt.Sprint(n)), st.muted.Render(label)),
	)
}

func (m statsModel) buildChart(st styles, s task.Stats, width int) barchart.Model {
	chartWidth := max(20, min(width, 48))
	chartHeight := 8
	if m.height > 30 {
		chartHeight = 12
	}

	chart := barchart.New(chartWidth, chartHeight)
	var bars []barchart.BarData
	for _, p := range task.Priorities {
		bars = append(bars, barchart.BarData{
			Label: string(p),
			Values: []barchart.BarValue{{
				Name:  string(p),
				Value: float64(s.ByPriority[p]),
				Style: st.priority[p],
			}},
		})
	}
	chart.PushAll(bars)
	chart.Draw()
	return chart
}

func (m statsModel) renderLegend(st styles, s task.Stats) string {
	var items []string
	for _, p := range task.Priorities {
		dot := st.priority[p].Render("●")
		items = append(items, fmt.Sprintf("%s %s %d", dot, p, s.ByPriority[p]))
	}
	return "  " + strings.Join(items, "  ")
}
