package tui

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/sadopc/taskflow/internal/export"
	"github.com/sadopc/taskflow/internal/persist"
	"github.com/sadopc/taskflow/internal/storage"
	"github.com/sadopc/taskflow/internal/task"
)

// Options wires the App to its collaborators.
type Options struct {
	Store  *task.Store
	Syncer *persist.Syncer
	// KV holds the theme preference. Nil disables saving it.
	KV     storage.KV
	Theme  Theme
	Info   StorageInfo
	Logger *log.Logger
	// ExportDir receives export files.
	ExportDir string
	Now       func() time.Time
}

// App is the root Bubble Tea model. It is the only place that turns task
// changes into scheduled writes.
type App struct {
	store  *task.Store
	syncer *persist.Syncer
	kv     storage.KV
	log    *log.Logger
	now    func() time.Time

	theme  Theme
	styles styles

	width  int
	height int

	activeView      viewState
	showHelp        bool
	exportPicking   bool
	exportCursor    int
	confirmingClear bool
	exportDir       string

	tasks    tasksModel
	stats    statsModel
	settings settingsModel

	help      help.Model
	status    string
	statusErr bool
}

func NewApp(o Options) App {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	if !o.Theme.Valid() {
		o.Theme = ThemeDark
	}

	h := help.New()
	h.ShowAll = false

	o.Store.SetLoading(true)

	return App{
		store:      o.Store,
		syncer:     o.Syncer,
		kv:         o.KV,
		log:        o.Logger,
		now:        o.Now,
		theme:      o.Theme,
		styles:     newStyles(o.Theme),
		activeView: viewTasks,
		exportDir:  o.ExportDir,
		tasks:      newTasksModel(o.Store, o.Now),
		stats:      newStatsModel(o.Store, o.Now),
		settings:   newSettingsModel(o.Info),
		help:       h,
	}
}

// Init reads the stored list. The read runs off the update loop and only
// touches storage; state changes happen when loadedMsg arrives.
func (a App) Init() tea.Cmd {
	s := a.syncer
	return func() tea.Msg {
		tasks, err := s.Load()
		return loadedMsg{tasks: tasks, err: err}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.tasks.setSize(a.width, contentHeight)
		a.stats.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case loadedMsg:
		a.syncer.MarkHydrated(msg.err)
		if msg.err != nil {
			a.log.Error("initial load failed", "err", msg.err)
			a.store.SetError(storage.Message(msg.err))
			return a, nil
		}
		a.store.LoadTasks(msg.tasks)
		a.syncer.MarkSynced()
		a.log.Info("loaded tasks", "count", len(msg.tasks))
		return a, nil

	case flushMsg:
		a.flush(msg.ticket)
		return a, nil

	case statusMsg:
		a.status = msg.text
		a.statusErr = msg.isError
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusErr = false
		return a, nil

	case themeChangedMsg:
		return a.setTheme(msg.theme), nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a.quit()
		}
		if a.store.State().Loading {
			if key.Matches(msg, keys.Quit) {
				return a.quit()
			}
			return a, nil
		}
		if a.confirmingClear {
			return a.updateConfirm(msg)
		}
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return a.quit()
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, nil
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Theme):
			return a.setTheme(a.theme.Toggle()), nil
		case key.Matches(msg, keys.ClearAll):
			if len(a.store.Tasks()) == 0 {
				return a, status("Nothing to clear")
			}
			a.confirmingClear = true
			return a, nil
		}
	}

	return a.updateActiveView(msg)
}

// updateActiveView delegates to the current view and schedules a write when
// the task list changed.
func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	before := a.store.State().Revision

	var cmd tea.Cmd
	switch a.activeView {
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg, a.theme)
	}

	if a.store.State().Revision != before {
		cmd = tea.Batch(cmd, a.scheduleSave())
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewTasks:
		return a.tasks.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) scheduleSave() tea.Cmd {
	ticket, ok := a.syncer.Schedule(a.store.Tasks())
	if !ok {
		return nil
	}
	return tea.Tick(a.syncer.Interval(), func(time.Time) tea.Msg {
		return flushMsg{ticket: ticket}
	})
}

func (a App) flush(t persist.Ticket) {
	if _, err := a.syncer.Flush(t); err != nil {
		a.log.Error("save failed", "err", err)
		a.store.SetError(storage.Message(err))
	}
}

// quit drops the pending write and saves once more if anything is unsaved.
func (a App) quit() (tea.Model, tea.Cmd) {
	if a.syncer.Dirty() {
		if err := a.syncer.ForceSave(a.store.Tasks()); err != nil {
			a.log.Error("final save failed", "err", err)
		}
	} else {
		a.syncer.Cancel()
	}
	return a, tea.Quit
}

func (a App) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.confirmingClear = false
	if !key.Matches(msg, keys.Confirm) {
		return a, status("Clear cancelled")
	}

	err := a.syncer.ClearAll()
	switch {
	case err == nil:
		a.store.LoadTasks(nil)
		a.syncer.MarkSynced()
	case errors.Is(err, storage.ErrUnavailable):
		// Nothing is stored; clear the session anyway.
		a.store.LoadTasks(nil)
		a.store.SetError(storage.Message(err))
	default:
		a.log.Error("clear failed", "err", err)
		a.store.SetError(storage.Message(err))
		return a, nil
	}
	a.tasks.cursor = 0
	return a, status("All tasks cleared")
}

func (a App) setTheme(t Theme) App {
	a.theme = t
	a.styles = newStyles(t)
	if a.kv == nil {
		return a
	}
	if err := SaveTheme(a.kv, t); err != nil {
		a.log.Warn("failed to save theme", "err", err)
		a.status = "Theme changed for this session only"
		a.statusErr = true
	}
	return a
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()
	banner := a.renderBanner()

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if banner != "" {
		contentHeight -= lipgloss.Height(banner)
	}
	if contentHeight < 1 {
		contentHeight = 1
	}

	var content string
	switch {
	case a.store.State().Loading:
		content = a.styles.panel.Width(a.width - 4).Render(a.styles.muted.Render("Loading tasks..."))
	case a.confirmingClear:
		content = a.renderConfirm()
	case a.exportPicking:
		content = a.renderExportPicker()
	default:
		switch a.activeView {
		case viewTasks:
			content = a.tasks.view(a.styles)
		case viewStats:
			content = a.stats.view(a.styles)
		case viewSettings:
			content = a.settings.view(a.styles, a.theme, a.syncer.Hydrated())
		}
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	parts := []string{header}
	if banner != "" {
		parts = append(parts, banner)
	}
	parts = append(parts, content, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, a.styles.activeTab.Render(name))
		} else {
			tabs = append(tabs, a.styles.inactiveTab.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(a.styles.colors.primary).Render("taskflow")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return a.styles.header.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderBanner() string {
	msg := a.store.State().Error
	if msg == "" {
		return ""
	}
	return a.styles.banner.Width(a.width).Render("! " + msg)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := a.styles.muted
		if a.statusErr {
			style = a.styles.error
		}
		status = style.Render(" " + a.status)
	}

	left := a.styles.footer.Render(helpView)

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(status) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, status)
}

func (a App) renderConfirm() string {
	n := len(a.store.Tasks())
	noun := "tasks"
	if n == 1 {
		noun = "task"
	}
	rows := []string{
		a.styles.title.Render("Clear all tasks"),
		"",
		a.styles.warning.Render(fmt.Sprintf("This permanently deletes %d %s.", n, noun)),
		"",
		a.styles.muted.Render("  y: delete everything  any other key: cancel"),
	}
	return a.styles.activePanel.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) renderExportPicker() string {
	rows := []string{a.styles.title.Render("Export Format"), ""}
	for i, f := range export.Formats {
		cursor := "  "
		style := a.styles.normal
		if i == a.exportCursor {
			cursor = "> "
			style = a.styles.selected
		}
		rows = append(rows, style.Render(cursor+string(f)))
	}
	rows = append(rows, "", a.styles.muted.Render("  enter: export  esc: cancel"))
	if a.exportDir != "" {
		rows = append(rows, a.styles.muted.Render("  to "+a.exportDir))
	}

	return a.styles.activePanel.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(export.Formats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(export.Formats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(f export.Format) tea.Cmd {
	tasks := a.store.Tasks()
	path := filepath.Join(a.exportDir, export.DefaultFilename(f, a.now()))
	logger := a.log
	return func() tea.Msg {
		if err := export.Write(f, tasks, path); err != nil {
			logger.Error("export failed", "format", f, "err", err)
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}
