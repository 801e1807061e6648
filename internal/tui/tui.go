// Package tui provides a Bubble Tea terminal user interface for the
// download queue.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/mediaqueue/internal/model"
	"github.com/handiism/mediaqueue/internal/queue"
)

// RefreshInterval is how often the queue view is redrawn from a snapshot.
const RefreshInterval = 200 * time.Millisecond

// maxLogs is how many event messages stay on screen.
const maxLogs = 8

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500")).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(0, 1)
)

// Focus is the part of the screen receiving key presses.
type Focus int

const (
	FocusInput Focus = iota
	FocusQueue
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   queue.Level
}

// Controller is the queue surface the UI drives. *queue.Manager
// implements it.
type Controller interface {
	Ingest(url string, replace bool, label string)
	Start()
	Stop()
	IsRunning() bool
	Remove(id string) bool
	ClearTerminal() int
	SetSelected(id string, selected bool)
	SelectAll()
	IsSelected(id string) bool
	Snapshot() []model.QueueItem
	LastSummary() queue.Summary
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	focus     Focus
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model

	queue   Controller
	events  <-chan queue.Event
	items   []model.QueueItem
	cursor  int
	running bool
	replace bool
	verbose bool
	logs    []LogEntry
	summary *queue.Summary

	// onFinish runs after a run ends, e.g. to send notifications.
	onFinish func(queue.Summary)

	downloadDir string
	width       int
	height      int
}

// NewModel creates a new TUI model over q. events delivers the queue's
// events; it may be nil.
func NewModel(q Controller, events <-chan queue.Event, downloadDir string) Model {
	ti := textinput.New()
	ti.Placeholder = "https://open.spotify.com/album/... or https://youtu.be/..."
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	return Model{
		focus:       FocusInput,
		textInput:   ti,
		spinner:     sp,
		progress:    prog,
		queue:       q,
		events:      events,
		downloadDir: downloadDir,
	}
}

// OnFinish registers f to run with the summary of every finished run.
func (m Model) OnFinish(f func(queue.Summary)) Model {
	m.onFinish = f
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.tick(), m.waitForEvent())
}

// Message types
type (
	// TickMsg triggers a redraw from a fresh queue snapshot.
	TickMsg struct{}

	// EventMsg carries one queue event.
	EventMsg struct {
		Event queue.Event
	}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case TickMsg:
		m.refresh()
		cmds = append(cmds, m.progress.SetPercent(m.percentDone()), m.tick())

	case EventMsg:
		m.handleEvent(msg.Event)
		cmds = append(cmds, m.waitForEvent())

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.focus == FocusInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		m.queue.Stop()
		return tea.Quit, true
	case "tab":
		m.toggleFocus()
		return nil, true
	}

	if m.focus == FocusInput {
		switch msg.String() {
		case "enter":
			if url := strings.TrimSpace(m.textInput.Value()); url != "" {
				m.queue.Ingest(url, m.replace, "")
				m.addLog(LogEntry{Message: "Çözümleniyor: " + url, Level: queue.LevelVerbose})
				m.textInput.SetValue("")
			}
			return nil, true
		case "esc":
			m.toggleFocus()
			return nil, true
		}
		return nil, false
	}

	switch msg.String() {
	case "q", "esc":
		m.queue.Stop()
		return tea.Quit, true
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case " ":
		if item, ok := m.current(); ok {
			m.queue.SetSelected(item.ID, !m.queue.IsSelected(item.ID))
		}
	case "a":
		m.queue.SelectAll()
	case "s":
		m.summary = nil
		m.queue.Start()
	case "x":
		m.queue.Stop()
		m.addLog(LogEntry{Message: "Durduruluyor...", Level: queue.LevelWarning})
	case "d":
		if item, ok := m.current(); ok && !item.State.IsActive() {
			m.queue.Remove(item.ID)
		}
	case "c":
		n := m.queue.ClearTerminal()
		m.addLog(LogEntry{Message: fmt.Sprintf("%d parça temizlendi", n), Level: queue.LevelInfo})
	case "r":
		m.replace = !m.replace
	case "v":
		m.verbose = !m.verbose
	}
	m.refresh()
	return nil, true
}

func (m *Model) toggleFocus() {
	if m.focus == FocusInput {
		m.focus = FocusQueue
		m.textInput.Blur()
		return
	}
	m.focus = FocusInput
	m.textInput.Focus()
}

func (m *Model) handleEvent(ev queue.Event) {
	switch ev.Kind {
	case queue.EventItemChanged:
		switch ev.State.Phase {
		case model.PhaseFailed:
			m.addLog(LogEntry{Message: ev.Title + ": " + ev.Message, Level: queue.LevelError})
		case model.PhaseCompleted:
			m.addLog(LogEntry{Message: ev.Title + ": " + ev.Message, Level: queue.LevelSuccess})
		}
	case queue.EventItemRemoved, queue.EventItemsAdded:
		if ev.Message != "" {
			m.addLog(LogEntry{Message: ev.Message, Level: queue.LevelVerbose})
		}
	case queue.EventRunFinished:
		m.summary = ev.Summary
		m.addLog(LogEntry{Message: ev.Message, Level: ev.Level})
		if m.onFinish != nil && ev.Summary != nil {
			go m.onFinish(*ev.Summary)
		}
	default:
		m.addLog(LogEntry{Message: ev.Message, Level: ev.Level})
	}
}

func (m *Model) addLog(entry LogEntry) {
	if entry.Message == "" {
		return
	}
	m.logs = append(m.logs, entry)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// refresh copies the queue state for rendering.
func (m *Model) refresh() {
	m.items = m.queue.Snapshot()
	m.running = m.queue.IsRunning()
	if m.cursor >= len(m.items) {
		m.cursor = max(len(m.items)-1, 0)
	}
}

func (m Model) current() (model.QueueItem, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return model.QueueItem{}, false
	}
	return m.items[m.cursor], true
}

// percentDone is the share of selected items that reached a terminal state.
func (m Model) percentDone() float64 {
	var selected, done int
	for _, item := range m.items {
		if !m.queue.IsSelected(item.ID) {
			continue
		}
		selected++
		if item.State.IsTerminal() {
			done++
		}
	}
	if selected == 0 {
		return 0
	}
	return float64(done) / float64(selected)
}

// tick returns a command to refresh the queue view.
func (m Model) tick() tea.Cmd {
	return tea.Tick(RefreshInterval, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// waitForEvent returns a command that delivers the next queue event.
func (m Model) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return nil
		}
		return EventMsg{Event: ev}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("🎵 mediaqueue"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download path: " + m.downloadDir))
	b.WriteString("\n\n")

	b.WriteString(subtitleStyle.Render("URL ekle:"))
	b.WriteString("\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n")
	replaceCheck := "[ ]"
	if m.replace {
		replaceCheck = "[×]"
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %s Replace queue (r)", replaceCheck)))
	b.WriteString("\n\n")

	b.WriteString(m.viewQueue())
	b.WriteString("\n")

	if m.running {
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
	}
	b.WriteString(m.progress.View())
	b.WriteString("\n")
	if m.summary != nil && !m.running {
		b.WriteString(boxStyle.Render("✨ " + m.summary.String()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(m.renderLogs())

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewQueue() string {
	if len(m.items) == 0 {
		return dimStyle.Render("Kuyruk boş") + "\n"
	}

	var b strings.Builder
	start, end := m.visibleRange()
	for i := start; i < end; i++ {
		item := m.items[i]
		check := "[ ]"
		if m.queue.IsSelected(item.ID) {
			check = "[×]"
		}
		line := fmt.Sprintf("%s %s - %s", check, item.Metadata.Artist, item.Metadata.Title)
		if r := []rune(line); m.width > 40 && len(r) > m.width-27 {
			line = string(r[:m.width-27]) + "..."
		}
		status := stateStyle(item.State).Render(item.Status())

		prefix := "  "
		if i == m.cursor && m.focus == FocusQueue {
			prefix = cursorStyle.Render("› ")
		}
		b.WriteString(prefix + line + "  " + status + "\n")
	}
	if len(m.items) > end-start {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  (%d/%d)", m.cursor+1, len(m.items))) + "\n")
	}
	return b.String()
}

// visibleRange keeps the cursor on screen.
func (m Model) visibleRange() (int, int) {
	rows := 12
	if m.height > 0 {
		rows = max(m.height-22, 5)
	}
	if len(m.items) <= rows {
		return 0, len(m.items)
	}
	start := max(m.cursor-rows/2, 0)
	end := min(start+rows, len(m.items))
	return end - rows, end
}

func stateStyle(s model.State) lipgloss.Style {
	switch s.Phase {
	case model.PhaseCompleted, model.PhaseSkipped:
		return successStyle
	case model.PhaseFailed:
		return errorStyle
	case model.PhaseFound, model.PhaseDownloading, model.PhaseTagging:
		return warningStyle
	default:
		return dimStyle
	}
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		if log.Level == queue.LevelVerbose && !m.verbose {
			continue
		}
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case queue.LevelError:
			style = errorStyle
			prefix = "✗"
		case queue.LevelWarning:
			style = warningStyle
			prefix = "!"
		case queue.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case queue.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	if m.focus == FocusInput {
		return "enter: add • tab: queue • ctrl+c: quit"
	}
	if m.running {
		return "x: stop • space: select • tab: input • q: quit"
	}
	return "s: start • space/a: select • d: remove • c: clear done • r: replace • v: verbose • tab: input • q: quit"
}

// Run starts the TUI over q until the user quits. events should be fed
// by the callback from EventChannel. onFinish may be nil.
func Run(ctx context.Context, q Controller, events <-chan queue.Event, downloadDir string, onFinish func(queue.Summary)) error {
	p := tea.NewProgram(NewModel(q, events, downloadDir).OnFinish(onFinish), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// EventChannel returns a buffered event channel and a callback feeding
// it for queue.NewManager. Events are dropped while the buffer is full,
// since the view refreshes from snapshots anyway.
func EventChannel(size int) (<-chan queue.Event, func(queue.Event)) {
	ch := make(chan queue.Event, size)
	return ch, func(ev queue.Event) {
		select {
		case ch <- ev:
		default:
		}
	}
}
