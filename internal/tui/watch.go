// Package tui provides the interactive terminal views: a live watch of
// Spaces and windows, and a picker for moving a window.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/1broseidon/dashspace/internal/platform"
	"github.com/1broseidon/dashspace/internal/service"
	"github.com/1broseidon/dashspace/internal/spaces"
)

// DefaultRefreshInterval is how often the watch view re-reads state.
const DefaultRefreshInterval = time.Second

// windowItem is a list item representing one window.
type windowItem struct {
	state   service.WindowState
	focused bool
}

func (i windowItem) Title() string {
	dot := mutedDot
	if i.state.OnCurrent {
		dot = goodDot
	}
	name := i.state.AppID
	if name == "" {
		name = fmt.Sprintf("pid %d", i.state.PID)
	}
	if i.state.Title != "" {
		name += ": " + i.state.Title
	}
	if i.focused {
		name += " (focused)"
	}
	return dot + " " + name
}

func (i windowItem) Description() string {
	if i.state.Space == 0 {
		return fmt.Sprintf("window %d", i.state.ID)
	}
	return fmt.Sprintf("window %d  space %d", i.state.ID, i.state.Space)
}

func (i windowItem) FilterValue() string { return i.state.AppID + " " + i.state.Title }

type tickMsg time.Time

type snapshotMsg struct {
	snap snapshot
	err  error
}

type movedMsg struct {
	res spaces.MoveResult
	err error
}

// watchModel is the bubbletea model for the watch view.
type watchModel struct {
	svc      *service.Service
	interval time.Duration

	list   list.Model
	snap   snapshot
	err    error
	note   string
	width  int
	height int
}

func newWatchModel(svc *service.Service, interval time.Duration) watchModel {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("250")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Windows"
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)

	return watchModel{svc: svc, interval: interval, list: l}
}

// Init implements tea.Model.
func (m watchModel) Init() tea.Cmd {
	return m.refresh()
}

func (m watchModel) refresh() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		snap, err := loadSnapshot(svc)
		return snapshotMsg{snap: snap, err: err}
	}
}

func (m watchModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m watchModel) move(window platform.WindowID, target platform.SpaceID) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		res, err := svc.Spaces.MoveWindow(context.Background(), window, target)
		return movedMsg{res: res, err: err}
	}
}

// Update implements tea.Model.
func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, m.refresh()
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			return m.moveSelected(int(msg.String()[0] - '1'))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, m.listHeight())
		return m, nil

	case tickMsg:
		return m, m.refresh()

	case snapshotMsg:
		m.err = msg.err
		if msg.err == nil {
			m.snap = msg.snap
			m.list.SetItems(windowItems(msg.snap))
		}
		return m, m.tick()

	case movedMsg:
		switch {
		case msg.err != nil:
			m.note = msg.err.Error()
		case msg.res.Outcome == spaces.OutcomeUnconfirmed:
			m.note = msg.res.Err().Error()
		default:
			m.note = fmt.Sprintf("window %d: %s", msg.res.Window, msg.res.Outcome)
		}
		return m, m.refresh()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m watchModel) moveSelected(index int) (tea.Model, tea.Cmd) {
	if index < 0 || index >= len(m.snap.spaces) {
		m.note = fmt.Sprintf("no space #%d", index+1)
		return m, nil
	}
	item, ok := m.list.SelectedItem().(windowItem)
	if !ok {
		m.note = "no window selected"
		return m, nil
	}
	target := m.snap.spaces[index]
	m.note = fmt.Sprintf("moving window %d to space %d", item.state.ID, target)
	return m, m.move(item.state.ID, target)
}

func (m watchModel) listHeight() int {
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

func windowItems(snap snapshot) []list.Item {
	items := make([]list.Item, 0, len(snap.windows))
	for _, w := range snap.windows {
		items = append(items, windowItem{state: w, focused: w.ID == snap.focused})
	}
	return items
}

// View implements tea.Model.
func (m watchModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	footer := helpStyle.Width(m.width).Render("↑/↓: select  1-9: move to space  r: refresh  q: quit")
	var note string
	switch {
	case m.err != nil:
		note = errorStyle.Render(m.err.Error())
	case m.note != "":
		note = noteStyle.Render(m.note)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		renderHeader(m.svc, m.snap, m.width),
		renderSpaces(m.snap),
		m.list.View(),
		note,
		footer,
	)
}

func renderHeader(svc *service.Service, snap snapshot, width int) string {
	var parts []string
	parts = append(parts, "backend:"+svc.Backend.Name())
	switch {
	case svc.Backend.Elements().Capability() != platform.Available:
		parts = append(parts, mutedDot+" accessibility unavailable")
	case snap.trusted:
		parts = append(parts, goodDot+" accessibility granted")
	default:
		parts = append(parts, badDot+" accessibility not granted")
	}
	if !snap.at.IsZero() {
		parts = append(parts, "updated "+snap.at.Format("15:04:05"))
	}
	return statusBarStyle.Width(width).Render(strings.Join(parts, "  "))
}

func renderSpaces(snap snapshot) string {
	if len(snap.spaces) == 0 {
		return helpStyle.Render("no spaces")
	}
	cells := make([]string, 0, len(snap.spaces))
	for i, id := range snap.spaces {
		label := fmt.Sprintf("%d:%d", i+1, id)
		if snap.current[id] {
			cells = append(cells, currentSpaceStyle.Render(label))
		} else {
			cells = append(cells, otherSpaceStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

// Watch runs the live view until the user quits.
func Watch(svc *service.Service, interval time.Duration) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("watch requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	p := tea.NewProgram(newWatchModel(svc, interval), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
