package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/winscene/internal/daemon"
	"github.com/1broseidon/winscene/internal/registry"
	"github.com/1broseidon/winscene/internal/store"
)

// WatchConfig configures the live window table.
type WatchConfig struct {
	Store store.Store
	// Interval is how often the store is re-read.
	Interval time.Duration
	// Alive reports process liveness. Nil means daemon.ProcessAlive.
	Alive daemon.AliveFunc
}

type tickMsg time.Time

type snapshotMsg struct {
	windows []registry.WindowRecord
	count   int
	err     error
}

type actionMsg struct {
	text string
	err  error
}

// model is the bubbletea model for the watch view.
type model struct {
	store      store.Store
	interval   time.Duration
	alive      daemon.AliveFunc
	reconciler *daemon.Reconciler

	table      table.Model
	windows    []registry.WindowRecord
	count      int
	lastErr    error
	status     string
	confirming bool

	width  int
	height int
}

var columns = []table.Column{
	{Title: "", Width: 1},
	{Title: "ID", Width: 4},
	{Title: "X", Width: 6},
	{Title: "Y", Width: 6},
	{Title: "W", Width: 6},
	{Title: "H", Width: 6},
	{Title: "PID", Width: 8},
	{Title: "Title", Width: 20},
}

func newModel(cfg WatchConfig) model {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Second
	}
	alive := cfg.Alive
	if alive == nil {
		alive = daemon.ProcessAlive
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62"))
	t.SetStyles(styles)

	return model{
		store:      cfg.Store,
		interval:   interval,
		alive:      alive,
		reconciler: daemon.NewReconciler(daemon.ReconcilerConfig{}, cfg.Store, alive),
		table:      t,
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.tick())
}

func (m model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) load() tea.Cmd {
	st := m.store
	return func() tea.Msg {
		wins, err := registry.LoadWindows(st)
		if err != nil {
			return snapshotMsg{err: err}
		}
		count, err := registry.LoadCount(st)
		return snapshotMsg{windows: wins, count: count, err: err}
	}
}

func (m model) prune() tea.Cmd {
	r := m.reconciler
	return func() tea.Msg {
		n, err := r.ReconcileNow()
		return actionMsg{text: fmt.Sprintf("pruned %d stale window(s)", n), err: err}
	}
}

func (m model) clear() tea.Cmd {
	st := m.store
	return func() tea.Msg {
		if err := st.Clear(); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{text: "store cleared"}
	}
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(max(m.height-4, 3))
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.load(), m.tick())

	case snapshotMsg:
		m.lastErr = msg.err
		if msg.err == nil {
			m.windows = msg.windows
			m.count = msg.count
			m.table.SetRows(m.rows())
		}
		return m, nil

	case actionMsg:
		m.lastErr = msg.err
		if msg.err == nil {
			m.status = msg.text
		}
		return m, m.load()

	case tea.KeyMsg:
		if m.confirming {
			m.confirming = false
			if msg.String() == "y" {
				return m, m.clear()
			}
			m.status = "clear cancelled"
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "p":
			return m, m.prune()
		case "c":
			m.confirming = true
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m model) rows() []table.Row {
	rows := make([]table.Row, 0, len(m.windows))
	for _, w := range m.windows {
		dot, pid, title := aliveDot, "", ""
		if p, ok := w.PID(); ok {
			pid = strconv.Itoa(p)
			if !m.alive(p) {
				dot = deadDot
			}
		}
		if md, ok := w.Metadata.(map[string]any); ok {
			title, _ = md["title"].(string)
		}
		rows = append(rows, table.Row{
			dot,
			strconv.Itoa(w.ID),
			strconv.Itoa(w.Shape.X),
			strconv.Itoa(w.Shape.Y),
			strconv.Itoa(w.Shape.W),
			strconv.Itoa(w.Shape.H),
			pid,
			title,
		})
	}
	return rows
}

// View implements tea.Model.
func (m model) View() string {
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render("winscene"),
		statusStyle.Render(fmt.Sprintf("%d window(s) · next id %d", len(m.windows), m.count+1)),
	)
	status := helpStyle.Render(m.status)
	if m.lastErr != nil {
		status = errorStyle.Render("error: " + m.lastErr.Error())
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.table.View(),
		status,
		renderHelpBar(m.width, m.confirming),
	)
}

// Run shows the live window table until the user quits or ctx is done.
func Run(ctx context.Context, cfg WatchConfig) error {
	if err := requireTTY(); err != nil {
		return err
	}
	p := tea.NewProgram(newModel(cfg), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("watch view failed: %w", err)
	}
	return nil
}
