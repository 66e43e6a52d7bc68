package monitor

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/hostwatch/internal/state"
)

// DefaultRefresh is the render tick when none is configured.
const DefaultRefresh = 500 * time.Millisecond

// Model is the Bubble Tea model for the dashboard. All dashboard state lives
// in the store; the model only holds terminal concerns.
type Model struct {
	store    *state.Store
	refresh  time.Duration
	onQuit   func()
	help     help.Model
	width    int
	quitting bool
	now      func() time.Time
}

// tickMsg drives the render duty.
type tickMsg time.Time

// shutdownMsg stops the program when the process is shutting down for a
// reason other than a quit key.
type shutdownMsg struct{}

// NewModel creates a dashboard model over store. onQuit runs when the user
// presses a quit key and may be nil.
func NewModel(store *state.Store, refresh time.Duration, onQuit func()) Model {
	if refresh <= 0 {
		refresh = DefaultRefresh
	}
	return Model{
		store:   store,
		refresh: refresh,
		onQuit:  onQuit,
		help:    help.New(),
		now:     time.Now,
	}
}

// Init starts the render tick.
func (m Model) Init() tea.Cmd {
	return m.tickCmd()
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case tickMsg:
		return m, m.tickCmd()

	case shutdownMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		if m.onQuit != nil {
			m.onQuit()
		}
		return m, tea.Quit

	case key.Matches(msg, keys.Next):
		m.store.NextHost()

	case key.Matches(msg, keys.Prev):
		m.store.PrevHost()

	case key.Matches(msg, keys.Kind):
		if i, ok := kindIndex(msg.String()); ok {
			m.store.SelectKind(i)
		}
	}
	return m, nil
}

// View renders the current store snapshot.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return Render(m.store.Snapshot(), m.help.View(keys), m.now())
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run starts the TUI on the alternate screen and blocks until the user quits
// or ctx is cancelled. A quit key calls cancel so the rest of the process
// shuts down with it.
func Run(ctx context.Context, store *state.Store, refresh time.Duration, cancel context.CancelFunc, opts ...tea.ProgramOption) error {
	model := NewModel(store, refresh, cancel)
	p := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)

	go func() {
		<-ctx.Done()
		p.Send(shutdownMsg{})
	}()

	_, err := p.Run()
	return err
}

// RunPlain prints every host's summaries to w once per refresh until ctx is
// cancelled.
func RunPlain(ctx context.Context, store *state.Store, refresh time.Duration, w io.Writer) error {
	if refresh <= 0 {
		refresh = DefaultRefresh
	}
	ticker := time.NewTicker(refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if _, err := io.WriteString(w, RenderPlain(store.All(), now)); err != nil {
				return err
			}
		}
	}
}
