// Package tui renders a chat session in the terminal with bubbletea.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ethanbaker/essaychat/pkg/transcript"
	"github.com/muesli/reflow/wordwrap"
)

// Session is the conversation the UI drives. Implemented by *chat.Controller
type Session interface {
	Dispatch(ctx context.Context, rawText string) (bool, <-chan struct{})
	Transcript() transcript.Reader
	Pending() bool
}

type KeyMap struct {
	Submit     key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Quit       key.Binding
}

var DefaultKeyMap = KeyMap{
	Submit:     key.NewBinding(key.WithKeys("enter")),
	ScrollUp:   key.NewBinding(key.WithKeys("pgup")),
	ScrollDown: key.NewBinding(key.WithKeys("pgdown")),
	Quit:       key.NewBinding(key.WithKeys("ctrl+c", "esc")),
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("118"))
	hintStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	turnStyle      = lipgloss.NewStyle().PaddingLeft(2)
)

const (
	headerHeight = 2
	footerHeight = 3
)

// refreshMsg tells the model the transcript changed
type refreshMsg struct{}

type Model struct {
	ctx     context.Context
	session Session
	keyMap  KeyMap

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	changes     chan struct{}
	unsubscribe func()

	turns   []transcript.Turn
	pending bool
	width   int
}

// New creates a model bound to session. Close must be called once the program exits
func New(ctx context.Context, session Session) Model {
	in := textinput.New()
	in.Placeholder = "Ask about an essay..."
	in.Prompt = "> "
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))

	m := Model{
		ctx:      ctx,
		session:  session,
		keyMap:   DefaultKeyMap,
		input:    in,
		viewport: viewport.New(80, 20),
		spinner:  sp,
		changes:  make(chan struct{}, 1),
		width:    80,
	}

	// Coalesce bursts of events into a single refresh
	changes := m.changes
	m.unsubscribe = session.Transcript().Subscribe(func(transcript.Event) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	m.sync()
	return m
}

// Close detaches the model from the transcript
func (m Model) Close() {
	m.unsubscribe()
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return refreshMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForChange(m.changes))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keyMap.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keyMap.Submit):
			// Input is disabled while a question is pending
			if m.pending || m.session.Pending() {
				return m, nil
			}
			if accepted, _ := m.session.Dispatch(m.ctx, m.input.Value()); accepted {
				m.input.Reset()
				m.sync()
			}

		case key.Matches(msg, m.keyMap.ScrollUp), key.Matches(msg, m.keyMap.ScrollDown):
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)

		default:
			if !m.pending {
				m.input, cmd = m.input.Update(msg)
				cmds = append(cmds, cmd)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - 4
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-headerHeight-footerHeight, 1)
		m.render()

	case refreshMsg:
		m.sync()
		cmds = append(cmds, waitForChange(m.changes))

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// sync copies the transcript into the model and re-renders the conversation
func (m *Model) sync() {
	reader := m.session.Transcript()
	m.turns = reader.Turns()
	m.pending = reader.Pending()
	m.render()
}

func (m *Model) render() {
	m.viewport.SetContent(renderTurns(m.turns, m.width))
	m.viewport.GotoBottom()
}

func renderTurns(turns []transcript.Turn, width int) string {
	wrapAt := max(width-turnStyle.GetHorizontalFrameSize(), 10)

	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteString("\n")
		}

		if turn.Role == transcript.RoleUser {
			b.WriteString(userStyle.Render("You"))
		} else {
			b.WriteString(assistantStyle.Render("Assistant"))
		}
		b.WriteString("\n")
		b.WriteString(turnStyle.Render(wordwrap.String(turn.Content, wrapAt)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Essay Chat"))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n\n")

	if m.pending {
		b.WriteString(m.spinner.View() + " Thinking...")
	} else {
		b.WriteString(m.input.View())
	}
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("enter: send • pgup/pgdown: scroll • esc: quit"))

	return b.String()
}

// Run blocks until the user quits or ctx is cancelled
func Run(ctx context.Context, session Session, opts ...tea.ProgramOption) error {
	m := New(ctx, session)
	defer m.Close()

	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(m, opts...).Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
