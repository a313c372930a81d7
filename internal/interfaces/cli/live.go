package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/flowchat-ai/flowchat-cli/internal/chat"
	"github.com/flowchat-ai/flowchat-cli/internal/sse"
)

var (
	questionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle   = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("8"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	footerStyle   = lipgloss.NewStyle().Faint(true)
)

// eventMsg carries one stream event into the Bubble Tea loop.
type eventMsg struct {
	ev sse.StreamEvent
}

// streamWarnMsg carries a recoverable, frame-scoped error.
type streamWarnMsg struct {
	err error
}

// streamDoneMsg signals that the stream finished, successfully or not.
type streamDoneMsg struct {
	err error
}

// liveModel renders one streamed answer with agent-flow progress.
type liveModel struct {
	question  string
	answer    string
	status    string
	sessionID string
	warnings  int
	done      bool
	err       error
	width     int
}

func newLiveModel(question string) liveModel {
	return liveModel{question: question, width: 80}
}

func (m liveModel) Init() tea.Cmd {
	return nil
}

func (m liveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}

	case eventMsg:
		switch msg.ev.Kind {
		case sse.EventToken:
			m.answer += msg.ev.Text
		case sse.EventContent:
			m.answer += msg.ev.Content.Content
		case sse.EventAgentFlow:
			m.status = fmt.Sprintf("flow %s: %s", msg.ev.AgentFlow.FlowID, msg.ev.AgentFlow.Status)
		case sse.EventNextAgentFlow:
			m.status = fmt.Sprintf("agent %s: %s", msg.ev.NextAgentFlow.AgentName, msg.ev.NextAgentFlow.Status)
		case sse.EventSessionID:
			m.sessionID = msg.ev.Text
		case sse.EventEnd:
			m.status = ""
		}

	case streamWarnMsg:
		m.warnings++

	case streamDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m liveModel) View() string {
	body := lipgloss.NewStyle().Width(m.width).Render(m.answer)
	s := questionStyle.Render("> "+m.question) + "\n\n" + body + "\n"
	if m.status != "" {
		s += statusStyle.Render(m.status) + "\n"
	}
	if m.err != nil {
		s += errorStyle.Render("message failed: "+m.err.Error()) + "\n"
	}
	if !m.done {
		s += footerStyle.Render("streaming... (q to cancel)") + "\n"
	} else if m.sessionID != "" {
		s += footerStyle.Render("session "+m.sessionID) + "\n"
	}
	return s
}

// runLiveChat drives the stream from a goroutine and pumps events into the
// Bubble Tea program. Quitting the view cancels the stream context, which
// stops the read loop without further callbacks.
func runLiveChat(ctx context.Context, container *Container, req chat.PendingRequest) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(newLiveModel(req.Question), tea.WithContext(ctx))

	go func() {
		handler := sse.HandlerFuncs{
			Event: func(ev sse.StreamEvent) {
				program.Send(eventMsg{ev: ev})
			},
			Error: func(err error) {
				if !isFatalStreamError(err) {
					container.Logger.Warn().Err(err).Msg("stream reported a recoverable error")
					program.Send(streamWarnMsg{err: err})
				}
			},
		}
		_, err := container.Client.Chat(ctx, req, handler)
		program.Send(streamDoneMsg{err: err})
	}()

	final, err := program.Run()
	cancel()
	if err != nil {
		return fmt.Errorf("live view failed: %w", err)
	}
	if m, ok := final.(liveModel); ok && m.err != nil {
		return fmt.Errorf("message failed: %w", m.err)
	}
	return nil
}
