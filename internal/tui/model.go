package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apierrors "github.com/diogo/campuschat/internal/errors"
	"github.com/diogo/campuschat/internal/models"
	"github.com/diogo/campuschat/internal/render"
	"github.com/diogo/campuschat/internal/store"
)

const panelWidth = 58

// Sender sends prompts within one chat session
type Sender interface {
	ID() string
	Send(ctx context.Context, prompt string) (models.Message, error)
}

// StateView is the read side of the application store
type StateView interface {
	Messages(sessionID string) []models.Message
	Panel() store.PanelState
	ClosePanel()
}

// Message types for the TUI
type (
	// storeEventMsg carries a store change into the update loop
	storeEventMsg struct {
		event store.Event
	}
	sendDoneMsg struct {
		msg models.Message
		err error
	}
)

// Model is the chat screen
type Model struct {
	sender   Sender
	state    StateView
	endpoint string
	markdown render.Options

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	messages  []models.Message
	panel     store.PanelState
	showPanel bool
	loading   bool
	cancel    context.CancelFunc
	ready     bool
	err       error
	notice    string

	width  int
	height int
}

// NewChatModel creates the chat screen for a session
func NewChatModel(sender Sender, state StateView, endpoint string, markdown render.Options) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask about textbooks, furniture, bikes..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	m := Model{
		sender:   sender,
		state:    state,
		endpoint: endpoint,
		markdown: markdown,
		textarea: ta,
		spinner:  s,
	}
	m.refresh()
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit

		case "esc":
			if m.loading {
				if m.cancel != nil {
					m.cancel()
				}
				m.notice = "Cancelling..."
				return m, nil
			}
			return m, tea.Quit

		case "ctrl+p":
			if m.panel.Open() {
				m.showPanel = !m.showPanel
				m.layout()
			}
			return m, nil

		case "enter":
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			switch input {
			case "exit", "quit", "/exit", "/quit":
				return m, tea.Quit
			case "/close":
				m.textarea.Reset()
				m.state.ClosePanel()
				return m, nil
			}

			m.textarea.Reset()
			m.loading = true
			m.err = nil
			m.notice = ""

			ctx, cancel := context.WithCancel(context.Background())
			m.cancel = cancel
			return m, tea.Batch(m.send(ctx, input), m.spinner.Tick)
		}

	case storeEventMsg:
		if msg.event.Kind != store.EventPanelChanged && msg.event.SessionID != m.sender.ID() {
			return m, nil
		}
		wasOpen := m.panel.Open()
		m.refresh()
		if msg.event.Kind == store.EventPanelChanged {
			if m.panel.Open() && !wasOpen {
				m.showPanel = true
			}
			if !m.panel.Open() {
				m.showPanel = false
			}
			m.layout()
		}
		m.viewport.GotoBottom()

	case sendDoneMsg:
		m.loading = false
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		switch {
		case msg.err == nil:
		case errors.Is(msg.err, context.Canceled):
			m.notice = "Reply cancelled."
		default:
			m.err = msg.err
		}
		m.refresh()
		m.viewport.GotoBottom()

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	// only keys reach the textarea, so escape sequences do not leak into it
	if !m.loading {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) send(ctx context.Context, prompt string) tea.Cmd {
	sender := m.sender
	return func() tea.Msg {
		msg, err := sender.Send(ctx, prompt)
		return sendDoneMsg{msg: msg, err: err}
	}
}

// refresh pulls messages and the panel from the store
func (m *Model) refresh() {
	m.messages = m.state.Messages(m.sender.ID())
	m.panel = m.state.Panel()
	m.updateViewport()
}

func (m *Model) chatWidth() int {
	w := m.width - 4
	if m.showPanel && m.width >= panelWidth+40 {
		w -= panelWidth + 2
	}
	return w
}

func (m *Model) layout() {
	if m.width == 0 {
		return
	}
	headerHeight := 3
	inputHeight := 5
	statusHeight := 1
	vpHeight := m.height - headerHeight - inputHeight - statusHeight - 3
	if vpHeight < 5 {
		vpHeight = 5
	}

	w := m.chatWidth()
	if !m.ready {
		m.viewport = viewport.New(w, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = w
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(m.width - 8)
	m.updateViewport()
}

func (m *Model) updateViewport() {
	if !m.ready {
		return
	}
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 4
	if bubbleWidth < 10 {
		bubbleWidth = 10
	}

	for i, msg := range m.messages {
		if i > 0 {
			content.WriteString("\n")
		}
		switch msg.Role {
		case models.RoleUser:
			content.WriteString(userLabelStyle.Render("You"))
			content.WriteString("\n")
			content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(msg.Content))
		default:
			content.WriteString(assistantLabelStyle.Render("Campus Assistant"))
			content.WriteString("\n")
			for _, inv := range msg.ToolInvocations {
				content.WriteString(toolNoteStyle.Render("used " + inv.ToolName))
				content.WriteString("\n")
			}
			body := msg.Content
			if body == "" && m.loading {
				body = "..."
			}
			rendered, err := render.Markdown(body, m.markdown.WithWidth(bubbleWidth-2))
			if err != nil {
				rendered = body
			}
			content.WriteString(assistantBubbleStyle.Width(bubbleWidth).Render(strings.TrimRight(rendered, "\n")))
			if msg.Interrupted {
				content.WriteString("\n")
				content.WriteString(interruptedStyle.Render("(interrupted)"))
			}
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	contentWidth := m.width - 4
	var sections []string

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("CampusMart Assistant"),
		hintStyle.Render("  |  "),
		subtitleStyle.Render(m.endpoint),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(header))

	var chatContent string
	if len(m.messages) == 0 {
		chatContent = m.renderWelcome()
	} else {
		chatContent = m.viewport.View()
	}
	chatPanel := messagesAreaStyle.Width(m.viewport.Width).Height(m.viewport.Height).Render(chatContent)

	if m.showPanel && m.panel.Open() && m.width >= panelWidth+40 {
		side := panelStyle.Width(panelWidth).Height(m.viewport.Height).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				panelTitleStyle.Render("Products"),
				render.ProductTable(m.panel.Data, currentTheme, panelWidth-2),
			),
		)
		chatPanel = lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, side)
	}
	sections = append(sections, chatPanel)

	var input string
	if m.loading {
		input = fmt.Sprintf("%s %s", m.spinner.View(), loadingStyle.Render("Looking around campus..."))
	} else {
		input = lipgloss.JoinVertical(lipgloss.Left, inputLabelStyle.Render("You"), m.textarea.View())
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(input))

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.err != nil {
		sections = append(sections, formatError(m.err))
	} else if m.notice != "" {
		sections = append(sections, hintStyle.Render(m.notice))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	return lipgloss.JoinVertical(lipgloss.Center,
		"",
		welcomeTitleStyle.Width(width).Render("What are you looking for today?"),
		"",
		welcomeStyle.Width(width).Render("Search listings from students near you by typing below"),
	)
}

func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct{ key, desc string }{
		{"Enter", "Send"},
		{"Esc", "Cancel/Quit"},
		{"Ctrl+P", "Products"},
	}
	if !m.loading {
		shortcuts[1].desc = "Quit"
	}

	items := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  |  "))
}

func formatError(err error) string {
	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", err)))

	hint := lipgloss.NewStyle().Foreground(colorPrimary).PaddingLeft(2)
	switch {
	case apierrors.IsAuthError(err):
		sb.WriteString("\n")
		sb.WriteString(hint.Render("Your session expired. Run 'campuschat login' to refresh it"))
	case apierrors.IsTimeoutError(err):
		sb.WriteString("\n")
		sb.WriteString(hint.Render("The assistant stopped responding. Try again"))
	case apierrors.IsNetworkError(err):
		sb.WriteString("\n")
		sb.WriteString(hint.Render("Check your internet connection"))
	}
	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString("\n")
		sb.WriteString(lipgloss.NewStyle().Foreground(colorTextDim).PaddingLeft(2).Render(fmt.Sprintf("HTTP Status: %d", status)))
	}
	return sb.String()
}

// Subscriber is the write side of the store the TUI listens to
type Subscriber interface {
	Subscribe(fn func(store.Event)) (unsubscribe func())
}

// ChatStore is the store the chat screen reads and listens to
type ChatStore interface {
	StateView
	Subscriber
}

// RunChat runs the chat screen until the user quits
func RunChat(sender Sender, st ChatStore, endpoint string, markdown render.Options) error {
	p := tea.NewProgram(NewChatModel(sender, st, endpoint, markdown), tea.WithAltScreen())

	unsubscribe := st.Subscribe(func(ev store.Event) {
		p.Send(storeEventMsg{event: ev})
	})
	defer unsubscribe()

	_, err := p.Run()
	return err
}
