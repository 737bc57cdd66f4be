package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/book-engine/pkg/session"
)

const (
	AgentName       = "Narrator"
	PlaceHolderText = "Choose a number, or type your own action..."
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config        *ConsoleConfig
	client        *http.Client
	state         *session.State
	storyViewport viewport.Model
	textarea      textarea.Model
	transcript    []string
	ready         bool
	width         int
	height        int
	err           error
	loading       bool
	copied        bool
}

type turnResultMsg struct {
	result *session.TurnResult
	err    error
}

var (
	storyPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingBottom(1).
			PaddingLeft(2).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")) // pale yellow

	riskStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, state *session.State) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = "> "
	ta.SetHeight(1)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	vp := viewport.New(60, 20)

	ui := ConsoleUI{
		config:        cfg,
		client:        client,
		state:         state,
		storyViewport: vp,
		textarea:      ta,
	}
	ui.transcript = append(ui.transcript,
		speakerStyle.Render(AgentName+": ")+narratorStyle.Render(state.Backstory),
		narratorStyle.Render(state.CurrentEvent.TextExcerpt))
	return ui
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.storyViewport.Width = msg.Width - 4
		m.storyViewport.Height = msg.Height - 8
		m.textarea.SetWidth(msg.Width - 6)
		m.storyViewport.SetContent(m.renderTranscript())
		m.storyViewport.GotoBottom()
		m.ready = true

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			_ = endSession(m.client, m.config.APIBaseURL, m.state.SessionID)
			return m, tea.Quit

		case tea.KeyCtrlY:
			if err := clipboard.WriteAll(m.state.SessionID.String()); err == nil {
				m.copied = true
			}

		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			action := m.resolveInput(input)
			m.transcript = append(m.transcript, userStyle.Render("You: "+action))
			m.textarea.Reset()
			m.loading = true
			m.err = nil
			m.storyViewport.SetContent(m.renderTranscript())
			m.storyViewport.GotoBottom()
			return m, m.submitAction(action)
		}

	case turnResultMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			break
		}
		m.state = &msg.result.State
		m.transcript = append(m.transcript,
			speakerStyle.Render(AgentName+": ")+narratorStyle.Render(msg.result.Consequence))
		m.storyViewport.SetContent(m.renderTranscript())
		m.storyViewport.GotoBottom()
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.storyViewport, vpCmd = m.storyViewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Book Engine - playing %s", m.state.Stats.Role)))
	b.WriteString("\n")
	b.WriteString(m.storyViewport.View())
	b.WriteString("\n")

	b.WriteString(m.renderChoices())
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(loadingStyle.Render("The narrator is thinking..."))
	case m.err != nil:
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	case m.copied:
		b.WriteString(promptStyle.Render("Session ID copied to clipboard"))
	default:
		b.WriteString(promptStyle.Render("Enter to act, Ctrl+Y to copy session ID, Esc to quit"))
	}
	b.WriteString("\n")
	b.WriteString(m.textarea.View())

	return storyPanelStyle.Render(b.String())
}

// resolveInput turns a numeric selection into its choice ID; any other text
// is a custom action.
func (m ConsoleUI) resolveInput(input string) string {
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(m.state.Choices) {
		return m.state.Choices[n-1].ID
	}
	return input
}

func (m ConsoleUI) submitAction(action string) tea.Cmd {
	return func() tea.Msg {
		result, err := applyAction(m.client, m.config.APIBaseURL, m.state.SessionID, action)
		return turnResultMsg{result: result, err: err}
	}
}

func (m ConsoleUI) renderTranscript() string {
	width := m.storyViewport.Width
	if width <= 0 {
		width = 60
	}
	return wordwrap.String(strings.Join(m.transcript, "\n\n"), width)
}

func (m ConsoleUI) renderChoices() string {
	var b strings.Builder
	for i, c := range m.state.Choices {
		b.WriteString(choiceStyle.Render(fmt.Sprintf("%d. %s", i+1, c.Title)))
		b.WriteString(riskStyle.Render(fmt.Sprintf(" (%s risk)", c.Risk)))
		b.WriteString("\n")
	}
	return b.String()
}
