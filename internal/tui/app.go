// Package tui is the terminal front end for eaglepub. It follows the
// bubbletea Model/Update/View loop: every screen of the publish flow is a
// state of one App model, and all network work happens inside tea.Cmd
// functions so the update loop never blocks.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"eaglepub/internal/config"
	"eaglepub/internal/logbook"
	"eaglepub/internal/publisher"
	"eaglepub/internal/session"
)

// appState represents which screen of the publish flow is showing.
type appState int

const (
	stateConnect appState = iota
	statePersona
	stateTeams
	stateCompose
	stateReview
	statePublishing
	stateResults
)

var stepNames = map[appState]string{
	stateConnect:    "Connect",
	statePersona:    "Choose Persona",
	stateTeams:      "Choose Teams",
	stateCompose:    "Compose Article",
	stateReview:     "Review",
	statePublishing: "Publishing",
	stateResults:    "Results",
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF")).
			MarginBottom(1)
	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F7B801")).
			Bold(true)
	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1)
	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4CAF50"))
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

// App is the main application model. It holds all UI state plus the
// session, orchestrator, and logbook the flow drives.
type App struct {
	cfg     *config.Config
	session *session.Session
	orch    *publisher.Orchestrator
	logbook *logbook.Logbook

	state     appState
	statusMsg string
	width     int
	height    int

	// Connect screen
	keyInput   textinput.Model
	spin       spinner.Model
	connecting bool

	// Persona screen
	personaList list.Model

	// Teams screen
	teamCursor int

	// Compose screen
	titleInput    textinput.Model
	subtitleInput textinput.Model
	bodyInput     textarea.Model
	composeFocus  composeField

	// Publishing / results
	prog         progress.Model
	progressCh   chan publishProgressMsg
	publishDone  int
	publishTotal int
	summary      publisher.Summary
}

// NewApp wires the TUI around one session.
func NewApp(cfg *config.Config, sess *session.Session, orch *publisher.Orchestrator, lb *logbook.Logbook) *App {
	keyInput := textinput.New()
	keyInput.Placeholder = "Paste your Bearer token here"
	keyInput.EchoMode = textinput.EchoPassword
	keyInput.EchoCharacter = '•'
	keyInput.CharLimit = 256
	keyInput.Width = 48
	keyInput.SetValue(session.DefaultCredential())

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	personaList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	personaList.Title = "Publish as"
	personaList.SetShowStatusBar(false)
	personaList.SetFilteringEnabled(false)

	titleInput := textinput.New()
	titleInput.Placeholder = "Breaking: Major event unfolds…"
	titleInput.CharLimit = 200
	titleInput.Width = 60

	subtitleInput := textinput.New()
	subtitleInput.Placeholder = "Optional standfirst or deck copy"
	subtitleInput.CharLimit = 200
	subtitleInput.Width = 60

	bodyInput := textarea.New()
	bodyInput.Placeholder = "Paste plain text or HTML. Plain text is wrapped in <p> tags."
	bodyInput.SetWidth(60)
	bodyInput.SetHeight(8)

	app := &App{
		cfg:           cfg,
		session:       sess,
		orch:          orch,
		logbook:       lb,
		state:         stateConnect,
		keyInput:      keyInput,
		spin:          spin,
		personaList:   personaList,
		titleInput:    titleInput,
		subtitleInput: subtitleInput,
		bodyInput:     bodyInput,
		prog:          progress.New(progress.WithDefaultGradient()),
	}
	app.logInfo("Session opened")
	return app
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.keyInput.Focus(), textinput.Blink)
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.personaList.SetSize(max(0, msg.Width-8), max(0, msg.Height-14))
		a.prog.Width = max(20, min(60, msg.Width-10))
		a.bodyInput.SetWidth(max(30, min(70, msg.Width-10)))
		return a, nil

	case connectedMsg:
		return a, a.handleConnected(msg)

	case publishProgressMsg:
		a.publishDone = msg.done
		a.publishTotal = msg.total
		a.statusMsg = fmt.Sprintf("Published %d of %d…", msg.done, msg.total)
		return a, waitForProgress(a.progressCh)

	case publishedMsg:
		return a, a.handlePublished(msg)

	case spinner.TickMsg:
		if !a.connecting {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a.updateFocused(msg)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		a.logInfo("Session closed")
		return a, tea.Quit
	case "ctrl+r":
		// Manual data refresh: drop cached reference data and the
		// credential, back to square one.
		if a.state == statePublishing {
			return a, nil
		}
		return a, a.refreshData()
	case "esc":
		return a.handleBack()
	}

	switch a.state {
	case stateConnect:
		return a.updateConnect(msg)
	case statePersona:
		return a.updatePersona(msg)
	case stateTeams:
		return a.updateTeams(msg)
	case stateCompose:
		return a.updateCompose(msg)
	case stateReview:
		return a.updateReview(msg)
	case stateResults:
		return a.updateResults(msg)
	}
	return a, nil
}

// handleBack moves one screen backwards; publishing cannot be left.
func (a *App) handleBack() (tea.Model, tea.Cmd) {
	switch a.state {
	case statePersona:
		a.state = stateConnect
		return a, a.keyInput.Focus()
	case stateTeams:
		a.state = statePersona
	case stateCompose:
		a.blurCompose()
		a.state = stateTeams
	case stateReview:
		a.state = stateCompose
		return a, a.focusCompose(a.composeFocus)
	case stateResults:
		a.state = stateCompose
		return a, a.focusCompose(focusTitle)
	}
	return a, nil
}

// refreshData backs the manual refresh action: invalidate the cache,
// clear the credential and selections, return to connect.
func (a *App) refreshData() tea.Cmd {
	a.session.Reset()
	a.keyInput.SetValue(session.DefaultCredential())
	a.connecting = false
	a.state = stateConnect
	a.statusMsg = "Reference data cleared — reconnect to reload."
	a.logInfo("Manual data refresh requested")
	return a.keyInput.Focus()
}

// updateFocused routes non-key messages to whichever component owns the
// cursor, so things like blink ticks keep flowing.
func (a *App) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.state {
	case stateConnect:
		a.keyInput, cmd = a.keyInput.Update(msg)
	case statePersona:
		a.personaList, cmd = a.personaList.Update(msg)
	case stateCompose:
		return a, a.updateComposeInputs(msg)
	}
	return a, cmd
}

// View renders the current screen inside the shared frame.
func (a *App) View() string {
	var content string
	switch a.state {
	case stateConnect:
		content = a.viewConnect()
	case statePersona:
		content = a.personaList.View()
	case stateTeams:
		content = a.viewTeams()
	case stateCompose:
		content = a.viewCompose()
	case stateReview:
		content = a.viewReview()
	case statePublishing:
		content = a.viewPublishing()
	case stateResults:
		content = a.viewResults()
	}

	sections := []string{
		headerStyle.Render("📡 EAGLEPUB"),
		stepStyle.Render(fmt.Sprintf("Step %d/7 · %s", int(a.state)+1, stepNames[a.state])),
		boxStyle.Render(content),
	}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	sections = append(sections, footerStyle.Render(a.footerLine()))
	return strings.Join(sections, "\n")
}

func (a *App) footerLine() string {
	hints := map[appState]string{
		stateConnect:    "enter connect · ctrl+c quit",
		statePersona:    "enter choose · esc back · ctrl+r refresh data",
		stateTeams:      "space toggle · a all · n none · enter continue · esc back",
		stateCompose:    "tab next field · ctrl+d review · esc back",
		stateReview:     "enter confirm · esc back",
		statePublishing: "publishing…",
		stateResults:    "enter new article · r republish · ctrl+r refresh data · ctrl+c quit",
	}
	line := hints[a.state]
	if a.statusMsg != "" {
		line = a.statusMsg + "    " + line
	}
	return line
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines := a.logbook.Tail(5)
	if len(lines) == 0 {
		return ""
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render("LOG")
	body := hintStyle.Render(strings.Join(lines, "\n"))
	return boxStyle.Render(head + "\n" + body)
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Warn(format, args...)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
