package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"eaglepub/internal/api"
	"eaglepub/internal/session"
)

type connectedMsg struct {
	err error
}

func (a *App) updateConnect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		if a.connecting {
			return a, nil
		}
		credential := strings.TrimSpace(a.keyInput.Value())
		if credential == "" {
			a.statusMsg = "Please enter an API key."
			return a, nil
		}
		a.connecting = true
		a.statusMsg = "Connecting and loading data…"
		return a, tea.Batch(a.connectCmd(credential, false), a.spin.Tick)
	}

	var cmd tea.Cmd
	a.keyInput, cmd = a.keyInput.Update(msg)
	return a, cmd
}

func (a *App) connectCmd(credential string, force bool) tea.Cmd {
	return func() tea.Msg {
		return connectedMsg{err: a.session.Connect(context.Background(), credential, force)}
	}
}

func (a *App) handleConnected(msg connectedMsg) tea.Cmd {
	a.connecting = false
	if msg.err != nil {
		a.statusMsg = connectErrorMessage(msg.err)
		a.logWarn("Connect failed: %v", msg.err)
		return nil
	}

	// Keep the credential out of the log from here on.
	a.logbook.Redact(a.session.Credential())

	personas := a.session.Personas()
	teams := a.session.Teams()
	a.personaList.SetItems(personaItems(personas))
	a.teamCursor = 0
	a.state = statePersona
	a.statusMsg = fmt.Sprintf("Connected — %d persona(s), %d team(s) loaded.", len(personas), len(teams))
	a.logInfo("Connected: %d personas, %d teams", len(personas), len(teams))
	return nil
}

func (a *App) viewConnect() string {
	lines := []string{
		"Eagle API key",
		a.keyInput.View(),
		"",
	}
	if a.connecting {
		lines = append(lines, a.spin.View()+" Connecting and loading data…")
	} else {
		lines = append(lines, hintStyle.Render("The key stays in memory for this session only."))
	}
	return strings.Join(lines, "\n")
}

func connectErrorMessage(err error) string {
	var auth *api.AuthError
	if errors.As(err, &auth) {
		return fmt.Sprintf("API error: %d — check your key and try again.", auth.StatusCode)
	}
	var network *api.NetworkError
	if errors.As(err, &network) {
		return "Network failure — check your connection and try again."
	}
	switch {
	case errors.Is(err, session.ErrNoCredential):
		return "Please enter an API key."
	case errors.Is(err, session.ErrNoOrganisations):
		return "No organisation personas found. Cannot publish."
	case errors.Is(err, session.ErrNoTeams):
		return "No teams found. Cannot publish."
	}
	return fmt.Sprintf("Unexpected error: %v", err)
}
