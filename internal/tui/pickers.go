package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"eaglepub/internal/api"
	"eaglepub/internal/teamname"
)

// personaItem implements list.Item for the persona picker.
type personaItem struct {
	persona api.Persona
}

func (i personaItem) Title() string       { return i.persona.Name }
func (i personaItem) Description() string { return "@" + i.persona.Handle }
func (i personaItem) FilterValue() string { return i.persona.Name }

func personaItems(personas []api.Persona) []list.Item {
	items := make([]list.Item, len(personas))
	for i, p := range personas {
		items[i] = personaItem{persona: p}
	}
	return items
}

func (a *App) updatePersona(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		if err := a.session.ChoosePersona(a.personaList.Index()); err != nil {
			a.statusMsg = "Choose a persona first."
			return a, nil
		}
		persona, _ := a.session.Persona()
		a.statusMsg = fmt.Sprintf("Publishing as %s (@%s)", persona.Name, persona.Handle)
		a.state = stateTeams
		return a, nil
	}

	var cmd tea.Cmd
	a.personaList, cmd = a.personaList.Update(msg)
	return a, cmd
}

func (a *App) updateTeams(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	teams := a.session.Teams()
	switch msg.String() {
	case "up", "k":
		if a.teamCursor > 0 {
			a.teamCursor--
		}
	case "down", "j":
		if a.teamCursor < len(teams)-1 {
			a.teamCursor++
		}
	case " ":
		if a.teamCursor < len(teams) {
			a.session.ToggleTeam(teams[a.teamCursor].ID)
		}
	case "a":
		a.session.SelectAllTeams()
		a.statusMsg = fmt.Sprintf("All %d team(s) selected.", len(teams))
	case "n":
		a.session.ClearTeams()
		a.statusMsg = "Team selection cleared."
	case "enter":
		if len(a.session.SelectedTeamIDs()) == 0 {
			a.statusMsg = "Select at least one team."
			return a, nil
		}
		a.state = stateCompose
		return a, a.focusCompose(focusTitle)
	}
	return a, nil
}

func (a *App) viewTeams() string {
	teams := a.session.Teams()
	if len(teams) == 0 {
		return warnStyle.Render("No teams available.")
	}
	lines := make([]string, 0, len(teams)+2)
	lines = append(lines, fmt.Sprintf("Publish to (%d selected)", len(a.session.SelectedTeamIDs())), "")
	for i, team := range teams {
		cursor := "  "
		if i == a.teamCursor {
			cursor = "> "
		}
		check := "[ ]"
		if a.session.TeamSelected(team.ID) {
			check = okStyle.Render("[x]")
		}
		label := fmt.Sprintf("%s (id: %s)", teamname.Normalize(team.RawName), team.ID)
		lines = append(lines, cursor+check+" "+label)
	}
	return strings.Join(lines, "\n")
}
