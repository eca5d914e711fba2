package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"eaglepub/internal/article"
	"eaglepub/internal/teamname"
)

// composeField tracks which article field has the cursor.
type composeField int

const (
	focusTitle composeField = iota
	focusSubtitle
	focusBody
	focusSentiment
	focusDraft
)

const composeFieldCount = 5

func (a *App) focusCompose(field composeField) tea.Cmd {
	a.composeFocus = field
	a.blurCompose()
	switch field {
	case focusTitle:
		return a.titleInput.Focus()
	case focusSubtitle:
		return a.subtitleInput.Focus()
	case focusBody:
		return a.bodyInput.Focus()
	}
	return nil
}

func (a *App) blurCompose() {
	a.titleInput.Blur()
	a.subtitleInput.Blur()
	a.bodyInput.Blur()
}

func (a *App) updateCompose(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		return a, a.focusCompose((a.composeFocus + 1) % composeFieldCount)
	case "shift+tab":
		return a, a.focusCompose((a.composeFocus + composeFieldCount - 1) % composeFieldCount)
	case "ctrl+d":
		a.syncDraft()
		if err := a.session.Ready(); err != nil {
			a.statusMsg = composeWarning(err)
			return a, nil
		}
		a.blurCompose()
		a.state = stateReview
		a.statusMsg = ""
		return a, nil
	}

	switch a.composeFocus {
	case focusSentiment:
		switch msg.String() {
		case "enter", " ", "right", "l":
			draft := a.session.Draft()
			draft.Sentiment = draft.Sentiment.Next()
			a.session.SetDraft(draft)
		}
		return a, nil
	case focusDraft:
		switch msg.String() {
		case "enter", " ":
			draft := a.session.Draft()
			draft.Draft = !draft.Draft
			a.session.SetDraft(draft)
		}
		return a, nil
	}

	return a, a.updateComposeInputs(msg)
}

// updateComposeInputs feeds a message to the focused text component.
func (a *App) updateComposeInputs(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.composeFocus {
	case focusTitle:
		a.titleInput, cmd = a.titleInput.Update(msg)
	case focusSubtitle:
		a.subtitleInput, cmd = a.subtitleInput.Update(msg)
	case focusBody:
		a.bodyInput, cmd = a.bodyInput.Update(msg)
	}
	return cmd
}

// syncDraft copies the widget values into the session's article draft.
func (a *App) syncDraft() {
	draft := a.session.Draft()
	draft.Title = a.titleInput.Value()
	draft.Subtitle = a.subtitleInput.Value()
	draft.Body = a.bodyInput.Value()
	a.session.SetDraft(draft)
}

func composeWarning(err error) string {
	switch err {
	case article.ErrTitleRequired:
		return "A title is required."
	case article.ErrBodyRequired:
		return "A body is required."
	}
	return err.Error()
}

func (a *App) viewCompose() string {
	draft := a.session.Draft()
	marker := func(field composeField) string {
		if a.composeFocus == field {
			return "> "
		}
		return "  "
	}
	draftLabel := "[ ] Save as draft (don't publish yet)"
	if draft.Draft {
		draftLabel = "[x] Save as draft (don't publish yet)"
	}
	lines := []string{
		marker(focusTitle) + "Title *",
		"  " + a.titleInput.View(),
		marker(focusSubtitle) + "Subtitle",
		"  " + a.subtitleInput.View(),
		marker(focusBody) + "Body *",
		a.bodyInput.View(),
		marker(focusSentiment) + fmt.Sprintf("Sentiment: %s", draft.Sentiment),
		marker(focusDraft) + draftLabel,
	}
	return strings.Join(lines, "\n")
}

func (a *App) viewReview() string {
	draft := a.session.Draft()
	persona, _ := a.session.Persona()

	var teamLabels []string
	selected := map[string]struct{}{}
	for _, id := range a.session.SelectedTeamIDs() {
		selected[id] = struct{}{}
	}
	for _, team := range a.session.Teams() {
		if _, ok := selected[team.ID]; ok {
			teamLabels = append(teamLabels, teamname.Normalize(team.RawName))
		}
	}

	mode := "🚀 Publish immediately"
	if draft.Draft {
		mode = "🗒 Save as draft"
	}
	lines := []string{
		"Review before publishing",
		"",
		fmt.Sprintf("Persona:   %s (@%s)", persona.Name, persona.Handle),
		fmt.Sprintf("Teams:     %s", strings.Join(teamLabels, ", ")),
		fmt.Sprintf("Title:     %s", strings.TrimSpace(draft.Title)),
		fmt.Sprintf("Sentiment: %s", draft.Sentiment),
		fmt.Sprintf("Mode:      %s", mode),
	}
	return strings.Join(lines, "\n")
}

func (a *App) updateReview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() != "enter" {
		return a, nil
	}
	if err := a.session.Ready(); err != nil {
		a.state = stateCompose
		a.statusMsg = composeWarning(err)
		return a, a.focusCompose(focusTitle)
	}
	return a, a.startPublish()
}
