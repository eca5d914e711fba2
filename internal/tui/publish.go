package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"eaglepub/internal/publisher"
)

type publishProgressMsg struct {
	done  int
	total int
}

type publishedMsg struct {
	batch publisher.Batch
}

// startPublish kicks off the batch in a command goroutine. Progress flows
// back over a channel the update loop keeps re-subscribing to.
func (a *App) startPublish() tea.Cmd {
	teamIDs := a.session.SelectedTeamIDs()
	persona, _ := a.session.Persona()
	credential := a.session.Credential()
	draft := a.session.Draft()

	a.state = statePublishing
	a.publishDone = 0
	a.publishTotal = len(teamIDs)
	a.statusMsg = "Publishing…"
	a.logInfo("Publish batch started: %d team(s), persona @%s", len(teamIDs), persona.Handle)

	ch := make(chan publishProgressMsg)
	a.progressCh = ch
	run := func() tea.Msg {
		batch := a.orch.PublishBatch(context.Background(), credential, persona.Hash, draft, teamIDs,
			func(done, total int) {
				ch <- publishProgressMsg{done: done, total: total}
			})
		close(ch)
		return publishedMsg{batch: batch}
	}
	return tea.Batch(run, waitForProgress(ch))
}

func waitForProgress(ch chan publishProgressMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func (a *App) handlePublished(msg publishedMsg) tea.Cmd {
	a.summary = publisher.Summarize(msg.batch, a.session.Teams())
	a.state = stateResults
	a.statusMsg = ""
	a.logInfo("Publish batch %s finished: %d ok, %d failed",
		a.summary.BatchID, a.summary.Succeeded, a.summary.Failed)
	return nil
}

func (a *App) viewPublishing() string {
	percent := 0.0
	if a.publishTotal > 0 {
		percent = float64(a.publishDone) / float64(a.publishTotal)
	}
	lines := []string{
		"Publishing…",
		"",
		a.prog.ViewAs(percent),
		"",
		fmt.Sprintf("Published %d of %d", a.publishDone, a.publishTotal),
	}
	return strings.Join(lines, "\n")
}

func (a *App) viewResults() string {
	lines := []string{"Results", ""}
	if a.summary.Succeeded > 0 {
		lines = append(lines, okStyle.Render(fmt.Sprintf("✓ Published to %d team(s) successfully.", a.summary.Succeeded)))
	}
	if a.summary.Failed > 0 {
		lines = append(lines, warnStyle.Render(fmt.Sprintf("✗ %d publish(es) failed.", a.summary.Failed)))
	}
	lines = append(lines, "")
	for _, detail := range a.summary.Details {
		icon := okStyle.Render("✅")
		if !detail.OK {
			icon = warnStyle.Render("❌")
		}
		lines = append(lines, fmt.Sprintf("%s %s — %s", icon, detail.Label, detail.Outcome))
	}
	return strings.Join(lines, "\n")
}

func (a *App) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.state = stateCompose
		return a, a.focusCompose(focusTitle)
	case "r":
		// Publish the same article to the same teams again.
		if err := a.session.Ready(); err != nil {
			a.statusMsg = composeWarning(err)
			return a, nil
		}
		return a, a.startPublish()
	}
	return a, nil
}
