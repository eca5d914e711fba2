package tui

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"eaglepub/internal/api"
	"eaglepub/internal/config"
	"eaglepub/internal/logbook"
	"eaglepub/internal/publisher"
	"eaglepub/internal/refdata"
	"eaglepub/internal/session"
)

type fakeFetcher struct {
	personas []api.Persona
	teams    []api.Team
	err      error
}

func (f *fakeFetcher) FetchPersonas(ctx context.Context, credential string) ([]api.Persona, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.personas, nil
}

func (f *fakeFetcher) FetchTeams(ctx context.Context, credential string) ([]api.Team, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.teams, nil
}

type fakeSender struct {
	credentials []string
	requests    []api.PublishRequest
	respond     func(req api.PublishRequest) api.PublishResult
}

func (f *fakeSender) Publish(ctx context.Context, credential string, req api.PublishRequest) api.PublishResult {
	f.credentials = append(f.credentials, credential)
	f.requests = append(f.requests, req)
	if f.respond != nil {
		return f.respond(req)
	}
	return api.PublishResult{TeamID: req.TeamID, OK: true, StatusCode: http.StatusOK}
}

func testFetcher() *fakeFetcher {
	return &fakeFetcher{
		personas: []api.Persona{
			{Name: "BBC", Handle: "bbc", Hash: "h1", IsOrganisation: true},
			{Name: "Alice", Handle: "alice", Hash: "h2", IsOrganisation: false},
		},
		teams: []api.Team{
			{ID: "1", RawName: "S - Room"},
			{ID: "2", RawName: "T - News - 2023/05/01"},
		},
	}
}

func newTestApp(t *testing.T, fetcher *fakeFetcher, sender *fakeSender) *App {
	t.Helper()
	t.Setenv(session.CredentialEnvVar, "")
	lb, err := logbook.New(filepath.Join(t.TempDir(), "test.log"))
	if err != nil {
		t.Fatalf("logbook: %v", err)
	}
	sess := session.New(refdata.New(fetcher))
	orch := publisher.New(sender, publisher.WithSleep(func(time.Duration) {}))
	app := NewApp(config.Default(), sess, orch, lb)
	app.Init()
	return app
}

// runCommands drives the update loop until all pending commands settle.
func runCommands(t *testing.T, model tea.Model, cmd tea.Cmd) *App {
	t.Helper()
	app, ok := model.(*App)
	if !ok {
		t.Fatalf("unexpected model type: %T", model)
	}
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg := next()
		if msg == nil {
			continue
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, []tea.Cmd(batch)...)
			continue
		}
		nextModel, nextCmd := app.Update(msg)
		app, ok = nextModel.(*App)
		if !ok {
			t.Fatalf("unexpected model type: %T", nextModel)
		}
		queue = append(queue, nextCmd)
	}
	return app
}

// press feeds one key to the app and ignores cosmetic commands like
// cursor blinks.
func press(t *testing.T, app *App, msg tea.KeyMsg) *App {
	t.Helper()
	model, _ := app.Update(msg)
	next, ok := model.(*App)
	if !ok {
		t.Fatalf("unexpected model type: %T", model)
	}
	return next
}

func keyEnter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }

func typeText(t *testing.T, app *App, text string) *App {
	t.Helper()
	return press(t, app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func connect(t *testing.T, app *App) *App {
	t.Helper()
	app.keyInput.SetValue("abc")
	model, cmd := app.Update(keyEnter())
	return runCommands(t, model, cmd)
}

func TestConnectAdvancesToPersona(t *testing.T) {
	app := newTestApp(t, testFetcher(), &fakeSender{})
	app = connect(t, app)

	if app.state != statePersona {
		t.Fatalf("state = %d; want persona picker after connect", app.state)
	}
	if got := len(app.personaList.Items()); got != 1 {
		t.Fatalf("persona list holds %d items; want the 1 organisation", got)
	}
}

func TestConnectWithoutKeyStaysPut(t *testing.T) {
	app := newTestApp(t, testFetcher(), &fakeSender{})
	app.keyInput.SetValue("   ")
	model, cmd := app.Update(keyEnter())
	app = runCommands(t, model, cmd)

	if app.state != stateConnect {
		t.Fatalf("state = %d; want connect screen", app.state)
	}
	if app.statusMsg != "Please enter an API key." {
		t.Errorf("statusMsg = %q", app.statusMsg)
	}
}

func TestConnectAuthFailureShowsStatus(t *testing.T) {
	fetcher := testFetcher()
	fetcher.err = &api.AuthError{StatusCode: http.StatusUnauthorized}
	app := newTestApp(t, fetcher, &fakeSender{})
	app = connect(t, app)

	if app.state != stateConnect {
		t.Fatalf("state = %d; want to stay on connect after auth failure", app.state)
	}
	if app.statusMsg != "API error: 401 — check your key and try again." {
		t.Errorf("statusMsg = %q", app.statusMsg)
	}
	if app.connecting {
		t.Errorf("spinner left running after failure")
	}
}

func TestTeamSelectionRequiresAtLeastOne(t *testing.T) {
	app := newTestApp(t, testFetcher(), &fakeSender{})
	app = connect(t, app)
	app = press(t, app, keyEnter()) // persona

	if app.state != stateTeams {
		t.Fatalf("state = %d; want team picker", app.state)
	}
	app = press(t, app, keyEnter())
	if app.state != stateTeams {
		t.Fatalf("advanced past the team picker with nothing selected")
	}
	if app.statusMsg != "Select at least one team." {
		t.Errorf("statusMsg = %q", app.statusMsg)
	}
}

func TestComposeRequiresTitleAndBody(t *testing.T) {
	app := newTestApp(t, testFetcher(), &fakeSender{})
	app = connect(t, app)
	app = press(t, app, keyEnter())                          // persona
	app = press(t, app, tea.KeyMsg{Type: tea.KeySpace})      // select team 1
	app = press(t, app, keyEnter())                          // to compose
	app = press(t, app, tea.KeyMsg{Type: tea.KeyCtrlD})      // try review empty

	if app.state != stateCompose {
		t.Fatalf("empty article reached review")
	}
	if app.statusMsg != "A title is required." {
		t.Errorf("statusMsg = %q", app.statusMsg)
	}
}

func TestRefreshDataReturnsToConnect(t *testing.T) {
	app := newTestApp(t, testFetcher(), &fakeSender{})
	app = connect(t, app)
	app = press(t, app, tea.KeyMsg{Type: tea.KeyCtrlR})

	if app.state != stateConnect {
		t.Fatalf("state = %d; want connect after refresh", app.state)
	}
	if app.session.Connected() {
		t.Errorf("session still connected after refresh")
	}
}

func TestEscWalksBackwards(t *testing.T) {
	app := newTestApp(t, testFetcher(), &fakeSender{})
	app = connect(t, app)
	app = press(t, app, keyEnter()) // persona -> teams
	app = press(t, app, tea.KeyMsg{Type: tea.KeyEsc})
	if app.state != statePersona {
		t.Fatalf("state = %d; want persona after esc", app.state)
	}
	app = press(t, app, tea.KeyMsg{Type: tea.KeyEsc})
	if app.state != stateConnect {
		t.Fatalf("state = %d; want connect after second esc", app.state)
	}
}

func TestFullPublishFlow(t *testing.T) {
	sender := &fakeSender{
		respond: func(req api.PublishRequest) api.PublishResult {
			if req.TeamID == "2" {
				return api.PublishResult{TeamID: req.TeamID, StatusCode: http.StatusInternalServerError, ErrorDetail: "server error"}
			}
			return api.PublishResult{TeamID: req.TeamID, OK: true, StatusCode: http.StatusOK}
		},
	}
	app := newTestApp(t, testFetcher(), sender)
	app = connect(t, app)
	app = press(t, app, keyEnter())     // choose persona
	app = typeText(t, app, "a")         // select all teams
	app = press(t, app, keyEnter())     // to compose

	app = typeText(t, app, "Hi")                        // title
	app = press(t, app, tea.KeyMsg{Type: tea.KeyTab})   // subtitle
	app = press(t, app, tea.KeyMsg{Type: tea.KeyTab})   // body
	app = typeText(t, app, "Hello")
	app = press(t, app, tea.KeyMsg{Type: tea.KeyCtrlD}) // review
	if app.state != stateReview {
		t.Fatalf("state = %d; want review", app.state)
	}

	model, cmd := app.Update(keyEnter())
	app = model.(*App)
	if app.state != statePublishing {
		t.Fatalf("state = %d; want publishing", app.state)
	}
	pumpPublish(t, app, cmd)

	if app.state != stateResults {
		t.Fatalf("state = %d; want results", app.state)
	}
	if app.summary.Succeeded != 1 || app.summary.Failed != 1 {
		t.Fatalf("summary = %d/%d; want 1 success and 1 failure", app.summary.Succeeded, app.summary.Failed)
	}
	if len(sender.requests) != 2 {
		t.Fatalf("sender saw %d requests; want 2", len(sender.requests))
	}
	for i, credential := range sender.credentials {
		if credential != "abc" {
			t.Errorf("call %d used credential %q", i, credential)
		}
	}
	if sender.requests[0].Persona != "h1" || sender.requests[0].Title != "Hi" || sender.requests[0].Body != "<p>Hello</p>" {
		t.Errorf("requests[0] = %+v", sender.requests[0])
	}

	// Enter from the results screen starts a fresh article.
	app = press(t, app, keyEnter())
	if app.state != stateCompose {
		t.Fatalf("state = %d; want compose after results", app.state)
	}
}

// pumpPublish runs the batch command and its progress resubscriptions
// concurrently, the way the bubbletea runtime would, until the results
// screen shows.
func pumpPublish(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	msgCh := make(chan tea.Msg, 16)
	var launch func(c tea.Cmd)
	launch = func(c tea.Cmd) {
		if c == nil {
			return
		}
		go func() {
			msg := c()
			if msg == nil {
				return
			}
			if batch, ok := msg.(tea.BatchMsg); ok {
				for _, sub := range batch {
					launch(sub)
				}
				return
			}
			msgCh <- msg
		}()
	}
	launch(cmd)

	deadline := time.After(5 * time.Second)
	for app.state != stateResults {
		select {
		case msg := <-msgCh:
			_, next := app.Update(msg)
			launch(next)
		case <-deadline:
			t.Fatalf("publish flow never reached the results screen")
		}
	}
}
