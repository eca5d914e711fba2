// Package session carries everything one operator session owns: the
// credential, the loaded reference data, the persona and team selections,
// and the article draft. Nothing here is shared across sessions; the
// surrounding program creates one Session per user flow.
package session

import (
	"context"
	"errors"
	"os"
	"strings"

	"eaglepub/internal/api"
	"eaglepub/internal/article"
	"eaglepub/internal/refdata"
)

// CredentialEnvVar seeds the connect form when set. The credential itself
// is never written to disk or logged.
const CredentialEnvVar = "EAGLE_API_KEY"

var (
	ErrNoCredential    = errors.New("session: credential is required")
	ErrNotConnected    = errors.New("session: not connected")
	ErrNoOrganisations = errors.New("session: no organisation personas available")
	ErrNoTeams         = errors.New("session: no teams available")
	ErrNoPersona       = errors.New("session: choose a persona")
	ErrNoTeamsChosen   = errors.New("session: select at least one team")
)

// DefaultCredential returns the environment-supplied credential, if any.
func DefaultCredential() string {
	return strings.TrimSpace(os.Getenv(CredentialEnvVar))
}

// Session is the per-operator state container.
type Session struct {
	cache *refdata.Cache

	credential string
	personas   []api.Persona
	teams      []api.Team

	personaIdx int
	teamOrder  []string
	teamSet    map[string]struct{}
	draft      article.Article
}

// New creates an empty session backed by the given cache.
func New(cache *refdata.Cache) *Session {
	return &Session{
		cache:      cache,
		personaIdx: -1,
		teamSet:    map[string]struct{}{},
		draft:      article.Article{Sentiment: article.SentimentNeutral},
	}
}

// Connect validates the credential, loads reference data through the
// cache, and installs the organisation personas and teams. On any error
// the session keeps its previous state untouched.
func (s *Session) Connect(ctx context.Context, credential string, force bool) error {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return ErrNoCredential
	}

	snap, err := s.cache.Get(ctx, credential, force)
	if err != nil {
		return err
	}

	orgs := make([]api.Persona, 0, len(snap.Personas))
	for _, p := range snap.Personas {
		if p.IsOrganisation && p.Hash != "" {
			orgs = append(orgs, p)
		}
	}
	if len(orgs) == 0 {
		return ErrNoOrganisations
	}
	if len(snap.Teams) == 0 {
		return ErrNoTeams
	}

	s.credential = credential
	s.personas = orgs
	s.teams = snap.Teams
	s.personaIdx = 0
	s.clearTeamSelection()
	return nil
}

// Connected reports whether reference data has been loaded.
func (s *Session) Connected() bool { return s.credential != "" }

// Credential returns the active bearer token.
func (s *Session) Credential() string { return s.credential }

// Personas returns the selectable (organisation) personas.
func (s *Session) Personas() []api.Persona { return s.personas }

// Teams returns the last-known team list.
func (s *Session) Teams() []api.Team { return s.teams }

// ChoosePersona selects a persona by index into Personas.
func (s *Session) ChoosePersona(idx int) error {
	if idx < 0 || idx >= len(s.personas) {
		return ErrNoPersona
	}
	s.personaIdx = idx
	return nil
}

// Persona returns the chosen persona, if any.
func (s *Session) Persona() (api.Persona, bool) {
	if s.personaIdx < 0 || s.personaIdx >= len(s.personas) {
		return api.Persona{}, false
	}
	return s.personas[s.personaIdx], true
}

// ToggleTeam flips membership of one team in the selection, preserving
// the order teams were first picked in.
func (s *Session) ToggleTeam(id string) {
	if _, selected := s.teamSet[id]; selected {
		delete(s.teamSet, id)
		for i, existing := range s.teamOrder {
			if existing == id {
				s.teamOrder = append(s.teamOrder[:i], s.teamOrder[i+1:]...)
				break
			}
		}
		return
	}
	s.teamSet[id] = struct{}{}
	s.teamOrder = append(s.teamOrder, id)
}

// SelectAllTeams selects every known team, in team-list order.
func (s *Session) SelectAllTeams() {
	s.clearTeamSelection()
	for _, t := range s.teams {
		s.teamSet[t.ID] = struct{}{}
		s.teamOrder = append(s.teamOrder, t.ID)
	}
}

// ClearTeams empties the team selection.
func (s *Session) ClearTeams() { s.clearTeamSelection() }

// TeamSelected reports membership of one team in the selection.
func (s *Session) TeamSelected(id string) bool {
	_, selected := s.teamSet[id]
	return selected
}

// SelectedTeamIDs returns the chosen team ids in selection order.
func (s *Session) SelectedTeamIDs() []string {
	ids := make([]string, len(s.teamOrder))
	copy(ids, s.teamOrder)
	return ids
}

// Draft returns the current article draft.
func (s *Session) Draft() article.Article { return s.draft }

// SetDraft replaces the article draft.
func (s *Session) SetDraft(a article.Article) { s.draft = a }

// Ready reports whether a publish batch can be issued: connected, a
// persona chosen, at least one team selected, and a valid draft.
func (s *Session) Ready() error {
	if !s.Connected() {
		return ErrNotConnected
	}
	if _, ok := s.Persona(); !ok {
		return ErrNoPersona
	}
	if len(s.teamOrder) == 0 {
		return ErrNoTeamsChosen
	}
	return s.draft.Validate()
}

// Reset clears the credential, selections, and draft, and invalidates the
// cached reference data. This backs the manual "refresh data" action.
func (s *Session) Reset() {
	if s.credential != "" {
		s.cache.Invalidate(s.credential)
	}
	s.credential = ""
	s.personas = nil
	s.teams = nil
	s.personaIdx = -1
	s.draft = article.Article{Sentiment: article.SentimentNeutral}
	s.clearTeamSelection()
}

func (s *Session) clearTeamSelection() {
	s.teamOrder = nil
	s.teamSet = map[string]struct{}{}
}
