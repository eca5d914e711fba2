// Package publisher issues one publish call per selected team and turns
// the collected outcomes into an operator-facing summary.
package publisher

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"eaglepub/internal/api"
	"eaglepub/internal/article"
)

// DefaultDelay paces consecutive publish calls so a batch does not hammer
// the remote API.
const DefaultDelay = 500 * time.Millisecond

// Sender is the slice of the API client the orchestrator depends on.
type Sender interface {
	Publish(ctx context.Context, credential string, req api.PublishRequest) api.PublishResult
}

// ProgressFunc receives the completed and total counts after each call.
type ProgressFunc func(done, total int)

// Batch is the outcome of one publish run. Results are in team order and
// always cover every requested team; failures do not shorten the list.
type Batch struct {
	ID      string
	Results []api.PublishResult
}

// Orchestrator publishes one article to a list of teams, strictly
// sequentially, with a fixed delay between calls.
type Orchestrator struct {
	sender Sender
	delay  time.Duration
	sleep  func(time.Duration)
}

// OrchestratorOption customizes Orchestrator construction.
type OrchestratorOption func(*Orchestrator)

// WithDelay overrides the inter-call delay.
func WithDelay(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.delay = d
		}
	}
}

// WithSleep substitutes the sleep function for tests.
func WithSleep(fn func(time.Duration)) OrchestratorOption {
	return func(o *Orchestrator) {
		if fn != nil {
			o.sleep = fn
		}
	}
}

// New creates an Orchestrator around the given sender.
func New(sender Sender, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		sender: sender,
		delay:  DefaultDelay,
		sleep:  time.Sleep,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// PublishBatch builds one request per team id, in the given order, and
// issues them one at a time. Every team gets a result; a failure for one
// team never stops the rest. The delay runs between calls, not after the
// last one, and progress fires after each completed call.
func (o *Orchestrator) PublishBatch(ctx context.Context, credential, personaHash string, art article.Article, teamIDs []string, progress ProgressFunc) Batch {
	batch := Batch{ID: uuid.NewString()}
	total := len(teamIDs)
	for i, teamID := range teamIDs {
		req := buildRequest(personaHash, art, teamID)
		batch.Results = append(batch.Results, o.sender.Publish(ctx, credential, req))
		if progress != nil {
			progress(i+1, total)
		}
		if i < total-1 {
			o.sleep(o.delay)
		}
	}
	return batch
}

// buildRequest composes the wire payload for one team. A fresh request is
// built per team; nothing is reused between calls.
func buildRequest(personaHash string, art article.Article, teamID string) api.PublishRequest {
	return api.PublishRequest{
		Persona:   personaHash,
		Channel:   api.ChannelWebsites,
		Title:     strings.TrimSpace(art.Title),
		Subtitle:  strings.TrimSpace(art.Subtitle),
		Body:      art.BodyHTML(),
		Assets:    []string{},
		Sentiment: string(art.Sentiment),
		TeamID:    teamID,
		Type:      api.TypeTeam,
		IsDraft:   art.DraftFlag(),
	}
}
