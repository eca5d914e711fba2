package publisher

import (
	"context"
	"testing"
	"time"

	"eaglepub/internal/api"
	"eaglepub/internal/article"
)

type fakeSender struct {
	requests []api.PublishRequest
	respond  func(req api.PublishRequest) api.PublishResult
}

func (f *fakeSender) Publish(ctx context.Context, credential string, req api.PublishRequest) api.PublishResult {
	f.requests = append(f.requests, req)
	if f.respond != nil {
		return f.respond(req)
	}
	return api.PublishResult{TeamID: req.TeamID, OK: true, StatusCode: 200}
}

func testArticle() article.Article {
	return article.Article{Title: "Hi", Body: "Hello", Sentiment: article.SentimentNeutral}
}

func TestPublishBatchCoversEveryTeamInOrder(t *testing.T) {
	sender := &fakeSender{}
	orch := New(sender, WithSleep(func(time.Duration) {}))

	teamIDs := []string{"3", "1", "2"}
	batch := orch.PublishBatch(context.Background(), "abc", "h1", testArticle(), teamIDs, nil)

	if batch.ID == "" {
		t.Fatalf("batch should carry an id")
	}
	if len(batch.Results) != len(teamIDs) {
		t.Fatalf("got %d results; want %d", len(batch.Results), len(teamIDs))
	}
	for i, id := range teamIDs {
		if batch.Results[i].TeamID != id {
			t.Errorf("results[%d].TeamID = %q; want %q", i, batch.Results[i].TeamID, id)
		}
	}
}

func TestPublishBatchContinuesPastFailures(t *testing.T) {
	sender := &fakeSender{
		respond: func(req api.PublishRequest) api.PublishResult {
			if req.TeamID == "2" {
				return api.PublishResult{TeamID: req.TeamID, StatusCode: 500, ErrorDetail: "server error"}
			}
			return api.PublishResult{TeamID: req.TeamID, OK: true, StatusCode: 200}
		},
	}
	orch := New(sender, WithSleep(func(time.Duration) {}))

	batch := orch.PublishBatch(context.Background(), "abc", "h1", testArticle(), []string{"1", "2", "3"}, nil)
	if len(batch.Results) != 3 {
		t.Fatalf("got %d results; want all 3 despite the failure", len(batch.Results))
	}
	if batch.Results[1].OK {
		t.Errorf("team 2 should have failed")
	}
	if !batch.Results[2].OK {
		t.Errorf("team 3 should still have been attempted and succeeded")
	}
}

func TestPublishBatchDelaysBetweenCallsOnly(t *testing.T) {
	sender := &fakeSender{}
	var sleeps []time.Duration
	orch := New(sender,
		WithDelay(250*time.Millisecond),
		WithSleep(func(d time.Duration) { sleeps = append(sleeps, d) }),
	)

	orch.PublishBatch(context.Background(), "abc", "h1", testArticle(), []string{"1", "2", "3"}, nil)
	if len(sleeps) != 2 {
		t.Fatalf("slept %d times; want once between each pair of calls", len(sleeps))
	}
	for _, d := range sleeps {
		if d != 250*time.Millisecond {
			t.Errorf("slept %v; want 250ms", d)
		}
	}

	sleeps = nil
	orch.PublishBatch(context.Background(), "abc", "h1", testArticle(), []string{"only"}, nil)
	if len(sleeps) != 0 {
		t.Errorf("single-team batch slept %d times; want 0", len(sleeps))
	}
}

func TestPublishBatchReportsProgress(t *testing.T) {
	sender := &fakeSender{}
	orch := New(sender, WithSleep(func(time.Duration) {}))

	var steps [][2]int
	orch.PublishBatch(context.Background(), "abc", "h1", testArticle(), []string{"1", "2"}, func(done, total int) {
		steps = append(steps, [2]int{done, total})
	})
	if len(steps) != 2 {
		t.Fatalf("progress fired %d times; want 2", len(steps))
	}
	if steps[0] != [2]int{1, 2} || steps[1] != [2]int{2, 2} {
		t.Errorf("progress steps = %v; want [[1 2] [2 2]]", steps)
	}
}

func TestPublishBatchBuildsFreshRequests(t *testing.T) {
	sender := &fakeSender{}
	orch := New(sender, WithSleep(func(time.Duration) {}))

	art := article.Article{Title: " Hi ", Subtitle: " sub ", Body: "Hello", Sentiment: article.SentimentNegative, Draft: true}
	orch.PublishBatch(context.Background(), "abc", "h1", art, []string{"1", "2"}, nil)

	if len(sender.requests) != 2 {
		t.Fatalf("sender saw %d requests; want 2", len(sender.requests))
	}
	for i, req := range sender.requests {
		if req.Persona != "h1" {
			t.Errorf("requests[%d].Persona = %q", i, req.Persona)
		}
		if req.Channel != api.ChannelWebsites || req.Type != api.TypeTeam {
			t.Errorf("requests[%d] fixed fields wrong: %+v", i, req)
		}
		if req.Title != "Hi" || req.Subtitle != "sub" {
			t.Errorf("requests[%d] fields not trimmed: %+v", i, req)
		}
		if req.Body != "<p>Hello</p>" {
			t.Errorf("requests[%d].Body = %q; want wrapped paragraph", i, req.Body)
		}
		if req.IsDraft != 1 {
			t.Errorf("requests[%d].IsDraft = %d; want 1", i, req.IsDraft)
		}
		if req.Assets == nil || len(req.Assets) != 0 {
			t.Errorf("requests[%d].Assets = %v; want empty non-nil list", i, req.Assets)
		}
	}
	if sender.requests[0].TeamID != "1" || sender.requests[1].TeamID != "2" {
		t.Errorf("team ids = %q, %q", sender.requests[0].TeamID, sender.requests[1].TeamID)
	}
}
