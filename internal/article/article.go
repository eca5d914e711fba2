// Package article holds the user-composed content for one publish batch.
// An article lives in session memory only; it is discarded once the
// batch completes or the session ends.
package article

import (
	"errors"
	"strings"
)

// Sentiment is the editorial tone tag attached to published content.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Sentiments lists the accepted values in display order.
var Sentiments = []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}

// Valid reports whether s is a member of the accepted set.
func (s Sentiment) Valid() bool {
	for _, known := range Sentiments {
		if s == known {
			return true
		}
	}
	return false
}

// Next cycles to the following sentiment, wrapping around. Unknown values
// reset to the first entry.
func (s Sentiment) Next() Sentiment {
	for i, known := range Sentiments {
		if s == known {
			return Sentiments[(i+1)%len(Sentiments)]
		}
	}
	return Sentiments[0]
}

var (
	ErrTitleRequired    = errors.New("article: title is required")
	ErrBodyRequired     = errors.New("article: body is required")
	ErrUnknownSentiment = errors.New("article: unknown sentiment")
)

// Article is a draft message. Title and Body are required; Subtitle is
// optional standfirst copy.
type Article struct {
	Title     string
	Subtitle  string
	Body      string
	Sentiment Sentiment
	Draft     bool
}

// Validate checks the fields a publish batch depends on.
func (a Article) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(a.Body) == "" {
		return ErrBodyRequired
	}
	if !a.Sentiment.Valid() {
		return ErrUnknownSentiment
	}
	return nil
}

// BodyHTML returns the body ready for the wire. Plain text is wrapped in
// a paragraph tag; anything already containing markup passes through
// trimmed.
func (a Article) BodyHTML() string {
	trimmed := strings.TrimSpace(a.Body)
	if strings.Contains(a.Body, "<") {
		return trimmed
	}
	return "<p>" + trimmed + "</p>"
}

// DraftFlag is the 0/1 encoding the message endpoint expects.
func (a Article) DraftFlag() int {
	if a.Draft {
		return 1
	}
	return 0
}
