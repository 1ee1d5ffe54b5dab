// Package browser abstracts the browser-automation engine behind a
// small session capability. Drivers describe pages as ordered candidate
// locators and leave the engine specifics (chromedp in production, a
// scripted session in tests) behind the Session interface.
package browser

import (
	"context"
	"fmt"
	"time"
)

type SelectorKind int

const (
	// CSS selects by CSS query.
	CSS SelectorKind = iota
	// Text selects the first element of the given tag whose text
	// contains the value, for engines without :has-text().
	Text
)

// Candidate is one entry in an ordered list of heuristic element
// locators, tried in sequence until one succeeds.
type Candidate struct {
	Kind  SelectorKind
	Query string // CSS query, or "tag" for Text candidates
	Value string // contained text for Text candidates
}

func Css(query string) Candidate { return Candidate{Kind: CSS, Query: query} }

func ByText(tag, text string) Candidate { return Candidate{Kind: Text, Query: tag, Value: text} }

func (c Candidate) String() string {
	if c.Kind == Text {
		return fmt.Sprintf("%s:text(%s)", c.Query, c.Value)
	}
	return c.Query
}

// Session is one owned browser session. Acquired once per driver run
// and closed on every exit path. Every blocking call carries its own
// timeout; a timeout is a failed sub-step, not a crash.
type Session interface {
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	Location(ctx context.Context) (string, error)
	WaitVisible(ctx context.Context, c Candidate, timeout time.Duration) error
	Click(ctx context.Context, c Candidate, timeout time.Duration) error
	Fill(ctx context.Context, c Candidate, value string, timeout time.Duration) error
	// EnsureChecked checks a checkbox when present and unchecked.
	EnsureChecked(ctx context.Context, c Candidate, timeout time.Duration) error
	Text(ctx context.Context, c Candidate, timeout time.Duration) (string, error)
	Content(ctx context.Context) (string, error)
	Sleep(ctx context.Context, d time.Duration) error
	Close() error
}

// Launcher produces fresh sessions, one per driver invocation.
type Launcher interface {
	NewSession(ctx context.Context) (Session, error)
}

// FirstVisible walks the candidate list in order with a bounded
// per-candidate timeout and returns the first visible match.
func FirstVisible(ctx context.Context, s Session, candidates []Candidate, per time.Duration) (Candidate, bool) {
	for _, c := range candidates {
		if err := s.WaitVisible(ctx, c, per); err == nil {
			return c, true
		}
	}
	return Candidate{}, false
}

// ClickFirst clicks the first candidate that accepts a click.
func ClickFirst(ctx context.Context, s Session, candidates []Candidate, per time.Duration) (Candidate, bool) {
	for _, c := range candidates {
		if err := s.Click(ctx, c, per); err == nil {
			return c, true
		}
	}
	return Candidate{}, false
}

// FillFirst fills the first candidate that accepts the value.
func FillFirst(ctx context.Context, s Session, candidates []Candidate, value string, per time.Duration) (Candidate, bool) {
	for _, c := range candidates {
		if err := s.Fill(ctx, c, value, per); err == nil {
			return c, true
		}
	}
	return Candidate{}, false
}

// TextFirst returns the text content of the first readable candidate.
func TextFirst(ctx context.Context, s Session, candidates []Candidate, per time.Duration) (string, bool) {
	for _, c := range candidates {
		if text, err := s.Text(ctx, c, per); err == nil && text != "" {
			return text, true
		}
	}
	return "", false
}
