package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// SimPage is one scripted page in a SimLauncher site model.
type SimPage struct {
	URL string
	// RedirectTo, when set, is the effective URL after navigating
	// here (bot-detection redirects and similar).
	RedirectTo string
	Content    string
	// Elements maps a candidate's String() form to its scripted
	// element. Only listed elements are visible.
	Elements map[string]*SimElement
}

type SimElement struct {
	Text string
	// ClickURL, when set, navigates the session on click.
	ClickURL string
	Checked  bool
}

// SimLauncher replays a scripted site without a real browser and
// without wall-clock waits: sleeps advance an injected fake clock. It
// keeps the driver tests deterministic where the non-production
// simulator used real delays and randomized outcomes.
type SimLauncher struct {
	Pages map[string]*SimPage
	// MissingPageRedirect is used when a navigated URL has no page.
	MissingPageRedirect string

	mu       sync.Mutex
	sessions []*SimSession
}

var _ Launcher = (*SimLauncher)(nil)

func NewSimLauncher(pages ...*SimPage) *SimLauncher {
	m := make(map[string]*SimPage, len(pages))
	for _, p := range pages {
		m[p.URL] = p
	}
	return &SimLauncher{Pages: m}
}

func (l *SimLauncher) NewSession(ctx context.Context) (Session, error) {
	sess := &SimSession{
		launcher: l,
		Fills:    make(map[string]string),
	}
	l.mu.Lock()
	l.sessions = append(l.sessions, sess)
	l.mu.Unlock()
	return sess, nil
}

// Sessions returns every session handed out, for leak assertions.
func (l *SimLauncher) Sessions() []*SimSession {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*SimSession(nil), l.sessions...)
}

type SimSession struct {
	launcher *SimLauncher

	page   *SimPage
	curURL string

	Fills   map[string]string
	Clicks  []string
	Slept   time.Duration
	Closed  bool
	navErrs int
}

var _ Session = (*SimSession)(nil)

func (s *SimSession) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	page, ok := s.launcher.Pages[url]
	if !ok {
		if s.launcher.MissingPageRedirect != "" {
			return s.Navigate(ctx, s.launcher.MissingPageRedirect, timeout)
		}
		s.navErrs++
		return fmt.Errorf("simulated navigation timeout for %s", url)
	}
	if page.RedirectTo != "" && page.RedirectTo != url {
		return s.Navigate(ctx, page.RedirectTo, timeout)
	}
	s.page = page
	s.curURL = url
	return nil
}

func (s *SimSession) Location(ctx context.Context) (string, error) {
	return s.curURL, nil
}

func (s *SimSession) element(c Candidate) (*SimElement, error) {
	if s.page == nil {
		return nil, fmt.Errorf("no page loaded")
	}
	if el, ok := s.page.Elements[c.String()]; ok {
		return el, nil
	}
	return nil, fmt.Errorf("simulated wait timeout for %s", c)
}

func (s *SimSession) WaitVisible(ctx context.Context, c Candidate, timeout time.Duration) error {
	_, err := s.element(c)
	return err
}

func (s *SimSession) Click(ctx context.Context, c Candidate, timeout time.Duration) error {
	el, err := s.element(c)
	if err != nil {
		return err
	}
	s.Clicks = append(s.Clicks, c.String())
	if el.ClickURL != "" {
		return s.Navigate(ctx, el.ClickURL, timeout)
	}
	return nil
}

func (s *SimSession) Fill(ctx context.Context, c Candidate, value string, timeout time.Duration) error {
	if _, err := s.element(c); err != nil {
		return err
	}
	s.Fills[c.String()] = value
	return nil
}

func (s *SimSession) EnsureChecked(ctx context.Context, c Candidate, timeout time.Duration) error {
	el, err := s.element(c)
	if err != nil {
		return err
	}
	if !el.Checked {
		el.Checked = true
		s.Clicks = append(s.Clicks, c.String())
	}
	return nil
}

func (s *SimSession) Text(ctx context.Context, c Candidate, timeout time.Duration) (string, error) {
	el, err := s.element(c)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(el.Text), nil
}

func (s *SimSession) Content(ctx context.Context) (string, error) {
	if s.page == nil {
		return "", fmt.Errorf("no page loaded")
	}
	return s.page.Content, nil
}

func (s *SimSession) Sleep(ctx context.Context, d time.Duration) error {
	s.Slept += d
	return ctx.Err()
}

func (s *SimSession) Close() error {
	s.Closed = true
	return nil
}
