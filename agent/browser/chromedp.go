package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type Config struct {
	Headless    bool          `envconfig:"HEADLESS" split_words:"true" default:"true"`
	UserAgent   string        `envconfig:"USER_AGENT" split_words:"true"`
	NavTimeout  time.Duration `envconfig:"NAV_TIMEOUT" split_words:"true" default:"30s"`
	StepTimeout time.Duration `envconfig:"STEP_TIMEOUT" split_words:"true" default:"5s"`
}

// ChromeLauncher starts one Chromium session per driver run via
// chromedp, configured to look like an interactive ja-JP browser.
type ChromeLauncher struct {
	cfg Config
}

func NewChromeLauncher(cfg Config) *ChromeLauncher {
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.NavTimeout <= 0 {
		cfg.NavTimeout = 30 * time.Second
	}
	if cfg.StepTimeout <= 0 {
		cfg.StepTimeout = 5 * time.Second
	}
	return &ChromeLauncher{cfg: cfg}
}

var _ Launcher = (*ChromeLauncher)(nil)

func (l *ChromeLauncher) NewSession(ctx context.Context) (Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", l.cfg.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("lang", "ja-JP"),
		chromedp.UserAgent(l.cfg.UserAgent),
		chromedp.WindowSize(1920, 1080),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// Materialize the browser process now so acquisition failures
	// surface here rather than on the first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	log.Debug().Bool("headless", l.cfg.Headless).Msg("browser session started")
	return &chromeSession{
		ctx: browserCtx,
		cancel: func() {
			cancelBrowser()
			cancelAlloc()
		},
	}, nil
}

type chromeSession struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func (s *chromeSession) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx := s.ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(runCtx, actions...)
}

func (c Candidate) queryOptions() (string, chromedp.QueryOption) {
	if c.Kind == Text {
		return fmt.Sprintf(`//%s[contains(., %q)]`, c.Query, c.Value), chromedp.BySearch
	}
	return c.Query, chromedp.ByQuery
}

func (s *chromeSession) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	return s.run(ctx, timeout, chromedp.Navigate(url))
}

func (s *chromeSession) Location(ctx context.Context) (string, error) {
	var url string
	err := s.run(ctx, 5*time.Second, chromedp.Location(&url))
	return url, err
}

func (s *chromeSession) WaitVisible(ctx context.Context, c Candidate, timeout time.Duration) error {
	sel, by := c.queryOptions()
	return s.run(ctx, timeout, chromedp.WaitVisible(sel, by))
}

func (s *chromeSession) Click(ctx context.Context, c Candidate, timeout time.Duration) error {
	sel, by := c.queryOptions()
	return s.run(ctx, timeout,
		chromedp.WaitVisible(sel, by),
		chromedp.Click(sel, by),
	)
}

func (s *chromeSession) Fill(ctx context.Context, c Candidate, value string, timeout time.Duration) error {
	sel, by := c.queryOptions()
	return s.run(ctx, timeout,
		chromedp.WaitVisible(sel, by),
		chromedp.SetValue(sel, value, by),
	)
}

func (s *chromeSession) EnsureChecked(ctx context.Context, c Candidate, timeout time.Duration) error {
	sel, by := c.queryOptions()
	var checked bool
	if err := s.run(ctx, timeout, chromedp.AttributeValue(sel, "checked", new(string), &checked, by)); err != nil {
		return err
	}
	if checked {
		return nil
	}
	return s.run(ctx, timeout, chromedp.Click(sel, by))
}

func (s *chromeSession) Text(ctx context.Context, c Candidate, timeout time.Duration) (string, error) {
	sel, by := c.queryOptions()
	var text string
	err := s.run(ctx, timeout,
		chromedp.WaitVisible(sel, by),
		chromedp.Text(sel, &text, by),
	)
	return strings.TrimSpace(text), err
}

func (s *chromeSession) Content(ctx context.Context) (string, error) {
	var html string
	err := s.run(ctx, 10*time.Second, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (s *chromeSession) Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *chromeSession) Close() error {
	s.cancel()
	return nil
}
