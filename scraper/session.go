package scraper

import (
	"context"
	"fmt"
	"time"

	"reservation-monitor/config"
	"reservation-monitor/utils"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// hideWebdriver runs before any page script so navigator.webdriver reads undefined
const hideWebdriver = `Object.defineProperty(navigator, 'webdriver', { get: () => undefined });`

// Session is one headless browser with a single tab, reused for every check.
// It must be closed on every exit path.
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    *config.Config
	logger *utils.Logger
}

// NewSession launches the browser and prepares its tab. A launch failure is returned.
func NewSession(parent context.Context, cfg *config.Config, logger *utils.Logger) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-http2", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("lang", cfg.Locale),
		chromedp.Flag("log-level", "3"), // suppress Chrome logs
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(cfg.ViewportWidth, cfg.ViewportHeight),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)

	logf := func(string, ...interface{}) {}
	if logger.Verbose() {
		logf = func(format string, args ...interface{}) { logger.Debug("chrome: "+format, args...) }
	}
	ctx, cancelCtx := chromedp.NewContext(allocCtx, chromedp.WithLogf(logf), chromedp.WithErrorf(logf))

	s := &Session{
		ctx: ctx,
		cancel: func() {
			cancelCtx()
			cancelAlloc()
		},
		cfg:    cfg,
		logger: logger,
	}

	// The first Run starts the browser
	if err := chromedp.Run(ctx, s.prepare()); err != nil {
		s.Close()
		return nil, fmt.Errorf("browser launch failed: %w", err)
	}
	logger.Info("Browser ready (headless=%v, locale=%s, tz=%s)", cfg.Headless, cfg.Locale, cfg.Timezone)
	return s, nil
}

// prepare applies the locale, timezone and header spoofing to the tab
func (s *Session) prepare() chromedp.Tasks {
	return chromedp.Tasks{
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": s.cfg.AcceptLanguage}),
		emulation.SetTimezoneOverride(s.cfg.Timezone),
		emulation.SetLocaleOverride().WithLocale(s.cfg.Locale),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(hideWebdriver).Do(ctx)
			return err
		}),
	}
}

// Close shuts down the tab and the browser process. Safe to call twice.
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Render loads pageURL and returns the rendered document HTML.
// Navigation is bounded by the navigation timeout; waiting for readySelector
// is bounded by the selector timeout and its failure is ignored.
func (s *Session) Render(ctx context.Context, pageURL, readySelector string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	navCtx, cancelNav := context.WithTimeout(s.ctx, s.cfg.NavTimeout)
	err := chromedp.Run(navCtx, chromedp.Navigate(pageURL))
	cancelNav()
	if err != nil {
		return "", fmt.Errorf("navigate failed: %w", err)
	}

	// give client-side rendering time to run
	if err := sleep(ctx, s.cfg.RenderWait); err != nil {
		return "", err
	}

	if readySelector != "" {
		waitCtx, cancelWait := context.WithTimeout(s.ctx, s.cfg.SelectorTimeout)
		if err := chromedp.Run(waitCtx, chromedp.WaitReady(readySelector, chromedp.ByQuery)); err != nil {
			s.logger.Debug("Ready selector not found on %s: %v", pageURL, err)
		}
		cancelWait()
	}

	var doc string
	if err := chromedp.Run(s.ctx, chromedp.OuterHTML("html", &doc, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read page html: %w", err)
	}
	return doc, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
