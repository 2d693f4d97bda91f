package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"ArticleEnricher/internal/ports"
)

const defaultTimeout = 30 * time.Second

// Options configure how Chrome processes are launched.
type Options struct {
	Headless  bool
	NoSandbox bool
	ExecPath  string
}

// ChromeBrowser renders pages in headless Chrome. Every Render call launches
// its own allocator and tab and tears both down before returning.
type ChromeBrowser struct {
	opts   Options
	logger *slog.Logger
}

var _ ports.Browser = (*ChromeBrowser)(nil)

// NewChromeBrowser stores launch options; no process starts until Render.
func NewChromeBrowser(opts Options, log *slog.Logger) *ChromeBrowser {
	return &ChromeBrowser{opts: opts, logger: log}
}

// Render navigates to pageURL and returns the serialized DOM.
func (b *ChromeBrowser) Render(ctx context.Context, pageURL string, opts ports.RenderOptions) (string, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, b.allocatorOptions(opts.UserAgent)...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelTab()

	runCtx, cancelRun := context.WithTimeout(tabCtx, timeout)
	defer cancelRun()

	started := time.Now()
	var html string
	err := chromedp.Run(runCtx,
		navigation(pageURL, opts.DOMReady),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", pageURL, err)
	}

	b.debug("page rendered", "url", pageURL, "bytes", len(html), "elapsed", time.Since(started))
	return html, nil
}

// navigation picks the wait condition: the load event by default, or
// DOMContentLoaded when domReady is set.
func navigation(pageURL string, domReady bool) chromedp.Action {
	if domReady {
		return domReadyNavigation(pageURL)
	}
	return chromedp.Navigate(pageURL)
}

// domReadyNavigation navigates and returns once DOMContentLoaded fires,
// without waiting for images, styles or other subresources.
type domReadyNavigation string

func (n domReadyNavigation) Do(ctx context.Context) error {
	listenCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	loaded := make(chan struct{})
	var once sync.Once
	chromedp.ListenTarget(listenCtx, func(ev any) {
		if _, ok := ev.(*page.EventDomContentEventFired); ok {
			once.Do(func() { close(loaded) })
		}
	})

	_, _, errorText, _, err := page.Navigate(string(n)).Do(ctx)
	if err != nil {
		return fmt.Errorf("navigate: %w", err)
	}
	if errorText != "" {
		return fmt.Errorf("navigate: %s", errorText)
	}

	select {
	case <-loaded:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *ChromeBrowser) allocatorOptions(userAgent string) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", b.opts.Headless),
		chromedp.Flag("no-sandbox", b.opts.NoSandbox),
		chromedp.Flag("disable-setuid-sandbox", b.opts.NoSandbox),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
	)
	if userAgent != "" {
		opts = append(opts, chromedp.UserAgent(userAgent))
	}
	if b.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(b.opts.ExecPath))
	}
	return opts
}

func (b *ChromeBrowser) debug(msg string, args ...interface{}) {
	if b.logger != nil {
		b.logger.Debug(msg, args...)
	}
}
