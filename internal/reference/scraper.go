package reference

import (
	"context"
	"fmt"
	"time"

	"ArticleEnricher/internal/domain"
	"ArticleEnricher/internal/ports"
)

const (
	defaultScrapeTimeout = 30 * time.Second
	defaultMaxChars      = 5000
)

// ScrapeOptions bound a single reference extraction.
type ScrapeOptions struct {
	UserAgent string
	Timeout   time.Duration
	MaxChars  int
}

// Scraper extracts paragraph text from reference pages.
type Scraper struct {
	browser ports.Browser
	parser  ports.DocumentParser
	opts    ScrapeOptions
}

var _ ports.ReferenceScraper = (*Scraper)(nil)

// NewScraper wires the browser and parser; zero options take the 30s / 5000 character defaults.
func NewScraper(browser ports.Browser, parser ports.DocumentParser, opts ScrapeOptions) *Scraper {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultScrapeTimeout
	}
	if opts.MaxChars <= 0 {
		opts.MaxChars = defaultMaxChars
	}
	return &Scraper{browser: browser, parser: parser, opts: opts}
}

// Scrape renders pageURL in a fresh session and returns its paragraph text,
// truncated to MaxChars characters. Callers skip the URL on error.
func (s *Scraper) Scrape(ctx context.Context, pageURL string) (domain.Reference, error) {
	html, err := s.browser.Render(ctx, pageURL, ports.RenderOptions{
		UserAgent: s.opts.UserAgent,
		Timeout:   s.opts.Timeout,
		DOMReady:  true,
	})
	if err != nil {
		return domain.Reference{}, &domain.FetchError{URL: pageURL, Err: err}
	}

	text, err := s.parser.ExtractParagraphs(html)
	if err != nil {
		return domain.Reference{}, fmt.Errorf("extract paragraphs of %s: %w", pageURL, err)
	}
	if text == "" {
		return domain.Reference{}, fmt.Errorf("scrape %s: %w", pageURL, domain.ErrNoContent)
	}

	return domain.Reference{URL: pageURL, Content: truncate(text, s.opts.MaxChars)}, nil
}

// truncate cuts text to at most limit runes.
func truncate(text string, limit int) string {
	count := 0
	for i := range text {
		if count == limit {
			return text[:i]
		}
		count++
	}
	return text
}
