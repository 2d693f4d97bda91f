package ports

import (
	"context"
	"time"

	"ArticleEnricher/internal/domain"
)

// PageFetcher retrieves the raw HTML of a URL.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// DocumentParser extracts structured facts from HTML without side effects.
type DocumentParser interface {
	ExtractPagination(html string) (int, error)
	ExtractListingItems(html, pageURL string) ([]domain.ArticleSummary, error)
	ExtractBody(html string) (string, error)
	ExtractParagraphs(html string) (string, error)
	ExtractHeadingLinks(html, pageURL string) ([]string, error)
}

// ArticleRepository is the persistence boundary shared by both runs.
type ArticleRepository interface {
	List(ctx context.Context) ([]domain.Article, error)
	Get(ctx context.Context, id int64) (domain.Article, error)
	// UpsertByURL creates the article or refreshes title/content, leaving enrichment fields intact.
	UpsertByURL(ctx context.Context, content domain.ArticleContent) (domain.Article, error)
	// UpdateEnrichment marks the article updated and stores the rewrite with its citations.
	UpdateEnrichment(ctx context.Context, id int64, enrichment domain.Enrichment) (domain.Article, error)
}

// Browser renders a URL in a JavaScript-executing session and returns the resulting DOM as HTML.
type Browser interface {
	Render(ctx context.Context, pageURL string, opts RenderOptions) (string, error)
}

// RenderOptions tune a single Browser.Render call.
type RenderOptions struct {
	UserAgent string
	Timeout   time.Duration
	// DOMReady returns as soon as DOMContentLoaded fires instead of waiting for the load event.
	DOMReady bool
}

// ReferenceSearcher finds candidate reference URLs for a query. It never fails.
type ReferenceSearcher interface {
	Search(ctx context.Context, query string) []string
}

// ReferenceScraper extracts bounded plain text from a reference URL.
type ReferenceScraper interface {
	Scrape(ctx context.Context, pageURL string) (domain.Reference, error)
}

// Generator produces text for a prompt with a configured model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Rewriter composes an article and its references into rewritten text.
type Rewriter interface {
	Rewrite(ctx context.Context, article domain.Article, references []domain.Reference) (string, error)
}

// Notifier publishes run status to an outbound channel.
type Notifier interface {
	PublishStatus(ctx context.Context, message string) error
}

// Scheduler controls when jobs execute.
type Scheduler interface {
	Add(spec string, job func(time.Time)) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
