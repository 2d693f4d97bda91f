package scanner

import (
	"context"
	"fmt"

	"ArticleEnricher/internal/domain"
	"ArticleEnricher/internal/ports"
)

// Extractor turns a discovered summary into full article content.
type Extractor struct {
	fetcher ports.PageFetcher
	parser  ports.DocumentParser
}

// NewExtractor wires the fetcher and parser used for detail pages.
func NewExtractor(fetcher ports.PageFetcher, parser ports.DocumentParser) *Extractor {
	return &Extractor{fetcher: fetcher, parser: parser}
}

// Extract fetches the summary's detail page and returns its body text.
// Callers skip the summary on error.
func (e *Extractor) Extract(ctx context.Context, summary domain.ArticleSummary) (domain.ArticleContent, error) {
	html, err := e.fetcher.Fetch(ctx, summary.URL)
	if err != nil {
		return domain.ArticleContent{}, fmt.Errorf("fetch article: %w", err)
	}

	body, err := e.parser.ExtractBody(html)
	if err != nil {
		return domain.ArticleContent{}, fmt.Errorf("extract body of %s: %w", summary.URL, err)
	}

	return domain.ArticleContent{
		URL:     summary.URL,
		Title:   summary.Title,
		Content: body,
	}, nil
}
