package scanner

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"strconv"
	"strings"

	"ArticleEnricher/internal/domain"
	"ArticleEnricher/internal/ports"
)

// Crawler walks a paginated listing from the last page toward page 1.
type Crawler struct {
	fetcher ports.PageFetcher
	parser  ports.DocumentParser
	logger  *slog.Logger
}

// NewCrawler wires the fetcher and parser used for listing pages.
func NewCrawler(fetcher ports.PageFetcher, parser ports.DocumentParser, log *slog.Logger) *Crawler {
	return &Crawler{fetcher: fetcher, parser: parser, logger: log}
}

// PageURL returns the listing URL for page n; page 1 is the bare listing URL.
func PageURL(listingURL string, n int) string {
	if n <= 1 {
		return listingURL
	}
	return strings.TrimSuffix(listingURL, "/") + "/page/" + strconv.Itoa(n) + "/"
}

// Discover collects up to quota summaries, walking from the last listing page
// down to page 1 and keeping items in the order encountered. Any page fetch
// failure aborts the whole call.
func (c *Crawler) Discover(ctx context.Context, listingURL string, quota int) ([]domain.ArticleSummary, error) {
	if quota <= 0 {
		return nil, fmt.Errorf("quota must be positive, got %d", quota)
	}

	firstHTML, err := c.fetcher.Fetch(ctx, listingURL)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}

	lastPage, err := c.parser.ExtractPagination(firstHTML)
	if err != nil {
		return nil, fmt.Errorf("read pagination: %w", err)
	}
	c.debug("last page found", "last_page", lastPage)

	summaries := make([]domain.ArticleSummary, 0, quota)
	for items, err := range c.listingPages(ctx, listingURL, lastPage, firstHTML) {
		if err != nil {
			return nil, err
		}
		summaries = appendUpTo(summaries, items, quota)
		if len(summaries) >= quota {
			break
		}
	}

	c.debug("discovery done", "found", len(summaries), "quota", quota)
	return summaries, nil
}

// listingPages lazily yields the items of each page from lastPage down to 1.
// The already fetched first page is reused instead of fetched twice.
func (c *Crawler) listingPages(ctx context.Context, listingURL string, lastPage int, firstHTML string) iter.Seq2[[]domain.ArticleSummary, error] {
	return func(yield func([]domain.ArticleSummary, error) bool) {
		for page := lastPage; page >= 1; page-- {
			pageURL := PageURL(listingURL, page)

			html := firstHTML
			if page > 1 {
				c.debug("fetch listing page", "url", pageURL)
				var err error
				html, err = c.fetcher.Fetch(ctx, pageURL)
				if err != nil {
					yield(nil, fmt.Errorf("fetch listing page %d: %w", page, err))
					return
				}
			}

			items, err := c.parser.ExtractListingItems(html, pageURL)
			if err != nil {
				yield(nil, fmt.Errorf("parse listing page %d: %w", page, err))
				return
			}
			if !yield(items, nil) {
				return
			}
		}
	}
}

func appendUpTo(acc, items []domain.ArticleSummary, quota int) []domain.ArticleSummary {
	room := quota - len(acc)
	if room <= 0 {
		return acc
	}
	if len(items) > room {
		items = items[:room]
	}
	return append(acc, items...)
}

func (c *Crawler) debug(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
