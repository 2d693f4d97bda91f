package reference

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"ArticleEnricher/internal/ports"
)

// DefaultFallback is substituted when search is inconclusive and no other list is configured.
var DefaultFallback = []string{
	"https://en.wikipedia.org/wiki/Chatbot",
	"https://www.ibm.com/topics/chatbots",
}

// DefaultExcludedHosts drop the engine's own links and video results.
var DefaultExcludedHosts = []string{"google.", "youtube."}

// SearchOptions configure the search engine scrape.
type SearchOptions struct {
	EngineURL     string
	UserAgent     string
	ExcludedHosts []string
	MaxResults    int
	Fallback      []string
	Timeout       time.Duration
}

// Searcher discovers reference URLs from a rendered search result page.
type Searcher struct {
	browser ports.Browser
	parser  ports.DocumentParser
	opts    SearchOptions
	logger  *slog.Logger
}

var _ ports.ReferenceSearcher = (*Searcher)(nil)

// NewSearcher wires the browser and parser; MaxResults defaults to 2.
func NewSearcher(browser ports.Browser, parser ports.DocumentParser, opts SearchOptions, log *slog.Logger) *Searcher {
	if opts.MaxResults <= 0 {
		opts.MaxResults = 2
	}
	if len(opts.Fallback) == 0 {
		opts.Fallback = DefaultFallback
	}
	if opts.ExcludedHosts == nil {
		opts.ExcludedHosts = DefaultExcludedHosts
	}
	return &Searcher{browser: browser, parser: parser, opts: opts, logger: log}
}

// Search returns at most MaxResults result links for query. It never fails:
// rendering errors or too few results yield the configured fallback list.
func (s *Searcher) Search(ctx context.Context, query string) []string {
	searchURL := s.searchURL(query)

	html, err := s.browser.Render(ctx, searchURL, ports.RenderOptions{
		UserAgent: s.opts.UserAgent,
		Timeout:   s.opts.Timeout,
	})
	if err != nil {
		s.warn("search failed, using fallback", "query", query, "error", err)
		return s.fallback()
	}

	links, err := s.parser.ExtractHeadingLinks(html, searchURL)
	if err != nil {
		s.warn("search page unreadable, using fallback", "query", query, "error", err)
		return s.fallback()
	}

	results := s.filter(links)
	if len(results) < s.opts.MaxResults {
		s.warn("too few search results, using fallback", "query", query, "found", len(results))
		return s.fallback()
	}

	return results[:s.opts.MaxResults]
}

func (s *Searcher) searchURL(query string) string {
	engine := s.opts.EngineURL
	if engine == "" {
		engine = "https://www.google.com/search"
	}
	sep := "?"
	if strings.Contains(engine, "?") {
		sep = "&"
	}
	return engine + sep + "q=" + url.QueryEscape(query)
}

// filter keeps absolute http(s) links off excluded hosts, deduplicated in first-seen order.
func (s *Searcher) filter(links []string) []string {
	seen := make(map[string]struct{}, len(links))
	var out []string
	for _, link := range links {
		parsed, err := url.Parse(link)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			continue
		}
		if s.excluded(parsed.Hostname()) {
			continue
		}
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}
		out = append(out, link)
	}
	return out
}

func (s *Searcher) excluded(host string) bool {
	host = strings.ToLower(host)
	for _, pattern := range s.opts.ExcludedHosts {
		if pattern != "" && strings.Contains(host, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

func (s *Searcher) fallback() []string {
	return append([]string(nil), s.opts.Fallback...)
}

func (s *Searcher) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
