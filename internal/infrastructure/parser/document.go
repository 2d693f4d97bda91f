package parser

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ArticleEnricher/internal/domain"
	"ArticleEnricher/internal/ports"
)

const headingSelector = "h1, h2, h3, h4, h5, h6"

// Selectors keeps every markup assumption in one swappable place.
type Selectors struct {
	PageNumber   string
	ListingItem  string
	ListingTitle string
	// Content is tried in order; the first selector with a match wins.
	Content   []string
	Paragraph string
}

// DefaultSelectors match the WordPress-style markup of the source blog.
func DefaultSelectors() Selectors {
	return Selectors{
		PageNumber:   ".page-numbers",
		ListingItem:  "article",
		ListingTitle: "h2 a",
		Content:      []string{".entry-content", "article"},
		Paragraph:    "p",
	}
}

// DocumentParser extracts structured facts from HTML. All methods are pure.
type DocumentParser struct {
	selectors Selectors
}

var _ ports.DocumentParser = (*DocumentParser)(nil)

// NewDocumentParser fills empty selectors from DefaultSelectors.
func NewDocumentParser(sel Selectors) *DocumentParser {
	def := DefaultSelectors()
	if sel.PageNumber == "" {
		sel.PageNumber = def.PageNumber
	}
	if sel.ListingItem == "" {
		sel.ListingItem = def.ListingItem
	}
	if sel.ListingTitle == "" {
		sel.ListingTitle = def.ListingTitle
	}
	if len(sel.Content) == 0 {
		sel.Content = def.Content
	}
	if sel.Paragraph == "" {
		sel.Paragraph = def.Paragraph
	}
	return &DocumentParser{selectors: sel}
}

// ExtractPagination returns the highest numeric page marker, or 1 when there is none.
func (p *DocumentParser) ExtractPagination(html string) (int, error) {
	doc, err := newDocument(html)
	if err != nil {
		return 0, err
	}

	lastPage := 0
	doc.Find(p.selectors.PageNumber).Each(func(_ int, s *goquery.Selection) {
		n, convErr := strconv.Atoi(strings.TrimSpace(s.Text()))
		if convErr != nil {
			return
		}
		if n > lastPage {
			lastPage = n
		}
	})

	if lastPage < 1 {
		return 1, nil
	}
	return lastPage, nil
}

// ExtractListingItems returns title/url pairs in document order. Items
// without a title anchor are dropped; relative hrefs resolve against pageURL.
func (p *DocumentParser) ExtractListingItems(html, pageURL string) ([]domain.ArticleSummary, error) {
	doc, err := newDocument(html)
	if err != nil {
		return nil, err
	}

	var items []domain.ArticleSummary
	doc.Find(p.selectors.ListingItem).Each(func(_ int, item *goquery.Selection) {
		anchor := item.Find(p.selectors.ListingTitle).First()
		if anchor.Length() == 0 {
			return
		}

		href, ok := anchor.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}

		items = append(items, domain.ArticleSummary{
			Title: normalizeSpace(anchor.Text()),
			URL:   resolve(pageURL, href),
		})
	})

	return items, nil
}

// ExtractBody returns the visible text of the primary content container,
// falling back through the configured selectors.
func (p *DocumentParser) ExtractBody(html string) (string, error) {
	doc, err := newDocument(html)
	if err != nil {
		return "", err
	}

	for _, selector := range p.selectors.Content {
		container := doc.Find(selector).First()
		if container.Length() == 0 {
			continue
		}
		container.Find("script, style, noscript").Remove()
		return normalizeSpace(container.Text()), nil
	}

	return "", &domain.ParseError{What: "content container"}
}

// ExtractParagraphs joins the text of every paragraph element with a blank
// line. Line breaks inside a paragraph survive; blank paragraphs are skipped.
func (p *DocumentParser) ExtractParagraphs(html string) (string, error) {
	doc, err := newDocument(html)
	if err != nil {
		return "", err
	}

	var paragraphs []string
	doc.Find(p.selectors.Paragraph).Each(func(_ int, s *goquery.Selection) {
		if text := paragraphText(s); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	return strings.Join(paragraphs, "\n\n"), nil
}

// ExtractHeadingLinks returns absolute hrefs of anchors that either wrap a
// heading or sit directly inside one, in document order.
func (p *DocumentParser) ExtractHeadingLinks(html, pageURL string) ([]string, error) {
	doc, err := newDocument(html)
	if err != nil {
		return nil, err
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		if a.Find(headingSelector).Length() == 0 && !a.Parent().Is(headingSelector) {
			return
		}
		href, _ := a.Attr("href")
		links = append(links, resolve(pageURL, href))
	})

	return links, nil
}

func newDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func resolve(base, href string) string {
	href = strings.TrimSpace(href)
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.IsAbs() || base == "" {
		return ref.String()
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

// paragraphText renders a paragraph the way a browser lays it out: source
// whitespace collapses within a line and every <br> starts a new line.
func paragraphText(s *goquery.Selection) string {
	var (
		lines   []string
		current strings.Builder
		walk    func(*goquery.Selection)
	)
	walk = func(sel *goquery.Selection) {
		sel.Contents().Each(func(_ int, node *goquery.Selection) {
			switch goquery.NodeName(node) {
			case "br":
				lines = append(lines, normalizeSpace(current.String()))
				current.Reset()
			case "#text":
				current.WriteString(node.Text())
			case "script", "style", "#comment":
			default:
				walk(node)
			}
		})
	}
	walk(s)
	lines = append(lines, normalizeSpace(current.String()))

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func normalizeSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
