package scanner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArticleEnricher/internal/domain"
	"ArticleEnricher/internal/infrastructure/parser"
)

const listingURL = "https://blog.example.org/blogs/"

type fakeFetcher struct {
	pages map[string]string
	fail  map[string]error
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, pageURL string) (string, error) {
	f.calls = append(f.calls, pageURL)
	if err, ok := f.fail[pageURL]; ok {
		return "", err
	}
	html, ok := f.pages[pageURL]
	if !ok {
		return "", &domain.FetchError{URL: pageURL, StatusCode: 404}
	}
	return html, nil
}

func listingPage(lastPage int, titles ...string) string {
	var b strings.Builder
	b.WriteString("<html><body><main>")
	for _, title := range titles {
		fmt.Fprintf(&b, `<article><h2><a href="/%s/">%s</a></h2></article>`, strings.ToLower(title), title)
	}
	b.WriteString("</main><nav>")
	for i := 1; i <= lastPage; i++ {
		fmt.Fprintf(&b, `<a class="page-numbers" href="#">%d</a>`, i)
	}
	b.WriteString("</nav></body></html>")
	return b.String()
}

func titles(summaries []domain.ArticleSummary) []string {
	out := make([]string, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, s.Title)
	}
	return out
}

func newCrawler(f *fakeFetcher) *Crawler {
	return NewCrawler(f, parser.NewDocumentParser(parser.DefaultSelectors()), nil)
}

func TestPageURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, listingURL, PageURL(listingURL, 1))
	assert.Equal(t, "https://blog.example.org/blogs/page/3/", PageURL(listingURL, 3))
	assert.Equal(t, "https://blog.example.org/blogs/page/2/", PageURL("https://blog.example.org/blogs", 2))
}

func TestDiscoverWalksBackwardFromLastPage(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{pages: map[string]string{
		listingURL:             listingPage(3, "F", "G"),
		PageURL(listingURL, 3): listingPage(3, "A", "B"),
		PageURL(listingURL, 2): listingPage(3, "C", "D", "E"),
	}}

	got, err := newCrawler(f).Discover(context.Background(), listingURL, 5)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, titles(got))
	assert.Equal(t, "https://blog.example.org/a/", got[0].URL)
	assert.Equal(t, []string{listingURL, PageURL(listingURL, 3), PageURL(listingURL, 2)}, f.calls,
		"page 1 must not be fetched again once quota is met")
}

func TestDiscoverTruncatesPageThatCompletesQuota(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{pages: map[string]string{
		listingURL:             listingPage(2, "X", "Y"),
		PageURL(listingURL, 2): listingPage(2, "A", "B", "C", "D"),
	}}

	got, err := newCrawler(f).Discover(context.Background(), listingURL, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "D", "X"}, titles(got))
}

func TestDiscoverReturnsAllWhenFewerThanQuota(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{pages: map[string]string{
		listingURL:             listingPage(2, "C"),
		PageURL(listingURL, 2): listingPage(2, "A", "B"),
	}}

	got, err := newCrawler(f).Discover(context.Background(), listingURL, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, titles(got))
}

func TestDiscoverSinglePageWithoutPagination(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{pages: map[string]string{
		listingURL: listingPage(0, "One", "Two", "Three"),
	}}

	got, err := newCrawler(f).Discover(context.Background(), listingURL, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"One", "Two", "Three"}, titles(got))
	assert.Len(t, f.calls, 1)
}

func TestDiscoverAbortsOnPageFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	f := &fakeFetcher{
		pages: map[string]string{
			listingURL:             listingPage(3, "F"),
			PageURL(listingURL, 3): listingPage(3, "A"),
		},
		fail: map[string]error{PageURL(listingURL, 2): boom},
	}

	got, err := newCrawler(f).Discover(context.Background(), listingURL, 5)
	require.ErrorIs(t, err, boom)
	assert.Nil(t, got)
}

func TestDiscoverBaseFetchFailure(t *testing.T) {
	t.Parallel()

	_, err := newCrawler(&fakeFetcher{}).Discover(context.Background(), listingURL, 5)

	var fetchErr *domain.FetchError
	require.True(t, errors.As(err, &fetchErr))
}

func TestDiscoverRejectsNonPositiveQuota(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{}
	_, err := newCrawler(f).Discover(context.Background(), listingURL, 0)
	require.Error(t, err)
	assert.Empty(t, f.calls)
}

func TestExtract(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{pages: map[string]string{
		"https://blog.example.org/a/": `<article><div class="entry-content"><p>Body text.</p></div></article>`,
	}}
	e := NewExtractor(f, parser.NewDocumentParser(parser.DefaultSelectors()))

	got, err := e.Extract(context.Background(), domain.ArticleSummary{Title: "A", URL: "https://blog.example.org/a/"})
	require.NoError(t, err)
	assert.Equal(t, domain.ArticleContent{URL: "https://blog.example.org/a/", Title: "A", Content: "Body text."}, got)
}

func TestExtractErrors(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{pages: map[string]string{
		"https://blog.example.org/empty/": `<div>no article</div>`,
	}}
	e := NewExtractor(f, parser.NewDocumentParser(parser.DefaultSelectors()))

	_, err := e.Extract(context.Background(), domain.ArticleSummary{URL: "https://blog.example.org/missing/"})
	var fetchErr *domain.FetchError
	require.True(t, errors.As(err, &fetchErr))

	_, err = e.Extract(context.Background(), domain.ArticleSummary{URL: "https://blog.example.org/empty/"})
	var parseErr *domain.ParseError
	require.True(t, errors.As(err, &parseErr))
}
