package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArticleEnricher/internal/domain"
)

func TestExtractPagination(t *testing.T) {
	t.Parallel()

	p := NewDocumentParser(Selectors{})

	cases := []struct {
		name string
		html string
		want int
	}{
		{
			name: "no markers",
			html: `<html><body><p>single page</p></body></html>`,
			want: 1,
		},
		{
			name: "max of numeric markers",
			html: `<nav>
				<span class="page-numbers current">1</span>
				<a class="page-numbers" href="/blogs/page/2/">2</a>
				<a class="page-numbers" href="/blogs/page/14/">14</a>
				<a class="page-numbers" href="/blogs/page/3/">3</a>
				<a class="next page-numbers" href="/blogs/page/2/">Next »</a>
			</nav>`,
			want: 14,
		},
		{
			name: "only non numeric markers",
			html: `<span class="page-numbers dots">…</span>`,
			want: 1,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := p.ExtractPagination(tc.html)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExtractListingItems(t *testing.T) {
	t.Parallel()

	html := `
	<main>
	  <article><h2 class="entry-title"><a href="https://blog.example.org/first/"> First
	    Post </a></h2></article>
	  <article><h3><a href="/ignored/">Wrong heading</a></h3></article>
	  <article><h2><a href="/second/">Second Post</a></h2></article>
	  <article><h2><a>No href</a></h2></article>
	</main>`

	items, err := NewDocumentParser(DefaultSelectors()).ExtractListingItems(html, "https://blog.example.org/blogs/page/2/")
	require.NoError(t, err)

	assert.Equal(t, []domain.ArticleSummary{
		{Title: "First Post", URL: "https://blog.example.org/first/"},
		{Title: "Second Post", URL: "https://blog.example.org/second/"},
	}, items)
}

func TestExtractBodyPrefersEntryContent(t *testing.T) {
	t.Parallel()

	html := `
	<article>
	  <header>Header noise</header>
	  <div class="entry-content">
	    <p>Hello   world.</p>
	    <script>var tracking = true;</script>
	    <style>.x{}</style>
	    <p>Second paragraph.</p>
	  </div>
	</article>`

	body, err := NewDocumentParser(DefaultSelectors()).ExtractBody(html)
	require.NoError(t, err)
	assert.Equal(t, "Hello world. Second paragraph.", body)
}

func TestExtractBodyFallsBackToArticle(t *testing.T) {
	t.Parallel()

	body, err := NewDocumentParser(DefaultSelectors()).ExtractBody(`<article><p>Only article.</p></article>`)
	require.NoError(t, err)
	assert.Equal(t, "Only article.", body)
}

func TestExtractBodyMissingContainer(t *testing.T) {
	t.Parallel()

	_, err := NewDocumentParser(DefaultSelectors()).ExtractBody(`<div>nothing here</div>`)

	var parseErr *domain.ParseError
	require.True(t, errors.As(err, &parseErr))
}

func TestExtractParagraphs(t *testing.T) {
	t.Parallel()

	html := `<body><p>One</p><div><p>Two
	lines</p></div><p>   </p><p>Three</p></body>`

	text, err := NewDocumentParser(DefaultSelectors()).ExtractParagraphs(html)
	require.NoError(t, err)
	assert.Equal(t, "One\n\nTwo lines\n\nThree", text)
}

func TestExtractParagraphsKeepsLineBreaks(t *testing.T) {
	t.Parallel()

	html := `<body>
	<p>  Street 1<br>City <b>Centre</b><br/>
	   Country  </p>
	<p>Intro<br><br>after gap</p>
	<p><br></p>
	</body>`

	text, err := NewDocumentParser(DefaultSelectors()).ExtractParagraphs(html)
	require.NoError(t, err)
	assert.Equal(t, "Street 1\nCity Centre\nCountry\n\nIntro\n\nafter gap", text)
}

func TestExtractHeadingLinks(t *testing.T) {
	t.Parallel()

	html := `
	<div id="search">
	  <a href="https://example.com/wrapped"><h3>Wrapped heading</h3></a>
	  <h3><a href="https://example.org/inside">Inside heading</a></h3>
	  <a href="https://example.net/plain">Plain link</a>
	  <a href="/url?q=relative"><h3>Relative</h3></a>
	</div>`

	links, err := NewDocumentParser(DefaultSelectors()).ExtractHeadingLinks(html, "https://www.google.com/search?q=x")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://example.com/wrapped",
		"https://example.org/inside",
		"https://www.google.com/url?q=relative",
	}, links)
}

func TestCustomSelectors(t *testing.T) {
	t.Parallel()

	p := NewDocumentParser(Selectors{ListingItem: "li.post", ListingTitle: "a.title"})

	items, err := p.ExtractListingItems(`<ul><li class="post"><a class="title" href="https://x.test/a">A</a></li></ul>`, "")
	require.NoError(t, err)
	assert.Equal(t, []domain.ArticleSummary{{Title: "A", URL: "https://x.test/a"}}, items)
}
