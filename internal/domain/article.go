package domain

import "time"

// PlaceholderContent replaces generated text when no generation credential is configured.
const PlaceholderContent = "Simulated update (No API Key)."

// Article is the persisted entity shared by the ingestion and enrichment runs.
type Article struct {
	ID             int64
	URL            string
	Title          string
	Content        string
	IsUpdated      bool
	UpdatedContent *string
	Citations      []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ArticleSummary is a title/url pair found on a listing page.
type ArticleSummary struct {
	Title string
	URL   string
}

// ArticleContent is what ingestion writes for one article.
type ArticleContent struct {
	URL     string
	Title   string
	Content string
}

// Reference is the scraped text of one external page.
type Reference struct {
	URL     string
	Content string
}

// Enrichment holds the fields only the enrichment run may write.
type Enrichment struct {
	UpdatedContent string
	Citations      []string
}

// LatestArticle returns the article with the greatest id.
func LatestArticle(articles []Article) (Article, bool) {
	if len(articles) == 0 {
		return Article{}, false
	}

	latest := articles[0]
	for _, article := range articles[1:] {
		if article.ID > latest.ID {
			latest = article
		}
	}
	return latest, true
}
