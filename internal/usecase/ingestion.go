package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"ArticleEnricher/internal/domain"
	"ArticleEnricher/internal/ports"
)

// Discoverer lists article summaries from a paginated source.
type Discoverer interface {
	Discover(ctx context.Context, listingURL string, quota int) ([]domain.ArticleSummary, error)
}

// Extractor loads the full content behind a summary.
type Extractor interface {
	Extract(ctx context.Context, summary domain.ArticleSummary) (domain.ArticleContent, error)
}

// IngestionDeps wires the driven adapters of the ingestion run.
type IngestionDeps struct {
	Discoverer Discoverer
	Extractor  Extractor
	Repository ports.ArticleRepository
	Notifier   ports.Notifier
	Logger     *slog.Logger
	ListingURL string
	Quota      int
}

// IngestionReport summarises one ingestion run.
type IngestionReport struct {
	Discovered int
	Stored     []domain.Article
	Skipped    []string
}

// IngestionRun discovers source articles and upserts them by URL.
type IngestionRun struct {
	discoverer Discoverer
	extractor  Extractor
	repository ports.ArticleRepository
	notifier   ports.Notifier
	logger     *slog.Logger
	listingURL string
	quota      int
}

// NewIngestionRun constructs the ingestion use case. Quota defaults to 5.
func NewIngestionRun(deps IngestionDeps) *IngestionRun {
	quota := deps.Quota
	if quota <= 0 {
		quota = 5
	}
	return &IngestionRun{
		discoverer: deps.Discoverer,
		extractor:  deps.Extractor,
		repository: deps.Repository,
		notifier:   deps.Notifier,
		logger:     deps.Logger,
		listingURL: deps.ListingURL,
		quota:      quota,
	}
}

// Run executes discovery, extraction and persistence once. A failing detail
// page or upsert skips that article; a failing listing page fails the run.
func (r *IngestionRun) Run(ctx context.Context) (IngestionReport, error) {
	var report IngestionReport
	if r.discoverer == nil || r.extractor == nil || r.repository == nil {
		return report, fmt.Errorf("ingestion run misconfigured")
	}

	summaries, err := r.discoverer.Discover(ctx, r.listingURL, r.quota)
	if err != nil {
		r.fail(ctx, err)
		return report, fmt.Errorf("discover articles: %w", err)
	}
	report.Discovered = len(summaries)
	r.info("articles discovered", "count", len(summaries))

	for _, summary := range summaries {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		content, err := r.extractor.Extract(ctx, summary)
		if err != nil {
			r.warn("skip article", "url", summary.URL, "error", err)
			report.Skipped = append(report.Skipped, summary.URL)
			continue
		}

		article, err := r.repository.UpsertByURL(ctx, content)
		if err != nil {
			r.warn("skip article", "url", summary.URL, "error", err)
			report.Skipped = append(report.Skipped, summary.URL)
			continue
		}

		r.info("article stored", "id", article.ID, "title", article.Title)
		report.Stored = append(report.Stored, article)
	}

	if len(report.Stored) == 0 && len(report.Skipped) > 0 {
		err := fmt.Errorf("no articles stored, %d skipped", len(report.Skipped))
		r.fail(ctx, err)
		return report, err
	}

	r.publish(ctx, fmt.Sprintf("Ingestion done: %d stored, %d skipped of %d discovered.",
		len(report.Stored), len(report.Skipped), report.Discovered))
	return report, nil
}

func (r *IngestionRun) fail(ctx context.Context, err error) {
	if r.logger != nil {
		r.logger.Error("ingestion failed", "error", err)
	}
	r.publish(ctx, "Ingestion failed: "+err.Error())
}

func (r *IngestionRun) publish(ctx context.Context, message string) {
	publishStatus(ctx, r.notifier, r.logger, message)
}

func (r *IngestionRun) info(msg string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Info(msg, args...)
	}
}

func (r *IngestionRun) warn(msg string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}

func publishStatus(ctx context.Context, notifier ports.Notifier, logger *slog.Logger, message string) {
	if notifier == nil {
		return
	}
	if err := notifier.PublishStatus(ctx, message); err != nil && logger != nil {
		logger.Warn("publish status failed", "error", err)
	}
}
