package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ArticleEnricher/internal/domain"
	"ArticleEnricher/internal/ports"
)

// EnrichmentState is a step of the enrichment run.
type EnrichmentState string

const (
	StateFetchTarget          EnrichmentState = "Fetch-Target"
	StateSearchReferences     EnrichmentState = "Search-References"
	StateScrapeReferences     EnrichmentState = "Scrape-References"
	StateRewriteOrPlaceholder EnrichmentState = "Rewrite-Or-Placeholder"
	StatePersist              EnrichmentState = "Persist"
	StateDone                 EnrichmentState = "Done"
	StateAborted              EnrichmentState = "Aborted"
)

// EnrichmentDeps wires the driven adapters of the enrichment run. A nil
// Rewriter means no generation credential is configured.
type EnrichmentDeps struct {
	Repository ports.ArticleRepository
	Searcher   ports.ReferenceSearcher
	Scraper    ports.ReferenceScraper
	Rewriter   ports.Rewriter
	Notifier   ports.Notifier
	Logger     *slog.Logger
}

// EnrichmentReport describes how far a run got.
type EnrichmentReport struct {
	State       EnrichmentState
	ArticleID   int64
	Title       string
	Citations   []string
	References  int
	Placeholder bool
	// AbortedAt is the state that failed when State is Aborted.
	AbortedAt EnrichmentState
}

// EnrichmentRun rewrites the latest stored article using external references.
type EnrichmentRun struct {
	repository ports.ArticleRepository
	searcher   ports.ReferenceSearcher
	scraper    ports.ReferenceScraper
	rewriter   ports.Rewriter
	notifier   ports.Notifier
	logger     *slog.Logger
}

// NewEnrichmentRun constructs the enrichment use case.
func NewEnrichmentRun(deps EnrichmentDeps) *EnrichmentRun {
	return &EnrichmentRun{
		repository: deps.Repository,
		searcher:   deps.Searcher,
		scraper:    deps.Scraper,
		rewriter:   deps.Rewriter,
		notifier:   deps.Notifier,
		logger:     deps.Logger,
	}
}

// Run walks the state machine once. The only write is the final Persist step,
// so an aborted run leaves the article untouched.
func (r *EnrichmentRun) Run(ctx context.Context) (EnrichmentReport, error) {
	report := EnrichmentReport{}
	if r.repository == nil || r.searcher == nil || r.scraper == nil {
		return r.abort(ctx, report, StateFetchTarget, errors.New("enrichment run misconfigured"))
	}

	r.enter(&report, StateFetchTarget)
	articles, err := r.repository.List(ctx)
	if err != nil {
		return r.abort(ctx, report, StateFetchTarget, fmt.Errorf("list articles: %w", err))
	}
	target, ok := domain.LatestArticle(articles)
	if !ok {
		r.info("no articles to enrich")
		return r.done(ctx, report, "Enrichment done: no articles stored yet."), nil
	}
	report.ArticleID = target.ID
	report.Title = target.Title
	r.info("target selected", "id", target.ID, "title", target.Title)

	r.enter(&report, StateSearchReferences)
	candidates := r.searcher.Search(ctx, target.Title)
	if len(candidates) == 0 {
		r.warn("no reference candidates", "id", target.ID)
		return r.done(ctx, report, fmt.Sprintf("Enrichment done: no references for article %d.", target.ID)), nil
	}
	report.Citations = append([]string(nil), candidates...)
	r.info("references found", "urls", candidates)

	r.enter(&report, StateScrapeReferences)
	references := make([]domain.Reference, 0, len(candidates))
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return r.abort(ctx, report, StateScrapeReferences, err)
		}
		ref, err := r.scraper.Scrape(ctx, candidate)
		if err != nil {
			r.warn("skip reference", "url", candidate, "error", err)
			continue
		}
		r.info("reference scraped", "url", candidate, "chars", len([]rune(ref.Content)))
		references = append(references, ref)
	}
	report.References = len(references)

	r.enter(&report, StateRewriteOrPlaceholder)
	updated := domain.PlaceholderContent
	if r.rewriter == nil {
		report.Placeholder = true
		r.info("no generation credentials, using placeholder")
	} else {
		updated, err = r.rewriter.Rewrite(ctx, target, references)
		if err != nil {
			return r.abort(ctx, report, StateRewriteOrPlaceholder, fmt.Errorf("rewrite article %d: %w", target.ID, err))
		}
	}

	r.enter(&report, StatePersist)
	_, err = r.repository.UpdateEnrichment(ctx, target.ID, domain.Enrichment{
		UpdatedContent: updated,
		Citations:      report.Citations,
	})
	if err != nil {
		return r.abort(ctx, report, StatePersist, fmt.Errorf("update article %d: %w", target.ID, err))
	}

	return r.done(ctx, report, fmt.Sprintf("Enrichment done: article %d %q updated with %d of %d references.",
		target.ID, target.Title, len(references), len(candidates))), nil
}

func (r *EnrichmentRun) enter(report *EnrichmentReport, state EnrichmentState) {
	report.State = state
	if r.logger != nil {
		r.logger.Debug("enter state", "state", string(state))
	}
}

func (r *EnrichmentRun) done(ctx context.Context, report EnrichmentReport, message string) EnrichmentReport {
	report.State = StateDone
	r.info("enrichment done", "id", report.ArticleID)
	publishStatus(ctx, r.notifier, r.logger, message)
	return report
}

func (r *EnrichmentRun) abort(ctx context.Context, report EnrichmentReport, at EnrichmentState, err error) (EnrichmentReport, error) {
	report.State = StateAborted
	report.AbortedAt = at
	if r.logger != nil {
		r.logger.Error("enrichment aborted", "state", string(at), "error", err)
	}
	publishStatus(ctx, r.notifier, r.logger, fmt.Sprintf("Enrichment aborted at %s: %v", at, err))
	return report, err
}

func (r *EnrichmentRun) info(msg string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Info(msg, args...)
	}
}

func (r *EnrichmentRun) warn(msg string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}
