package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"ArticleEnricher/internal/config"
	"ArticleEnricher/internal/domain"
	"ArticleEnricher/internal/infrastructure/articleapi"
	"ArticleEnricher/internal/infrastructure/browser"
	"ArticleEnricher/internal/infrastructure/fetcher"
	"ArticleEnricher/internal/infrastructure/llm"
	"ArticleEnricher/internal/infrastructure/parser"
	"ArticleEnricher/internal/infrastructure/scheduler"
	"ArticleEnricher/internal/infrastructure/storage"
	"ArticleEnricher/internal/infrastructure/telegram"
	"ArticleEnricher/internal/logging"
	"ArticleEnricher/internal/ports"
	"ArticleEnricher/internal/reference"
	"ArticleEnricher/internal/rewriter"
	"ArticleEnricher/internal/scanner"
	"ArticleEnricher/internal/usecase"
)

const shutdownTimeout = time.Minute

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg        config.Config
	logger     *slog.Logger
	closer     io.Closer
	repository ports.ArticleRepository
	ingestion  *usecase.IngestionRun
	enrichment *usecase.EnrichmentRun
}

// New builds the adapters selected by cfg and both runs on top of them.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	repo, closer, err := newRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}

	generator, err := newGenerator(ctx, cfg.Generation)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID, "")
	}

	docParser := parser.NewDocumentParser(parser.Selectors{
		PageNumber:   cfg.Source.Selectors.PageNumber,
		ListingItem:  cfg.Source.Selectors.ListingItem,
		ListingTitle: cfg.Source.Selectors.ListingTitle,
		Content:      cfg.Source.Selectors.Content,
		Paragraph:    cfg.Source.Selectors.Paragraph,
	})
	pageFetcher := fetcher.New(fetcher.Options{
		Timeout:            cfg.Fetcher.Timeout,
		InsecureSkipVerify: cfg.Fetcher.InsecureSkipVerify,
		UserAgent:          cfg.Fetcher.UserAgent,
	})
	chrome := browser.NewChromeBrowser(browser.Options{
		Headless:  cfg.Browser.Headless,
		NoSandbox: cfg.Browser.NoSandbox,
		ExecPath:  cfg.Browser.ExecPath,
	}, baseLogger.With("component", "browser"))

	ingestion := usecase.NewIngestionRun(usecase.IngestionDeps{
		Discoverer: scanner.NewCrawler(pageFetcher, docParser, baseLogger.With("component", "crawler")),
		Extractor:  scanner.NewExtractor(pageFetcher, docParser),
		Repository: repo,
		Notifier:   notifier,
		Logger:     baseLogger.With("component", "ingestion"),
		ListingURL: cfg.Source.ListingURL,
		Quota:      cfg.Source.Quota,
	})

	var rw ports.Rewriter
	if generator != nil {
		rw = rewriter.New(generator)
	}

	enrichment := usecase.NewEnrichmentRun(usecase.EnrichmentDeps{
		Repository: repo,
		Searcher: reference.NewSearcher(chrome, docParser, reference.SearchOptions{
			EngineURL:     cfg.Search.EngineURL,
			UserAgent:     cfg.Search.UserAgent,
			ExcludedHosts: cfg.Search.ExcludedHosts,
			MaxResults:    cfg.Search.MaxResults,
			Fallback:      cfg.Search.Fallback,
			Timeout:       cfg.Search.Timeout,
		}, baseLogger.With("component", "search")),
		Scraper: reference.NewScraper(chrome, docParser, reference.ScrapeOptions{
			UserAgent: cfg.Search.UserAgent,
			Timeout:   cfg.Scraper.Timeout,
			MaxChars:  cfg.Scraper.MaxChars,
		}),
		Rewriter: rw,
		Notifier: notifier,
		Logger:   baseLogger.With("component", "enrichment"),
	})

	return &Application{
		cfg:        cfg,
		logger:     baseLogger,
		closer:     closer,
		repository: repo,
		ingestion:  ingestion,
		enrichment: enrichment,
	}, nil
}

func newRepository(ctx context.Context, cfg config.Config) (ports.ArticleRepository, io.Closer, error) {
	switch cfg.Storage.Driver {
	case config.DriverHTTP:
		return articleapi.New(cfg.Storage.APIURL, cfg.Fetcher.Timeout), nil, nil
	case config.DriverPostgres, config.DriverSQLite:
		repo, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open storage: %w", err)
		}
		return repo, repo, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// newGenerator returns nil when the selected provider has no credentials.
func newGenerator(ctx context.Context, cfg config.GenerationConfig) (ports.Generator, error) {
	if !cfg.HasCredentials() {
		return nil, nil
	}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		return llm.NewChatGPTClient(cfg.OpenAI), nil
	case config.ProviderGemini, "":
		client, err := llm.NewGeminiClient(ctx, cfg.Gemini, "")
		if err != nil {
			return nil, fmt.Errorf("init gemini: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
	}
}

// Ingest performs one ingestion run.
func (a *Application) Ingest(ctx context.Context) (usecase.IngestionReport, error) {
	return a.ingestion.Run(ctx)
}

// Enrich performs one enrichment run.
func (a *Application) Enrich(ctx context.Context) (usecase.EnrichmentReport, error) {
	return a.enrichment.Run(ctx)
}

// Article loads one stored article by id.
func (a *Application) Article(ctx context.Context, id int64) (domain.Article, error) {
	return a.repository.Get(ctx, id)
}

// Serve schedules both runs and blocks until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.Location(), a.logger)
	sched := usecase.NewScheduler(usecase.ScheduleDeps{
		Driver:     driver,
		Ingestion:  a.ingestion,
		Enrichment: a.enrichment,
		IngestCron: a.cfg.Scheduler.IngestCron,
		EnrichCron: a.cfg.Scheduler.EnrichCron,
		Logger:     a.logger.With("component", "schedule"),
	})

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler running",
		"ingest_cron", a.cfg.Scheduler.IngestCron,
		"enrich_cron", a.cfg.Scheduler.EnrichCron,
		"timezone", a.cfg.Scheduler.Location().String())

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return sched.Stop(stopCtx)
}

// Close releases the storage connection if one was opened.
func (a *Application) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
