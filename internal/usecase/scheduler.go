package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ArticleEnricher/internal/ports"
)

// ScheduleDeps binds both runs to their cron expressions.
type ScheduleDeps struct {
	Driver     ports.Scheduler
	Ingestion  *IngestionRun
	Enrichment *EnrichmentRun
	IngestCron string
	EnrichCron string
	Logger     *slog.Logger
}

// Scheduler wires the cron driver with the ingestion and enrichment use cases.
type Scheduler struct {
	driver     ports.Scheduler
	ingestion  *IngestionRun
	enrichment *EnrichmentRun
	ingestCron string
	enrichCron string
	logger     *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring jobs.
func NewScheduler(deps ScheduleDeps) *Scheduler {
	return &Scheduler{
		driver:     deps.Driver,
		ingestion:  deps.Ingestion,
		enrichment: deps.Enrichment,
		ingestCron: deps.IngestCron,
		enrichCron: deps.EnrichCron,
		logger:     deps.Logger,
	}
}

// Start registers the runs that have a cron expression and starts the driver.
// Jobs use ctx, so cancelling it aborts in-flight runs.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil {
		return fmt.Errorf("scheduler driver is nil")
	}

	if s.ingestion != nil && s.ingestCron != "" {
		err := s.driver.Add(s.ingestCron, func(trigger time.Time) {
			s.debug("ingestion triggered", "at", trigger)
			_, _ = s.ingestion.Run(ctx)
		})
		if err != nil {
			return fmt.Errorf("schedule ingestion: %w", err)
		}
	}

	if s.enrichment != nil && s.enrichCron != "" {
		err := s.driver.Add(s.enrichCron, func(trigger time.Time) {
			s.debug("enrichment triggered", "at", trigger)
			_, _ = s.enrichment.Run(ctx)
		})
		if err != nil {
			return fmt.Errorf("schedule enrichment: %w", err)
		}
	}

	return s.driver.Start(ctx)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}

func (s *Scheduler) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
