package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"ArticleEnricher/internal/app"
	"ArticleEnricher/internal/config"
	"ArticleEnricher/internal/logging"
)

var (
	cfgFile  string
	logLevel string
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "articleenricher",
		Short:         "Ingest blog articles and enrich the latest one with external references",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to YAML config (overrides $ARTICLE_ENRICHER_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug|info|warn|error (overrides config)")

	rootCmd.AddCommand(newIngestCmd())
	rootCmd.AddCommand(newEnrichCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newShowCmd())

	return rootCmd
}

func loadConfig() (config.Config, *slog.Logger) {
	if cfgFile != "" {
		_ = os.Setenv("ARTICLE_ENRICHER_CONFIG", cfgFile)
	}
	cfg := config.Load()
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, logging.New(cfg.Logging.Level)
}

func withApplication(cmd *cobra.Command, run func(*app.Application, *slog.Logger) error) error {
	cfg, logger := loadConfig()

	application, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("build application: %w", err)
	}
	defer func() {
		if cerr := application.Close(); cerr != nil {
			logger.Warn("close application", "error", cerr)
		}
	}()

	return run(application, logger)
}

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Discover and store the configured quota of source articles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApplication(cmd, func(a *app.Application, logger *slog.Logger) error {
				report, err := a.Ingest(cmd.Context())
				if err != nil {
					return err
				}
				logger.Info("ingestion finished",
					"discovered", report.Discovered,
					"stored", len(report.Stored),
					"skipped", len(report.Skipped))
				for _, article := range report.Stored {
					fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", article.ID, article.Title, article.URL)
				}
				return nil
			})
		},
	}
}

func newEnrichCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enrich",
		Short: "Rewrite the latest stored article using external references",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApplication(cmd, func(a *app.Application, logger *slog.Logger) error {
				report, err := a.Enrich(cmd.Context())
				if err != nil {
					return err
				}
				logger.Info("enrichment finished",
					"state", string(report.State),
					"article_id", report.ArticleID,
					"references", report.References,
					"placeholder", report.Placeholder)
				if report.ArticleID != 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", report.ArticleID, report.Title)
					for _, citation := range report.Citations {
						fmt.Fprintf(cmd.OutOrStdout(), "\t%s\n", citation)
					}
				}
				return nil
			})
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run ingestion and enrichment on their cron schedules until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApplication(cmd, func(a *app.Application, _ *slog.Logger) error {
				return a.Serve(cmd.Context())
			})
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one stored article with its enrichment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("parse article id %q: %w", args[0], err)
			}
			return withApplication(cmd, func(a *app.Application, _ *slog.Logger) error {
				article, err := a.Article(cmd.Context(), id)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%d\t%s\t%s\n\n%s\n", article.ID, article.Title, article.URL, article.Content)
				if article.UpdatedContent != nil {
					fmt.Fprintf(out, "\n--- updated ---\n%s\n", *article.UpdatedContent)
				}
				for _, citation := range article.Citations {
					fmt.Fprintf(out, "\t%s\n", citation)
				}
				return nil
			})
		},
	}
}
