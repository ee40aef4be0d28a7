// Package main provides the newsdesk CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"newsdesk/internal/aggregate"
	"newsdesk/internal/cache"
	"newsdesk/internal/config"
	"newsdesk/internal/feeds"
	"newsdesk/internal/fetch"
	"newsdesk/internal/logger"
	"newsdesk/internal/ratelimit"
	"newsdesk/internal/server"
	"newsdesk/internal/translate"
)

var version = "1.0.0"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	logger.Init()

	if err := newRootCmd().Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "newsdesk",
		Short:   "Aggregate categorized news from RSS feeds",
		Long:    "Newsdesk fetches RSS feeds per category, normalizes items into articles and serves them over HTTP, optionally translated.",
		Version: version,
	}

	rootCmd.SetVersionTemplate("newsdesk version {{.Version}}\n")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newFetchCmd())

	return rootCmd
}

// buildPipeline assembles the aggregation service from configuration.
// The returned cleanup closes the Gemini client when one was created.
func buildPipeline(cfg *config.Config) (*aggregate.Service, *feeds.Registry, *translate.Enricher, func(), error) {
	registry, err := feeds.LoadOrDefault(cfg.FeedsConfigPath)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("loading feed registry: %w", err)
	}

	providers := []translate.Translator{
		translate.NewGoogleTranslator(cfg.TranslateTimeout, cfg.TranslateRetries),
	}
	cleanup := func() {}
	if cfg.GeminiAPIKey != "" {
		limiter := ratelimit.New("gemini", cfg.MaxGeminiRequests, 24*time.Hour)
		gemini, err := translate.NewGeminiTranslator(context.Background(), cfg.GeminiAPIKey, limiter)
		if err != nil {
			logger.Warn("gemini translator unavailable, continuing without it", "error", err)
		} else {
			providers = append(providers, gemini)
			cleanup = gemini.Close
		}
	}
	enricher := translate.NewEnricher(translate.NewChain(providers...), cfg.TranslateSource, cfg.TranslateTarget)

	svc := aggregate.NewService(registry, fetch.NewClient(cfg.SourceTimeout), enricher, cache.New(cfg.CacheTTL), aggregate.Options{
		PerSourceLimit: cfg.PerSourceLimit,
		MaxArticles:    cfg.MaxArticles,
		Workers:        cfg.FetchWorkers,
		RequestTimeout: cfg.RequestTimeout,
	})
	return svc, registry, enricher, cleanup, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the news API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			svc, registry, enricher, cleanup, err := buildPipeline(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			srv := server.New(svc, registry, enricher)
			logger.Info("starting news API server", "port", cfg.Port, "categories", len(registry.Categories()))
			return srv.Router().Run(":" + cfg.Port)
		},
	}
}

func newFetchCmd() *cobra.Command {
	var (
		category      string
		translateText bool
		asJSON        bool
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch one category and print it to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			svc, registry, _, cleanup, err := buildPipeline(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			if category == "" {
				category = registry.DefaultCategory()
			}
			articles, resolved := svc.Aggregate(cmd.Context(), category, translateText)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(articles)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d articles\n\n", resolved, len(articles))
			for _, a := range articles {
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", a.Source, a.Title)
				if a.Published != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", a.Published)
				}
				if a.Description != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", a.Description)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "    %s\n\n", a.URL)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "category to fetch (default: registry default)")
	cmd.Flags().BoolVarP(&translateText, "translate", "t", false, "translate article text")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")

	return cmd
}
