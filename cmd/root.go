// Package cmd wires the kong CLI to the aggregation service.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/lepinkainen/libris/internal/aggregator"
	"github.com/lepinkainen/libris/internal/apicache"
	"github.com/lepinkainen/libris/internal/bookmeta"
	"github.com/lepinkainen/libris/internal/config"
	"github.com/lepinkainen/libris/internal/enrich"
	"github.com/lepinkainen/libris/internal/providers"
	"github.com/lepinkainen/libris/internal/providers/googlebooks"
	"github.com/lepinkainen/libris/internal/providers/openlibrary"
)

// newService builds the aggregation service; overridable in tests.
var newService = buildService

// CLI represents the complete command structure for the libris application
type CLI struct {
	// Global flags
	JSON    bool `help:"Print results as JSON"`
	Verbose bool `help:"Enable debug logging"`

	// Enrichment flags
	NoEnrich bool `help:"Skip the secondary enrichment pass"`

	Search    SearchCmd    `cmd:"" help:"Search books by free text"`
	Author    AuthorCmd    `cmd:"" help:"List books by author"`
	Recommend RecommendCmd `cmd:"" help:"Recommend books from author/genre/language parameters"`
	Check     CheckCmd     `cmd:"" help:"Check provider reachability"`
}

// SearchCmd represents the free-text search command
type SearchCmd struct {
	Query string `arg:"" help:"Free-text search query"`
	Max   int    `short:"n" help:"Maximum number of results" default:"10"`
}

// AuthorCmd represents the author listing command
type AuthorCmd struct {
	Name string `arg:"" help:"Author name"`
	Max  int    `short:"n" help:"Maximum number of results" default:"10"`
}

// RecommendCmd represents the recommendation command
type RecommendCmd struct {
	Authors   []string `short:"a" help:"Author names to draw recommendations from" required:""`
	Genres    []string `short:"g" help:"Genres to filter by"`
	Languages []string `short:"l" help:"Language codes to filter by"`
	Max       int      `short:"n" help:"Maximum number of results" default:"10"`
}

// CheckCmd pings every configured provider
type CheckCmd struct{}

type cliContext struct {
	service *aggregator.Service
	json    bool
}

// Execute runs the Kong-based CLI
func Execute() {
	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("libris"),
		kong.Description("Aggregate book metadata from multiple catalog providers."),
		kong.UsageOnError(),
	)

	initLogging(cli.Verbose)
	initConfig()

	runCtx := &cliContext{
		service: newService(!cli.NoEnrich),
		json:    cli.JSON,
	}

	if err := ctx.Run(runCtx); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetDefault("enrichment.enabled", true)

	viper.AutomaticEnv()
	if err := viper.BindEnv("googlebooks.apikey", "GOOGLE_BOOKS_API_KEY"); err != nil {
		slog.Error("Failed to bind environment variable", "error", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}

	config.InitConfig()
}

// buildService assembles the cache, the provider chain and the enricher.
// Chain order is the implicit dedup priority: Google Books first for its
// richer metadata, OpenLibrary as the fallback.
func buildService(enrichment bool) *aggregator.Service {
	cache := apicache.New()
	cache.StartSweeper(context.Background(), config.CacheSweepInterval)

	ol := openlibrary.New()
	chain := []providers.Adapter{
		googlebooks.New(config.GoogleBooksAPIKey),
		ol,
	}

	var enricher *enrich.Enricher
	if enrichment && config.EnrichmentEnabled {
		enricher = enrich.New(ol, ol).
			WithBatchLimit(config.EnrichmentBatchLimit).
			WithPace(config.EnrichmentPace)
	}

	return aggregator.New(cache, chain, enricher)
}

// Run methods for each command

func (s *SearchCmd) Run(ctx *cliContext) error {
	records, err := ctx.service.Search(context.Background(), s.Query, s.Max)
	if err != nil {
		return err
	}
	return printRecords(records, ctx.json)
}

func (a *AuthorCmd) Run(ctx *cliContext) error {
	records, err := ctx.service.ByAuthor(context.Background(), a.Name, a.Max)
	if err != nil {
		return err
	}
	return printRecords(records, ctx.json)
}

func (r *RecommendCmd) Run(ctx *cliContext) error {
	records, err := ctx.service.Recommend(context.Background(), aggregator.RecommendQuery{
		Authors:    r.Authors,
		Genres:     r.Genres,
		Languages:  r.Languages,
		MaxResults: r.Max,
	})
	if err != nil {
		return err
	}
	return printRecords(records, ctx.json)
}

func (c *CheckCmd) Run(ctx *cliContext) error {
	failed := false
	for name, err := range ctx.service.CheckProviders(context.Background()) {
		if err != nil {
			failed = true
			slog.Warn("Provider unreachable", "provider", name, "error", err)
			continue
		}
		slog.Info("Provider reachable", "provider", name)
	}
	if failed {
		return fmt.Errorf("one or more providers unreachable")
	}
	return nil
}

func printRecords(records []bookmeta.Record, asJSON bool) error {
	if asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("No results.")
		return nil
	}
	for _, record := range records {
		fmt.Printf("%s by %s (%s)\n", record.Title, record.PrimaryAuthor, record.PublishedDate)
		if record.Publisher != "" {
			fmt.Printf("    publisher: %s\n", record.Publisher)
		}
		if record.ISBN != "" {
			fmt.Printf("    isbn: %s\n", record.ISBN)
		}
		if record.CoverURL != "" {
			fmt.Printf("    cover: %s\n", record.CoverURL)
		}
	}
	return nil
}

func initLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}
