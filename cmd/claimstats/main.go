// Command claimstats ingests a claims file into the record store and
// recomputes summary statistics. It loads a JSON config, optionally wires a
// metrics backend, and runs the upload flow end to end.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"claimstats/internal/aggregate"
	"claimstats/internal/config"
	"claimstats/internal/ingest"
	"claimstats/internal/metrics"
	"claimstats/internal/metrics/prompush"
	"claimstats/internal/schema"
	"claimstats/internal/storage"
	"claimstats/internal/storage/postgres"
	"claimstats/internal/storage/sqlite"
	"claimstats/pkg/claims"
)

func main() {
	var (
		cfgPath        string
		filePath       string
		validate       bool
		metricsOnly    bool
		metricsBackend string
		pushgatewayURL string
	)

	flag.StringVar(&cfgPath, "config", "configs/claimstats.json", "config JSON path")
	flag.StringVar(&filePath, "file", "", "claims file to ingest (overrides source.path)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	flag.BoolVar(&metricsOnly, "metrics", false, "skip ingestion, only recompute summaries")
	flag.StringVar(&metricsBackend, "metrics-backend", "", "metrics backend: pushgateway or none (default from METRICS_BACKEND)")
	flag.StringVar(&pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	verbose := flag.Bool("v", false, "enable verbose logs")
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatalf("%v", err)
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = os.Getenv("DATABASE_URL")
	}

	issues := config.Validate(cfg)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}
	if validate {
		log.Printf("configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	for header, col := range cfg.HeaderMap {
		schema.AddAlias(header, claims.Field(col))
	}

	setupMetrics(metricsBackend, pushgatewayURL, *verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	ctx := context.Background()
	start := time.Now()

	store, summaries, closeFn, err := openStores(ctx, cfg.Storage)
	if err != nil {
		fatalf("%v", err)
	}
	defer closeFn()

	if metricsOnly {
		out := aggregate.New(store, summaries).Compute(ctx, storage.Filter{})
		for _, s := range out {
			log.Printf("%-8s count=%d mean=%.2f min=%.2f max=%.2f median=%.2f mode=%.2f",
				s.LevelOfCare, s.RecordCount, s.Mean, s.Min, s.Max, s.Median, s.Mode)
		}
		return
	}

	path := filePath
	if path == "" {
		path = cfg.Source.Path
	}
	if path == "" {
		fatalf("no input file: pass -file or set source.path")
	}

	file, err := parseFile(path, cfg.Source.Delimiter)
	if err != nil {
		fatalf("%v", err)
	}

	if err := ingest.Run(ctx, store, summaries, file, cfg.Runtime.BatchSize); err != nil {
		log.Fatalf("%v", err)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// parseFile routes the input through the reader matching its extension.
func parseFile(path, delimiter string) (*ingest.FileResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ingest.ParseSpreadsheet(data)
	}
	return ingest.ParseDelimited(string(data), delimiter)
}

// openStores wires the configured backend and bootstraps its schema. Both
// repositories implement the claim and summary store contracts.
func openStores(ctx context.Context, sc config.Storage) (storage.ClaimStore, storage.SummaryStore, func(), error) {
	switch sc.Kind {
	case "postgres":
		repo, closeFn, err := postgres.NewRepository(ctx, postgres.Config{
			DSN:          sc.DSN,
			ClaimsTable:  sc.ClaimsTable,
			MetricsTable: sc.MetricsTable,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		if err := repo.Bootstrap(ctx); err != nil {
			closeFn()
			return nil, nil, nil, err
		}
		return repo, repo, closeFn, nil
	case "sqlite":
		repo, closeFn, err := sqlite.NewRepository(ctx, sqlite.Config{
			DSN:          sc.DSN,
			ClaimsTable:  sc.ClaimsTable,
			MetricsTable: sc.MetricsTable,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		if err := repo.Bootstrap(ctx); err != nil {
			closeFn()
			return nil, nil, nil, err
		}
		return repo, repo, closeFn, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown storage kind %q", sc.Kind)
	}
}

// setupMetrics decides the metrics backend: flag -> env -> nop.
func setupMetrics(backendName, gwURL string, verbose bool) {
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "pushgateway":
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend("claimstats", gwURL)
		if err != nil {
			log.Printf("metrics: failed to init pushgateway backend: %v; using nop", err)
			return
		}
		metrics.SetBackend(b)
	case "", "none":
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}
	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
