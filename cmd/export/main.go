// Command export fetches earthquakes for a date range and writes one export
// file per requested format. With -input it reads a saved USGS GeoJSON
// response instead of calling the event API.
//
// Usage:
//
//	go run ./cmd/export \
//	  -start 2024-04-25 -end 2024-04-26 \
//	  -formats csv,xlsx,geojson \
//	  -out-dir exports
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/couchcryptid/quake-data-viewer/internal/adapter/usgs"
	"github.com/couchcryptid/quake-data-viewer/internal/config"
	"github.com/couchcryptid/quake-data-viewer/internal/domain"
	"github.com/couchcryptid/quake-data-viewer/internal/export"
	"github.com/couchcryptid/quake-data-viewer/internal/observability"
	"github.com/couchcryptid/quake-data-viewer/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	start := flag.String("start", "", "first day YYYY-MM-DD (default yesterday, UTC)")
	end := flag.String("end", "", "last day YYYY-MM-DD (default today, UTC)")
	formats := flag.String("formats", "csv,xlsx", "comma-separated export formats: csv, xlsx, geojson")
	outDir := flag.String("out-dir", ".", "directory for the export files")
	input := flag.String("input", "", "saved USGS GeoJSON response to export instead of querying the API")
	flag.Parse()

	rng, err := domain.ParseDateRange(*start, *end)
	if err != nil {
		return err
	}
	fmts, err := parseFormats(*formats)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// Only warnings are logged unless LOG_LEVEL is set.
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.LogLevel = "warn"
	}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewUnregisteredMetrics()

	var source domain.EventSource = usgs.NewClient(cfg.USGSBaseURL, cfg.USGSTimeout, metrics, logger)
	if *input != "" {
		source = fileSource(*input)
	}
	p := pipeline.New(source, nil, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := p.Query(ctx, rng)
	if err != nil {
		return err
	}
	printSummary(result)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}
	for _, f := range fmts {
		artifact, err := export.Build(rng, result.Records, f)
		if err != nil {
			return fmt.Errorf("build %s: %w", f, err)
		}
		path := filepath.Join(*outDir, artifact.FileName)
		if err := os.WriteFile(path, artifact.Data, 0o600); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		log.Printf("wrote %s (%d bytes)", path, len(artifact.Data))
	}
	return nil
}

func parseFormats(s string) ([]export.Format, error) {
	var out []export.Format
	seen := map[export.Format]bool{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		f, err := export.ParseFormat(part)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no export formats given")
	}
	return out, nil
}

// fileSource serves a saved GeoJSON response regardless of the range asked for.
type fileSource string

func (f fileSource) Query(_ context.Context, _ domain.DateRange) (domain.FeatureCollection, error) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		return domain.FeatureCollection{}, err
	}
	return domain.DecodeFeatureCollection(data)
}

func printSummary(result pipeline.Result) {
	s := result.Summary
	fmt.Printf("Range: %s\n", result.Range)
	fmt.Printf("Total earthquakes: %d\n", s.Total)
	fmt.Printf("Max magnitude: %s\n", formatMagnitude(s.MaxMagnitude))
	fmt.Printf("Average magnitude: %s\n", formatMagnitude(s.AvgMagnitude))
	fmt.Printf("By tier: high=%d, medium=%d, neutral=%d\n", s.Tiers.High, s.Tiers.Medium, s.Tiers.Neutral)
}

func formatMagnitude(m *float64) string {
	if m == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *m)
}
