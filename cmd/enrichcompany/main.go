// Command enrichcompany runs the company enrichment stage (spec §2):
// for each company, fetch SEC EDGAR and Yahoo Finance in parallel,
// merge by priority order, and persist the merged record.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"edgarkg/pkg/pipeline"
	"edgarkg/pkg/stats"
)

type companyRow struct {
	CIK    string
	Ticker string
	Name   string
}

func main() {
	execute := flag.Bool("execute", false, "perform enrichment lookups (default is a dry run)")
	rosterPath := flag.String("roster", "", "CSV of cik,ticker,name")
	outDir := flag.String("out-dir", "data/enriched", "directory to write one JSON result per CIK")
	limit := flag.Int("limit", 0, "process at most N companies (0 = no limit)")
	workers := flag.Int("workers", 0, "worker pool size (0 = config default)")
	envPath := flag.String("env", ".env", "path to .env secrets file")
	yamlPath := flag.String("config", "config.yaml", "path to config.yaml tuning file")
	hjsonPath := flag.String("override", "config.hjson", "path to config.hjson local override")
	cachePath := flag.String("cache", "data/cache.db", "path to the SQLite artifact cache")
	flag.Parse()

	if *rosterPath == "" {
		log.Fatal("enrichcompany: --roster is required")
	}

	rows, err := readRoster(*rosterPath)
	if err != nil {
		log.Fatalf("enrichcompany: %v", err)
	}
	if *limit > 0 && len(rows) > *limit {
		rows = rows[:*limit]
	}

	deps, c, err := pipeline.Bootstrap(*envPath, *yamlPath, *hjsonPath, *cachePath)
	if err != nil {
		log.Fatalf("enrichcompany: bootstrap: %v", err)
	}
	if c != nil {
		defer c.Close()
	}

	fmt.Printf("enrichcompany: %d companies, execute=%v\n", len(rows), *execute)
	if !*execute {
		for _, r := range rows {
			fmt.Printf("  [dry-run] would enrich %s (%s)\n", r.Name, r.Ticker)
		}
		return
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("enrichcompany: create out dir: %v", err)
	}

	counters := stats.NewCounters()
	err = stats.RunWorkers(context.Background(), rows, deps.WorkerCount(*workers), func(ctx context.Context, r companyRow) error {
		counters.Incr("processed", 1)
		result, err := pipeline.EnrichCompany(ctx, deps, r.CIK, r.Ticker)
		if err != nil {
			counters.Incr("failed", 1)
			log.Printf("enrichcompany: cik %s: %v", r.CIK, err)
			return nil
		}

		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result for %s: %w", r.CIK, err)
		}
		path := fmt.Sprintf("%s/%s.json", *outDir, r.CIK)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write result for %s: %w", r.CIK, err)
		}
		counters.Incr("enriched", 1)
		fmt.Printf("  %s (%s): sic=%s naics=%s sector=%s industry=%s sources=%v\n", r.Name, r.Ticker, result.SIC, result.NAICS, result.Sector, result.Industry, result.Sources)
		return nil
	})
	if err != nil {
		log.Fatalf("enrichcompany: %v", err)
	}

	snap := counters.Snapshot()
	fmt.Printf("enrichcompany: done. processed=%d enriched=%d failed=%d\n", snap["processed"], snap["enriched"], snap["failed"])
}

func readRoster(path string) ([]companyRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", path, err)
	}

	rows := make([]companyRow, 0, len(records))
	for _, rec := range records {
		if len(rec) < 3 {
			continue
		}
		rows = append(rows, companyRow{CIK: rec[0], Ticker: rec[1], Name: rec[2]})
	}
	return rows, nil
}
