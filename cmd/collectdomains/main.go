// Command collectdomains runs the domain consensus stage (spec §4.4):
// for each company, fan a lookup out to every configured domain source
// and persist the weighted-vote winner.
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
	execute := flag.Bool("execute", false, "perform lookups (default is a dry run)")
	rosterPath := flag.String("roster", "", "CSV of cik,ticker,name")
	outDir := flag.String("out-dir", "data/domains", "directory to write one JSON result per CIK")
	limit := flag.Int("limit", 0, "process at most N companies (0 = no limit)")
	workers := flag.Int("workers", 0, "worker pool size (0 = config default)")
	envPath := flag.String("env", ".env", "path to .env secrets file")
	yamlPath := flag.String("config", "config.yaml", "path to config.yaml tuning file")
	hjsonPath := flag.String("override", "config.hjson", "path to config.hjson local override")
	cachePath := flag.String("cache", "data/cache.db", "path to the SQLite artifact cache")
	flag.Parse()

	if *rosterPath == "" {
		log.Fatal("collectdomains: --roster is required")
	}

	rows, err := readRoster(*rosterPath)
	if err != nil {
		log.Fatalf("collectdomains: %v", err)
	}
	if *limit > 0 && len(rows) > *limit {
		rows = rows[:*limit]
	}

	deps, c, err := pipeline.Bootstrap(*envPath, *yamlPath, *hjsonPath, *cachePath)
	if err != nil {
		log.Fatalf("collectdomains: bootstrap: %v", err)
	}
	if c != nil {
		defer c.Close()
	}

	fmt.Printf("collectdomains: %d companies, execute=%v\n", len(rows), *execute)
	if !*execute {
		for _, r := range rows {
			fmt.Printf("  [dry-run] would collect domain votes for %s (%s)\n", r.Name, r.Ticker)
		}
		return
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("collectdomains: create out dir: %v", err)
	}

	counters := stats.NewCounters()
	err = stats.RunWorkers(context.Background(), rows, deps.WorkerCount(*workers), func(ctx context.Context, r companyRow) error {
		counters.Incr("processed", 1)
		result := pipeline.CollectDomains(ctx, deps, r.CIK, r.Ticker, r.Name)
		if result.NoDomain {
			counters.Incr("no_domain", 1)
		} else {
			counters.Incr("resolved", 1)
		}

		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result for %s: %w", r.CIK, err)
		}
		path := fmt.Sprintf("%s/%s.json", *outDir, r.CIK)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write result for %s: %w", r.CIK, err)
		}
		fmt.Printf("  %s (%s): domain=%q confidence=%.2f votes=%d\n", r.Name, r.Ticker, result.Domain, result.Confidence, result.Votes)
		return nil
	})
	if err != nil {
		log.Fatalf("collectdomains: %v", err)
	}

	snap := counters.Snapshot()
	fmt.Printf("collectdomains: done. processed=%d resolved=%d no_domain=%d\n", snap["processed"], snap["resolved"], snap["no_domain"])
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
