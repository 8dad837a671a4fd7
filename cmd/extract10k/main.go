// Command extract10k runs the filing-text extraction stage (spec §4.6):
// parse each CIK's downloaded 10-K, pull website/business-description/
// risk-factors/metadata, and mine competitor/supplier/customer/partner
// mentions ready for later resolution against the full company roster.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"edgarkg/pkg/extract"
	"edgarkg/pkg/pipeline"
	"edgarkg/pkg/stats"
)

// extractedRecord is the on-disk JSON shape one CIK's extraction result
// is written as, consumed by graphload's relationship-resolution pass.
type extractedRecord struct {
	CIK                 string           `json:"cik"`
	Website             string           `json:"website,omitempty"`
	BusinessDescription string           `json:"business_description,omitempty"`
	RiskFactors         string           `json:"risk_factors,omitempty"`
	Metadata            extract.Metadata `json:"metadata"`
	Mentions            []extract.Mention `json:"mentions,omitempty"`
}

func main() {
	execute := flag.Bool("execute", false, "perform extraction (default is a dry run)")
	filingsDir := flag.String("filings-dir", "data/filings", "directory of downloaded filing HTML, one subdir per CIK")
	outDir := flag.String("out-dir", "data/extracted", "directory to write one JSON record per CIK")
	limit := flag.Int("limit", 0, "process at most N CIKs (0 = no limit)")
	workers := flag.Int("workers", 0, "worker pool size (0 = config default)")
	envPath := flag.String("env", ".env", "path to .env secrets file")
	yamlPath := flag.String("config", "config.yaml", "path to config.yaml tuning file")
	hjsonPath := flag.String("override", "config.hjson", "path to config.hjson local override")
	cachePath := flag.String("cache", "data/cache.db", "path to the SQLite artifact cache")
	flag.Parse()

	ciks, htmlPaths, err := discoverFilings(*filingsDir)
	if err != nil {
		log.Fatalf("extract10k: %v", err)
	}
	if *limit > 0 && len(ciks) > *limit {
		ciks = ciks[:*limit]
	}

	deps, c, err := pipeline.Bootstrap(*envPath, *yamlPath, *hjsonPath, *cachePath)
	if err != nil {
		log.Fatalf("extract10k: bootstrap: %v", err)
	}
	if c != nil {
		defer c.Close()
	}

	fmt.Printf("extract10k: %d CIKs, execute=%v\n", len(ciks), *execute)
	if !*execute {
		for _, cik := range ciks {
			fmt.Printf("  [dry-run] would extract %s\n", htmlPaths[cik])
		}
		return
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("extract10k: create out dir: %v", err)
	}

	counters := stats.NewCounters()
	err = stats.RunWorkers(context.Background(), ciks, deps.WorkerCount(*workers), func(ctx context.Context, cik string) error {
		counters.Incr("processed", 1)
		res, err := pipeline.ExtractTenK(deps, cik, htmlPaths[cik])
		if err != nil {
			counters.Incr("failed", 1)
			log.Printf("extract10k: cik %s: %v", cik, err)
			return nil
		}

		rec := extractedRecord{
			CIK:                 cik,
			Website:             res.Website,
			BusinessDescription: res.BusinessDescription,
			RiskFactors:         res.RiskFactors,
			Metadata:            res.Metadata,
			Mentions:            res.Mentions,
		}
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			counters.Incr("failed", 1)
			return fmt.Errorf("marshal record for cik %s: %w", cik, err)
		}
		if err := os.WriteFile(filepath.Join(*outDir, cik+".json"), data, 0o644); err != nil {
			counters.Incr("failed", 1)
			return fmt.Errorf("write record for cik %s: %w", cik, err)
		}
		counters.Incr("succeeded", 1)
		return nil
	})
	if err != nil {
		log.Fatalf("extract10k: %v", err)
	}

	snap := counters.Snapshot()
	fmt.Printf("extract10k: done. processed=%d succeeded=%d failed=%d\n", snap["processed"], snap["succeeded"], snap["failed"])
}

// discoverFilings walks filingsDir/{cik}/10k_*.html, picking the
// lexicographically last match per CIK (the filename year sorts
// naturally, so this is the most recent filing on disk).
func discoverFilings(filingsDir string) ([]string, map[string]string, error) {
	entries, err := os.ReadDir(filingsDir)
	if err != nil {
		return nil, nil, fmt.Errorf("read filings dir %s: %w", filingsDir, err)
	}

	var ciks []string
	htmlPaths := make(map[string]string)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		cik := e.Name()
		matches, err := filepath.Glob(filepath.Join(filingsDir, cik, "10k_*.html"))
		if err != nil || len(matches) == 0 {
			continue
		}
		sort.Strings(matches)
		ciks = append(ciks, cik)
		htmlPaths[cik] = matches[len(matches)-1]
	}
	sort.Strings(ciks)
	return ciks, htmlPaths, nil
}
