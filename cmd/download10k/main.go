// Command download10k runs the filing acquisition stage (spec §4.5):
// for every CIK in the roster file, pre-check availability, download
// with commercial-then-SEC-origin failover, select the best 10-K
// archive, and extract its main document.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"edgarkg/pkg/pipeline"
	"edgarkg/pkg/stats"
)

func main() {
	execute := flag.Bool("execute", false, "perform downloads (default is a dry run listing planned work)")
	cikFile := flag.String("ciks", "", "path to a file of CIKs, one per line")
	limit := flag.Int("limit", 0, "process at most N CIKs (0 = no limit)")
	workers := flag.Int("workers", 0, "worker pool size (0 = config default)")
	filingDateStart := flag.String("filing-date-start", "2015-01-01", "earliest filing date to consider (YYYY-MM-DD)")
	filingDateEnd := flag.String("filing-date-end", time.Now().UTC().Format("2006-01-02"), "latest filing date to consider (YYYY-MM-DD)")
	force := flag.Bool("force", false, "bypass the negative-result cache and redownload")
	noPreCheck := flag.Bool("no-pre-check", false, "skip the cached pre-check entirely")
	portfoliosDir := flag.String("portfolios-dir", "data/portfolios", "directory to store downloaded archives")
	filingsDir := flag.String("filings-dir", "data/filings", "directory to store extracted filing HTML")
	envPath := flag.String("env", ".env", "path to .env secrets file")
	yamlPath := flag.String("config", "config.yaml", "path to config.yaml tuning file")
	hjsonPath := flag.String("override", "config.hjson", "path to config.hjson local override")
	cachePath := flag.String("cache", "data/cache.db", "path to the SQLite artifact cache")
	flag.Parse()

	if *cikFile == "" {
		log.Fatal("download10k: --ciks is required")
	}

	start, err := time.Parse("2006-01-02", *filingDateStart)
	if err != nil {
		log.Fatalf("download10k: invalid --filing-date-start: %v", err)
	}
	end, err := time.Parse("2006-01-02", *filingDateEnd)
	if err != nil {
		log.Fatalf("download10k: invalid --filing-date-end: %v", err)
	}

	ciks, err := readLines(*cikFile)
	if err != nil {
		log.Fatalf("download10k: %v", err)
	}
	if *limit > 0 && len(ciks) > *limit {
		ciks = ciks[:*limit]
	}

	deps, c, err := pipeline.Bootstrap(*envPath, *yamlPath, *hjsonPath, *cachePath)
	if err != nil {
		log.Fatalf("download10k: bootstrap: %v", err)
	}
	if c != nil {
		defer c.Close()
	}

	fmt.Printf("download10k: %d CIKs, execute=%v, range=[%s, %s]\n", len(ciks), *execute, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if !*execute {
		for _, cik := range ciks {
			fmt.Printf("  [dry-run] would acquire 10-K for CIK %s\n", cik)
		}
		return
	}

	counters := stats.NewCounters()
	opts := pipeline.DownloadOptions{
		FilingDateStart: start,
		FilingDateEnd:   end,
		Force:           *force,
		NoPreCheck:      *noPreCheck,
		PortfoliosDir:   *portfoliosDir,
		FilingsDir:      *filingsDir,
	}

	err = stats.RunWorkers(context.Background(), ciks, deps.WorkerCount(*workers), func(ctx context.Context, cik string) error {
		res, err := pipeline.DownloadTenK(ctx, deps, cik, opts)
		counters.Incr("processed", 1)
		if err != nil {
			counters.Incr("failed", 1)
			log.Printf("download10k: cik %s: %v", cik, err)
			return nil // one CIK's failure shouldn't abort the whole batch
		}
		counters.Incr("succeeded", 1)
		fmt.Printf("  %s -> %s (filed %s, via %s)\n", cik, res.ExtractedPath, res.FilingDate.Format("2006-01-02"), res.Provider)
		return nil
	})
	if err != nil {
		log.Fatalf("download10k: %v", err)
	}

	snap := counters.Snapshot()
	fmt.Printf("download10k: done. processed=%d succeeded=%d failed=%d\n", snap["processed"], snap["succeeded"], snap["failed"])
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}
