// Command graphload runs the graph loading stage (spec §4.7): merges the
// roster, extraction, and domain-consensus outputs of earlier stages into
// model.Company/model.Domain rows and upserts them (plus resolved
// relationship edges) onto the Neo4j graph.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"edgarkg/pkg/domain"
	"edgarkg/pkg/enrich"
	"edgarkg/pkg/extract"
	"edgarkg/pkg/model"
	"edgarkg/pkg/pipeline"
)

type extractedRecord struct {
	CIK                 string            `json:"cik"`
	Website             string            `json:"website,omitempty"`
	BusinessDescription string            `json:"business_description,omitempty"`
	RiskFactors         string            `json:"risk_factors,omitempty"`
	Metadata            extract.Metadata  `json:"metadata"`
	Mentions            []extract.Mention `json:"mentions,omitempty"`
}

func main() {
	execute := flag.Bool("execute", false, "perform the graph load (default is a dry run)")
	rosterPath := flag.String("roster", "", "CSV of cik,ticker,name[,sic,naics,sector,industry] (fallback values, overridden by --enriched-dir when present)")
	extractedDir := flag.String("extracted-dir", "data/extracted", "directory of extract10k JSON records")
	domainsDir := flag.String("domains-dir", "data/domains", "directory of collectdomains JSON results")
	enrichedDir := flag.String("enriched-dir", "data/enriched", "directory of enrichcompany JSON results (optional)")
	batchSize := flag.Int("batch-size", 0, "node/edge batch size (0 = config default)")
	envPath := flag.String("env", ".env", "path to .env secrets file")
	yamlPath := flag.String("config", "config.yaml", "path to config.yaml tuning file")
	hjsonPath := flag.String("override", "config.hjson", "path to config.hjson local override")
	cachePath := flag.String("cache", "data/cache.db", "path to the SQLite artifact cache")
	flag.Parse()

	if *rosterPath == "" {
		log.Fatal("graphload: --roster is required")
	}

	companies, err := readRoster(*rosterPath)
	if err != nil {
		log.Fatalf("graphload: %v", err)
	}

	mentionsByCIK := make(map[string][]extract.Mention)
	domains := make(map[string]model.Domain)
	for i := range companies {
		cik := companies[i].CIK
		if rec, ok := readExtracted(*extractedDir, cik); ok {
			result := extract.Result{
				BusinessDescription: rec.BusinessDescription,
				RiskFactors:         rec.RiskFactors,
				Metadata:            rec.Metadata,
			}
			result.ApplyTo(&companies[i])
			if len(rec.Mentions) > 0 {
				mentionsByCIK[cik] = rec.Mentions
			}
			if rec.Website != "" {
				if normalized, ok := domain.Normalize(rec.Website); ok {
					domains[cik] = model.Domain{FinalDomain: normalized}
				}
			}
		}
		if er, ok := readEnrichResult(*enrichedDir, cik); ok {
			er.ApplyTo(&companies[i])
		}
		if cr, ok := readDomainResult(*domainsDir, cik); ok && !cr.NoDomain {
			d := domains[cik]
			if d.FinalDomain == "" {
				d.FinalDomain = cr.Domain
			}
			d.Description = cr.Description
			domains[cik] = d
		}
	}

	edges := pipeline.ResolveRelationships(companies, mentionsByCIK)

	fmt.Printf("graphload: %d companies, %d domains, %d relationship edges, execute=%v\n", len(companies), len(domains), len(edges), *execute)
	if !*execute {
		return
	}

	deps, c, err := pipeline.Bootstrap(*envPath, *yamlPath, *hjsonPath, *cachePath)
	if err != nil {
		log.Fatalf("graphload: bootstrap: %v", err)
	}
	if c != nil {
		defer c.Close()
	}
	if *batchSize > 0 {
		deps.Tuning.Graph.BatchSize = *batchSize
	}

	ctx := context.Background()
	if err := deps.OpenGraph(ctx); err != nil {
		log.Fatalf("graphload: connect to neo4j: %v", err)
	}
	defer deps.Graph.Close(ctx)

	if err := pipeline.LoadCompanies(ctx, deps, companies); err != nil {
		log.Fatalf("graphload: load companies: %v", err)
	}
	fmt.Printf("graphload: loaded %d companies\n", len(companies))

	if len(domains) > 0 {
		if err := pipeline.LoadDomains(ctx, deps, domains); err != nil {
			log.Fatalf("graphload: load domains: %v", err)
		}
		fmt.Printf("graphload: loaded %d domains\n", len(domains))
	}

	if len(edges) > 0 {
		if err := pipeline.LoadRelationships(ctx, deps, edges); err != nil {
			log.Fatalf("graphload: load relationships: %v", err)
		}
		fmt.Printf("graphload: loaded %d relationship edges\n", len(edges))
	}

	fmt.Println("graphload: done.")
}

func readRoster(path string) ([]model.Company, error) {
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

	companies := make([]model.Company, 0, len(records))
	for _, rec := range records {
		if len(rec) < 3 {
			continue
		}
		c := model.Company{CIK: rec[0], Ticker: rec[1], LegalName: rec[2]}
		if len(rec) > 3 {
			c.SIC = rec[3]
		}
		if len(rec) > 4 {
			c.NAICS = rec[4]
		}
		if len(rec) > 5 {
			c.Sector = rec[5]
		}
		if len(rec) > 6 {
			c.Industry = rec[6]
		}
		companies = append(companies, c)
	}
	return companies, nil
}

func readExtracted(dir, cik string) (extractedRecord, bool) {
	data, err := os.ReadFile(filepath.Join(dir, cik+".json"))
	if err != nil {
		return extractedRecord{}, false
	}
	var rec extractedRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return extractedRecord{}, false
	}
	return rec, true
}

func readEnrichResult(dir, cik string) (enrich.Result, bool) {
	data, err := os.ReadFile(filepath.Join(dir, cik+".json"))
	if err != nil {
		return enrich.Result{}, false
	}
	var er enrich.Result
	if err := json.Unmarshal(data, &er); err != nil {
		return enrich.Result{}, false
	}
	return er, true
}

func readDomainResult(dir, cik string) (model.CompanyResult, bool) {
	data, err := os.ReadFile(filepath.Join(dir, cik+".json"))
	if err != nil {
		return model.CompanyResult{}, false
	}
	var cr model.CompanyResult
	if err := json.Unmarshal(data, &cr); err != nil {
		return model.CompanyResult{}, false
	}
	return cr, true
}
