package graph

import "edgarkg/pkg/model"

// CompanyProperties converts c into an UpsertNodes-ready row keyed by cik.
// Embeddings are included as a flat []float32 — Neo4j's vector index reads
// the property directly, matching create.py's update pattern of writing
// the embedding back onto the same node it was read from.
func CompanyProperties(c model.Company) map[string]any {
	props := map[string]any{
		"cik":                  c.CIK,
		"ticker":               c.Ticker,
		"legal_name":           c.LegalName,
		"sic_code":             c.SIC,
		"naics_code":           c.NAICS,
		"sector":               c.Sector,
		"industry":             c.Industry,
		"market_cap":           c.MarketCap,
		"revenue":              c.Revenue,
		"employees":            c.Employees,
		"hq_location":          c.HQLocation,
		"accession_number":     c.AccessionNumber,
		"filing_date":          c.FilingDate,
		"fiscal_year_end":      c.FiscalYearEnd,
		"business_description": c.BusinessDescription,
		"risk_factors":         c.RiskFactors,
	}
	if len(c.DescriptionEmbedding) > 0 {
		props["embedding"] = c.DescriptionEmbedding
	}
	return CleanProperties(props)
}

// DomainProperties converts d into an UpsertNodes-ready row keyed by
// final_domain.
func DomainProperties(d model.Domain) map[string]any {
	props := map[string]any{
		"final_domain": d.FinalDomain,
		"title":        d.Title,
		"keywords":     d.Keywords,
		"description":  d.Description,
	}
	if len(d.DescriptionEmbedding) > 0 {
		props["embedding"] = d.DescriptionEmbedding
	}
	return CleanProperties(props)
}

// TechnologyProperties converts t into an UpsertNodes-ready row keyed by
// name.
func TechnologyProperties(t model.Technology) map[string]any {
	return CleanProperties(map[string]any{
		"name":     t.Name,
		"category": t.Category,
	})
}

// DocumentProperties converts d into an UpsertNodes-ready row keyed by
// doc_id.
func DocumentProperties(d model.Document) map[string]any {
	return CleanProperties(map[string]any{
		"doc_id":       d.DocID,
		"cik":          d.CIK,
		"section_type": d.SectionType,
		"year":         d.Year,
		"chunk_count":  d.ChunkCount,
		"provenance":   d.Provenance,
	})
}

// ChunkProperties converts c into an UpsertNodes-ready row keyed by
// chunk_id. metadata is flattened onto the node directly (Neo4j has no
// nested-map property type), matching chunking.py's flat chunk records.
func ChunkProperties(c model.Chunk) map[string]any {
	props := map[string]any{
		"chunk_id":    c.ChunkID,
		"doc_id":      c.DocID,
		"text":        c.Text,
		"chunk_index": c.ChunkIndex,
	}
	for k, v := range c.Metadata {
		if _, reserved := props[k]; reserved {
			continue
		}
		props[k] = v
	}
	if len(c.Embedding) > 0 {
		props["embedding"] = c.Embedding
	}
	return CleanProperties(props)
}
