// Package extract implements the filing-field extraction stage (spec
// §4.6): website discovery, business-description/risk-factors section
// extraction, filing metadata, and competitor/supplier/customer/partner
// relationship mining, all running against a single shared HTML parse
// per filing.
//
// Grounded in the teacher's pkg/core/edgar/html_sanitizer.go (goquery
// tree construction, noise removal) and parser.go (section-by-anchor/
// by-title extraction, TOC parsing), generalized away from that file's
// Item-8 financial-statement focus toward Item 1/1A text extraction.
// Website and relationship algorithms are ported from
// original_source/domain_status_graph/parsing/website_extraction.py and
// competitor_extraction.py.
package extract

import (
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// Document is a filing's HTML parsed once and shared across every
// extractor that needs it, mirroring html_sanitizer.go's Sanitize,
// which builds one goquery tree and runs every cleaning pass against it
// instead of reparsing per concern.
type Document struct {
	CIK     string
	Raw     string
	doc     *goquery.Document
	text    string
	textSet bool
}

// NewDocument parses raw HTML once for cik, removing script/style/noise
// elements up front so every downstream extractor sees the same cleaned
// tree.
func NewDocument(cik, rawHTML string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parse filing html for cik %s: %w", cik, err)
	}
	removeNoise(doc)
	return &Document{CIK: cik, Raw: rawHTML, doc: doc}, nil
}

// Tree returns the shared goquery document.
func (d *Document) Tree() *goquery.Document {
	return d.doc
}

// Text returns the document's visible text (script/style already
// stripped by removeNoise), computed once and cached.
func (d *Document) Text() string {
	if !d.textSet {
		d.text = d.doc.Find("body").Text()
		if d.text == "" {
			d.text = d.doc.Text()
		}
		d.textSet = true
	}
	return d.text
}

// removeNoise strips elements that carry no extraction signal: scripts,
// styles, and hidden/spacer content. Ported from html_sanitizer.go's
// RemoveNoise, trimmed to what filing-text extraction needs (the
// teacher's table/image-specific passes serve financial-statement
// rendering, which has no home here).
func removeNoise(doc *goquery.Document) {
	doc.Find("script, style, noscript").Remove()
	doc.Find(`[hidden], [style*='display:none'], [style*='display: none']`).Remove()
}

// DocumentCache shares one parsed Document per CIK across the extractors
// that run over it, with an exclusive lock per CIK so two callers
// extracting the same filing concurrently don't duplicate the parse
// (spec §5/§8: "per-CIK cached parsed document object").
type DocumentCache struct {
	mu      sync.Mutex
	entries map[string]*cikEntry
}

type cikEntry struct {
	mu  sync.Mutex
	doc *Document
}

// NewDocumentCache returns an empty cache.
func NewDocumentCache() *DocumentCache {
	return &DocumentCache{entries: make(map[string]*cikEntry)}
}

// GetOrParse returns the cached Document for cik, parsing rawHTML under
// cik's exclusive lock if this is the first request for it. Concurrent
// callers for different CIKs never block each other.
func (c *DocumentCache) GetOrParse(cik, rawHTML string) (*Document, error) {
	c.mu.Lock()
	entry, ok := c.entries[cik]
	if !ok {
		entry = &cikEntry{}
		c.entries[cik] = entry
	}
	c.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.doc == nil {
		doc, err := NewDocument(cik, rawHTML)
		if err != nil {
			return nil, err
		}
		entry.doc = doc
	}
	return entry.doc, nil
}

// Evict drops cik's cached document, freeing its parsed tree.
func (c *DocumentCache) Evict(cik string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, cik)
}
