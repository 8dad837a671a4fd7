package extract

import (
	"encoding/xml"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"edgarkg/pkg/domain"
)

// reEntityWebSite matches the dei:EntityWebSite iXBRL tag name in any of
// its attribute-encoded forms (name=, id=, data-ixbrl=, class=).
var reEntityWebSite = regexp.MustCompile(`(?i)EntityWebSite`)

// reDomainInText captures multi-label domain-looking substrings in plain
// text, the same shape as website_extraction.py's DOMAIN_RE.
var reDomainInText = regexp.MustCompile(`(?i)\b((?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,63})\b`)

var reXMLNSDecl = regexp.MustCompile(`\sxmlns:[a-zA-Z0-9_-]+="([^"]+)"`)

// ExtractWebsite runs the website-discovery cascade over doc, in
// priority order: the SEC-mandated dei:EntityWebSite iXBRL element,
// then an XML companyWebsite tag (for .xml exhibit documents), then a
// scored heuristic over namespace declarations and visible text.
// Ported from website_extraction.py's extract_website_from_cover_page.
func ExtractWebsite(doc *Document, isXML bool) (string, bool) {
	if !isXML {
		if d, ok := extractFromIXBRLElement(doc.Tree()); ok {
			return d, true
		}
	} else {
		if d, ok := extractFromXMLCompanyWebsite(doc.Raw); ok {
			return d, true
		}
	}
	return chooseBestWebsiteDomain(doc.Raw, doc.Tree())
}

// extractFromIXBRLElement looks for EntityWebSite in name/id/data-ixbrl/
// class attributes, matching website_extraction.py's BeautifulSoup
// fallback path (the ixbrlparse-library fast path has no Go equivalent
// in the pack, so this is the sole implementation here).
func extractFromIXBRLElement(tree *goquery.Document) (string, bool) {
	attrs := []string{"name", "id", "data-ixbrl", "class"}
	found := ""
	tree.Find("*").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		for _, attr := range attrs {
			if val, ok := sel.Attr(attr); ok && reEntityWebSite.MatchString(val) {
				text := strings.TrimSpace(sel.Text())
				if text == "" {
					continue
				}
				if norm, ok := domain.Normalize(text); ok {
					found = norm
					return false
				}
			}
		}
		return true
	})
	return found, found != ""
}

type xmlNode struct {
	XMLName  xml.Name
	Content  string    `xml:",chardata"`
	Children []xmlNode `xml:",any"`
}

// extractFromXMLCompanyWebsite walks an XML document's element tree
// looking for a companyWebsite/website tag, using encoding/xml's
// built-in entity handling (no external entity resolution, unlike a
// bare libxml2 binding) as the Go equivalent of the original's
// defusedxml XXE-safe parse.
func extractFromXMLCompanyWebsite(content string) (string, bool) {
	var root xmlNode
	if err := xml.Unmarshal([]byte(content), &root); err != nil {
		return "", false
	}
	var found string
	var walk func(n xmlNode)
	walk = func(n xmlNode) {
		if found != "" {
			return
		}
		local := strings.ToLower(n.XMLName.Local)
		if strings.Contains(local, "companywebsite") || strings.Contains(local, "website") {
			text := strings.TrimSpace(n.Content)
			if text != "" {
				if norm, ok := domain.Normalize(text); ok {
					found = norm
					return
				}
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return found, found != ""
}

// extractDomainsFromNamespaces scans the first 20KB of raw HTML for
// xmlns:* declarations, a cheap high-signal source of a filer's own
// domain (many iXBRL filings declare an extension namespace under
// their own root domain).
func extractDomainsFromNamespaces(raw string) []string {
	head := raw
	if len(head) > 20000 {
		head = head[:20000]
	}
	var out []string
	seen := make(map[string]bool)
	for _, m := range reXMLNSDecl.FindAllStringSubmatch(head, -1) {
		host := m[1]
		if idx := strings.Index(host, "://"); idx >= 0 {
			host = host[idx+3:]
		}
		if idx := strings.IndexAny(host, "/"); idx >= 0 {
			host = host[:idx]
		}
		if norm, ok := domain.Normalize(host); ok && !seen[norm] {
			out = append(out, norm)
			seen[norm] = true
		}
	}
	return out
}

// extractDomainsFromVisibleText scans up to maxChars of tree's text for
// domain-shaped substrings, validating each as a real root domain.
func extractDomainsFromVisibleText(tree *goquery.Document, maxChars int) []string {
	text := tree.Find("body").Text()
	if text == "" {
		text = tree.Text()
	}
	if len(text) > maxChars {
		text = text[:maxChars]
	}
	var out []string
	seen := make(map[string]bool)
	for _, m := range reDomainInText.FindAllStringSubmatch(text, -1) {
		if norm, ok := domain.Normalize(m[1]); ok && !seen[norm] {
			out = append(out, norm)
			seen[norm] = true
		}
	}
	return out
}

var keywordProximity = []string{"internet address", "our website", "website", "web site"}

// chooseBestWebsiteDomain scores namespace and visible-text candidates
// by keyword proximity and TLD, matching website_extraction.py's
// choose_best_website_domain.
func chooseBestWebsiteDomain(raw string, tree *goquery.Document) (string, bool) {
	candidates := dedupeStrings(append(extractDomainsFromNamespaces(raw), extractDomainsFromVisibleText(tree, 200000)...))
	if len(candidates) == 0 {
		return "", false
	}

	text := strings.ToLower(tree.Find("body").Text())
	if text == "" {
		text = strings.ToLower(tree.Text())
	}

	score := func(d string) int {
		s := strings.Count(text, d)
		idx := strings.Index(text, d)
		if idx >= 0 {
			start := idx - 80
			if start < 0 {
				start = 0
			}
			end := idx + len(d) + 80
			if end > len(text) {
				end = len(text)
			}
			window := text[start:end]
			for _, kw := range keywordProximity {
				if strings.Contains(window, kw) {
					s += 10
					break
				}
			}
		}
		if strings.HasSuffix(d, ".com") {
			s += 2
		}
		return s
	}

	best, bestScore := "", -1
	for _, c := range candidates {
		if sc := score(c); sc > bestScore {
			best, bestScore = c, sc
		}
	}
	if bestScore <= 0 {
		return "", false
	}
	return best, true
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			out = append(out, s)
			seen[s] = true
		}
	}
	return out
}
