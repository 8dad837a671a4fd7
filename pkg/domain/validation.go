// Package domain implements the single canonical domain normalization and
// validation function every externally sourced domain must pass through
// before persistence (spec §4.2).
//
// Grounded in original_source/public_company_graph/domain/validation.go
// (Python, using tldextract over the Public Suffix List). The Go
// equivalent of tldextract's eTLD+1 extraction is
// golang.org/x/net/publicsuffix, already a transitive dependency of the
// teacher repo via golang.org/x/net.
package domain

import (
	"strings"

	"golang.org/x/net/publicsuffix"
)

// infrastructureBlacklist are hosts that are never a company's own domain:
// SEC/XBRL taxonomy infrastructure and the data-source domains themselves.
var infrastructureBlacklist = map[string]bool{
	"sec.gov":      true,
	"xbrl.org":     true,
	"fasb.org":     true,
	"w3.org":       true,
	"xbrl.us":      true,
	"finviz.com":   true,
	"yahoo.com":    true,
	"google.com":   true,
	"gaap.org":     true,
}

const maxSuffixLen = 15

// Normalize strips protocol/www/path, lowercases, extracts the eTLD+1 root
// domain via the Public Suffix List, and validates it. It returns ("",
// false) if the input does not normalize to a valid, non-infrastructure
// domain.
//
// Normalize is idempotent: Normalize(Normalize(x)) == Normalize(x) for any
// x, because a value that already round-tripped through publicsuffix
// extraction is already in canonical root-domain form.
func Normalize(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}

	cleaned := strings.ToLower(strings.TrimSpace(raw))
	cleaned = strings.TrimPrefix(cleaned, "https://")
	cleaned = strings.TrimPrefix(cleaned, "http://")
	cleaned = strings.TrimPrefix(cleaned, "www.")
	if idx := strings.IndexAny(cleaned, "/?#"); idx >= 0 {
		cleaned = cleaned[:idx]
	}
	cleaned = strings.TrimSuffix(cleaned, ".")
	if cleaned == "" {
		return "", false
	}

	return validate(cleaned)
}

func validate(host string) (string, bool) {
	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return "", false
	}

	suffix, icann := publicsuffix.PublicSuffix(host)
	_ = icann

	dot := strings.LastIndex(etld1, "."+suffix)
	if dot <= 0 {
		// Fallback split: everything before the suffix is the registrable label.
		dot = len(etld1) - len(suffix) - 1
	}
	label := etld1[:dot]
	if len(label) < 2 {
		return "", false
	}
	if len(suffix) > maxSuffixLen {
		return "", false
	}
	if strings.HasSuffix(etld1, ".gov") {
		return "", false
	}
	if infrastructureBlacklist[etld1] {
		return "", false
	}

	return etld1, true
}

// IsInfrastructure reports whether domain (already normalized) is one of
// the infrastructure/taxonomy hosts that must never be persisted as a
// company's domain, independent of the full Normalize validation.
func IsInfrastructure(normalized string) bool {
	if strings.HasSuffix(normalized, ".gov") {
		return true
	}
	return infrastructureBlacklist[normalized]
}
