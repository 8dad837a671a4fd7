package enrich

import (
	"encoding/json"
	"testing"

	"edgarkg/pkg/model"
)

func TestNormalizeIndustryCode(t *testing.T) {
	cases := []struct {
		raw   string
		width int
		want  string
	}{
		{`"3571"`, 4, "3571"},
		{`["3571", "Electronic Computers"]`, 4, "3571"},
		{`"3571 - Electronic Computers"`, 4, "3571"},
		{`"71"`, 4, "0071"},
		{`""`, 4, ""},
		{`null`, 4, ""},
		{`"511210"`, 6, "511210"},
	}
	for _, c := range cases {
		got := normalizeIndustryCode(json.RawMessage(c.raw), c.width)
		if got != c.want {
			t.Errorf("normalizeIndustryCode(%s, %d) = %q, want %q", c.raw, c.width, got, c.want)
		}
	}
}

func TestMergeCompanyDataPriorityOrder(t *testing.T) {
	sec := secResult{SIC: "3571", NAICS: "511210", found: true}
	yahoo := yahooResult{
		Sector:     "Technology",
		Industry:   "Consumer Electronics",
		MarketCap:  3e12,
		Revenue:    4e11,
		Employees:  164000,
		HQLocation: "Cupertino, CA, United States",
		found:      true,
	}

	got := mergeCompanyData("0000320193", sec, yahoo)

	if got.SIC != "3571" || got.NAICS != "511210" {
		t.Errorf("SEC should supply SIC/NAICS: got sic=%q naics=%q", got.SIC, got.NAICS)
	}
	if got.Sector != "Technology" || got.Industry != "Consumer Electronics" {
		t.Errorf("Yahoo should supply sector/industry: got %+v", got)
	}
	if got.MarketCap != 3e12 || got.Revenue != 4e11 || got.Employees != 164000 {
		t.Errorf("Yahoo should supply financials: got %+v", got)
	}
	if len(got.Sources) != 2 {
		t.Errorf("expected both sources recorded, got %v", got.Sources)
	}
}

func TestMergeCompanyDataSECOnlyKeepsIndustryCodes(t *testing.T) {
	// Yahoo never supplies SIC/NAICS; confirm a SEC-only result still
	// populates them without a Yahoo fetch.
	sec := secResult{SIC: "7372", NAICS: "511210", found: true}
	got := mergeCompanyData("cik", sec, yahooResult{})
	if got.SIC != "7372" || got.NAICS != "511210" {
		t.Errorf("expected SEC-only sic/naics to survive merge, got %+v", got)
	}
	if len(got.Sources) != 1 || got.Sources[0] != "SEC_EDGAR" {
		t.Errorf("expected sources=[SEC_EDGAR], got %v", got.Sources)
	}
}

func TestJoinHQLocation(t *testing.T) {
	cases := []struct {
		city, state, country, want string
	}{
		{"Cupertino", "CA", "United States", "Cupertino, CA, United States"},
		{"", "", "", ""},
		{"London", "", "United Kingdom", "London, United Kingdom"},
	}
	for _, c := range cases {
		if got := joinHQLocation(c.city, c.state, c.country); got != c.want {
			t.Errorf("joinHQLocation(%q,%q,%q) = %q, want %q", c.city, c.state, c.country, got, c.want)
		}
	}
}

func TestResultApplyToOnlyOverwritesNonZeroFields(t *testing.T) {
	c := model.Company{CIK: "1", SIC: "keep", Sector: "keep"}
	r := Result{Industry: "Software", MarketCap: 100}
	r.ApplyTo(&c)

	if c.SIC != "keep" || c.Sector != "keep" {
		t.Errorf("ApplyTo should not clear fields it has no data for, got %+v", c)
	}
	if c.Industry != "Software" || c.MarketCap != 100 {
		t.Errorf("ApplyTo should set fields it has data for, got %+v", c)
	}
}
