package filing

import (
	"testing"
	"time"
)

func TestPadCIK(t *testing.T) {
	if got := padCIK("320193"); got != "0000320193" {
		t.Errorf("padCIK = %q, want 0000320193", got)
	}
	if got := padCIK("0000320193"); got != "0000320193" {
		t.Errorf("padCIK = %q, want 0000320193", got)
	}
}

func sampleCompanyInfo() *CompanyInfo {
	return &CompanyInfo{
		CIK:  "0000320193",
		Name: "Apple Inc.",
		Filings: FilingsBlock{
			Recent: RecentFilings{
				AccessionNumber: []string{"0000320193-24-000123", "0000320193-23-000106", "0000320193-24-000050"},
				FilingDate:      []string{"2024-11-01", "2023-11-03", "2024-02-01"},
				ReportDate:      []string{"2024-09-28", "2023-09-30", "2023-12-30"},
				Form:            []string{"10-K", "10-K", "10-Q"},
				PrimaryDocument: []string{"aapl-20240928.htm", "aapl-20230930.htm", "aapl-20231230.htm"},
				Size:            []int{100, 90, 50},
			},
		},
	}
}

func TestGetFilingsFiltersByForm(t *testing.T) {
	c := &Client{}
	filings := c.GetFilings(sampleCompanyInfo(), []string{"10-K"}, time.Time{}, time.Time{}, 0)
	if len(filings) != 2 {
		t.Fatalf("len(filings) = %d, want 2", len(filings))
	}
	for _, f := range filings {
		if f.FormType != "10-K" {
			t.Errorf("unexpected form type %q leaked through filter", f.FormType)
		}
	}
}

func TestGetFilingsSortedNewestFirst(t *testing.T) {
	c := &Client{}
	filings := c.GetFilings(sampleCompanyInfo(), []string{"10-K"}, time.Time{}, time.Time{}, 0)
	if !filings[0].FilingDate.After(filings[1].FilingDate) {
		t.Errorf("expected filings sorted newest-first, got %v then %v", filings[0].FilingDate, filings[1].FilingDate)
	}
}

func TestGetFilingsDateRange(t *testing.T) {
	c := &Client{}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	filings := c.GetFilings(sampleCompanyInfo(), nil, start, time.Time{}, 0)
	for _, f := range filings {
		if f.FilingDate.Before(start) {
			t.Errorf("filing dated %v leaked through start=%v filter", f.FilingDate, start)
		}
	}
	if len(filings) != 2 { // the 2024-11-01 10-K and the 2024-02-01 10-Q
		t.Errorf("len(filings) = %d, want 2", len(filings))
	}
}

func TestGetFilingsLimit(t *testing.T) {
	c := &Client{}
	filings := c.GetFilings(sampleCompanyInfo(), nil, time.Time{}, time.Time{}, 1)
	if len(filings) != 1 {
		t.Fatalf("len(filings) = %d, want 1", len(filings))
	}
}

func TestGetFilingsURLConstruction(t *testing.T) {
	c := &Client{}
	filings := c.GetFilings(sampleCompanyInfo(), []string{"10-K"}, time.Time{}, time.Time{}, 1)
	want := "https://www.sec.gov/Archives/edgar/data/0000320193/000032019324000123/aapl-20240928.htm"
	if filings[0].URL != want {
		t.Errorf("URL = %q, want %q", filings[0].URL, want)
	}
}
