package extract

import "testing"

func TestExtractWebsiteFromIXBRLElement(t *testing.T) {
	html := `<html><body><span name="dei:EntityWebSite">www.apple.com</span></body></html>`
	doc, err := NewDocument("0000320193", html)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	got, ok := ExtractWebsite(doc, false)
	if !ok || got != "apple.com" {
		t.Errorf("ExtractWebsite = (%q, %v), want (apple.com, true)", got, ok)
	}
}

func TestExtractWebsiteFromXMLCompanyWebsite(t *testing.T) {
	xml := `<filing><companyWebsite>https://www.example-corp.com</companyWebsite></filing>`
	doc, err := NewDocument("0000111111", xml)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	got, ok := ExtractWebsite(doc, true)
	if !ok || got != "example-corp.com" {
		t.Errorf("ExtractWebsite(xml) = (%q, %v), want (example-corp.com, true)", got, ok)
	}
}

func TestChooseBestWebsiteDomainKeywordProximity(t *testing.T) {
	html := `<html><body>` +
		`<p>We discuss spacer.noisemedia.invalid briefly.</p>` +
		`<p>Our website is widgetmakers.com where investors can find filings.</p>` +
		`</body></html>`
	doc, err := NewDocument("0000222222", html)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	got, ok := ExtractWebsite(doc, false)
	if !ok || got != "widgetmakers.com" {
		t.Errorf("ExtractWebsite = (%q, %v), want (widgetmakers.com, true)", got, ok)
	}
}

func TestExtractWebsiteNoCandidate(t *testing.T) {
	html := `<html><body><p>No domains mentioned anywhere in this filing text.</p></body></html>`
	doc, err := NewDocument("0000333333", html)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	if _, ok := ExtractWebsite(doc, false); ok {
		t.Error("expected no website found")
	}
}
