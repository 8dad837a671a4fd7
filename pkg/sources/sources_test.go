package sources

import "testing"

func TestPadCIK(t *testing.T) {
	cases := map[string]string{
		"320193":     "0000320193",
		"0000320193": "0000320193",
		"CIK320193":  "0000320193",
		"  789019 ":  "0000789019",
	}
	for in, want := range cases {
		if got := PadCIK(in); got != want {
			t.Errorf("PadCIK(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCleanDescription(t *testing.T) {
	in := "  Apple Inc.\ndesigns,\tmanufactures   and markets\nsmartphones.  "
	want := "Apple Inc. designs, manufactures and markets smartphones."
	if got := cleanDescription(in); got != want {
		t.Errorf("cleanDescription = %q, want %q", got, want)
	}
}

func TestNormalizeOrEmpty(t *testing.T) {
	if got, ok := normalizeOrEmpty(""); ok || got != "" {
		t.Errorf("normalizeOrEmpty(\"\") = (%q, %v), want (\"\", false)", got, ok)
	}
	if got, ok := normalizeOrEmpty("https://www.apple.com"); !ok || got != "apple.com" {
		t.Errorf("normalizeOrEmpty(apple url) = (%q, %v), want (apple.com, true)", got, ok)
	}
	if _, ok := normalizeOrEmpty("https://www.sec.gov"); ok {
		t.Error("normalizeOrEmpty should reject infrastructure domains")
	}
}

func TestWeightsOrdering(t *testing.T) {
	// The consensus algorithm relies on Yahoo having the strongest weight,
	// SEC EDGAR second, Finviz third, Finnhub last (domain_consensus.py).
	if !(WeightYahoo > WeightSECEdgar && WeightSECEdgar > WeightFinviz && WeightFinviz > WeightFinnhub) {
		t.Error("source weight ordering regressed from spec §4.1")
	}
}
