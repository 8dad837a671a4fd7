package domain

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantOK  bool
	}{
		{"http://www.apple.com", "apple.com", true},
		{"https://www.microsoft.com/", "microsoft.com", true},
		{"www.google.com", "", false}, // infrastructure blacklist
		{"investor.apple.com", "apple.com", true},
		{"example.co.uk", "example.co.uk", true},
		{"sec.gov", "", false},
		{"xbrl.org", "", false},
		{"finviz.com", "", false},
		{"agency.gov", "", false},
		{"", "", false},
		{"...", "", false},
		{"a.com", "", false}, // single-char label rejected
	}

	for _, c := range cases {
		got, ok := Normalize(c.in)
		if ok != c.wantOK {
			t.Errorf("Normalize(%q) ok = %v, want %v", c.in, ok, c.wantOK)
			continue
		}
		if ok && got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"http://www.apple.com/ir", "investor.apple.com", "example.co.uk"}
	for _, in := range inputs {
		first, ok1 := Normalize(in)
		if !ok1 {
			continue
		}
		second, ok2 := Normalize(first)
		if !ok2 || second != first {
			t.Errorf("Normalize not idempotent for %q: first=%q second=%q ok2=%v", in, first, second, ok2)
		}
	}
}

func TestIsInfrastructure(t *testing.T) {
	if !IsInfrastructure("yahoo.com") {
		t.Error("yahoo.com should be infrastructure")
	}
	if IsInfrastructure("apple.com") {
		t.Error("apple.com should not be infrastructure")
	}
	if !IsInfrastructure("state.gov") {
		t.Error("*.gov should be infrastructure")
	}
}
