package graph

import (
	"testing"

	"edgarkg/pkg/model"
)

func TestValidateRelType(t *testing.T) {
	cases := []struct {
		in   model.RelationshipType
		want bool
	}{
		{model.RelHasDomain, true},
		{model.RelSimDesc, true},
		{"lowercase", false},
		{"HAS-DASH", false},
		{"1LEADINGDIGIT", false},
		{"", false},
	}
	for _, c := range cases {
		err := ValidateRelType(c.in)
		if (err == nil) != c.want {
			t.Errorf("ValidateRelType(%q) err=%v, want ok=%v", c.in, err, c.want)
		}
	}
}

func TestValidateLabel(t *testing.T) {
	for _, label := range []string{"Domain", "Company", "Chunk", "Document", "Technology"} {
		if err := ValidateLabel(label); err != nil {
			t.Errorf("ValidateLabel(%q) = %v, want nil", label, err)
		}
	}
	for _, label := range []string{"Person", "company", "Company; DROP", ""} {
		if err := ValidateLabel(label); err == nil {
			t.Errorf("ValidateLabel(%q) = nil, want error", label)
		}
	}
}

func TestValidateProperty(t *testing.T) {
	for _, ok := range []string{"cik", "final_domain", "_private", "a1"} {
		if err := ValidateProperty(ok); err != nil {
			t.Errorf("ValidateProperty(%q) = %v, want nil", ok, err)
		}
	}
	for _, bad := range []string{"1cik", "final-domain", "cik}) DETACH DELETE", ""} {
		if err := ValidateProperty(bad); err == nil {
			t.Errorf("ValidateProperty(%q) = nil, want error", bad)
		}
	}
}

func TestCleanProperties(t *testing.T) {
	in := map[string]any{
		"keep_string": "value",
		"keep_zero":   0,
		"keep_false":  false,
		"drop_empty":  "",
		"drop_nil":    nil,
	}
	out := CleanProperties(in)

	if _, ok := out["drop_empty"]; ok {
		t.Error("expected empty string property to be dropped")
	}
	if _, ok := out["drop_nil"]; ok {
		t.Error("expected nil property to be dropped")
	}
	for _, k := range []string{"keep_string", "keep_zero", "keep_false"} {
		if _, ok := out[k]; !ok {
			t.Errorf("expected %q to survive cleaning", k)
		}
	}
}

func TestCompanyProperties_OmitsEmptyEmbedding(t *testing.T) {
	props := CompanyProperties(model.Company{CIK: "0000320193", Ticker: "AAPL"})
	if _, ok := props["embedding"]; ok {
		t.Error("expected no embedding key when DescriptionEmbedding is empty")
	}
	if props["cik"] != "0000320193" {
		t.Errorf("cik = %v, want 0000320193", props["cik"])
	}
}

func TestChunkProperties_MetadataDoesNotOverrideCoreFields(t *testing.T) {
	c := model.Chunk{
		ChunkID:    "doc_chunk_0",
		DocID:      "doc",
		Text:       "hello",
		ChunkIndex: 0,
		Metadata:   map[string]any{"chunk_id": "attacker-controlled", "section": "risk_factors"},
	}
	props := ChunkProperties(c)
	if props["chunk_id"] != "doc_chunk_0" {
		t.Errorf("chunk_id = %v, want doc_chunk_0 (metadata must not override reserved keys)", props["chunk_id"])
	}
	if props["section"] != "risk_factors" {
		t.Errorf("section = %v, want risk_factors", props["section"])
	}
}
