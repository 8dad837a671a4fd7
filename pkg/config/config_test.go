package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultTuning(t *testing.T) {
	tuning := DefaultTuning()
	if tuning.RateLimits.SECEdgar != 10 {
		t.Errorf("RateLimits.SECEdgar = %v, want 10", tuning.RateLimits.SECEdgar)
	}
	if tuning.Chunking.TokensPerChunk != 7000 {
		t.Errorf("Chunking.TokensPerChunk = %v, want 7000", tuning.Chunking.TokensPerChunk)
	}
}

func TestLoadYAMLOverride(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(yamlPath, []byte("similarity:\n  top_k: 25\n  min_score: 0.9\n"), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	tuning, _, err := Load("", yamlPath, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tuning.Similarity.TopK != 25 {
		t.Errorf("Similarity.TopK = %d, want 25", tuning.Similarity.TopK)
	}
	if tuning.Similarity.MinScore != 0.9 {
		t.Errorf("Similarity.MinScore = %v, want 0.9", tuning.Similarity.MinScore)
	}
	// Untouched sections keep their defaults.
	if tuning.Chunking.TokensPerChunk != 7000 {
		t.Errorf("Chunking.TokensPerChunk = %d, want default 7000", tuning.Chunking.TokensPerChunk)
	}
}

func TestLoadHJSONOverrideWinsOverYAML(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "config.yaml")
	hjsonPath := filepath.Join(dir, "config.hjson")

	if err := os.WriteFile(yamlPath, []byte("workers:\n  default: 4\n"), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	if err := os.WriteFile(hjsonPath, []byte("{\n  # hand-edited for this run\n  workers: {\n    default: 8\n  }\n}\n"), 0o644); err != nil {
		t.Fatalf("write hjson: %v", err)
	}

	tuning, _, err := Load("", yamlPath, hjsonPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tuning.Workers.Default != 8 {
		t.Errorf("Workers.Default = %d, want 8 (hjson override)", tuning.Workers.Default)
	}
}

func TestLoadMissingFilesNotError(t *testing.T) {
	dir := t.TempDir()
	_, secrets, err := Load(
		filepath.Join(dir, "missing.env"),
		filepath.Join(dir, "missing.yaml"),
		filepath.Join(dir, "missing.hjson"),
	)
	if err != nil {
		t.Fatalf("Load with missing optional files should not error: %v", err)
	}
	if secrets.GeminiAPIKey != os.Getenv("GEMINI_API_KEY") {
		t.Error("secrets should fall back to process environment")
	}
}

func TestLoadSecretsFromEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("DEEPSEEK_API_KEY=test-key-123\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}

	_, secrets, err := Load(envPath, "", "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if secrets.DeepseekAPIKey != "test-key-123" {
		t.Errorf("DeepseekAPIKey = %q, want test-key-123", secrets.DeepseekAPIKey)
	}
}
