// Package config loads pipeline configuration from three layers, lowest
// precedence first: static tuning defaults (YAML), hand-edited overrides
// (HJSON, which tolerates comments and trailing commas), and secrets
// (.env). This mirrors the teacher's cmd/pipeline/main.go, which calls
// godotenv.Load for API keys; we generalize that single call into a
// layered loader so the rest of the pipeline's tunables (rate limits,
// batch sizes, similarity thresholds) aren't hardcoded the way they are
// in the teacher's main.go.
package config

import (
	"fmt"
	"os"

	hjson "github.com/hjson/hjson-go/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Tuning holds the static, rarely-changed knobs for each pipeline stage.
// Values here come from config.yaml and can be overridden per-deployment
// by config.hjson.
type Tuning struct {
	RateLimits struct {
		SECEdgar      float64 `yaml:"sec_edgar" json:"sec_edgar"`
		SECEdgarSlow  float64 `yaml:"sec_edgar_slow" json:"sec_edgar_slow"`
		Finviz        float64 `yaml:"finviz" json:"finviz"`
		Finnhub       float64 `yaml:"finnhub" json:"finnhub"`
		Yahoo         float64 `yaml:"yahoo" json:"yahoo"`
		EmbeddingProv float64 `yaml:"embedding_provider" json:"embedding_provider"`
	} `yaml:"rate_limits" json:"rate_limits"`

	Consensus struct {
		MinVotes       int     `yaml:"min_votes" json:"min_votes"`
		MinConfidence  float64 `yaml:"min_confidence" json:"min_confidence"`
		EarlyStopVotes int     `yaml:"early_stop_votes" json:"early_stop_votes"`
	} `yaml:"consensus" json:"consensus"`

	Chunking struct {
		TokensPerChunk int `yaml:"tokens_per_chunk" json:"tokens_per_chunk"`
		OverlapTokens  int `yaml:"overlap_tokens" json:"overlap_tokens"`
	} `yaml:"chunking" json:"chunking"`

	Similarity struct {
		TopK      int     `yaml:"top_k" json:"top_k"`
		MinScore  float64 `yaml:"min_score" json:"min_score"`
		BatchSize int     `yaml:"batch_size" json:"batch_size"`
	} `yaml:"similarity" json:"similarity"`

	Graph struct {
		BatchSize int `yaml:"batch_size" json:"batch_size"`
	} `yaml:"graph" json:"graph"`

	Workers struct {
		Default int `yaml:"default" json:"default"`
		Max     int `yaml:"max" json:"max"`
	} `yaml:"workers" json:"workers"`
}

// DefaultTuning returns the built-in defaults used when no config.yaml is
// present, matching the values named in spec §4.
func DefaultTuning() Tuning {
	var t Tuning
	t.RateLimits.SECEdgar = 10
	t.RateLimits.SECEdgarSlow = 5
	t.RateLimits.Finviz = 5
	t.RateLimits.Finnhub = 1
	t.RateLimits.Yahoo = 10
	t.RateLimits.EmbeddingProv = 100
	t.Consensus.MinVotes = 1
	t.Consensus.MinConfidence = 0.5
	t.Consensus.EarlyStopVotes = 3
	t.Chunking.TokensPerChunk = 7000
	t.Chunking.OverlapTokens = 200
	t.Similarity.TopK = 50
	t.Similarity.MinScore = 0.7
	t.Similarity.BatchSize = 1000
	t.Graph.BatchSize = 1000
	t.Workers.Default = 8
	t.Workers.Max = 16
	return t
}

// Secrets holds API keys loaded from .env, mirroring the teacher's
// godotenv.Load + os.Getenv("DEEPSEEK_API_KEY") pattern in cmd/pipeline/main.go.
type Secrets struct {
	GeminiAPIKey            string
	DeepseekAPIKey          string
	FinnhubAPIKey           string
	CommercialProviderAPIKey string
	Neo4jURI                string
	Neo4jUser               string
	Neo4jPassword           string
}

// HasCommercialProvider reports whether a paid filing-acquisition
// provider is configured, which per spec §6 raises the default worker
// pool size from 8 to 16.
func (s Secrets) HasCommercialProvider() bool {
	return s.CommercialProviderAPIKey != ""
}

// Load reads envPath (.env, optional — a missing file is not an error, as
// in the teacher's pattern), yamlPath (config.yaml, optional), and
// hjsonPath (config.hjson, optional, applied last so it wins) and returns
// the merged Tuning plus the process's Secrets.
func Load(envPath, yamlPath, hjsonPath string) (Tuning, Secrets, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
			return Tuning{}, Secrets{}, fmt.Errorf("load env file %s: %w", envPath, err)
		}
	}

	tuning := DefaultTuning()

	if yamlPath != "" {
		if data, err := os.ReadFile(yamlPath); err == nil {
			if err := yaml.Unmarshal(data, &tuning); err != nil {
				return Tuning{}, Secrets{}, fmt.Errorf("parse yaml config %s: %w", yamlPath, err)
			}
		} else if !os.IsNotExist(err) {
			return Tuning{}, Secrets{}, fmt.Errorf("read yaml config %s: %w", yamlPath, err)
		}
	}

	if hjsonPath != "" {
		if data, err := os.ReadFile(hjsonPath); err == nil {
			if err := hjson.Unmarshal(data, &tuning); err != nil {
				return Tuning{}, Secrets{}, fmt.Errorf("parse hjson override %s: %w", hjsonPath, err)
			}
		} else if !os.IsNotExist(err) {
			return Tuning{}, Secrets{}, fmt.Errorf("read hjson override %s: %w", hjsonPath, err)
		}
	}

	secrets := Secrets{
		GeminiAPIKey:             os.Getenv("GEMINI_API_KEY"),
		DeepseekAPIKey:           os.Getenv("DEEPSEEK_API_KEY"),
		FinnhubAPIKey:            os.Getenv("FINNHUB_API_KEY"),
		CommercialProviderAPIKey: os.Getenv("COMMERCIAL_PROVIDER_API_KEY"),
		Neo4jURI:                 os.Getenv("NEO4J_URI"),
		Neo4jUser:                os.Getenv("NEO4J_USER"),
		Neo4jPassword:            os.Getenv("NEO4J_PASSWORD"),
	}

	return tuning, secrets, nil
}
