package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix namespaces every environment override, e.g. LEGALRAG_NEO4J_URI.
const EnvPrefix = "LEGALRAG"

type LLMConfig struct {
	Provider       string   `toml:"provider" split_words:"true"`
	Model          string   `toml:"model" split_words:"true"`
	EmbeddingModel string   `toml:"embedding_model" split_words:"true"`
	APIKey         string   `toml:"api_key" split_words:"true"`
	BaseURL        string   `toml:"base_url" split_words:"true"`
	Timeout        Duration `toml:"timeout" split_words:"true"`
}

type Neo4jConfig struct {
	URI      string   `toml:"uri" split_words:"true"`
	User     string   `toml:"user" split_words:"true"`
	Password string   `toml:"password" split_words:"true"`
	Database string   `toml:"database" split_words:"true"`
	Timeout  Duration `toml:"timeout" split_words:"true"`
}

type VectorConfig struct {
	Path      string   `toml:"path" split_words:"true"`
	Dimension int      `toml:"dimension" split_words:"true"`
	Timeout   Duration `toml:"timeout" split_words:"true"`
}

type RetrievalConfig struct {
	TopK                int `toml:"top_k" split_words:"true"`
	OverfetchMultiplier int `toml:"overfetch_multiplier" split_words:"true"`
	MinSections         int `toml:"min_sections" split_words:"true"`
	MinArticles         int `toml:"min_articles" split_words:"true"`
}

type AnswerConfig struct {
	SimilarityThreshold float64 `toml:"similarity_threshold" split_words:"true"`
	MaxGraphChars       int     `toml:"max_graph_chars" split_words:"true"`
	MaxSnippetChars     int     `toml:"max_snippet_chars" split_words:"true"`
	MaxSnippets         int     `toml:"max_snippets" split_words:"true"`
}

type PromptConfig struct {
	Rephrase string `toml:"rephrase" split_words:"true"`
	System   string `toml:"system" split_words:"true"`
}

type RedisConfig struct {
	URL string   `toml:"url" split_words:"true"`
	TTL Duration `toml:"ttl" split_words:"true"`
}

type ServerConfig struct {
	Port string `toml:"port" split_words:"true"`
}

type Config struct {
	Env       string          `toml:"env" split_words:"true"`
	LLM       LLMConfig       `toml:"llm" split_words:"true"`
	Neo4j     Neo4jConfig     `toml:"neo4j" split_words:"true"`
	Vector    VectorConfig    `toml:"vector" split_words:"true"`
	Retrieval RetrievalConfig `toml:"retrieval" split_words:"true"`
	Answer    AnswerConfig    `toml:"answer" split_words:"true"`
	Prompts   PromptConfig    `toml:"prompts" split_words:"true"`
	Redis     RedisConfig     `toml:"redis" split_words:"true"`
	Server    ServerConfig    `toml:"server" split_words:"true"`
}

// Default returns a configuration that runs against a local Neo4j and Ollama.
func Default() *Config {
	return &Config{
		Env: "development",
		LLM: LLMConfig{
			Provider:       "ollama",
			Model:          "llama3:8b",
			EmbeddingModel: "bge-small-en-v1.5",
			BaseURL:        "http://localhost:11434",
			Timeout:        Duration(300 * time.Second),
		},
		Neo4j: Neo4jConfig{
			URI:     "bolt://localhost:7687",
			User:    "neo4j",
			Timeout: Duration(10 * time.Second),
		},
		Vector: VectorConfig{
			Path:      "data/vectors.db",
			Dimension: 384,
			Timeout:   Duration(10 * time.Second),
		},
		Retrieval: RetrievalConfig{
			TopK:                8,
			OverfetchMultiplier: 4,
			MinSections:         2,
			MinArticles:         2,
		},
		Answer: AnswerConfig{
			SimilarityThreshold: 0.35,
			MaxGraphChars:       2000,
			MaxSnippetChars:     600,
			MaxSnippets:         10,
		},
		Redis: RedisConfig{
			TTL: Duration(24 * time.Hour),
		},
		Server: ServerConfig{
			Port: "8080",
		},
	}
}

// Load reads the TOML file at path over the defaults. A missing file is not an
// error when allowMissing is set, so a pure env-driven deployment still starts.
func Load(path string, allowMissing bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	case allowMissing && errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields whose LEGALRAG_* variable is set. Unset variables
// leave the file value in place.
func ApplyEnv(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("failed to process environment overrides: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Retrieval.TopK < 1 {
		errs = append(errs, fmt.Errorf("retrieval.top_k must be >= 1, got %d", c.Retrieval.TopK))
	}
	if c.Retrieval.OverfetchMultiplier < 2 {
		errs = append(errs, fmt.Errorf("retrieval.overfetch_multiplier must be >= 2, got %d", c.Retrieval.OverfetchMultiplier))
	}
	if c.Retrieval.MinSections < 0 || c.Retrieval.MinArticles < 0 {
		errs = append(errs, errors.New("retrieval.min_sections and retrieval.min_articles must not be negative"))
	}
	if c.Answer.SimilarityThreshold < -1 || c.Answer.SimilarityThreshold > 1 {
		errs = append(errs, fmt.Errorf("answer.similarity_threshold must be within [-1, 1], got %v", c.Answer.SimilarityThreshold))
	}
	if c.Vector.Dimension < 1 {
		errs = append(errs, fmt.Errorf("vector.dimension must be >= 1, got %d", c.Vector.Dimension))
	}
	return errors.Join(errs...)
}
