package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/secrag/ai"
	"github.com/poiesic/secrag/search"
)

// fileConfig is the optional YAML configuration for the CLI.
// Command-line flags override anything set here.
type fileConfig struct {
	DBPath        string `yaml:"db_path"`
	DataDir       string `yaml:"data_dir"`
	CompaniesFile string `yaml:"companies_file"`

	AI struct {
		EmbeddingHost  string `yaml:"embedding_host"`
		GeneratorHost  string `yaml:"generator_host"`
		EmbeddingModel string `yaml:"embedding_model"`
		GeneratorModel string `yaml:"generator_model"`
	} `yaml:"ai"`

	Search struct {
		MinSimilarity float32 `yaml:"min_similarity"`
		MaxHits       int     `yaml:"max_hits"`
	} `yaml:"search"`
}

func defaultFileConfig() *fileConfig {
	cfg := &fileConfig{
		DBPath:        "./filings_db",
		DataDir:       "./data/filings",
		CompaniesFile: "./companies.json",
	}

	defaults := ai.DefaultConfig()
	cfg.AI.EmbeddingHost = defaults.EmbeddingHost
	cfg.AI.GeneratorHost = defaults.GeneratorHost
	cfg.AI.EmbeddingModel = defaults.EmbeddingModel
	cfg.AI.GeneratorModel = defaults.GeneratorModel

	cfg.Search.MinSimilarity = search.DefaultMinSimilarity
	cfg.Search.MaxHits = 10

	return cfg
}

// loadFileConfig reads the config file at path, falling back to defaults
// when path is empty and no ./secrag.yaml exists.
func loadFileConfig(path string) (*fileConfig, error) {
	cfg := defaultFileConfig()

	explicit := path != ""
	if path == "" {
		path = "./secrag.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// aiConfig builds the AI service configuration from the file config.
func (c *fileConfig) aiConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.AI.EmbeddingHost),
		ai.WithGeneratorHost(c.AI.GeneratorHost),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithGeneratorModel(c.AI.GeneratorModel),
	)
}
