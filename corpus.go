// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package secrag

import (
	"log/slog"

	"github.com/poiesic/secrag/ai"
	"github.com/poiesic/secrag/ai/openai"
	"github.com/poiesic/secrag/ingestion"
	"github.com/poiesic/secrag/rag"
	"github.com/poiesic/secrag/search"
	"github.com/poiesic/secrag/storage"
	"github.com/poiesic/secrag/storage/badger"
)

// Corpus is the top-level handle to a filing database and its AI services.
type Corpus struct {
	backend    *badger.Backend
	filingRepo storage.FilingRepository
	chunkRepo  storage.ChunkRepository
	provider   ai.AIProvider
	logger     *slog.Logger
}

// CorpusOption configures a Corpus.
type CorpusOption func(*corpusOptions)

type corpusOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
}

// WithAIConfig sets the AI service configuration.
func WithAIConfig(config *ai.Config) CorpusOption {
	return func(o *corpusOptions) {
		o.aiConfig = config
	}
}

// WithProvider injects a pre-built AI provider, bypassing the default
// OpenAI-compatible one. Useful for tests.
func WithProvider(provider ai.AIProvider) CorpusOption {
	return func(o *corpusOptions) {
		o.provider = provider
	}
}

// Open opens (or creates) a filing corpus at the given path.
func Open(filePath string, opts ...CorpusOption) (*Corpus, error) {
	// Apply options
	options := &corpusOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	filingRepo, chunkRepo, backend, err := badger.NewRepositories(filePath)
	if err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			chunkRepo.Close()
			filingRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Corpus{
		backend:    backend,
		filingRepo: filingRepo,
		chunkRepo:  chunkRepo,
		provider:   provider,
		logger:     slog.Default(),
	}, nil
}

func (c *Corpus) Close() error {
	// Close AI provider first
	if err := c.provider.Close(); err != nil {
		c.logger.Error("error closing AI provider", "err", err)
	}

	// Close repositories
	if err := c.chunkRepo.Close(); err != nil {
		c.logger.Error("error closing chunk repository", "err", err)
		return err
	}
	if err := c.filingRepo.Close(); err != nil {
		c.logger.Error("error closing filing repository", "err", err)
		return err
	}

	// Close backend
	if err := c.backend.Close(); err != nil {
		c.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (c *Corpus) FilingRepository() storage.FilingRepository {
	return c.filingRepo
}

func (c *Corpus) ChunkRepository() storage.ChunkRepository {
	return c.chunkRepo
}

func (c *Corpus) Provider() ai.AIProvider {
	return c.provider
}

func (c *Corpus) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(c.filingRepo, c.chunkRepo, c.provider, opts...)
}

func (c *Corpus) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(c.filingRepo, c.chunkRepo, c.provider, opts...)
}

func (c *Corpus) NewRAGEngine(opts ...rag.Option) (*rag.Engine, error) {
	searcher, err := c.NewSearcher()
	if err != nil {
		return nil, err
	}
	return rag.NewEngine(searcher, c.provider, opts...)
}
