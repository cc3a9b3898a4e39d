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


package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/secrag/ai"
	"github.com/poiesic/secrag/core"
	"github.com/poiesic/secrag/search"
)

// DefaultMaxPassages is the number of retrieved chunks handed to the model.
const DefaultMaxPassages = 10

var (
	// ErrSearcherRequired is returned when a searcher is not provided.
	ErrSearcherRequired = errors.New("searcher required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")
)

// Response holds a generated answer along with the retrieval results
// that grounded it.
type Response struct {
	Answer  string
	Results []*core.SearchResult
}

// Engine answers questions over the filing corpus by retrieving
// relevant chunks and handing them to the answerer as passages.
type Engine struct {
	searcher    *search.Searcher
	answerer    ai.Answerer
	maxPassages int
	logger      *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithMaxPassages sets the number of retrieved chunks used per question.
// Default is DefaultMaxPassages.
func WithMaxPassages(n int) Option {
	return func(e *Engine) error {
		if n < 1 {
			return fmt.Errorf("max passages must be positive, got %d", n)
		}
		e.maxPassages = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates a question answering engine.
func NewEngine(searcher *search.Searcher, provider ai.AIProvider, opts ...Option) (*Engine, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	e := &Engine{
		searcher:    searcher,
		answerer:    provider.Answerer(),
		maxPassages: DefaultMaxPassages,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Ask retrieves passages for the question and generates an answer.
func (e *Engine) Ask(ctx context.Context, question string, filter *search.Filter) (*Response, error) {
	results, passages, err := e.retrieve(ctx, question, filter)
	if err != nil {
		return nil, err
	}

	answer, err := e.answerer.Answer(ctx, question, passages)
	if err != nil {
		e.logger.Error("error generating answer", "err", err)
		return nil, err
	}

	return &Response{Answer: answer, Results: results}, nil
}

// AskStream retrieves passages for the question and streams the answer
// through fn as it is generated. The returned response carries the full
// answer text once streaming completes.
func (e *Engine) AskStream(ctx context.Context, question string, filter *search.Filter, fn func(chunk []byte) error) (*Response, error) {
	results, passages, err := e.retrieve(ctx, question, filter)
	if err != nil {
		return nil, err
	}

	var answer []byte
	err = e.answerer.AnswerStream(ctx, question, passages, func(chunk []byte) error {
		answer = append(answer, chunk...)
		return fn(chunk)
	})
	if err != nil {
		e.logger.Error("error streaming answer", "err", err)
		return nil, err
	}

	return &Response{Answer: string(answer), Results: results}, nil
}

func (e *Engine) retrieve(ctx context.Context, question string, filter *search.Filter) ([]*core.SearchResult, []ai.Passage, error) {
	results, err := e.searcher.Search(ctx, question, e.maxPassages, filter)
	if err != nil {
		e.logger.Error("error retrieving passages", "question", question, "err", err)
		return nil, nil, err
	}

	passages := make([]ai.Passage, len(results))
	for i, result := range results {
		passages[i] = ai.Passage{
			Source: PassageSource(result.Filing),
			Score:  result.Score,
			Text:   result.Chunk.Text,
		}
	}

	return results, passages, nil
}

// PassageSource renders the citation label for a filing.
func PassageSource(filing *core.Filing) string {
	return fmt.Sprintf("%s %s filed %s",
		filing.CompanyName, filing.FormType, filing.FilingDate.Format("2006-01-02"))
}
