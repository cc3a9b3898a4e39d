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


package openai

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/poiesic/secrag/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// contextTemperature keeps summaries focused while allowing some
// phrasing variety.
const contextTemperature = 0.3

// ContextWriter implements ai.ContextWriter using OpenAI-compatible chat APIs.
type ContextWriter struct {
	client llms.Model
	logger *slog.Logger
}

// newContextWriter is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newContextWriter(config *ai.Config) (*ContextWriter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.GeneratorHost),
		openai.WithToken("none"),
		openai.WithModel(config.GeneratorModel),
	)
	if err != nil {
		return nil, err
	}

	return &ContextWriter{
		client: client,
		logger: slog.Default().With("component", "openai-contextwriter"),
	}, nil
}

// NewContextWriter creates a new context writer using the provided configuration.
//
// Returns ai.ContextWriter interface to enforce abstraction.
func NewContextWriter(config *ai.Config) (ai.ContextWriter, error) {
	return newContextWriter(config)
}

// WriteContext generates a short summary situating chunkText within the
// filing. Empty model responses are retried up to 3 times before giving up.
func (w *ContextWriter) WriteContext(ctx context.Context, filing ai.FilingContext, chunkText string) (string, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(contextSystemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(buildContextPrompt(filing, chunkText)),
			},
		},
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := w.client.GenerateContent(ctx, content, llms.WithTemperature(contextTemperature))
		if err != nil {
			w.logger.Error("failed to generate chunk context", "attempt", attempt+1, "err", err)
			lastErr = err
			continue
		}

		if len(response.Choices) < 1 {
			lastErr = errors.New("no choices returned from model")
			w.logger.Warn("empty response from generator", "attempt", attempt+1)
			continue
		}

		summary := strings.TrimSpace(response.Choices[0].Content)
		if summary == "" {
			lastErr = errors.New("model returned empty summary")
			w.logger.Warn("blank summary from generator", "attempt", attempt+1)
			continue
		}

		return summary, nil
	}

	w.logger.Error("failed to generate chunk context after retries", "err", lastErr)
	return "", lastErr
}
