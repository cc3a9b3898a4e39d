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

// answerTemperature keeps answers close to the cited evidence.
const answerTemperature = 0.1

// Answerer implements ai.Answerer using OpenAI-compatible chat APIs.
type Answerer struct {
	client llms.Model
	logger *slog.Logger
}

// newAnswerer is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newAnswerer(config *ai.Config) (*Answerer, error) {
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

	return &Answerer{
		client: client,
		logger: slog.Default().With("component", "openai-answerer"),
	}, nil
}

// NewAnswerer creates a new answerer using the provided configuration.
//
// Returns ai.Answerer interface to enforce abstraction.
func NewAnswerer(config *ai.Config) (ai.Answerer, error) {
	return newAnswerer(config)
}

// Answer generates an answer to question grounded in the supplied passages.
func (a *Answerer) Answer(ctx context.Context, question string, passages []ai.Passage) (string, error) {
	response, err := a.client.GenerateContent(ctx, a.buildMessages(question, passages),
		llms.WithTemperature(answerTemperature))
	if err != nil {
		a.logger.Error("failed to generate answer", "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		return "", errors.New("no choices returned from model")
	}

	return strings.TrimSpace(response.Choices[0].Content), nil
}

// AnswerStream generates an answer and streams it through fn as it arrives.
func (a *Answerer) AnswerStream(ctx context.Context, question string, passages []ai.Passage, fn func(chunk []byte) error) error {
	_, err := a.client.GenerateContent(ctx, a.buildMessages(question, passages),
		llms.WithTemperature(answerTemperature),
		llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			return fn(chunk)
		}))
	if err != nil {
		a.logger.Error("failed to stream answer", "err", err)
		return err
	}
	return nil
}

func (a *Answerer) buildMessages(question string, passages []ai.Passage) []llms.MessageContent {
	return []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(answerSystemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(buildAnswerPrompt(question, passages)),
			},
		},
	}
}
