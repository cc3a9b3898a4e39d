package mock

import (
	"context"
	"fmt"
	"strings"

	"github.com/poiesic/secrag/ai"
)

// MockAnswerer is a test double for ai.Answerer.
// It allows custom behavior injection via function fields.
type MockAnswerer struct {
	// AnswerFunc is called by Answer if set.
	// If nil, uses default canned behavior.
	AnswerFunc func(ctx context.Context, question string, passages []ai.Passage) (string, error)

	// AnswerStreamFunc is called by AnswerStream if set.
	// If nil, streams the default answer in a single chunk.
	AnswerStreamFunc func(ctx context.Context, question string, passages []ai.Passage, fn func(chunk []byte) error) error

	callCount int
}

// NewMockAnswerer creates a mock answerer with default canned behavior.
// Note: Returns concrete type to allow test assertions via GetMockAnswerer().
func NewMockAnswerer() *MockAnswerer {
	return &MockAnswerer{}
}

// Answer returns a canned answer that names the passage sources.
func (m *MockAnswerer) Answer(ctx context.Context, question string, passages []ai.Passage) (string, error) {
	m.callCount++

	if m.AnswerFunc != nil {
		return m.AnswerFunc(ctx, question, passages)
	}

	return cannedAnswer(question, passages), nil
}

// AnswerStream streams the canned answer through fn in a single chunk.
func (m *MockAnswerer) AnswerStream(ctx context.Context, question string, passages []ai.Passage, fn func(chunk []byte) error) error {
	m.callCount++

	if m.AnswerStreamFunc != nil {
		return m.AnswerStreamFunc(ctx, question, passages, fn)
	}

	return fn([]byte(cannedAnswer(question, passages)))
}

// CallCount returns the number of times any method was called.
func (m *MockAnswerer) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockAnswerer) Reset() {
	m.callCount = 0
	m.AnswerFunc = nil
	m.AnswerStreamFunc = nil
}

// cannedAnswer builds the default deterministic answer.
func cannedAnswer(question string, passages []ai.Passage) string {
	if len(passages) == 0 {
		return "The provided filings do not contain enough information to answer this question."
	}

	sources := make([]string, 0, len(passages))
	for _, p := range passages {
		sources = append(sources, p.Source)
	}
	return fmt.Sprintf("Mock answer to %q based on: %s.", question, strings.Join(sources, "; "))
}
