package mock

import (
	"context"
	"fmt"

	"github.com/poiesic/secrag/ai"
)

// MockContextWriter is a test double for ai.ContextWriter.
// It allows custom behavior injection via function fields.
type MockContextWriter struct {
	// WriteContextFunc is called by WriteContext if set.
	// If nil, uses default template behavior.
	WriteContextFunc func(ctx context.Context, filing ai.FilingContext, chunkText string) (string, error)

	callCount int
}

// NewMockContextWriter creates a mock context writer with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockContextWriter().
func NewMockContextWriter() *MockContextWriter {
	return &MockContextWriter{}
}

// WriteContext returns a deterministic summary built from the filing metadata.
func (m *MockContextWriter) WriteContext(ctx context.Context, filing ai.FilingContext, chunkText string) (string, error) {
	m.callCount++

	if m.WriteContextFunc != nil {
		return m.WriteContextFunc(ctx, filing, chunkText)
	}

	return fmt.Sprintf("Excerpt from %s's %s filing dated %s.",
		filing.CompanyName, filing.FormType, filing.FilingDate), nil
}

// CallCount returns the number of times WriteContext was called.
func (m *MockContextWriter) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockContextWriter) Reset() {
	m.callCount = 0
	m.WriteContextFunc = nil
}
