package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector is L2-normalized so cosine similarity reduces
	// to a dot product.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ContextWriter produces short situating summaries for filing chunks.
// A situating summary places a chunk within its source document so the
// chunk embeds and retrieves better than the raw text alone.
// Implementations must be thread-safe for concurrent use.
type ContextWriter interface {
	// WriteContext generates a 50-100 token summary situating chunkText
	// within the filing described by filing.
	// Returns an error if generation fails; callers may substitute a
	// template-based fallback.
	WriteContext(ctx context.Context, filing FilingContext, chunkText string) (string, error)
}

// Answerer generates grounded answers to questions about filings.
// Implementations must be thread-safe for concurrent use.
type Answerer interface {
	// Answer generates an answer to question using the supplied passages
	// as evidence. The answer cites the passages it draws on.
	Answer(ctx context.Context, question string, passages []Passage) (string, error)

	// AnswerStream is like Answer but streams the response incrementally
	// through fn. fn is called with each token fragment as it arrives;
	// returning an error from fn aborts the stream.
	AnswerStream(ctx context.Context, question string, passages []Passage, fn func(chunk []byte) error) error
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder, ContextWriter, and Answerer instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// ContextWriter returns the chunk context generation service.
	// The returned ContextWriter is safe for concurrent use.
	ContextWriter() ContextWriter

	// Answerer returns the question answering service.
	// The returned Answerer is safe for concurrent use.
	Answerer() Answerer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
