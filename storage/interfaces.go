package storage

import (
	"context"
	"time"

	"github.com/poiesic/secrag/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// FilingRepository provides operations for managing filing metadata.
type FilingRepository interface {
	Repository
	// AddFilings adds one or more filings to storage.
	// For filings with ID=0, derives the ID from the accession number.
	// Sets InsertedAt timestamp if not already set.
	// Returns the filings with IDs and timestamps populated.
	AddFilings(ctx context.Context, filings ...*core.Filing) ([]*core.Filing, error)

	// GetFiling retrieves a single filing by ID.
	// Returns ErrNotFound if the filing doesn't exist.
	GetFiling(ctx context.Context, id core.ID) (*core.Filing, error)

	// GetFilings retrieves multiple filings by their IDs.
	// Returns only the filings that exist (no error for missing filings).
	GetFilings(ctx context.Context, ids ...core.ID) ([]*core.Filing, error)

	// GetFilingByAccession retrieves a filing by its SEC accession number.
	// Returns ErrNotFound if no matching filing exists.
	GetFilingByAccession(ctx context.Context, accession string) (*core.Filing, error)

	// GetFilingsByCIK retrieves all filings for a company, ordered by filing date.
	GetFilingsByCIK(ctx context.Context, cik string) ([]*core.Filing, error)

	// GetFilingsByForm retrieves all filings of a given form type,
	// ordered by filing date.
	GetFilingsByForm(ctx context.Context, form core.FormType) ([]*core.Filing, error)

	// GetFilingsByDateRange retrieves filings within a time range.
	// Returns filings where start <= FilingDate < end, ordered by filing date.
	GetFilingsByDateRange(ctx context.Context, start, end time.Time) ([]*core.Filing, error)

	// DeleteFilings removes filings by their IDs.
	// Also removes associated indices. Chunks are not cascaded; callers
	// that want a full purge should delete chunks first.
	// Returns ErrNotFound if any filing doesn't exist.
	DeleteFilings(ctx context.Context, ids ...core.ID) error

	// CountFilings returns the total number of stored filings.
	CountFilings(ctx context.Context) (int, error)
}

// ChunkRepository provides operations for managing filing chunks and
// their embedding vectors.
type ChunkRepository interface {
	Repository
	// AddChunks adds one or more chunks to storage.
	// For chunks with ID=0, derives the ID from the parent filing and sequence.
	// Sets InsertedAt timestamp if not already set.
	// Returns the chunks with IDs and timestamps populated.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// UpdateChunks updates existing chunks.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any chunk doesn't exist.
	UpdateChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error)

	// GetChunks retrieves multiple chunks by their IDs.
	// Returns only the chunks that exist (no error for missing chunks).
	GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error)

	// GetChunksByFiling retrieves all chunks of a filing, ordered by sequence.
	GetChunksByFiling(ctx context.Context, filingID core.ID) ([]*core.Chunk, error)

	// DeleteChunksByFiling removes all chunks belonging to a filing.
	// Returns the number of chunks removed.
	DeleteChunksByFiling(ctx context.Context, filingID core.ID) (int, error)

	// FindSimilar finds chunks similar to the given vector.
	// Returns chunks with similarity >= minSimilarity, up to limit results.
	// Results are ordered by similarity score (highest first).
	// Chunks without a vector are skipped.
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ChunkMatch, error)

	// AllChunkIDs returns the IDs of every stored chunk, in key order.
	// Used by batch maintenance jobs that walk the full corpus.
	AllChunkIDs(ctx context.Context) ([]core.ID, error)

	// CountChunks returns the total number of stored chunks.
	CountChunks(ctx context.Context) (int, error)
}
