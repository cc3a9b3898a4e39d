package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/secrag/ai"
	"github.com/poiesic/secrag/chunking"
	"github.com/poiesic/secrag/core"
	"github.com/poiesic/secrag/storage"
)

// Pipeline orchestrates the ingestion and processing of filings.
// It stores filing records, splits their text into chunks, and manages
// concurrent enrichment of those chunks with context summaries and
// embeddings.
type Pipeline struct {
	filingRepository storage.FilingRepository
	chunkRepository  storage.ChunkRepository
	chunker          *chunking.Chunker
	contextPool      *ants.Pool
	embeddingPool    *ants.Pool
	contextProc      processor
	embeddingProc    processor
	withContext      bool
	tickers          map[string]string
	wg               sync.WaitGroup
	logger           *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pools
		if p.contextPool != nil {
			p.contextPool.Release()
		}
		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}

		contextPool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		embeddingPool, err := ants.NewPool(size)
		if err != nil {
			contextPool.Release()
			return err
		}

		p.contextPool = contextPool
		p.embeddingPool = embeddingPool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithContextSummaries enables or disables AI context summaries.
// When disabled, chunks are embedded on their raw text only.
// Default is enabled.
func WithContextSummaries(enabled bool) Option {
	return func(p *Pipeline) error {
		p.withContext = enabled
		return nil
	}
}

// WithChunkSize sets the token count per chunk.
func WithChunkSize(size int) Option {
	return func(p *Pipeline) error {
		chunker, err := chunking.NewChunker(chunking.WithChunkSize(size))
		if err != nil {
			return err
		}
		p.chunker = chunker
		return nil
	}
}

// WithTickers sets a CIK to ticker lookup used when ingesting files,
// since the filing header doesn't carry the ticker.
func WithTickers(tickers map[string]string) Option {
	return func(p *Pipeline) error {
		p.tickers = tickers
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	filingRepository storage.FilingRepository,
	chunkRepository storage.ChunkRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if filingRepository == nil {
		return nil, ErrFilingRepositoryRequired
	}
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	logger := slog.Default()

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	contextPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	embeddingPool, err := ants.NewPool(poolSize)
	if err != nil {
		contextPool.Release()
		return nil, err
	}

	chunker, err := chunking.NewChunker()
	if err != nil {
		contextPool.Release()
		embeddingPool.Release()
		return nil, err
	}

	p := &Pipeline{
		filingRepository: filingRepository,
		chunkRepository:  chunkRepository,
		chunker:          chunker,
		contextPool:      contextPool,
		embeddingPool:    embeddingPool,
		withContext:      true,
		logger:           logger,
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	contextProc, err := newContextProcessor(chunkRepository, provider.ContextWriter(), p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}

	embeddingProc, err := newEmbeddingProcessor(chunkRepository, provider.Embedder(), p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}

	p.contextProc = contextProc
	p.embeddingProc = embeddingProc

	return p, nil
}

// IngestFiling stores a filing and its chunked text, then enriches the
// chunks asynchronously. Context summaries are written first so the
// embeddings include them. Returns the number of chunks created.
// Errors during async processing are logged but do not fail the ingestion.
func (p *Pipeline) IngestFiling(ctx context.Context, filing *core.Filing, text string) (int, error) {
	if err := core.ValidateFiling(filing); err != nil {
		return 0, err
	}

	if _, err := p.filingRepository.AddFilings(ctx, filing); err != nil {
		return 0, err
	}

	segments, err := p.chunker.Split(text)
	if err != nil {
		return 0, err
	}

	chunks := make([]*core.Chunk, len(segments))
	for i, seg := range segments {
		chunks[i] = &core.Chunk{
			Id:         core.ChunkID(filing.AccessionNumber, seg.Seq),
			FilingId:   filing.Id,
			Seq:        seg.Seq,
			Text:       seg.Text,
			TokenCount: seg.TokenCount,
			CharStart:  seg.CharStart,
			CharEnd:    seg.CharEnd,
		}
	}

	if _, err := p.chunkRepository.AddChunks(ctx, chunks...); err != nil {
		return 0, err
	}

	ids := make([]core.ID, len(chunks))
	for i, chunk := range chunks {
		ids[i] = chunk.Id
	}

	p.submit(filing, ids)

	return len(chunks), nil
}

// submit queues async enrichment for the given chunk IDs.
func (p *Pipeline) submit(filing *core.Filing, ids []core.ID) {
	p.wg.Add(1)
	err := p.contextPool.Submit(func() {
		defer p.wg.Done()

		if p.withContext {
			if err := p.contextProc.process(context.Background(), filing, ids...); err != nil {
				p.logger.Error("error writing context summaries", "err", err)
			}
		}

		p.wg.Add(1)
		if err := p.embeddingPool.Submit(func() {
			defer p.wg.Done()
			if err := p.embeddingProc.process(context.Background(), filing, ids...); err != nil {
				p.logger.Error("error processing embeddings", "err", err)
			}
		}); err != nil {
			p.wg.Done()
			p.logger.Error("error submitting embedding work", "err", err)
		}
	})
	if err != nil {
		p.wg.Done()
		p.logger.Error("error submitting context work", "err", err)
	}
}

// Wait blocks until all queued enrichment work has finished.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.contextPool != nil {
		p.contextPool.Release()
	}
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}
