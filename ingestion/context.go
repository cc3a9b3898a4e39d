package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/secrag/ai"
	"github.com/poiesic/secrag/core"
	"github.com/poiesic/secrag/storage"
)

// chunkExcerptLimit caps the chunk text sent to the context writer.
const chunkExcerptLimit = 1000

// contextProcessor writes situating summaries for chunks.
// When the AI context writer fails, a template summary built from the
// filing metadata is stored instead so embedding can still proceed.
type contextProcessor struct {
	chunkRepository storage.ChunkRepository
	writer          ai.ContextWriter
	logger          *slog.Logger
}

var _ processor = (*contextProcessor)(nil)

func newContextProcessor(chunkRepository storage.ChunkRepository, writer ai.ContextWriter, logger *slog.Logger) (processor, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if writer == nil {
		return nil, fmt.Errorf("context writer required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &contextProcessor{
		chunkRepository: chunkRepository,
		writer:          writer,
		logger:          logger.With("processor", "context"),
	}, nil
}

// process generates context summaries for the specified chunks.
func (cp *contextProcessor) process(ctx context.Context, filing *core.Filing, ids ...core.ID) error {
	cp.logger.Info("writing context summaries", "chunks", len(ids))

	chunks, err := cp.chunkRepository.GetChunks(ctx, ids...)
	if err != nil {
		cp.logger.Error("error retrieving chunks", "err", err)
		return err
	}

	filingCtx := ai.FilingContext{
		CompanyName: filing.CompanyName,
		Ticker:      filing.Ticker,
		FormType:    filing.FormType.String(),
		FilingDate:  filing.FilingDate.Format("2006-01-02"),
		FiscalYear:  filing.FiscalYear,
	}

	for _, chunk := range chunks {
		excerpt := chunk.Text
		if len(excerpt) > chunkExcerptLimit {
			excerpt = excerpt[:chunkExcerptLimit]
		}

		summary, err := cp.writer.WriteContext(ctx, filingCtx, excerpt)
		if err != nil {
			cp.logger.Warn("context writer failed, using template summary",
				"chunk", chunk.Seq, "err", err)
			summary = FallbackContext(filing, chunk)
		}
		chunk.ContextSummary = summary
	}

	if _, err := cp.chunkRepository.UpdateChunks(ctx, chunks...); err != nil {
		cp.logger.Error("error storing context summaries", "err", err)
		return err
	}

	return nil
}

// FallbackContext builds a template summary from filing metadata.
// Used when the AI context writer is unavailable or keeps failing.
func FallbackContext(filing *core.Filing, chunk *core.Chunk) string {
	return fmt.Sprintf("This is chunk %d from %s's %s filing dated %s. Contains %d tokens of filing content.",
		chunk.Seq, filing.CompanyName, filing.FormType, filing.FilingDate.Format("2006-01-02"), chunk.TokenCount)
}
