package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/secrag/ai"
	"github.com/poiesic/secrag/core"
	"github.com/poiesic/secrag/storage"
)

// embeddingProcessor generates embeddings for stored chunks.
type embeddingProcessor struct {
	chunkRepository storage.ChunkRepository
	embedder        ai.Embedder
	logger          *slog.Logger
}

var _ processor = (*embeddingProcessor)(nil)

func newEmbeddingProcessor(chunkRepository storage.ChunkRepository, embedder ai.Embedder, logger *slog.Logger) (processor, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		chunkRepository: chunkRepository,
		embedder:        embedder,
		logger:          logger.With("processor", "embeddings"),
	}, nil
}

// process embeds the specified chunks and stores the vectors.
// Chunks are embedded on their full embedding text, which prepends the
// context summary when one has been written.
func (ep *embeddingProcessor) process(ctx context.Context, _ *core.Filing, ids ...core.ID) error {
	ep.logger.Info("processing chunks for embeddings", "chunks", len(ids))

	chunks, err := ep.chunkRepository.GetChunks(ctx, ids...)
	if err != nil {
		ep.logger.Error("error retrieving chunks", "err", err)
		return err
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.EmbeddingText()
	}

	ep.logger.Debug("generating embeddings", "chunks", len(texts))
	embeddings, err := ep.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		ep.logger.Error("error generating embeddings", "err", err)
		return err
	}

	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(chunks), len(embeddings))
	}

	for i := range embeddings {
		if err := core.ValidateVector(embeddings[i]); err != nil {
			return fmt.Errorf("invalid embedding for chunk %d: %w", chunks[i].Seq, err)
		}
		chunks[i].Vector = embeddings[i]
	}

	if _, err := ep.chunkRepository.UpdateChunks(ctx, chunks...); err != nil {
		return err
	}

	return nil
}
