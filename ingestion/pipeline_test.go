package ingestion

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/secrag/ai"
	"github.com/poiesic/secrag/ai/mock"
	"github.com/poiesic/secrag/core"
	"github.com/poiesic/secrag/edgar"
	"github.com/poiesic/secrag/storage"
	"github.com/poiesic/secrag/storage/badger"
)

func newTestPipeline(t *testing.T, provider ai.AIProvider, opts ...Option) (*Pipeline, storage.FilingRepository, storage.ChunkRepository) {
	t.Helper()

	filingRepo, chunkRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	pipeline, err := NewPipeline(filingRepo, chunkRepo, provider, opts...)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return pipeline, filingRepo, chunkRepo
}

func testFiling() *core.Filing {
	return &core.Filing{
		CIK:             "0000320193",
		CompanyName:     "Apple Inc.",
		Ticker:          "AAPL",
		FormType:        core.FormType10K,
		FilingDate:      time.Date(2023, 11, 3, 0, 0, 0, 0, time.UTC),
		AccessionNumber: "0000320193-23-000106",
		FiscalYear:      2023,
	}
}

func TestNewPipeline_Validation(t *testing.T) {
	filingRepo, chunkRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	provider := mock.NewMockProvider()

	_, err = NewPipeline(nil, chunkRepo, provider)
	assert.ErrorIs(t, err, ErrFilingRepositoryRequired)

	_, err = NewPipeline(filingRepo, nil, provider)
	assert.ErrorIs(t, err, ErrChunkRepositoryRequired)

	_, err = NewPipeline(filingRepo, chunkRepo, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}

func TestIngestFiling(t *testing.T) {
	provider := mock.NewMockProvider()
	pipeline, filingRepo, chunkRepo := newTestPipeline(t, provider, WithChunkSize(20))

	filing := testFiling()
	text := strings.Repeat("Revenue increased due to strong iPhone sales in all regions. ", 15)

	count, err := pipeline.IngestFiling(context.Background(), filing, text)
	require.NoError(t, err)
	require.Greater(t, count, 1)

	pipeline.Wait()

	stored, err := filingRepo.GetFilingByAccession(context.Background(), filing.AccessionNumber)
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", stored.CompanyName)

	chunks, err := chunkRepo.GetChunksByFiling(context.Background(), filing.Id)
	require.NoError(t, err)
	require.Len(t, chunks, count)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Seq)
		assert.NotEmpty(t, chunk.Text)
		assert.NotEmpty(t, chunk.ContextSummary, "chunk %d should have a context summary", i)
		assert.NotEmpty(t, chunk.Vector, "chunk %d should have an embedding", i)
	}
}

func TestIngestFiling_WithoutContextSummaries(t *testing.T) {
	provider := mock.NewMockProvider()
	pipeline, _, chunkRepo := newTestPipeline(t, provider,
		WithChunkSize(20), WithContextSummaries(false))

	filing := testFiling()
	_, err := pipeline.IngestFiling(context.Background(), filing,
		strings.Repeat("Operating margin expanded during the quarter. ", 10))
	require.NoError(t, err)

	pipeline.Wait()

	chunks, err := chunkRepo.GetChunksByFiling(context.Background(), filing.Id)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for _, chunk := range chunks {
		assert.Empty(t, chunk.ContextSummary)
		assert.NotEmpty(t, chunk.Vector)
	}
}

func TestIngestFiling_ContextWriterFailureUsesFallback(t *testing.T) {
	mockWriter := mock.NewMockContextWriter()
	mockWriter.WriteContextFunc = func(ctx context.Context, filing ai.FilingContext, chunkText string) (string, error) {
		return "", errors.New("model unavailable")
	}
	provider := mock.NewMockProviderWithServices(
		mock.NewMockEmbedder(), mockWriter, mock.NewMockAnswerer())

	pipeline, _, chunkRepo := newTestPipeline(t, provider, WithChunkSize(20))

	filing := testFiling()
	_, err := pipeline.IngestFiling(context.Background(), filing,
		strings.Repeat("Gross margin improved on services mix. ", 10))
	require.NoError(t, err)

	pipeline.Wait()

	chunks, err := chunkRepo.GetChunksByFiling(context.Background(), filing.Id)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for _, chunk := range chunks {
		assert.Contains(t, chunk.ContextSummary, "Apple Inc.'s 10-K filing dated 2023-11-03")
		assert.NotEmpty(t, chunk.Vector)
	}
}

func TestIngestFiling_InvalidFiling(t *testing.T) {
	pipeline, _, _ := newTestPipeline(t, mock.NewMockProvider())

	filing := testFiling()
	filing.AccessionNumber = ""

	_, err := pipeline.IngestFiling(context.Background(), filing, "some text")
	assert.ErrorIs(t, err, core.ErrEmptyAccession)
}

func TestIngestFile(t *testing.T) {
	provider := mock.NewMockProvider()
	pipeline, filingRepo, _ := newTestPipeline(t, provider,
		WithChunkSize(20),
		WithTickers(map[string]string{"0000320193": "AAPL"}))

	dir := t.TempDir()
	header := edgar.WriteHeader(&edgar.FilingHeader{
		CompanyName:   "Apple Inc.",
		CIK:           "0000320193",
		FormType:      "10-K",
		FilingDate:    "20231103",
		Accession:     "0000320193-23-000106",
		GrossFileSize: 2048,
		NetFileSize:   1024,
	})
	body := strings.Repeat("Net sales grew across all product categories. ", 10)
	path := filepath.Join(dir, "20231103_10K_edgar_data_320193_0000320193-23-000106.txt")
	require.NoError(t, os.WriteFile(path, []byte(header+body), 0o644))

	count, err := pipeline.IngestFile(context.Background(), path)
	require.NoError(t, err)
	assert.Positive(t, count)

	pipeline.Wait()

	stored, err := filingRepo.GetFilingByAccession(context.Background(), "0000320193-23-000106")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", stored.CompanyName)
	assert.Equal(t, "AAPL", stored.Ticker)
	assert.Equal(t, 2023, stored.FiscalYear)
	assert.Equal(t, int64(2048), stored.GrossFileSize)
}

func TestIngestDirectory_SkipsBadFiles(t *testing.T) {
	provider := mock.NewMockProvider()
	pipeline, _, _ := newTestPipeline(t, provider, WithChunkSize(20))

	dir := t.TempDir()

	header := edgar.WriteHeader(&edgar.FilingHeader{
		CompanyName: "Apple Inc.",
		CIK:         "0000320193",
		FormType:    "10-K",
		FilingDate:  "20231103",
		Accession:   "0000320193-23-000106",
	})
	good := filepath.Join(dir, "20231103_10K_edgar_data_320193_0000320193-23-000106.txt")
	require.NoError(t, os.WriteFile(good,
		[]byte(header+strings.Repeat("Annual report contents. ", 10)), 0o644))

	bad := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(bad, []byte("not a filing"), 0o644))

	filings, chunks, err := pipeline.IngestDirectory(context.Background(), dir)
	require.NoError(t, err)

	pipeline.Wait()

	assert.Equal(t, 1, filings)
	assert.Positive(t, chunks)
}

func TestFallbackContext(t *testing.T) {
	filing := testFiling()
	chunk := &core.Chunk{Seq: 3, TokenCount: 500}

	summary := FallbackContext(filing, chunk)
	assert.Equal(t,
		"This is chunk 3 from Apple Inc.'s 10-K filing dated 2023-11-03. Contains 500 tokens of filing content.",
		summary)
}
