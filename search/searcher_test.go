package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/secrag/ai/mock"
	"github.com/poiesic/secrag/core"
	"github.com/poiesic/secrag/storage"
	"github.com/poiesic/secrag/storage/badger"
)

// fixedEmbedder returns the same vector for every text, so all stored
// chunks score 1.0 against any query.
func fixedEmbedder(vector []float32) *mock.MockEmbedder {
	e := mock.NewMockEmbedder()
	e.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return vector, nil
	}
	e.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = vector
		}
		return out, nil
	}
	return e
}

func newTestSearcher(t *testing.T, embedder *mock.MockEmbedder, opts ...Option) (*Searcher, storage.FilingRepository, storage.ChunkRepository) {
	t.Helper()

	filingRepo, chunkRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	provider := mock.NewMockProviderWithServices(
		embedder, mock.NewMockContextWriter(), mock.NewMockAnswerer())

	searcher, err := NewSearcher(filingRepo, chunkRepo, provider, opts...)
	require.NoError(t, err)

	return searcher, filingRepo, chunkRepo
}

func storeFiling(t *testing.T, repo storage.FilingRepository, accession, ticker string, form core.FormType, date time.Time) *core.Filing {
	t.Helper()

	filing := &core.Filing{
		CIK:             "0000320193",
		CompanyName:     "Apple Inc.",
		Ticker:          ticker,
		FormType:        form,
		FilingDate:      date,
		AccessionNumber: accession,
		FiscalYear:      date.Year(),
	}
	_, err := repo.AddFilings(context.Background(), filing)
	require.NoError(t, err)
	return filing
}

func storeChunk(t *testing.T, repo storage.ChunkRepository, filing *core.Filing, seq int, text string, vector []float32) *core.Chunk {
	t.Helper()

	chunk := &core.Chunk{
		Id:         core.ChunkID(filing.AccessionNumber, seq),
		FilingId:   filing.Id,
		Seq:        seq,
		Text:       text,
		TokenCount: 10,
		CharStart:  0,
		CharEnd:    len(text),
		Vector:     vector,
	}
	_, err := repo.AddChunks(context.Background(), chunk)
	require.NoError(t, err)
	return chunk
}

func TestNewSearcher_Validation(t *testing.T) {
	filingRepo, chunkRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	provider := mock.NewMockProvider()

	_, err = NewSearcher(nil, chunkRepo, provider)
	assert.ErrorIs(t, err, ErrFilingRepositoryRequired)

	_, err = NewSearcher(filingRepo, nil, provider)
	assert.ErrorIs(t, err, ErrChunkRepositoryRequired)

	_, err = NewSearcher(filingRepo, chunkRepo, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}

func TestSearch_NoChunks(t *testing.T) {
	searcher, _, _ := newTestSearcher(t, mock.NewMockEmbedder())

	results, err := searcher.Search(context.Background(), "revenue growth", 10, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_RanksBySimilarity(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}
	searcher, filingRepo, chunkRepo := newTestSearcher(t, embedder)

	filing := storeFiling(t, filingRepo, "acc-1", "AAPL", core.FormType10K,
		time.Date(2023, 11, 3, 0, 0, 0, 0, time.UTC))

	storeChunk(t, chunkRepo, filing, 0, "close match text", []float32{0.99, 0.14, 0})
	storeChunk(t, chunkRepo, filing, 1, "exact match text", []float32{1, 0, 0})
	storeChunk(t, chunkRepo, filing, 2, "orthogonal text", []float32{0, 1, 0})

	results, err := searcher.Search(context.Background(), "query", 10, nil)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "exact match text", results[0].Chunk.Text)
	assert.Equal(t, "close match text", results[1].Chunk.Text)
	assert.Greater(t, results[0].Score, results[1].Score)
	assert.Equal(t, filing.Id, results[0].Filing.Id)
}

func TestSearch_VerbatimBoost(t *testing.T) {
	embedder := fixedEmbedder([]float32{1, 0, 0})
	searcher, filingRepo, chunkRepo := newTestSearcher(t, embedder)

	filing := storeFiling(t, filingRepo, "acc-1", "AAPL", core.FormType10K,
		time.Date(2023, 11, 3, 0, 0, 0, 0, time.UTC))

	storeChunk(t, chunkRepo, filing, 0,
		"iPhone revenue increased strongly this quarter", []float32{1, 0, 0})
	storeChunk(t, chunkRepo, filing, 1,
		"services segment grew modestly", []float32{1, 0, 0})

	results, err := searcher.Search(context.Background(), "iPhone revenue", 10, nil)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Contains(t, results[0].Chunk.Text, "iPhone revenue")
	assert.InDelta(t, 1.3, results[0].Score, 0.001)
	assert.InDelta(t, 1.0, results[1].Score, 0.001)
}

func TestSearch_MaxHits(t *testing.T) {
	embedder := fixedEmbedder([]float32{1, 0, 0})
	searcher, filingRepo, chunkRepo := newTestSearcher(t, embedder)

	filing := storeFiling(t, filingRepo, "acc-1", "AAPL", core.FormType10K,
		time.Date(2023, 11, 3, 0, 0, 0, 0, time.UTC))

	for i := 0; i < 5; i++ {
		storeChunk(t, chunkRepo, filing, i, "filing text", []float32{1, 0, 0})
	}

	results, err := searcher.Search(context.Background(), "query", 2, nil)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearch_FilterByForm(t *testing.T) {
	embedder := fixedEmbedder([]float32{1, 0, 0})
	searcher, filingRepo, chunkRepo := newTestSearcher(t, embedder)

	annual := storeFiling(t, filingRepo, "acc-10k", "AAPL", core.FormType10K,
		time.Date(2023, 11, 3, 0, 0, 0, 0, time.UTC))
	current := storeFiling(t, filingRepo, "acc-8k", "AAPL", core.FormType8K,
		time.Date(2023, 8, 4, 0, 0, 0, 0, time.UTC))

	storeChunk(t, chunkRepo, annual, 0, "annual report text", []float32{1, 0, 0})
	storeChunk(t, chunkRepo, current, 0, "current report text", []float32{1, 0, 0})

	results, err := searcher.Search(context.Background(), "query", 10,
		&Filter{Form: core.FormType8K})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, core.FormType8K, results[0].Filing.FormType)
}

func TestSearch_FilterByDateRange(t *testing.T) {
	embedder := fixedEmbedder([]float32{1, 0, 0})
	searcher, filingRepo, chunkRepo := newTestSearcher(t, embedder)

	older := storeFiling(t, filingRepo, "acc-2020", "AAPL", core.FormType10K,
		time.Date(2020, 10, 30, 0, 0, 0, 0, time.UTC))
	newer := storeFiling(t, filingRepo, "acc-2023", "AAPL", core.FormType10K,
		time.Date(2023, 11, 3, 0, 0, 0, 0, time.UTC))

	storeChunk(t, chunkRepo, older, 0, "old filing text", []float32{1, 0, 0})
	storeChunk(t, chunkRepo, newer, 0, "new filing text", []float32{1, 0, 0})

	results, err := searcher.Search(context.Background(), "query", 10, &Filter{
		From: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "acc-2023", results[0].Filing.AccessionNumber)
}

func TestSearch_FilterByTicker(t *testing.T) {
	embedder := fixedEmbedder([]float32{1, 0, 0})
	searcher, filingRepo, chunkRepo := newTestSearcher(t, embedder)

	apple := storeFiling(t, filingRepo, "acc-aapl", "AAPL", core.FormType10K,
		time.Date(2023, 11, 3, 0, 0, 0, 0, time.UTC))

	msft := &core.Filing{
		CIK:             "0000789019",
		CompanyName:     "Microsoft Corporation",
		Ticker:          "MSFT",
		FormType:        core.FormType10K,
		FilingDate:      time.Date(2023, 7, 27, 0, 0, 0, 0, time.UTC),
		AccessionNumber: "acc-msft",
		FiscalYear:      2023,
	}
	_, err := filingRepo.AddFilings(context.Background(), msft)
	require.NoError(t, err)

	storeChunk(t, chunkRepo, apple, 0, "apple filing text", []float32{1, 0, 0})
	storeChunk(t, chunkRepo, msft, 0, "microsoft filing text", []float32{1, 0, 0})

	results, err := searcher.Search(context.Background(), "query", 10,
		&Filter{Ticker: "MSFT"})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "Microsoft Corporation", results[0].Filing.CompanyName)
}

func TestSearch_MinSimilarityOption(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}
	searcher, filingRepo, chunkRepo := newTestSearcher(t, embedder,
		WithMinSimilarity(0.9))

	filing := storeFiling(t, filingRepo, "acc-1", "AAPL", core.FormType10K,
		time.Date(2023, 11, 3, 0, 0, 0, 0, time.UTC))

	storeChunk(t, chunkRepo, filing, 0, "strong match", []float32{1, 0, 0})
	storeChunk(t, chunkRepo, filing, 1, "weak match", []float32{0.6, 0.8, 0})

	results, err := searcher.Search(context.Background(), "query", 10, nil)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "strong match", results[0].Chunk.Text)
}

func TestSearch_MonitorCallbacks(t *testing.T) {
	embedder := fixedEmbedder([]float32{1, 0, 0})
	searcher, filingRepo, chunkRepo := newTestSearcher(t, embedder)

	filing := storeFiling(t, filingRepo, "acc-1", "AAPL", core.FormType10K,
		time.Date(2023, 11, 3, 0, 0, 0, 0, time.UTC))
	storeChunk(t, chunkRepo, filing, 0, "quarterly revenue report", []float32{1, 0, 0})

	monitor := &recordingMonitor{}
	results, err := searcher.SearchWithMonitor(context.Background(),
		"quarterly revenue", 10, nil, monitor)
	require.NoError(t, err)

	assert.Equal(t, "quarterly revenue", monitor.query)
	assert.Len(t, monitor.semanticIds, 1)
	assert.Len(t, monitor.filings, 1)
	assert.Equal(t, 1, monitor.boosts)
	assert.Equal(t, results, monitor.results)
}

type recordingMonitor struct {
	query       string
	semanticIds []uint64
	filings     []*core.Filing
	filtered    int
	boosts      int
	results     []*core.SearchResult
}

func (m *recordingMonitor) Start(query string)                  { m.query = query }
func (m *recordingMonitor) AfterSemanticSearch(ids []uint64)    { m.semanticIds = ids }
func (m *recordingMonitor) AfterFilingJoin(f []*core.Filing)    { m.filings = f }
func (m *recordingMonitor) FilteredOut(_ *core.Chunk)           { m.filtered++ }
func (m *recordingMonitor) VerbatimBoost(_ *core.Chunk)         { m.boosts++ }
func (m *recordingMonitor) Finish(r []*core.SearchResult)       { m.results = r }

func TestContainsAllQueryWords(t *testing.T) {
	tests := []struct {
		name     string
		document string
		query    string
		expected bool
	}{
		{"all words present", "Revenue increased due to iPhone sales", "iphone revenue", true},
		{"missing word", "Revenue increased this quarter", "iphone revenue", false},
		{"stop words ignored", "Revenue increased", "the revenue", true},
		{"empty query", "some document", "the a an", false},
		{"punctuation trimmed", "Revenue, increased.", "revenue increased", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, containsAllQueryWords(tt.document, tt.query))
		})
	}
}
