package search

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/poiesic/secrag/ai"
	"github.com/poiesic/secrag/core"
	"github.com/poiesic/secrag/storage"
)

// DefaultMinSimilarity is the cosine similarity floor for semantic matches.
const DefaultMinSimilarity = 0.35

// filterOverFetch is the multiplier applied to the candidate limit when
// a metadata filter is active, so filtering still leaves enough hits.
const filterOverFetch = 4

// Filter restricts search results by filing metadata.
// Zero-valued fields are ignored.
type Filter struct {
	Ticker string
	CIK    string
	Form   core.FormType
	From   time.Time
	To     time.Time
}

func (f *Filter) matches(filing *core.Filing) bool {
	if f == nil {
		return true
	}
	if f.Ticker != "" && filing.Ticker != f.Ticker {
		return false
	}
	if f.CIK != "" && filing.CIK != f.CIK {
		return false
	}
	if f.Form != 0 && filing.FormType != f.Form {
		return false
	}
	if !f.From.IsZero() && filing.FilingDate.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !filing.FilingDate.Before(f.To) {
		return false
	}
	return true
}

// Searcher provides semantic search over filing chunks.
type Searcher struct {
	filingRepository storage.FilingRepository
	chunkRepository  storage.ChunkRepository
	embedder         ai.Embedder
	minSimilarity    float32
	logger           *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMinSimilarity sets the similarity floor for semantic matches.
func WithMinSimilarity(min float32) Option {
	return func(s *Searcher) error {
		s.minSimilarity = min
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	filingRepository storage.FilingRepository,
	chunkRepository storage.ChunkRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Searcher, error) {
	if filingRepository == nil {
		return nil, ErrFilingRepositoryRequired
	}
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		filingRepository: filingRepository,
		chunkRepository:  chunkRepository,
		embedder:         provider.Embedder(),
		minSimilarity:    DefaultMinSimilarity,
		logger:           slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search finds chunks similar to the query.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) Search(ctx context.Context, query string, maxHits int, filter *Filter) ([]*core.SearchResult, error) {
	return s.SearchWithMonitor(ctx, query, maxHits, filter, nil)
}

// SearchWithMonitor finds chunks similar to the query with monitoring.
// The monitor receives callbacks at each stage of the search process.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, maxHits int, filter *Filter, monitor SearchMonitor) ([]*core.SearchResult, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	// Over-fetch when a filter is active so post-filtering still fills maxHits.
	limit := maxHits
	if filter != nil {
		limit = maxHits * filterOverFetch
	}

	matches, err := s.chunkRepository.FindSimilar(ctx, embedding, s.minSimilarity, limit)
	if err != nil {
		s.logger.Error("error querying for similar chunks", "err", err)
		return nil, err
	}

	matchIds := make([]uint64, 0, len(matches))
	filingIds := make(map[core.ID]bool)
	for _, match := range matches {
		matchIds = append(matchIds, uint64(match.Chunk.Id))
		filingIds[match.Chunk.FilingId] = true
	}
	monitor.AfterSemanticSearch(matchIds)

	if len(matches) == 0 {
		return []*core.SearchResult{}, nil
	}

	// Join chunks to their filings for metadata and filtering.
	uniqueIds := make([]core.ID, 0, len(filingIds))
	for id := range filingIds {
		uniqueIds = append(uniqueIds, id)
	}

	filings, err := s.filingRepository.GetFilings(ctx, uniqueIds...)
	if err != nil {
		s.logger.Error("error retrieving filings", "filingCount", len(uniqueIds), "err", err)
		return nil, err
	}
	monitor.AfterFilingJoin(filings)

	filingsById := make(map[core.ID]*core.Filing, len(filings))
	for _, filing := range filings {
		filingsById[filing.Id] = filing
	}

	results := make([]*core.SearchResult, 0, len(matches))
	for _, match := range matches {
		filing, ok := filingsById[match.Chunk.FilingId]
		if !ok {
			s.logger.Warn("chunk references missing filing",
				"chunk", match.Chunk.Id, "filing", match.Chunk.FilingId)
			continue
		}

		if !filter.matches(filing) {
			monitor.FilteredOut(match.Chunk)
			continue
		}

		score := match.Score
		// Apply verbatim match boost
		if containsAllQueryWords(match.Chunk.Text, query) {
			score += 0.3
			monitor.VerbatimBoost(match.Chunk)
		}

		results = append(results, &core.SearchResult{
			Chunk:  match.Chunk,
			Filing: filing,
			Score:  score,
		})
	}

	// Sort by score descending
	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > maxHits {
		results = results[:maxHits]
	}
	monitor.Finish(results)

	return results, nil
}
