package badger

import (
	"context"
	"testing"

	"github.com/poiesic/secrag/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := t.TempDir()
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)

	assert.False(t, backend.IsClosed())

	err = backend.Close()
	require.NoError(t, err)

	assert.True(t, backend.IsClosed())
}

func TestFindSimilar_NoChunks(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	vector := []float32{0.1, 0.2, 0.3}

	results, err := backend.FindSimilar(ctx, vector, 0.5, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindSimilar_WithChunks(t *testing.T) {
	filingRepo, chunkRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		chunkRepo.Close()
		filingRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	filingID := core.FilingID("0000320193-24-000123")

	chunks := []*core.Chunk{
		{
			FilingId:   filingID,
			Seq:        0,
			Text:       "Revenue discussion",
			TokenCount: 2,
			Vector:     []float32{1.0, 0.0, 0.0}, // Very similar to query
		},
		{
			FilingId:   filingID,
			Seq:        1,
			Text:       "Segment results",
			TokenCount: 2,
			Vector:     []float32{0.9, 0.1, 0.0}, // Somewhat similar
		},
		{
			FilingId:   filingID,
			Seq:        2,
			Text:       "Legal proceedings",
			TokenCount: 2,
			Vector:     []float32{0.0, 0.0, 1.0}, // Not similar
		},
		{
			FilingId:   filingID,
			Seq:        3,
			Text:       "Not yet embedded",
			TokenCount: 3,
			Vector:     nil, // No vector - should be skipped
		},
	}

	added, err := chunkRepo.AddChunks(ctx, chunks...)
	require.NoError(t, err)
	require.Len(t, added, 4)

	queryVector := []float32{1.0, 0.0, 0.0}
	results, err := backend.FindSimilar(ctx, queryVector, 0.8, 10)
	require.NoError(t, err)

	require.NotEmpty(t, results)

	// Results should be sorted by score descending
	for i := 0; i < len(results)-1; i++ {
		assert.GreaterOrEqual(t, results[i].Score, results[i+1].Score)
	}

	assert.Equal(t, "Revenue discussion", results[0].Chunk.Text)
	assert.Greater(t, results[0].Score, float32(0.8))
}

func TestFindSimilar_ThresholdFiltering(t *testing.T) {
	filingRepo, chunkRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		chunkRepo.Close()
		filingRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	filingID := core.FilingID("0000320193-24-000123")

	chunks := []*core.Chunk{
		{FilingId: filingID, Seq: 0, Text: "High similarity", TokenCount: 2, Vector: []float32{1.0, 0.0, 0.0}},
		{FilingId: filingID, Seq: 1, Text: "Medium similarity", TokenCount: 2, Vector: []float32{0.7, 0.3, 0.0}},
		{FilingId: filingID, Seq: 2, Text: "Low similarity", TokenCount: 2, Vector: []float32{0.3, 0.7, 0.0}},
	}

	_, err = chunkRepo.AddChunks(ctx, chunks...)
	require.NoError(t, err)

	queryVector := []float32{1.0, 0.0, 0.0}

	t.Run("high threshold", func(t *testing.T) {
		results, err := backend.FindSimilar(ctx, queryVector, 0.95, 10)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(results), 1)
	})

	t.Run("medium threshold", func(t *testing.T) {
		results, err := backend.FindSimilar(ctx, queryVector, 0.6, 10)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(results), 2)
	})

	t.Run("low threshold", func(t *testing.T) {
		results, err := backend.FindSimilar(ctx, queryVector, 0.2, 10)
		require.NoError(t, err)
		assert.Equal(t, 3, len(results))
	})
}

func TestFindSimilar_LimitResults(t *testing.T) {
	filingRepo, chunkRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		chunkRepo.Close()
		filingRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	filingID := core.FilingID("0000320193-24-000123")

	chunks := make([]*core.Chunk, 10)
	for i := 0; i < 10; i++ {
		chunks[i] = &core.Chunk{
			FilingId:   filingID,
			Seq:        i,
			Text:       "Chunk text",
			TokenCount: 2,
			Vector:     []float32{0.9, 0.1, 0.0}, // All similar
		}
	}

	_, err = chunkRepo.AddChunks(ctx, chunks...)
	require.NoError(t, err)

	queryVector := []float32{1.0, 0.0, 0.0}

	t.Run("limit to 3", func(t *testing.T) {
		results, err := backend.FindSimilar(ctx, queryVector, 0.5, 3)
		require.NoError(t, err)
		assert.Len(t, results, 3)
	})

	t.Run("limit higher than results", func(t *testing.T) {
		results, err := backend.FindSimilar(ctx, queryVector, 0.5, 100)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(results), 10)
	})
}

func TestDotProduct(t *testing.T) {
	tests := []struct {
		name     string
		a        []float32
		b        []float32
		expected float32
	}{
		{
			name:     "identical vectors",
			a:        []float32{1.0, 0.0, 0.0},
			b:        []float32{1.0, 0.0, 0.0},
			expected: 1.0,
		},
		{
			name:     "orthogonal vectors",
			a:        []float32{1.0, 0.0, 0.0},
			b:        []float32{0.0, 1.0, 0.0},
			expected: 0.0,
		},
		{
			name:     "opposite vectors",
			a:        []float32{1.0, 0.0, 0.0},
			b:        []float32{-1.0, 0.0, 0.0},
			expected: -1.0,
		},
		{
			name:     "general case",
			a:        []float32{0.6, 0.8},
			b:        []float32{0.8, 0.6},
			expected: 0.96, // 0.6*0.8 + 0.8*0.6 = 0.48 + 0.48 = 0.96
		},
		{
			name:     "different lengths - use min",
			a:        []float32{1.0, 2.0, 3.0},
			b:        []float32{1.0, 2.0},
			expected: 5.0, // 1*1 + 2*2 = 5
		},
		{
			name:     "empty vectors",
			a:        []float32{},
			b:        []float32{},
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := dotProduct(tt.a, tt.b)
			assert.InDelta(t, tt.expected, result, 0.0001)
		})
	}
}

func TestWithTransaction(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	t.Run("successful transaction", func(t *testing.T) {
		err := backend.WithTransaction(ctx, func(ctx context.Context) error {
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("failed transaction", func(t *testing.T) {
		testErr := assert.AnError
		err := backend.WithTransaction(ctx, func(ctx context.Context) error {
			return testErr
		})
		assert.Equal(t, testErr, err)
	})
}
