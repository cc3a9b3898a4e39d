package storage

import (
	"testing"
	"time"

	"github.com/poiesic/secrag/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.FilingID("0000320193-24-000123")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotNil(t, data)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.Error(t, err)
}

func TestMarshalUnmarshalFiling(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	filing := &core.Filing{
		Id:              core.FilingID("0000320193-24-000123"),
		CIK:             "0000320193",
		CompanyName:     "Apple Inc.",
		Ticker:          "AAPL",
		FormType:        core.FormType10K,
		FilingDate:      time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
		AccessionNumber: "0000320193-24-000123",
		FiscalYear:      2024,
		GrossFileSize:   10_485_760,
		NetFileSize:     1_048_576,
		SourceFile:      "20241101_10-K_edgar_data_320193_0000320193-24-000123.txt",
		Items:           []string{"5.02", "8.01"},
		InsertedAt:      now,
		UpdatedAt:       now,
	}

	data := MarshalFiling(filing)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalFiling(data)
	require.NoError(t, err)
	require.NotNil(t, decoded)

	assert.Equal(t, filing.Id, decoded.Id)
	assert.Equal(t, filing.CIK, decoded.CIK)
	assert.Equal(t, filing.CompanyName, decoded.CompanyName)
	assert.Equal(t, filing.FormType, decoded.FormType)
	assert.True(t, filing.FilingDate.Equal(decoded.FilingDate))
	assert.Equal(t, filing.AccessionNumber, decoded.AccessionNumber)
	assert.Equal(t, filing.Items, decoded.Items)
	assert.True(t, filing.InsertedAt.Equal(decoded.InsertedAt))
}

func TestUnmarshalFiling_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"invalid data", []byte{0xFF, 0xFF, 0xFF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalFiling(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestMarshalUnmarshalChunk(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name  string
		chunk *core.Chunk
	}{
		{
			name: "chunk without vector",
			chunk: &core.Chunk{
				Id:         core.ChunkID("0000320193-24-000123", 0),
				FilingId:   core.FilingID("0000320193-24-000123"),
				Seq:        0,
				Text:       "PART I. Item 1. Business.",
				TokenCount: 9,
				CharStart:  0,
				CharEnd:    25,
				InsertedAt: now,
				UpdatedAt:  now,
			},
		},
		{
			name: "chunk with context and vector",
			chunk: &core.Chunk{
				Id:             core.ChunkID("0000320193-24-000123", 7),
				FilingId:       core.FilingID("0000320193-24-000123"),
				Seq:            7,
				Text:           "Net sales increased 2% or $7.6 billion during 2024.",
				ContextSummary: "Results of operations from Apple's FY2024 annual report.",
				TokenCount:     14,
				CharStart:      31250,
				CharEnd:        31302,
				Vector:         []float32{0.1, -0.2, 0.3, 0.4, -0.5},
				InsertedAt:     now,
				UpdatedAt:      now,
			},
		},
		{
			name: "chunk with full-size embedding",
			chunk: &core.Chunk{
				Id:         core.ChunkID("0001564590-20-019726", 3),
				FilingId:   core.FilingID("0001564590-20-019726"),
				Seq:        3,
				Text:       "The Company recorded an impairment charge.",
				TokenCount: 8,
				Vector:     make([]float32, 768),
				InsertedAt: now,
				UpdatedAt:  now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalChunk(tt.chunk)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalChunk(data)
			require.NoError(t, err)
			require.NotNil(t, decoded)

			assert.Equal(t, tt.chunk.Id, decoded.Id)
			assert.Equal(t, tt.chunk.FilingId, decoded.FilingId)
			assert.Equal(t, tt.chunk.Seq, decoded.Seq)
			assert.Equal(t, tt.chunk.Text, decoded.Text)
			assert.Equal(t, tt.chunk.ContextSummary, decoded.ContextSummary)
			assert.Equal(t, tt.chunk.TokenCount, decoded.TokenCount)
			assert.True(t, tt.chunk.InsertedAt.Equal(decoded.InsertedAt))
			// Handle nil vs empty slice
			if len(tt.chunk.Vector) == 0 {
				assert.Empty(t, decoded.Vector)
			} else {
				assert.Equal(t, tt.chunk.Vector, decoded.Vector)
			}
		})
	}
}

func TestUnmarshalChunk_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"invalid data", []byte{0xFF, 0xFF, 0xFF}},
		{"partial data", []byte{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalChunk(tt.data)
			assert.Error(t, err)
		})
	}
}
