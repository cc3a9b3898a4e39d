package core

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validFiling() *Filing {
	return &Filing{
		CIK:             "0000320193",
		CompanyName:     "Apple Inc.",
		Ticker:          "AAPL",
		FormType:        FormType10K,
		FilingDate:      time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
		AccessionNumber: "0000320193-24-000123",
		FiscalYear:      2024,
	}
}

func TestValidateFiling_Valid(t *testing.T) {
	require.NoError(t, ValidateFiling(validFiling()))
}

func TestValidateFiling_Nil(t *testing.T) {
	err := ValidateFiling(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFiling)
}

func TestValidateFiling_EmptyAccession(t *testing.T) {
	filing := validFiling()
	filing.AccessionNumber = ""
	err := ValidateFiling(filing)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyAccession)
}

func TestValidateFiling_BadFormType(t *testing.T) {
	filing := validFiling()
	filing.FormType = FormType(42)
	err := ValidateFiling(filing)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFormType)
}

func TestValidateFiling_FutureDate(t *testing.T) {
	filing := validFiling()
	filing.FilingDate = time.Now().Add(48 * time.Hour)
	err := ValidateFiling(filing)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFilingDate)
}

func TestValidateChunk_Valid(t *testing.T) {
	chunk := &Chunk{
		Text:       "Item 1A. Risk Factors.",
		TokenCount: 7,
		CharStart:  0,
		CharEnd:    22,
	}
	require.NoError(t, ValidateChunk(chunk))
}

func TestValidateChunk_EmptyText(t *testing.T) {
	chunk := &Chunk{TokenCount: 1}
	err := ValidateChunk(chunk)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestValidateChunk_ZeroTokens(t *testing.T) {
	chunk := &Chunk{Text: "x"}
	err := ValidateChunk(chunk)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidChunk)
}

func TestValidateChunk_BadCharRange(t *testing.T) {
	chunk := &Chunk{Text: "x", TokenCount: 1, CharStart: 10, CharEnd: 5}
	err := ValidateChunk(chunk)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCharRange)
}

func TestValidateVector(t *testing.T) {
	require.NoError(t, ValidateVector(nil))
	require.NoError(t, ValidateVector([]float32{0.1, -0.5, 0.9}))

	err := ValidateVector([]float32{0.1, float32(math.NaN())})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidVector)

	err = ValidateVector([]float32{float32(math.Inf(1))})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidVector)
}
