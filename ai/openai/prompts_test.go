package openai

import (
	"strings"
	"testing"

	"github.com/poiesic/secrag/ai"
	"github.com/stretchr/testify/assert"
)

func TestBuildContextPrompt(t *testing.T) {
	filing := ai.FilingContext{
		CompanyName: "Apple Inc.",
		Ticker:      "AAPL",
		FormType:    "10-K",
		FilingDate:  "2024-11-01",
		FiscalYear:  2024,
	}

	prompt := buildContextPrompt(filing, "Net sales increased 2% during 2024.")

	assert.Contains(t, prompt, "Apple Inc. (AAPL)")
	assert.Contains(t, prompt, "Form type: 10-K")
	assert.Contains(t, prompt, "Filing date: 2024-11-01")
	assert.Contains(t, prompt, "Net sales increased 2% during 2024.")
}

func TestBuildContextPrompt_NoTicker(t *testing.T) {
	filing := ai.FilingContext{
		CompanyName: "Enron Corp",
		FormType:    "10-K",
		FilingDate:  "2000-03-30",
		FiscalYear:  1999,
	}

	prompt := buildContextPrompt(filing, "chunk text")
	assert.Contains(t, prompt, "Company: Enron Corp\n")
	assert.NotContains(t, prompt, "()")
}

func TestBuildAnswerPrompt(t *testing.T) {
	passages := []ai.Passage{
		{Source: "Apple Inc. 10-K filed 2024-11-01", Score: 0.87, Text: "Risk factors include supply chain disruption."},
		{Source: "Apple Inc. 10-Q filed 2024-08-02", Score: 0.72, Text: "Quarterly revenue grew."},
	}

	prompt := buildAnswerPrompt("What risks did Apple disclose?", passages)

	assert.Contains(t, prompt, "Question: What risks did Apple disclose?")
	assert.Contains(t, prompt, "[1] Apple Inc. 10-K filed 2024-11-01 (relevance 0.87)")
	assert.Contains(t, prompt, "[2] Apple Inc. 10-Q filed 2024-08-02")
	assert.Contains(t, prompt, "supply chain disruption")
}

func TestBuildAnswerPrompt_TruncatesLongPassages(t *testing.T) {
	long := strings.Repeat("a", 2000)
	passages := []ai.Passage{
		{Source: "src", Score: 0.9, Text: long},
	}

	prompt := buildAnswerPrompt("q", passages)
	assert.Contains(t, prompt, strings.Repeat("a", passageExcerptLimit)+"...")
	assert.NotContains(t, prompt, strings.Repeat("a", passageExcerptLimit+1))
}

func TestNormalizeVector(t *testing.T) {
	v := NormalizeVector([]float32{3, 4})
	assert.InDelta(t, 0.6, v[0], 0.0001)
	assert.InDelta(t, 0.8, v[1], 0.0001)

	// Zero vector unchanged
	z := NormalizeVector([]float32{0, 0, 0})
	assert.Equal(t, []float32{0, 0, 0}, z)

	// Unit norm after normalization
	u := NormalizeVector([]float32{0.2, -0.5, 0.7, 0.1})
	var sum float32
	for _, x := range u {
		sum += x * x
	}
	assert.InDelta(t, 1.0, sum, 0.0001)
}
