package ai

// FilingContext describes the document a chunk was taken from.
// It carries just enough metadata for a model to situate the chunk.
type FilingContext struct {
	// CompanyName is the registrant's conformed name, e.g. "Apple Inc.".
	CompanyName string

	// Ticker is the exchange symbol, if known.
	Ticker string

	// FormType is the SEC form label, e.g. "10-K", "10-Q", "8-K".
	FormType string

	// FilingDate is the filing date formatted as YYYY-MM-DD.
	FilingDate string

	// FiscalYear is the fiscal year the filing covers.
	FiscalYear int
}

// Passage is a retrieved piece of evidence handed to an Answerer.
type Passage struct {
	// Source identifies where the passage came from,
	// e.g. "Apple Inc. 10-K filed 2024-11-01".
	Source string

	// Score is the retrieval similarity score for the passage.
	Score float32

	// Text is the passage body.
	Text string
}
