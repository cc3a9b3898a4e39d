// Package ingestion provides pipeline orchestration for processing filings.
//
// The Pipeline type manages the ingestion workflow for downloaded filings,
// including:
//   - Storing filing records and their token-windowed chunks
//   - Writing situating context summaries asynchronously
//   - Generating embeddings asynchronously, after summaries are in place
//
// Processing is performed concurrently using worker pools to maximize
// throughput. Errors during async processing are logged but do not fail
// the ingestion operation; Wait blocks until queued enrichment finishes.
package ingestion
