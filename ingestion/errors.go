package ingestion

import "errors"

var (
	// ErrFilingRepositoryRequired is returned when a filing repository is not provided.
	ErrFilingRepositoryRequired = errors.New("filing repository required")

	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")
)
