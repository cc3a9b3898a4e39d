// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"math"
	"time"
)

// ValidateFiling validates a Filing according to domain rules.
//
// Validation rules:
//   - AccessionNumber must not be empty
//   - FormType must be a known SEC form
//   - FilingDate must not be in the future
//
// NOT validated (populated during acquisition):
//   - CompanyName, Ticker, file sizes (header parsing is best-effort)
//   - ID (derived from AccessionNumber at storage time if zero)
func ValidateFiling(filing *Filing) error {
	if filing == nil {
		return fmt.Errorf("%w: filing is nil", ErrInvalidFiling)
	}

	if filing.AccessionNumber == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFiling, ErrEmptyAccession)
	}

	if err := ValidateFormType(filing.FormType); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFiling, err)
	}

	if !IsValidFilingDate(filing.FilingDate) {
		return fmt.Errorf("%w: %w", ErrInvalidFiling, ErrInvalidFilingDate)
	}

	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - TokenCount must be positive
//   - CharStart must not exceed CharEnd
//
// NOT validated (populated by processors):
//   - Vector (can be empty until the embedding processor runs)
//   - ContextSummary (can be empty until the context processor runs)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}

	if chunk.TokenCount <= 0 {
		return fmt.Errorf("%w: token count must be positive, got %d", ErrInvalidChunk, chunk.TokenCount)
	}

	if chunk.CharStart > chunk.CharEnd {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrInvalidCharRange)
	}

	return nil
}

// ValidateFormType validates that a FormType has a known value.
func ValidateFormType(form FormType) error {
	if form != FormType10K && form != FormType10Q && form != FormType8K {
		return fmt.Errorf("%w: value %d", ErrInvalidFormType, form)
	}
	return nil
}

// ValidateVector checks that an embedding vector is finite.
// An empty vector is valid (the chunk has not been embedded yet).
func ValidateVector(v []float32) error {
	for i, val := range v {
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: index %d", ErrInvalidVector, i)
		}
	}
	return nil
}

// IsValidFilingDate checks if a filing date is valid (not in the future).
func IsValidFilingDate(ts time.Time) bool {
	return !ts.After(time.Now())
}
