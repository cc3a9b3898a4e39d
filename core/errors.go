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

import "errors"

// Domain validation errors
var (
	// ErrInvalidFiling indicates a Filing failed validation.
	ErrInvalidFiling = errors.New("invalid filing")

	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrInvalidFormType indicates an unrecognized SEC form type.
	ErrInvalidFormType = errors.New("invalid form type")

	// ErrInvalidFilingDate indicates a filing date is in the future.
	ErrInvalidFilingDate = errors.New("filing date cannot be in the future")

	// ErrEmptyAccession indicates the AccessionNumber field is empty.
	ErrEmptyAccession = errors.New("accession number cannot be empty")

	// ErrEmptyText indicates the chunk Text field is empty.
	ErrEmptyText = errors.New("chunk text cannot be empty")

	// ErrInvalidCharRange indicates a chunk character range is not ordered.
	ErrInvalidCharRange = errors.New("chunk character range must satisfy start <= end")

	// ErrInvalidVector indicates an embedding vector contains NaN or Inf values.
	ErrInvalidVector = errors.New("vector contains non-finite values")
)
