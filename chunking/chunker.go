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


package chunking

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// DefaultChunkSize is the token count per chunk.
	DefaultChunkSize = 500

	// encodingName is the BPE encoding used for token counting.
	encodingName = "cl100k_base"
)

// ErrEmptyText indicates there is no text to chunk.
var ErrEmptyText = errors.New("no text to chunk")

// Segment is one token-bounded slice of a document.
// Offsets are byte positions into the source text.
type Segment struct {
	Seq        int
	Text       string
	TokenCount int
	CharStart  int
	CharEnd    int
}

// Chunker splits documents into fixed-size token windows.
type Chunker struct {
	encoding  *tiktoken.Tiktoken
	chunkSize int
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithChunkSize sets the token count per segment.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		c.chunkSize = size
	}
}

// NewChunker creates a Chunker using the cl100k_base encoding.
func NewChunker(opts ...Option) (*Chunker, error) {
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", encodingName, err)
	}

	c := &Chunker{
		encoding:  encoding,
		chunkSize: DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", c.chunkSize)
	}

	return c, nil
}

// CountTokens returns the token count of text under the chunker's encoding.
func (c *Chunker) CountTokens(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}

// Split tokenizes the whole document and slices it into consecutive
// non-overlapping windows of the configured size. The final segment
// carries whatever tokens remain.
func (c *Chunker) Split(text string) ([]Segment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	tokens := c.encoding.Encode(text, nil, nil)

	segments := make([]Segment, 0, (len(tokens)+c.chunkSize-1)/c.chunkSize)
	charStart := 0
	for pos := 0; pos < len(tokens); pos += c.chunkSize {
		end := pos + c.chunkSize
		if end > len(tokens) {
			end = len(tokens)
		}

		segText := c.encoding.Decode(tokens[pos:end])
		segments = append(segments, Segment{
			Seq:        len(segments),
			Text:       segText,
			TokenCount: end - pos,
			CharStart:  charStart,
			CharEnd:    charStart + len(segText),
		})
		charStart += len(segText)
	}

	return segments, nil
}
