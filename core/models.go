package core

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is derived from entity content so that re-ingesting the same filing
// produces the same identifiers.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// Identical content always produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// FormType identifies the kind of SEC disclosure filing.
type FormType int

const (
	// FormType10K is the annual report.
	FormType10K FormType = iota + 1
	// FormType10Q is the quarterly report.
	FormType10Q
	// FormType8K is the event-driven current report.
	FormType8K
)

// String returns the SEC form name, e.g. "10-K".
func (f FormType) String() string {
	switch f {
	case FormType10K:
		return "10-K"
	case FormType10Q:
		return "10-Q"
	case FormType8K:
		return "8-K"
	default:
		return fmt.Sprintf("FormType(%d)", int(f))
	}
}

// ParseFormType parses an SEC form name into a FormType.
// Amended variants ("10-K/A") map to their base form.
func ParseFormType(s string) (FormType, error) {
	switch s {
	case "10-K", "10-K/A":
		return FormType10K, nil
	case "10-Q", "10-Q/A":
		return FormType10Q, nil
	case "8-K", "8-K/A":
		return FormType8K, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormType, s)
	}
}

// Company describes a tracked SEC registrant.
type Company struct {
	CIK       string `json:"cik"`
	Ticker    string `json:"ticker"`
	Name      string `json:"name"`
	FraudCase bool   `json:"fraud_case,omitempty"`
}

// Filing represents a single SEC filing in the corpus.
// Identity is content-addressed from the accession number, which the SEC
// guarantees to be unique per filing.
type Filing struct {
	Id              ID
	CIK             string
	CompanyName     string
	Ticker          string
	FormType        FormType
	FilingDate      time.Time
	AccessionNumber string
	FiscalYear      int
	GrossFileSize   int64
	NetFileSize     int64
	SourceFile      string
	Items           []string // 8-K item numbers, e.g. "4.02"
	InsertedAt      time.Time
	UpdatedAt       time.Time
}

// FilingID returns the content-addressed ID for an accession number.
func FilingID(accessionNumber string) ID {
	return IDFromContent(accessionNumber)
}

// Chunk is a bounded-size segment of filing text, the unit of embedding
// and retrieval.
type Chunk struct {
	Id             ID
	FilingId       ID
	Seq            int
	Text           string
	ContextSummary string // situating summary, generated by an LLM
	TokenCount     int
	CharStart      int
	CharEnd        int
	Vector         []float32 // normalized embedding (populated by processors)
	InsertedAt     time.Time
	UpdatedAt      time.Time
}

// ChunkID returns the content-addressed ID for a chunk of a filing.
// Derived from the filing's ID rather than the accession string itself,
// so storage can reconstruct the same ID from a chunk's FilingId when
// no ID was assigned.
func ChunkID(accessionNumber string, seq int) ID {
	return IDFromContent(fmt.Sprintf("%d#%d", uint64(FilingID(accessionNumber)), seq))
}

// EmbeddingText returns the text that should be embedded for this chunk.
// When a context summary exists it is prepended, so the vector carries
// document-level context alongside the chunk itself.
func (c *Chunk) EmbeddingText() string {
	if c.ContextSummary == "" {
		return c.Text
	}
	return c.ContextSummary + "\n\n" + c.Text
}

// ChunkMatch represents a chunk match from vector similarity search.
type ChunkMatch struct {
	Chunk *Chunk
	Score float32
}

// SearchResult represents a retrieval result with its parent filing and
// relevance score.
type SearchResult struct {
	Chunk  *Chunk
	Filing *Filing
	Score  float32
}
