// Package chunking splits filing text into fixed-size token windows.
//
// Documents are tokenized once with the cl100k_base BPE encoding and
// sliced into consecutive 500-token segments with no overlap. Each
// segment records its byte offsets into the source text so retrieval
// results can point back into the original filing.
package chunking
