package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/secrag/core"
)

// Key prefixes for different data types
const (
	filingRecordPrefix    = "filrec"
	filingAccessionPrefix = "filacc"
	filingCIKPrefix       = "filcik"
	filingFormPrefix      = "filform"
	filingDatePrefix      = "fildate"
	chunkRecordPrefix     = "chkrec"
	chunkFilingPrefix     = "chkfil"
)

// makeFilingKey generates a key for a filing by ID.
func makeFilingKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", filingRecordPrefix, id))
}

// makeAccessionKey generates a key for the accession number index.
func makeAccessionKey(accession string) []byte {
	return []byte(fmt.Sprintf("%s:%s", filingAccessionPrefix, accession))
}

// makeFilingCIKKey generates a composite key for the CIK index.
// Format: prefix:cik:filingDate:id
func makeFilingCIKKey(cik string, filingDate time.Time, id core.ID) []byte {
	prefix := filingCIKPrefix + ":" + cik + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+16)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(filingDate.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialFilingCIKKey generates a partial key for CIK prefix scans.
func makePartialFilingCIKKey(cik string) []byte {
	return []byte(filingCIKPrefix + ":" + cik + ":")
}

// makeFilingFormKey generates a composite key for the form type index.
// Format: prefix:form:filingDate:id
func makeFilingFormKey(form core.FormType, filingDate time.Time, id core.ID) []byte {
	prefix := filingFormPrefix + ":" + form.String() + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+16)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(filingDate.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialFilingFormKey generates a partial key for form type prefix scans.
func makePartialFilingFormKey(form core.FormType) []byte {
	return []byte(filingFormPrefix + ":" + form.String() + ":")
}

// makeFilingDateKey generates a composite key for the date index.
// Format: prefix:filingDate:id
func makeFilingDateKey(filingDate time.Time, id core.ID) []byte {
	prefix := filingDatePrefix + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+16)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(filingDate.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialFilingDateKey generates a partial key for date range queries.
// Format: prefix:filingDate
func makePartialFilingDateKey(filingDate time.Time) []byte {
	prefix := filingDatePrefix + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(filingDate.UnixMicro()))
	return buf
}

// makeChunkKey generates a key for a chunk by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkRecordPrefix, id))
}

// makeChunkFilingKey generates a composite key for the filing index.
// Format: prefix:filingID:seq
// Seq is part of the key so prefix scans return chunks in document order.
func makeChunkFilingKey(filingID core.ID, seq int) []byte {
	prefix := chunkFilingPrefix + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+16)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(filingID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(seq))
	return buf
}

// makePartialChunkFilingKey generates a partial key for filing chunk scans.
func makePartialChunkFilingKey(filingID core.ID) []byte {
	prefix := chunkFilingPrefix + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(filingID))
	return buf
}
