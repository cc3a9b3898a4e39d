package core

import (
	"math"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the domain types. The types are small and
// stable, so maintaining these by hand is cheaper than carrying generated code.
var (
	IDMUS     = idMUS{}
	FilingMUS = filingMUS{}
	ChunkMUS  = chunkMUS{}
)

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idMUS) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

type filingMUS struct{}

func (filingMUS) Marshal(f Filing, bs []byte) (n int) {
	n = IDMUS.Marshal(f.Id, bs)
	n += ord.String.Marshal(f.CIK, bs[n:])
	n += ord.String.Marshal(f.CompanyName, bs[n:])
	n += ord.String.Marshal(f.Ticker, bs[n:])
	n += varint.Int.Marshal(int(f.FormType), bs[n:])
	n += marshalTime(f.FilingDate, bs[n:])
	n += ord.String.Marshal(f.AccessionNumber, bs[n:])
	n += varint.Int.Marshal(f.FiscalYear, bs[n:])
	n += varint.Int64.Marshal(f.GrossFileSize, bs[n:])
	n += varint.Int64.Marshal(f.NetFileSize, bs[n:])
	n += ord.String.Marshal(f.SourceFile, bs[n:])
	n += marshalStrings(f.Items, bs[n:])
	n += marshalTime(f.InsertedAt, bs[n:])
	n += marshalTime(f.UpdatedAt, bs[n:])
	return n
}

func (filingMUS) Unmarshal(bs []byte) (f Filing, n int, err error) {
	var n1 int
	if f.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if f.CIK, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return f, n + n1, err
	}
	n += n1
	if f.CompanyName, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return f, n + n1, err
	}
	n += n1
	if f.Ticker, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return f, n + n1, err
	}
	n += n1
	var form int
	if form, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return f, n + n1, err
	}
	f.FormType = FormType(form)
	n += n1
	if f.FilingDate, n1, err = unmarshalTime(bs[n:]); err != nil {
		return f, n + n1, err
	}
	n += n1
	if f.AccessionNumber, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return f, n + n1, err
	}
	n += n1
	if f.FiscalYear, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return f, n + n1, err
	}
	n += n1
	if f.GrossFileSize, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return f, n + n1, err
	}
	n += n1
	if f.NetFileSize, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return f, n + n1, err
	}
	n += n1
	if f.SourceFile, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return f, n + n1, err
	}
	n += n1
	if f.Items, n1, err = unmarshalStrings(bs[n:]); err != nil {
		return f, n + n1, err
	}
	n += n1
	if f.InsertedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return f, n + n1, err
	}
	n += n1
	if f.UpdatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return f, n + n1, err
	}
	n += n1
	return f, n, nil
}

func (filingMUS) Size(f Filing) (size int) {
	size = IDMUS.Size(f.Id)
	size += ord.String.Size(f.CIK)
	size += ord.String.Size(f.CompanyName)
	size += ord.String.Size(f.Ticker)
	size += varint.Int.Size(int(f.FormType))
	size += sizeTime(f.FilingDate)
	size += ord.String.Size(f.AccessionNumber)
	size += varint.Int.Size(f.FiscalYear)
	size += varint.Int64.Size(f.GrossFileSize)
	size += varint.Int64.Size(f.NetFileSize)
	size += ord.String.Size(f.SourceFile)
	size += sizeStrings(f.Items)
	size += sizeTime(f.InsertedAt)
	size += sizeTime(f.UpdatedAt)
	return size
}

type chunkMUS struct{}

func (chunkMUS) Marshal(c Chunk, bs []byte) (n int) {
	n = IDMUS.Marshal(c.Id, bs)
	n += IDMUS.Marshal(c.FilingId, bs[n:])
	n += varint.Int.Marshal(c.Seq, bs[n:])
	n += ord.String.Marshal(c.Text, bs[n:])
	n += ord.String.Marshal(c.ContextSummary, bs[n:])
	n += varint.Int.Marshal(c.TokenCount, bs[n:])
	n += varint.Int.Marshal(c.CharStart, bs[n:])
	n += varint.Int.Marshal(c.CharEnd, bs[n:])
	n += marshalVector(c.Vector, bs[n:])
	n += marshalTime(c.InsertedAt, bs[n:])
	n += marshalTime(c.UpdatedAt, bs[n:])
	return n
}

func (chunkMUS) Unmarshal(bs []byte) (c Chunk, n int, err error) {
	var n1 int
	if c.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if c.FilingId, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Seq, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Text, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.ContextSummary, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.TokenCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.CharStart, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.CharEnd, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Vector, n1, err = unmarshalVector(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.InsertedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.UpdatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	return c, n, nil
}

func (chunkMUS) Size(c Chunk) (size int) {
	size = IDMUS.Size(c.Id)
	size += IDMUS.Size(c.FilingId)
	size += varint.Int.Size(c.Seq)
	size += ord.String.Size(c.Text)
	size += ord.String.Size(c.ContextSummary)
	size += varint.Int.Size(c.TokenCount)
	size += varint.Int.Size(c.CharStart)
	size += varint.Int.Size(c.CharEnd)
	size += sizeVector(c.Vector)
	size += sizeTime(c.InsertedAt)
	size += sizeTime(c.UpdatedAt)
	return size
}

// Timestamps are stored as microseconds since the Unix epoch, matching the
// precision of the storage date indexes.

func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	v, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(v).UTC(), n, nil
}

func sizeTime(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

func marshalVector(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, val := range v {
		n += varint.Uint32.Marshal(math.Float32bits(val), bs[n:])
	}
	return n
}

func unmarshalVector(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	v = make([]float32, length)
	var n1 int
	for i := 0; i < length; i++ {
		var bits uint32
		if bits, n1, err = varint.Uint32.Unmarshal(bs[n:]); err != nil {
			return nil, n + n1, err
		}
		v[i] = math.Float32frombits(bits)
		n += n1
	}
	return v, n, nil
}

func sizeVector(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, val := range v {
		size += varint.Uint32.Size(math.Float32bits(val))
	}
	return size
}

func marshalStrings(ss []string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(ss), bs)
	for _, s := range ss {
		n += ord.String.Marshal(s, bs[n:])
	}
	return n
}

func unmarshalStrings(bs []byte) (ss []string, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	ss = make([]string, length)
	var n1 int
	for i := 0; i < length; i++ {
		if ss[i], n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return nil, n + n1, err
		}
		n += n1
	}
	return ss, n, nil
}

func sizeStrings(ss []string) (size int) {
	size = varint.Int.Size(len(ss))
	for _, s := range ss {
		size += ord.String.Size(s)
	}
	return size
}
