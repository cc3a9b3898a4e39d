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


package ingestion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/poiesic/secrag/core"
	"github.com/poiesic/secrag/edgar"
)

// ParseFilingFile builds a filing record and its body text from a
// downloaded filing file. Metadata comes from the filename and the
// embedded header; the ticker is resolved through the lookup when one
// is provided.
func ParseFilingFile(path string, tickers map[string]string) (*core.Filing, string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read filing file: %w", err)
	}

	info, err := edgar.ParseFilename(filepath.Base(path))
	if err != nil {
		return nil, "", err
	}

	header, err := edgar.ParseHeader(string(content))
	if err != nil {
		return nil, "", err
	}

	body, err := edgar.ExtractBody(string(content))
	if err != nil {
		return nil, "", err
	}

	fiscalYear, _ := strconv.Atoi(info.FilingDate.Format("2006"))

	filing := &core.Filing{
		Id:              core.FilingID(info.AccessionNumber),
		CIK:             info.CIK,
		CompanyName:     header.CompanyName,
		Ticker:          tickers[info.CIK],
		FormType:        info.FormType,
		FilingDate:      info.FilingDate,
		AccessionNumber: info.AccessionNumber,
		FiscalYear:      fiscalYear,
		GrossFileSize:   header.GrossFileSize,
		NetFileSize:     header.NetFileSize,
		SourceFile:      filepath.Base(path),
		Items:           header.Items,
	}

	return filing, body, nil
}

// IngestFile parses a downloaded filing file and ingests it.
// Returns the number of chunks created.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (int, error) {
	filing, body, err := ParseFilingFile(path, p.tickers)
	if err != nil {
		return 0, err
	}
	return p.IngestFiling(ctx, filing, body)
}

// IngestDirectory ingests every filing file in a directory.
// Files that fail to parse or ingest are logged and skipped.
// Returns the number of filings ingested and total chunks created.
func (p *Pipeline) IngestDirectory(ctx context.Context, dir string) (int, int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list filing files: %w", err)
	}

	var filings, chunks int
	for _, path := range paths {
		n, err := p.IngestFile(ctx, path)
		if err != nil {
			p.logger.Error("failed to ingest filing", "file", filepath.Base(path), "err", err)
			continue
		}
		filings++
		chunks += n
		p.logger.Info("ingested filing", "file", filepath.Base(path), "chunks", n)
	}

	return filings, chunks, nil
}
