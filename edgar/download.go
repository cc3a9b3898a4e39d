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


package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/secrag/core"
)

// FilingRef identifies a single filing selected from a submissions index.
type FilingRef struct {
	AccessionNumber string
	FilingDate      time.Time
	FormType        core.FormType
	PrimaryDocument string
	Items           []string
}

// Summary records the outcome of a download run. It is written to
// download_summary.json in the data directory.
type Summary struct {
	Companies     int            `json:"companies"`
	TargetYears   []int          `json:"target_years"`
	TotalFilings  int            `json:"total_filings"`
	ByCompany     map[string]int `json:"by_company"`
	FilingType    string         `json:"filing_type,omitempty"`
	CriticalItems []string       `json:"critical_items,omitempty"`
}

// DownloadOptions controls filing selection for a download run.
type DownloadOptions struct {
	// Forms limits the run to these form types.
	Forms []core.FormType

	// Years limits the run to filings dated within the target years.
	// The window runs from January 1 of the earliest year through
	// December 31 of the year after the latest, so fiscal-year filings
	// submitted early the following year are included.
	Years []int

	// OnFiling is called after each filing is written, if set.
	OnFiling func(company core.Company, filing *core.Filing)
}

// DateWindow returns the inclusive date range implied by the target years.
func (o DownloadOptions) DateWindow() (time.Time, time.Time) {
	if len(o.Years) == 0 {
		return time.Time{}, time.Time{}
	}
	min, max := o.Years[0], o.Years[0]
	for _, y := range o.Years[1:] {
		if y < min {
			min = y
		}
		if y > max {
			max = y
		}
	}
	from := time.Date(min, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(max+1, 12, 31, 0, 0, 0, 0, time.UTC)
	return from, to
}

// SelectFilings picks the filings from a submissions index that match
// the download options.
func SelectFilings(subs *Submissions, opts DownloadOptions) ([]FilingRef, error) {
	recent := subs.Filings.Recent

	// The submissions API returns filing fields as parallel arrays.
	// Reject an index where the arrays disagree rather than reading
	// past the shorter ones.
	n := len(recent.Form)
	if len(recent.AccessionNumber) < n || len(recent.FilingDate) < n || len(recent.PrimaryDocument) < n {
		return nil, fmt.Errorf("%w: %d forms but %d accessions, %d dates, %d documents",
			ErrMalformedIndex, n, len(recent.AccessionNumber), len(recent.FilingDate), len(recent.PrimaryDocument))
	}

	from, to := opts.DateWindow()

	var refs []FilingRef
	for i, form := range recent.Form {
		ft, err := core.ParseFormType(form)
		if err != nil {
			continue
		}
		if !containsForm(opts.Forms, ft) {
			continue
		}

		date, err := time.Parse("2006-01-02", recent.FilingDate[i])
		if err != nil {
			return nil, fmt.Errorf("bad filing date %q for %s: %w",
				recent.FilingDate[i], recent.AccessionNumber[i], err)
		}
		if !from.IsZero() && (date.Before(from) || date.After(to)) {
			continue
		}

		ref := FilingRef{
			AccessionNumber: recent.AccessionNumber[i],
			FilingDate:      date,
			FormType:        ft,
			PrimaryDocument: recent.PrimaryDocument[i],
		}
		if i < len(recent.Items) && recent.Items[i] != "" {
			for _, item := range strings.Split(recent.Items[i], ",") {
				if item = strings.TrimSpace(item); item != "" {
					ref.Items = append(ref.Items, item)
				}
			}
		}
		refs = append(refs, ref)
	}

	return refs, nil
}

func containsForm(forms []core.FormType, ft core.FormType) bool {
	if len(forms) == 0 {
		return true
	}
	for _, f := range forms {
		if f == ft {
			return true
		}
	}
	return false
}

// DownloadFiling fetches one filing, strips its markup, and writes it to
// dataDir under the canonical filename. The returned Filing record carries
// the parsed metadata but is not persisted.
func (c *Client) DownloadFiling(ctx context.Context, company core.Company, ref FilingRef, dataDir string) (*core.Filing, error) {
	raw, err := c.GetDocument(ctx, company.CIK, ref.AccessionNumber, ref.PrimaryDocument)
	if err != nil {
		return nil, err
	}

	body, err := StripHTML(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to extract text for %s: %w", ref.AccessionNumber, err)
	}

	header := WriteHeader(&FilingHeader{
		CompanyName:   company.Name,
		CIK:           company.CIK,
		FormType:      ref.FormType.String(),
		FilingDate:    ref.FilingDate.Format("20060102"),
		Accession:     ref.AccessionNumber,
		GrossFileSize: int64(len(raw)),
		NetFileSize:   int64(len(body)),
		Items:         ref.Items,
	})

	filename := FilingFilename(ref.FilingDate, ref.FormType, company.CIK, ref.AccessionNumber)
	path := filepath.Join(dataDir, filename)
	if err := os.WriteFile(path, []byte(header+body), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write filing %s: %w", filename, err)
	}

	fiscalYear, _ := strconv.Atoi(ref.FilingDate.Format("2006"))
	filing := &core.Filing{
		Id:              core.FilingID(ref.AccessionNumber),
		CIK:             company.CIK,
		CompanyName:     company.Name,
		Ticker:          company.Ticker,
		FormType:        ref.FormType,
		FilingDate:      ref.FilingDate,
		AccessionNumber: ref.AccessionNumber,
		FiscalYear:      fiscalYear,
		GrossFileSize:   int64(len(raw)),
		NetFileSize:     int64(len(body)),
		SourceFile:      filename,
		Items:           ref.Items,
	}

	return filing, nil
}

// DownloadAll downloads all matching filings for the given companies
// into dataDir and returns a run summary alongside the filing records.
//
// Per-filing failures are logged and skipped so one broken document
// doesn't abort a multi-company run.
func (c *Client) DownloadAll(ctx context.Context, companies []core.Company, dataDir string, opts DownloadOptions) (*Summary, []*core.Filing, error) {
	if len(companies) == 0 {
		return nil, nil, ErrNoCompanies
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	summary := &Summary{
		Companies:   len(companies),
		TargetYears: opts.Years,
		ByCompany:   make(map[string]int),
	}
	if len(opts.Forms) == 1 && opts.Forms[0] == core.FormType8K {
		summary.FilingType = core.FormType8K.String()
		summary.CriticalItems = CriticalItems
	}

	var filings []*core.Filing
	for _, company := range companies {
		subs, err := c.GetSubmissions(ctx, company.CIK)
		if err != nil {
			c.logger.Error("failed to fetch submissions", "company", company.Name, "error", err)
			continue
		}

		refs, err := SelectFilings(subs, opts)
		if err != nil {
			c.logger.Error("failed to select filings", "company", company.Name, "error", err)
			continue
		}

		c.logger.Info("downloading filings",
			"company", company.Name, "cik", company.CIK, "count", len(refs))

		for _, ref := range refs {
			filing, err := c.DownloadFiling(ctx, company, ref, dataDir)
			if err != nil {
				c.logger.Error("failed to download filing",
					"company", company.Name, "accession", ref.AccessionNumber, "error", err)
				continue
			}
			filings = append(filings, filing)
			summary.ByCompany[company.Name]++
			summary.TotalFilings++
			if opts.OnFiling != nil {
				opts.OnFiling(company, filing)
			}
		}
	}

	if err := WriteSummary(dataDir, summary); err != nil {
		return nil, nil, err
	}

	return summary, filings, nil
}

// WriteSummary writes the run summary to download_summary.json in dataDir.
func WriteSummary(dataDir string, summary *Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal download summary: %w", err)
	}
	path := filepath.Join(dataDir, "download_summary.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write download summary: %w", err)
	}
	return nil
}
