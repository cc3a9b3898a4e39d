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
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/secrag/core"
)

// FilenameInfo holds the fields encoded in a downloaded filing's filename.
type FilenameInfo struct {
	FilingDate      time.Time
	FormType        core.FormType
	CIK             string
	AccessionNumber string
}

// FilingHeader holds the metadata parsed from a filing's header section.
type FilingHeader struct {
	CompanyName   string
	CIK           string
	FormType      string
	FilingDate    string
	Accession     string
	GrossFileSize int64
	NetFileSize   int64
	Items         []string
}

const (
	headerOpen  = "<Header>"
	headerClose = "</Header>"
)

var (
	companyNameRe = regexp.MustCompile(`COMPANY CONFORMED NAME:\s+(.+)`)
	cikRe         = regexp.MustCompile(`CENTRAL INDEX KEY:\s+(\d+)`)
	formTypeRe    = regexp.MustCompile(`FORM TYPE:\s+(\S+)`)
	filedDateRe   = regexp.MustCompile(`FILED AS OF DATE:\s+(\d{8})`)
	accessionRe   = regexp.MustCompile(`ACCESSION NUMBER:\s+(\S+)`)
	grossSizeRe   = regexp.MustCompile(`<GrossFileSize>(\d+)</GrossFileSize>`)
	netSizeRe     = regexp.MustCompile(`<NetFileSize>(\d+)</NetFileSize>`)
	itemsRe       = regexp.MustCompile(`ITEMS:\s+(\S+)`)

	multiNewlineRe = regexp.MustCompile(`\n{3,}`)
	multiSpaceRe   = regexp.MustCompile(`[ \t]{2,}`)
)

// FilingFilename builds the canonical on-disk name for a downloaded filing:
// YYYYMMDD_FORMTYPE_edgar_data_CIK_ACCESSION.txt. Dashes in the form type
// are removed so the name splits cleanly on underscores.
func FilingFilename(date time.Time, form core.FormType, cik, accession string) string {
	formPart := strings.ReplaceAll(form.String(), "-", "")
	return fmt.Sprintf("%s_%s_edgar_data_%s_%s.txt",
		date.Format("20060102"), formPart, strings.TrimLeft(cik, "0"), accession)
}

// ParseFilename extracts filing metadata from a canonical filing filename.
func ParseFilename(name string) (*FilenameInfo, error) {
	base := strings.TrimSuffix(name, ".txt")
	parts := strings.Split(base, "_")
	if len(parts) < 6 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}

	date, err := time.Parse("20060102", parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: bad date in %q: %v", ErrInvalidFilename, name, err)
	}

	form, err := parseCompactForm(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidFilename, name, err)
	}

	return &FilenameInfo{
		FilingDate:      date,
		FormType:        form,
		CIK:             PadCIK(parts[4]),
		AccessionNumber: parts[5],
	}, nil
}

// parseCompactForm handles the dash-stripped form types used in filenames.
func parseCompactForm(s string) (core.FormType, error) {
	switch strings.ToUpper(s) {
	case "10K":
		return core.FormType10K, nil
	case "10Q":
		return core.FormType10Q, nil
	case "8K":
		return core.FormType8K, nil
	}
	return core.ParseFormType(s)
}

// WriteHeader renders the header section prepended to downloaded filings.
func WriteHeader(h *FilingHeader) string {
	var b strings.Builder
	b.WriteString(headerOpen)
	b.WriteString("\n")
	fmt.Fprintf(&b, "COMPANY CONFORMED NAME: %s\n", h.CompanyName)
	fmt.Fprintf(&b, "CENTRAL INDEX KEY: %s\n", h.CIK)
	fmt.Fprintf(&b, "FORM TYPE: %s\n", h.FormType)
	fmt.Fprintf(&b, "FILED AS OF DATE: %s\n", h.FilingDate)
	fmt.Fprintf(&b, "ACCESSION NUMBER: %s\n", h.Accession)
	if len(h.Items) > 0 {
		fmt.Fprintf(&b, "ITEMS: %s\n", strings.Join(h.Items, ","))
	}
	fmt.Fprintf(&b, "<FileStats><GrossFileSize>%d</GrossFileSize><NetFileSize>%d</NetFileSize></FileStats>\n",
		h.GrossFileSize, h.NetFileSize)
	b.WriteString(headerClose)
	b.WriteString("\n")
	return b.String()
}

// ParseHeader extracts metadata from a filing's header section.
// Returns ErrNoHeader if the content has no header delimiters.
func ParseHeader(content string) (*FilingHeader, error) {
	end := strings.Index(content, headerClose)
	if end < 0 {
		return nil, ErrNoHeader
	}
	head := content[:end]

	h := &FilingHeader{}
	if m := companyNameRe.FindStringSubmatch(head); m != nil {
		h.CompanyName = strings.TrimSpace(m[1])
	}
	if m := cikRe.FindStringSubmatch(head); m != nil {
		h.CIK = PadCIK(m[1])
	}
	if m := formTypeRe.FindStringSubmatch(head); m != nil {
		h.FormType = m[1]
	}
	if m := filedDateRe.FindStringSubmatch(head); m != nil {
		h.FilingDate = m[1]
	}
	if m := accessionRe.FindStringSubmatch(head); m != nil {
		h.Accession = m[1]
	}
	if m := grossSizeRe.FindStringSubmatch(head); m != nil {
		h.GrossFileSize, _ = strconv.ParseInt(m[1], 10, 64)
	}
	if m := netSizeRe.FindStringSubmatch(head); m != nil {
		h.NetFileSize, _ = strconv.ParseInt(m[1], 10, 64)
	}
	if m := itemsRe.FindStringSubmatch(head); m != nil {
		for _, item := range strings.Split(m[1], ",") {
			if item = strings.TrimSpace(item); item != "" {
				h.Items = append(h.Items, item)
			}
		}
	}

	return h, nil
}

// ExtractBody returns the cleaned text after the header section.
// Runs of three or more newlines collapse to two, and runs of spaces
// collapse to one.
func ExtractBody(content string) (string, error) {
	idx := strings.Index(content, headerClose)
	if idx < 0 {
		return "", ErrNoHeader
	}
	body := content[idx+len(headerClose):]
	return CleanText(body), nil
}

// CleanText normalizes whitespace in filing text.
func CleanText(text string) string {
	text = multiNewlineRe.ReplaceAllString(text, "\n\n")
	text = multiSpaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// CriticalItems are the 8-K item codes tracked for material events:
// restatements, officer departures, other events, and disposals.
var CriticalItems = []string{"4.02", "5.02", "8.01", "2.01"}

// FilterCriticalItems returns the subset of items that are critical 8-K items.
func FilterCriticalItems(items []string) []string {
	var out []string
	for _, item := range items {
		for _, crit := range CriticalItems {
			if item == crit {
				out = append(out, item)
				break
			}
		}
	}
	return out
}
