package edgar

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/poiesic/secrag/core"
)

type companiesFile struct {
	Companies []core.Company `json:"companies"`
}

// LoadCompanies reads a companies config file.
//
// The file is JSON with a top-level "companies" array:
//
//	{"companies": [{"cik": "320193", "ticker": "AAPL", "name": "Apple Inc.", "fraud_case": false}]}
//
// CIKs are normalized to 10 digits with leading zeros.
func LoadCompanies(path string) ([]core.Company, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read companies file: %w", err)
	}

	var file companiesFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse companies file: %w", err)
	}

	if len(file.Companies) == 0 {
		return nil, ErrNoCompanies
	}

	for i := range file.Companies {
		c := &file.Companies[i]
		if c.CIK == "" {
			return nil, fmt.Errorf("company %q has no cik", c.Name)
		}
		c.CIK = PadCIK(c.CIK)
	}

	return file.Companies, nil
}

// PadCIK normalizes a CIK to the 10-digit zero-padded form EDGAR uses.
func PadCIK(cik string) string {
	for len(cik) < 10 {
		cik = "0" + cik
	}
	return cik
}
