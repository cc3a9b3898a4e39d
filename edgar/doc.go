// Package edgar downloads and parses SEC filings from the EDGAR system.
//
// The Client fetches a registrant's filing history from the submissions
// API, selects filings by form type and target years, and downloads the
// primary document for each. Downloaded filings are stored as plain text
// with a small metadata header so they can be re-parsed without another
// network round trip.
//
// # Usage
//
//	client, err := edgar.NewClient()
//	if err != nil {
//	    // SEC_USER_AGENT must be set, e.g. "Jane Doe jane@example.com"
//	}
//
//	companies, err := edgar.LoadCompanies("companies.json")
//	summary, filings, err := client.DownloadAll(ctx, companies, "data/filings",
//	    edgar.DownloadOptions{
//	        Forms: []core.FormType{core.FormType10K},
//	        Years: []int{2022, 2023},
//	    })
//
// All requests are throttled to stay inside EDGAR's published rate limit.
package edgar
