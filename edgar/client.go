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
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultSubmissionsURL = "https://data.sec.gov/submissions"
	defaultArchivesURL    = "https://www.sec.gov/Archives/edgar/data"

	// EDGAR allows 10 requests per second; stay under it.
	defaultRequestsPerSecond = 8.0

	userAgentEnv = "SEC_USER_AGENT"
)

// Client downloads filings from SEC EDGAR.
//
// EDGAR requires a descriptive User-Agent with contact information on
// every request and enforces a request rate limit. The client reads the
// agent string from the SEC_USER_AGENT environment variable unless one
// is provided with WithUserAgent, and throttles all requests with a
// shared limiter.
type Client struct {
	httpClient     *http.Client
	limiter        *rate.Limiter
	userAgent      string
	submissionsURL string
	archivesURL    string
	logger         *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithUserAgent sets the User-Agent header, overriding SEC_USER_AGENT.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the request rate in requests per second.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithSubmissionsURL overrides the submissions API base URL.
func WithSubmissionsURL(url string) ClientOption {
	return func(c *Client) {
		c.submissionsURL = url
	}
}

// WithArchivesURL overrides the filing archives base URL.
func WithArchivesURL(url string) ClientOption {
	return func(c *Client) {
		c.archivesURL = url
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger.With("component", "edgar")
	}
}

// NewClient creates an EDGAR client.
// Returns ErrMissingUserAgent when no user agent is configured.
func NewClient(opts ...ClientOption) (*Client, error) {
	c := &Client{
		httpClient:     &http.Client{Timeout: 60 * time.Second},
		limiter:        rate.NewLimiter(rate.Limit(defaultRequestsPerSecond), 1),
		userAgent:      os.Getenv(userAgentEnv),
		submissionsURL: defaultSubmissionsURL,
		archivesURL:    defaultArchivesURL,
		logger:         slog.Default().With("component", "edgar"),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.userAgent == "" {
		return nil, ErrMissingUserAgent
	}

	return c, nil
}

// Submissions holds a registrant's recent filing history from the
// submissions API. The API returns filing fields as parallel arrays
// indexed by filing.
type Submissions struct {
	CIK     string   `json:"cik"`
	Name    string   `json:"name"`
	Tickers []string `json:"tickers"`
	Filings struct {
		Recent RecentFilings `json:"recent"`
	} `json:"filings"`
}

// RecentFilings is the parallel-array filing index from the submissions API.
type RecentFilings struct {
	AccessionNumber []string `json:"accessionNumber"`
	FilingDate      []string `json:"filingDate"`
	Form            []string `json:"form"`
	PrimaryDocument []string `json:"primaryDocument"`
	Items           []string `json:"items"`
	Size            []int64  `json:"size"`
}

// GetSubmissions fetches the filing history for a CIK.
func (c *Client) GetSubmissions(ctx context.Context, cik string) (*Submissions, error) {
	url := fmt.Sprintf("%s/CIK%s.json", c.submissionsURL, PadCIK(cik))

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submissions for CIK %s: %w", cik, err)
	}

	var subs Submissions
	if err := json.Unmarshal(body, &subs); err != nil {
		return nil, fmt.Errorf("failed to parse submissions for CIK %s: %w", cik, err)
	}

	return &subs, nil
}

// GetDocument fetches a filing document from the archives.
// The accession directory in archive URLs has its dashes stripped;
// the document name is used as-is.
func (c *Client) GetDocument(ctx context.Context, cik, accession, document string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s/%s/%s",
		c.archivesURL, trimCIK(cik), stripDashes(accession), document)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document %s for %s: %w", document, accession, err)
	}

	return body, nil
}

// get performs a rate-limited GET request.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d for %s", ErrUnexpectedStatus, resp.StatusCode, url)
	}

	return io.ReadAll(resp.Body)
}

func trimCIK(cik string) string {
	for len(cik) > 1 && cik[0] == '0' {
		cik = cik[1:]
	}
	return cik
}

func stripDashes(accession string) string {
	out := make([]byte, 0, len(accession))
	for i := 0; i < len(accession); i++ {
		if accession[i] != '-' {
			out = append(out, accession[i])
		}
	}
	return string(out)
}
