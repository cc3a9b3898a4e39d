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

import "errors"

var (
	// ErrMissingUserAgent indicates that no SEC user agent was configured.
	// The SEC requires a descriptive User-Agent with contact information
	// on every request.
	ErrMissingUserAgent = errors.New("SEC_USER_AGENT not set; expected \"YourName your.email@company.com\"")

	// ErrUnexpectedStatus indicates a non-200 response from EDGAR.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status from EDGAR")

	// ErrInvalidFilename indicates a filing filename that doesn't match
	// the expected layout.
	ErrInvalidFilename = errors.New("invalid filing filename")

	// ErrNoHeader indicates filing content without a header section.
	ErrNoHeader = errors.New("filing content has no header section")

	// ErrNoCompanies indicates an empty or missing companies config.
	ErrNoCompanies = errors.New("no companies configured")

	// ErrMalformedIndex indicates a submissions index whose parallel
	// arrays disagree in length.
	ErrMalformedIndex = errors.New("malformed submissions index")
)
