// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package records fetches a student's subject records from the external
// record service.
package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/report-card/internal/httputil"
	"github.com/pdiddy/report-card/pkg/types"
)

// UserMessage is the only failure text shown to users. Transport errors,
// unknown students and malformed responses all collapse into it.
const UserMessage = "Student not found or an error occurred"

const (
	studentsPath     = "/api/students/"
	defaultBaseURL   = "http://localhost:5000"
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "report-card/0.1"

	// maxBodyBytes bounds the response read; a report card is a few KB.
	maxBodyBytes = 4 << 20
)

var (
	// ErrLookupFailed wraps every lookup failure.
	ErrLookupFailed = errors.New("lookup failed")

	// ErrEmptyRegistrationNumber is returned for blank queries, which are
	// never sent to the service.
	ErrEmptyRegistrationNumber = errors.New("empty registration number")
)

// Fetcher looks up the subject records of one registration number.
type Fetcher interface {
	Fetch(ctx context.Context, regNo string) ([]types.SubjectRecord, error)
}

// Client queries GET {BaseURL}/api/students/{regNo}.
type Client struct {
	HTTP       *http.Client
	BaseURL    string
	UserAgent  string
	Token      string
	MaxRetries int
}

var _ Fetcher = (*Client)(nil)

// NewClient builds a Client from cfg, filling defaults for the base URL,
// timeout and user agent.
func NewClient(cfg types.RecordServiceConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	return &Client{
		HTTP:       &http.Client{Timeout: timeout},
		BaseURL:    strings.TrimRight(baseURL, "/"),
		UserAgent:  ua,
		Token:      cfg.Token,
		MaxRetries: cfg.MaxRetries,
	}
}

// StudentURL returns the lookup URL for regNo. The registration number is
// path-escaped so slashes or spaces cannot change the route.
func (c *Client) StudentURL(regNo string) string {
	return c.BaseURL + studentsPath + url.PathEscape(regNo)
}

// Fetch retrieves the records for regNo. Any 2xx response whose body is a
// JSON array of records succeeds, including an empty array. Everything
// else is an error wrapping ErrLookupFailed.
func (c *Client) Fetch(ctx context.Context, regNo string) ([]types.SubjectRecord, error) {
	regNo = strings.TrimSpace(regNo)
	if regNo == "" {
		return nil, fmt.Errorf("%w: %w", ErrLookupFailed, ErrEmptyRegistrationNumber)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.StudentURL(regNo), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %w", ErrLookupFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.UserAgent)
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, c.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("%w: record service request: %w", ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("%w: record service returned HTTP %d", ErrLookupFailed, resp.StatusCode)
	}

	records, err := decodeRecords(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}
	return records, nil
}

// decodeRecords parses a JSON array of records. A JSON null or any
// non-array document is malformed.
func decodeRecords(r io.Reader) ([]types.SubjectRecord, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsing record service response: %w", err)
	}
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, "[") {
		return nil, fmt.Errorf("parsing record service response: expected a JSON array")
	}

	records := []types.SubjectRecord{}
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parsing record service response: %w", err)
	}
	return records, nil
}
