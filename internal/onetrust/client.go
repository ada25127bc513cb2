package onetrust

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"ctrlreport/internal/config"
)

// operatorEqualTo is the exact-match filter operator of the search endpoint
const operatorEqualTo = "EQUAL_TO"

// ErrPageLimit is returned when the upstream keeps reporting more pages
// than the configured maximum. It guards against a misbehaving server
// whose totalPages value never converges.
var ErrPageLimit = errors.New("onetrust: page limit exceeded")

// UpstreamError reports a failed page request during collection. Any
// page failure aborts the whole fetch; no partial result is returned.
type UpstreamError struct {
	Page       int
	StatusCode int
	Err        error
}

// Error implements the error interface
func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("onetrust: page %d request failed: %v", e.Page, e.Err)
	}
	return fmt.Sprintf("onetrust: page %d request returned status %d", e.Page, e.StatusCode)
}

// Unwrap returns the underlying transport error, if any
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Client retrieves control implementations from the OneTrust paged search
// endpoint. The token and base URL are fixed at construction; the client
// holds no other state and is safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	pageSize   int
	maxPages   int
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a OneTrust API client from configuration
func NewClient(cfg config.OneTrustConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "onetrust_client"))

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}

	if cfg.InsecureSkipVerify {
		logger.Warn("TLS certificate verification is disabled for the OneTrust API",
			slog.String("base_url", cfg.BaseURL))
	}

	return &Client{
		baseURL:  cfg.BaseURL,
		token:    cfg.Token,
		pageSize: cfg.PageSize,
		maxPages: cfg.MaxPages,
		httpClient: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: transport,
		},
		logger: logger,
	}
}

// FetchAll retrieves every control implementation of the given organization,
// walking the paged search endpoint until the reported page total is
// reached. totalPages is re-read from every response; the loop is driven by
// the running page counter against the latest reported total.
func (c *Client) FetchAll(ctx context.Context, orgID string) ([]ControlRecord, error) {
	var records []ControlRecord

	page := 0
	for {
		resp, err := c.fetchPage(ctx, orgID, page)
		if err != nil {
			return nil, err
		}

		records = append(records, resp.Content...)

		c.logger.DebugContext(ctx, "fetched page",
			slog.Int("page", page),
			slog.Int("records", len(resp.Content)),
			slog.Int("total_pages", resp.TotalPages))

		page++
		if page >= resp.TotalPages {
			break
		}
		if page >= c.maxPages {
			return nil, fmt.Errorf("%w: fetched %d pages of %d reported for organization %s",
				ErrPageLimit, page, resp.TotalPages, orgID)
		}
	}

	c.logger.InfoContext(ctx, "collection complete",
		slog.String("organization_id", orgID),
		slog.Int("pages", page),
		slog.Int("records", len(records)))

	return records, nil
}

// fetchPage issues a single paged search request
func (c *Client) fetchPage(ctx context.Context, orgID string, page int) (*pageResponse, error) {
	body, err := json.Marshal(searchRequest{
		Filters: []searchFilter{
			{
				Field:    "organizationId",
				Operator: operatorEqualTo,
				Value:    orgID,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	url := fmt.Sprintf("%s?page=%s&size=%s",
		c.baseURL, strconv.Itoa(page), strconv.Itoa(c.pageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Page: page, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, &UpstreamError{Page: page, StatusCode: resp.StatusCode}
	}

	var pr pageResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, &UpstreamError{Page: page, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return &pr, nil
}
