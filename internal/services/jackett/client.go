// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package jackett

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/burst/internal/buildinfo"
	"github.com/autobrr/burst/internal/models"
)

const (
	// AllIndexers is Jackett's aggregate indexer identifier.
	AllIndexers = "all"

	// APIKeyLength is the length of a Jackett API key.
	APIKeyLength = 32

	defaultQueryTimeout = 20 * time.Second

	maxFeedBytes int64 = 32 << 20 // 32 MiB safety limit for feed documents
)

// ValidationSuccess is the status message stored after a successful validation.
const ValidationSuccess = "Success"

// ValidationStatus is the outcome of the last settings validation attempt.
type ValidationStatus struct {
	OK        bool      `json:"ok"`
	Message   string    `json:"status"`
	CheckedAt time.Time `json:"checked_at"`
}

// Client queries a Jackett instance over the Torznab protocol.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	timeout    time.Duration

	validationMu   sync.RWMutex
	lastValidation ValidationStatus
}

// NewClient creates a client for the Jackett instance at baseURL. A non-positive
// timeout selects the default of 20 seconds per query.
func NewClient(baseURL, apiKey string, timeoutSeconds int) *Client {
	timeout := defaultQueryTimeout
	if timeoutSeconds > 0 {
		timeout = time.Duration(timeoutSeconds) * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  apiKey,
		timeout: timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// WithHTTPClient replaces the underlying HTTP client. Used by tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// ValidateSettings checks the host and API key before any request is made.
func ValidateSettings(host, apiKey string) error {
	parsed, err := url.Parse(strings.TrimSpace(host))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("jackett host %q is invalid", host)
	}
	if len(apiKey) != APIKeyLength {
		return fmt.Errorf("jackett api key must be %d characters, got %d", APIKeyLength, len(apiKey))
	}
	return nil
}

// CensorAPIKey keeps the first two and last four characters of a key for logging.
func CensorAPIKey(key string) string {
	if len(key) < 6 {
		return strings.Repeat("*", len(key))
	}
	return key[:2] + strings.Repeat("*", 26) + key[len(key)-4:]
}

func (c *Client) endpoint(indexerID string) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("jackett host is not configured")
	}
	endpoint, err := url.JoinPath(c.baseURL, "api", "v2.0", "indexers", indexerID, "results", "torznab", "api")
	if err != nil {
		return "", fmt.Errorf("build jackett url: %w", err)
	}
	return endpoint, nil
}

// get issues one GET against an indexer endpoint. The returned body must be closed.
// Transport failures and non-success statuses come back classified.
func (c *Client) get(ctx context.Context, indexerID string, label string, params url.Values) (io.ReadCloser, context.CancelFunc, error) {
	endpoint, err := c.endpoint(indexerID)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("build jackett request: %w", err)
	}

	query := req.URL.Query()
	for key, values := range params {
		for _, v := range values {
			query.Add(key, v)
		}
	}

	if event := log.Debug(); event.Enabled() {
		censored := cloneValues(query)
		censored.Set("apikey", CensorAPIKey(c.apiKey))
		event.
			Str("indexer", label).
			Str("params", censored.Encode()).
			Msg("Making a request to Jackett")
	}

	query.Set("apikey", c.apiKey)
	req.URL.RawQuery = query.Encode()
	req.Header.Set("User-Agent", buildinfo.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, nil, classifyTransportError(label, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		resp.Body.Close()
		cancel()
		return nil, nil, &TransportError{Indexer: label, StatusCode: resp.StatusCode, Err: errors.New(resp.Status)}
	}

	return resp.Body, cancel, nil
}

// ListIndexers fetches the configured indexers and their capabilities.
func (c *Client) ListIndexers(ctx context.Context) ([]models.Indexer, error) {
	params := url.Values{}
	params.Set("t", "indexers")
	params.Set("configured", "true")

	body, cancel, err := c.get(ctx, AllIndexers, AllIndexers, params)
	if err != nil {
		c.recordFailure(ctx, err)
		return nil, err
	}
	defer cancel()
	defer body.Close()

	indexers, err := decodeIndexers(io.LimitReader(body, maxFeedBytes))
	if err != nil {
		err = c.labelError(AllIndexers, err)
		c.recordFailure(ctx, err)
		return nil, err
	}

	c.recordValidation(true, ValidationSuccess)
	log.Debug().Int("indexers", len(indexers)).Msg("Fetched configured indexers")
	return indexers, nil
}

// Query runs one search against one indexer. It never returns results together
// with an error.
func (c *Client) Query(ctx context.Context, idx models.Indexer, params url.Values) ([]models.Result, error) {
	label := idx.DisplayName()

	body, cancel, err := c.get(ctx, idx.ID, label, params)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer body.Close()

	results, err := decodeFeed(io.LimitReader(body, maxFeedBytes))
	if err != nil {
		err = c.labelError(label, err)
		var protoErr *ProtocolError
		if errors.As(err, &protoErr) {
			c.recordValidation(false, protoErr.Description)
		} else if isTimeoutError(err) {
			err = &TransportTimeoutError{Indexer: label, Err: err}
		}
		return nil, err
	}

	c.recordValidation(true, ValidationSuccess)
	return results, nil
}

// Validate checks the connection and API key against the aggregate caps endpoint
// and returns the resulting status. The status is also kept as LastValidation.
func (c *Client) Validate(ctx context.Context) ValidationStatus {
	params := url.Values{}
	params.Set("t", "caps")

	body, cancel, err := c.get(ctx, AllIndexers, AllIndexers, params)
	if err != nil {
		return c.recordValidation(false, validationMessage(err))
	}
	defer cancel()
	defer body.Close()

	caps, err := decodeCaps(io.LimitReader(body, maxFeedBytes))
	if err != nil {
		return c.recordValidation(false, validationMessage(err))
	}

	log.Info().
		Str("search", caps.Search.Params.String()).
		Str("tv_search", caps.TVSearch.Params.String()).
		Str("movie_search", caps.MovieSearch.Params.String()).
		Msg("Found capabilities")

	return c.recordValidation(true, ValidationSuccess)
}

// LastValidation returns the validation status recorded by this client. Once a
// failure is recorded, later successes do not replace it.
func (c *Client) LastValidation() ValidationStatus {
	c.validationMu.RLock()
	defer c.validationMu.RUnlock()
	return c.lastValidation
}

func (c *Client) recordValidation(ok bool, message string) ValidationStatus {
	c.validationMu.Lock()
	defer c.validationMu.Unlock()

	last := c.lastValidation
	if ok && !last.CheckedAt.IsZero() && !last.OK {
		return last
	}

	c.lastValidation = ValidationStatus{OK: ok, Message: message, CheckedAt: time.Now()}
	return c.lastValidation
}

// recordFailure stores err as a failed validation unless the caller gave up.
func (c *Client) recordFailure(ctx context.Context, err error) {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return
	}
	c.recordValidation(false, validationMessage(err))
}

func (c *Client) labelError(label string, err error) error {
	var protoErr *ProtocolError
	if errors.As(err, &protoErr) {
		protoErr.Indexer = label
		return protoErr
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		parseErr.Indexer = label
		return parseErr
	}
	return err
}

func validationMessage(err error) string {
	var protoErr *ProtocolError
	if errors.As(err, &protoErr) {
		return protoErr.Description
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) && transportErr.StatusCode != 0 {
		return http.StatusText(transportErr.StatusCode)
	}
	return err.Error()
}

func cloneValues(vals url.Values) url.Values {
	cloned := make(url.Values, len(vals))
	for k, v := range vals {
		cloned[k] = append([]string(nil), v...)
	}
	return cloned
}
