// Package remote implements the product directory over the HTTP wire
// contract. It is interchangeable with the in-memory engine: same
// operations, same error taxonomy, same bus discipline.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vitrineshop/catalog_api/internal/bus"
	"github.com/vitrineshop/catalog_api/internal/models"
)

// Retry budgets per operation. Only idempotent GETs are retried; mutations
// get exactly one attempt.
const (
	listAttempts     = 3
	getAttempts      = 2
	mutationAttempts = 1
)

// defaultRetryBase is the first backoff delay; the second doubles it.
const defaultRetryBase = time.Second

// Config holds the client parameters supplied by the configuration source.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// RetryBase overrides the backoff base delay. Tests shrink it; zero
	// means the default of one second.
	RetryBase time.Duration
	Debug     bool
}

// Client is the remote directory adapter.
type Client struct {
	httpClient *http.Client
	baseURL    string
	retryBase  time.Duration
	bus        *bus.Bus
	debug      bool
}

// NewClient constructs a remote client publishing to b.
func NewClient(cfg Config, b *bus.Bus) *Client {
	retryBase := cfg.RetryBase
	if retryBase <= 0 {
		retryBase = defaultRetryBase
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		retryBase:  retryBase,
		bus:        b,
		debug:      cfg.Debug,
	}
}

// List fetches one page of products. Filter and pagination parameters are
// serialized as their string representations in the query, per the wire
// contract. On success the page is published to the bus.
func (c *Client) List(ctx context.Context, filter models.Filter, page models.Pagination) (*models.PaginatedResult, error) {
	c.bus.SetLoading(true)
	defer c.bus.SetLoading(false)

	page = page.Normalize()
	if page.Page < 1 {
		return nil, models.ErrInvalidArgument(fmt.Sprintf("page must be >= 1, got %d", page.Page))
	}

	params := url.Values{}
	if filter.Search != "" {
		params.Set("search", filter.Search)
	}
	if filter.Category != "" {
		params.Set("category", string(filter.Category))
	}
	if filter.MinPrice != nil {
		params.Set("minPrice", filter.MinPrice.String())
	}
	if filter.MaxPrice != nil {
		params.Set("maxPrice", filter.MaxPrice.String())
	}
	if filter.Active != nil {
		params.Set("active", strconv.FormatBool(*filter.Active))
	}
	params.Set("page", strconv.Itoa(page.Page))
	params.Set("pageSize", strconv.Itoa(page.PageSize))

	var result models.PaginatedResult
	if err := c.do(ctx, http.MethodGet, "/products?"+params.Encode(), nil, listAttempts, &result); err != nil {
		return nil, err
	}
	c.bus.Publish(result.Data)
	return &result, nil
}

// Get fetches a single product, with one retry on failure.
func (c *Client) Get(ctx context.Context, id int) (*models.Product, error) {
	if id < 1 {
		return nil, models.ErrInvalidArgument(fmt.Sprintf("id must be >= 1, got %d", id))
	}
	var p models.Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, getAttempts, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create posts a new product. Not retried: the operation is not idempotent.
// On success the created record is appended to the bus's cached list
// without a full refetch.
func (c *Client) Create(ctx context.Context, input models.CreateInput) (*models.Product, error) {
	var p models.Product
	if err := c.do(ctx, http.MethodPost, "/products", input, mutationAttempts, &p); err != nil {
		return nil, err
	}
	c.bus.ApplyCreate(p)
	return &p, nil
}

// Update puts a partial patch. Not retried. On success the updated record
// replaces its cached counterpart without a refetch.
func (c *Client) Update(ctx context.Context, id int, input models.UpdateInput) (*models.Product, error) {
	if id < 1 {
		return nil, models.ErrInvalidArgument(fmt.Sprintf("id must be >= 1, got %d", id))
	}
	var p models.Product
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), input, mutationAttempts, &p); err != nil {
		return nil, err
	}
	c.bus.ApplyUpdate(p)
	return &p, nil
}

// Delete removes a product. Not retried. On success the record is dropped
// from the bus's cached list.
func (c *Client) Delete(ctx context.Context, id int) error {
	if id < 1 {
		return models.ErrInvalidArgument(fmt.Sprintf("id must be >= 1, got %d", id))
	}
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, mutationAttempts, nil); err != nil {
		return err
	}
	c.bus.ApplyDelete(id)
	return nil
}

// do issues the request with up to maxAttempts tries. Retries use
// exponential backoff (base, 2*base) and are skipped for 4xx responses:
// retrying a client error only repeats the same rejection. Every failure is
// normalized into an ApiError before it reaches the caller.
func (c *Client) do(ctx context.Context, method, path string, body any, maxAttempts int, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return models.ErrUnknown("failed to encode request", err.Error())
		}
	}

	var lastErr *models.ApiError
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.backoff(ctx, attempt); err != nil {
				return err
			}
			log.Debug().Int("attempt", attempt).Str("path", path).Msg("retrying request")
		}

		apiErr, retryable := c.attempt(ctx, method, path, payload, out)
		if apiErr == nil {
			return nil
		}
		lastErr = apiErr
		if !retryable {
			break
		}
	}
	return lastErr
}

// attempt performs one round trip. The second return value reports whether
// the failure is worth retrying (transport errors and 5xx yes, 4xx no).
func (c *Client) attempt(ctx context.Context, method, path string, payload []byte, out any) (*models.ApiError, bool) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return models.ErrUnknown("failed to create request", err.Error()), false
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.debug && payload != nil {
		log.Debug().Str("method", method).Str("path", path).RawJSON("request", payload).Msg("outgoing request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err), true
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.ErrUnavailable("failed to read response", err.Error()), true
	}

	if c.debug {
		log.Debug().Str("path", path).Int("status", resp.StatusCode).Msg("incoming response")
	}

	if resp.StatusCode >= 400 {
		return normalizeErrorResponse(resp.StatusCode, respBody), resp.StatusCode >= 500
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return models.ErrUnknown("failed to decode response", err.Error()), false
		}
	}
	return nil, false
}

// backoff sleeps for base * 2^(attempt-2), honoring context expiry.
func (c *Client) backoff(ctx context.Context, attempt int) *models.ApiError {
	delay := c.retryBase << (attempt - 2)
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return models.ErrTimeout("operation timed out")
		}
		return models.ErrUnknown("operation canceled", ctx.Err().Error())
	}
}

// classifyTransportError maps a round-trip failure onto the taxonomy:
// deadline and net timeouts become TIMEOUT, everything else UNAVAILABLE.
func classifyTransportError(err error) *models.ApiError {
	if errors.Is(err, context.DeadlineExceeded) {
		return models.ErrTimeout("request timed out")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return models.ErrTimeout("request timed out")
	}
	if errors.Is(err, context.Canceled) {
		return models.ErrUnknown("request canceled", err.Error())
	}
	return models.ErrUnavailable("server unreachable", err.Error())
}

// normalizeErrorResponse prefers the server's own ApiError body; when the
// body is not one, the status code alone drives the mapping so the caller
// still sees the shared taxonomy.
func normalizeErrorResponse(status int, body []byte) *models.ApiError {
	var apiErr models.ApiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Kind != "" {
		apiErr.StatusCode = status
		return &apiErr
	}
	msg := http.StatusText(status)
	if msg == "" {
		msg = "request failed"
	}
	return models.FromStatus(status, msg, strings.TrimSpace(string(body)))
}
