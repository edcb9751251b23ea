package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultTimeout applies to a request whose context carries no deadline.
const DefaultTimeout = 15 * time.Second

// ClientConfig configures a PostgREST client.
type ClientConfig struct {
	// BaseURL is the project URL, e.g. https://xyz.supabase.co.
	BaseURL string
	// APIKey is the anon/public key sent as the apikey header.
	APIKey string
	// AccessToken is the signed-in user's JWT; falls back to APIKey when empty.
	AccessToken string
	// Timeout per request (default DefaultTimeout).
	Timeout time.Duration
	// RequestsPerSecond throttles outgoing requests; zero disables throttling.
	RequestsPerSecond float64
	// Burst is the limiter burst size (default 1).
	Burst int
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client talks to a PostgREST endpoint (as exposed by Supabase) under /rest/v1.
type Client struct {
	base    *url.URL
	apiKey  string
	token   string
	timeout time.Duration
	limiter *rate.Limiter
	http    *http.Client
}

// NewClient validates cfg and returns a Client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("remote base URL is not configured")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("remote API key is not configured")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse remote URL: %w", err)
	}

	c := &Client{
		base:    base,
		apiKey:  cfg.APIKey,
		token:   cfg.AccessToken,
		timeout: cfg.Timeout,
		http:    cfg.HTTPClient,
	}
	if c.token == "" {
		c.token = cfg.APIKey
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return c, nil
}

func (c *Client) tableURL(table string, query url.Values) string {
	u := *c.base
	u.Path = u.Path + "/rest/v1/" + url.PathEscape(table)
	u.RawQuery = query.Encode()
	return u.String()
}

// Upsert POSTs row with merge-duplicates resolution on the table's conflict key.
func (c *Client) Upsert(ctx context.Context, table string, row any) error {
	body, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode %s row: %w", table, err)
	}
	q := url.Values{}
	q.Set("on_conflict", ConflictKey(table))

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Prefer", "resolution=merge-duplicates,return=minimal")

	_, err = c.do(ctx, http.MethodPost, c.tableURL(table, q), headers, body)
	return err
}

// SelectWhere GETs rows of table with column=eq.value and decodes them into dest.
func (c *Client) SelectWhere(ctx context.Context, table, column, value string, dest any) error {
	q := url.Values{}
	q.Set("select", "*")
	q.Set(column, "eq."+value)

	headers := http.Header{}
	headers.Set("Accept", "application/json")

	data, err := c.do(ctx, http.MethodGet, c.tableURL(table, q), headers, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode %s rows: %w", table, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, target string, headers http.Header, body []byte) ([]byte, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %v", ErrUnreachable, err)
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.token)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUnreachable, method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnreachable, err)
	}
	slog.Debug("remote request", "method", method, "path", req.URL.Path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeAPIError(resp.StatusCode, data)
	}
	return data, nil
}

// decodeAPIError reads a PostgREST error body ({"code","message"}), falling back to raw text.
func decodeAPIError(status int, data []byte) error {
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(data))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
	}
	return apiErr
}
