package http

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
)

// sensitiveParams are query keys whose values never appear in errors.
var sensitiveParams = map[string]struct{}{
	"api_key":      {},
	"apikey":       {},
	"token":        {},
	"access_token": {},
	"password":     {},
}

const redacted = "xxxxx"

// ClientOption configures Client.
type ClientOption func(*Client)

// Client is a small GET-oriented HTTP client shared by the source fetchers.
type Client struct {
	timeout   time.Duration
	userAgent string
	proxy     string
	client    *http.Client
}

// NewClient creates a new HTTP client.
func NewClient(opts ...ClientOption) (*Client, error) {
	c := &Client{
		timeout:   30 * time.Second,
		userAgent: "Mozilla/5.0 (compatible; EconDash/1.0)",
	}

	for _, opt := range opts {
		opt(c)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if c.proxy != "" {
		u, err := url.Parse(c.proxy)
		if err != nil {
			return nil, fmt.Errorf("parse proxy: %w", err)
		}
		transport.Proxy = http.ProxyURL(u)
	}

	c.client = &http.Client{Timeout: c.timeout, Transport: transport}
	return c, nil
}

// GetBytes performs a GET and returns the body. Non-2xx answers become a
// *StatusError.
func (c *Client) GetBytes(ctx context.Context, rawURL string, query url.Values, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if len(query) > 0 {
		q := req.URL.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		req.URL.RawQuery = q.Encode()
	}
	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) {
			ue.URL = redactURL(req.URL)
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			URL:    redactURL(req.URL),
			Status: resp.StatusCode,
			Body:   truncate(redactSecrets(string(body), req.URL), 256),
		}
	}
	return body, nil
}

// GetJSON performs a GET and decodes the JSON body into dest.
func (c *Client) GetJSON(ctx context.Context, rawURL string, query url.Values, dest interface{}) error {
	body, err := c.GetBytes(ctx, rawURL, query, map[string]string{"Accept": "application/json"})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

// redactURL masks userinfo and the values of sensitive query parameters.
func redactURL(u *url.URL) string {
	cp := *u
	q := cp.Query()
	for k := range q {
		if _, ok := sensitiveParams[strings.ToLower(k)]; ok {
			q.Set(k, redacted)
		}
	}
	cp.RawQuery = q.Encode()
	return cp.Redacted()
}

// redactSecrets removes sensitive query values echoed back in a body.
func redactSecrets(s string, u *url.URL) string {
	for k, vs := range u.Query() {
		if _, ok := sensitiveParams[strings.ToLower(k)]; !ok {
			continue
		}
		for _, v := range vs {
			if v != "" {
				s = strings.ReplaceAll(s, v, redacted)
			}
		}
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// WithTimeout sets client timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithProxy routes requests through the given proxy URL.
func WithProxy(proxy string) ClientOption {
	return func(c *Client) {
		c.proxy = proxy
	}
}
