package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const userAgent = "coogi-engine/1.0 (+local)"

// HostLimiter rate-limits per hostname so one chatty provider cannot
// burn through another provider's quota window.
type HostLimiter struct {
	mu sync.Mutex
	m  map[string]*rate.Limiter
	r  rate.Limit
	b  int
}

func NewHostLimiter(reqPerSec float64, burst int) *HostLimiter {
	return &HostLimiter{
		m: make(map[string]*rate.Limiter),
		r: rate.Limit(reqPerSec),
		b: burst,
	}
}

func (hl *HostLimiter) limiterFor(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	if lim, ok := hl.m[host]; ok {
		return lim
	}
	lim := rate.NewLimiter(hl.r, hl.b)
	hl.m[host] = lim
	return lim
}

func (hl *HostLimiter) WaitURL(ctx context.Context, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return hl.limiterFor("_").Wait(ctx)
	}
	return hl.limiterFor(u.Host).Wait(ctx)
}

// Client is the shared HTTP client for all adapters. It retries on
// transport errors and 429 only; every other non-2xx maps straight to
// the failure taxonomy.
type Client struct {
	hc         *http.Client
	limiter    *HostLimiter
	maxRetries int
	baseDelay  time.Duration
}

func NewClient(timeout time.Duration, reqPerSec float64) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		hc:         &http.Client{Timeout: timeout},
		limiter:    NewHostLimiter(reqPerSec, 1),
		maxRetries: 2,
		baseDelay:  2 * time.Second,
	}
}

// GetJSON issues a GET and decodes the 2xx body into out.
func (c *Client) GetJSON(ctx context.Context, providerName, rawURL string, params url.Values, header http.Header, out any) error {
	u := rawURL
	if len(params) > 0 {
		u = rawURL + "?" + params.Encode()
	}
	return c.doJSON(ctx, providerName, http.MethodGet, u, header, nil, out)
}

// PostJSON issues a POST with a JSON body and decodes the 2xx body into out.
func (c *Client) PostJSON(ctx context.Context, providerName, rawURL string, header http.Header, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return &Failure{Provider: providerName, Kind: FailHTTP, Err: fmt.Errorf("encode body: %w", err)}
	}
	return c.doJSON(ctx, providerName, http.MethodPost, rawURL, header, b, out)
}

// PutJSON issues a PUT with a JSON body and decodes the 2xx body into out.
func (c *Client) PutJSON(ctx context.Context, providerName, rawURL string, header http.Header, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return &Failure{Provider: providerName, Kind: FailHTTP, Err: fmt.Errorf("encode body: %w", err)}
	}
	return c.doJSON(ctx, providerName, http.MethodPut, rawURL, header, b, out)
}

// Delete issues a DELETE, ignoring any response body.
func (c *Client) Delete(ctx context.Context, providerName, rawURL string, header http.Header) error {
	return c.doJSON(ctx, providerName, http.MethodDelete, rawURL, header, nil, nil)
}

func (c *Client) doJSON(ctx context.Context, providerName, method, rawURL string, header http.Header, body []byte, out any) error {
	var lastErr *Failure

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.WaitURL(ctx, rawURL); err != nil {
			return &Failure{Provider: providerName, Kind: FailTimeout, Err: err}
		}

		var rdr io.Reader
		if body != nil {
			rdr = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, rawURL, rdr)
		if err != nil {
			return &Failure{Provider: providerName, Kind: FailHTTP, Err: err}
		}
		req.Header.Set("User-Agent", userAgent)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Set(k, v)
			}
		}

		res, err := c.hc.Do(req)
		if err != nil {
			kind := FailHTTP
			if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				kind = FailTimeout
			}
			lastErr = &Failure{Provider: providerName, Kind: kind, Err: err}
			if kind == FailTimeout {
				return lastErr
			}
		} else {
			switch {
			case res.StatusCode >= 200 && res.StatusCode < 300:
				defer res.Body.Close()
				if out == nil {
					return nil
				}
				if err := json.NewDecoder(res.Body).Decode(out); err != nil {
					return &Failure{Provider: providerName, Kind: FailHTTP, Err: fmt.Errorf("decode response: %w", err)}
				}
				return nil
			case res.StatusCode == http.StatusTooManyRequests:
				res.Body.Close()
				lastErr = &Failure{Provider: providerName, Kind: FailRateLimited, Status: res.StatusCode}
			default:
				res.Body.Close()
				return &Failure{Provider: providerName, Kind: FailHTTP, Status: res.StatusCode}
			}
		}

		if attempt < c.maxRetries {
			select {
			case <-ctx.Done():
				return &Failure{Provider: providerName, Kind: FailTimeout, Err: ctx.Err()}
			case <-time.After(c.baseDelay):
			}
		}
	}

	return lastErr
}
