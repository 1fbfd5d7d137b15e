// Package httpx posts JSON documents to RPC endpoints with bounded retries.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"time"

	clierr "github.com/ggonzalez94/near-cli/internal/errors"
	"github.com/ggonzalez94/near-cli/internal/version"
)

const (
	backoffBase = 120 * time.Millisecond
	backoffCap  = 2 * time.Second
	maxJitter   = 75
)

type Client struct {
	httpClient *http.Client
	retries    int
	userAgent  string
}

func New(timeout time.Duration, retries int) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		retries:    max(retries, 0),
		userAgent:  version.CLIName + "-cli/" + version.CLIVersion,
	}
}

// WithoutRetries returns a client sharing the transport that sends each
// request exactly once. Non-idempotent calls such as broadcasts use it.
func (c *Client) WithoutRetries() *Client {
	clone := *c
	clone.retries = 0
	return &clone
}

// transient marks a failure that a later attempt may not hit.
type transient struct{ err error }

func (t transient) Error() string { return t.err.Error() }
func (t transient) Unwrap() error { return t.err }

// PostJSON sends body to url and decodes the response into out. Transport
// failures, 429 and 5xx responses are retried; anything else returns at once.
func (c *Client) PostJSON(ctx context.Context, url string, body []byte, out any) error {
	var err error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			if werr := sleep(ctx, backoff(attempt)); werr != nil {
				return werr
			}
		}
		err = c.post(ctx, url, body, out)
		var t transient
		if !errors.As(err, &t) {
			return err
		}
		err = t.err
	}
	return err
}

func (c *Client) post(ctx context.Context, url string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return clierr.Wrap(clierr.CodeInternal, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transient{mapNetError(err)}
	}
	defer resp.Body.Close()
	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return transient{clierr.Wrap(clierr.CodeUnavailable, "read rpc response", err)}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= http.StatusInternalServerError:
		return transient{clierr.New(clierr.CodeUnavailable, fmt.Sprintf("rpc unavailable (status %d)", resp.StatusCode))}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return clierr.New(clierr.CodeUnavailable, fmt.Sprintf("rpc returned unexpected status %d", resp.StatusCode))
	}
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(buf)) == 0 {
		return clierr.New(clierr.CodeUnavailable, "rpc returned empty response")
	}
	if err := json.Unmarshal(buf, out); err != nil {
		return clierr.Wrap(clierr.CodeUnavailable, "decode rpc JSON", err)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return clierr.Wrap(clierr.CodeUnavailable, "request cancelled", ctx.Err())
	case <-timer.C:
		return nil
	}
}

func mapNetError(err error) error {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return clierr.Wrap(clierr.CodeUnavailable, "rpc timeout", err)
	}
	return clierr.Wrap(clierr.CodeUnavailable, "rpc request failed", err)
}

func backoff(attempt int) time.Duration {
	d := min(backoffBase<<uint(attempt-1), backoffCap)
	return d + time.Duration(rand.Intn(maxJitter))*time.Millisecond
}
