// Package appwrite talks to an Appwrite project over its REST API and
// exposes it through the backend contract.
package appwrite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"fieldops.service/internal/ports/backend"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const fallbackCookiesHeader = "X-Fallback-Cookies"

type Config struct {
	Endpoint    string
	ProjectID   string
	DatabaseID  string
	Collections map[string]string
	Timeout     time.Duration
}

// Client is an Appwrite REST client. Every request goes through a circuit
// breaker so a struggling project is not hammered by retrying callers.
type Client struct {
	baseURL     string
	projectID   string
	databaseID  string
	collections map[string]string
	http        *http.Client
	cb          *gobreaker.CircuitBreaker

	mu              sync.RWMutex
	fallbackCookies string
}

// NewClient creates a client for one project and database.
func NewClient(cfg Config) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        "Appwrite",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Trip if failure rate is at least 50% after at least 10 requests
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.5
		},
		// Client errors (not found, bad credentials) say nothing about the
		// health of the backend.
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, backend.ErrUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state changed")
		},
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.Endpoint, "/"),
		projectID:   cfg.ProjectID,
		databaseID:  cfg.DatabaseID,
		collections: cfg.Collections,
		http: &http.Client{
			Timeout:   timeout,
			Jar:       jar,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		cb: gobreaker.NewCircuitBreaker(settings),
	}, nil
}

type apiError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
	Type    string `json:"type"`
}

// do sends one request and decodes the JSON response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.roundTrip(ctx, method, path, query, body, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s %s: %w: %v", method, path, backend.ErrUnavailable, err)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Appwrite-Project", c.projectID)
	c.mu.RLock()
	if c.fallbackCookies != "" {
		req.Header.Set(fallbackCookiesHeader, c.fallbackCookies)
	}
	c.mu.RUnlock()

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, backend.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if fc := resp.Header.Get(fallbackCookiesHeader); fc != "" {
		c.mu.Lock()
		c.fallbackCookies = fc
		c.mu.Unlock()
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w: %v", method, path, backend.ErrUnavailable, err)
	}

	if resp.StatusCode >= 300 {
		var apiErr apiError
		_ = json.Unmarshal(data, &apiErr)
		return fmt.Errorf("%s %s: %w: %s", method, path, classify(resp.StatusCode), apiErr.Message)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

func classify(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return backend.ErrUnauthorized
	case status == http.StatusNotFound:
		return backend.ErrNotFound
	case status == http.StatusConflict:
		return backend.ErrConflict
	case status >= 500 || status == http.StatusTooManyRequests:
		return backend.ErrUnavailable
	}
	return fmt.Errorf("unexpected status %d", status)
}

// clearSession forgets the fallback cookies. The cookie jar is cleared by the
// expired cookie Appwrite sends back when a session is deleted.
func (c *Client) clearSession() {
	c.mu.Lock()
	c.fallbackCookies = ""
	c.mu.Unlock()
}
