// Package cursorapi queries Cursor's dashboard for recent usage events.
package cursorapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
)

const (
	DefaultBaseURL   = "https://cursor.com"
	usageEventsPath  = "/api/dashboard/get-filtered-usage-events"
	defaultPageSize  = 100
	maxResponseBytes = 8 << 20
	userAgent        = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
)

var (
	// ErrNetwork covers transport failures and non-2xx responses.
	ErrNetwork = errors.New("usage API request failed")
	// ErrMalformedResponse means the body was not the expected JSON shape.
	ErrMalformedResponse = errors.New("malformed usage API response")
)

// Window is the time range a query covers.
type Window struct {
	Start time.Time
	End   time.Time
}

// LastWindow returns the window of the given length ending at now.
func LastWindow(now time.Time, lookback time.Duration) Window {
	return Window{Start: now.Add(-lookback), End: now}
}

type usageEventsRequest struct {
	TeamID    int    `json:"teamId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Page      int    `json:"page"`
	PageSize  int    `json:"pageSize"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchUsageEvents returns the raw usage records inside the window. A response
// without usageEventsDisplay yields no records and no error.
func (c *Client) FetchUsageEvents(ctx context.Context, credential string, window Window) ([]gjson.Result, error) {
	body, err := json.Marshal(usageEventsRequest{
		TeamID:    0,
		StartDate: strconv.FormatInt(window.Start.UnixMilli(), 10),
		EndDate:   strconv.FormatInt(window.End.UnixMilli(), 10),
		Page:      1,
		PageSize:  defaultPageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	data, err := c.doPost(ctx, credential, c.baseURL+usageEventsPath, body)
	if err != nil {
		return nil, err
	}
	return parseUsageEvents(data)
}

func (c *Client) doPost(ctx context.Context, credential, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", DefaultBaseURL)
	req.Header.Set("Referer", DefaultBaseURL+"/dashboard?tab=usage")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Cookie", credential)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrNetwork, resp.StatusCode, truncate(string(data), 200))
	}
	return data, nil
}

func parseUsageEvents(data []byte) ([]gjson.Result, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedResponse)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top level is not an object", ErrMalformedResponse)
	}

	events := root.Get("usageEventsDisplay")
	switch {
	case !events.Exists() || events.Type == gjson.Null:
		return nil, nil
	case !events.IsArray():
		return nil, fmt.Errorf("%w: usageEventsDisplay is %s", ErrMalformedResponse, events.Type)
	}
	return events.Array(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
