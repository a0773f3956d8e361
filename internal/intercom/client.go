// Package intercom implements the client for the upstream contact
// source, a paged cursor-based HTTP API.
package intercom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	apperrors "github.com/contact-sync/internal/errors"
	"golang.org/x/time/rate"
)

// Contact is one record returned by the upstream contacts endpoint
type Contact struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// ContactsResponse is the wire shape of one page of contacts
type ContactsResponse struct {
	Data  []Contact `json:"data"`
	Pages struct {
		Next *struct {
			StartingAfter string `json:"starting_after"`
		} `json:"next,omitempty"`
	} `json:"pages"`
	TotalCount int `json:"total_count"`
}

// PageRequest describes one page fetch
type PageRequest struct {
	PerPage       int
	StartingAfter string
	// UpdatedSince filters to records updated at or after the watermark.
	// Sent upstream as epoch seconds; nil disables the filter.
	UpdatedSince *time.Time
}

// Page is one fetched page of upstream contacts
type Page struct {
	Contacts   []Contact
	NextCursor string
	TotalCount int
}

// Client fetches contacts from the upstream source. Requests are rate
// limited to stay inside the upstream quota; every call takes a context.
type Client struct {
	token   string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient creates a new upstream contact source client
func NewClient(token, baseURL string, requestsPerSecond float64) *Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5
	}

	return &Client{
		token:   token,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// Configured reports whether the client has an API token. Import runs
// refuse to start against an unconfigured client.
func (c *Client) Configured() bool {
	return c.token != ""
}

// FetchPage fetches one page of contacts
func (c *Client) FetchPage(ctx context.Context, req PageRequest) (*Page, error) {
	if c.token == "" {
		return nil, apperrors.NewConfigurationError("upstream API token is not configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	endpoint := fmt.Sprintf("%s/contacts", c.baseURL)

	params := url.Values{}
	params.Set("per_page", strconv.Itoa(req.PerPage))
	if req.StartingAfter != "" {
		params.Set("starting_after", req.StartingAfter)
	}
	if req.UpdatedSince != nil {
		params.Set("updated_since", strconv.FormatInt(req.UpdatedSince.Unix(), 10))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build contacts request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("contacts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("contacts request returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed ContactsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode contacts response: %w", err)
	}

	page := &Page{
		Contacts:   parsed.Data,
		TotalCount: parsed.TotalCount,
	}
	if parsed.Pages.Next != nil {
		page.NextCursor = parsed.Pages.Next.StartingAfter
	}

	return page, nil
}
