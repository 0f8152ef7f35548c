package probe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/okian/gigmatch/internal/domain/model"
)

// Client calls the gigmatch HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a client with a per-request timeout. A positive rps
// paces requests to that many per second across all callers.
func NewClient(baseURL string, timeout time.Duration, rps float64) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
	if rps > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
	}
	return c
}

type planRequest struct {
	Profile            model.UserProfile `json:"profile"`
	Limit              int               `json:"limit,omitempty"`
	MaxPerDay          int               `json:"maxPerDay,omitempty"`
	IncludeDiscoveries bool              `json:"includeDiscoveries"`
}

type recommendationsResponse struct {
	Recommendations []model.ScoredPerformance `json:"recommendations"`
}

type conflictsResponse struct {
	Conflicts []model.ScheduleConflict `json:"conflicts"`
}

// Health checks /healthz.
func (c *Client) Health(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, "/healthz", nil, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	return nil
}

// PutFestival uploads a festival and returns the stored copy.
func (c *Client) PutFestival(ctx context.Context, f *model.Festival) (model.Festival, error) {
	var out model.Festival
	err := c.do(ctx, http.MethodPut, "/v1/festivals/"+url.PathEscape(f.ID), f, &out)
	return out, err
}

// Recommendations fetches the scored lineup, best first.
func (c *Client) Recommendations(ctx context.Context, festivalID string, profile model.UserProfile) ([]model.ScoredPerformance, error) {
	var out recommendationsResponse
	err := c.do(ctx, http.MethodPost, "/v1/festivals/"+url.PathEscape(festivalID)+"/recommendations",
		planRequest{Profile: profile}, &out)
	return out.Recommendations, err
}

// Itinerary plans a festival for a profile.
func (c *Client) Itinerary(ctx context.Context, festivalID string, profile model.UserProfile, maxPerDay int) (model.Itinerary, error) {
	var out model.Itinerary
	err := c.do(ctx, http.MethodPost, "/v1/festivals/"+url.PathEscape(festivalID)+"/itinerary",
		planRequest{Profile: profile, MaxPerDay: maxPerDay}, &out)
	return out, err
}

// Conflicts checks a selection for overlaps.
func (c *Client) Conflicts(ctx context.Context, selected []model.Performance) ([]model.ScheduleConflict, error) {
	var out conflictsResponse
	err := c.do(ctx, http.MethodPost, "/v1/conflicts", map[string]any{"selected": selected}, &out)
	return out.Conflicts, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var rd io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s %s: %d: %s", ErrUnexpectedStatus, method, path, resp.StatusCode, bytes.TrimSpace(data))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
