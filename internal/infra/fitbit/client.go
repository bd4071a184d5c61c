package fitbit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"mood-journal/internal/domain"
)

// Client reads today's activity, sleep, and heart-rate summaries. Each call
// is independent and best-effort: a failed metric comes back as an empty map
// with the error recorded on it, never aborting the other two.
type Client struct {
	accessToken string
	httpClient  *http.Client
	baseURL     string
	logger      *slog.Logger
}

func NewClient(accessToken string, timeout time.Duration, logger *slog.Logger) *Client {
	return NewClientWithURL(accessToken, timeout, "https://api.fitbit.com", logger)
}

func NewClientWithURL(accessToken string, timeout time.Duration, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		logger:      logger,
	}
}

func (c *Client) FetchToday(ctx context.Context) domain.Snapshot {
	today := time.Now().Format("2006-01-02")
	c.logger.Info("fetching fitness data", "date", today)

	return domain.Snapshot{
		Activity: c.fetch(ctx, fmt.Sprintf("/1/user/-/activities/date/%s.json", today), activitySummary),
		Sleep:    c.fetch(ctx, fmt.Sprintf("/1.2/user/-/sleep/date/%s.json", today), sleepStages),
		Heart:    c.fetch(ctx, fmt.Sprintf("/1/user/-/activities/heart/date/%s/1d.json", today), heartValue),
	}
}

func (c *Client) fetch(ctx context.Context, path string, extract func(map[string]any) map[string]any) domain.Metric {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return c.failed(path, fmt.Errorf("creating request: %w", err))
	}

	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.failed(path, fmt.Errorf("sending request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return c.failed(path, fmt.Errorf("fitbit API error %d: %s", resp.StatusCode, string(body)))
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return c.failed(path, fmt.Errorf("decoding response: %w", err))
	}

	return domain.Metric{Data: extract(payload)}
}

func (c *Client) failed(path string, err error) domain.Metric {
	c.logger.Error("fetching fitness metric", "path", path, "error", err)
	return domain.Metric{Err: err}
}

// activitySummary reduces the activity response to its "summary" object.
func activitySummary(body map[string]any) map[string]any {
	return subObject(body, "summary")
}

// sleepStages reduces the sleep response to "summary.stages".
func sleepStages(body map[string]any) map[string]any {
	return subObject(subObject(body, "summary"), "stages")
}

// heartValue reduces the heart response to "activities-heart[0].value".
func heartValue(body map[string]any) map[string]any {
	entries, ok := body["activities-heart"].([]any)
	if !ok || len(entries) == 0 {
		return map[string]any{}
	}
	first, ok := entries[0].(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return subObject(first, "value")
}

func subObject(body map[string]any, key string) map[string]any {
	if body == nil {
		return map[string]any{}
	}
	sub, ok := body[key].(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return sub
}
