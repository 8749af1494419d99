// Package settings talks to the global-settings collaborator that owns the
// calendarLocked flag. The flag is re-fetched for every lock evaluation and
// a fetch failure fails safe to locked.
package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// Client reads and writes the process-wide calendar lock flag.
type Client interface {
	// CalendarLocked returns the global flag. Any failure reports
	// locked=true so week-based locking is never silently disabled by an
	// outage.
	CalendarLocked(ctx context.Context) bool
	SetCalendarLocked(ctx context.Context, locked bool) error
}

type calendarLockPayload struct {
	CalendarLocked bool `json:"calendarLocked"`
}

// HTTPClient implements Client against the settings REST collaborator. A
// circuit breaker keeps a struggling settings service from slowing every
// request down; an open circuit is just another fail-safe read.
type HTTPClient struct {
	client  *http.Client
	baseURL string
	cb      *gobreaker.CircuitBreaker
}

// NewHTTPClient creates a settings client for the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	settings := gobreaker.Settings{
		Name:        "Settings-API",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.5
		},
	}

	return &HTTPClient{
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		baseURL: baseURL,
		cb:      gobreaker.NewCircuitBreaker(settings),
	}
}

// CalendarLocked fetches the flag, failing safe to true.
func (c *HTTPClient) CalendarLocked(ctx context.Context) bool {
	result, err := c.cb.Execute(func() (interface{}, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("Calendar lock fetch failed, failing safe to locked")
		return true
	}
	return result.(bool)
}

func (c *HTTPClient) fetch(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/calendar-lock", nil)
	if err != nil {
		return true, fmt.Errorf("building settings request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return true, fmt.Errorf("calling settings api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return true, fmt.Errorf("settings api returned status %d", resp.StatusCode)
	}

	var payload calendarLockPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return true, fmt.Errorf("decoding settings response: %w", err)
	}
	return payload.CalendarLocked, nil
}

// SetCalendarLocked writes the flag. Writes are not fail-safe: the admin
// must see the failure.
func (c *HTTPClient) SetCalendarLocked(ctx context.Context, locked bool) error {
	body, err := json.Marshal(calendarLockPayload{CalendarLocked: locked})
	if err != nil {
		return fmt.Errorf("encoding settings request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/calendar-lock", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building settings request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling settings api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("settings api returned status %d", resp.StatusCode)
	}
	return nil
}
