package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/moto-picks/internal/metrics"
)

const liveTimingSource = "live_timing"

// LiveTimingClient fetches entry lists and qualifying results from the live
// timing API. It is the change detector for cache invalidation, not a feature
// source.
type LiveTimingClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	logger     *logrus.Logger
}

// EventInfo describes a scheduled event from the live timing API
type EventInfo struct {
	EventID   uuid.UUID `json:"eventId"`
	Name      string    `json:"name"`
	Venue     string    `json:"venue"`
	StartTime time.Time `json:"startTime"`
	IsIndoor  bool      `json:"isIndoor"`
	Status    string    `json:"status"`
}

// EntryListRider is one rider on an event entry list
type EntryListRider struct {
	RiderID   uuid.UUID `json:"riderId"`
	Name      string    `json:"name"`
	Number    int       `json:"number"`
	BikeClass string    `json:"bikeClass"`
	Handicap  int       `json:"handicap"`
	IsAllStar bool      `json:"isAllStar"`
	IsInjured bool      `json:"isInjured"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// QualifyingResult is one rider's qualifying session result
type QualifyingResult struct {
	RiderID   uuid.UUID `json:"riderId"`
	BikeClass string    `json:"bikeClass"`
	Position  int       `json:"position"`
	LapTime   float64   `json:"lapTime"`
	Gap       float64   `json:"gap"`
	Session   string    `json:"session"`
}

// NewLiveTimingClient creates a new live timing API client
func NewLiveTimingClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, logger *logrus.Logger) *LiveTimingClient {
	return &LiveTimingClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     logger,
	}
}

// GetUpcomingEvents retrieves scheduled events
func (c *LiveTimingClient) GetUpcomingEvents(ctx context.Context) ([]EventInfo, error) {
	var events []EventInfo
	if err := c.getJSON(ctx, "events", fmt.Sprintf("%s/events?status=scheduled", c.baseURL), &events); err != nil {
		return nil, err
	}
	return events, nil
}

// GetEntryList retrieves the current entry list for an event
func (c *LiveTimingClient) GetEntryList(ctx context.Context, eventID uuid.UUID) ([]EntryListRider, error) {
	var riders []EntryListRider
	url := fmt.Sprintf("%s/events/%s/entries", c.baseURL, eventID)
	if err := c.getJSON(ctx, "entry_list", url, &riders); err != nil {
		return nil, err
	}
	return riders, nil
}

// GetQualifyingResults retrieves qualifying session results for an event
func (c *LiveTimingClient) GetQualifyingResults(ctx context.Context, eventID uuid.UUID) ([]QualifyingResult, error) {
	var results []QualifyingResult
	url := fmt.Sprintf("%s/events/%s/qualifying", c.baseURL, eventID)
	if err := c.getJSON(ctx, "qualifying", url, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *LiveTimingClient) getJSON(ctx context.Context, endpoint, url string, out interface{}) error {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return NewDataSourceError(liveTimingSource, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		metrics.RecordLiveTimingRequest(endpoint, "error")
		return NewDataSourceError(liveTimingSource, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		metrics.RecordLiveTimingRequest(endpoint, "auth_failed")
		return NewDataSourceError(liveTimingSource, ErrCodeAuthenticationFailed, "invalid API key", nil)
	case resp.StatusCode == http.StatusNotFound:
		metrics.RecordLiveTimingRequest(endpoint, "not_found")
		return NewDataSourceError(liveTimingSource, ErrCodeNotFound, "resource not found", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		metrics.RecordLiveTimingRequest(endpoint, "rate_limited")
		return NewDataSourceError(liveTimingSource, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case resp.StatusCode != http.StatusOK:
		metrics.RecordLiveTimingRequest(endpoint, "server_error")
		body, _ := io.ReadAll(resp.Body)
		return NewDataSourceError(liveTimingSource, ErrCodeServerError,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.RecordLiveTimingRequest(endpoint, "invalid_data")
		return NewDataSourceError(liveTimingSource, ErrCodeInvalidData, "failed to parse response", err)
	}

	metrics.RecordLiveTimingRequest(endpoint, "success")
	metrics.RecordLiveTimingFetch(time.Since(start).Seconds())
	return nil
}
