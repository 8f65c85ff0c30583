package solis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"solisview/internal/logger"
)

// DefaultBaseURL is the production Solis cloud endpoint.
const DefaultBaseURL = "https://www.soliscloud.com:13333"

const (
	stationListPath  = "/v1/api/userStationList/"
	stationMonthPath = "/v1/api/stationMonth"

	// Currency requested from the API for its monetary fields. The
	// aggregation only consumes energy values.
	currency = "SEK"

	stationPageSize = 100
)

// RequestError reports a non-2xx response from the Solis API.
type RequestError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("solis: %s returned %d: %s", e.Path, e.StatusCode, e.Body)
}

// Client talks to the Solis cloud API. Requests are never retried; the
// circuit breaker only fails fast once the upstream has been consistently
// failing.
type Client struct {
	baseURL string
	signer  *Signer
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

// NewClient creates a Client. An empty baseURL selects the production
// endpoint; tests point it at a local server.
func NewClient(httpClient *http.Client, baseURL, keyID, secret string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "solis",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		baseURL: baseURL,
		signer:  NewSigner(keyID, secret),
		client:  httpClient,
		circuit: cb,
		log:     logger.New("solis-client"),
	}
}

// UserStationList returns the first page of stations on the account.
// Pagination is not implemented; a full page is surfaced as a warning.
func (c *Client) UserStationList(ctx context.Context) ([]Station, error) {
	body := map[string]any{"pageNo": 1, "pageSize": stationPageSize}

	var resp stationListResponse
	if err := c.post(ctx, stationListPath, body, &resp); err != nil {
		return nil, err
	}

	records := resp.Data.Page.Records
	if len(records) == stationPageSize {
		c.log.Warn().
			Int("pageSize", stationPageSize).
			Msg("station list page is full; stations beyond the first page are not fetched")
	}
	return records, nil
}

// StationMonth returns the per-day production of one station for a month
// given as "YYYY-MM".
func (c *Client) StationMonth(ctx context.Context, stationID, month string) ([]DailyEnergyRecord, error) {
	body := map[string]any{"id": stationID, "money": currency, "month": month}

	var resp stationMonthResponse
	if err := c.post(ctx, stationMonthPath, body, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// post signs and sends one request and decodes the JSON response into out.
func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request for %s: %w", path, err)
	}

	result, err := c.circuit.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}

		h := c.signer.Sign(path, payload)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Content-MD5", h.ContentMD5)
		req.Header.Set("Date", h.Date)
		req.Header.Set("Authorization", h.Authorization)
		req.Header.Set("Connection", "keep-alive")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &RequestError{Path: path, StatusCode: resp.StatusCode, Body: string(raw)}
		}
		return raw, nil
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(result.([]byte), out); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}
	return nil
}
