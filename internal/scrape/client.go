// Package scrape coordinates price collection from the external scraper
// service. The service owns all browser automation and vision-model work;
// this package only speaks its JSON API and fans requests out across
// supermarkets, merging results over a channel so no shared mutable state
// crosses worker boundaries.
package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aalabort/Grocefy/internal/models"
)

// Fetcher obtains one supermarket's price observation for one product.
type Fetcher interface {
	FetchPrice(ctx context.Context, product, supermarket string) (models.PriceObservation, error)
}

// Client is an HTTP Fetcher backed by the scraper service.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a scraper-service client.
func NewClient(baseURL string, timeout time.Duration, maxRetries int, retryDelayBase time.Duration) *Client {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}
}

// priceRequest and priceResponse mirror the scraper service's JSON API.
// Prices come back as raw strings (possibly currency-prefixed or empty);
// parsing happens in models.NewPriceObservation.
type priceRequest struct {
	Product     string `json:"product"`
	Supermarket string `json:"supermarket"`
}

type priceResponse struct {
	Found           bool   `json:"found"`
	RegularPrice    string `json:"regular_price"`
	MembershipPrice string `json:"membership_price"`
}

// FetchPrice asks the scraper service for one product's prices at one
// supermarket.
func (c *Client) FetchPrice(ctx context.Context, product, supermarket string) (models.PriceObservation, error) {
	body, err := json.Marshal(priceRequest{Product: product, Supermarket: supermarket})
	if err != nil {
		return models.PriceObservation{}, fmt.Errorf("failed to encode price request: %w", err)
	}

	resp, err := c.doRequest(ctx, c.baseURL+"/v1/price", body)
	if err != nil {
		return models.PriceObservation{}, fmt.Errorf("failed to fetch price for %q at %s: %w", product, supermarket, err)
	}
	defer resp.Body.Close()

	var pr priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return models.PriceObservation{}, fmt.Errorf("failed to decode price response: %w", err)
	}

	return models.NewPriceObservation(product, supermarket, pr.Found, pr.RegularPrice, pr.MembershipPrice), nil
}

// doRequest performs a POST with bounded retry on transport errors and 5xx
// responses.
func (c *Client) doRequest(ctx context.Context, url string, body []byte) (*http.Response, error) {
	var lastErr error

	for i := 0; i < c.maxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if waitErr := sleepCtx(ctx, c.retryDelayBase*time.Duration(i+1)); waitErr != nil {
				return nil, waitErr
			}
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			if waitErr := sleepCtx(ctx, c.retryDelayBase*time.Duration(i+1)); waitErr != nil {
				return nil, waitErr
			}
			continue
		}

		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("client error: %d", resp.StatusCode)
		}

		return resp, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// sleepCtx waits for the given duration unless the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
