package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aalabort/Grocefy/internal/models"
	"github.com/aalabort/Grocefy/internal/money"
)

// fakeFetcher returns canned observations and records every request.
type fakeFetcher struct {
	mu       sync.Mutex
	requests []string // "product@supermarket"
	prices   map[string]string
	failFor  map[string]bool
}

func (f *fakeFetcher) FetchPrice(ctx context.Context, product, supermarket string) (models.PriceObservation, error) {
	f.mu.Lock()
	f.requests = append(f.requests, product+"@"+supermarket)
	f.mu.Unlock()

	if f.failFor[supermarket] {
		return models.PriceObservation{}, errors.New("scraper unavailable")
	}
	raw, ok := f.prices[product+"@"+supermarket]
	if !ok {
		return models.NewPriceObservation(product, supermarket, false, "", ""), nil
	}
	return models.NewPriceObservation(product, supermarket, true, raw, ""), nil
}

func TestCoordinatorRunCollectsAllSupermarkets(t *testing.T) {
	fetcher := &fakeFetcher{
		prices: map[string]string{
			"Milk@Tesco": "£1.50",
			"Milk@Aldi":  "£1.20",
		},
	}
	c := NewCoordinator(fetcher, []string{"Tesco", "Aldi", "Lidl"}, 0, 0)

	products := []models.Product{{Name: "Milk", CurrentSupermarket: "Tesco"}}
	observations := c.Run(context.Background(), products)

	if len(observations) != 3 {
		t.Fatalf("expected 3 observations, got %d", len(observations))
	}

	// Output order follows the configured supermarket order.
	if observations[0].Supermarket != "Tesco" || observations[1].Supermarket != "Aldi" || observations[2].Supermarket != "Lidl" {
		t.Errorf("observations out of order: %v, %v, %v",
			observations[0].Supermarket, observations[1].Supermarket, observations[2].Supermarket)
	}

	if money.FormatPtr(observations[1].RegularPrice) != "£1.20" {
		t.Errorf("Aldi price = %s, expected £1.20", money.FormatPtr(observations[1].RegularPrice))
	}
	if observations[2].Found {
		t.Error("Lidl had no price and should be not-found")
	}
}

func TestCoordinatorWorkerFailureDegradesToNotFound(t *testing.T) {
	fetcher := &fakeFetcher{
		prices:  map[string]string{"Milk@Tesco": "£1.50"},
		failFor: map[string]bool{"Aldi": true},
	}
	c := NewCoordinator(fetcher, []string{"Tesco", "Aldi"}, 0, 0)

	observations := c.Run(context.Background(), []models.Product{{Name: "Milk", CurrentSupermarket: "Tesco"}})
	if len(observations) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(observations))
	}

	aldi := observations[1]
	if aldi.Supermarket != "Aldi" || aldi.Found {
		t.Errorf("failed worker should yield not-found observation, got %+v", aldi)
	}
	if aldi.RegularPrice != nil || aldi.MembershipPrice != nil {
		t.Error("failed worker observation must not carry prices")
	}
}

func TestCoordinatorProcessesProductsSequentially(t *testing.T) {
	fetcher := &fakeFetcher{prices: map[string]string{}}
	c := NewCoordinator(fetcher, []string{"Tesco"}, 0, 0)

	products := []models.Product{
		{Name: "Milk", CurrentSupermarket: "Tesco"},
		{Name: "Bread", CurrentSupermarket: "Tesco"},
	}
	observations := c.Run(context.Background(), products)

	if len(observations) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(observations))
	}
	if observations[0].Product != "Milk" || observations[1].Product != "Bread" {
		t.Error("observations not grouped in product order")
	}
}

func TestCoordinatorBatchCooldown(t *testing.T) {
	fetcher := &fakeFetcher{prices: map[string]string{}}
	delay := 50 * time.Millisecond
	c := NewCoordinator(fetcher, []string{"Tesco"}, 1, delay)

	products := []models.Product{
		{Name: "Milk", CurrentSupermarket: "Tesco"},
		{Name: "Bread", CurrentSupermarket: "Tesco"},
		{Name: "Eggs", CurrentSupermarket: "Tesco"},
	}

	start := time.Now()
	observations := c.Run(context.Background(), products)
	elapsed := time.Since(start)

	if len(observations) != 3 {
		t.Fatalf("expected 3 observations, got %d", len(observations))
	}
	// Two cooldowns between three single-product batches.
	if elapsed < 2*delay {
		t.Errorf("elapsed %v, expected at least %v of cooldown", elapsed, 2*delay)
	}
}

func TestCoordinatorStopsOnCancel(t *testing.T) {
	fetcher := &fakeFetcher{prices: map[string]string{}}
	c := NewCoordinator(fetcher, []string{"Tesco"}, 1, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	products := []models.Product{
		{Name: "Milk", CurrentSupermarket: "Tesco"},
		{Name: "Bread", CurrentSupermarket: "Tesco"},
	}

	done := make(chan []models.PriceObservation, 1)
	go func() { done <- c.Run(ctx, products) }()

	// Let the first batch finish, then cancel during the cooldown.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case observations := <-done:
		if len(observations) != 1 {
			t.Errorf("expected only the first batch's observation, got %d", len(observations))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestClientFetchPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/price" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"found": true, "regular_price": "£1.50", "membership_price": ""}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, 3, 10*time.Millisecond)
	obs, err := client.FetchPrice(context.Background(), "Milk", "Tesco")
	if err != nil {
		t.Fatalf("FetchPrice failed: %v", err)
	}

	if !obs.Found {
		t.Error("expected found observation")
	}
	if money.FormatPtr(obs.RegularPrice) != "£1.50" {
		t.Errorf("RegularPrice = %s, expected £1.50", money.FormatPtr(obs.RegularPrice))
	}
	if obs.MembershipPrice != nil {
		t.Error("empty membership price should be absent")
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"found": false, "regular_price": "", "membership_price": ""}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, 3, time.Millisecond)
	obs, err := client.FetchPrice(context.Background(), "Milk", "Tesco")
	if err != nil {
		t.Fatalf("FetchPrice failed after retries: %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
	if obs.Found {
		t.Error("expected not-found observation")
	}
}

func TestClientGivesUpAfterMaxRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, 2, time.Millisecond)
	if _, err := client.FetchPrice(context.Background(), "Milk", "Tesco"); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, 3, time.Millisecond)
	if _, err := client.FetchPrice(context.Background(), "Milk", "Tesco"); err == nil {
		t.Fatal("expected error for 4xx response")
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt for client error, got %d", attempts)
	}
}
