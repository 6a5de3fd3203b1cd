package scrape

import (
	"context"
	"sync"
	"time"

	"github.com/aalabort/Grocefy/internal/logger"
	"github.com/aalabort/Grocefy/internal/models"
)

// Coordinator fans price lookups out across the target supermarkets, one
// worker per supermarket per product, and merges their observations.
// Products are processed sequentially; an optional fixed batch size adds a
// cooldown delay between batches so the scraper service's rate limits are
// respected. The cooldown is scheduling policy of this layer only; the
// optimizer downstream has no timing semantics.
type Coordinator struct {
	fetcher      Fetcher
	supermarkets []string
	batchSize    int
	batchDelay   time.Duration
}

// NewCoordinator creates a coordinator. batchSize <= 0 disables batching.
func NewCoordinator(fetcher Fetcher, supermarkets []string, batchSize int, batchDelay time.Duration) *Coordinator {
	return &Coordinator{
		fetcher:      fetcher,
		supermarkets: supermarkets,
		batchSize:    batchSize,
		batchDelay:   batchDelay,
	}
}

// Run collects observations for every product. The returned slice holds,
// for each product in input order, one observation per supermarket in the
// configured supermarket order. A worker failure degrades to a not-found
// observation so one supermarket's outage never sinks a product. Run
// returns early with the observations gathered so far when ctx is
// cancelled.
func (c *Coordinator) Run(ctx context.Context, products []models.Product) []models.PriceObservation {
	if len(products) == 0 || len(c.supermarkets) == 0 {
		return nil
	}

	batch := c.batchSize
	if batch <= 0 || batch > len(products) {
		batch = len(products)
	}

	all := make([]models.PriceObservation, 0, len(products)*len(c.supermarkets))
	for start := 0; start < len(products); start += batch {
		if start > 0 && c.batchDelay > 0 {
			logger.Info("Cooling down %v before next batch", c.batchDelay)
			if err := sleepCtx(ctx, c.batchDelay); err != nil {
				return all
			}
		}

		end := min(start+batch, len(products))
		for _, p := range products[start:end] {
			if ctx.Err() != nil {
				return all
			}
			logger.Info("Searching prices for %q across %d supermarkets", p.Name, len(c.supermarkets))
			all = append(all, c.collectProduct(ctx, p)...)
		}
	}
	return all
}

// collectProduct queries every supermarket concurrently and merges the
// results by supermarket index, keeping output order deterministic.
func (c *Coordinator) collectProduct(ctx context.Context, p models.Product) []models.PriceObservation {
	type outcome struct {
		index int
		obs   models.PriceObservation
	}

	results := make(chan outcome, len(c.supermarkets))
	var wg sync.WaitGroup

	for i, supermarket := range c.supermarkets {
		wg.Add(1)
		go func(index int, supermarket string) {
			defer wg.Done()
			obs, err := c.fetcher.FetchPrice(ctx, p.Name, supermarket)
			if err != nil {
				logger.Warn("Price fetch failed for %q at %s: %v", p.Name, supermarket, err)
				obs = models.PriceObservation{Product: p.Name, Supermarket: supermarket, Found: false}
			}
			results <- outcome{index: index, obs: obs}
		}(i, supermarket)
	}

	wg.Wait()
	close(results)

	merged := make([]models.PriceObservation, len(c.supermarkets))
	for out := range results {
		merged[out.index] = out.obs
	}
	return merged
}
