// Package memory answers historical price questions from the ledger store.
// It is a strictly read-only consumer: it never writes ledger files.
//
// Product matching is a case-insensitive substring test against ledger row
// keys. That is deliberately permissive so renamed or re-simplified product
// names still hit their history, at the cost of occasionally matching an
// unrelated product that shares a word.
package memory

import (
	"fmt"
	"strings"

	"github.com/aalabort/Grocefy/internal/ledger"
	"github.com/aalabort/Grocefy/internal/logger"
	"github.com/aalabort/Grocefy/internal/money"
)

// HistoricalLow is the lowest price ever recorded for a product, with
// provenance.
type HistoricalLow struct {
	Price       money.Amount
	Supermarket string
	Date        string
	PriceType   ledger.PriceType
}

// Warning renders the low-price warning attached to optimization results,
// e.g. "⚠️ Cheaper in past: £1.50 at Tesco (2025-11-20)".
func (l *HistoricalLow) Warning() string {
	return fmt.Sprintf("⚠️ Cheaper in past: %s at %s (%s)", l.Price.String(), l.Supermarket, l.Date)
}

// String summarizes the historical low for logs and reports.
func (l *HistoricalLow) String() string {
	return fmt.Sprintf("%s at %s (%s) on %s", l.Price.String(), l.Supermarket, l.PriceType, l.Date)
}

// Service performs lowest-ever lookups over a ledger store.
type Service struct {
	store *ledger.Store
}

// NewService creates a memory service reading from the given store.
func NewService(store *ledger.Store) *Service {
	return &Service{store: store}
}

// LowestEver scans every supermarket's ledger for rows matching the product
// name and returns the lowest valid positive price ever recorded, with
// provenance. Returns (nil, nil) when there is no history at all or no cell
// matches. An unreadable ledger is logged and treated as empty for the
// lookup; unparsable or non-positive cells are skipped, not errors.
func (s *Service) LowestEver(product string) (*HistoricalLow, error) {
	supermarkets, err := s.store.Supermarkets()
	if err != nil {
		return nil, fmt.Errorf("failed to list ledgers: %w", err)
	}

	needle := strings.ToLower(product)
	var low *HistoricalLow

	for _, supermarket := range supermarkets {
		h, err := s.store.Load(supermarket)
		if err != nil {
			logger.Warn("Skipping unreadable ledger for %s: %v", supermarket, err)
			continue
		}

		// Iterate rows and dates in deterministic order so ties in price
		// always resolve to the same provenance.
		for _, key := range h.SortedKeys() {
			if !strings.Contains(strings.ToLower(key), needle) {
				continue
			}
			priceType := ledger.Regular
			if strings.HasSuffix(key, " - "+string(ledger.Membership)) {
				priceType = ledger.Membership
			}
			for _, date := range h.Dates {
				cell := h.Get(key, date)
				if cell == "" {
					continue
				}
				price, ok := money.Parse(cell)
				if !ok || !price.IsPositive() {
					continue
				}
				if low == nil || price.LessThan(low.Price) {
					low = &HistoricalLow{
						Price:       price,
						Supermarket: supermarket,
						Date:        date,
						PriceType:   priceType,
					}
				}
			}
		}
	}
	return low, nil
}
