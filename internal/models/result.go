package models

import (
	"errors"

	"github.com/aalabort/Grocefy/internal/money"
)

// OptimizationResult is one output row: the cheapest offer found for a
// product and how it compares against the user's current supermarket.
//
// SavingsVsCurrent is nil when the current price is unknown ("not
// applicable"), which is distinct from a genuine zero saving. When present
// it is never negative: if no outside offer beats the current price, the
// cheapest fields mirror the current supermarket's own data and the saving
// is zero.
//
// The four pairwise saving fields are informational detail beyond
// SavingsVsCurrent. Each is current − cheapest for that price-type pairing,
// nil when either operand is absent, and deliberately not clamped: comparing
// across price types (e.g. cheapest regular vs current membership) can
// legitimately produce a negative figure.
type OptimizationResult struct {
	ProductName        string
	CurrentSupermarket string
	CurrentRegular     *money.Amount
	CurrentMembership  *money.Amount

	CheapestSupermarket string
	CheapestRegular     *money.Amount
	CheapestMembership  *money.Amount

	SavingsVsCurrent *money.Amount

	SavingCheapestRegularVsCurrentRegular       *money.Amount
	SavingCheapestRegularVsCurrentMembership    *money.Amount
	SavingCheapestMembershipVsCurrentRegular    *money.Amount
	SavingCheapestMembershipVsCurrentMembership *money.Amount

	// HistoricalLowWarning is set when the ledger has seen a strictly
	// lower price for this product than this run's cheapest offer.
	HistoricalLowWarning string
}

// Validate checks result integrity.
func (r *OptimizationResult) Validate() error {
	if r.ProductName == "" {
		return errors.New("product name must not be empty")
	}
	if r.CurrentSupermarket == "" {
		return errors.New("current supermarket must not be empty")
	}
	if r.CheapestSupermarket == "" {
		return errors.New("cheapest supermarket must not be empty")
	}
	if r.CheapestRegular == nil && r.CheapestMembership == nil {
		return errors.New("cheapest offer must carry at least one price")
	}
	if r.SavingsVsCurrent != nil && r.SavingsVsCurrent.IsNegative() {
		return errors.New("savings vs current must not be negative")
	}
	return nil
}
