// Package models defines the core domain entities for the Grocefy
// optimization engine: scraped price observations, the per-product record
// the optimizer consumes, and the per-product optimization result.
//
// Terminology:
//   - Observation: one supermarket's prices for one product in one run.
//   - Record: one shopping-list product plus all observations gathered for it.
//   - Result: the cheapest-offer decision and savings figures for one record.
//
// Models include built-in validation so malformed scrape output is caught
// before it enters the engine.
package models

import (
	"errors"

	"github.com/aalabort/Grocefy/internal/money"
)

// PriceObservation is one scraped data point: one supermarket's regular and
// membership prices for one product. Either price may be absent; a product
// the retailer does not stock is reported with Found=false and no prices.
type PriceObservation struct {
	Product         string        `json:"product"`
	Supermarket     string        `json:"supermarket"`
	Found           bool          `json:"found"`
	RegularPrice    *money.Amount `json:"regular_price,omitempty"`
	MembershipPrice *money.Amount `json:"membership_price,omitempty"`
}

// NewPriceObservation builds an observation from raw scrape output. Price
// strings are parsed softly: malformed or empty input becomes an absent
// price. A not-found observation never carries prices regardless of input.
func NewPriceObservation(product, supermarket string, found bool, rawRegular, rawMembership string) PriceObservation {
	obs := PriceObservation{
		Product:     product,
		Supermarket: supermarket,
		Found:       found,
	}
	if found {
		obs.RegularPrice = money.ParsePtr(rawRegular)
		obs.MembershipPrice = money.ParsePtr(rawMembership)
	}
	return obs
}

// Usable reports whether the observation can participate in offer
// selection: the product was found and at least one price parsed.
func (o *PriceObservation) Usable() bool {
	return o.Found && (o.RegularPrice != nil || o.MembershipPrice != nil)
}

// EffectivePrice returns the lower of the regular and membership price, or
// nil when the observation carries no price at all.
func (o *PriceObservation) EffectivePrice() *money.Amount {
	return money.MinPtr(o.RegularPrice, o.MembershipPrice)
}

// Validate checks that the observation is internally consistent.
func (o *PriceObservation) Validate() error {
	if o.Product == "" {
		return errors.New("product must not be empty")
	}
	if o.Supermarket == "" {
		return errors.New("supermarket must not be empty")
	}
	if !o.Found && (o.RegularPrice != nil || o.MembershipPrice != nil) {
		return errors.New("not-found observation must not carry prices")
	}
	return nil
}
