package models

import (
	"errors"

	"github.com/aalabort/Grocefy/internal/money"
)

// Product is one row of the user's shopping list as read from the products
// file. Prices are kept in raw string form at this boundary; they are parsed
// when the ProductRecord is built.
type Product struct {
	Name                 string
	CurrentSupermarket   string
	RawCurrentRegular    string
	RawCurrentMembership string
}

// Validate checks that the shopping-list row is usable.
func (p *Product) Validate() error {
	if p.Name == "" {
		return errors.New("product name must not be empty")
	}
	if p.CurrentSupermarket == "" {
		return errors.New("current supermarket must not be empty")
	}
	return nil
}

// ProductRecord is the unit the optimizer operates on: one product, the
// user's current prices for it, and every offer gathered this run.
// Records are built once per product per run and never mutated afterwards.
type ProductRecord struct {
	Name               string
	CurrentSupermarket string
	CurrentRegular     *money.Amount
	CurrentMembership  *money.Amount
	Offers             []PriceObservation
}

// NewProductRecord builds a record from a shopping-list row and the
// observations gathered for it, parsing the current prices softly.
func NewProductRecord(p Product, offers []PriceObservation) ProductRecord {
	return ProductRecord{
		Name:               p.Name,
		CurrentSupermarket: p.CurrentSupermarket,
		CurrentRegular:     money.ParsePtr(p.RawCurrentRegular),
		CurrentMembership:  money.ParsePtr(p.RawCurrentMembership),
		Offers:             offers,
	}
}

// Validate checks record integrity.
func (r *ProductRecord) Validate() error {
	if r.Name == "" {
		return errors.New("product name must not be empty")
	}
	if r.CurrentSupermarket == "" {
		return errors.New("current supermarket must not be empty")
	}
	for i := range r.Offers {
		if err := r.Offers[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
