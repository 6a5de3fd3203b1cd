// Package csvio reads the shopping-list CSV and writes optimization results
// in the fixed 12-column layout the reporting layer expects.
package csvio

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/aalabort/Grocefy/internal/models"
	"github.com/aalabort/Grocefy/internal/money"
)

// Shopping-list columns. Matched by header name, not position.
const (
	colProductName       = "product_name"
	colCurrentMarket     = "current_supermarket"
	colCurrentRegular    = "current_regular_price"
	colCurrentMembership = "current_membership_price"
)

// resultColumns is the results-file header. Order is fixed: downstream
// reporting indexes these by position as well as name.
var resultColumns = []string{
	"product_name",
	"current_supermarket",
	"current_regular_price",
	"current_membership_price",
	"cheapest_supermarket",
	"cheapest_regular_price",
	"cheapest_membership_price",
	"savings_vs_current",
	"saving_cheapest_regular_vs_current_regular",
	"saving_cheapest_regular_vs_current_membership",
	"saving_cheapest_membership_vs_current_regular",
	"saving_cheapest_membership_vs_current_membership",
}

// ReadProducts parses the shopping-list file. Rows with an empty product
// name are skipped; missing required header columns are an error.
func ReadProducts(path string) ([]models.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open products file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse products file: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("products file %s is empty", path)
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[name] = i
	}
	for _, required := range []string{colProductName, colCurrentMarket, colCurrentRegular, colCurrentMembership} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("products file missing required column %q", required)
		}
	}

	field := func(rec []string, name string) string {
		i := index[name]
		if i < len(rec) {
			return rec[i]
		}
		return ""
	}

	var products []models.Product
	for _, rec := range records[1:] {
		p := models.Product{
			Name:                 field(rec, colProductName),
			CurrentSupermarket:   field(rec, colCurrentMarket),
			RawCurrentRegular:    field(rec, colCurrentRegular),
			RawCurrentMembership: field(rec, colCurrentMembership),
		}
		if p.Name == "" {
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

// WriteResults writes the optimization results file. The header row is
// always written, even for an empty result set, so downstream consumers
// see a cleared file rather than a stale one. Absent values render as N/A.
func WriteResults(path string, results []models.OptimizationResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create results file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(resultColumns); err != nil {
		return fmt.Errorf("failed to write results header: %w", err)
	}

	for i := range results {
		r := &results[i]
		rec := []string{
			r.ProductName,
			r.CurrentSupermarket,
			money.FormatPtr(r.CurrentRegular),
			money.FormatPtr(r.CurrentMembership),
			r.CheapestSupermarket,
			money.FormatPtr(r.CheapestRegular),
			money.FormatPtr(r.CheapestMembership),
			money.FormatPtr(r.SavingsVsCurrent),
			money.FormatPtr(r.SavingCheapestRegularVsCurrentRegular),
			money.FormatPtr(r.SavingCheapestRegularVsCurrentMembership),
			money.FormatPtr(r.SavingCheapestMembershipVsCurrentRegular),
			money.FormatPtr(r.SavingCheapestMembershipVsCurrentMembership),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("failed to write result row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush results file: %w", err)
	}
	return nil
}
