package optimizer

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/aalabort/Grocefy/internal/models"
	"github.com/aalabort/Grocefy/internal/money"
)

// Summary aggregates a batch of optimization results into the figures the
// report and notification layers consume.
type Summary struct {
	RunID               string
	TotalSavings        money.Amount
	BestSwitch          *models.OptimizationResult
	ProductsWithSavings []string
	Lines               []string
}

// Summarize computes the grand total saving, the single best switch
// (maximum saving, ties broken by input order), the products with any
// positive saving, and a deterministic per-product summary line. String
// formatting only; numeric results are never altered here.
func Summarize(results []models.OptimizationResult) Summary {
	s := Summary{RunID: uuid.New().String()}

	var best *models.OptimizationResult
	for i := range results {
		r := &results[i]
		if r.SavingsVsCurrent != nil {
			s.TotalSavings = s.TotalSavings.Add(*r.SavingsVsCurrent)
			if r.SavingsVsCurrent.IsPositive() {
				s.ProductsWithSavings = append(s.ProductsWithSavings, r.ProductName)
				if best == nil || best.SavingsVsCurrent.LessThan(*r.SavingsVsCurrent) {
					best = r
				}
			}
		}
		s.Lines = append(s.Lines, summaryLine(r))
	}
	s.BestSwitch = best
	return s
}

// summaryLine renders one product's outcome for human consumption. The
// displayed price prefers membership over regular, matching how shoppers
// read shelf labels with a loyalty card.
func summaryLine(r *models.OptimizationResult) string {
	currentPrice := r.CurrentMembership
	if currentPrice == nil {
		currentPrice = r.CurrentRegular
	}
	cheapestPrice := r.CheapestMembership
	if cheapestPrice == nil {
		cheapestPrice = r.CheapestRegular
	}

	line := fmt.Sprintf("%s: switch from %s (%s) to %s (%s) - save %s",
		r.ProductName,
		r.CurrentSupermarket, money.FormatPtr(currentPrice),
		r.CheapestSupermarket, money.FormatPtr(cheapestPrice),
		money.FormatPtr(r.SavingsVsCurrent),
	)
	if r.HistoricalLowWarning != "" {
		line += " " + r.HistoricalLowWarning
	}
	return line
}
