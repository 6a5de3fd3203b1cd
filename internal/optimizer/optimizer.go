// Package optimizer implements the price-optimization engine: selecting the
// cheapest viable offer per product, computing savings against the user's
// current supermarket, and cross-referencing the historical ledger to warn
// when today's "best" price is worse than a previously seen low.
//
// The engine is pure data transformation: no I/O on the hot path beyond the
// injected history lookup, deterministic for a given input, and safe to run
// repeatedly. Products with no usable price data are skipped entirely
// rather than emitted as zero-saving rows.
package optimizer

import (
	"github.com/aalabort/Grocefy/internal/logger"
	"github.com/aalabort/Grocefy/internal/memory"
	"github.com/aalabort/Grocefy/internal/models"
	"github.com/aalabort/Grocefy/internal/money"
)

// Config holds the engine's policy switches.
type Config struct {
	// UseMembershipForCurrent selects the baseline price for the current
	// supermarket: when true the membership price is preferred, falling
	// back to regular when absent; when false the regular price is always
	// used even if membership is cheaper.
	UseMembershipForCurrent bool
}

// HistoryLookup answers lowest-ever price queries. Satisfied by
// *memory.Service; nil disables historical-low warnings.
type HistoryLookup interface {
	LowestEver(product string) (*memory.HistoricalLow, error)
}

// Optimizer computes optimization results for product batches.
type Optimizer struct {
	cfg     Config
	history HistoryLookup
}

// New creates an Optimizer. history may be nil.
func New(cfg Config, history HistoryLookup) *Optimizer {
	return &Optimizer{cfg: cfg, history: history}
}

// BuildRecords groups a flat observation list into per-product records,
// preserving shopping-list order and observation arrival order. Every
// product yields a record even with zero observations; Optimize decides
// what to skip.
func BuildRecords(products []models.Product, observations []models.PriceObservation) []models.ProductRecord {
	byProduct := make(map[string][]models.PriceObservation)
	for _, o := range observations {
		byProduct[o.Product] = append(byProduct[o.Product], o)
	}

	records := make([]models.ProductRecord, 0, len(products))
	for _, p := range products {
		records = append(records, models.NewProductRecord(p, byProduct[p.Name]))
	}
	return records
}

// Optimize computes one result per product record that had at least one
// usable offer. Deterministic and idempotent: identical input yields
// identical output.
func (o *Optimizer) Optimize(records []models.ProductRecord) []models.OptimizationResult {
	results := make([]models.OptimizationResult, 0, len(records))
	for i := range records {
		res, ok := o.optimizeOne(&records[i])
		if !ok {
			logger.Debug("No usable offers for %q, excluded from results", records[i].Name)
			continue
		}
		results = append(results, res)
	}
	return results
}

// selection is the winning offer of a record.
type selection struct {
	supermarket string
	regular     *money.Amount
	membership  *money.Amount
	effective   money.Amount
}

// selectBest picks the offer with the minimum effective price. Offers with
// Found=false or no parsed price are discarded. Ties resolve to the first
// offer encountered, so input order is the tie-breaker.
func selectBest(offers []models.PriceObservation) (selection, bool) {
	var best selection
	found := false
	for i := range offers {
		offer := &offers[i]
		if !offer.Usable() {
			continue
		}
		effective := offer.EffectivePrice()
		if !found || effective.LessThan(best.effective) {
			best = selection{
				supermarket: offer.Supermarket,
				regular:     offer.RegularPrice,
				membership:  offer.MembershipPrice,
				effective:   *effective,
			}
			found = true
		}
	}
	return best, found
}

// currentEffective applies the current-price policy to a record. Returns
// nil when the policy's price is absent.
func (o *Optimizer) currentEffective(r *models.ProductRecord) *money.Amount {
	if o.cfg.UseMembershipForCurrent {
		if r.CurrentMembership != nil {
			return r.CurrentMembership
		}
		return r.CurrentRegular
	}
	return r.CurrentRegular
}

func (o *Optimizer) optimizeOne(r *models.ProductRecord) (models.OptimizationResult, bool) {
	best, ok := selectBest(r.Offers)
	if !ok {
		return models.OptimizationResult{}, false
	}

	current := o.currentEffective(r)

	var savings *money.Amount
	if current != nil {
		if current.LessThan(best.effective) {
			// The current supermarket already beats every offer: report it
			// as the cheapest rather than recommending a false switch.
			best = selection{
				supermarket: r.CurrentSupermarket,
				regular:     r.CurrentRegular,
				membership:  r.CurrentMembership,
				effective:   *current,
			}
			zero := money.Zero()
			savings = &zero
		} else {
			diff := current.Sub(best.effective)
			if diff.IsNegative() {
				diff = money.Zero()
			}
			savings = &diff
		}
	}

	result := models.OptimizationResult{
		ProductName:         r.Name,
		CurrentSupermarket:  r.CurrentSupermarket,
		CurrentRegular:      r.CurrentRegular,
		CurrentMembership:   r.CurrentMembership,
		CheapestSupermarket: best.supermarket,
		CheapestRegular:     best.regular,
		CheapestMembership:  best.membership,
		SavingsVsCurrent:    savings,

		SavingCheapestRegularVsCurrentRegular:       savingBetween(best.regular, r.CurrentRegular),
		SavingCheapestRegularVsCurrentMembership:    savingBetween(best.regular, r.CurrentMembership),
		SavingCheapestMembershipVsCurrentRegular:    savingBetween(best.membership, r.CurrentRegular),
		SavingCheapestMembershipVsCurrentMembership: savingBetween(best.membership, r.CurrentMembership),
	}

	if o.history != nil {
		low, err := o.history.LowestEver(r.Name)
		if err != nil {
			logger.Warn("History lookup failed for %q: %v", r.Name, err)
		} else if low != nil && low.Price.LessThan(best.effective) {
			result.HistoricalLowWarning = low.Warning()
		}
	}

	return result, true
}

// savingBetween computes one pairwise saving: current − cheapest. Returns
// nil when either operand is absent. Not clamped; cross-price-type pairs
// may be negative and are preserved as computed.
func savingBetween(cheapest, current *money.Amount) *money.Amount {
	if cheapest == nil || current == nil {
		return nil
	}
	diff := current.Sub(*cheapest)
	return &diff
}
