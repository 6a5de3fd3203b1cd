package models

import (
	"testing"

	"github.com/aalabort/Grocefy/internal/money"
)

func amount(f float64) *money.Amount {
	a := money.FromFloat(f)
	return &a
}

func TestNewPriceObservation(t *testing.T) {
	tests := []struct {
		name           string
		found          bool
		rawRegular     string
		rawMembership  string
		wantRegular    string
		wantMembership string
	}{
		{
			name:           "both prices parse",
			found:          true,
			rawRegular:     "£2.00",
			rawMembership:  "£1.80",
			wantRegular:    "£2.00",
			wantMembership: "£1.80",
		},
		{
			name:        "membership missing",
			found:       true,
			rawRegular:  "1.20",
			wantRegular: "£1.20",
		},
		{
			name:          "malformed regular becomes absent",
			found:         true,
			rawRegular:    "n/a",
			rawMembership: "£1.40",

			wantMembership: "£1.40",
		},
		{
			name:          "not found drops prices",
			found:         false,
			rawRegular:    "£2.00",
			rawMembership: "£1.80",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := NewPriceObservation("Milk", "Tesco", tt.found, tt.rawRegular, tt.rawMembership)

			if got := money.FormatPtr(obs.RegularPrice); tt.wantRegular == "" && obs.RegularPrice != nil {
				t.Errorf("RegularPrice = %s, expected absent", got)
			} else if tt.wantRegular != "" && got != tt.wantRegular {
				t.Errorf("RegularPrice = %s, expected %s", got, tt.wantRegular)
			}
			if got := money.FormatPtr(obs.MembershipPrice); tt.wantMembership == "" && obs.MembershipPrice != nil {
				t.Errorf("MembershipPrice = %s, expected absent", got)
			} else if tt.wantMembership != "" && got != tt.wantMembership {
				t.Errorf("MembershipPrice = %s, expected %s", got, tt.wantMembership)
			}

			if err := obs.Validate(); err != nil {
				t.Errorf("Validate failed: %v", err)
			}
		})
	}
}

func TestPriceObservationUsable(t *testing.T) {
	tests := []struct {
		name   string
		obs    PriceObservation
		usable bool
	}{
		{
			name:   "found with regular price",
			obs:    PriceObservation{Product: "Milk", Supermarket: "Tesco", Found: true, RegularPrice: amount(1.20)},
			usable: true,
		},
		{
			name:   "found with membership only",
			obs:    PriceObservation{Product: "Milk", Supermarket: "Tesco", Found: true, MembershipPrice: amount(1.10)},
			usable: true,
		},
		{
			name:   "found without prices",
			obs:    PriceObservation{Product: "Milk", Supermarket: "Tesco", Found: true},
			usable: false,
		},
		{
			name:   "not found",
			obs:    PriceObservation{Product: "Milk", Supermarket: "Tesco", Found: false},
			usable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.obs.Usable(); got != tt.usable {
				t.Errorf("Usable() = %v, expected %v", got, tt.usable)
			}
		})
	}
}

func TestPriceObservationEffectivePrice(t *testing.T) {
	obs := PriceObservation{Product: "Milk", Supermarket: "Tesco", Found: true, RegularPrice: amount(1.50), MembershipPrice: amount(1.40)}
	if got := obs.EffectivePrice(); got == nil || got.String() != "£1.40" {
		t.Errorf("EffectivePrice = %v, expected £1.40", money.FormatPtr(got))
	}

	regularOnly := PriceObservation{Product: "Milk", Supermarket: "Aldi", Found: true, RegularPrice: amount(1.20)}
	if got := regularOnly.EffectivePrice(); got == nil || got.String() != "£1.20" {
		t.Errorf("EffectivePrice = %v, expected £1.20", money.FormatPtr(got))
	}

	empty := PriceObservation{Product: "Milk", Supermarket: "Lidl", Found: true}
	if got := empty.EffectivePrice(); got != nil {
		t.Errorf("EffectivePrice = %v, expected nil", got)
	}
}

func TestPriceObservationValidate(t *testing.T) {
	tests := []struct {
		name    string
		obs     PriceObservation
		wantErr bool
	}{
		{
			name: "valid",
			obs:  PriceObservation{Product: "Milk", Supermarket: "Tesco", Found: true, RegularPrice: amount(1.20)},
		},
		{
			name:    "empty product",
			obs:     PriceObservation{Supermarket: "Tesco", Found: true},
			wantErr: true,
		},
		{
			name:    "empty supermarket",
			obs:     PriceObservation{Product: "Milk", Found: true},
			wantErr: true,
		},
		{
			name:    "not found with price",
			obs:     PriceObservation{Product: "Milk", Supermarket: "Tesco", Found: false, RegularPrice: amount(1.20)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.obs.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewProductRecord(t *testing.T) {
	p := Product{
		Name:                 "Milk",
		CurrentSupermarket:   "Tesco",
		RawCurrentRegular:    "£2.00",
		RawCurrentMembership: "",
	}
	offers := []PriceObservation{
		{Product: "Milk", Supermarket: "Aldi", Found: true, RegularPrice: amount(1.20)},
	}

	rec := NewProductRecord(p, offers)
	if rec.Name != "Milk" || rec.CurrentSupermarket != "Tesco" {
		t.Errorf("unexpected record identity: %+v", rec)
	}
	if money.FormatPtr(rec.CurrentRegular) != "£2.00" {
		t.Errorf("CurrentRegular = %s, expected £2.00", money.FormatPtr(rec.CurrentRegular))
	}
	if rec.CurrentMembership != nil {
		t.Error("empty membership price string should parse to absent")
	}
	if len(rec.Offers) != 1 {
		t.Fatalf("expected 1 offer, got %d", len(rec.Offers))
	}
	if err := rec.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestOptimizationResultValidate(t *testing.T) {
	negative := money.FromFloat(-0.50)

	tests := []struct {
		name    string
		result  OptimizationResult
		wantErr bool
	}{
		{
			name: "valid",
			result: OptimizationResult{
				ProductName:         "Milk",
				CurrentSupermarket:  "Tesco",
				CheapestSupermarket: "Aldi",
				CheapestRegular:     amount(1.20),
				SavingsVsCurrent:    amount(0.80),
			},
		},
		{
			name: "missing cheapest prices",
			result: OptimizationResult{
				ProductName:         "Milk",
				CurrentSupermarket:  "Tesco",
				CheapestSupermarket: "Aldi",
			},
			wantErr: true,
		},
		{
			name: "negative savings",
			result: OptimizationResult{
				ProductName:         "Milk",
				CurrentSupermarket:  "Tesco",
				CheapestSupermarket: "Aldi",
				CheapestRegular:     amount(1.20),
				SavingsVsCurrent:    &negative,
			},
			wantErr: true,
		},
		{
			name: "nil savings is valid not-applicable",
			result: OptimizationResult{
				ProductName:         "Milk",
				CurrentSupermarket:  "Tesco",
				CheapestSupermarket: "Aldi",
				CheapestRegular:     amount(1.20),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.result.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
