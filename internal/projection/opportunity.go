package projection

import (
	"fmt"
	"time"

	"github.com/Veraticus/sats-budget/internal/model"
)

// OpportunityRow values a purchase some years after it was made.
type OpportunityRow struct {
	Years       int
	FuturePrice float64
	FutureValue float64 // fiat value of the sats had they been held
	Cost        float64 // FutureValue less the fiat value at purchase
	Multiple    float64
}

// OpportunityCost is the lifecycle cost of spending sats instead of holding them.
type OpportunityCost struct {
	Purchased     time.Time
	Rows          []OpportunityRow
	Amount        model.Sats
	PurchasePrice float64 // fair value on the purchase date
	PurchaseValue float64 // fiat value of Amount on the purchase date
}

// LifecycleCost prices amount at fair value on purchased and again at each horizon (in years) after it.
func LifecycleCost(amount model.Sats, purchased time.Time, horizons []int, useFloor bool) (*OpportunityCost, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive, got %d", ErrDomain, amount)
	}

	purchasePrice, err := PriceAt(purchased, false)
	if err != nil {
		return nil, err
	}

	btc := amount.BTC()
	result := &OpportunityCost{
		Purchased:     purchased,
		Amount:        amount,
		PurchasePrice: purchasePrice,
		PurchaseValue: btc * purchasePrice,
		Rows:          make([]OpportunityRow, 0, len(horizons)),
	}

	for _, years := range horizons {
		if years < 0 || years > MaxHorizonYears {
			return nil, fmt.Errorf("%w: horizon must be between 0 and %d years, got %d", ErrDomain, MaxHorizonYears, years)
		}

		price, err := PriceAt(yearsLater(purchased, float64(years)), useFloor)
		if err != nil {
			return nil, err
		}
		value := btc * price
		result.Rows = append(result.Rows, OpportunityRow{
			Years:       years,
			FuturePrice: price,
			FutureValue: value,
			Cost:        value - result.PurchaseValue,
			Multiple:    value / result.PurchaseValue,
		})
	}
	return result, nil
}

// Largest returns the row with the greatest opportunity cost, or false when there are no rows.
func (o *OpportunityCost) Largest() (OpportunityRow, bool) {
	if len(o.Rows) == 0 {
		return OpportunityRow{}, false
	}
	best := o.Rows[0]
	for _, row := range o.Rows[1:] {
		if row.Cost > best.Cost {
			best = row
		}
	}
	return best, true
}
