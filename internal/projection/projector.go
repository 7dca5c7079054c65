package projection

import (
	"fmt"
	"math"
	"time"

	"github.com/Veraticus/sats-budget/internal/model"
)

// Option configures a Projector.
type Option func(*Projector)

// WithClock replaces the wall clock used for "today".
func WithClock(now func() time.Time) Option {
	return func(p *Projector) {
		p.now = now
	}
}

// Projector answers questions relative to today's date.
type Projector struct {
	now func() time.Time
}

// NewProjector returns a Projector using the wall clock unless overridden.
func NewProjector(opts ...Option) *Projector {
	p := &Projector{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Today returns the projector's current time in UTC.
func (p *Projector) Today() time.Time {
	return p.now().UTC()
}

// PurchasingPower is the result of FuturePurchasingPower.
type PurchasingPower struct {
	Current          float64 // sats today
	Future           float64 // sats needed later for the same purchases
	ReductionPercent float64
	PriceNow         float64
	PriceFuture      float64
	Appreciation     float64
	Inflation        float64
}

// FuturePurchasingPower computes how many sats will be needed yearsAhead from
// today to buy what current sats buy now, given annual fiat inflation rate and
// appreciation along the fair-value curve.
func (p *Projector) FuturePurchasingPower(current model.Sats, yearsAhead, rate float64) (PurchasingPower, error) {
	if current <= 0 {
		return PurchasingPower{}, fmt.Errorf("%w: amount must be positive, got %d", ErrDomain, current)
	}
	if !finite(yearsAhead, rate) || yearsAhead < 0 || yearsAhead > MaxHorizonYears {
		return PurchasingPower{}, fmt.Errorf("%w: years ahead must be between 0 and %d, got %v", ErrDomain, MaxHorizonYears, yearsAhead)
	}
	if rate <= -1 {
		return PurchasingPower{}, fmt.Errorf("%w: inflation rate must exceed -100%%, got %v", ErrDomain, rate)
	}

	today := p.Today()
	daysNow := DaysSinceGenesis(today)
	priceNow, err := FairValue(daysNow)
	if err != nil {
		return PurchasingPower{}, err
	}
	priceFuture, err := FairValue(DaysSinceGenesis(yearsLater(today, yearsAhead)))
	if err != nil {
		return PurchasingPower{}, err
	}

	amount := float64(current)
	appreciation := priceFuture / priceNow
	inflation := math.Pow(1+rate, yearsAhead)
	future := amount * inflation / appreciation

	return PurchasingPower{
		Current:          amount,
		Future:           future,
		ReductionPercent: (1 - future/amount) * 100,
		PriceNow:         priceNow,
		PriceFuture:      priceFuture,
		Appreciation:     appreciation,
		Inflation:        inflation,
	}, nil
}

// StackRow is one year of a stacking projection.
type StackRow struct {
	Year       int
	Stack      model.Sats
	Price      float64
	Value      float64
	Multiplier float64 // Value over today's value; zero when nothing is held today
}

// StackProjection is the future value of a stack with regular monthly buys.
type StackProjection struct {
	Rows         []StackRow
	CurrentPrice float64
	CurrentValue float64
}

// ProjectStack values current plus monthly stacking at each of the next years.
func (p *Projector) ProjectStack(current, monthly model.Sats, years int, useFloor bool) (*StackProjection, error) {
	if current < 0 || monthly < 0 {
		return nil, fmt.Errorf("%w: stack and monthly amount cannot be negative", ErrDomain)
	}
	if years < 0 || years > MaxHorizonYears {
		return nil, fmt.Errorf("%w: years must be between 0 and %d, got %d", ErrDomain, MaxHorizonYears, years)
	}

	today := p.Today()
	priceNow, err := FairValue(DaysSinceGenesis(today))
	if err != nil {
		return nil, err
	}

	proj := &StackProjection{
		CurrentPrice: priceNow,
		CurrentValue: current.BTC() * priceNow,
		Rows:         make([]StackRow, 0, years),
	}

	for year := 1; year <= years; year++ {
		price, err := PriceAt(yearsLater(today, float64(year)), useFloor)
		if err != nil {
			return nil, err
		}

		stack := current + monthly*model.Sats(12*year)
		row := StackRow{
			Year:  year,
			Stack: stack,
			Price: price,
			Value: stack.BTC() * price,
		}
		if proj.CurrentValue > 0 {
			row.Multiplier = row.Value / proj.CurrentValue
		}
		proj.Rows = append(proj.Rows, row)
	}
	return proj, nil
}
