// Package projection models the long-run purchasing power of sats under a
// power-law price curve and sizes the stack needed to fund future spending.
//
// Everything here is pure arithmetic. Invalid inputs are rejected with ErrDomain
// rather than allowed to produce NaN or Inf.
package projection

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Power-law model constants.
const (
	// Coefficient and Exponent define price = Coefficient * days^Exponent.
	Coefficient = 1.0117e-17
	Exponent    = 5.82

	// FloorFactor scales fair value down to a conservative floor price.
	FloorFactor = 0.42

	// DaysPerYear converts fractional years into days.
	DaysPerYear = 365.25

	// MaxHorizonYears bounds how far ahead a projection may look.
	MaxHorizonYears = 200
)

// Genesis is day zero of the curve.
var Genesis = time.Date(2009, time.January, 3, 0, 0, 0, 0, time.UTC)

// ErrDomain reports an input outside the range the model is defined on.
var ErrDomain = errors.New("input outside model domain")

// FairValue returns the modelled price for a day count since Genesis.
func FairValue(days int) (float64, error) {
	if days <= 0 {
		return 0, fmt.Errorf("%w: days since genesis must be positive, got %d", ErrDomain, days)
	}
	return Coefficient * math.Pow(float64(days), Exponent), nil
}

// FloorValue returns the conservative floor price for a day count since Genesis.
func FloorValue(days int) (float64, error) {
	price, err := FairValue(days)
	if err != nil {
		return 0, err
	}
	return price * FloorFactor, nil
}

// DaysSinceGenesis returns the whole days elapsed from Genesis to t, rounding down.
func DaysSinceGenesis(t time.Time) int {
	return int(math.Floor(t.Sub(Genesis).Hours() / 24))
}

// PriceAt returns the modelled price at t, optionally at the floor.
func PriceAt(t time.Time, useFloor bool) (float64, error) {
	days := DaysSinceGenesis(t)
	if useFloor {
		return FloorValue(days)
	}
	return FairValue(days)
}

// yearsLater moves t forward by a possibly fractional number of years.
func yearsLater(t time.Time, years float64) time.Time {
	return t.Add(time.Duration(years * DaysPerYear * float64(24*time.Hour)))
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
