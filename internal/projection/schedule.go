package projection

import (
	"fmt"
	"math"
	"time"
)

// Bisection bounds for MinimumPrincipalForSchedule, in BTC.
const (
	SearchLowerBound    = 0.01
	SearchUpperBound    = 100.0
	SearchTolerance     = 0.001
	SearchMaxIterations = 100
)

// MinStartYear is the first year whose January 1 lies after Genesis.
const MinStartYear = 2010

// Schedule describes yearly withdrawals that grow with inflation.
type Schedule struct {
	StartYear     int
	AnnualExpense float64 // fiat spent in the first year
	InflationRate float64
	DurationYears int
	UseFloor      bool // price every year at the floor instead of fair value
}

// Validate checks the schedule against the model's domain.
func (s Schedule) Validate() error {
	switch {
	case s.StartYear < MinStartYear:
		return fmt.Errorf("%w: start year must be %d or later, got %d", ErrDomain, MinStartYear, s.StartYear)
	case !finite(s.AnnualExpense, s.InflationRate):
		return fmt.Errorf("%w: expense and inflation must be finite", ErrDomain)
	case s.AnnualExpense < 0:
		return fmt.Errorf("%w: annual expense cannot be negative, got %v", ErrDomain, s.AnnualExpense)
	case s.DurationYears < 0 || s.DurationYears > MaxHorizonYears:
		return fmt.Errorf("%w: duration must be between 0 and %d years, got %d", ErrDomain, MaxHorizonYears, s.DurationYears)
	case s.InflationRate <= -1:
		return fmt.Errorf("%w: inflation rate must exceed -100%%, got %v", ErrDomain, s.InflationRate)
	}
	return nil
}

// withdrawals returns the BTC sold in each year of the schedule.
func (s Schedule) withdrawals() ([]float64, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	out := make([]float64, s.DurationYears)
	for offset := range out {
		jan1 := time.Date(s.StartYear+offset, time.January, 1, 0, 0, 0, 0, time.UTC)
		price, err := PriceAt(jan1, s.UseFloor)
		if err != nil {
			return nil, err
		}
		expense := s.AnnualExpense * math.Pow(1+s.InflationRate, float64(offset))
		out[offset] = expense / price
	}
	return out, nil
}

// Solvent reports whether principal BTC covers every year's withdrawal.
func (s Schedule) Solvent(principal float64) (bool, error) {
	sells, err := s.withdrawals()
	if err != nil {
		return false, err
	}
	return solvent(principal, sells), nil
}

func solvent(principal float64, sells []float64) bool {
	remaining := principal
	for _, sell := range sells {
		remaining -= sell
		if remaining < 0 {
			return false
		}
	}
	return true
}

// MinimumPrincipalForSchedule bisects for the smallest BTC stack that stays
// solvent through s. Solvency is monotone in the principal. The search never leaves [SearchLowerBound, SearchUpperBound];
// a schedule that needs more than the upper bound returns the upper bound, and
// Solvent reports false for it.
func MinimumPrincipalForSchedule(s Schedule) (float64, error) {
	sells, err := s.withdrawals()
	if err != nil {
		return 0, err
	}

	lo, hi := SearchLowerBound, SearchUpperBound
	for i := 0; i < SearchMaxIterations; i++ {
		mid := (lo + hi) / 2
		ok := solvent(mid, sells)

		if math.Abs(hi-lo) < SearchTolerance {
			break
		}
		if ok {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi, nil
}

// RetirementRow is one start year of a retirement table.
type RetirementRow struct {
	Year      int
	Price     float64 // fair value on January 1
	Principal float64 // BTC needed to start retiring that year
	Solvent   bool    // false when Principal hit the search bound without covering the schedule
}

// RetirementTable solves the schedule for each start year from fromYear to toYear inclusive.
// The StartYear of base is ignored.
func RetirementTable(fromYear, toYear int, base Schedule) ([]RetirementRow, error) {
	if toYear < fromYear {
		return nil, fmt.Errorf("%w: year range %d-%d is inverted", ErrDomain, fromYear, toYear)
	}

	rows := make([]RetirementRow, 0, toYear-fromYear+1)
	for year := fromYear; year <= toYear; year++ {
		s := base
		s.StartYear = year

		principal, err := MinimumPrincipalForSchedule(s)
		if err != nil {
			return nil, fmt.Errorf("year %d: %w", year, err)
		}
		ok, err := s.Solvent(principal)
		if err != nil {
			return nil, err
		}
		price, err := PriceAt(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), false)
		if err != nil {
			return nil, err
		}

		rows = append(rows, RetirementRow{
			Year:      year,
			Price:     price,
			Principal: principal,
			Solvent:   ok,
		})
	}
	return rows, nil
}
