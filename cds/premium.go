package cds

import (
	"time"

	"gonum.org/v1/gonum/floats"
)

// premiumLeg sums survival-weighted, discounted premium cashflows paid after valDate.
//
// The accrual start advances through every pay date, settled or not, so the first live period
// accrues from the previous pay date rather than from the premium start date.
func (e *Engine) premiumLeg(spec *Specification, premium float64, valDate time.Time, lk *lookups) (float64, error) {
	periodStart := spec.premiumStartDate
	contrib := make([]float64, 0, len(spec.payDates))
	for _, p := range spec.payDates {
		start := periodStart
		periodStart = p
		if !p.After(valDate) {
			continue
		}

		accrual := lk.dc.YearFraction(start, p)
		cashflow := premium * accrual * spec.notional

		df, err := lk.discount(p)
		if err != nil {
			return 0, err
		}
		s, err := lk.survival(p)
		if err != nil {
			return 0, err
		}
		contrib = append(contrib, cashflow*df*s)
	}
	return floats.Sum(contrib), nil
}
