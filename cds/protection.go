package cds

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/meenmo/credlib/daycount"
)

// grid returns n+1 evenly spaced instants from start to end inclusive, where
// n = max(MinTimesteps, ceil(years * TimestepsPerYear)) and years is measured ACT/365F.
func (e *Engine) grid(start, end time.Time) []time.Time {
	years := daycount.Act365Fixed.YearFraction(start, end)
	n := int(math.Ceil(years * float64(e.cfg.TimestepsPerYear)))
	if n < e.cfg.MinTimesteps {
		n = e.cfg.MinTimesteps
	}

	// Offsets are taken in seconds; time.Duration saturates past about 292 years.
	sec, nsec := start.Unix(), int64(start.Nanosecond())
	span := float64(end.Unix()-sec) + float64(int64(end.Nanosecond())-nsec)/1e9
	out := make([]time.Time, 0, n+1)
	out = append(out, start)
	for i := 1; i < n; i++ {
		off := span * float64(i) / float64(n)
		whole := math.Floor(off)
		t := time.Unix(sec+int64(whole), nsec+int64(math.Round((off-whole)*1e9)))
		out = append(out, t.In(start.Location()))
	}
	return append(out, end)
}

// protectionLeg integrates discounted default probability times loss-given-default over the grid.
func (e *Engine) protectionLeg(spec *Specification, valDate time.Time, lk *lookups, recovery RecoveryCurve) (float64, error) {
	if !valDate.Before(spec.expiry) {
		return 0, nil
	}

	grid := e.grid(valDate, spec.expiry)
	e.log.Debug().Int("intervals", len(grid)-1).Msg("protection leg grid")

	prevSurv, err := lk.survival(grid[0])
	if err != nil {
		return 0, err
	}

	contrib := make([]float64, 0, len(grid)-1)
	for i := 1; i < len(grid); i++ {
		t := grid[i]
		s, err := lk.survival(t)
		if err != nil {
			return 0, err
		}
		dp := prevSurv - s
		if dp < 0 {
			return 0, &CurveDataError{Curve: "survival", Date: t, Value: s, Reason: "survival probability increases over time"}
		}

		df, err := lk.discount(t)
		if err != nil {
			return 0, err
		}

		r, err := e.recoveryRate(spec, valDate, grid[i-1], t, lk.dc, recovery)
		if err != nil {
			return 0, err
		}

		contrib = append(contrib, df*dp*(1-r))
		prevSurv = s
	}
	return floats.Sum(contrib) * spec.notional, nil
}

// recoveryRate picks the contractual rate, or the curve at the midpoint of (from, to].
func (e *Engine) recoveryRate(spec *Specification, valDate, from, to time.Time, dc daycount.Convention, recovery RecoveryCurve) (float64, error) {
	if spec.usesFixedRecovery() {
		return spec.recovery, nil
	}
	mid := from.Add(to.Sub(from) / 2)
	r, err := recovery.Value(valDate, mid, dc)
	if err != nil {
		return 0, err
	}
	if err := checkRecovery(mid, r); err != nil {
		return 0, err
	}
	return r, nil
}
