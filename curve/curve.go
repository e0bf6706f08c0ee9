// Package curve provides the discount, survival and recovery curves consumed by the cds pricer.
//
// Curves are immutable after construction and safe for concurrent reads. Every lookup takes the
// as-of date of the caller; a curve only answers for the as-of date it was built on.
package curve

import (
	"fmt"
	"math"
	"time"

	"github.com/meenmo/credlib/daycount"
)

type base struct {
	name string
	asOf time.Time
	v    valuer
}

func (b *base) lookup(asOf, target time.Time, dc daycount.Convention) (float64, error) {
	if !asOf.Equal(b.asOf) {
		return 0, &LookupError{Curve: b.name, AsOf: asOf, Date: target, Reason: "curve is anchored on a different as-of date"}
	}
	v, reason, ok := b.v.at(b.asOf, target, dc)
	if !ok {
		return 0, &LookupError{Curve: b.name, AsOf: asOf, Date: target, Reason: reason}
	}
	return v, nil
}

// Name returns the curve identifier used in error messages.
func (b *base) Name() string { return b.name }

// AsOf returns the anchor date.
func (b *base) AsOf() time.Time { return b.asOf }

// withAnchor prepends (asOf, 1) so that discount and survival curves start at par.
func withAnchor(asOf time.Time, dates []time.Time, values []float64) ([]time.Time, []float64) {
	if len(dates) > 0 && dates[0].Equal(asOf) {
		return dates, values
	}
	d := append([]time.Time{asOf}, dates...)
	v := append([]float64{1}, values...)
	return d, v
}

// Discount is a discount factor curve with its own day counter.
type Discount struct {
	base
	dc daycount.Convention
}

// NewDiscount builds a discount curve from node discount factors. A node at asOf with value 1 is
// added when the first node is later than asOf.
func NewDiscount(name string, asOf time.Time, dates []time.Time, dfs []float64, dc daycount.Convention, in Interpolation, ex Extrapolation) (*Discount, error) {
	d, v := withAnchor(asOf, dates, dfs)
	nodes, err := newDated(asOf, d, v, in, ex)
	if err != nil {
		return nil, fmt.Errorf("NewDiscount %s: %w", name, err)
	}
	return &Discount{base: base{name: name, asOf: asOf, v: nodes}, dc: dc}, nil
}

// FlatDiscount returns df for every date.
func FlatDiscount(name string, asOf time.Time, df float64, dc daycount.Convention) *Discount {
	return &Discount{base: base{name: name, asOf: asOf, v: flat{df}}, dc: dc}
}

// FlatRateDiscount discounts at a continuously compounded rate: exp(-rate * t).
func FlatRateDiscount(name string, asOf time.Time, rate float64, dc daycount.Convention) *Discount {
	return &Discount{base: base{name: name, asOf: asOf, v: flatRate{rate}}, dc: dc}
}

// Value returns the discount factor at target.
func (c *Discount) Value(asOf, target time.Time) (float64, error) {
	return c.lookup(asOf, target, c.dc)
}

// DayCounter returns the curve's accrual convention.
func (c *Discount) DayCounter() daycount.Convention { return c.dc }

// ZeroRate returns the continuously compounded zero rate to target, in decimal.
func (c *Discount) ZeroRate(asOf, target time.Time) (float64, error) {
	df, err := c.Value(asOf, target)
	if err != nil {
		return 0, err
	}
	t := c.dc.YearFraction(asOf, target)
	if t == 0 {
		return 0, nil
	}
	return -math.Log(df) / t, nil
}

// Survival is a survival probability curve.
type Survival struct {
	base
}

// NewSurvival builds a survival curve from node probabilities, anchored at 1 on asOf.
func NewSurvival(name string, asOf time.Time, dates []time.Time, probs []float64, in Interpolation, ex Extrapolation) (*Survival, error) {
	d, v := withAnchor(asOf, dates, probs)
	nodes, err := newDated(asOf, d, v, in, ex)
	if err != nil {
		return nil, fmt.Errorf("NewSurvival %s: %w", name, err)
	}
	return &Survival{base: base{name: name, asOf: asOf, v: nodes}}, nil
}

// NewHazard builds a survival curve from piecewise-constant hazard rates.
func NewHazard(name string, asOf time.Time, dates []time.Time, rates []float64) (*Survival, error) {
	h, err := newHazard(asOf, dates, rates)
	if err != nil {
		return nil, fmt.Errorf("NewHazard %s: %w", name, err)
	}
	return &Survival{base: base{name: name, asOf: asOf, v: h}}, nil
}

// FlatHazard is a survival curve with a single constant hazard rate.
func FlatHazard(name string, asOf time.Time, rate float64) (*Survival, error) {
	return NewHazard(name, asOf, []time.Time{asOf.AddDate(100, 0, 0)}, []float64{rate})
}

// FlatSurvival is 1 on asOf and p at every later date, so the whole default mass 1-p falls
// just after asOf.
func FlatSurvival(name string, asOf time.Time, p float64) *Survival {
	return &Survival{base: base{name: name, asOf: asOf, v: anchoredFlat{p}}}
}

// Value returns the survival probability at target.
func (c *Survival) Value(asOf, target time.Time, dc daycount.Convention) (float64, error) {
	return c.lookup(asOf, target, dc)
}

// Recovery is a recovery rate curve.
type Recovery struct {
	base
}

// NewRecovery builds a recovery curve from node values.
func NewRecovery(name string, asOf time.Time, dates []time.Time, rates []float64, in Interpolation, ex Extrapolation) (*Recovery, error) {
	nodes, err := newDated(asOf, dates, rates, in, ex)
	if err != nil {
		return nil, fmt.Errorf("NewRecovery %s: %w", name, err)
	}
	return &Recovery{base: base{name: name, asOf: asOf, v: nodes}}, nil
}

// FlatRecovery returns r for every date.
func FlatRecovery(name string, asOf time.Time, r float64) *Recovery {
	return &Recovery{base: base{name: name, asOf: asOf, v: flat{r}}}
}

// Value returns the recovery rate at target.
func (c *Recovery) Value(asOf, target time.Time, dc daycount.Convention) (float64, error) {
	return c.lookup(asOf, target, dc)
}
