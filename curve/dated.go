package curve

import (
	"fmt"
	"math"
	"sync"
	"time"

	"gonum.org/v1/gonum/interp"

	"github.com/meenmo/credlib/daycount"
	"github.com/meenmo/credlib/utils"
)

// valuer is the lookup shared by all curve shapes. Time is measured from the curve's as-of date
// under dc.
type valuer interface {
	at(asOf, target time.Time, dc daycount.Convention) (float64, string, bool)
}

// flat returns the same value for every date.
type flat struct{ v float64 }

func (f flat) at(_, _ time.Time, _ daycount.Convention) (float64, string, bool) {
	return f.v, "", true
}

// anchoredFlat is 1 up to and including asOf and v afterwards.
type anchoredFlat struct{ v float64 }

func (f anchoredFlat) at(asOf, target time.Time, _ daycount.Convention) (float64, string, bool) {
	if !target.After(asOf) {
		return 1, "", true
	}
	return f.v, "", true
}

// flatRate is a continuously compounded discount curve exp(-r t).
type flatRate struct{ r float64 }

func (f flatRate) at(asOf, target time.Time, dc daycount.Convention) (float64, string, bool) {
	return math.Exp(-f.r * dc.YearFraction(asOf, target)), "", true
}

// dated holds node values interpolated over the year-fraction axis.
type dated struct {
	dates  []time.Time
	values []float64
	interp Interpolation
	extrap Extrapolation

	mu   sync.Mutex
	fits map[daycount.Convention]*fitted
}

type fitted struct {
	xs, ys    []float64
	predictor interp.Predictor
}

func newDated(asOf time.Time, dates []time.Time, values []float64, in Interpolation, ex Extrapolation) (*dated, error) {
	if len(dates) == 0 {
		return nil, fmt.Errorf("no curve nodes")
	}
	if len(dates) != len(values) {
		return nil, fmt.Errorf("%d dates but %d values", len(dates), len(values))
	}
	if !utils.StrictlyIncreasing(dates) {
		return nil, fmt.Errorf("node dates must be strictly increasing")
	}
	if dates[0].Before(asOf) {
		return nil, fmt.Errorf("first node %s before as-of %s", utils.FormatDate(dates[0]), utils.FormatDate(asOf))
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("node %d is not finite", i)
		}
		if (in == LinearLog || ex == LinearLogExtrapolation) && v <= 0 {
			return nil, fmt.Errorf("node %d: log interpolation needs positive values, got %g", i, v)
		}
	}
	return &dated{
		dates:  append([]time.Time(nil), dates...),
		values: append([]float64(nil), values...),
		interp: in,
		extrap: ex,
		fits:   make(map[daycount.Convention]*fitted),
	}, nil
}

func (d *dated) fit(asOf time.Time, dc daycount.Convention) (*fitted, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if f, ok := d.fits[dc]; ok {
		return f, nil
	}

	f := &fitted{
		xs: make([]float64, len(d.dates)),
		ys: make([]float64, len(d.values)),
	}
	for i, t := range d.dates {
		f.xs[i] = dc.YearFraction(asOf, t)
		f.ys[i] = d.values[i]
		if d.interp == LinearLog {
			f.ys[i] = math.Log(d.values[i])
		}
	}

	if len(f.xs) > 1 {
		switch d.interp {
		case Constant:
			var pc interp.PiecewiseConstant
			if err := pc.Fit(f.xs, f.ys); err != nil {
				return nil, err
			}
			f.predictor = &pc
		case Linear, LinearLog:
			var pl interp.PiecewiseLinear
			if err := pl.Fit(f.xs, f.ys); err != nil {
				return nil, err
			}
			f.predictor = &pl
		default:
			panic(fmt.Sprintf("curve: unhandled interpolation %s", d.interp))
		}
	}
	d.fits[dc] = f
	return f, nil
}

func (d *dated) at(asOf, target time.Time, dc daycount.Convention) (float64, string, bool) {
	f, err := d.fit(asOf, dc)
	if err != nil {
		return 0, err.Error(), false
	}
	x := dc.YearFraction(asOf, target)
	n := len(f.xs)

	if x >= f.xs[0] && x <= f.xs[n-1] {
		if n == 1 {
			return d.values[0], "", true
		}
		y := f.predictor.Predict(x)
		if d.interp == LinearLog {
			y = math.Exp(y)
		}
		return y, "", true
	}
	return d.extrapolate(x, f.xs)
}

func (d *dated) extrapolate(x float64, xs []float64) (float64, string, bool) {
	n := len(xs)
	lo, hi := 0, 1
	edge := 0
	if x > xs[n-1] {
		lo, hi, edge = n-2, n-1, n-1
	}

	switch d.extrap {
	case NoExtrapolation:
		return 0, fmt.Sprintf("t=%.6f outside node range [%.6f, %.6f] and extrapolation is NONE", x, xs[0], xs[n-1]), false
	case ConstantExtrapolation:
		return d.values[edge], "", true
	case LinearExtrapolation, LinearLogExtrapolation:
		if n == 1 {
			return d.values[0], "", true
		}
		y0, y1 := d.values[lo], d.values[hi]
		if d.extrap == LinearLogExtrapolation {
			y0, y1 = math.Log(y0), math.Log(y1)
		}
		slope := (y1 - y0) / (xs[hi] - xs[lo])
		anchor := y1
		if edge == lo {
			anchor = y0
		}
		y := anchor + slope*(x-xs[edge])
		if d.extrap == LinearLogExtrapolation {
			y = math.Exp(y)
		}
		return y, "", true
	default:
		panic(fmt.Sprintf("curve: unhandled extrapolation %s", d.extrap))
	}
}
