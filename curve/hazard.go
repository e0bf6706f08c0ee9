package curve

import (
	"fmt"
	"math"
	"time"

	"github.com/meenmo/credlib/daycount"
	"github.com/meenmo/credlib/utils"
)

// hazard is a piecewise-constant default intensity: rates[i] applies on (dates[i-1], dates[i]],
// with dates[-1] = as-of, and the last rate extends past the final node.
type hazard struct {
	dates []time.Time
	rates []float64
}

func newHazard(asOf time.Time, dates []time.Time, rates []float64) (*hazard, error) {
	if len(dates) == 0 {
		return nil, fmt.Errorf("no hazard nodes")
	}
	if len(dates) != len(rates) {
		return nil, fmt.Errorf("%d dates but %d hazard rates", len(dates), len(rates))
	}
	if !utils.StrictlyIncreasing(dates) || !dates[0].After(asOf) {
		return nil, fmt.Errorf("hazard node dates must be strictly increasing and after as-of")
	}
	for i, h := range rates {
		if h < 0 || math.IsNaN(h) || math.IsInf(h, 0) {
			return nil, fmt.Errorf("hazard rate %d must be finite and non-negative, got %g", i, h)
		}
	}
	return &hazard{
		dates: append([]time.Time(nil), dates...),
		rates: append([]float64(nil), rates...),
	}, nil
}

func (h *hazard) at(asOf, target time.Time, dc daycount.Convention) (float64, string, bool) {
	if !target.After(asOf) {
		return 1, "", true
	}

	integral := 0.0
	prev := asOf
	for i, d := range h.dates {
		end := d
		if target.Before(end) {
			end = target
		}
		integral += h.rates[i] * dc.YearFraction(prev, end)
		prev = end
		if !target.After(d) {
			break
		}
	}
	if target.After(prev) {
		integral += h.rates[len(h.rates)-1] * dc.YearFraction(prev, target)
	}
	return math.Exp(-integral), "", true
}
