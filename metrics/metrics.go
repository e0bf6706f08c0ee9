// Package metrics exposes Prometheus collectors for pricing calls.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/meenmo/credlib/cds"
	"github.com/meenmo/credlib/curve"
)

// Outcome labels.
const (
	OutcomeOK           = "ok"
	OutcomeCurveData    = "curve_data"
	OutcomeLookup       = "lookup"
	OutcomeConstruction = "construction"
	OutcomeCanceled     = "canceled"
	OutcomeError        = "error"
)

// Pricing holds the pricing collectors.
type Pricing struct {
	pricings  *prometheus.CounterVec
	duration  prometheus.Histogram
	lastPrice *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Pricing, error) {
	m := &Pricing{
		pricings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credlib_pricings_total",
				Help: "Pricing calls by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "credlib_pricing_duration_seconds",
				Help:    "Time spent in a single pricing call",
				Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
			},
		),
		lastPrice: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "credlib_last_price",
				Help: "Most recent price to the protection buyer, by issuer",
			},
			[]string{"issuer"},
		),
	}

	for _, c := range []prometheus.Collector{m.pricings, m.duration, m.lastPrice} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe records one pricing call. A nil receiver is a no-op.
func (m *Pricing) Observe(issuer string, d time.Duration, res cds.PricingResult, err error) {
	if m == nil {
		return
	}
	m.pricings.WithLabelValues(Outcome(err)).Inc()
	m.duration.Observe(d.Seconds())
	if err == nil {
		m.lastPrice.WithLabelValues(issuer).Set(res.Price)
	}
}

// Outcome classifies a pricing error into a label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, cds.ErrCurveData):
		return OutcomeCurveData
	case errors.Is(err, curve.ErrLookup):
		return OutcomeLookup
	case errors.Is(err, cds.ErrConstruction):
		return OutcomeConstruction
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	default:
		return OutcomeError
	}
}
