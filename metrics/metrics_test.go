package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/credlib/cds"
	"github.com/meenmo/credlib/curve"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, OutcomeOK},
		{&cds.CurveDataError{Curve: "survival"}, OutcomeCurveData},
		{fmt.Errorf("wrapped: %w", &curve.LookupError{Curve: "DISC"}), OutcomeLookup},
		{&cds.ConstructionError{Field: "premium"}, OutcomeConstruction},
		{context.Canceled, OutcomeCanceled},
		{errors.New("boom"), OutcomeError},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Outcome(tc.err), "%v", tc.err)
	}
}

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.Observe("ACME", 2*time.Millisecond, cds.PricingResult{Price: -0.0039}, nil)
	m.Observe("ACME", time.Millisecond, cds.PricingResult{}, &cds.CurveDataError{})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.pricings.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pricings.WithLabelValues(OutcomeCurveData)))
	// Failed calls leave the last price alone.
	assert.Equal(t, -0.0039, testutil.ToFloat64(m.lastPrice.WithLabelValues("ACME")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))

	_, err = New(reg)
	assert.Error(t, err, "duplicate registration")
}

func TestNilPricingIsNoop(t *testing.T) {
	var m *Pricing
	assert.NotPanics(t, func() { m.Observe("ACME", time.Second, cds.PricingResult{}, nil) })
}
