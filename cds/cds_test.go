package cds_test

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/credlib/cds"
	"github.com/meenmo/credlib/curve"
	"github.com/meenmo/credlib/daycount"
	"github.com/meenmo/credlib/utils"
)

var (
	jan24 = utils.MustParseDate("2024-01-01")
	jul24 = utils.MustParseDate("2024-07-01")
	jan25 = utils.MustParseDate("2025-01-01")
)

// survivalFunc is a survival curve defined by a closure over the target date.
type survivalFunc func(target time.Time) float64

func (f survivalFunc) Value(_, target time.Time, _ daycount.Convention) (float64, error) {
	return f(target), nil
}

// recoveryFunc counts calls so tests can see whether the curve was consulted.
type recoveryFunc struct {
	mu    sync.Mutex
	v     float64
	calls int
}

func (r *recoveryFunc) Value(_, _ time.Time, _ daycount.Convention) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.v, nil
}

func ptr(v float64) *float64 { return &v }

func scenarioSpec(t *testing.T, cashSettled bool) *cds.Specification {
	t.Helper()
	spec, err := cds.NewSpecification(cds.SpecificationParams{
		Premium:          0.01,
		PremiumStartDate: jan24,
		PremiumPayDates:  []time.Time{jul24, jan25},
		Notional:         1,
		Expiry:           jan25,
		Recovery:         ptr(0.4),
		Issuer:           "ACME",
		CashSettled:      cashSettled,
	})
	require.NoError(t, err)
	return spec
}

func TestPriceConcreteScenario(t *testing.T) {
	t.Parallel()

	spec := scenarioSpec(t, false)
	disc := curve.FlatDiscount("DISC", jan24, 0.98, daycount.Thirty360E)

	// Survival starts at 1 on the valuation date and is 0.99 afterwards.
	surv := survivalFunc(func(target time.Time) float64 {
		if target.After(jan24) {
			return 0.99
		}
		return 1
	})

	res, err := cds.Price(spec, jan24, disc, surv, nil)
	require.NoError(t, err)

	assert.InDelta(t, 0.01*(0.5*0.98*0.99+0.5*0.98*0.99), res.PVPremiumLeg, 1e-15)
	assert.InDelta(t, 0.0097, res.PVPremiumLeg, 1e-5)
	// All default mass falls into the first grid interval.
	assert.InDelta(t, 0.98*0.01*0.6, res.PVProtectionLeg, 1e-15)
	assert.InDelta(t, res.PVProtectionLeg-res.PVPremiumLeg, res.Price, 1e-15)
	assert.False(t, math.IsNaN(res.Price) || math.IsInf(res.Price, 0))
}

func TestPriceFlatSurvivalCurve(t *testing.T) {
	t.Parallel()

	spec := scenarioSpec(t, false)
	disc := curve.FlatDiscount("DISC", jan24, 0.98, daycount.Thirty360E)
	surv := curve.FlatSurvival("SURV", jan24, 0.99)

	res, err := cds.Price(spec, jan24, disc, surv, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.98*0.01*0.6, res.PVProtectionLeg, 1e-15)
	assert.InDelta(t, 0.009702, res.PVPremiumLeg, 1e-12)
	assert.InDelta(t, 0.98*0.01*0.6-0.009702, res.Price, 1e-12)
}

func TestProtectionZeroAtOrAfterExpiry(t *testing.T) {
	t.Parallel()

	spec := scenarioSpec(t, true)
	for _, val := range []time.Time{jan25, jan25.AddDate(0, 3, 0)} {
		disc := curve.FlatRateDiscount("DISC", val, 0.03, daycount.Act360)
		surv, err := curve.FlatHazard("SURV", val, 0.02)
		require.NoError(t, err)

		// No recovery curve is needed once the contract has expired.
		res, err := cds.Price(spec, val, disc, surv, nil)
		require.NoError(t, err)
		assert.Zero(t, res.PVProtectionLeg)
		assert.Zero(t, res.PVPremiumLeg)
		assert.Zero(t, res.Price)
	}
}

func TestPremiumZeroOnLastPayDate(t *testing.T) {
	t.Parallel()

	spec, err := cds.NewSpecification(cds.SpecificationParams{
		Premium:          0.02,
		PremiumStartDate: jan24,
		PremiumPayDates:  []time.Time{jul24, jan25},
		Expiry:           jan25.AddDate(0, 1, 0),
		Recovery:         ptr(0.4),
	})
	require.NoError(t, err)

	disc := curve.FlatRateDiscount("DISC", jan25, 0.03, daycount.Act360)
	surv, err := curve.FlatHazard("SURV", jan25, 0.02)
	require.NoError(t, err)

	res, err := cds.Price(spec, jan25, disc, surv, nil)
	require.NoError(t, err)
	assert.Zero(t, res.PVPremiumLeg)
	assert.Greater(t, res.PVProtectionLeg, 0.0)
}

func TestCertainSurvivalNoProtection(t *testing.T) {
	t.Parallel()

	spec := scenarioSpec(t, true)
	disc := curve.FlatRateDiscount("DISC", jan24, 0.05, daycount.Act365Fixed)
	surv := curve.FlatSurvival("SURV", jan24, 1)
	rec := &recoveryFunc{v: 0.25}

	res, err := cds.Price(spec, jan24, disc, surv, rec)
	require.NoError(t, err)
	assert.Zero(t, res.PVProtectionLeg)
}

func TestPlainAnnuityWithZeroRatesAndCertainSurvival(t *testing.T) {
	t.Parallel()

	pay := []time.Time{
		utils.MustParseDate("2024-03-20"),
		utils.MustParseDate("2024-06-20"),
		utils.MustParseDate("2024-09-20"),
		utils.MustParseDate("2024-12-20"),
	}
	start := utils.MustParseDate("2023-12-20")
	spec, err := cds.NewSpecification(cds.SpecificationParams{
		Premium:          0.015,
		PremiumStartDate: start,
		PremiumPayDates:  pay,
		Notional:         10_000_000,
		Recovery:         ptr(0.4),
	})
	require.NoError(t, err)

	dc := daycount.Act360
	disc := curve.FlatDiscount("DISC", start, 1, dc)
	surv := curve.FlatSurvival("SURV", start, 1)

	res, err := cds.Price(spec, start, disc, surv, nil)
	require.NoError(t, err)

	sum := 0.0
	prev := start
	for _, p := range pay {
		sum += dc.YearFraction(prev, p)
		prev = p
	}
	assert.InDelta(t, 0.015*sum*10_000_000, res.PVPremiumLeg, 1e-6)
}

func TestAccrualChainsThroughSettledPeriods(t *testing.T) {
	t.Parallel()

	spec := scenarioSpec(t, false)
	val := utils.MustParseDate("2024-09-01")
	disc := curve.FlatDiscount("DISC", val, 1, daycount.Thirty360E)
	surv := curve.FlatSurvival("SURV", val, 1)

	res, err := cds.Price(spec, val, disc, surv, nil)
	require.NoError(t, err)
	// Only the second period is live and it accrues from the first pay date.
	assert.InDelta(t, 0.01*0.5, res.PVPremiumLeg, 1e-15)
}

func TestFixedRecoveryIgnoresCurveWhenPhysicallySettled(t *testing.T) {
	t.Parallel()

	spec := scenarioSpec(t, false)
	disc := curve.FlatRateDiscount("DISC", jan24, 0.03, daycount.Act360)
	surv, err := curve.FlatHazard("SURV", jan24, 0.05)
	require.NoError(t, err)

	low := &recoveryFunc{v: 0.1}
	high := &recoveryFunc{v: 0.9}

	a, err := cds.Price(spec, jan24, disc, surv, low)
	require.NoError(t, err)
	b, err := cds.Price(spec, jan24, disc, surv, high)
	require.NoError(t, err)
	c, err := cds.Price(spec, jan24, disc, surv, nil)
	require.NoError(t, err)

	assert.Equal(t, a.PVProtectionLeg, b.PVProtectionLeg)
	assert.Equal(t, a.PVProtectionLeg, c.PVProtectionLeg)
	assert.Zero(t, low.calls)
	assert.Zero(t, high.calls)
}

func TestCashSettledUsesRecoveryCurve(t *testing.T) {
	t.Parallel()

	spec := scenarioSpec(t, true)
	disc := curve.FlatRateDiscount("DISC", jan24, 0.03, daycount.Act360)
	surv, err := curve.FlatHazard("SURV", jan24, 0.05)
	require.NoError(t, err)

	rec := &recoveryFunc{v: 0.4}
	curveRes, err := cds.Price(spec, jan24, disc, surv, rec)
	require.NoError(t, err)
	assert.Positive(t, rec.calls)

	// With the curve at the contractual rate both settlement types agree.
	fixedRes, err := cds.Price(scenarioSpec(t, false), jan24, disc, surv, nil)
	require.NoError(t, err)
	assert.InDelta(t, fixedRes.PVProtectionLeg, curveRes.PVProtectionLeg, 1e-15)

	other, err := cds.Price(spec, jan24, disc, surv, &recoveryFunc{v: 0.2})
	require.NoError(t, err)
	assert.Greater(t, other.PVProtectionLeg, curveRes.PVProtectionLeg)

	_, err = cds.Price(spec, jan24, disc, surv, nil)
	assert.ErrorIs(t, err, cds.ErrMissingRecoveryCurve)
}

func TestPriceIsIdempotentAndConcurrent(t *testing.T) {
	t.Parallel()

	spec := scenarioSpec(t, true)
	disc, err := curve.NewDiscount("DISC", jan24,
		[]time.Time{jul24, jan25, jan25.AddDate(1, 0, 0)}, []float64{0.985, 0.97, 0.94},
		daycount.Act360, curve.LinearLog, curve.LinearLogExtrapolation)
	require.NoError(t, err)
	surv, err := curve.NewHazard("SURV", jan24, []time.Time{jul24, jan25}, []float64{0.01, 0.03})
	require.NoError(t, err)
	rec := curve.FlatRecovery("REC", jan24, 0.35)

	want, err := cds.Price(spec, jan24, disc, surv, rec)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]cds.PricingResult, 16)
	errs := make([]error, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = cds.Price(spec, jan24, disc, surv, rec)
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, want, results[i])
	}
}

func TestIncreasingSurvivalIsCurveDataError(t *testing.T) {
	t.Parallel()

	spec := scenarioSpec(t, false)
	disc := curve.FlatDiscount("DISC", jan24, 0.98, daycount.Act360)
	mid := utils.MustParseDate("2024-06-01")
	surv := survivalFunc(func(target time.Time) float64 {
		if target.After(mid) {
			return 0.97
		}
		if target.After(jan24) {
			return 0.95
		}
		return 1
	})

	res, err := cds.Price(spec, jan24, disc, surv, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, cds.ErrCurveData)
	assert.Equal(t, cds.PricingResult{}, res)

	var cde *cds.CurveDataError
	require.ErrorAs(t, err, &cde)
	assert.Equal(t, "survival", cde.Curve)
}

func TestDiscountOutOfBoundsIsCurveDataError(t *testing.T) {
	t.Parallel()

	spec := scenarioSpec(t, false)
	disc := curve.FlatDiscount("DISC", jan24, 1.02, daycount.Act360)
	surv := curve.FlatSurvival("SURV", jan24, 1)

	_, err := cds.Price(spec, jan24, disc, surv, nil)
	assert.ErrorIs(t, err, cds.ErrCurveData)
}

func TestRecoveryOutOfBoundsIsCurveDataError(t *testing.T) {
	t.Parallel()

	spec := scenarioSpec(t, true)
	disc := curve.FlatDiscount("DISC", jan24, 0.98, daycount.Act360)
	surv, err := curve.FlatHazard("SURV", jan24, 0.02)
	require.NoError(t, err)

	_, err = cds.Price(spec, jan24, disc, surv, &recoveryFunc{v: 1.5})
	assert.ErrorIs(t, err, cds.ErrCurveData)
}

func TestLookupErrorsPropagateUnchanged(t *testing.T) {
	t.Parallel()

	spec := scenarioSpec(t, false)
	disc, err := curve.NewDiscount("SHORT", jan24, []time.Time{jul24}, []float64{0.99},
		daycount.Act360, curve.LinearLog, curve.NoExtrapolation)
	require.NoError(t, err)
	surv := curve.FlatSurvival("SURV", jan24, 1)

	_, err = cds.Price(spec, jan24, disc, surv, nil)
	require.Error(t, err)

	var le *curve.LookupError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "SHORT", le.Curve)
	assert.False(t, errors.Is(err, cds.ErrCurveData))
}

func TestPriceRejectsMissingInputs(t *testing.T) {
	t.Parallel()

	spec := scenarioSpec(t, false)
	disc := curve.FlatDiscount("DISC", jan24, 0.98, daycount.Act360)
	surv := curve.FlatSurvival("SURV", jan24, 1)

	_, err := cds.Price(spec, time.Time{}, disc, surv, nil)
	assert.ErrorIs(t, err, cds.ErrValuationDate)

	var nilDisc *curve.Discount
	_, err = cds.Price(spec, jan24, nilDisc, surv, nil)
	assert.ErrorIs(t, err, cds.ErrNilCurve)

	_, err = cds.Price(spec, jan24, disc, nil, nil)
	assert.ErrorIs(t, err, cds.ErrNilCurve)
}

func TestParSpreadPricesToZero(t *testing.T) {
	t.Parallel()

	spec := scenarioSpec(t, false)
	disc := curve.FlatRateDiscount("DISC", jan24, 0.03, daycount.Act360)
	surv, err := curve.FlatHazard("SURV", jan24, 0.02)
	require.NoError(t, err)

	engine, err := cds.NewEngine(cds.DefaultConfig)
	require.NoError(t, err)

	par, err := engine.ParSpread(spec, jan24, disc, surv, nil)
	require.NoError(t, err)
	// Roughly hazard times loss-given-default.
	assert.InDelta(t, 0.02*0.6, par, 0.002)

	parSpec, err := cds.NewSpecification(cds.SpecificationParams{
		Premium:          par,
		PremiumStartDate: jan24,
		PremiumPayDates:  []time.Time{jul24, jan25},
		Recovery:         ptr(0.4),
	})
	require.NoError(t, err)
	res, err := engine.Price(parSpec, jan24, disc, surv, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0, res.Price, 1e-15)

	annuity, err := engine.RiskyAnnuity(spec, jan24, disc, surv)
	require.NoError(t, err)
	assert.InDelta(t, res.PVPremiumLeg, par*annuity, 1e-15)

	_, err = engine.ParSpread(spec, jan25, curve.FlatRateDiscount("DISC", jan25, 0.03, daycount.Act360),
		curve.FlatSurvival("SURV", jan25, 1), nil)
	assert.ErrorIs(t, err, cds.ErrZeroAnnuity)
}

func TestEngineDensityChangesProtection(t *testing.T) {
	t.Parallel()

	spec := scenarioSpec(t, false)
	disc := curve.FlatRateDiscount("DISC", jan24, 0.05, daycount.Act365Fixed)
	surv, err := curve.FlatHazard("SURV", jan24, 0.03)
	require.NoError(t, err)

	coarse, err := cds.NewEngine(cds.Config{TimestepsPerYear: 1, MinTimesteps: 1})
	require.NoError(t, err)
	fine, err := cds.NewEngine(cds.Config{TimestepsPerYear: 365, MinTimesteps: 5})
	require.NoError(t, err)

	a, err := coarse.Price(spec, jan24, disc, surv, nil)
	require.NoError(t, err)
	b, err := fine.Price(spec, jan24, disc, surv, nil)
	require.NoError(t, err)

	// Discounting at interval ends understates protection less on a finer grid.
	assert.Greater(t, b.PVProtectionLeg, a.PVProtectionLeg)
	assert.Equal(t, a.PVPremiumLeg, b.PVPremiumLeg)

	_, err = cds.NewEngine(cds.Config{TimestepsPerYear: 0, MinTimesteps: 5})
	assert.Error(t, err)
}

func TestPricingData(t *testing.T) {
	t.Parallel()

	data := cds.PricingData{
		Spec:          scenarioSpec(t, false),
		ValDate:       jan24,
		DiscountCurve: curve.FlatDiscount("DISC", jan24, 0.98, daycount.Thirty360E),
		SurvivalCurve: curve.FlatSurvival("SURV", jan24, 0.99),
	}
	res, err := data.Price()
	require.NoError(t, err)
	assert.InDelta(t, 0.009702, res.PVPremiumLeg, 1e-12)

	data.PricerType = cds.PricerType(7)
	_, err = data.Price()
	assert.Error(t, err)
}
