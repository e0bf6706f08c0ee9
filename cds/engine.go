package cds

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/meenmo/credlib/utils"
)

// PricingResult holds leg present values and the net price to the protection buyer.
type PricingResult struct {
	PVProtectionLeg float64
	PVPremiumLeg    float64
	Price           float64
}

// Engine prices CDS contracts. It holds no mutable state and may be shared across goroutines.
type Engine struct {
	cfg Config
	log zerolog.Logger
}

// Option customises an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug traces of each pricing call.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine returns an engine using cfg.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("NewEngine: %w", err)
	}
	e := &Engine{cfg: cfg, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the engine's discretisation settings.
func (e *Engine) Config() Config { return e.cfg }

var defaultEngine = &Engine{cfg: DefaultConfig, log: zerolog.Nop()}

// Price values spec with the default configuration. recovery may be nil when the contract uses a
// fixed recovery rate and is not cash settled.
func Price(spec *Specification, valDate time.Time, disc DiscountCurve, surv SurvivalCurve, recovery RecoveryCurve) (PricingResult, error) {
	return defaultEngine.Price(spec, valDate, disc, surv, recovery)
}

// Price returns the protection leg PV, the premium leg PV and their difference.
//
// Errors from the curves are returned unchanged. Curve values that break their bounds or the
// survival monotonicity abort the call with a *CurveDataError.
func (e *Engine) Price(spec *Specification, valDate time.Time, disc DiscountCurve, surv SurvivalCurve, recovery RecoveryCurve) (PricingResult, error) {
	if err := e.checkInputs(spec, valDate, disc, surv, recovery); err != nil {
		return PricingResult{}, err
	}

	lk := newLookups(valDate, disc, surv)
	protection, err := e.protectionLeg(spec, valDate, lk, recovery)
	if err != nil {
		return PricingResult{}, err
	}
	premium, err := e.premiumLeg(spec, spec.premium, valDate, lk)
	if err != nil {
		return PricingResult{}, err
	}

	res := PricingResult{
		PVProtectionLeg: protection,
		PVPremiumLeg:    premium,
		Price:           protection - premium,
	}
	e.log.Debug().
		Str("issuer", spec.issuer).
		Str("valuation_date", utils.FormatDate(valDate)).
		Float64("pv_protection", res.PVProtectionLeg).
		Float64("pv_premium", res.PVPremiumLeg).
		Float64("price", res.Price).
		Msg("cds priced")
	return res, nil
}

func (e *Engine) checkInputs(spec *Specification, valDate time.Time, disc DiscountCurve, surv SurvivalCurve, recovery RecoveryCurve) error {
	if err := checkMarket(spec, valDate, disc, surv); err != nil {
		return err
	}
	if !spec.usesFixedRecovery() && isNilInterface(recovery) && valDate.Before(spec.expiry) {
		return ErrMissingRecoveryCurve
	}
	return nil
}

func checkMarket(spec *Specification, valDate time.Time, disc DiscountCurve, surv SurvivalCurve) error {
	if spec == nil {
		return fmt.Errorf("Price: nil specification")
	}
	if valDate.IsZero() {
		return ErrValuationDate
	}
	if isNilInterface(disc) {
		return fmt.Errorf("Price: discount curve: %w", ErrNilCurve)
	}
	if isNilInterface(surv) {
		return fmt.Errorf("Price: survival curve: %w", ErrNilCurve)
	}
	return nil
}
