package cds

import (
	"errors"
	"time"
)

// ErrZeroAnnuity is returned by ParSpread when no premium is left to pay.
var ErrZeroAnnuity = errors.New("risky annuity is zero")

// RiskyAnnuity returns the premium leg PV per unit of running spread (RPV01 per 1.0 of premium).
func (e *Engine) RiskyAnnuity(spec *Specification, valDate time.Time, disc DiscountCurve, surv SurvivalCurve) (float64, error) {
	if err := checkMarket(spec, valDate, disc, surv); err != nil {
		return 0, err
	}
	return e.premiumLeg(spec, 1.0, valDate, newLookups(valDate, disc, surv))
}

// ParSpread returns the running spread at which the contract prices to zero.
func (e *Engine) ParSpread(spec *Specification, valDate time.Time, disc DiscountCurve, surv SurvivalCurve, recovery RecoveryCurve) (float64, error) {
	if err := e.checkInputs(spec, valDate, disc, surv, recovery); err != nil {
		return 0, err
	}
	lk := newLookups(valDate, disc, surv)
	annuity, err := e.premiumLeg(spec, 1.0, valDate, lk)
	if err != nil {
		return 0, err
	}
	if annuity == 0 {
		return 0, ErrZeroAnnuity
	}
	protection, err := e.protectionLeg(spec, valDate, lk, recovery)
	if err != nil {
		return 0, err
	}
	return protection / annuity, nil
}
