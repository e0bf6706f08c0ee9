// Package cds values single-name credit default swaps off discount, survival and recovery curves.
package cds

import (
	"math"
	"time"

	"github.com/meenmo/credlib/utils"
)

// SpecificationParams are the user inputs for a CDS contract.
type SpecificationParams struct {
	// Premium is the running spread as a fraction of notional per year (0.01 == 100bp).
	Premium float64

	// PremiumStartDate starts the first accrual period.
	PremiumStartDate time.Time

	// PremiumPayDates must be non-empty and strictly increasing.
	PremiumPayDates []time.Time

	// Notional defaults to 1 when zero.
	Notional float64

	// Expiry defaults to the last premium pay date when zero.
	Expiry time.Time

	// Recovery is the contractual fixed recovery rate, if any.
	Recovery *float64

	Issuer string

	// CashSettled forces loss-given-default off the recovery curve even when Recovery is set. The zero
	// value is physical settlement.
	CashSettled bool

	Seniority SecuritizationLevel
}

// Specification is an immutable, validated CDS contract.
type Specification struct {
	premium          float64
	premiumStartDate time.Time
	payDates         []time.Time
	notional         float64
	expiry           time.Time
	recovery         float64
	hasRecovery      bool
	issuer           string
	cashSettled      bool
	seniority        SecuritizationLevel
}

// NewSpecification validates p and returns the contract. Every failure is a *ConstructionError.
func NewSpecification(p SpecificationParams) (*Specification, error) {
	if len(p.PremiumPayDates) == 0 {
		return nil, &ConstructionError{Field: "premium_pay_dates", Reason: "must not be empty"}
	}
	if !utils.StrictlyIncreasing(p.PremiumPayDates) {
		return nil, &ConstructionError{Field: "premium_pay_dates", Reason: "must be strictly increasing"}
	}
	if !(p.Premium > 0) || math.IsInf(p.Premium, 0) {
		return nil, &ConstructionError{Field: "premium", Reason: "must be positive and finite"}
	}
	if p.PremiumStartDate.IsZero() {
		return nil, &ConstructionError{Field: "premium_start_date", Reason: "is required"}
	}
	if p.PremiumStartDate.After(p.PremiumPayDates[0]) {
		return nil, &ConstructionError{Field: "premium_start_date", Reason: "must not be after the first premium pay date"}
	}

	notional := p.Notional
	if notional == 0 {
		notional = 1.0
	}
	if !(notional > 0) || math.IsInf(notional, 0) {
		return nil, &ConstructionError{Field: "notional", Reason: "must be positive and finite"}
	}

	expiry := p.Expiry
	if expiry.IsZero() {
		expiry = p.PremiumPayDates[len(p.PremiumPayDates)-1]
	}
	if expiry.Before(p.PremiumStartDate) {
		return nil, &ConstructionError{Field: "expiry", Reason: "must not be before premium_start_date"}
	}

	spec := &Specification{
		premium:          p.Premium,
		premiumStartDate: p.PremiumStartDate,
		payDates:         append([]time.Time(nil), p.PremiumPayDates...),
		notional:         notional,
		expiry:           expiry,
		issuer:           p.Issuer,
		cashSettled:      p.CashSettled,
		seniority:        p.Seniority,
	}
	if p.Recovery != nil {
		r := *p.Recovery
		if !(r >= 0 && r <= 1) {
			return nil, &ConstructionError{Field: "recovery", Reason: "must be within [0, 1]"}
		}
		spec.recovery = r
		spec.hasRecovery = true
	}
	return spec, nil
}

// Premium returns the running spread per year.
func (s *Specification) Premium() float64 { return s.premium }

// PremiumStartDate returns the start of the first accrual period.
func (s *Specification) PremiumStartDate() time.Time { return s.premiumStartDate }

func (s *Specification) Notional() float64 { return s.notional }

func (s *Specification) Expiry() time.Time { return s.expiry }

func (s *Specification) Issuer() string { return s.issuer }

func (s *Specification) CashSettled() bool { return s.cashSettled }

func (s *Specification) Seniority() SecuritizationLevel { return s.seniority }

// PremiumPayDates returns a copy of the pay dates.
func (s *Specification) PremiumPayDates() []time.Time {
	return append([]time.Time(nil), s.payDates...)
}

// Recovery returns the fixed recovery rate and whether one was set.
func (s *Specification) Recovery() (float64, bool) {
	return s.recovery, s.hasRecovery
}

// usesFixedRecovery reports whether loss-given-default comes from the contract instead of a curve.
func (s *Specification) usesFixedRecovery() bool {
	return s.hasRecovery && !s.cashSettled
}
