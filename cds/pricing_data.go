package cds

import (
	"fmt"
	"time"
)

// PricingData bundles a contract with the market it is valued against.
type PricingData struct {
	Spec          *Specification
	ValDate       time.Time
	DiscountCurve DiscountCurve
	SurvivalCurve SurvivalCurve
	RecoveryCurve RecoveryCurve
	PricerType    PricerType
}

// Price values the bundle with the default engine.
func (d PricingData) Price() (PricingResult, error) {
	return d.PriceWith(defaultEngine)
}

// PriceWith values the bundle with e.
func (d PricingData) PriceWith(e *Engine) (PricingResult, error) {
	switch d.PricerType {
	case PricerISDA:
		return e.Price(d.Spec, d.ValDate, d.DiscountCurve, d.SurvivalCurve, d.RecoveryCurve)
	default:
		return PricingResult{}, fmt.Errorf("PricingData: unsupported pricer %s", d.PricerType)
	}
}
