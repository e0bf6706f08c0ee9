package cds

import (
	"fmt"
	"strings"
)

// SecuritizationLevel is the seniority of the reference obligation.
type SecuritizationLevel int

const (
	SecNone SecuritizationLevel = iota
	SecCollateralized
	SecSeniorSecured
	SecSeniorUnsecured
	SecSubordinated
	SecMezzanine
	SecEquity
)

var secNames = [...]string{
	SecNone:            "NONE",
	SecCollateralized:  "COLLATERALIZED",
	SecSeniorSecured:   "SENIOR_SECURED",
	SecSeniorUnsecured: "SENIOR_UNSECURED",
	SecSubordinated:    "SUBORDINATED",
	SecMezzanine:       "MEZZANINE",
	SecEquity:          "EQUITY",
}

func (s SecuritizationLevel) String() string {
	if s >= 0 && int(s) < len(secNames) {
		return secNames[s]
	}
	return fmt.Sprintf("SecuritizationLevel(%d)", int(s))
}

// ParseSecuritizationLevel is case-insensitive; an empty name means SecNone.
func ParseSecuritizationLevel(name string) (SecuritizationLevel, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	if key == "" {
		return SecNone, nil
	}
	for i, s := range secNames {
		if s == key {
			return SecuritizationLevel(i), nil
		}
	}
	return SecNone, fmt.Errorf("unknown securitization level %q", name)
}

// PricerType selects the valuation model for PricingData.
type PricerType int

const (
	// PricerISDA is the discretised protection leg / survival-weighted premium leg model.
	PricerISDA PricerType = iota
)

func (p PricerType) String() string {
	switch p {
	case PricerISDA:
		return "ISDA"
	default:
		return fmt.Sprintf("PricerType(%d)", int(p))
	}
}
