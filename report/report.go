// Package report converts contracts and pricing results to and from a versioned map schema, and
// encodes those maps as msgpack for storage or transport.
//
// Each entity has a fixed key set plus schema_version. Readers reject versions they do not know.
package report

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/meenmo/credlib/cds"
	"github.com/meenmo/credlib/utils"
)

// SchemaVersion is written into every map produced by this package.
const SchemaVersion = 1

// Specification keys.
const (
	KeySchemaVersion    = "schema_version"
	KeyPremium          = "premium"
	KeyPremiumStartDate = "premium_start_date"
	KeyPremiumPayDates  = "premium_pay_dates"
	KeyNotional         = "notional"
	KeyExpiry           = "expiry"
	KeyRecovery         = "recovery"
	KeyIssuer           = "issuer"
	KeyCashSettled      = "cash_settled"
	KeySeniority        = "seniority"
)

// Result keys.
const (
	KeyPVProtectionLeg = "pv_protection_leg"
	KeyPVPremiumLeg    = "pv_premium_leg"
	KeyPrice           = "price"
)

// SpecificationMap returns the schema form of s. recovery is nil when the contract has no fixed rate.
func SpecificationMap(s *cds.Specification) map[string]any {
	pay := s.PremiumPayDates()
	dates := make([]string, len(pay))
	for i, d := range pay {
		dates[i] = utils.FormatDate(d)
	}

	var recovery any
	if r, ok := s.Recovery(); ok {
		recovery = r
	}

	return map[string]any{
		KeySchemaVersion:    SchemaVersion,
		KeyPremium:          s.Premium(),
		KeyPremiumStartDate: utils.FormatDate(s.PremiumStartDate()),
		KeyPremiumPayDates:  dates,
		KeyNotional:         s.Notional(),
		KeyExpiry:           utils.FormatDate(s.Expiry()),
		KeyRecovery:         recovery,
		KeyIssuer:           s.Issuer(),
		KeyCashSettled:      s.CashSettled(),
		KeySeniority:        s.Seniority().String(),
	}
}

// SpecificationFromMap rebuilds a contract from its schema form. The result passes through
// cds.NewSpecification, so invalid contents yield a *cds.ConstructionError.
func SpecificationFromMap(m map[string]any) (*cds.Specification, error) {
	if err := checkVersion(m); err != nil {
		return nil, err
	}

	var (
		p   cds.SpecificationParams
		err error
	)
	if p.Premium, err = floatField(m, KeyPremium); err != nil {
		return nil, err
	}
	if p.PremiumStartDate, err = dateField(m, KeyPremiumStartDate); err != nil {
		return nil, err
	}
	if p.Notional, err = floatField(m, KeyNotional); err != nil {
		return nil, err
	}
	if p.Expiry, err = dateField(m, KeyExpiry); err != nil {
		return nil, err
	}

	raw, ok := m[KeyPremiumPayDates]
	if !ok {
		return nil, fmt.Errorf("report: missing %s", KeyPremiumPayDates)
	}
	if p.PremiumPayDates, err = dateList(raw); err != nil {
		return nil, fmt.Errorf("report: %s: %w", KeyPremiumPayDates, err)
	}

	if v, ok := m[KeyRecovery]; ok && v != nil {
		r, ok := number(v)
		if !ok {
			return nil, fmt.Errorf("report: %s: not a number", KeyRecovery)
		}
		p.Recovery = &r
	}

	if v, ok := m[KeyIssuer].(string); ok {
		p.Issuer = v
	}
	if v, ok := m[KeyCashSettled].(bool); ok {
		p.CashSettled = v
	}
	if v, ok := m[KeySeniority].(string); ok {
		if p.Seniority, err = cds.ParseSecuritizationLevel(v); err != nil {
			return nil, fmt.Errorf("report: %w", err)
		}
	}

	return cds.NewSpecification(p)
}

// ResultMap returns the schema form of r.
func ResultMap(r cds.PricingResult) map[string]any {
	return map[string]any{
		KeySchemaVersion:   SchemaVersion,
		KeyPVProtectionLeg: r.PVProtectionLeg,
		KeyPVPremiumLeg:    r.PVPremiumLeg,
		KeyPrice:           r.Price,
	}
}

// ResultFromMap is the inverse of ResultMap.
func ResultFromMap(m map[string]any) (cds.PricingResult, error) {
	if err := checkVersion(m); err != nil {
		return cds.PricingResult{}, err
	}
	var (
		r   cds.PricingResult
		err error
	)
	if r.PVProtectionLeg, err = floatField(m, KeyPVProtectionLeg); err != nil {
		return cds.PricingResult{}, err
	}
	if r.PVPremiumLeg, err = floatField(m, KeyPVPremiumLeg); err != nil {
		return cds.PricingResult{}, err
	}
	if r.Price, err = floatField(m, KeyPrice); err != nil {
		return cds.PricingResult{}, err
	}
	return r, nil
}

// Run is the document written for one priced scenario.
func Run(name string, valDate time.Time, spec *cds.Specification, res cds.PricingResult) map[string]any {
	return map[string]any{
		KeySchemaVersion: SchemaVersion,
		"name":           name,
		"valuation_date": utils.FormatDate(valDate),
		"specification":  SpecificationMap(spec),
		"result":         ResultMap(res),
	}
}

// EncodeMsgpack serialises a schema map.
func EncodeMsgpack(m map[string]any) ([]byte, error) {
	b, err := msgpack.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("report: msgpack encode: %w", err)
	}
	return b, nil
}

// DecodeMsgpack parses bytes written by EncodeMsgpack.
func DecodeMsgpack(b []byte) (map[string]any, error) {
	var m map[string]any
	if err := msgpack.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("report: msgpack decode: %w", err)
	}
	return m, nil
}

// Rounded formats v with a fixed number of decimal places, rounding half away from zero.
func Rounded(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

func checkVersion(m map[string]any) error {
	v, ok := m[KeySchemaVersion]
	if !ok {
		return fmt.Errorf("report: missing %s", KeySchemaVersion)
	}
	n, ok := number(v)
	if !ok || n != SchemaVersion {
		return fmt.Errorf("report: unsupported %s %v", KeySchemaVersion, v)
	}
	return nil
}

func floatField(m map[string]any, key string) (float64, error) {
	v, ok := m[key]
	if !ok {
		return 0, fmt.Errorf("report: missing %s", key)
	}
	f, ok := number(v)
	if !ok {
		return 0, fmt.Errorf("report: %s: not a number", key)
	}
	return f, nil
}

func dateField(m map[string]any, key string) (time.Time, error) {
	s, ok := m[key].(string)
	if !ok {
		return time.Time{}, fmt.Errorf("report: %s: not a date string", key)
	}
	t, err := utils.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("report: %s: %w", key, err)
	}
	return t, nil
}

func dateList(v any) ([]time.Time, error) {
	var raw []string
	switch xs := v.(type) {
	case []string:
		raw = xs
	case []any:
		raw = make([]string, len(xs))
		for i, x := range xs {
			s, ok := x.(string)
			if !ok {
				return nil, fmt.Errorf("element %d is not a date string", i)
			}
			raw[i] = s
		}
	default:
		return nil, fmt.Errorf("not a list")
	}

	out := make([]time.Time, len(raw))
	for i, s := range raw {
		t, err := utils.ParseDate(s)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// number accepts the numeric types msgpack and encoding/json decode into.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
