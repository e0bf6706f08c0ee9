// Package scenario reads CDS contracts and their market data from YAML files.
//
// A file holds one or more YAML documents. Each document is a Scenario:
//
//	name: acme-1y
//	valuation_date: 2024-01-01
//	contract:
//	  issuer: ACME
//	  premium: 0.01
//	  recovery: 0.4
//	  premium_start_date: 2024-01-01
//	  premium_pay_dates: [2024-07-01, 2025-01-01]
//	discount:
//	  day_count: 30E360
//	  flat: 0.98
//	survival:
//	  hazard_rates: [0.01, 0.02]
//	  dates: [2024-07-01, 2025-01-01]
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/meenmo/credlib/calendar"
	"github.com/meenmo/credlib/cds"
	"github.com/meenmo/credlib/curve"
	"github.com/meenmo/credlib/daycount"
	"github.com/meenmo/credlib/schedule"
	"github.com/meenmo/credlib/utils"
)

// Date is a YYYY-MM-DD calendar date.
type Date struct {
	time.Time
}

// UnmarshalYAML parses the scalar text, whatever tag YAML resolved it to.
func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	t, err := utils.ParseDate(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	d.Time = t
	return nil
}

// MarshalYAML writes the date in the same layout it is read in.
func (d Date) MarshalYAML() (any, error) {
	return utils.FormatDate(d.Time), nil
}

// Scenario is one contract priced against one market.
type Scenario struct {
	Name          string      `yaml:"name"`
	ValuationDate Date        `yaml:"valuation_date"`
	Pricer        string      `yaml:"pricer,omitempty"`
	Contract      Contract    `yaml:"contract"`
	Discount      CurveBlock  `yaml:"discount"`
	Survival      CurveBlock  `yaml:"survival"`
	Recovery      *CurveBlock `yaml:"recovery,omitempty"`
}

// Contract describes the CDS terms. Pay dates come either from PremiumPayDates or from Schedule.
type Contract struct {
	Issuer           string    `yaml:"issuer"`
	Premium          float64   `yaml:"premium"`
	Notional         float64   `yaml:"notional,omitempty"`
	Recovery         *float64  `yaml:"recovery,omitempty"`
	CashSettled      bool      `yaml:"cash_settled"`
	Seniority        string    `yaml:"seniority,omitempty"`
	Expiry           *Date     `yaml:"expiry,omitempty"`
	PremiumStartDate *Date     `yaml:"premium_start_date,omitempty"`
	PremiumPayDates  []Date    `yaml:"premium_pay_dates,omitempty"`
	Schedule         *Schedule `yaml:"schedule,omitempty"`
}

// Schedule generates premium pay dates.
type Schedule struct {
	Start    Date   `yaml:"start"`
	End      Date   `yaml:"end"`
	Period   string `yaml:"period"`
	Calendar string `yaml:"calendar,omitempty"`
	Roll     string `yaml:"roll,omitempty"`
}

// CurveBlock describes one curve. Exactly one of Flat, FlatRate, HazardRates or Values is set;
// HazardRates and Values pair with Dates. FlatRate is a continuously compounded zero rate on a
// discount curve and a flat hazard rate on a survival curve.
type CurveBlock struct {
	Name          string    `yaml:"name,omitempty"`
	DayCount      string    `yaml:"day_count,omitempty"`
	Flat          *float64  `yaml:"flat,omitempty"`
	FlatRate      *float64  `yaml:"flat_rate,omitempty"`
	Dates         []Date    `yaml:"dates,omitempty"`
	Values        []float64 `yaml:"values,omitempty"`
	HazardRates   []float64 `yaml:"hazard_rates,omitempty"`
	Interpolation string    `yaml:"interpolation,omitempty"`
	Extrapolation string    `yaml:"extrapolation,omitempty"`
}

// Load reads every scenario in the file at path.
func Load(path string) ([]*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	out, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return out, nil
}

// Parse decodes every YAML document in b. Documents are checked for known fields only; curve and
// contract validation happens in PricingData.
func Parse(b []byte) ([]*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	var out []*Scenario
	for i := 0; ; i++ {
		var s Scenario
		err := dec.Decode(&s)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		if s.Name == "" {
			s.Name = fmt.Sprintf("scenario-%d", i)
		}
		out = append(out, &s)
	}
	if len(out) == 0 {
		return nil, errors.New("no scenarios")
	}
	return out, nil
}

// Specification builds the validated contract.
func (s *Scenario) Specification() (*cds.Specification, error) {
	c := s.Contract
	p := cds.SpecificationParams{
		Premium:     c.Premium,
		Notional:    c.Notional,
		Recovery:    c.Recovery,
		Issuer:      c.Issuer,
		CashSettled: c.CashSettled,
	}

	var err error
	if p.Seniority, err = cds.ParseSecuritizationLevel(c.Seniority); err != nil {
		return nil, err
	}
	if c.Expiry != nil {
		p.Expiry = c.Expiry.Time
	}

	switch {
	case c.Schedule != nil && len(c.PremiumPayDates) > 0:
		return nil, errors.New("contract: set either premium_pay_dates or schedule, not both")
	case c.Schedule != nil:
		if p.PremiumPayDates, err = c.Schedule.dates(); err != nil {
			return nil, err
		}
		p.PremiumStartDate = c.Schedule.Start.Time
	default:
		p.PremiumPayDates = make([]time.Time, len(c.PremiumPayDates))
		for i, d := range c.PremiumPayDates {
			p.PremiumPayDates[i] = d.Time
		}
	}
	if c.PremiumStartDate != nil {
		p.PremiumStartDate = c.PremiumStartDate.Time
	}

	return cds.NewSpecification(p)
}

func (sc *Schedule) dates() ([]time.Time, error) {
	period, err := schedule.ParsePeriod(sc.Period)
	if err != nil {
		return nil, err
	}
	cal, err := calendar.ParseCalendar(sc.Calendar)
	if err != nil {
		return nil, err
	}
	roll, err := calendar.ParseRollConvention(sc.Roll)
	if err != nil {
		return nil, err
	}
	return schedule.PremiumDates(sc.Start.Time, sc.End.Time, period, cal, roll)
}

// PricingData builds the contract and the curves anchored on the valuation date.
func (s *Scenario) PricingData() (cds.PricingData, error) {
	if s.ValuationDate.IsZero() {
		return cds.PricingData{}, fmt.Errorf("%s: valuation_date is required", s.Name)
	}
	asOf := s.ValuationDate.Time

	spec, err := s.Specification()
	if err != nil {
		return cds.PricingData{}, fmt.Errorf("%s: %w", s.Name, err)
	}
	disc, err := s.Discount.discount(asOf)
	if err != nil {
		return cds.PricingData{}, fmt.Errorf("%s: discount: %w", s.Name, err)
	}
	surv, err := s.Survival.survival(asOf)
	if err != nil {
		return cds.PricingData{}, fmt.Errorf("%s: survival: %w", s.Name, err)
	}

	data := cds.PricingData{
		Spec:          spec,
		ValDate:       asOf,
		DiscountCurve: disc,
		SurvivalCurve: surv,
	}
	if s.Recovery != nil {
		rec, err := s.Recovery.recovery(asOf)
		if err != nil {
			return cds.PricingData{}, fmt.Errorf("%s: recovery: %w", s.Name, err)
		}
		data.RecoveryCurve = rec
	}

	switch s.Pricer {
	case "", cds.PricerISDA.String():
		data.PricerType = cds.PricerISDA
	default:
		return cds.PricingData{}, fmt.Errorf("%s: unknown pricer %q", s.Name, s.Pricer)
	}
	return data, nil
}

func (b *CurveBlock) name(kind string) string {
	if b.Name != "" {
		return b.Name
	}
	return kind
}

func (b *CurveBlock) dates() []time.Time {
	out := make([]time.Time, len(b.Dates))
	for i, d := range b.Dates {
		out[i] = d.Time
	}
	return out
}

func (b *CurveBlock) methods(in curve.Interpolation, ex curve.Extrapolation) (curve.Interpolation, curve.Extrapolation, error) {
	var err error
	if b.Interpolation != "" {
		if in, err = curve.ParseInterpolation(b.Interpolation); err != nil {
			return 0, 0, err
		}
	}
	if b.Extrapolation != "" {
		if ex, err = curve.ParseExtrapolation(b.Extrapolation); err != nil {
			return 0, 0, err
		}
	}
	return in, ex, nil
}

func (b *CurveBlock) discount(asOf time.Time) (*curve.Discount, error) {
	dc := daycount.Act360
	if b.DayCount != "" {
		var err error
		if dc, err = daycount.Parse(b.DayCount); err != nil {
			return nil, err
		}
	}
	name := b.name("discount")

	switch {
	case b.Flat != nil:
		return curve.FlatDiscount(name, asOf, *b.Flat, dc), nil
	case b.FlatRate != nil:
		return curve.FlatRateDiscount(name, asOf, *b.FlatRate, dc), nil
	case len(b.Values) > 0:
		in, ex, err := b.methods(curve.LinearLog, curve.LinearLogExtrapolation)
		if err != nil {
			return nil, err
		}
		return curve.NewDiscount(name, asOf, b.dates(), b.Values, dc, in, ex)
	default:
		return nil, errors.New("one of flat, flat_rate or values is required")
	}
}

func (b *CurveBlock) survival(asOf time.Time) (*curve.Survival, error) {
	name := b.name("survival")

	switch {
	case b.Flat != nil:
		return curve.FlatSurvival(name, asOf, *b.Flat), nil
	case b.FlatRate != nil:
		return curve.FlatHazard(name, asOf, *b.FlatRate)
	case len(b.HazardRates) > 0:
		return curve.NewHazard(name, asOf, b.dates(), b.HazardRates)
	case len(b.Values) > 0:
		in, ex, err := b.methods(curve.LinearLog, curve.LinearLogExtrapolation)
		if err != nil {
			return nil, err
		}
		return curve.NewSurvival(name, asOf, b.dates(), b.Values, in, ex)
	default:
		return nil, errors.New("one of flat, flat_rate, hazard_rates or values is required")
	}
}

func (b *CurveBlock) recovery(asOf time.Time) (*curve.Recovery, error) {
	name := b.name("recovery")

	switch {
	case b.Flat != nil:
		return curve.FlatRecovery(name, asOf, *b.Flat), nil
	case len(b.Values) > 0:
		in, ex, err := b.methods(curve.Linear, curve.ConstantExtrapolation)
		if err != nil {
			return nil, err
		}
		return curve.NewRecovery(name, asOf, b.dates(), b.Values, in, ex)
	default:
		return nil, errors.New("one of flat or values is required")
	}
}
