// Package daycount converts date intervals into year fractions.
package daycount

import (
	"fmt"
	"strings"
	"time"

	"github.com/meenmo/credlib/calendar"
)

// Convention is a day count convention.
type Convention int

const (
	// ActAct is Actual/Actual (ISDA): days in leap years over 366, others over 365.
	ActAct Convention = iota
	// Act365Fixed is Actual/365 Fixed.
	Act365Fixed
	// Act360 is Actual/360.
	Act360
	// Thirty360US is 30U/360 (bond basis).
	Thirty360US
	// Thirty360E is 30E/360 (Eurobond basis).
	Thirty360E
	// Act252 counts business days over 252, on a weekends-only calendar.
	Act252
)

func (c Convention) String() string {
	switch c {
	case ActAct:
		return "ActAct"
	case Act365Fixed:
		return "ACT365FIXED"
	case Act360:
		return "Act360"
	case Thirty360US:
		return "30U360"
	case Thirty360E:
		return "30E360"
	case Act252:
		return "Act252"
	default:
		return fmt.Sprintf("Convention(%d)", int(c))
	}
}

// Parse accepts both the short identifiers returned by String and the slash forms
// ("ACT/360", "ACT/365F", "30/360", "30E/360").
func Parse(name string) (Convention, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "ACTACT", "ACT/ACT", "ACT/ACT ISDA":
		return ActAct, nil
	case "ACT365FIXED", "ACT/365F", "ACT/365", "ACT365F":
		return Act365Fixed, nil
	case "ACT360", "ACT/360":
		return Act360, nil
	case "30U360", "30/360", "30U/360":
		return Thirty360US, nil
	case "30E360", "30E/360":
		return Thirty360E, nil
	case "ACT252", "BUS/252":
		return Act252, nil
	default:
		return 0, fmt.Errorf("daycount: unknown convention %q", name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Convention) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Convention) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// YearFraction returns the year fraction between start and end. Reversed dates give a negative value.
func (c Convention) YearFraction(start, end time.Time) float64 {
	if end.Before(start) {
		return -c.YearFraction(end, start)
	}
	switch c {
	case ActAct:
		return actActISDA(start, end)
	case Act365Fixed:
		return days(start, end) / 365.0
	case Act360:
		return days(start, end) / 360.0
	case Thirty360US:
		return thirty360(start, end, true)
	case Thirty360E:
		return thirty360(start, end, false)
	case Act252:
		return float64(calendar.BusinessDaysBetween(calendar.WeekendsOnly, start, end)) / 252.0
	default:
		panic(fmt.Sprintf("daycount: unhandled convention %s", c))
	}
}

func days(start, end time.Time) float64 {
	return end.Sub(start).Hours() / 24
}

func actActISDA(start, end time.Time) float64 {
	yf := 0.0
	for cur := start; cur.Before(end); {
		next := time.Date(cur.Year()+1, time.January, 1, 0, 0, 0, 0, cur.Location())
		if next.After(end) {
			next = end
		}
		basis := 365.0
		if isLeap(cur.Year()) {
			basis = 366.0
		}
		yf += days(cur, next) / basis
		cur = next
	}
	return yf
}

func isLeap(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

// thirty360 caps day-of-month at 30. Under the US rule D2 is only capped when D1 was.
func thirty360(start, end time.Time, us bool) float64 {
	d1 := start.Day()
	if d1 > 30 {
		d1 = 30
	}
	d2 := end.Day()
	if d2 > 30 && (!us || d1 >= 30) {
		d2 = 30
	}
	y1, m1 := start.Year(), int(start.Month())
	y2, m2 := end.Year(), int(end.Month())
	return float64(360*(y2-y1)+30*(m2-m1)+(d2-d1)) / 360.0
}
