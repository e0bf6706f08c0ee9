// Package schedule generates premium payment dates.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/meenmo/credlib/calendar"
	"github.com/meenmo/credlib/utils"
)

// Period is a payment frequency.
type Period int

const (
	Annual Period = iota
	SemiAnnual
	Quarterly
	Monthly
)

// Months returns the number of months in one period.
func (p Period) Months() int {
	switch p {
	case Annual:
		return 12
	case SemiAnnual:
		return 6
	case Quarterly:
		return 3
	case Monthly:
		return 1
	default:
		panic(fmt.Sprintf("schedule: unhandled period %d", int(p)))
	}
}

func (p Period) String() string {
	switch p {
	case Annual:
		return "A"
	case SemiAnnual:
		return "SA"
	case Quarterly:
		return "Q"
	case Monthly:
		return "M"
	default:
		return fmt.Sprintf("Period(%d)", int(p))
	}
}

// ParsePeriod accepts A, SA, Q, M (and 12M, 6M, 3M, 1M).
func ParsePeriod(s string) (Period, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A", "12M", "1Y":
		return Annual, nil
	case "SA", "6M":
		return SemiAnnual, nil
	case "Q", "3M":
		return Quarterly, nil
	case "M", "1M":
		return Monthly, nil
	default:
		return 0, fmt.Errorf("schedule: unknown period %q", s)
	}
}

// PremiumDates rolls forward from start in steps of period and returns the adjusted pay dates.
//
// The last date is end itself (adjusted), so a final period shorter than a full step becomes a
// short back stub. Unadjusted dates are generated off start with EDATE semantics, so month-end
// anchors do not drift.
func PremiumDates(start, end time.Time, period Period, cal calendar.CalendarID, roll calendar.RollConvention) ([]time.Time, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("PremiumDates: end %s must be after start %s", utils.FormatDate(end), utils.FormatDate(start))
	}

	months := period.Months()
	dates := make([]time.Time, 0, 16)
	for i := 1; ; i++ {
		next := utils.AddMonth(start, months*i)
		if !next.Before(end) {
			break
		}
		dates = append(dates, calendar.Roll(cal, roll, next))
	}
	dates = append(dates, calendar.Roll(cal, roll, end))

	if !utils.StrictlyIncreasing(dates) {
		return nil, fmt.Errorf("PremiumDates: adjusted dates collide (period %s too short for roll %s)", period, roll)
	}
	return dates, nil
}
