package cds

import (
	"math"
	"time"

	"github.com/meenmo/credlib/daycount"
)

// lookups memoises discount and survival values for one pricing call, shared by both legs, and
// checks each value against the bounds the legs rely on.
type lookups struct {
	asOf time.Time
	dc   daycount.Convention
	disc DiscountCurve
	surv SurvivalCurve

	df map[instant]float64
	sp map[instant]float64
}

// instant keys the memo; UnixNano overflows for dates after 2262.
type instant struct {
	sec  int64
	nsec int
}

func memoKey(t time.Time) instant { return instant{t.Unix(), t.Nanosecond()} }

func newLookups(asOf time.Time, disc DiscountCurve, surv SurvivalCurve) *lookups {
	return &lookups{
		asOf: asOf,
		dc:   disc.DayCounter(),
		disc: disc,
		surv: surv,
		df:   make(map[instant]float64),
		sp:   make(map[instant]float64),
	}
}

func (l *lookups) discount(t time.Time) (float64, error) {
	k := memoKey(t)
	if v, ok := l.df[k]; ok {
		return v, nil
	}
	v, err := l.disc.Value(l.asOf, t)
	if err != nil {
		return 0, err
	}
	if !(v > 0 && v <= 1) {
		return 0, &CurveDataError{Curve: "discount", Date: t, Value: v, Reason: "discount factor outside (0, 1]"}
	}
	l.df[k] = v
	return v, nil
}

func (l *lookups) survival(t time.Time) (float64, error) {
	k := memoKey(t)
	if v, ok := l.sp[k]; ok {
		return v, nil
	}
	v, err := l.surv.Value(l.asOf, t, l.dc)
	if err != nil {
		return 0, err
	}
	if !(v >= 0 && v <= 1) {
		return 0, &CurveDataError{Curve: "survival", Date: t, Value: v, Reason: "survival probability outside [0, 1]"}
	}
	l.sp[k] = v
	return v, nil
}

func checkRecovery(t time.Time, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return &CurveDataError{Curve: "recovery", Date: t, Value: v, Reason: "recovery rate outside [0, 1]"}
	}
	return nil
}
