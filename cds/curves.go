package cds

import (
	"reflect"
	"time"

	"github.com/meenmo/credlib/daycount"
)

// DiscountCurve provides discount factors in (0, 1] and the convention used for premium accrual.
type DiscountCurve interface {
	Value(asOf, target time.Time) (float64, error)
	DayCounter() daycount.Convention
}

// SurvivalCurve provides survival probabilities in [0, 1], non-increasing in target.
type SurvivalCurve interface {
	Value(asOf, target time.Time, dc daycount.Convention) (float64, error)
}

// RecoveryCurve provides recovery rates in [0, 1].
type RecoveryCurve interface {
	Value(asOf, target time.Time, dc daycount.Convention) (float64, error)
}

func isNilInterface(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}
