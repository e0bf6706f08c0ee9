package cds

import (
	"errors"
	"fmt"
	"time"

	"github.com/meenmo/credlib/utils"
)

var (
	// ErrConstruction matches every *ConstructionError.
	ErrConstruction = errors.New("invalid cds specification")
	// ErrCurveData matches every *CurveDataError.
	ErrCurveData = errors.New("curve data inconsistency")
	// ErrNilCurve is returned when a required curve argument is nil.
	ErrNilCurve = errors.New("nil curve")
	// ErrMissingRecoveryCurve is returned when loss-given-default must come from a recovery curve
	// and none was supplied.
	ErrMissingRecoveryCurve = errors.New("recovery curve required")
	// ErrValuationDate is returned for a zero valuation date.
	ErrValuationDate = errors.New("valuation date is required")
)

// ConstructionError describes a rejected specification field.
type ConstructionError struct {
	Field  string
	Reason string
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("cds specification: %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrConstruction) match.
func (e *ConstructionError) Is(target error) bool {
	return target == ErrConstruction
}

// CurveDataError reports a curve value that breaks the bounds or monotonicity the pricer relies on.
type CurveDataError struct {
	Curve  string
	Date   time.Time
	Value  float64
	Reason string
}

func (e *CurveDataError) Error() string {
	return fmt.Sprintf("%s curve at %s: value %g: %s", e.Curve, utils.FormatDate(e.Date), e.Value, e.Reason)
}

// Is lets errors.Is(err, ErrCurveData) match.
func (e *CurveDataError) Is(target error) bool {
	return target == ErrCurveData
}
