package curve

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/meenmo/credlib/utils"
)

// Interpolation selects how values between nodes are computed.
type Interpolation int

const (
	// Constant holds the value of the next node (right-continuous steps).
	Constant Interpolation = iota
	// Linear interpolates values linearly in time.
	Linear
	// LinearLog interpolates log-values linearly in time.
	LinearLog
)

func (i Interpolation) String() string {
	switch i {
	case Constant:
		return "CONSTANT"
	case Linear:
		return "LINEAR"
	case LinearLog:
		return "LINEARLOG"
	default:
		return fmt.Sprintf("Interpolation(%d)", int(i))
	}
}

// ParseInterpolation is case-insensitive.
func ParseInterpolation(s string) (Interpolation, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CONSTANT":
		return Constant, nil
	case "LINEAR":
		return Linear, nil
	case "LINEARLOG", "LOGLINEAR":
		return LinearLog, nil
	default:
		return 0, fmt.Errorf("curve: unknown interpolation %q", s)
	}
}

// Extrapolation selects how values outside the node range are computed.
type Extrapolation int

const (
	// NoExtrapolation makes lookups outside the node range fail.
	NoExtrapolation Extrapolation = iota
	// ConstantExtrapolation holds the boundary value.
	ConstantExtrapolation
	// LinearExtrapolation extends the boundary segment linearly.
	LinearExtrapolation
	// LinearLogExtrapolation extends the boundary segment linearly in log-value.
	LinearLogExtrapolation
)

func (e Extrapolation) String() string {
	switch e {
	case NoExtrapolation:
		return "NONE"
	case ConstantExtrapolation:
		return "CONSTANT"
	case LinearExtrapolation:
		return "LINEAR"
	case LinearLogExtrapolation:
		return "LINEARLOG"
	default:
		return fmt.Sprintf("Extrapolation(%d)", int(e))
	}
}

// ParseExtrapolation is case-insensitive.
func ParseExtrapolation(s string) (Extrapolation, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NONE", "":
		return NoExtrapolation, nil
	case "CONSTANT":
		return ConstantExtrapolation, nil
	case "LINEAR":
		return LinearExtrapolation, nil
	case "LINEARLOG", "LOGLINEAR":
		return LinearLogExtrapolation, nil
	default:
		return 0, fmt.Errorf("curve: unknown extrapolation %q", s)
	}
}

// ErrLookup matches every *LookupError via errors.Is.
var ErrLookup = errors.New("curve lookup failed")

// LookupError reports that a curve could not produce a value for a date.
type LookupError struct {
	Curve  string
	AsOf   time.Time
	Date   time.Time
	Reason string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("curve %s: lookup as of %s at %s: %s",
		e.Curve, utils.FormatDate(e.AsOf), utils.FormatDate(e.Date), e.Reason)
}

// Is lets errors.Is(err, ErrLookup) match.
func (e *LookupError) Is(target error) bool {
	return target == ErrLookup
}
