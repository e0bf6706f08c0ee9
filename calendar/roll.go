package calendar

import (
	"fmt"
	"strings"
	"time"
)

// RollConvention is the business-day adjustment applied to a scheduled date.
type RollConvention int

const (
	Unadjusted RollConvention = iota
	Following
	ModifiedFollowing
	ModifiedFollowingEOM
	Preceding
	ModifiedPreceding
)

var rollNames = map[RollConvention]string{
	Unadjusted:           "Unadjusted",
	Following:            "Following",
	ModifiedFollowing:    "ModifiedFollowing",
	ModifiedFollowingEOM: "ModifiedFollowingEOM",
	Preceding:            "Preceding",
	ModifiedPreceding:    "ModifiedPreceding",
}

func (r RollConvention) String() string {
	if s, ok := rollNames[r]; ok {
		return s
	}
	return fmt.Sprintf("RollConvention(%d)", int(r))
}

// ParseRollConvention is case-insensitive; an empty name means Unadjusted.
func ParseRollConvention(name string) (RollConvention, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return Unadjusted, nil
	}
	for r, s := range rollNames {
		if strings.ToLower(s) == key {
			return r, nil
		}
	}
	return Unadjusted, fmt.Errorf("unknown roll convention %q", name)
}

// Roll adjusts t on cal according to conv.
func Roll(cal CalendarID, conv RollConvention, t time.Time) time.Time {
	switch conv {
	case Unadjusted:
		return t
	case Following:
		return AdjustFollowing(cal, t)
	case ModifiedFollowing:
		return Adjust(cal, t)
	case ModifiedFollowingEOM:
		if t.Day() == daysInMonth(t.Year(), t.Month()) {
			return LastBusinessDayOfMonth(cal, t)
		}
		return Adjust(cal, t)
	case Preceding:
		return AdjustPreceding(cal, t)
	case ModifiedPreceding:
		return AdjustModifiedPreceding(cal, t)
	default:
		panic(fmt.Sprintf("calendar.Roll: unhandled %s", conv))
	}
}
