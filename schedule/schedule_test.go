package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/credlib/calendar"
	"github.com/meenmo/credlib/schedule"
	"github.com/meenmo/credlib/utils"
)

func formatAll(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = utils.FormatDate(d)
	}
	return out
}

func TestPremiumDatesQuarterly(t *testing.T) {
	t.Parallel()

	dates, err := schedule.PremiumDates(
		utils.MustParseDate("2024-03-20"), utils.MustParseDate("2025-03-20"),
		schedule.Quarterly, calendar.WeekendsOnly, calendar.Unadjusted)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-06-20", "2024-09-20", "2024-12-20", "2025-03-20"}, formatAll(dates))
}

func TestPremiumDatesShortStub(t *testing.T) {
	t.Parallel()

	dates, err := schedule.PremiumDates(
		utils.MustParseDate("2024-01-01"), utils.MustParseDate("2024-09-15"),
		schedule.SemiAnnual, calendar.WeekendsOnly, calendar.Unadjusted)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-07-01", "2024-09-15"}, formatAll(dates))
}

func TestPremiumDatesAdjusted(t *testing.T) {
	t.Parallel()

	// 2024-06-29 falls on a Saturday.
	dates, err := schedule.PremiumDates(
		utils.MustParseDate("2023-12-29"), utils.MustParseDate("2024-12-27"),
		schedule.SemiAnnual, calendar.TARGET, calendar.ModifiedFollowing)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-06-28", "2024-12-27"}, formatAll(dates))
}

func TestPremiumDatesRejectsEmptyRange(t *testing.T) {
	t.Parallel()

	d := utils.MustParseDate("2024-01-01")
	_, err := schedule.PremiumDates(d, d, schedule.Annual, calendar.WeekendsOnly, calendar.Unadjusted)
	assert.Error(t, err)
}

func TestParsePeriod(t *testing.T) {
	t.Parallel()

	p, err := schedule.ParsePeriod("sa")
	require.NoError(t, err)
	assert.Equal(t, schedule.SemiAnnual, p)
	assert.Equal(t, 6, p.Months())

	_, err = schedule.ParsePeriod("W")
	assert.Error(t, err)
}
