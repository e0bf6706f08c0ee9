package main

import (
	"fmt"
	"time"

	"github.com/meenmo/credlib/calendar"
	"github.com/meenmo/credlib/cds"
	"github.com/meenmo/credlib/curve"
	"github.com/meenmo/credlib/daycount"
	"github.com/meenmo/credlib/schedule"
	"github.com/meenmo/credlib/utils"
)

func main() {
	valDate := utils.MustParseDate("2025-11-21")

	payDates, err := schedule.PremiumDates(
		utils.MustParseDate("2025-09-22"),
		utils.MustParseDate("2030-12-20"),
		schedule.Quarterly,
		calendar.TARGET,
		calendar.ModifiedFollowing,
	)
	if err != nil {
		panic(err)
	}

	recovery := 0.4
	spec, err := cds.NewSpecification(cds.SpecificationParams{
		Premium:          0.01,
		PremiumStartDate: utils.MustParseDate("2025-09-22"),
		PremiumPayDates:  payDates,
		Notional:         10_000_000,
		Recovery:         &recovery,
		Issuer:           "ACME",
		Seniority:        cds.SecSeniorUnsecured,
	})
	if err != nil {
		panic(err)
	}

	discount, err := curve.NewDiscount("EUR-ESTR", valDate,
		[]time.Time{
			utils.MustParseDate("2026-11-23"),
			utils.MustParseDate("2027-11-22"),
			utils.MustParseDate("2028-11-21"),
			utils.MustParseDate("2030-11-21"),
			utils.MustParseDate("2035-11-21"),
		},
		[]float64{0.9791, 0.9582, 0.9365, 0.8921, 0.7802},
		daycount.Act360, curve.LinearLog, curve.LinearLogExtrapolation)
	if err != nil {
		panic(err)
	}

	survival, err := curve.NewHazard("ACME-SNRFOR", valDate,
		[]time.Time{
			utils.MustParseDate("2026-12-20"),
			utils.MustParseDate("2028-12-20"),
			utils.MustParseDate("2030-12-20"),
		},
		[]float64{0.0110, 0.0165, 0.0210})
	if err != nil {
		panic(err)
	}

	res, err := cds.Price(spec, valDate, discount, survival, nil)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Protection PV: %.2f\n", res.PVProtectionLeg)
	fmt.Printf("Premium PV: %.2f\n", res.PVPremiumLeg)
	fmt.Printf("Price: %.2f\n", res.Price)
}
