package main

import (
	"fmt"
	"time"

	"github.com/meenmo/credlib/cds"
	"github.com/meenmo/credlib/curve"
	"github.com/meenmo/credlib/daycount"
	"github.com/meenmo/credlib/utils"
)

// Diagnostic: protection leg PV of a 5Y contract as the grid density grows. Discounting at the
// end of each interval biases the leg low; the bias should shrink roughly with 1/n.
//
//	go run scripts/grid_convergence.go
func main() {
	valDate := utils.MustParseDate("2024-03-20")
	recovery := 0.4

	var pay []time.Time
	for i := 1; i <= 20; i++ {
		pay = append(pay, utils.AddMonth(valDate, 3*i))
	}
	spec, err := cds.NewSpecification(cds.SpecificationParams{
		Premium:          0.01,
		PremiumStartDate: valDate,
		PremiumPayDates:  pay,
		Notional:         10_000_000,
		Recovery:         &recovery,
	})
	if err != nil {
		panic(err)
	}

	disc := curve.FlatRateDiscount("OIS-4%", valDate, 0.04, daycount.Act365Fixed)
	surv, err := curve.FlatHazard("HAZ-2%", valDate, 0.02)
	if err != nil {
		panic(err)
	}

	var prev float64
	for _, steps := range []int{1, 4, 12, 52, 365, 3650} {
		engine, err := cds.NewEngine(cds.Config{TimestepsPerYear: steps, MinTimesteps: 1})
		if err != nil {
			panic(err)
		}
		res, err := engine.Price(spec, valDate, disc, surv, nil)
		if err != nil {
			panic(err)
		}
		fmt.Printf("steps/yr=%5d  protection=%14.4f  change=%10.4f\n", steps, res.PVProtectionLeg, res.PVProtectionLeg-prev)
		prev = res.PVProtectionLeg
	}
}
