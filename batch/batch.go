// Package batch prices many independent contracts on a bounded pool of goroutines.
package batch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/meenmo/credlib/cds"
	"github.com/meenmo/credlib/journal"
	"github.com/meenmo/credlib/metrics"
)

// DefaultWorkers is used when Runner.Workers is not positive.
const DefaultWorkers = 4

// Job is one contract and its market.
type Job struct {
	Name string
	Data cds.PricingData
}

// Outcome is the result of one Job. Err is the pricing error; JournalErr reports a failure to
// record an otherwise successful run.
type Outcome struct {
	Name       string
	Data       cds.PricingData
	Result     cds.PricingResult
	Err        error
	RunID      string
	JournalErr error
	Duration   time.Duration
}

// Runner prices jobs concurrently. Metrics and Journal are optional.
type Runner struct {
	Engine  *cds.Engine
	Workers int
	Metrics *metrics.Pricing
	Journal journal.Journal
	Log     zerolog.Logger

	// Now stamps journal entries; nil means time.Now.
	Now func() time.Time
}

// Run prices every job and returns outcomes in input order. Jobs not started before ctx is done
// get ctx.Err() as their error.
func (r *Runner) Run(ctx context.Context, jobs []Job) []Outcome {
	out := make([]Outcome, len(jobs))
	if len(jobs) == 0 {
		return out
	}

	workers := r.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if len(jobs) < workers {
		workers = len(jobs)
	}

	queue := make(chan int, len(jobs))
	for i := range jobs {
		queue <- i
	}
	close(queue)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range queue {
				// Each index is written by exactly one worker.
				out[i] = r.price(ctx, jobs[i])
			}
		}()
	}
	wg.Wait()

	return out
}

func (r *Runner) price(ctx context.Context, job Job) Outcome {
	o := Outcome{Name: job.Name, Data: job.Data}
	if err := ctx.Err(); err != nil {
		o.Err = err
		return o
	}

	engine := r.Engine
	if engine == nil {
		engine = defaultEngine
	}

	issuer := ""
	if job.Data.Spec != nil {
		issuer = job.Data.Spec.Issuer()
	}

	start := time.Now()
	o.Result, o.Err = job.Data.PriceWith(engine)
	o.Duration = time.Since(start)
	r.Metrics.Observe(issuer, o.Duration, o.Result, o.Err)

	if o.Err != nil {
		r.Log.Warn().Err(o.Err).Str("scenario", job.Name).Str("issuer", issuer).Msg("pricing failed")
		return o
	}
	r.Log.Info().
		Str("scenario", job.Name).
		Str("issuer", issuer).
		Float64("price", o.Result.Price).
		Dur("elapsed", o.Duration).
		Msg("priced")

	if r.Journal != nil {
		o.RunID, o.JournalErr = r.record(ctx, job, o.Result)
		if o.JournalErr != nil {
			r.Log.Error().Err(o.JournalErr).Str("scenario", job.Name).Msg("journal write failed")
		}
	}
	return o
}

func (r *Runner) record(ctx context.Context, job Job, res cds.PricingResult) (string, error) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	run, err := journal.NewRun(job.Name, job.Data, res, now())
	if err != nil {
		return "", err
	}
	if err := r.Journal.RecordRun(ctx, run); err != nil {
		return "", err
	}
	return run.ID, nil
}

var defaultEngine, _ = cds.NewEngine(cds.DefaultConfig)
