package runner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/torosent/pressure/internal/pool"
)

// ErrNoRequester is returned by Run when Options.Requester is nil.
var ErrNoRequester = errors.New("runner: requester is required")

// patternTick is how often a load pattern re-targets the launch rate.
const patternTick = 100 * time.Millisecond

// minPatternRate keeps a pattern segment at 0 rps from turning into
// unlimited pacing.
const minPatternRate = 1.0

// Result captures execution summary.
type Result struct {
	Mode         Mode
	Launched     int64
	Duration     time.Duration
	PeakInFlight int
	Interrupted  bool
}

// Runner launches requests under a concurrency cap until its stopping
// condition is met, then waits for in-flight requests to drain.
type Runner struct {
	opt     Options
	plan    *patternPlan
	arrival arrivalController
}

func New(opt Options) *Runner {
	opt.normalize()
	plan := compilePatternPlan(opt.LoadPatterns)
	return &Runner{opt: opt, plan: plan, arrival: newArrivalController(opt, plan)}
}

// Mode reports which stopping condition the runner uses.
func (r *Runner) Mode() Mode {
	return r.opt.mode()
}

// Run executes the load test. In-flight requests run on a context detached
// from ctx and from the duration deadline, and are only cancelled when another
// request reports a run-level error, which Run returns.
//
// Cancelling ctx stops new launches and ends the run at that instant: the
// elapsed time handed to the store is measured up to the interrupt, although
// the store is finalized only after in-flight requests have drained and been
// recorded. Without an interrupt, elapsed time includes the drain.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if r.opt.Requester == nil {
		return Result{}, ErrNoRequester
	}

	start := time.Now()
	result := Result{Mode: r.opt.mode()}

	var interruptedAt atomic.Int64
	interruptRecorded := make(chan struct{})
	stopWatch := context.AfterFunc(ctx, func() {
		interruptedAt.Store(int64(time.Since(start)))
		close(interruptRecorded)
	})

	launchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if r.opt.Duration > 0 {
		deadlineCtx, deadlineCancel := context.WithTimeout(launchCtx, r.opt.Duration)
		launchCtx = deadlineCtx
		defer deadlineCancel()
	}
	if r.plan != nil {
		planCtx, planDone := context.WithCancel(launchCtx)
		launchCtx = planCtx
		defer planDone()
		go r.followPlan(planCtx, planDone)
	}

	workers := pool.New(context.WithoutCancel(ctx), r.opt.Concurrency)
	task := func(taskCtx context.Context) error {
		return r.opt.Requester.Do(taskCtx)
	}

	// Launch loop: a single goroutine serializes pacing and stop checks so the
	// count bound is exact and nothing starts after the deadline.
	for r.shouldLaunch(launchCtx, workers, result.Launched) {
		if r.arrival != nil {
			if err := r.arrival.Wait(launchCtx); err != nil {
				break
			}
			if launchCtx.Err() != nil {
				break
			}
		}
		if err := workers.Go(launchCtx, task); err != nil {
			break
		}
		result.Launched++
	}

	runErr := workers.Wait()
	result.Duration = time.Since(start)
	result.PeakInFlight = workers.Peak()

	if !stopWatch() {
		<-interruptRecorded
		result.Interrupted = true
		result.Duration = time.Duration(interruptedAt.Load())
	}

	if runErr != nil {
		return result, fmt.Errorf("run aborted after %d requests: %w", result.Launched, runErr)
	}
	if r.opt.Store != nil {
		if err := r.opt.Store.Finish(result.Duration); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (r *Runner) shouldLaunch(ctx context.Context, workers *pool.Pool, launched int64) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case <-workers.Done():
		return false
	default:
	}
	if r.opt.mode() == ModeCount && launched >= int64(r.opt.TotalRequests) {
		return false
	}
	return true
}

// followPlan re-targets the arrival rate as the load pattern progresses and
// ends launching once the last segment is over.
func (r *Runner) followPlan(ctx context.Context, done context.CancelFunc) {
	defer done()
	if r.arrival == nil {
		return
	}

	start := time.Now()
	ticker := time.NewTicker(patternTick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rps, ok := r.plan.rateAt(time.Since(start))
			if !ok {
				return
			}
			r.arrival.SetRate(math.Max(rps, minPatternRate))
		}
	}
}
