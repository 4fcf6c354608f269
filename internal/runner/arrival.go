package runner

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// arrivalController paces launches. SetRate re-targets it while a load
// pattern is running.
type arrivalController interface {
	Wait(ctx context.Context) error
	SetRate(rps float64)
}

// newArrivalController returns nil when neither a rate nor a load pattern is
// configured, leaving throughput governed by the concurrency cap alone. A
// pattern's opening rate takes precedence over RatePerSecond.
func newArrivalController(opt Options, plan *patternPlan) arrivalController {
	initial := float64(opt.RatePerSecond)
	if plan != nil {
		first, _ := plan.rateAt(0)
		initial = math.Max(first, minPatternRate)
	} else if initial <= 0 {
		return nil
	}

	if opt.ArrivalModel == ArrivalModelPoisson {
		sample := opt.PoissonSampler
		if sample == nil {
			sample = rand.New(rand.NewSource(opt.RandomSeed)).ExpFloat64
		}
		p := &poissonArrival{sample: sample}
		p.SetRate(initial)
		return p
	}

	u := &uniformArrival{limiter: opt.LimiterFactory(int(math.Ceil(initial)))}
	if plan != nil {
		u.burst = plan.burst()
		u.SetRate(initial)
	}
	return u
}

// uniformArrival spaces launches evenly with a token bucket.
type uniformArrival struct {
	limiter *rate.Limiter
	burst   int // fixed burst for pattern runs; 0 derives it from the rate
}

func (u *uniformArrival) Wait(ctx context.Context) error {
	if u == nil || u.limiter == nil {
		return nil
	}
	return u.limiter.Wait(ctx)
}

func (u *uniformArrival) SetRate(rps float64) {
	if u == nil || u.limiter == nil || rps <= 0 {
		return
	}
	burst := u.burst
	if burst <= 0 {
		burst = max(int(math.Ceil(rps)), 1)
	}
	u.limiter.SetLimit(rate.Limit(rps))
	u.limiter.SetBurst(burst)
}

// poissonArrival draws exponential gaps between launches, so arrivals form a
// Poisson process with the configured mean rate.
type poissonArrival struct {
	mu     sync.Mutex
	rps    float64
	sample func() float64
}

func (p *poissonArrival) Wait(ctx context.Context) error {
	gap := p.nextDelay()
	if gap <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(gap)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p *poissonArrival) SetRate(rps float64) {
	p.mu.Lock()
	p.rps = math.Max(rps, 0)
	p.mu.Unlock()
}

func (p *poissonArrival) nextDelay() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rps <= 0 || p.sample == nil {
		return 0
	}
	gap := float64(time.Second) * p.sample() / p.rps
	return time.Duration(math.Min(gap, math.MaxInt64))
}
