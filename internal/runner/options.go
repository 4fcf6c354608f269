package runner

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Requester abstracts executing a single request operation.
// Per-request transport failures are recorded by the implementation and are
// not returned; a non-nil error aborts the whole run.
type Requester interface {
	Do(ctx context.Context) error
}

// RequesterFunc adapts a function to the Requester interface.
type RequesterFunc func(ctx context.Context) error

func (f RequesterFunc) Do(ctx context.Context) error { return f(ctx) }

// Finisher receives the total elapsed time once the run has drained.
// *metrics.Store satisfies it.
type Finisher interface {
	Finish(elapsed time.Duration) error
}

// ArrivalModel selects how launches are paced when a rate is configured.
type ArrivalModel string

const (
	ArrivalModelUniform ArrivalModel = "uniform"
	ArrivalModelPoisson ArrivalModel = "poisson"
)

// LoadPatternType names the shape of one load pattern.
type LoadPatternType string

const (
	LoadPatternTypeRamp  LoadPatternType = "ramp"
	LoadPatternTypeStep  LoadPatternType = "step"
	LoadPatternTypeSpike LoadPatternType = "spike"
)

// LoadPattern varies the launch rate over time. Patterns run back to back;
// a ramp moves linearly from FromRPS to ToRPS, a spike holds RPS, and a step
// pattern holds each of its Steps in turn.
type LoadPattern struct {
	Name     string
	Type     LoadPatternType
	FromRPS  int
	ToRPS    int
	RPS      int
	Duration time.Duration
	Steps    []LoadStep
}

// LoadStep is one fixed-rate stage of a step pattern.
type LoadStep struct {
	RPS      int
	Duration time.Duration
}

// Mode is the stopping condition of a run.
type Mode string

const (
	ModeCount    Mode = "count"
	ModeDuration Mode = "duration"
)

// Options configure the Runner.
type Options struct {
	Concurrency    int                         // maximum requests in flight
	TotalRequests  int                         // count-bounded mode: exact number of requests
	Duration       time.Duration               // duration-bounded mode: launch window
	RatePerSecond  int                         // requests per second pacing (0 means unlimited)
	ArrivalModel   ArrivalModel                // pacing model when RatePerSecond > 0 or patterns are set
	LoadPatterns   []LoadPattern               // optional rate schedule; overrides RatePerSecond
	Requester      Requester                   // request executor (required)
	Store          Finisher                    // receives total elapsed time (optional)
	LimiterFactory func(rps int) *rate.Limiter // optional injection for tests
	PoissonSampler func() float64              // optional injection for tests
	RandomSeed     int64
}

func (o *Options) normalize() {
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.TotalRequests < 0 {
		o.TotalRequests = 0
	}
	if o.Duration < 0 {
		o.Duration = 0
	}
	// A load pattern with no explicit stopping condition runs for as long as
	// the pattern lasts.
	if o.Duration == 0 && o.TotalRequests == 0 && len(o.LoadPatterns) > 0 {
		o.Duration = compilePatternPlan(o.LoadPatterns).totalDuration()
	}
	// Count and duration are mutually exclusive; duration wins, and a run
	// with neither sends a single request.
	if o.Duration > 0 {
		o.TotalRequests = 0
	} else if o.TotalRequests == 0 {
		o.TotalRequests = 1
	}
	if o.RatePerSecond < 0 {
		o.RatePerSecond = 0
	}
	if o.ArrivalModel == "" {
		o.ArrivalModel = ArrivalModelUniform
	}
	if o.RandomSeed == 0 {
		o.RandomSeed = time.Now().UnixNano()
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(rps int) *rate.Limiter {
			if rps <= 0 {
				return rate.NewLimiter(rate.Inf, 0)
			}
			// Burst equal to rps to smooth pacing under concurrency.
			return rate.NewLimiter(rate.Limit(rps), rps)
		}
	}
}

func (o Options) mode() Mode {
	if o.Duration > 0 {
		return ModeDuration
	}
	return ModeCount
}
