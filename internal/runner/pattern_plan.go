package runner

import (
	"math"
	"time"
)

// patternPlan is a compiled sequence of load patterns laid end to end on the
// run's timeline.
type patternPlan struct {
	segments []rateSegment
	length   time.Duration
	peak     float64
}

// rateSegment interpolates linearly between from and to over [start, end).
type rateSegment struct {
	start, end time.Duration
	from, to   float64
}

func compilePatternPlan(patterns []LoadPattern) *patternPlan {
	plan := &patternPlan{}
	for _, p := range patterns {
		switch p.Type {
		case LoadPatternTypeRamp:
			plan.add(p.Duration, float64(p.FromRPS), float64(p.ToRPS))
		case LoadPatternTypeSpike:
			plan.add(p.Duration, float64(p.RPS), float64(p.RPS))
		case LoadPatternTypeStep:
			for _, step := range p.Steps {
				plan.add(step.Duration, float64(step.RPS), float64(step.RPS))
			}
		}
	}
	if len(plan.segments) == 0 {
		return nil
	}
	return plan
}

// add appends a segment of length d; non-positive lengths are skipped.
func (p *patternPlan) add(d time.Duration, from, to float64) {
	if d <= 0 {
		return
	}
	p.segments = append(p.segments, rateSegment{start: p.length, end: p.length + d, from: from, to: to})
	p.length += d
	p.peak = math.Max(p.peak, math.Max(from, to))
}

// rateAt returns the target rate at elapsed, or false once the plan is over.
func (p *patternPlan) rateAt(elapsed time.Duration) (float64, bool) {
	if p == nil {
		return 0, false
	}
	elapsed = max(elapsed, 0)
	for _, seg := range p.segments {
		if elapsed >= seg.end {
			continue
		}
		if seg.from == seg.to {
			return seg.from, true
		}
		frac := float64(elapsed-seg.start) / float64(seg.end-seg.start)
		return seg.from + (seg.to-seg.from)*frac, true
	}
	return 0, false
}

// totalDuration is the length of the whole plan.
func (p *patternPlan) totalDuration() time.Duration {
	if p == nil {
		return 0
	}
	return p.length
}

// burst sizes the token bucket for the plan's highest rate.
func (p *patternPlan) burst() int {
	if p == nil {
		return 1
	}
	return max(int(math.Ceil(p.peak)), 1)
}
