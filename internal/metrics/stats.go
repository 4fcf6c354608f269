package metrics

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoSamples reports that no successful request was recorded, so the
// minimum and maximum latency are undefined.
var ErrNoSamples = errors.New("metrics: no successful requests recorded")

// Stats is the immutable summary of a finished run.
type Stats struct {
	Count          int64         `json:"count"`
	Errors         int64         `json:"errors"`
	TotalTime      time.Duration `json:"-"`
	RequestsPerSec float64       `json:"requests_per_sec"`
	MeanLatency    time.Duration `json:"-"`
	MinLatency     time.Duration `json:"-"`
	MaxLatency     time.Duration `json:"-"`

	// JSON-friendly millisecond fields.
	TotalTimeMs   float64 `json:"total_time_ms"`
	MeanLatencyMs float64 `json:"mean_latency_ms"`
	MinLatencyMs  float64 `json:"min_latency_ms"`
	MaxLatencyMs  float64 `json:"max_latency_ms"`

	StatusCodes    map[int]int    `json:"status_codes,omitempty"`
	ErrorBreakdown map[string]int `json:"error_breakdown,omitempty"`
}

// HasSamples reports whether MinLatency and MaxLatency carry real values.
func (s Stats) HasSamples() bool {
	return s.Count > 0
}

// Compute derives Stats from a store without mutating it. When no successes
// were recorded it still returns the populated Stats alongside ErrNoSamples.
func Compute(src Snapshotter) (Stats, error) {
	if src == nil {
		return Stats{}, fmt.Errorf("metrics: nil source")
	}
	snap := src.Snapshot()

	stats := Stats{
		TotalTime: snap.Elapsed,
		Errors:    int64(len(snap.Errors)),
	}

	var sum time.Duration
	first := true
	for code, durations := range snap.Buckets {
		if len(durations) == 0 {
			continue
		}
		if stats.StatusCodes == nil {
			stats.StatusCodes = make(map[int]int, len(snap.Buckets))
		}
		stats.StatusCodes[code] = len(durations)
		stats.Count += int64(len(durations))
		for _, d := range durations {
			sum += d
			if first || d < stats.MinLatency {
				stats.MinLatency = d
			}
			if first || d > stats.MaxLatency {
				stats.MaxLatency = d
			}
			first = false
		}
	}

	if stats.Count > 0 {
		stats.MeanLatency = time.Duration(int64(sum) / stats.Count)
	}
	if stats.Count > 0 && snap.Elapsed > 0 {
		stats.RequestsPerSec = float64(stats.Count) / snap.Elapsed.Seconds()
	}

	if len(snap.Errors) > 0 {
		stats.ErrorBreakdown = make(map[string]int)
		for _, err := range snap.Errors {
			stats.ErrorBreakdown[ClassifyError(err)]++
		}
	}

	stats.TotalTimeMs = toMillis(stats.TotalTime)
	stats.MeanLatencyMs = toMillis(stats.MeanLatency)
	stats.MinLatencyMs = toMillis(stats.MinLatency)
	stats.MaxLatencyMs = toMillis(stats.MaxLatency)

	if stats.Count == 0 {
		return stats, ErrNoSamples
	}
	return stats, nil
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
