package output

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

// Counter exposes the running totals of a store. *metrics.Store satisfies it.
type Counter interface {
	Count() int64
	ErrorCount() int64
}

// ProgressReporter displays real-time progress updates.
type ProgressReporter struct {
	counter  Counter
	ticker   *time.Ticker
	done     chan struct{}
	finished chan struct{}
	writer   io.Writer
	active   int32
	start    time.Time
}

// NewProgressReporter creates a progress reporter that updates at the given interval.
func NewProgressReporter(counter Counter, interval time.Duration, writer io.Writer) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &ProgressReporter{
		counter:  counter,
		ticker:   time.NewTicker(interval),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
		writer:   writer,
		start:    time.Now(),
	}
}

// Start begins displaying progress updates in a background goroutine.
func (p *ProgressReporter) Start() {
	if !atomic.CompareAndSwapInt32(&p.active, 0, 1) {
		return
	}
	p.start = time.Now()
	go p.run()
}

// Stop halts progress updates and terminates the progress line.
func (p *ProgressReporter) Stop() {
	if atomic.CompareAndSwapInt32(&p.active, 1, 0) {
		close(p.done)
		p.ticker.Stop()
		<-p.finished
		fmt.Fprint(p.writer, p.line(), "\n")
	}
}

func (p *ProgressReporter) run() {
	defer close(p.finished)
	for {
		select {
		case <-p.ticker.C:
			fmt.Fprint(p.writer, p.line())
		case <-p.done:
			return
		}
	}
}

func (p *ProgressReporter) line() string {
	count := p.counter.Count()
	errs := p.counter.ErrorCount()
	elapsed := time.Since(p.start)
	rps := 0.0
	if secs := elapsed.Seconds(); secs > 0 {
		rps = float64(count) / secs
	}
	return fmt.Sprintf("\rSuccesses: %d | Errors: %d | RPS: %.1f | Elapsed: %s",
		count, errs, rps, elapsed.Round(100*time.Millisecond))
}
