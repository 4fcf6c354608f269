package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/mattn/go-isatty"

	"github.com/torosent/pressure/internal/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const notAvailable = "n/a"

// Printer renders the text report. Colour is used only when enabled and the
// writer is a terminal.
type Printer struct {
	w       io.Writer
	heading *color.Color
	value   *color.Color
	good    *color.Color
	bad     *color.Color
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer, noColor bool) *Printer {
	p := &Printer{
		w:       w,
		heading: color.New(color.Bold),
		value:   color.New(color.FgCyan),
		good:    color.New(color.FgGreen),
		bad:     color.New(color.FgRed),
	}
	colored := !noColor && IsTerminal(w)
	for _, c := range []*color.Color{p.heading, p.value, p.good, p.bad} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// IsTerminal reports whether w is attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// PrintBanner announces the run before the first request is launched.
func (p *Printer) PrintBanner(total int, duration time.Duration, concurrency int) {
	if duration > 0 {
		fmt.Fprintf(p.w, "running for %s with concurrency %d\n", duration, concurrency)
		return
	}
	fmt.Fprintf(p.w, "running for %d queries with concurrency %d\n", total, concurrency)
}

// PrintReport outputs a human-readable summary report.
func (p *Printer) PrintReport(stats metrics.Stats, interrupted bool) {
	fmt.Fprintln(p.w)
	p.heading.Fprintln(p.w, "--- Result ---")
	if interrupted {
		p.bad.Fprintln(p.w, "run interrupted, partial results")
	}
	p.row("Total success calls:", fmt.Sprintf("%d", stats.Count))
	p.row("Total errors:", fmt.Sprintf("%d", stats.Errors))
	p.row("Total time:", formatDuration(stats.TotalTime))
	p.row("Average time:", formatDuration(stats.MeanLatency))
	if stats.HasSamples() {
		p.row("Minimum time:", formatDuration(stats.MinLatency))
		p.row("Maximum time:", formatDuration(stats.MaxLatency))
	} else {
		p.row("Minimum time:", notAvailable)
		p.row("Maximum time:", notAvailable)
	}
	p.row("Requests/sec:", fmt.Sprintf("%.2f", stats.RequestsPerSec))

	fmt.Fprintln(p.w)
	p.heading.Fprintln(p.w, "--- Status codes ---")
	rows := metrics.FlattenStatusCodes(stats.StatusCodes)
	if len(rows) == 0 {
		fmt.Fprintln(p.w, "  None")
	}
	for _, row := range rows {
		c := p.good
		if row.Code >= 400 {
			c = p.bad
		}
		fmt.Fprintf(p.w, "  code %s  times %d\n", c.Sprintf("%d", row.Code), row.Count)
	}

	if errs := metrics.FlattenErrors(stats.ErrorBreakdown); len(errs) > 0 {
		fmt.Fprintln(p.w)
		p.heading.Fprintln(p.w, "--- Errors ---")
		for _, row := range errs {
			fmt.Fprintf(p.w, "  %s %d\n", p.bad.Sprintf("%-24s", row.Reason), row.Count)
		}
	}
}

func (p *Printer) row(label, value string) {
	fmt.Fprintf(p.w, "%-22s %s\n", label, p.value.Sprint(value))
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Second:
		return d.Round(time.Millisecond).String()
	case d >= time.Millisecond:
		return d.Round(time.Microsecond).String()
	default:
		return d.String()
	}
}

// Report is the machine-readable form of a run.
type Report struct {
	RunID       string        `json:"run_id"`
	Target      string        `json:"target"`
	Method      string        `json:"method"`
	Mode        string        `json:"mode"`
	Concurrency int           `json:"concurrency"`
	Interrupted bool          `json:"interrupted"`
	Stats       metrics.Stats `json:"stats"`
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
