package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/torosent/pressure/internal/auth"
	"github.com/torosent/pressure/internal/clientmetrics"
	"github.com/torosent/pressure/internal/config"
	"github.com/torosent/pressure/internal/httpclient"
	"github.com/torosent/pressure/internal/logging"
	"github.com/torosent/pressure/internal/metrics"
	"github.com/torosent/pressure/internal/output"
	"github.com/torosent/pressure/internal/runner"
	"github.com/torosent/pressure/internal/tracing"
)

const (
	progressInterval = time.Second
	shutdownTimeout  = 5 * time.Second
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one load test and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if err := execute(args, stdout, stderr); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func execute(args []string, stdout, stderr io.Writer) error {
	loader := config.NewLoader()
	loader.SetOutput(stdout)
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.NewWithSink(cfg.LogLevel, cfg.LogFormat, zapSink(stderr))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	for _, warning := range cfg.Warnings() {
		logger.Warn(warning)
	}

	builder, err := newRequestBuilder(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = builder.Close() }()

	ctx, cancel := interruptContext(context.Background())
	defer cancel()

	var recorder *clientmetrics.Recorder
	if cfg.MetricsAddr != "" {
		recorder = clientmetrics.New()
		srv, err := recorder.Serve(cfg.MetricsAddr)
		if err != nil {
			return err
		}
		logger.Info("serving metrics", zap.String("addr", srv.Addr()))
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
			defer done()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics server shutdown", zap.Error(err))
			}
		}()
	}

	runID := output.NewRunID()
	store := metrics.NewStore()
	requester := newHTTPRequester(httpclient.NewClient(cfg.Timeout, cfg.Concurrency), builder, store)
	requester.recorder = recorder
	if cfg.LogErrors {
		requester.failures = logging.NewFailureLogger(logger)
	}

	r := runner.New(runner.Options{
		Concurrency:   cfg.Concurrency,
		TotalRequests: cfg.Total,
		Duration:      cfg.Duration,
		RatePerSecond: cfg.Rate,
		ArrivalModel:  toRunnerArrivalModel(cfg.Arrival.Model),
		LoadPatterns:  toRunnerLoadPatterns(cfg.Patterns),
		Requester:     requester,
		Store:         store,
	})

	provider, err := tracing.Init(ctx, cfg.Tracing, tracing.RunInfo{
		ID:          runID,
		Mode:        string(r.Mode()),
		Concurrency: cfg.Concurrency,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown", zap.Error(err))
		}
	}()
	requester.tracing = provider

	printer := output.NewPrinter(stdout, cfg.NoColor)
	if !cfg.JSONOutput {
		printer.PrintBanner(cfg.Total, cfg.Duration, cfg.Concurrency)
	}
	logger.Debug("run starting",
		zap.String("run_id", runID),
		zap.String("mode", string(r.Mode())),
		zap.String("method", builder.Method()),
		zap.String("target", builder.Target()),
	)

	var progress *output.ProgressReporter
	if cfg.Progress && !cfg.JSONOutput {
		progress = output.NewProgressReporter(store, progressInterval, stderr)
		progress.Start()
	}
	result, runErr := r.Run(ctx)
	if progress != nil {
		progress.Stop()
	}
	if runErr != nil {
		return runErr
	}
	if result.Interrupted {
		logger.Info("interrupted, reporting partial results", zap.Int64("launched", result.Launched))
	}

	stats, err := metrics.Compute(store)
	if err != nil && !errors.Is(err, metrics.ErrNoSamples) {
		return err
	}

	if cfg.JSONOutput {
		return output.PrintJSONReport(stdout, output.Report{
			RunID:       runID,
			Target:      builder.Target(),
			Method:      builder.Method(),
			Mode:        string(result.Mode),
			Concurrency: cfg.Concurrency,
			Interrupted: result.Interrupted,
			Stats:       stats,
		})
	}
	printer.PrintReport(stats, result.Interrupted)
	return nil
}

// interruptSignals end a run early with partial results.
var interruptSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// interruptContext is cancelled by the first interrupt signal. Signal
// handling is then released, so a second Ctrl-C kills the process instead
// of waiting for in-flight requests to drain.
func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, interruptSignals...)
	release := context.AfterFunc(ctx, stop)
	return ctx, func() {
		release()
		stop()
	}
}

// zapSink serializes log writes; failure logging happens from many requests
// at once.
func zapSink(w io.Writer) zapcore.WriteSyncer {
	if f, ok := w.(*os.File); ok {
		return zapcore.Lock(f)
	}
	return zapcore.Lock(zapcore.AddSync(w))
}

func newRequestBuilder(cfg *config.Config) (*httpclient.RequestBuilder, error) {
	if cfg.Auth.Enabled() {
		return httpclient.NewRequestBuilderWithAuth(cfg, auth.NewBasic(cfg.Auth.Username, cfg.Auth.Password))
	}
	return httpclient.NewRequestBuilder(cfg)
}

func toRunnerLoadPatterns(patterns []config.LoadPattern) []runner.LoadPattern {
	if len(patterns) == 0 {
		return nil
	}
	out := make([]runner.LoadPattern, 0, len(patterns))
	for _, p := range patterns {
		rp := runner.LoadPattern{
			Name:     p.Name,
			Type:     runner.LoadPatternType(p.Type),
			FromRPS:  p.FromRPS,
			ToRPS:    p.ToRPS,
			RPS:      p.RPS,
			Duration: p.Duration,
		}
		for _, step := range p.Steps {
			rp.Steps = append(rp.Steps, runner.LoadStep{RPS: step.RPS, Duration: step.Duration})
		}
		out = append(out, rp)
	}
	return out
}

func toRunnerArrivalModel(model config.ArrivalModel) runner.ArrivalModel {
	switch model {
	case config.ArrivalModelPoisson:
		return runner.ArrivalModelPoisson
	default:
		return runner.ArrivalModelUniform
	}
}
