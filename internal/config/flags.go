package config

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pressure [flags] <url>",
		Short:         "HTTP load generator",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(out)
	configureFlags(cmd.Flags())
	// Usage is printed by displayHelp.
	cmd.Flags().Usage = func() {}
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Request flags
	flags.StringP("method", "m", DefaultMethod, "HTTP method: GET, POST, DELETE, PATCH or PUT")
	flags.String("content-type", DefaultContentType, "Content-Type header, unless one is set with --header")
	flags.StringP("data", "D", "", "Raw request body (POST, PATCH and PUT only)")
	flags.String("body-file", "", "Path to file containing the request body")
	flags.StringP("auth", "a", "", "Basic authentication credentials in user:password form")
	flags.StringArray("header", nil, "Additional request header in key:value form (repeatable)")
	flags.Duration("timeout", DefaultTimeout, "Per-request timeout")

	// Load control flags
	flags.IntP("concurrency", "c", 1, "Maximum number of requests in flight")
	flags.IntP("requests", "n", 0, "Number of requests to send (default 1 when --duration is not set)")
	flags.StringP("duration", "d", "", "How long to keep launching requests (e.g. 30s, 1m, or seconds)")
	flags.IntP("rate", "r", 0, "Requests per second limit (0 means unlimited)")
	flags.String("arrival-model", string(ArrivalModelUniform), "Arrival model to use when pacing requests (uniform or poisson)")

	// Output flags
	flags.Bool("json", false, "Emit the report as JSON")
	flags.Bool("no-color", false, "Disable colored output")
	flags.Bool("progress", false, "Print live progress to stderr")
	flags.Bool("log-errors", false, "Log each failed request to stderr")
	flags.String("log-level", DefaultLogLevel, "Log level: debug, info, warn or error")
	flags.String("log-format", DefaultLogFormat, "Log format: console or json")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address while the run is active (e.g. :9090)")
	flags.String("config", "", "Path to configuration file (JSON, YAML or TOML)")

	// Tracing flags
	flags.String("otel-endpoint", "", "OTLP collector endpoint; enables tracing")
	flags.String("otel-protocol", "grpc", "OTLP protocol: grpc or http")
	flags.String("otel-service-name", "", "Service name reported with spans (default pressure)")
	flags.Float64("otel-sample-rate", 1.0, "Fraction of requests to trace (0.0 to 1.0)")
	flags.Bool("otel-insecure", false, "Disable TLS for the OTLP exporter")
	flags.Bool("otel-propagate", true, "Inject W3C trace context headers into requests")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config, overriding
// values from the config file and environment.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if args := fs.Args(); len(args) > 0 {
		if len(args) > 1 {
			return fmt.Errorf("expected a single target URL, got %d arguments", len(args))
		}
		cfg.TargetURL = strings.TrimSpace(args[0])
	}
	if fs.Changed("method") {
		val, err := fs.GetString("method")
		if err != nil {
			return err
		}
		cfg.Method = val
	}
	if fs.Changed("content-type") {
		val, err := fs.GetString("content-type")
		if err != nil {
			return err
		}
		cfg.ContentType = strings.TrimSpace(val)
	}
	if fs.Changed("data") {
		val, err := fs.GetString("data")
		if err != nil {
			return err
		}
		cfg.Body = val
		// Both flags together are left for Validate to reject.
		if !fs.Changed("body-file") {
			cfg.BodyFile = ""
		}
	}
	if fs.Changed("body-file") {
		val, err := fs.GetString("body-file")
		if err != nil {
			return err
		}
		cfg.BodyFile = val
		if !fs.Changed("data") {
			cfg.Body = ""
		}
	}
	if fs.Changed("auth") {
		val, err := fs.GetString("auth")
		if err != nil {
			return err
		}
		auth, err := parseBasicAuth(val)
		if err != nil {
			return err
		}
		cfg.Auth = auth
	}
	if fs.Changed("timeout") {
		val, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = val
	}
	if fs.Changed("concurrency") {
		val, err := fs.GetInt("concurrency")
		if err != nil {
			return err
		}
		cfg.Concurrency = val
	}
	if fs.Changed("requests") {
		val, err := fs.GetInt("requests")
		if err != nil {
			return err
		}
		cfg.Total = val
		if !fs.Changed("duration") {
			cfg.Duration = 0
		}
	}
	if fs.Changed("duration") {
		val, err := fs.GetString("duration")
		if err != nil {
			return err
		}
		dur, err := asDuration(val)
		if err != nil {
			return fmt.Errorf("duration: %w", err)
		}
		cfg.Duration = dur
		if !fs.Changed("requests") {
			cfg.Total = 0
		}
	}
	if fs.Changed("rate") {
		val, err := fs.GetInt("rate")
		if err != nil {
			return err
		}
		cfg.Rate = val
	}
	if fs.Changed("arrival-model") {
		val, err := fs.GetString("arrival-model")
		if err != nil {
			return err
		}
		cfg.Arrival.Model = ArrivalModel(strings.ToLower(strings.TrimSpace(val)))
	}
	if fs.Changed("json") {
		val, err := fs.GetBool("json")
		if err != nil {
			return err
		}
		cfg.JSONOutput = val
	}
	if fs.Changed("no-color") {
		val, err := fs.GetBool("no-color")
		if err != nil {
			return err
		}
		cfg.NoColor = val
	}
	if fs.Changed("progress") {
		val, err := fs.GetBool("progress")
		if err != nil {
			return err
		}
		cfg.Progress = val
	}
	if fs.Changed("log-errors") {
		val, err := fs.GetBool("log-errors")
		if err != nil {
			return err
		}
		cfg.LogErrors = val
	}
	if fs.Changed("log-level") {
		val, err := fs.GetString("log-level")
		if err != nil {
			return err
		}
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("log-format") {
		val, err := fs.GetString("log-format")
		if err != nil {
			return err
		}
		cfg.LogFormat = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("metrics-addr") {
		val, err := fs.GetString("metrics-addr")
		if err != nil {
			return err
		}
		cfg.MetricsAddr = strings.TrimSpace(val)
	}

	vals, err := fs.GetStringArray("header")
	if err != nil {
		return err
	}
	if len(vals) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = map[string]string{}
		}
		for _, entry := range vals {
			key, value, err := parseHeader(entry)
			if err != nil {
				return err
			}
			cfg.Headers[key] = value
		}
	}

	return applyTracingFlags(&cfg.Tracing, fs)
}

func applyTracingFlags(tc *TracingConfig, fs *pflag.FlagSet) error {
	if fs.Changed("otel-endpoint") {
		val, err := fs.GetString("otel-endpoint")
		if err != nil {
			return err
		}
		tc.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("otel-protocol") {
		val, err := fs.GetString("otel-protocol")
		if err != nil {
			return err
		}
		tc.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("otel-service-name") {
		val, err := fs.GetString("otel-service-name")
		if err != nil {
			return err
		}
		tc.ServiceName = strings.TrimSpace(val)
	}
	if fs.Changed("otel-sample-rate") {
		val, err := fs.GetFloat64("otel-sample-rate")
		if err != nil {
			return err
		}
		tc.SampleRate = val
	}
	if fs.Changed("otel-insecure") {
		val, err := fs.GetBool("otel-insecure")
		if err != nil {
			return err
		}
		tc.Insecure = val
	}
	if fs.Changed("otel-propagate") {
		val, err := fs.GetBool("otel-propagate")
		if err != nil {
			return err
		}
		tc.Propagate = &val
	}
	return nil
}

// parseHeader splits a "key:value" header on its first colon, so values may
// themselves contain colons.
func parseHeader(entry string) (string, string, error) {
	parts := strings.SplitN(entry, ":", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("header must be in key:value format: %s", entry)
	}
	key := http.CanonicalHeaderKey(strings.TrimSpace(parts[0]))
	if key == "" {
		return "", "", fmt.Errorf("header key cannot be empty: %s", entry)
	}
	return key, strings.TrimSpace(parts[1]), nil
}

func parseBasicAuth(value string) (AuthConfig, error) {
	user, pass, ok := strings.Cut(value, ":")
	if !ok || user == "" {
		return AuthConfig{}, fmt.Errorf("auth must be in user:password format")
	}
	return AuthConfig{Username: user, Password: pass}, nil
}
