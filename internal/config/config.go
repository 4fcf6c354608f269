package config

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultMethod      = http.MethodGet
	DefaultContentType = "text/plain"
	DefaultTimeout     = 30 * time.Second
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "console"
)

// Methods lists the HTTP methods a run may use.
var Methods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodDelete,
	http.MethodPatch,
	http.MethodPut,
}

type Config struct {
	TargetURL   string            `mapstructure:"target"`
	Method      string            `mapstructure:"method"`
	ContentType string            `mapstructure:"content_type"`
	Headers     map[string]string `mapstructure:"headers"`
	Body        string            `mapstructure:"body"`
	BodyFile    string            `mapstructure:"body_file"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Concurrency int               `mapstructure:"concurrency"`
	Total       int               `mapstructure:"requests"`
	Duration    time.Duration     `mapstructure:"duration"`
	Rate        int               `mapstructure:"rate"`
	Arrival     ArrivalConfig     `mapstructure:"arrival"`
	Patterns    []LoadPattern     `mapstructure:"load_patterns"`
	Timeout     time.Duration     `mapstructure:"timeout"`
	JSONOutput  bool              `mapstructure:"json"`
	NoColor     bool              `mapstructure:"no_color"`
	Progress    bool              `mapstructure:"progress"`
	LogErrors   bool              `mapstructure:"log_errors"`
	LogLevel    string            `mapstructure:"log_level"`
	LogFormat   string            `mapstructure:"log_format"`
	MetricsAddr string            `mapstructure:"metrics_addr"`
	Tracing     TracingConfig     `mapstructure:"tracing"`
	ConfigFile  string            `mapstructure:"-"`
}

type ArrivalModel string

const (
	ArrivalModelUniform ArrivalModel = "uniform"
	ArrivalModelPoisson ArrivalModel = "poisson"
)

type LoadPatternType string

const (
	LoadPatternTypeRamp  LoadPatternType = "ramp"
	LoadPatternTypeStep  LoadPatternType = "step"
	LoadPatternTypeSpike LoadPatternType = "spike"
)

// LoadPattern is one stage of a rate schedule. Stages run in order and,
// when neither requests nor duration is set, their total length bounds the
// run.
type LoadPattern struct {
	Name     string          `mapstructure:"name"`
	Type     LoadPatternType `mapstructure:"type"`
	FromRPS  int             `mapstructure:"from_rps"`
	ToRPS    int             `mapstructure:"to_rps"`
	RPS      int             `mapstructure:"rps"`
	Duration time.Duration   `mapstructure:"duration"`
	Steps    []LoadStep      `mapstructure:"steps"`
}

type LoadStep struct {
	RPS      int           `mapstructure:"rps"`
	Duration time.Duration `mapstructure:"duration"`
}

// Length is how long the pattern lasts.
func (p LoadPattern) Length() time.Duration {
	if p.Type != LoadPatternTypeStep {
		return p.Duration
	}
	var total time.Duration
	for _, step := range p.Steps {
		total += step.Duration
	}
	return total
}

type ArrivalConfig struct {
	Model ArrivalModel `mapstructure:"model"`
}

// AuthConfig holds HTTP basic credentials.
type AuthConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

func (a AuthConfig) Enabled() bool {
	return a.Username != ""
}

// TracingConfig configures OpenTelemetry export of per-request spans.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http"
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Insecure    bool    `mapstructure:"insecure"`
	Propagate   *bool   `mapstructure:"propagate"`
}

// Enabled reports whether spans should be exported.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != ""
}

// ShouldPropagate reports whether W3C trace headers are injected into
// outgoing requests. It defaults to Enabled unless set explicitly.
func (t TracingConfig) ShouldPropagate() bool {
	if t.Propagate != nil {
		return *t.Propagate
	}
	return t.Enabled()
}

// AllowsBody reports whether method may carry a request body.
func AllowsBody(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPatch, http.MethodPut:
		return true
	}
	return false
}

// HasBody reports whether an inline body or body file is configured.
func (c Config) HasBody() bool {
	return c.Body != "" || strings.TrimSpace(c.BodyFile) != ""
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string

	if strings.TrimSpace(c.TargetURL) == "" {
		issues = append(issues, "target is required (use --help for usage information)")
	}

	if !validMethod(c.Method) {
		issues = append(issues, fmt.Sprintf("method %q is not supported (use one of %s)", c.Method, strings.Join(Methods, ", ")))
	}
	if c.HasBody() && !AllowsBody(c.Method) {
		issues = append(issues, fmt.Sprintf("a request body can only be sent with POST, PATCH or PUT, not %s", strings.ToUpper(c.Method)))
	}

	if c.Concurrency < 1 {
		issues = append(issues, "concurrency must be >= 1")
	}
	if c.Rate < 0 {
		issues = append(issues, "rate must be >= 0")
	}
	if c.Total < 0 {
		issues = append(issues, "requests must be >= 0")
	}
	if c.Duration < 0 {
		issues = append(issues, "duration must be >= 0")
	}
	if c.Total > 0 && c.Duration > 0 {
		issues = append(issues, "requests and duration are mutually exclusive")
	}
	if c.Timeout < 0 {
		issues = append(issues, "timeout must be >= 0")
	}
	if c.Body != "" && strings.TrimSpace(c.BodyFile) != "" {
		issues = append(issues, "data and body-file are mutually exclusive")
	}
	if c.Auth.Password != "" && c.Auth.Username == "" {
		issues = append(issues, "auth: username is required")
	}
	for key := range c.Headers {
		if strings.TrimSpace(key) == "" {
			issues = append(issues, "header key cannot be empty")
			break
		}
	}

	issues = append(issues, validateArrivalConfig(c.Arrival)...)
	for i, p := range c.Patterns {
		for _, issue := range p.problems() {
			issues = append(issues, fmt.Sprintf("load_patterns[%d]: %s", i, issue))
		}
	}
	issues = append(issues, validateLogging(c.LogLevel, c.LogFormat)...)
	issues = append(issues, validateTracing(c.Tracing)...)

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}

	return nil
}

// Warnings returns advisory messages about aggressive settings. They never
// fail validation.
func (c Config) Warnings() []string {
	var warnings []string
	if c.Rate > 1000 {
		warnings = append(warnings, fmt.Sprintf("High rate limit configured (%d RPS). Ensure you have authorization to test the target system.", c.Rate))
	}
	if c.Concurrency > 500 {
		warnings = append(warnings, fmt.Sprintf("High concurrency configured (%d workers). Ensure you have authorization to test the target system.", c.Concurrency))
	}
	if c.Tracing.Enabled() && c.Tracing.Insecure {
		warnings = append(warnings, "OTLP exporter TLS is disabled.")
	}
	return warnings
}

func validMethod(method string) bool {
	for _, m := range Methods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

func validateArrivalConfig(arr ArrivalConfig) []string {
	model := arr.Model
	if model == "" {
		model = ArrivalModelUniform
	}
	switch model {
	case ArrivalModelUniform, ArrivalModelPoisson:
		return nil
	default:
		return []string{fmt.Sprintf("arrival model %q is not supported", model)}
	}
}

func (p LoadPattern) problems() []string {
	var out []string
	switch p.Type {
	case LoadPatternTypeRamp:
		if p.FromRPS < 0 || p.ToRPS < 0 {
			out = append(out, "from_rps and to_rps must be >= 0")
		}
		if p.Duration <= 0 {
			out = append(out, "ramp duration must be > 0")
		}
	case LoadPatternTypeSpike:
		if p.RPS <= 0 {
			out = append(out, "spike rps must be > 0")
		}
		if p.Duration <= 0 {
			out = append(out, "spike duration must be > 0")
		}
	case LoadPatternTypeStep:
		if len(p.Steps) == 0 {
			out = append(out, "step pattern needs at least one step")
		}
		for j, step := range p.Steps {
			if step.RPS < 0 {
				out = append(out, fmt.Sprintf("steps[%d]: rps must be >= 0", j))
			}
			if step.Duration <= 0 {
				out = append(out, fmt.Sprintf("steps[%d]: duration must be > 0", j))
			}
		}
	case "":
		out = append(out, "type is required")
	default:
		out = append(out, fmt.Sprintf("type %q is not supported (use ramp, step or spike)", p.Type))
	}
	return out
}

func validateLogging(level, format string) []string {
	var issues []string
	switch strings.ToLower(level) {
	case "", "debug", "info", "warn", "error":
	default:
		issues = append(issues, fmt.Sprintf("log level %q is not supported", level))
	}
	switch strings.ToLower(format) {
	case "", "console", "json":
	default:
		issues = append(issues, fmt.Sprintf("log format %q is not supported (use console or json)", format))
	}
	return issues
}

func validateTracing(t TracingConfig) []string {
	var issues []string
	switch strings.ToLower(t.Protocol) {
	case "", "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("tracing: protocol must be 'grpc' or 'http', got %q", t.Protocol))
	}
	if t.SampleRate < 0 || t.SampleRate > 1 {
		issues = append(issues, fmt.Sprintf("tracing: sample_rate must be between 0.0 and 1.0, got %g", t.SampleRate))
	}
	return issues
}
