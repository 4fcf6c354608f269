package config

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables read by the Loader.
const EnvPrefix = "PRESSURE"

// envKeys maps setting keys to the environment variable suffix that feeds them.
var envKeys = map[string]string{
	"target":              "TARGET",
	"method":              "METHOD",
	"content_type":        "CONTENT_TYPE",
	"body":                "DATA",
	"body_file":           "BODY_FILE",
	"auth":                "AUTH",
	"concurrency":         "CONCURRENCY",
	"requests":            "REQUESTS",
	"duration":            "DURATION",
	"rate":                "RATE",
	"arrival_model":       "ARRIVAL_MODEL",
	"timeout":             "TIMEOUT",
	"log_level":           "LOG_LEVEL",
	"log_format":          "LOG_FORMAT",
	"metrics_addr":        "METRICS_ADDR",
	"tracing.endpoint":    "OTEL_ENDPOINT",
	"tracing.protocol":    "OTEL_PROTOCOL",
	"tracing.sample_rate": "OTEL_SAMPLE_RATE",
	"tracing.insecure":    "OTEL_INSECURE",
}

// Loader handles loading configuration from files, environment variables and
// command-line arguments.
type Loader struct {
	out io.Writer
}

// ErrHelpRequested is returned when the user requests help via --help flag
// or omits the target URL.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader that prints usage to stdout.
func NewLoader() *Loader {
	return &Loader{out: os.Stdout}
}

// SetOutput redirects usage output.
func (l *Loader) SetOutput(w io.Writer) {
	l.out = w
}

// Load parses command-line arguments, the optional configuration file and
// PRESSURE_* environment variables to produce a Config. Precedence, lowest
// first: defaults, config file, environment, flags.
func (l *Loader) Load(args []string) (*Config, error) {
	out := l.out
	if out == nil {
		out = os.Stdout
	}
	cmd := newFlagCommand(out)
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	configPath := flagSet.Lookup("config").Value.String()
	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	for key, suffix := range envKeys {
		if err := cfgViper.BindEnv(key, EnvPrefix+"_"+suffix); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	settings := cfgViper.AllSettings()

	cfg := &Config{
		Method:      DefaultMethod,
		ContentType: DefaultContentType,
		Headers:     map[string]string{},
		Concurrency: 1,
		Timeout:     DefaultTimeout,
		LogLevel:    DefaultLogLevel,
		LogFormat:   DefaultLogFormat,
		ConfigFile:  configPath,
		Arrival:     ArrivalConfig{Model: ArrivalModelUniform},
		Tracing:     TracingConfig{Protocol: "grpc", SampleRate: 1.0},
	}

	if err := applyConfigSettings(cfg, settings); err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	cfg.Method = strings.ToUpper(strings.TrimSpace(cfg.Method))
	cfg.TargetURL = strings.TrimSpace(cfg.TargetURL)
	cfg.BodyFile = strings.TrimSpace(cfg.BodyFile)

	if cfg.Headers == nil {
		cfg.Headers = map[string]string{}
	}

	if cfg.TargetURL == "" {
		displayHelp(cmd)
		return nil, ErrHelpRequested
	}

	// A run bounded by neither count nor duration lasts as long as its load
	// patterns, or sends a single request when there are none.
	if cfg.Total == 0 && cfg.Duration == 0 {
		for _, p := range cfg.Patterns {
			cfg.Duration += p.Length()
		}
		if cfg.Duration <= 0 {
			cfg.Duration = 0
			cfg.Total = 1
		}
	}

	return cfg, nil
}

// applyConfigSettings applies settings from a config file or the environment
// to the Config struct.
func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	if raw, ok := lookupSetting(settings, "target", "url"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("target: %w", err)
		}
		cfg.TargetURL = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "method"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("method: %w", err)
		}
		if val != "" {
			cfg.Method = val
		}
	}

	if raw, ok := lookupSetting(settings, "contenttype", "content_type", "content-type"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("contentType: %w", err)
		}
		cfg.ContentType = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "headers"); ok {
		hdrs, err := asStringMap(raw)
		if err != nil {
			return fmt.Errorf("headers: %w", err)
		}
		if cfg.Headers == nil {
			cfg.Headers = map[string]string{}
		}
		for k, v := range hdrs {
			cfg.Headers[http.CanonicalHeaderKey(k)] = v
		}
	}

	if raw, ok := lookupSetting(settings, "body", "data"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("body: %w", err)
		}
		cfg.Body = val
	}

	if raw, ok := lookupSetting(settings, "bodyfile", "body_file", "body-file"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("bodyFile: %w", err)
		}
		cfg.BodyFile = val
	}

	if raw, ok := lookupSetting(settings, "auth"); ok {
		auth, err := parseAuth(raw)
		if err != nil {
			return fmt.Errorf("auth: %w", err)
		}
		cfg.Auth = auth
	}

	if raw, ok := lookupSetting(settings, "concurrency"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("concurrency: %w", err)
		}
		cfg.Concurrency = val
	}

	if raw, ok := lookupSetting(settings, "requests", "total"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("requests: %w", err)
		}
		cfg.Total = val
	}

	if raw, ok := lookupSetting(settings, "duration"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("duration: %w", err)
		}
		cfg.Duration = dur
	}

	if raw, ok := lookupSetting(settings, "rate"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("rate: %w", err)
		}
		cfg.Rate = val
	}

	if raw, ok := lookupSetting(settings, "arrival"); ok {
		arrival, err := parseArrival(raw)
		if err != nil {
			return fmt.Errorf("arrival: %w", err)
		}
		if arrival.Model != "" {
			cfg.Arrival = arrival
		}
	} else if raw, ok := lookupSetting(settings, "arrivalmodel", "arrival_model", "arrival-model"); ok {
		arrival, err := parseArrival(raw)
		if err != nil {
			return fmt.Errorf("arrivalModel: %w", err)
		}
		if arrival.Model != "" {
			cfg.Arrival = arrival
		}
	}

	if raw, ok := lookupSetting(settings, "loadpatterns", "load_patterns", "load-patterns"); ok {
		patterns, err := parseLoadPatterns(raw)
		if err != nil {
			return fmt.Errorf("load_patterns: %w", err)
		}
		cfg.Patterns = patterns
	}

	if raw, ok := lookupSetting(settings, "timeout"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = dur
	}

	if raw, ok := lookupSetting(settings, "json", "jsonoutput", "json_output"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("json: %w", err)
		}
		cfg.JSONOutput = val
	}

	if raw, ok := lookupSetting(settings, "nocolor", "no_color", "no-color"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("noColor: %w", err)
		}
		cfg.NoColor = val
	}

	if raw, ok := lookupSetting(settings, "progress"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("progress: %w", err)
		}
		cfg.Progress = val
	}

	if raw, ok := lookupSetting(settings, "logerrors", "log_errors", "log-errors"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("logErrors: %w", err)
		}
		cfg.LogErrors = val
	}

	if raw, ok := lookupSetting(settings, "loglevel", "log_level", "log-level"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("logLevel: %w", err)
		}
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(val))
	}

	if raw, ok := lookupSetting(settings, "logformat", "log_format", "log-format"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("logFormat: %w", err)
		}
		cfg.LogFormat = strings.ToLower(strings.TrimSpace(val))
	}

	if raw, ok := lookupSetting(settings, "metricsaddr", "metrics_addr", "metrics-addr"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("metricsAddr: %w", err)
		}
		cfg.MetricsAddr = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "tracing"); ok {
		if err := parseTracing(&cfg.Tracing, raw); err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
	}

	return nil
}

func parseArrival(value interface{}) (ArrivalConfig, error) {
	if value == nil {
		return ArrivalConfig{}, nil
	}
	switch v := value.(type) {
	case string:
		model := strings.ToLower(strings.TrimSpace(v))
		if model == "" {
			return ArrivalConfig{}, nil
		}
		return ArrivalConfig{Model: ArrivalModel(model)}, nil
	default:
		entry, err := toStringKeyMap(value)
		if err != nil {
			return ArrivalConfig{}, err
		}
		if raw, ok := lookupSetting(entry, "model"); ok {
			val, err := asString(raw)
			if err != nil {
				return ArrivalConfig{}, fmt.Errorf("model: %w", err)
			}
			return ArrivalConfig{Model: ArrivalModel(strings.ToLower(strings.TrimSpace(val)))}, nil
		}
		return ArrivalConfig{}, fmt.Errorf("model field is required")
	}
}

func parseLoadPatterns(value interface{}) ([]LoadPattern, error) {
	items, err := toList(value)
	if err != nil {
		return nil, err
	}
	patterns := make([]LoadPattern, 0, len(items))
	for i, item := range items {
		entry, err := toStringKeyMap(item)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		var p LoadPattern
		if err := decodePattern(&p, entry); err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

func decodePattern(p *LoadPattern, entry map[string]interface{}) error {
	if raw, ok := lookupSetting(entry, "name"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("name: %w", err)
		}
		p.Name = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(entry, "type"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("type: %w", err)
		}
		p.Type = LoadPatternType(strings.ToLower(strings.TrimSpace(val)))
	}
	ints := []struct {
		keys []string
		dst  *int
	}{
		{[]string{"from_rps", "fromrps"}, &p.FromRPS},
		{[]string{"to_rps", "torps"}, &p.ToRPS},
		{[]string{"rps"}, &p.RPS},
	}
	for _, f := range ints {
		raw, ok := lookupSetting(entry, f.keys...)
		if !ok {
			continue
		}
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", f.keys[0], err)
		}
		*f.dst = val
	}
	if raw, ok := lookupSetting(entry, "duration"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("duration: %w", err)
		}
		p.Duration = dur
	}
	if raw, ok := lookupSetting(entry, "steps"); ok {
		items, err := toList(raw)
		if err != nil {
			return fmt.Errorf("steps: %w", err)
		}
		for j, item := range items {
			step, err := toStringKeyMap(item)
			if err != nil {
				return fmt.Errorf("steps[%d]: %w", j, err)
			}
			var s LoadStep
			if raw, ok := lookupSetting(step, "rps"); ok {
				if s.RPS, err = asInt(raw); err != nil {
					return fmt.Errorf("steps[%d].rps: %w", j, err)
				}
			}
			if raw, ok := lookupSetting(step, "duration"); ok {
				if s.Duration, err = asDuration(raw); err != nil {
					return fmt.Errorf("steps[%d].duration: %w", j, err)
				}
			}
			p.Steps = append(p.Steps, s)
		}
	}
	return nil
}

// parseAuth accepts either a "user:password" string or a map with username
// and password keys.
func parseAuth(value interface{}) (AuthConfig, error) {
	if value == nil {
		return AuthConfig{}, nil
	}
	if s, ok := value.(string); ok {
		if strings.TrimSpace(s) == "" {
			return AuthConfig{}, nil
		}
		return parseBasicAuth(s)
	}
	entry, err := toStringKeyMap(value)
	if err != nil {
		return AuthConfig{}, err
	}
	var auth AuthConfig
	if raw, ok := lookupSetting(entry, "username", "user"); ok {
		val, err := asString(raw)
		if err != nil {
			return AuthConfig{}, fmt.Errorf("username: %w", err)
		}
		auth.Username = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(entry, "password"); ok {
		val, err := asString(raw)
		if err != nil {
			return AuthConfig{}, fmt.Errorf("password: %w", err)
		}
		auth.Password = val
	}
	return auth, nil
}

func parseTracing(tc *TracingConfig, value interface{}) error {
	if value == nil {
		return nil
	}
	entry, err := toStringKeyMap(value)
	if err != nil {
		return err
	}
	if raw, ok := lookupSetting(entry, "endpoint"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("endpoint: %w", err)
		}
		tc.Endpoint = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(entry, "protocol"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("protocol: %w", err)
		}
		tc.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if raw, ok := lookupSetting(entry, "servicename", "service_name", "service-name"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("service_name: %w", err)
		}
		tc.ServiceName = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(entry, "samplerate", "sample_rate", "sample-rate"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return fmt.Errorf("sample_rate: %w", err)
		}
		tc.SampleRate = val
	}
	if raw, ok := lookupSetting(entry, "insecure"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("insecure: %w", err)
		}
		tc.Insecure = val
	}
	if raw, ok := lookupSetting(entry, "propagate"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("propagate: %w", err)
		}
		tc.Propagate = &val
	}
	return nil
}
