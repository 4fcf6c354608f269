package config_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/torosent/pressure/internal/config"
)

func newQuietLoader() (*config.Loader, *bytes.Buffer) {
	var out bytes.Buffer
	loader := config.NewLoader()
	loader.SetOutput(&out)
	return loader, &out
}

func TestParseFlagsDefaults(t *testing.T) {
	loader, _ := newQuietLoader()

	cfg, err := loader.Load([]string{"http://localhost:8080/"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TargetURL != "http://localhost:8080/" {
		t.Errorf("TargetURL = %q, want http://localhost:8080/", cfg.TargetURL)
	}
	if cfg.Method != "GET" {
		t.Errorf("Method = %q, want GET", cfg.Method)
	}
	if cfg.ContentType != "text/plain" {
		t.Errorf("ContentType = %q, want text/plain", cfg.ContentType)
	}
	if cfg.Concurrency != 1 {
		t.Errorf("Concurrency = %d, want 1", cfg.Concurrency)
	}
	if cfg.Total != 1 {
		t.Errorf("Total = %d, want 1", cfg.Total)
	}
	if cfg.Duration != 0 {
		t.Errorf("Duration = %s, want 0", cfg.Duration)
	}
	if cfg.Rate != 0 {
		t.Errorf("Rate = %d, want 0", cfg.Rate)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %s, want 30s", cfg.Timeout)
	}
	if cfg.JSONOutput {
		t.Errorf("JSONOutput = true, want false")
	}
	if len(cfg.Headers) != 0 {
		t.Errorf("Headers len = %d, want 0", len(cfg.Headers))
	}
	if cfg.Auth.Enabled() {
		t.Errorf("Auth enabled by default")
	}
	if cfg.Tracing.Enabled() {
		t.Errorf("Tracing enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestMissingTargetShowsUsage(t *testing.T) {
	loader, out := newQuietLoader()

	_, err := loader.Load([]string{"-c", "4"})
	if !errors.Is(err, config.ErrHelpRequested) {
		t.Fatalf("Load() error = %v, want ErrHelpRequested", err)
	}
	if !strings.Contains(out.String(), "Usage:") {
		t.Errorf("usage not printed: %q", out.String())
	}
}

func TestHelpFlag(t *testing.T) {
	loader, out := newQuietLoader()

	_, err := loader.Load([]string{"--help"})
	if !errors.Is(err, config.ErrHelpRequested) {
		t.Fatalf("Load() error = %v, want ErrHelpRequested", err)
	}
	for _, flag := range []string{"--method", "--concurrency", "--requests", "--duration", "--header"} {
		if !strings.Contains(out.String(), flag) {
			t.Errorf("help output missing %s", flag)
		}
	}
}

func TestShortFlags(t *testing.T) {
	loader, _ := newQuietLoader()

	cfg, err := loader.Load([]string{
		"-m", "post",
		"-D", "payload",
		"-c", "8",
		"-n", "250",
		"-a", "alice:s3cr:et",
		"-r", "50",
		"https://example.com/api",
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Method != "POST" {
		t.Errorf("Method = %q, want POST", cfg.Method)
	}
	if cfg.Body != "payload" {
		t.Errorf("Body = %q, want payload", cfg.Body)
	}
	if cfg.Concurrency != 8 {
		t.Errorf("Concurrency = %d, want 8", cfg.Concurrency)
	}
	if cfg.Total != 250 {
		t.Errorf("Total = %d, want 250", cfg.Total)
	}
	if cfg.Auth.Username != "alice" || cfg.Auth.Password != "s3cr:et" {
		t.Errorf("Auth = %+v, want alice / s3cr:et", cfg.Auth)
	}
	if cfg.Rate != 50 {
		t.Errorf("Rate = %d, want 50", cfg.Rate)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestDurationFlagForms(t *testing.T) {
	cases := []struct {
		arg  string
		want time.Duration
	}{
		{"30s", 30 * time.Second},
		{"1m30s", 90 * time.Second},
		{"10", 10 * time.Second},
		{"250ms", 250 * time.Millisecond},
	}
	for _, tc := range cases {
		t.Run(tc.arg, func(t *testing.T) {
			loader, _ := newQuietLoader()
			cfg, err := loader.Load([]string{"-d", tc.arg, "http://example.com"})
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.Duration != tc.want {
				t.Errorf("Duration = %s, want %s", cfg.Duration, tc.want)
			}
			if cfg.Total != 0 {
				t.Errorf("Total = %d, want 0 in duration mode", cfg.Total)
			}
		})
	}

	loader, _ := newQuietLoader()
	if _, err := loader.Load([]string{"-d", "soon", "http://example.com"}); err == nil {
		t.Fatal("Load() with invalid duration should fail")
	}
}

func TestRequestsAndDurationAreExclusive(t *testing.T) {
	loader, _ := newQuietLoader()
	cfg, err := loader.Load([]string{"-n", "10", "-d", "5s", "http://example.com"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	err = cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
		t.Fatalf("Validate() error = %v, want mutual exclusion", err)
	}
}

func TestHeaderFlag(t *testing.T) {
	loader, _ := newQuietLoader()
	cfg, err := loader.Load([]string{
		"--header", "x-request-id: abc",
		"--header", "Referer:http://other.example.com:8080/a,b",
		"http://example.com",
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Headers["X-Request-Id"] != "abc" {
		t.Errorf("Headers[X-Request-Id] = %q, want abc", cfg.Headers["X-Request-Id"])
	}
	if cfg.Headers["Referer"] != "http://other.example.com:8080/a,b" {
		t.Errorf("Headers[Referer] = %q", cfg.Headers["Referer"])
	}

	for _, bad := range []string{"no-colon", ":value"} {
		loader, _ := newQuietLoader()
		if _, err := loader.Load([]string{"--header", bad, "http://example.com"}); err == nil {
			t.Errorf("Load() with header %q should fail", bad)
		}
	}
}

func TestMalformedAuth(t *testing.T) {
	for _, bad := range []string{"alice", ":secret"} {
		loader, _ := newQuietLoader()
		if _, err := loader.Load([]string{"-a", bad, "http://example.com"}); err == nil {
			t.Errorf("Load() with auth %q should fail", bad)
		}
	}
}

func TestLoadConfigFileJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{
		"target": "https://api.example.com",
		"method": "PUT",
		"headers": {"Content-Type": "application/json"},
		"body": "{\"foo\":\"bar\"}",
		"concurrency": 10,
		"rate": 100,
		"duration": "2m",
		"timeout": "45s",
		"auth": "svc:pw",
		"json": true,
		"tracing": {"endpoint": "collector:4317", "sample_rate": 0.25}
	}`), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	loader, _ := newQuietLoader()
	cfg, err := loader.Load([]string{"--config", path, "--method", "PATCH", "--header", "Authorization: Bearer token"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TargetURL != "https://api.example.com" {
		t.Errorf("TargetURL = %q, want https://api.example.com", cfg.TargetURL)
	}
	if cfg.Method != "PATCH" {
		t.Errorf("Method = %q, want PATCH", cfg.Method)
	}
	if cfg.Headers["Content-Type"] != "application/json" {
		t.Errorf("Headers[Content-Type] = %q, want application/json", cfg.Headers["Content-Type"])
	}
	if cfg.Headers["Authorization"] != "Bearer token" {
		t.Errorf("Headers[Authorization] = %q, want Bearer token", cfg.Headers["Authorization"])
	}
	if cfg.Body != `{"foo":"bar"}` {
		t.Errorf("Body = %q, want {\"foo\":\"bar\"}", cfg.Body)
	}
	if cfg.Concurrency != 10 {
		t.Errorf("Concurrency = %d, want 10", cfg.Concurrency)
	}
	if cfg.Rate != 100 {
		t.Errorf("Rate = %d, want 100", cfg.Rate)
	}
	if cfg.Duration != 2*time.Minute {
		t.Errorf("Duration = %s, want 2m", cfg.Duration)
	}
	if cfg.Total != 0 {
		t.Errorf("Total = %d, want 0", cfg.Total)
	}
	if cfg.Timeout != 45*time.Second {
		t.Errorf("Timeout = %s, want 45s", cfg.Timeout)
	}
	if cfg.Auth.Username != "svc" || cfg.Auth.Password != "pw" {
		t.Errorf("Auth = %+v, want svc/pw", cfg.Auth)
	}
	if !cfg.JSONOutput {
		t.Errorf("JSONOutput = false, want true")
	}
	if cfg.Tracing.Endpoint != "collector:4317" || cfg.Tracing.SampleRate != 0.25 {
		t.Errorf("Tracing = %+v", cfg.Tracing)
	}
}

func TestLoadConfigFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := strings.Join([]string{
		"target: https://service.example.com",
		"method: POST",
		"content_type: application/json",
		"headers:",
		"  X-Env: staging",
		"auth:",
		"  username: bob",
		"  password: hunter2",
		"concurrency: 4",
		"rate: 20",
		"requests: 40",
		"timeout: 15s",
		"arrival_model: poisson",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	loader, _ := newQuietLoader()
	cfg, err := loader.Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TargetURL != "https://service.example.com" {
		t.Errorf("TargetURL = %q, want https://service.example.com", cfg.TargetURL)
	}
	if cfg.Method != "POST" {
		t.Errorf("Method = %q, want POST", cfg.Method)
	}
	if cfg.ContentType != "application/json" {
		t.Errorf("ContentType = %q, want application/json", cfg.ContentType)
	}
	if cfg.Headers["X-Env"] != "staging" {
		t.Errorf("Headers[X-Env] = %q, want staging", cfg.Headers["X-Env"])
	}
	if cfg.Auth.Username != "bob" || cfg.Auth.Password != "hunter2" {
		t.Errorf("Auth = %+v, want bob/hunter2", cfg.Auth)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want 4", cfg.Concurrency)
	}
	if cfg.Rate != 20 {
		t.Errorf("Rate = %d, want 20", cfg.Rate)
	}
	if cfg.Total != 40 {
		t.Errorf("Total = %d, want 40", cfg.Total)
	}
	if cfg.Timeout != 15*time.Second {
		t.Errorf("Timeout = %s, want 15s", cfg.Timeout)
	}
	if cfg.Arrival.Model != config.ArrivalModelPoisson {
		t.Errorf("Arrival.Model = %q, want poisson", cfg.Arrival.Model)
	}
}

func TestPositionalTargetOverridesConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("target: https://from-file.example.com\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	loader, _ := newQuietLoader()
	cfg, err := loader.Load([]string{"--config", path, "https://from-args.example.com"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TargetURL != "https://from-args.example.com" {
		t.Errorf("TargetURL = %q, want the positional URL", cfg.TargetURL)
	}
}

func TestEnvironmentOverridesFileButNotFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("concurrency: 2\nrate: 5\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("PRESSURE_CONCURRENCY", "12")
	t.Setenv("PRESSURE_RATE", "40")
	t.Setenv("PRESSURE_TARGET", "http://env.example.com")
	t.Setenv("PRESSURE_OTEL_ENDPOINT", "otel:4318")

	loader, _ := newQuietLoader()
	cfg, err := loader.Load([]string{"--config", path, "-r", "7"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TargetURL != "http://env.example.com" {
		t.Errorf("TargetURL = %q, want value from environment", cfg.TargetURL)
	}
	if cfg.Concurrency != 12 {
		t.Errorf("Concurrency = %d, want 12 from environment", cfg.Concurrency)
	}
	if cfg.Rate != 7 {
		t.Errorf("Rate = %d, want 7 from flags", cfg.Rate)
	}
	if cfg.Tracing.Endpoint != "otel:4318" {
		t.Errorf("Tracing.Endpoint = %q, want otel:4318", cfg.Tracing.Endpoint)
	}
}

func TestFlagDataOverridesConfigBodyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"target":"http://example.com","bodyFile":"payload.json"}`), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	loader, _ := newQuietLoader()
	cfg, err := loader.Load([]string{"--config", path, "--data", "inline"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Body != "inline" {
		t.Errorf("Body = %q, want inline", cfg.Body)
	}
	if cfg.BodyFile != "" {
		t.Errorf("BodyFile = %q, want empty", cfg.BodyFile)
	}
}

func TestFlagBodyFileOverridesConfigBody(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"target":"http://example.com","body":"inline-config"}`), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	loader, _ := newQuietLoader()
	cfg, err := loader.Load([]string{"--config", path, "--body-file", "payload.txt"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BodyFile != "payload.txt" {
		t.Errorf("BodyFile = %q, want payload.txt", cfg.BodyFile)
	}
	if cfg.Body != "" {
		t.Errorf("Body = %q, want empty", cfg.Body)
	}
}

func TestConfigValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		have config.Config
		want []string
	}{
		{
			name: "missing target",
			have: config.Config{Method: "GET", Concurrency: 1},
			want: []string{"target"},
		},
		{
			name: "negative values",
			have: config.Config{
				TargetURL:   "https://example.com",
				Method:      "GET",
				Concurrency: -1,
				Rate:        -5,
				Total:       -10,
				Timeout:     -1,
			},
			want: []string{"concurrency", "rate", "requests", "timeout"},
		},
		{
			name: "unsupported method",
			have: config.Config{TargetURL: "https://example.com", Method: "HEAD", Concurrency: 1},
			want: []string{"method"},
		},
		{
			name: "body with GET",
			have: config.Config{TargetURL: "https://example.com", Method: "GET", Concurrency: 1, Body: "x"},
			want: []string{"POST, PATCH or PUT"},
		},
		{
			name: "body file with DELETE",
			have: config.Config{TargetURL: "https://example.com", Method: "DELETE", Concurrency: 1, BodyFile: "p.json"},
			want: []string{"POST, PATCH or PUT"},
		},
		{
			name: "body conflict",
			have: config.Config{
				TargetURL:   "https://example.com",
				Method:      "POST",
				Concurrency: 1,
				Body:        "inline",
				BodyFile:    "payload.json",
			},
			want: []string{"body-file"},
		},
		{
			name: "bad arrival and logging",
			have: config.Config{
				TargetURL:   "https://example.com",
				Method:      "GET",
				Concurrency: 1,
				Arrival:     config.ArrivalConfig{Model: "bursty"},
				LogLevel:    "loud",
				LogFormat:   "xml",
			},
			want: []string{"arrival model", "log level", "log format"},
		},
		{
			name: "bad load patterns",
			have: config.Config{
				TargetURL:   "https://example.com",
				Method:      "GET",
				Concurrency: 1,
				Patterns: []config.LoadPattern{
					{Type: config.LoadPatternTypeRamp, FromRPS: -1, ToRPS: 10},
					{Type: config.LoadPatternTypeStep, Steps: []config.LoadStep{{RPS: 5}}},
					{Type: "wave", Duration: time.Second},
				},
			},
			want: []string{"load_patterns[0]: from_rps", "load_patterns[0]: ramp duration", "load_patterns[1]: steps[0]: duration", `load_patterns[2]: type "wave"`},
		},
		{
			name: "bad tracing",
			have: config.Config{
				TargetURL:   "https://example.com",
				Method:      "GET",
				Concurrency: 1,
				Tracing:     config.TracingConfig{Protocol: "thrift", SampleRate: 2},
			},
			want: []string{"protocol", "sample_rate"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.have.Validate()
			if err == nil {
				t.Fatalf("Validate() error = nil, want error")
			}
			var verr config.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error type = %T, want ValidationError", err)
			}
			for _, want := range tc.want {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("Validate() error %q missing %q", err.Error(), want)
				}
			}
		})
	}
}

func TestBodyAllowedForDataMethods(t *testing.T) {
	for _, method := range []string{"POST", "PATCH", "PUT"} {
		cfg := config.Config{TargetURL: "https://example.com", Method: method, Concurrency: 1, Body: "x"}
		if err := cfg.Validate(); err != nil {
			t.Errorf("%s with body: Validate() error = %v", method, err)
		}
	}
}

func TestTracingPropagationDefault(t *testing.T) {
	off := false
	cases := []struct {
		name string
		tc   config.TracingConfig
		want bool
	}{
		{"disabled", config.TracingConfig{}, false},
		{"enabled", config.TracingConfig{Endpoint: "localhost:4317"}, true},
		{"explicit off", config.TracingConfig{Endpoint: "localhost:4317", Propagate: &off}, false},
	}
	for _, c := range cases {
		if got := c.tc.ShouldPropagate(); got != c.want {
			t.Errorf("%s: ShouldPropagate() = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestWarnings(t *testing.T) {
	cfg := config.Config{Rate: 5000, Concurrency: 1000}
	if got := len(cfg.Warnings()); got != 2 {
		t.Errorf("Warnings() len = %d, want 2", got)
	}
	if got := len(config.Config{Rate: 10, Concurrency: 10}.Warnings()); got != 0 {
		t.Errorf("Warnings() len = %d, want 0", got)
	}
}

func TestDataAndBodyFileFlagsTogetherFailValidation(t *testing.T) {
	loader, _ := newQuietLoader()
	cfg, err := loader.Load([]string{"-m", "POST", "-D", "inline", "--body-file", "payload.json", "http://example.com"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Body != "inline" || cfg.BodyFile != "payload.json" {
		t.Fatalf("Body = %q BodyFile = %q, want both kept", cfg.Body, cfg.BodyFile)
	}
	err = cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "data and body-file are mutually exclusive") {
		t.Fatalf("Validate() error = %v, want mutual exclusion", err)
	}
}

func TestDurationFlagReplacesConfigRequests(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("target: http://example.com\nrequests: 100\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	loader, _ := newQuietLoader()
	cfg, err := loader.Load([]string{"--config", path, "-d", "5s"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Total != 0 || cfg.Duration != 5*time.Second {
		t.Fatalf("Total = %d Duration = %s, want 0 and 5s", cfg.Total, cfg.Duration)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestRequestsFlagReplacesConfigDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("target: http://example.com\nduration: 30s\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	loader, _ := newQuietLoader()
	cfg, err := loader.Load([]string{"--config", path, "-n", "25"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Total != 25 || cfg.Duration != 0 {
		t.Fatalf("Total = %d Duration = %s, want 25 and 0", cfg.Total, cfg.Duration)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestLoadPatternsFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := strings.Join([]string{
		"target: http://example.com",
		"concurrency: 8",
		"load_patterns:",
		"  - name: warmup",
		"    type: ramp",
		"    from_rps: 10",
		"    to_rps: 100",
		"    duration: 30s",
		"  - type: step",
		"    steps:",
		"      - rps: 100",
		"        duration: 10s",
		"      - rps: 200",
		"        duration: 20s",
		"  - type: SPIKE",
		"    rps: 500",
		"    duration: 5s",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	loader, _ := newQuietLoader()
	cfg, err := loader.Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(cfg.Patterns) != 3 {
		t.Fatalf("len(Patterns) = %d, want 3", len(cfg.Patterns))
	}
	ramp := cfg.Patterns[0]
	if ramp.Name != "warmup" || ramp.Type != config.LoadPatternTypeRamp || ramp.FromRPS != 10 || ramp.ToRPS != 100 || ramp.Duration != 30*time.Second {
		t.Errorf("ramp = %+v", ramp)
	}
	if steps := cfg.Patterns[1].Steps; len(steps) != 2 || steps[1].RPS != 200 || steps[1].Duration != 20*time.Second {
		t.Errorf("steps = %+v", steps)
	}
	if spike := cfg.Patterns[2]; spike.Type != config.LoadPatternTypeSpike || spike.RPS != 500 {
		t.Errorf("spike = %+v", spike)
	}
	// No requests or duration given: the patterns bound the run.
	if cfg.Total != 0 || cfg.Duration != 65*time.Second {
		t.Errorf("Total = %d Duration = %s, want 0 and 65s", cfg.Total, cfg.Duration)
	}
}

func TestLoadPatternsKeepExplicitRequests(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "target: http://example.com\nload_patterns:\n  - type: spike\n    rps: 50\n    duration: 10s\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	loader, _ := newQuietLoader()
	cfg, err := loader.Load([]string{"--config", path, "-n", "20"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Total != 20 || cfg.Duration != 0 {
		t.Errorf("Total = %d Duration = %s, want 20 and 0", cfg.Total, cfg.Duration)
	}
}
