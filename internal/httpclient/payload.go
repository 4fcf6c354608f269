package httpclient

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/torosent/pressure/internal/config"
)

// Payload is the body sent with every request of a run. Open is called once
// per request; a body file is streamed from disk each time.
type Payload interface {
	Open() (io.ReadCloser, error)
	Size() int64
}

// NewPayload selects the payload from -D (inline data) or --body-file. The
// two are exclusive, and only POST, PATCH and PUT may carry either.
func NewPayload(cfg *config.Config) (Payload, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	data := cfg.Body
	path := strings.TrimSpace(cfg.BodyFile)
	if data == "" && path == "" {
		return noPayload{}, nil
	}
	if data != "" && path != "" {
		return nil, errors.New("data and body file cannot both be provided")
	}

	method := strings.ToUpper(strings.TrimSpace(cfg.Method))
	if method == "" {
		method = http.MethodGet
	}
	if !config.AllowsBody(method) {
		return nil, fmt.Errorf("%s requests cannot carry a body", method)
	}

	if data != "" {
		return inlinePayload(data), nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("body file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("body file %q is not a regular file", path)
	}
	return filePayload{path: path, size: info.Size()}, nil
}

type inlinePayload string

func (p inlinePayload) Open() (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(string(p))), nil
}

func (p inlinePayload) Size() int64 { return int64(len(p)) }

type filePayload struct {
	path string
	size int64
}

func (p filePayload) Open() (io.ReadCloser, error) {
	return os.Open(p.path)
}

func (p filePayload) Size() int64 { return p.size }

type noPayload struct{}

func (noPayload) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(nil)), nil
}

func (noPayload) Size() int64 { return 0 }
