package main

import (
	"context"
	"io"
	"time"

	"github.com/torosent/pressure/internal/clientmetrics"
	"github.com/torosent/pressure/internal/httpclient"
	"github.com/torosent/pressure/internal/logging"
	"github.com/torosent/pressure/internal/metrics"
	"github.com/torosent/pressure/internal/tracing"
)

// maxDrainBytes bounds how much of a response body is read so the connection
// can be reused.
const maxDrainBytes = 1 << 20

// httpRequester implements runner.Requester for one HTTP target. Transport
// failures go to the store and never abort the run; only a request that
// cannot be built is returned as an error.
type httpRequester struct {
	client    httpclient.Doer
	builder   *httpclient.RequestBuilder
	store     *metrics.Store
	recorder  *clientmetrics.Recorder
	failures  *logging.FailureLogger
	tracing   *tracing.Provider
}

func newHTTPRequester(client httpclient.Doer, builder *httpclient.RequestBuilder, store *metrics.Store) *httpRequester {
	return &httpRequester{client: client, builder: builder, store: store}
}

// Do executes an HTTP request and records its outcome.
func (r *httpRequester) Do(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, span := r.tracing.StartRequest(ctx, r.builder.Method(), r.builder.Target())

	req, err := r.builder.Build(ctx)
	if err != nil {
		tracing.EndSpan(span, 0, err)
		return err
	}
	r.tracing.Inject(ctx, req.Header)

	done := r.recorder.Start()
	defer done()
	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		reason := metrics.ClassifyError(err)
		r.store.RecordFailure(err)
		r.recorder.ObserveFailure(reason)
		r.failures.LogFailure(req.Method, req.URL.String(), reason, err)
		tracing.EndSpan(span, 0, err)
		return nil
	}
	// Latency covers the whole exchange, body included.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
	_ = resp.Body.Close()
	latency := time.Since(start)

	r.store.RecordSuccess(resp.StatusCode, latency)
	r.recorder.ObserveResponse(resp.StatusCode, latency)
	tracing.EndSpan(span, resp.StatusCode, nil)
	return nil
}
