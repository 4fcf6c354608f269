// Package httpclient builds and sends the HTTP requests of a pressure run.
//
// The package handles:
//   - Request construction from configuration (method, headers, body)
//   - The default Content-Type, applied unless a header already sets one
//   - Body loading from inline data or a file, replayable per request
//   - Credential injection through an [AuthProvider]
//   - A client tuned for connection reuse at the run's concurrency
//
// # Request Building
//
// Use [NewRequestBuilder] to create a new request builder from configuration:
//
//	builder, err := httpclient.NewRequestBuilder(cfg)
//	if err != nil {
//		return err
//	}
//	req, err := builder.Build(ctx)
//
// For requests requiring authentication, use [NewRequestBuilderWithAuth]:
//
//	builder, err := httpclient.NewRequestBuilderWithAuth(cfg, auth.NewBasic(user, pass))
//
// # HTTP Client
//
// [NewClient] returns an *http.Client, which satisfies [Doer]:
//
//	client := httpclient.NewClient(30*time.Second, cfg.Concurrency)
//	resp, err := client.Do(req)
package httpclient
