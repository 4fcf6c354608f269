// Package auth supplies request credentials.
package auth

import (
	"context"
	"net/http"
)

// Provider injects credentials into outgoing HTTP requests.
type Provider interface {
	// InjectHeader sets the Authorization header of the provided HTTP
	// request.
	InjectHeader(ctx context.Context, req *http.Request) error

	// Close releases any resources held by the provider.
	Close() error
}
