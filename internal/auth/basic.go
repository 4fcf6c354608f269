package auth

import (
	"context"
	"net/http"
)

// BasicProvider injects HTTP basic credentials into every request.
type BasicProvider struct {
	username string
	password string
}

var _ Provider = (*BasicProvider)(nil)

// NewBasic creates a provider for the given user and password.
func NewBasic(username, password string) *BasicProvider {
	return &BasicProvider{
		username: username,
		password: password,
	}
}

// InjectHeader sets the Authorization header on req.
func (p *BasicProvider) InjectHeader(ctx context.Context, req *http.Request) error {
	req.SetBasicAuth(p.username, p.password)
	return nil
}

// Close is a no-op for basic credentials.
func (p *BasicProvider) Close() error {
	return nil
}
