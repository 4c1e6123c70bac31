package gateway

import (
	"context"
	"fmt"
	"net"
)

// Authorizer controls which remote addresses may query the gateway.
type Authorizer interface {
	Allow(ctx context.Context, remoteAddr string) error
}

type allowAll struct{}

func (allowAll) Allow(ctx context.Context, remoteAddr string) error {
	_ = ctx
	_ = remoteAddr
	return nil
}

// AllowlistAuthorizer allows only specific remote addresses. An empty
// allowlist permits everything.
type AllowlistAuthorizer struct {
	Allowed []string
}

func (a AllowlistAuthorizer) Allow(ctx context.Context, remoteAddr string) error {
	_ = ctx
	if len(a.Allowed) == 0 {
		return nil
	}
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	for _, addr := range a.Allowed {
		if addr == remoteAddr || addr == host {
			return nil
		}
	}
	return fmt.Errorf("remote address not allowed: %s", remoteAddr)
}
