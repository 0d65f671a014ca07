package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNotAuthorized indicates the caller lacks the required scope.
var ErrNotAuthorized = errors.New("not authorized")

// Authorization is a named scope a caller may hold.
type Authorization string

const (
	// AuthorizationDeviceControl covers operations that change how the
	// agent drives a device (e.g. reconfiguring capability polling).
	AuthorizationDeviceControl Authorization = "device-control"

	// AuthorizationDeviceInfo covers read-only device introspection.
	AuthorizationDeviceInfo Authorization = "device-info"
)

// Gate validates that an inbound invocation is permitted before any state
// is mutated. Implementations must be safe for concurrent use.
type Gate interface {
	// Authorize checks whether the peer holds the given scope.
	// A nil return permits the operation; any error denies it and is
	// surfaced to the caller unchanged.
	Authorize(ctx context.Context, peer string, scope Authorization) error
}

// AllowAll is a Gate that permits every request. Use for local
// development and tests.
type AllowAll struct{}

// Authorize always permits.
func (AllowAll) Authorize(context.Context, string, Authorization) error { return nil }

// Compile-time interface satisfaction check.
var _ Gate = AllowAll{}

// PolicyGate authorizes peers against a static scope allow-list.
type PolicyGate struct {
	mu     sync.RWMutex
	scopes map[string]map[Authorization]bool
}

// NewPolicyGate creates an empty policy gate. A gate with no grants
// denies everything.
func NewPolicyGate() *PolicyGate {
	return &PolicyGate{scopes: make(map[string]map[Authorization]bool)}
}

// Grant gives a peer the listed scopes.
func (g *PolicyGate) Grant(peer string, scopes ...Authorization) {
	g.mu.Lock()
	defer g.mu.Unlock()

	set := g.scopes[peer]
	if set == nil {
		set = make(map[Authorization]bool)
		g.scopes[peer] = set
	}
	for _, s := range scopes {
		set[s] = true
	}
}

// Authorize implements Gate.
func (g *PolicyGate) Authorize(_ context.Context, peer string, scope Authorization) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.scopes[peer][scope] {
		return nil
	}
	return fmt.Errorf("%w: peer %q lacks scope %q", ErrNotAuthorized, peer, scope)
}

// Compile-time interface satisfaction check.
var _ Gate = (*PolicyGate)(nil)

type peerKey struct{}

// ContextWithPeer returns a new context carrying the caller identity.
func ContextWithPeer(ctx context.Context, peer string) context.Context {
	return context.WithValue(ctx, peerKey{}, peer)
}

// PeerFromContext extracts the caller identity from the context.
// Returns empty string if not set.
func PeerFromContext(ctx context.Context) string {
	if v := ctx.Value(peerKey{}); v != nil {
		if peer, ok := v.(string); ok {
			return peer
		}
	}
	return ""
}
