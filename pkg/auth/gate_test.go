package auth

import (
	"context"
	"errors"
	"testing"
)

func TestPolicyGateDeniesByDefault(t *testing.T) {
	g := NewPolicyGate()

	err := g.Authorize(context.Background(), "ctl", AuthorizationDeviceControl)
	if !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("Authorize = %v, want ErrNotAuthorized", err)
	}
}

func TestPolicyGateGrant(t *testing.T) {
	g := NewPolicyGate()
	g.Grant("ctl", AuthorizationDeviceControl)

	if err := g.Authorize(context.Background(), "ctl", AuthorizationDeviceControl); err != nil {
		t.Errorf("Authorize after Grant = %v, want nil", err)
	}
	if err := g.Authorize(context.Background(), "ctl", AuthorizationDeviceInfo); err == nil {
		t.Error("Authorize for ungranted scope = nil, want error")
	}
	if err := g.Authorize(context.Background(), "other", AuthorizationDeviceControl); err == nil {
		t.Error("Authorize for unknown peer = nil, want error")
	}
}

func TestPeerContextRoundTrip(t *testing.T) {
	ctx := ContextWithPeer(context.Background(), "ctl")
	if got := PeerFromContext(ctx); got != "ctl" {
		t.Errorf("PeerFromContext = %q, want %q", got, "ctl")
	}
	if got := PeerFromContext(context.Background()); got != "" {
		t.Errorf("PeerFromContext on empty ctx = %q, want empty", got)
	}
}
