package ctxutil

import (
	"context"
	"testing"
)

func TestActor_RoundTrip(t *testing.T) {
	ctx := WithActor(context.Background(), "dana")
	if got := ActorFromContext(ctx); got != "dana" {
		t.Errorf("expected 'dana', got %q", got)
	}
}

func TestActor_Unset(t *testing.T) {
	if got := ActorFromContext(context.Background()); got != "" {
		t.Errorf("expected empty actor, got %q", got)
	}
}

func TestActor_EmptyLeavesContext(t *testing.T) {
	parent := WithActor(context.Background(), "dana")
	if got := ActorFromContext(WithActor(parent, "")); got != "dana" {
		t.Errorf("expected parent actor kept, got %q", got)
	}
}
