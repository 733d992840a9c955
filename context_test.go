package goAudit

import (
	"context"
	"testing"
)

func TestActorIDContextRoundTrip(t *testing.T) {
	ctx := WithActorID(context.Background(), "42")

	actorID, ok := ActorIDFromContext(ctx)
	if !ok || actorID != "42" {
		t.Fatalf("expected actor 42, got %q (present=%v)", actorID, ok)
	}
}

func TestActorIDContextAbsent(t *testing.T) {
	cases := []struct {
		name string
		ctx  context.Context
	}{
		{name: "background", ctx: context.Background()},
		{name: "empty value", ctx: WithActorID(context.Background(), "")},
		{name: "nil", ctx: nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if actorID, ok := ActorIDFromContext(tc.ctx); ok || actorID != "" {
				t.Fatalf("expected no actor, got %q (present=%v)", actorID, ok)
			}
		})
	}
}

func TestBearerTokenContextRoundTrip(t *testing.T) {
	ctx := WithBearerToken(context.Background(), "token-value")

	token, ok := BearerTokenFromContext(ctx)
	if !ok || token != "token-value" {
		t.Fatalf("expected token back, got %q (present=%v)", token, ok)
	}
}

func TestBearerTokenContextAbsent(t *testing.T) {
	if token, ok := BearerTokenFromContext(context.Background()); ok || token != "" {
		t.Fatalf("expected no token, got %q (present=%v)", token, ok)
	}
	if _, ok := BearerTokenFromContext(nil); ok {
		t.Fatal("expected no token on nil context")
	}
}

func TestActorAndTokenKeysAreIndependent(t *testing.T) {
	ctx := WithActorID(WithBearerToken(context.Background(), "token-value"), "42")

	if actorID, ok := ActorIDFromContext(ctx); !ok || actorID != "42" {
		t.Fatalf("expected actor 42, got %q", actorID)
	}
	if token, ok := BearerTokenFromContext(ctx); !ok || token != "token-value" {
		t.Fatalf("expected token preserved, got %q", token)
	}
}
