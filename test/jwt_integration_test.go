//go:build integration
// +build integration

package test

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"

	goAudit "github.com/MrEthical07/goAudit"
	"github.com/MrEthical07/goAudit/actorjwt"
	"github.com/MrEthical07/goAudit/middleware"
)

func newIntegrationProvider(t *testing.T) *actorjwt.Provider {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}

	provider, err := actorjwt.New(actorjwt.Config{
		SigningMethod: actorjwt.MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
		Issuer:        "goaudit",
		Audience:      "api",
		Leeway:        30 * time.Second,
		KeyID:         "k1",
		VerifyKeys:    map[string][]byte{"k1": pub},
	})
	if err != nil {
		t.Fatalf("New provider failed: %v", err)
	}
	return provider
}

func doRequest(t *testing.T, server *httptest.Server, token string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, server.URL, nil)
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := server.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	_ = resp.Body.Close()
	return resp
}

// TestJWTIntegrationHTTPAttribution walks the full production path: the
// middleware verifies the bearer token and annotates the context, the
// wrapper resolves the actor from it, and the record lands in the sink
// attributed to the token's subject.
func TestJWTIntegrationHTTPAttribution(t *testing.T) {
	provider := newIntegrationProvider(t)
	store, _, cleanup := newIntegrationStore(t)
	defer cleanup()

	sink := goAudit.NewChannelSink(4)
	audited, err := goAudit.New[account, string](store).
		WithIdentityProvider(goAudit.ContextProvider{}).
		WithEntityName("accounts").
		WithActionKey("accounts-http").
		WithSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer audited.Close()

	handler := middleware.RequireActor(provider)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := audited.CreateOne(r.Context(), makeAccount("acc-http", "alice", 100)); err != nil {
			http.Error(w, "create failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	server := httptest.NewServer(handler)
	defer server.Close()

	token, err := provider.Issue("alice", time.Minute)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	resp := doRequest(t, server, token)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	record := awaitRecord(t, sink)
	if record.Actor != "alice" {
		t.Errorf("got actor %q, want alice", record.Actor)
	}
	if record.Action != goAudit.ActionInsertOne {
		t.Errorf("got action %q, want %q", record.Action, goAudit.ActionInsertOne)
	}
	if record.ActedOn != "accounts" {
		t.Errorf("got actedOn %q, want accounts", record.ActedOn)
	}
	if record.EntityID != "acc-http" {
		t.Errorf("got entity id %q, want acc-http", record.EntityID)
	}
}

// TestJWTIntegrationRejectsBadTokens verifies that missing, forged, and
// unknown-kid tokens are stopped at the middleware, with no store write and
// no audit record.
func TestJWTIntegrationRejectsBadTokens(t *testing.T) {
	provider := newIntegrationProvider(t)
	store, _, cleanup := newIntegrationStore(t)
	defer cleanup()

	sink := goAudit.NewChannelSink(4)
	audited, err := goAudit.New[account, string](store).
		WithIdentityProvider(goAudit.ContextProvider{}).
		WithEntityName("accounts").
		WithActionKey("accounts-http").
		WithSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer audited.Close()

	handler := middleware.RequireActor(provider)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := audited.CreateOne(r.Context(), makeAccount("acc-reject", "mallory", 0)); err != nil {
			http.Error(w, "create failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	server := httptest.NewServer(handler)
	defer server.Close()

	claims := actorjwt.ActorClaims{
		UID: "mallory",
		RegisteredClaims: gjwt.RegisteredClaims{
			Issuer:    "goaudit",
			Audience:  gjwt.ClaimStrings{"api"},
			Subject:   "mallory",
			ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute)),
			IssuedAt:  gjwt.NewNumericDate(time.Now()),
		},
	}
	_, otherPriv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}

	forged := gjwt.NewWithClaims(gjwt.SigningMethodEdDSA, claims)
	forged.Header["kid"] = "k1"
	signedForged, err := forged.SignedString(otherPriv)
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}

	unknownKid := gjwt.NewWithClaims(gjwt.SigningMethodEdDSA, claims)
	unknownKid.Header["kid"] = "unknown"
	signedUnknownKid, err := unknownKid.SignedString(otherPriv)
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}

	cases := []struct {
		name  string
		token string
	}{
		{"missing token", ""},
		{"forged signature", signedForged},
		{"unknown kid", signedUnknownKid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doRequest(t, server, tc.token)
			if resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", resp.StatusCode)
			}
		})
	}

	if _, err := store.FindByID(context.Background(), "acc-reject"); err == nil {
		t.Error("expected no store write for rejected requests")
	}
	expectNoRecord(t, sink)
}

// TestJWTIntegrationLazyResolution attaches the bearer token at transport
// level without resolving it; the wrapper resolves the actor on the audited
// call path. A bad token then fails the operation after the insert
// committed, which is the documented asymmetry of create auditing.
func TestJWTIntegrationLazyResolution(t *testing.T) {
	provider := newIntegrationProvider(t)
	store, _, cleanup := newIntegrationStore(t)
	defer cleanup()

	sink := goAudit.NewChannelSink(4)
	audited, err := goAudit.New[account, string](store).
		WithIdentityProvider(provider).
		WithEntityName("accounts").
		WithActionKey("accounts-http").
		WithSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer audited.Close()

	handler := middleware.Actor(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Entity-ID")
		if _, err := audited.CreateOne(r.Context(), makeAccount(id, "lazy", 1)); err != nil {
			http.Error(w, "audit attribution failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	server := httptest.NewServer(handler)
	defer server.Close()

	doLazyRequest := func(token, id string) *http.Response {
		t.Helper()
		req, err := http.NewRequest(http.MethodPost, server.URL, nil)
		if err != nil {
			t.Fatalf("NewRequest failed: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("X-Entity-ID", id)
		resp, err := server.Client().Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		_ = resp.Body.Close()
		return resp
	}

	token, err := provider.Issue("svc-lazy", time.Minute)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	resp := doLazyRequest(token, "acc-lazy-ok")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	record := awaitRecord(t, sink)
	if record.Actor != "svc-lazy" {
		t.Errorf("got actor %q, want svc-lazy", record.Actor)
	}

	resp = doLazyRequest("not-a-token", "acc-lazy-fail")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 for malformed token, got %d", resp.StatusCode)
	}

	// The insert committed before actor resolution failed: the entity is in
	// the store, but no record was attributed.
	if _, err := store.FindByID(context.Background(), "acc-lazy-fail"); err != nil {
		t.Errorf("expected committed entity despite failed attribution, got %v", err)
	}
	expectNoRecord(t, sink)
}

// TestJWTIntegrationAnonymousActor verifies the non-rejecting middleware:
// unauthenticated requests pass through and their writes audit as the
// unknown actor.
func TestJWTIntegrationAnonymousActor(t *testing.T) {
	provider := newIntegrationProvider(t)
	store, _, cleanup := newIntegrationStore(t)
	defer cleanup()

	sink := goAudit.NewChannelSink(4)
	audited, err := goAudit.New[account, string](store).
		WithIdentityProvider(goAudit.ContextProvider{}).
		WithEntityName("accounts").
		WithActionKey("accounts-http").
		WithSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer audited.Close()

	handler := middleware.Actor(provider)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := audited.CreateOne(r.Context(), makeAccount("acc-anon", "nobody", 0)); err != nil {
			http.Error(w, "create failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	server := httptest.NewServer(handler)
	defer server.Close()

	resp := doRequest(t, server, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	record := awaitRecord(t, sink)
	if record.Actor != goAudit.UnknownActor {
		t.Errorf("got actor %q, want unknown actor sentinel %q", record.Actor, goAudit.UnknownActor)
	}
}
