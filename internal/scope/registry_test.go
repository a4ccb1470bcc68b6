package scope

import "testing"

func testRegistry() *Registry {
	scopes := []Scope{
		{Env: "live", Venue: "binance", Family: "trend", Market: "crypto"},
		{Env: "paper", Venue: "binance", Family: "trend", Market: "crypto"},
	}
	aliases := map[string]string{
		"live-crypto":  "live-binance-trend-crypto",
		"paper-crypto": "paper-binance-trend-crypto",
	}
	return NewRegistry(scopes, aliases)
}

func TestResolveCanonical(t *testing.T) {
	r := testRegistry()
	s, ok := r.Resolve("live-binance-trend-crypto")
	if !ok {
		t.Fatal("expected canonical name to resolve")
	}
	if s.Env != "live" || s.Market != "crypto" {
		t.Fatalf("unexpected scope: %+v", s)
	}
}

func TestResolveAlias(t *testing.T) {
	r := testRegistry()
	s, ok := r.Resolve("live-crypto")
	if !ok {
		t.Fatal("expected alias to resolve")
	}
	if s.Dir() != "live-binance-trend-crypto" {
		t.Fatalf("alias resolved to wrong scope: %s", s.Dir())
	}
}

func TestResolveCaseAndSpace(t *testing.T) {
	r := testRegistry()
	if _, ok := r.Resolve("  Live-Crypto "); !ok {
		t.Fatal("expected trimmed, case-folded alias to resolve")
	}
}

func TestResolveUnknown(t *testing.T) {
	r := testRegistry()
	if _, ok := r.Resolve("no-such-scope"); ok {
		t.Fatal("unknown name must not resolve")
	}
}

func TestAliasToUnregisteredScope(t *testing.T) {
	r := NewRegistry(nil, map[string]string{"ghost": "live-x-y-z"})
	if _, ok := r.Resolve("ghost"); ok {
		t.Fatal("alias to unregistered scope must not resolve")
	}
}
