package utils

import (
	"strings"
	"testing"
	"time"
)

var mangleTime = time.Date(2025, 7, 14, 9, 30, 45, 0, time.UTC)

func TestMangleIdentityFormat(t *testing.T) {
	got := MangleIdentity("bob", mangleTime)
	want := "deleted_20250714_093045_bob"
	if got != want {
		t.Errorf("MangleIdentity() = %q, want %q", got, want)
	}
}

func TestUnmangleIdentityRoundTrip(t *testing.T) {
	cases := []string{"bob", "bob@x.com", "user_with_underscores", "a"}
	for _, original := range cases {
		mangled := MangleIdentity(original, mangleTime)
		got, ok := UnmangleIdentity(mangled)
		if !ok {
			t.Errorf("UnmangleIdentity(%q) not ok", mangled)
			continue
		}
		if got != original {
			t.Errorf("UnmangleIdentity(%q) = %q, want %q", mangled, got, original)
		}
	}
}

func TestUnmangleIdentityMalformed(t *testing.T) {
	// Fewer than four underscore-separated segments cannot carry an original.
	for _, mangled := range []string{"deleted_20250714_093045", "deleted_", "bob", ""} {
		if got, ok := UnmangleIdentity(mangled); ok {
			t.Errorf("UnmangleIdentity(%q) = %q, ok; want not ok", mangled, got)
		}
	}
}

// Re-mangling an already mangled identity nests the prefix, so a second
// delete-restore cycle recovers the first mangled form, not the original.
func TestMangleIdentityNotIdempotent(t *testing.T) {
	first := MangleIdentity("bob", mangleTime)
	second := MangleIdentity(first, mangleTime.Add(time.Hour))

	recovered, ok := UnmangleIdentity(second)
	if !ok {
		t.Fatalf("UnmangleIdentity(%q) not ok", second)
	}
	if recovered != first {
		t.Errorf("recovered %q, want the first mangled form %q", recovered, first)
	}
	if !strings.HasPrefix(recovered, "deleted_") {
		t.Errorf("recovered %q should still carry the deleted prefix", recovered)
	}
}

func TestFallbackIdentifiers(t *testing.T) {
	if got := FallbackUsername(42); got != "restored_user_42" {
		t.Errorf("FallbackUsername(42) = %q", got)
	}
	if got := FallbackEmail(42); got != "restored_42@restored.local" {
		t.Errorf("FallbackEmail(42) = %q", got)
	}
}

func TestDisambiguation(t *testing.T) {
	if got := DisambiguateUsername("bob", mangleTime); got != "bob_restored_20250714" {
		t.Errorf("DisambiguateUsername() = %q", got)
	}
	if got := DisambiguateEmail("bob@x.com", mangleTime); got != "restored_20250714_093045_bob@x.com" {
		t.Errorf("DisambiguateEmail() = %q", got)
	}
}
