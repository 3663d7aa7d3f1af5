package engine

import (
	"errors"
	"testing"
)

func TestCleanContact(t *testing.T) {
	tests := map[string]string{
		"+1 555-0100":   "15550100",
		"  4915112345 ": "4915112345",
		"":              "",
	}
	for in, want := range tests {
		if got := CleanContact(in); got != want {
			t.Fatalf("CleanContact(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidateContact(t *testing.T) {
	if got, err := ValidateContact("+44 20-7946"); err != nil || got != "44207946" {
		t.Fatalf("unexpected result %q, %v", got, err)
	}
	for _, bad := range []string{"", " + - ", "alice"} {
		if _, err := ValidateContact(bad); !errors.Is(err, ErrInvalidContact) {
			t.Fatalf("expected invalid contact for %q, got %v", bad, err)
		}
	}
}

func TestKnown(t *testing.T) {
	if !Known(EventQRCode) || !Known(EventAuthSuccess) {
		t.Fatalf("expected both streams known")
	}
	if Known("message") {
		t.Fatalf("expected unknown stream rejected")
	}
}
