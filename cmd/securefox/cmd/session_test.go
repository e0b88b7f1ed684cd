package cmd

import (
	"testing"
)

func TestSaveLoadClearSessionToken(t *testing.T) {
	t.Setenv("SECUREFOX_VAULT", t.TempDir())

	if got := loadSessionToken(); got != "" {
		t.Fatalf("expected no token before save, got %q", got)
	}

	if err := saveSessionToken("abc123"); err != nil {
		t.Fatalf("saveSessionToken: %v", err)
	}

	if got := loadSessionToken(); got != "abc123" {
		t.Fatalf("expected abc123, got %q", got)
	}

	clearSessionToken()

	if got := loadSessionToken(); got != "" {
		t.Fatalf("expected no token after clear, got %q", got)
	}
}
