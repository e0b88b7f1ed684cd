package gitsync_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/securefoxd/securefox/gitsync"
)

func TestSmartSyncNoRemoteIsNoOp(t *testing.T) {
	dir := t.TempDir()

	e, err := gitsync.Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	result, err := e.SmartSync()
	if err != nil {
		t.Fatalf("SmartSync: %v", err)
	}

	if !result.AlreadyUpToDate || result.Pulled || result.Pushed {
		t.Fatalf("expected a no-op result on a fresh repo with no remote, got %+v", result)
	}
}

func TestAutoCommitSkipsWhenNoChanges(t *testing.T) {
	dir := t.TempDir()

	e, err := gitsync.Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "vault.sf"), []byte("v1"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := e.AutoCommit("first"); err != nil {
		t.Fatalf("AutoCommit: %v", err)
	}

	// A second commit attempt with no changes must be a no-op, not an error.
	if err := e.AutoCommit("second"); err != nil {
		t.Fatalf("AutoCommit with no changes: %v", err)
	}
}

func TestSetRemoteGetRemote(t *testing.T) {
	dir := t.TempDir()

	e, err := gitsync.Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if _, ok := e.GetRemote(); ok {
		t.Fatal("expected no remote configured on a fresh repo")
	}

	if err := e.SetRemote("https://example.com/vault.git"); err != nil {
		t.Fatalf("SetRemote: %v", err)
	}

	url, ok := e.GetRemote()
	if !ok || url != "https://example.com/vault.git" {
		t.Fatalf("got (%q, %v), want (%q, true)", url, ok, "https://example.com/vault.git")
	}
}
