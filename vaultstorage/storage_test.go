package vaultstorage_test

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/securefoxd/securefox/vaulterrors"
	"github.com/securefoxd/securefox/vaultmodel"
	"github.com/securefoxd/securefox/vaultstorage"
)

func newVaultWithItem(t *testing.T) *vaultmodel.Vault {
	t.Helper()

	v := vaultmodel.NewVault()

	username := "alice"
	password := "hunter2"

	if _, err := v.AddItem(vaultmodel.Item{
		Name: "GitHub",
		Type: vaultmodel.ItemTypeLogin,
		Login: &vaultmodel.LoginData{
			Username: &username,
			Password: &password,
		},
	}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	return v
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := vaultstorage.WithPath(filepath.Join(dir, vaultstorage.VaultFileName))

	v := newVaultWithItem(t)
	password := []byte("correct horse battery staple")

	if err := s.Save(v, password); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := s.Load(password)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	wantJSON, _ := json.Marshal(v)
	gotJSON, _ := json.Marshal(loaded)

	if diff := cmp.Diff(string(wantJSON), string(gotJSON)); diff != "" {
		t.Fatalf("load(save(v)) != v (-want +got):\n%s", diff)
	}
}

func TestLoadWrongPasswordFails(t *testing.T) {
	dir := t.TempDir()
	s := vaultstorage.WithPath(filepath.Join(dir, vaultstorage.VaultFileName))

	v := newVaultWithItem(t)

	if err := s.Save(v, []byte("right")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := s.Load([]byte("wrong")); err == nil {
		t.Fatal("expected Load with wrong password to fail")
	}
}

func TestLoadMissingFileReturnsVaultNotFound(t *testing.T) {
	dir := t.TempDir()
	s := vaultstorage.WithPath(filepath.Join(dir, vaultstorage.VaultFileName))

	if _, err := s.Load([]byte("anything")); !errors.Is(err, vaulterrors.ErrVaultNotFound) {
		t.Fatalf("expected ErrVaultNotFound on a missing vault file, got %v", err)
	}
}

func TestRotateBackupsKeepsMostRecentN(t *testing.T) {
	dir := t.TempDir()
	s := vaultstorage.WithPath(filepath.Join(dir, vaultstorage.VaultFileName))

	v := newVaultWithItem(t)
	password := []byte("p")

	// Each Save backs up the prior envelope and rotates to 5; save
	// more than that to exercise the trim.
	for i := 0; i < 8; i++ {
		if err := s.Save(v, password); err != nil {
			t.Fatalf("Save #%d: %v", i, err)
		}
	}

	if err := s.RotateBackups(3); err != nil {
		t.Fatalf("RotateBackups: %v", err)
	}

	entries, err := filepath.Glob(filepath.Join(dir, "backups", "*.backup"))
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("expected 3 backups after rotation, got %d", len(entries))
	}
}

func TestSavePreservesPreviousEnvelopeOnSuccessiveSaves(t *testing.T) {
	dir := t.TempDir()
	s := vaultstorage.WithPath(filepath.Join(dir, vaultstorage.VaultFileName))

	v := newVaultWithItem(t)
	password := []byte("p")

	if err := s.Save(v, password); err != nil {
		t.Fatalf("first Save: %v", err)
	}

	if _, err := s.Load(password); err != nil {
		t.Fatalf("Load after first Save: %v", err)
	}

	if err := s.Save(v, password); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	if _, err := s.Load(password); err != nil {
		t.Fatalf("Load after second Save: %v", err)
	}
}
