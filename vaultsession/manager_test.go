package vaultsession_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/securefoxd/securefox/vaultmodel"
	"github.com/securefoxd/securefox/vaultsession"
	"github.com/securefoxd/securefox/vaultstorage"
)

func newManager(t *testing.T, timeout time.Duration) (*vaultsession.Manager, []byte) {
	t.Helper()

	dir := t.TempDir()
	storage := vaultstorage.WithPath(filepath.Join(dir, vaultstorage.VaultFileName))

	password := []byte("correct horse battery staple")

	if err := storage.Save(vaultmodel.NewVault(), password); err != nil {
		t.Fatalf("seed Save: %v", err)
	}

	return vaultsession.New(storage, timeout, nil), password
}

func TestUnlockLockRoundTrip(t *testing.T) {
	m, password := newManager(t, time.Minute)

	session, err := m.Unlock(password)
	if err != nil {
		t.Fatalf("Unlock: %v", err)
	}

	if !m.Unlocked() {
		t.Fatal("expected Unlocked() to be true after Unlock")
	}

	if _, err := m.GetSession(session.Token); err != nil {
		t.Fatalf("GetSession: %v", err)
	}

	m.Lock(session.Token)

	if _, err := m.GetSession(session.Token); err == nil {
		t.Fatal("expected session to be gone after Lock")
	}

	if m.Unlocked() {
		t.Fatal("expected Unlocked() to be false after the last session locks")
	}
}

func TestUnlockWrongPasswordFails(t *testing.T) {
	m, _ := newManager(t, time.Minute)

	if _, err := m.Unlock([]byte("wrong")); err == nil {
		t.Fatal("expected Unlock to fail with the wrong password")
	}

	if m.Unlocked() {
		t.Fatal("vault must remain absent in memory after a failed unlock")
	}
}

func TestSessionSlidingTTL(t *testing.T) {
	m, password := newManager(t, 50*time.Millisecond)

	session, err := m.Unlock(password)
	if err != nil {
		t.Fatalf("Unlock: %v", err)
	}

	// Access repeatedly, each time within the timeout, and confirm
	// the session survives longer than a single timeout window would
	// allow without sliding.
	for i := 0; i < 5; i++ {
		time.Sleep(20 * time.Millisecond)

		if _, err := m.GetSession(session.Token); err != nil {
			t.Fatalf("GetSession access %d: %v", i, err)
		}
	}
}

func TestSessionExpiresWithoutAccess(t *testing.T) {
	m, password := newManager(t, 20*time.Millisecond)

	session, err := m.Unlock(password)
	if err != nil {
		t.Fatalf("Unlock: %v", err)
	}

	time.Sleep(60 * time.Millisecond)

	if _, err := m.GetSession(session.Token); err == nil {
		t.Fatal("expected session to expire without access")
	}
}

func TestUpdateVaultRequiresValidSession(t *testing.T) {
	m, _ := newManager(t, time.Minute)

	err := m.UpdateVault("not-a-real-token", func(v *vaultmodel.Vault) error { return nil })
	if err == nil {
		t.Fatal("expected UpdateVault to fail for an unknown token")
	}
}

func TestUpdateVaultPersists(t *testing.T) {
	m, password := newManager(t, time.Minute)

	session, err := m.Unlock(password)
	if err != nil {
		t.Fatalf("Unlock: %v", err)
	}

	username := "alice"
	loginPassword := "hunter2"

	err = m.UpdateVault(session.Token, func(v *vaultmodel.Vault) error {
		_, addErr := v.AddItem(vaultmodel.Item{
			Name: "GitHub",
			Type: vaultmodel.ItemTypeLogin,
			Login: &vaultmodel.LoginData{
				Username: &username,
				Password: &loginPassword,
			},
		})

		return addErr
	})
	if err != nil {
		t.Fatalf("UpdateVault: %v", err)
	}

	m.Lock(session.Token)

	session2, err := m.Unlock(password)
	if err != nil {
		t.Fatalf("re-Unlock: %v", err)
	}

	var count int

	err = m.ReadVault(session2.Token, func(v *vaultmodel.Vault) error {
		count = len(v.Items)
		return nil
	})
	if err != nil {
		t.Fatalf("ReadVault: %v", err)
	}

	if count != 1 {
		t.Fatalf("expected the persisted item to survive a lock/unlock cycle, got %d items", count)
	}
}
