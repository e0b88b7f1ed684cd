// Package vaultsession implements the session-gated in-memory vault
// manager of spec.md §4.5: the single owner of the decrypted vault,
// bearer-token sessions with sliding TTL, and the serialised
// update_vault write pipeline. Its concurrency discipline (a map of
// token to session record, short-held exclusive locks for session
// bookkeeping, a separate lock for the vault itself) is grounded on
// the teacher's vaultdaemon/server.go safeMap + session pattern,
// adapted from gRPC sessions to HTTP bearer tokens.
package vaultsession

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/securefoxd/securefox/gitsync"
	"github.com/securefoxd/securefox/vaultmodel"
	"github.com/securefoxd/securefox/vaulterrors"
	"github.com/securefoxd/securefox/vaultstorage"
)

// Session binds a bearer token to the master password used to
// re-encrypt on every mutation, with a sliding expiry.
type Session struct {
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time

	password []byte
}

// Manager owns the single decrypted vault instance and the session
// map for a process. Per spec.md §3 "Ownership", it is the only
// component that mutates either.
type Manager struct {
	storage       *vaultstorage.Storage
	unlockTimeout time.Duration
	logger        *slog.Logger

	vaultMu sync.RWMutex
	vault   *vaultmodel.Vault

	sessionsMu sync.Mutex
	sessions   map[string]*Session

	// sync, when non-nil and pushOnSave is set, is invoked after every
	// successful mutation to commit and push. It is best-effort:
	// errors are logged, never propagated (spec.md §4.5 step 5).
	sync       *gitsync.Engine
	pushOnSave bool
}

// New constructs a Manager backed by storage, evicting sessions after
// unlockTimeout of inactivity.
func New(storage *vaultstorage.Storage, unlockTimeout time.Duration, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		storage:       storage,
		unlockTimeout: unlockTimeout,
		logger:        logger,
		sessions:      make(map[string]*Session),
	}
}

// SetSyncEngine wires a gitsync.Engine so mutations can trigger
// push-on-change; pushOnSave is set when sync is enabled in Auto mode.
func (m *Manager) SetSyncEngine(engine *gitsync.Engine, pushOnSave bool) {
	m.vaultMu.Lock()
	defer m.vaultMu.Unlock()

	m.sync = engine
	m.pushOnSave = pushOnSave
}

// Unlocked reports whether a vault is currently held in memory.
func (m *Manager) Unlocked() bool {
	m.vaultMu.RLock()
	defer m.vaultMu.RUnlock()

	return m.vault != nil
}

// VaultExists reports whether an envelope is present on disk,
// independent of whether it is currently unlocked.
func (m *Manager) VaultExists() bool {
	return m.storage.Exists()
}

// Unlock loads and decrypts the vault via storage, installs it into
// memory, and creates a fresh session.
func (m *Manager) Unlock(password []byte) (*Session, error) {
	vault, err := m.storage.Load(password)
	if err != nil {
		return nil, err
	}

	m.vaultMu.Lock()
	m.vault = vault
	m.vaultMu.Unlock()

	now := time.Now()

	session := &Session{
		Token:     uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(m.unlockTimeout),
		password:  password,
	}

	m.sessionsMu.Lock()
	m.sessions[session.Token] = session
	m.sessionsMu.Unlock()

	return session, nil
}

// Lock removes a single session if token is non-empty. If token is
// empty, or the removed session was the last one, it clears all
// sessions (zeroing their passwords) and drops the in-memory vault.
// The decrypted vault is released to the garbage collector; its
// contents are not overwritten first.
func (m *Manager) Lock(token string) {
	if token != "" {
		m.sessionsMu.Lock()
		delete(m.sessions, token)
		remaining := len(m.sessions)
		m.sessionsMu.Unlock()

		if remaining > 0 {
			return
		}
	}

	m.sessionsMu.Lock()
	for _, s := range m.sessions {
		zero(s.password)
	}
	m.sessions = make(map[string]*Session)
	m.sessionsMu.Unlock()

	m.vaultMu.Lock()
	m.vault = nil
	m.vaultMu.Unlock()
}

// GetSession returns the session for token if present and unexpired,
// sliding its expiry forward by unlockTimeout. Expired sessions are
// evicted lazily on lookup.
func (m *Manager) GetSession(token string) (*Session, error) {
	m.sessionsMu.Lock()
	defer m.sessionsMu.Unlock()

	session, ok := m.sessions[token]
	if !ok {
		return nil, vaulterrors.ErrSessionExpired
	}

	now := time.Now()

	if now.After(session.ExpiresAt) {
		delete(m.sessions, token)
		zero(session.password)

		return nil, vaulterrors.ErrSessionExpired
	}

	session.ExpiresAt = now.Add(m.unlockTimeout)

	return session, nil
}

// SessionCount reports the number of live sessions.
func (m *Manager) SessionCount() int {
	m.sessionsMu.Lock()
	defer m.sessionsMu.Unlock()

	return len(m.sessions)
}

// ReadVault runs fn against a point-in-time snapshot of the vault,
// holding only a read lock so it never blocks a concurrent writer for
// longer than the copy takes.
func (m *Manager) ReadVault(token string, fn func(*vaultmodel.Vault) error) error {
	if _, err := m.GetSession(token); err != nil {
		return err
	}

	m.vaultMu.RLock()

	if m.vault == nil {
		m.vaultMu.RUnlock()
		return vaulterrors.ErrVaultLocked
	}

	raw, err := json.Marshal(m.vault)
	m.vaultMu.RUnlock()

	if err != nil {
		return fmt.Errorf("%w: snapshot vault: %v", vaulterrors.ErrSerialization, err)
	}

	var snapshot vaultmodel.Vault
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return fmt.Errorf("%w: snapshot vault: %v", vaulterrors.ErrSerialization, err)
	}

	return fn(&snapshot)
}

// UpdateVault is the single serialised write pipeline of spec.md
// §4.5: validate the session, take exclusive access to the vault,
// apply mutation, persist, and best-effort sync. mutation errors
// abort before anything is persisted. The vault write guard is
// released before any network I/O: per spec.md §5/§9 a writer must
// not hold it across suspension points, so a slow or hung push must
// not block every other reader and writer.
func (m *Manager) UpdateVault(token string, mutation func(*vaultmodel.Vault) error) error {
	session, err := m.GetSession(token)
	if err != nil {
		return err
	}

	m.vaultMu.Lock()

	if m.vault == nil {
		m.vaultMu.Unlock()
		return vaulterrors.ErrVaultLocked
	}

	if err := mutation(m.vault); err != nil {
		m.vaultMu.Unlock()
		return err
	}

	if err := m.storage.Save(m.vault, session.password); err != nil {
		m.vaultMu.Unlock()
		return fmt.Errorf("%w: %v", vaulterrors.ErrIo, err)
	}

	engine, pushOnSave := m.sync, m.pushOnSave
	m.vaultMu.Unlock()

	if engine != nil && pushOnSave {
		if err := engine.AutoCommitPush("Auto sync"); err != nil {
			m.logger.Warn("auto-sync push failed", "error", err)
		}
	}

	return nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
