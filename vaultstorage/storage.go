// Package vaultstorage implements the encrypted envelope on disk:
// load/save with atomic rename, and timestamped backup rotation. It
// follows the save/load contract of spec.md §4.2.
package vaultstorage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/securefoxd/securefox/vaultcrypto"
	"github.com/securefoxd/securefox/vaultmodel"
	"github.com/securefoxd/securefox/vaulterrors"
)

// VaultFileName is the name of the encrypted envelope file within the
// vault directory.
const VaultFileName = "vault.sf"

// ConfigDirName is the default directory name (relative to $HOME)
// holding the vault file and plaintext config, mirroring the
// original's ".securefox" convention.
const ConfigDirName = ".securefox"

// EnvelopeVersion is the schema version written to every new envelope.
const EnvelopeVersion = "1.0.0"

// Envelope is the on-disk shape of vault.sf per spec.md §6.
type Envelope struct {
	Version       string                    `json:"version"`
	EncryptedData *vaultcrypto.EncryptedData `json:"encrypted_data"`
}

// Storage manages a single vault file's location on disk.
type Storage struct {
	path string
}

// New returns a Storage rooted at the default location,
// $SECUREFOX_VAULT/vault.sf, or ~/.securefox/vault.sf if unset.
func New() (*Storage, error) {
	dir, err := DefaultDir()
	if err != nil {
		return nil, err
	}

	return WithPath(filepath.Join(dir, VaultFileName)), nil
}

// WithPath returns a Storage rooted at an explicit vault file path.
func WithPath(path string) *Storage {
	return &Storage{path: path}
}

// DefaultDir resolves the vault directory: $SECUREFOX_VAULT if set,
// otherwise ~/.securefox.
func DefaultDir() (string, error) {
	if dir := os.Getenv("SECUREFOX_VAULT"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: resolve home directory: %v", vaulterrors.ErrIo, err)
	}

	return filepath.Join(home, ConfigDirName), nil
}

// Path returns the vault file's path.
func (s *Storage) Path() string {
	return s.path
}

// Dir returns the directory containing the vault file.
func (s *Storage) Dir() string {
	return filepath.Dir(s.path)
}

// Exists reports whether a vault file is present at s.Path().
func (s *Storage) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// EnsureDir creates the vault directory if it does not already exist.
func (s *Storage) EnsureDir() error {
	if err := os.MkdirAll(s.Dir(), 0o700); err != nil {
		return fmt.Errorf("%w: create vault directory: %v", vaulterrors.ErrIo, err)
	}

	return nil
}

// Save serialises vault, derives a fresh Argon2id key and fresh salt
// and nonce (per spec.md §9's "rotate on every save" decision),
// encrypts, atomically writes the envelope, and rotates backups.
func (s *Storage) Save(vault *vaultmodel.Vault, password []byte) error {
	params, err := vaultcrypto.NewArgon2idParams()
	if err != nil {
		return fmt.Errorf("%w: %v", vaulterrors.ErrCrypto, err)
	}

	return s.SaveWithKDF(vault, password, params)
}

// SaveWithKDF is Save but with caller-supplied KDF parameters
// (algorithm and cost retained, salt still freshly generated),
// exposed for rotating from PBKDF2 to Argon2id or vice versa.
func (s *Storage) SaveWithKDF(vault *vaultmodel.Vault, password []byte, kdf vaultcrypto.KdfParams) error {
	plaintext, err := json.Marshal(vault)
	if err != nil {
		return fmt.Errorf("%w: marshal vault: %v", vaulterrors.ErrSerialization, err)
	}

	salt, err := vaultcrypto.RandBytes(vaultcrypto.SaltSize)
	if err != nil {
		return fmt.Errorf("%w: %v", vaulterrors.ErrCrypto, err)
	}

	kdf.Salt = salt

	data, err := vaultcrypto.EncryptWithPasswordAndKDF(password, plaintext, kdf)
	if err != nil {
		return fmt.Errorf("%w: %v", vaulterrors.ErrCrypto, err)
	}

	envelope := &Envelope{Version: EnvelopeVersion, EncryptedData: data}

	// Back up the previous generation before it is overwritten: once
	// writeAtomic returns, s.path already holds the new envelope, so
	// backing up after the write would just duplicate the vault we're
	// about to save, not the one it replaced.
	if s.Exists() {
		if err := s.Backup(); err == nil {
			_ = s.RotateBackups(5)
		}
	}

	if err := s.writeAtomic(envelope); err != nil {
		return err
	}

	return nil
}

// writeAtomic serialises envelope as pretty JSON and writes it to
// s.path via a temp-file-then-rename sequence, fsyncing before the
// rename so a crash never leaves a half-written envelope in place.
func (s *Storage) writeAtomic(envelope *Envelope) error {
	if err := s.EnsureDir(); err != nil {
		return err
	}

	out, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal envelope: %v", vaulterrors.ErrSerialization, err)
	}

	tmp, err := os.CreateTemp(s.Dir(), ".vault.sf.tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", vaulterrors.ErrIo, err)
	}
	tmpPath := tmp.Name()

	defer os.Remove(tmpPath)

	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write temp file: %v", vaulterrors.ErrIo, err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: fsync temp file: %v", vaulterrors.ErrIo, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp file: %v", vaulterrors.ErrIo, err)
	}

	if err := os.Chmod(tmpPath, 0o600); err != nil {
		return fmt.Errorf("%w: chmod temp file: %v", vaulterrors.ErrIo, err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("%w: rename into place: %v", vaulterrors.ErrIo, err)
	}

	return nil
}

// Load reads, decrypts, and parses the vault file. Any failure from
// reading the envelope through decoding KDF parameters to decryption
// collapses to ErrInvalidPassword, per spec.md §7, except a missing
// file which is reported as ErrVaultNotFound.
func (s *Storage) Load(password []byte) (*vaultmodel.Vault, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, vaulterrors.ErrVaultNotFound
		}

		return nil, fmt.Errorf("%w: %v", vaulterrors.ErrInvalidPassword, err)
	}

	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, vaulterrors.ErrInvalidPassword
	}

	if envelope.EncryptedData == nil {
		return nil, vaulterrors.ErrInvalidPassword
	}

	plaintext, err := vaultcrypto.DecryptWithPassword(password, envelope.EncryptedData)
	if err != nil {
		return nil, vaulterrors.ErrInvalidPassword
	}

	var vault vaultmodel.Vault
	if err := json.Unmarshal(plaintext, &vault); err != nil {
		return nil, vaulterrors.ErrInvalidPassword
	}

	return &vault, nil
}

// backupDir returns <vault-dir>/backups, creating it if necessary.
func (s *Storage) backupDir() (string, error) {
	dir := filepath.Join(s.Dir(), "backups")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("%w: create backup directory: %v", vaulterrors.ErrIo, err)
	}

	return dir, nil
}

// Backup copies the current envelope to
// <vault-dir>/backups/vault.sf.<unix-ts>.backup.
func (s *Storage) Backup() error {
	dir, err := s.backupDir()
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("%w: read vault file for backup: %v", vaulterrors.ErrIo, err)
	}

	// Several saves within one second must not overwrite each other's
	// backup, so step past timestamps that are already taken.
	ts := time.Now().Unix()
	dest := filepath.Join(dir, fmt.Sprintf("%s.%d.backup", VaultFileName, ts))

	for {
		if _, err := os.Stat(dest); os.IsNotExist(err) {
			break
		}

		ts++
		dest = filepath.Join(dir, fmt.Sprintf("%s.%d.backup", VaultFileName, ts))
	}

	if err := os.WriteFile(dest, raw, 0o600); err != nil {
		return fmt.Errorf("%w: write backup file: %v", vaulterrors.ErrIo, err)
	}

	return nil
}

// RotateBackups lists files matching vault.sf.*.backup in the backup
// directory, sorts by mtime descending, and deletes every entry past
// the first n, leaving exactly min(n, |backups|).
func (s *Storage) RotateBackups(n int) error {
	dir, err := s.backupDir()
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("%w: list backup directory: %v", vaulterrors.ErrIo, err)
	}

	type backup struct {
		path    string
		modTime time.Time
	}

	var backups []backup

	prefix := VaultFileName + "."
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".backup") {
			continue
		}

		ts := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".backup")
		if _, err := strconv.ParseInt(ts, 10, 64); err != nil {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		backups = append(backups, backup{path: filepath.Join(dir, name), modTime: info.ModTime()})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].modTime.After(backups[j].modTime)
	})

	if n < 0 {
		n = 0
	}

	for _, b := range backups[min(n, len(backups)):] {
		_ = os.Remove(b.path)
	}

	return nil
}

// Delete removes the vault file. It is not an error if no file exists.
func (s *Storage) Delete() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: delete vault file: %v", vaulterrors.ErrIo, err)
	}

	return nil
}
