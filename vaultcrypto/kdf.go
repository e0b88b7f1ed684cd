package vaultcrypto

import (
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
	"crypto/sha256"
)

// KeySize is the length in bytes of every key this package derives or
// generates: a 256-bit AES key.
const KeySize = 32

// SaltSize is the length in bytes of a freshly generated KDF salt.
const SaltSize = 16

// KdfAlgorithm identifies which password-based KDF produced a key.
// It is persisted alongside a vault so the exact parameters used at
// encryption time can be replayed at decryption time.
type KdfAlgorithm string

const (
	KdfArgon2id KdfAlgorithm = "argon2id"
	KdfPbkdf2   KdfAlgorithm = "pbkdf2"
)

// Default Argon2id cost parameters, per spec: 19 MiB of memory, 2
// iterations, single-threaded. Deliberately lighter than the teacher's
// 64 MiB/4-thread defaults (tuned for a CLI secret store, not a daemon
// that may run unlock on constrained containers).
const (
	Argon2MemoryKB     = 19456
	Argon2Iterations   = 2
	Argon2Parallelism  = 1
	Argon2idVersion    = 19
)

// Pbkdf2Iterations is the HMAC-SHA256 round count for the PBKDF2 fallback.
const Pbkdf2Iterations = 100_000

// KdfParams is the on-disk record of how a vault's encryption key was
// derived from its master password. It round-trips through the vault
// envelope's JSON verbatim, so field names and presence match what
// [vaultstorage] persists.
type KdfParams struct {
	Algorithm   KdfAlgorithm `json:"algorithm"`
	Salt        []byte       `json:"salt"`
	Iterations  uint32       `json:"iterations"`
	MemoryKB    uint32       `json:"memory_kb,omitempty"`
	Parallelism uint8        `json:"parallelism,omitempty"`
}

// NewArgon2idParams returns params for a fresh Argon2id-derived key,
// generating a new random salt.
func NewArgon2idParams() (KdfParams, error) {
	salt, err := RandBytes(SaltSize)
	if err != nil {
		return KdfParams{}, fmt.Errorf("generate salt: %w", err)
	}

	return KdfParams{
		Algorithm:   KdfArgon2id,
		Salt:        salt,
		Iterations:  Argon2Iterations,
		MemoryKB:    Argon2MemoryKB,
		Parallelism: Argon2Parallelism,
	}, nil
}

// NewPbkdf2Params returns params for a fresh PBKDF2-derived key,
// generating a new random salt.
func NewPbkdf2Params() (KdfParams, error) {
	salt, err := RandBytes(SaltSize)
	if err != nil {
		return KdfParams{}, fmt.Errorf("generate salt: %w", err)
	}

	return KdfParams{
		Algorithm:  KdfPbkdf2,
		Salt:       salt,
		Iterations: Pbkdf2Iterations,
	}, nil
}

// DeriveKey derives a 32-byte key from password under params, dispatching
// on params.Algorithm. The salt and cost parameters always come from
// params, never regenerated, so the same password reproduces the same
// key given the same params.
func DeriveKey(password []byte, params KdfParams) ([]byte, error) {
	switch params.Algorithm {
	case KdfArgon2id:
		return argon2.IDKey(password, params.Salt, params.Iterations, params.MemoryKB, params.Parallelism, KeySize), nil
	case KdfPbkdf2:
		return pbkdf2.Key(password, params.Salt, int(params.Iterations), KeySize, sha256.New), nil
	default:
		return nil, fmt.Errorf("vaultcrypto: unknown kdf algorithm %q", params.Algorithm)
	}
}
