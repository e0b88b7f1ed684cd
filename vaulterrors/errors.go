// Package vaulterrors defines the sentinel error kinds shared across
// SecureFox's packages, following the teacher's split of concerns:
// sentinel values live here, presentation (CLI exit codes, HTTP
// status mapping) lives in [clierror] and the httpapi package.
package vaulterrors

import "errors"

// Kinds per spec.md §7. Cryptographic failures are deliberately
// collapsed: load, decode, derive, and decrypt failures all surface
// as ErrInvalidPassword so a caller cannot distinguish "wrong
// password" from "corrupted envelope" from "tampered ciphertext".
var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrVaultNotFound   = errors.New("vault not found")
	ErrVaultLocked     = errors.New("vault is locked")
	ErrSessionExpired  = errors.New("session expired")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not found")
	ErrBadRequest      = errors.New("bad request")
	ErrIo              = errors.New("i/o error")
	ErrSerialization   = errors.New("serialization error")
	ErrCrypto          = errors.New("crypto error")
	ErrInvalidTotp     = errors.New("invalid totp secret")
	ErrGit             = errors.New("git error")
	ErrKeychain        = errors.New("keychain error")
	ErrInternal        = errors.New("internal error")
)
