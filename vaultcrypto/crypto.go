package vaultcrypto

import "fmt"

// EncryptedData is the sealed payload shape persisted by the vault
// envelope: the KDF parameters needed to re-derive the key from a
// password, the nonce used for this particular seal, and the
// ciphertext with its appended tag.
type EncryptedData struct {
	KdfParams  KdfParams `json:"kdf_params"`
	Nonce      []byte    `json:"nonce"`
	Ciphertext []byte    `json:"ciphertext"`
}

// EncryptWithPassword derives a fresh Argon2id key from password and
// seals plaintext under a freshly generated nonce, using the default
// Argon2id parameters.
func EncryptWithPassword(password, plaintext []byte) (*EncryptedData, error) {
	params, err := NewArgon2idParams()
	if err != nil {
		return nil, err
	}

	return EncryptWithPasswordAndKDF(password, plaintext, params)
}

// EncryptWithPasswordAndKDF seals plaintext under a key derived from
// password using the supplied KDF parameters, exactly as given: the
// salt and algorithm params carries are used and recorded unchanged.
// vaultstorage fills in a fresh salt before every call.
func EncryptWithPasswordAndKDF(password, plaintext []byte, params KdfParams) (*EncryptedData, error) {
	raw, err := DeriveKey(password, params)
	if err != nil {
		return nil, err
	}

	key := NewKey(raw)
	zero(raw)
	defer key.Destroy()

	nonce, err := RandBytes(NonceSize)
	if err != nil {
		return nil, fmt.Errorf("vaultcrypto: generate nonce: %w", err)
	}

	aead, err := NewAEAD(key.Bytes())
	if err != nil {
		return nil, err
	}

	ciphertext, err := aead.Seal(nonce, plaintext, nil)
	if err != nil {
		return nil, err
	}

	return &EncryptedData{
		KdfParams:  params,
		Nonce:      nonce,
		Ciphertext: ciphertext,
	}, nil
}

// DecryptWithPassword re-derives the key from password using data's
// stored KDF parameters and opens the ciphertext. Any failure --
// wrong password, corrupted ciphertext, or tampering -- surfaces as
// ErrOpenFailed so callers can collapse it into a single
// "invalid password" outcome without distinguishing the cause.
func DecryptWithPassword(password []byte, data *EncryptedData) ([]byte, error) {
	raw, err := DeriveKey(password, data.KdfParams)
	if err != nil {
		return nil, err
	}

	key := NewKey(raw)
	zero(raw)
	defer key.Destroy()

	aead, err := NewAEAD(key.Bytes())
	if err != nil {
		return nil, err
	}

	return aead.Open(data.Nonce, data.Ciphertext, nil)
}

// VerifyPassword reports whether password can successfully open data,
// without returning the decrypted plaintext.
func VerifyPassword(password []byte, data *EncryptedData) bool {
	plaintext, err := DecryptWithPassword(password, data)
	if err != nil {
		return false
	}

	zero(plaintext)

	return true
}
