package vaultcrypto

import (
	"crypto/aes"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
)

// NonceSize is the length in bytes of an AES-256-GCM-SIV nonce.
const NonceSize = 12

// tagSize is the length in bytes of the authentication tag appended to
// every ciphertext.
const tagSize = 16

var (
	ErrNilAEAD       = errors.New("vaultcrypto: AEAD is nil")
	ErrOpenFailed    = errors.New("vaultcrypto: message authentication failed")
	ErrInvalidKey    = errors.New("vaultcrypto: key must be 32 bytes")
	ErrInvalidNonce  = errors.New("vaultcrypto: nonce must be 12 bytes")
)

// AEAD implements AES-256-GCM-SIV (RFC 8452). Unlike plain AES-GCM, a
// repeated nonce degrades to revealing equality of plaintexts rather
// than catastrophically leaking the authentication key, which is the
// property spec.md's threat model (§9: "a future nonce collision must
// not be catastrophic") asks for. No Go module in the example pack
// implements GCM-SIV, and no ecosystem package could be named with
// confidence here, so this builds it directly from stdlib AES plus a
// from-scratch POLYVAL per RFC 8452 §3-4; see DESIGN.md.
//
// Its Seal/Open shape mirrors the teacher's AESGCM wrapper so callers
// do not need to know which AEAD construction is underneath.
type AEAD struct {
	key [KeySize]byte
}

// NewAEAD constructs an AES-256-GCM-SIV instance bound to key, which
// must be exactly 32 bytes.
func NewAEAD(key []byte) (*AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}

	a := &AEAD{}
	copy(a.key[:], key)

	return a, nil
}

// Seal encrypts and authenticates plaintext under nonce and aad,
// returning ciphertext||tag. nonce must be 12 bytes.
func (a *AEAD) Seal(nonce, plaintext, aad []byte) ([]byte, error) {
	if a == nil {
		return nil, ErrNilAEAD
	}

	if len(nonce) != NonceSize {
		return nil, ErrInvalidNonce
	}

	authKey, encKey, err := deriveMessageKeys(a.key[:], nonce)
	if err != nil {
		return nil, err
	}

	tag, err := computeTag(authKey, encKey, nonce, plaintext, aad)
	if err != nil {
		return nil, err
	}

	ciphertext, err := ctrGCMSIV(encKey, tag, plaintext)
	if err != nil {
		return nil, err
	}

	return append(ciphertext, tag...), nil
}

// Open decrypts and verifies a ciphertext produced by Seal. It returns
// ErrOpenFailed on any authentication failure, collapsing tampered and
// wrong-key inputs into the same outcome.
func (a *AEAD) Open(nonce, sealed, aad []byte) ([]byte, error) {
	if a == nil {
		return nil, ErrNilAEAD
	}

	if len(nonce) != NonceSize {
		return nil, ErrInvalidNonce
	}

	if len(sealed) < tagSize {
		return nil, ErrOpenFailed
	}

	ciphertext := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	authKey, encKey, err := deriveMessageKeys(a.key[:], nonce)
	if err != nil {
		return nil, err
	}

	plaintext, err := ctrGCMSIV(encKey, tag, ciphertext)
	if err != nil {
		return nil, err
	}

	expectedTag, err := computeTag(authKey, encKey, nonce, plaintext, aad)
	if err != nil {
		return nil, err
	}

	if subtle.ConstantTimeCompare(expectedTag, tag) != 1 {
		zero(plaintext)
		return nil, ErrOpenFailed
	}

	return plaintext, nil
}

// deriveMessageKeys implements RFC 8452 §4's key derivation: six
// AES-256 blocks keyed on nonce yield 48 bytes of keying material, the
// first 16 forming the POLYVAL key and the remaining 32 the
// message-encryption key.
func deriveMessageKeys(key, nonce []byte) (authKey, encKey []byte, err error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, fmt.Errorf("vaultcrypto: new cipher: %w", err)
	}

	const numBlocks = 6

	material := make([]byte, 0, numBlocks*8)

	var in, out [16]byte
	copy(in[4:], nonce)

	for i := uint32(0); i < numBlocks; i++ {
		binary.LittleEndian.PutUint32(in[0:4], i)
		block.Encrypt(out[:], in[:])
		material = append(material, out[:8]...)
	}

	return material[0:16], material[16:48], nil
}

// computeTag implements RFC 8452 §4's tag derivation: POLYVAL over the
// padded AAD, padded plaintext and a length block, XORed with the
// nonce, then encrypted under encKey.
func computeTag(authKey, encKey, nonce, plaintext, aad []byte) ([]byte, error) {
	s := polyvalMessage(authKey, aad, plaintext)

	for i := 0; i < NonceSize; i++ {
		s[i] ^= nonce[i]
	}

	s[15] &= 0x7f

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("vaultcrypto: new cipher: %w", err)
	}

	tag := make([]byte, 16)
	block.Encrypt(tag, s)

	return tag, nil
}

// ctrGCMSIV runs AES-CTR with the GCM-SIV counter convention: only the
// low 32 bits of the first 16-byte block (little-endian) increment,
// the remaining bytes of the block stay fixed at tag's value with its
// top bit set.
func ctrGCMSIV(encKey, tag, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("vaultcrypto: new cipher: %w", err)
	}

	var counter [16]byte
	copy(counter[:], tag)
	counter[15] |= 0x80

	ctr := binary.LittleEndian.Uint32(counter[0:4])

	out := make([]byte, len(data))

	var ks [16]byte

	for offset := 0; offset < len(data); offset += 16 {
		binary.LittleEndian.PutUint32(counter[0:4], ctr)
		block.Encrypt(ks[:], counter[:])

		n := 16
		if remaining := len(data) - offset; remaining < n {
			n = remaining
		}

		for i := 0; i < n; i++ {
			out[offset+i] = data[offset+i] ^ ks[i]
		}

		ctr++
	}

	return out, nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
