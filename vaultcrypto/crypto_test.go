package vaultcrypto_test

import (
	"bytes"
	"testing"

	"github.com/securefoxd/securefox/vaultcrypto"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	password := []byte("correct horse battery staple")
	plaintext := []byte(`{"items":[]}`)

	data, err := vaultcrypto.EncryptWithPassword(password, plaintext)
	if err != nil {
		t.Fatalf("EncryptWithPassword: %v", err)
	}

	got, err := vaultcrypto.DecryptWithPassword(password, data)
	if err != nil {
		t.Fatalf("DecryptWithPassword: %v", err)
	}

	if !bytes.Equal(got, plaintext) {
		t.Fatalf("round trip mismatch: got %q want %q", got, plaintext)
	}
}

func TestDecryptWrongPasswordFails(t *testing.T) {
	data, err := vaultcrypto.EncryptWithPassword([]byte("right"), []byte("secret"))
	if err != nil {
		t.Fatalf("EncryptWithPassword: %v", err)
	}

	if _, err := vaultcrypto.DecryptWithPassword([]byte("wrong"), data); err == nil {
		t.Fatal("expected error decrypting with wrong password")
	}

	if vaultcrypto.VerifyPassword([]byte("wrong"), data) {
		t.Fatal("VerifyPassword should reject the wrong password")
	}

	if !vaultcrypto.VerifyPassword([]byte("right"), data) {
		t.Fatal("VerifyPassword should accept the right password")
	}
}

func TestEncryptNoncesAreUnique(t *testing.T) {
	password := []byte("p")
	plaintext := []byte("same plaintext every time")

	seen := make(map[string]bool)

	for i := 0; i < 50; i++ {
		data, err := vaultcrypto.EncryptWithPassword(password, plaintext)
		if err != nil {
			t.Fatalf("EncryptWithPassword: %v", err)
		}

		key := string(data.Nonce)
		if seen[key] {
			t.Fatalf("nonce reuse detected at iteration %d", i)
		}

		seen[key] = true
	}
}

func TestGCMSIVSealOpenRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, vaultcrypto.KeySize)

	aead, err := vaultcrypto.NewAEAD(key)
	if err != nil {
		t.Fatalf("NewAEAD: %v", err)
	}

	nonce := bytes.Repeat([]byte{0x24}, vaultcrypto.NonceSize)
	aad := []byte("associated data")
	plaintext := []byte("hello, gcm-siv")

	sealed, err := aead.Seal(nonce, plaintext, aad)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	opened, err := aead.Open(nonce, sealed, aad)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if !bytes.Equal(opened, plaintext) {
		t.Fatalf("got %q want %q", opened, plaintext)
	}

	sealed[0] ^= 0xff

	if _, err := aead.Open(nonce, sealed, aad); err == nil {
		t.Fatal("expected tamper detection to fail Open")
	}
}

func TestKeyDestroyZeroes(t *testing.T) {
	raw := []byte{1, 2, 3, 4}
	padded := make([]byte, vaultcrypto.KeySize)
	copy(padded, raw)

	k := vaultcrypto.NewKey(padded)
	b := k.Bytes()
	k.Destroy()

	if k.Bytes() != nil {
		t.Fatal("Bytes should return nil after Destroy")
	}

	for i, v := range b {
		if v != 0 {
			t.Fatalf("key byte %d not zeroed after Destroy: %d", i, v)
		}
	}
}

func TestRandBytesLength(t *testing.T) {
	b, err := vaultcrypto.RandBytes(16)
	if err != nil {
		t.Fatalf("RandBytes: %v", err)
	}

	if len(b) != 16 {
		t.Fatalf("got length %d want 16", len(b))
	}
}
