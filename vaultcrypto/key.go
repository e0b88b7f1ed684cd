package vaultcrypto

// Key wraps a derived or generated encryption key so every exit path
// that releases it can overwrite the backing bytes. Encryption and
// decryption with a password defer a Destroy on the key they briefly
// hold.
type Key struct {
	bytes [KeySize]byte
	freed bool
}

// NewKey copies raw into a Key. raw is not modified; callers that
// generated raw themselves are responsible for zeroing it separately.
func NewKey(raw []byte) *Key {
	k := &Key{}
	copy(k.bytes[:], raw)

	return k
}

// Bytes returns the live key material. The returned slice aliases the
// Key's internal storage and becomes invalid after Destroy.
func (k *Key) Bytes() []byte {
	if k == nil || k.freed {
		return nil
	}

	return k.bytes[:]
}

// Destroy overwrites the key material with zeroes. Safe to call more
// than once and on a nil Key.
func (k *Key) Destroy() {
	if k == nil {
		return
	}

	for i := range k.bytes {
		k.bytes[i] = 0
	}

	k.freed = true
}
