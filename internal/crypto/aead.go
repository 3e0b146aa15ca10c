package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"

	"github.com/nimbusvault/filecore/internal/ferr"
)

// Seal encrypts and authenticates plaintext with AES-256-GCM. aad is
// authenticated but not encrypted and may be nil. A key that is not 32 bytes
// is reported as InvalidKeySize; every other failure — bad nonce size,
// cipher-init failure — is reported as a single EncryptionFailed kind; no
// internal detail leaks past that classification.
func Seal(key, nonce, aad, plaintext []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, ferr.New(ferr.InvalidKeySize, "aead seal: key must be 32 bytes")
	}
	if len(nonce) != NonceSize {
		return nil, ferr.New(ferr.EncryptionFailed, "aead seal: nonce must be 12 bytes")
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, ferr.Wrap(ferr.EncryptionFailed, "aead seal: cipher init", err)
	}

	return gcm.Seal(nil, nonce, plaintext, aad), nil
}

// Open decrypts and verifies ciphertext produced by Seal. A failing tag (or
// any other AEAD failure) returns DecryptionFailed and no partial plaintext.
func Open(key, nonce, aad, ciphertext []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, ferr.New(ferr.InvalidKeySize, "aead open: key must be 32 bytes")
	}
	if len(nonce) != NonceSize {
		return nil, ferr.New(ferr.DecryptionFailed, "aead open: nonce must be 12 bytes")
	}
	if len(ciphertext) < TagSize {
		return nil, ferr.New(ferr.DecryptionFailed, "aead open: ciphertext shorter than tag")
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, ferr.Wrap(ferr.DecryptionFailed, "aead open: cipher init", err)
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, ferr.Wrap(ferr.DecryptionFailed, "aead open: authentication failed", err)
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// RandomBytes draws n bytes from the system CSPRNG. Every nonce and FEK in
// this package is drawn this way; a failure here is always reported as
// EncryptionFailed since it only ever happens mid-encrypt-path.
func RandomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, ferr.Wrap(ferr.EncryptionFailed, "rng read failed", err)
	}
	return buf, nil
}
