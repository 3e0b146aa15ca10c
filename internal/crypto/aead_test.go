package crypto

import (
	"bytes"
	"errors"
	"testing"

	"github.com/nimbusvault/filecore/internal/ferr"
)

// TestSealOpenRoundTrip tests that Open inverts Seal for arbitrary
// plaintext and AAD.
func TestSealOpenRoundTrip(t *testing.T) {
	key, err := RandomBytes(KeySize)
	if err != nil {
		t.Fatalf("RandomBytes(key) failed: %v", err)
	}
	nonce, err := RandomBytes(NonceSize)
	if err != nil {
		t.Fatalf("RandomBytes(nonce) failed: %v", err)
	}
	plaintext := []byte("the quick brown fox jumps over the lazy dog")
	aad := []byte("chunk-0")

	ciphertext, err := Seal(key, nonce, aad, plaintext)
	if err != nil {
		t.Fatalf("Seal() failed: %v", err)
	}

	got, err := Open(key, nonce, aad, ciphertext)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("Open() = %q, want %q", got, plaintext)
	}
}

// TestOpenRejectsTamperedCiphertext tests that flipping a ciphertext byte
// fails authentication.
func TestOpenRejectsTamperedCiphertext(t *testing.T) {
	key, _ := RandomBytes(KeySize)
	nonce, _ := RandomBytes(NonceSize)
	ciphertext, err := Seal(key, nonce, nil, []byte("hello world"))
	if err != nil {
		t.Fatalf("Seal() failed: %v", err)
	}
	ciphertext[0] ^= 0xFF

	if _, err := Open(key, nonce, nil, ciphertext); err == nil {
		t.Error("Open() on tampered ciphertext succeeded, want error")
	} else if !errors.Is(err, ferr.DecryptionFailed) {
		t.Errorf("Open() error kind = %v, want DecryptionFailed", ferr.Of(err))
	}
}

// TestOpenRejectsWrongAAD tests that mismatched AAD fails authentication
// even when the ciphertext itself is untouched.
func TestOpenRejectsWrongAAD(t *testing.T) {
	key, _ := RandomBytes(KeySize)
	nonce, _ := RandomBytes(NonceSize)
	ciphertext, err := Seal(key, nonce, []byte("aad-a"), []byte("payload"))
	if err != nil {
		t.Fatalf("Seal() failed: %v", err)
	}
	if _, err := Open(key, nonce, []byte("aad-b"), ciphertext); err == nil {
		t.Error("Open() with mismatched AAD succeeded, want error")
	}
}

// TestSealRejectsBadKeySize tests key-size validation.
func TestSealRejectsBadKeySize(t *testing.T) {
	_, err := Seal(make([]byte, 16), make([]byte, NonceSize), nil, []byte("x"))
	if !errors.Is(err, ferr.InvalidKeySize) {
		t.Errorf("Seal() error kind = %v, want InvalidKeySize", ferr.Of(err))
	}
}
