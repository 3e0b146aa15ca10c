package crypto

import (
	"bytes"
	"errors"
	"testing"

	"github.com/nimbusvault/filecore/internal/ferr"
)

// TestEncryptDecryptSessionRoundTrip tests a full open/encrypt/decrypt/
// finalize cycle across several chunks.
func TestEncryptDecryptSessionRoundTrip(t *testing.T) {
	masterKey, _ := RandomBytes(KeySize)

	enc, err := NewEncryptSession(masterKey, nil)
	if err != nil {
		t.Fatalf("NewEncryptSession() failed: %v", err)
	}
	defer enc.Finalize()

	chunks := [][]byte{
		[]byte("chunk zero"),
		[]byte("chunk one, a bit longer"),
		{},
	}

	var frames [][]byte
	for i, c := range chunks {
		frame, err := enc.EncryptChunk(c, uint32(i))
		if err != nil {
			t.Fatalf("EncryptChunk(%d) failed: %v", i, err)
		}
		frames = append(frames, frame)
	}

	dec, err := NewDecryptSession(enc.Prefix(), masterKey)
	if err != nil {
		t.Fatalf("NewDecryptSession() failed: %v", err)
	}
	defer dec.Finalize()

	for i, frame := range frames {
		plaintext, index, err := dec.DecryptChunk(frame)
		if err != nil {
			t.Fatalf("DecryptChunk(%d) failed: %v", i, err)
		}
		if index != uint32(i) {
			t.Errorf("chunk %d: index = %d, want %d", i, index, i)
		}
		if !bytes.Equal(plaintext, chunks[i]) {
			t.Errorf("chunk %d: plaintext = %q, want %q", i, plaintext, chunks[i])
		}
	}
}

// TestDecryptSessionRejectsWrongMasterKey tests that the FEK cannot be
// unwrapped under the wrong master key.
func TestDecryptSessionRejectsWrongMasterKey(t *testing.T) {
	masterKey, _ := RandomBytes(KeySize)
	otherKey, _ := RandomBytes(KeySize)

	enc, err := NewEncryptSession(masterKey, nil)
	if err != nil {
		t.Fatalf("NewEncryptSession() failed: %v", err)
	}
	defer enc.Finalize()

	if _, err := NewDecryptSession(enc.Prefix(), otherKey); err == nil {
		t.Error("NewDecryptSession() under wrong master key succeeded, want error")
	}
}

// TestEncryptSessionFinalizeIdempotent tests that Finalize can be called
// more than once without panicking and that chunks can't be encrypted
// after it.
func TestEncryptSessionFinalizeIdempotent(t *testing.T) {
	masterKey, _ := RandomBytes(KeySize)
	enc, err := NewEncryptSession(masterKey, nil)
	if err != nil {
		t.Fatalf("NewEncryptSession() failed: %v", err)
	}

	enc.Finalize()
	enc.Finalize()

	if _, err := enc.EncryptChunk([]byte("x"), 0); err == nil {
		t.Error("EncryptChunk() after Finalize() succeeded, want error")
	}
}

// TestNewDecryptSessionRejectsBadMagic tests that a corrupted magic number
// is reported as InvalidFormat.
func TestNewDecryptSessionRejectsBadMagic(t *testing.T) {
	masterKey, _ := RandomBytes(KeySize)
	enc, err := NewEncryptSession(masterKey, nil)
	if err != nil {
		t.Fatalf("NewEncryptSession() failed: %v", err)
	}
	defer enc.Finalize()

	prefix := enc.Prefix()
	prefix[0] ^= 0xFF

	_, err = NewDecryptSession(prefix, masterKey)
	if !errors.Is(err, ferr.InvalidFormat) {
		t.Errorf("NewDecryptSession() error kind = %v, want InvalidFormat", ferr.Of(err))
	}
}
