package crypto

import (
	"bytes"
	"testing"
)

// TestBuildParseHeaderRoundTrip tests that ParseHeader inverts BuildHeader.
func TestBuildParseHeaderRoundTrip(t *testing.T) {
	header := BuildHeader(60)
	magic, version, wrappedLen, err := ParseHeader(header[:])
	if err != nil {
		t.Fatalf("ParseHeader() failed: %v", err)
	}
	if magic != Magic {
		t.Errorf("magic = %#x, want %#x", magic, Magic)
	}
	if version != Version {
		t.Errorf("version = %d, want %d", version, Version)
	}
	if wrappedLen != 60 {
		t.Errorf("wrappedLen = %d, want 60", wrappedLen)
	}
}

// TestParseHeaderRejectsShortInput tests the length guard.
func TestParseHeaderRejectsShortInput(t *testing.T) {
	if _, _, _, err := ParseHeader(make([]byte, 4)); err == nil {
		t.Error("ParseHeader() on short input succeeded, want error")
	}
}

// TestWrapUnwrapFEKRoundTrip tests that UnwrapFEK inverts WrapFEK.
func TestWrapUnwrapFEKRoundTrip(t *testing.T) {
	masterKey, _ := RandomBytes(KeySize)
	fek, _ := RandomBytes(KeySize)

	wrapped, err := WrapFEK(fek, masterKey)
	if err != nil {
		t.Fatalf("WrapFEK() failed: %v", err)
	}

	got, err := UnwrapFEK(wrapped, masterKey)
	if err != nil {
		t.Fatalf("UnwrapFEK() failed: %v", err)
	}
	if !bytes.Equal(got, fek) {
		t.Error("unwrapped fek does not match original")
	}
}

// TestUnwrapFEKRejectsWrongKey tests that unwrapping under the wrong
// master key fails.
func TestUnwrapFEKRejectsWrongKey(t *testing.T) {
	masterKey, _ := RandomBytes(KeySize)
	otherKey, _ := RandomBytes(KeySize)
	fek, _ := RandomBytes(KeySize)

	wrapped, err := WrapFEK(fek, masterKey)
	if err != nil {
		t.Fatalf("WrapFEK() failed: %v", err)
	}
	if _, err := UnwrapFEK(wrapped, otherKey); err == nil {
		t.Error("UnwrapFEK() under wrong key succeeded, want error")
	}
}

// TestBuildParseChunkFrameRoundTrip tests that ParseChunkFrame inverts
// BuildChunkFrame.
func TestBuildParseChunkFrameRoundTrip(t *testing.T) {
	var nonce [NonceSize]byte
	copy(nonce[:], []byte("123456789012"))
	ciphertext := append([]byte("payload"), make([]byte, TagSize)...)

	frame := BuildChunkFrame(7, nonce, ciphertext)
	index, gotNonce, gotCiphertext, err := ParseChunkFrame(frame)
	if err != nil {
		t.Fatalf("ParseChunkFrame() failed: %v", err)
	}
	if index != 7 {
		t.Errorf("index = %d, want 7", index)
	}
	if gotNonce != nonce {
		t.Error("nonce does not round-trip")
	}
	if !bytes.Equal(gotCiphertext, ciphertext) {
		t.Error("ciphertext does not round-trip")
	}
}

// TestParseChunkFrameRejectsTruncated tests the length guards.
func TestParseChunkFrameRejectsTruncated(t *testing.T) {
	if _, _, _, err := ParseChunkFrame(make([]byte, 10)); err == nil {
		t.Error("ParseChunkFrame() on short input succeeded, want error")
	}

	var nonce [NonceSize]byte
	frame := BuildChunkFrame(0, nonce, make([]byte, TagSize))
	frame = frame[:len(frame)-1]
	if _, _, _, err := ParseChunkFrame(frame); err == nil {
		t.Error("ParseChunkFrame() with mismatched length field succeeded, want error")
	}
}
