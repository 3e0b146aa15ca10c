package crypto

import (
	"bytes"
	"errors"
	"testing"

	"github.com/nimbusvault/filecore/internal/ferr"
)

// TestEncryptDecryptWholeRoundTrip tests the whole-buffer convenience
// wrappers across a buffer spanning several WholeFileChunkSize chunks.
func TestEncryptDecryptWholeRoundTrip(t *testing.T) {
	masterKey, _ := RandomBytes(KeySize)
	plaintext := bytes.Repeat([]byte("0123456789abcdef"), (WholeFileChunkSize/16)*3+7)

	var progressCalls int
	container, err := EncryptWhole(plaintext, masterKey[:], func(done, total int64) {
		progressCalls++
		if done > total {
			t.Errorf("progress done %d exceeds total %d", done, total)
		}
	})
	if err != nil {
		t.Fatalf("EncryptWhole() failed: %v", err)
	}
	if progressCalls == 0 {
		t.Error("EncryptWhole() never reported progress")
	}

	got, err := DecryptWhole(container, masterKey[:], nil)
	if err != nil {
		t.Fatalf("DecryptWhole() failed: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Error("decrypted buffer does not match original plaintext")
	}
}

// TestEncryptDecryptWholeEmptyBuffer tests the empty-buffer edge case:
// exactly one (empty) chunk is emitted and round-trips to zero bytes.
func TestEncryptDecryptWholeEmptyBuffer(t *testing.T) {
	masterKey, _ := RandomBytes(KeySize)

	container, err := EncryptWhole(nil, masterKey[:], nil)
	if err != nil {
		t.Fatalf("EncryptWhole() failed: %v", err)
	}

	got, err := DecryptWhole(container, masterKey[:], nil)
	if err != nil {
		t.Fatalf("DecryptWhole() failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("decrypted empty buffer has length %d, want 0", len(got))
	}
}

// TestDecryptWholeRejectsTruncatedContainer tests that a container cut off
// mid-frame is reported as InvalidFormat rather than panicking.
func TestDecryptWholeRejectsTruncatedContainer(t *testing.T) {
	masterKey, _ := RandomBytes(KeySize)
	container, err := EncryptWhole([]byte("some plaintext data"), masterKey[:], nil)
	if err != nil {
		t.Fatalf("EncryptWhole() failed: %v", err)
	}

	truncated := container[:len(container)-5]
	_, err = DecryptWhole(truncated, masterKey[:], nil)
	if !errors.Is(err, ferr.InvalidFormat) {
		t.Errorf("DecryptWhole() error kind = %v, want InvalidFormat", ferr.Of(err))
	}
}

// TestDecryptWholeRejectsOutOfOrderChunks tests that swapping two frames
// is detected as an ordering violation rather than silently decrypting
// out of sequence.
func TestDecryptWholeRejectsOutOfOrderChunks(t *testing.T) {
	masterKey, _ := RandomBytes(KeySize)
	plaintext := bytes.Repeat([]byte("x"), WholeFileChunkSize*2+10)

	enc, err := NewEncryptSession(masterKey[:], nil)
	if err != nil {
		t.Fatalf("NewEncryptSession() failed: %v", err)
	}
	defer enc.Finalize()

	frame0, err := enc.EncryptChunk(plaintext[:WholeFileChunkSize], 0)
	if err != nil {
		t.Fatalf("EncryptChunk(0) failed: %v", err)
	}
	frame1, err := enc.EncryptChunk(plaintext[WholeFileChunkSize:], 1)
	if err != nil {
		t.Fatalf("EncryptChunk(1) failed: %v", err)
	}

	var container bytes.Buffer
	container.Write(enc.Prefix())
	container.Write(frame1)
	container.Write(frame0)

	_, err = DecryptWhole(container.Bytes(), masterKey[:], nil)
	if !errors.Is(err, ferr.InvalidFormat) {
		t.Errorf("DecryptWhole() error kind = %v, want InvalidFormat", ferr.Of(err))
	}
}
