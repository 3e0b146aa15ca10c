package upload

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nimbusvault/filecore/internal/crypto"
	"github.com/nimbusvault/filecore/internal/ferr"
	"github.com/nimbusvault/filecore/internal/transfer/cancel"
)

func writeTempFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.bin")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	return path
}

// TestUploadPlaintextRoundTrip tests an unencrypted upload reproduces the
// source file's bytes through the data callback.
func TestUploadPlaintextRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("hello-world-"), 10000)
	path := writeTempFile(t, data)

	sess, err := Open(path, Options{ChunkSize: 4096})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer sess.Finalize()

	var collected bytes.Buffer
	for {
		n, err := sess.ProcessChunk(func(chunk []byte) error {
			collected.Write(chunk)
			return nil
		})
		if err != nil {
			t.Fatalf("ProcessChunk() failed: %v", err)
		}
		if n == 0 {
			break
		}
	}

	if !bytes.Equal(collected.Bytes(), data) {
		t.Error("collected chunks do not match source file")
	}
}

// TestUploadEncryptedFirstChunkIsPrefix tests that the first callback
// invocation under encryption delivers the header+wrapped-FEK prefix.
func TestUploadEncryptedFirstChunkIsPrefix(t *testing.T) {
	masterKey, _ := crypto.RandomBytes(crypto.KeySize)
	path := writeTempFile(t, []byte("some plaintext content"))

	sess, err := Open(path, Options{ChunkSize: 4096, ShouldEncrypt: true, MasterKey: masterKey})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer sess.Finalize()

	var first []byte
	n, err := sess.ProcessChunk(func(chunk []byte) error {
		first = append([]byte{}, chunk...)
		return nil
	})
	if err != nil {
		t.Fatalf("ProcessChunk() failed: %v", err)
	}
	if n != 0 {
		t.Errorf("bytes read on prefix call = %d, want 0", n)
	}
	if len(first) < crypto.HeaderSize {
		t.Fatalf("prefix shorter than header: %d bytes", len(first))
	}
	if _, _, _, err := crypto.ParseHeader(first); err != nil {
		t.Errorf("prefix does not parse as a valid header: %v", err)
	}
}

// TestUploadRejectsPreCancelledToken tests that a cancelled token stops
// the very first ProcessChunk call.
func TestUploadRejectsPreCancelledToken(t *testing.T) {
	path := writeTempFile(t, []byte("data"))
	tok := cancel.New()
	tok.Cancel()

	sess, err := Open(path, Options{ChunkSize: 4096, Token: tok})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer sess.Finalize()

	_, err = sess.ProcessChunk(func([]byte) error { return nil })
	if !errors.Is(err, ferr.Cancelled) {
		t.Fatalf("ProcessChunk() error = %v, want Cancelled", err)
	}
}

// TestUploadFinalizeIdempotent tests that Finalize can be called more
// than once without error.
func TestUploadFinalizeIdempotent(t *testing.T) {
	path := writeTempFile(t, []byte("data"))
	sess, err := Open(path, Options{ChunkSize: 4096})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := sess.Finalize(); err != nil {
		t.Fatalf("first Finalize() failed: %v", err)
	}
	if err := sess.Finalize(); err != nil {
		t.Fatalf("second Finalize() failed: %v", err)
	}
}

// TestUploadComputeManifest tests that requesting a manifest populates
// Session.Manifest() with a chunk count matching the file size.
func TestUploadComputeManifest(t *testing.T) {
	data := bytes.Repeat([]byte("m"), 4096*3+10)
	path := writeTempFile(t, data)

	sess, err := Open(path, Options{ChunkSize: 4096, ComputeManifest: true})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer sess.Finalize()

	manifest := sess.Manifest()
	if manifest == nil {
		t.Fatal("Manifest() = nil, want a computed manifest")
	}
	if manifest.ChunkCount != 4 {
		t.Errorf("ChunkCount = %d, want 4", manifest.ChunkCount)
	}
	if manifest.FileSize != int64(len(data)) {
		t.Errorf("FileSize = %d, want %d", manifest.FileSize, len(data))
	}
}
