package relay

import (
	"bytes"
	"errors"
	"testing"

	"github.com/nimbusvault/filecore/internal/transfer/cancel"
)

// TestRunCopiesAllChunks tests that Run forwards every chunk the read
// callback produces to the write callback, in order.
func TestRunCopiesAllChunks(t *testing.T) {
	data := bytes.Repeat([]byte("relay-"), 20000)
	pos := 0
	read := func(buf []byte) (int, error) {
		if pos >= len(data) {
			return 0, nil
		}
		n := copy(buf, data[pos:])
		pos += n
		return n, nil
	}

	var collected bytes.Buffer
	write := func(p []byte) error {
		collected.Write(p)
		return nil
	}

	done, err := Run(read, write, Options{BufferSize: 64 * 1024, Total: int64(len(data))})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if done != int64(len(data)) {
		t.Errorf("done = %d, want %d", done, len(data))
	}
	if !bytes.Equal(collected.Bytes(), data) {
		t.Error("relayed bytes do not match source")
	}
}

// TestRunStopsOnReadFailure tests the flaky-source scenario: the read
// callback succeeds a fixed number of times, then fails; write is called
// exactly as many times as read succeeded, and the accumulated byte count
// reflects exactly those successful reads.
func TestRunStopsOnReadFailure(t *testing.T) {
	const chunkSize = 65536
	chunk := bytes.Repeat([]byte("z"), chunkSize)
	reads := 0
	read := func(buf []byte) (int, error) {
		if reads >= 3 {
			return 0, errors.New("io failure")
		}
		reads++
		return copy(buf, chunk), nil
	}

	writes := 0
	write := func(p []byte) error {
		writes++
		return nil
	}

	done, err := Run(read, write, Options{BufferSize: chunkSize})
	if err == nil {
		t.Fatal("Run() succeeded, want error from flaky source")
	}
	if writes != 3 {
		t.Errorf("writes = %d, want 3", writes)
	}
	if done != int64(3*chunkSize) {
		t.Errorf("done = %d, want %d", done, 3*chunkSize)
	}
}

// TestRunRejectsNilCallbacks tests the required-callback guard.
func TestRunRejectsNilCallbacks(t *testing.T) {
	if _, err := Run(nil, func([]byte) error { return nil }, Options{}); err == nil {
		t.Error("Run() with nil read callback succeeded, want error")
	}
	if _, err := Run(func([]byte) (int, error) { return 0, nil }, nil, Options{}); err == nil {
		t.Error("Run() with nil write callback succeeded, want error")
	}
}

// TestRunStopsOnCancellation tests that a pre-cancelled token halts the
// relay before any callback invocation.
func TestRunStopsOnCancellation(t *testing.T) {
	tok := cancel.New()
	tok.Cancel()

	reads := 0
	read := func(buf []byte) (int, error) {
		reads++
		return 0, nil
	}
	_, err := Run(read, func([]byte) error { return nil }, Options{Token: tok})
	if err == nil {
		t.Fatal("Run() succeeded despite pre-cancellation, want error")
	}
	if reads != 0 {
		t.Errorf("read callback invoked %d times, want 0", reads)
	}
}
