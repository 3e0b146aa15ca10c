package crypto

import (
	"bytes"

	"github.com/nimbusvault/filecore/internal/ferr"
)

// WholeFileChunkSize is the fixed 1 MiB plaintext chunk size used by the
// whole-buffer encrypt/decrypt convenience wrappers.
const WholeFileChunkSize = 1 << 20

// ProgressFunc reports bytes processed against a known total. Either
// EncryptWhole or DecryptWhole calls it once per chunk when non-nil.
type ProgressFunc func(bytesDone, total int64)

// EncryptWhole encrypts an in-memory buffer into
// header ‖ wrapped_fek ‖ frame0 ‖ frame1 ‖ …, using WholeFileChunkSize
// plaintext chunks.
func EncryptWhole(plaintext, masterKey []byte, onProgress ProgressFunc) ([]byte, error) {
	session, err := NewEncryptSession(masterKey, nil)
	if err != nil {
		return nil, err
	}
	defer session.Finalize()

	var out bytes.Buffer
	out.Write(session.Prefix())

	total := int64(len(plaintext))
	var done int64
	index := uint32(0)
	offset := 0
	for {
		end := offset + WholeFileChunkSize
		if end > len(plaintext) {
			end = len(plaintext)
		}
		frame, err := session.EncryptChunk(plaintext[offset:end], index)
		if err != nil {
			return nil, err
		}
		out.Write(frame)

		done += int64(end - offset)
		if onProgress != nil {
			onProgress(done, total)
		}
		index++
		offset = end
		if offset >= len(plaintext) {
			break
		}
	}

	return out.Bytes(), nil
}

// DecryptWhole inverts EncryptWhole, validating that frame indices arrive
// 0, 1, 2, … contiguously.
func DecryptWhole(container, masterKey []byte, onProgress ProgressFunc) ([]byte, error) {
	_, _, wrappedLen, err := ParseHeader(container)
	if err != nil {
		return nil, err
	}

	prefixLen := HeaderSize + int(wrappedLen)
	if prefixLen > len(container) {
		return nil, ferr.New(ferr.InvalidFormat, "container truncated")
	}

	session, err := NewDecryptSession(container[:prefixLen], masterKey)
	if err != nil {
		return nil, err
	}
	defer session.Finalize()

	var out bytes.Buffer
	offset := prefixLen
	total := int64(len(container) - prefixLen)
	var done int64
	wantIndex := uint32(0)

	for offset < len(container) {
		if offset+ChunkFrameHeaderSize > len(container) {
			return nil, ferr.New(ferr.InvalidFormat, "container truncated")
		}
		payloadLen := readPayloadLen(container[offset:])
		frameEnd := offset + ChunkFrameHeaderSize + int(payloadLen)
		if frameEnd > len(container) {
			return nil, ferr.New(ferr.InvalidFormat, "container truncated")
		}

		plaintext, index, err := session.DecryptChunk(container[offset:frameEnd])
		if err != nil {
			return nil, err
		}
		if index != wantIndex {
			return nil, ferr.New(ferr.InvalidFormat, "chunk index out of order")
		}
		wantIndex++

		out.Write(plaintext)
		done += int64(frameEnd - offset)
		if onProgress != nil {
			onProgress(done, total)
		}
		offset = frameEnd
	}

	return out.Bytes(), nil
}

func readPayloadLen(frame []byte) uint32 {
	return uint32(frame[4]) | uint32(frame[5])<<8 | uint32(frame[6])<<16 | uint32(frame[7])<<24
}
