package crypto

import (
	"github.com/nimbusvault/filecore/internal/ferr"
)

type sessionState int

const (
	stateOpen sessionState = iota
	stateClosed
)

// EncryptSession drives chunk-by-chunk authenticated encryption into the
// container format of container.go. It owns the file-encryption key for
// its lifetime and zeroes it on Finalize.
//
// Lifecycle: NewEncryptSession (open) → repeated EncryptChunk calls →
// Finalize (closed). Finalize is idempotent and safe to call on a session
// that failed during Init.
type EncryptSession struct {
	state      sessionState
	fek        [KeySize]byte
	header     [HeaderSize]byte
	wrappedFEK []byte
}

// NewEncryptSession opens a session under masterKey. If fek is nil a fresh
// 32-byte FEK is drawn from the CSPRNG; otherwise the caller-supplied FEK
// is used (e.g. to re-encrypt a manifest-pinned key). The header and
// wrapped-FEK bytes are computed immediately and available via Prefix().
func NewEncryptSession(masterKey []byte, fek []byte) (*EncryptSession, error) {
	if len(masterKey) != KeySize {
		return nil, ferr.New(ferr.InvalidKeySize, "encrypt session: master key must be 32 bytes")
	}

	s := &EncryptSession{state: stateOpen}

	if fek == nil {
		drawn, err := RandomBytes(KeySize)
		if err != nil {
			return nil, err
		}
		copy(s.fek[:], drawn)
	} else {
		if len(fek) != KeySize {
			return nil, ferr.New(ferr.InvalidKeySize, "encrypt session: fek must be 32 bytes")
		}
		copy(s.fek[:], fek)
	}

	wrapped, err := WrapFEK(s.fek[:], masterKey)
	if err != nil {
		return nil, err
	}
	s.wrappedFEK = wrapped
	s.header = BuildHeader(uint32(len(wrapped)))

	return s, nil
}

// Prefix returns the header ‖ wrapped-FEK bytes that must be emitted before
// any ciphertext chunk — the file's fixed prefix.
func (s *EncryptSession) Prefix() []byte {
	prefix := make([]byte, 0, HeaderSize+len(s.wrappedFEK))
	prefix = append(prefix, s.header[:]...)
	prefix = append(prefix, s.wrappedFEK...)
	return prefix
}

// EncryptChunk draws a fresh nonce and encrypts plaintext into a chunk
// frame tagged with index. The caller must supply index = 0, 1, 2, …
// monotonically; the session does not enforce this. DecryptSession does not
// check the order either: it returns each frame's index, and callers such
// as DecryptWhole reject frames whose index is out of sequence.
func (s *EncryptSession) EncryptChunk(plaintext []byte, index uint32) ([]byte, error) {
	if s.state != stateOpen {
		return nil, ferr.New(ferr.EncryptionFailed, "encrypt session: chunk encrypted after finalize")
	}

	nonceBytes, err := RandomBytes(NonceSize)
	if err != nil {
		return nil, err
	}
	var nonce [NonceSize]byte
	copy(nonce[:], nonceBytes)

	ciphertext, err := Seal(s.fek[:], nonce[:], nil, plaintext)
	if err != nil {
		return nil, err
	}

	return BuildChunkFrame(index, nonce, ciphertext), nil
}

// Finalize zeroes the FEK and releases the session. Idempotent.
func (s *EncryptSession) Finalize() {
	if s == nil || s.state == stateClosed {
		return
	}
	zero(s.fek[:])
	s.state = stateClosed
}

// DecryptSession is the inverse state machine: it unwraps the FEK from a
// caller-supplied prefix and decrypts chunk frames one at a time.
type DecryptSession struct {
	state sessionState
	fek   [KeySize]byte
}

// NewDecryptSession parses prefixBytes (which must begin with the 12-byte
// header followed by the wrapped FEK), unwraps the FEK under masterKey,
// and opens the session. Magic mismatch, version mismatch, or unwrap
// failure all report InvalidFormat.
func NewDecryptSession(prefixBytes, masterKey []byte) (*DecryptSession, error) {
	if len(masterKey) != KeySize {
		return nil, ferr.New(ferr.InvalidKeySize, "decrypt session: master key must be 32 bytes")
	}

	magic, version, wrappedLen, err := ParseHeader(prefixBytes)
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, ferr.New(ferr.InvalidFormat, "decrypt session: bad magic")
	}
	if version != Version {
		return nil, ferr.New(ferr.InvalidFormat, "decrypt session: unsupported version")
	}
	if uint32(len(prefixBytes)) < HeaderSize+wrappedLen {
		return nil, ferr.New(ferr.InvalidFormat, "decrypt session: prefix shorter than header+wrapped fek")
	}

	wrapped := prefixBytes[HeaderSize : HeaderSize+wrappedLen]
	fek, err := UnwrapFEK(wrapped, masterKey)
	if err != nil {
		return nil, ferr.Wrap(ferr.InvalidFormat, "decrypt session: unwrap fek failed", err)
	}
	if len(fek) != KeySize {
		return nil, ferr.New(ferr.InvalidFormat, "decrypt session: unwrapped fek has wrong size")
	}

	s := &DecryptSession{state: stateOpen}
	copy(s.fek[:], fek)
	zero(fek)
	return s, nil
}

// DecryptChunk parses and decrypts one chunk frame. A failing tag reports
// DecryptionFailed. The frame's index field is returned but not
// cross-checked against a running counter — callers who need strict
// monotonic enforcement (as download.Session does) check it themselves.
func (s *DecryptSession) DecryptChunk(frame []byte) (plaintext []byte, index uint32, err error) {
	if s.state != stateOpen {
		return nil, 0, ferr.New(ferr.DecryptionFailed, "decrypt session: chunk decrypted after finalize")
	}

	index, nonce, ciphertext, err := ParseChunkFrame(frame)
	if err != nil {
		return nil, 0, err
	}

	plaintext, err = Open(s.fek[:], nonce[:], nil, ciphertext)
	if err != nil {
		return nil, 0, err
	}
	return plaintext, index, nil
}

// Finalize zeroes the FEK and releases the session. Idempotent.
func (s *DecryptSession) Finalize() {
	if s.state == stateClosed {
		return
	}
	zero(s.fek[:])
	s.state = stateClosed
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
