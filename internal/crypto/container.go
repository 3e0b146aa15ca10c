package crypto

import (
	"encoding/binary"

	"github.com/nimbusvault/filecore/internal/ferr"
)

const (
	// Magic is the container's fixed little-endian magic number, "CNER".
	Magic uint32 = 0x434E4552
	// Version is the only container format version this package emits.
	Version uint8 = 1
	// HeaderSize is the fixed 12-byte header: magic(4) + version(1) +
	// reserved(3) + wrapped-FEK length(4).
	HeaderSize = 12
	// WrappedFEKMinLen is the minimum legal wrapped-FEK length: a 12-byte
	// nonce plus a 16-byte GCM tag wrapping a zero-length key (the real
	// minimum in practice is 12+32+16=60 for a 32-byte FEK, but the format
	// itself only requires room for nonce+tag).
	WrappedFEKMinLen = NonceSize + TagSize
	// ChunkFrameHeaderSize is index(4) + payload-length(4) + nonce(12).
	ChunkFrameHeaderSize = 4 + 4 + NonceSize
)

// BuildHeader returns the fixed 12-byte container header for a wrapped-FEK
// of length l. Reserved bytes 5-7 are always zero.
func BuildHeader(l uint32) [HeaderSize]byte {
	var h [HeaderSize]byte
	binary.LittleEndian.PutUint32(h[0:4], Magic)
	h[4] = Version
	// h[5:8] reserved, already zero
	binary.LittleEndian.PutUint32(h[8:12], l)
	return h
}

// ParseHeader reads a 12-byte header with no validation — callers check
// magic and version themselves, per the container format's contract.
func ParseHeader(b []byte) (magic uint32, version uint8, wrappedLen uint32, err error) {
	if len(b) < HeaderSize {
		return 0, 0, 0, ferr.New(ferr.InvalidFormat, "header shorter than 12 bytes")
	}
	magic = binary.LittleEndian.Uint32(b[0:4])
	version = b[4]
	wrappedLen = binary.LittleEndian.Uint32(b[8:12])
	return magic, version, wrappedLen, nil
}

// WrapFEK encrypts a file-encryption key under the master key with a fresh
// nonce, returning nonce‖ciphertext‖tag.
func WrapFEK(fek, masterKey []byte) ([]byte, error) {
	if len(masterKey) != KeySize {
		return nil, ferr.New(ferr.InvalidKeySize, "wrap fek: master key must be 32 bytes")
	}
	nonce, err := RandomBytes(NonceSize)
	if err != nil {
		return nil, err
	}
	ciphertext, err := Seal(masterKey, nonce, nil, fek)
	if err != nil {
		return nil, err
	}
	return append(nonce, ciphertext...), nil
}

// UnwrapFEK decrypts a wrapped FEK produced by WrapFEK. It fails with
// InvalidFormat if the input is too short to contain a nonce and tag, and
// with DecryptionFailed if authentication fails.
func UnwrapFEK(wrapped, masterKey []byte) ([]byte, error) {
	if len(masterKey) != KeySize {
		return nil, ferr.New(ferr.InvalidKeySize, "unwrap fek: master key must be 32 bytes")
	}
	if len(wrapped) < WrappedFEKMinLen {
		return nil, ferr.New(ferr.InvalidFormat, "unwrap fek: wrapped fek shorter than nonce+tag")
	}
	nonce := wrapped[:NonceSize]
	ciphertext := wrapped[NonceSize:]
	return Open(masterKey, nonce, nil, ciphertext)
}

// BuildChunkFrame assembles one chunk frame: index(4) ‖ length(4) ‖
// nonce(12) ‖ ciphertext-with-tag.
func BuildChunkFrame(index uint32, nonce [NonceSize]byte, ciphertext []byte) []byte {
	frame := make([]byte, ChunkFrameHeaderSize+len(ciphertext))
	binary.LittleEndian.PutUint32(frame[0:4], index)
	binary.LittleEndian.PutUint32(frame[4:8], uint32(len(ciphertext)))
	copy(frame[8:20], nonce[:])
	copy(frame[20:], ciphertext)
	return frame
}

// ParseChunkFrame validates and splits a chunk frame into its fields.
func ParseChunkFrame(frame []byte) (index uint32, nonce [NonceSize]byte, ciphertext []byte, err error) {
	if len(frame) < ChunkFrameHeaderSize {
		return 0, nonce, nil, ferr.New(ferr.InvalidFormat, "chunk frame shorter than 20-byte header")
	}
	index = binary.LittleEndian.Uint32(frame[0:4])
	payloadLen := binary.LittleEndian.Uint32(frame[4:8])
	copy(nonce[:], frame[8:20])
	ciphertext = frame[20:]
	if uint32(len(ciphertext)) != payloadLen {
		return 0, nonce, nil, ferr.New(ferr.InvalidFormat, "chunk frame length field does not match payload")
	}
	if payloadLen < TagSize {
		return 0, nonce, nil, ferr.New(ferr.InvalidFormat, "chunk frame payload shorter than gcm tag")
	}
	return index, nonce, ciphertext, nil
}
