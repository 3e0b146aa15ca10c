package crypto

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"

	"github.com/nimbusvault/filecore/internal/ferr"
)

// DefaultPBKDF2Iterations is a conservative default iteration count for
// interactive passphrase unlock. Callers storing long-lived keys should
// prefer a larger, explicitly-chosen count (see DeriveMasterKeyN).
const DefaultPBKDF2Iterations = 600_000

// DeriveMasterKey derives a 32-byte AES-256 master key from a passphrase
// and caller-supplied salt using PBKDF2-HMAC-SHA-256 at
// DefaultPBKDF2Iterations.
func DeriveMasterKey(passphrase string, salt []byte) [KeySize]byte {
	return DeriveMasterKeyN(passphrase, salt, DefaultPBKDF2Iterations)
}

// DeriveMasterKeyN is DeriveMasterKey with an explicit iteration count.
func DeriveMasterKeyN(passphrase string, salt []byte, iterations int) [KeySize]byte {
	var key [KeySize]byte
	derived := pbkdf2.Key([]byte(passphrase), salt, iterations, KeySize, sha256.New)
	copy(key[:], derived)
	return key
}

// NewSalt draws a fresh 32-byte PBKDF2 salt from the system CSPRNG.
func NewSalt() ([]byte, error) {
	salt, err := RandomBytes(32)
	if err != nil {
		return nil, ferr.Wrap(ferr.EncryptionFailed, "salt generation failed", err)
	}
	return salt, nil
}
