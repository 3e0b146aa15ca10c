package crypto

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"

	"golang.org/x/crypto/argon2"

	"github.com/nimbusvault/filecore/internal/crypto/identity"
	"github.com/nimbusvault/filecore/internal/ferr"
)

const (
	argon2Time    = 3
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2SaltLen = 32
)

// KeystoreEntry is the on-disk, passphrase-wrapped form of an identity
// keypair. Salt and WrappedPrivate are both base64-encoded so the whole
// struct round-trips cleanly through encoding/json.
type KeystoreEntry struct {
	Public         string `json:"public"`
	Salt           string `json:"salt"`
	WrappedPrivate string `json:"wrapped_private"`
}

// GetDefaultKeystorePath returns ~/.filecore/identity.json, creating the
// parent directory if necessary.
func GetDefaultKeystorePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", ferr.Wrap(ferr.IOFailed, "keystore: resolve home dir failed", err)
	}
	dir := filepath.Join(home, ".filecore")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", ferr.Wrap(ferr.IOFailed, "keystore: create keystore dir failed", err)
	}
	return filepath.Join(dir, "identity.json"), nil
}

// deriveKeystoreKey stretches a passphrase into a 32-byte AES-256 key with
// Argon2id, using parameters chosen for interactive unlock (time=3,
// 64 MiB memory, 4 threads).
func deriveKeystoreKey(passphrase string, salt []byte) [KeySize]byte {
	var key [KeySize]byte
	derived := argon2.IDKey([]byte(passphrase), salt, argon2Time, argon2Memory, argon2Threads, KeySize)
	copy(key[:], derived)
	return key
}

// insecureSuffix marks a keystore entry saved with an empty passphrase: the
// private key is stored unwrapped. LoadIdentity still accepts the plain path
// too, so callers don't need to know which form is on disk.
const insecureSuffix = ".insecure"

// SaveIdentity wraps kp.Private under a passphrase-derived Argon2id key and
// writes it as JSON to path. An empty passphrase skips wrapping entirely and
// writes path+".insecure" instead, for test fixtures that don't want an
// interactive prompt.
func SaveIdentity(path string, kp *identity.Ed25519KeyPair, passphrase string) error {
	if passphrase == "" {
		return saveInsecureIdentity(path+insecureSuffix, kp)
	}

	salt, err := RandomBytes(argon2SaltLen)
	if err != nil {
		return err
	}
	key := deriveKeystoreKey(passphrase, salt)
	defer zero(key[:])

	nonce, err := RandomBytes(NonceSize)
	if err != nil {
		return err
	}
	ciphertext, err := Seal(key[:], nonce, nil, kp.Private)
	if err != nil {
		return ferr.Wrap(ferr.EncryptionFailed, "keystore: wrap private key failed", err)
	}
	wrapped := append(nonce, ciphertext...)

	entry := KeystoreEntry{
		Public:         base64.StdEncoding.EncodeToString(kp.Public),
		Salt:           base64.StdEncoding.EncodeToString(salt),
		WrappedPrivate: base64.StdEncoding.EncodeToString(wrapped),
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return ferr.Wrap(ferr.IOFailed, "keystore: marshal entry failed", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return ferr.Wrap(ferr.IOFailed, "keystore: write entry failed", err)
	}
	return nil
}

// saveInsecureIdentity writes kp's private key to path unencrypted, base64
// alongside the public key in the same KeystoreEntry shape (Salt and
// WrappedPrivate left empty distinguishes the form on load).
func saveInsecureIdentity(path string, kp *identity.Ed25519KeyPair) error {
	entry := KeystoreEntry{
		Public:         base64.StdEncoding.EncodeToString(kp.Public),
		WrappedPrivate: base64.StdEncoding.EncodeToString(kp.Private),
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return ferr.Wrap(ferr.IOFailed, "keystore: marshal insecure entry failed", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return ferr.Wrap(ferr.IOFailed, "keystore: write insecure entry failed", err)
	}
	return nil
}

// LoadIdentity reads and unwraps the identity keypair stored at path under
// passphrase. A wrong passphrase surfaces as DecryptionFailed. If path
// doesn't exist but path+".insecure" does, the insecure form is loaded
// instead (passphrase is ignored in that case).
func LoadIdentity(path string, passphrase string) (*identity.Ed25519KeyPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if insecureData, insecureErr := os.ReadFile(path + insecureSuffix); insecureErr == nil {
			return loadInsecureIdentity(insecureData)
		}
		return nil, ferr.Wrap(ferr.FileNotFound, "keystore: read entry failed", err)
	}

	var entry KeystoreEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, ferr.Wrap(ferr.InvalidFormat, "keystore: parse entry failed", err)
	}

	pub, err := base64.StdEncoding.DecodeString(entry.Public)
	if err != nil {
		return nil, ferr.Wrap(ferr.InvalidFormat, "keystore: decode public key failed", err)
	}
	salt, err := base64.StdEncoding.DecodeString(entry.Salt)
	if err != nil {
		return nil, ferr.Wrap(ferr.InvalidFormat, "keystore: decode salt failed", err)
	}
	wrapped, err := base64.StdEncoding.DecodeString(entry.WrappedPrivate)
	if err != nil {
		return nil, ferr.Wrap(ferr.InvalidFormat, "keystore: decode wrapped private key failed", err)
	}
	if len(wrapped) < NonceSize+TagSize {
		return nil, ferr.New(ferr.InvalidFormat, "keystore: wrapped private key too short")
	}

	key := deriveKeystoreKey(passphrase, salt)
	defer zero(key[:])

	nonce := wrapped[:NonceSize]
	ciphertext := wrapped[NonceSize:]
	priv, err := Open(key[:], nonce, nil, ciphertext)
	if err != nil {
		return nil, err
	}

	return &identity.Ed25519KeyPair{Public: pub, Private: priv}, nil
}

func loadInsecureIdentity(data []byte) (*identity.Ed25519KeyPair, error) {
	var entry KeystoreEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, ferr.Wrap(ferr.InvalidFormat, "keystore: parse insecure entry failed", err)
	}
	pub, err := base64.StdEncoding.DecodeString(entry.Public)
	if err != nil {
		return nil, ferr.Wrap(ferr.InvalidFormat, "keystore: decode public key failed", err)
	}
	priv, err := base64.StdEncoding.DecodeString(entry.WrappedPrivate)
	if err != nil {
		return nil, ferr.Wrap(ferr.InvalidFormat, "keystore: decode private key failed", err)
	}
	return &identity.Ed25519KeyPair{Public: pub, Private: priv}, nil
}
