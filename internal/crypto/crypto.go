// Package crypto provides the primitives, container format, and streaming
// session state machines behind filecore's encrypted transfers:
//
//   - AES-256-GCM authenticated encryption over caller-supplied nonces
//   - PBKDF2-HMAC-SHA-256 password-to-key derivation
//   - a fixed container header, wrapped-FEK framing, and per-chunk frames
//   - EncryptSession / DecryptSession state machines driving the above
//     chunk by chunk with at-most-once, per-chunk authentication
//
// Key exchange lives in the identity subpackage; the sessions here only
// deal with a 32-byte master key, however that key was obtained.
// keystore.go stores an identity keypair on disk wrapped under an
// Argon2id passphrase-derived key.
package crypto

const (
	// KeySize is the length in bytes of every AES-256 key this package
	// accepts: master keys, file-encryption keys, derived keys.
	KeySize = 32
	// NonceSize is the GCM nonce length.
	NonceSize = 12
	// TagSize is the GCM authentication tag length appended to ciphertext.
	TagSize = 16
)
