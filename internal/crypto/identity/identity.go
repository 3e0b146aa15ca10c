// Package identity handles long-lived peer identity: Ed25519 signing
// keypairs, X25519 key-exchange keypairs, the ECDH + HKDF derivation that
// turns a peer exchange into a session's payload/control keys, and the
// deterministic nonce schedule chunks and control frames draw from those
// session keys.
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"hash"
	"io"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"

	"github.com/nimbusvault/filecore/internal/ferr"
)

func sha256New() hash.Hash { return sha256.New() }

const (
	// sessionKeyMaterialLen is PayloadKey(32) + ControlKey(32) + IVBase(12).
	sessionKeyMaterialLen = 32 + 32 + 12
	sessionHKDFInfo       = "filecore-v1-session"
)

// Ed25519KeyPair is a long-lived signing identity.
type Ed25519KeyPair struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

// GenerateEd25519 draws a fresh Ed25519 identity keypair.
func GenerateEd25519() (*Ed25519KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, ferr.Wrap(ferr.EncryptionFailed, "ed25519 keygen failed", err)
	}
	return &Ed25519KeyPair{Public: pub, Private: priv}, nil
}

// X25519KeyPair is a key-exchange identity used for one ECDH handshake.
type X25519KeyPair struct {
	Public  [32]byte
	Private [32]byte
}

// GenerateX25519 draws a fresh X25519 key-exchange keypair.
func GenerateX25519() (*X25519KeyPair, error) {
	var priv [32]byte
	if _, err := io.ReadFull(rand.Reader, priv[:]); err != nil {
		return nil, ferr.Wrap(ferr.EncryptionFailed, "x25519 keygen failed", err)
	}
	pub, err := curve25519.X25519(priv[:], curve25519.Basepoint)
	if err != nil {
		return nil, ferr.Wrap(ferr.EncryptionFailed, "x25519 basepoint mult failed", err)
	}
	var kp X25519KeyPair
	kp.Private = priv
	copy(kp.Public[:], pub)
	return &kp, nil
}

// X25519Exchange computes the shared secret for ourPriv against theirPub.
func X25519Exchange(ourPriv, theirPub *[32]byte) ([]byte, error) {
	shared, err := curve25519.X25519(ourPriv[:], theirPub[:])
	if err != nil {
		return nil, ferr.Wrap(ferr.EncryptionFailed, "x25519 exchange failed", err)
	}
	return shared, nil
}

// SessionKeys are the three values an X25519 handshake derives: a key for
// chunk payloads, a key for control/metadata frames, and a base IV that
// DeriveChunkNonce and DeriveControlNonce offset deterministically.
type SessionKeys struct {
	PayloadKey [32]byte
	ControlKey [32]byte
	IVBase     [12]byte
}

// DeriveSessionKeys performs an X25519 ECDH exchange between ourPriv and
// theirPub, then stretches the shared secret through HKDF-SHA256 (salt,
// domain-separated by sessionHKDFInfo) into PayloadKey ‖ ControlKey ‖
// IVBase. salt is typically a manifest's Merkle root or a fresh random
// value agreed out of band; either is acceptable since mixing it into the
// HKDF salt is what matters, not its secrecy.
func DeriveSessionKeys(ourPriv, theirPub *[32]byte, salt []byte) (*SessionKeys, error) {
	shared, err := X25519Exchange(ourPriv, theirPub)
	if err != nil {
		return nil, err
	}

	kdf := hkdf.New(sha256New, shared, salt, []byte(sessionHKDFInfo))
	material := make([]byte, sessionKeyMaterialLen)
	if _, err := io.ReadFull(kdf, material); err != nil {
		return nil, ferr.Wrap(ferr.EncryptionFailed, "session key hkdf expand failed", err)
	}

	var keys SessionKeys
	copy(keys.PayloadKey[:], material[0:32])
	copy(keys.ControlKey[:], material[32:64])
	copy(keys.IVBase[:], material[64:76])
	return &keys, nil
}

// DeriveNonce XORs base with a little-endian counter to produce a
// deterministic per-frame nonce. Two distinct counters under the same base
// never collide as long as the counter space (2^32 here) isn't exhausted,
// which is why chunk and control nonces offset the counter space instead
// of sharing it — see DeriveChunkNonce and DeriveControlNonce.
func DeriveNonce(base [12]byte, counter uint64) [12]byte {
	var ctr [12]byte
	binary.LittleEndian.PutUint64(ctr[0:8], counter)

	var out [12]byte
	for i := range base {
		out[i] = base[i] ^ ctr[i]
	}
	return out
}

// DeriveChunkNonce derives the nonce for payload chunk index under a
// session's IVBase. Chunk counters occupy [0, 2^32) of the counter space,
// since index is a uint32.
func DeriveChunkNonce(ivBase [12]byte, index uint32) [12]byte {
	return DeriveNonce(ivBase, uint64(index))
}

// DeriveControlNonce derives the nonce for control-frame sequence number
// seq under a session's IVBase. Control counters are offset by 2^32, into
// [2^32, 2^33) of the counter space, so they can never collide with a chunk nonce
// produced by DeriveChunkNonce under the same base, even though both
// counters are drawn independently starting from zero.
func DeriveControlNonce(ivBase [12]byte, seq uint32) [12]byte {
	const controlOffset uint64 = 1 << 32
	return DeriveNonce(ivBase, controlOffset+uint64(seq))
}
