package chunker

import (
	"encoding/base64"

	"github.com/zeebo/blake3"

	"github.com/nimbusvault/filecore/internal/ferr"
)

// ComputeMerkleRoot builds a bottom-up binary Merkle tree over
// base64-encoded BLAKE3 chunk hashes. An odd node at any level is
// duplicated against itself rather than promoted unchanged, so every
// internal node is always the hash of exactly two children. A single leaf
// is likewise paired with itself, so the root is never a raw chunk hash.
func ComputeMerkleRoot(chunkHashes []string) (string, error) {
	if len(chunkHashes) == 0 {
		return "", nil
	}

	level := make([][]byte, len(chunkHashes))
	for i, h := range chunkHashes {
		decoded, err := base64.StdEncoding.DecodeString(h)
		if err != nil {
			return "", ferr.Wrap(ferr.InvalidFormat, "merkle: decode chunk hash failed", err)
		}
		level[i] = decoded
	}

	for first := true; first || len(level) > 1; first = false {
		next := make([][]byte, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			var combined []byte
			if i+1 < len(level) {
				combined = append(append([]byte{}, level[i]...), level[i+1]...)
			} else {
				combined = append(append([]byte{}, level[i]...), level[i]...)
			}
			hasher := blake3.New()
			hasher.Write(combined)
			next = append(next, hasher.Sum(nil))
		}
		level = next
	}

	return base64.StdEncoding.EncodeToString(level[0]), nil
}

// VerifyMerkle recomputes the Merkle root over receivedHashes and checks it
// against manifest.MerkleRoot.
func VerifyMerkle(manifest *Manifest, receivedHashes []string) (bool, error) {
	root, err := ComputeMerkleRoot(receivedHashes)
	if err != nil {
		return false, err
	}
	return root == manifest.MerkleRoot, nil
}
