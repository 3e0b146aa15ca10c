// Package chunker computes a file's chunk manifest — per-chunk BLAKE3
// hashes and a Merkle root over them — independent of whatever encryption
// or FEC layer a transfer session applies on top of those chunks.
package chunker

import (
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/nimbusvault/filecore/internal/ferr"
)

// ComputeManifest streams path once, hashing each ChunkSize-sized
// plaintext chunk with BLAKE3 and recording its index, hash, and length.
// An empty file produces exactly one zero-length chunk (the hash of
// empty input) so the Merkle root is always defined.
func ComputeManifest(path string, opts ChunkOptions) (*Manifest, error) {
	if opts.ChunkSize <= 0 {
		opts = DefaultChunkOptions()
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, ferr.Wrap(ferr.FileNotFound, "compute manifest: open file failed", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, ferr.Wrap(ferr.IOFailed, "compute manifest: stat file failed", err)
	}

	sessionID := uuid.New().String()
	fileName := filepath.Base(path)

	if info.Size() == 0 {
		hash := blake3.New().Sum(nil)
		hashB64 := base64.StdEncoding.EncodeToString(hash)
		merkleRoot, err := ComputeMerkleRoot([]string{hashB64})
		if err != nil {
			return nil, err
		}
		return &Manifest{
			SessionID:  sessionID,
			FileName:   fileName,
			FileSize:   0,
			ChunkSize:  opts.ChunkSize,
			ChunkCount: 1,
			HashAlgo:   "BLAKE3",
			Chunks:     []ChunkDescriptor{{Index: 0, Hash: hashB64, Length: 0}},
			MerkleRoot: merkleRoot,
			CreatedAt:  time.Now(),
		}, nil
	}

	var chunks []ChunkDescriptor
	var chunkHashes []string
	buffer := make([]byte, opts.ChunkSize)

	for i := 0; ; i++ {
		n, readErr := io.ReadFull(file, buffer)
		if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
			return nil, ferr.Wrap(ferr.IOFailed, "compute manifest: read chunk failed", readErr)
		}
		if n == 0 {
			break
		}

		hasher := blake3.New()
		hasher.Write(buffer[:n])
		hash := hasher.Sum(nil)
		hashB64 := base64.StdEncoding.EncodeToString(hash)

		chunks = append(chunks, ChunkDescriptor{Index: i, Hash: hashB64, Length: n})
		chunkHashes = append(chunkHashes, hashB64)

		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}
	}

	merkleRoot, err := ComputeMerkleRoot(chunkHashes)
	if err != nil {
		return nil, err
	}

	return &Manifest{
		SessionID:  sessionID,
		FileName:   fileName,
		FileSize:   info.Size(),
		ChunkSize:  opts.ChunkSize,
		ChunkCount: len(chunks),
		HashAlgo:   "BLAKE3",
		Chunks:     chunks,
		MerkleRoot: merkleRoot,
		CreatedAt:  time.Now(),
	}, nil
}
