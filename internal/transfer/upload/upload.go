// Package upload implements the local-to-remote transfer session: reads
// plaintext off disk, optionally encrypts it chunk by chunk, optionally
// shards each chunk for forward error correction, and surfaces the
// resulting wire frames to the host through a callback. The host is
// responsible for whatever network request carries those frames onward.
package upload

import (
	"io"
	"os"
	"time"

	"github.com/nimbusvault/filecore/internal/chunker"
	"github.com/nimbusvault/filecore/internal/crypto"
	"github.com/nimbusvault/filecore/internal/fec"
	"github.com/nimbusvault/filecore/internal/ferr"
	"github.com/nimbusvault/filecore/internal/observability"
	"github.com/nimbusvault/filecore/internal/transfer/cancel"
	"github.com/nimbusvault/filecore/internal/transfer/progress"
)

// DataCallback receives one wire frame — the header+wrapped-FEK prefix, a
// ciphertext/plaintext chunk, or (with FEC enabled) one Reed-Solomon
// shard of a chunk — to forward to the remote side.
type DataCallback func(chunk []byte) error

// Options configures a Session.
type Options struct {
	MasterKey       []byte // 32 bytes; required iff ShouldEncrypt
	ShouldEncrypt   bool
	ChunkSize       int
	Token           *cancel.Token
	OnProgress      func(bytesDone, total int64)
	ComputeManifest bool

	// FEC, if non-nil, shards every data chunk into FEC.K equal pieces and
	// emits FEC.K+FEC.R total shards per chunk instead of the chunk
	// itself. The prefix frame is never sharded.
	FEC *chunker.FECProfile

	// SessionID, Logger, and Metrics are optional observability hooks; a
	// nil Logger or Metrics disables the corresponding calls.
	SessionID string
	Logger    *observability.Logger
	Metrics   *observability.Metrics
}

// Session drives one upload from a local file path.
type Session struct {
	file       *os.File
	totalBytes int64
	bytesRead  int64
	chunkIndex uint32
	chunkSize  int
	encrypt    *crypto.EncryptSession
	token      *cancel.Token
	throttler  *progress.Throttler
	onProgress func(bytesDone, total int64)
	prefixSent bool
	manifest   *chunker.Manifest
	closed     bool

	fecEncoder *fec.Encoder
	fecK, fecR int

	sessionID string
	logger    *observability.Logger
	metrics   *observability.Metrics
	startedAt time.Time
}

// Open starts an upload session for path. If opts.ComputeManifest is set,
// the whole-file manifest (BLAKE3 chunk hashes, Merkle root) is computed
// up front, before the file is reopened for streaming; this means large
// files are read twice when manifests are requested, which is the
// accepted cost of the manifest being content-addressed rather than
// computed incrementally alongside encryption.
func Open(path string, opts Options) (*Session, error) {
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 1 << 20
	}

	var manifest *chunker.Manifest
	if opts.ComputeManifest {
		m, err := chunker.ComputeManifest(path, chunker.ChunkOptions{ChunkSize: chunkSize})
		if err != nil {
			return nil, err
		}
		manifest = m
		if opts.FEC != nil {
			manifest.FEC = opts.FEC
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, ferr.Wrap(ferr.FileNotFound, "upload: open source file failed", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, ferr.Wrap(ferr.IOFailed, "upload: stat source file failed", err)
	}

	s := &Session{
		file:       file,
		totalBytes: info.Size(),
		chunkSize:  chunkSize,
		token:      opts.Token,
		throttler:  progress.New(progress.DefaultIntervalMS),
		onProgress: opts.OnProgress,
		manifest:   manifest,
		sessionID:  opts.SessionID,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		startedAt:  time.Now(),
	}

	if opts.ShouldEncrypt {
		enc, err := crypto.NewEncryptSession(opts.MasterKey, nil)
		if err != nil {
			file.Close()
			return nil, err
		}
		s.encrypt = enc
	}

	if opts.FEC != nil {
		enc, err := fec.NewEncoder(opts.FEC.K, opts.FEC.R)
		if err != nil {
			file.Close()
			return nil, err
		}
		s.fecEncoder = enc
		s.fecK, s.fecR = opts.FEC.K, opts.FEC.R
	}

	if s.logger != nil {
		totalChunks := 0
		if s.chunkSize > 0 {
			totalChunks = int((s.totalBytes + int64(s.chunkSize) - 1) / int64(s.chunkSize))
		}
		s.logger.TransferStarted(s.sessionID, path, s.totalBytes, totalChunks)
	}
	if s.metrics != nil {
		s.metrics.RecordTransferStart()
	}

	return s, nil
}

// Manifest returns the manifest computed at Open, or nil if none was
// requested.
func (s *Session) Manifest() *chunker.Manifest { return s.manifest }

// ProcessChunk produces the next logical chunk and invokes cb with it, or
// with its FEC shards in turn when FEC is configured. The first call,
// when encryption is enabled, delivers the header+wrapped FEK prefix and
// reads no file data. It returns the number of plaintext bytes just read
// from disk (0 at EOF).
func (s *Session) ProcessChunk(cb DataCallback) (int, error) {
	if s.token.Cancelled() {
		if s.logger != nil {
			s.logger.Cancelled(s.sessionID, s.bytesRead, s.totalBytes)
		}
		return 0, ferr.New(ferr.Cancelled, "upload: cancellation observed")
	}

	if s.encrypt != nil && !s.prefixSent {
		s.prefixSent = true
		if err := cb(s.encrypt.Prefix()); err != nil {
			return 0, ferr.Wrap(ferr.IOFailed, "upload: prefix callback failed", err)
		}
		return 0, nil
	}

	buf := make([]byte, s.chunkSize)
	n, err := io.ReadFull(s.file, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return 0, ferr.Wrap(ferr.IOFailed, "upload: read source file failed", err)
	}
	if n == 0 {
		if s.onProgress != nil {
			s.onProgress(s.bytesRead, s.totalBytes)
		}
		return 0, nil
	}

	out := buf[:n]
	if s.encrypt != nil {
		frame, encErr := s.encrypt.EncryptChunk(buf[:n], s.chunkIndex)
		if encErr != nil {
			return 0, encErr
		}
		out = frame
	}
	chunkIdx := s.chunkIndex
	s.chunkIndex++

	if s.fecEncoder != nil {
		if err := s.emitFECShards(chunkIdx, out, cb); err != nil {
			return 0, err
		}
	} else if err := cb(out); err != nil {
		return 0, ferr.Wrap(ferr.IOFailed, "upload: data callback failed", err)
	}

	if s.logger != nil {
		direction := "plaintext"
		if s.encrypt != nil {
			direction = "encrypt"
		}
		s.logger.ChunkProcessed(s.sessionID, int(chunkIdx), n, direction)
	}
	if s.metrics != nil {
		s.metrics.RecordChunk("sent", n)
	}

	s.bytesRead += int64(n)
	if s.throttler.ShouldUpdate(s.bytesRead, s.bytesRead) && s.onProgress != nil {
		s.onProgress(s.bytesRead, s.totalBytes)
		if s.logger != nil {
			s.logger.Progress(s.sessionID, s.bytesRead, s.totalBytes, 0)
		}
	}

	return n, nil
}

// emitFECShards splits frame into s.fecK data shards, computes s.fecR
// parity shards over them, and delivers all k+r through cb as wire shards
// carrying chunkIdx, shard position, and frame's original length.
func (s *Session) emitFECShards(chunkIdx uint32, frame []byte, cb DataCallback) error {
	dataShards := fec.SplitIntoShards(frame, s.fecK)
	parityShards, err := s.fecEncoder.Encode(dataShards)
	if err != nil {
		return err
	}

	all := append(append([][]byte{}, dataShards...), parityShards...)
	for i, shard := range all {
		wire := fec.EncodeShard(chunkIdx, uint8(i), uint32(len(frame)), shard)
		if err := cb(wire); err != nil {
			return ferr.Wrap(ferr.IOFailed, "upload: FEC shard callback failed", err)
		}
	}
	return nil
}

// Finalize releases the file handle and, if present, the encrypt session.
// Idempotent.
func (s *Session) Finalize() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.encrypt != nil {
		s.encrypt.Finalize()
	}
	if err := s.file.Close(); err != nil {
		if s.logger != nil {
			s.logger.Failed(s.sessionID, err, "io_failed")
		}
		if s.metrics != nil {
			s.metrics.RecordTransferComplete(false, time.Since(s.startedAt).Seconds())
		}
		return ferr.Wrap(ferr.IOFailed, "upload: close source file failed", err)
	}

	duration := time.Since(s.startedAt)
	if s.logger != nil {
		throughput := 0.0
		if duration.Seconds() > 0 {
			throughput = float64(s.bytesRead) / duration.Seconds()
		}
		s.logger.Completed(s.sessionID, duration, throughput, s.manifest != nil)
	}
	if s.metrics != nil {
		s.metrics.RecordTransferComplete(true, duration.Seconds())
	}
	return nil
}
