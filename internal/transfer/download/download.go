// Package download implements the remote-to-local transfer session: it
// accepts chunks from the host in file order (plaintext pieces of any size;
// with decryption, the header+wrapped-FEK prefix and then one whole chunk
// frame per call; with FEC enabled, individual Reed-Solomon shards),
// optionally decrypts them, and writes plaintext to a local file.
package download

import (
	"bufio"
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

// Options configures a Session.
type Options struct {
	ShouldDecrypt bool
	MasterKey     []byte // 32 bytes; required iff ShouldDecrypt
	Token         *cancel.Token
	OnProgress    func(bytesDone, total int64)

	// FEC, if non-nil, tells the session every non-prefix chunk arrives
	// as FEC.K+FEC.R wire shards (see upload.Options.FEC) rather than as
	// a whole frame, and that it must buffer and reconstruct them.
	FEC *chunker.FECProfile

	// SessionID, Logger, and Metrics are optional observability hooks; a
	// nil Logger or Metrics disables the corresponding calls.
	SessionID string
	Logger    *observability.Logger
	Metrics   *observability.Metrics
}

// Session drives one download into a destination path, created lazily on
// first write.
type Session struct {
	destPath      string
	file          *os.File
	writer        *bufio.Writer
	decrypt       *crypto.DecryptSession
	shouldDecrypt bool
	masterKey     []byte
	firstChunk    bool
	wantIndex     uint32
	bytesWritten  int64
	token         *cancel.Token
	throttler     *progress.Throttler
	onProgress    func(bytesDone, total int64)
	closed        bool

	fecDecoder  *fec.Decoder
	fecK, fecR  int
	fecShards   map[uint32][][]byte
	fecReceived map[uint32]int
	fecOrigLen  map[uint32]uint32
	fecDone     map[uint32]bool

	sessionID string
	logger    *observability.Logger
	metrics   *observability.Metrics
	startedAt time.Time
}

// Open prepares a download session targeting destPath. The destination
// file is not created until the first call to Append.
func Open(destPath string, opts Options) *Session {
	s := &Session{
		destPath:      destPath,
		shouldDecrypt: opts.ShouldDecrypt,
		masterKey:     opts.MasterKey,
		firstChunk:    true,
		token:         opts.Token,
		throttler:     progress.New(progress.DefaultIntervalMS),
		onProgress:    opts.OnProgress,
		sessionID:     opts.SessionID,
		logger:        opts.Logger,
		metrics:       opts.Metrics,
		startedAt:     time.Now(),
	}

	if opts.FEC != nil {
		s.fecK, s.fecR = opts.FEC.K, opts.FEC.R
		s.fecShards = make(map[uint32][][]byte)
		s.fecReceived = make(map[uint32]int)
		s.fecOrigLen = make(map[uint32]uint32)
		s.fecDone = make(map[uint32]bool)
		if dec, err := fec.NewDecoder(opts.FEC.K, opts.FEC.R); err == nil {
			s.fecDecoder = dec
		}
	}

	if s.metrics != nil {
		s.metrics.RecordTransferStart()
	}

	return s
}

// Append feeds the next piece from the host, in file order: the
// header+wrapped FEK prefix on the first call when decryption is
// enabled, then either whole chunk frames or (with FEC configured)
// individual shards of each chunk. The session does not buffer a split
// prefix across calls.
func (s *Session) Append(chunk []byte) error {
	if s.token.Cancelled() {
		if s.logger != nil {
			s.logger.Cancelled(s.sessionID, s.bytesWritten, 0)
		}
		return ferr.New(ferr.Cancelled, "download: cancellation observed")
	}

	if s.file == nil {
		file, err := os.Create(s.destPath)
		if err != nil {
			return ferr.Wrap(ferr.PermissionDenied, "download: create destination file failed", err)
		}
		s.file = file
		s.writer = bufio.NewWriter(file)
	}

	if s.firstChunk {
		s.firstChunk = false
		return s.appendFirst(chunk)
	}

	if s.fecDecoder != nil {
		return s.appendFECShard(chunk)
	}
	return s.appendLater(chunk)
}

func (s *Session) appendFirst(chunk []byte) error {
	if !s.shouldDecrypt {
		if s.fecDecoder != nil {
			return s.appendFECShard(chunk)
		}
		return s.writePlain(chunk)
	}

	if len(chunk) < crypto.HeaderSize {
		return ferr.New(ferr.InvalidFormat, "download: first chunk shorter than container header")
	}
	_, _, wrappedLen, err := crypto.ParseHeader(chunk)
	if err != nil {
		return err
	}

	prefixLen := crypto.HeaderSize + int(wrappedLen)
	if len(chunk) < prefixLen {
		return ferr.New(ferr.InvalidFormat, "download: first chunk does not contain the full header and wrapped key")
	}

	dec, err := crypto.NewDecryptSession(chunk[:prefixLen], s.masterKey)
	if err != nil {
		return err
	}
	s.decrypt = dec

	if _, err := s.writer.Write(chunk[:prefixLen]); err != nil {
		return ferr.Wrap(ferr.IOFailed, "download: write prefix failed", err)
	}

	if prefixLen < len(chunk) {
		if s.fecDecoder != nil {
			return s.appendFECShard(chunk[prefixLen:])
		}
		return s.decryptFrame(chunk[prefixLen:])
	}
	return nil
}

func (s *Session) appendLater(chunk []byte) error {
	if !s.shouldDecrypt {
		return s.writePlain(chunk)
	}
	return s.decryptFrame(chunk)
}

// appendFECShard buffers one Reed-Solomon shard of a chunk. Once at
// least fecK shards for that chunk's index have arrived it reconstructs
// the full chunk frame and feeds it into the normal decrypt/write path.
// Shards arriving for a chunk index already reconstructed are dropped.
func (s *Session) appendFECShard(wire []byte) error {
	chunkIdx, shardIdx, origLen, shard, err := fec.DecodeShard(wire)
	if err != nil {
		return err
	}
	if s.fecDone[chunkIdx] {
		return nil
	}
	if int(shardIdx) >= s.fecK+s.fecR {
		return ferr.New(ferr.InvalidFormat, "download: FEC shard index out of range")
	}

	shards, ok := s.fecShards[chunkIdx]
	if !ok {
		shards = make([][]byte, s.fecK+s.fecR)
		s.fecShards[chunkIdx] = shards
	}
	if shards[shardIdx] == nil {
		shards[shardIdx] = append([]byte{}, shard...)
		s.fecReceived[chunkIdx]++
	}
	s.fecOrigLen[chunkIdx] = origLen

	if s.fecReceived[chunkIdx] < s.fecK {
		return nil
	}

	if err := s.fecDecoder.Reconstruct(shards); err != nil {
		if s.metrics != nil {
			s.metrics.RecordFECReconstruction(false)
		}
		return err
	}
	if s.metrics != nil {
		s.metrics.RecordFECReconstruction(true)
	}

	frame := fec.JoinShards(shards, s.fecK, s.fecOrigLen[chunkIdx])
	s.fecDone[chunkIdx] = true
	delete(s.fecShards, chunkIdx)
	delete(s.fecReceived, chunkIdx)
	delete(s.fecOrigLen, chunkIdx)

	return s.appendLater(frame)
}

func (s *Session) decryptFrame(frame []byte) error {
	plaintext, index, err := s.decrypt.DecryptChunk(frame)
	if err != nil {
		return err
	}
	if index != s.wantIndex {
		return ferr.New(ferr.InvalidFormat, "download: chunk index out of order")
	}
	if s.logger != nil {
		s.logger.ChunkProcessed(s.sessionID, int(index), len(plaintext), "decrypt")
	}
	if s.metrics != nil {
		s.metrics.RecordChunk("received", len(plaintext))
	}
	s.wantIndex++
	return s.writePlain(plaintext)
}

func (s *Session) writePlain(p []byte) error {
	if _, err := s.writer.Write(p); err != nil {
		return ferr.Wrap(ferr.DiskFull, "download: write destination file failed", err)
	}
	s.bytesWritten += int64(len(p))
	if s.throttler.ShouldUpdate(s.bytesWritten, s.bytesWritten) && s.onProgress != nil {
		s.onProgress(s.bytesWritten, 0)
		if s.logger != nil {
			s.logger.Progress(s.sessionID, s.bytesWritten, 0, 0)
		}
	}
	return nil
}

// Finalize flushes the buffered writer, tears down the decrypt session,
// and closes the destination file. Idempotent.
func (s *Session) Finalize() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if s.decrypt != nil {
		s.decrypt.Finalize()
	}
	if s.writer == nil {
		return nil
	}
	if err := s.writer.Flush(); err != nil {
		if s.logger != nil {
			s.logger.Failed(s.sessionID, err, "io_failed")
		}
		return ferr.Wrap(ferr.IOFailed, "download: flush destination file failed", err)
	}
	if err := s.file.Close(); err != nil {
		if s.logger != nil {
			s.logger.Failed(s.sessionID, err, "io_failed")
		}
		if s.metrics != nil {
			s.metrics.RecordTransferComplete(false, time.Since(s.startedAt).Seconds())
		}
		return ferr.Wrap(ferr.IOFailed, "download: close destination file failed", err)
	}

	duration := time.Since(s.startedAt)
	if s.logger != nil {
		throughput := 0.0
		if duration.Seconds() > 0 {
			throughput = float64(s.bytesWritten) / duration.Seconds()
		}
		s.logger.Completed(s.sessionID, duration, throughput, s.decrypt != nil)
	}
	if s.metrics != nil {
		s.metrics.RecordTransferComplete(true, duration.Seconds())
	}
	return nil
}
