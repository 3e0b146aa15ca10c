// Package observability provides the structured logging, metrics, and
// tracing surface every transfer and search engine reports through. The
// core algorithms in internal/crypto, internal/chunker, internal/transfer,
// and internal/search stay side-effect-free and return values or errors;
// callers at the session boundary are the ones that log, count, and trace.
package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog with service/version/host fields pre-bound.
type Logger struct {
	logger zerolog.Logger
}

// NewLogger returns a logger writing to output (os.Stdout if nil).
func NewLogger(service, version string, output io.Writer) *Logger {
	if output == nil {
		output = os.Stdout
	}

	zerolog.TimeFieldFormat = time.RFC3339

	logger := zerolog.New(output).With().
		Timestamp().
		Str("service", service).
		Str("version", version).
		Str("host", hostname()).
		Logger()

	return &Logger{logger: logger}
}

// WithSession derives a child logger with session_id bound.
func (l *Logger) WithSession(sessionID string) *Logger {
	return &Logger{logger: l.logger.With().Str("session_id", sessionID).Logger()}
}

// WithFile derives a child logger with file_path/file_size bound.
func (l *Logger) WithFile(filePath string, fileSize int64) *Logger {
	return &Logger{logger: l.logger.With().Str("file_path", filePath).Int64("file_size", fileSize).Logger()}
}

// Debug logs a debug-level message.
func (l *Logger) Debug(msg string) { l.logger.Debug().Msg(msg) }

// Info logs an info-level message.
func (l *Logger) Info(msg string) { l.logger.Info().Msg(msg) }

// Warn logs a warning-level message.
func (l *Logger) Warn(msg string) { l.logger.Warn().Msg(msg) }

// Error logs an error-level message with the triggering error attached.
func (l *Logger) Error(err error, msg string) { l.logger.Error().Err(err).Msg(msg) }

// TransferStarted logs the start of an upload or download session.
func (l *Logger) TransferStarted(sessionID, filePath string, fileSize int64, totalChunks int) {
	l.logger.Info().
		Str("session_id", sessionID).
		Str("file_path", filePath).
		Int64("file_size", fileSize).
		Int("total_chunks", totalChunks).
		Msg("transfer session started")
}

// ChunkProcessed logs one chunk's encryption/decryption at debug level.
func (l *Logger) ChunkProcessed(sessionID string, chunkIndex, chunkSize int, direction string) {
	l.logger.Debug().
		Str("session_id", sessionID).
		Int("chunk_index", chunkIndex).
		Int("chunk_size", chunkSize).
		Str("direction", direction).
		Msg("chunk processed")
}

// Progress logs a throttled progress update.
func (l *Logger) Progress(sessionID string, bytesDone, total int64, rate float64) {
	l.logger.Info().
		Str("session_id", sessionID).
		Int64("bytes_done", bytesDone).
		Int64("total", total).
		Float64("bytes_per_second", rate).
		Msg("transfer progress")
}

// Cancelled logs that a session was stopped via cooperative cancellation.
func (l *Logger) Cancelled(sessionID string, bytesDone, total int64) {
	l.logger.Warn().
		Str("session_id", sessionID).
		Int64("bytes_done", bytesDone).
		Int64("total", total).
		Msg("transfer cancelled")
}

// Completed logs a successful session close.
func (l *Logger) Completed(sessionID string, duration time.Duration, throughputBytesPerSec float64, merkleVerified bool) {
	l.logger.Info().
		Str("session_id", sessionID).
		Float64("duration_seconds", duration.Seconds()).
		Float64("throughput_bytes_per_second", throughputBytesPerSec).
		Bool("merkle_verified", merkleVerified).
		Msg("transfer completed")
}

// Failed logs a session ending in error, with the ferr.Kind for filtering.
func (l *Logger) Failed(sessionID string, err error, kind string) {
	l.logger.Error().
		Str("session_id", sessionID).
		Str("error_kind", kind).
		Err(err).
		Msg("transfer failed")
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
