// Package pump implements the generic read-transform-write loop that the
// local copy and cloud relay engines drive: source.Read into a
// caller-owned buffer, an optional transform, then sink.Write, polling
// cancellation and progress at each iteration. The upload and download
// sessions run their own chunk loops and do not call Run.
package pump

import (
	"github.com/nimbusvault/filecore/internal/ferr"
	"github.com/nimbusvault/filecore/internal/transfer/cancel"
	"github.com/nimbusvault/filecore/internal/transfer/progress"
)

const (
	// MinBufferSize is the smallest buffer size Clamp will return.
	MinBufferSize = 64 * 1024
	// MaxBufferSize is the largest buffer size Clamp will return.
	MaxBufferSize = 10 * 1024 * 1024
)

// Clamp restricts a requested buffer size to [MinBufferSize, MaxBufferSize].
func Clamp(size int) int {
	if size < MinBufferSize {
		return MinBufferSize
	}
	if size > MaxBufferSize {
		return MaxBufferSize
	}
	return size
}

// Source yields bounded reads into a caller-owned buffer. A read of n==0
// with a nil error signals clean end-of-input.
type Source interface {
	Read(buf []byte) (n int, err error)
}

// Sink consumes bounded writes.
type Sink interface {
	Write(p []byte) error
}

// Transform maps one read's bytes to the bytes that should be written.
// A nil Transform is the identity.
type Transform func(chunk []byte, index uint32) ([]byte, error)

// Reporter receives (bytesDone, total) after every iteration that clears
// the progress throttle.
type Reporter func(bytesDone, total int64)

// Options configures one Run invocation.
type Options struct {
	BufferSize int
	Total      int64
	Token      *cancel.Token
	Throttler  *progress.Throttler
	OnProgress Reporter
}

// Run drives the pump to completion: read, transform, write, report,
// repeat, until the source reports EOF (n==0, err==nil), an error occurs,
// or cancellation is observed. It returns the total bytes written.
//
// Cancellation is polled once per iteration, before the read — meaning a
// chunk already read and written before Run observes the flag is never
// torn: the pump always finishes writing the in-flight chunk before
// reporting CANCELLED.
func Run(source Source, sink Sink, transform Transform, opts Options) (int64, error) {
	bufSize := Clamp(opts.BufferSize)
	buf := make([]byte, bufSize)

	var done int64
	index := uint32(0)

	for {
		if opts.Token.Cancelled() {
			return done, ferr.New(ferr.Cancelled, "pump: cancellation observed")
		}

		n, err := source.Read(buf)
		if err != nil {
			return done, ferr.Wrap(ferr.IOFailed, "pump: source read failed", err)
		}
		if n == 0 {
			break
		}

		out := buf[:n]
		if transform != nil {
			out, err = transform(buf[:n], index)
			if err != nil {
				return done, err
			}
		}

		if err := sink.Write(out); err != nil {
			return done, ferr.Wrap(ferr.IOFailed, "pump: sink write failed", err)
		}

		done += int64(n)
		index++

		if opts.Throttler != nil && opts.OnProgress != nil && opts.Throttler.ShouldUpdate(done, done) {
			opts.OnProgress(done, opts.Total)
		}
	}

	if opts.Throttler != nil && opts.OnProgress != nil {
		opts.OnProgress(done, opts.Total)
	}

	return done, nil
}
