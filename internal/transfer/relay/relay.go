// Package relay implements the cloud-to-cloud transfer engine: the chunk
// pump with both source and sink supplied entirely by host callbacks, so
// the core never touches the network or the two clouds' SDKs directly.
package relay

import (
	"github.com/nimbusvault/filecore/internal/ferr"
	"github.com/nimbusvault/filecore/internal/transfer/cancel"
	"github.com/nimbusvault/filecore/internal/transfer/progress"
	"github.com/nimbusvault/filecore/internal/transfer/pump"
)

// ReadCallback populates buf with the next chunk of source bytes,
// returning the number of bytes written. A return of (0, nil) marks EOF.
type ReadCallback func(buf []byte) (int, error)

// WriteCallback consumes buf (the bytes just read) and forwards them to
// the destination cloud.
type WriteCallback func(p []byte) error

type callbackSource struct{ read ReadCallback }

func (s callbackSource) Read(buf []byte) (int, error) { return s.read(buf) }

type callbackSink struct{ write WriteCallback }

func (s callbackSink) Write(p []byte) error { return s.write(p) }

// Options configures one relay run.
type Options struct {
	BufferSize int
	Total      int64
	Token      *cancel.Token
	OnProgress func(bytesDone, total int64)
}

// Run drives chunks from read to write until EOF, an error, or
// cancellation. At any moment at most one chunk (bounded by the buffer
// size, itself clamped to [64 KiB, 10 MiB]) is resident in memory. No
// encryption is applied — the relay is content-agnostic, exactly mirroring
// whatever bytes the read callback hands it.
func Run(read ReadCallback, write WriteCallback, opts Options) (int64, error) {
	if read == nil || write == nil {
		return 0, ferr.New(ferr.NullPointer, "relay: read and write callbacks are required")
	}

	return pump.Run(callbackSource{read}, callbackSink{write}, nil, pump.Options{
		BufferSize: opts.BufferSize,
		Total:      opts.Total,
		Token:      opts.Token,
		Throttler:  progress.New(progress.DefaultIntervalMS),
		OnProgress: opts.OnProgress,
	})
}
