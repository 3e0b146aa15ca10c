// Package cancel provides a cooperative cancellation token shared between
// a caller and a transfer session: the caller sets it from any goroutine,
// the session polls it at loop boundaries (once per chunk, once per file)
// rather than being preempted mid-operation.
package cancel

import "sync/atomic"

// Token is a shared, goroutine-safe cancellation flag. The zero value is
// ready to use and starts un-cancelled.
type Token struct {
	flag atomic.Bool
}

// New returns a fresh, un-cancelled Token.
func New() *Token {
	return &Token{}
}

// Cancel requests cancellation. Idempotent.
func (t *Token) Cancel() {
	if t == nil {
		return
	}
	t.flag.Store(true)
}

// Cancelled reports whether Cancel has been called. A nil Token is never
// cancelled, so callers may pass nil to mean "no cancellation support".
func (t *Token) Cancelled() bool {
	if t == nil {
		return false
	}
	return t.flag.Load()
}
