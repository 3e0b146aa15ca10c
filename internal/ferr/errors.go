// Package ferr defines the flat error-kind taxonomy shared by every
// filecore subsystem. A single enum keeps host bindings simple: whatever
// language embeds filecore maps one switch statement onto its own error
// type instead of chasing a tree of wrapped Go errors.
package ferr

import "fmt"

// Kind is the flat error taxonomy every filecore operation reports through.
type Kind int

const (
	Success Kind = iota
	NullPointer
	FileNotFound
	PermissionDenied
	DiskFull
	InvalidPath
	IOFailed
	Cancelled
	BufferAllocFailed
	InvalidKeySize
	InvalidFormat
	EncryptionFailed
	DecryptionFailed
)

// Error lets a bare Kind satisfy the error interface, so callers can write
// errors.Is(err, ferr.Cancelled) without an intermediate sentinel value.
func (k Kind) Error() string { return k.String() }

func (k Kind) String() string {
	switch k {
	case Success:
		return "SUCCESS"
	case NullPointer:
		return "NULL_POINTER"
	case FileNotFound:
		return "FILE_NOT_FOUND"
	case PermissionDenied:
		return "PERMISSION_DENIED"
	case DiskFull:
		return "DISK_FULL"
	case InvalidPath:
		return "INVALID_PATH"
	case IOFailed:
		return "IO_FAILED"
	case Cancelled:
		return "CANCELLED"
	case BufferAllocFailed:
		return "BUFFER_ALLOC_FAILED"
	case InvalidKeySize:
		return "INVALID_KEY_SIZE"
	case InvalidFormat:
		return "INVALID_FORMAT"
	case EncryptionFailed:
		return "ENCRYPTION_FAILED"
	case DecryptionFailed:
		return "DECRYPTION_FAILED"
	default:
		return "UNKNOWN"
	}
}

// Error wraps a Kind with context. It supports errors.Is against the Kind
// sentinels below and errors.Unwrap against the wrapped cause.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, ferr.Cancelled) work directly against a Kind value.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// New builds an *Error for the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds an *Error for the given kind, preserving cause for Unwrap.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Cause: cause}
}

// Of extracts the Kind from err if it (or something in its chain) is an
// *Error; otherwise returns IOFailed as the catch-all classification.
func Of(err error) Kind {
	var e *Error
	if as(err, &e) {
		return e.Kind
	}
	return IOFailed
}

func as(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
