// Package errs holds the error kinds surfaced by UploadFile and
// DownloadFile. Every error returned by the core matches exactly one kind
// via errors.Is.
package errs

import (
	"errors"
	"fmt"

	"github.com/pyropy/relstore/lib/urlnorm"
)

var (
	// ErrTransport indicates a network failure or a non-2xx response.
	ErrTransport = errors.New("transport error")

	// ErrDecode indicates a response body did not have the expected shape.
	ErrDecode = errors.New("decode error")

	// ErrInvalidRepoFormat indicates a repository that is neither
	// "owner/name" nor a hosting URL.
	ErrInvalidRepoFormat = errors.New("invalid repository format")

	// ErrMalformedURL indicates an unparseable URL in a response.
	ErrMalformedURL = urlnorm.ErrMalformedURL

	// ErrJoin indicates a chunk task terminated abnormally.
	ErrJoin = errors.New("concurrent task failed")

	ErrInvalidFileName = errors.New("invalid file name")
	ErrInvalidLocator  = errors.New("invalid file locator")
)

// Error records the operation that failed together with its kind.
type Error struct {
	// Op is the failing operation, e.g. "upload", "download", "resolveRelease".
	Op string

	// Kind is one of the sentinel errors of this package.
	Kind error

	// Err is the underlying cause, may be nil.
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}

	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

func New(op string, kind error, err error) *Error {
	return &Error{
		Op:   op,
		Kind: kind,
		Err:  err,
	}
}

func Transport(op string, err error) *Error {
	return New(op, ErrTransport, err)
}

func Decode(op string, err error) *Error {
	return New(op, ErrDecode, err)
}
