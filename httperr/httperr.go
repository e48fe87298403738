// Package httperr defines the closed error taxonomy shared by Mardens
// services: every failure a handler can produce converts into a JSON
// HTTP response with a status code determined by its kind.
//
// Errors capture a stack trace at construction time, not at the point
// they reach the HTTP boundary, so the originating frames survive
// propagation. The trace is only rendered into responses in dev mode;
// production responses carry the message alone.
package httperr

import (
	"database/sql"
	"database/sql/driver"
	stderrors "errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// Kind identifies which layer a failure originated in.
type Kind int

const (
	// KindConfigFetch covers failures retrieving or decoding the remote
	// credential document.
	KindConfigFetch Kind = iota
	// KindPool covers connection pool construction failures.
	KindPool
	// KindSQL covers query execution failures.
	KindSQL
	// KindIO covers filesystem and network I/O failures.
	KindIO
	// KindApp is a caller-raised failure carrying its own status code.
	KindApp
)

// String returns a short label for logging.
func (k Kind) String() string {
	switch k {
	case KindConfigFetch:
		return "config_fetch"
	case KindPool:
		return "pool"
	case KindSQL:
		return "sql"
	case KindIO:
		return "io"
	default:
		return "app"
	}
}

// Error is a classified failure with a construction-time stack trace.
// Build one with the kind constructors below; the zero value is not
// useful.
type Error struct {
	kind   Kind
	status int // only meaningful for KindApp
	msg    string
	cause  error // always stack-bearing
}

// ConfigFetch wraps a failure to retrieve or decode remote credentials.
func ConfigFetch(err error) *Error {
	return &Error{
		kind:  KindConfigFetch,
		msg:   "failed to fetch database configuration",
		cause: errors.WithStack(err),
	}
}

// Pool wraps a connection pool construction failure.
func Pool(err error) *Error {
	return &Error{
		kind:  KindPool,
		msg:   "failed to create database connection pool",
		cause: errors.WithStack(err),
	}
}

// SQL wraps a query execution failure.
func SQL(err error) *Error {
	return &Error{
		kind:  KindSQL,
		msg:   "database query failed",
		cause: errors.WithStack(err),
	}
}

// IO wraps a filesystem or network I/O failure.
func IO(err error) *Error {
	return &Error{
		kind:  KindIO,
		msg:   "i/o error",
		cause: errors.WithStack(err),
	}
}

// App builds a caller-defined failure with an explicit status code.
// A status outside the 4xx/5xx range is coerced to 500.
func App(status int, msg string) *Error {
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}
	return &Error{
		kind:   KindApp,
		status: status,
		msg:    msg,
		cause:  errors.New(msg),
	}
}

// Appf is App with fmt-style formatting.
func Appf(status int, format string, args ...any) *Error {
	return App(status, fmt.Sprintf(format, args...))
}

// From classifies an arbitrary error into the taxonomy. An *Error
// passes through unchanged; known SQL and I/O sentinels map to their
// kinds; everything else becomes a 500 application error. The stack is
// captured here, which for foreign errors is the closest construction
// site available.
func From(err error) *Error {
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	switch {
	case stderrors.Is(err, sql.ErrNoRows),
		stderrors.Is(err, sql.ErrConnDone),
		stderrors.Is(err, sql.ErrTxDone),
		stderrors.Is(err, driver.ErrBadConn):
		return SQL(err)
	}
	var netErr net.Error
	var pathErr *fs.PathError
	if stderrors.As(err, &netErr) || stderrors.As(err, &pathErr) {
		return IO(err)
	}
	return &Error{
		kind:   KindApp,
		status: http.StatusInternalServerError,
		msg:    "an internal error occurred",
		cause:  errors.WithStack(err),
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.kind == KindApp {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error { return e.cause }

// Kind reports the error's classification.
func (e *Error) Kind() Kind { return e.kind }

// StatusCode returns the HTTP status this error renders as.
// Fetch, pool, SQL and I/O failures are server-side: 500.
func (e *Error) StatusCode() int {
	if e.kind == KindApp {
		return e.status
	}
	return http.StatusInternalServerError
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Stack renders the construction-time trace, one frame per line, with
// source paths resolved to absolute form. Empty if no trace was
// captured (never the case for errors built by this package).
func (e *Error) Stack() string {
	st, ok := e.cause.(stackTracer)
	if !ok {
		return ""
	}
	var b strings.Builder
	for _, f := range st.StackTrace() {
		pc := uintptr(f) - 1
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}
		file, line := fn.FileLine(pc)
		if abs, err := filepath.Abs(file); err == nil {
			file = abs
		}
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", fn.Name(), file, line)
	}
	return b.String()
}
