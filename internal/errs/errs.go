// Package errs contains sentinel errors shared across service layers for
// stable error-to-status mapping in handlers.
package errs

import "errors"

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("not found")
