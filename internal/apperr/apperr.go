// Package apperr defines the request-scoped failure kinds shared by
// repositories, services and handlers. All three are terminal for the
// request that hit them; none is retriable or fatal to the process.
package apperr

import "errors"

var (
	// ErrNotFound reports an absent server, membership or message. It is
	// never used to mask an authorization failure.
	ErrNotFound = errors.New("not found")

	// ErrForbidden reports an authenticated but unauthorized action.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict reports a duplicate-state collision, e.g. joining a
	// server twice.
	ErrConflict = errors.New("conflict")
)

func IsNotFound(err error) bool  { return errors.Is(err, ErrNotFound) }
func IsForbidden(err error) bool { return errors.Is(err, ErrForbidden) }
func IsConflict(err error) bool  { return errors.Is(err, ErrConflict) }
