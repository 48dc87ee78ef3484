package ats

import (
	"errors"
	"fmt"
)

// TransientError marks a fetch failure worth retrying (timeouts, connection
// resets, 5xx). The orchestrator records it against the company after the
// parser's internal retries are exhausted.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient: %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError marks a failure retrying cannot fix: bad board URL, 404,
// auth rejection, unparseable payload.
type PermanentError struct {
	Op  string
	Err error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent: %s: %v", e.Op, e.Err)
}

func (e *PermanentError) Unwrap() error { return e.Err }

// IsTransient reports whether err is (or wraps) a TransientError
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

// IsPermanent reports whether err is (or wraps) a PermanentError
func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}
