// Package gcerr defines the collector's error types. The collector itself
// cannot return an error to its caller (allocator failure aborts
// the runtime) — these types exist for the sanity-check / debug-assertion
// paths and for the fiber layer's BADARG contract.
package gcerr

import (
	"sync/atomic"

	"github.com/pkg/errors"
)

// Fatal wraps a sanity-check violation (stack/heap overrun, invariant
// breach) with a captured stack trace, for diagnostics prior to abort.
type Fatal struct {
	cause error
}

func NewFatal(format string, args ...any) *Fatal {
	return &Fatal{cause: errors.Errorf(format, args...)}
}

func (f *Fatal) Error() string { return f.cause.Error() }
func (f *Fatal) Unwrap() error { return f.cause }

// ErrBadArg is returned by fiber operations given an invalid id or a
// non-pid/ref argument.
var ErrBadArg = errors.New("badarg")

// ErrValue is a single-slot atomic error box: the first Store wins, and
// subsequent stores merely bump a counter so Err() can report how many
// times the same fault was hit. Used by the hibernate path to latch the
// first fatal condition encountered during a scan without taking a mutex.
type ErrValue struct {
	val atomic.Value
	cnt atomic.Int64
}

func (ea *ErrValue) Store(err error) {
	if ea.cnt.Add(1) == 1 {
		ea.val.Store(err)
	}
}

func (ea *ErrValue) Err() error {
	x := ea.val.Load()
	if x == nil {
		return nil
	}
	err := x.(error)
	if cnt := ea.cnt.Load(); cnt > 1 {
		return errors.Wrapf(err, "(cnt=%d)", cnt)
	}
	return err
}
