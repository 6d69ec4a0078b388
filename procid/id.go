// Package procid generates the externally-visible identifiers the GC
// attaches to processes and fibers for info() snapshots and log lines. The
// collector never inspects these values beyond equality.
package procid

import (
	"github.com/google/uuid"
	"github.com/teris-io/shortid"
)

// Pid identifies a process for the lifetime of the runtime.
type Pid string

// NewPid allocates a fresh process identifier.
func NewPid() Pid { return Pid(uuid.NewString()) }

// FiberID identifies a fiber within its owning process's fiber queue.
// Fibers are short-lived and numerous relative to processes, so a compact
// id is used rather than a full UUID.
type FiberID string

var sid *shortid.Shortid

func init() {
	s, err := shortid.New(1, shortid.DefaultABC, 0xBEEF)
	if err != nil {
		panic(err) // only fails on a malformed alphabet, which DefaultABC never is
	}
	sid = s
}

// NewFiberID allocates a fresh fiber identifier.
func NewFiberID() FiberID {
	id, err := sid.Generate()
	if err != nil {
		// shortid's generator only errors on counter overflow past its
		// configured epoch; fall back to a UUID rather than propagate an
		// error from what would otherwise be an infallible allocation.
		return FiberID(uuid.NewString())
	}
	return FiberID(id)
}
