package ecs

import "strconv"

// Entity identifies a logical scene object. The zero value is invalid.
type Entity uint64

// InvalidEntity is never returned by an EntityAllocator.
const InvalidEntity Entity = 0

// IsValid reports whether e could have been allocated.
func (e Entity) IsValid() bool { return e != InvalidEntity }

// String returns the decimal id.
func (e Entity) String() string { return strconv.FormatUint(uint64(e), 10) }

// EntityAllocator hands out entities starting at 1.
// Not safe for concurrent use.
type EntityAllocator struct {
	next uint64
}

// New returns a fresh entity.
func (a *EntityAllocator) New() Entity {
	a.next++
	return Entity(a.next)
}

// Allocated returns how many entities have been handed out.
func (a *EntityAllocator) Allocated() uint64 { return a.next }
