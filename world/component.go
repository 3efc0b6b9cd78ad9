package world

import (
	"iter"
	"reflect"

	"github.com/gogpu/g3d/camera"
	"github.com/gogpu/g3d/ecs"
)

// StorageOf returns the storage for T, creating it on first use.
func StorageOf[T any](w *World) *ecs.ComponentStorage[T] {
	t := reflect.TypeFor[T]()
	if s, ok := w.storages[t]; ok {
		return s.(*ecs.ComponentStorage[T])
	}
	s := ecs.NewComponentStorage[T]()
	w.storages[t] = s
	w.order = append(w.order, s)
	w.componentID(t)
	return s
}

// lookup returns the storage for T without creating it.
func lookup[T any](w *World) (*ecs.ComponentStorage[T], bool) {
	s, ok := w.storages[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}
	return s.(*ecs.ComponentStorage[T]), true
}

// IDOf returns the signature bit of T, registering T if needed. The
// second result is false once the signature space is exhausted.
func IDOf[T any](w *World) (ComponentID, bool) {
	StorageOf[T](w)
	return w.componentID(reflect.TypeFor[T]())
}

// Add attaches v to e, replacing any existing T. Adding to an entity that
// is not alive returns ErrEntityNotFound.
func Add[T any](w *World, e ecs.Entity, v T) error {
	if !w.IsAlive(e) {
		return ErrEntityNotFound
	}
	s := StorageOf[T](w)
	if old, ok := s.Get(e); ok {
		w.releaseReplacedCamera(old, &v)
	}
	s.Insert(e, v)
	w.mark(e, reflect.TypeFor[T]())
	return nil
}

// Get returns a pointer to e's T. It reports false when either the
// storage or the slot is missing. The pointer is valid until the next
// Add or Remove of T.
func Get[T any](w *World, e ecs.Entity) (*T, bool) {
	s, ok := lookup[T](w)
	if !ok {
		return nil, false
	}
	return s.Get(e)
}

// Remove detaches e's T and returns it. A removed camera has its uniform
// buffer released; the returned value is marked dirty so it can be added
// back.
func Remove[T any](w *World, e ecs.Entity) (T, bool) {
	s, ok := lookup[T](w)
	if !ok {
		var zero T
		return zero, false
	}
	v, ok := s.Remove(e)
	if ok {
		w.unmark(e, reflect.TypeFor[T]())
		if c, isCam := any(&v).(camera.Camera); isCam {
			camera.Release(c, w.resources)
		}
	}
	return v, ok
}

// Has reports whether e has a T.
func Has[T any](w *World, e ecs.Entity) bool {
	t := reflect.TypeFor[T]()
	if id, ok := w.componentIDs[t]; ok {
		sig := w.signatures[e]
		return sig.ContainsAll(maskOf([]ComponentID{id}))
	}
	s, ok := w.storages[t]
	return ok && s.Contains(e)
}

// EntitiesWith returns the entities that have a T, in storage order. It
// is empty when T was never used.
func EntitiesWith[T any](w *World) []ecs.Entity {
	s, ok := lookup[T](w)
	if !ok {
		return nil
	}
	return s.Entities()
}

// Query yields every entity with a T and a pointer to it. Adding or
// removing T while iterating is not supported.
func Query[T any](w *World) iter.Seq2[ecs.Entity, *T] {
	s, ok := lookup[T](w)
	if !ok {
		return func(func(ecs.Entity, *T) bool) {}
	}
	return s.All()
}

// Count returns how many entities have a T.
func Count[T any](w *World) int {
	s, ok := lookup[T](w)
	if !ok {
		return 0
	}
	return s.Len()
}
