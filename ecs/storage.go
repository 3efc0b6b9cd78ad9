// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ecs

import (
	"iter"
	"reflect"
)

// Storage is the type-erased view of a ComponentStorage. The world keeps
// one per component type and reaches them through this interface when
// the component type is not known, for example on entity removal.
type Storage interface {
	// RemoveEntity drops the component of e, if any.
	RemoveEntity(e Entity) bool
	Contains(e Entity) bool
	Len() int
	Clear()
	ComponentType() reflect.Type
}

// ComponentStorage is a sparse set of T keyed by Entity.
type ComponentStorage[T any] struct {
	components []T
	entities   []Entity
	indexOf    map[Entity]int
}

var _ Storage = (*ComponentStorage[struct{}])(nil)

// NewComponentStorage creates an empty storage.
func NewComponentStorage[T any]() *ComponentStorage[T] {
	return &ComponentStorage[T]{indexOf: make(map[Entity]int)}
}

// Insert stores v for e, replacing the previous value if e already has one.
func (s *ComponentStorage[T]) Insert(e Entity, v T) {
	if i, ok := s.indexOf[e]; ok {
		s.components[i] = v
		return
	}
	s.indexOf[e] = len(s.components)
	s.components = append(s.components, v)
	s.entities = append(s.entities, e)
}

// Get returns a pointer to e's component. The pointer is valid until the
// next Insert or Remove on this storage.
func (s *ComponentStorage[T]) Get(e Entity) (*T, bool) {
	i, ok := s.indexOf[e]
	if !ok {
		return nil, false
	}
	return &s.components[i], true
}

// Remove drops e's component and returns it. The last slot is moved into
// the freed one and its index entry updated before the slices shrink.
func (s *ComponentStorage[T]) Remove(e Entity) (T, bool) {
	i, ok := s.indexOf[e]
	if !ok {
		var zero T
		return zero, false
	}
	last := len(s.components) - 1
	removed := s.components[i]

	if i != last {
		moved := s.entities[last]
		s.components[i] = s.components[last]
		s.entities[i] = moved
		s.indexOf[moved] = i
	}
	delete(s.indexOf, e)

	var zero T
	s.components[last] = zero
	s.components = s.components[:last]
	s.entities = s.entities[:last]
	return removed, true
}

// RemoveEntity implements Storage.
func (s *ComponentStorage[T]) RemoveEntity(e Entity) bool {
	_, ok := s.Remove(e)
	return ok
}

// Contains reports whether e has a component in this storage.
func (s *ComponentStorage[T]) Contains(e Entity) bool {
	_, ok := s.indexOf[e]
	return ok
}

// Len returns the number of stored components.
func (s *ComponentStorage[T]) Len() int { return len(s.components) }

// Entities returns a copy of the owning entities in slot order.
func (s *ComponentStorage[T]) Entities() []Entity {
	out := make([]Entity, len(s.entities))
	copy(out, s.entities)
	return out
}

// All yields every entity with a pointer to its component, in slot order.
func (s *ComponentStorage[T]) All() iter.Seq2[Entity, *T] {
	return func(yield func(Entity, *T) bool) {
		for i := range s.components {
			if !yield(s.entities[i], &s.components[i]) {
				return
			}
		}
	}
}

// Clear drops every component.
func (s *ComponentStorage[T]) Clear() {
	clear(s.components)
	s.components = s.components[:0]
	s.entities = s.entities[:0]
	clear(s.indexOf)
}

// ComponentType implements Storage.
func (s *ComponentStorage[T]) ComponentType() reflect.Type {
	return reflect.TypeFor[T]()
}
