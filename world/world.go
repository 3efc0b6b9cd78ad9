// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package world

import (
	"reflect"

	"github.com/TheBitDrifter/mask"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/g3d/ecs"
	"github.com/gogpu/g3d/internal/logging"
	"github.com/gogpu/g3d/resource"
)

// maxSignatureBits bounds how many component types get a signature bit.
// Types registered past it are still stored; their membership tests fall
// back to the storage.
const maxSignatureBits = 64

// ComponentID is the signature bit of a component type.
type ComponentID uint32

// World owns entities, their component storages and the resource manager.
//
// World is not safe for concurrent use.
type World struct {
	alloc    ecs.EntityAllocator
	entities []ecs.Entity
	alive    map[ecs.Entity]int

	storages map[reflect.Type]ecs.Storage
	// order keeps storages in registration order for deterministic removal.
	order []ecs.Storage

	componentIDs map[reflect.Type]ComponentID
	signatures   map[ecs.Entity]mask.Mask

	resources *resource.Manager
}

// Option configures New.
type Option func(*options)

type options struct {
	resources *resource.Manager
}

// WithResourceManager makes the world use m instead of creating one.
func WithResourceManager(m *resource.Manager) Option {
	return func(o *options) {
		o.resources = m
	}
}

// New creates an empty world whose resource manager uses device and queue.
func New(device hal.Device, queue hal.Queue, opts ...Option) *World {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.resources == nil {
		o.resources = resource.NewManager(device, queue)
	}
	return &World{
		alive:        make(map[ecs.Entity]int),
		storages:     make(map[reflect.Type]ecs.Storage),
		componentIDs: make(map[reflect.Type]ComponentID),
		signatures:   make(map[ecs.Entity]mask.Mask),
		resources:    o.resources,
	}
}

// Resources returns the resource manager.
func (w *World) Resources() *resource.Manager { return w.resources }

// CreateEntity allocates a new live entity.
func (w *World) CreateEntity() ecs.Entity {
	e := w.alloc.New()
	w.alive[e] = len(w.entities)
	w.entities = append(w.entities, e)
	return e
}

// IsAlive reports whether e was created and not removed.
func (w *World) IsAlive(e ecs.Entity) bool {
	_, ok := w.alive[e]
	return ok
}

// Entities returns a copy of the live entities in creation order.
func (w *World) Entities() []ecs.Entity {
	out := make([]ecs.Entity, len(w.entities))
	copy(out, w.entities)
	return out
}

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int { return len(w.entities) }

// RemoveEntity drops e from every storage, including types the caller
// never touched, releases its instance and camera buffers and forgets it.
func (w *World) RemoveEntity(e ecs.Entity) bool {
	i, ok := w.alive[e]
	if !ok {
		return false
	}
	w.releaseCameras(e)
	for _, s := range w.order {
		s.RemoveEntity(e)
	}
	delete(w.signatures, e)
	w.resources.RemoveInstanceBuffer(e)

	// keep creation order for the remaining entities
	w.entities = append(w.entities[:i], w.entities[i+1:]...)
	delete(w.alive, e)
	for j := i; j < len(w.entities); j++ {
		w.alive[w.entities[j]] = j
	}
	logging.Logger().Debug("world: entity removed", "entity", uint64(e))
	return true
}

// ComponentTypes returns the component types that have a storage.
func (w *World) ComponentTypes() []reflect.Type {
	out := make([]reflect.Type, 0, len(w.order))
	for _, s := range w.order {
		out = append(out, s.ComponentType())
	}
	return out
}

// Signature returns e's component mask.
func (w *World) Signature(e ecs.Entity) mask.Mask {
	return w.signatures[e]
}

// Filter selects entities by signature.
type Filter struct {
	All  []ComponentID
	Any  []ComponentID
	None []ComponentID
}

// Matching returns the live entities whose signature satisfies f, in
// creation order.
func (w *World) Matching(f Filter) []ecs.Entity {
	all, anyOf, none := maskOf(f.All), maskOf(f.Any), maskOf(f.None)
	var out []ecs.Entity
	for _, e := range w.entities {
		sig := w.signatures[e]
		if len(f.All) > 0 && !sig.ContainsAll(all) {
			continue
		}
		if len(f.Any) > 0 && !sig.ContainsAny(anyOf) {
			continue
		}
		if len(f.None) > 0 && !sig.ContainsNone(none) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Cleanup clears every storage and releases every GPU resource. The world
// must not be used afterwards.
func (w *World) Cleanup() {
	for _, s := range w.order {
		s.Clear()
	}
	clear(w.signatures)
	w.entities = w.entities[:0]
	clear(w.alive)
	w.resources.Cleanup()
}

func maskOf(ids []ComponentID) mask.Mask {
	var m mask.Mask
	for _, id := range ids {
		m.Mark(uint32(id))
	}
	return m
}

// componentID returns the signature bit of t, assigning one on first use.
func (w *World) componentID(t reflect.Type) (ComponentID, bool) {
	if id, ok := w.componentIDs[t]; ok {
		return id, true
	}
	if len(w.componentIDs) >= maxSignatureBits {
		return 0, false
	}
	//nolint:gosec // G115: bounded by maxSignatureBits
	id := ComponentID(len(w.componentIDs))
	w.componentIDs[t] = id
	return id, true
}

func (w *World) mark(e ecs.Entity, t reflect.Type) {
	id, ok := w.componentID(t)
	if !ok {
		return
	}
	sig := w.signatures[e]
	sig.Mark(uint32(id))
	w.signatures[e] = sig
}

func (w *World) unmark(e ecs.Entity, t reflect.Type) {
	id, ok := w.componentIDs[t]
	if !ok {
		return
	}
	sig, ok := w.signatures[e]
	if !ok {
		return
	}
	sig.Unmark(uint32(id))
	w.signatures[e] = sig
}
