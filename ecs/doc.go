// Package ecs provides entity handles and the sparse-set component
// storage used by the world.
//
// An Entity is an opaque, monotonically increasing identifier. Values are
// never recycled: once removed, an entity is simply never found again.
//
// A ComponentStorage keeps components densely packed next to the entity
// that owns each slot, with a map from entity to slot index. Insert, Get
// and Remove are O(1); Remove moves the last slot into the hole.
//
// Iterating a storage while inserting into or removing from the same
// storage is not supported.
package ecs
