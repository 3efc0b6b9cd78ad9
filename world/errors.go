package world

import "errors"

var (
	// ErrEntityNotFound is returned for an entity that is not alive.
	ErrEntityNotFound = errors.New("world: entity not found")

	// ErrNotACamera is returned by SetMainCamera when the entity has no
	// camera of the requested kind.
	ErrNotACamera = errors.New("world: entity has no camera of that kind")
)
