// Package resource owns the GPU-resident objects of a scene: typed
// buffers, meshes, materials, vertex buffer layouts and per-entity
// instance buffers.
//
// Every resource is reached through a small integer handle. Handles start
// at 1 and are never reused; the maximum uint32 value is reserved as the
// invalid sentinel. A handle is valid only while its entry exists in the
// Manager.
//
// The Manager is the single source of truth for buffer byte sizes, which
// is what lets UpdateBuffer reject out-of-bounds partial writes instead of
// handing them to the GPU.
//
// Shader binding convention shared with the render package:
//
//	group 0   material resources
//	group 1   environment (camera at its bind index, lights at binding 2)
//	slot 0    mesh vertices
//	slot 1    per-instance data, locations 5..13
package resource
