// Package render turns a world's live components into GPU draw calls.
//
// A Renderer owns the device, queue and frame targets. A MeshRender is the
// system that, once per frame, assembles the environment bind group from
// the main camera and the lights, resolves a pipeline for every visible
// mesh renderer, and records the sorted draw list into a single render
// pass.
//
// Binding convention:
//
//	group 0   material (owned by the material)
//	group 1   environment: camera at its bind index, lights at binding 2
//	slot 0    mesh vertices
//	slot 1    per-instance data, shader locations 5..13
package render
