// Package camera provides perspective and orthographic camera components
// and the uniform they upload for the environment bind group.
//
// Mutating a camera through its setters marks it dirty; Refresh rewrites
// the GPU uniform only for dirty cameras. Code that edits fields directly
// must call MarkDirty.
package camera
