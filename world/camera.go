package world

import (
	"fmt"

	"github.com/gogpu/g3d/camera"
	"github.com/gogpu/g3d/ecs"
)

// CameraOf returns e's camera of the given kind.
func (w *World) CameraOf(e ecs.Entity, kind camera.Kind) (camera.Camera, bool) {
	switch kind {
	case camera.KindPerspective:
		if c, ok := Get[camera.Perspective](w, e); ok {
			return c, true
		}
	case camera.KindOrthographic:
		if c, ok := Get[camera.Orthographic](w, e); ok {
			return c, true
		}
	}
	return nil, false
}

// Cameras yields every camera of every kind, perspective first.
func (w *World) Cameras(yield func(ecs.Entity, camera.Camera) bool) {
	for e, c := range Query[camera.Perspective](w) {
		if !yield(e, c) {
			return
		}
	}
	for e, c := range Query[camera.Orthographic](w) {
		if !yield(e, c) {
			return
		}
	}
}

// SetMainCamera clears the main flag on every camera of every kind, then
// sets it on e's camera of kind. At most one camera is main afterwards.
func (w *World) SetMainCamera(e ecs.Entity, kind camera.Kind) error {
	target, ok := w.CameraOf(e, kind)
	if !ok {
		return fmt.Errorf("%w: entity %d kind %s", ErrNotACamera, uint64(e), kind)
	}
	w.clearMainCameraFlags()
	target.Base().IsMain = true
	return nil
}

// MainCamera returns the main camera, looking at perspective cameras
// before orthographic ones.
func (w *World) MainCamera() (ecs.Entity, camera.Camera, bool) {
	for e, c := range w.Cameras {
		if c.Base().IsMain {
			return e, c, true
		}
	}
	return ecs.InvalidEntity, nil, false
}

func (w *World) clearMainCameraFlags() {
	for _, c := range w.Cameras {
		c.Base().IsMain = false
	}
}

// releaseCameras frees the uniform buffers of e's cameras.
func (w *World) releaseCameras(e ecs.Entity) {
	for _, kind := range camera.Kinds {
		if c, ok := w.CameraOf(e, kind); ok {
			camera.Release(c, w.resources)
		}
	}
}

// releaseReplacedCamera frees old's uniform buffer when a camera is
// replaced by one that does not share it.
func (w *World) releaseReplacedCamera(old, next any) {
	oc, ok := old.(camera.Camera)
	if !ok {
		return
	}
	if nc, ok := next.(camera.Camera); ok && nc.Base().Buffer == oc.Base().Buffer {
		return
	}
	camera.Release(oc, w.resources)
}
