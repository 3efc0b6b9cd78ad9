// Package g3d is a small real-time 3D engine core on top of gogpu/wgpu.
//
// # Overview
//
// A World registers entities built from swappable components: mesh
// renderers, transforms and instances, cameras and lights. Once per frame
// the render system turns the live component set into an ordered list of
// GPU draw calls against a HAL device.
//
// # Quick Start
//
//	eng, err := g3d.NewEngine(device, queue, g3d.WithSize(800, 600))
//	if err != nil {
//	    return err
//	}
//	defer eng.Close()
//
//	w := eng.World()
//	verts, idx := resource.Cube()
//	mesh, _ := resource.NewMesh(device, queue, "cube",
//	    resource.VertexFormatPositionNormalUV, resource.EncodeVertices(verts), idx)
//	red, _ := material.NewBasic(device, queue, [4]float32{1, 0, 0, 1})
//
//	cube := w.CreateEntity()
//	_ = world.Add(w, cube, component.NewMeshRenderer(
//	    w.Resources().AddMesh(mesh, "cube"),
//	    w.Resources().AddMaterial(red, "red")))
//	_ = world.Add(w, cube, component.NewTransform(mgl32.Vec3{0, 0, -3}))
//
//	cam := w.CreateEntity()
//	_ = world.Add(w, cam, camera.NewPerspective())
//	_ = w.SetMainCamera(cam, camera.KindPerspective)
//
//	stats, err := eng.Frame(16 * time.Millisecond)
//
// # Packages
//
//   - ecs: entities and sparse-set component storage
//   - world: the entity registry, component signatures and main camera
//   - resource: GPU buffers, meshes, materials and vertex layouts
//   - component, camera, light: the built-in component types
//   - material: the built-in material and shader preprocessor
//   - render: the renderer, pipeline cache and mesh render system
//   - system: update and render scheduling
//
// # Logging
//
// g3d is silent by default. SetLogger routes every package's diagnostics
// to a *slog.Logger.
package g3d

// Version is the current version of the library.
const Version = "0.1.0"
