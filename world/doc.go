// Package world ties entities, their components and the resource manager
// together.
//
// Components of any type are added without registering the type first:
// the first Add for a type creates its storage, keyed by the type's
// reflect.Type. Go methods cannot be generic, so the typed operations are
// package functions taking the world:
//
//	w := world.New(device, queue)
//	e := w.CreateEntity()
//	world.Add(w, e, component.NewMeshRenderer(mesh, mat))
//	for e, r := range world.Query[component.MeshRenderer](w) {
//		...
//	}
//
// Each entity also carries a component signature (a bit mask over the
// registered component types) so membership tests and multi-type filters
// do not touch the storages.
package world
