// Package component defines the renderable components the mesh render
// system consumes: MeshRenderer, Instance and Transform.
package component
