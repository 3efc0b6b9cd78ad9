// Package material provides the built-in Basic material and the shader
// preprocessor materials run their WGSL through.
//
// A material owns its group 0 bind group and builds one render pipeline
// per distinct resource.PipelineRequest key: the same material drawn with
// and without an instance buffer gets two pipelines, each built once.
package material
