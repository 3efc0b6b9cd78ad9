// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package material

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/g3d/internal/logging"
	"github.com/gogpu/g3d/resource"
)

//go:embed shaders/basic.wgsl
var basicShaderSource string

// basicUniformSize is color vec4 + params vec4.
const basicUniformSize = 32

// Defines derived from the vertex layouts.
const (
	defineInstanced = "INSTANCED"
	defineHasNormal = "HAS_NORMAL"
	defineHasColor  = "HAS_COLOR"
)

var (
	// ErrDestroyed is returned when using a destroyed material.
	ErrDestroyed = errors.New("material: destroyed")

	// ErrNoVertexLayout is returned for a request without a mesh layout.
	ErrNoVertexLayout = errors.New("material: request has no vertex layout")
)

// Basic is a single-color material lit by the environment lights.
type Basic struct {
	device hal.Device
	queue  hal.Queue
	opts   options

	color [4]float32

	uniform    hal.Buffer
	layout     hal.BindGroupLayout
	bindGroup  hal.BindGroup
	pipelines  map[uint64]*basicPipeline
	destroyed  bool
	buildCount int
}

// basicPipeline is one compiled variant of the material.
type basicPipeline struct {
	shader     hal.ShaderModule
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
}

var _ resource.Material = (*Basic)(nil)

// NewBasic creates the material's uniform buffer and group 0 bind group.
// Pipelines are built on first use.
func NewBasic(device hal.Device, queue hal.Queue, color [4]float32, opts ...Option) (*Basic, error) {
	if device == nil || queue == nil {
		return nil, resource.ErrNilDevice
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	m := &Basic{
		device:    device,
		queue:     queue,
		opts:      o,
		color:     color,
		pipelines: make(map[uint64]*basicPipeline),
	}
	if err := m.createBindGroup(); err != nil {
		m.Destroy()
		return nil, err
	}
	return m, nil
}

// Name implements resource.Material.
func (m *Basic) Name() string { return m.opts.label }

// BindGroup implements resource.Material.
func (m *Basic) BindGroup() hal.BindGroup { return m.bindGroup }

// Color returns the base color.
func (m *Basic) Color() [4]float32 { return m.color }

// SetColor rewrites the material uniform.
func (m *Basic) SetColor(color [4]float32) error {
	if m.destroyed {
		return ErrDestroyed
	}
	m.color = color
	if err := m.queue.WriteBuffer(m.uniform, 0, m.uniformBytes()); err != nil {
		return fmt.Errorf("write %s uniform: %w", m.opts.label, err)
	}
	return nil
}

// PipelineCount returns how many pipeline variants have been built and
// are still alive.
func (m *Basic) PipelineCount() int { return len(m.pipelines) }

// BuildCount returns how many pipelines were ever built.
func (m *Basic) BuildCount() int { return m.buildCount }

// RenderPipeline implements resource.Material.
func (m *Basic) RenderPipeline(req *resource.PipelineRequest) (hal.RenderPipeline, error) {
	if m.destroyed {
		return nil, ErrDestroyed
	}
	key := req.Key()
	if p, ok := m.pipelines[key]; ok {
		return p.pipeline, nil
	}
	p, err := m.buildPipeline(req)
	if err != nil {
		return nil, err
	}
	m.pipelines[key] = p
	m.buildCount++
	logging.Logger().Debug("material: pipeline built",
		"material", m.opts.label, "key", key, "instanced", req.Instanced())
	return p.pipeline, nil
}

// ReleasePipeline implements resource.Material.
func (m *Basic) ReleasePipeline(key uint64) {
	p, ok := m.pipelines[key]
	if !ok {
		return
	}
	delete(m.pipelines, key)
	p.destroy(m.device)
}

// Destroy implements resource.Material. Safe to call more than once.
func (m *Basic) Destroy() {
	if m.destroyed {
		return
	}
	m.destroyed = true
	for key, p := range m.pipelines {
		p.destroy(m.device)
		delete(m.pipelines, key)
	}
	if m.bindGroup != nil {
		m.device.DestroyBindGroup(m.bindGroup)
		m.bindGroup = nil
	}
	if m.layout != nil {
		m.device.DestroyBindGroupLayout(m.layout)
		m.layout = nil
	}
	if m.uniform != nil {
		m.device.DestroyBuffer(m.uniform)
		m.uniform = nil
	}
}

func (m *Basic) uniformBytes() []byte {
	buf := make([]byte, basicUniformSize)
	for i, v := range m.color {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	if m.opts.unlit {
		binary.LittleEndian.PutUint32(buf[16:], math.Float32bits(1))
	}
	return buf
}

func (m *Basic) createBindGroup() error {
	uniform, err := m.device.CreateBuffer(&hal.BufferDescriptor{
		Label: m.opts.label + "_uniform",
		Size:  basicUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create %s uniform: %w", m.opts.label, err)
	}
	m.uniform = uniform
	if err := m.queue.WriteBuffer(uniform, 0, m.uniformBytes()); err != nil {
		return fmt.Errorf("write %s uniform: %w", m.opts.label, err)
	}

	layout, err := m.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: m.opts.label + "_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create %s bind group layout: %w", m.opts.label, err)
	}
	m.layout = layout

	bindGroup, err := m.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  m.opts.label + "_bind",
		Layout: layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniform.NativeHandle(), Offset: 0, Size: basicUniformSize,
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("create %s bind group: %w", m.opts.label, err)
	}
	m.bindGroup = bindGroup
	return nil
}

// shaderDefines derives preprocessor defines from req.
func shaderDefines(req *resource.PipelineRequest) (map[string]string, error) {
	if len(req.VertexLayouts) == 0 {
		return nil, ErrNoVertexLayout
	}
	defines := map[string]string{
		resource.DefineCameraBinding:  "0",
		resource.DefineLightBinding:   "2",
		resource.DefineMaxDirectional: "4",
		resource.DefineMaxAmbient:     "1",
	}
	for k, v := range req.Defines {
		defines[k] = v
	}
	for _, attr := range req.VertexLayouts[0].Attributes {
		if attr.ShaderLocation != 1 {
			continue
		}
		switch attr.Format {
		case gputypes.VertexFormatFloat32x3:
			defines[defineHasNormal] = ""
		case gputypes.VertexFormatFloat32x4:
			defines[defineHasColor] = ""
		}
	}
	if req.Instanced() {
		defines[defineInstanced] = ""
	}
	return defines, nil
}

func (m *Basic) buildPipeline(req *resource.PipelineRequest) (*basicPipeline, error) {
	defines, err := shaderDefines(req)
	if err != nil {
		return nil, err
	}
	src, err := m.opts.preprocessor(basicShaderSource, defines)
	if err != nil {
		return nil, fmt.Errorf("preprocess %s shader: %w", m.opts.label, err)
	}

	source := hal.ShaderSource{WGSL: src}
	if m.opts.spirv {
		code, err := compileSPIRV(src)
		if err != nil {
			return nil, err
		}
		source = hal.ShaderSource{SPIRV: code}
	}

	p := &basicPipeline{}
	shader, err := m.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  m.opts.label + "_shader",
		Source: source,
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s shader: %w", m.opts.label, err)
	}
	p.shader = shader

	layouts := make([]hal.BindGroupLayout, 0, 1+len(req.EnvironmentLayouts))
	layouts = append(layouts, m.layout)
	layouts = append(layouts, req.EnvironmentLayouts...)
	pipeLayout, err := m.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            m.opts.label + "_pipe_layout",
		BindGroupLayouts: layouts,
	})
	if err != nil {
		p.destroy(m.device)
		return nil, fmt.Errorf("create %s pipeline layout: %w", m.opts.label, err)
	}
	p.pipeLayout = pipeLayout

	pipeline, err := m.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  m.opts.label + "_pipeline_" + strconv.FormatUint(req.Key(), 16),
		Layout: pipeLayout,
		Vertex: hal.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers:    req.VertexLayouts,
		},
		Fragment: &hal.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    req.ColorFormat,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		DepthStencil: &hal.DepthStencilState{
			Format:            req.DepthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      gputypes.CompareFunctionLess,
			StencilFront: hal.StencilFaceState{
				Compare:     gputypes.CompareFunctionAlways,
				FailOp:      hal.StencilOperationKeep,
				DepthFailOp: hal.StencilOperationKeep,
				PassOp:      hal.StencilOperationKeep,
			},
			StencilBack: hal.StencilFaceState{
				Compare:     gputypes.CompareFunctionAlways,
				FailOp:      hal.StencilOperationKeep,
				DepthFailOp: hal.StencilOperationKeep,
				PassOp:      hal.StencilOperationKeep,
			},
			StencilReadMask:  0x00,
			StencilWriteMask: 0x00,
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		p.destroy(m.device)
		return nil, fmt.Errorf("create %s pipeline: %w", m.opts.label, err)
	}
	p.pipeline = pipeline
	return p, nil
}

// destroy releases the variant in reverse creation order.
func (p *basicPipeline) destroy(device hal.Device) {
	if p.pipeline != nil {
		device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.shader != nil {
		device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

// compileSPIRV compiles WGSL to SPIR-V words. SPIR-V is little-endian.
func compileSPIRV(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("compile shader to SPIR-V: %w", err)
	}
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return code, nil
}
