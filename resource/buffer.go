// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package resource

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// BufferType classifies what a buffer holds. Values at or above
// customBufferTypeBase come from CustomBufferType.
type BufferType uint32

const (
	BufferTypeTransform BufferType = iota
	BufferTypeLight
	BufferTypeCamera
	BufferTypeMaterial
	BufferTypeInstance

	customBufferTypeBase BufferType = 1 << 16
)

// CustomBufferType returns an application-defined buffer type.
func CustomBufferType(n uint32) BufferType {
	return customBufferTypeBase + BufferType(n&0xFFFF)
}

// IsCustom reports whether t was created by CustomBufferType.
func (t BufferType) IsCustom() bool { return t >= customBufferTypeBase }

// String returns the name of the buffer type.
func (t BufferType) String() string {
	switch t {
	case BufferTypeTransform:
		return "Transform"
	case BufferTypeLight:
		return "Light"
	case BufferTypeCamera:
		return "Camera"
	case BufferTypeMaterial:
		return "Material"
	case BufferTypeInstance:
		return "Instance"
	}
	if t.IsCustom() {
		return fmt.Sprintf("Custom(%d)", uint32(t-customBufferTypeBase))
	}
	return fmt.Sprintf("Unknown(%d)", uint32(t))
}

// BufferUsage selects how a buffer is bound.
type BufferUsage uint8

const (
	BufferUsageUniform BufferUsage = iota
	BufferUsageStorage
	BufferUsageVertex
	BufferUsageIndex
)

// String returns the name of the usage.
func (u BufferUsage) String() string {
	switch u {
	case BufferUsageUniform:
		return "Uniform"
	case BufferUsageStorage:
		return "Storage"
	case BufferUsageVertex:
		return "Vertex"
	case BufferUsageIndex:
		return "Index"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(u))
	}
}

// GPUUsage maps the usage to HAL usage flags. Every buffer is a copy
// destination so it can be updated in place.
func (u BufferUsage) GPUUsage() gputypes.BufferUsage {
	switch u {
	case BufferUsageStorage:
		return gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst
	case BufferUsageVertex:
		return gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst
	case BufferUsageIndex:
		return gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst
	default:
		return gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst
	}
}

// BufferResource is one GPU buffer plus the metadata the Manager indexes it by.
type BufferResource struct {
	Buffer hal.Buffer
	Type   BufferType
	Usage  BufferUsage

	// Size is the byte size the buffer was created with. Writes are
	// checked against it; the GPU allocation may be padded past it.
	Size uint64

	BindIndex    uint32
	HasBindIndex bool
	Label        string

	device hal.Device
}

// Destroy releases the GPU buffer. Safe to call more than once.
func (b *BufferResource) Destroy() {
	if b.Buffer == nil || b.device == nil {
		return
	}
	b.device.DestroyBuffer(b.Buffer)
	b.Buffer = nil
}

// BufferOption configures CreateBuffer.
type BufferOption func(*bufferOptions)

type bufferOptions struct {
	bindIndex    uint32
	hasBindIndex bool
	label        string
}

// WithBindIndex records the shader binding slot the buffer is meant for.
func WithBindIndex(index uint32) BufferOption {
	return func(o *bufferOptions) {
		o.bindIndex = index
		o.hasBindIndex = true
	}
}

// WithLabel sets the debug label and registers the buffer under that name.
func WithLabel(label string) BufferOption {
	return func(o *bufferOptions) {
		o.label = label
	}
}

// align4 rounds n up to a multiple of 4, the copy alignment of WriteBuffer.
func align4(n uint64) uint64 {
	return (n + 3) &^ 3
}

// padded returns data extended with zeros to a multiple of 4 bytes.
func padded(data []byte) []byte {
	n := align4(uint64(len(data)))
	if n == uint64(len(data)) {
		return data
	}
	out := make([]byte, n)
	copy(out, data)
	return out
}

// createGPUBuffer allocates a padded buffer and uploads data.
func createGPUBuffer(device hal.Device, queue hal.Queue, label string, usage gputypes.BufferUsage, data []byte) (hal.Buffer, error) {
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  align4(uint64(len(data))),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	if err := queue.WriteBuffer(buf, 0, padded(data)); err != nil {
		device.DestroyBuffer(buf)
		return nil, fmt.Errorf("upload %s: %w", label, err)
	}
	return buf, nil
}
