package render

import (
	"fmt"
	"strconv"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/g3d/camera"
	"github.com/gogpu/g3d/ecs"
	"github.com/gogpu/g3d/internal/logging"
	"github.com/gogpu/g3d/light"
	"github.com/gogpu/g3d/resource"
	"github.com/gogpu/g3d/world"
)

// lightBufferLabel names the persistent light uniform in the manager.
const lightBufferLabel = "Environment Lights"

// environment builds the group 1 bind group. Layouts are cached by their
// entries hash for the life of the system; the bind group is rebuilt each
// frame because the buffers behind it may be recreated.
type environment struct {
	caps light.Caps

	layouts   map[uint64]hal.BindGroupLayout
	bindGroup hal.BindGroup

	lights        resource.BufferID
	lightsManager *resource.Manager
}

// frameEnvironment is what the resolve and draw passes need from one
// assembly.
type frameEnvironment struct {
	layout    hal.BindGroupLayout
	hash      uint64
	bindGroup hal.BindGroup
	defines   map[string]string
	dropped   int
}

func newEnvironment(caps light.Caps) *environment {
	return &environment{
		caps:    caps,
		layouts: make(map[uint64]hal.BindGroupLayout),
		lights:  resource.InvalidBufferID,
	}
}

// refreshCameras uploads every dirty camera uniform.
func refreshCameras(w *world.World) error {
	m := w.Resources()
	var err error
	w.Cameras(func(_ ecs.Entity, c camera.Camera) bool {
		if _, err = camera.Refresh(c, m); err != nil {
			return false
		}
		return true
	})
	return err
}

// assemble returns nil without error when the world has no main camera.
func (env *environment) assemble(w *world.World, device hal.Device) (*frameEnvironment, error) {
	if err := refreshCameras(w); err != nil {
		return nil, err
	}
	_, cam, ok := w.MainCamera()
	if !ok {
		return nil, nil
	}
	base := cam.Base()
	if base.BindIndex == light.Binding {
		return nil, fmt.Errorf("%w: both use binding %d", ErrBindingConflict, light.Binding)
	}

	m := w.Resources()
	camBuf, ok := m.Buffer(base.Buffer)
	if !ok {
		return nil, fmt.Errorf("render: main camera buffer %v: %w", base.Buffer, resource.ErrBufferNotFound)
	}
	lightBuf, dropped, err := env.uploadLights(w)
	if err != nil {
		return nil, err
	}

	entries := []gputypes.BindGroupLayoutEntry{
		uniformEntry(base.BindIndex),
		uniformEntry(light.Binding),
	}
	if base.BindIndex > light.Binding {
		entries[0], entries[1] = entries[1], entries[0]
	}
	entriesHash := resource.HashBindGroupLayoutEntries(entries)
	layout, err := env.layout(device, entriesHash, entries)
	if err != nil {
		return nil, err
	}

	if env.bindGroup != nil {
		device.DestroyBindGroup(env.bindGroup)
		env.bindGroup = nil
	}
	bindGroup, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "environment_bind",
		Layout: layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: base.BindIndex, Resource: gputypes.BufferBinding{
				Buffer: camBuf.Buffer.NativeHandle(), Offset: 0, Size: camBuf.Size,
			}},
			{Binding: light.Binding, Resource: gputypes.BufferBinding{
				Buffer: lightBuf.Buffer.NativeHandle(), Offset: 0, Size: lightBuf.Size,
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create environment bind group: %w", err)
	}
	env.bindGroup = bindGroup

	defines := map[string]string{
		resource.DefineCameraBinding:  strconv.FormatUint(uint64(base.BindIndex), 10),
		resource.DefineLightBinding:   strconv.Itoa(light.Binding),
		resource.DefineMaxDirectional: strconv.Itoa(max(env.caps.Directional, 1)),
		resource.DefineMaxAmbient:     strconv.Itoa(max(env.caps.Ambient, 1)),
	}
	return &frameEnvironment{
		layout:    layout,
		hash:      resource.CombineHashes(entriesHash, resource.HashDefines(defines)),
		bindGroup: bindGroup,
		defines:   defines,
		dropped:   dropped,
	}, nil
}

func uniformEntry(binding uint32) gputypes.BindGroupLayoutEntry {
	return gputypes.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
		Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
	}
}

func (env *environment) layout(device hal.Device, hash uint64, entries []gputypes.BindGroupLayoutEntry) (hal.BindGroupLayout, error) {
	if l, ok := env.layouts[hash]; ok {
		return l, nil
	}
	l, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "environment_layout",
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("create environment layout: %w", err)
	}
	env.layouts[hash] = l
	logging.Logger().Debug("render: environment layout created", "hash", hash)
	return l, nil
}

// uploadLights packs the world's lights into the persistent light buffer.
// Storage order is registration order, so the first registered lights win
// when a cap is exceeded.
func (env *environment) uploadLights(w *world.World) (*resource.BufferResource, int, error) {
	var dirs []light.Directional
	for _, d := range world.Query[light.Directional](w) {
		dirs = append(dirs, *d)
	}
	var ambients []light.Ambient
	for _, a := range world.Query[light.Ambient](w) {
		ambients = append(ambients, *a)
	}

	packed, over := light.Pack(dirs, ambients, env.caps)
	if over.Total() > 0 {
		logging.Logger().Warn("render: lights over cap dropped",
			"directional", over.Directional, "ambient", over.Ambient,
			"capDirectional", env.caps.Directional, "capAmbient", env.caps.Ambient)
	}
	data := packed.Bytes()

	m := w.Resources()
	if env.lightsManager != m {
		env.lights = resource.InvalidBufferID
		env.lightsManager = m
	}
	if buf, ok := m.Buffer(env.lights); ok {
		if err := m.UpdateBuffer(env.lights, data, 0); err != nil {
			return nil, 0, fmt.Errorf("render: update lights: %w", err)
		}
		return buf, over.Total(), nil
	}

	id, err := m.CreateBuffer(resource.BufferTypeLight, resource.BufferUsageUniform, data,
		resource.WithBindIndex(light.Binding), resource.WithLabel(lightBufferLabel))
	if err != nil {
		return nil, 0, fmt.Errorf("render: create lights: %w", err)
	}
	env.lights = id
	buf, _ := m.Buffer(id)
	return buf, over.Total(), nil
}

// destroy releases the cached layouts, the last bind group and the light
// buffer.
func (env *environment) destroy(device hal.Device) {
	if env.bindGroup != nil {
		device.DestroyBindGroup(env.bindGroup)
		env.bindGroup = nil
	}
	for hash, l := range env.layouts {
		device.DestroyBindGroupLayout(l)
		delete(env.layouts, hash)
	}
	if env.lightsManager != nil {
		env.lightsManager.DestroyBuffer(env.lights)
		env.lightsManager = nil
	}
	env.lights = resource.InvalidBufferID
}
