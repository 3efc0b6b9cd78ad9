// Package system schedules per-frame work over a world: update systems
// first, in registration order, then render systems.
package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/g3d/internal/logging"
	"github.com/gogpu/g3d/render"
	"github.com/gogpu/g3d/world"
)

// ErrDuplicateSystem is returned when a system name is registered twice.
var ErrDuplicateSystem = errors.New("system: duplicate name")

// System is anything the Manager schedules.
type System interface {
	Name() string
}

// Updater mutates the world before rendering.
type Updater interface {
	System
	Update(w *world.World, dt time.Duration) error
}

// Renderer records GPU work for the frame.
type Renderer interface {
	System
	Render(w *world.World, r *render.Renderer) (render.FrameStats, error)
}

// UpdateFunc adapts a function to an Updater.
type UpdateFunc struct {
	Label string
	Fn    func(w *world.World, dt time.Duration) error
}

// Name implements System.
func (f UpdateFunc) Name() string { return f.Label }

// Update implements Updater.
func (f UpdateFunc) Update(w *world.World, dt time.Duration) error { return f.Fn(w, dt) }

// Manager runs registered systems once per frame.
type Manager struct {
	updaters  []Updater
	renderers []Renderer
	names     map[string]struct{}
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{names: make(map[string]struct{})}
}

// AddUpdater registers u after the existing update systems.
func (m *Manager) AddUpdater(u Updater) error {
	if err := m.claim(u.Name()); err != nil {
		return err
	}
	m.updaters = append(m.updaters, u)
	return nil
}

// AddRenderer registers r after the existing render systems.
func (m *Manager) AddRenderer(r Renderer) error {
	if err := m.claim(r.Name()); err != nil {
		return err
	}
	m.renderers = append(m.renderers, r)
	return nil
}

func (m *Manager) claim(name string) error {
	if _, ok := m.names[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateSystem, name)
	}
	m.names[name] = struct{}{}
	return nil
}

// Len returns the number of registered systems.
func (m *Manager) Len() int { return len(m.updaters) + len(m.renderers) }

// Run executes every update system, then every render system, stopping at
// the first error. Stats from all render systems are merged.
func (m *Manager) Run(w *world.World, r *render.Renderer, dt time.Duration) (render.FrameStats, error) {
	if err := m.Update(w, dt); err != nil {
		return render.FrameStats{}, err
	}
	return m.Render(w, r)
}

// Update runs the update systems in registration order.
func (m *Manager) Update(w *world.World, dt time.Duration) error {
	for _, u := range m.updaters {
		if err := u.Update(w, dt); err != nil {
			return fmt.Errorf("system %s: %w", u.Name(), err)
		}
	}
	return nil
}

// Render runs the render systems in registration order and merges their
// stats.
func (m *Manager) Render(w *world.World, r *render.Renderer) (render.FrameStats, error) {
	var total render.FrameStats
	for _, rs := range m.renderers {
		stats, err := rs.Render(w, r)
		merge(&total, &stats)
		if err != nil {
			return total, fmt.Errorf("system %s: %w", rs.Name(), err)
		}
	}
	logging.Logger().Debug("system: frame done",
		"draws", len(total.DrawCalls), "skipped", total.Skipped, "built", total.PipelinesBuilt)
	return total, nil
}

// Destroy calls Destroy on every system that has one, in reverse order.
func (m *Manager) Destroy() {
	for i := len(m.renderers) - 1; i >= 0; i-- {
		if d, ok := m.renderers[i].(interface{ Destroy() }); ok {
			d.Destroy()
		}
	}
	for i := len(m.updaters) - 1; i >= 0; i-- {
		if d, ok := m.updaters[i].(interface{ Destroy() }); ok {
			d.Destroy()
		}
	}
}

func merge(dst, src *render.FrameStats) {
	dst.DrawCalls = append(dst.DrawCalls, src.DrawCalls...)
	dst.Skipped += src.Skipped
	dst.PipelinesBuilt += src.PipelinesBuilt
	dst.CacheHits += src.CacheHits
	dst.DroppedLights += src.DroppedLights
	dst.HasCamera = dst.HasCamera || src.HasCamera
}
