package resource

import (
	"fmt"

	"github.com/gogpu/g3d/ecs"
	"github.com/gogpu/g3d/internal/logging"
)

// SyncInstanceBuffer mirrors data into the instance buffer owned by e.
//
// Empty data removes the entity's buffer and returns its old id with
// false. Otherwise the buffer is created on first use, recreated when the
// byte size changes, and updated in place when it does not; a failed
// in-place update falls back to recreation. The returned id is stable for
// as long as the size stays the same.
func (m *Manager) SyncInstanceBuffer(e ecs.Entity, data []byte) (BufferID, bool, error) {
	if len(data) == 0 {
		id, ok := m.instanceBuffers[e]
		if ok {
			m.RemoveInstanceBuffer(e)
		}
		return id, false, nil
	}

	id, ok := m.instanceBuffers[e]
	if ok {
		b, live := m.buffers[id]
		switch {
		case !live:
			delete(m.instanceBuffers, e)
		case b.Size == uint64(len(data)):
			err := m.UpdateBuffer(id, data, 0)
			if err == nil {
				return id, true, nil
			}
			logging.Logger().Warn("resource: instance buffer update failed, recreating",
				"entity", uint64(e), "err", err)
			m.RemoveInstanceBuffer(e)
		default:
			logging.Logger().Debug("resource: instance buffer resized",
				"entity", uint64(e), "from", b.Size, "to", len(data))
			m.RemoveInstanceBuffer(e)
		}
	}

	id, err := m.CreateBuffer(BufferTypeInstance, BufferUsageVertex, data,
		WithLabel(fmt.Sprintf("Instance Buffer Entity %d", uint64(e))))
	if err != nil {
		return InvalidBufferID, false, err
	}
	m.instanceBuffers[e] = id
	return id, true, nil
}

// InstanceBufferID returns the instance buffer owned by e.
func (m *Manager) InstanceBufferID(e ecs.Entity) (BufferID, bool) {
	id, ok := m.instanceBuffers[e]
	return id, ok
}

// RemoveInstanceBuffer destroys the instance buffer owned by e.
func (m *Manager) RemoveInstanceBuffer(e ecs.Entity) bool {
	id, ok := m.instanceBuffers[e]
	if !ok {
		return false
	}
	delete(m.instanceBuffers, e)
	m.DestroyBuffer(id)
	return true
}

// InstanceBufferCount returns how many entities own an instance buffer.
func (m *Manager) InstanceBufferCount() int { return len(m.instanceBuffers) }
