// Package gputest opens devices on the noop HAL backend for tests.
package gputest

import (
	"testing"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// NoopDevice opens a device and queue on the noop backend. Both are
// destroyed when the test finishes.
func NoopDevice(tb testing.TB) (hal.Device, hal.Queue) {
	tb.Helper()

	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		tb.Fatalf("CreateInstance failed: %v", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		tb.Fatal("noop backend reported no adapters")
	}

	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		tb.Fatalf("Open failed: %v", err)
	}

	tb.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return openDev.Device, openDev.Queue
}

// ReadBuffer copies size bytes of buf through a mapping. The noop backend
// keeps every buffer in host memory, so any buffer can be read back.
func ReadBuffer(tb testing.TB, device hal.Device, buf hal.Buffer, size uint64) []byte {
	tb.Helper()
	mapping, err := device.MapBuffer(buf, 0, size)
	if err != nil {
		tb.Fatalf("MapBuffer failed: %v", err)
	}
	defer func() { _ = device.UnmapBuffer(buf) }()
	return append([]byte(nil), unsafe.Slice((*byte)(mapping.Ptr), size)...)
}
