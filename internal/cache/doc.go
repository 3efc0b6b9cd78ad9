// Package cache provides the keyed store behind the render system's
// pipeline cache.
//
// A Cache with a zero limit never evicts. A positive limit turns it into a
// least-recently-used cache that calls the eviction callback for every
// entry it drops, so owners can release GPU objects:
//
//	c := cache.New[uint64, hal.RenderPipeline](64, func(_ uint64, p hal.RenderPipeline) {
//		device.DestroyRenderPipeline(p)
//	})
//	p, err := c.GetOrCreate(key, build)
//
// The callback runs with the cache locked and must not call back into it.
// Cache is safe for concurrent use and must not be copied after creation.
package cache
