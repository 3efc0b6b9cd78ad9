// Command g3d-headless renders a small scene on the noop GPU backend and
// reports per-frame statistics. It is useful for profiling the CPU side
// of the engine without a window or a real GPU.
//
// Profiling:
//
//	go build ./cmd/g3d-headless
//	./g3d-headless -frames 1000 -cubes 500 -profile cpu
//	go tool pprof -http=":8000" ./g3d-headless cpu.pprof
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	"github.com/pkg/profile"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/camera"
	"github.com/gogpu/g3d/component"
	"github.com/gogpu/g3d/light"
	"github.com/gogpu/g3d/material"
	"github.com/gogpu/g3d/resource"
	"github.com/gogpu/g3d/system"
	"github.com/gogpu/g3d/world"
)

func main() {
	var (
		width    = flag.Uint("width", 800, "frame width")
		height   = flag.Uint("height", 600, "frame height")
		frames   = flag.Int("frames", 120, "frames to render")
		cubes    = flag.Int("cubes", 16, "cubes, drawn as one instanced entity")
		mode     = flag.String("profile", "", "profile mode: cpu, mem or empty to disable")
		verbose  = flag.Bool("v", false, "debug logging")
		cacheCap = flag.Int("pipeline-cache", 0, "pipeline cache limit, 0 for unbounded")
	)
	flag.Parse()

	if *verbose {
		g3d.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	switch *mode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		log.Fatalf("unknown profile mode %q", *mode)
	}

	if err := run(uint32(*width), uint32(*height), *frames, *cubes, *cacheCap); err != nil { //nolint:gosec // G115: flag sizes
		log.Fatal(err)
	}
}

func run(width, height uint32, frames, cubes, cacheCap int) error {
	device, queue, closeDevice, err := openNoopDevice()
	if err != nil {
		return err
	}
	defer closeDevice()

	eng, err := g3d.NewEngine(device, queue,
		g3d.WithSize(width, height),
		g3d.WithPipelineCacheLimit(cacheCap),
		g3d.WithClearColor(gputypes.Color{R: 0.1, G: 0.1, B: 0.12, A: 1}))
	if err != nil {
		return err
	}
	defer eng.Close()

	if err := buildScene(eng, device, queue, cubes); err != nil {
		return err
	}

	start := time.Now()
	var draws, built int
	for range frames {
		stats, err := eng.Frame(16 * time.Millisecond)
		if err != nil {
			return fmt.Errorf("frame: %w", err)
		}
		draws += len(stats.DrawCalls)
		built += stats.PipelinesBuilt
	}
	elapsed := time.Since(start)

	cs := eng.MeshRender().CacheStats()
	log.Printf("%d frames in %v (%.1f us/frame), %d draws, %d pipelines built, cache hit rate %.2f",
		frames, elapsed, float64(elapsed.Microseconds())/float64(max(frames, 1)), draws, built, cs.HitRate)
	return nil
}

func buildScene(eng *g3d.Engine, device hal.Device, queue hal.Queue, cubes int) error {
	w := eng.World()
	res := w.Resources()

	verts, idx := resource.Cube()
	cube, err := resource.NewMesh(device, queue, "cube",
		resource.VertexFormatPositionNormalUV, resource.EncodeVertices(verts), idx)
	if err != nil {
		return err
	}
	verts, idx = resource.Quad()
	quad, err := resource.NewMesh(device, queue, "floor",
		resource.VertexFormatPositionNormalUV, resource.EncodeVertices(verts), idx)
	if err != nil {
		return err
	}
	orange, err := material.NewBasic(device, queue, [4]float32{1, 0.5, 0.1, 1}, material.WithLabel("orange"))
	if err != nil {
		return err
	}
	grey, err := material.NewBasic(device, queue, [4]float32{0.4, 0.4, 0.4, 1}, material.WithLabel("grey"))
	if err != nil {
		return err
	}
	cubeID := res.AddMesh(cube, "cube")
	quadID := res.AddMesh(quad, "floor")
	orangeID := res.AddMaterial(orange, "orange")
	greyID := res.AddMaterial(grey, "grey")

	floor := w.CreateEntity()
	_ = world.Add(w, floor, component.NewMeshRenderer(quadID, greyID))
	ft := component.NewTransform(mgl32.Vec3{0, -1, 0})
	ft.Scale = mgl32.Vec3{20, 20, 1}
	ft.Rotation = mgl32.QuatRotate(-mgl32.DegToRad(90), mgl32.Vec3{1, 0, 0})
	_ = world.Add(w, floor, ft)

	swarm := w.CreateEntity()
	_ = world.Add(w, swarm, component.NewMeshRenderer(cubeID, orangeID))
	inst := component.NewInstance()
	side := 1
	for side*side < cubes {
		side++
	}
	for i := range cubes {
		x := float32(i%side) - float32(side)/2
		z := float32(i/side) - float32(side)/2
		inst.Add(component.NewInstanceData(mgl32.Translate3D(x*1.5, 0, -z*1.5), uint32(i))) //nolint:gosec // G115: small counts
	}
	_ = world.Add(w, swarm, inst)

	sun := w.CreateEntity()
	_ = world.Add(w, sun, light.NewDirectional(mgl32.Vec3{-0.3, -1, -0.5}, mgl32.Vec3{1, 0.95, 0.9}, 1))
	sky := w.CreateEntity()
	_ = world.Add(w, sky, light.NewAmbient())

	cam := w.CreateEntity()
	pc := camera.NewPerspective()
	pc.SetPosition(mgl32.Vec3{0, 6, 12})
	pc.LookAt(mgl32.Vec3{0, 0, 0})
	_ = world.Add(w, cam, pc)
	if err := w.SetMainCamera(cam, camera.KindPerspective); err != nil {
		return err
	}

	spin := system.UpdateFunc{Label: "spin", Fn: func(w *world.World, dt time.Duration) error {
		in, ok := world.Get[component.Instance](w, swarm)
		if !ok {
			return nil
		}
		rot := mgl32.HomogRotate3DY(float32(dt.Seconds()))
		for i, d := range in.Data() {
			in.Update(i, component.NewInstanceData(d.Model.Mul4(rot), d.ID))
		}
		return nil
	}}
	if err := eng.AddSystem(spin); err != nil {
		return err
	}
	return eng.Resize(eng.Renderer().Size())
}

// openNoopDevice opens the first adapter of the noop backend.
func openNoopDevice() (hal.Device, hal.Queue, func(), error) {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, nil, nil, fmt.Errorf("noop backend reported no adapters")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, nil, nil, fmt.Errorf("open device: %w", err)
	}
	log.Printf("using %s", adapters[0].Info.Name)
	return openDev.Device, openDev.Queue, func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}, nil
}
