// Command worldsim drives the render world through a headless frame
// loop: a synthetic scene of instanced meshes orbiting a camera, batched
// and drawn against the null device, with per-frame and final stats.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/renderworld"
	"github.com/gogpu/renderworld/batch"
	"github.com/gogpu/renderworld/gpu"
	"github.com/gogpu/renderworld/pool"
)

func main() {
	var (
		frames   = flag.Int("frames", 120, "frames to simulate")
		objects  = flag.Int("objects", 2000, "mesh proxies in the scene")
		churn    = flag.Int("churn", 16, "proxies destroyed and recreated per frame")
		verbose  = flag.Bool("v", false, "enable debug logging")
		interval = flag.Int("report", 30, "frames between progress reports")
	)
	flag.Parse()

	if *verbose {
		renderworld.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	if err := run(*frames, *objects, *churn, *interval); err != nil {
		log.Fatalf("worldsim: %v", err)
	}
}

func run(frames, objects, churn, interval int) error {
	dev := gpu.NewNullDevice()
	deletions := gpu.NewDeletionQueue(dev, gpu.DefaultDeferFrames)
	buffers, err := gpu.NewBufferPool(dev, deletions)
	if err != nil {
		return err
	}
	meshes, err := gpu.NewMeshPool(buffers, dev)
	if err != nil {
		return err
	}
	materials, err := gpu.NewMaterialPool(dev, deletions)
	if err != nil {
		return err
	}
	ring, err := gpu.NewFrameRing(buffers, gpu.FrameRingConfig{
		BufferSize: uint64(batch.MaxInstances * batch.InstanceStride),
		Name:       "instances",
	})
	if err != nil {
		return err
	}

	builder, err := batch.NewBuilder(batch.Config{Meshes: meshes, Materials: materials})
	if err != nil {
		return err
	}
	renderer, err := batch.NewRenderer(batch.RendererConfig{
		Builder:   builder,
		Meshes:    meshes,
		Buffers:   buffers,
		Materials: materials,
		Ring:      ring,
		Queue:     dev,
	})
	if err != nil {
		return err
	}

	geometry, err := uploadGeometry(meshes)
	if err != nil {
		return err
	}
	shading := createMaterials(materials)

	world := renderworld.NewRenderWorld()
	camera := world.CreateCamera()
	world.SetCameraPose(camera, mgl32.Vec3{0, 20, 60}, mgl32.Vec3{0, -0.2, -1}, mgl32.Vec3{0, 1, 0})
	world.SetCameraLens(camera, mgl32.DegToRad(70), 16.0/9.0, 0.1, 500)
	world.SetMainCamera(camera)

	proxies := make([]pool.Handle, objects)
	for i := range proxies {
		proxies[i] = spawn(world, geometry[i%len(geometry)], shading[i%len(shading)], i)
	}

	var visible []*renderworld.MeshProxy
	var totalDraws, totalInstances int

	for frame := 0; frame < frames; frame++ {
		// Mutate: orbit a slice of the scene, churn a few proxies.
		for i := 0; i < len(proxies); i += 7 {
			angle := float32(frame)*0.02 + float32(i)
			pos := orbit(angle, 10+float32(i%40))
			world.SetMeshTransform(proxies[i], mgl32.Translate3D(pos.X(), pos.Y(), pos.Z()))
		}
		for i := 0; i < churn && i < len(proxies); i++ {
			victim := (frame*churn + i) % len(proxies)
			world.DestroyMesh(proxies[victim])
			proxies[victim] = spawn(world, geometry[victim%len(geometry)], shading[victim%len(shading)], victim)
		}

		world.BeginFrame()
		cam := world.MainCameraProxy()

		visible = renderworld.CollectMeshes(world, cam, visible[:0])
		builder.Build(visible, nil)
		if err := renderer.PrepareGPU(world.Frame()); err != nil {
			return err
		}

		pass := &gpu.NullRenderPass{}
		stats := renderer.Render(pass, world.Frame())
		totalDraws += stats.DrawCalls
		totalInstances += stats.Instances

		deletions.ProcessDeletions(world.Frame())
		world.EndFrame()

		if interval > 0 && frame%interval == 0 {
			fmt.Printf("frame %4d: visible %4d  batches %3d  draws %3d  pipeline binds %2d  pending deletions %d\n",
				frame, len(visible), stats.Batches, stats.DrawCalls, stats.PipelineBinds, deletions.Stats().Pending)
		}
	}

	// Shutdown: tear the scene down and flush with the GPU idle.
	world.Clear()
	meshes.Clear()
	materials.Clear()
	ring.Release()
	buffers.Clear()
	deletions.FlushAll()

	ds := dev.Stats()
	fmt.Printf("\nsimulated %d frames, %d objects (%d churned per frame)\n", frames, objects, churn)
	fmt.Printf("draw calls %d, instances %d\n", totalDraws, totalInstances)
	fmt.Printf("device: buffers %d/%d created/destroyed, bind groups %d, pipelines %d, uploads %d (%d bytes)\n",
		ds.BuffersCreated, ds.BuffersDestroyed, ds.BindGroupsCreated, ds.PipelinesCreated, ds.Writes, ds.BytesWritten)
	if ds.BuffersCreated != ds.BuffersDestroyed {
		return fmt.Errorf("leak: %d buffers never destroyed", ds.BuffersCreated-ds.BuffersDestroyed)
	}
	fmt.Println("all GPU resources accounted for")
	return nil
}

// uploadGeometry creates a few placeholder meshes of differing sizes.
func uploadGeometry(meshes *gpu.MeshPool) ([]pool.Handle, error) {
	handles := make([]pool.Handle, 0, 4)
	for i, verts := range []int{8, 24, 96, 480} {
		h, err := meshes.Create(gpu.MeshDescriptor{
			Name:        fmt.Sprintf("mesh-%d", i),
			VertexData:  make([]byte, verts*32),
			IndexData:   make([]byte, verts*3*2),
			IndexFormat: gputypes.IndexFormatUint16,
			IndexCount:  uint32(verts * 3),
			VertexCount: uint32(verts),
		})
		if err != nil {
			return nil, err
		}
		handles = append(handles, h)
	}
	return handles, nil
}

// createMaterials registers a handful of material instances over two
// pipeline families.
func createMaterials(materials *gpu.MaterialPool) []pool.Handle {
	handles := make([]pool.Handle, 0, 6)
	for i := 0; i < 6; i++ {
		name := fmt.Sprintf("material-%d", i)
		handles = append(handles, materials.Create(gpu.MaterialDescriptor{
			Name:          name,
			BaseMaterial:  uint32(i % 2),
			BindGroupDesc: &hal.BindGroupDescriptor{Label: name},
			PipelineDesc:  &hal.RenderPipelineDescriptor{Label: name},
		}))
	}
	return handles
}

func spawn(w *renderworld.RenderWorld, mesh, material pool.Handle, seed int) pool.Handle {
	h := w.CreateMesh()
	w.SetMeshGeometry(h, mesh)
	w.SetMeshMaterial(h, material)
	w.SetMeshLocalBounds(h, renderworld.AABB{
		Min: mgl32.Vec3{-1, -1, -1},
		Max: mgl32.Vec3{1, 1, 1},
	})
	pos := orbit(float32(seed), 10+float32(seed%40))
	w.SetMeshTransform(h, mgl32.Translate3D(pos.X(), pos.Y(), pos.Z()))
	return h
}

func orbit(angle, radius float32) mgl32.Vec3 {
	return mgl32.Vec3{
		radius * float32(math.Cos(float64(angle))),
		float32(int(angle)%8) - 4,
		-radius * float32(math.Sin(float64(angle))),
	}
}
