package gpu

import (
	"testing"

	"github.com/gogpu/wgpu/hal"
)

func TestDeletionDeferWindow(t *testing.T) {
	dev := NewNullDevice()
	q := NewDeletionQueue(dev, 3)

	buf, err := dev.CreateBuffer(&hal.BufferDescriptor{Label: "victim", Size: 64})
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}
	q.QueueBuffer(buf) // queued at frame 0

	for frame := uint64(1); frame < 3; frame++ {
		q.ProcessDeletions(frame)
		if got := dev.Stats().BuffersDestroyed; got != 0 {
			t.Fatalf("frame %d: buffer destroyed %d frames early", frame, 3-frame)
		}
		if q.Stats().Pending != 1 {
			t.Fatalf("frame %d: pending = %d, want 1", frame, q.Stats().Pending)
		}
	}

	q.ProcessDeletions(3)
	if got := dev.Stats().BuffersDestroyed; got != 1 {
		t.Fatalf("BuffersDestroyed = %d after defer window, want 1", got)
	}
	if s := q.Stats(); s.Pending != 0 || s.Destroyed != 1 {
		t.Fatalf("Stats = %+v, want pending 0 destroyed 1", s)
	}
}

func TestDeletionQueueUsesCurrentFrame(t *testing.T) {
	dev := NewNullDevice()
	q := NewDeletionQueue(dev, 2)

	q.ProcessDeletions(10)
	buf, _ := dev.CreateBuffer(&hal.BufferDescriptor{Size: 16})
	q.QueueBuffer(buf) // queued at frame 10

	q.ProcessDeletions(11)
	if dev.Stats().BuffersDestroyed != 0 {
		t.Fatal("destroyed one frame early")
	}
	q.ProcessDeletions(12)
	if dev.Stats().BuffersDestroyed != 1 {
		t.Fatal("not destroyed once the window elapsed")
	}
}

func TestDeletionQueueNilResources(t *testing.T) {
	q := NewDeletionQueue(NewNullDevice(), 3)

	q.QueueBuffer(nil)
	q.QueueTexture(nil)
	q.QueueBindGroup(nil)
	q.QueuePipeline(nil)

	if got := q.Stats().Pending; got != 0 {
		t.Fatalf("Pending = %d after queueing nils, want 0", got)
	}
}

func TestDeletionQueueAllKinds(t *testing.T) {
	dev := NewNullDevice()
	q := NewDeletionQueue(dev, 1)

	buf, _ := dev.CreateBuffer(&hal.BufferDescriptor{Size: 8})
	tex, _ := dev.CreateTexture(&hal.TextureDescriptor{Label: "t"})
	grp, _ := dev.CreateBindGroup(&hal.BindGroupDescriptor{Label: "g"})
	pl, _ := dev.CreateRenderPipeline(&hal.RenderPipelineDescriptor{Label: "p"})

	q.QueueBuffer(buf)
	q.QueueTexture(tex)
	q.QueueBindGroup(grp)
	q.QueuePipeline(pl)
	q.ProcessDeletions(1)

	s := dev.Stats()
	if s.BuffersDestroyed != 1 || s.TexturesDestroyed != 1 || s.BindGroupsDestroy != 1 || s.PipelinesDestroyed != 1 {
		t.Fatalf("device stats = %+v, want one destroy per kind", s)
	}
}

func TestDeletionFlushAll(t *testing.T) {
	dev := NewNullDevice()
	q := NewDeletionQueue(dev, 3)

	for i := 0; i < 4; i++ {
		buf, _ := dev.CreateBuffer(&hal.BufferDescriptor{Size: 8})
		q.QueueBuffer(buf)
	}
	q.FlushAll()

	if got := dev.Stats().BuffersDestroyed; got != 4 {
		t.Fatalf("BuffersDestroyed = %d after FlushAll, want 4", got)
	}
	if q.Stats().Pending != 0 {
		t.Fatal("entries still pending after FlushAll")
	}
}

func TestDeletionDefaultDeferFrames(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"zero", 0, DefaultDeferFrames},
		{"negative", -1, DefaultDeferFrames},
		{"explicit", 5, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewDeletionQueue(NewNullDevice(), tt.in)
			if got := q.DeferFrames(); got != tt.want {
				t.Errorf("DeferFrames() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestResourceKindString(t *testing.T) {
	kinds := map[ResourceKind]string{
		ResourceBuffer:    "Buffer",
		ResourceTexture:   "Texture",
		ResourceBindGroup: "BindGroup",
		ResourcePipeline:  "Pipeline",
	}
	for k, want := range kinds {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", k, got, want)
		}
	}
}
