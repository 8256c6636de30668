package gpu

import (
	"bytes"
	"testing"

	"github.com/gogpu/wgpu/hal"
)

func TestNullDeviceWriteBuffer(t *testing.T) {
	dev := NewNullDevice()
	buf, err := dev.CreateBuffer(&hal.BufferDescriptor{Size: 8})
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}

	dev.WriteBuffer(buf, 2, []byte{1, 2, 3})
	nb := buf.(*nullBuffer)
	if want := []byte{0, 0, 1, 2, 3, 0, 0, 0}; !bytes.Equal(nb.data, want) {
		t.Errorf("data = %v, want %v", nb.data, want)
	}

	// Out-of-range offsets and destroyed buffers are dropped.
	dev.WriteBuffer(buf, 8, []byte{9})
	dev.DestroyBuffer(buf)
	dev.WriteBuffer(buf, 0, []byte{9})
	if nb.data[0] != 0 {
		t.Error("write landed in a destroyed buffer")
	}

	s := dev.Stats()
	if s.Writes != 1 || s.BytesWritten != 3 {
		t.Errorf("stats = {Writes: %d, BytesWritten: %d}, want {1, 3}", s.Writes, s.BytesWritten)
	}
}

func TestNullResourceSurface(t *testing.T) {
	dev := NewNullDevice()

	var buf hal.Buffer
	buf, err := dev.CreateBuffer(&hal.BufferDescriptor{Label: "vb", Size: 4})
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}
	if buf.NativeHandle() == 0 {
		t.Error("buffer NativeHandle() = 0, want a nonzero id")
	}

	var tex hal.Texture
	tex, err = dev.CreateTexture(&hal.TextureDescriptor{Label: "shadow"})
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	if tex.NativeHandle() == 0 {
		t.Error("texture NativeHandle() = 0, want a nonzero id")
	}
	if got := tex.CurrentUsage(); got != 0 {
		t.Errorf("CurrentUsage() = %v, want 0", got)
	}
	tex.AddPendingRef()
	tex.DecPendingRef()

	if buf.NativeHandle() == tex.NativeHandle() {
		t.Error("buffer and texture share a native handle")
	}
}

func TestNullDeviceWriteClipsAtEnd(t *testing.T) {
	dev := NewNullDevice()
	buf, _ := dev.CreateBuffer(&hal.BufferDescriptor{Size: 4})

	dev.WriteBuffer(buf, 2, []byte{1, 2, 3, 4})
	if got := dev.Stats().BytesWritten; got != 2 {
		t.Errorf("BytesWritten = %d, want 2 (clipped)", got)
	}
}
