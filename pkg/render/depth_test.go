package render

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func TestDepthBufferSaveToFileWritesBGRABitmap(t *testing.T) {
	d := NewDepthBuffer(2, 1)
	d.put(0, 0, 1.0) // full depth -> grayscale 255
	d.put(1, 0, 0.0) // zero depth -> grayscale 0

	path := filepath.Join(t.TempDir(), "depth.bmp")
	if err := d.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if data[0] != 'B' || data[1] != 'M' {
		t.Fatalf("missing BM signature, got %q", data[0:2])
	}
	pixelOffset := binary.LittleEndian.Uint32(data[10:14])
	bpp := binary.LittleEndian.Uint16(data[28:30])
	if bpp != 32 {
		t.Fatalf("expected 32 bits per pixel, got %d", bpp)
	}
	compression := binary.LittleEndian.Uint32(data[30:34])
	if compression != 0 {
		t.Fatalf("expected uncompressed (BI_RGB=0), got %d", compression)
	}

	row := data[pixelOffset:]
	px0 := row[0:4] // (0,0): depth 1 -> grayscale 255
	px1 := row[4:8] // (1,0): depth 0 -> grayscale 0
	if px1[0] != 0 || px1[1] != 0 || px1[2] != 0 || px1[3] != 0xFF {
		t.Errorf("pixel (1,0) = %v, want B=G=R=0 A=255", px1)
	}
	if px0[0] != 255 || px0[1] != 255 || px0[2] != 255 || px0[3] != 0xFF {
		t.Errorf("pixel (0,0) = %v, want B=G=R=255 A=255", px0)
	}
}

func TestDepthBufferClearedToFarSentinel(t *testing.T) {
	d := NewDepthBuffer(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if d.Get(x, y) != farDepth {
				t.Fatalf("expected farDepth at (%d,%d), got %v", x, y, d.Get(x, y))
			}
		}
	}
}

func TestDepthBufferResizePreservesAllocationAndClears(t *testing.T) {
	d := NewDepthBuffer(4, 4)
	d.put(1, 1, 0.1)

	d.Resize(2, 2)
	if d.Width != 2 || d.Height != 2 {
		t.Fatalf("expected 2x2 after resize, got %dx%d", d.Width, d.Height)
	}
	if d.Get(1, 1) != farDepth {
		t.Error("resize should clear to farDepth")
	}
	if cap(d.Depths) < 16 {
		t.Errorf("shrinking should keep the 16-entry allocation, cap = %d", cap(d.Depths))
	}

	d.Resize(4, 4)
	if d.Get(1, 1) != farDepth {
		t.Error("regrowing should clear, not expose stale data")
	}
}

func TestFlagsHasSetClearToggle(t *testing.T) {
	var f Flags
	f = f.Set(Bilinear | Mipmap)
	if !f.Has(Bilinear) || !f.Has(Mipmap) {
		t.Fatal("expected both bits set")
	}
	if f.Has(Wireframe) {
		t.Fatal("Wireframe should not be set")
	}

	f = f.Clear(Bilinear)
	if f.Has(Bilinear) {
		t.Fatal("Bilinear should have been cleared")
	}
	if !f.Has(Mipmap) {
		t.Fatal("Mipmap should remain set after clearing Bilinear")
	}

	f = f.Toggle(Wireframe)
	if !f.Has(Wireframe) {
		t.Fatal("Toggle should set an unset bit")
	}
	f = f.Toggle(Wireframe)
	if f.Has(Wireframe) {
		t.Fatal("Toggle should clear a set bit")
	}
}

func TestCommandQueuePushTryPopOrder(t *testing.T) {
	q := NewCommandQueue()
	q.Push(CmdResize, 800, 600)
	q.Push(CmdSetFlag, int(Bilinear))

	want := []int{CmdResize, 800, 600, CmdSetFlag, int(Bilinear)}
	for _, w := range want {
		got, ok := q.TryPop()
		if !ok {
			t.Fatal("expected a value, queue was empty")
		}
		if got != w {
			t.Errorf("got %d, want %d", got, w)
		}
	}
	if _, ok := q.TryPop(); ok {
		t.Fatal("expected empty queue after draining")
	}
}

func TestCommandQueueDrainAll(t *testing.T) {
	q := NewCommandQueue()
	q.Push(1, 2, 3)
	drained := q.DrainAll()
	if len(drained) != 3 {
		t.Fatalf("expected 3 drained values, got %d", len(drained))
	}
	if q.Len() != 0 {
		t.Fatal("expected empty queue after DrainAll")
	}
}
