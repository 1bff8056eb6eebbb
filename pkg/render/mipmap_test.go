package render

import "testing"

// stripeTexture builds a w x h texture whose pixel at (x, y) has a distinct
// R value per column and G value per row, so flips/rotations are easy to
// verify by reading a handful of corner pixels.
func stripeTexture(w, h int) *Texture {
	tex := NewTexture(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			tex.SetPixel(x, y, Color{R: uint8(x * 10), G: uint8(y * 10), A: 255})
		}
	}
	return tex
}

func texturesEqual(a, b *Texture) bool {
	if a.Width != b.Width || a.Height != b.Height {
		return false
	}
	for i := range a.Pixels {
		if a.Pixels[i] != b.Pixels[i] {
			return false
		}
	}
	return true
}

func TestFlipHorizontalSwapsColumns(t *testing.T) {
	tex := stripeTexture(4, 2)
	original := tex.GetPixel(0, 0)
	tex.FlipHorizontal()
	if tex.GetPixel(3, 0) != original {
		t.Errorf("expected column 0 to land at column 3 after FlipHorizontal")
	}
	if tex.Width != 4 || tex.Height != 2 {
		t.Errorf("FlipHorizontal must not change dimensions, got %dx%d", tex.Width, tex.Height)
	}
}

func TestFlipPropagatesToMipChain(t *testing.T) {
	tex := stripeTexture(8, 8)
	tex.GenerateMipmaps()
	beforeMip := tex.MipLevel(0).GetPixel(0, 0)

	tex.FlipHorizontal()

	afterMip := tex.MipLevel(0).GetPixel(tex.MipLevel(0).Width-1, 0)
	if beforeMip != afterMip {
		t.Error("FlipHorizontal should flip the mip chain along with the base level")
	}
}

func TestFlipThenGenerateEquivalentToGenerateThenFlip(t *testing.T) {
	a := stripeTexture(8, 8)
	a.GenerateMipmaps()
	a.FlipHorizontal()
	a.FlipVertical()

	b := stripeTexture(8, 8)
	b.FlipHorizontal()
	b.FlipVertical()
	b.GenerateMipmaps()

	if a.MipLevelCount() != b.MipLevelCount() {
		t.Fatalf("mip level counts differ: %d vs %d", a.MipLevelCount(), b.MipLevelCount())
	}
	for i := 0; i < a.MipLevelCount(); i++ {
		if !texturesEqual(a.MipLevel(i), b.MipLevel(i)) {
			t.Errorf("mip level %d differs between flip-then-generate and generate-then-flip", i)
		}
	}
}

func TestRotateCW90SwapsDimensionsAndCorners(t *testing.T) {
	tex := NewTexture(4, 2)
	topLeft := Color{R: 1, A: 255}
	topRight := Color{R: 2, A: 255}
	bottomLeft := Color{R: 3, A: 255}
	tex.SetPixel(0, 0, topLeft)
	tex.SetPixel(3, 0, topRight)
	tex.SetPixel(0, 1, bottomLeft)

	tex.RotateCW90()

	if tex.Width != 2 || tex.Height != 4 {
		t.Fatalf("expected dimensions to swap to 2x4, got %dx%d", tex.Width, tex.Height)
	}
	// A clockwise rotation moves the top-left corner to the top-right corner.
	if tex.GetPixel(1, 0) != topLeft {
		t.Errorf("expected former top-left pixel at new top-right, got %+v", tex.GetPixel(1, 0))
	}
	// The top-right corner moves to the bottom-right corner.
	if tex.GetPixel(1, 3) != topRight {
		t.Errorf("expected former top-right pixel at new bottom-right, got %+v", tex.GetPixel(1, 3))
	}
	// The bottom-left-most original pixel (x=0,y=1) moves to the new top-left.
	if tex.GetPixel(0, 0) != bottomLeft {
		t.Errorf("expected former (0,1) pixel at new top-left, got %+v", tex.GetPixel(0, 0))
	}
}

func TestRotateCCW90IsInverseOfRotateCW90(t *testing.T) {
	original := stripeTexture(5, 3)
	tex := stripeTexture(5, 3)

	tex.RotateCW90()
	tex.RotateCCW90()

	if !texturesEqual(tex, original) {
		t.Error("RotateCCW90 should exactly undo RotateCW90")
	}
}

func TestRotatePropagatesToMipChain(t *testing.T) {
	tex := stripeTexture(8, 8)
	tex.GenerateMipmaps()
	levelsBefore := tex.MipLevelCount()
	baseWidthBefore := tex.MipLevel(0).Width
	baseHeightBefore := tex.MipLevel(0).Height

	tex.RotateCW90()

	if tex.MipLevelCount() != levelsBefore {
		t.Errorf("rotation should not change the number of mip levels, got %d want %d", tex.MipLevelCount(), levelsBefore)
	}
	if tex.MipLevel(0).Width != baseHeightBefore || tex.MipLevel(0).Height != baseWidthBefore {
		t.Errorf("expected mip level 0 dimensions to swap along with the base, got %dx%d", tex.MipLevel(0).Width, tex.MipLevel(0).Height)
	}
}

func TestLineDrawsMajorAxisSteps(t *testing.T) {
	tex := NewTexture(5, 5)
	red := Color{R: 255, A: 255}
	tex.Line(0, 0, 4, 0, red) // horizontal: |dx| > |dy|

	for x := 0; x <= 4; x++ {
		if tex.GetPixel(x, 0) != red {
			t.Errorf("expected horizontal line to cover (%d,0)", x)
		}
	}
}

func TestLineDegenerateIsNoop(t *testing.T) {
	tex := NewTexture(3, 3)
	before := tex.GetPixel(1, 1)
	tex.Line(1, 1, 1, 1, Color{R: 255, A: 255})
	if tex.GetPixel(1, 1) != before {
		t.Error("a zero-length line must not modify any pixel")
	}
}
