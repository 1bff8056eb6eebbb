package render

import "testing"

func solidTexture(w, h int, c Color) *Texture {
	tex := NewTexture(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			tex.SetPixel(x, y, c)
		}
	}
	return tex
}

func TestLinearSampleWrapsRepeat(t *testing.T) {
	tex := NewTexture(2, 1)
	tex.SetPixel(0, 0, Color{R: 255, A: 255})
	tex.SetPixel(1, 0, Color{R: 0, G: 255, A: 255})

	// u=1.5 wraps to 0.5, and floor(0.5*(W-1)) = 0 lands on the first
	// texel (unwrapped, 1.5 would land on the second).
	c := linearSample(tex, 1.5, 0)
	if c.R != 255 {
		t.Errorf("expected wrap to land on red texel, got %+v", c)
	}
}

func TestBilinearSampleInterpolatesBetweenTexels(t *testing.T) {
	tex := NewTexture(2, 1)
	tex.SetPixel(0, 0, Color{R: 0, A: 255})
	tex.SetPixel(1, 0, Color{R: 200, A: 255})

	c := bilinearSample(tex, 0.5, 0.5)
	if c.R < 50 || c.R > 150 {
		t.Errorf("expected blended value between the two texels, got R=%d", c.R)
	}
}

func TestSampleCubemapDominantAxisPositiveZ(t *testing.T) {
	faces := [6]*Texture{
		solidTexture(2, 2, Color{R: 1, A: 255}),
		solidTexture(2, 2, Color{R: 2, A: 255}),
		solidTexture(2, 2, Color{R: 3, A: 255}),
		solidTexture(2, 2, Color{R: 4, A: 255}),
		solidTexture(2, 2, Color{R: 5, A: 255}),
		solidTexture(2, 2, Color{R: 6, A: 255}),
	}
	s := &Sampler{}
	c := s.SampleCubemap(faces, 0, 0, 1)
	if c.R != 5 {
		t.Errorf("direction (0,0,1) should sample FacePosZ (R=5), got R=%d", c.R)
	}
}

func TestSampleCubemapDominantAxisIsScaleInvariant(t *testing.T) {
	faces := [6]*Texture{
		solidTexture(2, 2, Color{R: 1, A: 255}),
		solidTexture(2, 2, Color{R: 2, A: 255}),
		solidTexture(2, 2, Color{R: 3, A: 255}),
		solidTexture(2, 2, Color{R: 4, A: 255}),
		solidTexture(2, 2, Color{R: 5, A: 255}),
		solidTexture(2, 2, Color{R: 6, A: 255}),
	}
	s := &Sampler{}
	c1 := s.SampleCubemap(faces, 0.2, 0.3, 2.0)
	c2 := s.SampleCubemap(faces, 2.0, 3.0, 20.0) // same direction, scaled 10x
	if c1.R != c2.R {
		t.Errorf("face selection should depend only on direction, got %d vs %d", c1.R, c2.R)
	}
}

func TestClampInt(t *testing.T) {
	cases := []struct{ v, lo, hi, want int }{
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
		{5, 0, 10, 5},
	}
	for _, c := range cases {
		if got := clampInt(c.v, c.lo, c.hi); got != c.want {
			t.Errorf("clampInt(%d,%d,%d) = %d, want %d", c.v, c.lo, c.hi, got, c.want)
		}
	}
}

func TestGenerateMipmapsIsIdempotent(t *testing.T) {
	tex := NewTexture(8, 8)
	tex.GenerateMipmaps()
	n1 := tex.MipLevelCount()
	tex.GenerateMipmaps()
	n2 := tex.MipLevelCount()
	if n1 != n2 {
		t.Errorf("GenerateMipmaps should be idempotent, got %d then %d levels", n1, n2)
	}
	if n1 == 0 {
		t.Error("expected at least one mip level for an 8x8 texture")
	}
}

func TestMipLevelClampsToLastLevel(t *testing.T) {
	tex := NewTexture(4, 4)
	tex.GenerateMipmaps()
	count := tex.MipLevelCount()
	last := tex.MipLevel(count - 1)
	beyond := tex.MipLevel(count + 10)
	if last != beyond {
		t.Error("MipLevel should clamp out-of-range levels to the last available level")
	}
}
