package render

import "math"

// UVSource is implemented by any pixel record type whose UV texture
// coordinate the sampler needs to read generically. Records name their own
// field rather than exposing a raw float offset, per the typed-accessor
// realization of the original's texelOffsetIntoPixel parameter.
type UVSource interface {
	UV() (u, v float64)
}

// tracedPixel is the minimal snapshot the sampler keeps of a pixel once
// completed: enough to compute screen-space UV derivatives for a
// neighboring pixel without retaining the whole record type (the sampler
// itself is not generic, so it stores samples through this narrow
// interface).
type tracedPixel struct {
	u, v float64
}

// Sampler is the texture-sampling view handed to every pixel-shader
// invocation for the half-triangle currently being filled.
type Sampler struct {
	r *Renderer

	aboveLookup map[int]tracedPixel
	previous    tracedPixel
	havePrev    bool
	newScanline bool

	curX int
	curU, curV float64
}

func newSampler(r *Renderer) *Sampler {
	return &Sampler{r: r, aboveLookup: make(map[int]tracedPixel)}
}

// beginScanline primes the sampler for a new scanline of the current
// half-triangle: the pixel to the left is unknown until the first pixel on
// this row completes.
func (s *Sampler) beginScanline() {
	s.newScanline = true
	s.havePrev = false
}

// setCurrent records which pixel the sampler is currently answering queries
// for; uv comes from the shader-visible record via UVSource when available.
func (s *Sampler) setCurrent(x int, rec any) {
	s.curX = x
	if uv, ok := rec.(UVSource); ok {
		s.curU, s.curV = uv.UV()
	}
}

// cachePixel stores the just-completed pixel's UV into the above-lookup so
// the next scanline down can use it as "the pixel above", and rotates it
// into "previous" for "the pixel to the left" on this same scanline.
func (s *Sampler) cachePixel(x int, rec any) {
	u, v := 0.0, 0.0
	if uv, ok := rec.(UVSource); ok {
		u, v = uv.UV()
	}
	t := tracedPixel{u: u, v: v}
	s.aboveLookup[x] = t
	s.previous = t
	s.havePrev = true
	s.newScanline = false
}

func (s *Sampler) endScanline() {}

// leftNeighbor / aboveNeighbor return the UV of "the pixel to the left" and
// "the pixel above" from the previous-pixel cache and aboveLookup. A
// neighbor that is not cached is reported with ok=false, and SampleTex2D
// then uses the current pixel's own UV in its place; missing neighbors are
// not re-interpolated from the triangle's edges.
func (s *Sampler) leftNeighbor() (u, v float64, ok bool) {
	if s.havePrev && !s.newScanline {
		return s.previous.u, s.previous.v, true
	}
	return 0, 0, false
}

func (s *Sampler) aboveNeighbor(x int) (u, v float64, ok bool) {
	if t, found := s.aboveLookup[x]; found {
		return t.u, t.v, true
	}
	return 0, 0, false
}

// SampleTex2D samples tex at the current pixel's UV coordinate (read via
// UVSource), selecting linear/bilinear/mipmap/trilinear per the renderer's
// active flags.
func (s *Sampler) SampleTex2D(tex *Texture) Color {
	u, v := s.curU, s.curV

	if !s.r.Flags.Has(Mipmap) {
		return s.sampleFiltered(tex, u, v)
	}

	leftU, leftV, haveLeft := s.leftNeighbor()
	aboveU, aboveV, haveAbove := s.aboveNeighbor(s.curX)
	if !haveLeft {
		leftU, leftV = u, v
	}
	if !haveAbove {
		aboveU, aboveV = u, v
	}

	dudx := float64(tex.Width) * (leftU - u)
	dvdx := float64(tex.Height) * (leftV - v)
	dudy := float64(tex.Width) * (aboveU - u)
	dvdy := float64(tex.Height) * (aboveV - v)

	densityX := math.Sqrt(dudx*dudx + dvdx*dvdx)
	densityY := math.Sqrt(dudy*dudy + dvdy*dvdy)
	lod := math.Log2(math.Max(densityX, densityY)) + 0.5
	if math.IsNaN(lod) || math.IsInf(lod, 0) {
		lod = 0
	}
	if lod < 0 {
		lod = 0
	}

	level := int(math.Floor(lod))
	mip1 := tex.MipLevel(level)

	if s.r.Flags.Has(Trilinear) {
		mip2 := tex.MipLevel(level + 1)
		frac := lod - math.Floor(lod)
		c1 := s.sampleFiltered(mip1, u, v)
		c2 := s.sampleFiltered(mip2, u, v)
		return blendColor(c1, c2, frac)
	}
	return s.sampleFiltered(mip1, u, v)
}

func (s *Sampler) sampleFiltered(tex *Texture, u, v float64) Color {
	if s.r.Flags.Has(Bilinear) {
		return bilinearSample(tex, u, v)
	}
	return linearSample(tex, u, v)
}

const texelEpsilon = 1e-7

func wrapCoord(v float64) float64 {
	return v - math.Floor(v-texelEpsilon)
}

func linearSample(tex *Texture, u, v float64) Color {
	u, v = wrapCoord(u), wrapCoord(v)
	x := int(math.Floor(u * float64(tex.Width-1)))
	y := int(math.Floor(v * float64(tex.Height-1)))
	return tex.GetPixel(clampInt(x, 0, tex.Width-1), clampInt(y, 0, tex.Height-1))
}

func bilinearSample(tex *Texture, u, v float64) Color {
	u, v = wrapCoord(u), wrapCoord(v)
	fx := u*float64(tex.Width) - 0.5
	fy := v*float64(tex.Height) - 0.5
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	alpha := fx - float64(x0)
	beta := fy - float64(y0)

	atOrClamp := func(x, y int) Color {
		if x+1 > tex.Width-1 {
			x = tex.Width - 1
		}
		if y+1 > tex.Height-1 {
			y = tex.Height - 1
		}
		return tex.GetPixel(clampInt(x, 0, tex.Width-1), clampInt(y, 0, tex.Height-1))
	}

	c1 := atOrClamp(x0, y0)
	c2 := atOrClamp(x0+1, y0)
	c3 := atOrClamp(x0, y0+1)
	c4 := atOrClamp(x0+1, y0+1)

	mix := func(get func(Color) uint8) uint8 {
		v := float64(get(c1))*(1-alpha)*(1-beta) +
			float64(get(c2))*alpha*(1-beta) +
			float64(get(c3))*(1-alpha)*beta +
			float64(get(c4))*alpha*beta
		return uint8(v)
	}
	return Color{
		R: mix(func(c Color) uint8 { return c.R }),
		G: mix(func(c Color) uint8 { return c.G }),
		B: mix(func(c Color) uint8 { return c.B }),
		A: mix(func(c Color) uint8 { return c.A }),
	}
}

func blendColor(a, b Color, t float64) Color {
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x)*(1-t) + float64(y)*t)
	}
	return Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// CubeFace names one of the six faces of a cube map, in the fixed order
// SampleCubemap expects: +X, -X, +Y, -Y, +Z, -Z.
type CubeFace int

const (
	FacePosX CubeFace = iota
	FaceNegX
	FacePosY
	FaceNegY
	FacePosZ
	FaceNegZ
)

// SampleCubemap selects the dominant-axis face for direction (s,t,p) and
// samples it with the fixed Lengyel 7.5 per-face remapping. Cube-map
// sampling is always linear: no bilinear, no mip.
func (s *Sampler) SampleCubemap(faces [6]*Texture, sc, t, p float64) Color {
	absS, absT, absP := math.Abs(sc), math.Abs(t), math.Abs(p)

	var face CubeFace
	var fs, ft float64
	switch {
	case absS >= absT && absS >= absP:
		if sc > 0 {
			face, fs, ft = FacePosX, 0.5-p/(2*sc), 0.5-t/(2*sc)
		} else {
			face, fs, ft = FaceNegX, 0.5-p/(2*sc), 0.5+t/(2*sc)
		}
	case absT >= absS && absT >= absP:
		if t > 0 {
			face, fs, ft = FacePosY, 0.5+sc/(2*t), 0.5+p/(2*t)
		} else {
			face, fs, ft = FaceNegY, 0.5-sc/(2*t), 0.5+p/(2*t)
		}
	default:
		if p > 0 {
			face, fs, ft = FacePosZ, 0.5+sc/(2*p), 0.5-t/(2*p)
		} else {
			face, fs, ft = FaceNegZ, 0.5+sc/(2*p), 0.5+t/(2*p)
		}
	}
	return linearSample(faces[face], fs, ft)
}
