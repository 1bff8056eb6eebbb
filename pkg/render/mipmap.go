package render

import "math"

// mipChain is the flat chain of half-resolution levels below a texture.
// levels[0] is half the texture's size, levels[1] a quarter, and so on; each
// dimension is halved and clamped to at least 1, and the chain ends at the
// first 1x1 level. This replaces the
// original engine's singly-linked mipmap list with a flat slice owned by
// the base texture.
type mipChain struct {
	levels []*Texture
}

// GenerateMipmaps builds the full mipmap chain for t by repeated 2x2 box
// filtering. Idempotent: calling it again once the chain already covers t's
// current dimensions is a no-op.
func (t *Texture) GenerateMipmaps() {
	if t.mips.levels != nil {
		return
	}
	var chain []*Texture
	src := t
	for src.Width > 1 || src.Height > 1 {
		nw, nh := src.Width/2, src.Height/2
		if nw < 1 {
			nw = 1
		}
		if nh < 1 {
			nh = 1
		}
		if nw == src.Width && nh == src.Height {
			break
		}
		next := NewTexture(nw, nh)
		next.WrapU, next.WrapV, next.FilterMode = src.WrapU, src.WrapV, src.FilterMode
		for y := range nh {
			for x := range nw {
				next.SetPixel(x, y, boxFilter2x2(src, x*2, y*2))
			}
		}
		chain = append(chain, next)
		src = next
	}
	t.mips.levels = chain
}

func boxFilter2x2(t *Texture, x, y int) Color {
	c00 := t.GetPixel(x, y)
	c10 := t.GetPixel(min(x+1, t.Width-1), y)
	c01 := t.GetPixel(x, min(y+1, t.Height-1))
	c11 := t.GetPixel(min(x+1, t.Width-1), min(y+1, t.Height-1))
	return Color{
		R: avg4(c00.R, c10.R, c01.R, c11.R),
		G: avg4(c00.G, c10.G, c01.G, c11.G),
		B: avg4(c00.B, c10.B, c01.B, c11.B),
		A: avg4(c00.A, c10.A, c01.A, c11.A),
	}
}

func avg4(a, b, c, d uint8) uint8 {
	return uint8((int(a) + int(b) + int(c) + int(d)) / 4)
}

// MipLevelCount returns how many mip levels below the base exist. Generates
// the chain first if it hasn't been built yet.
func (t *Texture) MipLevelCount() int {
	t.GenerateMipmaps()
	return len(t.mips.levels)
}

// MipLevel returns level n of the chain, where 0 is the first half-size
// level (the base texture itself is level -1, conceptually). Clamped to the
// last available level.
func (t *Texture) MipLevel(n int) *Texture {
	t.GenerateMipmaps()
	if len(t.mips.levels) == 0 {
		return t
	}
	if n < 0 {
		return t
	}
	if n >= len(t.mips.levels) {
		return t.mips.levels[len(t.mips.levels)-1]
	}
	return t.mips.levels[n]
}

// FlipHorizontal flips the texture and its whole mip chain left-to-right in
// place.
func (t *Texture) FlipHorizontal() {
	flipH(t)
	for _, m := range t.mips.levels {
		flipH(m)
	}
}

// FlipVertical flips the texture and its whole mip chain top-to-bottom in
// place.
func (t *Texture) FlipVertical() {
	flipV(t)
	for _, m := range t.mips.levels {
		flipV(m)
	}
}

// RotateCW90 rotates the texture and its whole mip chain 90 degrees
// clockwise in place, swapping width and height.
func (t *Texture) RotateCW90() {
	rotateCW(t)
	for _, m := range t.mips.levels {
		rotateCW(m)
	}
}

// RotateCCW90 rotates the texture and its whole mip chain 90 degrees
// counter-clockwise in place, swapping width and height.
func (t *Texture) RotateCCW90() {
	rotateCCW(t)
	for _, m := range t.mips.levels {
		rotateCCW(m)
	}
}

func rotateCW(t *Texture) {
	w, h := t.Width, t.Height
	out := make([]Color, w*h)
	for y := range h {
		for x := range w {
			nx, ny := h-1-y, x
			out[ny*h+nx] = t.Pixels[y*w+x]
		}
	}
	t.Width, t.Height = h, w
	t.Pixels = out
}

func rotateCCW(t *Texture) {
	w, h := t.Width, t.Height
	out := make([]Color, w*h)
	for y := range h {
		for x := range w {
			nx, ny := y, w-1-x
			out[ny*h+nx] = t.Pixels[y*w+x]
		}
	}
	t.Width, t.Height = h, w
	t.Pixels = out
}

func flipH(t *Texture) {
	for y := range t.Height {
		for x := range t.Width / 2 {
			ox := t.Width - 1 - x
			a, b := t.GetPixel(x, y), t.GetPixel(ox, y)
			t.SetPixel(x, y, b)
			t.SetPixel(ox, y, a)
		}
	}
}

func flipV(t *Texture) {
	for y := range t.Height / 2 {
		oy := t.Height - 1 - y
		for x := range t.Width {
			a, b := t.GetPixel(x, y), t.GetPixel(x, oy)
			t.SetPixel(x, y, b)
			t.SetPixel(x, oy, a)
		}
	}
}

// Line draws a line from (x0,y0) to (x1,y1) in c, choosing the major axis by
// |dx| vs |dy| and stepping the minor coordinate by floor(start+slope*step).
// A degenerate zero-length line is a no-op.
func (t *Texture) Line(x0, y0, x1, y1 int, c Color) {
	if x0 == x1 && y0 == y1 {
		return
	}
	dx, dy := x1-x0, y1-y0
	if abs(dx) >= abs(dy) {
		step := 1
		if x1 < x0 {
			step = -1
		}
		slope := float64(dy) / float64(dx)
		for x := x0; ; x += step {
			y := y0 + int(math.Floor(float64(x-x0)*slope))
			t.SetPixel(x, y, c)
			if x == x1 {
				break
			}
		}
		return
	}
	step := 1
	if y1 < y0 {
		step = -1
	}
	slope := float64(dx) / float64(dy)
	for y := y0; ; y += step {
		x := x0 + int(math.Floor(float64(y-y0)*slope))
		t.SetPixel(x, y, c)
		if y == y1 {
			break
		}
	}
}
