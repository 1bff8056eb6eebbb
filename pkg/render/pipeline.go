package render

import (
	"math"
	"runtime"
	"sync"
	"unsafe"
)

// VertexShader turns one user vertex into a pixel record. It must be pure
// and thread-safe: DrawElementArray's concurrent path runs many copies of
// it concurrently with no shared state beyond what the closure itself
// captures as read-only.
type VertexShader[V, P any] func(V) P

// PixelShader turns one interpolated pixel record plus the active sampler
// into an RGBA color in [0,1] per channel.
type PixelShader[P any] func(P, *Sampler) [4]float64

// Every pixel/vertex record type P used with DrawElementArray must satisfy
// this layout contract: its underlying memory is nothing but contiguous
// float64 values, with the clip-space position (x, y, z, w) as the first
// four. This is the compile-time-float-count realization of the "array of
// floats" contract: floatsOf gives every interpolation routine a uniform
// view without per-field reflection or a virtual base class.
func floatsOf[T any](v *T) []float64 {
	n := int(unsafe.Sizeof(*v) / 8)
	return unsafe.Slice((*float64)(unsafe.Pointer(v)), n)
}

func recordFromFloats[T any](f []float64) T {
	var out T
	copy(floatsOf(&out), f)
	return out
}

func lerpRecord[T any](a, b T, t float64) T {
	out := a
	fa := floatsOf(&out)
	fb := floatsOf(&b)
	for i := range fa {
		fa[i] += (fb[i] - fa[i]) * t
	}
	return out
}

// flipPerspective is its own inverse: it is used both to prepare a record
// for perspective-correct linear interpolation ("flip") and to restore an
// interpolated record to true values afterward ("unflip"). Position x,y,z
// (already NDC, already divided once by the perspective-divide step) are
// never touched; only w bounces between w and 1/w, and every other float
// is scaled alongside it.
func flipPerspective[T any](rec T) T {
	f := floatsOf(&rec)
	x, y, z := f[0], f[1], f[2]
	newW := 1.0 / f[3]
	for i := range f {
		f[i] *= newW
	}
	f[0], f[1], f[2] = x, y, z
	f[3] = newW
	return rec
}

const viewportEpsilon = 0.01

// Renderer owns a depth buffer and borrows a color render target. It
// exposes the single generic entry point DrawElementArray.
type Renderer struct {
	Target  *Framebuffer
	Depth   *DepthBuffer
	Flags   Flags
	Workers int
}

// NewRenderer creates a renderer targeting fb (nil for a depth-only pass,
// used by shadow-casting lights) with a depth buffer matching its size.
func NewRenderer(fb *Framebuffer, flags Flags) *Renderer {
	w, h := 0, 0
	if fb != nil {
		w, h = fb.Width, fb.Height
	}
	return &Renderer{
		Target:  fb,
		Depth:   NewDepthBuffer(w, h),
		Flags:   flags,
		Workers: 1,
	}
}

// Resize resizes the depth buffer to w x h; the color target is left
// untouched. Callers must keep the color target's own dimensions in sync
// themselves; Resize only guarantees the depth buffer matches.
func (r *Renderer) Resize(w, h int) {
	r.Depth.Resize(w, h)
}

func (r *Renderer) width() int {
	return r.Depth.Width
}

func (r *Renderer) height() int {
	return r.Depth.Height
}

// DrawElementArray is the renderer's single generic pipeline entry point:
// index-array + vertex-array + vertex shader + pixel shader in, rasterized
// triangles out. Vertex shading is memoized per unique index (P1): each
// worker (goroutine, for the concurrent path) owns its own cache so the
// vertex shader is invoked at most once per unique index per call.
func DrawElementArray[V, P any](r *Renderer, indices []int, vertices []V, vs VertexShader[V, P], ps PixelShader[P]) {
	triCount := len(indices) / 3
	if triCount == 0 {
		return
	}

	workers := r.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > runtime.GOMAXPROCS(0) {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > triCount {
		workers = triCount
	}

	run := func(start, end int) {
		cache := make(map[int]P, (end-start)*3)
		shaded := func(idx int) P {
			if p, ok := cache[idx]; ok {
				return p
			}
			p := vs(vertices[idx])
			cache[idx] = p
			return p
		}
		for t := start; t < end; t++ {
			i0, i1, i2 := indices[t*3], indices[t*3+1], indices[t*3+2]
			tri := [3]P{shaded(i0), shaded(i1), shaded(i2)}
			drawTriangle(r, tri, ps)
		}
	}

	if workers <= 1 {
		run(0, triCount)
		return
	}

	chunk := triCount / workers
	var wg sync.WaitGroup
	for w := range workers {
		start := w * chunk
		end := start + chunk
		if w == workers-1 {
			end = triCount
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			run(start, end)
		}(start, end)
	}
	wg.Wait()
}

// drawTriangle clips, projects, and rasterizes a single triangle.
func drawTriangle[P any](r *Renderer, tri [3]P, ps PixelShader[P]) {
	recs := make([][]float64, 3)
	for i := range tri {
		recs[i] = floatsOf(&tri[i])
	}
	lerp := func(a, b []float64, t float64) []float64 {
		out := make([]float64, len(a))
		for i := range out {
			out[i] = a[i] + (b[i]-a[i])*t
		}
		return out
	}
	clipped := clipTriangle(recs, lerp)
	for _, c := range clipped {
		p0 := recordFromFloats[P](c[0])
		p1 := recordFromFloats[P](c[1])
		p2 := recordFromFloats[P](c[2])
		drawClippedTriangle(r, p0, p1, p2, ps)
	}
}

func drawClippedTriangle[P any](r *Renderer, p0, p1, p2 P, ps PixelShader[P]) {
	verts := [3]P{p0, p1, p2}

	// Perspective divide: x,y,z /= w; w itself is preserved (never mutated)
	// so perspective-correct interpolation can still reference it.
	for i := range verts {
		f := floatsOf(&verts[i])
		w := f[3]
		if w == 0 {
			w = 1e-9
		}
		f[0] /= w
		f[1] /= w
		f[2] /= w
	}

	if r.Flags.Has(BackfaceCull) {
		f0, f1, f2 := floatsOf(&verts[0]), floatsOf(&verts[1]), floatsOf(&verts[2])
		e1x, e1y := f1[0]-f0[0], f1[1]-f0[1]
		e2x, e2y := f2[0]-f0[0], f2[1]-f0[1]
		if e1x*e2y-e1y*e2x < 0 {
			return
		}
	}

	W, H := float64(r.width()), float64(r.height())
	var sx, sy [3]float64
	for i := range verts {
		f := floatsOf(&verts[i])
		sx[i] = math.Floor((f[0] + 1) * (W - viewportEpsilon) / 2)
		sy[i] = math.Floor((-f[1] + 1) * (H - viewportEpsilon) / 2)
	}

	// Sort by sy ascending: top, mid, bot.
	order := [3]int{0, 1, 2}
	for i := range 2 {
		for j := 0; j < 2-i; j++ {
			if sy[order[j]] > sy[order[j+1]] {
				order[j], order[j+1] = order[j+1], order[j]
			}
		}
	}
	ti, mi, bi := order[0], order[1], order[2]
	if int(sy[ti]) == int(sy[bi]) {
		return // degenerate: collapsed to one scanline
	}

	if r.Flags.Has(Wireframe) {
		drawWireTriangle(r, sx, sy, ti, mi, bi)
		return
	}

	// Flip perspective on all three before interpolating.
	for i := range verts {
		verts[i] = flipPerspective(verts[i])
	}

	top := traveler[P]{rec: verts[ti], sx: sx[ti], sy: sy[ti]}
	mid := traveler[P]{rec: verts[mi], sx: sx[mi], sy: sy[mi]}
	bot := traveler[P]{rec: verts[bi], sx: sx[bi], sy: sy[bi]}

	alpha := 0.0
	if bot.sy != top.sy {
		alpha = (mid.sy - top.sy) / (bot.sy - top.sy)
	}
	cutX := top.sx + (bot.sx-top.sx)*alpha
	cut := traveler[P]{
		rec: lerpRecord(top.rec, bot.rec, alpha),
		sx:  cutX,
		sy:  mid.sy,
	}

	sampler := newSampler(r)
	if cutX < mid.sx {
		// Middle vertex on the right: flat-bottom top half, flat-top bottom half.
		scanFill(r, sampler, top, cut, mid, true, ps)
		scanFill(r, sampler, bot, cut, mid, false, ps)
	} else {
		scanFill(r, sampler, top, mid, cut, true, ps)
		scanFill(r, sampler, bot, mid, cut, false, ps)
	}

	if r.Flags.Has(Outlines) {
		drawWireTriangle(r, sx, sy, ti, mi, bi)
	}
}

type traveler[P any] struct {
	rec    P
	sx, sy float64
}

// scanFill rasterizes one flat-top or flat-bottom half-triangle, top being
// the apex shared by both edges and (left, right) the two base vertices in
// screen order (left.sx <= right.sx is not assumed; each scanline picks the
// actual leftmost traveler itself).
func scanFill[P any](r *Renderer, s *Sampler, top, a, b traveler[P], flatTop bool, ps PixelShader[P]) {
	yTop := math.Ceil(top.sy - 0.5)
	yBot := math.Ceil(a.sy - 0.5)
	if !flatTop {
		yTop = math.Ceil(a.sy - 0.5)
		yBot = math.Ceil(top.sy - 0.5)
	}
	if yBot < yTop {
		return
	}

	var edgeTop, edgeBot traveler[P]
	if flatTop {
		edgeTop, edgeBot = top, a // either a or b works; both share sy
	} else {
		edgeTop, edgeBot = a, top
	}

	dy := edgeBot.sy - edgeTop.sy
	if dy == 0 {
		dy = 1
	}

	for y := yTop; y < yBot; y++ {
		ad := (y - edgeTop.sy) / dy
		var left, right traveler[P]
		if flatTop {
			left = lerpTraveler(top, a, ad)
			right = lerpTraveler(top, b, ad)
		} else {
			left = lerpTraveler(a, top, ad)
			right = lerpTraveler(b, top, ad)
		}
		if right.sx < left.sx {
			left, right = right, left
		}

		xLeft := math.Ceil(left.sx - 0.5)
		xRight := math.Ceil(right.sx - 0.5)
		if xRight < xLeft {
			continue
		}
		dx := right.sx - left.sx
		if dx == 0 {
			dx = 1
		}

		s.beginScanline()
		for x := xLeft; x <= xRight; x++ {
			across := (x - left.sx) / dx
			cur := lerpRecord(left.rec, right.rec, across)

			unflipped := flipPerspective(cur)
			f := floatsOf(&unflipped)
			depth := (f[2] + 1) / 2

			xi, yi := int(x), int(y)
			if xi < 0 || xi >= r.width() || yi < 0 || yi >= r.height() {
				continue
			}
			if depth < r.Depth.Get(xi, yi) {
				r.Depth.put(xi, yi, depth)
				s.setCurrent(xi, unflipped)
				rgba := ps(unflipped, s)
				if r.Target != nil {
					r.Target.SetPixel(xi, yi, colorFromFloats(rgba))
				}
			}
			s.cachePixel(xi, unflipped)
		}
		s.endScanline()
	}
}

func lerpTraveler[P any](a, b traveler[P], t float64) traveler[P] {
	return traveler[P]{
		rec: lerpRecord(a.rec, b.rec, t),
		sx:  a.sx + (b.sx-a.sx)*t,
		sy:  a.sy + (b.sy-a.sy)*t,
	}
}

func drawWireTriangle(r *Renderer, sx, sy [3]float64, ti, mi, bi int) {
	if r.Target == nil {
		return
	}
	white := Color{R: 255, G: 255, B: 255, A: 255}
	idx := [3]int{ti, mi, bi}
	for e := range 3 {
		a, b := idx[e], idx[(e+1)%3]
		r.Target.DrawLine(int(sx[a]), int(sy[a]), int(sx[b]), int(sy[b]), white)
	}
}

func colorFromFloats(rgba [4]float64) Color {
	clamp := func(v float64) uint8 {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		return uint8(v * 255)
	}
	return Color{R: clamp(rgba[0]), G: clamp(rgba[1]), B: clamp(rgba[2]), A: clamp(rgba[3])}
}
