package render

import "math"

// farDepth is the sentinel cleared depth value, matching LARGE_DEPTH in the
// original engine: an enormous finite value, always >= 1.0, which every
// rasterized depth (normalized to [0,1]) will beat on the first write.
const farDepth = 1e30

// DepthBuffer is a resizable width x height grid of depths.
type DepthBuffer struct {
	Width, Height int
	Depths        []float64
}

// NewDepthBuffer creates a depth buffer of the given size, cleared to the
// far sentinel.
func NewDepthBuffer(width, height int) *DepthBuffer {
	d := &DepthBuffer{}
	d.Resize(width, height)
	return d
}

// Clear resets every depth to the far sentinel.
func (d *DepthBuffer) Clear() {
	for i := range d.Depths {
		d.Depths[i] = farDepth
	}
}

// Get returns the depth at (x, y). No bounds checking: callers pre-clamp.
func (d *DepthBuffer) Get(x, y int) float64 {
	return d.Depths[y*d.Width+x]
}

// put writes the depth at (x, y). Internal: only the rasterizer's depth
// test calls this.
func (d *DepthBuffer) put(x, y int, depth float64) {
	d.Depths[y*d.Width+x] = depth
}

// Resize grows the backing store only when the new dimensions need more
// storage than is already allocated; it never shrinks the allocation, only
// the logical Width/Height. The buffer is cleared to the far sentinel after
// any resize.
func (d *DepthBuffer) Resize(width, height int) {
	need := width * height
	if cap(d.Depths) < need {
		d.Depths = make([]float64, need)
	} else {
		d.Depths = d.Depths[:need]
	}
	d.Width, d.Height = width, height
	d.Clear()
}

// SaveToFile writes the depth buffer as an uncompressed 32-bit BGRA bitmap:
// each pixel's B, G and R channels are set to min(255, floor(depth*255))
// and alpha is fixed at 0xFF.
func (d *DepthBuffer) SaveToFile(path string) error {
	return writeBMP32(path, d.Width, d.Height, func(x, y int) (b, g, r, a uint8) {
		v := math.Floor(d.Get(x, y) * 255)
		if v > 255 {
			v = 255
		}
		if v < 0 {
			v = 0
		}
		gray := uint8(v)
		return gray, gray, gray, 0xFF
	})
}
