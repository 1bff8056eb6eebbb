package render

// clipPlane identifies one of the six homogeneous clip planes by which
// position axis it tests (0=x, 1=y, 2=z) and the sign applied to that axis
// in the outside test `p.w + sign*p[axis] < 0`.
type clipPlane struct {
	axis int
	sign float64
}

// planes is the fixed six-plane clip order: near, far, left, right,
// bottom, top.
var planes = [6]clipPlane{
	{axis: 2, sign: 1},  // near:   w + z >= 0
	{axis: 2, sign: -1}, // far:    w - z >= 0
	{axis: 0, sign: 1},  // left:   w + x >= 0
	{axis: 0, sign: -1}, // right:  w - x >= 0
	{axis: 1, sign: 1},  // bottom: w + y >= 0
	{axis: 1, sign: -1}, // top:    w - y >= 0
}

func axisValue(pos [4]float64, axis int) float64 {
	return pos[axis]
}

// planeDistance returns p.w + sign*p[axis]; the vertex is outside the plane
// when this is negative.
func planeDistance(pl clipPlane, pos [4]float64) float64 {
	return pos[3] + pl.sign*axisValue(pos, pl.axis)
}

// clipTriangle clips one triangle's worth of interpolable-float records
// (pos is each record's first four floats, x,y,z,w) against all six planes
// in order, returning zero or more resulting triangles as flat slices of
// records. recs must have length 3 on entry. lerp interpolates two records
// element-wise by factor a.
func clipTriangle(recs [][]float64, lerp func(a, b []float64, t float64) []float64) [][][]float64 {
	polygon := recs
	for _, pl := range planes {
		if len(polygon) == 0 {
			return nil
		}
		polygon = clipPolygonAgainstPlane(polygon, pl, lerp)
	}
	if len(polygon) < 3 {
		return nil
	}
	// Fan-triangulate the resulting convex polygon (at most 9 vertices
	// after six planes starting from a triangle).
	tris := make([][][]float64, 0, len(polygon)-2)
	for i := 1; i < len(polygon)-1; i++ {
		tris = append(tris, [][]float64{polygon[0], polygon[i], polygon[i+1]})
	}
	return tris
}

func posOf(rec []float64) [4]float64 {
	return [4]float64{rec[0], rec[1], rec[2], rec[3]}
}

// clipPolygonAgainstPlane runs Sutherland-Hodgman against a single plane.
// This generalizes the original's recursive 0/1/2/3-outside triangle-only
// branching into an explicit loop over an arbitrary-sized polygon, per the
// REDESIGN FLAGS guidance, while preserving the exact interpolation
// coefficient formula.
func clipPolygonAgainstPlane(poly [][]float64, pl clipPlane, lerp func(a, b []float64, t float64) []float64) [][]float64 {
	if len(poly) == 0 {
		return nil
	}
	var out [][]float64
	for i := range poly {
		cur := poly[i]
		prev := poly[(i-1+len(poly))%len(poly)]
		curDist := planeDistance(pl, posOf(cur))
		prevDist := planeDistance(pl, posOf(prev))
		curIn := curDist >= 0
		prevIn := prevDist >= 0

		if curIn != prevIn {
			// Edge crosses the plane: a = outside vertex, b = inside vertex,
			// alpha = (a.w+s*a[axis]) / ((a.w+s*a[axis]) - (b.w+s*b[axis])).
			var a, b []float64
			var da, db float64
			if prevIn {
				a, da = cur, curDist
				b, db = prev, prevDist
			} else {
				a, da = prev, prevDist
				b, db = cur, curDist
			}
			alpha := da / (da - db)
			out = append(out, lerp(a, b, alpha))
		}
		if curIn {
			out = append(out, cur)
		}
	}
	return out
}
