package render

import "testing"

func lerpFloats(a, b []float64, t float64) []float64 {
	out := make([]float64, len(a))
	for i := range out {
		out[i] = a[i] + (b[i]-a[i])*t
	}
	return out
}

func TestClipTriangleFullyInsideUnchanged(t *testing.T) {
	recs := [][]float64{
		{0, 0, 0, 1},
		{1, 0, 0, 1},
		{0, 1, 0, 1},
	}
	tris := clipTriangle(recs, lerpFloats)
	if len(tris) != 1 {
		t.Fatalf("expected 1 triangle, got %d", len(tris))
	}
}

func TestClipTriangleFullyOutsideDropped(t *testing.T) {
	// All three vertices behind the near plane (w + z < 0 for every vertex
	// when w=1, z=-2).
	recs := [][]float64{
		{0, 0, -2, 1},
		{1, 0, -2, 1},
		{0, 1, -2, 1},
	}
	tris := clipTriangle(recs, lerpFloats)
	if len(tris) != 0 {
		t.Fatalf("expected 0 triangles, got %d", len(tris))
	}
}

func TestClipTriangleStraddlingNearPlaneProducesPolygon(t *testing.T) {
	// One vertex behind the near plane (w+z = 1-2 = -1 < 0), two in front.
	recs := [][]float64{
		{0, 0, -2, 1}, // outside: w+z = -1
		{1, 0, 0, 1},  // inside: w+z = 1
		{0, 1, 0, 1},  // inside: w+z = 1
	}
	tris := clipTriangle(recs, lerpFloats)
	if len(tris) == 0 {
		t.Fatal("expected at least one triangle after clipping a straddling triangle")
	}
	// Every resulting vertex must satisfy every one of the six plane tests.
	for _, tri := range tris {
		for _, v := range tri {
			pos := posOf(v)
			for _, pl := range planes {
				if planeDistance(pl, pos) < -1e-9 {
					t.Errorf("clipped vertex %v violates plane %+v", pos, pl)
				}
			}
		}
	}
}

func TestClipPolygonAgainstPlaneAllInside(t *testing.T) {
	poly := [][]float64{
		{0, 0, 0, 1},
		{1, 0, 0, 1},
		{0, 1, 0, 1},
	}
	out := clipPolygonAgainstPlane(poly, planes[0], lerpFloats)
	if len(out) != 3 {
		t.Fatalf("expected 3 vertices preserved, got %d", len(out))
	}
}

func TestClipPolygonAgainstPlaneEmptyInput(t *testing.T) {
	out := clipPolygonAgainstPlane(nil, planes[0], lerpFloats)
	if out != nil {
		t.Fatalf("expected nil output for empty input, got %v", out)
	}
}
