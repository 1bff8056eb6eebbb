package math3d

import (
	"math"
	"testing"
)

func mat4ApproxEqual(t *testing.T, got, want Mat4, eps float64) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > eps {
			t.Fatalf("mismatch at index %d: got %v want %v", i, got, want)
		}
	}
}

func TestInverseRoundTrip(t *testing.T) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.7)).Mul(RotateX(0.3)).Mul(Scale(V3(2, 3, 4)))
	inv := m.Inverse()
	mat4ApproxEqual(t, m.Mul(inv), Identity(), 1e-9)
}

func TestInverseSingularReturnsIdentity(t *testing.T) {
	var singular Mat4
	got := singular.Inverse()
	mat4ApproxEqual(t, got, Identity(), 1e-9)
}

func TestViewportMapsNDCCorners(t *testing.T) {
	vp := Viewport()
	tl := vp.MulVec3(V3(-1, 1, -1))
	br := vp.MulVec3(V3(1, -1, 1))

	if math.Abs(tl.X) > 1e-9 || math.Abs(tl.Y) > 1e-9 {
		t.Errorf("top-left NDC corner should map near (0,0), got %v", tl)
	}
	if math.Abs(br.X-1) > 1e-9 || math.Abs(br.Y-1) > 1e-9 {
		t.Errorf("bottom-right NDC corner should map near (1,1), got %v", br)
	}
}

func TestFrustumCornersScaleWithDepth(t *testing.T) {
	f := Frustum{Near: 1, Far: 2, Left: -1, Right: 1, Top: 1, Bottom: -1}
	corners := f.Corners(Identity())

	// Near corners at z=-1, far corners at z=-2, scaled by far/near=2.
	near := corners[0]
	if math.Abs(near.Z+1) > 1e-9 {
		t.Errorf("near corner Z = %v, want -1", near.Z)
	}
	far := corners[4]
	if math.Abs(far.Z+2) > 1e-9 {
		t.Errorf("far corner Z = %v, want -2", far.Z)
	}
	if math.Abs(far.X+2) > 1e-9 {
		t.Errorf("far corner X = %v, want -2 (scaled by far/near)", far.X)
	}
}

func TestMat3TruncateDropsTranslation(t *testing.T) {
	m := Translate(V3(5, 6, 7)).Mul(RotateY(math.Pi / 2))
	m3 := m.Truncate()

	// Rotating (1,0,0) by 90 deg around Y should give approximately (0,0,-1),
	// with no translation leaking in from the discarded column.
	got := m3.MulVec3(V3(1, 0, 0))
	want := V3(0, 0, -1)
	if got.Distance(want) > 1e-9 {
		t.Errorf("Mat3.MulVec3 = %v, want %v", got, want)
	}
}

func TestVec2Lerp(t *testing.T) {
	a := V2(0, 0)
	b := V2(2, 4)
	got := a.Lerp(b, 0.5)
	want := V2(1, 2)
	if got != want {
		t.Errorf("Lerp(0.5) = %v, want %v", got, want)
	}
}

func TestVec2DotAndLen(t *testing.T) {
	v := V2(3, 4)
	if v.Len() != 5 {
		t.Errorf("Len() = %v, want 5", v.Len())
	}
	if v.Dot(V2(1, 0)) != 3 {
		t.Errorf("Dot = %v, want 3", v.Dot(V2(1, 0)))
	}
}
