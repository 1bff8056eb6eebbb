package render

import (
	"math"

	"github.com/taigrr/trophy/pkg/math3d"
)

// shadowFarCap and shadowFrontOffset are the tuning constants used to fit a
// light's orthographic shadow projection to the active view frustum: the
// effective far plane is capped to keep shadow-map resolution usable, and
// the near side of the fitted box is pulled back to catch casters that sit
// behind the view frustum's own near plane.
const (
	shadowFarCap      = 25.0
	shadowFrontOffset = 10.0
	// shadowDepthBias is the PCF comparison bias, matching the original
	// engine's SHADOW_DEPTH_OFFSET.
	shadowDepthBias = 0.007
)

// ShadowCaster is the shared contract both light types expose: a private,
// depth-only Renderer dedicated to a shadow-map pass.
type ShadowCaster interface {
	ClearShadowMap()
	SampleShadowMap(s, t float64) float64
	MultiSampleShadowMap(s, t, depth float64, k int) float64
	WorldToShadowMatrix() math3d.Mat4
	ShadowRenderer() *Renderer
}

// fitShadowBox transforms the view frustum's eight world-space corners into
// light space and returns their axis-aligned bounding box, with the far
// plane capped and the front face pulled back, matching
// CalculateFrustumBoundingBox in the original engine.
func fitShadowBox(viewFrustum math3d.Frustum, camToWorld, lightView math3d.Mat4) math3d.Box {
	capped := viewFrustum
	if capped.Far > capped.Near+shadowFarCap {
		capped.Far = capped.Near + shadowFarCap
	}
	corners := capped.Corners(camToWorld)

	min := lightView.MulVec3(corners[0])
	max := min
	for _, c := range corners[1:] {
		p := lightView.MulVec3(c)
		min = min.Min(p)
		max = max.Max(p)
	}

	return math3d.Box{
		Left:   min.X,
		Right:  max.X,
		Bottom: min.Y,
		Top:    max.Y,
		Front:  -max.Z - shadowFrontOffset,
		Back:   -min.Z,
	}
}

func shadowOrtho(b math3d.Box) math3d.Mat4 {
	return math3d.Orthographic(b.Left, b.Right, b.Bottom, b.Top, b.Front, b.Back)
}

// sampleShadow reads the shadow map at normalized (s,t); coordinates
// outside [0,1) return the far sentinel (unshadowed).
func sampleShadow(r *Renderer, s, t float64) float64 {
	if s < 0 || s >= 1 || t < 0 || t >= 1 {
		return farDepth
	}
	x := int(s * float64(r.width()))
	y := int(t * float64(r.height()))
	x = clampInt(x, 0, r.width()-1)
	y = clampInt(y, 0, r.height()-1)
	return r.Depth.Get(x, y)
}

// multiSampleShadow is a k x k PCF lookup centered on (s,t): the fraction of
// taps whose stored depth is beaten by depth+bias.
func multiSampleShadow(r *Renderer, s, t, depth float64, k int) float64 {
	if r.width() == 0 || r.height() == 0 {
		return 0
	}
	xoff := 1.0 / float64(r.width())
	yoff := 1.0 / float64(r.height())

	var inShadow float64
	for i := range k {
		for j := range k {
			ss := s + float64(k/2)*xoff - float64(i)*xoff
			tt := t + float64(k/2)*yoff - float64(j)*yoff
			sample := sampleShadow(r, ss, tt)
			if depth > sample+shadowDepthBias {
				inShadow += 1.0 / float64(k*k)
			}
		}
	}
	return inShadow
}

// DirectionalLight casts parallel-ray shadows fitted to the active view
// frustum via an orthographic projection.
type DirectionalLight struct {
	Color    math3d.Vec3
	Rotation math3d.Vec3

	direction math3d.Vec3
	view      math3d.Mat4
	proj      math3d.Mat4

	shadow *Renderer
}

// NewDirectionalLight creates a directional light with a private depth-only
// shadow-map renderer of the given resolution.
func NewDirectionalLight(color math3d.Vec3, shadowMapW, shadowMapH int) *DirectionalLight {
	l := &DirectionalLight{Color: color, shadow: NewRenderer(nil, 0)}
	l.shadow.Resize(shadowMapW, shadowMapH)
	l.SetRotation(math3d.Vec3{})
	return l
}

// SetRotation re-derives the light's direction (Rot * (0,0,-1)) and view
// matrix (the inverse of the rotation) from Euler angles.
func (l *DirectionalLight) SetRotation(rotation math3d.Vec3) {
	l.Rotation = rotation
	rot := math3d.RotateZ(rotation.Z).Mul(math3d.RotateY(rotation.Y)).Mul(math3d.RotateX(rotation.X))
	l.direction = rot.Truncate().MulVec3(math3d.V3(0, 0, -1))
	l.view = rot.Inverse()
}

// Direction returns the light's current unit direction vector.
func (l *DirectionalLight) Direction() math3d.Vec3 { return l.direction }

// FacingFactor returns max(0, -direction . surfaceNormal).
func (l *DirectionalLight) FacingFactor(normal math3d.Vec3) float64 {
	f := -l.direction.Dot(normal)
	if f < 0 {
		return 0
	}
	return f
}

// UpdateShadowBox refits the orthographic projection to the given view
// frustum, observed from camToWorld.
func (l *DirectionalLight) UpdateShadowBox(viewFrustum math3d.Frustum, camToWorld math3d.Mat4) {
	box := fitShadowBox(viewFrustum, camToWorld, l.view)
	l.proj = shadowOrtho(box)
}

// ClearShadowMap clears the private shadow-map depth buffer.
func (l *DirectionalLight) ClearShadowMap() { l.shadow.Depth.Clear() }

// DrawToShadowMap forwards a draw call to the light's private depth-only
// renderer.
func DrawToShadowMap[V, P any](l *DirectionalLight, indices []int, vertices []V, vs VertexShader[V, P]) {
	DrawElementArray(l.shadow, indices, vertices, vs, func(p P, s *Sampler) [4]float64 { return [4]float64{} })
}

// SampleShadowMap reads a single shadow-map texel.
func (l *DirectionalLight) SampleShadowMap(s, t float64) float64 {
	return sampleShadow(l.shadow, s, t)
}

// MultiSampleShadowMap runs a k x k PCF lookup at (s,t) against depth.
func (l *DirectionalLight) MultiSampleShadowMap(s, t, depth float64, k int) float64 {
	return multiSampleShadow(l.shadow, s, t, depth, k)
}

// WorldToShadowMatrix returns projection * view.
func (l *DirectionalLight) WorldToShadowMatrix() math3d.Mat4 {
	return l.proj.Mul(l.view)
}

// ShadowRenderer exposes the light's private shadow-pass renderer.
func (l *DirectionalLight) ShadowRenderer() *Renderer { return l.shadow }

// SpotLight is a positioned, cone-limited light with its own shadow map,
// attenuation, and specular-facing helpers.
type SpotLight struct {
	Color    math3d.Vec3
	Position math3d.Vec3
	Rotation math3d.Vec3

	Constant, Linear, Quadratic float64
	Exponent                    float64

	direction math3d.Vec3
	view      math3d.Mat4
	proj      math3d.Mat4

	shadow *Renderer
}

// NewSpotLight creates a spotlight with default inverse-square-ish
// attenuation (1, 0, 1) and concentration exponent 1.
func NewSpotLight(color, position, rotation math3d.Vec3, shadowMapW, shadowMapH int) *SpotLight {
	l := &SpotLight{
		Color: color, Position: position, Rotation: rotation,
		Constant: 1, Linear: 0, Quadratic: 1, Exponent: 1,
		shadow: NewRenderer(nil, 0),
	}
	l.shadow.Resize(shadowMapW, shadowMapH)
	l.SetPosition(position)
	l.SetRotation(rotation)
	return l
}

func (l *SpotLight) recomputeView() {
	rot := math3d.RotateZ(l.Rotation.Z).Mul(math3d.RotateY(l.Rotation.Y)).Mul(math3d.RotateX(l.Rotation.X))
	l.view = math3d.Translate(l.Position).Mul(rot).Inverse()
}

// SetPosition updates the light's world position and view matrix.
func (l *SpotLight) SetPosition(position math3d.Vec3) {
	l.Position = position
	l.recomputeView()
}

// SetRotation updates the light's direction and view matrix from Euler
// angles.
func (l *SpotLight) SetRotation(rotation math3d.Vec3) {
	l.Rotation = rotation
	rot := math3d.RotateZ(rotation.Z).Mul(math3d.RotateY(rotation.Y)).Mul(math3d.RotateX(rotation.X))
	l.direction = rot.Truncate().MulVec3(math3d.V3(0, 0, -1))
	l.recomputeView()
}

// SetConstants sets the attenuation constants `constant + linear*d +
// quadratic*d^2`.
func (l *SpotLight) SetConstants(constant, linear, quadratic float64) {
	l.Constant, l.Linear, l.Quadratic = constant, linear, quadratic
}

// ColorAt returns this light's contribution at a world point, attenuated by
// distance and clamped to zero outside the cone.
func (l *SpotLight) ColorAt(point math3d.Vec3) math3d.Vec3 {
	toPoint := l.Position.Sub(point)
	distance := toPoint.Len()
	intensity := 1.0 / (l.Constant + l.Linear*distance + l.Quadratic*distance*distance)

	directionFactor := -l.direction.Dot(toPoint.Normalize())
	if directionFactor <= 0 {
		return math3d.Vec3{}
	}
	directionFactor = math.Pow(directionFactor, l.Exponent)
	return l.Color.Scale(directionFactor * intensity)
}

// FacingFactor returns max(0, -direction . surfaceNormal).
func (l *SpotLight) FacingFactor(normal math3d.Vec3) float64 {
	f := -l.direction.Dot(normal)
	if f < 0 {
		return 0
	}
	return f
}

// SpecularFactor implements the halfway-vector Blinn-style specular term
// (Lengyel section 7.4): zero when the surface faces away from the light.
func (l *SpotLight) SpecularFactor(worldPos, normal, toCamera math3d.Vec3, specularExponent float64) float64 {
	toLight := l.Position.Sub(worldPos).Normalize()
	halfway := toLight.Add(toCamera).Normalize()

	spec := normal.Dot(halfway)
	if spec < 0 {
		spec = 0
	} else {
		spec = math.Pow(spec, specularExponent)
	}
	if normal.Dot(toLight) > 0 {
		return spec
	}
	return 0
}

// UpdateShadowBox refits this light's orthographic projection to the given
// view frustum, the same fitted-bounding-box technique DirectionalLight
// uses (the spotlight shadow pass in the original engine is also an
// orthographic fit, not a true perspective frustum).
func (l *SpotLight) UpdateShadowBox(viewFrustum math3d.Frustum, camToWorld math3d.Mat4) {
	box := fitShadowBox(viewFrustum, camToWorld, l.view)
	l.proj = shadowOrtho(box)
}

// ClearShadowMap clears the private shadow-map depth buffer.
func (l *SpotLight) ClearShadowMap() { l.shadow.Depth.Clear() }

// SampleShadowMap reads a single shadow-map texel.
func (l *SpotLight) SampleShadowMap(s, t float64) float64 {
	return sampleShadow(l.shadow, s, t)
}

// MultiSampleShadowMap runs a k x k PCF lookup at (s,t) against depth. It
// returns zero immediately if the shadow map has no area: a light with no
// shadow map casts no shadow.
func (l *SpotLight) MultiSampleShadowMap(s, t, depth float64, k int) float64 {
	if l.shadow.width() == 0 || l.shadow.height() == 0 {
		return 0
	}
	return multiSampleShadow(l.shadow, s, t, depth, k)
}

// WorldToShadowMatrix returns projection * view.
func (l *SpotLight) WorldToShadowMatrix() math3d.Mat4 {
	return l.proj.Mul(l.view)
}

// ShadowRenderer exposes the light's private shadow-pass renderer.
func (l *SpotLight) ShadowRenderer() *Renderer { return l.shadow }
