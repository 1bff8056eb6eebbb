package main

import (
	"github.com/taigrr/trophy/pkg/math3d"
	"github.com/taigrr/trophy/pkg/models"
	"github.com/taigrr/trophy/pkg/render"
)

// sceneVertex is the pixel record that flows through the clipping and
// scanline stages for the main color pass: the clip-space position must be
// the first four floats (DrawElementArray's layout contract), followed by
// whatever else the pixel shader needs interpolated.
type sceneVertex struct {
	ClipPos  math3d.Vec4
	WorldPos math3d.Vec3
	Normal   math3d.Vec3
	Tex      math3d.Vec2
}

// UV implements render.UVSource so the sampler can read texture
// coordinates without knowing this concrete record type.
func (v sceneVertex) UV() (u, tv float64) {
	return v.Tex.X, v.Tex.Y
}

// shadowVertex is the minimal record for the depth-only shadow-map pass:
// clip-space position alone.
type shadowVertex struct {
	ClipPos math3d.Vec4
}

// sceneShader bundles the matrices and resources a frame's vertex/pixel
// shaders close over. Every field is read-only for the duration of a draw
// call, satisfying DrawElementArray's concurrency contract.
type sceneShader struct {
	model    math3d.Mat4
	viewProj math3d.Mat4

	texture   *render.Texture
	light     *render.DirectionalLight
	shadowMat math3d.Mat4

	cameraPos   math3d.Vec3
	ambient     float64
	litColor    [3]float64
	shadowSoft  int // PCF kernel size
}

func newSceneShader(model math3d.Mat4, camera *render.Camera, texture *render.Texture, light *render.DirectionalLight) *sceneShader {
	return &sceneShader{
		model:      model,
		viewProj:   camera.ViewProjectionMatrix(),
		texture:    texture,
		light:      light,
		shadowMat:  light.WorldToShadowMatrix(),
		cameraPos:  camera.Position,
		ambient:    0.15,
		litColor:   [3]float64{1, 1, 1},
		shadowSoft: 2,
	}
}

func (s *sceneShader) vertex(v models.MeshVertex) sceneVertex {
	world := s.model.MulVec3(v.Position)
	normal := s.model.MulVec3Dir(v.Normal).Normalize()
	clip := s.viewProj.MulVec4(math3d.V4FromV3(world, 1))
	return sceneVertex{
		ClipPos:  clip,
		WorldPos: world,
		Normal:   normal,
		Tex:      v.UV,
	}
}

func (s *sceneShader) pixel(p sceneVertex, sampler *render.Sampler) [4]float64 {
	facing := s.light.FacingFactor(p.Normal)

	shadow := 0.0
	if facing > 0 {
		lightClip := s.shadowMat.MulVec4(math3d.V4FromV3(p.WorldPos, 1))
		if lightClip.W > 0 {
			ndc := lightClip.PerspectiveDivide()
			st := (ndc.X + 1) / 2
			tt := (ndc.Y + 1) / 2
			depth := (ndc.Z + 1) / 2
			shadow = s.light.MultiSampleShadowMap(st, tt, depth, s.shadowSoft)
		}
	}

	lit := s.ambient + facing*(1-shadow)
	if lit > 1 {
		lit = 1
	}

	tex := render.Color{R: 255, G: 255, B: 255, A: 255}
	if s.texture != nil {
		tex = sampler.SampleTex2D(s.texture)
	}

	return [4]float64{
		lit * s.litColor[0] * float64(tex.R) / 255,
		lit * s.litColor[1] * float64(tex.G) / 255,
		lit * s.litColor[2] * float64(tex.B) / 255,
		1,
	}
}

// shadowShader is the vertex shader for the depth-only shadow-map pass: it
// needs only the model matrix and the light's view-projection matrix.
type shadowShader struct {
	model         math3d.Mat4
	lightViewProj math3d.Mat4
}

func (s *shadowShader) vertex(v models.MeshVertex) shadowVertex {
	world := s.model.MulVec3(v.Position)
	return shadowVertex{ClipPos: s.lightViewProj.MulVec4(math3d.V4FromV3(world, 1))}
}
