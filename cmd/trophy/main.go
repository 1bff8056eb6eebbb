// trophy - Terminal 3D Model Viewer
// View OBJ and GLB files in your terminal with full 3D rendering.
//
// Controls:
//
//	Mouse drag  - Rotate model (yaw/pitch)
//	Scroll      - Zoom in/out
//	W/S         - Pitch up/down
//	A/D         - Yaw left/right
//	Q/E         - Roll left/right (Q rolls left, E rolls right)
//	Space       - Apply random impulse
//	R           - Reset rotation
//	T           - Toggle texture on/off
//	X           - Toggle wireframe mode (x-ray)
//	O           - Toggle triangle outlines
//	B           - Toggle bilinear texture filtering
//	M           - Toggle mipmapping
//	N           - Toggle trilinear filtering (with mipmapping)
//	L           - Light positioning mode (move mouse, click to set, Esc to cancel)
//	?           - Toggle HUD overlay (FPS, filename, poly count, mode status)
//	+/-         - Adjust zoom
//	Esc         - Quit (or cancel light mode)
package main

import (
	"context"
	"fmt"
	"image"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/harmonica"
	logpkg "github.com/charmbracelet/log"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/trophy/internal/config"
	"github.com/taigrr/trophy/pkg/engine"
	"github.com/taigrr/trophy/pkg/math3d"
	"github.com/taigrr/trophy/pkg/models"
	"github.com/taigrr/trophy/pkg/render"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		if err == config.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := logpkg.NewWithOptions(os.Stderr, logpkg.Options{
		ReportTimestamp: false,
		Prefix:          "trophy",
	})
	if cfg.Verbose {
		logger.SetLevel(logpkg.DebugLevel)
	} else {
		logger.SetLevel(logpkg.WarnLevel)
	}

	if err := run(cfg, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// RotationAxis tracks position and velocity for one rotation axis with spring decay
type RotationAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64 // internal spring velocity (for animating Velocity toward 0)
}

// NewRotationAxis creates an axis with harmonica spring for smooth velocity decay
func NewRotationAxis(fps int) RotationAxis {
	return RotationAxis{
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update applies velocity to position and decays velocity toward 0 using spring
func (a *RotationAxis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// RotationState holds rotation with harmonica spring physics
type RotationState struct {
	Pitch, Yaw, Roll RotationAxis
	fps              int
}

func NewRotationState(fps int) *RotationState {
	return &RotationState{
		Pitch: NewRotationAxis(fps),
		Yaw:   NewRotationAxis(fps),
		Roll:  NewRotationAxis(fps),
		fps:   fps,
	}
}

func (r *RotationState) Update() {
	r.Pitch.Update()
	r.Yaw.Update()
	r.Roll.Update()
}

func (r *RotationState) ApplyImpulse(pitch, yaw, roll float64) {
	r.Pitch.Velocity += pitch
	r.Yaw.Velocity += yaw
	r.Roll.Velocity += roll
}

func (r *RotationState) Reset() {
	r.Pitch = NewRotationAxis(r.fps)
	r.Yaw = NewRotationAxis(r.fps)
	r.Roll = NewRotationAxis(r.fps)
}

// ViewState holds all view-related settings (UI state, not library code)
type ViewState struct {
	TextureEnabled bool
	LightMode      bool
	LightRotation  math3d.Vec3
	PendingLight   math3d.Vec3
	ShowHUD        bool
}

func NewViewState() *ViewState {
	return &ViewState{
		TextureEnabled: true,
		LightRotation:  math3d.V3(-math.Pi/4, math.Pi/6, 0),
	}
}

// ScreenToLightRotation converts a screen position to a light rotation
// that aims the light roughly at the object from the corresponding
// hemisphere direction.
func (v *ViewState) ScreenToLightRotation(screenX, screenY, width, height int) math3d.Vec3 {
	nx := (float64(screenX)/float64(width))*2 - 1
	ny := (float64(screenY)/float64(height))*2 - 1
	return math3d.V3(ny*math.Pi/2, nx*math.Pi, 0)
}

// HUD renders an overlay with model info and controls
type HUD struct {
	filename  string
	polyCount int
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

func NewHUD(filename string, polyCount int) *HUD {
	return &HUD{filename: filename, polyCount: polyCount, fpsTime: time.Now()}
}

func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

func (h *HUD) Render(width, height int, r *render.Renderer, viewState *ViewState) {
	const (
		reset     = "\x1b[0m"
		bold      = "\x1b[1m"
		dim       = "\x1b[2m"
		bgBlack   = "\x1b[40m"
		fgWhite   = "\x1b[97m"
		fgGreen   = "\x1b[92m"
		fgYellow  = "\x1b[93m"
		fgCyan    = "\x1b[96m"
		clearLine = "\x1b[2K"
	)

	moveTo := func(row, col int) string {
		return fmt.Sprintf("\x1b[%d;%dH", row, col)
	}

	fmt.Print(moveTo(1, 1) + clearLine)
	fmt.Print(moveTo(height, 1) + clearLine)

	if viewState.LightMode {
		lightMsg := fmt.Sprintf("%s%s%s ◉ LIGHT MODE - Move mouse to position, click to set, Esc to cancel %s",
			bgBlack, bold, fgYellow, reset)
		lightCol := max((width-60)/2, 1)
		fmt.Print(moveTo(height, lightCol) + lightMsg)
		return
	}

	if !viewState.ShowHUD {
		return
	}

	fpsStr := fmt.Sprintf("%s%s%s %.0f FPS %s", moveTo(1, 1), bgBlack, fgGreen, h.fps, reset)
	fmt.Print(fpsStr)

	titleStr := fmt.Sprintf("%s%s%s %s %s", bold, bgBlack, fgWhite, h.filename, reset)
	titleCol := max((width-len(h.filename)-2)/2, 1)
	fmt.Print(moveTo(1, titleCol) + titleStr)

	polyStr := fmt.Sprintf("%s%s%s %d polys %s", bgBlack, fgCyan, bold, h.polyCount, reset)
	polyCol := max(width-12, 1)
	fmt.Print(moveTo(1, polyCol) + polyStr)

	check := func(on bool) string {
		if on {
			return "[✓]"
		}
		return "[ ]"
	}
	modeStr := fmt.Sprintf("%s%s %s Tex  %s Wire  %s Bilin  %s Mip  %s Tri %s",
		bgBlack, fgWhite,
		check(viewState.TextureEnabled),
		check(r.Flags.Has(render.Wireframe)),
		check(r.Flags.Has(render.Bilinear)),
		check(r.Flags.Has(render.Mipmap)),
		check(r.Flags.Has(render.Trilinear)),
		reset)
	fmt.Print(moveTo(height, 1) + modeStr)

	hint := fmt.Sprintf("%s%s%s L: position light %s", bgBlack, dim, fgYellow, reset)
	hintCol := max(width-18, 1)
	fmt.Print(moveTo(height, hintCol) + hint)
}

func run(cfg *config.Config, logger *logpkg.Logger) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	fmt.Fprint(os.Stdout, "\x1b[?1003h")
	fmt.Fprint(os.Stdout, "\x1b[?1006h")

	termRenderer := render.NewTerminalRenderer(term, width, height)
	fbWidth, fbHeight := termRenderer.FramebufferSize()

	loop := engine.NewLoop(fbWidth, fbHeight, render.BackfaceCull)

	camera := render.NewCamera()
	camera.SetAspectRatio(float64(fbWidth) / float64(fbHeight))
	camera.SetFOV(math.Pi / 3)
	camera.SetClipPlanes(0.1, 100)
	camera.SetPosition(math3d.V3(0, 0, 5))
	camera.LookAt(math3d.V3(0, 0, 0))

	light := render.NewDirectionalLight(math3d.V3(1, 1, 1), cfg.ShadowMapSize, cfg.ShadowMapSize)

	var texture *render.Texture
	if cfg.TexturePath != "" {
		texture, err = render.LoadTexture(cfg.TexturePath)
		if err != nil {
			logger.Warn("could not load texture", "path", cfg.TexturePath, "err", err)
		}
	}

	ext := strings.ToLower(filepath.Ext(cfg.ModelPath))
	var mesh *models.Mesh
	switch ext {
	case ".glb", ".gltf":
		var embeddedImg image.Image
		mesh, embeddedImg, err = models.LoadGLBWithTexture(cfg.ModelPath)
		if err != nil {
			return fmt.Errorf("load model: %w", err)
		}
		if texture == nil && embeddedImg != nil {
			texture = render.TextureFromImage(embeddedImg)
		}
	case ".obj":
		mesh, err = models.LoadOBJ(cfg.ModelPath)
		if err != nil {
			return fmt.Errorf("load model: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format: %s (use .obj or .glb)", ext)
	}

	if texture == nil {
		texture = render.NewCheckerTexture(64, 64, 8, render.RGB(200, 200, 200), render.RGB(100, 100, 100))
		// Mark the fallback checker texture with a diagonal cross so a missing
		// --texture is visually obvious on the model rather than looking like
		// an intentional checkerboard material.
		warn := render.RGB(220, 40, 40)
		texture.Line(0, 0, texture.Width-1, texture.Height-1, warn)
		texture.Line(texture.Width-1, 0, 0, texture.Height-1, warn)
	}
	if cfg.FlipTextureH {
		texture.FlipHorizontal()
	}
	if cfg.FlipTextureV {
		texture.FlipVertical()
	}
	for range cfg.TextureRotate / 90 {
		texture.RotateCW90()
	}
	texture.GenerateMipmaps()

	logger.Info("loaded model", "file", filepath.Base(cfg.ModelPath), "vertices", mesh.VertexCount(), "triangles", mesh.TriangleCount())

	hud := NewHUD(filepath.Base(cfg.ModelPath), mesh.TriangleCount())
	indices := mesh.Indices()

	mesh.CalculateBounds()
	center := mesh.Center()
	size := mesh.Size()
	maxDim := math.Max(size.X, math.Max(size.Y, size.Z))
	if maxDim > 0 {
		scale := 2.0 / maxDim
		transform := math3d.Scale(math3d.V3(scale, scale, scale)).Mul(math3d.Translate(center.Scale(-1)))
		mesh.Transform(transform)
	}

	rotation := NewRotationState(cfg.TargetFPS)
	viewState := NewViewState()
	viewState.ShowHUD = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	inputTorque := struct{ pitch, yaw, roll float64 }{}
	const torqueStrength = 3.0

	var mouseDown bool
	var lastMouseX, lastMouseY int
	cameraZ := 5.0

	go func() {
		for ev := range term.Events() {
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				termRenderer = render.NewTerminalRenderer(term, width, height)
				fbWidth, fbHeight = termRenderer.FramebufferSize()
				loop.Queue.Push(render.CmdResize, fbWidth, fbHeight)
				camera.SetAspectRatio(float64(fbWidth) / float64(fbHeight))

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape"):
					if viewState.LightMode {
						viewState.LightMode = false
					} else {
						cancel()
						return
					}
				case ev.MatchString("ctrl+c"):
					cancel()
					return
				case ev.MatchString("q"):
					inputTorque.roll = -torqueStrength
				case ev.MatchString("r"):
					rotation.Reset()
					cameraZ = 5.0
					camera.SetPosition(math3d.V3(0, 0, cameraZ))
				case ev.MatchString("w", "up"):
					inputTorque.pitch = -torqueStrength
				case ev.MatchString("s", "down"):
					inputTorque.pitch = torqueStrength
				case ev.MatchString("a", "left"):
					inputTorque.yaw = -torqueStrength
				case ev.MatchString("d", "right"):
					inputTorque.yaw = torqueStrength
				case ev.MatchString("e"):
					inputTorque.roll = torqueStrength
				case ev.MatchString("space"):
					rotation.ApplyImpulse(
						(rand.Float64()-0.5)*1.5,
						(rand.Float64()-0.5)*1.5,
						(rand.Float64()-0.5)*1.5,
					)
				case ev.MatchString("+", "="):
					cameraZ = math.Max(1, cameraZ-0.5)
					camera.SetPosition(math3d.V3(0, 0, cameraZ))
				case ev.MatchString("-", "_"):
					cameraZ = math.Min(20, cameraZ+0.5)
					camera.SetPosition(math3d.V3(0, 0, cameraZ))
				case ev.MatchString("t"):
					viewState.TextureEnabled = !viewState.TextureEnabled
				case ev.MatchString("x"):
					loop.Queue.Push(render.CmdToggleFlag, int(render.Wireframe))
				case ev.MatchString("o"):
					loop.Queue.Push(render.CmdToggleFlag, int(render.Outlines))
				case ev.MatchString("b"):
					loop.Queue.Push(render.CmdToggleFlag, int(render.Bilinear))
				case ev.MatchString("m"):
					loop.Queue.Push(render.CmdToggleFlag, int(render.Mipmap))
				case ev.MatchString("n"):
					loop.Queue.Push(render.CmdToggleFlag, int(render.Trilinear))
				case ev.MatchString("l"):
					viewState.LightMode = true
					viewState.PendingLight = viewState.LightRotation
				case ev.MatchString("?"), ev.MatchString("shift+/"):
					viewState.ShowHUD = !viewState.ShowHUD
				}

			case uv.KeyReleaseEvent:
				switch {
				case ev.MatchString("w"), ev.MatchString("up"), ev.MatchString("s"), ev.MatchString("down"):
					inputTorque.pitch = 0
				case ev.MatchString("a"), ev.MatchString("left"), ev.MatchString("d"), ev.MatchString("right"):
					inputTorque.yaw = 0
				case ev.MatchString("q"), ev.MatchString("e"):
					inputTorque.roll = 0
				}

			case uv.MouseClickEvent:
				if viewState.LightMode {
					viewState.LightRotation = viewState.PendingLight
					viewState.LightMode = false
				} else {
					mouseDown = true
					lastMouseX, lastMouseY = ev.X, ev.Y
				}

			case uv.MouseReleaseEvent:
				if !viewState.LightMode {
					mouseDown = false
				}

			case uv.MouseMotionEvent:
				if viewState.LightMode {
					viewState.PendingLight = viewState.ScreenToLightRotation(ev.X, ev.Y, width, height)
				} else if mouseDown {
					dx := ev.X - lastMouseX
					dy := ev.Y - lastMouseY
					rotation.ApplyImpulse(float64(dy)*0.03, float64(dx)*0.03, 0)
					lastMouseX, lastMouseY = ev.X, ev.Y
				}

			case uv.MouseWheelEvent:
				switch ev.Button {
				case uv.MouseWheelUp:
					cameraZ -= 0.5
					if cameraZ < 1 {
						cameraZ = 1
					}
				case uv.MouseWheelDown:
					cameraZ += 0.5
					if cameraZ > 20 {
						cameraZ = 20
					}
				}
				camera.SetPosition(math3d.V3(0, 0, cameraZ))
			}
		}
	}()

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
		loop.Close()
	}

	go presentLoop(ctx, loop, &termRenderer)

	targetDuration := time.Second / time.Duration(cfg.TargetFPS)
	lastFrame := time.Now()

	for {
		select {
		case <-ctx.Done():
			cleanup()
			return nil
		default:
		}

		now := time.Now()
		dt := now.Sub(lastFrame).Seconds()
		lastFrame = now
		if dt > 0.1 {
			dt = 0.1
		}

		rotation.ApplyImpulse(inputTorque.pitch*dt, inputTorque.yaw*dt, inputTorque.roll*dt)
		inputTorque.pitch *= 0.9
		inputTorque.yaw *= 0.9
		inputTorque.roll *= 0.9
		rotation.Update()

		transform := math3d.RotateX(rotation.Pitch.Position).
			Mul(math3d.RotateY(rotation.Yaw.Position)).
			Mul(math3d.RotateZ(rotation.Roll.Position))

		lightRot := viewState.LightRotation
		if viewState.LightMode {
			lightRot = viewState.PendingLight
		}
		light.SetRotation(lightRot)

		viewFrustum := cameraFrustum(camera)
		camToWorld := camera.ViewMatrix().Inverse()
		light.UpdateShadowBox(viewFrustum, camToWorld)
		light.ClearShadowMap()
		render.DrawToShadowMap(light, indices, mesh.Vertices, (&shadowShader{model: transform, lightViewProj: light.WorldToShadowMatrix()}).vertex)

		loop.RenderFrame(func(r *render.Renderer) {
			r.Depth.Clear()
			r.Target.Clear(render.RGB(cfg.BGRed, cfg.BGGreen, cfg.BGBlue))

			shader := newSceneShader(transform, camera, nil, light)
			if viewState.TextureEnabled {
				shader.texture = texture
			}
			render.DrawElementArray(r, indices, mesh.Vertices, shader.vertex, shader.pixel)
		})

		hud.UpdateFPS()
		hud.Render(width, height, loop.Renderer, viewState)

		elapsed := time.Since(now)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}

// presentLoop runs on its own goroutine, continuously handing completed
// frames to the terminal while the main loop renders the next one.
func presentLoop(ctx context.Context, loop *engine.Loop, termRenderer **render.TerminalRenderer) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		loop.Present(func(fb *render.Framebuffer) {
			tr := *termRenderer
			tr.Render(fb)
			tr.Flush()
		})
	}
}

// cameraFrustum derives the asymmetric view-frustum record UpdateShadowBox
// needs from the camera's symmetric FOV/aspect/near/far parameters.
func cameraFrustum(c *render.Camera) math3d.Frustum {
	top := c.Near * math.Tan(c.FOV/2)
	right := top * c.AspectRatio
	return math3d.Frustum{
		Near: c.Near, Far: c.Far,
		Left: -right, Right: right,
		Bottom: -top, Top: top,
	}
}
