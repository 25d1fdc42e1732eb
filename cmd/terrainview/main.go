package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"polyterrain/internal/config"
	"polyterrain/internal/export"
	"polyterrain/internal/graphics/renderables/markers"
	"polyterrain/internal/graphics/renderables/probe"
	"polyterrain/internal/graphics/renderables/terrainmesh"
	renderer "polyterrain/internal/graphics/renderer"
	"polyterrain/internal/input"
	"polyterrain/internal/physics"
	"polyterrain/internal/profiling"
	"polyterrain/internal/terrain"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/xlab/closer"
)

const (
	windowWidth  = 900
	windowHeight = 600

	// degrees of orbit per pixel of right-drag
	dragSensitivity = 0.3
	probeDistance   = 5000
)

func init() {
	runtime.LockOSThread()
}

func main() {
	var (
		configPath = flag.String("config", "", "YAML parameter file (defaults when empty)")
		seed       = flag.Int("seed", -1, "override the seed (-1 keeps the config value)")
		budget     = flag.Duration("budget", 0, "generation time per frame (0 keeps the default)")
		outDir     = flag.String("out", "./out", "directory for E exports")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "terrainview: ", log.LstdFlags)

	params := config.Default()
	if *configPath != "" {
		p, err := config.Load(*configPath)
		if err != nil {
			logger.Fatalln(err)
		}
		params = p
	}
	if *seed >= 0 {
		params.Seed = *seed
	}
	if *budget > 0 {
		config.SetStepBudget(*budget)
	}

	if err := glfw.Init(); err != nil {
		logger.Fatalln(err)
	}
	closer.Bind(glfw.Terminate)
	defer closer.Close()

	window, err := setupWindow()
	if err != nil {
		closer.Fatalln(err)
	}

	meshes := terrainmesh.NewTerrainMesh()
	marks := markers.NewMarkers()
	probed := probe.NewProbe()
	r, err := renderer.NewRenderer(windowWidth, windowHeight, meshes, marks, probed)
	if err != nil {
		closer.Fatalln(err)
	}
	closer.Bind(r.Dispose)

	v := &viewer{
		window: window,
		r:      r,
		host:   terrain.NewHost(meshes, marks, logger),
		probe:  probed,
		input:  input.NewInputManager(),
		log:    logger,
		params: params,
		outDir: *outDir,
	}
	closer.Bind(v.host.Stop)
	v.setupCallbacks()
	v.restart()
	v.loop()
}

func setupWindow() (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(windowWidth, windowHeight, "terrainview", nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		return nil, err
	}
	glfw.SwapInterval(1)
	return window, nil
}

type viewer struct {
	window *glfw.Window
	r      *renderer.Renderer
	host   *terrain.Host
	probe  *probe.Probe
	input  *input.InputManager
	log    *log.Logger

	params config.Params
	outDir string
	status terrain.Status

	cursorX, cursorY float64
	dragging         bool
}

func (v *viewer) setupCallbacks() {
	v.input.Attach(v.window)

	v.window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		if v.dragging {
			dx, dy := xpos-v.cursorX, ypos-v.cursorY
			v.r.GetCamera().Orbit(float32(dx*dragSensitivity), float32(dy*dragSensitivity))
		}
		v.cursorX, v.cursorY = xpos, ypos
	})

	v.window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		v.r.GetCamera().Zoom(float32(1 - 0.1*yoff))
	})

	v.window.SetFramebufferSizeCallback(func(w *glfw.Window, fbWidth, fbHeight int) {
		gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
		winW, winH := w.GetSize()
		v.r.UpdateViewport(winW, winH)
	})
}

// restart begins a new run with the current parameters.
func (v *viewer) restart() {
	profiling.Reset()
	v.probe.Clear()
	if err := v.host.Start(context.Background(), v.params, terrain.Options{Logger: v.log}); err != nil {
		v.log.Printf("could not start seed %d: %v", v.params.Seed, err)
		v.status = terrain.Failed
		return
	}
	v.status = terrain.InProgress
	v.r.GetCamera().Frame(float32(v.params.Size))
	v.window.SetTitle(fmt.Sprintf("terrainview - seed %d", v.params.Seed))
}

func (v *viewer) loop() {
	frames := 0
	last := time.Now()
	prev := last
	fpsTicker := time.NewTicker(time.Second)
	defer fpsTicker.Stop()

	for !v.window.ShouldClose() {
		now := time.Now()
		dt := now.Sub(prev).Seconds()
		prev = now

		v.handleInput()

		if v.status == terrain.InProgress {
			s, err := v.host.Step(config.GetStepBudget())
			v.status = s
			if err != nil {
				v.log.Printf("seed %d: %v", v.params.Seed, err)
			}
			if s == terrain.Done {
				gc := v.host.Run().Context()
				v.log.Printf("seed %d done: %d instances, digest %.12s", v.params.Seed, len(gc.Instances), gc.Digest())
			}
		}

		v.r.Render(dt)
		v.window.SwapBuffers()
		v.input.PostUpdate()
		glfw.PollEvents()

		frames++
		select {
		case <-fpsTicker.C:
			elapsed := now.Sub(last).Seconds()
			if elapsed > 0 && v.status == terrain.InProgress {
				run := v.host.Run()
				done, total := run.Progress()
				v.window.SetTitle(fmt.Sprintf("terrainview - seed %d - %s (%d/%d) - %d fps",
					v.params.Seed, run.Stage(), done, total, int(float64(frames)/elapsed+0.5)))
			}
			frames = 0
			last = now
		default:
		}
	}
}

func (v *viewer) handleInput() {
	im := v.input
	switch {
	case im.JustPressed(input.ActionQuit):
		v.window.SetShouldClose(true)
	case im.JustPressed(input.ActionRegenerate):
		v.params.Seed++
		v.restart()
	case im.JustPressed(input.ActionRestart):
		v.restart()
	case im.JustPressed(input.ActionExport):
		v.export()
	}

	if im.JustPressed(input.ActionToggleWireframe) {
		config.SetWireframe(!config.GetWireframe())
	}
	if im.JustPressed(input.ActionToggleInstances) {
		config.SetShowInstances(!config.GetShowInstances())
	}
	if im.JustPressed(input.ActionToggleProfiling) {
		v.log.Printf("profile: %s", profiling.TopN(8))
	}
	if im.JustPressed(input.ActionOrbitFaster) {
		config.SetOrbitSpeed(config.GetOrbitSpeed() + 0.1)
	}
	if im.JustPressed(input.ActionOrbitSlower) {
		config.SetOrbitSpeed(config.GetOrbitSpeed() - 0.1)
	}
	if im.JustPressed(input.ActionBudgetUp) {
		config.SetStepBudget(config.GetStepBudget() * 2)
	}
	if im.JustPressed(input.ActionBudgetDown) {
		config.SetStepBudget(config.GetStepBudget() / 2)
	}
	if im.IsActive(input.ActionZoomIn) {
		v.r.GetCamera().Zoom(0.98)
	}
	if im.IsActive(input.ActionZoomOut) {
		v.r.GetCamera().Zoom(1.02)
	}

	v.dragging = im.IsActive(input.ActionMouseRight)
	if im.JustPressed(input.ActionMouseLeft) {
		v.probeAt(v.cursorX, v.cursorY)
	}
}

// probeAt casts the mouse ray against the generated ground.
func (v *viewer) probeAt(x, y float64) {
	run := v.host.Run()
	if run == nil {
		return
	}
	ground, ok := run.Context().Ground.(*physics.MeshGround)
	if !ok {
		v.log.Printf("ground is not ready yet")
		return
	}
	origin, dir := v.r.GetCamera().ScreenRay(x, y)
	hit := ground.Raycast(vec64(origin), vec64(dir), 0, probeDistance)
	if !hit.Hit {
		v.probe.Clear()
		return
	}
	v.probe.Set(vec32(hit.Point), vec32(hit.Normal))
	v.log.Printf("ground at (%.1f, %.1f) height %.2f triangle %d", hit.Point.X(), hit.Point.Z(), hit.Point.Y(), hit.Triangle)
}

func (v *viewer) export() {
	run := v.host.Run()
	if run == nil || run.Status() != terrain.Done {
		v.log.Printf("nothing to export until the run finishes")
		return
	}
	dir := filepath.Join(v.outDir, fmt.Sprintf("view_seed_%d", v.params.Seed))
	if _, err := export.Export(dir, run.Context(), export.DefaultOptions()); err != nil {
		v.log.Printf("export: %v", err)
		return
	}
	v.log.Printf("exported to %s", dir)
}

func vec64(v mgl32.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}

func vec32(v mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}
