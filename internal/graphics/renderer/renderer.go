package renderer

import (
	"polyterrain/internal/config"
	"polyterrain/internal/graphics"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Renderer orchestrates rendering via renderable features
type Renderer struct {
	renderables []Renderable
	camera      *graphics.Camera
	lightDir    mgl32.Vec3
}

// NewRenderer creates a new renderer with the given renderables
func NewRenderer(width, height int, rs ...Renderable) (*Renderer, error) {
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)

	renderer := &Renderer{
		renderables: rs,
		camera:      graphics.NewCamera(width, height),
		lightDir:    mgl32.Vec3{-0.4, -1, -0.3}.Normalize(),
	}

	for _, r := range rs {
		if err := r.Init(); err != nil {
			return nil, err
		}
	}

	return renderer, nil
}

// Render clears the frame, advances the orbit and draws every feature.
func (r *Renderer) Render(dt float64) {
	gl.ClearColor(0.53, 0.81, 0.92, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	if speed := config.GetOrbitSpeed(); speed > 0 {
		// 60 degrees per second at speed 1
		r.camera.Orbit(float32(dt)*speed*60, 0)
	}

	wire := config.GetWireframe()
	if wire {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	}

	ctx := RenderContext{
		Camera:    r.camera,
		DT:        dt,
		View:      r.camera.GetViewMatrix(),
		Proj:      r.camera.GetProjectionMatrix(),
		LightDir:  r.lightDir,
		Wireframe: wire,
	}
	for _, renderable := range r.renderables {
		renderable.Render(ctx)
	}

	if wire {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
}

// Dispose cleans up all renderables in reverse order
func (r *Renderer) Dispose() {
	for i := len(r.renderables) - 1; i >= 0; i-- {
		r.renderables[i].Dispose()
	}
}

// GetCamera returns the camera instance
func (r *Renderer) GetCamera() *graphics.Camera {
	return r.camera
}

// UpdateViewport updates the camera's viewport dimensions
func (r *Renderer) UpdateViewport(width, height int) {
	r.camera.SetViewport(width, height)
}
