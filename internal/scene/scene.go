// Package scene computes the scroll-driven motion of the hero 3D model.
// Rendering happens in the browser; this package owns the numbers.
package scene

import (
	"math"
	"sync"

	"github.com/attanavaid/portfolio/internal/scroll"
)

// Vec3 is a point or rotation in scene space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

var (
	pathFrom = Vec3{0, 1, 0}
	pathTo   = Vec3{0, -6, 2}

	// BaseRotation orients the model upright.
	BaseRotation = Vec3{X: math.Pi / 2}
	// CameraStart is where the camera sits before following the model.
	CameraStart = Vec3{0, 2, 5}
)

const (
	arcHeight      = 1.5
	cameraFollow   = 0.05
	cameraScale    = 0.3
	cameraLift     = 2.0
	cameraDistance = 5.0
	// fallbackScreens is the path length, in viewports, when the anchoring
	// sections are not measured.
	fallbackScreens = 6
	dragSensitivity = 0.01
)

// Path is the scroll range the model travels along, from the top of the
// hero section to the bottom of the contact section.
type Path struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// PathFromLayout derives the path from measured sections.
func PathFromLayout(l scroll.Layout) Path {
	hero, okHero := l.Find("hero")
	contact, okContact := l.Find("contact")
	if !okHero || !okContact {
		return Path{Start: 0, End: l.Viewport * fallbackScreens}
	}
	return Path{Start: hero.Top, End: contact.Top + contact.Height}
}

// Progress maps scrollY to [0, 1] along the path.
func (p Path) Progress(scrollY float64) float64 {
	length := p.End - p.Start
	if length <= 0 {
		return 0
	}
	return math.Max(0, math.Min(1, (scrollY-p.Start)/length))
}

// Position is the model's location on the curved path at progress t.
func Position(t float64) Vec3 {
	return Vec3{
		X: lerp(pathFrom.X, pathTo.X, t),
		Y: lerp(pathFrom.Y, pathTo.Y, t) + math.Sin(t*math.Pi)*arcHeight,
		Z: lerp(pathFrom.Z, pathTo.Z, t),
	}
}

// Float is the idle bobbing offset at animation time t.
func Float(t float64) Vec3 {
	return Vec3{
		X: math.Cos(t*0.6) * 0.2,
		Y: math.Sin(t*0.8) * 0.3,
		Z: math.Sin(t*0.7) * 0.15,
	}
}

// Pulse is the model's scale factor at animation time t.
func Pulse(t float64) float64 {
	return 1 + math.Sin(t*2)*0.05
}

// Camera eases toward a point offset from the model.
type Camera struct {
	Position Vec3 `json:"position"`
}

func NewCamera() *Camera {
	return &Camera{Position: CameraStart}
}

// Follow moves the camera one frame toward target.
func (c *Camera) Follow(target Vec3) {
	c.Position.X += (target.X*cameraScale - c.Position.X) * cameraFollow
	c.Position.Y += (target.Y*cameraScale + cameraLift - c.Position.Y) * cameraFollow
	c.Position.Z = cameraDistance
}

// Frame is one computed scene state.
type Frame struct {
	Progress float64 `json:"progress"`
	Model    Vec3    `json:"model"`
	Rotation Vec3    `json:"rotation"`
	Scale    float64 `json:"scale"`
	Camera   Vec3    `json:"camera"`
}

// Tracker holds the per-page scene state: path, camera and drag rotation.
type Tracker struct {
	mu     sync.Mutex
	path   Path
	camera *Camera

	dragging bool
	lastX    float64
	lastY    float64
	offset   Vec3
}

func NewTracker(path Path) *Tracker {
	return &Tracker{path: path, camera: NewCamera()}
}

// SetPath replaces the path after a layout change.
func (t *Tracker) SetPath(p Path) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.path = p
}

// Path returns the current path.
func (t *Tracker) Path() Path {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.path
}

// Step advances the camera one frame and returns the scene at scrollY and
// animation time now.
func (t *Tracker) Step(scrollY, now float64) Frame {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := t.path.Progress(scrollY)
	model := Position(p).Add(Float(now))
	t.camera.Follow(model)
	return Frame{
		Progress: p,
		Model:    model,
		Rotation: BaseRotation.Add(t.offset),
		Scale:    Pulse(now),
		Camera:   t.camera.Position,
	}
}

// BeginDrag starts a pointer drag at (x, y).
func (t *Tracker) BeginDrag(x, y float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dragging = true
	t.lastX, t.lastY = x, y
}

// MoveDrag rotates by the pointer delta. Moves outside a drag are ignored.
func (t *Tracker) MoveDrag(x, y float64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.dragging {
		return false
	}
	t.offset.Y += (x - t.lastX) * dragSensitivity
	t.offset.X += (y - t.lastY) * dragSensitivity
	t.offset.X = math.Max(-math.Pi/2, math.Min(math.Pi/2, t.offset.X))
	t.lastX, t.lastY = x, y
	return true
}

// EndDrag finishes the drag; the rotation offset is kept.
func (t *Tracker) EndDrag() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dragging = false
}

// Dragging reports whether a drag is active.
func (t *Tracker) Dragging() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dragging
}

// Rotation returns the model rotation including the drag offset.
func (t *Tracker) Rotation() Vec3 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return BaseRotation.Add(t.offset)
}
