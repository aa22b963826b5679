package physics

import (
	"fmt"
	"log"

	"github.com/jakecoffman/cp"
)

type chipmunkBody struct {
	body     *cp.Body
	shapes   []*cp.Shape
	density  float64
	friction float64
	static   bool
}

// ChipmunkWorld is a Backend on top of a Chipmunk space.
type ChipmunkWorld struct {
	space  *cp.Space
	bodies table[*chipmunkBody]
}

// NewChipmunkWorld creates a Chipmunk space with the given gravity.
func NewChipmunkWorld(gravityX, gravityY float64) *ChipmunkWorld {
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{X: gravityX, Y: gravityY})
	return &ChipmunkWorld{space: space}
}

func (w *ChipmunkWorld) Kind() Kind {
	return Chipmunk
}

// Space returns the underlying Chipmunk space.
func (w *ChipmunkWorld) Space() *cp.Space {
	if w == nil {
		return nil
	}
	return w.space
}

func (w *ChipmunkWorld) CreateStaticBody(x, y, angle float64) Handle {
	body := cp.NewStaticBody()
	body.SetPosition(cp.Vector{X: x, Y: y})
	body.SetAngle(angle)
	w.space.AddBody(body)
	return w.bodies.insert(&chipmunkBody{body: body, friction: staticFriction, static: true})
}

func (w *ChipmunkWorld) CreateDynamicBody(x, y, angle, density, friction float64) Handle {
	// Mass and moment are placeholders until a shape is attached.
	body := cp.NewBody(1, 1)
	body.SetPosition(cp.Vector{X: x, Y: y})
	body.SetAngle(angle)
	body.SetAngularVelocity(0)
	w.space.AddBody(body)
	return w.bodies.insert(&chipmunkBody{body: body, density: density, friction: friction})
}

func (w *ChipmunkWorld) AttachBox(h Handle, halfWidth, halfHeight float64) error {
	rec, ok := w.bodies.get(h)
	if !ok {
		return fmt.Errorf("attach box %s: %w", h, ErrStaleHandle)
	}
	if halfWidth <= 0 || halfHeight <= 0 {
		return fmt.Errorf("attach box %vx%v: %w", halfWidth, halfHeight, ErrInvalidShape)
	}
	width, height := halfWidth*2, halfHeight*2

	if !rec.static && rec.density > 0 {
		mass := rec.density * width * height
		moment := cp.MomentForBox(mass, width, height)
		if len(rec.shapes) > 0 {
			mass += rec.body.Mass()
			moment += rec.body.Moment()
		}
		rec.body.SetMass(mass)
		rec.body.SetMoment(moment)
	}

	shape := cp.NewBox(rec.body, width, height, 0)
	shape.SetFriction(rec.friction)
	w.space.AddShape(shape)
	rec.shapes = append(rec.shapes, shape)
	return nil
}

func (w *ChipmunkWorld) DestroyBody(h Handle) error {
	rec, ok := w.bodies.get(h)
	if !ok {
		return fmt.Errorf("destroy body %s: %w", h, ErrStaleHandle)
	}
	for _, shape := range rec.shapes {
		w.space.RemoveShape(shape)
	}
	w.space.RemoveBody(rec.body)
	w.bodies.remove(h)
	return nil
}

// Step advances the space once. Chipmunk has a single solver iteration count,
// so positionIterations is ignored.
func (w *ChipmunkWorld) Step(dt float64, velocityIterations, positionIterations int) {
	if w == nil || w.space == nil {
		return
	}
	if velocityIterations > 0 {
		w.space.Iterations = uint(velocityIterations)
	}
	w.space.Step(dt)
}

func (w *ChipmunkWorld) Pose(h Handle) (Pose, error) {
	rec, ok := w.bodies.get(h)
	if !ok {
		return Pose{}, fmt.Errorf("pose %s: %w", h, ErrStaleHandle)
	}
	p := rec.body.Position()
	return Pose{X: p.X, Y: p.Y, Angle: rec.body.Angle()}, nil
}

func (w *ChipmunkWorld) SetTransform(h Handle, x, y, angle float64) error {
	rec, ok := w.bodies.get(h)
	if !ok {
		return fmt.Errorf("set transform %s: %w", h, ErrStaleHandle)
	}
	rec.body.SetPosition(cp.Vector{X: x, Y: y})
	rec.body.SetAngle(angle)
	// Shapes cache their world geometry; refresh it so point queries see the
	// new transform before the next step.
	for _, shape := range rec.shapes {
		shape.CacheBB()
	}
	return nil
}

func (w *ChipmunkWorld) TestPoint(h Handle, x, y float64) bool {
	rec, ok := w.bodies.get(h)
	if !ok {
		return false
	}
	p := cp.Vector{X: x, Y: y}
	for _, shape := range rec.shapes {
		if shape.PointQuery(p).Distance < 0 {
			return true
		}
	}
	return false
}

func (w *ChipmunkWorld) BodyCount() int {
	return w.bodies.len()
}

func (w *ChipmunkWorld) Close() {
	if w == nil || w.space == nil {
		return
	}
	var handles []Handle
	w.bodies.each(func(h Handle, _ *chipmunkBody) {
		handles = append(handles, h)
	})
	for _, h := range handles {
		if err := w.DestroyBody(h); err != nil {
			log.Printf("ChipmunkWorld: close: %v", err)
		}
	}
	w.space = nil
}
