package physics

import (
	"fmt"
	"log"

	"github.com/ByteArena/box2d"
)

type box2dBody struct {
	body     *box2d.B2Body
	density  float64
	friction float64
	static   bool
}

// Box2DWorld is a Backend on top of a Box2D world.
type Box2DWorld struct {
	world  *box2d.B2World
	bodies table[*box2dBody]
}

// NewBox2DWorld creates a Box2D world with the given gravity.
func NewBox2DWorld(gravityX, gravityY float64) *Box2DWorld {
	world := box2d.MakeB2World(box2d.MakeB2Vec2(gravityX, gravityY))
	return &Box2DWorld{world: &world}
}

func (w *Box2DWorld) Kind() Kind {
	return Box2D
}

func (w *Box2DWorld) CreateStaticBody(x, y, angle float64) Handle {
	def := box2d.MakeB2BodyDef()
	def.Type = box2d.B2BodyType.B2_staticBody
	def.Position.Set(x, y)
	def.Angle = angle
	body := w.world.CreateBody(&def)
	return w.bodies.insert(&box2dBody{body: body, friction: staticFriction, static: true})
}

func (w *Box2DWorld) CreateDynamicBody(x, y, angle, density, friction float64) Handle {
	def := box2d.MakeB2BodyDef()
	def.Type = box2d.B2BodyType.B2_dynamicBody
	def.Position.Set(x, y)
	def.Angle = angle
	body := w.world.CreateBody(&def)
	return w.bodies.insert(&box2dBody{body: body, density: density, friction: friction})
}

func (w *Box2DWorld) AttachBox(h Handle, halfWidth, halfHeight float64) error {
	rec, ok := w.bodies.get(h)
	if !ok {
		return fmt.Errorf("attach box %s: %w", h, ErrStaleHandle)
	}
	if halfWidth <= 0 || halfHeight <= 0 {
		return fmt.Errorf("attach box %vx%v: %w", halfWidth, halfHeight, ErrInvalidShape)
	}

	shape := box2d.MakeB2PolygonShape()
	shape.SetAsBox(halfWidth, halfHeight)

	fd := box2d.MakeB2FixtureDef()
	fd.Shape = &shape
	fd.Density = rec.density
	fd.Friction = rec.friction
	rec.body.CreateFixtureFromDef(&fd)
	return nil
}

func (w *Box2DWorld) DestroyBody(h Handle) error {
	rec, ok := w.bodies.get(h)
	if !ok {
		return fmt.Errorf("destroy body %s: %w", h, ErrStaleHandle)
	}
	w.world.DestroyBody(rec.body)
	w.bodies.remove(h)
	return nil
}

func (w *Box2DWorld) Step(dt float64, velocityIterations, positionIterations int) {
	if w == nil || w.world == nil {
		return
	}
	w.world.Step(dt, velocityIterations, positionIterations)
}

func (w *Box2DWorld) Pose(h Handle) (Pose, error) {
	rec, ok := w.bodies.get(h)
	if !ok {
		return Pose{}, fmt.Errorf("pose %s: %w", h, ErrStaleHandle)
	}
	p := rec.body.GetPosition()
	return Pose{X: p.X, Y: p.Y, Angle: rec.body.GetAngle()}, nil
}

func (w *Box2DWorld) SetTransform(h Handle, x, y, angle float64) error {
	rec, ok := w.bodies.get(h)
	if !ok {
		return fmt.Errorf("set transform %s: %w", h, ErrStaleHandle)
	}
	rec.body.SetTransform(box2d.MakeB2Vec2(x, y), angle)
	return nil
}

func (w *Box2DWorld) TestPoint(h Handle, x, y float64) bool {
	rec, ok := w.bodies.get(h)
	if !ok {
		return false
	}
	p := box2d.MakeB2Vec2(x, y)
	for f := rec.body.GetFixtureList(); f != nil; f = f.GetNext() {
		if f.TestPoint(p) {
			return true
		}
	}
	return false
}

func (w *Box2DWorld) BodyCount() int {
	return w.bodies.len()
}

func (w *Box2DWorld) Close() {
	if w == nil || w.world == nil {
		return
	}
	var handles []Handle
	w.bodies.each(func(h Handle, _ *box2dBody) {
		handles = append(handles, h)
	})
	for _, h := range handles {
		if err := w.DestroyBody(h); err != nil {
			log.Printf("Box2DWorld: close: %v", err)
		}
	}
	w.world = nil
}
