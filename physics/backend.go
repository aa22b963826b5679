// Package physics wraps third-party 2D rigid-body engines behind a small
// capability interface. Bodies are referenced by generational handles so
// callers never hold engine pointers.
package physics

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrStaleHandle    = errors.New("physics: stale body handle")
	ErrUnknownBackend = errors.New("physics: unknown backend")
	ErrInvalidShape   = errors.New("physics: invalid shape extents")
)

// Kind names a backend implementation.
type Kind string

const (
	Chipmunk Kind = "chipmunk"
	Box2D    Kind = "box2d"
)

// DefaultKind is used when no backend is configured.
const DefaultKind = Chipmunk

// staticFriction matches the engines' own fixture default.
const staticFriction = 0.2

// Pose is a body's position and counter-clockwise rotation in radians.
type Pose struct {
	X     float64
	Y     float64
	Angle float64
}

// Backend is one physics world instance. Implementations are not safe for
// concurrent use.
type Backend interface {
	Kind() Kind
	CreateStaticBody(x, y, angle float64) Handle
	CreateDynamicBody(x, y, angle, density, friction float64) Handle
	AttachBox(h Handle, halfWidth, halfHeight float64) error
	DestroyBody(h Handle) error
	Step(dt float64, velocityIterations, positionIterations int)
	Pose(h Handle) (Pose, error)
	SetTransform(h Handle, x, y, angle float64) error
	TestPoint(h Handle, x, y float64) bool
	BodyCount() int
	Close()
}

// New creates an empty world of the given kind.
func New(kind Kind, gravityX, gravityY float64) (Backend, error) {
	switch kind {
	case Chipmunk, "":
		return NewChipmunkWorld(gravityX, gravityY), nil
	case Box2D:
		return NewBox2DWorld(gravityX, gravityY), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, kind)
	}
}

// Kinds lists the available backends.
func Kinds() []Kind {
	return []Kind{Chipmunk, Box2D}
}

// ParseKind accepts a backend name case-insensitively.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultKind, nil
	}
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
}
