package physics

import (
	"errors"
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) <= eps
}

func TestParseKind(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
		err  bool
	}{
		{"", DefaultKind, false},
		{"chipmunk", Chipmunk, false},
		{" Box2D ", Box2D, false},
		{"bullet", "", true},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, err := ParseKind(c.in)
			if c.err {
				if !errors.Is(err, ErrUnknownBackend) {
					t.Fatalf("expected ErrUnknownBackend, got %v", err)
				}
				return
			}
			if err != nil || got != c.want {
				t.Fatalf("ParseKind(%q) = %q, %v; want %q", c.in, got, err, c.want)
			}
		})
	}
}

func TestNewUnknownBackend(t *testing.T) {
	if _, err := New("bullet", 0, 0); !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
}

func TestBackends(t *testing.T) {
	for _, kind := range Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			t.Run("pose_roundtrip", func(t *testing.T) {
				b := mustNew(t, kind)
				h := b.CreateDynamicBody(1.5, -2, 0.75, 1, 0.3)
				if err := b.AttachBox(h, 0.5, 0.25); err != nil {
					t.Fatalf("attach box: %v", err)
				}
				p, err := b.Pose(h)
				if err != nil {
					t.Fatalf("pose: %v", err)
				}
				if !near(p.X, 1.5) || !near(p.Y, -2) || !near(p.Angle, 0.75) {
					t.Fatalf("unexpected pose %+v", p)
				}
			})

			t.Run("test_point", func(t *testing.T) {
				b := mustNew(t, kind)
				h := b.CreateDynamicBody(5, 5, 0, 1, 0.3)
				if err := b.AttachBox(h, 1, 0.5); err != nil {
					t.Fatalf("attach box: %v", err)
				}
				if !b.TestPoint(h, 5.9, 5.4) {
					t.Fatalf("expected point inside box")
				}
				if b.TestPoint(h, 5, 5.6) {
					t.Fatalf("expected point outside box")
				}

				// a quarter turn swaps the box extents
				if err := b.SetTransform(h, 5, 5, math.Pi/2); err != nil {
					t.Fatalf("set transform: %v", err)
				}
				if !b.TestPoint(h, 5, 5.9) {
					t.Fatalf("expected rotated box to contain point")
				}
				if b.TestPoint(h, 5.9, 5) {
					t.Fatalf("expected rotated box to exclude point")
				}
			})

			t.Run("set_transform", func(t *testing.T) {
				b := mustNew(t, kind)
				h := b.CreateDynamicBody(0, 0, 0.3, 1, 0.3)
				if err := b.AttachBox(h, 0.2, 0.2); err != nil {
					t.Fatalf("attach box: %v", err)
				}
				if err := b.SetTransform(h, 3, 4, 0.3); err != nil {
					t.Fatalf("set transform: %v", err)
				}
				p, _ := b.Pose(h)
				if !near(p.X, 3) || !near(p.Y, 4) || !near(p.Angle, 0.3) {
					t.Fatalf("unexpected pose after teleport %+v", p)
				}
				if !b.TestPoint(h, 3.1, 4.1) {
					t.Fatalf("expected point query to follow teleport")
				}
			})

			t.Run("step_without_forces", func(t *testing.T) {
				b := mustNew(t, kind)
				h := b.CreateDynamicBody(2, 2, 1, 1, 0.3)
				if err := b.AttachBox(h, 0.2, 0.1); err != nil {
					t.Fatalf("attach box: %v", err)
				}
				for i := 0; i < 30; i++ {
					b.Step(1.0/60, 8, 3)
				}
				p, _ := b.Pose(h)
				if !near(p.X, 2) || !near(p.Y, 2) || !near(p.Angle, 1) {
					t.Fatalf("resting body moved: %+v", p)
				}
			})

			t.Run("gravity_moves_dynamic_bodies", func(t *testing.T) {
				b, err := New(kind, 0, -10)
				if err != nil {
					t.Fatalf("new: %v", err)
				}
				defer b.Close()
				h := b.CreateDynamicBody(0, 10, 0, 1, 0.3)
				if err := b.AttachBox(h, 0.5, 0.5); err != nil {
					t.Fatalf("attach box: %v", err)
				}
				wall := b.CreateStaticBody(0, 0, 0)
				if err := b.AttachBox(wall, 5, 0.5); err != nil {
					t.Fatalf("attach wall: %v", err)
				}
				for i := 0; i < 10; i++ {
					b.Step(1.0/60, 8, 3)
				}
				p, _ := b.Pose(h)
				if p.Y >= 10 {
					t.Fatalf("expected body to fall, y=%v", p.Y)
				}
				wp, _ := b.Pose(wall)
				if wp.X != 0 || wp.Y != 0 {
					t.Fatalf("static body moved: %+v", wp)
				}
			})

			t.Run("stale_handles", func(t *testing.T) {
				b := mustNew(t, kind)
				h := b.CreateDynamicBody(0, 0, 0, 1, 0.3)
				if err := b.AttachBox(h, 1, 1); err != nil {
					t.Fatalf("attach box: %v", err)
				}
				if err := b.DestroyBody(h); err != nil {
					t.Fatalf("destroy: %v", err)
				}
				if b.BodyCount() != 0 {
					t.Fatalf("expected no bodies, got %d", b.BodyCount())
				}
				if _, err := b.Pose(h); !errors.Is(err, ErrStaleHandle) {
					t.Fatalf("expected ErrStaleHandle, got %v", err)
				}
				if err := b.SetTransform(h, 1, 1, 0); !errors.Is(err, ErrStaleHandle) {
					t.Fatalf("expected ErrStaleHandle, got %v", err)
				}
				if b.TestPoint(h, 0, 0) {
					t.Fatalf("stale handle should never hit")
				}
				// the recycled slot must not resolve the old handle
				h2 := b.CreateDynamicBody(0, 0, 0, 1, 0.3)
				if h2 == h {
					t.Fatalf("recycled handle equals stale handle")
				}
				if _, err := b.Pose(h); !errors.Is(err, ErrStaleHandle) {
					t.Fatalf("stale handle resolved after reuse")
				}
			})

			t.Run("invalid_box", func(t *testing.T) {
				b := mustNew(t, kind)
				h := b.CreateDynamicBody(0, 0, 0, 1, 0.3)
				if err := b.AttachBox(h, 0, 1); !errors.Is(err, ErrInvalidShape) {
					t.Fatalf("expected ErrInvalidShape, got %v", err)
				}
			})
		})
	}
}

func mustNew(t *testing.T, kind Kind) Backend {
	t.Helper()
	b, err := New(kind, 0, 0)
	if err != nil {
		t.Fatalf("new %s: %v", kind, err)
	}
	if b.Kind() != kind {
		t.Fatalf("expected kind %s, got %s", kind, b.Kind())
	}
	t.Cleanup(b.Close)
	return b
}
