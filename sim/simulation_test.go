package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/milk9111/kakip/physics"
)

var testSprites = []SpriteDesc{
	{PixelWidth: 96, PixelHeight: 144},
	{PixelWidth: 120, PixelHeight: 120},
	{PixelWidth: 72, PixelHeight: 160},
}

func newTestSim(t *testing.T, kind physics.Kind, seed uint64) *Simulation {
	t.Helper()
	s := New(Settings{Backend: kind, Seed: seed})
	t.Cleanup(s.Close)
	return s
}

// newManualArena builds an empty 1920x1080 arena (20 x 11.25 world units)
// and places entities at known poses.
func newManualArena(t *testing.T, kind physics.Kind, poses ...[3]float64) *Simulation {
	t.Helper()
	s := newTestSim(t, kind, 1)
	if err := s.BuildArena(1920, 1080, testSprites, 0, DefaultWallThickness); err != nil {
		t.Fatalf("build arena: %v", err)
	}
	for i, p := range poses {
		if _, err := s.arena.spawn(i%len(testSprites), p[0], p[1], p[2], 0.5, 0.5); err != nil {
			t.Fatalf("spawn %d: %v", i, err)
		}
	}
	return s
}

func snapshot(s *Simulation) []Entity {
	return s.Entities()
}

func samePoses(t *testing.T, before, after []Entity) {
	t.Helper()
	if len(before) != len(after) {
		t.Fatalf("entity count changed %d -> %d", len(before), len(after))
	}
	for i := range before {
		b, a := before[i], after[i]
		if !near(b.X, a.X) || !near(b.Y, a.Y) || !near(b.Angle, a.Angle) {
			t.Fatalf("entity %d moved: %+v -> %+v", i, b, a)
		}
	}
}

func TestBuildArenaPopulation(t *testing.T) {
	for _, kind := range physics.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			s := newTestSim(t, kind, 0)
			if s.State() != Uninitialized {
				t.Fatalf("expected uninitialized, got %s", s.State())
			}
			if err := s.BuildArena(1920, 1080, testSprites, DefaultEntityCount, DefaultWallThickness); err != nil {
				t.Fatalf("build arena: %v", err)
			}
			if s.State() != Ready {
				t.Fatalf("expected ready, got %s", s.State())
			}

			ww, wh, err := s.Extents()
			if err != nil {
				t.Fatalf("extents: %v", err)
			}
			if !near(ww, 20) || !near(wh, 11.25) {
				t.Fatalf("extents = %v x %v", ww, wh)
			}

			entities := s.Entities()
			if len(entities) != DefaultEntityCount {
				t.Fatalf("expected %d entities, got %d", DefaultEntityCount, len(entities))
			}
			for i, e := range entities {
				if e.ID != i {
					t.Fatalf("entity %d has id %d", i, e.ID)
				}
				if e.X < 0 || e.X >= ww || e.Y < 0 || e.Y >= wh {
					t.Fatalf("entity %d outside world: (%v,%v)", i, e.X, e.Y)
				}
				if e.Angle < 0 || e.Angle >= 2*math.Pi {
					t.Fatalf("entity %d angle out of range: %v", i, e.Angle)
				}
				sp := testSprites[e.SpriteID]
				if !near(e.HalfWidth, float64(sp.PixelWidth)*DefaultSpriteScale/2) ||
					!near(e.HalfHeight, float64(sp.PixelHeight)*DefaultSpriteScale/2) {
					t.Fatalf("entity %d half extents %v x %v do not match sprite %d", i, e.HalfWidth, e.HalfHeight, e.SpriteID)
				}
			}

			if got, ok := s.Backend(); !ok || got != kind {
				t.Fatalf("expected backend %s, got %s", kind, got)
			}
			if n := s.arena.backend.BodyCount(); n != DefaultEntityCount+4 {
				t.Fatalf("expected %d bodies, got %d", DefaultEntityCount+4, n)
			}
		})
	}
}

func TestBuildArenaRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name      string
		sw, sh    float64
		sprites   []SpriteDesc
		count     int
		thickness float64
		want      error
	}{
		{"zero_screen", 0, 1080, testSprites, 10, 10, ErrInvalidExtent},
		{"empty_catalog", 1920, 1080, nil, 10, 10, ErrEmptyCatalog},
		{"bad_sprite", 1920, 1080, []SpriteDesc{{PixelWidth: 0, PixelHeight: 10}}, 10, 10, ErrInvalidSprite},
		{"negative_count", 1920, 1080, testSprites, -1, 10, ErrInvalidEntityCount},
		{"too_many", 1920, 1080, testSprites, MaxEntities + 1, 10, ErrInvalidEntityCount},
		{"zero_thickness", 1920, 1080, testSprites, 10, 0, ErrInvalidThickness},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := newTestSim(t, physics.Chipmunk, 3)
			if err := s.BuildArena(800, 600, testSprites, 5, DefaultWallThickness); err != nil {
				t.Fatalf("initial build: %v", err)
			}
			before := snapshot(s)

			err := s.BuildArena(c.sw, c.sh, c.sprites, c.count, c.thickness)
			if !errors.Is(err, c.want) {
				t.Fatalf("expected %v, got %v", c.want, err)
			}
			samePoses(t, before, snapshot(s))
			if ww, _, _ := s.Extents(); !near(ww, 20) {
				t.Fatalf("previous arena replaced after failed build")
			}
		})
	}
}

func TestHitTest(t *testing.T) {
	for _, kind := range physics.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			s := newManualArena(t, kind,
				[3]float64{5, 5, 0},
				[3]float64{10, 5, 0.3},
				[3]float64{5.6, 5, 0},
			)

			tests := []struct {
				name   string
				x, y   float64
				wantID int
				hit    bool
			}{
				{"inside_only_second", 10.2, 5.1, 1, true},
				{"overlap_first_wins", 5.3, 5.1, 0, true},
				{"inside_only_third", 5.95, 5, 2, true},
				{"empty_space", 15, 3, 0, false},
				{"inside_left_wall", -1, 3, 0, false},
				{"inside_top_wall", 10, 12, 0, false},
			}
			for _, tc := range tests {
				t.Run(tc.name, func(t *testing.T) {
					e, ok := s.HitTest(tc.x, tc.y)
					if ok != tc.hit {
						t.Fatalf("HitTest(%v,%v) hit=%v, want %v", tc.x, tc.y, ok, tc.hit)
					}
					if ok && e.ID != tc.wantID {
						t.Fatalf("HitTest(%v,%v) = entity %d, want %d", tc.x, tc.y, e.ID, tc.wantID)
					}
				})
			}
		})
	}
}

func TestHitTestBeforeBuild(t *testing.T) {
	s := newTestSim(t, physics.Chipmunk, 0)
	if _, ok := s.HitTest(1, 1); ok {
		t.Fatalf("expected miss without arena")
	}
	if s.BeginDrag(1, 1) {
		t.Fatalf("expected drag to fail without arena")
	}
	s.UpdateDrag(2, 2)
	s.Step()
	if s.Steps() != 0 {
		t.Fatalf("step without arena should be a no-op")
	}
}

func TestDrag(t *testing.T) {
	for _, kind := range physics.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			t.Run("miss_is_noop", func(t *testing.T) {
				s := newManualArena(t, kind, [3]float64{5, 5, 0.4}, [3]float64{10, 5, 1.2})
				before := snapshot(s)
				if s.BeginDrag(15, 3) {
					t.Fatalf("expected miss")
				}
				if s.Drag().IsDragging() {
					t.Fatalf("drag state should stay idle")
				}
				s.UpdateDrag(1, 1)
				s.UpdateDrag(5, 5)
				samePoses(t, before, snapshot(s))
			})

			t.Run("hit_teleports", func(t *testing.T) {
				s := newManualArena(t, kind, [3]float64{5, 5, 0.4}, [3]float64{10, 5, 1.2})
				before := snapshot(s)
				if !s.BeginDrag(5.1, 5.1) {
					t.Fatalf("expected hit")
				}
				if id, ok := s.Drag().Target(); !ok || id != 0 {
					t.Fatalf("expected dragging entity 0, got %d ok=%v", id, ok)
				}

				s.UpdateDrag(7, 8)
				e, ok := s.Entity(0)
				if !ok {
					t.Fatalf("entity 0 missing")
				}
				if !near(e.X, 7) || !near(e.Y, 8) || !near(e.Angle, 0.4) {
					t.Fatalf("dragged entity pose %+v, want (7,8) angle 0.4", e)
				}
				other, _ := s.Entity(1)
				if !near(other.X, before[1].X) || !near(other.Y, before[1].Y) {
					t.Fatalf("non-dragged entity moved: %+v", other)
				}

				// the teleported box answers hit tests at its new place
				if hit, ok := s.HitTest(7.1, 8.1); !ok || hit.ID != 0 {
					t.Fatalf("expected hit on moved entity")
				}

				s.EndDrag()
				if s.Drag().IsDragging() {
					t.Fatalf("expected idle after EndDrag")
				}
				afterEnd := snapshot(s)
				s.UpdateDrag(2, 2)
				samePoses(t, afterEnd, snapshot(s))
			})

			t.Run("end_drag_when_idle", func(t *testing.T) {
				s := newManualArena(t, kind, [3]float64{5, 5, 0})
				s.EndDrag()
				if s.Drag() != Idle() {
					t.Fatalf("expected idle")
				}
			})
		})
	}
}

func TestTouchMapsScreenToWorld(t *testing.T) {
	s := newManualArena(t, physics.Chipmunk, [3]float64{10, 5.625, 0})
	// world (10, 5.625) is the screen center
	if !s.TouchDown(960, 540) {
		t.Fatalf("expected touch down to hit the centered entity")
	}
	s.TouchMove(480, 270)
	e, _ := s.Entity(0)
	if !near(e.X, 5) || !near(e.Y, 8.4375) {
		t.Fatalf("entity at (%v,%v), want (5,8.4375)", e.X, e.Y)
	}
	s.TouchUp()
	s.TouchMove(0, 0)
	e, _ = s.Entity(0)
	if !near(e.X, 5) || !near(e.Y, 8.4375) {
		t.Fatalf("entity moved after touch up: (%v,%v)", e.X, e.Y)
	}
}

func TestBuildArenaDeterministic(t *testing.T) {
	for _, kind := range physics.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			s := newTestSim(t, kind, 42)
			build := func() []Entity {
				if err := s.BuildArena(1280, 720, testSprites, DefaultEntityCount, DefaultWallThickness); err != nil {
					t.Fatalf("build arena: %v", err)
				}
				return s.Entities()
			}
			first := build()
			second := build()
			if len(first) != len(second) {
				t.Fatalf("entity count differs")
			}
			for i := range first {
				a, b := first[i], second[i]
				if a.SpriteID != b.SpriteID || a.X != b.X || a.Y != b.Y || a.Angle != b.Angle {
					t.Fatalf("entity %d differs: %+v vs %+v", i, a, b)
				}
			}

			other := newTestSim(t, kind, 42)
			if err := other.BuildArena(1280, 720, testSprites, DefaultEntityCount, DefaultWallThickness); err != nil {
				t.Fatalf("build arena: %v", err)
			}
			for i, e := range other.Entities() {
				if e.X != first[i].X || e.Y != first[i].Y || e.Angle != first[i].Angle {
					t.Fatalf("entity %d differs across simulations", i)
				}
			}
		})
	}
}

func TestStep(t *testing.T) {
	for _, kind := range physics.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			s := newManualArena(t, kind, [3]float64{4, 4, 0.5}, [3]float64{12, 6, 2})
			before := snapshot(s)

			const n = 90
			for i := 0; i < n; i++ {
				s.Step()
			}
			if s.Steps() != n {
				t.Fatalf("expected %d steps, got %d", n, s.Steps())
			}
			if got, want := s.SimTime(), float64(n)*(1.0/60); got != want {
				t.Fatalf("sim time = %v, want %v", got, want)
			}
			if s.State() != Stepping {
				t.Fatalf("expected stepping, got %s", s.State())
			}
			// bodies at rest without gravity or contacts stay put
			samePoses(t, before, snapshot(s))

			s.StepWith(StepParams{Dt: 0.5, VelocityIterations: 4, PositionIterations: 2})
			if got, want := s.SimTime(), float64(n)*(1.0/60)+0.5; !near(got, want) {
				t.Fatalf("sim time = %v, want %v", got, want)
			}

			s.Reset()
			if s.State() != Uninitialized || s.Steps() != 0 || s.SimTime() != 0 {
				t.Fatalf("reset did not clear state")
			}
			if len(s.Entities()) != 0 {
				t.Fatalf("expected no entities after reset")
			}
		})
	}
}

func TestStepKeepsEntitiesInsideWalls(t *testing.T) {
	s := newTestSim(t, physics.Chipmunk, 7)
	if err := s.BuildArena(1920, 1080, testSprites, DefaultEntityCount, DefaultWallThickness); err != nil {
		t.Fatalf("build arena: %v", err)
	}
	for i := 0; i < 120; i++ {
		s.Step()
	}
	ww, wh, _ := s.Extents()
	const margin = 1.0
	for _, e := range s.Entities() {
		if e.X < -margin || e.X > ww+margin || e.Y < -margin || e.Y > wh+margin {
			t.Fatalf("entity %d escaped the arena: (%v,%v)", e.ID, e.X, e.Y)
		}
	}
}

func TestFrame(t *testing.T) {
	s := newManualArena(t, physics.Chipmunk, [3]float64{10, 5.625, math.Pi / 2}, [3]float64{2, 2, 0})
	if !s.BeginDrag(10, 5.625) {
		t.Fatalf("expected hit")
	}

	f := s.Frame()
	if f.ScreenWidth != 1920 || f.ScreenHeight != 1080 || !near(f.WorldWidth, 20) || !near(f.WorldHeight, 11.25) {
		t.Fatalf("unexpected frame extents %+v", f)
	}
	if len(f.Sprites) != 2 {
		t.Fatalf("expected 2 sprites, got %d", len(f.Sprites))
	}
	sp := f.Sprites[0]
	if !near(sp.ScreenX, 960) || !near(sp.ScreenY, 540) {
		t.Fatalf("sprite at (%v,%v), want (960,540)", sp.ScreenX, sp.ScreenY)
	}
	if !near(sp.Degrees, -90) {
		t.Fatalf("sprite degrees %v, want -90", sp.Degrees)
	}
	if !near(sp.PixelHalfWidth, 48) || !near(sp.PixelHalfHeight, 48) {
		t.Fatalf("sprite half size %v x %v, want 48 x 48", sp.PixelHalfWidth, sp.PixelHalfHeight)
	}
	if !sp.Dragged || f.Sprites[1].Dragged {
		t.Fatalf("expected only the first sprite to be marked dragged")
	}

	var empty Simulation
	if len(empty.Frame().Sprites) != 0 {
		t.Fatalf("expected empty frame before build")
	}
}
