package pile

import (
	"errors"
	"math"
	"testing"
)

func TestNewBody_InvalidGeometry(t *testing.T) {
	for _, size := range [][2]float64{
		{0, 10},
		{10, 0},
		{-1, 10},
		{math.NaN(), 10},
		{10, math.Inf(1)},
	} {
		_, err := NewBody(BodyDef{Width: size[0], Height: size[1]})
		if !errors.Is(err, ErrInvalidGeometry) {
			t.Errorf("%v: expected ErrInvalidGeometry, got %v", size, err)
		}
	}

	if _, err := NewBody(BodyDef{Position: Vector{math.NaN(), 0}, Width: 1, Height: 1}); !errors.Is(err, ErrInvalidGeometry) {
		t.Error("Expected NaN position to be rejected")
	}
}

func TestNewBody(t *testing.T) {
	body, err := NewBody(BodyDef{
		Position: Vector{10, 20},
		Width:    100,
		Height:   50,
		Radius:   80,
		Material: Material{Restitution: 2, Friction: -1},
	})
	if err != nil {
		t.Fatal(err)
	}

	if body.Mass() != 100*50*DefaultDensity {
		t.Error("Mass should come from area", body.Mass())
	}
	if body.Moment() != MomentForBox(body.Mass(), 100, 50) {
		t.Error("Unexpected moment", body.Moment())
	}
	if body.Radius() != 25 {
		t.Error("Radius should be clamped to half the short side", body.Radius())
	}
	if m := body.Material(); m.Restitution != 1 || m.Friction != 0 {
		t.Error("Material should be clamped to [0, 1]", m)
	}
	if body.IsStatic() || body.IsSleeping() {
		t.Error("New bodies are dynamic and awake")
	}
	if body.Velocity() != (Vector{}) || body.AngularVelocity() != 0 {
		t.Error("New bodies are at rest")
	}
	if bb := body.BB(); bb != (BB{-40, -5, 60, 45}) {
		t.Error("Unexpected bounding box", bb)
	}
}

func TestNewBody_UniqueIDs(t *testing.T) {
	seen := map[ID]bool{}
	var last ID
	for i := 0; i < 100; i++ {
		body, err := NewBody(BodyDef{Width: 1, Height: 1})
		if err != nil {
			t.Fatal(err)
		}
		if seen[body.ID()] {
			t.Fatal("Duplicate id", body.ID())
		}
		if body.ID() <= last {
			t.Fatal("Ids should increase", last, body.ID())
		}
		seen[body.ID()] = true
		last = body.ID()
	}
}

func TestNewStaticBody(t *testing.T) {
	body, err := NewStaticBody(BodyDef{Width: 10, Height: 10, Kind: LabelKind{Label: FloorLabel}})
	if err != nil {
		t.Fatal(err)
	}
	if !body.IsStatic() {
		t.Fatal("Expected static body")
	}
	if inv_mass(body) != 0 || inv_moment(body) != 0 {
		t.Error("Static bodies have no inverse mass")
	}

	body.SetVelocity(Vector{1, 1})
	body.ApplyImpulseAtWorldPoint(Vector{100, 0}, Vector{5, 5})
	if body.Velocity() != (Vector{}) || body.AngularVelocity() != 0 {
		t.Error("Static bodies never move")
	}
}

func TestBody_KineticEnergy(t *testing.T) {
	body, err := NewBody(BodyDef{Width: 100, Height: 100})
	if err != nil {
		t.Fatal(err)
	}
	body.SetVelocity(Vector{3, 4})
	// mass 10
	if e := body.KineticEnergy(); math.Abs(e-125) > 1e-9 {
		t.Error("Unexpected kinetic energy", e)
	}

	body.SetVelocity(Vector{})
	body.SetAngularVelocity(1)
	if e := body.KineticEnergy(); math.Abs(e-0.5*body.Moment()) > 1e-9 {
		t.Error("Unexpected rotational energy", e)
	}

	body.sleep()
	if body.KineticEnergy() != 0 {
		t.Error("Sleeping bodies have no energy")
	}
}

func TestBody_LocalToWorld(t *testing.T) {
	body, err := NewBody(BodyDef{Position: Vector{100, 100}, Width: 20, Height: 10, Angle: math.Pi / 2})
	if err != nil {
		t.Fatal(err)
	}

	p := body.LocalToWorld(Vector{10, 0})
	if !p.Near(Vector{100, 110}, 1e-9) {
		t.Error("Quarter turn should map +x to +y", p)
	}
	if back := body.WorldToLocal(p); !back.Near(Vector{10, 0}, 1e-9) {
		t.Error("WorldToLocal should invert LocalToWorld", back)
	}
}

func TestBody_ApplyImpulse(t *testing.T) {
	body, err := NewBody(BodyDef{Width: 10, Height: 10})
	if err != nil {
		t.Fatal(err)
	}
	body.sleep()

	body.ApplyImpulseAtWorldPoint(Vector{body.Mass(), 0}, Vector{0, 5})
	if body.IsSleeping() {
		t.Error("Impulses wake the body")
	}
	if !body.Velocity().Near(Vector{1, 0}, 1e-9) {
		t.Error("Unexpected velocity", body.Velocity())
	}
	if body.AngularVelocity() >= 0 {
		t.Error("Pushing below the centroid toward +x should spin toward -angle", body.AngularVelocity())
	}
}
