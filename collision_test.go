package pile

import (
	"math"
	"testing"
)

func box100(t *testing.T, x, y, angle float64) *Body {
	t.Helper()
	body, err := NewBody(BodyDef{Position: Vector{x, y}, Width: 100, Height: 100, Angle: angle})
	if err != nil {
		t.Fatal(err)
	}
	return body
}

func TestCollide_FaceToFace(t *testing.T) {
	a := box100(t, 0, 0, 0)
	b := box100(t, 0, 90, 0)

	var info CollisionInfo
	if !Collide(a, b, &info) {
		t.Fatal("Expected overlap")
	}
	if info.Count() != 2 {
		t.Fatal("Expected two contacts, got", info.Count())
	}
	if !info.Normal().Near(Vector{0, 1}, 1e-9) {
		t.Error("Normal should point from a to b", info.Normal())
	}
	if math.Abs(info.Depth()-10) > 1e-9 {
		t.Error("Expected depth 10, got", info.Depth())
	}
	for i := 0; i < info.count; i++ {
		p := a.p.Add(info.arr[i].r1)
		if math.Abs(p.Y-45) > 1e-9 {
			t.Error("Contact should sit midway between the surfaces", p)
		}
	}

	// swapping the bodies flips the normal
	if !Collide(b, a, &info) || !info.Normal().Near(Vector{0, -1}, 1e-9) {
		t.Error("Expected reversed normal", info.Normal())
	}
}

func TestCollide_Separated(t *testing.T) {
	var info CollisionInfo

	if Collide(box100(t, 0, 0, 0), box100(t, 0, 101, 0), &info) {
		t.Error("Boxes a pixel apart should not collide")
	}

	// bounding boxes overlap, rectangles don't
	if Collide(box100(t, 0, 0, 0), box100(t, 110, 110, math.Pi/4), &info) {
		t.Error("Rotated box near the corner should not collide")
	}
}

func TestCollide_Corner(t *testing.T) {
	a := box100(t, 0, 0, 0)
	halfDiagonal := 50 * math.Sqrt2
	b := box100(t, 0, 50+halfDiagonal-5, math.Pi/4)

	var info CollisionInfo
	if !Collide(a, b, &info) {
		t.Fatal("Expected the corner to dig in")
	}
	if info.Count() != 1 {
		t.Fatal("Expected one contact, got", info.Count())
	}
	if !info.Normal().Near(Vector{0, 1}, 1e-9) {
		t.Error("Unexpected normal", info.Normal())
	}
	if math.Abs(info.Depth()-5) > 1e-6 {
		t.Error("Expected depth 5, got", info.Depth())
	}
}

func TestCollide_Static(t *testing.T) {
	a, _ := NewStaticBody(BodyDef{Width: 10, Height: 10})
	b, _ := NewStaticBody(BodyDef{Width: 10, Height: 10})

	var info CollisionInfo
	if Collide(a, b, &info) {
		t.Error("Static pairs are never tested")
	}
}

func TestCollide_FeatureHashStable(t *testing.T) {
	a := box100(t, 0, 0, 0)
	b := box100(t, 0, 90, 0)

	var first, second CollisionInfo
	Collide(a, b, &first)
	b.SetPosition(Vector{0, 91})
	Collide(a, b, &second)

	if first.Count() != second.Count() {
		t.Fatal("Contact count changed")
	}
	for i := 0; i < first.count; i++ {
		if first.arr[i].hash != second.arr[i].hash {
			t.Error("Small moves should keep contact features", i)
		}
	}
}
