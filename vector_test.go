package pile

import (
	"math"
	"testing"
)

func TestVector_Normalize(t *testing.T) {
	v := Vector{}
	u := v.Normalize()
	if u.X != 0.0 || u.Y != 0.0 {
		t.Errorf("Expected zero vector, got %v", u)
	}

	u = Vector{3, 4}.Normalize()
	if math.Abs(u.Length()-1) > 1e-12 {
		t.Errorf("Expected unit vector, got %v", u)
	}

	u = Vector{1e-320, 0}.Normalize()
	if u != (Vector{1, 0}) {
		t.Errorf("Expected 1,0 for a tiny vector, got %v", u)
	}

	if c := (Vector{}).Clamp(10); c != (Vector{}) {
		t.Errorf("Expected clamping zero to stay zero, got %v", c)
	}
}

func TestVector_RotateUnrotate(t *testing.T) {
	rot := ForAngle(0.3)
	v := Vector{12, -7}
	back := v.Rotate(rot).Unrotate(rot)
	if !back.Near(v, 1e-9) {
		t.Errorf("Expected %v, got %v", v, back)
	}

	// y down: a quarter turn maps +x onto +y
	q := Vector{1, 0}.Rotate(ForAngle(math.Pi / 2))
	if !q.Near(Vector{0, 1}, 1e-12) {
		t.Errorf("Expected 0,1 got %v", q)
	}
}

func TestVector_Clamp(t *testing.T) {
	v := Vector{300, 400}.Clamp(50)
	if math.Abs(v.Length()-50) > 1e-9 {
		t.Errorf("Expected length 50, got %v", v.Length())
	}
	if w := (Vector{3, 4}).Clamp(50); !w.Equal(Vector{3, 4}) {
		t.Errorf("Short vectors must be left alone, got %v", w)
	}
}

func TestVector_IsFinite(t *testing.T) {
	if !(Vector{1, 2}).IsFinite() {
		t.Error("Expected finite")
	}
	if (Vector{math.NaN(), 0}).IsFinite() || (Vector{0, math.Inf(1)}).IsFinite() {
		t.Error("Expected non-finite")
	}
}
