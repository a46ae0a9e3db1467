package pile

import "math"

// BB is an axis aligned bounding box. T is the smaller y since y grows downward.
type BB struct {
	L, T, R, B float64
}

func NewBBForExtents(c Vector, hw, hh float64) BB {
	return BB{
		L: c.X - hw,
		T: c.Y - hh,
		R: c.X + hw,
		B: c.Y + hh,
	}
}

// NewBBForBox bounds a rectangle of half extents hw, hh rotated by rot about c.
func NewBBForBox(c Vector, hw, hh float64, rot Vector) BB {
	a := rot.X * hw
	b := -rot.Y * hh
	d := rot.Y * hw
	e := rot.X * hh
	hwMax := math.Max(math.Abs(a+b), math.Abs(a-b))
	hhMax := math.Max(math.Abs(d+e), math.Abs(d-e))
	return NewBBForExtents(c, hwMax, hhMax)
}

func (a BB) Intersects(b BB) bool {
	return a.L <= b.R && b.L <= a.R && a.T <= b.B && b.T <= a.B
}

func (a BB) Merge(b BB) BB {
	return BB{
		math.Min(a.L, b.L),
		math.Min(a.T, b.T),
		math.Max(a.R, b.R),
		math.Max(a.B, b.B),
	}
}

func (bb BB) Center() Vector {
	return Vector{bb.L, bb.T}.Lerp(Vector{bb.R, bb.B}, 0.5)
}

func (bb BB) Width() float64 {
	return bb.R - bb.L
}

func (bb BB) Height() float64 {
	return bb.B - bb.T
}

// Expand grows the box by r on every side.
func (bb BB) Expand(r float64) BB {
	return BB{bb.L - r, bb.T - r, bb.R + r, bb.B + r}
}
