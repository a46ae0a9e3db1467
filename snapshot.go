package pile

import "github.com/go-gl/mathgl/mgl64"

// Item is one tile as the presentation layer sees it.
type Item struct {
	ID ID
	// X, Y is the centre of the tile.
	X, Y  float64
	Angle float64
	Kind  Kind

	Width, Height float64
	Radius        float64
	Sleeping      bool
}

// Snapshot holds the tiles of one frame in the order they were spawned.
type Snapshot []Item

// Project samples every dynamic body of w. The result shares nothing with the world.
func Project(w *World) Snapshot {
	bodies := w.dynamicBodies
	snapshot := make(Snapshot, 0, len(bodies))
	for _, body := range bodies {
		snapshot = append(snapshot, Item{
			ID:       body.id,
			X:        body.p.X,
			Y:        body.p.Y,
			Angle:    body.a,
			Kind:     body.kind,
			Width:    body.width,
			Height:   body.height,
			Radius:   body.radius,
			Sleeping: body.sleeping,
		})
	}
	return snapshot
}

// Find returns the item with the given id.
func (s Snapshot) Find(id ID) (Item, bool) {
	for _, item := range s {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

// Transform maps tile space (origin at the top left corner, y down) to the world:
// translate(x, y) · rotate(angle) · translate(-w/2, -h/2).
func (item Item) Transform() mgl64.Mat3 {
	return mgl64.Translate2D(item.X, item.Y).
		Mul3(mgl64.HomogRotate2D(item.Angle)).
		Mul3(mgl64.Translate2D(-item.Width/2, -item.Height/2))
}

// Corners are the world positions of the top left, top right, bottom right and bottom left corners.
func (item Item) Corners() [4]Vector {
	m := item.Transform()
	local := [4]mgl64.Vec3{
		{0, 0, 1},
		{item.Width, 0, 1},
		{item.Width, item.Height, 1},
		{0, item.Height, 1},
	}
	var corners [4]Vector
	for i, p := range local {
		w := m.Mul3x1(p)
		corners[i] = Vector{w.X(), w.Y()}
	}
	return corners
}

// Contains reports whether the world point p falls inside the tile.
func (item Item) Contains(p Vector) bool {
	local := item.Transform().Inv().Mul3x1(mgl64.Vec3{p.X, p.Y, 1})
	return local.X() >= 0 && local.X() <= item.Width && local.Y() >= 0 && local.Y() <= item.Height
}
