package pile

import (
	"math"
	"testing"
)

func TestProject(t *testing.T) {
	world := newTestWorld(t)
	if len(Project(world)) != 0 {
		t.Fatal("Boundaries never show up in a snapshot")
	}

	a := addBox(t, world, 100, 100, 80, 80)
	b := addBox(t, world, 300, 100, 40, 20)
	b.SetAngle(0.5)

	snapshot := Project(world)
	if len(snapshot) != 2 {
		t.Fatal("Expected two items, got", len(snapshot))
	}
	if snapshot[0].ID != a.ID() || snapshot[1].ID != b.ID() {
		t.Error("Items should be in spawn order")
	}

	item := snapshot[1]
	if item.X != 300 || item.Y != 100 || item.Angle != 0.5 || item.Width != 40 || item.Height != 20 {
		t.Error("Unexpected item", item)
	}

	// snapshots are copies
	world.Step(dt)
	if snapshot[0].Y != 100 {
		t.Error("Snapshot changed under us")
	}
	if Project(world)[0].Y == 100 {
		t.Error("A new snapshot should see the step")
	}

	if _, ok := snapshot.Find(b.ID()); !ok {
		t.Error("Expected to find b")
	}
	if _, ok := snapshot.Find(0); ok {
		t.Error("Id 0 is never assigned")
	}
}

func TestItem_Corners(t *testing.T) {
	item := Item{X: 100, Y: 50, Width: 40, Height: 20}
	corners := item.Corners()
	want := [4]Vector{{80, 40}, {120, 40}, {120, 60}, {80, 60}}
	for i := range corners {
		if !corners[i].Near(want[i], 1e-9) {
			t.Error("Unexpected corner", i, corners[i])
		}
	}

	// rotated corners match the body's own transform
	body, err := NewBody(BodyDef{Position: Vector{100, 50}, Width: 40, Height: 20, Angle: 0.7})
	if err != nil {
		t.Fatal(err)
	}
	item = Item{X: 100, Y: 50, Angle: 0.7, Width: 40, Height: 20}
	corners = item.Corners()
	for i, k := range boxCorners {
		p := body.LocalToWorld(Vector{k.X * 20, k.Y * 10})
		if !corners[i].Near(p, 1e-9) {
			t.Error("Corner disagrees with body transform", i, corners[i], p)
		}
	}
}

func TestItem_Contains(t *testing.T) {
	item := Item{X: 0, Y: 0, Angle: math.Pi / 4, Width: 100, Height: 100}
	if !item.Contains(Vector{0, 0}) {
		t.Error("Centre is inside")
	}
	if !item.Contains(Vector{0, 65}) {
		t.Error("Rotated corner reaches past the half width")
	}
	if item.Contains(Vector{45, 45}) {
		t.Error("Unrotated corner is outside")
	}
}
