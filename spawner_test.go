package pile

import (
	"errors"
	"math"
	"testing"
	"unicode/utf8"
)

func newTestSpawner(t *testing.T, seed int64) *Spawner {
	t.Helper()
	spawner, err := NewSpawner(DefaultConfig().Catalog(), DefaultSpawnOptions(), seed)
	if err != nil {
		t.Fatal(err)
	}
	return spawner
}

func TestSpawner_Geometry(t *testing.T) {
	spawner := newTestSpawner(t, 1)

	images := 0
	const n = 2000
	for i := 0; i < n; i++ {
		body, err := spawner.Next(1280)
		if err != nil {
			t.Fatal(err)
		}

		p := body.Position()
		if p.X < 100 || p.X > 1180 || p.Y != -150 {
			t.Fatal("Unexpected spawn position", p)
		}
		if math.Abs(body.Angle()) > 0.25 {
			t.Fatal("Unexpected tilt", body.Angle())
		}

		w, h := body.Size()
		switch kind := body.Kind().(type) {
		case ImageKind:
			images++
			if w != h || w < 80 || w > 160 {
				t.Fatal("Unexpected image size", w, h)
			}
			if kind.Width != w || kind.Height != h || kind.URL == "" {
				t.Fatal("Kind should describe the body", kind)
			}
			if body.Material() != ImageMaterial || body.Radius() != ImageRadius {
				t.Fatal("Unexpected image material", body.Material(), body.Radius())
			}
		case TextKind:
			want := math.Max(140, float64(utf8.RuneCountInString(kind.Text))*15+60)
			if w != want || h != 70 {
				t.Fatalf("Unexpected text size %v x %v for %q", w, h, kind.Text)
			}
			if kind.BoxURL == "" {
				t.Fatal("Text tiles need a box")
			}
			if body.Material() != TextMaterial || body.Radius() != TextRadius {
				t.Fatal("Unexpected text material", body.Material(), body.Radius())
			}
		default:
			t.Fatalf("Unexpected kind %T", kind)
		}
	}

	if ratio := float64(images) / n; math.Abs(ratio-DefaultImageChance) > 0.05 {
		t.Error("Expected about 60% images, got", ratio)
	}
}

func TestSpawner_Deterministic(t *testing.T) {
	a := newTestSpawner(t, 42)
	b := newTestSpawner(t, 42)

	for i := 0; i < 50; i++ {
		ba, _ := a.Next(1280)
		bb, _ := b.Next(1280)
		if ba.Position() != bb.Position() || ba.Angle() != bb.Angle() || ba.Kind() != bb.Kind() {
			t.Fatal("Same seed should give the same tiles", i)
		}
		if ba.ID() == bb.ID() {
			t.Fatal("Every body still gets its own id")
		}
	}
}

func TestSpawner_NarrowViewport(t *testing.T) {
	spawner := newTestSpawner(t, 1)
	for i := 0; i < 10; i++ {
		body, err := spawner.Next(150)
		if err != nil {
			t.Fatal(err)
		}
		if body.Position().X != 75 {
			t.Fatal("Narrow viewports spawn in the middle", body.Position())
		}
	}
}

func TestSpawner_Spawn(t *testing.T) {
	world := newTestWorld(t)
	spawner := newTestSpawner(t, 1)

	body, err := spawner.Spawn(world)
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := world.Body(body.ID()); !ok || got != body {
		t.Error("Spawn should add the body to the world")
	}
	if world.Len() != 1 {
		t.Error("Expected one dynamic body", world.Len())
	}
}

func TestNewSpawner_EmptyCatalog(t *testing.T) {
	full := DefaultConfig().Catalog()
	for name, catalog := range map[string]Catalog{
		"images":   {Messages: full.Messages, Boxes: full.Boxes},
		"messages": {Images: full.Images, Boxes: full.Boxes},
		"boxes":    {Images: full.Images, Messages: full.Messages},
	} {
		if _, err := NewSpawner(catalog, DefaultSpawnOptions(), 1); !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("%s: expected ErrInvalidConfiguration, got %v", name, err)
		}
	}

	opts := DefaultSpawnOptions()
	opts.ImageChance = 2
	if _, err := NewSpawner(full, opts, 1); !errors.Is(err, ErrInvalidConfiguration) {
		t.Error("Expected bad chance to be rejected", err)
	}
}

func TestSpawner_OnlyImages(t *testing.T) {
	opts := DefaultSpawnOptions()
	opts.ImageChance = 1
	spawner, err := NewSpawner(DefaultConfig().Catalog(), opts, 9)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		body, _ := spawner.Next(1280)
		if _, ok := body.Kind().(ImageKind); !ok {
			t.Fatal("Expected only images")
		}
	}
}

func TestTextWidth(t *testing.T) {
	for _, test := range []struct {
		text string
		want float64
	}{
		{"", 140},
		{"Tu voz", 150},
		{"Tu pasión por lo que haces", 26*15 + 60},
		{"ñññññ", 140},
	} {
		if got := TextWidth(test.text, MinTextWidth, TextCharWidth, TextExtraWidth); got != test.want {
			t.Errorf("%q: got %v, want %v", test.text, got, test.want)
		}
	}

	if got := TextWidth("Tu voz", 0, 10, 0); got != 60 {
		t.Error("Expected the extra width to be configurable", got)
	}
}

func TestSpawner_TextExtraWidth(t *testing.T) {
	opts := DefaultSpawnOptions()
	opts.ImageChance = 0
	opts.TextExtraWidth = 200
	catalog := DefaultConfig().Catalog()
	catalog.Messages = []string{"Tu voz"}
	spawner, err := NewSpawner(catalog, opts, 1)
	if err != nil {
		t.Fatal(err)
	}
	body, err := spawner.Next(1280)
	if err != nil {
		t.Fatal(err)
	}
	if w, _ := body.Size(); w != 6*TextCharWidth+200 {
		t.Error("Unexpected text width", w)
	}

	opts.TextExtraWidth = -1
	if err := opts.Validate(); !errors.Is(err, ErrInvalidConfiguration) {
		t.Error("Expected negative extra width to be rejected", err)
	}
}
