package pile

import (
	"fmt"
	"math"
	"math/rand"
	"unicode/utf8"
)

// Spawn defaults, in pixels unless noted.
const (
	DefaultImageChance = 0.6

	MinImageSize = 80.0
	MaxImageSize = 160.0
	ImageRadius  = 20.0

	TextHeight     = 70.0
	MinTextWidth   = 140.0
	TextCharWidth  = 15.0
	TextExtraWidth = 60.0
	TextRadius     = 15.0

	DefaultSpawnY  = -150.0
	DefaultMargin  = 100.0
	DefaultMaxTilt = 0.25
)

var (
	ImageMaterial = Material{Restitution: 0.3, Friction: 0.6}
	TextMaterial  = Material{Restitution: 0.4, Friction: 0.5}
)

// SpawnOptions tunes where new tiles appear and what they are made of.
type SpawnOptions struct {
	// ImageChance is the probability a new tile is an image rather than text.
	ImageChance float64 `yaml:"imageChance"`

	MinImageSize  float64  `yaml:"minImageSize"`
	MaxImageSize  float64  `yaml:"maxImageSize"`
	ImageRadius   float64  `yaml:"imageRadius"`
	ImageMaterial Material `yaml:"imageMaterial"`

	TextHeight    float64 `yaml:"textHeight"`
	MinTextWidth  float64 `yaml:"minTextWidth"`
	TextCharWidth float64 `yaml:"textCharWidth"`

	// TextExtraWidth is added to the per-character width for the box decoration.
	TextExtraWidth float64  `yaml:"textExtraWidth"`
	TextRadius     float64  `yaml:"textRadius"`
	TextMaterial   Material `yaml:"textMaterial"`

	// Y is the spawn height; negative is above the viewport.
	Y float64 `yaml:"y"`
	// Margin keeps spawn x this far from either side of the viewport.
	Margin float64 `yaml:"margin"`
	// MaxTilt bounds the initial angle, in radians either way.
	MaxTilt float64 `yaml:"maxTilt"`
}

func DefaultSpawnOptions() SpawnOptions {
	return SpawnOptions{
		ImageChance:    DefaultImageChance,
		MinImageSize:   MinImageSize,
		MaxImageSize:   MaxImageSize,
		ImageRadius:    ImageRadius,
		ImageMaterial:  ImageMaterial,
		TextHeight:     TextHeight,
		MinTextWidth:   MinTextWidth,
		TextCharWidth:  TextCharWidth,
		TextExtraWidth: TextExtraWidth,
		TextRadius:     TextRadius,
		TextMaterial:   TextMaterial,
		Y:              DefaultSpawnY,
		Margin:         DefaultMargin,
		MaxTilt:        DefaultMaxTilt,
	}
}

func (o SpawnOptions) Validate() error {
	bad := func(what string, v interface{}) error {
		return fmt.Errorf("%w: spawn %s %v", ErrInvalidConfiguration, what, v)
	}
	switch {
	case !isFinite(o.ImageChance) || o.ImageChance < 0 || o.ImageChance > 1:
		return bad("image chance", o.ImageChance)
	case !isFinite(o.MinImageSize) || o.MinImageSize <= 0 || !isFinite(o.MaxImageSize) || o.MaxImageSize < o.MinImageSize:
		return bad("image size", []float64{o.MinImageSize, o.MaxImageSize})
	case !isFinite(o.TextHeight) || o.TextHeight <= 0:
		return bad("text height", o.TextHeight)
	case !isFinite(o.MinTextWidth) || o.MinTextWidth <= 0 || !isFinite(o.TextCharWidth) || o.TextCharWidth < 0 ||
		!isFinite(o.TextExtraWidth) || o.TextExtraWidth < 0:
		return bad("text width", []float64{o.MinTextWidth, o.TextCharWidth, o.TextExtraWidth})
	case !isFinite(o.Y) || !isFinite(o.Margin) || o.Margin < 0:
		return bad("position", []float64{o.Y, o.Margin})
	case !isFinite(o.MaxTilt) || o.MaxTilt < 0:
		return bad("tilt", o.MaxTilt)
	}
	return nil
}

// Catalog lists what tiles can show.
type Catalog struct {
	Images   []ImageDescriptor
	Messages []string
	Boxes    []BoxDescriptor
}

func (c Catalog) Validate() error {
	switch {
	case len(c.Images) == 0:
		return fmt.Errorf("%w: no images", ErrInvalidConfiguration)
	case len(c.Messages) == 0:
		return fmt.Errorf("%w: no messages", ErrInvalidConfiguration)
	case len(c.Boxes) == 0:
		return fmt.Errorf("%w: no boxes", ErrInvalidConfiguration)
	}
	return nil
}

// Spawner makes random tiles and drops them into a world.
// It is not safe for concurrent use.
type Spawner struct {
	catalog Catalog
	opts    SpawnOptions
	rng     *rand.Rand
}

// NewSpawner checks the catalog and options. The same seed gives the same sequence of tiles.
func NewSpawner(catalog Catalog, opts SpawnOptions, seed int64) (*Spawner, error) {
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Spawner{
		catalog: catalog,
		opts:    opts,
		rng:     rand.New(rand.NewSource(seed)),
	}, nil
}

// Next builds the next random tile for a viewport of the given width without adding it anywhere.
func (s *Spawner) Next(viewportWidth float64) (*Body, error) {
	if err := s.catalog.Validate(); err != nil {
		return nil, err
	}
	opts := &s.opts

	// x, tilt and kind are drawn in this order so a seed always replays the same pile
	x := viewportWidth / 2
	if span := viewportWidth - 2*opts.Margin; span > 0 {
		x = opts.Margin + s.rng.Float64()*span
	}
	angle := (s.rng.Float64()*2 - 1) * opts.MaxTilt
	isImage := s.rng.Float64() < opts.ImageChance

	def := BodyDef{
		Position: Vector{x, opts.Y},
		Angle:    angle,
	}

	if isImage {
		url := s.catalog.Images[s.rng.Intn(len(s.catalog.Images))].URL
		size := opts.MinImageSize + s.rng.Float64()*(opts.MaxImageSize-opts.MinImageSize)
		def.Width, def.Height = size, size
		def.Radius = opts.ImageRadius
		def.Material = opts.ImageMaterial
		def.Kind = ImageKind{URL: url, Width: size, Height: size}
	} else {
		text := s.catalog.Messages[s.rng.Intn(len(s.catalog.Messages))]
		box := s.catalog.Boxes[s.rng.Intn(len(s.catalog.Boxes))]
		width := TextWidth(text, opts.MinTextWidth, opts.TextCharWidth, opts.TextExtraWidth)
		def.Width, def.Height = width, opts.TextHeight
		def.Radius = opts.TextRadius
		def.Material = opts.TextMaterial
		def.Kind = TextKind{Text: text, BoxURL: box.File, Padding: box.Padding, Width: width, Height: opts.TextHeight}
	}

	return NewBody(def)
}

// Spawn builds the next tile and adds it to w.
func (s *Spawner) Spawn(w *World) (*Body, error) {
	width, _ := w.Size()
	body, err := s.Next(width)
	if err != nil {
		return nil, err
	}
	if err := w.Add(body); err != nil {
		return nil, err
	}
	return body, nil
}

// TextWidth sizes a text tile: a fixed allowance per character plus room for the box, never below minWidth.
func TextWidth(text string, minWidth, charWidth, extraWidth float64) float64 {
	return math.Max(minWidth, float64(utf8.RuneCountInString(text))*charWidth+extraWidth)
}
