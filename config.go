package pile

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Viewport used when a config leaves it out.
const (
	DefaultWidth  = 1280.0
	DefaultHeight = 800.0
)

// Config is everything a Handle needs: the viewport, the catalogs tiles are drawn from and the tuning.
type Config struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`

	Images   []ImageDescriptor `yaml:"images"`
	Messages []string          `yaml:"messages"`
	Boxes    []BoxDescriptor   `yaml:"boxes"`

	Spawn   SpawnOptions `yaml:"spawn"`
	Physics Options      `yaml:"physics"`
}

type ImageDescriptor struct {
	URL string `yaml:"url"`
}

// UnmarshalYAML accepts either a bare URL or a {url: ...} mapping.
func (d *ImageDescriptor) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		d.URL = node.Value
		return nil
	}
	type plain ImageDescriptor
	return node.Decode((*plain)(d))
}

// BoxDescriptor is the decoration drawn behind a text tile.
type BoxDescriptor struct {
	File    string  `yaml:"file"`
	Padding Padding `yaml:"padding"`
}

// Padding insets text inside its box, in pixels.
type Padding struct {
	Top, Right, Bottom, Left float64
}

// ParsePadding reads CSS padding shorthand: one to four lengths in px, or unitless.
func ParsePadding(s string) (Padding, error) {
	fields := strings.Fields(s)
	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSuffix(f, "px"), 64)
		if err != nil || !isFinite(v) || v < 0 {
			return Padding{}, fmt.Errorf("%w: padding %q", ErrInvalidConfiguration, s)
		}
		values[i] = v
	}

	switch len(values) {
	case 1:
		return Padding{values[0], values[0], values[0], values[0]}, nil
	case 2:
		return Padding{values[0], values[1], values[0], values[1]}, nil
	case 3:
		return Padding{values[0], values[1], values[2], values[1]}, nil
	case 4:
		return Padding{values[0], values[1], values[2], values[3]}, nil
	}
	return Padding{}, fmt.Errorf("%w: padding %q", ErrInvalidConfiguration, s)
}

// MustParsePadding is ParsePadding for literals known to be valid.
func MustParsePadding(s string) Padding {
	p, err := ParsePadding(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String formats the padding back to the shortest CSS shorthand.
func (p Padding) String() string {
	px := func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64) + "px"
	}
	switch {
	case p.Top == p.Bottom && p.Right == p.Left && p.Top == p.Right:
		return px(p.Top)
	case p.Top == p.Bottom && p.Right == p.Left:
		return px(p.Top) + " " + px(p.Right)
	case p.Right == p.Left:
		return px(p.Top) + " " + px(p.Right) + " " + px(p.Bottom)
	}
	return px(p.Top) + " " + px(p.Right) + " " + px(p.Bottom) + " " + px(p.Left)
}

// UnmarshalYAML takes CSS shorthand ("0px 10px 5px 0px") or a {top, right, bottom, left} mapping.
func (p *Padding) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		parsed, err := ParsePadding(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*p = parsed
		return nil
	case yaml.MappingNode:
		var m struct {
			Top    float64 `yaml:"top"`
			Right  float64 `yaml:"right"`
			Bottom float64 `yaml:"bottom"`
			Left   float64 `yaml:"left"`
		}
		if err := node.Decode(&m); err != nil {
			return err
		}
		*p = Padding{m.Top, m.Right, m.Bottom, m.Left}
		if p.Top < 0 || p.Right < 0 || p.Bottom < 0 || p.Left < 0 {
			return fmt.Errorf("line %d: %w: negative padding", node.Line, ErrInvalidConfiguration)
		}
		return nil
	}
	return fmt.Errorf("line %d: %w: padding must be a string or a mapping", node.Line, ErrInvalidConfiguration)
}

func (p Padding) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

// DefaultConfig returns the stock catalogs and tuning.
func DefaultConfig() Config {
	return Config{
		Width:    DefaultWidth,
		Height:   DefaultHeight,
		Images:   append([]ImageDescriptor(nil), defaultImages...),
		Messages: append([]string(nil), defaultMessages...),
		Boxes:    append([]BoxDescriptor(nil), defaultBoxes...),
		Spawn:    DefaultSpawnOptions(),
		Physics:  DefaultOptions(),
	}
}

// LoadConfig reads a YAML file over DefaultConfig. Lists given in the file replace the
// default catalogs; scalars left out keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidConfiguration, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Catalog is the part of a Config a Spawner draws from.
func (c Config) Catalog() Catalog {
	return Catalog{Images: c.Images, Messages: c.Messages, Boxes: c.Boxes}
}

func (c Config) Validate() error {
	if err := checkViewport(c.Width, c.Height); err != nil {
		return err
	}
	if err := c.Catalog().Validate(); err != nil {
		return err
	}
	if err := c.Spawn.Validate(); err != nil {
		return err
	}
	return c.Physics.Validate()
}

var defaultImages = []ImageDescriptor{
	{URL: "/resources/r1.png"},
	{URL: "/resources/r2.png"},
	{URL: "/resources/r3.png"},
	{URL: "/resources/r4.png"},
	{URL: "/resources/r5.png"},
	{URL: "/resources/r6.png"},
}

var defaultBoxes = []BoxDescriptor{
	{File: "/cajas/caja 1.png", Padding: MustParsePadding("0px 0px 0px 0px")},
	{File: "/cajas/caja 2.png", Padding: MustParsePadding("10px")},
	{File: "/cajas/caja 3.png", Padding: MustParsePadding("10px")},
	{File: "/cajas/caja 4.png", Padding: MustParsePadding("0px 10px 0px 0px")},
	{File: "/cajas/caja 5.png", Padding: MustParsePadding("0px 10px 5px 0px")},
	{File: "/cajas/caja 6.png", Padding: MustParsePadding("10px 0px 0px 0px")},
}

var defaultMessages = []string{
	"Tu sonrisa", "Tu ojitos lindos", "Tu risa contagiosa", "Tu inteligencia", "Tu bondad",
	"Tu apoyo incondicional", "Cómo me cuidas", "Tu determinación",
	"Tu creatividad", "Tu forma de ver la vida", "Tu valentía", "Tu sinceridad", "Tu ternura",
	"Tu pasión por lo que haces", "Tu estilo único", "Tu voz", "Tus abrazos", "Tus besos",
	"Cómo me escuchas", "Tu empatía", "Tu generosidad", "Tu fuerza", "Tu humildad",
	"Tu optimismo", "Tu elegancia", "Tu aroma", "Tu suavidad", "Tu compañía",
	"Nuestras conversaciones", "Tu curiosidad", "Tu madurez", "Tu alegría",
	"Cómo iluminas cada lugar", "Tu confianza en mí", "Tu lealtad", "Tu lado divertido", "Tu lado serio",
	"Tu ambición", "Tu resiliencia", "Tu espíritu aventurero", "Tu calma", "Tu energía",
	"Cómo me haces sentir especial", "Tu intuición", "Tu sabiduría", "Tu honestidad", "Tu carisma",
	"Tu dedicación", "Tu disciplina", "Tu amor por los niños", "Tu educación",
	"Tu puntualidad", "Tu organización", "Tu espontaneidad", "Tu claridad",
	"Tu forma de vestir", "Tu cabello", "Tus manos", "Tu piel", "Tu perfil",
	"Tu forma de caminar", "Tu seguridad", "Tu vulnerabilidad", "Tu autenticidad", "Tu brillo propio",
	"Tu capacidad de perdonar", "Tu comprensión", "Tu paz", "Tu dulzura",
	"Tu firmeza", "Tu delicadeza", "Tu ingenio", "Tu memoria", "Tu atención al detalle",
	"Tu forma de soñar", "Tu fe en nosotros", "Tu compromiso", "Tu integridad",
	"Tu independencia", "Tu calidez", "Tu luz", "Tu magia", "Tu esencia",
	"Tu complicidad", "Tu amistad", "Tu amor", "Tu presencia", "Tu futuro conmigo",
	"Tu pasado que te hizo quien eres", "Tu presente a mi lado", "Todo lo que aprendo de ti", "Simplemente tú", "Que seas mi novia",
}
