package pile

// Kind describes how a body is drawn. The stepper carries it around and never looks inside.
type Kind interface {
	// Size is the drawn size in pixels.
	Size() (width, height float64)
	kind()
}

type ImageKind struct {
	URL           string
	Width, Height float64
}

type TextKind struct {
	Text          string
	BoxURL        string
	Padding       Padding
	Width, Height float64
}

// LabelKind names a static boundary. It is never drawn.
type LabelKind struct {
	Label string
}

func (k ImageKind) Size() (float64, float64) { return k.Width, k.Height }
func (k TextKind) Size() (float64, float64)  { return k.Width, k.Height }
func (k LabelKind) Size() (float64, float64) { return 0, 0 }

func (ImageKind) kind() {}
func (TextKind) kind()  {}
func (LabelKind) kind() {}
