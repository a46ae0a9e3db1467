package pile

import (
	"fmt"
	"math"
	"sync/atomic"
)

const INFINITY = math.MaxFloat64

// DefaultDensity is the mass per square pixel of dynamic bodies.
const DefaultDensity = 0.001

// ID identifies a body for its whole lifetime.
type ID uint64

type Material struct {
	Restitution float64 `yaml:"restitution"`
	Friction    float64 `yaml:"friction"`
}

// BodyDef holds everything needed to build a rectangle body.
type BodyDef struct {
	// Position is the centroid.
	Position Vector
	Width    float64
	Height   float64
	Angle    float64
	// Radius rounds the corners when drawn. Collision uses the full rectangle.
	Radius   float64
	Material Material
	Kind     Kind
}

type Body struct {
	id ID

	width, height float64
	radius        float64
	static        bool

	// mass and it's inverse
	m     float64
	m_inv float64

	// moment of inertia and it's inverse
	i     float64
	i_inv float64

	// position, velocity
	p Vector
	v Vector

	// Angle, angular velocity (radians)
	a float64
	w float64

	// cos, sin of a
	rot Vector
	bb  BB

	// restitution, friction
	e, u float64

	kind Kind

	sleeping         bool
	sleepingIdleTime float64
}

func (b Body) String() string {
	return fmt.Sprint("Body ", b.id)
}

var bodyCur atomic.Uint64

// NewBody builds a dynamic rectangle at rest with a fresh id.
func NewBody(def BodyDef) (*Body, error) {
	body, err := newBody(def)
	if err != nil {
		return nil, err
	}
	body.SetMass(def.Width * def.Height * DefaultDensity)
	return body, nil
}

// NewStaticBody builds an immovable rectangle, used for the floor and walls.
func NewStaticBody(def BodyDef) (*Body, error) {
	body, err := newBody(def)
	if err != nil {
		return nil, err
	}
	body.static = true
	body.m = INFINITY
	body.i = INFINITY
	body.m_inv = 0
	body.i_inv = 0
	body.sleepingIdleTime = INFINITY
	return body, nil
}

func newBody(def BodyDef) (*Body, error) {
	if err := checkGeometry(def.Width, def.Height); err != nil {
		return nil, err
	}
	if !def.Position.IsFinite() || !isFinite(def.Angle) {
		return nil, fmt.Errorf("%w: position %v angle %v", ErrInvalidGeometry, def.Position, def.Angle)
	}

	radius := def.Radius
	if !isFinite(radius) || radius < 0 {
		radius = 0
	}
	radius = math.Min(radius, math.Min(def.Width, def.Height)/2)

	body := &Body{
		id:     ID(bodyCur.Add(1)),
		width:  def.Width,
		height: def.Height,
		radius: radius,
		p:      def.Position,
		a:      def.Angle,
		e:      Clamp01(def.Material.Restitution),
		u:      Clamp01(def.Material.Friction),
		kind:   def.Kind,
	}
	body.updateTransform()
	return body, nil
}

func checkGeometry(width, height float64) error {
	if !isFinite(width) || !isFinite(height) || width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %vx%v", ErrInvalidGeometry, width, height)
	}
	return nil
}

// MomentForBox is the moment of inertia of a solid rectangle about its centroid.
func MomentForBox(m, width, height float64) float64 {
	return m * (width*width + height*height) / 12.0
}

func (body *Body) ID() ID {
	return body.id
}

func (body *Body) SetMass(mass float64) {
	body.m = mass
	body.m_inv = 1 / mass
	body.i = MomentForBox(mass, body.width, body.height)
	body.i_inv = 1 / body.i
}

func (body *Body) Mass() float64 {
	return body.m
}

func (body *Body) Moment() float64 {
	return body.i
}

func (body *Body) IsStatic() bool {
	return body.static
}

func (body *Body) Size() (width, height float64) {
	return body.width, body.height
}

func (body *Body) Radius() float64 {
	return body.radius
}

func (body *Body) Material() Material {
	return Material{Restitution: body.e, Friction: body.u}
}

func (body *Body) Kind() Kind {
	return body.kind
}

func (body *Body) Position() Vector {
	return body.p
}

func (body *Body) SetPosition(position Vector) {
	body.Activate()
	body.p = position
	body.updateTransform()
}

func (body *Body) Angle() float64 {
	return body.a
}

func (body *Body) SetAngle(angle float64) {
	body.Activate()
	body.a = angle
	body.updateTransform()
}

func (body *Body) BB() BB {
	return body.bb
}

func (body *Body) Velocity() Vector {
	return body.v
}

func (body *Body) SetVelocity(v Vector) {
	if body.static {
		return
	}
	body.Activate()
	body.v = v
}

func (body *Body) AngularVelocity() float64 {
	return body.w
}

func (body *Body) SetAngularVelocity(angularVelocity float64) {
	if body.static {
		return
	}
	body.Activate()
	body.w = angularVelocity
}

func (body *Body) IsSleeping() bool {
	return body.sleeping
}

// Activate wakes a sleeping dynamic body and resets its idle timer.
func (body *Body) Activate() {
	if body == nil || body.static {
		return
	}
	body.sleeping = false
	body.sleepingIdleTime = 0
}

func (body *Body) sleep() {
	body.sleeping = true
	body.v = Vector{}
	body.w = 0
}

// moves reports whether the body takes part in integration and gets pushed by contacts.
func (body *Body) moves() bool {
	return !body.static && !body.sleeping
}

// KineticEnergy is ½mv² + ½Iω². Static and sleeping bodies have none.
func (body *Body) KineticEnergy() float64 {
	if !body.moves() {
		return 0
	}
	return 0.5 * (body.m*body.v.LengthSq() + body.i*body.w*body.w)
}

func (body *Body) updateTransform() {
	body.rot = ForAngle(body.a)
	body.bb = NewBBForBox(body.p, body.width/2, body.height/2, body.rot)
}

func (body *Body) WorldToLocal(point Vector) Vector {
	return point.Sub(body.p).Unrotate(body.rot)
}

func (body *Body) LocalToWorld(point Vector) Vector {
	return body.p.Add(point.Rotate(body.rot))
}

func (body *Body) ApplyImpulseAtWorldPoint(impulse, point Vector) {
	if body.static {
		return
	}
	body.Activate()
	apply_impulse(body, impulse, point.Sub(body.p))
}

// integrate velocity under gravity, then cap the speed.
func (body *Body) updateVelocity(gravity Vector, damping, maxSpeed, dt float64) {
	body.v = body.v.Mult(damping).Add(gravity.Mult(dt))
	body.w = body.w * damping
	if maxSpeed > 0 {
		body.v = body.v.Clamp(maxSpeed)
	}
}

func (body *Body) updatePosition(dt float64) {
	body.p = body.p.Add(body.v.Mult(dt))
	body.a = body.a + body.w*dt
	body.updateTransform()
}
