package pile

import (
	"fmt"
	"math"
)

// Labels carried by the static boundaries.
const (
	FloorLabel     = "Floor"
	LeftWallLabel  = "LeftWall"
	RightWallLabel = "RightWall"
)

// wakeMargin is how close two boxes must be to count as touching when waking a resting pile.
const wakeMargin = 2.0

// World holds the static boundaries and every dynamic body, and advances them in time.
// A World is not safe for concurrent use; Handle serialises access to it.
type World struct {
	opts          Options
	width, height float64

	staticBodies  []*Body
	dynamicBodies []*Body
	index         map[ID]*Body

	hash *SpaceHash

	cachedArbiters map[pairKey]*Arbiter
	arbiters       []*Arbiter
	pooledArbiters []*Arbiter

	stamp   uint
	curr_dt float64
	steps   uint64

	// scratch buffers reused every step
	info  CollisionInfo
	pairs []bodyPair
	stack []*Body
}

type bodyPair struct {
	a, b *Body
}

// NewWorld builds a world for a viewport of width × height pixels with its floor and walls in place.
func NewWorld(width, height float64, opts Options) (*World, error) {
	if err := checkViewport(width, height); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	world := &World{
		opts:           opts,
		index:          map[ID]*Body{},
		hash:           NewSpaceHash(opts.CellSize, opts.HashCells),
		cachedArbiters: map[pairKey]*Arbiter{},
	}
	if err := world.buildBoundaries(width, height); err != nil {
		return nil, err
	}
	return world, nil
}

func checkViewport(width, height float64) error {
	if !isFinite(width) || !isFinite(height) || width <= 0 || height <= 0 {
		return fmt.Errorf("%w: viewport %vx%v", ErrInvalidConfiguration, width, height)
	}
	return nil
}

func (world *World) buildBoundaries(width, height float64) error {
	floorThickness := world.opts.FloorThickness
	wallThickness := world.opts.WallThickness
	material := world.opts.Boundary

	defs := []BodyDef{{
		Position: Vector{width / 2, height + floorThickness/2},
		Width:    width + 2*wallThickness,
		Height:   floorThickness,
		Material: material,
		Kind:     LabelKind{Label: FloorLabel},
	}, {
		Position: Vector{-wallThickness / 2, height / 2},
		Width:    wallThickness,
		Height:   height * 4,
		Material: material,
		Kind:     LabelKind{Label: LeftWallLabel},
	}, {
		Position: Vector{width + wallThickness/2, height / 2},
		Width:    wallThickness,
		Height:   height * 4,
		Material: material,
		Kind:     LabelKind{Label: RightWallLabel},
	}}

	statics := make([]*Body, 0, len(defs))
	for _, def := range defs {
		body, err := NewStaticBody(def)
		if err != nil {
			return err
		}
		statics = append(statics, body)
	}

	if len(world.staticBodies) > len(defs) {
		// statics added by the caller survive a resize
		statics = append(statics, world.staticBodies[len(defs):]...)
	}
	for _, body := range world.staticBodies[:min(len(defs), len(world.staticBodies))] {
		delete(world.index, body.id)
	}
	for _, body := range statics {
		world.index[body.id] = body
	}
	world.staticBodies = statics
	world.width = width
	world.height = height
	return nil
}

func (world *World) Options() Options {
	return world.opts
}

// Size is the viewport the boundaries were built for.
func (world *World) Size() (width, height float64) {
	return world.width, world.height
}

// Bounds is the open box between the boundaries: the inner faces of both walls,
// the top of the walls and the top of the floor.
func (world *World) Bounds() BB {
	floor, left, right := world.staticBodies[0], world.staticBodies[1], world.staticBodies[2]
	return BB{L: left.bb.R, T: left.bb.T, R: right.bb.L, B: floor.bb.T}
}

// Resize rebuilds the boundaries for a new viewport. Dynamic bodies left outside the new
// walls or below the new floor are moved back inside, and every body is woken.
func (world *World) Resize(width, height float64) error {
	if err := checkViewport(width, height); err != nil {
		return err
	}
	if err := world.buildBoundaries(width, height); err != nil {
		return err
	}
	bounds := world.Bounds()
	for _, body := range world.dynamicBodies {
		keepInside(body, bounds)
	}
	world.resetArbiters()
	world.WakeAll()
	return nil
}

// keepInside moves body the shortest way that fits its box between the walls and above
// the floor. A body wider than the gap is centred. The top is open.
func keepInside(body *Body, bounds BB) {
	bb := body.bb
	var d Vector
	switch {
	case bb.Width() > bounds.Width():
		d.X = bounds.Center().X - bb.Center().X
	case bb.L < bounds.L:
		d.X = bounds.L - bb.L
	case bb.R > bounds.R:
		d.X = bounds.R - bb.R
	}
	if bb.B > bounds.B {
		d.Y = bounds.B - bb.B
	}
	if d == (Vector{}) {
		return
	}
	body.p = body.p.Add(d)
	body.updateTransform()
}

// Steps counts every call to Step with a usable dt, whether or not the world held any bodies.
func (world *World) Steps() uint64 {
	return world.steps
}

// Add inserts a body. Bodies step in the order they were added.
func (world *World) Add(body *Body) error {
	if body == nil {
		return fmt.Errorf("%w: nil body", ErrInvalidGeometry)
	}
	if _, ok := world.index[body.id]; ok {
		return fmt.Errorf("%w: body %d already added", ErrInvalidConfiguration, body.id)
	}

	world.index[body.id] = body
	if body.static {
		world.staticBodies = append(world.staticBodies, body)
	} else {
		world.dynamicBodies = append(world.dynamicBodies, body)
	}
	return nil
}

// Remove drops a dynamic body and wakes the rest, since the pile may now have a hole in it.
// Static bodies cannot be removed.
func (world *World) Remove(id ID) bool {
	body, ok := world.index[id]
	if !ok || body.static {
		return false
	}

	delete(world.index, id)
	for i, b := range world.dynamicBodies {
		if b == body {
			world.dynamicBodies = append(world.dynamicBodies[:i], world.dynamicBodies[i+1:]...)
			break
		}
	}

	for k, arb := range world.cachedArbiters {
		if arb.body_a == body || arb.body_b == body {
			delete(world.cachedArbiters, k)
			world.pooledArbiters = append(world.pooledArbiters, arb)
		}
	}
	world.arbiters = world.arbiters[:0]

	world.WakeAll()
	return true
}

// Clear removes every dynamic body, keeping the boundaries.
func (world *World) Clear() {
	for _, body := range world.dynamicBodies {
		delete(world.index, body.id)
	}
	for i := range world.dynamicBodies {
		world.dynamicBodies[i] = nil
	}
	world.dynamicBodies = world.dynamicBodies[:0]
	world.resetArbiters()
}

func (world *World) resetArbiters() {
	for k, arb := range world.cachedArbiters {
		delete(world.cachedArbiters, k)
		world.pooledArbiters = append(world.pooledArbiters, arb)
	}
	world.arbiters = world.arbiters[:0]
}

func (world *World) Body(id ID) (*Body, bool) {
	body, ok := world.index[id]
	return body, ok
}

// Len is the number of dynamic bodies.
func (world *World) Len() int {
	return len(world.dynamicBodies)
}

// AllBodies returns the static bodies followed by the dynamic ones.
func (world *World) AllBodies() []*Body {
	all := make([]*Body, 0, len(world.staticBodies)+len(world.dynamicBodies))
	all = append(all, world.staticBodies...)
	return append(all, world.dynamicBodies...)
}

func (world *World) DynamicBodies() []*Body {
	return append([]*Body(nil), world.dynamicBodies...)
}

func (world *World) StaticBodies() []*Body {
	return append([]*Body(nil), world.staticBodies...)
}

// Stats summarises the dynamic bodies and the contacts of the last step.
type Stats struct {
	Bodies, Sleeping, Contacts int
	KineticEnergy              float64
	Steps                      uint64
}

func (world *World) Stats() Stats {
	stats := Stats{
		Bodies:   len(world.dynamicBodies),
		Contacts: len(world.arbiters),
		Steps:    world.steps,
	}
	for _, body := range world.dynamicBodies {
		if body.sleeping {
			stats.Sleeping++
		}
		stats.KineticEnergy += body.KineticEnergy()
	}
	return stats
}

// EachArbiter calls f for every contact pair resolved during the last step.
func (world *World) EachArbiter(f func(arb *Arbiter)) {
	for _, arb := range world.arbiters {
		f(arb)
	}
}

// Wake wakes the body with the given id along with every sleeping body resting against it.
func (world *World) Wake(id ID) bool {
	body, ok := world.index[id]
	if !ok || body.static {
		return false
	}
	world.wake(body)
	return true
}

func (world *World) WakeAll() {
	for _, body := range world.dynamicBodies {
		body.Activate()
	}
}

// wake flood fills through sleeping bodies whose boxes touch, so a pile wakes as one.
func (world *World) wake(body *Body) {
	stack := append(world.stack[:0], body)
	body.Activate()

	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		bb := b.bb.Expand(wakeMargin)
		for _, other := range world.dynamicBodies {
			if other.sleeping && bb.Intersects(other.bb) {
				other.Activate()
				stack = append(stack, other)
			}
		}
	}
	world.stack = stack[:0]
}

// Step advances the world by dt seconds. Non-positive and non-finite steps are ignored.
func (world *World) Step(dt float64) {
	if !(dt > 0) || math.IsInf(dt, 1) {
		return
	}

	world.stamp++
	world.steps++

	prev_dt := world.curr_dt
	world.curr_dt = dt

	opts := &world.opts

	// Integrate velocities.
	damping := math.Pow(opts.Damping, dt)
	for _, body := range world.dynamicBodies {
		if body.moves() {
			body.updateVelocity(opts.Gravity, damping, opts.MaxSpeed, dt)
		}
	}

	world.arbiters = world.arbiters[:0]
	world.collide()

	// Clear out old cached arbiters.
	for k, arb := range world.cachedArbiters {
		if arb.stamp != world.stamp {
			delete(world.cachedArbiters, k)
			world.pooledArbiters = append(world.pooledArbiters, arb)
		}
	}

	arbiters := world.arbiters
	for _, arb := range arbiters {
		arb.PreStep(opts.BounceThreshold)
	}

	// Apply cached impulses
	var dt_coef float64
	if prev_dt != 0 {
		dt_coef = dt / prev_dt
	}
	for _, arb := range arbiters {
		arb.ApplyCachedImpulse(dt_coef)
	}

	// Run the impulse solver.
	for i := 0; i < opts.Iterations; i++ {
		for _, arb := range arbiters {
			arb.ApplyImpulse()
		}
	}

	// Integrate positions.
	for _, body := range world.dynamicBodies {
		if body.moves() {
			body.v = body.v.Clamp(opts.MaxSpeed)
			body.updatePosition(dt)
		}
	}

	world.correctPositions()
	world.processSleep(dt)
}

// eachPair calls f for every candidate pair with at least one moving body:
// dynamic pairs from the spatial hash, then moving bodies against the boundaries.
func (world *World) eachPair(f func(a, b *Body)) {
	world.hash.Rebuild(world.dynamicBodies)
	world.hash.Pairs(func(a, b *Body) {
		if a.moves() || b.moves() {
			f(a, b)
		}
	})

	for _, body := range world.dynamicBodies {
		if !body.moves() {
			continue
		}
		for _, static := range world.staticBodies {
			if static.bb.Intersects(body.bb) {
				f(static, body)
			}
		}
	}
}

func (world *World) collide() {
	info := &world.info
	world.eachPair(func(a, b *Body) {
		if !Collide(a, b, info) {
			return
		}

		// A fast hit wakes a sleeping pile; a slow one leans on it as if it were static.
		if a.sleeping && b.v.LengthSq() > world.opts.WakeSpeed*world.opts.WakeSpeed {
			world.wake(a)
		} else if b.sleeping && a.v.LengthSq() > world.opts.WakeSpeed*world.opts.WakeSpeed {
			world.wake(b)
		}

		key := keyFor(a, b)
		arb, ok := world.cachedArbiters[key]
		if !ok {
			arb = world.newArbiter()
			world.cachedArbiters[key] = arb
		}
		arb.Update(info, world.stamp)
		world.arbiters = append(world.arbiters, arb)
	})
}

func (world *World) newArbiter() *Arbiter {
	if n := len(world.pooledArbiters); n > 0 {
		arb := world.pooledArbiters[n-1]
		world.pooledArbiters = world.pooledArbiters[:n-1]
		*arb = Arbiter{}
		return arb
	}
	return &Arbiter{}
}

// correctPositions pushes overlapping pairs apart. Pairs are gathered once and
// re-tested on every pass, since a pass only nudges bodies by a few pixels.
func (world *World) correctPositions() {
	pairs := world.pairs[:0]
	world.eachPair(func(a, b *Body) {
		pairs = append(pairs, bodyPair{a, b})
	})
	world.pairs = pairs

	info := &world.info
	for i := 0; i < world.opts.PositionIterations; i++ {
		for _, pair := range pairs {
			if Collide(pair.a, pair.b, info) {
				world.separate(info)
			}
		}
	}

	for i := range world.pairs {
		world.pairs[i] = bodyPair{}
	}
}

func (world *World) separate(info *CollisionInfo) {
	depth := info.Depth() - world.opts.CollisionSlop
	if depth <= 0 {
		return
	}

	a, b := info.a, info.b
	ma, mb := inv_mass(a), inv_mass(b)
	sum := ma + mb
	if sum == 0 {
		return
	}

	push := math.Min(depth*world.opts.CorrectionFraction, world.opts.MaxCorrection)
	n := info.n
	if ma != 0 {
		a.p = a.p.Sub(n.Mult(push * ma / sum))
		a.updateTransform()
	}
	if mb != 0 {
		b.p = b.p.Add(n.Mult(push * mb / sum))
		b.updateTransform()
	}
}

func (world *World) processSleep(dt float64) {
	opts := &world.opts
	if math.IsInf(opts.SleepTime, 1) {
		return
	}

	speedSq := opts.SleepSpeed * opts.SleepSpeed
	for _, body := range world.dynamicBodies {
		if body.sleeping {
			continue
		}
		if body.v.LengthSq() > speedSq || math.Abs(body.w) > opts.SleepAngularSpeed {
			body.sleepingIdleTime = 0
			continue
		}
		body.sleepingIdleTime += dt
		if body.sleepingIdleTime >= opts.SleepTime {
			body.sleep()
		}
	}
}
