package pile

import "math"

// Arbiter states
const (
	// Arbiter is active and its the first collision.
	ARBITER_STATE_FIRST_COLLISION = iota
	// Arbiter is active and its not the first collision.
	ARBITER_STATE_NORMAL
)

type pairKey struct {
	a, b ID
}

func keyFor(a, b *Body) pairKey {
	if a.id > b.id {
		a, b = b, a
	}
	return pairKey{a.id, b.id}
}

// Arbiter keeps the contact state of one touching pair from step to step so
// accumulated impulses can be reused.
type Arbiter struct {
	// combined restitution and friction
	e, u float64

	body_a, body_b *Body

	count    int
	contacts [MAX_CONTACTS_PER_ARBITER]Contact
	n        Vector

	stamp uint
	state int
}

func (arb *Arbiter) Bodies() (*Body, *Body) {
	return arb.body_a, arb.body_b
}

func (arb *Arbiter) Normal() Vector {
	return arb.n
}

func (arb *Arbiter) Count() int {
	return arb.count
}

func (arb *Arbiter) IsFirstContact() bool {
	return arb.state == ARBITER_STATE_FIRST_COLLISION
}

// Update copies fresh contacts from info, carrying impulses over for contacts with a matching feature hash.
func (arb *Arbiter) Update(info *CollisionInfo, stamp uint) {
	if arb.stamp+1 < stamp {
		// the pair separated for at least a step, nothing worth reusing
		arb.count = 0
		arb.state = ARBITER_STATE_FIRST_COLLISION
	} else if arb.count > 0 {
		arb.state = ARBITER_STATE_NORMAL
	}

	// the pair may come back swapped from the broad phase
	swapped := arb.body_a != nil && arb.body_a != info.a

	for i := 0; i < info.count; i++ {
		con := &info.arr[i]
		con.jnAcc = 0
		con.jtAcc = 0
		if swapped {
			continue
		}
		for j := 0; j < arb.count; j++ {
			old := arb.contacts[j]

			// This could trigger false positives, but is fairly unlikely nor serious if it does.
			if con.hash == old.hash {
				con.jnAcc = old.jnAcc
				con.jtAcc = old.jtAcc
			}
		}
	}

	arb.body_a = info.a
	arb.body_b = info.b
	arb.contacts = info.arr
	arb.count = info.count
	arb.n = info.n
	arb.stamp = stamp

	// Restitution and friction are the product of both materials.
	arb.e = info.a.e * info.b.e
	arb.u = info.a.u * info.b.u
}

func (arb *Arbiter) PreStep(bounceThreshold float64) {
	a := arb.body_a
	b := arb.body_b
	n := arb.n

	for i := 0; i < arb.count; i++ {
		con := &arb.contacts[i]

		// Calculate the mass normal and mass tangent.
		con.nMass = inverseOrZero(k_scalar(a, b, con.r1, con.r2, n))
		con.tMass = inverseOrZero(k_scalar(a, b, con.r1, con.r2, n.Perp()))

		// Calculate the target bounce velocity. Slow approaches settle instead of bouncing.
		vn := normal_relative_velocity(a, b, con.r1, con.r2, n)
		if -vn > bounceThreshold {
			con.bounce = vn * arb.e
		} else {
			con.bounce = 0
		}
	}
}

func (arb *Arbiter) ApplyCachedImpulse(dt_coef float64) {
	if arb.IsFirstContact() {
		return
	}

	for i := 0; i < arb.count; i++ {
		contact := arb.contacts[i]
		j := arb.n.Rotate(Vector{contact.jnAcc, contact.jtAcc})
		apply_impulses(arb.body_a, arb.body_b, contact.r1, contact.r2, j.Mult(dt_coef))
	}
}

func (arb *Arbiter) ApplyImpulse() {
	a := arb.body_a
	b := arb.body_b
	n := arb.n
	friction := arb.u

	for i := 0; i < arb.count; i++ {
		con := &arb.contacts[i]
		r1 := con.r1
		r2 := con.r2

		vr := relative_velocity(a, b, r1, r2)

		vrn := vr.Dot(n)
		vrt := vr.Dot(n.Perp())

		jn := -(con.bounce + vrn) * con.nMass
		jnOld := con.jnAcc
		con.jnAcc = math.Max(jnOld+jn, 0)

		jtMax := friction * con.jnAcc
		jt := -vrt * con.tMass
		jtOld := con.jtAcc
		con.jtAcc = Clamp(jtOld+jt, -jtMax, jtMax)

		apply_impulses(a, b, r1, r2, n.Rotate(Vector{con.jnAcc - jnOld, con.jtAcc - jtOld}))
	}
}

func inverseOrZero(k float64) float64 {
	if k == 0 {
		return 0
	}
	return 1 / k
}

// Sleeping bodies act as immovable until something wakes them.
func inv_mass(body *Body) float64 {
	if !body.moves() {
		return 0
	}
	return body.m_inv
}

func inv_moment(body *Body) float64 {
	if !body.moves() {
		return 0
	}
	return body.i_inv
}

func k_scalar_body(body *Body, r, n Vector) float64 {
	rcn := r.Cross(n)
	return inv_mass(body) + inv_moment(body)*rcn*rcn
}

func k_scalar(a, b *Body, r1, r2, n Vector) float64 {
	return k_scalar_body(a, r1, n) + k_scalar_body(b, r2, n)
}

func apply_impulses(a, b *Body, r1, r2, j Vector) {
	apply_impulse(a, j.Neg(), r1)
	apply_impulse(b, j, r2)
}

func apply_impulse(body *Body, j, r Vector) {
	if !body.moves() {
		return
	}
	body.v = body.v.Add(j.Mult(body.m_inv))
	body.w += body.i_inv * r.Cross(j)
}

func relative_velocity(a, b *Body, r1, r2 Vector) Vector {
	v1_sum := a.v.Add(r1.Perp().Mult(a.w))
	v2_sum := b.v.Add(r2.Perp().Mult(b.w))
	return v2_sum.Sub(v1_sum)
}

func normal_relative_velocity(a, b *Body, r1, r2, n Vector) float64 {
	return relative_velocity(a, b, r1, r2).Dot(n)
}
