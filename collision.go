package pile

import "math"

const MAX_CONTACTS_PER_ARBITER = 2

// Reference face selection prefers A unless B separates by more than this many pixels.
// Keeps the chosen face stable from one step to the next.
const referenceFaceTolerance = 0.05

type Contact struct {
	// offsets of the contact point from each body's centroid
	r1, r2 Vector

	// separation along the normal, negative while overlapping
	dist float64

	nMass, tMass float64
	bounce       float64

	jnAcc, jtAcc float64

	hash uint32
}

// Depth is the penetration at this contact, zero when the surfaces only touch.
func (con *Contact) Depth() float64 {
	return math.Max(-con.dist, 0)
}

type CollisionInfo struct {
	a, b *Body
	// normal from a to b
	n     Vector
	count int
	arr   [MAX_CONTACTS_PER_ARBITER]Contact
}

func (info *CollisionInfo) Normal() Vector {
	return info.n
}

func (info *CollisionInfo) Count() int {
	return info.count
}

// Depth is the deepest penetration among the contacts.
func (info *CollisionInfo) Depth() float64 {
	var depth float64
	for i := 0; i < info.count; i++ {
		depth = math.Max(depth, info.arr[i].Depth())
	}
	return depth
}

func (info *CollisionInfo) PushContact(p Vector, dist float64, hash uint32) {
	if info.count >= MAX_CONTACTS_PER_ARBITER {
		return
	}
	con := &info.arr[info.count]
	*con = Contact{
		r1:   p.Sub(info.a.p),
		r2:   p.Sub(info.b.p),
		dist: dist,
		hash: hash,
	}
	info.count++
}

// box is a body's rectangle in world space. Vertices wind so that
// face i runs from vert(i) to vert(i+1) and its normal points outward.
type box struct {
	c      Vector
	rot    Vector
	hw, hh float64
}

var boxCorners = [4]Vector{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

var boxNormals = [4]Vector{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

func boxForBody(body *Body) box {
	return box{c: body.p, rot: body.rot, hw: body.width / 2, hh: body.height / 2}
}

func (b *box) vert(i int) Vector {
	k := boxCorners[i&3]
	return b.c.Add(Vector{k.X * b.hw, k.Y * b.hh}.Rotate(b.rot))
}

func (b *box) normal(i int) Vector {
	return boxNormals[i&3].Rotate(b.rot)
}

// support returns the vertex of b furthest along n.
func (b *box) support(n Vector) Vector {
	best := b.vert(0)
	max := best.Dot(n)
	for i := 1; i < 4; i++ {
		v := b.vert(i)
		if d := v.Dot(n); d > max {
			max = d
			best = v
		}
	}
	return best
}

// leastPenetration finds the face of a whose plane b sinks into the least.
// A positive separation means the face is a separating axis.
func leastPenetration(a, b *box) (index int, separation float64) {
	separation = -INFINITY
	for i := 0; i < 4; i++ {
		n := a.normal(i)
		s := n.Dot(b.support(n.Neg()).Sub(a.vert(i)))
		if s > separation {
			separation = s
			index = i
		}
	}
	return index, separation
}

// incidentFace is the face of inc most anti-parallel to n.
func incidentFace(inc *box, n Vector) int {
	index := 0
	min := INFINITY
	for i := 0; i < 4; i++ {
		if d := n.Dot(inc.normal(i)); d < min {
			min = d
			index = i
		}
	}
	return index
}

type clipVertex struct {
	p  Vector
	id uint32
}

// clipSegment keeps the part of in that lies behind the plane n·p = offset.
func clipSegment(in [2]clipVertex, n Vector, offset float64, clipId uint32) (out [2]clipVertex, count int) {
	d0 := n.Dot(in[0].p) - offset
	d1 := n.Dot(in[1].p) - offset

	if d0 <= 0 {
		out[count] = in[0]
		count++
	}
	if d1 <= 0 {
		out[count] = in[1]
		count++
	}

	if d0*d1 < 0 && count < 2 {
		alpha := d0 / (d0 - d1)
		out[count] = clipVertex{in[0].p.Lerp(in[1].p, alpha), in[0].id | clipId}
		count++
	}
	return out, count
}

// Collide runs the separating axis test on two oriented rectangles and
// fills info with up to two contact points. It returns false when they are apart.
func Collide(a, b *Body, info *CollisionInfo) bool {
	info.a = a
	info.b = b
	info.count = 0
	info.n = Vector{}

	if a.static && b.static {
		return false
	}
	if !a.bb.Intersects(b.bb) {
		return false
	}

	boxA := boxForBody(a)
	boxB := boxForBody(b)

	faceA, separationA := leastPenetration(&boxA, &boxB)
	if separationA > 0 {
		return false
	}
	faceB, separationB := leastPenetration(&boxB, &boxA)
	if separationB > 0 {
		return false
	}

	ref, inc := &boxA, &boxB
	refFace := faceA
	flip := false
	if separationB > separationA+referenceFaceTolerance {
		ref, inc = &boxB, &boxA
		refFace = faceB
		flip = true
	}

	refNormal := ref.normal(refFace)
	v1 := ref.vert(refFace)
	v2 := ref.vert(refFace + 1)

	incFace := incidentFace(inc, refNormal)
	incident := [2]clipVertex{
		{inc.vert(incFace), uint32(incFace)},
		{inc.vert(incFace + 1), uint32((incFace + 1) & 3)},
	}

	// Clip the incident edge against the side planes of the reference face.
	tangent := v2.Sub(v1).Normalize()
	clipped, count := clipSegment(incident, tangent.Neg(), -tangent.Dot(v1), 1<<4)
	if count < 2 {
		return false
	}
	clipped, count = clipSegment(clipped, tangent, tangent.Dot(v2), 1<<5)
	if count < 2 {
		return false
	}

	if flip {
		info.n = refNormal.Neg()
	} else {
		info.n = refNormal
	}

	front := refNormal.Dot(v1)
	for i := 0; i < count; i++ {
		p := clipped[i].p
		separation := refNormal.Dot(p) - front
		if separation > 0 {
			continue
		}
		// midway between the incident point and the reference face
		mid := p.Sub(refNormal.Mult(separation * 0.5))

		hash := clipped[i].id | uint32(refFace)<<8
		if flip {
			hash |= 1 << 12
		}
		info.PushContact(mid, separation, hash)
	}

	return info.count > 0
}
