package pile

import "math"

// SpaceHash is a uniform grid broad phase. Cells are folded into a fixed
// table, so far apart cells may share a bin; callers still check bounding boxes.
type SpaceHash struct {
	celldim  float64
	numCells int

	table  [][]int
	bodies []*Body

	// marks[j] == stamp when j was already reported for the current query
	marks []uint
	stamp uint
}

func NewSpaceHash(celldim float64, numCells int) *SpaceHash {
	return &SpaceHash{
		celldim:  celldim,
		numCells: numCells,
		table:    make([][]int, numCells),
	}
}

func hashFunc(x, y, n uint64) uint64 {
	return (x*1640531513 ^ y*2654435789) % n
}

// cellRange returns the cell coordinates covered by bb and how many cells that is.
func (hash *SpaceHash) cellRange(bb BB) (l, t, r, b int, cells float64) {
	dim := hash.celldim
	fl, ft := math.Floor(bb.L/dim), math.Floor(bb.T/dim)
	fr, fb := math.Floor(bb.R/dim), math.Floor(bb.B/dim)
	cells = (fr - fl + 1) * (fb - ft + 1)
	if !isFinite(cells) || cells >= float64(hash.numCells) {
		return 0, 0, 0, 0, INFINITY
	}
	return int(fl), int(ft), int(fr), int(fb), cells
}

// eachBin calls f for the table bins the box touches.
func (hash *SpaceHash) eachBin(bb BB, f func(idx int)) {
	l, t, r, b, cells := hash.cellRange(bb)
	if cells == INFINITY {
		// Covers the whole table anyway.
		for idx := 0; idx < hash.numCells; idx++ {
			f(idx)
		}
		return
	}

	n := uint64(hash.numCells)
	for i := l; i <= r; i++ {
		for j := t; j <= b; j++ {
			f(int(hashFunc(uint64(int64(i)), uint64(int64(j)), n)))
		}
	}
}

// Rebuild clears the table and inserts bodies in order.
func (hash *SpaceHash) Rebuild(bodies []*Body) {
	for i := range hash.table {
		hash.table[i] = hash.table[i][:0]
	}
	hash.bodies = bodies
	if cap(hash.marks) < len(bodies) {
		hash.marks = make([]uint, len(bodies))
	}
	hash.marks = hash.marks[:len(bodies)]
	for i := range hash.marks {
		hash.marks[i] = 0
	}
	hash.stamp = 0

	for i, body := range bodies {
		idx := i
		hash.eachBin(body.bb, func(bin int) {
			cell := hash.table[bin]
			// a body overlapping several cells that fold into one bin is stored once
			if len(cell) > 0 && cell[len(cell)-1] == idx {
				return
			}
			hash.table[bin] = append(cell, idx)
		})
	}
}

// Query reports, once each, the indexes of bodies whose boxes overlap bb.
func (hash *SpaceHash) Query(bb BB, f func(index int)) {
	hash.stamp++
	stamp := hash.stamp
	hash.eachBin(bb, func(bin int) {
		for _, j := range hash.table[bin] {
			if hash.marks[j] == stamp {
				continue
			}
			hash.marks[j] = stamp
			if bb.Intersects(hash.bodies[j].bb) {
				f(j)
			}
		}
	})
}

// Pairs reports each overlapping pair once, lower index first, in index order.
func (hash *SpaceHash) Pairs(f func(a, b *Body)) {
	for i, body := range hash.bodies {
		hash.Query(body.bb, func(j int) {
			if j > i {
				f(body, hash.bodies[j])
			}
		})
	}
}
