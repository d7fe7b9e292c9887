package tubemesh

import (
	"github.com/npillmayer/tubenet"
)

// aroundIndex maps rim traversal position p of sequence position pos to
// the around index of the tube's ring.
func (j *Junction) aroundIndex(pos, p int) int {
	c := j.rim.counts[pos]
	return ((j.offsets[pos]+j.steps[pos]*p)%c + c) % c
}

// rimPosition is the inverse of aroundIndex.
func (j *Junction) rimPosition(pos, q int) int {
	c := j.rim.counts[pos]
	return ((j.steps[pos]*(q-j.offsets[pos]))%c + c) % c
}

// endRing returns the outer end ring of the tube at sequence position pos.
func (j *Junction) endRing(pos int) Ring {
	sl := j.slots[j.sequence[pos]]
	rings := sl.seg.rings[sl.seg.endRow(sl.end())]
	return rings[len(rings)-1]
}

// determineSteps sets for every tube the direction around its ring which
// follows the rim traversal: starting at the top of the junction towards
// the next tube in sequence.
func (j *Junction) determineSteps() {
	n := len(j.sequence)
	out := make([]tubenet.Vec3, n)
	for pos, s := range j.sequence {
		out[pos] = j.slots[s].outDir()
	}
	j.steps = make([]int, n)
	for pos := 0; pos < n; pos++ {
		o := out[pos]
		side := out[(pos+1)%n].Rejection(o).Sub(out[(pos+n-1)%n].Rejection(o))
		sense := o.Dot(j.normal.Cross(side))
		ring := j.endRing(pos)
		centre := tubenet.Mean(ring.X...)
		orientation := o.Dot(ring.X[0].Sub(centre).Cross(ring.X[1].Sub(centre)))
		j.steps[pos] = 1
		if (sense < 0) != (orientation < 0) {
			j.steps[pos] = -1
		}
	}
}

// align chooses the around offset of every tube minimizing the sum of
// distances between ring points merged into the same rim point. All
// combinations are searched if there are at most limit of them, otherwise
// offsets are improved one tube at a time until no change helps.
func (j *Junction) align(limit int) {
	n := len(j.sequence)
	j.determineSteps()
	rings := make([]Ring, n)
	for pos := range rings {
		rings[pos] = j.endRing(pos)
	}
	counts := j.rim.counts
	// cost[a][b][oa][ob] for tube pairs a < b
	cost := make([][][][]float64, n)
	for a := 0; a < n; a++ {
		cost[a] = make([][][]float64, n)
		for b := a + 1; b < n; b++ {
			cost[a][b] = make([][]float64, counts[a])
			for oa := range cost[a][b] {
				cost[a][b][oa] = make([]float64, counts[b])
			}
		}
	}
	for _, refs := range j.rim.contributors {
		for x := 0; x < len(refs); x++ {
			for y := x + 1; y < len(refs); y++ {
				ra, rb := refs[x], refs[y]
				if ra.pos > rb.pos {
					ra, rb = rb, ra
				}
				ca, cb := counts[ra.pos], counts[rb.pos]
				sa, sb := j.steps[ra.pos], j.steps[rb.pos]
				for oa := 0; oa < ca; oa++ {
					pa := rings[ra.pos].X[((oa+sa*ra.p)%ca+ca)%ca]
					for ob := 0; ob < cb; ob++ {
						pb := rings[rb.pos].X[((ob+sb*rb.p)%cb+cb)%cb]
						cost[ra.pos][rb.pos][oa][ob] += pa.Distance(pb)
					}
				}
			}
		}
	}
	total := func(offsets []int) float64 {
		sum := 0.0
		for a := 0; a < n; a++ {
			for b := a + 1; b < n; b++ {
				sum += cost[a][b][offsets[a]][offsets[b]]
			}
		}
		return sum
	}
	combinations := 1
	for _, c := range counts {
		combinations *= c
	}
	offsets := make([]int, n)
	best := append([]int(nil), offsets...)
	bestCost := total(offsets)
	if combinations <= limit {
		for {
			i := n - 1
			for i >= 0 {
				offsets[i]++
				if offsets[i] < counts[i] {
					break
				}
				offsets[i] = 0
				i--
			}
			if i < 0 {
				break
			}
			if c := total(offsets); c < bestCost {
				bestCost = c
				copy(best, offsets)
			}
		}
	} else {
		tracer().Infof("junction %d: %d offset combinations, aligning tube by tube", j.node.ID(), combinations)
		for changed := true; changed; {
			changed = false
			for pos := 0; pos < n; pos++ {
				for o := 0; o < counts[pos]; o++ {
					copy(offsets, best)
					offsets[pos] = o
					if c := total(offsets); c < bestCost-1e-12 {
						bestCost = c
						copy(best, offsets)
						changed = true
					}
				}
			}
		}
	}
	j.offsets = best
	tracer().Debugf("junction %d: offsets %v, steps %v, distance sum %g", j.node.ID(), best, j.steps, bestCost)
}
