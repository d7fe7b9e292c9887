package tubemesh

import (
	"fmt"
)

// connectionCounts derives from the elements around c of the tubes at a
// junction, in cyclic order, the number of elements k[i] connecting tube i
// directly with tube i+1. Every k[i] must be at least 1, otherwise the top
// and bottom of the junction would coincide. For 4 tubes, opposite tubes 0 and 2 may have more
// elements than 1 and 3; the difference connects 0 and 2 across the top
// and bottom of the junction, with through elements each.
func connectionCounts(c []int) (k []int, through int, err error) {
	n := len(c)
	k = make([]int, n)
	switch n {
	case 3:
		for i := 0; i < 3; i++ {
			sum := c[i] + c[(i+1)%3] - c[(i+2)%3]
			if sum <= 0 || sum%2 != 0 {
				return nil, 0, fmt.Errorf("elements around %d+%d-%d must be even and positive",
					c[i], c[(i+1)%3], c[(i+2)%3])
			}
			k[i] = sum / 2
		}
		return k, 0, nil
	case 4:
		diff := c[0] + c[2] - c[1] - c[3]
		if diff < 0 || diff%4 != 0 {
			return nil, 0, fmt.Errorf("elements around of opposite tubes differ by %d, need a multiple of 4", diff)
		}
		through = diff / 4
		f := []int{c[0] - 2*through, c[1], c[2] - 2*through, c[3]}
		best, bestMin := -1, -1
		for t := 0; t <= min(f[0], f[1]); t++ {
			m := min(t, f[1]-t, f[2]-f[1]+t, f[0]-t)
			if m > bestMin {
				best, bestMin = t, m
			}
		}
		if bestMin < 1 {
			return nil, 0, fmt.Errorf("no connection of elements around %v", c)
		}
		k[0], k[1], k[2], k[3] = best, f[1]-best, f[2]-f[1]+best, f[0]-best
		return k, through, nil
	}
	return nil, 0, fmt.Errorf("cannot connect %d tubes", n)
}

// rimRef is a point of a tube's end ring: sequence position and position
// along the ring in rim traversal order.
type rimRef struct {
	pos, p int
}

// rimTopology maps ring points of the tubes at a junction to rim points.
//
// Every ring is traversed from the top of the junction: across the top to
// the next tube (4-way through tubes only), down along the next tube, across
// the bottom, and up along the previous tube. Points on the boundary shared
// by two rings are merged; at top and bottom 3 or 4 rings share a point.
type rimTopology struct {
	counts       []int      // elements around per sequence position
	index        [][]int    // [pos][p] -> rim index
	contributors [][]rimRef // rim index -> ring points, in order of discovery
}

// canonicalRim builds the rim topology for elements around c, connection
// counts k and through elements (4-way) in sequence order.
func canonicalRim(c, k []int, through int) *rimTopology {
	n := len(c)
	base := make([]int, n+1)
	for i := 0; i < n; i++ {
		base[i+1] = base[i] + c[i]
	}
	uf := newUnionFind(base[n])
	id := func(pos, p int) int {
		return base[pos] + ((p%c[pos])+c[pos])%c[pos]
	}
	h := func(pos int) int {
		if n == 4 && pos%2 == 0 {
			return through
		}
		return 0
	}
	for i := 0; i < n; i++ {
		next := (i + 1) % n
		for m := 0; m <= k[i]; m++ {
			uf.union(id(i, h(i)+m), id(next, c[next]-m))
		}
	}
	if n == 4 {
		for m := 0; m <= through; m++ {
			uf.union(id(0, m), id(2, through-m))
			uf.union(id(0, through+k[0]+m), id(2, 2*through+k[2]-m))
		}
	}
	rt := &rimTopology{counts: c, index: make([][]int, n)}
	rimIndex := make(map[int]int)
	for i := 0; i < n; i++ {
		rt.index[i] = make([]int, c[i])
		for p := 0; p < c[i]; p++ {
			root := uf.find(id(i, p))
			r, ok := rimIndex[root]
			if !ok {
				r = len(rt.contributors)
				rimIndex[root] = r
				rt.contributors = append(rt.contributors, nil)
			}
			for _, ref := range rt.contributors[r] {
				if ref.pos == i {
					panic(fmt.Sprintf("tubemesh: rim point %d merges points %d and %d of one ring", r, ref.p, p))
				}
			}
			rt.index[i][p] = r
			rt.contributors[r] = append(rt.contributors[r], rimRef{pos: i, p: p})
		}
	}
	return rt
}

type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(i int) int {
	for uf.parent[i] != i {
		uf.parent[i] = uf.parent[uf.parent[i]]
		i = uf.parent[i]
	}
	return i
}

// union merges the sets of a and b, keeping the smaller root.
func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra < rb {
		uf.parent[rb] = ra
	} else if rb < ra {
		uf.parent[ra] = rb
	}
}
