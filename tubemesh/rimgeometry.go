package tubemesh

import (
	"math"
	"sort"

	"github.com/npillmayer/tubenet"
	"github.com/npillmayer/tubenet/hermite"
)

// rimParams are the parameters of a tube's last 2 rows towards a junction
// at one point around: [0] the second-last row, [1] the end row.
type rimParams struct {
	X, D1, D2, D3 [2]tubenet.Vec3
}

// computeRimCoordinates sets position and derivatives of all rim points.
func (j *Junction) computeRimCoordinates() {
	first := j.slots[0].seg
	layers := len(first.rings[0])
	withD3 := first.wall > 0
	j.rimRings = make([]Ring, layers)
	for n3 := 0; n3 < layers; n3++ {
		ring := newRing(len(j.rim.contributors))
		for r, refs := range j.rim.contributors {
			params := make([]rimParams, len(refs))
			for i, ref := range refs {
				sl := j.slots[j.sequence[ref.pos]]
				q := j.aroundIndex(ref.pos, ref.p)
				rows := [2]int{1, 0}
				if sl.in {
					rows = [2]int{sl.seg.elementsAlong - 1, sl.seg.elementsAlong}
				}
				for k, n2 := range rows {
					rr := sl.seg.rings[n2][n3]
					params[i].X[k], params[i].D1[k] = rr.X[q], rr.D1[q]
					params[i].D2[k], params[i].D3[k] = rr.D2[q], rr.D3[q]
				}
			}
			ring.X[r], ring.D1[r], ring.D2[r], ring.D3[r] = sampleMidPoint(params, withD3)
		}
		j.rimRings[n3] = ring
	}
}

// sampleMidPoint returns the parameters of a rim point shared by 2 or more
// tubes, from the tubes' last 2 rows. Positions are blended from Hermite
// midpoints between every pair of tubes. Where 3 or more tubes meet,
// derivatives are spread evenly around the mean normal, biased towards
// each tube's own direction.
func sampleMidPoint(params []rimParams, withD3 bool) (x, d1, d2, d3 tubenet.Vec3) {
	count := len(params)
	if count < 2 {
		panic("tubemesh: rim point needs at least 2 tubes")
	}
	in := make([]bool, count)
	hx := make([]tubenet.Vec3, count)
	hd1 := make([]tubenet.Vec3, count)
	hd2 := make([]tubenet.Vec3, count)
	hd3 := make([]tubenet.Vec3, count)
	for s, p := range params {
		in[s] = p.X[1].Sub(p.X[0]).Dot(p.D2[1]) > 0
		d2a, d2b, f := p.D2[0], p.D2[1], 0.5
		if !in[s] {
			d2a, d2b, f = d2a.Neg(), d2b.Neg(), -0.5
		}
		hx[s] = hermite.Interpolate(p.X[0], d2a, p.X[1], d2b, 0.5)
		hd2[s] = hermite.InterpolateDerivative(p.X[0], d2a, p.X[1], d2b, 0.5)
		hd1[s] = p.D1[0].Add(p.D1[1]).Scaled(f)
		hd3[s] = p.D3[0].Add(p.D3[1]).Scaled(0.5)
	}
	// innermost row parameters, directed towards the junction
	fd2 := func(s int, towards bool) tubenet.Vec3 {
		d := params[s].D2[0]
		if in[s] != towards {
			return d.Neg()
		}
		return d
	}
	var mx, md1, md2, md3 []tubenet.Vec3
	for s1 := 0; s1 < count-1; s1++ {
		fd2s1 := fd2(s1, true)
		for s2 := s1 + 1; s2 < count; s2++ {
			side := hx[s2].Sub(hx[s1]).Normalized()
			side1 := hd1[s1].Scaled(hd1[s1].Normalized().Dot(side)).AddScaled(hd2[s1].Normalized().Dot(side), hd2[s1])
			side2 := hd1[s2].Scaled(hd1[s2].Normalized().Dot(side)).AddScaled(hd2[s2].Normalized().Dot(side), hd2[s2])
			sideScaling := hermite.DerivativeScaling(hx[s1], side1, hx[s2], side2)
			a := hd2[s1].AddScaled(sideScaling, side1)
			b := hd2[s2].Neg().AddScaled(sideScaling, side2)
			scaling := hermite.DerivativeScaling(hx[s1], a, hx[s2], b)
			a, b = a.Scaled(scaling), b.Scaled(scaling)
			cx := hermite.Interpolate(hx[s1], a, hx[s2], b, 0.5)
			cd2 := hermite.InterpolateDerivative(hx[s1], a, hx[s2], b, 0.5)
			fd2s2 := fd2(s2, false)
			// reduce up to 50% depending on how far out of line the tubes are
			ncd2 := cd2.Normalized()
			factor := (0.75 + 0.25*fd2s1.Normalized().Dot(ncd2)) * (0.75 + 0.25*fd2s2.Normalized().Dot(ncd2))
			smoothed := hermite.SmoothLine(
				[]tubenet.Vec3{params[s1].X[0], cx, params[s2].X[0]},
				[]tubenet.Vec3{fd2s1, cd2, fd2s2},
				hermite.LineSmoothing{
					FixAllDirections: true, FixStartDerivative: true, FixEndDerivative: true,
					Mode: hermite.HarmonicMean,
				})
			mx = append(mx, cx)
			md1 = append(md1, hd1[s1].Sub(hd1[s2]).Scaled(0.5))
			md2 = append(md2, smoothed[1].Scaled(factor))
			md3 = append(md3, hd3[s1].Add(hd3[s2]).Scaled(0.5))
		}
	}
	if !withD3 {
		md3 = nil
	}
	if count == 2 {
		x, d1, d2 = mx[0], md1[0], md2[0]
		if !in[0] {
			d1, d2 = d1.Neg(), d2.Neg()
		}
		if withD3 {
			d3 = md3[0]
		}
		return
	}
	x = tubenet.Mean(mx...)
	if withD3 {
		d3 = tubenet.Mean(md3...)
	}
	var ns12 tubenet.Vec3
	for m := range md1 {
		ns12 = ns12.Add(md1[m].Cross(md2[m]).Normalized())
	}
	// preferred derivatives from the centre out to each tube
	rd := make([]tubenet.Vec3, count)
	for s := range params {
		rd[s] = hermite.LagrangeHermiteDerivative(x, params[s].X[0], fd2(s, false), 0)
	}
	frame := tubenet.NewFrame(ns12, rd[0])
	ns12 = frame.Normal
	angles := make([]float64, count)
	for s := 1; s < count; s++ {
		angles[s] = tubenet.NormalizeAngle(frame.Angle(rd[s]))
	}
	sequence := make([]int, count)
	for s := range sequence {
		sequence[s] = s
	}
	rest := sequence[1:]
	sort.SliceStable(rest, func(a, b int) bool { return angles[rest[a]] < angles[rest[b]] })
	increment := 2 * math.Pi / float64(count)
	deltaAngle, magSum := 0.0, rd[0].Norm()
	for s := 1; s < count; s++ {
		deltaAngle += angles[sequence[s]] - float64(s)*increment
		magSum += rd[sequence[s]].Norm()
	}
	deltaAngle /= float64(count)
	d2Mean := magSum / float64(count)
	sd := make([]tubenet.Vec3, count)
	for s := 0; s < count; s++ {
		sd[sequence[s]] = frame.Dir(deltaAngle + float64(s)*increment).Scaled(d2Mean)
	}
	d1Sum := 0.0
	for _, d := range md1 {
		d1Sum += d.Norm()
	}
	dMean := tubenet.HarmonicMean(d1Sum/float64(len(md1)), d2Mean)
	var td [2]tubenet.Vec3
	if count == 4 {
		for i, s := range sequence[1:3] {
			td[i] = sd[s].WithMagnitude(dMean)
		}
	} else {
		si := bifurcationPair(in)
		inCount := 0
		for _, b := range in {
			if b {
				inCount++
			}
		}
		for i, s := range si {
			td[i] = rd[s].Add(sd[s]).WithMagnitude(dMean)
			if inCount == 2 {
				td[i] = td[i].Neg()
			}
		}
	}
	d1, d2 = td[0], td[1]
	if d1.Cross(d2).Dot(ns12) < 0 {
		d1, d2 = d2, d1
	}
	return
}

// bifurcationPair selects the 2 tubes whose directions become d1 and d2
// at a point shared by 3 tubes, keeping bifurcations symmetric.
func bifurcationPair(in []bool) [2]int {
	pattern := [3]bool{in[0], in[1], in[2]}
	switch pattern {
	case [3]bool{true, true, false}, [3]bool{false, false, true}:
		return [2]int{0, 1}
	case [3]bool{true, false, true}, [3]bool{false, true, false}:
		return [2]int{2, 0}
	}
	return [2]int{1, 2}
}
