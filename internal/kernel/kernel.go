// Package kernel implements the branch-pruning search kernels: for a pair
// of adjacent CHF levels, closed-form enumerators that produce, in
// nondecreasing sum-of-absolute-differences (SOD) order, only the child
// weight tuples that could possibly fall within a given Hamming radius of
// a query — without scanning the full child domain.
package kernel

import "sort"

// Candidate is one enumerated child weight tuple together with the SOD
// it accumulates relative to the query.
type Candidate struct {
	Fields []uint8
	SOD    int
}

// Radius enumerates, in nondecreasing SOD order, every child weight tuple
// (shaped like sc, i.e. len(sc)==2*len(sp)) consistent with the known
// target-path tuple tp such that its total SOD against the query (sp at
// the parent level, sc at the child level) is at most budget.
//
// bits is the bit width of one child-level field (constant for the whole
// call — it does not change as the recursion subdivides sp/tp/sc).
func Radius(sp, tp, sc []uint8, bits, budget int) []Candidate {
	if len(sp) != len(tp) || len(sc) != 2*len(sp) {
		panic("kernel: mismatched tuple shapes")
	}
	return radius(sp, tp, sc, bits, budget)
}

// Exact enumerates every child weight tuple whose total SOD against the
// query equals radius exactly.
func Exact(sp, tp, sc []uint8, bits, radius int) []Candidate {
	if len(sp) != len(tp) || len(sc) != 2*len(sp) {
		panic("kernel: mismatched tuple shapes")
	}
	return exact(sp, tp, sc, bits, radius)
}

func radius(sp, tp, sc []uint8, bits, budget int) []Candidate {
	if budget < 0 {
		return nil
	}
	if len(sp) == 1 {
		results := scalarRadius(int(sc[0]), int(sp[0]), int(tp[0]), bits, budget)
		out := make([]Candidate, len(results))
		for i, r := range results {
			out[i] = Candidate{Fields: []uint8{uint8(r.tl), uint8(int(tp[0]) - r.tl)}, SOD: r.sod}
		}
		return out
	}
	half := len(sp) / 2
	leftList := radius(sp[:half], tp[:half], sc[:len(sc)/2], bits, budget)
	var out []Candidate
	for _, l := range leftList {
		rightList := radius(sp[half:], tp[half:], sc[len(sc)/2:], bits, budget-l.SOD)
		for _, r := range rightList {
			out = append(out, Candidate{Fields: concat(l.Fields, r.Fields), SOD: l.SOD + r.SOD})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SOD < out[j].SOD })
	return out
}

func exact(sp, tp, sc []uint8, bits, target int) []Candidate {
	if target < 0 {
		return nil
	}
	if len(sp) == 1 {
		results := scalarExact(int(sc[0]), int(sp[0]), int(tp[0]), bits, target)
		out := make([]Candidate, len(results))
		for i, r := range results {
			out[i] = Candidate{Fields: []uint8{uint8(r.tl), uint8(int(tp[0]) - r.tl)}, SOD: r.sod}
		}
		return out
	}
	half := len(sp) / 2
	// Left half runs radius-style (every lsod <= target is a candidate
	// split point); right half must make up the remainder exactly.
	leftList := radius(sp[:half], tp[:half], sc[:len(sc)/2], bits, target)
	var out []Candidate
	for _, l := range leftList {
		rightList := exact(sp[half:], tp[half:], sc[len(sc)/2:], bits, target-l.SOD)
		for _, r := range rightList {
			out = append(out, Candidate{Fields: concat(l.Fields, r.Fields), SOD: l.SOD + r.SOD})
		}
	}
	return out
}

func concat(a, b []uint8) []uint8 {
	out := make([]uint8, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

type scalarHit struct {
	tl  int
	sod int
}

// scalarRadius is the closed-form range solver for a single scalar
// parent/child field pair: it enumerates every child value tl whose
// induced SOD is <= radius, in nondecreasing SOD order, without scanning
// the field's domain.
//
// sl is the left child's weight (of the query), sw the parent weight (of
// the query), tw the parent weight of the target path so far, bits the
// child field width (the domain of tl is [max(0,tw-bits), min(tw,bits)]).
func scalarRadius(sl, sw, tw, bits, radius int) []scalarHit {
	domLo, domHi := max(0, tw-bits), min(tw, bits)
	minSOD := absInt(tw - sw)
	if radius < minSOD || domLo > domHi {
		return nil
	}
	sr := sw - sl
	c := 2*sl - sw + tw
	lo := max(ceilDiv(-radius+c, 2), domLo)
	hi := min(floorDiv(radius+c, 2), domHi)
	if lo > hi {
		return nil
	}
	flatLo := min(sl, tw-sr)
	flatHi := max(sl, tw-sr)

	var out []scalarHit
	for tl := max(flatLo, lo); tl <= min(flatHi, hi); tl++ {
		out = append(out, scalarHit{tl: tl, sod: minSOD})
	}
	for step := 1; ; step++ {
		l, r := flatLo-step, flatHi+step
		doneL, doneR := l < lo, r > hi
		if doneL && doneR {
			break
		}
		sod := minSOD + 2*step
		if !doneL && l <= hi {
			out = append(out, scalarHit{tl: l, sod: sod})
		}
		if !doneR && r >= lo {
			out = append(out, scalarHit{tl: r, sod: sod})
		}
	}
	return out
}

// scalarExact enumerates every tl in domain whose induced SOD equals
// radius exactly (the level set of the convex SOD function at height
// radius): the whole flat interval when radius==minSOD, otherwise at
// most two boundary points.
func scalarExact(sl, sw, tw, bits, radius int) []scalarHit {
	domLo, domHi := max(0, tw-bits), min(tw, bits)
	minSOD := absInt(tw - sw)
	if radius < minSOD || domLo > domHi {
		return nil
	}
	sr := sw - sl
	if radius == minSOD {
		flatLo := max(min(sl, tw-sr), domLo)
		flatHi := min(max(sl, tw-sr), domHi)
		var out []scalarHit
		for tl := flatLo; tl <= flatHi; tl++ {
			out = append(out, scalarHit{tl: tl, sod: radius})
		}
		return out
	}
	c := 2*sl - sw + tw
	lo := ceilDiv(-radius+c, 2)
	hi := floorDiv(radius+c, 2)
	var out []scalarHit
	if lo >= domLo && lo <= domHi && scalarSOD(sl, sw, tw, lo) == radius {
		out = append(out, scalarHit{tl: lo, sod: radius})
	}
	if hi != lo && hi >= domLo && hi <= domHi && scalarSOD(sl, sw, tw, hi) == radius {
		out = append(out, scalarHit{tl: hi, sod: radius})
	}
	return out
}

func scalarSOD(sl, sw, tw, tl int) int {
	sr := sw - sl
	return absInt(tl-sl) + absInt((tw-tl)-sr)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func ceilDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) == (b < 0) {
		q++
	}
	return q
}
