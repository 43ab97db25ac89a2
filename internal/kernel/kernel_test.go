package kernel

import (
	"sort"
	"testing"
)

func TestScalarExactSpotCheck(t *testing.T) {
	// search_exact(64, sl=3, sw=5, tw=4, radius=1) yields {2, 3}.
	hits := scalarExact(3, 5, 4, 64, 1)
	got := map[int]bool{}
	for _, h := range hits {
		if h.sod != 1 {
			t.Fatalf("hit %+v has sod != radius", h)
		}
		got[h.tl] = true
	}
	want := map[int]bool{2: true, 3: true}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for tl := range want {
		if !got[tl] {
			t.Fatalf("missing tl=%d in %v", tl, got)
		}
	}
}

func TestScalarRadiusSpotCheck(t *testing.T) {
	// search_radius(64, sl=58, sw=72, tw=68, radius=10) yields 11 values
	// with SOD <= 10, in nondecreasing SOD order.
	hits := scalarRadius(58, 72, 68, 64, 10)
	if len(hits) != 11 {
		t.Fatalf("got %d hits, want 11: %+v", len(hits), hits)
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].sod < hits[i-1].sod {
			t.Fatalf("not nondecreasing at %d: %+v", i, hits)
		}
	}
	for _, h := range hits {
		if h.sod > 10 {
			t.Fatalf("hit %+v exceeds radius", h)
		}
		if got := scalarSOD(58, 72, 68, h.tl); got != h.sod {
			t.Fatalf("hit %+v: recomputed sod %d != reported %d", h, got, h.sod)
		}
	}
}

// bruteScalarRadius is an oracle: scan the whole domain and filter/sort by hand.
func bruteScalarRadius(sl, sw, tw, bits, radius int) []scalarHit {
	domLo, domHi := max(0, tw-bits), min(tw, bits)
	var out []scalarHit
	for tl := domLo; tl <= domHi; tl++ {
		sod := scalarSOD(sl, sw, tw, tl)
		if sod <= radius {
			out = append(out, scalarHit{tl: tl, sod: sod})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].sod < out[j].sod })
	return out
}

func bruteScalarExact(sl, sw, tw, bits, radius int) []scalarHit {
	domLo, domHi := max(0, tw-bits), min(tw, bits)
	var out []scalarHit
	for tl := domLo; tl <= domHi; tl++ {
		if scalarSOD(sl, sw, tw, tl) == radius {
			out = append(out, scalarHit{tl: tl, sod: radius})
		}
	}
	return out
}

func hitSet(hits []scalarHit) map[int]int {
	m := map[int]int{}
	for _, h := range hits {
		m[h.tl] = h.sod
	}
	return m
}

func TestScalarRadiusAgreesWithBruteForce(t *testing.T) {
	// Exhaustively over a small domain: check exactness of the emitted
	// set and nondecreasing-SOD order against a brute-force scan.
	for bits := 1; bits <= 8; bits++ {
		for sw := 0; sw <= 2*bits; sw++ {
			for sl := 0; sl <= sw; sl++ {
				for tw := 0; tw <= 2*bits; tw++ {
					for radius := 0; radius <= 2*bits; radius++ {
						got := scalarRadius(sl, sw, tw, bits, radius)
						want := bruteScalarRadius(sl, sw, tw, bits, radius)
						if len(got) != len(want) {
							t.Fatalf("bits=%d sl=%d sw=%d tw=%d radius=%d: got %d hits, want %d",
								bits, sl, sw, tw, radius, len(got), len(want))
						}
						gs, ws := hitSet(got), hitSet(want)
						for tl, sod := range ws {
							if gs[tl] != sod {
								t.Fatalf("bits=%d sl=%d sw=%d tw=%d radius=%d: tl=%d got sod %d want %d",
									bits, sl, sw, tw, radius, tl, gs[tl], sod)
							}
						}
						for i := 1; i < len(got); i++ {
							if got[i].sod < got[i-1].sod {
								t.Fatalf("bits=%d sl=%d sw=%d tw=%d radius=%d: order violated: %+v",
									bits, sl, sw, tw, radius, got)
							}
						}
					}
				}
			}
		}
	}
}

func TestScalarExactAgreesWithBruteForce(t *testing.T) {
	for bits := 1; bits <= 6; bits++ {
		for sw := 0; sw <= 2*bits; sw++ {
			for sl := 0; sl <= sw; sl++ {
				for tw := 0; tw <= 2*bits; tw++ {
					for radius := 0; radius <= 2*bits; radius++ {
						got := scalarExact(sl, sw, tw, bits, radius)
						want := bruteScalarExact(sl, sw, tw, bits, radius)
						gs, ws := hitSet(got), hitSet(want)
						if len(gs) != len(ws) {
							t.Fatalf("bits=%d sl=%d sw=%d tw=%d radius=%d: got %v, want %v",
								bits, sl, sw, tw, radius, gs, ws)
						}
						for tl := range ws {
							if _, ok := gs[tl]; !ok {
								t.Fatalf("bits=%d sl=%d sw=%d tw=%d radius=%d: missing tl=%d",
									bits, sl, sw, tw, radius, tl)
							}
						}
					}
				}
			}
		}
	}
}

func TestRadiusTwoLevelAgreesWithBruteForce(t *testing.T) {
	// A 2-field parent tuple (level with 2 entries) against a 4-field
	// child tuple (level with 4 entries, bits=4 each).
	bitsPerField := 4
	sp := []uint8{3, 5}
	tp := []uint8{2, 6}
	sc := []uint8{1, 2, 3, 2} // query's own child-level tuple, sum must equal sp
	radius := 3

	got := Radius(sp, tp, sc, bitsPerField, radius)
	for i := 1; i < len(got); i++ {
		if got[i].SOD < got[i-1].SOD {
			t.Fatalf("order violated: %+v", got)
		}
	}
	for _, c := range got {
		if c.SOD > radius {
			t.Fatalf("candidate exceeds radius: %+v", c)
		}
		if len(c.Fields) != 4 {
			t.Fatalf("wrong shape: %+v", c)
		}
		if c.Fields[0]+c.Fields[1] != tp[0] || c.Fields[2]+c.Fields[3] != tp[1] {
			t.Fatalf("candidate not consistent with tp: %+v", c)
		}
		sod := 0
		for i := range sc {
			d := int(sc[i]) - int(c.Fields[i])
			if d < 0 {
				d = -d
			}
			sod += d
		}
		if sod != c.SOD {
			t.Fatalf("reported SOD %d != recomputed %d for %+v", c.SOD, sod, c)
		}
	}

	// Brute force over the full domain to check completeness.
	var want []Candidate
	maxVal := bitsPerField
	for a := 0; a <= min(int(tp[0]), maxVal); a++ {
		if int(tp[0])-a > maxVal || int(tp[0])-a < 0 {
			continue
		}
		for c := 0; c <= min(int(tp[1]), maxVal); c++ {
			if int(tp[1])-c > maxVal || int(tp[1])-c < 0 {
				continue
			}
			fields := []uint8{uint8(a), uint8(int(tp[0]) - a), uint8(c), uint8(int(tp[1]) - c)}
			sod := 0
			for i := range sc {
				d := int(sc[i]) - int(fields[i])
				if d < 0 {
					d = -d
				}
				sod += d
			}
			if sod <= radius {
				want = append(want, Candidate{Fields: fields, SOD: sod})
			}
		}
	}
	if len(got) != len(want) {
		t.Fatalf("got %d candidates, want %d (brute force)", len(got), len(want))
	}
}
